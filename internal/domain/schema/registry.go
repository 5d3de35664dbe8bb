package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	gormschema "gorm.io/gorm/schema"
)

var (
	decimalType     = reflect.TypeOf(decimal.Decimal{})
	nullDecimalType = reflect.TypeOf(decimal.NullDecimal{})
	timeType        = reflect.TypeOf(time.Time{})
)

// enumer is implemented by string types with a closed value set
type enumer interface {
	Values() []string
}

// Registry holds the metadata of every registered model. It is safe for
// concurrent use once populated.
type Registry struct {
	mu     sync.RWMutex
	cache  *sync.Map
	namer  gormschema.Namer
	byType map[reflect.Type]*Model
	byName map[string]*Model
	order  []*Model
}

// NewRegistry parses and registers values (pointers to entity structs)
func NewRegistry(values ...any) (*Registry, error) {
	r := &Registry{
		cache:  &sync.Map{},
		namer:  gormschema.NamingStrategy{},
		byType: make(map[reflect.Type]*Model),
		byName: make(map[string]*Model),
	}
	if err := r.Register(values...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register parses values and links their relations. Every relation target
// must be registered in the same call or earlier.
func (r *Registry) Register(values ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parsed := make([]*gormschema.Schema, 0, len(values))
	for _, v := range values {
		s, err := gormschema.Parse(v, r.cache, r.namer)
		if err != nil {
			return fmt.Errorf("parse schema of %T: %w", v, err)
		}
		if _, exists := r.byName[s.Name]; exists {
			continue
		}
		m, err := buildModel(s)
		if err != nil {
			return err
		}
		r.byType[m.GoType] = m
		r.byName[m.Name] = m
		r.order = append(r.order, m)
		parsed = append(parsed, s)
	}

	for _, s := range parsed {
		if err := r.linkRelations(r.byName[s.Name], s); err != nil {
			return err
		}
	}
	return nil
}

// Model returns the metadata of v's type (T or *T)
func (r *Registry) Model(v any) (*Model, error) {
	t := reflect.TypeOf(v)
	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.byType[t]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("model %v is not registered", t)
}

// ModelByName returns the metadata of the model with the given struct name
func (r *Registry) ModelByName(name string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]
	return m, ok
}

// Models returns every model in registration order
func (r *Registry) Models() []*Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Model(nil), r.order...)
}

// Of returns the metadata of T
func Of[T any](r *Registry) (*Model, error) {
	var zero T
	return r.Model(&zero)
}

func buildModel(s *gormschema.Schema) (*Model, error) {
	m := &Model{
		Name:      s.Name,
		Table:     s.Table,
		GoType:    s.ModelType,
		byName:    make(map[string]*Field),
		byGoName:  make(map[string]*Field),
		relByName: make(map[string]*Relation),
	}

	uniqueGroups := map[string][]*Field{}
	var groupNames []string

	for _, sf := range s.Fields {
		if sf.DBName == "" {
			continue
		}
		if _, isRel := s.Relationships.Relations[sf.Name]; isRel {
			continue
		}

		f, err := buildField(s.Name, sf)
		if err != nil {
			return nil, err
		}
		m.Fields = append(m.Fields, f)
		m.byName[f.Name] = f
		m.byGoName[f.GoName] = f
		if f.PrimaryKey {
			m.PrimaryKey = append(m.PrimaryKey, f)
		}

		for _, key := range []string{"UNIQUEINDEX", "UNIQUE"} {
			val, ok := sf.TagSettings[key]
			if !ok {
				continue
			}
			group := strings.SplitN(val, ",", 2)[0]
			if group == key || group == "" {
				group = "uniq_" + f.Column
			}
			if _, seen := uniqueGroups[group]; !seen {
				groupNames = append(groupNames, group)
			}
			uniqueGroups[group] = append(uniqueGroups[group], f)
		}
	}

	if len(m.PrimaryKey) == 0 {
		return nil, fmt.Errorf("model %s has no primary key", s.Name)
	}
	m.UniqueKeys = append(m.UniqueKeys, m.PrimaryKey)
	sort.Strings(groupNames)
	for _, g := range groupNames {
		m.UniqueKeys = append(m.UniqueKeys, uniqueGroups[g])
	}
	return m, nil
}

func buildField(model string, sf *gormschema.Field) (*Field, error) {
	f := &Field{
		Name:       apiName(sf),
		GoName:     sf.Name,
		Column:     sf.DBName,
		PrimaryKey: sf.PrimaryKey,
		AutoCreate: sf.AutoCreateTime > 0,
		AutoUpdate: sf.AutoUpdateTime > 0,
	}

	t := sf.FieldType
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
		f.Nullable = true
	}
	f.GoType = t

	switch {
	case t == decimalType:
		f.Kind = KindDecimal
	case t == nullDecimalType:
		f.Kind = KindDecimal
		f.Nullable = true
	case t == timeType:
		f.Kind = KindDateTime
	case t.Implements(reflect.TypeOf((*enumer)(nil)).Elem()) && t.Kind() == reflect.String:
		f.Kind = KindEnum
		f.EnumName = t.Name()
		f.EnumValues = reflect.Zero(t).Interface().(enumer).Values()
	default:
		switch t.Kind() {
		case reflect.String:
			f.Kind = KindString
		case reflect.Bool:
			f.Kind = KindBool
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f.Kind = KindInt
		case reflect.Float32, reflect.Float64:
			f.Kind = KindFloat
		default:
			return nil, fmt.Errorf("model %s field %s: unsupported type %v", model, sf.Name, sf.FieldType)
		}
	}
	return f, nil
}

func (r *Registry) linkRelations(m *Model, s *gormschema.Schema) error {
	names := make([]string, 0, len(s.Relationships.Relations))
	for name := range s.Relationships.Relations {
		// gorm keeps its own back-references of has-many relations under
		// "_"-prefixed names; they are not fields of the model
		if strings.HasPrefix(name, "_") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, goName := range names {
		rel := s.Relationships.Relations[goName]
		target, ok := r.byName[rel.FieldSchema.Name]
		if !ok {
			return fmt.Errorf("relation %s.%s targets unregistered model %s", m.Name, goName, rel.FieldSchema.Name)
		}

		out := &Relation{
			Name:   apiName(rel.Field),
			GoName: goName,
			Target: target,
		}
		switch rel.Type {
		case gormschema.BelongsTo:
			out.Owner = true
		case gormschema.HasOne:
		case gormschema.HasMany:
			out.ToMany = true
		default:
			return fmt.Errorf("relation %s.%s: unsupported relationship type %s", m.Name, goName, rel.Type)
		}

		for _, ref := range rel.References {
			if ref.PrimaryKey == nil || ref.ForeignKey == nil {
				continue
			}
			localGo, targetGo := ref.PrimaryKey.Name, ref.ForeignKey.Name
			if out.Owner {
				localGo, targetGo = ref.ForeignKey.Name, ref.PrimaryKey.Name
			}
			local, lok := m.byGoName[localGo]
			remote, rok := target.byGoName[targetGo]
			if !lok || !rok {
				return fmt.Errorf("relation %s.%s: unresolved key %s -> %s", m.Name, goName, localGo, targetGo)
			}
			out.LocalFields = append(out.LocalFields, local)
			out.TargetFields = append(out.TargetFields, remote)
		}

		m.Relations = append(m.Relations, out)
		m.relByName[out.Name] = out
	}
	return nil
}

// apiName is the json tag name of a field, or its lower camel Go name
func apiName(sf *gormschema.Field) string {
	if tag := sf.Tag.Get("json"); tag != "" {
		if name := strings.SplitN(tag, ",", 2)[0]; name != "" && name != "-" {
			return name
		}
	}
	runes := []rune(sf.Name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

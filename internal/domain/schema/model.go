// Package schema derives per-entity metadata (fields, kinds, unique keys,
// relations) from the tagged entity structs and validates query arguments
// against it. It is the single description of the data model that the
// generic delegate, the migrations and the API share.
package schema

import (
	"reflect"
	"slices"
	"strings"
)

// Kind is the scalar kind of a field
type Kind int

const (
	KindString Kind = iota + 1
	KindEnum
	KindDecimal
	KindInt
	KindFloat
	KindBool
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindEnum:
		return "Enum"
	case KindDecimal:
		return "Decimal"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Boolean"
	case KindDateTime:
		return "DateTime"
	default:
		return "Unknown"
	}
}

// IsNumeric reports whether _avg and _sum apply to the kind
func (k Kind) IsNumeric() bool {
	return k == KindDecimal || k == KindInt || k == KindFloat
}

// IsOrderable reports whether lt/gt comparisons and _min/_max apply
func (k Kind) IsOrderable() bool {
	return k != KindBool && k != KindEnum
}

// Field is a scalar column of a model
type Field struct {
	Name       string // API name, from the json tag
	GoName     string
	Column     string
	Kind       Kind
	Nullable   bool
	PrimaryKey bool
	EnumName   string
	EnumValues []string
	AutoCreate bool // set on insert when zero
	AutoUpdate bool // refreshed on every update
	GoType     reflect.Type
}

// Relation links a model to another one. LocalFields on this model match
// TargetFields on the target model pairwise.
type Relation struct {
	Name         string
	GoName       string
	Target       *Model
	ToMany       bool
	LocalFields  []*Field
	TargetFields []*Field
	Owner        bool // this model holds the foreign key (belongs-to)
}

// Model is the metadata of one entity
type Model struct {
	Name       string
	Table      string
	GoType     reflect.Type
	Fields     []*Field
	PrimaryKey []*Field
	// UniqueKeys lists every unique key; the primary key comes first.
	UniqueKeys [][]*Field
	Relations  []*Relation

	byName    map[string]*Field
	byGoName  map[string]*Field
	relByName map[string]*Relation
}

// Field returns the scalar field with the given API name
func (m *Model) Field(name string) (*Field, bool) {
	f, ok := m.byName[name]
	return f, ok
}

// FieldByGoName returns the scalar field with the given struct field name
func (m *Model) FieldByGoName(name string) (*Field, bool) {
	f, ok := m.byGoName[name]
	return f, ok
}

// Relation returns the relation with the given API name
func (m *Model) Relation(name string) (*Relation, bool) {
	r, ok := m.relByName[name]
	return r, ok
}

// FieldNames returns the API names of all scalar fields in declaration order
func (m *Model) FieldNames() []string {
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		names[i] = f.Name
	}
	return names
}

// Columns returns the column names of fields
func Columns(fields []*Field) []string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Column
	}
	return cols
}

// Names returns the API names of fields
func Names(fields []*Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// UniqueKeyByColumns finds the unique key covering exactly cols, in any order
func (m *Model) UniqueKeyByColumns(cols []string) ([]*Field, bool) {
	for _, key := range m.UniqueKeys {
		if len(key) != len(cols) {
			continue
		}
		match := true
		for _, f := range key {
			if !slices.Contains(cols, f.Column) {
				match = false
				break
			}
		}
		if match {
			return key, true
		}
	}
	return nil, false
}

// FieldsByColumns maps column names back to API names. Unknown columns are
// returned unchanged.
func (m *Model) FieldsByColumns(cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		c = strings.TrimSpace(c)
		name := c
		for _, f := range m.Fields {
			if f.Column == c {
				name = f.Name
				break
			}
		}
		out = append(out, name)
	}
	return out
}

// Value reads field f from a *T or T of this model
func (f *Field) Value(v any) any {
	rv := reflect.Indirect(reflect.ValueOf(v))
	fv := rv.FieldByName(f.GoName)
	if !fv.IsValid() {
		return nil
	}
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		return fv.Elem().Interface()
	}
	return fv.Interface()
}

// IsZero reports whether field f of v holds its zero value
func (f *Field) IsZero(v any) bool {
	rv := reflect.Indirect(reflect.ValueOf(v))
	fv := rv.FieldByName(f.GoName)
	return !fv.IsValid() || fv.IsZero()
}

// SetValue assigns value to field f of the struct pointed to by ptr,
// converting between compatible types (string to a named string type,
// value to pointer).
func (f *Field) SetValue(ptr any, value any) bool {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	fv := rv.Elem().FieldByName(f.GoName)
	if !fv.IsValid() || !fv.CanSet() {
		return false
	}
	if value == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return true
	}

	val := reflect.ValueOf(value)
	target := fv.Type()
	if target.Kind() == reflect.Pointer {
		elem := target.Elem()
		if !convertible(val.Type(), elem) {
			return false
		}
		p := reflect.New(elem)
		p.Elem().Set(val.Convert(elem))
		fv.Set(p)
		return true
	}
	if !convertible(val.Type(), target) {
		return false
	}
	fv.Set(val.Convert(target))
	return true
}

// convertible rejects the integer to string conversion reflect allows.
func convertible(from, to reflect.Type) bool {
	if to.Kind() == reflect.String && from.Kind() != reflect.String {
		return false
	}
	return from.ConvertibleTo(to)
}

package schema

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
)

// validator carries the model and operation into error messages
type validator struct {
	m  *Model
	op string
}

func (v validator) fail(path, format string, args ...any) error {
	return errs.NewValidationError(v.m.Name, v.op, path, format, args...)
}

// NormalizeValue converts v into the Go value stored for field f: string for
// strings and enums, decimal.Decimal for decimals, int64, float64, bool and
// time.Time. Binary floating point is refused for decimal fields.
func NormalizeValue(f *Field, v any) (any, error) {
	if v == nil || query.IsNull(v) {
		return nil, fmt.Errorf("null is not a value of %s", f.Kind)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil pointer is not a value of %s", f.Kind)
		}
		return NormalizeValue(f, rv.Elem().Interface())
	}

	switch f.Kind {
	case KindString:
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
	case KindEnum:
		if rv.Kind() == reflect.String {
			s := rv.String()
			if !slices.Contains(f.EnumValues, s) {
				return nil, fmt.Errorf("%q is not a valid %s, expected one of [%s]", s, f.EnumName, strings.Join(f.EnumValues, ", "))
			}
			return s, nil
		}
	case KindDecimal:
		switch x := v.(type) {
		case decimal.Decimal:
			return x, nil
		case decimal.NullDecimal:
			if x.Valid {
				return x.Decimal, nil
			}
			return nil, fmt.Errorf("null is not a value of %s", f.Kind)
		case string:
			d, err := decimal.NewFromString(x)
			if err != nil {
				return nil, fmt.Errorf("%q is not a decimal", x)
			}
			return d, nil
		case float32, float64:
			return nil, fmt.Errorf("binary floating point is not accepted for Decimal; pass a decimal.Decimal or a string")
		}
		if isIntKind(rv.Kind()) {
			return decimal.NewFromInt(toInt64(rv)), nil
		}
	case KindInt:
		if isIntKind(rv.Kind()) {
			return toInt64(rv), nil
		}
	case KindFloat:
		if rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64 {
			return rv.Float(), nil
		}
		if isIntKind(rv.Kind()) {
			return float64(toInt64(rv)), nil
		}
	case KindBool:
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	case KindDateTime:
		switch x := v.(type) {
		case time.Time:
			return x, nil
		case string:
			t, err := time.Parse(time.RFC3339Nano, x)
			if err != nil {
				return nil, fmt.Errorf("%q is not an RFC 3339 timestamp", x)
			}
			return t, nil
		}
	}
	return nil, fmt.Errorf("%T is not a value of %s", v, f.Kind)
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func toInt64(rv reflect.Value) int64 {
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	default:
		return rv.Int()
	}
}

// sortedKeys returns map keys in a stable order so errors and SQL are deterministic
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedFieldNames returns the field names of a Where or Having in stable order
func SortedFieldNames(filters map[string]query.Filter) []string {
	return sortedKeys(filters)
}

func (v validator) scalar(path, name string) (*Field, error) {
	if f, ok := v.m.Field(name); ok {
		return f, nil
	}
	if _, ok := v.m.Relation(name); ok {
		return nil, v.fail(path, "%q is a relation, not a scalar field", name)
	}
	return nil, v.fail(path, "unknown field %q on %s", name, v.m.Name)
}

// ValidateWhere checks a filter tree against the model
func (m *Model) ValidateWhere(op string, w query.Where) error {
	return validator{m, op}.where("where", w)
}

func (v validator) where(path string, w query.Where) error {
	for _, name := range sortedKeys(w.Fields) {
		f, err := v.scalar(path+"."+name, name)
		if err != nil {
			return err
		}
		if err := v.filter(path+"."+name, f, w.Fields[name]); err != nil {
			return err
		}
	}
	for _, g := range []struct {
		label string
		subs  []query.Where
	}{{"AND", w.AND}, {"OR", w.OR}, {"NOT", w.NOT}} {
		for i, sub := range g.subs {
			if err := v.where(fmt.Sprintf("%s.%s[%d]", path, g.label, i), sub); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v validator) filter(path string, f *Field, flt query.Filter) error {
	if flt.Equals != nil {
		if query.IsNull(flt.Equals) {
			if !f.Nullable {
				return v.fail(path+".equals", "%s is not nullable and cannot be compared with null", f.Name)
			}
		} else if _, err := NormalizeValue(f, flt.Equals); err != nil {
			return v.fail(path+".equals", "%v", err)
		}
	}

	for _, l := range []struct {
		label string
		items []any
	}{{"in", flt.In}, {"notIn", flt.NotIn}} {
		for i, item := range l.items {
			if _, err := NormalizeValue(f, item); err != nil {
				return v.fail(fmt.Sprintf("%s.%s[%d]", path, l.label, i), "%v", err)
			}
		}
	}

	for _, b := range []struct {
		label string
		bound any
	}{{"lt", flt.Lt}, {"lte", flt.Lte}, {"gt", flt.Gt}, {"gte", flt.Gte}} {
		label, bound := b.label, b.bound
		if bound == nil {
			continue
		}
		if !f.Kind.IsOrderable() {
			return v.fail(path+"."+label, "operator %q is not supported on %s field %s", label, f.Kind, f.Name)
		}
		if _, err := NormalizeValue(f, bound); err != nil {
			return v.fail(path+"."+label, "%v", err)
		}
	}

	for _, o := range []struct {
		label string
		arg   *string
	}{{"contains", flt.Contains}, {"startsWith", flt.StartsWith}, {"endsWith", flt.EndsWith}} {
		if o.arg != nil && f.Kind != KindString {
			return v.fail(path+"."+o.label, "operator %q requires a String field, %s is %s", o.label, f.Name, f.Kind)
		}
	}

	switch flt.Mode {
	case "", query.ModeDefault:
	case query.ModeInsensitive:
		if f.Kind != KindString {
			return v.fail(path+".mode", "insensitive mode requires a String field, %s is %s", f.Name, f.Kind)
		}
	default:
		return v.fail(path+".mode", "unknown mode %q", flt.Mode)
	}

	if flt.Not != nil {
		return v.filter(path+".not", f, *flt.Not)
	}
	return nil
}

// ValidateUniqueWhere checks w and returns the unique key it pins down. Every
// field of the key must be compared with equals to a non-null value.
func (m *Model) ValidateUniqueWhere(op string, w query.Where) ([]*Field, error) {
	v := validator{m, op}
	if err := v.where("where", w); err != nil {
		return nil, err
	}
	if key := m.matchUniqueKey(w); key != nil {
		return key, nil
	}
	var keys []string
	for _, key := range m.UniqueKeys {
		keys = append(keys, "("+strings.Join(Names(key), ", ")+")")
	}
	return nil, v.fail("where", "expected equals on every field of a unique key of %s: one of %s", m.Name, strings.Join(keys, ", "))
}

func (m *Model) matchUniqueKey(w query.Where) []*Field {
	for _, key := range m.UniqueKeys {
		matched := true
		for _, f := range key {
			flt, ok := w.Fields[f.Name]
			if !ok || flt.Equals == nil || query.IsNull(flt.Equals) {
				matched = false
				break
			}
		}
		if matched {
			return key
		}
	}
	return nil
}

func (v validator) orderBy(path string, orders []query.OrderBy, by []string) error {
	for i, o := range orders {
		p := fmt.Sprintf("%s[%d]", path, i)
		switch o.Sort {
		case "", query.SortAsc, query.SortDesc:
		default:
			return v.fail(p+".sort", "unknown sort order %q", o.Sort)
		}
		switch o.Nulls {
		case "", query.NullsFirst, query.NullsLast:
		default:
			return v.fail(p+".nulls", "unknown nulls order %q", o.Nulls)
		}

		if o.Aggregate != "" {
			if by == nil {
				return v.fail(p, "ordering by %s is only supported by groupBy", o.Aggregate)
			}
			if o.Nulls != "" {
				return v.fail(p+".nulls", "nulls placement is not supported on aggregates")
			}
			if err := v.aggregateField(p, o.Aggregate, o.Field); err != nil {
				return err
			}
			continue
		}

		f, err := v.scalar(p, o.Field)
		if err != nil {
			return err
		}
		if o.Nulls != "" && !f.Nullable {
			return v.fail(p+".nulls", "nulls placement requires a nullable field, %s is required", f.Name)
		}
		if by != nil && !slices.Contains(by, f.Name) {
			return v.fail(p, "field %q must appear in by [%s] to be used in orderBy", f.Name, strings.Join(by, ", "))
		}
	}
	return nil
}

func (v validator) selection(path string, fields []string, allowAll bool) error {
	for i, name := range fields {
		if allowAll && name == query.AllRows {
			continue
		}
		if _, err := v.scalar(fmt.Sprintf("%s[%d]", path, i), name); err != nil {
			return err
		}
	}
	return nil
}

func (v validator) window(cursor *query.Where, take *int, skip int, orders []query.OrderBy) error {
	if err := v.orderBy("orderBy", orders, nil); err != nil {
		return err
	}
	if cursor != nil {
		if _, err := v.m.ValidateUniqueWhere(v.op, *cursor); err != nil {
			return err
		}
	}
	if skip < 0 {
		return v.fail("skip", "skip must not be negative, got %d", skip)
	}
	return nil
}

func (v validator) includes(path string, incs []query.Include) error {
	for i, inc := range incs {
		p := fmt.Sprintf("%s[%d]", path, i)
		rel, ok := v.m.Relation(inc.Relation)
		if !ok {
			return v.fail(p, "unknown relation %q on %s", inc.Relation, v.m.Name)
		}
		tv := validator{rel.Target, v.op}
		if !rel.ToMany && (inc.Where != nil || len(inc.OrderBy) > 0) {
			return v.fail(p, "where and orderBy are only supported on to-many relations, %s is to-one", inc.Relation)
		}
		if len(inc.Select) > 0 && len(inc.Include) > 0 {
			return v.fail(p, "select and include cannot be used together")
		}
		if inc.Where != nil {
			if err := tv.where(p+".where", *inc.Where); err != nil {
				return err
			}
		}
		if err := tv.orderBy(p+".orderBy", inc.OrderBy, nil); err != nil {
			return err
		}
		if err := tv.selection(p+".select", inc.Select, false); err != nil {
			return err
		}
		if err := tv.includes(p+".include", inc.Include); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUniqueArgs checks the arguments of FindUnique and returns the
// matched unique key
func (m *Model) ValidateUniqueArgs(op string, args query.UniqueArgs) ([]*Field, error) {
	v := validator{m, op}
	if len(args.Select) > 0 && len(args.Include) > 0 {
		return nil, v.fail("", "select and include cannot be used together")
	}
	key, err := m.ValidateUniqueWhere(op, args.Where)
	if err != nil {
		return nil, err
	}
	if err := v.selection("select", args.Select, false); err != nil {
		return nil, err
	}
	return key, v.includes("include", args.Include)
}

// ValidateFindArgs checks the arguments of FindFirst and FindMany
func (m *Model) ValidateFindArgs(op string, args query.FindArgs) error {
	v := validator{m, op}
	if len(args.Select) > 0 && len(args.Include) > 0 {
		return v.fail("", "select and include cannot be used together")
	}
	if err := v.where("where", args.Where); err != nil {
		return err
	}
	if err := v.window(args.Cursor, args.Take, args.Skip, args.OrderBy); err != nil {
		return err
	}
	if err := v.selection("distinct", args.Distinct, false); err != nil {
		return err
	}
	if err := v.selection("select", args.Select, false); err != nil {
		return err
	}
	return v.includes("include", args.Include)
}

// ValidateData checks an update payload
func (m *Model) ValidateData(op string, data query.Data) error {
	v := validator{m, op}
	if len(data) == 0 {
		return v.fail("data", "update data must name at least one field")
	}
	for _, name := range sortedKeys(data) {
		p := "data." + name
		f, err := v.scalar(p, name)
		if err != nil {
			return err
		}
		if err := v.dataValue(p, f, data[name]); err != nil {
			return err
		}
	}
	return nil
}

func (v validator) dataValue(path string, f *Field, value any) error {
	if value == nil || query.IsNull(value) {
		if !f.Nullable {
			return v.fail(path, "%s is required and cannot be set to null", f.Name)
		}
		return nil
	}
	op, isOp := value.(query.Op)
	if !isOp {
		if _, err := NormalizeValue(f, value); err != nil {
			return v.fail(path, "%v", err)
		}
		return nil
	}

	switch op.Kind {
	case query.OpSet:
		return v.dataValue(path+".set", f, op.Value)
	case query.OpIncrement, query.OpDecrement, query.OpMultiply, query.OpDivide:
	default:
		return v.fail(path, "unknown update operation %q", op.Kind)
	}
	if !f.Kind.IsNumeric() {
		return v.fail(path+"."+string(op.Kind), "operation %q requires a numeric field, %s is %s", op.Kind, f.Name, f.Kind)
	}
	operand, err := NormalizeValue(f, op.Value)
	if err != nil {
		return v.fail(path+"."+string(op.Kind), "%v", err)
	}
	if op.Kind == query.OpDivide && isZero(operand) {
		return v.fail(path+".divide", "division by zero")
	}
	return nil
}

func isZero(v any) bool {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.IsZero()
	case int64:
		return x == 0
	case float64:
		return x == 0
	}
	return false
}

// AggregateFieldKind returns the kind of the value an aggregate produces
func AggregateFieldKind(fn query.AggregateFunc, f *Field) Kind {
	switch fn {
	case query.AggCount:
		return KindInt
	case query.AggAvg:
		if f.Kind == KindFloat {
			return KindFloat
		}
		return KindDecimal
	case query.AggSum:
		if f.Kind == KindInt {
			return KindInt
		}
		if f.Kind == KindFloat {
			return KindFloat
		}
		return KindDecimal
	default:
		return f.Kind
	}
}

func (v validator) aggregateField(path string, fn query.AggregateFunc, name string) error {
	if fn == query.AggCount && name == query.AllRows {
		return nil
	}
	f, err := v.scalar(path, name)
	if err != nil {
		return err
	}
	switch fn {
	case query.AggCount:
	case query.AggAvg, query.AggSum:
		if !f.Kind.IsNumeric() {
			return v.fail(path, "%s requires a numeric field, %s is %s", fn, f.Name, f.Kind)
		}
	case query.AggMin, query.AggMax:
		if f.Kind == KindBool {
			return v.fail(path, "%s is not supported on Boolean field %s", fn, f.Name)
		}
	default:
		return v.fail(path, "unknown aggregate %q", fn)
	}
	return nil
}

func (v validator) aggregates(a query.Aggregates) error {
	groups := []struct {
		fn     query.AggregateFunc
		fields []string
	}{
		{query.AggCount, a.Count},
		{query.AggAvg, a.Avg},
		{query.AggSum, a.Sum},
		{query.AggMin, a.Min},
		{query.AggMax, a.Max},
	}
	for _, g := range groups {
		for i, name := range g.fields {
			if err := v.aggregateField(fmt.Sprintf("%s[%d]", g.fn, i), g.fn, name); err != nil {
				return err
			}
		}
	}
	return nil
}

// ValidateAggregateArgs checks the arguments of Aggregate
func (m *Model) ValidateAggregateArgs(op string, args query.AggregateArgs) error {
	v := validator{m, op}
	if err := v.where("where", args.Where); err != nil {
		return err
	}
	if err := v.window(args.Cursor, args.Take, args.Skip, args.OrderBy); err != nil {
		return err
	}
	return v.aggregates(args.Aggregates)
}

// ValidateCountArgs checks the arguments of Count
func (m *Model) ValidateCountArgs(op string, args query.CountArgs) error {
	v := validator{m, op}
	if err := v.where("where", args.Where); err != nil {
		return err
	}
	if err := v.window(args.Cursor, args.Take, args.Skip, args.OrderBy); err != nil {
		return err
	}
	return v.selection("select", args.Select, true)
}

// ValidateGroupByArgs checks the arguments of GroupBy. Scalar fields used in
// orderBy or having must be listed in by.
func (m *Model) ValidateGroupByArgs(op string, args query.GroupByArgs) error {
	v := validator{m, op}
	if len(args.By) == 0 {
		return v.fail("by", "groupBy requires at least one field")
	}
	seen := map[string]bool{}
	for i, name := range args.By {
		if _, err := v.scalar(fmt.Sprintf("by[%d]", i), name); err != nil {
			return err
		}
		if seen[name] {
			return v.fail(fmt.Sprintf("by[%d]", i), "field %q listed twice", name)
		}
		seen[name] = true
	}
	if err := v.where("where", args.Where); err != nil {
		return err
	}
	if args.Having != nil {
		if err := v.having("having", *args.Having, args.By); err != nil {
			return err
		}
	}
	if err := v.orderBy("orderBy", args.OrderBy, args.By); err != nil {
		return err
	}
	if args.Take != nil && *args.Take < 0 {
		return v.fail("take", "groupBy does not support negative take")
	}
	if args.Skip < 0 {
		return v.fail("skip", "skip must not be negative, got %d", args.Skip)
	}
	if args.Take != nil || args.Skip > 0 {
		if len(args.OrderBy) == 0 {
			return v.fail("orderBy", "take and skip on groupBy require an orderBy")
		}
	}
	return v.aggregates(args.Aggregates)
}

func (v validator) having(path string, h query.Having, by []string) error {
	for _, name := range sortedKeys(h.Fields) {
		p := path + "." + name
		f, err := v.scalar(p, name)
		if err != nil {
			return err
		}
		if !slices.Contains(by, name) {
			return v.fail(p, "field %q must appear in by [%s] to be used in having", name, strings.Join(by, ", "))
		}
		if err := v.filter(p, f, h.Fields[name]); err != nil {
			return err
		}
	}
	for i, af := range h.Aggregates {
		p := fmt.Sprintf("%s.aggregates[%d]", path, i)
		if err := v.aggregateField(p, af.Func, af.Field); err != nil {
			return err
		}
		synthetic := &Field{Name: string(af.Func) + "." + af.Field, Kind: KindInt, Nullable: true}
		if af.Field != query.AllRows {
			f, _ := v.m.Field(af.Field)
			synthetic.Kind = AggregateFieldKind(af.Func, f)
			synthetic.EnumName = f.EnumName
			synthetic.EnumValues = f.EnumValues
		}
		if af.Func == query.AggCount {
			synthetic.Nullable = false
		}
		if err := v.filter(p, synthetic, af.Filter); err != nil {
			return err
		}
	}
	for _, g := range []struct {
		label string
		subs  []query.Having
	}{{"AND", h.AND}, {"OR", h.OR}, {"NOT", h.NOT}} {
		for i, sub := range g.subs {
			if err := v.having(fmt.Sprintf("%s.%s[%d]", path, g.label, i), sub, by); err != nil {
				return err
			}
		}
	}
	return nil
}

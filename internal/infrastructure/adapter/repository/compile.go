package repository

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
)

// The SQL fragments below implement clause.Expression directly so that the
// generated SQL is exactly what the filter tree says, independent of how
// gorm merges and negates its own condition types.

// operand is the left-hand side of a predicate or ordering term
type operand interface {
	build(b clause.Builder)
}

type columnRef struct{ col clause.Column }

func (c columnRef) build(b clause.Builder) { b.WriteQuoted(c.col) }

// aggregateRef is fn(column), or fn(*) when col is nil
type aggregateRef struct {
	fn  string
	col *clause.Column
}

func (a aggregateRef) build(b clause.Builder) {
	b.WriteString(a.fn)
	b.WriteByte('(')
	if a.col == nil {
		b.WriteByte('*')
	} else {
		b.WriteQuoted(*a.col)
	}
	b.WriteByte(')')
}

type lowerRef struct{ inner operand }

func (l lowerRef) build(b clause.Builder) {
	b.WriteString("LOWER(")
	l.inner.build(b)
	b.WriteByte(')')
}

type comparison struct {
	lhs   operand
	op    string
	value any
}

func (c comparison) Build(b clause.Builder) {
	c.lhs.build(b)
	b.WriteString(" " + c.op + " ")
	b.AddVar(b, c.value)
}

type nullCheck struct {
	lhs operand
	not bool
}

func (n nullCheck) Build(b clause.Builder) {
	n.lhs.build(b)
	if n.not {
		b.WriteString(" IS NOT NULL")
	} else {
		b.WriteString(" IS NULL")
	}
}

type membership struct {
	lhs    operand
	values []any
	not    bool
}

func (m membership) Build(b clause.Builder) {
	m.lhs.build(b)
	if m.not {
		b.WriteString(" NOT IN (")
	} else {
		b.WriteString(" IN (")
	}
	b.AddVar(b, m.values...)
	b.WriteByte(')')
}

type junction struct {
	op    string
	exprs []clause.Expression
}

func (j junction) Build(b clause.Builder) {
	if len(j.exprs) == 1 {
		j.exprs[0].Build(b)
		return
	}
	b.WriteByte('(')
	for i, e := range j.exprs {
		if i > 0 {
			b.WriteString(" " + j.op + " ")
		}
		e.Build(b)
	}
	b.WriteByte(')')
}

type negation struct{ expr clause.Expression }

func (n negation) Build(b clause.Builder) {
	b.WriteString("NOT (")
	n.expr.Build(b)
	b.WriteByte(')')
}

type literal string

func (l literal) Build(b clause.Builder) { b.WriteString(string(l)) }

const (
	sqlTrue  = literal("TRUE")
	sqlFalse = literal("FALSE")
)

func and(exprs ...clause.Expression) clause.Expression { return junction{op: "AND", exprs: exprs} }

func or(exprs ...clause.Expression) clause.Expression { return junction{op: "OR", exprs: exprs} }

// column returns the current-table column of f
func column(f *schema.Field) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: f.Column}
}

func aggregateSQL(fn query.AggregateFunc) string {
	switch fn {
	case query.AggCount:
		return "COUNT"
	case query.AggAvg:
		return "AVG"
	case query.AggSum:
		return "SUM"
	case query.AggMin:
		return "MIN"
	case query.AggMax:
		return "MAX"
	}
	return ""
}

// aggregateOperand returns fn(field) for m, with _count(_all) as COUNT(*)
func aggregateOperand(m *schema.Model, fn query.AggregateFunc, field string) (operand, *schema.Field, error) {
	if fn == query.AggCount && field == query.AllRows {
		return aggregateRef{fn: "COUNT"}, nil, nil
	}
	f, ok := m.Field(field)
	if !ok {
		return nil, nil, fmt.Errorf("unknown field %q on %s", field, m.Name)
	}
	col := column(f)
	return aggregateRef{fn: aggregateSQL(fn), col: &col}, f, nil
}

// escapeLike escapes the LIKE wildcards in s
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// compileFilter turns the filter on one field into predicates joined by AND
func compileFilter(f *schema.Field, lhs operand, flt query.Filter) ([]clause.Expression, error) {
	insensitive := flt.Mode == query.ModeInsensitive
	target := lhs
	if insensitive {
		target = lowerRef{lhs}
	}
	normalize := func(v any) (any, error) {
		x, err := schema.NormalizeValue(f, v)
		if err != nil {
			return nil, err
		}
		if s, ok := x.(string); ok && insensitive {
			x = strings.ToLower(s)
		}
		return x, nil
	}

	var out []clause.Expression

	if flt.Equals != nil {
		if query.IsNull(flt.Equals) {
			out = append(out, nullCheck{lhs: lhs})
		} else {
			v, err := normalize(flt.Equals)
			if err != nil {
				return nil, err
			}
			out = append(out, comparison{target, "=", v})
		}
	}

	if flt.In != nil {
		if len(flt.In) == 0 {
			out = append(out, sqlFalse)
		} else {
			vals, err := normalizeAll(flt.In, normalize)
			if err != nil {
				return nil, err
			}
			out = append(out, membership{lhs: target, values: vals})
		}
	}
	if len(flt.NotIn) > 0 {
		vals, err := normalizeAll(flt.NotIn, normalize)
		if err != nil {
			return nil, err
		}
		out = append(out, membership{lhs: target, values: vals, not: true})
	}

	for _, c := range []struct {
		op    string
		bound any
	}{{"<", flt.Lt}, {"<=", flt.Lte}, {">", flt.Gt}, {">=", flt.Gte}} {
		if c.bound == nil {
			continue
		}
		v, err := normalize(c.bound)
		if err != nil {
			return nil, err
		}
		out = append(out, comparison{target, c.op, v})
	}

	like := "LIKE"
	if insensitive {
		like = "ILIKE"
	}
	if flt.Contains != nil {
		out = append(out, comparison{lhs, like, "%" + escapeLike(*flt.Contains) + "%"})
	}
	if flt.StartsWith != nil {
		out = append(out, comparison{lhs, like, escapeLike(*flt.StartsWith) + "%"})
	}
	if flt.EndsWith != nil {
		out = append(out, comparison{lhs, like, "%" + escapeLike(*flt.EndsWith)})
	}

	if flt.Not != nil {
		inner := *flt.Not
		if inner.Mode == "" {
			inner.Mode = flt.Mode
		}
		sub, err := compileFilter(f, lhs, inner)
		if err != nil {
			return nil, err
		}
		if len(sub) > 0 {
			out = append(out, negation{and(sub...)})
		}
	}
	return out, nil
}

func normalizeAll(vs []any, normalize func(any) (any, error)) ([]any, error) {
	out := make([]any, len(vs))
	for i, v := range vs {
		x, err := normalize(v)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

// compileWhere turns w into a single expression, or nil when w is empty
func compileWhere(m *schema.Model, w query.Where) (clause.Expression, error) {
	var parts []clause.Expression
	for _, name := range schema.SortedFieldNames(w.Fields) {
		f, ok := m.Field(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %q on %s", name, m.Name)
		}
		exprs, err := compileFilter(f, columnRef{column(f)}, w.Fields[name])
		if err != nil {
			return nil, err
		}
		parts = append(parts, exprs...)
	}

	for _, sub := range w.AND {
		e, err := compileWhere(m, sub)
		if err != nil {
			return nil, err
		}
		if e != nil {
			parts = append(parts, e)
		}
	}

	if w.OR != nil {
		if len(w.OR) == 0 {
			parts = append(parts, sqlFalse)
		} else {
			alts := make([]clause.Expression, 0, len(w.OR))
			for _, sub := range w.OR {
				e, err := compileWhere(m, sub)
				if err != nil {
					return nil, err
				}
				if e == nil {
					e = sqlTrue
				}
				alts = append(alts, e)
			}
			parts = append(parts, or(alts...))
		}
	}

	for _, sub := range w.NOT {
		e, err := compileWhere(m, sub)
		if err != nil {
			return nil, err
		}
		if e == nil {
			e = sqlTrue
		}
		parts = append(parts, negation{e})
	}

	if len(parts) == 0 {
		return nil, nil
	}
	return and(parts...), nil
}

// compileHaving turns a groupBy having tree into a single expression
func compileHaving(m *schema.Model, h query.Having) (clause.Expression, error) {
	var parts []clause.Expression
	for _, name := range schema.SortedFieldNames(h.Fields) {
		f, ok := m.Field(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %q on %s", name, m.Name)
		}
		exprs, err := compileFilter(f, columnRef{column(f)}, h.Fields[name])
		if err != nil {
			return nil, err
		}
		parts = append(parts, exprs...)
	}

	for _, af := range h.Aggregates {
		lhs, f, err := aggregateOperand(m, af.Func, af.Field)
		if err != nil {
			return nil, err
		}
		synthetic := &schema.Field{Name: string(af.Func) + "." + af.Field, Kind: schema.KindInt}
		if f != nil {
			synthetic.Kind = schema.AggregateFieldKind(af.Func, f)
			synthetic.EnumName = f.EnumName
			synthetic.EnumValues = f.EnumValues
		}
		exprs, err := compileFilter(synthetic, lhs, af.Filter)
		if err != nil {
			return nil, err
		}
		parts = append(parts, exprs...)
	}

	for _, sub := range h.AND {
		e, err := compileHaving(m, sub)
		if err != nil {
			return nil, err
		}
		if e != nil {
			parts = append(parts, e)
		}
	}
	if h.OR != nil {
		if len(h.OR) == 0 {
			parts = append(parts, sqlFalse)
		} else {
			alts := make([]clause.Expression, 0, len(h.OR))
			for _, sub := range h.OR {
				e, err := compileHaving(m, sub)
				if err != nil {
					return nil, err
				}
				if e == nil {
					e = sqlTrue
				}
				alts = append(alts, e)
			}
			parts = append(parts, or(alts...))
		}
	}
	for _, sub := range h.NOT {
		e, err := compileHaving(m, sub)
		if err != nil {
			return nil, err
		}
		if e == nil {
			e = sqlTrue
		}
		parts = append(parts, negation{e})
	}

	if len(parts) == 0 {
		return nil, nil
	}
	return and(parts...), nil
}

// compileData turns an update payload into column assignments. Atomic
// operations become expressions over the current column value.
func compileData(m *schema.Model, data query.Data) (map[string]any, error) {
	out := make(map[string]any, len(data))
	for _, name := range slices.Sorted(maps.Keys(data)) {
		f, ok := m.Field(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %q on %s", name, m.Name)
		}
		v, err := assignment(m, f, data[name])
		if err != nil {
			return nil, err
		}
		out[f.Column] = v
	}
	return out, nil
}

func assignment(m *schema.Model, f *schema.Field, value any) (any, error) {
	if value == nil || query.IsNull(value) {
		return nil, nil
	}
	op, isOp := value.(query.Op)
	if !isOp {
		return schema.NormalizeValue(f, value)
	}
	if op.Kind == query.OpSet {
		return assignment(m, f, op.Value)
	}

	operand, err := schema.NormalizeValue(f, op.Value)
	if err != nil {
		return nil, err
	}
	current := clause.Column{Table: m.Table, Name: f.Column}
	switch op.Kind {
	case query.OpIncrement:
		return gorm.Expr("? + ?", current, operand), nil
	case query.OpDecrement:
		return gorm.Expr("? - ?", current, operand), nil
	case query.OpMultiply:
		return gorm.Expr("? * ?", current, operand), nil
	case query.OpDivide:
		return gorm.Expr("? / ?", current, operand), nil
	}
	return nil, fmt.Errorf("unknown update operation %q", op.Kind)
}

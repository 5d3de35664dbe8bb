// Package query holds the argument and result shapes of the data access
// contract: filters, orderings, pagination, aggregation and update data.
// The shapes are model-agnostic; field names are the JSON names of entity
// fields and are checked against the schema registry before any SQL is built.
package query

// Mode selects string comparison semantics
type Mode string

const (
	ModeDefault     Mode = "default"
	ModeInsensitive Mode = "insensitive"
)

// NullValue is the type of Null
type NullValue struct{}

// Null matches or assigns SQL NULL. It is accepted by Filter.Equals on
// nullable fields and as an update value for nullable fields.
var Null = NullValue{}

// IsNull reports whether v is the Null sentinel
func IsNull(v any) bool {
	_, ok := v.(NullValue)
	return ok
}

// Filter is the predicate applied to one scalar field. Unset members do not
// constrain the field; set members are combined with AND.
type Filter struct {
	Equals     any
	In         []any
	NotIn      []any
	Lt         any
	Lte        any
	Gt         any
	Gte        any
	Contains   *string
	StartsWith *string
	EndsWith   *string
	Mode       Mode
	Not        *Filter
}

// Where is a recursive filter over the scalar fields of one model
type Where struct {
	Fields map[string]Filter
	AND    []Where
	OR     []Where
	NOT    []Where
}

// IsEmpty reports whether w places no constraint at all
func (w Where) IsEmpty() bool {
	return len(w.Fields) == 0 && len(w.AND) == 0 && len(w.OR) == 0 && len(w.NOT) == 0
}

// With returns a copy of w with an additional field filter. An existing
// filter on the same field is kept by moving both under AND.
func (w Where) With(field string, f Filter) Where {
	out := Where{
		Fields: make(map[string]Filter, len(w.Fields)+1),
		AND:    append([]Where(nil), w.AND...),
		OR:     w.OR,
		NOT:    w.NOT,
	}
	for k, v := range w.Fields {
		out.Fields[k] = v
	}
	if _, exists := out.Fields[field]; exists {
		out.AND = append(out.AND, Field(field, f))
		return out
	}
	out.Fields[field] = f
	return out
}

// Field builds a single-field Where
func Field(name string, f Filter) Where {
	return Where{Fields: map[string]Filter{name: f}}
}

// Fields builds a Where from several field filters
func Fields(filters map[string]Filter) Where {
	return Where{Fields: filters}
}

// And combines predicates with AND
func And(ws ...Where) Where { return Where{AND: ws} }

// Or combines predicates with OR
func Or(ws ...Where) Where { return Where{OR: ws} }

// Not negates every predicate (NOT a AND NOT b)
func Not(ws ...Where) Where { return Where{NOT: ws} }

// Unique builds a unique-key predicate on a single field
func Unique(field string, value any) Where {
	return Field(field, Equals(value))
}

// UniqueBy builds a unique-key predicate over several fields, as used by
// compound keys such as (budgetId, categoryId).
func UniqueBy(values map[string]any) Where {
	w := Where{Fields: make(map[string]Filter, len(values))}
	for k, v := range values {
		w.Fields[k] = Equals(v)
	}
	return w
}

// Equals matches rows whose field equals v (or IS NULL for Null)
func Equals(v any) Filter { return Filter{Equals: v} }

// NotEquals matches rows whose field differs from v (or IS NOT NULL for Null)
func NotEquals(v any) Filter { return Filter{Not: &Filter{Equals: v}} }

// In matches rows whose field is one of vs. An empty list matches nothing.
func In(vs ...any) Filter { return Filter{In: vs} }

// NotIn matches rows whose field is none of vs. An empty list matches everything.
func NotIn(vs ...any) Filter { return Filter{NotIn: vs} }

// Lt matches field < v
func Lt(v any) Filter { return Filter{Lt: v} }

// Lte matches field <= v
func Lte(v any) Filter { return Filter{Lte: v} }

// Gt matches field > v
func Gt(v any) Filter { return Filter{Gt: v} }

// Gte matches field >= v
func Gte(v any) Filter { return Filter{Gte: v} }

// Between matches lo <= field <= hi
func Between(lo, hi any) Filter { return Filter{Gte: lo, Lte: hi} }

// Contains matches strings containing s
func Contains(s string) Filter { return Filter{Contains: &s} }

// StartsWith matches strings with prefix s
func StartsWith(s string) Filter { return Filter{StartsWith: &s} }

// EndsWith matches strings with suffix s
func EndsWith(s string) Filter { return Filter{EndsWith: &s} }

// Insensitive returns f with case-insensitive string matching
func (f Filter) Insensitive() Filter {
	f.Mode = ModeInsensitive
	return f
}

package query

// SortOrder is the direction of an ordering
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// NullsOrder places NULLs before or after other values
type NullsOrder string

const (
	NullsFirst NullsOrder = "first"
	NullsLast  NullsOrder = "last"
)

// AggregateFunc names an aggregate
type AggregateFunc string

const (
	AggCount AggregateFunc = "_count"
	AggAvg   AggregateFunc = "_avg"
	AggSum   AggregateFunc = "_sum"
	AggMin   AggregateFunc = "_min"
	AggMax   AggregateFunc = "_max"
)

// AllRows is the pseudo field counted by COUNT(*)
const AllRows = "_all"

// OrderBy is one entry of an ordering. Aggregate orders by an aggregate of
// Field and is only accepted by GroupBy.
type OrderBy struct {
	Field     string
	Sort      SortOrder
	Nulls     NullsOrder
	Aggregate AggregateFunc
}

// Asc orders by field ascending
func Asc(field string) OrderBy { return OrderBy{Field: field, Sort: SortAsc} }

// Desc orders by field descending
func Desc(field string) OrderBy { return OrderBy{Field: field, Sort: SortDesc} }

// NullsFirst returns o with NULLs sorted first
func (o OrderBy) NullsFirst() OrderBy {
	o.Nulls = NullsFirst
	return o
}

// NullsLast returns o with NULLs sorted last
func (o OrderBy) NullsLast() OrderBy {
	o.Nulls = NullsLast
	return o
}

// IsDesc reports whether the ordering is descending
func (o OrderBy) IsDesc() bool { return o.Sort == SortDesc }

// Reversed flips the direction and the NULL placement of o
func (o OrderBy) Reversed() OrderBy {
	if o.IsDesc() {
		o.Sort = SortAsc
	} else {
		o.Sort = SortDesc
	}
	switch o.Nulls {
	case NullsFirst:
		o.Nulls = NullsLast
	case NullsLast:
		o.Nulls = NullsFirst
	}
	return o
}

// OrderByAggregate orders groupBy rows by an aggregate of field
func OrderByAggregate(fn AggregateFunc, field string, sort SortOrder) OrderBy {
	return OrderBy{Field: field, Sort: sort, Aggregate: fn}
}

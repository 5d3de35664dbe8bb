package query

// Include loads a relation alongside the parent rows. Where, OrderBy and
// Select apply to to-many relations; paginated relation reads go through
// the relation loaders instead.
type Include struct {
	Relation string
	Where    *Where
	OrderBy  []OrderBy
	Select   []string
	Include  []Include
}

// UniqueArgs addresses at most one row by a unique key
type UniqueArgs struct {
	Where   Where
	Select  []string
	Include []Include
}

// FindArgs are the arguments of FindFirst and FindMany.
//
// Take may be negative: the |Take| rows ending at Cursor (or at the end of
// the ordering when Cursor is nil) are returned, still in OrderBy order.
type FindArgs struct {
	Where    Where
	OrderBy  []OrderBy
	Cursor   *Where
	Take     *int
	Skip     int
	Distinct []string
	Select   []string
	Include  []Include
}

// Int returns a pointer to n, for Take
func Int(n int) *int { return &n }

// CreateManyOptions tunes CreateMany
type CreateManyOptions struct {
	// SkipDuplicates drops rows that collide with any unique constraint
	// instead of failing the batch.
	SkipDuplicates bool
}

// Aggregates selects the aggregate columns of Aggregate and GroupBy.
// Count accepts AllRows in addition to field names.
type Aggregates struct {
	Count []string
	Avg   []string
	Sum   []string
	Min   []string
	Max   []string
}

// IsEmpty reports whether no aggregate was requested
func (a Aggregates) IsEmpty() bool {
	return len(a.Count)+len(a.Avg)+len(a.Sum)+len(a.Min)+len(a.Max) == 0
}

// AggregateArgs are the arguments of Aggregate. The aggregates run over the
// rows FindMany would return for the same window arguments.
type AggregateArgs struct {
	Where   Where
	OrderBy []OrderBy
	Cursor  *Where
	Take    *int
	Skip    int
	Aggregates
}

// AggregateFilter filters groups on an aggregate value
type AggregateFilter struct {
	Func   AggregateFunc
	Field  string
	Filter Filter
}

// Having filters groupBy rows. Fields may only name fields listed in By.
type Having struct {
	Fields     map[string]Filter
	Aggregates []AggregateFilter
	AND        []Having
	OR         []Having
	NOT        []Having
}

// IsEmpty reports whether h places no constraint
func (h Having) IsEmpty() bool {
	return len(h.Fields) == 0 && len(h.Aggregates) == 0 && len(h.AND) == 0 && len(h.OR) == 0 && len(h.NOT) == 0
}

// GroupByArgs are the arguments of GroupBy
type GroupByArgs struct {
	By      []string
	Where   Where
	Having  *Having
	OrderBy []OrderBy
	Take    *int
	Skip    int
	Aggregates
}

// CountArgs are the arguments of Count. Select lists fields whose non-null
// values are counted; AllRows counts every row.
type CountArgs struct {
	Where   Where
	OrderBy []OrderBy
	Cursor  *Where
	Take    *int
	Skip    int
	Select  []string
}

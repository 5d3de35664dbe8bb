package query

import "github.com/shopspring/decimal"

// AggregateResult holds the aggregates keyed by field name. Avg and Sum are
// exact decimals and are invalid (NULL) over an empty set. Min and Max hold
// values of the field's Go kind, or nil over an empty set.
type AggregateResult struct {
	Count map[string]int64
	Avg   map[string]decimal.NullDecimal
	Sum   map[string]decimal.NullDecimal
	Min   map[string]any
	Max   map[string]any
}

// NewAggregateResult returns a result with all maps allocated
func NewAggregateResult() AggregateResult {
	return AggregateResult{
		Count: map[string]int64{},
		Avg:   map[string]decimal.NullDecimal{},
		Sum:   map[string]decimal.NullDecimal{},
		Min:   map[string]any{},
		Max:   map[string]any{},
	}
}

// SumOf returns the sum of field, or zero when absent or NULL
func (r AggregateResult) SumOf(field string) decimal.Decimal {
	if v, ok := r.Sum[field]; ok && v.Valid {
		return v.Decimal
	}
	return decimal.Zero
}

// GroupRow is one group of a GroupBy result. Keys holds the By field values.
type GroupRow struct {
	Keys map[string]any
	AggregateResult
}

// CountResult is the result of Count
type CountResult struct {
	All    int64
	Fields map[string]int64
}

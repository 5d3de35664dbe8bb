package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
)

// aggregateItem is one aggregate column of a SELECT
type aggregateItem struct {
	fn    query.AggregateFunc
	name  string        // field name, or query.AllRows
	field *schema.Field // nil for COUNT(*)
}

// aggregateItems lists the requested aggregates in a fixed order
func aggregateItems(m *schema.Model, a query.Aggregates) ([]aggregateItem, error) {
	var items []aggregateItem
	for _, g := range []struct {
		fn     query.AggregateFunc
		fields []string
	}{
		{query.AggCount, a.Count},
		{query.AggAvg, a.Avg},
		{query.AggSum, a.Sum},
		{query.AggMin, a.Min},
		{query.AggMax, a.Max},
	} {
		for _, name := range g.fields {
			if g.fn == query.AggCount && name == query.AllRows {
				items = append(items, aggregateItem{fn: g.fn, name: name})
				continue
			}
			f, ok := m.Field(name)
			if !ok {
				return nil, fmt.Errorf("unknown field %q on %s", name, m.Name)
			}
			items = append(items, aggregateItem{fn: g.fn, name: name, field: f})
		}
	}
	return items, nil
}

// operand renders the aggregate; qualified selects current-table columns,
// otherwise bare column names of a derived table are used
func (it aggregateItem) operand(qualified bool) operand {
	if it.field == nil {
		return aggregateRef{fn: "COUNT"}
	}
	col := clause.Column{Name: it.field.Column}
	if qualified {
		col = column(it.field)
	}
	return aggregateRef{fn: aggregateSQL(it.fn), col: &col}
}

// scanTarget returns a destination for a value of kind
func scanTarget(kind schema.Kind) any {
	switch kind {
	case schema.KindDecimal:
		return new(decimal.NullDecimal)
	case schema.KindInt:
		return new(sql.NullInt64)
	case schema.KindFloat:
		return new(sql.NullFloat64)
	case schema.KindBool:
		return new(sql.NullBool)
	case schema.KindDateTime:
		return new(sql.NullTime)
	default:
		return new(sql.NullString)
	}
}

// scannedValue unwraps a destination made by scanTarget; NULL becomes nil
func scannedValue(dest any) any {
	switch v := dest.(type) {
	case *decimal.NullDecimal:
		if v.Valid {
			return v.Decimal
		}
	case *sql.NullInt64:
		if v.Valid {
			return v.Int64
		}
	case *sql.NullFloat64:
		if v.Valid {
			return v.Float64
		}
	case *sql.NullBool:
		if v.Valid {
			return v.Bool
		}
	case *sql.NullTime:
		if v.Valid {
			return v.Time
		}
	case *sql.NullString:
		if v.Valid {
			return v.String
		}
	case *int64:
		return *v
	}
	return nil
}

func (it aggregateItem) target() any {
	switch it.fn {
	case query.AggCount:
		return new(int64)
	case query.AggAvg, query.AggSum:
		return new(decimal.NullDecimal)
	default:
		return scanTarget(it.field.Kind)
	}
}

// store records the scanned value of it into r
func (it aggregateItem) store(r *query.AggregateResult, dest any) {
	switch it.fn {
	case query.AggCount:
		r.Count[it.name] = *dest.(*int64)
	case query.AggAvg:
		r.Avg[it.name] = *dest.(*decimal.NullDecimal)
	case query.AggSum:
		r.Sum[it.name] = *dest.(*decimal.NullDecimal)
	case query.AggMin:
		r.Min[it.name] = scannedValue(dest)
	case query.AggMax:
		r.Max[it.name] = scannedValue(dest)
	}
}

// windowed returns the rows selected by a window as a derived table source
func (d *Delegate[T]) windowed(ctx context.Context, op string, w window) (*gorm.DB, error) {
	sub, _, empty, err := d.applyWindow(ctx, op, d.conn(ctx).Model(new(T)), w)
	if err != nil {
		return nil, err
	}
	if empty || (w.take != nil && *w.take == 0) {
		sub = filtered(sub, sqlFalse)
	}
	return d.conn(ctx).Table("(?) AS agg", sub), nil
}

// Aggregate computes count, avg, sum, min and max over the rows FindMany
// would return for the same window. Avg and sum are exact decimals.
func (d *Delegate[T]) Aggregate(ctx context.Context, args query.AggregateArgs) (query.AggregateResult, error) {
	const op = "aggregate"
	result := query.NewAggregateResult()
	if err := d.model.ValidateAggregateArgs(op, args); err != nil {
		return result, d.fail(op, err)
	}
	items, err := aggregateItems(d.model, args.Aggregates)
	if err != nil {
		return result, d.invalid(op, "", "%v", err)
	}
	if len(items) == 0 {
		return result, nil
	}

	d.logger.Debug("Aggregating rows", map[string]any{"model": d.model.Name, "aggregates": len(items)})

	source, err := d.windowed(ctx, op, window{
		where:   args.Where,
		orderBy: args.OrderBy,
		cursor:  args.Cursor,
		take:    args.Take,
		skip:    args.Skip,
	})
	if err != nil {
		return result, d.fail(op, err)
	}

	sel := make(selectList, len(items))
	dests := make([]any, len(items))
	for i, it := range items {
		sel[i] = it.operand(false)
		dests[i] = it.target()
	}

	rows, err := source.Clauses(clause.Select{Expression: sel}).Rows()
	if err != nil {
		return result, d.fail(op, err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(dests...); err != nil {
			return result, d.fail(op, err)
		}
	}
	if err := rows.Err(); err != nil {
		return result, d.fail(op, err)
	}
	for i, it := range items {
		it.store(&result, dests[i])
	}
	return result, nil
}

// Count counts the rows FindMany would return for the same window. With no
// Select it counts all rows; selected fields count their non-null values.
func (d *Delegate[T]) Count(ctx context.Context, args query.CountArgs) (query.CountResult, error) {
	const op = "count"
	result := query.CountResult{Fields: map[string]int64{}}
	if err := d.model.ValidateCountArgs(op, args); err != nil {
		return result, d.fail(op, err)
	}

	names := args.Select
	if len(names) == 0 {
		names = []string{query.AllRows}
	}
	items, err := aggregateItems(d.model, query.Aggregates{Count: names})
	if err != nil {
		return result, d.invalid(op, "select", "%v", err)
	}

	d.logger.Debug("Counting rows", map[string]any{"model": d.model.Name})

	source, err := d.windowed(ctx, op, window{
		where:   args.Where,
		orderBy: args.OrderBy,
		cursor:  args.Cursor,
		take:    args.Take,
		skip:    args.Skip,
	})
	if err != nil {
		return result, d.fail(op, err)
	}

	sel := make(selectList, len(items))
	counts := make([]any, len(items))
	for i, it := range items {
		sel[i] = it.operand(false)
		counts[i] = new(int64)
	}

	if err := source.Clauses(clause.Select{Expression: sel}).Row().Scan(counts...); err != nil {
		return result, d.fail(op, err)
	}
	for i, it := range items {
		n := *counts[i].(*int64)
		if it.name == query.AllRows {
			result.All = n
		} else {
			result.Fields[it.name] = n
		}
	}
	return result, nil
}

// GroupBy partitions the rows matching args.Where by the By fields and
// aggregates each group. Having filters groups; OrderBy may order by By
// fields or by aggregates.
func (d *Delegate[T]) GroupBy(ctx context.Context, args query.GroupByArgs) ([]query.GroupRow, error) {
	const op = "groupBy"
	if err := d.model.ValidateGroupByArgs(op, args); err != nil {
		return nil, d.fail(op, err)
	}
	groups := []query.GroupRow{}
	if args.Take != nil && *args.Take == 0 {
		return groups, nil
	}

	by := make([]*schema.Field, len(args.By))
	byCols := make([]clause.Column, len(args.By))
	sel := make(selectList, 0, len(args.By))
	for i, name := range args.By {
		f, _ := d.model.Field(name)
		by[i] = f
		byCols[i] = column(f)
		sel = append(sel, columnRef{byCols[i]})
	}
	items, err := aggregateItems(d.model, args.Aggregates)
	if err != nil {
		return nil, d.invalid(op, "", "%v", err)
	}
	for _, it := range items {
		sel = append(sel, it.operand(true))
	}

	whereExpr, err := compileWhere(d.model, args.Where)
	if err != nil {
		return nil, d.invalid(op, "where", "%v", err)
	}
	groupBy := clause.GroupBy{Columns: byCols}
	if args.Having != nil {
		havingExpr, err := compileHaving(d.model, *args.Having)
		if err != nil {
			return nil, d.invalid(op, "having", "%v", err)
		}
		if havingExpr != nil {
			groupBy.Having = []clause.Expression{havingExpr}
		}
	}

	d.logger.Debug("Grouping rows", map[string]any{"model": d.model.Name, "by": args.By})

	tx := filtered(d.conn(ctx).Model(new(T)), whereExpr).
		Clauses(groupBy, clause.Select{Expression: sel})
	if len(args.OrderBy) > 0 {
		terms, err := orderTerms(d.model, args.OrderBy)
		if err != nil {
			return nil, d.invalid(op, "orderBy", "%v", err)
		}
		tx = tx.Clauses(clause.OrderBy{Expression: terms})
	}
	if args.Skip > 0 {
		tx = tx.Offset(args.Skip)
	}
	if args.Take != nil {
		tx = tx.Limit(*args.Take)
	}

	rows, err := tx.Rows()
	if err != nil {
		return nil, d.fail(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		dests := make([]any, 0, len(by)+len(items))
		for _, f := range by {
			dests = append(dests, scanTarget(f.Kind))
		}
		for _, it := range items {
			dests = append(dests, it.target())
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, d.fail(op, err)
		}

		g := query.GroupRow{Keys: make(map[string]any, len(by)), AggregateResult: query.NewAggregateResult()}
		for i, f := range by {
			g.Keys[f.Name] = scannedValue(dests[i])
		}
		for i, it := range items {
			it.store(&g.AggregateResult, dests[len(by)+i])
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, d.fail(op, err)
	}
	return groups, nil
}

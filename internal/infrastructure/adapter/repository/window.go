package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
)

// window selects and orders the rows of a read: filter, ordering, cursor,
// pagination and distinct.
type window struct {
	where    query.Where
	orderBy  []query.OrderBy
	cursor   *query.Where
	take     *int
	skip     int
	distinct []string
}

// orderTerm is one ORDER BY entry
type orderTerm struct {
	lhs   operand
	desc  bool
	nulls query.NullsOrder
}

type orderList []orderTerm

func (l orderList) Build(b clause.Builder) {
	for i, t := range l {
		if i > 0 {
			b.WriteString(", ")
		}
		t.lhs.build(b)
		if t.desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
		switch t.nulls {
		case query.NullsFirst:
			b.WriteString(" NULLS FIRST")
		case query.NullsLast:
			b.WriteString(" NULLS LAST")
		}
	}
}

// selectList is a SELECT column list of arbitrary operands
type selectList []operand

func (l selectList) Build(b clause.Builder) {
	for i, o := range l {
		if i > 0 {
			b.WriteString(", ")
		}
		o.build(b)
	}
}

// distinctOn selects cols from the first row of each group of on
type distinctOn struct {
	on   []clause.Column
	cols []clause.Column
}

func (d distinctOn) Build(b clause.Builder) {
	b.WriteString("DISTINCT ON (")
	for i, c := range d.on {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteQuoted(c)
	}
	b.WriteString(") ")
	for i, c := range d.cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteQuoted(c)
	}
}

// tupleIn is (cols) IN (subquery)
type tupleIn struct {
	cols []clause.Column
	sub  *gorm.DB
}

func (t tupleIn) Build(b clause.Builder) {
	if len(t.cols) > 1 {
		b.WriteByte('(')
	}
	for i, c := range t.cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteQuoted(c)
	}
	if len(t.cols) > 1 {
		b.WriteByte(')')
	}
	b.WriteString(" IN (")
	b.AddVar(b, t.sub)
	b.WriteByte(')')
}

// orderTerms converts scalar orderings of m into ORDER BY terms
func orderTerms(m *schema.Model, orders []query.OrderBy) (orderList, error) {
	terms := make(orderList, 0, len(orders))
	for _, o := range orders {
		if o.Aggregate != "" {
			lhs, _, err := aggregateOperand(m, o.Aggregate, o.Field)
			if err != nil {
				return nil, err
			}
			terms = append(terms, orderTerm{lhs: lhs, desc: o.IsDesc()})
			continue
		}
		f, ok := m.Field(o.Field)
		if !ok {
			return nil, fmt.Errorf("unknown field %q on %s", o.Field, m.Name)
		}
		terms = append(terms, orderTerm{lhs: columnRef{column(f)}, desc: o.IsDesc(), nulls: o.Nulls})
	}
	return terms, nil
}

// withTiebreaker appends the primary key fields missing from orders, so
// that the ordering is total and a cursor position is unambiguous
func withTiebreaker(m *schema.Model, orders []query.OrderBy) []query.OrderBy {
	out := append([]query.OrderBy(nil), orders...)
	for _, pk := range m.PrimaryKey {
		present := false
		for _, o := range orders {
			if o.Field == pk.Name && o.Aggregate == "" {
				present = true
				break
			}
		}
		if !present {
			out = append(out, query.Asc(pk.Name))
		}
	}
	return out
}

// nullsSortLast reports whether NULLs come after every value under o.
// PostgreSQL sorts NULLs as larger than any value by default.
func nullsSortLast(o query.OrderBy) bool {
	switch o.Nulls {
	case query.NullsFirst:
		return false
	case query.NullsLast:
		return true
	default:
		return !o.IsDesc()
	}
}

// applyWindow adds the filter, ordering and pagination of w to tx.
//
// backward reports that rows are fetched in reverse order (negative take)
// and must be reversed by the caller. empty reports that the cursor row does
// not exist, in which case the window is empty.
func (d *Delegate[T]) applyWindow(ctx context.Context, op string, tx *gorm.DB, w window) (_ *gorm.DB, backward, empty bool, err error) {
	whereExpr, err := compileWhere(d.model, w.where)
	if err != nil {
		return nil, false, false, errs.NewValidationError(d.model.Name, op, "where", "%v", err)
	}
	tx = filtered(tx, whereExpr)

	orders := w.orderBy
	backward = w.take != nil && *w.take < 0
	if w.cursor != nil || backward || len(w.distinct) > 0 {
		orders = withTiebreaker(d.model, orders)
	}
	forward := orders
	if backward {
		reversed := make([]query.OrderBy, len(orders))
		for i, o := range orders {
			reversed[i] = o.Reversed()
		}
		orders = reversed
	}

	if w.cursor != nil {
		pred, found, err := d.cursorPredicate(ctx, op, *w.cursor, orders)
		if err != nil {
			return nil, false, false, err
		}
		if !found {
			return tx, backward, true, nil
		}
		tx = filtered(tx, pred)
	}

	if len(w.distinct) > 0 {
		sub, err := d.distinctSubquery(ctx, whereExpr, w.distinct, forward)
		if err != nil {
			return nil, false, false, errs.NewValidationError(d.model.Name, op, "distinct", "%v", err)
		}
		tx = filtered(tx, sub)
	}

	if len(orders) > 0 {
		terms, err := orderTerms(d.model, orders)
		if err != nil {
			return nil, false, false, errs.NewValidationError(d.model.Name, op, "orderBy", "%v", err)
		}
		tx = tx.Clauses(clause.OrderBy{Expression: terms})
	}

	if w.skip > 0 {
		tx = tx.Offset(w.skip)
	}
	if w.take != nil {
		n := *w.take
		if n < 0 {
			n = -n
		}
		tx = tx.Limit(n)
	}
	return tx, backward, false, nil
}

// cursorPredicate loads the cursor row and returns the keyset condition
// selecting it and every row after it under orders. The ordering must end in
// the primary key. found is false when no row matches cursor.
func (d *Delegate[T]) cursorPredicate(ctx context.Context, op string, cursor query.Where, orders []query.OrderBy) (_ clause.Expression, found bool, err error) {
	cursorExpr, err := compileWhere(d.model, cursor)
	if err != nil {
		return nil, false, errs.NewValidationError(d.model.Name, op, "cursor", "%v", err)
	}

	var rows []T
	if err := filtered(d.conn(ctx).Model(new(T)), cursorExpr).Limit(1).Find(&rows).Error; err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	var (
		alternatives []clause.Expression
		prefix       []clause.Expression
	)
	for _, o := range orders {
		f, ok := d.model.Field(o.Field)
		if !ok {
			return nil, false, errs.NewValidationError(d.model.Name, op, "orderBy", "unknown field %q", o.Field)
		}
		raw := f.Value(&rows[0])
		if raw == nil {
			return nil, false, errs.NewValidationError(d.model.Name, op, "cursor",
				"the cursor row has no value for ordering field %s; cursors require non-null ordering values", f.Name)
		}
		val, err := schema.NormalizeValue(f, raw)
		if err != nil {
			return nil, false, errs.NewValidationError(d.model.Name, op, "cursor", "%v", err)
		}

		lhs := columnRef{column(f)}
		cmp := ">"
		if o.IsDesc() {
			cmp = "<"
		}
		var after clause.Expression = comparison{lhs, cmp, val}
		if f.Nullable && nullsSortLast(o) {
			after = or(after, nullCheck{lhs: lhs})
		}

		step := append(append([]clause.Expression(nil), prefix...), after)
		alternatives = append(alternatives, and(step...))
		prefix = append(prefix, comparison{lhs, "=", val})
	}
	// the cursor row itself
	alternatives = append(alternatives, and(prefix...))
	return or(alternatives...), true, nil
}

// distinctSubquery returns "pk IN (SELECT DISTINCT ON (fields) pk ...)",
// keeping the first row of each combination of fields under orders
func (d *Delegate[T]) distinctSubquery(ctx context.Context, whereExpr clause.Expression, fields []string, orders []query.OrderBy) (clause.Expression, error) {
	var on []clause.Column
	leading := make([]query.OrderBy, 0, len(fields)+len(orders))
	for _, name := range fields {
		f, ok := d.model.Field(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %q on %s", name, d.model.Name)
		}
		on = append(on, column(f))
		leading = append(leading, query.Asc(name))
	}
	terms, err := orderTerms(d.model, append(leading, orders...))
	if err != nil {
		return nil, err
	}

	pk := make([]clause.Column, len(d.model.PrimaryKey))
	for i, f := range d.model.PrimaryKey {
		pk[i] = column(f)
	}

	sub := filtered(d.conn(ctx).Model(new(T)), whereExpr).
		Clauses(clause.Select{Expression: distinctOn{on: on, cols: pk}}).
		Clauses(clause.OrderBy{Expression: terms})
	return tupleIn{cols: pk, sub: sub}, nil
}

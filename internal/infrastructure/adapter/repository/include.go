package repository

import (
	"fmt"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
)

// applyProjection restricts the selected columns or preloads relations
func (d *Delegate[T]) applyProjection(tx *gorm.DB, m *schema.Model, sel []string, incs []query.Include) (*gorm.DB, error) {
	if len(sel) > 0 {
		cols, err := selectColumns(m, sel, nil)
		if err != nil {
			return nil, err
		}
		tx = tx.Select(cols)
	}
	return applyIncludes(tx, m, "", incs)
}

// selectColumns maps field names to columns, adding the required fields
func selectColumns(m *schema.Model, names []string, required []*schema.Field) ([]string, error) {
	cols := make([]string, 0, len(names)+len(required))
	for _, name := range names {
		f, ok := m.Field(name)
		if !ok {
			return nil, fmt.Errorf("unknown field %q on %s", name, m.Name)
		}
		if !slices.Contains(cols, f.Column) {
			cols = append(cols, f.Column)
		}
	}
	for _, f := range required {
		if !slices.Contains(cols, f.Column) {
			cols = append(cols, f.Column)
		}
	}
	return cols, nil
}

// applyIncludes preloads each included relation, with its filter, ordering
// and column selection, then recurses into nested includes
func applyIncludes(tx *gorm.DB, m *schema.Model, prefix string, incs []query.Include) (*gorm.DB, error) {
	for _, inc := range incs {
		rel, ok := m.Relation(inc.Relation)
		if !ok {
			return nil, fmt.Errorf("unknown relation %q on %s", inc.Relation, m.Name)
		}
		target := rel.Target

		var whereExpr clause.Expression
		if inc.Where != nil {
			e, err := compileWhere(target, *inc.Where)
			if err != nil {
				return nil, err
			}
			whereExpr = e
		}
		var terms orderList
		if len(inc.OrderBy) > 0 {
			t, err := orderTerms(target, inc.OrderBy)
			if err != nil {
				return nil, err
			}
			terms = t
		}
		var cols []string
		if len(inc.Select) > 0 {
			// the keys gorm matches children to parents with
			required := append(append([]*schema.Field(nil), target.PrimaryKey...), rel.TargetFields...)
			c, err := selectColumns(target, inc.Select, required)
			if err != nil {
				return nil, err
			}
			cols = c
		}

		path := prefix + rel.GoName
		tx = tx.Preload(path, func(db *gorm.DB) *gorm.DB {
			db = filtered(db, whereExpr)
			if len(terms) > 0 {
				db = db.Clauses(clause.OrderBy{Expression: terms})
			}
			if len(cols) > 0 {
				db = db.Select(cols)
			}
			return db
		})

		var err error
		tx, err = applyIncludes(tx, target, path+".", inc.Include)
		if err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// RelatedWhere returns the filter selecting the rows of rel.Target related to
// parent, a *T or T of the model owning rel. ok is false when parent holds a
// null foreign key, so there is no related row.
func RelatedWhere(rel *schema.Relation, parent any) (_ query.Where, ok bool) {
	values := make(map[string]query.Filter, len(rel.LocalFields))
	for i, local := range rel.LocalFields {
		v := local.Value(parent)
		if v == nil {
			return query.Where{}, false
		}
		values[rel.TargetFields[i].Name] = query.Equals(v)
	}
	return query.Fields(values), true
}

package migration

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
)

// Constraint is a table constraint added with ALTER TABLE
type Constraint struct {
	Name       string
	Table      string
	Definition string
}

// LedgerConstraints adds the keys, foreign keys and checks that AutoMigrate
// does not express: composite ownership keys, referential actions, and enum
// and sign checks.
type LedgerConstraints struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewLedgerConstraints creates a new migration instance
func NewLedgerConstraints(db *gorm.DB, logger coreport.Logger) *LedgerConstraints {
	return &LedgerConstraints{
		db:     db,
		logger: logger,
	}
}

// Definitions lists every constraint in creation order. Keys come before the
// foreign keys that reference them.
func (m *LedgerConstraints) Definitions() ([]Constraint, error) {
	defs := []Constraint{
		{"accounts_id_user_id_key", "accounts", "UNIQUE (id, user_id)"},
		{"statements_id_account_id_user_id_key", "statements", "UNIQUE (id, account_id, user_id)"},

		{"accounts_user_id_fkey", "accounts", "FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE RESTRICT"},
		{"statements_user_id_fkey", "statements", "FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE RESTRICT"},
		{"statements_account_id_user_id_fkey", "statements", "FOREIGN KEY (account_id, user_id) REFERENCES accounts (id, user_id) ON DELETE RESTRICT"},
		{"transactions_user_id_fkey", "transactions", "FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE RESTRICT"},
		{"transactions_account_id_user_id_fkey", "transactions", "FOREIGN KEY (account_id, user_id) REFERENCES accounts (id, user_id) ON DELETE RESTRICT"},
		{"transactions_statement_id_fkey", "transactions", "FOREIGN KEY (statement_id, account_id, user_id) REFERENCES statements (id, account_id, user_id) ON DELETE SET NULL (statement_id)"},
		{"transactions_category_id_fkey", "transactions", "FOREIGN KEY (category_id) REFERENCES categories (id) ON DELETE SET NULL"},
		{"budgets_user_id_fkey", "budgets", "FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE RESTRICT"},
		{"budget_categories_budget_id_fkey", "budget_categories", "FOREIGN KEY (budget_id) REFERENCES budgets (id) ON DELETE CASCADE"},
		{"budget_categories_category_id_fkey", "budget_categories", "FOREIGN KEY (category_id) REFERENCES categories (id) ON DELETE CASCADE"},

		{"transactions_amount_check", "transactions", "CHECK (amount >= 0)"},
		{"budgets_total_amount_check", "budgets", "CHECK (total_amount >= 0)"},
		{"budgets_period_check", "budgets", "CHECK (period_end >= period_start)"},
		{"budget_categories_amount_check", "budget_categories", "CHECK (amount >= 0)"},
	}

	enums, err := enumChecks()
	if err != nil {
		return nil, err
	}
	return append(defs, enums...), nil
}

// enumChecks derives one CHECK per enum column from the entity metadata
func enumChecks() ([]Constraint, error) {
	registry, err := schema.NewRegistry(entity.Models()...)
	if err != nil {
		return nil, err
	}
	var out []Constraint
	for _, v := range entity.Models() {
		model, err := registry.Model(v)
		if err != nil {
			return nil, err
		}
		for _, f := range model.Fields {
			if len(f.EnumValues) == 0 {
				continue
			}
			quoted := make([]string, len(f.EnumValues))
			for i, value := range f.EnumValues {
				quoted[i] = "'" + strings.ReplaceAll(value, "'", "''") + "'"
			}
			out = append(out, Constraint{
				Name:       fmt.Sprintf("%s_%s_check", model.Table, f.Column),
				Table:      model.Table,
				Definition: fmt.Sprintf("CHECK (%s IN (%s))", f.Column, strings.Join(quoted, ", ")),
			})
		}
	}
	return out, nil
}

// Run adds every constraint that does not exist yet
func (m *LedgerConstraints) Run(ctx context.Context) error {
	m.logger.Info("Adding ledger constraints", nil)

	defs, err := m.Definitions()
	if err != nil {
		return err
	}
	existing, err := m.existingConstraints(ctx)
	if err != nil {
		return err
	}

	added := 0
	for _, c := range defs {
		if existing[c.Name] {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE %q ADD CONSTRAINT %q %s`, c.Table, c.Name, c.Definition)
		if err := m.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			m.logger.Error("Failed to add constraint", map[string]any{
				"constraint": c.Name,
				"table":      c.Table,
				"error":      err.Error(),
			})
			return fmt.Errorf("add constraint %s: %w", c.Name, err)
		}
		added++
	}

	m.logger.Info("Ledger constraints in place", map[string]any{"added": added, "total": len(defs)})
	return nil
}

// existingConstraints returns the constraint names of the current schema
func (m *LedgerConstraints) existingConstraints(ctx context.Context) (map[string]bool, error) {
	var names []string
	err := m.db.WithContext(ctx).Raw(`
		SELECT c.conname
		FROM pg_constraint c
		JOIN pg_namespace n ON n.oid = c.connamespace
		WHERE n.nspname = current_schema()
	`).Scan(&names).Error
	if err != nil {
		m.logger.Error("Failed to list constraints", map[string]any{"error": err.Error()})
		return nil, err
	}

	existing := make(map[string]bool, len(names))
	for _, name := range names {
		existing[name] = true
	}
	return existing, nil
}

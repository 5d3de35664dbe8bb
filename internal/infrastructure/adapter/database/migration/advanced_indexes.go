package migration

import (
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"gorm.io/gorm"
)

// AdvancedIndexManager manages PostgreSQL-specific advanced indexes
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

// advancedIndexes backs the ledger's common access paths
var advancedIndexes = []struct {
	name string
	sql  string
}{
	{
		// account history pages, ordered by date with id as tie-breaker
		"idx_transactions_account_date",
		`CREATE INDEX IF NOT EXISTS idx_transactions_account_date
		ON transactions (account_id, date DESC, id)`,
	},
	{
		// uncategorized transactions awaiting review
		"idx_transactions_uncategorized",
		`CREATE INDEX IF NOT EXISTS idx_transactions_uncategorized
		ON transactions (user_id, date)
		WHERE category_id IS NULL`,
	},
	{
		// budget reports sum expenses per category in a period
		"idx_transactions_expense_category",
		`CREATE INDEX IF NOT EXISTS idx_transactions_expense_category
		ON transactions (user_id, category_id, date)
		WHERE type = 'expense'`,
	},
	{
		"idx_transactions_date_brin",
		`CREATE INDEX IF NOT EXISTS idx_transactions_date_brin
		ON transactions USING BRIN (date)
		WITH (pages_per_range = 32)`,
	},
	{
		// statements still waiting for their import to finish
		"idx_statements_unprocessed",
		`CREATE INDEX IF NOT EXISTS idx_statements_unprocessed
		ON statements (account_id, uploaded_at)
		WHERE processed_at IS NULL`,
	},
	{
		// default account lookup on transaction entry
		"idx_accounts_default",
		`CREATE INDEX IF NOT EXISTS idx_accounts_default
		ON accounts (user_id)
		WHERE is_default`,
	},
	{
		"idx_budget_categories_category",
		`CREATE INDEX IF NOT EXISTS idx_budget_categories_category
		ON budget_categories (category_id)`,
	},
}

// CreateAdvancedIndexes creates advanced PostgreSQL indexes for better performance
func (m *AdvancedIndexManager) CreateAdvancedIndexes() error {
	m.logger.Info("Creating advanced PostgreSQL indexes", nil)

	for _, idx := range advancedIndexes {
		if err := m.db.Exec(idx.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": idx.name,
				"error": err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Advanced PostgreSQL indexes created successfully", map[string]any{
		"count": len(advancedIndexes),
	})
	return nil
}

// CreatePerformanceTweaks applies PostgreSQL performance tweaks
func (m *AdvancedIndexManager) CreatePerformanceTweaks() error {
	m.logger.Info("Applying PostgreSQL performance tweaks", nil)

	// accounts are updated on every posted transaction; leave room for HOT updates
	if err := m.db.Exec(`ALTER TABLE accounts SET (fillfactor = 80)`).Error; err != nil {
		m.logger.Warn("Failed to set fillfactor for accounts table", map[string]any{
			"error": err.Error(),
		})
	}

	if err := m.db.Exec(`ALTER TABLE transactions ALTER COLUMN user_id SET STATISTICS 1000`).Error; err != nil {
		m.logger.Warn("Failed to set statistics target for user_id", map[string]any{
			"error": err.Error(),
		})
	}

	m.logger.Info("PostgreSQL performance tweaks applied", nil)
	return nil
}

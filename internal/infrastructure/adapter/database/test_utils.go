package database

import (
	"context"
	"os"
	"testing"
	"time"

	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	timeprovider "github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/time"
)

// TestDBManager provides utilities for testing with a database
type TestDBManager struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

// NewTestDBManager creates a test database manager for the datasource url.
// An empty url falls back to TEST_DATABASE_URL.
func NewTestDBManager(t *testing.T, logger coreport.Logger, url string) *TestDBManager {
	t.Helper()

	if url == "" {
		url = os.Getenv("TEST_DATABASE_URL")
	}
	if url == "" {
		t.Skip("no test database configured")
	}

	timeProvider := timeprovider.NewRealTimeProvider()
	config := &Config{
		URL:             url,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    5 * time.Second,
		RetryAttempts:   3,
		RetryDelay:      500 * time.Millisecond,
	}

	return &TestDBManager{
		Manager:      NewManager(config, logger, timeProvider),
		Config:       config,
		Logger:       logger,
		TimeProvider: timeProvider,
	}
}

// Connect connects to the test database
func (m *TestDBManager) Connect(t *testing.T) {
	t.Helper()

	if _, err := m.Manager.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
}

// Close closes the test database connection
func (m *TestDBManager) Close(t *testing.T) {
	t.Helper()

	if err := m.Manager.Close(); err != nil {
		t.Logf("Warning: Failed to close test database connection: %v", err)
	}
}

// SetupTestDB drops every table and runs the migrations from scratch
func (m *TestDBManager) SetupTestDB(t *testing.T) {
	t.Helper()

	if err := m.Manager.DB().Exec(`
		DO $$ DECLARE
			r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = current_schema()) LOOP
				EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`).Error; err != nil {
		t.Fatalf("Failed to drop tables: %v", err)
	}

	if err := m.Manager.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
}

// TruncateLedger empties the ledger tables and keeps the seeded categories
// and the migration history
func (m *TestDBManager) TruncateLedger(t *testing.T) {
	t.Helper()

	if err := m.Manager.DB().Exec(`
		TRUNCATE TABLE budget_categories, budgets, transactions, statements, accounts, users CASCADE
	`).Error; err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
	if err := m.Manager.DB().Exec(`DELETE FROM categories WHERE type = 'user'`).Error; err != nil {
		t.Fatalf("Failed to delete user categories: %v", err)
	}
}

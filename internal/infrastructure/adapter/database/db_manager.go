package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/database/migration"
)

// Manager manages database connections
type Manager struct {
	config            *Config
	db                *gorm.DB
	logger            coreport.Logger
	gormLogger        gormlogger.Interface
	errorMapper       *ErrorMapper
	migrationMgr      *migration.MigrationManager
	connectionMonitor *ConnectionPoolMonitor
	timeProvider      coreport.TimeProvider
}

// NewManager creates a new database manager. Statements are logged through
// NewGormDatabaseLogger unless WithGormLogger installs another logger.
func NewManager(config *Config, logger coreport.Logger, timeProvider coreport.TimeProvider) *Manager {
	return &Manager{
		config:       config,
		logger:       logger,
		gormLogger:   NewGormDatabaseLogger(logger),
		errorMapper:  NewErrorMapper(),
		timeProvider: timeProvider,
	}
}

// WithGormLogger sets the logger GORM reports statements to. It must be
// called before Connect.
func (m *Manager) WithGormLogger(l gormlogger.Interface) *Manager {
	m.gormLogger = l
	return m
}

// Connect opens the connection pool, retrying while the server is
// unreachable, and starts the pool monitor
func (m *Manager) Connect(ctx context.Context) (*gorm.DB, error) {
	if err := m.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	m.logger.Info("Connecting to database", map[string]any{
		"target": m.config.Redacted(),
	})

	var now func() time.Time
	if m.timeProvider != nil {
		now = m.timeProvider.Now
	}
	gormCfg := gormConfig(m.gormLogger, now)

	retryCfg := RetryConfig{
		MaxRetries:    m.config.RetryAttempts - 1,
		RetryInterval: m.config.RetryDelay,
		MaxInterval:   4 * m.config.RetryDelay,
		JitterFactor:  0.2,
	}

	var gormDB *gorm.DB
	err := RetryOnConnectionError(ctx, retryCfg, func() error {
		db, err := openConnection(ctx, m.config, gormCfg)
		if err != nil {
			return err
		}
		gormDB = db
		return nil
	}, m.logger)
	if err != nil {
		m.logger.Error("Failed to connect to database", map[string]any{
			"target":   m.config.Redacted(),
			"attempts": m.config.RetryAttempts,
			"error":    err.Error(),
		})
		return nil, m.errorMapper.MapError(
			fmt.Errorf("failed to connect to database after %d attempts: %w", m.config.RetryAttempts, err),
			nil, "connect")
	}

	m.logger.Info("Successfully connected to database", map[string]any{
		"target":          m.config.Redacted(),
		"max_open_conns":  m.config.MaxOpenConns,
		"max_idle_conns":  m.config.MaxIdleConns,
		"query_timeout_s": m.config.QueryTimeout.Seconds(),
	})

	m.db = gormDB
	m.migrationMgr = migration.NewMigrationManager(gormDB, m.logger, m.timeProvider)

	if m.config.MonitorInterval > 0 {
		m.connectionMonitor = NewConnectionPoolMonitor(gormDB, m.logger)
		if err := m.connectionMonitor.Start(m.config.MonitorInterval); err != nil {
			m.logger.Warn("Failed to start connection pool monitoring", map[string]any{"error": err.Error()})
			m.connectionMonitor = nil
		}
	}

	return m.db, nil
}

// DB returns the GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Migrate brings the schema up to date
func (m *Manager) Migrate(ctx context.Context) error {
	if m.migrationMgr == nil {
		return errors.New("database is not connected")
	}
	return m.migrationMgr.MigrateAll(ctx)
}

// HealthCheck pings the database and reports the pool statistics
func (m *Manager) HealthCheck(ctx context.Context) (PoolStats, error) {
	if m.db == nil {
		return PoolStats{}, errors.New("database is not connected")
	}
	return HealthCheck(ctx, m.db)
}

// Close stops the pool monitor and closes the connection
func (m *Manager) Close() error {
	m.logger.Info("Closing database connection", nil)

	if m.connectionMonitor != nil {
		m.connectionMonitor.Stop()
	}
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}

// WithTimeout returns a context with timeout for database operations
func (m *Manager) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.config.QueryTimeout)
}

// CreateUnitOfWork creates a UnitOfWork whose transactions default to defaults
func (m *Manager) CreateUnitOfWork(defaults persistence.TxOptions) persistence.UnitOfWork {
	return NewUnitOfWork(m.db, m.logger, m.timeProvider, defaults)
}

// GetErrorMapper returns the error mapper
func (m *Manager) GetErrorMapper() *ErrorMapper {
	return m.errorMapper
}

// MigrationManager returns the migration manager
func (m *Manager) MigrationManager() *migration.MigrationManager {
	return m.migrationMgr
}

package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pingTimeout bounds the connectivity check made after opening the pool
const pingTimeout = 5 * time.Second

// gormConfig returns the GORM settings shared by every connection. Timestamps
// are truncated to the microsecond precision PostgreSQL stores, so a created
// row compares equal to the same row read back. Foreign keys are created by
// the migrations, which set their referential actions.
func gormConfig(l logger.Interface, now func() time.Time) *gorm.Config {
	if now == nil {
		now = time.Now
	}
	return &gorm.Config{
		Logger: l,
		NowFunc: func() time.Time {
			return now().UTC().Truncate(time.Microsecond)
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// openConnection opens the pool described by config, applies the pool limits
// and pings the server
func openConnection(ctx context.Context, config *Config, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

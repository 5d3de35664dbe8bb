package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// Context keys
const txKey contextKey = "tx"

// Conn returns the transaction carried by ctx, or db, bound to ctx. Every
// delegate obtains its connection through Conn so that calls made inside
// UnitOfWork.Run join the transaction.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// UnitOfWork implements the unit of work pattern for database transactions
type UnitOfWork struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
	errorMapper  *ErrorMapper
	defaults     persistence.TxOptions
	retry        RetryConfig
}

// NewUnitOfWork creates a new UnitOfWork instance. defaults fill the zero
// fields of the options passed to Begin and Run.
func NewUnitOfWork(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider, defaults persistence.TxOptions) *UnitOfWork {
	return &UnitOfWork{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
		errorMapper:  NewErrorMapper(),
		defaults:     defaults,
		retry:        DefaultRetryConfig(),
	}
}

// WithRetryConfig returns a copy of u using config for write conflict retries
func (u *UnitOfWork) WithRetryConfig(config RetryConfig) *UnitOfWork {
	c := *u
	c.retry = config
	return &c
}

func (u *UnitOfWork) withDefaults(opts persistence.TxOptions) persistence.TxOptions {
	if opts.Isolation == "" {
		opts.Isolation = u.defaults.Isolation
	}
	if opts.MaxWait == 0 {
		opts.MaxWait = u.defaults.MaxWait
	}
	if opts.Timeout == 0 {
		opts.Timeout = u.defaults.Timeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = u.defaults.MaxRetries
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return opts
}

func isolationLevel(level persistence.IsolationLevel) (sql.IsolationLevel, error) {
	switch level {
	case "":
		return sql.LevelDefault, nil
	case persistence.ReadUncommitted:
		return sql.LevelReadUncommitted, nil
	case persistence.ReadCommitted:
		return sql.LevelReadCommitted, nil
	case persistence.RepeatableRead:
		return sql.LevelRepeatableRead, nil
	case persistence.Serializable:
		return sql.LevelSerializable, nil
	default:
		return sql.LevelDefault, errs.NewValidationError("", "transaction", "isolationLevel",
			"%q is not a valid isolation level, expected one of [%s]", level, strings.Join(level.Values(), ", "))
	}
}

// InTransaction reports whether ctx carries a transaction
func (u *UnitOfWork) InTransaction(ctx context.Context) bool {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	return ok && tx != nil
}

// Begin starts a new database transaction. When opts.MaxWait elapses before
// a connection is acquired and BEGIN completes, it fails with a
// TransactionTimeoutError; a transaction that starts afterwards is rolled
// back in the background.
func (u *UnitOfWork) Begin(ctx context.Context, opts persistence.TxOptions) (context.Context, error) {
	opts = u.withDefaults(opts)
	level, err := isolationLevel(opts.Isolation)
	if err != nil {
		return ctx, err
	}

	u.logger.Debug("Beginning database transaction", map[string]any{
		"isolation": string(opts.Isolation),
		"max_wait":  opts.MaxWait.String(),
	})

	begun := make(chan *gorm.DB, 1)
	go func() {
		begun <- u.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: level})
	}()

	waitCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.MaxWait > 0 {
		waitCtx, cancel = u.timeProvider.WithTimeout(ctx, opts.MaxWait)
	}
	defer cancel()

	select {
	case tx := <-begun:
		if tx.Error != nil {
			u.logger.Error("Failed to begin transaction", map[string]any{"error": tx.Error.Error()})
			return ctx, u.errorMapper.MapError(tx.Error, nil, "begin")
		}
		return context.WithValue(ctx, txKey, tx), nil
	case <-waitCtx.Done():
		go func() {
			if tx := <-begun; tx.Error == nil {
				tx.Rollback()
			}
		}()
		if ctx.Err() != nil {
			return ctx, ctx.Err()
		}
		u.logger.Warn("Timed out waiting for a transaction to begin", map[string]any{
			"max_wait": opts.MaxWait.String(),
		})
		return ctx, &errs.TransactionTimeoutError{Phase: "begin", Budget: opts.MaxWait}
	}
}

// Commit commits the current transaction
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok || tx == nil {
		return fmt.Errorf("no transaction found in context")
	}

	u.logger.Debug("Committing database transaction", nil)
	if err := tx.Commit().Error; err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{"error": err.Error()})
		return u.errorMapper.MapError(err, nil, "commit")
	}

	return nil
}

// Rollback rolls back the current transaction
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := ctx.Value(txKey).(*gorm.DB)
	if !ok || tx == nil {
		return fmt.Errorf("no transaction found in context")
	}

	u.logger.Debug("Rolling back database transaction", nil)

	err := tx.Rollback().Error

	// A transaction whose context was canceled has already been rolled
	// back by database/sql.
	if err != nil && (errors.Is(err, sql.ErrTxDone) || strings.Contains(err.Error(), "already been committed or rolled back")) {
		u.logger.Warn("Transaction has already been committed or rolled back", map[string]any{
			"error": err.Error(),
		})
		return nil
	}

	if err != nil {
		u.logger.Error("Failed to rollback transaction", map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// Run executes fn in a transaction, see persistence.UnitOfWork
func (u *UnitOfWork) Run(ctx context.Context, opts persistence.TxOptions, fn func(ctx context.Context) error) error {
	if u.InTransaction(ctx) {
		return fn(ctx)
	}

	opts = u.withDefaults(opts)
	config := u.retry
	config.MaxRetries = opts.MaxRetries

	return RetryOnWriteConflict(ctx, config, func() error {
		return u.runOnce(ctx, opts, fn)
	}, u.logger)
}

func (u *UnitOfWork) runOnce(ctx context.Context, opts persistence.TxOptions, fn func(ctx context.Context) error) (err error) {
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		runCtx, cancel = u.timeProvider.WithTimeout(ctx, opts.Timeout)
	}
	defer cancel()

	txCtx, err := u.Begin(runCtx, opts)
	if err != nil {
		return u.timedOut(ctx, runCtx, opts, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = u.Rollback(txCtx)
			panic(p)
		}
	}()

	if err := fn(txCtx); err != nil {
		_ = u.Rollback(txCtx)
		return u.timedOut(ctx, runCtx, opts, err)
	}

	if runCtx.Err() != nil {
		_ = u.Rollback(txCtx)
		return u.timedOut(ctx, runCtx, opts, runCtx.Err())
	}

	if err := u.Commit(txCtx); err != nil {
		return u.timedOut(ctx, runCtx, opts, err)
	}
	return nil
}

// timedOut replaces err with a TransactionTimeoutError when the run budget,
// and not the caller's own context, expired.
func (u *UnitOfWork) timedOut(parent, runCtx context.Context, opts persistence.TxOptions, err error) error {
	if opts.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && parent.Err() == nil && !errs.IsValidationError(err) {
		u.logger.Warn("Transaction exceeded its timeout", map[string]any{
			"timeout": opts.Timeout.String(),
			"error":   err.Error(),
		})
		return &errs.TransactionTimeoutError{Phase: "run", Budget: opts.Timeout}
	}
	return err
}

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/time"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, DriverName: "postgres"}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func newTestUnitOfWork(db *gorm.DB, defaults persistence.TxOptions) *UnitOfWork {
	return NewUnitOfWork(db, logger.NewNoopLogger(), timeprovider.NewRealTimeProvider(), defaults).
		WithRetryConfig(RetryConfig{MaxRetries: 3, RetryInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond})
}

func touchAccount(ctx context.Context, db *gorm.DB) error {
	err := Conn(ctx, db).Exec(`UPDATE accounts SET name = ? WHERE id = ?`, "Main", "a1").Error
	return NewErrorMapper().MapError(err, nil, "update")
}

func TestUnitOfWork_RunCommits(t *testing.T) {
	db, mock := newMockDB(t)
	uow := newTestUnitOfWork(db, persistence.TxOptions{})

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts SET name`).WithArgs("Main", "a1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := uow.Run(context.Background(), persistence.TxOptions{}, func(ctx context.Context) error {
		assert.True(t, uow.InTransaction(ctx))
		return touchAccount(ctx, db)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_RunRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	uow := newTestUnitOfWork(db, persistence.TxOptions{})
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := uow.Run(context.Background(), persistence.TxOptions{}, func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_RunRollsBackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)
	uow := newTestUnitOfWork(db, persistence.TxOptions{})

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = uow.Run(context.Background(), persistence.TxOptions{}, func(context.Context) error {
			panic("kaboom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_NestedRunJoinsOuterTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	uow := newTestUnitOfWork(db, persistence.TxOptions{})

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts SET name`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE accounts SET name`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := uow.Run(context.Background(), persistence.TxOptions{}, func(ctx context.Context) error {
		if err := touchAccount(ctx, db); err != nil {
			return err
		}
		return uow.Run(ctx, persistence.TxOptions{Isolation: persistence.Serializable}, func(inner context.Context) error {
			return touchAccount(inner, db)
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_RetriesWriteConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	uow := newTestUnitOfWork(db, persistence.TxOptions{MaxRetries: 2})

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts SET name`).WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts SET name`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	attempts := 0
	err := uow.Run(context.Background(), persistence.TxOptions{Isolation: persistence.Serializable}, func(ctx context.Context) error {
		attempts++
		return touchAccount(ctx, db)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_WriteConflictAfterRetriesExhausted(t *testing.T) {
	db, mock := newMockDB(t)
	uow := newTestUnitOfWork(db, persistence.TxOptions{})

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE accounts SET name`).WillReturnError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})
		mock.ExpectRollback()
	}

	err := uow.Run(context.Background(), persistence.TxOptions{MaxRetries: 1}, func(ctx context.Context) error {
		return touchAccount(ctx, db)
	})
	assert.ErrorIs(t, err, errs.ErrWriteConflict)
	assert.Equal(t, errs.KindWriteConflict, errs.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_NoRetriesOverridesDefault(t *testing.T) {
	db, mock := newMockDB(t)
	uow := newTestUnitOfWork(db, persistence.TxOptions{MaxRetries: 3})

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts SET name`).WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})
	mock.ExpectRollback()

	attempts := 0
	err := uow.Run(context.Background(), persistence.TxOptions{MaxRetries: persistence.NoRetries}, func(ctx context.Context) error {
		attempts++
		return touchAccount(ctx, db)
	})
	assert.ErrorIs(t, err, errs.ErrWriteConflict)
	assert.Equal(t, 1, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_WithDefaultsMaxRetries(t *testing.T) {
	uow := NewUnitOfWork(nil, nil, nil, persistence.TxOptions{MaxRetries: 3})

	assert.Equal(t, 3, uow.withDefaults(persistence.TxOptions{}).MaxRetries)
	assert.Equal(t, 1, uow.withDefaults(persistence.TxOptions{MaxRetries: 1}).MaxRetries)
	assert.Equal(t, 0, uow.withDefaults(persistence.TxOptions{MaxRetries: persistence.NoRetries}).MaxRetries)
}

func TestUnitOfWork_RejectsUnknownIsolationLevel(t *testing.T) {
	db, mock := newMockDB(t)
	uow := newTestUnitOfWork(db, persistence.TxOptions{})

	called := false
	err := uow.Run(context.Background(), persistence.TxOptions{Isolation: "Snapshot"}, func(context.Context) error {
		called = true
		return nil
	})
	assert.True(t, errs.IsValidationError(err))
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitOfWork_MaxWaitExceeded(t *testing.T) {
	db, mock := newMockDB(t)
	uow := newTestUnitOfWork(db, persistence.TxOptions{})

	mock.ExpectBegin().WillDelayFor(300 * time.Millisecond)

	err := uow.Run(context.Background(), persistence.TxOptions{MaxWait: 20 * time.Millisecond}, func(context.Context) error {
		t.Error("callback must not run")
		return nil
	})

	var timeout *errs.TransactionTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "begin", timeout.Phase)
	assert.Equal(t, 20*time.Millisecond, timeout.Budget)
}

func TestUnitOfWork_TimeoutExceeded(t *testing.T) {
	db, mock := newMockDB(t)
	uow := newTestUnitOfWork(db, persistence.TxOptions{Timeout: 30 * time.Millisecond})

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := uow.Run(context.Background(), persistence.TxOptions{}, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	var timeout *errs.TransactionTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "run", timeout.Phase)
	assert.ErrorIs(t, err, errs.ErrTransactionTimeout)
}

func TestUnitOfWork_ExplicitBeginCommit(t *testing.T) {
	db, mock := newMockDB(t)
	uow := newTestUnitOfWork(db, persistence.TxOptions{})

	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx, err := uow.Begin(context.Background(), persistence.TxOptions{Isolation: persistence.ReadCommitted})
	require.NoError(t, err)
	require.True(t, uow.InTransaction(ctx))
	require.NoError(t, uow.Commit(ctx))

	assert.Error(t, uow.Commit(context.Background()), "commit without a transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/usecase/category"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/logger"
	mpers "github.com/amirhossein-jamali/finance-ledger/mocks/port/persistence"
)

type staticCategorizer struct {
	c   *category.Categorizer
	err error
}

func (s staticCategorizer) Categorizer(context.Context) (*category.Categorizer, error) {
	return s.c, s.err
}

type fixture struct {
	users        *mpers.MockDelegate[entity.User]
	accounts     mpers.MockAccountStore
	transactions *mpers.MockDelegate[entity.Transaction]
	uow          *mpers.MockUnitOfWork
	ledger       persistence.Ledger
}

func newFixture(t *testing.T) fixture {
	f := fixture{
		users:        mpers.NewMockDelegate[entity.User](t),
		accounts:     mpers.NewMockAccountStore(t),
		transactions: mpers.NewMockDelegate[entity.Transaction](t),
		uow:          mpers.NewMockUnitOfWork(t),
	}
	f.ledger = persistence.Ledger{
		Users:        f.users,
		Accounts:     f.accounts,
		Transactions: f.transactions,
		UnitOfWork:   f.uow,
	}
	return f
}

func groceries() staticCategorizer {
	kw := "supermarket"
	return staticCategorizer{c: category.NewCategorizer([]entity.Category{
		{ID: "cat-groceries", Type: entity.CategoryTypeSystem, Keywords: &kw},
	})}
}

func (f fixture) processor(categorizers CategorizerSource) *TransactionProcessor {
	v := NewTransactionValidator()
	return NewTransactionProcessor(f.ledger, v, NewIdempotencyHandler(f.transactions), categorizers, logger.NewNoopLogger())
}

func decimalEq(s string) any {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

var account = &entity.Account{
	ID:       "a1",
	UserID:   "u1",
	Currency: entity.CurrencyKES,
	Balance:  decimal.RequireFromString("1000.00"),
}

var (
	byAccountID  = query.UniqueArgs{Where: query.Unique("id", "a1")}
	serializable = persistence.TxOptions{Isolation: persistence.Serializable}
)

func TestProcess(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("EAT", 3*3600))

	t.Run("Expense is categorized and debited", func(t *testing.T) {
		f := newFixture(t)
		f.uow.On("Run", mock.Anything, serializable).Return(nil).Once()
		f.accounts.On("FindUniqueOrThrow", mock.Anything, byAccountID).Return(account, nil).Once()
		f.transactions.On("Create", mock.Anything, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.UserID == "u1" &&
				txn.Currency == entity.CurrencyKES &&
				txn.Type == entity.TransactionTypeExpense &&
				txn.Amount.Equal(decimal.RequireFromString("250.40")) &&
				txn.Date.Equal(date) && txn.Date.Location() == time.UTC &&
				txn.CategoryID != nil && *txn.CategoryID == "cat-groceries"
		})).Return(&entity.Transaction{
			ID:          "tx-new",
			Description: "Naivas Supermarket",
			Type:        entity.TransactionTypeExpense,
			Amount:      decimal.RequireFromString("250.40"),
		}, nil).Once()
		f.accounts.On("AdjustBalance", mock.Anything, "a1", decimalEq("-250.40")).
			Return(&entity.Account{ID: "a1", Balance: decimal.RequireFromString("749.60")}, nil).Once()

		result, err := f.processor(groceries()).Process(ctx, usecase.RecordTransactionRequest{
			AccountID:   "a1",
			Date:        date,
			Description: "  Naivas Supermarket  ",
			Amount:      "-250.40",
		})

		require.NoError(t, err)
		assert.False(t, result.Duplicate)
		assert.Equal(t, "tx-new", result.Transaction.ID)
		assert.Equal(t, "Naivas Supermarket", result.Transaction.Description)
		assert.Equal(t, "749.6", result.Balance.String())
	})

	t.Run("Transfer leaves the balance untouched", func(t *testing.T) {
		f := newFixture(t)
		f.uow.On("Run", mock.Anything, serializable).Return(nil).Once()
		f.accounts.On("FindUniqueOrThrow", mock.Anything, byAccountID).Return(account, nil).Once()
		f.transactions.On("Create", mock.Anything, mock.Anything).Return(&entity.Transaction{
			ID: "tx-t", Type: entity.TransactionTypeTransfer, Amount: decimal.RequireFromString("50"),
		}, nil).Once()

		result, err := f.processor(nil).Process(ctx, usecase.RecordTransactionRequest{
			AccountID:   "a1",
			Date:        date,
			Description: "To savings",
			Amount:      "50",
			Type:        entity.TransactionTypeTransfer,
		})

		require.NoError(t, err)
		assert.True(t, result.Balance.Equal(account.Balance))
		f.accounts.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Explicit category skips the categorizer", func(t *testing.T) {
		f := newFixture(t)
		chosen := "cat-rent"
		f.uow.On("Run", mock.Anything, serializable).Return(nil).Once()
		f.accounts.On("FindUniqueOrThrow", mock.Anything, byAccountID).Return(account, nil).Once()
		f.transactions.On("Create", mock.Anything, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.CategoryID != nil && *txn.CategoryID == "cat-rent"
		})).Return(&entity.Transaction{ID: "tx-r", Type: entity.TransactionTypeExpense, Amount: decimal.RequireFromString("10")}, nil).Once()
		f.accounts.On("AdjustBalance", mock.Anything, "a1", decimalEq("-10")).Return(account, nil).Once()

		_, err := f.processor(staticCategorizer{err: errors.New("must not be called")}).Process(ctx, usecase.RecordTransactionRequest{
			AccountID:   "a1",
			Date:        date,
			Description: "Supermarket",
			Amount:      "10",
			Type:        entity.TransactionTypeExpense,
			CategoryID:  &chosen,
		})

		require.NoError(t, err)
	})

	t.Run("Categorizer failure leaves transaction uncategorized", func(t *testing.T) {
		f := newFixture(t)
		f.uow.On("Run", mock.Anything, serializable).Return(nil).Once()
		f.accounts.On("FindUniqueOrThrow", mock.Anything, byAccountID).Return(account, nil).Once()
		f.transactions.On("Create", mock.Anything, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.CategoryID == nil
		})).Return(&entity.Transaction{ID: "tx-i", Type: entity.TransactionTypeIncome, Amount: decimal.RequireFromString("5")}, nil).Once()
		f.accounts.On("AdjustBalance", mock.Anything, "a1", decimalEq("5")).Return(account, nil).Once()

		_, err := f.processor(staticCategorizer{err: errors.New("db down")}).Process(ctx, usecase.RecordTransactionRequest{
			AccountID:   "a1",
			Date:        date,
			Description: "Refund",
			Amount:      "5",
		})

		require.NoError(t, err)
	})

	t.Run("Duplicate id returns the stored transaction", func(t *testing.T) {
		f := newFixture(t)
		stored := &entity.Transaction{ID: "tx-1", AccountID: "a1"}
		f.transactions.On("FindUnique", mock.Anything, query.UniqueArgs{Where: query.Unique("id", "tx-1")}).Return(stored, nil).Once()
		f.accounts.On("FindUniqueOrThrow", mock.Anything, byAccountID).Return(account, nil).Once()

		result, err := f.processor(nil).Process(ctx, usecase.RecordTransactionRequest{
			ID:          "tx-1",
			AccountID:   "a1",
			Date:        date,
			Description: "Coffee",
			Amount:      "-3",
		})

		require.NoError(t, err)
		assert.True(t, result.Duplicate)
		assert.Same(t, stored, result.Transaction)
		f.uow.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("Unknown account rolls back", func(t *testing.T) {
		f := newFixture(t)
		f.uow.On("Run", mock.Anything, serializable).Return(nil).Once()
		f.accounts.On("FindUniqueOrThrow", mock.Anything, byAccountID).
			Return(nil, errs.NewNotFoundError("Account", "findUniqueOrThrow")).Once()

		_, err := f.processor(nil).Process(ctx, usecase.RecordTransactionRequest{
			AccountID:   "a1",
			Date:        date,
			Description: "Coffee",
			Amount:      "-3",
		})

		assert.True(t, errs.IsNotFoundError(err))
	})

	t.Run("Invalid request never touches the store", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.processor(nil).Process(ctx, usecase.RecordTransactionRequest{AccountID: "a1", Date: date, Amount: "3"})

		assert.True(t, errs.IsValidationError(err))
	})
}

package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/logger"
)

func (f fixture) service(t *testing.T) *Service {
	s := NewTransactionService(f.ledger, nil, logger.NewNoopLogger())
	t.Cleanup(s.Shutdown)
	return s
}

func TestService_Record(t *testing.T) {
	f := newFixture(t)
	f.uow.On("Run", mock.Anything, serializable).Return(nil).Once()
	f.accounts.On("FindUniqueOrThrow", mock.Anything, byAccountID).Return(account, nil).Once()
	f.transactions.On("Create", mock.Anything, mock.Anything).
		Return(&entity.Transaction{ID: "tx-1", Type: entity.TransactionTypeIncome, Amount: decimal.RequireFromString("20")}, nil).Once()
	f.accounts.On("AdjustBalance", mock.Anything, "a1", decimalEq("20")).
		Return(&entity.Account{ID: "a1", Balance: decimal.RequireFromString("1020")}, nil).Once()

	result, err := f.service(t).Record(context.Background(), usecase.RecordTransactionRequest{
		AccountID:   "a1",
		Date:        time.Now(),
		Description: "Salary",
		Amount:      "20",
	})

	require.NoError(t, err)
	assert.Equal(t, "1020", result.Balance.String())
}

func TestService_RecordWithoutAccount(t *testing.T) {
	_, err := newFixture(t).service(t).Record(context.Background(), usecase.RecordTransactionRequest{})
	assert.True(t, errs.IsValidationError(err))
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("First page", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("FindUniqueOrThrow", mock.Anything, byAccountID).Return(account, nil).Once()
		f.transactions.On("FindMany", mock.Anything, query.FindArgs{
			Where:   query.Fields(map[string]query.Filter{"accountId": query.Equals("a1"), "type": query.Equals("expense")}),
			OrderBy: []query.OrderBy{query.Desc("date"), query.Desc("id")},
			Take:    query.Int(2),
		}).Return([]entity.Transaction{{ID: "t9"}, {ID: "t8"}}, nil).Once()

		page, err := f.service(t).List(ctx, usecase.ListTransactionsRequest{
			AccountID: "a1",
			Type:      entity.TransactionTypeExpense,
			Take:      2,
		})

		require.NoError(t, err)
		assert.Len(t, page.Transactions, 2)
		assert.Equal(t, "t8", page.NextCursor)
	})

	t.Run("Cursor skips the cursor row", func(t *testing.T) {
		f := newFixture(t)
		cursor := query.Unique("id", "t8")
		f.accounts.On("FindUniqueOrThrow", mock.Anything, byAccountID).Return(account, nil).Once()
		f.transactions.On("FindMany", mock.Anything, query.FindArgs{
			Where:   query.Field("accountId", query.Equals("a1")),
			OrderBy: []query.OrderBy{query.Desc("date"), query.Desc("id")},
			Cursor:  &cursor,
			Take:    query.Int(-2),
			Skip:    1,
		}).Return([]entity.Transaction{{ID: "t10"}}, nil).Once()

		page, err := f.service(t).List(ctx, usecase.ListTransactionsRequest{AccountID: "a1", Cursor: "t8", Take: -2})

		require.NoError(t, err)
		assert.Len(t, page.Transactions, 1)
		assert.Empty(t, page.NextCursor)
	})

	t.Run("Date range", func(t *testing.T) {
		f := newFixture(t)
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		f.accounts.On("FindUniqueOrThrow", mock.Anything, byAccountID).Return(account, nil).Once()
		f.transactions.On("FindMany", mock.Anything, mock.MatchedBy(func(args query.FindArgs) bool {
			flt, ok := args.Where.Fields["date"]
			return ok && flt.Gte == from && flt.Lte == nil && *args.Take == DefaultPageSize
		})).Return([]entity.Transaction{}, nil).Once()

		page, err := f.service(t).List(ctx, usecase.ListTransactionsRequest{AccountID: "a1", From: &from})

		require.NoError(t, err)
		assert.Empty(t, page.NextCursor)
	})

	t.Run("Unknown account", func(t *testing.T) {
		f := newFixture(t)
		f.accounts.On("FindUniqueOrThrow", mock.Anything, byAccountID).
			Return(nil, errs.NewNotFoundError("Account", "findUniqueOrThrow")).Once()

		_, err := f.service(t).List(ctx, usecase.ListTransactionsRequest{AccountID: "a1"})

		assert.True(t, errs.IsNotFoundError(err))
	})
}

func TestService_Summary(t *testing.T) {
	f := newFixture(t)
	f.users.On("FindUniqueOrThrow", mock.Anything, query.UniqueArgs{Where: query.Unique("id", "u1")}).
		Return(&entity.User{ID: "u1"}, nil).Once()

	group := func(typ string, count int64, sum string) query.GroupRow {
		g := query.GroupRow{Keys: map[string]any{"type": typ}, AggregateResult: query.NewAggregateResult()}
		g.Count[query.AllRows] = count
		g.Sum["amount"] = decimal.NewNullDecimal(decimal.RequireFromString(sum))
		return g
	}
	f.transactions.On("GroupBy", mock.Anything, mock.MatchedBy(func(args query.GroupByArgs) bool {
		return len(args.By) == 1 && args.By[0] == "type" && len(args.Sum) == 1 && args.Sum[0] == "amount"
	})).Return([]query.GroupRow{
		group("expense", 3, "120.75"),
		group("income", 1, "1000.00"),
		group("transfer", 2, "300"),
	}, nil).Once()

	summary, err := f.service(t).Summary(context.Background(), usecase.SummaryRequest{UserID: "u1"})

	require.NoError(t, err)
	require.Len(t, summary.Totals, 3)
	assert.Equal(t, entity.TransactionTypeExpense, summary.Totals[0].Type)
	assert.Equal(t, int64(3), summary.Totals[0].Count)
	assert.Equal(t, "879.25", summary.Net.StringFixed(2))
}

func TestService_SummaryRejectsInvertedRange(t *testing.T) {
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := newFixture(t).service(t).Summary(context.Background(), usecase.SummaryRequest{UserID: "u1", From: &from, To: &to})

	assert.True(t, errs.IsValidationError(err))
}

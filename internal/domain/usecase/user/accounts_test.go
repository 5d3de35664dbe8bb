package user

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
)

var byUserID = query.UniqueArgs{Where: query.Unique("id", "u1")}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("Opens account with opening balance", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("FindUniqueOrThrow", mock.Anything, byUserID).Return(&entity.User{ID: "u1"}, nil).Once()
		f.accounts.On("Create", mock.Anything, mock.MatchedBy(func(a *entity.Account) bool {
			return a.UserID == "u1" && a.Name == "Main" && a.Balance.Equal(decimal.RequireFromString("250.00"))
		})).Return(&entity.Account{ID: "a1", UserID: "u1", Name: "Main", Type: entity.AccountTypeChecking}, nil).Once()

		account, err := f.useCase.CreateAccount(ctx, "u1", usecase.CreateAccountRequest{
			Name:           " Main ",
			Type:           entity.AccountTypeChecking,
			Currency:       entity.CurrencyUSD,
			OpeningBalance: decimal.RequireFromString("250.00"),
		})

		require.NoError(t, err)
		assert.Equal(t, "a1", account.ID)
	})

	t.Run("Rejects unknown type before any lookup", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.useCase.CreateAccount(ctx, "u1", usecase.CreateAccountRequest{
			Name:     "Main",
			Type:     "BROKERAGE",
			Currency: entity.CurrencyUSD,
		})

		assert.True(t, errs.IsValidationError(err))
	})

	t.Run("Unknown user", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("FindUniqueOrThrow", mock.Anything, byUserID).
			Return(nil, errs.NewNotFoundError("User", "findUniqueOrThrow")).Once()

		_, err := f.useCase.CreateAccount(ctx, "u1", usecase.CreateAccountRequest{
			Name:     "Main",
			Type:     entity.AccountTypeSavings,
			Currency: entity.CurrencyEUR,
		})

		assert.True(t, errs.IsNotFoundError(err))
	})
}

func TestListAccounts(t *testing.T) {
	f := newFixture(t)
	f.users.On("FindUniqueOrThrow", mock.Anything, byUserID).Return(&entity.User{ID: "u1"}, nil).Once()
	f.accounts.On("FindMany", mock.Anything, mock.MatchedBy(func(args query.FindArgs) bool {
		return len(args.OrderBy) == 2 && args.OrderBy[0].Field == "isDefault" && args.OrderBy[0].IsDesc()
	})).Return([]entity.Account{{ID: "a2", IsDefault: true}, {ID: "a1"}}, nil).Once()

	accounts, err := f.useCase.ListAccounts(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].IsDefault)
}

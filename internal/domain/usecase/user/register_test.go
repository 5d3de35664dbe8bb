package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/logger"
	mpers "github.com/amirhossein-jamali/finance-ledger/mocks/port/persistence"
)

type fixture struct {
	users    *mpers.MockDelegate[entity.User]
	accounts mpers.MockAccountStore
	useCase  *UserUseCase
}

func newFixture(t *testing.T) fixture {
	users := mpers.NewMockDelegate[entity.User](t)
	accounts := mpers.NewMockAccountStore(t)
	uc := NewUserUseCase(persistence.Ledger{Users: users, Accounts: accounts}, logger.NewNoopLogger()).
		WithBcryptCost(bcrypt.MinCost)
	return fixture{users: users, accounts: accounts, useCase: uc}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful registration", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
			return u.Email == "ann@example.com" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")) == nil
		})).Return(&entity.User{ID: "u1", Email: "ann@example.com"}, nil).Once()

		user, err := f.useCase.Register(ctx, usecase.RegisterRequest{
			Email:    "  Ann@Example.COM ",
			Password: "correct horse",
		})

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "ann@example.com", user.Email)
	})

	t.Run("Invalid email", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.useCase.Register(ctx, usecase.RegisterRequest{Email: "not-an-email", Password: "correct horse"})

		assert.Nil(t, user)
		assert.True(t, errs.IsValidationError(err))
	})

	t.Run("Short password", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.useCase.Register(ctx, usecase.RegisterRequest{Email: "ann@example.com", Password: "short"})

		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		f := newFixture(t)
		dup := &errs.ConstraintViolationError{
			Model:  "User",
			Kind:   errs.ConstraintUnique,
			Fields: []string{"email"},
			Err:    errors.New("duplicate key value"),
		}
		f.users.On("Create", mock.Anything, mock.Anything).Return(nil, dup).Once()

		_, err := f.useCase.Register(ctx, usecase.RegisterRequest{Email: "ann@example.com", Password: "correct horse"})

		assert.True(t, errs.IsUniqueViolation(err))
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &entity.User{ID: "u1", Email: "ann@example.com", PasswordHash: string(hash)}
	byEmail := query.UniqueArgs{Where: query.Unique("email", "ann@example.com")}

	t.Run("Matching password", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("FindUnique", mock.Anything, byEmail).Return(stored, nil).Once()

		user, err := f.useCase.Authenticate(ctx, "ANN@example.com", "correct horse")

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("FindUnique", mock.Anything, byEmail).Return(stored, nil).Once()

		_, err := f.useCase.Authenticate(ctx, "ann@example.com", "battery staple")

		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		f := newFixture(t)
		f.users.On("FindUnique", mock.Anything, byEmail).Return(nil, nil).Once()

		_, err := f.useCase.Authenticate(ctx, "ann@example.com", "correct horse")

		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})
}

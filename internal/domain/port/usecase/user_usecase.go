package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
)

// RegisterRequest represents a new user sign-up
type RegisterRequest struct {
	Email    string
	Password string
	Name     *string
}

// CreateAccountRequest represents a new account of an existing user
type CreateAccountRequest struct {
	Name           string
	Type           entity.AccountType
	Currency       entity.Currency
	OpeningBalance decimal.Decimal
	IsDefault      bool
}

// UserUseCase defines methods for user and account operations
type UserUseCase interface {
	// Register creates a user with a bcrypt-hashed password. The email is
	// normalized before it is stored, so the unique index is case-insensitive.
	Register(ctx context.Context, req RegisterRequest) (*entity.User, error)

	// GetUser returns the user or a NotFoundError
	GetUser(ctx context.Context, userID string) (*entity.User, error)

	// Authenticate returns the user owning email when password matches,
	// ErrInvalidCredentials otherwise
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)

	// CreateAccount opens an account for userID
	CreateAccount(ctx context.Context, userID string, req CreateAccountRequest) (*entity.Account, error)

	// ListAccounts returns the accounts of userID, default account first
	ListAccounts(ctx context.Context, userID string) ([]entity.Account, error)
}

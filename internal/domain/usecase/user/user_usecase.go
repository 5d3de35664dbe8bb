package user

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// UserUseCase handles user-related business logic
type UserUseCase struct {
	users      persistence.Delegate[entity.User]
	accounts   persistence.AccountStore
	logger     coreport.Logger
	bcryptCost int
}

var _ usecase.UserUseCase = (*UserUseCase)(nil)

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(ledger persistence.Ledger, logger coreport.Logger) *UserUseCase {
	return &UserUseCase{
		users:      ledger.Users,
		accounts:   ledger.Accounts,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost sets the bcrypt work factor of new password hashes
func (u *UserUseCase) WithBcryptCost(cost int) *UserUseCase {
	u.bcryptCost = cost
	return u
}

// GetUser returns the user with userID
func (u *UserUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	return u.users.FindUniqueOrThrow(ctx, query.UniqueArgs{Where: query.Unique("id", userID)})
}

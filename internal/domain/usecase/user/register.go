package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"golang.org/x/crypto/bcrypt"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
)

// Register creates a new user with a hashed password
func (u *UserUseCase) Register(ctx context.Context, req usecase.RegisterRequest) (*entity.User, error) {
	email := entity.NormalizeEmail(req.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, errs.NewValidationError("User", "register", "email", "%q is not a valid email address", req.Email)
	}
	if len(req.Password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", errs.ErrInvalidCredentials, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), u.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCredentials, err.Error())
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := u.users.Create(ctx, &entity.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
	})
	if err != nil {
		if errs.IsUniqueViolation(err) {
			u.logger.Warn("Email already registered", map[string]any{"email": email})
		} else {
			u.logger.Error("Failed to create user", map[string]any{"error": err.Error()})
		}
		return nil, err
	}

	u.logger.Info("User registered", map[string]any{"userId": user.ID})
	return user, nil
}

// Authenticate checks a password against the stored hash
func (u *UserUseCase) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindUnique(ctx, query.UniqueArgs{Where: query.Unique("email", entity.NormalizeEmail(email))})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		u.logger.Warn("Password mismatch", map[string]any{"userId": user.ID})
		return nil, errs.ErrInvalidCredentials
	}
	return user, nil
}

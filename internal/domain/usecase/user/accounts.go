package user

import (
	"context"
	"strings"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
)

// CreateAccount opens an account for an existing user
func (u *UserUseCase) CreateAccount(ctx context.Context, userID string, req usecase.CreateAccountRequest) (*entity.Account, error) {
	const op = "createAccount"
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errs.NewValidationError("Account", op, "name", "name must not be empty")
	}
	if !req.Type.IsValid() {
		return nil, errs.NewValidationError("Account", op, "type", "unknown account type %q", req.Type)
	}
	if !req.Currency.IsValid() {
		return nil, errs.NewValidationError("Account", op, "currency", "unknown currency %q", req.Currency)
	}

	if _, err := u.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	account, err := u.accounts.Create(ctx, &entity.Account{
		UserID:    userID,
		Name:      name,
		Type:      req.Type,
		Currency:  req.Currency,
		Balance:   req.OpeningBalance,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		u.logger.Error("Failed to create account", map[string]any{
			"userId": userID,
			"error":  err.Error(),
		})
		return nil, err
	}

	u.logger.Info("Account created", map[string]any{
		"userId":    userID,
		"accountId": account.ID,
		"type":      string(account.Type),
	})
	return account, nil
}

// ListAccounts returns the user's accounts, default accounts first
func (u *UserUseCase) ListAccounts(ctx context.Context, userID string) ([]entity.Account, error) {
	if _, err := u.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return u.accounts.FindMany(ctx, query.FindArgs{
		Where:   query.Field("userId", query.Equals(userID)),
		OrderBy: []query.OrderBy{query.Desc("isDefault"), query.Asc("createdAt")},
	})
}

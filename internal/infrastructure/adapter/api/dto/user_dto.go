package dto

import (
	"time"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
)

// RegisterRequest represents the API request for creating a user
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	Name     *string `json:"name"`
}

// LoginRequest represents the API request for checking credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserResponse represents a user. The password hash never leaves the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserResponse maps a user entity to its API representation
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// CreateAccountRequest represents the API request for opening an account
type CreateAccountRequest struct {
	Name           string `json:"name" binding:"required"`
	Type           string `json:"type" binding:"required"`
	Currency       string `json:"currency" binding:"required"`
	OpeningBalance string `json:"openingBalance"`
	IsDefault      bool   `json:"isDefault"`
}

// AccountResponse represents an account with its balance as a decimal string
type AccountResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Currency  string    `json:"currency"`
	Balance   string    `json:"balance"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewAccountResponse maps an account entity to its API representation
func NewAccountResponse(a *entity.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		Name:      a.Name,
		Type:      string(a.Type),
		Currency:  string(a.Currency),
		Balance:   entity.FormatAmount(a.Balance),
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt,
	}
}

// NewAccountResponses maps a slice of accounts
func NewAccountResponses(accounts []entity.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = NewAccountResponse(&accounts[i])
	}
	return out
}

package dto

import (
	"time"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
)

// TransactionRequest represents the API request for recording a transaction.
// Amount is a decimal string; without a type its sign picks the direction.
type TransactionRequest struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Amount      string    `json:"amount" binding:"required"`
	Type        string    `json:"type" binding:"omitempty,oneof=income expense transfer"`
	CategoryID  *string   `json:"categoryId"`
}

// TransactionResponse represents a ledger transaction
type TransactionResponse struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	StatementID *string   `json:"statementId,omitempty"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Type        string    `json:"type"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	Currency    string    `json:"currency"`
}

// NewTransactionResponse maps a transaction entity to its API representation
func NewTransactionResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		StatementID: t.StatementID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      entity.FormatAmount(t.Amount),
		Type:        string(t.Type),
		CategoryID:  t.CategoryID,
		Currency:    string(t.Currency),
	}
}

// RecordTransactionResponse represents the API response for a recorded transaction
type RecordTransactionResponse struct {
	Transaction   TransactionResponse `json:"transaction"`
	ResultBalance string              `json:"resultBalance"`
	Duplicate     bool                `json:"duplicate"`
}

// NewRecordTransactionResponse maps a record result
func NewRecordTransactionResponse(r *usecase.RecordResult) RecordTransactionResponse {
	return RecordTransactionResponse{
		Transaction:   NewTransactionResponse(r.Transaction),
		ResultBalance: entity.FormatAmount(r.Balance),
		Duplicate:     r.Duplicate,
	}
}

// TransactionPageResponse represents one page of transactions
type TransactionPageResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextCursor   string                `json:"nextCursor,omitempty"`
}

// NewTransactionPageResponse maps a transaction page
func NewTransactionPageResponse(p *usecase.TransactionPage) TransactionPageResponse {
	out := TransactionPageResponse{
		Transactions: make([]TransactionResponse, len(p.Transactions)),
		NextCursor:   p.NextCursor,
	}
	for i := range p.Transactions {
		out.Transactions[i] = NewTransactionResponse(&p.Transactions[i])
	}
	return out
}

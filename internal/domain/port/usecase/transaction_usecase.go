package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
)

// RecordTransactionRequest represents a manually entered transaction.
//
// Amount is a decimal string. When Type is empty the sign of Amount picks
// it: negative amounts are expenses. ID is optional; repeating a request
// with the same ID returns the stored transaction instead of recording it
// twice.
type RecordTransactionRequest struct {
	ID          string
	AccountID   string
	Date        time.Time
	Description string
	Amount      string
	Type        entity.TransactionType
	CategoryID  *string
}

// RecordResult is the outcome of recording a transaction
type RecordResult struct {
	Transaction *entity.Transaction
	Balance     decimal.Decimal
	// Duplicate is true when the ID was already recorded
	Duplicate bool
}

// ListTransactionsRequest pages through the transactions of an account,
// newest first. Cursor is the id of the last transaction of the previous
// page; a negative Take pages backwards from Cursor.
type ListTransactionsRequest struct {
	AccountID string
	Type      entity.TransactionType
	From      *time.Time
	To        *time.Time
	Cursor    string
	Take      int
	Skip      int
}

// TransactionPage is one page of transactions
type TransactionPage struct {
	Transactions []entity.Transaction
	// NextCursor is empty on the last page
	NextCursor string
}

// SummaryRequest selects the period of a ledger summary. Nil bounds are open.
type SummaryRequest struct {
	UserID string
	From   *time.Time
	To     *time.Time
}

// TypeTotal is the total of one transaction type
type TypeTotal struct {
	Type  entity.TransactionType
	Count int64
	Total decimal.Decimal
}

// LedgerSummary totals a user's transactions by type
type LedgerSummary struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Totals []TypeTotal
	// Net is income minus expenses
	Net decimal.Decimal
}

// TransactionUseCase defines methods for transaction-related business operations
type TransactionUseCase interface {
	// Record stores a transaction and applies it to the account balance in
	// one transaction. Uncategorized transactions are categorized by keyword.
	Record(ctx context.Context, req RecordTransactionRequest) (*RecordResult, error)

	// List returns one page of an account's transactions
	List(ctx context.Context, req ListTransactionsRequest) (*TransactionPage, error)

	// Summary totals a user's transactions by type over a period
	Summary(ctx context.Context, req SummaryRequest) (*LedgerSummary, error)
}

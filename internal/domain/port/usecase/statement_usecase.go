package usecase

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
)

// ImportStatementRequest carries an uploaded CSV statement
type ImportStatementRequest struct {
	AccountID string
	Filename  string
	Content   io.Reader
}

// ImportResult is the outcome of a statement import
type ImportResult struct {
	Statement *entity.Statement
	// Imported counts the transactions created
	Imported int64
	// Skipped counts rows already present in the ledger
	Skipped int
	// Balance is the account balance after the import
	Balance decimal.Decimal
}

// StatementUseCase imports bank statements
type StatementUseCase interface {
	// Import parses a CSV statement and, in one serializable transaction,
	// creates the statement, its categorized transactions and the balance
	// change, then marks the statement processed.
	Import(ctx context.Context, req ImportStatementRequest) (*ImportResult, error)
}

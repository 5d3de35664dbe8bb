package persistence

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
)

// AccountStore is the account delegate plus the balance mutation
type AccountStore interface {
	Delegate[entity.Account]

	// AdjustBalance adds delta (which may be negative) to the balance in a
	// single UPDATE and returns the updated account.
	//
	// Possible errors:
	// - NotFoundError: the account does not exist
	AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (*entity.Account, error)
}

// StatementStore is the statement delegate plus the processing mark
type StatementStore interface {
	Delegate[entity.Statement]

	// MarkProcessed sets processedAt once.
	//
	// Possible errors:
	// - NotFoundError: the statement does not exist
	// - ErrStatementAlreadyProcessed: processedAt was already set
	MarkProcessed(ctx context.Context, id string, at time.Time) (*entity.Statement, error)
}

// Ledger bundles the stores of every entity with the unit of work that
// makes calls on them atomic
type Ledger struct {
	Users            Delegate[entity.User]
	Accounts         AccountStore
	Statements       StatementStore
	Categories       Delegate[entity.Category]
	Transactions     Delegate[entity.Transaction]
	Budgets          Delegate[entity.Budget]
	BudgetCategories Delegate[entity.BudgetCategory]

	UnitOfWork UnitOfWork
}

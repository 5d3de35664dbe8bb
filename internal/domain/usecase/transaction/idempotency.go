package transaction

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
)

// IdempotencyHandler provides idempotency checking for transactions
type IdempotencyHandler struct {
	transactions persistence.Delegate[entity.Transaction]
}

// NewIdempotencyHandler creates a new IdempotencyHandler
func NewIdempotencyHandler(transactions persistence.Delegate[entity.Transaction]) *IdempotencyHandler {
	return &IdempotencyHandler{transactions: transactions}
}

// CheckIdempotency looks up a client supplied transaction id. It returns the
// stored transaction and true when the id was already recorded on
// accountID. An id recorded on another account is a unique violation.
func (h *IdempotencyHandler) CheckIdempotency(
	ctx context.Context,
	transactionID, accountID string,
) (*entity.Transaction, bool, error) {
	if transactionID == "" {
		return nil, false, nil
	}

	txn, err := h.transactions.FindUnique(ctx, query.UniqueArgs{Where: query.Unique("id", transactionID)})
	if err != nil {
		return nil, false, fmt.Errorf("failed to check if transaction exists: %w", err)
	}
	if txn == nil {
		return nil, false, nil
	}

	if txn.AccountID != accountID {
		return nil, true, &errs.ConstraintViolationError{
			Model:  "Transaction",
			Kind:   errs.ConstraintUnique,
			Fields: []string{"id"},
			Err:    fmt.Errorf("transaction %s belongs to another account", transactionID),
		}
	}
	return txn, true, nil
}

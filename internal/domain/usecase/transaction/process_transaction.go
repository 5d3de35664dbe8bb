package transaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/usecase/category"
)

// CategorizerSource provides the keyword categorizer for new transactions
type CategorizerSource interface {
	Categorizer(ctx context.Context) (*category.Categorizer, error)
}

// TransactionProcessor records one transaction: it validates the request,
// short-circuits repeated ids, categorizes the description and then creates
// the row and adjusts the balance in a single serializable transaction.
type TransactionProcessor struct {
	accounts           persistence.AccountStore
	transactions       persistence.Delegate[entity.Transaction]
	uow                persistence.UnitOfWork
	validator          *TransactionValidator
	idempotencyHandler *IdempotencyHandler
	categorizers       CategorizerSource
	logger             coreport.Logger
}

// NewTransactionProcessor creates a new TransactionProcessor
func NewTransactionProcessor(
	ledger persistence.Ledger,
	validator *TransactionValidator,
	idempotencyHandler *IdempotencyHandler,
	categorizers CategorizerSource,
	logger coreport.Logger,
) *TransactionProcessor {
	return &TransactionProcessor{
		accounts:           ledger.Accounts,
		transactions:       ledger.Transactions,
		uow:                ledger.UnitOfWork,
		validator:          validator,
		idempotencyHandler: idempotencyHandler,
		categorizers:       categorizers,
		logger:             logger,
	}
}

// Process handles the recording of a transaction
func (p *TransactionProcessor) Process(
	ctx context.Context,
	req usecase.RecordTransactionRequest,
) (*usecase.RecordResult, error) {
	amount, typ, err := p.validator.ValidateRecord(req)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}

	existing, found, err := p.idempotencyHandler.CheckIdempotency(ctx, req.ID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if found {
		account, err := p.accounts.FindUniqueOrThrow(ctx, query.UniqueArgs{Where: query.Unique("id", req.AccountID)})
		if err != nil {
			return nil, err
		}
		p.logger.Info("Duplicate transaction id, returning stored transaction", map[string]any{
			"transaction_id": req.ID,
			"account_id":     req.AccountID,
		})
		return &usecase.RecordResult{Transaction: existing, Balance: account.Balance, Duplicate: true}, nil
	}

	description := strings.TrimSpace(req.Description)
	categoryID := req.CategoryID
	if categoryID == nil {
		categoryID = p.categorize(ctx, description)
	}

	var result *usecase.RecordResult
	err = p.uow.Run(ctx, persistence.TxOptions{Isolation: persistence.Serializable}, func(txCtx context.Context) error {
		account, err := p.accounts.FindUniqueOrThrow(txCtx, query.UniqueArgs{Where: query.Unique("id", req.AccountID)})
		if err != nil {
			return err
		}

		created, err := p.transactions.Create(txCtx, &entity.Transaction{
			ID:          req.ID,
			UserID:      account.UserID,
			AccountID:   account.ID,
			Date:        req.Date.UTC(),
			Description: description,
			Amount:      amount,
			Type:        typ,
			CategoryID:  categoryID,
			Currency:    account.Currency,
		})
		if err != nil {
			return err
		}

		balance := account.Balance
		if effect := created.BalanceEffect(); !effect.IsZero() {
			updated, err := p.accounts.AdjustBalance(txCtx, account.ID, effect)
			if err != nil {
				return err
			}
			balance = updated.Balance
		}

		result = &usecase.RecordResult{Transaction: created, Balance: balance}
		return nil
	})
	if err != nil {
		p.logger.Error("Failed to record transaction", map[string]any{
			"account_id": req.AccountID,
			"error":      err.Error(),
		})
		return nil, err
	}

	p.logger.Info("Transaction recorded", map[string]any{
		"transaction_id": result.Transaction.ID,
		"account_id":     req.AccountID,
		"type":           string(typ),
		"balance":        entity.FormatAmount(result.Balance),
	})
	return result, nil
}

// categorize picks a category by keyword. A failure to load the categories
// leaves the transaction uncategorized.
func (p *TransactionProcessor) categorize(ctx context.Context, description string) *string {
	if p.categorizers == nil {
		return nil
	}
	c, err := p.categorizers.Categorizer(ctx)
	if err != nil {
		p.logger.Warn("Failed to load categories", map[string]any{"error": err.Error()})
		return nil
	}
	if id, ok := c.Categorize(description); ok {
		return &id
	}
	return nil
}

package transaction

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
)

// MaxDescriptionLength bounds transaction descriptions
const MaxDescriptionLength = 512

// TransactionValidator provides validation for transaction requests
type TransactionValidator struct{}

// NewTransactionValidator creates a new TransactionValidator
func NewTransactionValidator() *TransactionValidator {
	return &TransactionValidator{}
}

// ValidateRecord validates a record request and resolves its magnitude and
// direction. An empty Type is derived from the sign of the amount.
func (v *TransactionValidator) ValidateRecord(req usecase.RecordTransactionRequest) (decimal.Decimal, entity.TransactionType, error) {
	const op = "record"

	if strings.TrimSpace(req.AccountID) == "" {
		return decimal.Zero, "", errs.NewValidationError("Transaction", op, "accountId", "account id must not be empty")
	}
	if err := v.validateDescription(req.Description); err != nil {
		return decimal.Zero, "", err
	}
	if req.Date.IsZero() {
		return decimal.Zero, "", errs.NewValidationError("Transaction", op, "date", "date must be set")
	}
	if req.CategoryID != nil && strings.TrimSpace(*req.CategoryID) == "" {
		return decimal.Zero, "", errs.NewValidationError("Transaction", op, "categoryId", "category id must not be empty when given")
	}

	if req.Type == "" {
		signed, err := entity.ParseSignedAmount(req.Amount)
		if err != nil {
			return decimal.Zero, "", err
		}
		amount, typ := entity.SplitSigned(signed)
		return amount, typ, nil
	}

	if !req.Type.IsValid() {
		return decimal.Zero, "", errs.NewValidationError("Transaction", op, "type", "unknown transaction type %q", req.Type)
	}
	amount, err := entity.ParseAmount(req.Amount)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("amount %q: %w", req.Amount, err)
	}
	return amount, req.Type, nil
}

// ValidateList checks the paging arguments of a list request
func (v *TransactionValidator) ValidateList(req usecase.ListTransactionsRequest) error {
	const op = "list"

	if strings.TrimSpace(req.AccountID) == "" {
		return errs.NewValidationError("Transaction", op, "accountId", "account id must not be empty")
	}
	if req.Type != "" && !req.Type.IsValid() {
		return errs.NewValidationError("Transaction", op, "type", "unknown transaction type %q", req.Type)
	}
	if req.Take < -MaxPageSize || req.Take > MaxPageSize {
		return errs.NewValidationError("Transaction", op, "take", "take must be between -%d and %d", MaxPageSize, MaxPageSize)
	}
	if req.Skip < 0 {
		return errs.NewValidationError("Transaction", op, "skip", "skip must not be negative")
	}
	if req.From != nil && req.To != nil && req.From.After(*req.To) {
		return errs.NewValidationError("Transaction", op, "from", "from must not be after to")
	}
	return nil
}

func (v *TransactionValidator) validateDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return errs.NewValidationError("Transaction", "record", "description", "description must not be empty")
	}
	if len(description) > MaxDescriptionLength {
		return errs.NewValidationError("Transaction", "record", "description", "description longer than %d bytes", MaxDescriptionLength)
	}
	return nil
}

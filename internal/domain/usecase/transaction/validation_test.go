package transaction

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/usecase"
)

func validRecord() usecase.RecordTransactionRequest {
	return usecase.RecordTransactionRequest{
		AccountID:   "a1",
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Description: "Coffee",
		Amount:      "4.50",
		Type:        entity.TransactionTypeExpense,
	}
}

func TestValidateRecord(t *testing.T) {
	v := NewTransactionValidator()
	empty := ""

	tests := []struct {
		name       string
		modify     func(r *usecase.RecordTransactionRequest)
		wantAmount string
		wantType   entity.TransactionType
		wantErr    error
	}{
		{
			name:       "Valid expense",
			modify:     func(r *usecase.RecordTransactionRequest) {},
			wantAmount: "4.5",
			wantType:   entity.TransactionTypeExpense,
		},
		{
			name:       "Type derived from negative amount",
			modify:     func(r *usecase.RecordTransactionRequest) { r.Type = ""; r.Amount = "-1,200.25" },
			wantAmount: "1200.25",
			wantType:   entity.TransactionTypeExpense,
		},
		{
			name:       "Type derived from positive amount",
			modify:     func(r *usecase.RecordTransactionRequest) { r.Type = ""; r.Amount = "+300" },
			wantAmount: "300",
			wantType:   entity.TransactionTypeIncome,
		},
		{
			name:    "Negative amount with explicit type",
			modify:  func(r *usecase.RecordTransactionRequest) { r.Amount = "-4.50" },
			wantErr: errs.ErrNegativeAmount,
		},
		{
			name:    "Too many decimal places",
			modify:  func(r *usecase.RecordTransactionRequest) { r.Amount = "1.23456" },
			wantErr: errs.ErrInvalidAmount,
		},
		{
			name:    "Missing account",
			modify:  func(r *usecase.RecordTransactionRequest) { r.AccountID = " " },
			wantErr: errs.ErrValidation,
		},
		{
			name:    "Missing description",
			modify:  func(r *usecase.RecordTransactionRequest) { r.Description = "" },
			wantErr: errs.ErrValidation,
		},
		{
			name:    "Description too long",
			modify:  func(r *usecase.RecordTransactionRequest) { r.Description = strings.Repeat("x", MaxDescriptionLength+1) },
			wantErr: errs.ErrValidation,
		},
		{
			name:    "Zero date",
			modify:  func(r *usecase.RecordTransactionRequest) { r.Date = time.Time{} },
			wantErr: errs.ErrValidation,
		},
		{
			name:    "Unknown type",
			modify:  func(r *usecase.RecordTransactionRequest) { r.Type = "refund" },
			wantErr: errs.ErrValidation,
		},
		{
			name:    "Empty category id",
			modify:  func(r *usecase.RecordTransactionRequest) { r.CategoryID = &empty },
			wantErr: errs.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRecord()
			tt.modify(&req)

			amount, typ, err := v.ValidateRecord(req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, amount.String())
			assert.Equal(t, tt.wantType, typ)
		})
	}
}

func TestValidateList(t *testing.T) {
	v := NewTransactionValidator()
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	assert.NoError(t, v.ValidateList(usecase.ListTransactionsRequest{AccountID: "a1", Take: -10, From: &from, To: &to}))
	assert.True(t, errs.IsValidationError(v.ValidateList(usecase.ListTransactionsRequest{})))
	assert.True(t, errs.IsValidationError(v.ValidateList(usecase.ListTransactionsRequest{AccountID: "a1", Take: MaxPageSize + 1})))
	assert.True(t, errs.IsValidationError(v.ValidateList(usecase.ListTransactionsRequest{AccountID: "a1", Skip: -1})))
	assert.True(t, errs.IsValidationError(v.ValidateList(usecase.ListTransactionsRequest{AccountID: "a1", Type: "refund"})))
	assert.True(t, errs.IsValidationError(v.ValidateList(usecase.ListTransactionsRequest{AccountID: "a1", From: &to, To: &from})))
}

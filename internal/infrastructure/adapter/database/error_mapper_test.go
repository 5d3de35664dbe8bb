package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
)

func budgetCategoryModel(t *testing.T) *schema.Model {
	t.Helper()
	registry, err := schema.NewRegistry(entity.Models()...)
	require.NoError(t, err)
	model, err := registry.Model(&entity.BudgetCategory{})
	require.NoError(t, err)
	return model
}

func TestErrorMapper_MapsSQLStates(t *testing.T) {
	model := budgetCategoryModel(t)
	mapper := NewErrorMapper()

	tests := []struct {
		name string
		err  error
		kind errs.Kind
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, errs.KindConstraintViolation},
		{"foreign key", &pgconn.PgError{Code: "23503"}, errs.KindConstraintViolation},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "amount"}, errs.KindConstraintViolation},
		{"check", &pgconn.PgError{Code: "23514"}, errs.KindConstraintViolation},
		{"serialization", &pgconn.PgError{Code: "40001"}, errs.KindWriteConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, errs.KindWriteConflict},
		{"too many connections", &pgconn.PgError{Code: "53300"}, errs.KindConnection},
		{"numeric overflow", &pgconn.PgError{Code: "22003", Message: "numeric field overflow"}, errs.KindValidation},
		{"syntax", &pgconn.PgError{Code: "42601"}, errs.KindConnection},
		{"record not found", gorm.ErrRecordNotFound, errs.KindNotFound},
		{"wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}), errs.KindConstraintViolation},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), errs.KindConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, errs.KindOf(mapper.MapError(tt.err, model, "create")))
		})
	}
}

func TestErrorMapper_ConstraintDetail(t *testing.T) {
	mapper := NewErrorMapper()
	err := mapper.MapError(&pgconn.PgError{
		Code:           "23505",
		ConstraintName: "budget_categories_pkey",
		Detail:         `Key (budget_id, category_id)=(b1, c1) already exists.`,
	}, budgetCategoryModel(t), "create")

	var cv *errs.ConstraintViolationError
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, "BudgetCategory", cv.Model)
	assert.Equal(t, errs.ConstraintUnique, cv.Kind)
	assert.Equal(t, "budget_categories_pkey", cv.Constraint)
	assert.Equal(t, []string{"budgetId", "categoryId"}, cv.Fields)
	assert.True(t, errs.IsUniqueViolation(err))
}

func TestErrorMapper_NotNullNamesField(t *testing.T) {
	err := NewErrorMapper().MapError(&pgconn.PgError{Code: "23502", ColumnName: "amount"}, budgetCategoryModel(t), "update")

	var cv *errs.ConstraintViolationError
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, errs.ConstraintNotNull, cv.Kind)
	assert.Equal(t, []string{"amount"}, cv.Fields)
}

func TestErrorMapper_PassesThrough(t *testing.T) {
	mapper := NewErrorMapper()

	assert.NoError(t, mapper.MapError(nil, nil, "find"))
	assert.ErrorIs(t, mapper.MapError(context.Canceled, nil, "find"), context.Canceled)

	validation := errs.NewValidationError("User", "findUnique", "where", "bad")
	assert.Same(t, validation, mapper.MapError(validation, nil, "findUnique"))
}

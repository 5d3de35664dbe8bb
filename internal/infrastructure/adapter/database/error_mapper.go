package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
)

// PostgreSQL SQLSTATE codes the mapper distinguishes
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeNotNullViolation     = "23502"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeTooManyConnections   = "53300"
	codeAdminShutdown        = "57P01"
	codeCrashShutdown        = "57P02"
	codeCannotConnectNow     = "57P03"
)

// detailKeyPattern extracts the column list of "Key (a, b)=(1, 2) already exists."
var detailKeyPattern = regexp.MustCompile(`Key \(([^)]+)\)=`)

// ErrorMapper maps database errors to domain errors
type ErrorMapper struct {
	classifier *ErrorClassifier
}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{classifier: NewErrorClassifier()}
}

// MapError maps a database error raised while running operation on model m
// to one of the domain error kinds. m may be nil for errors outside a model
// (BEGIN, COMMIT). Errors that already carry a domain kind and context
// cancellation pass through unchanged.
func (m *ErrorMapper) MapError(err error, model *schema.Model, operation string) error {
	if err == nil {
		return nil
	}
	if errs.KindOf(err) != errs.KindUnknown {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	modelName := ""
	if model != nil {
		modelName = model.Name
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewNotFoundError(modelName, operation)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return m.mapPgError(pgErr, model, modelName, operation)
	}

	switch m.classifier.Classify(err) {
	case DuplicateKeyError:
		return &errs.ConstraintViolationError{Model: modelName, Kind: errs.ConstraintUnique, Err: err}
	case ForeignKeyError:
		return &errs.ConstraintViolationError{Model: modelName, Kind: errs.ConstraintForeignKey, Err: err}
	case NotNullError:
		return &errs.ConstraintViolationError{Model: modelName, Kind: errs.ConstraintNotNull, Err: err}
	case LockError:
		return fmt.Errorf("%s: %w: %w", operation, errs.ErrWriteConflict, err)
	case ConstraintError:
		return &errs.ConstraintViolationError{Model: modelName, Kind: errs.ConstraintCheck, Err: err}
	default:
		return &errs.ConnectionError{Operation: operation, Err: err}
	}
}

func (m *ErrorMapper) mapPgError(pgErr *pgconn.PgError, model *schema.Model, modelName, operation string) error {
	switch pgErr.Code {
	case codeUniqueViolation:
		return &errs.ConstraintViolationError{
			Model:      modelName,
			Kind:       errs.ConstraintUnique,
			Constraint: pgErr.ConstraintName,
			Fields:     detailFields(model, pgErr.Detail),
			Err:        pgErr,
		}
	case codeForeignKeyViolation:
		return &errs.ConstraintViolationError{
			Model:      modelName,
			Kind:       errs.ConstraintForeignKey,
			Constraint: pgErr.ConstraintName,
			Fields:     detailFields(model, pgErr.Detail),
			Err:        pgErr,
		}
	case codeNotNullViolation:
		var fields []string
		if pgErr.ColumnName != "" {
			fields = columnsToFields(model, []string{pgErr.ColumnName})
		}
		return &errs.ConstraintViolationError{
			Model:  modelName,
			Kind:   errs.ConstraintNotNull,
			Fields: fields,
			Err:    pgErr,
		}
	case codeCheckViolation:
		return &errs.ConstraintViolationError{
			Model:      modelName,
			Kind:       errs.ConstraintCheck,
			Constraint: pgErr.ConstraintName,
			Err:        pgErr,
		}
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w: %w", operation, errs.ErrWriteConflict, pgErr)
	case codeTooManyConnections, codeAdminShutdown, codeCrashShutdown, codeCannotConnectNow:
		return &errs.ConnectionError{Operation: operation, Err: pgErr}
	}

	// Class 22 is a data exception: the value reached the database but does
	// not fit the column (numeric overflow, bad text representation).
	if strings.HasPrefix(pgErr.Code, "22") {
		return &errs.ValidationError{
			Model:     modelName,
			Operation: operation,
			Message:   fmt.Sprintf("value rejected by the database: %s", pgErr.Message),
		}
	}
	return &errs.ConnectionError{Operation: operation, Err: pgErr}
}

// detailFields returns the field names listed in a constraint error detail
func detailFields(model *schema.Model, detail string) []string {
	match := detailKeyPattern.FindStringSubmatch(detail)
	if match == nil {
		return nil
	}
	cols := strings.Split(match[1], ",")
	for i := range cols {
		cols[i] = strings.Trim(strings.TrimSpace(cols[i]), `"`)
	}
	return columnsToFields(model, cols)
}

func columnsToFields(model *schema.Model, cols []string) []string {
	if model == nil {
		return cols
	}
	return model.FieldsByColumns(cols)
}

package error

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeValidation                = 4000
	CodeInvalidAmount             = 4002
	CodeInvalidCredentials        = 4003
	CodeInvalidStatementFile      = 4004
	CodeConstraintViolation       = 4005
	CodeStatementAlreadyProcessed = 4006
	CodeNotFound                  = 4040
	CodeWriteConflict             = 4090

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeDatabaseConnection = 5030
	CodeTransactionTimeout = 5040
)

// Kind is the category of a data access failure. Callers branch on kinds,
// never on messages.
type Kind string

const (
	KindNotFound            Kind = "NotFound"
	KindConstraintViolation Kind = "ConstraintViolation"
	KindValidation          Kind = "ValidationError"
	KindConnection          Kind = "ConnectionOrEngineError"
	KindTransactionTimeout  Kind = "TransactionTimeout"
	KindWriteConflict       Kind = "WriteConflict"
	KindUnknown             Kind = "Unknown"
)

// Base error types
var (
	// ErrNotFound is returned when a unique lookup that must succeed finds no row
	ErrNotFound = errors.New("record not found")

	// ErrConstraintViolation is returned when a unique, foreign key, not-null or check constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrValidation is returned when query arguments are malformed or contradictory
	ErrValidation = errors.New("invalid query arguments")

	// ErrDatabaseConnection is returned when the database is unreachable or the engine failed
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrTransactionTimeout is returned when a transaction exceeds its maxWait or timeout budget
	ErrTransactionTimeout = errors.New("transaction timed out")

	// ErrWriteConflict is returned when a transaction failed on a serialization conflict or deadlock
	ErrWriteConflict = errors.New("transaction failed due to a write conflict or deadlock")

	// ErrInvalidAmount is returned when a money amount cannot be parsed as a decimal
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrNegativeAmount is returned when a stored magnitude would be negative
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidCredentials is returned when a password does not satisfy the registration rules
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidStatementFile is returned when an uploaded statement cannot be parsed
	ErrInvalidStatementFile = errors.New("invalid statement file")

	// ErrStatementAlreadyProcessed is returned when processedAt is set a second time
	ErrStatementAlreadyProcessed = errors.New("statement already processed")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidRequest):
		return CodeValidation
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNegativeAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrInvalidStatementFile):
		return CodeInvalidStatementFile
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, ErrStatementAlreadyProcessed):
		return CodeStatementAlreadyProcessed
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrWriteConflict):
		return CodeWriteConflict
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	case errors.Is(err, ErrTransactionTimeout):
		return CodeTransactionTimeout
	default:
		return CodeInternalServer
	}
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConstraintViolation):
		return KindConstraintViolation
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDatabaseConnection):
		return KindConnection
	case errors.Is(err, ErrTransactionTimeout):
		return KindTransactionTimeout
	case errors.Is(err, ErrWriteConflict):
		return KindWriteConflict
	default:
		return KindUnknown
	}
}

// NotFoundError describes a unique lookup that found no row
type NotFoundError struct {
	Model     string
	Operation string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no %s record found", e.Operation, e.Model)
}

// Is checks if the target error is an ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// LogFields returns a map of fields for structured logging
func (e *NotFoundError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "not_found",
		"model":      e.Model,
		"operation":  e.Operation,
		"error_code": CodeNotFound,
	}
}

// NewNotFoundError creates a not found error for model and operation
func NewNotFoundError(model, operation string) error {
	return &NotFoundError{Model: model, Operation: operation}
}

// ConstraintKind names the violated constraint family
type ConstraintKind string

const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintCheck      ConstraintKind = "check"
)

// ConstraintViolationError provides detailed information about a violated constraint
type ConstraintViolationError struct {
	Model      string
	Kind       ConstraintKind
	Constraint string
	Fields     []string
	Err        error
}

// Error implements the error interface
func (e *ConstraintViolationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s constraint violated on %s", e.Kind, e.Model)
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " (fields: %s)", strings.Join(e.Fields, ", "))
	}
	if e.Constraint != "" {
		fmt.Fprintf(&b, " [%s]", e.Constraint)
	}
	return b.String()
}

// Is checks if the target error is an ErrConstraintViolation
func (e *ConstraintViolationError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// Unwrap returns the underlying driver error
func (e *ConstraintViolationError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ConstraintViolationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "constraint_violation",
		"model":      e.Model,
		"constraint": e.Constraint,
		"kind":       string(e.Kind),
		"fields":     e.Fields,
		"error_code": CodeConstraintViolation,
	}
}

// ValidationError describes a rejected query argument. Path locates the
// offending argument, e.g. "where.amount.contains".
type ValidationError struct {
	Model     string
	Operation string
	Path      string
	Message   string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	loc := e.Model
	if e.Operation != "" {
		loc += "." + e.Operation
	}
	if e.Path != "" {
		return fmt.Sprintf("invalid %s arguments at %s: %s", loc, e.Path, e.Message)
	}
	return fmt.Sprintf("invalid %s arguments: %s", loc, e.Message)
}

// Is checks if the target error is an ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// LogFields returns a map of fields for structured logging
func (e *ValidationError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "validation",
		"model":      e.Model,
		"operation":  e.Operation,
		"path":       e.Path,
		"message":    e.Message,
		"error_code": CodeValidation,
	}
}

// NewValidationError creates a validation error with a formatted message
func NewValidationError(model, operation, path, format string, args ...any) error {
	return &ValidationError{
		Model:     model,
		Operation: operation,
		Path:      path,
		Message:   fmt.Sprintf(format, args...),
	}
}

// ConnectionError wraps a failure to reach or use the database. It is not
// recoverable in place; retry at a higher layer.
type ConnectionError struct {
	Operation string
	Err       error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Operation, ErrDatabaseConnection, e.Err)
}

// Is checks if the target error is an ErrDatabaseConnection
func (e *ConnectionError) Is(target error) bool {
	return target == ErrDatabaseConnection
}

// Unwrap returns the underlying error
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ConnectionError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "database_connection",
		"operation":  e.Operation,
		"error":      e.Err.Error(),
		"error_code": CodeDatabaseConnection,
	}
}

// TransactionTimeoutError reports which transaction budget was exhausted
type TransactionTimeoutError struct {
	// Phase is "begin" when maxWait elapsed and "run" when timeout elapsed.
	Phase  string
	Budget time.Duration
}

// Error implements the error interface
func (e *TransactionTimeoutError) Error() string {
	return fmt.Sprintf("transaction %s exceeded %s", e.Phase, e.Budget)
}

// Is checks if the target error is an ErrTransactionTimeout
func (e *TransactionTimeoutError) Is(target error) bool {
	return target == ErrTransactionTimeout
}

// LogFields returns a map of fields for structured logging
func (e *TransactionTimeoutError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "transaction_timeout",
		"phase":      e.Phase,
		"budget_ms":  e.Budget.Milliseconds(),
		"error_code": CodeTransactionTimeout,
	}
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConstraintViolationError checks if the error is a constraint violation
func IsConstraintViolationError(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsUniqueViolation checks if the error is a unique constraint violation
func IsUniqueViolation(err error) bool {
	var cv *ConstraintViolationError
	return errors.As(err, &cv) && cv.Kind == ConstraintUnique
}

// IsValidationError checks if the error is a query validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConnectionError checks if the error is a database connection error
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrDatabaseConnection)
}

// IsRetryable reports whether err may succeed when the whole transaction is retried
func IsRetryable(err error) bool {
	return errors.Is(err, ErrWriteConflict)
}

package error

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestBaseErrorTypes(t *testing.T) {
	if ErrNotFound.Error() != "record not found" {
		t.Errorf("ErrNotFound has unexpected message: %s", ErrNotFound.Error())
	}
	if ErrInvalidAmount.Error() != "invalid amount format" {
		t.Errorf("ErrInvalidAmount has unexpected message: %s", ErrInvalidAmount.Error())
	}
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"Validation", NewValidationError("User", "findMany", "where", "bad"), 4000},
		{"InvalidAmount", ErrInvalidAmount, 4002},
		{"ConstraintViolation", &ConstraintViolationError{Model: "User", Kind: ConstraintUnique}, 4005},
		{"AlreadyProcessed", ErrStatementAlreadyProcessed, 4006},
		{"NotFound", NewNotFoundError("User", "findUniqueOrThrow"), 4040},
		{"WriteConflict", ErrWriteConflict, 4090},
		{"Connection", &ConnectionError{Operation: "connect", Err: errors.New("refused")}, 5030},
		{"Timeout", &TransactionTimeoutError{Phase: "begin", Budget: time.Second}, 5040},
		{"UnknownError", errors.New("unknown error"), 5000},
		{"WrappedError", fmt.Errorf("wrapped: %w", ErrInvalidAmount), 4002},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code := ErrorCode(tc.err)
			if code != tc.expected {
				t.Errorf("ErrorCode(%v) = %d, want %d", tc.err, code, tc.expected)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"Nil", nil, ""},
		{"NotFound", NewNotFoundError("Account", "update"), KindNotFound},
		{"Constraint", &ConstraintViolationError{Kind: ConstraintForeignKey}, KindConstraintViolation},
		{"Validation", NewValidationError("Budget", "groupBy", "orderBy", "x"), KindValidation},
		{"Connection", &ConnectionError{Err: errors.New("eof")}, KindConnection},
		{"Timeout", &TransactionTimeoutError{}, KindTransactionTimeout},
		{"Conflict", fmt.Errorf("commit: %w", ErrWriteConflict), KindWriteConflict},
		{"Other", errors.New("boom"), KindUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.expected {
				t.Errorf("KindOf(%v) = %q, want %q", tc.err, got, tc.expected)
			}
		})
	}
}

func TestNotFoundAndConstraintAreDistinct(t *testing.T) {
	nf := NewNotFoundError("User", "delete")
	cv := &ConstraintViolationError{Model: "User", Kind: ConstraintUnique, Fields: []string{"email"}}

	if IsConstraintViolationError(nf) || IsNotFoundError(cv) {
		t.Fatalf("not found and constraint violation must not match each other")
	}
	if !IsNotFoundError(fmt.Errorf("ctx: %w", nf)) {
		t.Errorf("wrapped not found error lost its kind")
	}
	if !IsUniqueViolation(cv) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", cv)
	}
}

func TestConstraintViolationError(t *testing.T) {
	driverErr := errors.New("duplicate key value violates unique constraint")
	cv := &ConstraintViolationError{
		Model:      "User",
		Kind:       ConstraintUnique,
		Constraint: "idx_users_email",
		Fields:     []string{"email"},
		Err:        driverErr,
	}

	expected := "unique constraint violated on User (fields: email) [idx_users_email]"
	if cv.Error() != expected {
		t.Errorf("ConstraintViolationError.Error() = %s, want %s", cv.Error(), expected)
	}
	if !errors.Is(cv, driverErr) {
		t.Errorf("errors.Is(cv, driverErr) = false, want true")
	}

	fields := cv.LogFields()
	if fields["constraint"] != "idx_users_email" || fields["error_code"] != CodeConstraintViolation {
		t.Errorf("unexpected log fields: %v", fields)
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("Transaction", "findMany", "where.amount.contains", "operator %q requires a string field", "contains")

	expected := `invalid Transaction.findMany arguments at where.amount.contains: operator "contains" requires a string field`
	if err.Error() != expected {
		t.Errorf("ValidationError.Error() = %s, want %s", err.Error(), expected)
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Path != "where.amount.contains" {
		t.Errorf("errors.As did not expose the validation path")
	}
}

func TestConnectionError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &ConnectionError{Operation: "findMany", Err: cause}

	if !IsConnectionError(err) {
		t.Errorf("IsConnectionError = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
	if IsRetryable(err) {
		t.Errorf("connection errors are not retried in place")
	}
}

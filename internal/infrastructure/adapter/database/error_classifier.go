package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorType is the family of a store error recognized by its message
type ErrorType string

const (
	DuplicateKeyError ErrorType = "duplicate_key"
	ForeignKeyError   ErrorType = "foreign_key"
	NotNullError      ErrorType = "not_null"
	ConstraintError   ErrorType = "constraint"
	LockError         ErrorType = "lock"
	ConnectionError   ErrorType = "connection"
)

// messageRules are tried in order; the first rule with a matching marker
// decides the type. Specific constraint families precede the generic one.
var messageRules = []struct {
	typ     ErrorType
	markers []string
}{
	{DuplicateKeyError, []string{"duplicate key", "unique constraint", "duplicate entry"}},
	{ForeignKeyError, []string{"foreign key"}},
	{NotNullError, []string{"not-null", "not null"}},
	{ConstraintError, []string{"check constraint", "violates"}},
	{LockError, []string{"deadlock", "could not serialize access", "serialization failure", "lock wait timeout"}},
	{ConnectionError, []string{
		"connection reset", "connection refused", "broken pipe", "conn closed",
		"server closed", "dial", "network", "eof", "i/o timeout",
	}},
}

// ErrorClassifier classifies driver errors that carry no SQLSTATE, such as
// network failures and wrapped driver errors, by their message
type ErrorClassifier struct{}

// NewErrorClassifier creates a new ErrorClassifier
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// Classify returns the type of err, or "" when no rule matches
func (c *ErrorClassifier) Classify(err error) ErrorType {
	if err == nil {
		return ""
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return ConnectionError
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		for _, marker := range rule.markers {
			if strings.Contains(msg, marker) {
				return rule.typ
			}
		}
	}
	return ""
}

// IsConnectionError reports whether err looks like a lost or refused
// connection
func (c *ErrorClassifier) IsConnectionError(err error) bool {
	return c.Classify(err) == ConnectionError
}

// IsConstraintError reports whether err names any constraint violation
func (c *ErrorClassifier) IsConstraintError(err error) bool {
	switch c.Classify(err) {
	case DuplicateKeyError, ForeignKeyError, NotNullError, ConstraintError:
		return true
	}
	return false
}

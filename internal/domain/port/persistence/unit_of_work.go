package persistence

import (
	"context"
	"time"
)

// IsolationLevel names a transaction isolation level
type IsolationLevel string

const (
	ReadUncommitted IsolationLevel = "ReadUncommitted"
	ReadCommitted   IsolationLevel = "ReadCommitted"
	RepeatableRead  IsolationLevel = "RepeatableRead"
	Serializable    IsolationLevel = "Serializable"
)

// Values returns the accepted isolation level names
func (IsolationLevel) Values() []string {
	return []string{string(ReadUncommitted), string(ReadCommitted), string(RepeatableRead), string(Serializable)}
}

// TxOptions controls an interactive transaction. Zero values fall back to
// the configured defaults.
type TxOptions struct {
	// Isolation is the isolation level; empty uses the database default.
	Isolation IsolationLevel
	// MaxWait bounds how long to wait for a connection and BEGIN.
	MaxWait time.Duration
	// Timeout bounds the whole transaction, from BEGIN to COMMIT.
	Timeout time.Duration
	// MaxRetries is how many times a write conflict restarts the callback.
	// Zero uses the default; NoRetries disables retries.
	MaxRetries int
}

// NoRetries as TxOptions.MaxRetries runs the callback once, overriding a
// non-zero default
const NoRetries = -1

// UnitOfWork defines an interface for coordinating transaction operations
// across multiple delegates to maintain data consistency
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context, opts TxOptions) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// Run executes fn inside a transaction. Every delegate call made with
	// the context passed to fn joins the transaction. fn returning an error
	// rolls back; a write conflict restarts fn up to MaxRetries times.
	// Calling Run with a context that already carries a transaction reuses it.
	//
	// Possible errors:
	// - TransactionTimeoutError: if MaxWait or Timeout elapsed
	// - ErrWriteConflict: if retries were exhausted
	// - any error returned by fn
	Run(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error

	// InTransaction reports whether ctx carries a transaction
	InTransaction(ctx context.Context) bool
}

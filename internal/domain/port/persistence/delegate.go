package persistence

import (
	"context"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
)

// Delegate is the typed data access surface of one entity. Every method
// validates its arguments before any SQL is sent, and joins the
// transaction carried by ctx when there is one.
//
// Errors are always one of the domain kinds: NotFoundError,
// ConstraintViolationError, ValidationError, ConnectionError.
type Delegate[T any] interface {
	// Model returns the metadata of the entity
	Model() *schema.Model

	// FindUnique returns the row matching a unique key, or nil
	FindUnique(ctx context.Context, args query.UniqueArgs) (*T, error)
	// FindUniqueOrThrow is FindUnique failing with NotFoundError on no row
	FindUniqueOrThrow(ctx context.Context, args query.UniqueArgs) (*T, error)
	// FindFirst returns the first row of FindMany(args), or nil
	FindFirst(ctx context.Context, args query.FindArgs) (*T, error)
	// FindFirstOrThrow is FindFirst failing with NotFoundError on no row
	FindFirstOrThrow(ctx context.Context, args query.FindArgs) (*T, error)
	// FindMany returns the rows matching args
	FindMany(ctx context.Context, args query.FindArgs) ([]T, error)

	// Create inserts row and returns it with generated values filled in
	Create(ctx context.Context, row *T) (*T, error)
	// CreateMany inserts rows and returns how many were inserted
	CreateMany(ctx context.Context, rows []T, opts query.CreateManyOptions) (int64, error)

	// Update changes the row matching a unique key and returns it
	Update(ctx context.Context, where query.Where, data query.Data) (*T, error)
	// UpdateMany changes every matching row and returns the count
	UpdateMany(ctx context.Context, where query.Where, data query.Data) (int64, error)
	// Upsert atomically creates row or applies update to the existing row
	// matching where
	Upsert(ctx context.Context, where query.Where, create *T, update query.Data) (*T, error)

	// Delete removes the row matching a unique key and returns it
	Delete(ctx context.Context, where query.Where) (*T, error)
	// DeleteMany removes every matching row and returns the count
	DeleteMany(ctx context.Context, where query.Where) (int64, error)

	// Aggregate computes aggregates over the rows selected by args
	Aggregate(ctx context.Context, args query.AggregateArgs) (query.AggregateResult, error)
	// GroupBy partitions rows by args.By and aggregates each group
	GroupBy(ctx context.Context, args query.GroupByArgs) ([]query.GroupRow, error)
	// Count counts the rows selected by args
	Count(ctx context.Context, args query.CountArgs) (query.CountResult, error)
}

// Package persistence provides testify mocks of the persistence ports.
package persistence

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/query"
	"github.com/amirhossein-jamali/finance-ledger/internal/domain/schema"
)

// MockDelegate is a mock of persistence.Delegate[T]
type MockDelegate[T any] struct {
	mock.Mock
	model *schema.Model
}

var _ persistence.Delegate[entity.User] = (*MockDelegate[entity.User])(nil)

// NewMockDelegate creates a MockDelegate whose expectations are asserted
// when the test ends
func NewMockDelegate[T any](t interface {
	mock.TestingT
	Cleanup(func())
}) *MockDelegate[T] {
	m := &MockDelegate[T]{model: &schema.Model{}}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func row[T any](v any) *T {
	if v == nil {
		return nil
	}
	return v.(*T)
}

func rows[T any](v any) []T {
	if v == nil {
		return nil
	}
	return v.([]T)
}

func (m *MockDelegate[T]) Model() *schema.Model { return m.model }

func (m *MockDelegate[T]) FindUnique(ctx context.Context, args query.UniqueArgs) (*T, error) {
	ret := m.Called(ctx, args)
	return row[T](ret.Get(0)), ret.Error(1)
}

func (m *MockDelegate[T]) FindUniqueOrThrow(ctx context.Context, args query.UniqueArgs) (*T, error) {
	ret := m.Called(ctx, args)
	return row[T](ret.Get(0)), ret.Error(1)
}

func (m *MockDelegate[T]) FindFirst(ctx context.Context, args query.FindArgs) (*T, error) {
	ret := m.Called(ctx, args)
	return row[T](ret.Get(0)), ret.Error(1)
}

func (m *MockDelegate[T]) FindFirstOrThrow(ctx context.Context, args query.FindArgs) (*T, error) {
	ret := m.Called(ctx, args)
	return row[T](ret.Get(0)), ret.Error(1)
}

func (m *MockDelegate[T]) FindMany(ctx context.Context, args query.FindArgs) ([]T, error) {
	ret := m.Called(ctx, args)
	return rows[T](ret.Get(0)), ret.Error(1)
}

func (m *MockDelegate[T]) Create(ctx context.Context, r *T) (*T, error) {
	ret := m.Called(ctx, r)
	return row[T](ret.Get(0)), ret.Error(1)
}

func (m *MockDelegate[T]) CreateMany(ctx context.Context, rs []T, opts query.CreateManyOptions) (int64, error) {
	ret := m.Called(ctx, rs, opts)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *MockDelegate[T]) Update(ctx context.Context, where query.Where, data query.Data) (*T, error) {
	ret := m.Called(ctx, where, data)
	return row[T](ret.Get(0)), ret.Error(1)
}

func (m *MockDelegate[T]) UpdateMany(ctx context.Context, where query.Where, data query.Data) (int64, error) {
	ret := m.Called(ctx, where, data)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *MockDelegate[T]) Upsert(ctx context.Context, where query.Where, create *T, update query.Data) (*T, error) {
	ret := m.Called(ctx, where, create, update)
	return row[T](ret.Get(0)), ret.Error(1)
}

func (m *MockDelegate[T]) Delete(ctx context.Context, where query.Where) (*T, error) {
	ret := m.Called(ctx, where)
	return row[T](ret.Get(0)), ret.Error(1)
}

func (m *MockDelegate[T]) DeleteMany(ctx context.Context, where query.Where) (int64, error) {
	ret := m.Called(ctx, where)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *MockDelegate[T]) Aggregate(ctx context.Context, args query.AggregateArgs) (query.AggregateResult, error) {
	ret := m.Called(ctx, args)
	return ret.Get(0).(query.AggregateResult), ret.Error(1)
}

func (m *MockDelegate[T]) GroupBy(ctx context.Context, args query.GroupByArgs) ([]query.GroupRow, error) {
	ret := m.Called(ctx, args)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).([]query.GroupRow), ret.Error(1)
}

func (m *MockDelegate[T]) Count(ctx context.Context, args query.CountArgs) (query.CountResult, error) {
	ret := m.Called(ctx, args)
	return ret.Get(0).(query.CountResult), ret.Error(1)
}

// MockAccountStore is a mock of persistence.AccountStore
type MockAccountStore struct {
	*MockDelegate[entity.Account]
}

var _ persistence.AccountStore = MockAccountStore{}

// NewMockAccountStore creates a MockAccountStore
func NewMockAccountStore(t interface {
	mock.TestingT
	Cleanup(func())
}) MockAccountStore {
	return MockAccountStore{NewMockDelegate[entity.Account](t)}
}

func (m MockAccountStore) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (*entity.Account, error) {
	ret := m.Called(ctx, accountID, delta)
	return row[entity.Account](ret.Get(0)), ret.Error(1)
}

// MockStatementStore is a mock of persistence.StatementStore
type MockStatementStore struct {
	*MockDelegate[entity.Statement]
}

var _ persistence.StatementStore = MockStatementStore{}

// NewMockStatementStore creates a MockStatementStore
func NewMockStatementStore(t interface {
	mock.TestingT
	Cleanup(func())
}) MockStatementStore {
	return MockStatementStore{NewMockDelegate[entity.Statement](t)}
}

func (m MockStatementStore) MarkProcessed(ctx context.Context, id string, at time.Time) (*entity.Statement, error) {
	ret := m.Called(ctx, id, at)
	return row[entity.Statement](ret.Get(0)), ret.Error(1)
}

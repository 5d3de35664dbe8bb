package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/persistence"
)

type txKey struct{}

// MockUnitOfWork is a mock of persistence.UnitOfWork. Run records its
// options and, unless the expectation returns an error, calls fn with a
// context marked as transactional and returns fn's error.
type MockUnitOfWork struct {
	mock.Mock
}

var _ persistence.UnitOfWork = (*MockUnitOfWork)(nil)

// NewMockUnitOfWork creates a MockUnitOfWork whose expectations are asserted
// when the test ends
func NewMockUnitOfWork(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUnitOfWork {
	m := &MockUnitOfWork{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUnitOfWork) Begin(ctx context.Context, opts persistence.TxOptions) (context.Context, error) {
	ret := m.Called(ctx, opts)
	if err := ret.Error(1); err != nil {
		return nil, err
	}
	return context.WithValue(ctx, txKey{}, true), nil
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) Run(ctx context.Context, opts persistence.TxOptions, fn func(ctx context.Context) error) error {
	if err := m.Called(ctx, opts).Error(0); err != nil {
		return err
	}
	if m.InTransaction(ctx) {
		return fn(ctx)
	}
	return fn(context.WithValue(ctx, txKey{}, true))
}

func (m *MockUnitOfWork) InTransaction(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

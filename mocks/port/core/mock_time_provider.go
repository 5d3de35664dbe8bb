// Package core provides testify mocks of the core ports.
package core

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
)

// MockTimeProvider is a mock of core.TimeProvider
type MockTimeProvider struct {
	mock.Mock
}

var _ coreport.TimeProvider = (*MockTimeProvider)(nil)

// NewMockTimeProvider creates a MockTimeProvider whose expectations are
// asserted when the test ends
func NewMockTimeProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTimeProvider {
	m := &MockTimeProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTimeProvider) Now() time.Time {
	return m.Called().Get(0).(time.Time)
}

func (m *MockTimeProvider) Since(t time.Time) time.Duration {
	return m.Called(t).Get(0).(time.Duration)
}

func (m *MockTimeProvider) WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	ret := m.Called(ctx, d)
	if fn, ok := ret.Get(0).(func(context.Context, time.Duration) (context.Context, context.CancelFunc)); ok {
		return fn(ctx, d)
	}
	return ret.Get(0).(context.Context), ret.Get(1).(context.CancelFunc)
}

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	errs "github.com/amirhossein-jamali/finance-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/finance-ledger/internal/infrastructure/adapter/logger"
)

func fastRetry(max int) RetryConfig {
	return RetryConfig{MaxRetries: max, RetryInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestRetryOnWriteConflict(t *testing.T) {
	conflict := fmt.Errorf("update: %w", errs.ErrWriteConflict)

	t.Run("succeeds after conflicts", func(t *testing.T) {
		calls := 0
		err := RetryOnWriteConflict(context.Background(), fastRetry(3), func() error {
			calls++
			if calls < 3 {
				return conflict
			}
			return nil
		}, logger.NewNoopLogger())
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := RetryOnWriteConflict(context.Background(), fastRetry(2), func() error {
			calls++
			return conflict
		}, logger.NewNoopLogger())
		assert.ErrorIs(t, err, errs.ErrWriteConflict)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		other := errors.New("boom")
		err := RetryOnWriteConflict(context.Background(), fastRetry(5), func() error {
			calls++
			return other
		}, logger.NewNoopLogger())
		assert.ErrorIs(t, err, other)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := RetryOnWriteConflict(ctx, RetryConfig{MaxRetries: 10, RetryInterval: time.Hour, MaxInterval: time.Hour}, func() error {
			calls++
			cancel()
			return conflict
		}, logger.NewNoopLogger())
		assert.ErrorIs(t, err, errs.ErrWriteConflict)
		assert.Equal(t, 1, calls)
	})
}

func TestRetryOnConnectionError(t *testing.T) {
	calls := 0
	err := RetryOnConnectionError(context.Background(), fastRetry(3), func() error {
		calls++
		if calls == 1 {
			return errors.New("dial tcp 10.0.0.1:5432: connect: connection refused")
		}
		return nil
	}, logger.NewNoopLogger())
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCalculateBackoffWithJitter(t *testing.T) {
	config := RetryConfig{RetryInterval: 10 * time.Millisecond, MaxInterval: 50 * time.Millisecond}

	assert.Equal(t, 10*time.Millisecond, calculateBackoffWithJitter(0, config))
	assert.Equal(t, 40*time.Millisecond, calculateBackoffWithJitter(2, config))
	assert.Equal(t, 50*time.Millisecond, calculateBackoffWithJitter(6, config))

	config.JitterFactor = 0.5
	backoff := calculateBackoffWithJitter(1, config)
	assert.GreaterOrEqual(t, backoff, 20*time.Millisecond)
	assert.Less(t, backoff, 30*time.Millisecond)
}

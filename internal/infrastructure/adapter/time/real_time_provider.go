package time

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
)

// RealTimeProvider is the wall clock
type RealTimeProvider struct{}

// NewRealTimeProvider creates a new real time provider
func NewRealTimeProvider() core.TimeProvider {
	return &RealTimeProvider{}
}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}

func (p *RealTimeProvider) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (p *RealTimeProvider) WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

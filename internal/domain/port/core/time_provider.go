package core

import (
	"context"
	"time"
)

// TimeProvider is the clock of the ledger. Now is always in UTC, the zone
// every stored timestamp uses.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	// WithTimeout derives a context that expires after d on this clock
	WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc)
}

// Package scheduler runs fixed-period background jobs.
package scheduler

import (
	"context"
	"time"
)

// Every calls fn once per period until ctx is cancelled. A run in progress
// when ctx is cancelled completes; no further runs are started. It returns
// nil on cancellation.
func Every(ctx context.Context, period time.Duration, fn func(context.Context)) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			fn(ctx)
		}
	}
}

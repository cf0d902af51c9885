package tasks

import (
	"context"
	"time"
)

// Sleep blocks for at least d, or until ctx is done.
//
// Negative durations are treated as zero. Returns ctx.Err() if the context
// ends before the timer fires.
func Sleep(ctx context.Context, d time.Duration) error {
	if d < 0 {
		d = 0
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

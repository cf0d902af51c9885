package tasks

import (
	"context"
	"time"
)

// DefaultInterval is the pause before each observed value.
const DefaultInterval = time.Second

// Observer receives each value handed out by [Iterate].
//
// Observers are assumed infallible. A panicking observer is not recovered.
type Observer func(value string)

// Iterate waits interval, then calls observe, for each value in order.
//
// The delay for value i+1 does not start until observe has returned for
// value i, so a run takes roughly interval*len(values). An empty slice
// returns immediately. The only error is the context's, when it ends mid-run.
func Iterate(ctx context.Context, values []string, interval time.Duration, observe Observer) error {
	for _, v := range values {
		if err := Sleep(ctx, interval); err != nil {
			return err
		}
		observe(v)
	}
	return nil
}

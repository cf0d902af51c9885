package asyncflow

import (
	"errors"
	"time"

	"github.com/jpalmerr/asyncflow/internal/store"
)

// Outcome describes one completed task run, as passed to callbacks
// registered with [WithOutcomeCallback].
type Outcome struct {
	// ID uniquely identifies the run.
	ID string

	// Task is the task name: "task01", "task02" or "task05".
	Task string

	// Route is the HTTP path that triggered the run.
	Route string

	// Duration is how long the task took.
	Duration time.Duration

	// FinishedAt is when the task completed.
	FinishedAt time.Time

	// Err is the error returned to the client, or nil on success.
	Err error
}

// Succeeded reports whether the run completed without error.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

func runRecordToOutcome(rec store.RunRecord) Outcome {
	var err error
	if rec.Error != nil {
		err = errors.New(*rec.Error)
	}
	return Outcome{
		ID:         rec.ID,
		Task:       rec.Task,
		Route:      rec.Route,
		Duration:   time.Duration(rec.DurationMs) * time.Millisecond,
		FinishedAt: rec.FinishedAt,
		Err:        err,
	}
}

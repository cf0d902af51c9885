package store

import "time"

// Outcome values recorded in [RunRecord.Outcome].
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// RunRecord summarises one completed task run.
//
// RunRecord is optimized for JSON serialization by the /api/runs endpoint.
type RunRecord struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// Task is the task name (e.g. "task02").
	Task string `json:"task"`

	// Route is the HTTP path that triggered the run.
	Route string `json:"route"`

	// Outcome is either "success" or "failure".
	Outcome string `json:"outcome"`

	// DurationMs is the wall-clock time the task took, in milliseconds.
	DurationMs int64 `json:"duration_ms"`

	// FinishedAt is when the task completed.
	FinishedAt time.Time `json:"finished_at"`

	// Error holds the message returned to the client on failure.
	Error *string `json:"error"`
}

// Store records task outcomes.
//
// Implementations must be safe for concurrent access.
type Store interface {
	// Update stores a run record, replacing any earlier record for the same task.
	Update(record RunRecord)

	// GetAll returns the latest record of every task, sorted by task name.
	// The returned slice is a snapshot.
	GetAll() []RunRecord
}

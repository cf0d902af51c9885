package store

import (
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of [Store].
//
// Records are keyed by task name; each update replaces the previous record
// for that task.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]RunRecord
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]RunRecord),
	}
}

// Update stores a [RunRecord] under its Task.
func (m *MemoryStore) Update(record RunRecord) {
	m.mu.Lock()
	m.runs[record.Task] = record
	m.mu.Unlock()
}

// GetAll returns a snapshot of the latest record for each task, sorted by
// task name.
func (m *MemoryStore) GetAll() []RunRecord {
	m.mu.RLock()
	results := make([]RunRecord, 0, len(m.runs))
	for _, r := range m.runs {
		results = append(results, r)
	}
	m.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Task < results[j].Task
	})
	return results
}

// Package store provides the data-store connection and the run history for
// asyncflow.
//
// The main components are:
//
//   - [Database]: the process-wide data-store handle, established once at startup
//   - [ConnectMongo]: dials and pings MongoDB, returning a [Database]
//   - [Store]: interface for recording task outcomes
//   - [MemoryStore]: in-memory [Store] keyed by task
//   - [RunRecord]: storage representation of one completed task run
//
// The run history is designed for concurrent access. The data-store handle is
// read-only after construction and needs no locking.
package store

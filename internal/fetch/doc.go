// Package fetch provides the outbound HTTP client used by the asyncflow tasks.
//
// This package is internal to asyncflow and handles the mechanics of a single
// GET request: connection pooling, optional per-request timeouts, body size
// limits and JSON payload validation.
//
// The main components are:
//
//   - [Client]: pooled HTTP client, safe for concurrent use
//   - [Response]: outcome of one request, including any error
//
// Error wrapping in this package is lossless; the tasks package decides what
// is surfaced to HTTP callers.
package fetch

// Package server provides the HTTP dispatcher for asyncflow.
//
// This package is internal to asyncflow and binds each task to a route:
//
//   - GET /task01: sequential iteration, plain-text confirmation
//   - GET /task02: single fetch, JSON envelope
//   - GET /task05: parallel fetch, JSON envelope with ordered data
//   - GET /api/runs: latest outcome of each task
//   - GET /healthz: data-store reachability
//
// Task failures become a 500 with body {"message": <error text>}. The server
// supports graceful shutdown via context cancellation: in-flight requests
// get 5 seconds to finish. Only a client disconnect cancels a request.
package server

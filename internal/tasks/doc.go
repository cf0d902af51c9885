// Package tasks implements the three asynchronous control-flow patterns served
// by asyncflow.
//
//   - [Iterate]: sequential await-in-loop; delay, then observe, per value
//   - [Runner.FetchOne]: a single awaited GET
//   - [Runner.FetchAll]: all GETs started before any is awaited, results in
//     input order, first failure fails the batch
//
// Fetch failures are reported as the fixed sentinels [ErrFetchAPI] and
// [ErrFetchMany]. The underlying cause is logged and then dropped; callers
// see only the sentinel message.
package tasks

// Package sweeper implements the periodic matching sweep.
//
// The Sweeper:
//   - Runs one pass immediately on start, then waits Interval after each pass
//   - Matches instruments 0 through N-1 in ascending order on each pass
//   - Isolates failures per instrument; a failing instrument never stops the pass
//   - Stops when Stop is called or the start context is cancelled
package sweeper

// Package orderbook stores resting orders for a fixed universe of instruments.
//
// The book is an arena of slots indexed by instrument. Each slot owns:
//   - a buy sequence and a sell sequence, kept in arrival order (not price order)
//   - per-side arrival counters
//   - a mutex guarding all of the above
//
// Operations on different instruments never contend.
package orderbook

// Package sink delivers executed trades to their consumers.
//
// Sinks:
//   - Log: one structured log line per trade
//   - Func: adapter for callbacks
//   - Multi: fan-out to several sinks
//   - Buffered: enqueues into a growable Buffer for an asynchronous consumer
//
// Emit is called outside the order book lock but on the matching goroutine,
// so sinks should return quickly.
package sink

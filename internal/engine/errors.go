package engine

import "fmt"

// MatchError reports a matching pass for one instrument that did not complete
// cleanly. Trades already applied to the book stay applied.
type MatchError struct {
	Instrument int
	Emitted    int // Trades the sink accepted
	Failed     int // Trades whose emission panicked
	Cause      error
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("match instrument %d: %v (emitted %d trades, %d failed)", e.Instrument, e.Cause, e.Emitted, e.Failed)
}

func (e *MatchError) Unwrap() error {
	return e.Cause
}

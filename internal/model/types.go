package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxInstruments is the size of the instrument universe.
const MaxInstruments = 1024

// Instrument indexes one order book slot.
type Instrument = int

// Side is the direction of an order.
type Side uint8

const (
	SideBuy Side = iota + 1
	SideSell
)

// String returns the side as accepted by ParseSide.
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "Buy"
	case SideSell:
		return "Sell"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// Valid reports whether s is Buy or Sell.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// ParseSide converts "Buy" or "Sell" into a Side. Matching is case-sensitive.
func ParseSide(s string) (Side, error) {
	switch s {
	case "Buy":
		return SideBuy, nil
	case "Sell":
		return SideSell, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

// -----------------------------------------------------------------------------
// Book Types
// -----------------------------------------------------------------------------

// Order is a resting limit order.
type Order struct {
	Side     Side
	Quantity int64  // Remaining quantity, always > 0 while resting
	Price    int64  // Limit price
	Arrival  uint64 // Insertion index within its (instrument, side) sequence
}

// -----------------------------------------------------------------------------
// Event Types
// -----------------------------------------------------------------------------

// Trade is an executed match between one buy and one sell order.
// Price is always the sell order's price.
type Trade struct {
	ID            uuid.UUID // Random, for downstream de-duplication
	Instrument    Instrument
	Price         int64
	Quantity      int64
	BuyRemaining  int64  // Buy quantity left after the fill (0 = removed)
	SellRemaining int64  // Sell quantity left after the fill (0 = removed)
	BuyArrival    uint64 // Arrival index of the matched buy order
	SellArrival   uint64 // Arrival index of the matched sell order
	ExecutedAt    time.Time
}

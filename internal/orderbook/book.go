package orderbook

import (
	"fmt"
	"sync"

	"github.com/rickgao/matching-engine/internal/model"
)

// slot is one instrument's pair of sequences.
type slot struct {
	mu       sync.Mutex
	buys     []model.Order
	sells    []model.Order
	nextBuy  uint64
	nextSell uint64
}

// Book holds one slot per instrument.
type Book struct {
	slots []slot
}

// Stats summarizes resting orders across the book.
type Stats struct {
	Instruments  int   // Size of the universe
	Active       int   // Instruments with at least one resting order
	BuyOrders    int64 // Resting buy orders
	SellOrders   int64 // Resting sell orders
	BuyQuantity  int64 // Sum of resting buy quantity
	SellQuantity int64 // Sum of resting sell quantity
}

// New creates a book for instruments [0, instruments).
func New(instruments int) (*Book, error) {
	if instruments < 1 || instruments > model.MaxInstruments {
		return nil, fmt.Errorf("instrument count must be between 1 and %d, got %d", model.MaxInstruments, instruments)
	}
	return &Book{slots: make([]slot, instruments)}, nil
}

// Instruments returns the size of the instrument universe.
func (b *Book) Instruments() int {
	return len(b.slots)
}

// CheckInstrument returns ErrInvalidInstrument if instrument is out of range.
func (b *Book) CheckInstrument(instrument model.Instrument) error {
	if instrument < 0 || instrument >= len(b.slots) {
		return fmt.Errorf("%w: %d not in [0, %d)", model.ErrInvalidInstrument, instrument, len(b.slots))
	}
	return nil
}

// Add appends a new order to the instrument's sequence for side and returns it.
// A rejected order is not stored.
func (b *Book) Add(instrument model.Instrument, side model.Side, quantity, price int64) (model.Order, error) {
	if err := b.CheckInstrument(instrument); err != nil {
		return model.Order{}, err
	}
	if !side.Valid() {
		return model.Order{}, fmt.Errorf("%w: %v", model.ErrInvalidSide, side)
	}
	if quantity <= 0 {
		return model.Order{}, fmt.Errorf("%w: %d", model.ErrInvalidQuantity, quantity)
	}
	if price <= 0 {
		return model.Order{}, fmt.Errorf("%w: %d", model.ErrInvalidPrice, price)
	}

	s := &b.slots[instrument]
	s.mu.Lock()
	defer s.mu.Unlock()

	o := model.Order{Side: side, Quantity: quantity, Price: price}
	if side == model.SideBuy {
		s.nextBuy++
		o.Arrival = s.nextBuy
		s.buys = append(s.buys, o)
	} else {
		s.nextSell++
		o.Arrival = s.nextSell
		s.sells = append(s.sells, o)
	}
	return o, nil
}

// UpdateFunc receives an instrument's sequences and returns their new contents.
// It may modify the slices in place.
type UpdateFunc func(buys, sells []model.Order) (newBuys, newSells []model.Order)

// Update runs fn while holding the instrument's lock, then stores the sequences
// it returns. The two sequences are always replaced together.
func (b *Book) Update(instrument model.Instrument, fn UpdateFunc) error {
	if err := b.CheckInstrument(instrument); err != nil {
		return err
	}

	s := &b.slots[instrument]
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buys, s.sells = fn(s.buys, s.sells)
	return nil
}

// Snapshot returns copies of the instrument's buy and sell sequences.
func (b *Book) Snapshot(instrument model.Instrument) (buys, sells []model.Order, err error) {
	if err := b.CheckInstrument(instrument); err != nil {
		return nil, nil, err
	}

	s := &b.slots[instrument]
	s.mu.Lock()
	defer s.mu.Unlock()

	buys = append([]model.Order(nil), s.buys...)
	sells = append([]model.Order(nil), s.sells...)
	return buys, sells, nil
}

// Depth returns the number of resting buy and sell orders for the instrument.
func (b *Book) Depth(instrument model.Instrument) (buys, sells int, err error) {
	if err := b.CheckInstrument(instrument); err != nil {
		return 0, 0, err
	}

	s := &b.slots[instrument]
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buys), len(s.sells), nil
}

// Stats walks every slot and totals resting orders. Slots are locked one at a
// time, so the result is not a point-in-time view of the whole book.
func (b *Book) Stats() Stats {
	st := Stats{Instruments: len(b.slots)}
	for i := range b.slots {
		s := &b.slots[i]
		s.mu.Lock()
		if len(s.buys) > 0 || len(s.sells) > 0 {
			st.Active++
		}
		st.BuyOrders += int64(len(s.buys))
		st.SellOrders += int64(len(s.sells))
		for _, o := range s.buys {
			st.BuyQuantity += o.Quantity
		}
		for _, o := range s.sells {
			st.SellQuantity += o.Quantity
		}
		s.mu.Unlock()
	}
	return st
}

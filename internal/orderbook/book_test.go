package orderbook

import (
	"errors"
	"sync"
	"testing"

	"github.com/rickgao/matching-engine/internal/model"
)

func newTestBook(t *testing.T, instruments int) *Book {
	t.Helper()
	b, err := New(instruments)
	if err != nil {
		t.Fatalf("New(%d) error: %v", instruments, err)
	}
	return b
}

func TestNew_InstrumentBounds(t *testing.T) {
	for _, n := range []int{0, -1, model.MaxInstruments + 1} {
		if _, err := New(n); err == nil {
			t.Errorf("New(%d) expected error", n)
		}
	}
	b := newTestBook(t, model.MaxInstruments)
	if b.Instruments() != model.MaxInstruments {
		t.Errorf("Instruments() = %d, want %d", b.Instruments(), model.MaxInstruments)
	}
}

func TestAdd_AssignsArrivalPerSide(t *testing.T) {
	b := newTestBook(t, 4)

	b.Add(2, model.SideBuy, 10, 100)
	b.Add(2, model.SideSell, 5, 90)
	b.Add(2, model.SideBuy, 20, 101)
	o, err := b.Add(2, model.SideSell, 7, 91)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if o.Arrival != 2 {
		t.Errorf("second sell Arrival = %d, want 2", o.Arrival)
	}

	buys, sells, err := b.Snapshot(2)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if len(buys) != 2 || len(sells) != 2 {
		t.Fatalf("depth = %d/%d, want 2/2", len(buys), len(sells))
	}
	if buys[0].Arrival != 1 || buys[1].Arrival != 2 {
		t.Errorf("buy arrivals = %d,%d, want 1,2", buys[0].Arrival, buys[1].Arrival)
	}
	if buys[1].Price != 101 || buys[1].Quantity != 20 {
		t.Errorf("buys[1] = %+v, want qty 20 @ 101", buys[1])
	}

	// Other instruments are untouched.
	if nb, ns, _ := b.Depth(1); nb != 0 || ns != 0 {
		t.Errorf("Depth(1) = %d/%d, want 0/0", nb, ns)
	}
}

func TestAdd_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		instrument int
		side       model.Side
		qty, price int64
		want       error
	}{
		{"negative instrument", -1, model.SideBuy, 1, 1, model.ErrInvalidInstrument},
		{"instrument past end", 4, model.SideBuy, 1, 1, model.ErrInvalidInstrument},
		{"zero side", 0, model.Side(0), 1, 1, model.ErrInvalidSide},
		{"unknown side", 0, model.Side(7), 1, 1, model.ErrInvalidSide},
		{"zero quantity", 0, model.SideSell, 0, 1, model.ErrInvalidQuantity},
		{"negative quantity", 0, model.SideSell, -3, 1, model.ErrInvalidQuantity},
		{"zero price", 0, model.SideBuy, 1, 0, model.ErrInvalidPrice},
		{"negative price", 0, model.SideBuy, 1, -5, model.ErrInvalidPrice},
	}

	b := newTestBook(t, 4)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Add(tt.instrument, tt.side, tt.qty, tt.price)
			if !errors.Is(err, tt.want) {
				t.Errorf("Add() error = %v, want %v", err, tt.want)
			}
		})
	}

	st := b.Stats()
	if st.BuyOrders != 0 || st.SellOrders != 0 {
		t.Errorf("rejected orders were stored: %+v", st)
	}
}

func TestUpdate_ReplacesBothSequences(t *testing.T) {
	b := newTestBook(t, 2)
	b.Add(0, model.SideBuy, 10, 100)
	b.Add(0, model.SideSell, 10, 100)

	err := b.Update(0, func(buys, sells []model.Order) ([]model.Order, []model.Order) {
		return buys[:0], sells[:0]
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	if nb, ns, _ := b.Depth(0); nb != 0 || ns != 0 {
		t.Errorf("Depth(0) = %d/%d, want 0/0", nb, ns)
	}

	// Arrival counters keep increasing after removals.
	o, _ := b.Add(0, model.SideBuy, 1, 1)
	if o.Arrival != 2 {
		t.Errorf("Arrival after update = %d, want 2", o.Arrival)
	}

	if err := b.Update(5, nil); !errors.Is(err, model.ErrInvalidInstrument) {
		t.Errorf("Update(5) error = %v, want ErrInvalidInstrument", err)
	}
}

func TestSnapshot_IsCopy(t *testing.T) {
	b := newTestBook(t, 1)
	b.Add(0, model.SideBuy, 10, 100)

	buys, _, _ := b.Snapshot(0)
	buys[0].Quantity = 1

	again, _, _ := b.Snapshot(0)
	if again[0].Quantity != 10 {
		t.Errorf("Quantity = %d after mutating snapshot, want 10", again[0].Quantity)
	}
}

func TestStats(t *testing.T) {
	b := newTestBook(t, 8)
	b.Add(1, model.SideBuy, 10, 100)
	b.Add(1, model.SideBuy, 5, 99)
	b.Add(6, model.SideSell, 7, 120)

	st := b.Stats()
	if st.Instruments != 8 {
		t.Errorf("Instruments = %d, want 8", st.Instruments)
	}
	if st.Active != 2 {
		t.Errorf("Active = %d, want 2", st.Active)
	}
	if st.BuyOrders != 2 || st.SellOrders != 1 {
		t.Errorf("orders = %d/%d, want 2/1", st.BuyOrders, st.SellOrders)
	}
	if st.BuyQuantity != 15 || st.SellQuantity != 7 {
		t.Errorf("quantity = %d/%d, want 15/7", st.BuyQuantity, st.SellQuantity)
	}
}

func TestAdd_ConcurrentProducersLoseNothing(t *testing.T) {
	const (
		producers = 16
		perWorker = 500
	)
	b := newTestBook(t, 4)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			side := model.SideBuy
			if p%2 == 1 {
				side = model.SideSell
			}
			for i := 0; i < perWorker; i++ {
				if _, err := b.Add(3, side, int64(i%7+1), 100); err != nil {
					t.Errorf("Add error: %v", err)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	var want int64
	for i := 0; i < perWorker; i++ {
		want += int64(i%7 + 1)
	}
	want *= producers / 2

	buys, sells, _ := b.Snapshot(3)
	if len(buys) != producers/2*perWorker || len(sells) != producers/2*perWorker {
		t.Fatalf("depth = %d/%d, want %d each", len(buys), len(sells), producers/2*perWorker)
	}

	var buyQty, sellQty int64
	seen := make(map[uint64]bool, len(buys))
	for _, o := range buys {
		buyQty += o.Quantity
		if seen[o.Arrival] {
			t.Fatalf("duplicate buy arrival %d", o.Arrival)
		}
		seen[o.Arrival] = true
	}
	for _, o := range sells {
		sellQty += o.Quantity
	}
	if buyQty != want || sellQty != want {
		t.Errorf("quantity = %d/%d, want %d each", buyQty, sellQty, want)
	}

	for i := 1; i < len(buys); i++ {
		if buys[i].Arrival <= buys[i-1].Arrival {
			t.Fatalf("buy arrivals not increasing at %d: %d then %d", i, buys[i-1].Arrival, buys[i].Arrival)
		}
	}
}

package main

import (
	"fmt"
	"io"

	"github.com/rickgao/matching-engine/internal/engine"
	"github.com/rickgao/matching-engine/internal/model"
)

const demoInstrument = 50

// runDemo places a fixed set of crossing orders on one instrument and
// prints its book before and after a single match pass.
func runDemo(eng *engine.Engine, w io.Writer) error {
	instrument := demoInstrument
	if n := eng.Instruments(); instrument >= n {
		instrument = n - 1
	}

	orders := []struct {
		side     string
		quantity int64
		price    int64
	}{
		{"Buy", 20, 100},
		{"Sell", 15, 90},
		{"Sell", 10, 95},
	}
	for _, o := range orders {
		if err := eng.AddOrder(o.side, instrument, o.quantity, o.price); err != nil {
			return fmt.Errorf("add %s order: %w", o.side, err)
		}
	}

	fmt.Fprintf(w, "Manual orders on instrument %d\n", instrument)
	fmt.Fprintln(w, "Before matching:")
	if err := printBook(eng, instrument, w); err != nil {
		return err
	}

	trades, err := eng.MatchOrder(instrument)
	if err != nil {
		return fmt.Errorf("match instrument %d: %w", instrument, err)
	}

	fmt.Fprintf(w, "After matching (%d trades):\n", trades)
	return printBook(eng, instrument, w)
}

func printBook(eng *engine.Engine, instrument int, w io.Writer) error {
	buys, sells, err := eng.Book().Snapshot(instrument)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  Buy orders:  %s\n", formatOrders(buys))
	fmt.Fprintf(w, "  Sell orders: %s\n", formatOrders(sells))
	return nil
}

func formatOrders(orders []model.Order) string {
	if len(orders) == 0 {
		return "[]"
	}
	s := "["
	for i, o := range orders {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d@%d", o.Quantity, o.Price)
	}
	return s + "]"
}

package engine

import (
	"slices"

	"github.com/rickgao/matching-engine/internal/model"
)

// fill is one execution produced by drain.
type fill struct {
	price         int64
	quantity      int64
	buyRemaining  int64
	sellRemaining int64
	buyArrival    uint64
	sellArrival   uint64
}

// drain executes every currently possible trade between buys and sells and
// returns the updated sequences with the fills in execution order. The slices
// are modified in place. On return either one side is empty or every remaining
// buy is priced below every remaining sell.
func drain(buys, sells []model.Order) ([]model.Order, []model.Order, []fill) {
	var fills []fill

	for len(buys) > 0 && len(sells) > 0 {
		si := lowestSell(sells)
		ask := sells[si].Price

		bi := firstBuyAtOrAbove(buys, ask)
		if bi < 0 {
			break
		}

		qty := min(buys[bi].Quantity, sells[si].Quantity)
		buys[bi].Quantity -= qty
		sells[si].Quantity -= qty

		fills = append(fills, fill{
			price:         ask,
			quantity:      qty,
			buyRemaining:  buys[bi].Quantity,
			sellRemaining: sells[si].Quantity,
			buyArrival:    buys[bi].Arrival,
			sellArrival:   sells[si].Arrival,
		})

		if buys[bi].Quantity == 0 {
			buys = slices.Delete(buys, bi, bi+1)
		}
		if sells[si].Quantity == 0 {
			sells = slices.Delete(sells, si, si+1)
		}
	}

	return buys, sells, fills
}

// lowestSell returns the index of the cheapest sell. Strict comparison keeps
// the first one found on ties. sells must be non-empty.
func lowestSell(sells []model.Order) int {
	best := 0
	for i := 1; i < len(sells); i++ {
		if sells[i].Price < sells[best].Price {
			best = i
		}
	}
	return best
}

// firstBuyAtOrAbove returns the index of the first buy priced >= price, or -1.
func firstBuyAtOrAbove(buys []model.Order, price int64) int {
	for i := range buys {
		if buys[i].Price >= price {
			return i
		}
	}
	return -1
}

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rickgao/matching-engine/internal/metrics"
	"github.com/rickgao/matching-engine/internal/model"
	"github.com/rickgao/matching-engine/internal/orderbook"
	"github.com/rickgao/matching-engine/internal/version"
)

// pinger is satisfied by *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}

// createHealthHandler creates the HTTP handler for health checks, book
// inspection and Prometheus metrics. db may be nil when the trade export
// is disabled.
func createHealthHandler(book *orderbook.Book, db pinger, m *metrics.Metrics, metricsPath string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Version    version.Info           `json:"version"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.Get(),
			Components: make(map[string]interface{}),
		}

		// Check database
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["database"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["database"] = "connected"
			}
		}

		st := book.Stats()
		health.Components["order_book"] = map[string]interface{}{
			"instruments":   st.Instruments,
			"active":        st.Active,
			"buy_orders":    st.BuyOrders,
			"sell_orders":   st.SellOrders,
			"buy_quantity":  st.BuyQuantity,
			"sell_quantity": st.SellQuantity,
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/book", func(w http.ResponseWriter, r *http.Request) {
		instrument, err := strconv.Atoi(r.URL.Query().Get("instrument"))
		if err != nil {
			http.Error(w, "instrument query parameter must be an integer", http.StatusBadRequest)
			return
		}
		buys, sells, err := book.Snapshot(instrument)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"instrument": instrument,
			"buys":       ordersJSON(buys),
			"sells":      ordersJSON(sells),
		})
	})

	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	mux.Handle(metricsPath, m.Handler())

	return mux
}

type orderJSON struct {
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
	Arrival  uint64 `json:"arrival"`
}

func ordersJSON(orders []model.Order) []orderJSON {
	out := make([]orderJSON, len(orders))
	for i, o := range orders {
		out[i] = orderJSON{Quantity: o.Quantity, Price: o.Price, Arrival: o.Arrival}
	}
	return out
}

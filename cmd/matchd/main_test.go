package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rickgao/matching-engine/internal/config"
	"github.com/rickgao/matching-engine/internal/engine"
	"github.com/rickgao/matching-engine/internal/metrics"
	"github.com/rickgao/matching-engine/internal/orderbook"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestEngine(t *testing.T, instruments int) (*engine.Engine, *metrics.Metrics) {
	t.Helper()
	book, err := orderbook.New(instruments)
	if err != nil {
		t.Fatalf("orderbook.New: %v", err)
	}
	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return engine.New(book, engine.WithLogger(logger), engine.WithMetrics(m)), m
}

func TestRunDemo(t *testing.T) {
	eng, _ := newTestEngine(t, 1024)

	var out bytes.Buffer
	if err := runDemo(eng, &out); err != nil {
		t.Fatalf("runDemo: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Manual orders on instrument 50",
		"Buy orders:  [20@100]",
		"Sell orders: [15@90 10@95]",
		"After matching (2 trades):",
		"Buy orders:  []",
		"Sell orders: [5@95]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunDemoSmallUniverse(t *testing.T) {
	eng, _ := newTestEngine(t, 8)

	var out bytes.Buffer
	if err := runDemo(eng, &out); err != nil {
		t.Fatalf("runDemo: %v", err)
	}
	if !strings.Contains(out.String(), "instrument 7") {
		t.Errorf("expected demo to fall back to last instrument:\n%s", out.String())
	}
}

func TestHealthHandler(t *testing.T) {
	eng, m := newTestEngine(t, 4)
	if err := eng.AddOrder("Buy", 1, 10, 100); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}

	tests := []struct {
		name       string
		db         pinger
		wantCode   int
		wantStatus string
	}{
		{"no database", nil, http.StatusOK, "healthy"},
		{"database up", fakePinger{}, http.StatusOK, "healthy"},
		{"database down", fakePinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createHealthHandler(eng.Book(), tt.db, m, "/metrics")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}

			var body struct {
				Status     string                     `json:"status"`
				Components map[string]json.RawMessage `json:"components"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}

			var book struct {
				Instruments int   `json:"instruments"`
				BuyOrders   int64 `json:"buy_orders"`
			}
			if err := json.Unmarshal(body.Components["order_book"], &book); err != nil {
				t.Fatalf("decode order_book: %v", err)
			}
			if book.Instruments != 4 || book.BuyOrders != 1 {
				t.Errorf("order_book = %+v, want 4 instruments and 1 buy", book)
			}
		})
	}
}

func TestDebugBookHandler(t *testing.T) {
	eng, m := newTestEngine(t, 4)
	if err := eng.AddOrder("Sell", 2, 7, 55); err != nil {
		t.Fatalf("AddOrder: %v", err)
	}
	h := createHealthHandler(eng.Book(), nil, m, "/metrics")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/book?instrument=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	var body struct {
		Sells []orderJSON `json:"sells"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Sells) != 1 || body.Sells[0].Quantity != 7 || body.Sells[0].Price != 55 {
		t.Errorf("sells = %+v, want [7@55]", body.Sells)
	}

	for _, q := range []string{"instrument=abc", "instrument=4", "instrument=-1"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/book?"+q, nil))
		if rec.Code == http.StatusOK {
			t.Errorf("%s: expected error status, got 200", q)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	eng, m := newTestEngine(t, 2)
	eng.AddOrder("Buy", 0, 5, 10)
	eng.AddOrder("Sell", 0, 5, 10)
	if _, err := eng.MatchOrder(0); err != nil {
		t.Fatalf("MatchOrder: %v", err)
	}

	h := createHealthHandler(eng.Book(), nil, m, "/custom-metrics")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/custom-metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "matching_engine_trades_total 1") {
		t.Errorf("metrics output missing trade counter:\n%s", rec.Body.String())
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level: %s", out)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &rec); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", out, err)
	}
	if rec["msg"] != "shown" || rec["k"] != "v" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNewLoggerFallsBackToInfoText(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "loud"}, &buf)

	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") {
		t.Errorf("unexpected text output: %q", out)
	}
}

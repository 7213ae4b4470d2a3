package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/matching-engine/internal/model"
)

const namespace = "matching_engine"

// Rejection reasons used as the "reason" label.
const (
	ReasonInvalidSide       = "invalid_side"
	ReasonInvalidInstrument = "invalid_instrument"
	ReasonInvalidQuantity   = "invalid_quantity"
	ReasonInvalidPrice      = "invalid_price"
	ReasonOther             = "other"
)

// Metrics holds the engine's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ordersAccepted *prometheus.CounterVec
	ordersRejected *prometheus.CounterVec
	trades         prometheus.Counter
	tradedQuantity prometheus.Counter
	matchFailures  prometheus.Counter
	sweeps         prometheus.Counter
	sweepDuration  prometheus.Histogram
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ordersAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_accepted_total",
			Help:      "Orders appended to the book.",
		}, []string{"side"}),
		ordersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Orders rejected by validation.",
		}, []string{"reason"}),
		trades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Trades executed.",
		}),
		tradedQuantity: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traded_quantity_total",
			Help:      "Sum of executed trade quantities.",
		}),
		matchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_failures_total",
			Help:      "Instruments whose matching pass failed.",
		}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Completed full-universe sweep passes.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of a full-universe sweep pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}

	m.registry.MustRegister(
		m.ordersAccepted,
		m.ordersRejected,
		m.trades,
		m.tradedQuantity,
		m.matchFailures,
		m.sweeps,
		m.sweepDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OrderAccepted counts an order appended to the book, labelled by side.
func (m *Metrics) OrderAccepted(side model.Side) {
	if m == nil {
		return
	}
	m.ordersAccepted.WithLabelValues(side.String()).Inc()
}

// OrderRejected counts a rejected order, labelled by Reason(err).
func (m *Metrics) OrderRejected(err error) {
	if m == nil {
		return
	}
	m.ordersRejected.WithLabelValues(Reason(err)).Inc()
}

// TradeExecuted counts one trade and adds its quantity to the traded total.
func (m *Metrics) TradeExecuted(t model.Trade) {
	if m == nil {
		return
	}
	m.trades.Inc()
	m.tradedQuantity.Add(float64(t.Quantity))
}

// MatchFailed counts an instrument whose matching pass returned a *MatchError.
func (m *Metrics) MatchFailed() {
	if m == nil {
		return
	}
	m.matchFailures.Inc()
}

// SweepCompleted counts a full sweep pass and records its duration.
func (m *Metrics) SweepCompleted(d time.Duration) {
	if m == nil {
		return
	}
	m.sweeps.Inc()
	m.sweepDuration.Observe(d.Seconds())
}

// Reason maps a validation error to its label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidSide):
		return ReasonInvalidSide
	case errors.Is(err, model.ErrInvalidInstrument):
		return ReasonInvalidInstrument
	case errors.Is(err, model.ErrInvalidQuantity):
		return ReasonInvalidQuantity
	case errors.Is(err, model.ErrInvalidPrice):
		return ReasonInvalidPrice
	default:
		return ReasonOther
	}
}

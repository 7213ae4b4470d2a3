package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/matching-engine/internal/metrics"
	"github.com/rickgao/matching-engine/internal/model"
	"github.com/rickgao/matching-engine/internal/orderbook"
	"github.com/rickgao/matching-engine/internal/sink"
)

// Engine accepts orders into a Book and matches them on demand.
// All methods are safe for concurrent use.
type Engine struct {
	book    *orderbook.Book
	sink    sink.TradeSink
	logger  *slog.Logger
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() uuid.UUID
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink sets the trade sink. Defaults to sink.Discard.
func WithSink(s sink.TradeSink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock sets the time source used for Trade.ExecutedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine over book.
func New(book *orderbook.Book, opts ...Option) *Engine {
	e := &Engine{
		book:   book,
		sink:   sink.Discard,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Book returns the underlying order book.
func (e *Engine) Book() *orderbook.Book {
	return e.book
}

// Instruments returns the size of the instrument universe.
func (e *Engine) Instruments() int {
	return e.book.Instruments()
}

// AddOrder parses side ("Buy" or "Sell") and submits the order.
// A rejected order is not stored and does not affect any other order.
func (e *Engine) AddOrder(side string, instrument int, quantity, price int64) error {
	s, err := model.ParseSide(side)
	if err != nil {
		e.reject(err, instrument)
		return err
	}
	_, err = e.Submit(s, instrument, quantity, price)
	return err
}

// Submit validates and appends an order to the book.
func (e *Engine) Submit(side model.Side, instrument int, quantity, price int64) (model.Order, error) {
	o, err := e.book.Add(instrument, side, quantity, price)
	if err != nil {
		e.reject(err, instrument)
		return model.Order{}, err
	}
	e.metrics.OrderAccepted(side)
	return o, nil
}

func (e *Engine) reject(err error, instrument int) {
	e.metrics.OrderRejected(err)
	e.logger.Debug("order rejected",
		"instrument", instrument,
		"error", err,
	)
}

// MatchOrder executes every currently possible trade for instrument and
// returns how many were emitted. It is a no-op if either side is empty.
// A panic while matching or emitting is recovered and returned as a
// *MatchError so callers can carry on with other instruments. A sink panic
// on one trade does not stop the remaining trades from being emitted.
func (e *Engine) MatchOrder(instrument int) (emitted int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &MatchError{
				Instrument: instrument,
				Emitted:    emitted,
				Cause:      fmt.Errorf("panic: %v", r),
			}
			e.metrics.MatchFailed()
		}
	}()

	var fills []fill
	err = e.book.Update(instrument, func(buys, sells []model.Order) ([]model.Order, []model.Order) {
		if len(buys) == 0 || len(sells) == 0 {
			return buys, sells
		}
		buys, sells, fills = drain(buys, sells)
		return buys, sells
	})
	if err != nil {
		return 0, err
	}
	if len(fills) == 0 {
		return 0, nil
	}

	at := e.now()
	var failures []error
	for _, f := range fills {
		t := model.Trade{
			ID:            e.newID(),
			Instrument:    instrument,
			Price:         f.price,
			Quantity:      f.quantity,
			BuyRemaining:  f.buyRemaining,
			SellRemaining: f.sellRemaining,
			BuyArrival:    f.buyArrival,
			SellArrival:   f.sellArrival,
			ExecutedAt:    at,
		}
		e.metrics.TradeExecuted(t)
		if err := e.emit(t); err != nil {
			failures = append(failures, err)
			continue
		}
		emitted++
	}

	if len(failures) > 0 {
		e.metrics.MatchFailed()
		return emitted, &MatchError{
			Instrument: instrument,
			Emitted:    emitted,
			Failed:     len(failures),
			Cause:      errors.Join(failures...),
		}
	}
	return emitted, nil
}

// emit hands one trade to the sink, converting a panic into an error.
func (e *Engine) emit(t model.Trade) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("emit trade %s: panic: %v", t.ID, r)
			e.logger.Error("trade sink failed",
				"instrument", t.Instrument,
				"trade_id", t.ID,
				"error", err,
			)
		}
	}()
	e.sink.Emit(t)
	return nil
}

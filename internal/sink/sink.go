package sink

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/rickgao/matching-engine/internal/model"
)

// TradeSink receives every executed trade exactly once.
type TradeSink interface {
	Emit(trade model.Trade)
}

// Func is a function adapter for TradeSink.
type Func func(model.Trade)

// Emit calls f(t).
func (f Func) Emit(t model.Trade) {
	f(t)
}

// Discard drops every trade.
var Discard TradeSink = Func(func(model.Trade) {})

// Multi fans each trade out to every sink in order.
type Multi []TradeSink

// Emit passes t to each sink in turn.
func (m Multi) Emit(t model.Trade) {
	for _, s := range m {
		s.Emit(t)
	}
}

// Log writes one line per trade.
type Log struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLog creates a Log sink writing at Info level.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger, level: slog.LevelInfo}
}

// Emit logs t as a single "match order" record.
func (l *Log) Emit(t model.Trade) {
	l.logger.Log(context.Background(), l.level, "match order",
		"instrument", t.Instrument,
		"price", t.Price,
		"quantity", t.Quantity,
		"buy_remaining", t.BuyRemaining,
		"sell_remaining", t.SellRemaining,
		"trade_id", t.ID,
	)
}

// Buffered enqueues trades for an asynchronous consumer such as a batch writer.
type Buffered struct {
	buf     *Buffer[model.Trade]
	logger  *slog.Logger
	dropped atomic.Int64
}

// NewBuffered creates a Buffered sink over buf.
func NewBuffered(buf *Buffer[model.Trade], logger *slog.Logger) *Buffered {
	if logger == nil {
		logger = slog.Default()
	}
	return &Buffered{buf: buf, logger: logger}
}

// Emit queues t without blocking. A trade sent after the buffer is closed is
// counted in Dropped and logged.
func (b *Buffered) Emit(t model.Trade) {
	if !b.buf.Send(t) {
		b.dropped.Add(1)
		b.logger.Warn("trade buffer closed, trade not exported",
			"instrument", t.Instrument,
			"trade_id", t.ID,
		)
	}
}

// Dropped returns the number of trades rejected by a closed buffer.
func (b *Buffered) Dropped() int64 {
	return b.dropped.Load()
}

// Buffer returns the underlying queue.
func (b *Buffered) Buffer() *Buffer[model.Trade] {
	return b.buf
}

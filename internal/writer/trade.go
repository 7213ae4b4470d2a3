package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/matching-engine/internal/model"
	"github.com/rickgao/matching-engine/internal/sink"
)

// pollInterval is how long the consumer waits when the input buffer is empty.
const pollInterval = 10 * time.Millisecond

// TradeWriter consumes trades from a buffer and writes them to the trades table.
type TradeWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input from the buffered trade sink
	input *sink.Buffer[model.Trade]

	// Database
	db *pgxpool.Pool

	// Batching
	batch       []tradeRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewTradeWriter creates a new TradeWriter.
func NewTradeWriter(
	cfg WriterConfig,
	input *sink.Buffer[model.Trade],
	db *pgxpool.Pool,
	logger *slog.Logger,
) *TradeWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TradeWriter{
		cfg:    cfg,
		input:  input,
		db:     db,
		logger: logger,
		batch:  make([]tradeRow, 0, cfg.BatchSize),
	}
}

// Start begins consuming trades and writing to the database.
func (w *TradeWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("trade writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop shuts down the writer after draining whatever is still buffered.
func (w *TradeWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping trade writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("trade writer stopped")
	case <-ctx.Done():
		w.logger.Warn("trade writer stop timed out")
	}

	// Final drain on the caller's context, since ours is cancelled.
	w.flushWith(ctx)
	for {
		trades := w.input.DrainTo(w.cfg.BatchSize)
		if len(trades) == 0 {
			break
		}
		w.batchMu.Lock()
		for _, t := range trades {
			w.batch = append(w.batch, transform(t))
		}
		w.batchMu.Unlock()
		w.flushWith(ctx)
	}

	return nil
}

// Stats returns current metrics.
func (w *TradeWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop drains the input buffer and accumulates batches.
func (w *TradeWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		trades := w.input.DrainTo(w.cfg.BatchSize)
		if len(trades) == 0 {
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(pollInterval):
				continue
			}
		}

		for _, t := range trades {
			w.handleTrade(t)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *TradeWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flushWith(w.ctx)
		}
	}
}

// handleTrade transforms and adds a trade to the batch.
func (w *TradeWriter) handleTrade(t model.Trade) {
	row := transform(t)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flushWith(w.ctx)
	}
}

// transform converts a Trade to a tradeRow.
func transform(t model.Trade) tradeRow {
	return tradeRow{
		TradeID:       t.ID,
		ExecutedAt:    t.ExecutedAt.UnixMicro(),
		Instrument:    t.Instrument,
		Price:         t.Price,
		Quantity:      t.Quantity,
		BuyRemaining:  t.BuyRemaining,
		SellRemaining: t.SellRemaining,
		BuyArrival:    int64(t.BuyArrival),
		SellArrival:   int64(t.SellArrival),
	}
}

// flushWith writes the current batch to the database.
func (w *TradeWriter) flushWith(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]tradeRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed trades",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *TradeWriter) batchInsert(ctx context.Context, rows []tradeRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO trades (trade_id, executed_at, instrument, price, quantity,
				buy_remaining, sell_remaining, buy_arrival, sell_arrival)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (trade_id) DO NOTHING
		`, pgtype.UUID{Bytes: r.TradeID, Valid: true}, r.ExecutedAt, r.Instrument, r.Price, r.Quantity,
			r.BuyRemaining, r.SellRemaining, r.BuyArrival, r.SellArrival)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}

package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/matching-engine/internal/metrics"
)

// Matcher runs the matching pass for one instrument.
type Matcher interface {
	Instruments() int
	MatchOrder(instrument int) (int, error)
}

// Config holds sweeper configuration.
type Config struct {
	Interval time.Duration // Pause after each pass before the next (default: 1s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: time.Second,
	}
}

// PassResult summarizes one sweep pass.
type PassResult struct {
	Instruments int
	Trades      int
	Failures    int
	Duration    time.Duration
}

// Stats are cumulative counters since creation.
type Stats struct {
	Passes   int64
	Trades   int64
	Failures int64
}

// Sweeper repeatedly matches every instrument.
type Sweeper struct {
	cfg     Config
	matcher Matcher
	metrics *metrics.Metrics
	logger  *slog.Logger

	passes   atomic.Int64
	trades   atomic.Int64
	failures atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Sweeper. m may be nil.
func New(cfg Config, matcher Matcher, m *metrics.Metrics, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Sweeper{
		cfg:     cfg,
		matcher: matcher,
		metrics: m,
		logger:  logger,
	}
}

// Start begins the sweep loop.
func (s *Sweeper) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	s.logger.Info("sweeper started",
		"interval", s.cfg.Interval,
		"instruments", s.matcher.Instruments(),
	)
	return nil
}

// Stop ends the loop and waits for the current pass to finish.
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("sweeper stopped",
			"passes", s.passes.Load(),
			"trades", s.trades.Load(),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns cumulative counters.
func (s *Sweeper) Stats() Stats {
	return Stats{
		Passes:   s.passes.Load(),
		Trades:   s.trades.Load(),
		Failures: s.failures.Load(),
	}
}

// run is the main sweep loop. The full interval elapses between the end of
// one pass and the start of the next, however long the pass took.
func (s *Sweeper) run() {
	defer s.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
			s.SweepOnce()
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SweepOnce matches every instrument once, in ascending order.
func (s *Sweeper) SweepOnce() PassResult {
	start := time.Now()
	n := s.matcher.Instruments()
	res := PassResult{Instruments: n}

	for i := 0; i < n; i++ {
		trades, err := s.matchInstrument(i)
		res.Trades += trades
		if err != nil {
			res.Failures++
			s.logger.Warn("failed to match instrument",
				"instrument", i,
				"error", err,
			)
		}
	}

	res.Duration = time.Since(start)
	s.passes.Add(1)
	s.trades.Add(int64(res.Trades))
	s.failures.Add(int64(res.Failures))
	s.metrics.SweepCompleted(res.Duration)

	s.logger.Debug("sweep complete",
		"instruments", res.Instruments,
		"trades", res.Trades,
		"failures", res.Failures,
		"duration", res.Duration,
	)
	return res
}

// matchInstrument guards the pass against a Matcher that panics.
// Engine.MatchOrder already recovers its own panics; this covers other
// Matcher implementations.
func (s *Sweeper) matchInstrument(i int) (trades int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic matching instrument %d: %v", i, r)
		}
	}()
	return s.matcher.MatchOrder(i)
}

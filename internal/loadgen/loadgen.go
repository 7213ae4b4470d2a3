package loadgen

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Submitter is the ingestion entry point orders are sent to.
type Submitter interface {
	AddOrder(side string, instrument int, quantity, price int64) error
}

// Config holds generator settings.
type Config struct {
	Producers         int
	OrdersPerProducer int
	Instruments       int
	MinQuantity       int64
	MaxQuantity       int64
	MinPrice          int64
	MaxPrice          int64
	Seed              int64 // 0 = seed from the clock
}

// DefaultConfig returns the ranges used by the reference simulation.
func DefaultConfig() Config {
	return Config{
		Producers:         5,
		OrdersPerProducer: 20,
		Instruments:       1024,
		MinQuantity:       1,
		MaxQuantity:       100,
		MinPrice:          10,
		MaxPrice:          200,
	}
}

// Order is one generated order.
type Order struct {
	Side       string
	Instrument int
	Quantity   int64
	Price      int64
}

// Result summarizes a Run.
type Result struct {
	Submitted int64
	Rejected  int64
	Duration  time.Duration
}

// Generator drives random order flow into a Submitter.
type Generator struct {
	cfg    Config
	target Submitter
	logger *slog.Logger

	submitted atomic.Int64
	rejected  atomic.Int64
}

// New creates a Generator.
func New(cfg Config, target Submitter, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cfg: cfg, target: target, logger: logger}
}

// Run starts all producers and waits for them to finish or for ctx to end.
func (g *Generator) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	seed := g.cfg.Seed
	if seed == 0 {
		seed = start.UnixNano()
	}

	eg, ctx := errgroup.WithContext(ctx)
	for p := 0; p < g.cfg.Producers; p++ {
		rng := rand.New(rand.NewPCG(uint64(seed), uint64(p)))
		eg.Go(func() error {
			return g.produce(ctx, rng)
		})
	}
	err := eg.Wait()

	res := Result{
		Submitted: g.submitted.Load(),
		Rejected:  g.rejected.Load(),
		Duration:  time.Since(start),
	}
	g.logger.Info("load generation complete",
		"producers", g.cfg.Producers,
		"submitted", res.Submitted,
		"rejected", res.Rejected,
		"duration", res.Duration,
	)
	return res, err
}

// produce submits OrdersPerProducer orders, stopping early on cancellation.
func (g *Generator) produce(ctx context.Context, rng *rand.Rand) error {
	for i := 0; i < g.cfg.OrdersPerProducer; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		o := g.next(rng)
		if err := g.target.AddOrder(o.Side, o.Instrument, o.Quantity, o.Price); err != nil {
			g.rejected.Add(1)
			g.logger.Debug("generated order rejected",
				"instrument", o.Instrument,
				"error", err,
			)
			continue
		}
		g.submitted.Add(1)
	}
	return nil
}

// next draws one random order.
func (g *Generator) next(rng *rand.Rand) Order {
	side := "Buy"
	if rng.IntN(2) == 1 {
		side = "Sell"
	}
	return Order{
		Side:       side,
		Instrument: rng.IntN(g.cfg.Instruments),
		Quantity:   between(rng, g.cfg.MinQuantity, g.cfg.MaxQuantity),
		Price:      between(rng, g.cfg.MinPrice, g.cfg.MaxPrice),
	}
}

// between returns a uniform value in [lo, hi].
func between(rng *rand.Rand, lo, hi int64) int64 {
	return lo + rng.Int64N(hi-lo+1)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/matching-engine/internal/config"
	"github.com/rickgao/matching-engine/internal/database"
	"github.com/rickgao/matching-engine/internal/engine"
	"github.com/rickgao/matching-engine/internal/loadgen"
	"github.com/rickgao/matching-engine/internal/metrics"
	"github.com/rickgao/matching-engine/internal/model"
	"github.com/rickgao/matching-engine/internal/orderbook"
	"github.com/rickgao/matching-engine/internal/sink"
	"github.com/rickgao/matching-engine/internal/sweeper"
	"github.com/rickgao/matching-engine/internal/version"
	"github.com/rickgao/matching-engine/internal/writer"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	demo := flag.Bool("demo", false, "run the manual matching scenario before starting")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := newLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting matching engine",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instruments", cfg.Engine.Instruments,
		"sweep_interval", cfg.Engine.SweepInterval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	book, err := orderbook.New(cfg.Engine.Instruments)
	if err != nil {
		logger.Error("failed to create order book", "error", err)
		os.Exit(1)
	}
	m := metrics.New()

	// Trade sinks
	sinks := sink.Multi{}
	if cfg.Sink.LogTradesEnabled() {
		sinks = append(sinks, sink.NewLog(logger))
	}

	var (
		pool        *pgxpool.Pool
		tradeBuf    *sink.Buffer[model.Trade]
		tradeWriter *writer.TradeWriter
	)
	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := writer.EnsureSchema(ctx, pool); err != nil {
			logger.Error("failed to prepare trades table", "error", err)
			os.Exit(1)
		}

		tradeBuf = sink.NewBuffer[model.Trade](cfg.Writers.BufferSize)
		sinks = append(sinks, sink.NewBuffered(tradeBuf, logger))
		tradeWriter = writer.NewTradeWriter(writer.WriterConfig{
			BatchSize:     cfg.Writers.BatchSize,
			FlushInterval: cfg.Writers.FlushInterval,
		}, tradeBuf, pool, logger)
		if err := tradeWriter.Start(ctx); err != nil {
			logger.Error("failed to start trade writer", "error", err)
			os.Exit(1)
		}
		logger.Info("database connected")
	}

	eng := engine.New(book,
		engine.WithSink(sinks),
		engine.WithLogger(logger),
		engine.WithMetrics(m),
	)

	if *demo {
		if err := runDemo(eng, os.Stdout); err != nil {
			logger.Error("demo failed", "error", err)
			os.Exit(1)
		}
	}

	// Health and metrics server
	var db pinger
	if pool != nil {
		db = pool
	}
	healthServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           createHealthHandler(book, db, m, cfg.Metrics.Path),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Metrics.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	sw := sweeper.New(sweeper.Config{Interval: cfg.Engine.SweepInterval}, eng, m, logger)
	if err := sw.Start(ctx); err != nil {
		logger.Error("failed to start sweeper", "error", err)
		os.Exit(1)
	}

	if cfg.LoadGen.Enabled {
		gen := loadgen.New(loadgen.Config{
			Producers:         cfg.LoadGen.Producers,
			OrdersPerProducer: cfg.LoadGen.OrdersPerProducer,
			Instruments:       cfg.Engine.Instruments,
			MinQuantity:       cfg.LoadGen.MinQuantity,
			MaxQuantity:       cfg.LoadGen.MaxQuantity,
			MinPrice:          cfg.LoadGen.MinPrice,
			MaxPrice:          cfg.LoadGen.MaxPrice,
			Seed:              cfg.LoadGen.Seed,
		}, eng, logger)
		go func() {
			if _, err := gen.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("load generator failed", "error", err)
			}
		}()
	}

	logger.Info("matching engine running",
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop matching first so the writer sees every trade.
	if err := sw.Stop(shutdownCtx); err != nil {
		logger.Warn("sweeper stop timed out", "error", err)
	}
	if tradeWriter != nil {
		tradeBuf.Close()
		if err := tradeWriter.Stop(shutdownCtx); err != nil {
			logger.Warn("trade writer stop failed", "error", err)
		}
	}
	healthServer.Shutdown(shutdownCtx)

	st := book.Stats()
	sweeps := sw.Stats()
	logger.Info("matching engine stopped",
		"resting_buys", st.BuyOrders,
		"resting_sells", st.SellOrders,
		"sweeps", sweeps.Passes,
		"trades", sweeps.Trades,
	)
}

// newLogger builds the process logger from config.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

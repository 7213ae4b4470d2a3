package config

import (
	"errors"
	"fmt"

	"github.com/rickgao/matching-engine/internal/model"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Engine.Instruments < 1 || c.Engine.Instruments > model.MaxInstruments {
		return fmt.Errorf("engine.instruments must be between 1 and %d, got %d", model.MaxInstruments, c.Engine.Instruments)
	}
	if c.Engine.SweepInterval <= 0 {
		return errors.New("engine.sweep_interval must be > 0")
	}

	if err := c.LoadGen.validate(); err != nil {
		return err
	}

	if c.Database.Enabled {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	if c.Writers.BatchSize < 1 {
		return errors.New("writers.batch_size must be >= 1")
	}
	if c.Writers.BufferSize < 1 {
		return errors.New("writers.buffer_size must be >= 1")
	}
	if c.Writers.FlushInterval <= 0 {
		return errors.New("writers.flush_interval must be > 0")
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func (g *LoadGenConfig) validate() error {
	if g.Producers < 1 {
		return errors.New("loadgen.producers must be >= 1")
	}
	if g.OrdersPerProducer < 0 {
		return errors.New("loadgen.orders_per_producer must be >= 0")
	}
	if g.MinQuantity < 1 {
		return errors.New("loadgen.min_quantity must be >= 1")
	}
	if g.MaxQuantity < g.MinQuantity {
		return fmt.Errorf("loadgen.min_quantity (%d) cannot exceed max_quantity (%d)", g.MinQuantity, g.MaxQuantity)
	}
	if g.MinPrice < 1 {
		return errors.New("loadgen.min_price must be >= 1")
	}
	if g.MaxPrice < g.MinPrice {
		return fmt.Errorf("loadgen.min_price (%d) cannot exceed max_price (%d)", g.MinPrice, g.MaxPrice)
	}
	return nil
}

func (db *DatabaseConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

package config

import (
	"time"

	"github.com/rickgao/matching-engine/internal/model"
)

// Default values for optional configuration fields.
const (
	DefaultInstruments       = model.MaxInstruments
	DefaultSweepInterval     = 1 * time.Second
	DefaultProducers         = 5
	DefaultOrdersPerProducer = 20
	DefaultMinQuantity       = 1
	DefaultMaxQuantity       = 100
	DefaultMinPrice          = 10
	DefaultMaxPrice          = 200
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultBatchSize         = 1000
	DefaultFlushInterval     = 1 * time.Second
	DefaultBufferSize        = 10000
	DefaultMetricsPort       = 9090
	DefaultMetricsPath       = "/metrics"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	// Engine defaults
	if c.Engine.Instruments == 0 {
		c.Engine.Instruments = DefaultInstruments
	}
	if c.Engine.SweepInterval == 0 {
		c.Engine.SweepInterval = DefaultSweepInterval
	}

	// Load generator defaults
	if c.LoadGen.Producers == 0 {
		c.LoadGen.Producers = DefaultProducers
	}
	if c.LoadGen.OrdersPerProducer == 0 {
		c.LoadGen.OrdersPerProducer = DefaultOrdersPerProducer
	}
	if c.LoadGen.MinQuantity == 0 {
		c.LoadGen.MinQuantity = DefaultMinQuantity
	}
	if c.LoadGen.MaxQuantity == 0 {
		c.LoadGen.MaxQuantity = DefaultMaxQuantity
	}
	if c.LoadGen.MinPrice == 0 {
		c.LoadGen.MinPrice = DefaultMinPrice
	}
	if c.LoadGen.MaxPrice == 0 {
		c.LoadGen.MaxPrice = DefaultMaxPrice
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Writers defaults
	if c.Writers.BatchSize == 0 {
		c.Writers.BatchSize = DefaultBatchSize
	}
	if c.Writers.FlushInterval == 0 {
		c.Writers.FlushInterval = DefaultFlushInterval
	}
	if c.Writers.BufferSize == 0 {
		c.Writers.BufferSize = DefaultBufferSize
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

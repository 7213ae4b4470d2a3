package config

import "time"

// Config is the root configuration for a matching engine process.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	LoadGen  LoadGenConfig  `yaml:"loadgen"`
	Sink     SinkConfig     `yaml:"sink"`
	Database DatabaseConfig `yaml:"database"`
	Writers  WritersConfig  `yaml:"writers"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// EngineConfig sizes the book and paces the sweep.
type EngineConfig struct {
	Instruments   int           `yaml:"instruments"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LoadGenConfig controls the random order producers.
type LoadGenConfig struct {
	Enabled           bool  `yaml:"enabled"`
	Producers         int   `yaml:"producers"`
	OrdersPerProducer int   `yaml:"orders_per_producer"`
	MinQuantity       int64 `yaml:"min_quantity"`
	MaxQuantity       int64 `yaml:"max_quantity"`
	MinPrice          int64 `yaml:"min_price"`
	MaxPrice          int64 `yaml:"max_price"`
	Seed              int64 `yaml:"seed"` // 0 = random
}

// SinkConfig selects where trades go besides metrics.
type SinkConfig struct {
	LogTrades *bool `yaml:"log_trades"` // nil = default (true)
}

// DatabaseConfig holds the optional trade export database.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// WritersConfig holds batch writer settings.
type WritersConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// MetricsConfig holds the health and Prometheus endpoint settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// LogTradesEnabled reports whether trades should be written to the log.
func (s SinkConfig) LogTradesEnabled() bool {
	return s.LogTrades == nil || *s.LogTrades
}

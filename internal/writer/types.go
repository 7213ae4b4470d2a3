package writer

import (
	"time"
)

// WriterConfig contains configuration for batch writers.
type WriterConfig struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     1000,
		FlushInterval: time.Second,
	}
}

// tradeRow represents a row to be inserted into the trades table.
type tradeRow struct {
	TradeID       [16]byte
	ExecutedAt    int64 // Microseconds since epoch
	Instrument    int
	Price         int64
	Quantity      int64
	BuyRemaining  int64
	SellRemaining int64
	BuyArrival    int64
	SellArrival   int64
}

// WriterMetrics holds metrics for a writer.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}

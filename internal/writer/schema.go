package writer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createTradesTable = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id       UUID PRIMARY KEY,
	executed_at    BIGINT NOT NULL,
	instrument     INTEGER NOT NULL,
	price          BIGINT NOT NULL,
	quantity       BIGINT NOT NULL,
	buy_remaining  BIGINT NOT NULL,
	sell_remaining BIGINT NOT NULL,
	buy_arrival    BIGINT NOT NULL,
	sell_arrival   BIGINT NOT NULL
)`

const createTradesIndex = `
CREATE INDEX IF NOT EXISTS trades_instrument_executed_at
	ON trades (instrument, executed_at)`

// EnsureSchema creates the trades table and its index if missing.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range []string{createTradesTable, createTradesIndex} {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure trades schema: %w", err)
		}
	}
	return nil
}

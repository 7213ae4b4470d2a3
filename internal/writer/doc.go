// Package writer exports executed trades to PostgreSQL.
//
// TradeWriter drains a sink.Buffer in batches and inserts into the trades
// table with ON CONFLICT (trade_id) DO NOTHING, so replays of the same batch
// are harmless. The table is append-only and never read back by the engine.
package writer

// Package engine implements order ingestion and the matching algorithm.
//
// Matching policy for one instrument, repeated until no trade is possible:
//   - pick the lowest-priced sell; ties go to the earliest in current sequence order
//   - pick the first buy, in sequence order, priced at or above that sell
//   - trade min(buy, sell) quantity at the sell price
//   - reduce both orders and remove any that reach zero
//
// The full pass runs under the instrument's book lock. Trades are handed to the
// sink after the lock is released.
package engine

// Package model defines shared data types used across the matching engine.
//
// Conventions:
//   - Instruments: integer index in [0, MaxInstruments)
//   - Prices and quantities: positive int64 ticks/units
//   - Arrival: 1-based index per (instrument, side) sequence
//   - IDs: uuid.UUID for trades only; orders carry no identifier
package model

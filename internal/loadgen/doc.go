// Package loadgen submits random limit orders from concurrent producers.
//
// Each producer draws side, instrument, quantity and price uniformly from the
// configured ranges and submits through the engine's ingestion path. Rejected
// orders are counted; they never stop a producer.
package loadgen

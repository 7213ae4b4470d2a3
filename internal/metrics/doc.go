// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Order ingestion rates, split by side and rejection reason
//   - Trade counts and traded quantity
//   - Sweep pass counts and latencies
//   - Per-instrument match failures
//
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

package metrics

// Package metrics provides Prometheus metrics for CoTA runs.
//
// This package includes:
// - runner metrics (runs per action, stage latency)
// - aggregator request metrics (count, latency, errors)
// - transaction status metrics recorded while waiting for commit
// - a push to a Pushgateway, since every run is a short-lived process
//
// Usage:
//   import "github.com/vultisig/cota/internal/metrics"
//
//   metrics.RegisterMetrics([]string{metrics.ServiceRunner, metrics.ServiceAggregator}, logger)
//   defer metrics.Push(ctx, cfg.Metrics, logger)

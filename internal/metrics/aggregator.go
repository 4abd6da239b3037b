package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	aggregatorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cota",
			Subsystem: "aggregator",
			Name:      "requests_total",
			Help:      "Total number of aggregator JSON-RPC requests",
		},
		[]string{"method", "status"}, // success, error
	)

	aggregatorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cota",
			Subsystem: "aggregator",
			Name:      "request_duration_seconds",
			Help:      "Aggregator request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

type AggregatorMetrics struct{}

func NewAggregatorMetrics() *AggregatorMetrics {
	return &AggregatorMetrics{}
}

func (am *AggregatorMetrics) RecordRequest(method string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	aggregatorRequestsTotal.WithLabelValues(method, status).Inc()
	aggregatorRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	runnerRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cota",
			Subsystem: "runner",
			Name:      "runs_total",
			Help:      "Total number of CoTA transaction runs",
		},
		[]string{"action", "status"}, // status: success, error, dry_run
	)

	runnerStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cota",
			Subsystem: "runner",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"action", "stage"},
	)

	runnerLastRunTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cota",
			Subsystem: "runner",
			Name:      "last_run_timestamp",
			Help:      "Timestamp of the last finished run",
		},
		[]string{"action"},
	)
)

// RunnerMetrics provides methods to update runner metrics
type RunnerMetrics struct{}

func NewRunnerMetrics() *RunnerMetrics {
	return &RunnerMetrics{}
}

func (rm *RunnerMetrics) RecordStage(action, stage string, duration time.Duration) {
	runnerStageDuration.WithLabelValues(action, stage).Observe(duration.Seconds())
}

func (rm *RunnerMetrics) RecordRun(action, status string) {
	runnerRunsTotal.WithLabelValues(action, status).Inc()
	runnerLastRunTimestamp.WithLabelValues(action).Set(float64(time.Now().Unix()))
}

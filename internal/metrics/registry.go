package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const (
	ServiceRunner     = "runner"
	ServiceAggregator = "aggregator"
	ServiceTxStatus   = "tx_status"
)

// RegisterMetrics registers metrics for the specified services
func RegisterMetrics(services []string, logger logrus.FieldLogger) {
	registerIfNotExists(collectors.NewGoCollector(), "go_collector", logger)
	registerIfNotExists(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), "process_collector", logger)

	for _, service := range services {
		switch service {
		case ServiceRunner:
			registerRunnerMetrics(logger)
		case ServiceAggregator:
			registerAggregatorMetrics(logger)
		case ServiceTxStatus:
			registerTxStatusMetrics(logger)
		default:
			logger.Warnf("Unknown service type for metrics registration: %s", service)
		}
	}
}

// registerIfNotExists registers a collector if it's not already registered
func registerIfNotExists(collector prometheus.Collector, name string, logger logrus.FieldLogger) {
	if err := prometheus.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegErr) {
			logger.Debugf("%s already registered", name)
		} else {
			logger.Errorf("Failed to register %s: %v", name, err)
		}
	}
}

func registerRunnerMetrics(logger logrus.FieldLogger) {
	registerIfNotExists(runnerRunsTotal, "runner_runs_total", logger)
	registerIfNotExists(runnerStageDuration, "runner_stage_duration", logger)
	registerIfNotExists(runnerLastRunTimestamp, "runner_last_run_timestamp", logger)
}

func registerAggregatorMetrics(logger logrus.FieldLogger) {
	registerIfNotExists(aggregatorRequestsTotal, "aggregator_requests_total", logger)
	registerIfNotExists(aggregatorRequestDuration, "aggregator_request_duration", logger)
}

func registerTxStatusMetrics(logger logrus.FieldLogger) {
	registerIfNotExists(txStatusPollsTotal, "tx_status_polls_total", logger)
	registerIfNotExists(txStatusFinalTotal, "tx_status_final_total", logger)
}

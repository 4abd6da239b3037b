package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sirupsen/logrus"
	"github.com/vultisig/cota/internal/util"
)

const pushJob = "cota"

type Config struct {
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`
	Instance       string `envconfig:"INSTANCE"`
}

// Push sends every registered metric to the configured Pushgateway. Failures
// are only logged.
func Push(ctx context.Context, cfg Config, logger logrus.FieldLogger) {
	if cfg.PushgatewayURL == "" {
		return
	}
	if err := push.New(cfg.PushgatewayURL, pushJob).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("instance", util.IfEmptyElse(cfg.Instance, "cli")).
		PushContext(ctx); err != nil {
		logger.Warnf("failed to push metrics: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/vultisig/cota/internal/cota"
	"github.com/vultisig/cota/internal/graceful"
	"github.com/vultisig/cota/internal/logging"
	"github.com/vultisig/cota/internal/metrics"
)

func main() {
	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		logrus.Fatalf("failed to create logger: %v", err)
	}

	metrics.RegisterMetrics([]string{
		metrics.ServiceRunner,
		metrics.ServiceAggregator,
		metrics.ServiceTxStatus,
	}, logger)

	ctx, stop := graceful.CancelOnSignal(context.Background(), logger)

	err = newRootCmd(&app{cfg: cfg, logger: logger, out: os.Stdout}).ExecuteContext(ctx)
	metrics.Push(context.Background(), cfg.Metrics, logger)
	stop()
	if err != nil {
		var stageErr *cota.StageError
		if errors.As(err, &stageErr) {
			logger.WithField("stage", stageErr.Stage).Errorf("run failed: %v", stageErr.Err)
		} else {
			logger.Errorf("%v", err)
		}
		os.Exit(1)
	}
}

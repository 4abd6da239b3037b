package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/vultisig/cota/internal/cota"
	"github.com/vultisig/cota/internal/logging"
	"github.com/vultisig/cota/internal/metrics"
)

type config struct {
	cota.Config
	Signer  cota.SignerConfig
	Metrics metrics.Config
	Log     logging.Config
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}

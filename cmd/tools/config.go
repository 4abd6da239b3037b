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
	Metrics metrics.Config
	Log     logging.Config

	// Fixture account keys, hex encoded.
	IssuerKey    string `envconfig:"ISSUER_PRIVATE_KEY"`
	Receiver1Key string `envconfig:"RECEIVER1_PRIVATE_KEY"`
	Receiver2Key string `envconfig:"RECEIVER2_PRIVATE_KEY"`
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}

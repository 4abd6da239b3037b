package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/vultisig/cota/internal/ckb"
	"github.com/vultisig/cota/internal/cota"
	"github.com/vultisig/cota/internal/graceful"
	"github.com/vultisig/cota/internal/logging"
	"github.com/vultisig/cota/internal/metrics"
)

var (
	flatPreset = flag.String("preset", "", "preset to execute: mint, transfer1 or transfer2")
	dryRun     = flag.Bool("dry-run", false, "print the signed transaction without sending it")
	wait       = flag.Bool("wait", false, "wait until the transaction is committed")
)

func main() {
	flag.Parse()

	if *flatPreset == "" {
		panic("preset is required")
	}
	p, ok := presets[*flatPreset]
	if !ok {
		panic(fmt.Sprintf("unknown preset %q", *flatPreset))
	}

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

	err = run(ctx, cfg, logger, p)
	metrics.Push(context.Background(), cfg.Metrics, logger)
	stop()
	if err != nil {
		logger.Errorf("preset %s failed: %v", *flatPreset, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, logger *logrus.Logger, p preset) error {
	signer, sender, err := signerFor(p.key(cfg), p.from)
	if err != nil {
		return err
	}

	network, err := cota.NewNetwork(ctx, logger, cfg.Config)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer network.Close()
	network.WithSecp256k1Dep(p.secp256k1Dep(network.Secp256k1Dep()))

	build, err := p.build(network.Builder, sender)
	if err != nil {
		return err
	}
	runner := network.NewRunner(signer, os.Stdout, *dryRun, *wait)
	_, err = runner.Run(ctx, p.action, build)
	return err
}

// signerFor loads hexKey and checks it controls address.
func signerFor(hexKey, address string) (*ckb.SignerService, ckb.Script, error) {
	lock, err := ckb.AddressToScript(address)
	if err != nil {
		return nil, ckb.Script{}, err
	}
	if hexKey == "" {
		return nil, ckb.Script{}, fmt.Errorf("no key configured for %s", address)
	}
	key, err := ckb.ParsePrivateKey(hexKey)
	if err != nil {
		return nil, ckb.Script{}, err
	}
	signer := ckb.NewSignerService(key)
	if !signer.LockScript().Equal(lock) {
		return nil, ckb.Script{}, fmt.Errorf("key does not unlock %s", address)
	}
	return signer, lock, nil
}

package cota

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vultisig/cota/internal/ckb"
	"github.com/vultisig/cota/internal/status"
)

const commitPollInterval = 3 * time.Second

// Network bundles the services every command needs, bound to the
// configured endpoints.
type Network struct {
	Builder    *Builder
	Aggregator *Aggregator
	Node       *ckb.Client
	Collector  *ckb.Collector
	Status     *status.Status
	Network    ckb.Network

	logger       logrus.FieldLogger
	secp256k1Dep CellDepResolver
}

func NewNetwork(ctx context.Context, logger logrus.FieldLogger, cfg Config) (*Network, error) {
	network, err := cfg.Ckb.network()
	if err != nil {
		return nil, err
	}
	cotaDep, err := cfg.Cota.cellDep(network)
	if err != nil {
		return nil, err
	}
	fee, err := cfg.Cota.FeeShannons()
	if err != nil {
		return nil, err
	}

	node, err := ckb.Dial(ctx, cfg.Ckb.NodeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect node: %w", err)
	}
	collector, err := ckb.DialCollector(ctx, cfg.Ckb.IndexerURL)
	if err != nil {
		node.Close()
		return nil, fmt.Errorf("failed to connect indexer: %w", err)
	}

	dep, fixed, err := cfg.Ckb.secp256k1Dep()
	if err != nil {
		node.Close()
		collector.Close()
		return nil, err
	}
	resolver := CellDepResolver(node.GenesisSecp256k1Dep)
	if fixed {
		resolver = FixedCellDep(dep)
	}

	aggregator := NewAggregator(cfg.Aggregator.RegistryURL, cfg.Aggregator.CotaURL)
	return &Network{
		Builder:      NewBuilder(logger, collector, aggregator, network, cotaDep, fee),
		Aggregator:   aggregator,
		Node:         node,
		Collector:    collector,
		Status:       status.NewStatus(node, commitPollInterval),
		Network:      network,
		logger:       logger,
		secp256k1Dep: resolver,
	}, nil
}

// Secp256k1Dep is the resolver runners append the secp256k1 dep with.
func (n *Network) Secp256k1Dep() CellDepResolver {
	return n.secp256k1Dep
}

// WithSecp256k1Dep overrides how the secp256k1 dep is resolved.
func (n *Network) WithSecp256k1Dep(resolver CellDepResolver) *Network {
	n.secp256k1Dep = resolver
	return n
}

// NewRunner returns a runner signing with signer and printing to out.
func (n *Network) NewRunner(signer *ckb.SignerService, out io.Writer, dryRun, wait bool) *Runner {
	opts := []RunnerOption{WithDryRun(dryRun)}
	if wait {
		opts = append(opts, WithWaiter(n.Status))
	}
	return NewRunner(n.logger, signer, n.Node, n.secp256k1Dep, out, opts...)
}

func (n *Network) Close() {
	n.Node.Close()
	n.Collector.Close()
}

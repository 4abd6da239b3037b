package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vultisig/cota/internal/ckb"
	"github.com/vultisig/cota/internal/cota"
)

type app struct {
	cfg    config
	logger *logrus.Logger
	out    io.Writer

	dryRun bool
	wait   bool
	fee    string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "cota",
		Short:         "Build, sign and submit CoTA NFT transactions on CKB",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, "print the signed transaction without sending it")
	root.PersistentFlags().BoolVar(&a.wait, "wait", false, "wait until the transaction is committed")
	root.PersistentFlags().StringVar(&a.fee, "fee", "", "fee in CKB paid from the cota cell (default COTA_FEE)")

	root.AddCommand(
		defineCmd(a),
		mintCmd(a),
		withdrawCmd(a),
		claimCmd(a),
		transferCmd(a),
		updateCmd(a),
		claimUpdateCmd(a),
		transferUpdateCmd(a),
		holdCmd(a),
		withdrawalsCmd(a),
		mintedCmd(a),
		defineInfoCmd(a),
		nftInfoCmd(a),
		countCmd(a),
		claimedCmd(a),
		registeredCmd(a),
		infoCmd(a),
		addressCmd(a),
	)
	return root
}

func (a *app) signer() (*ckb.SignerService, error) {
	key, err := ckb.LoadKey(a.cfg.Signer.PrivateKey, a.cfg.Signer.Keystore, a.cfg.Signer.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load signer key: %w", err)
	}
	return ckb.NewSignerService(key), nil
}

func (a *app) connect(ctx context.Context) (*cota.Network, error) {
	cfg := a.cfg.Config
	if a.fee != "" {
		cfg.Cota.Fee = a.fee
	}
	return cota.NewNetwork(ctx, a.logger, cfg)
}

func (a *app) aggregator() *cota.Aggregator {
	return cota.NewAggregator(a.cfg.Aggregator.RegistryURL, a.cfg.Aggregator.CotaURL)
}

// txBuilder returns the build step of a run for the signer's lock.
type txBuilder func(n *cota.Network, lock ckb.Script) cota.BuildFunc

func (a *app) runTx(ctx context.Context, action cota.Action, build txBuilder) (*cota.Result, error) {
	signer, err := a.signer()
	if err != nil {
		return nil, err
	}
	network, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer network.Close()

	runner := network.NewRunner(signer, a.out, a.dryRun, a.wait)
	return runner.Run(ctx, action, build(network, signer.LockScript()))
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

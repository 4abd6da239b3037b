package main

import (
	"github.com/spf13/cobra"
	"github.com/vultisig/cota/internal/ckb"
)

type addressInfo struct {
	Address      string      `json:"address"`
	ShortAddress string      `json:"shortAddress,omitempty"`
	Network      ckb.Network `json:"network"`
	LockScript   ckb.Script  `json:"lockScript"`
	LockHash     string      `json:"lockHash"`
}

func addressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "address [address]",
		Short: "Decode an address, or show the signer's address when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var addr ckb.Address
			if len(args) == 1 {
				parsed, err := ckb.ParseAddress(args[0])
				if err != nil {
					return err
				}
				addr = parsed
			} else {
				signer, err := a.signer()
				if err != nil {
					return err
				}
				network, err := ckb.ParseNetwork(a.cfg.Ckb.Network)
				if err != nil {
					return err
				}
				addr = ckb.Address{Network: network, Script: signer.LockScript()}
			}

			full, err := addr.Encode()
			if err != nil {
				return err
			}
			// Only secp256k1 and multisig locks have a short form.
			short, _ := addr.EncodeShort()
			return a.printJSON(addressInfo{
				Address:      full,
				ShortAddress: short,
				Network:      addr.Network,
				LockScript:   addr.Script,
				LockHash:     addr.Script.Hash().Hex(),
			})
		},
	}
}

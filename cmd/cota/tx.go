package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vultisig/cota/internal/ckb"
	"github.com/vultisig/cota/internal/cota"
)

func defineCmd(a *app) *cobra.Command {
	var (
		total     uint32
		configure string
		meta      cota.ClassMetadata
	)
	cmd := &cobra.Command{
		Use:   "define",
		Short: "Define a new token class owned by the signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := parseByte(configure, "configure")
			if err != nil {
				return err
			}
			info := cota.DefineCotaInfo{Total: total, Configure: conf}
			if meta.Name != "" {
				info.Metadata = &meta
			}

			var cotaID cota.CotaID
			_, err = a.runTx(cmd.Context(), cota.ActionDefine, func(n *cota.Network, lock ckb.Script) cota.BuildFunc {
				return func(ctx context.Context) (*ckb.Transaction, error) {
					tx, id, err := n.Builder.BuildDefineTx(ctx, lock, info)
					cotaID = id
					return tx, err
				}
			})
			if err != nil {
				return err
			}
			a.logger.WithField("cota_id", cotaID.String()).Info("cota class defined")
			return nil
		},
	}
	cmd.Flags().Uint32Var(&total, "total", 0, "class supply, 0 for unlimited")
	cmd.Flags().StringVar(&configure, "configure", "0x00", "class configure byte")
	cmd.Flags().StringVar(&meta.Name, "name", "", "class name, metadata is attached when set")
	cmd.Flags().StringVar(&meta.Symbol, "symbol", "", "class symbol")
	cmd.Flags().StringVar(&meta.Description, "description", "", "class description")
	cmd.Flags().StringVar(&meta.Image, "image", "", "class image url")
	cmd.Flags().StringVar(&meta.Properties, "properties", "", "class properties")
	return cmd
}

func mintCmd(a *app) *cobra.Command {
	var (
		cotaID         string
		to             []string
		tokenIndexes   []string
		state          string
		characteristic string
	)
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint tokens of a class to receivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cota.ParseCotaID(cotaID)
			if err != nil {
				return err
			}
			receivers, err := parseLocks(to)
			if err != nil {
				return err
			}
			indexes, err := parseTokenIndexes(tokenIndexes)
			if err != nil {
				return err
			}
			if len(indexes) > 0 && len(indexes) != len(receivers) {
				return fmt.Errorf("got %d token indexes for %d receivers", len(indexes), len(receivers))
			}
			st, err := parseByte(state, "state")
			if err != nil {
				return err
			}
			char, err := cota.ParseCharacteristic(characteristic)
			if err != nil {
				return err
			}

			info := cota.MintCotaInfo{CotaID: id}
			for i, receiver := range receivers {
				w := cota.MintWithdrawal{State: st, Characteristic: char, ToLockScript: receiver}
				if len(indexes) > 0 {
					w.TokenIndex = &indexes[i]
				}
				info.Withdrawals = append(info.Withdrawals, w)
			}

			_, err = a.runTx(cmd.Context(), cota.ActionMint, func(n *cota.Network, lock ckb.Script) cota.BuildFunc {
				return func(ctx context.Context) (*ckb.Transaction, error) {
					return n.Builder.BuildMintTx(ctx, lock, info)
				}
			})
			return err
		},
	}
	cmd.Flags().StringVar(&cotaID, "cota-id", "", "class id, 20 bytes hex")
	cmd.Flags().StringArrayVar(&to, "to", nil, "receiver address, repeatable")
	cmd.Flags().StringArrayVar(&tokenIndexes, "token-index", nil, "token index per receiver, assigned from the issued counter when omitted")
	cmd.Flags().StringVar(&state, "state", "0x00", "token state byte")
	cmd.Flags().StringVar(&characteristic, "characteristic", "0x"+strings.Repeat("00", 20), "token characteristic, 20 bytes hex")
	_ = cmd.MarkFlagRequired("cota-id")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// tokenFlags are shared by the commands that move held tokens.
type tokenFlags struct {
	cotaID       string
	tokenIndexes []string
	to           []string
}

func (f *tokenFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.cotaID, "cota-id", "", "class id, 20 bytes hex")
	cmd.Flags().StringArrayVar(&f.tokenIndexes, "token-index", nil, "token index, repeatable")
	cmd.Flags().StringArrayVar(&f.to, "to", nil, "receiver address, once for all tokens or once per token")
	_ = cmd.MarkFlagRequired("cota-id")
	_ = cmd.MarkFlagRequired("token-index")
	_ = cmd.MarkFlagRequired("to")
}

func (f *tokenFlags) transfers() ([]cota.TransferCotaInfo, error) {
	id, err := cota.ParseCotaID(f.cotaID)
	if err != nil {
		return nil, err
	}
	indexes, err := parseTokenIndexes(f.tokenIndexes)
	if err != nil {
		return nil, err
	}
	receivers, err := parseLocks(f.to)
	if err != nil {
		return nil, err
	}
	if len(receivers) != 1 && len(receivers) != len(indexes) {
		return nil, fmt.Errorf("got %d receivers for %d tokens", len(receivers), len(indexes))
	}

	out := make([]cota.TransferCotaInfo, len(indexes))
	for i, index := range indexes {
		receiver := receivers[0]
		if len(receivers) > 1 {
			receiver = receivers[i]
		}
		out[i] = cota.TransferCotaInfo{CotaID: id, TokenIndex: index, ToLockScript: receiver}
	}
	return out, nil
}

func withdrawCmd(a *app) *cobra.Command {
	var flags tokenFlags
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw held tokens to receivers who claim them later",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			withdrawals, err := flags.transfers()
			if err != nil {
				return err
			}
			_, err = a.runTx(cmd.Context(), cota.ActionWithdraw, func(n *cota.Network, lock ckb.Script) cota.BuildFunc {
				return func(ctx context.Context) (*ckb.Transaction, error) {
					return n.Builder.BuildWithdrawTx(ctx, lock, withdrawals)
				}
			})
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func transferCmd(a *app) *cobra.Command {
	var (
		flags      tokenFlags
		withdrawal string
	)
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Claim tokens withdrawn to the signer and pass them on in one transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transfers, err := flags.transfers()
			if err != nil {
				return err
			}
			withdrawalLock, err := ckb.AddressToScript(withdrawal)
			if err != nil {
				return err
			}
			_, err = a.runTx(cmd.Context(), cota.ActionTransfer, func(n *cota.Network, lock ckb.Script) cota.BuildFunc {
				return func(ctx context.Context) (*ckb.Transaction, error) {
					return n.Builder.BuildTransferTx(ctx, lock, withdrawalLock, transfers)
				}
			})
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&withdrawal, "withdrawal", "", "address that withdrew the tokens to the signer")
	_ = cmd.MarkFlagRequired("withdrawal")
	return cmd
}

func claimCmd(a *app) *cobra.Command {
	var (
		cotaID       string
		tokenIndexes []string
		withdrawal   string
	)
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim tokens withdrawn to the signer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cota.ParseCotaID(cotaID)
			if err != nil {
				return err
			}
			indexes, err := parseTokenIndexes(tokenIndexes)
			if err != nil {
				return err
			}
			withdrawalLock, err := ckb.AddressToScript(withdrawal)
			if err != nil {
				return err
			}
			claims := make([]cota.ClaimCotaInfo, len(indexes))
			for i, index := range indexes {
				claims[i] = cota.ClaimCotaInfo{CotaID: id, TokenIndex: index}
			}

			_, err = a.runTx(cmd.Context(), cota.ActionClaim, func(n *cota.Network, lock ckb.Script) cota.BuildFunc {
				return func(ctx context.Context) (*ckb.Transaction, error) {
					return n.Builder.BuildClaimTx(ctx, lock, withdrawalLock, claims)
				}
			})
			return err
		},
	}
	cmd.Flags().StringVar(&cotaID, "cota-id", "", "class id, 20 bytes hex")
	cmd.Flags().StringArrayVar(&tokenIndexes, "token-index", nil, "token index, repeatable")
	cmd.Flags().StringVar(&withdrawal, "withdrawal", "", "address that withdrew the tokens to the signer")
	_ = cmd.MarkFlagRequired("cota-id")
	_ = cmd.MarkFlagRequired("token-index")
	_ = cmd.MarkFlagRequired("withdrawal")
	return cmd
}

// updateFlags are the new token fields shared by the update commands.
type updateFlags struct {
	state          string
	characteristic string
}

func (f *updateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.state, "state", "0x00", "new token state byte")
	cmd.Flags().StringVar(&f.characteristic, "characteristic", "0x"+strings.Repeat("00", 20), "new token characteristic, 20 bytes hex")
}

func (f *updateFlags) parse() (byte, cota.Characteristic, error) {
	st, err := parseByte(f.state, "state")
	if err != nil {
		return 0, cota.Characteristic{}, err
	}
	char, err := cota.ParseCharacteristic(f.characteristic)
	if err != nil {
		return 0, cota.Characteristic{}, err
	}
	return st, char, nil
}

// updates pairs every token index with the same new state and characteristic.
func updates(cotaID string, tokenIndexes []string, flags updateFlags) ([]cota.UpdateCotaInfo, error) {
	id, err := cota.ParseCotaID(cotaID)
	if err != nil {
		return nil, err
	}
	indexes, err := parseTokenIndexes(tokenIndexes)
	if err != nil {
		return nil, err
	}
	st, char, err := flags.parse()
	if err != nil {
		return nil, err
	}
	out := make([]cota.UpdateCotaInfo, len(indexes))
	for i, index := range indexes {
		out[i] = cota.UpdateCotaInfo{CotaID: id, TokenIndex: index, State: st, Characteristic: char}
	}
	return out, nil
}

func updateCmd(a *app) *cobra.Command {
	var (
		cotaID       string
		tokenIndexes []string
		flags        updateFlags
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Set the state and characteristic of tokens the signer holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nfts, err := updates(cotaID, tokenIndexes, flags)
			if err != nil {
				return err
			}
			_, err = a.runTx(cmd.Context(), cota.ActionUpdate, func(n *cota.Network, lock ckb.Script) cota.BuildFunc {
				return func(ctx context.Context) (*ckb.Transaction, error) {
					return n.Builder.BuildUpdateTx(ctx, lock, nfts)
				}
			})
			return err
		},
	}
	cmd.Flags().StringVar(&cotaID, "cota-id", "", "class id, 20 bytes hex")
	cmd.Flags().StringArrayVar(&tokenIndexes, "token-index", nil, "token index, repeatable")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("cota-id")
	_ = cmd.MarkFlagRequired("token-index")
	return cmd
}

func claimUpdateCmd(a *app) *cobra.Command {
	var (
		cotaID       string
		tokenIndexes []string
		withdrawal   string
		flags        updateFlags
	)
	cmd := &cobra.Command{
		Use:   "claim-update",
		Short: "Claim tokens withdrawn to the signer and update them in one transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nfts, err := updates(cotaID, tokenIndexes, flags)
			if err != nil {
				return err
			}
			withdrawalLock, err := ckb.AddressToScript(withdrawal)
			if err != nil {
				return err
			}
			_, err = a.runTx(cmd.Context(), cota.ActionClaimUpdate, func(n *cota.Network, lock ckb.Script) cota.BuildFunc {
				return func(ctx context.Context) (*ckb.Transaction, error) {
					return n.Builder.BuildClaimUpdateTx(ctx, lock, withdrawalLock, nfts)
				}
			})
			return err
		},
	}
	cmd.Flags().StringVar(&cotaID, "cota-id", "", "class id, 20 bytes hex")
	cmd.Flags().StringArrayVar(&tokenIndexes, "token-index", nil, "token index, repeatable")
	cmd.Flags().StringVar(&withdrawal, "withdrawal", "", "address that withdrew the tokens to the signer")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("cota-id")
	_ = cmd.MarkFlagRequired("token-index")
	_ = cmd.MarkFlagRequired("withdrawal")
	return cmd
}

func transferUpdateCmd(a *app) *cobra.Command {
	var (
		tokens     tokenFlags
		withdrawal string
		flags      updateFlags
	)
	cmd := &cobra.Command{
		Use:   "transfer-update",
		Short: "Pass on tokens withdrawn to the signer with a new state and characteristic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			transfers, err := tokens.transfers()
			if err != nil {
				return err
			}
			st, char, err := flags.parse()
			if err != nil {
				return err
			}
			withdrawalLock, err := ckb.AddressToScript(withdrawal)
			if err != nil {
				return err
			}
			items := make([]cota.TransferUpdateCotaInfo, len(transfers))
			for i, t := range transfers {
				items[i] = cota.TransferUpdateCotaInfo{
					CotaID:         t.CotaID,
					TokenIndex:     t.TokenIndex,
					ToLockScript:   t.ToLockScript,
					State:          st,
					Characteristic: char,
				}
			}

			_, err = a.runTx(cmd.Context(), cota.ActionTransferUpdate, func(n *cota.Network, lock ckb.Script) cota.BuildFunc {
				return func(ctx context.Context) (*ckb.Transaction, error) {
					return n.Builder.BuildTransferUpdateTx(ctx, lock, withdrawalLock, items)
				}
			})
			return err
		},
	}
	tokens.register(cmd)
	flags.register(cmd)
	cmd.Flags().StringVar(&withdrawal, "withdrawal", "", "address that withdrew the tokens to the signer")
	_ = cmd.MarkFlagRequired("withdrawal")
	return cmd
}

func parseLocks(addresses []string) ([]ckb.Script, error) {
	if len(addresses) == 0 {
		return nil, errors.New("at least one address is required")
	}
	locks := make([]ckb.Script, len(addresses))
	for i, address := range addresses {
		lock, err := ckb.AddressToScript(address)
		if err != nil {
			return nil, err
		}
		locks[i] = lock
	}
	return locks, nil
}

func parseTokenIndexes(values []string) ([]cota.TokenIndex, error) {
	indexes := make([]cota.TokenIndex, len(values))
	for i, v := range values {
		index, err := cota.ParseTokenIndex(v)
		if err != nil {
			return nil, err
		}
		indexes[i] = index
	}
	return indexes, nil
}

func parseByte(s, what string) (byte, error) {
	var b cota.HexBytes
	if err := b.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid %s: %w", what, err)
	}
	if len(b) != 1 {
		return 0, fmt.Errorf("%s must be 1 byte, got %d", what, len(b))
	}
	return b[0], nil
}

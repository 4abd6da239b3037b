package main

import (
	"context"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/vultisig/cota/internal/ckb"
	"github.com/vultisig/cota/internal/cota"
)

type pageFlags struct {
	address  string
	cotaID   string
	page     int64
	pageSize int64
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.address, "address", "", "owner address")
	cmd.Flags().StringVar(&f.cotaID, "cota-id", "", "only list tokens of this class")
	cmd.Flags().Int64Var(&f.page, "page", 0, "page number, from 0")
	cmd.Flags().Int64Var(&f.pageSize, "page-size", 10, "page size")
	_ = cmd.MarkFlagRequired("address")
}

func (f *pageFlags) request() (cota.FetchReq, error) {
	lock, err := ckb.AddressToScript(f.address)
	if err != nil {
		return cota.FetchReq{}, err
	}
	var cotaID *cota.CotaID
	if f.cotaID != "" {
		id, err := cota.ParseCotaID(f.cotaID)
		if err != nil {
			return cota.FetchReq{}, err
		}
		cotaID = &id
	}
	return cota.NewFetchReq(lock, f.page, f.pageSize, cotaID), nil
}

// pageCmd lists one page of tokens from an aggregator listing method.
func pageCmd[T any](a *app, use, short string, fetch func(*cota.Aggregator, context.Context, cota.FetchReq) (T, error)) *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			res, err := fetch(a.aggregator(), cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	flags.register(cmd)
	return cmd
}

func holdCmd(a *app) *cobra.Command {
	return pageCmd(a, "hold", "List tokens held by an address", (*cota.Aggregator).GetHoldCotaNft)
}

func withdrawalsCmd(a *app) *cobra.Command {
	return pageCmd(a, "withdrawals", "List tokens withdrawn by an address", (*cota.Aggregator).GetWithdrawalCotaNft)
}

func mintedCmd(a *app) *cobra.Command {
	return pageCmd(a, "minted", "List tokens minted by an address", (*cota.Aggregator).GetMintCotaNft)
}

func defineInfoCmd(a *app) *cobra.Command {
	var cotaID string
	cmd := &cobra.Command{
		Use:   "define-info",
		Short: "Show supply and metadata of a class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cota.ParseCotaID(cotaID)
			if err != nil {
				return err
			}
			res, err := a.aggregator().GetDefineInfo(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	cmd.Flags().StringVar(&cotaID, "cota-id", "", "class id, 20 bytes hex")
	_ = cmd.MarkFlagRequired("cota-id")
	return cmd
}

func nftInfoCmd(a *app) *cobra.Command {
	var cotaID, tokenIndex string
	cmd := &cobra.Command{
		Use:   "nft-info",
		Short: "Show state and characteristic of a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cota.ParseCotaID(cotaID)
			if err != nil {
				return err
			}
			index, err := cota.ParseTokenIndex(tokenIndex)
			if err != nil {
				return err
			}
			res, err := a.aggregator().GetCotaNftInfo(cmd.Context(), id, index)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	cmd.Flags().StringVar(&cotaID, "cota-id", "", "class id, 20 bytes hex")
	cmd.Flags().StringVar(&tokenIndex, "token-index", "", "token index, 4 bytes hex")
	_ = cmd.MarkFlagRequired("cota-id")
	_ = cmd.MarkFlagRequired("token-index")
	return cmd
}

func countCmd(a *app) *cobra.Command {
	var address, cotaID string
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count tokens of a class held or withdrawn by an address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lock, err := ckb.AddressToScript(address)
			if err != nil {
				return err
			}
			id, err := cota.ParseCotaID(cotaID)
			if err != nil {
				return err
			}
			res, err := a.aggregator().GetCotaCount(cmd.Context(), lock, id)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "owner address")
	cmd.Flags().StringVar(&cotaID, "cota-id", "", "class id, 20 bytes hex")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("cota-id")
	return cmd
}

func claimedCmd(a *app) *cobra.Command {
	var address, cotaID, tokenIndex string
	cmd := &cobra.Command{
		Use:   "claimed",
		Short: "Check whether an address already claimed a token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lock, err := ckb.AddressToScript(address)
			if err != nil {
				return err
			}
			id, err := cota.ParseCotaID(cotaID)
			if err != nil {
				return err
			}
			index, err := cota.ParseTokenIndex(tokenIndex)
			if err != nil {
				return err
			}
			res, err := a.aggregator().IsClaimed(cmd.Context(), lock, id, index)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "claimer address")
	cmd.Flags().StringVar(&cotaID, "cota-id", "", "class id, 20 bytes hex")
	cmd.Flags().StringVar(&tokenIndex, "token-index", "", "token index, 4 bytes hex")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("cota-id")
	_ = cmd.MarkFlagRequired("token-index")
	return cmd
}

func registeredCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "registered <address>...",
		Short: "Check whether every address owns a CoTA cell",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashes := make([]ecommon.Hash, len(args))
			for i, address := range args {
				lock, err := ckb.AddressToScript(address)
				if err != nil {
					return err
				}
				hashes[i] = lock.Hash()
			}
			res, err := a.aggregator().CheckRegisteredLockHashes(cmd.Context(), hashes)
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
}

func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show aggregator sync status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.aggregator().GetAggregatorInfo(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(res)
		},
	}
}

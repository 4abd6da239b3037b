package cota

import (
	"context"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/vultisig/cota/internal/ckb"
)

type FetchReq struct {
	LockScript HexBytes `json:"lock_script"`
	Page       int64    `json:"page"`
	PageSize   int64    `json:"page_size"`
	CotaID     *CotaID  `json:"cota_id,omitempty"`
}

func NewFetchReq(lock ckb.Script, page, pageSize int64, cotaID *CotaID) FetchReq {
	return FetchReq{
		LockScript: lock.Serialize(),
		Page:       page,
		PageSize:   pageSize,
		CotaID:     cotaID,
	}
}

// Class fields are null when the class has no registered metadata.
type ClassInfo struct {
	Name               *string `json:"name"`
	Symbol             *string `json:"symbol"`
	Description        *string `json:"description"`
	Image              *string `json:"image"`
	Audio              *string `json:"audio"`
	Video              *string `json:"video"`
	Model              *string `json:"model"`
	MetaCharacteristic *string `json:"meta_characteristic"`
	Properties         *string `json:"properties"`
}

type Nft struct {
	CotaID     CotaID     `json:"cota_id"`
	TokenIndex TokenIndex `json:"token_index"`
	State      HexBytes   `json:"state"`
	Configure  HexBytes   `json:"configure"`
	// Characteristic is overwritten by the class characteristic when the
	// class has metadata, so it is kept as the raw string.
	Characteristic string `json:"characteristic"`
	ClassInfo
}

type NftPage struct {
	Total       int64  `json:"total"`
	PageSize    int64  `json:"page_size"`
	BlockNumber uint64 `json:"block_number"`
	Nfts        []Nft  `json:"nfts"`
}

func (a *Aggregator) GetHoldCotaNft(ctx context.Context, req FetchReq) (*NftPage, error) {
	var res NftPage
	if err := a.call(ctx, a.cotaURL, "get_hold_cota_nft", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *Aggregator) GetWithdrawalCotaNft(ctx context.Context, req FetchReq) (*NftPage, error) {
	var res NftPage
	if err := a.call(ctx, a.cotaURL, "get_withdrawal_cota_nft", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type MintedNft struct {
	CotaID         CotaID     `json:"cota_id"`
	TokenIndex     TokenIndex `json:"index"`
	State          HexBytes   `json:"state"`
	Configure      HexBytes   `json:"configure"`
	Characteristic HexBytes   `json:"characteristic"`
	Receiver       HexBytes   `json:"receiver"`
}

type MintedPage struct {
	Total       int64       `json:"total"`
	PageSize    int64       `json:"page_size"`
	BlockNumber uint64      `json:"block_number"`
	Nfts        []MintedNft `json:"nfts"`
}

func (a *Aggregator) GetMintCotaNft(ctx context.Context, req FetchReq) (*MintedPage, error) {
	var res MintedPage
	if err := a.call(ctx, a.cotaURL, "get_mint_cota_nft", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type cotaIDReq struct {
	CotaID CotaID `json:"cota_id"`
}

// DefineInfo has nil counters when the class was never defined.
type DefineInfo struct {
	Total       *uint32   `json:"total"`
	Issued      *uint32   `json:"issued"`
	Configure   *HexBytes `json:"configure"`
	BlockNumber uint64    `json:"block_number"`
	ClassInfo
}

func (a *Aggregator) GetDefineInfo(ctx context.Context, cotaID CotaID) (*DefineInfo, error) {
	var res DefineInfo
	if err := a.call(ctx, a.cotaURL, "get_define_info", cotaIDReq{CotaID: cotaID}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type tokenReq struct {
	LockScript HexBytes   `json:"lock_script,omitempty"`
	CotaID     CotaID     `json:"cota_id"`
	TokenIndex TokenIndex `json:"token_index"`
}

type NftInfo struct {
	State          HexBytes `json:"state"`
	Configure      HexBytes `json:"configure"`
	Characteristic HexBytes `json:"characteristic"`
	BlockNumber    uint64   `json:"block_number"`
}

func (a *Aggregator) GetCotaNftInfo(ctx context.Context, cotaID CotaID, index TokenIndex) (*NftInfo, error) {
	var res NftInfo
	req := tokenReq{CotaID: cotaID, TokenIndex: index}
	if err := a.call(ctx, a.cotaURL, "get_cota_nft_info", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type ClaimedResp struct {
	Claimed     bool   `json:"claimed"`
	BlockNumber uint64 `json:"block_number"`
}

func (a *Aggregator) IsClaimed(ctx context.Context, lock ckb.Script, cotaID CotaID, index TokenIndex) (*ClaimedResp, error) {
	var res ClaimedResp
	req := tokenReq{LockScript: lock.Serialize(), CotaID: cotaID, TokenIndex: index}
	if err := a.call(ctx, a.cotaURL, "is_claimed", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type countReq struct {
	LockScript HexBytes `json:"lock_script"`
	CotaID     CotaID   `json:"cota_id"`
}

type CountResp struct {
	Count       int64  `json:"count"`
	BlockNumber uint64 `json:"block_number"`
}

func (a *Aggregator) GetCotaCount(ctx context.Context, lock ckb.Script, cotaID CotaID) (*CountResp, error) {
	var res CountResp
	req := countReq{LockScript: lock.Serialize(), CotaID: cotaID}
	if err := a.call(ctx, a.cotaURL, "get_cota_count", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type AggregatorInfo struct {
	NodeBlockNumber    uint64 `json:"node_block_number"`
	IndexerBlockNumber uint64 `json:"indexer_block_number"`
	SyncerBlockNumber  uint64 `json:"syncer_block_number"`
	Version            string `json:"version"`
	IsMainnet          bool   `json:"is_mainnet"`
}

func (a *Aggregator) GetAggregatorInfo(ctx context.Context) (*AggregatorInfo, error) {
	var res AggregatorInfo
	if err := a.call(ctx, a.cotaURL, "get_aggregator_info", map[string]any{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type RegisteredResp struct {
	Registered  bool   `json:"registered"`
	BlockNumber uint64 `json:"block_number"`
}

// CheckRegisteredLockHashes asks the registry whether every lock hash
// already owns a CoTA cell. The registry takes its params positionally.
func (a *Aggregator) CheckRegisteredLockHashes(ctx context.Context, lockHashes []ecommon.Hash) (*RegisteredResp, error) {
	var res RegisteredResp
	if err := a.call(ctx, a.registryURL, "check_registered_lock_hashes", lockHashes, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

package cota

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/vultisig/cota/internal/metrics"
)

// Aggregator is a client for the CoTA and registry aggregator services. They
// take JSON-RPC params by name, so requests are built here rather than with
// a positional RPC client.
type Aggregator struct {
	registryURL string
	cotaURL     string
	httpClient  *http.Client
	metrics     *metrics.AggregatorMetrics
	nextID      atomic.Uint64
}

func NewAggregator(registryURL, cotaURL string) *Aggregator {
	return &Aggregator{
		registryURL: registryURL,
		cotaURL:     cotaURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		metrics: metrics.NewAggregatorMetrics(),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is an error object returned by an aggregator.
type RPCError struct {
	Method  string `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("aggregator %s error %d: %s", e.Method, e.Code, e.Message)
}

func (a *Aggregator) call(ctx context.Context, url, method string, params, result any) (err error) {
	start := time.Now()
	defer func() {
		a.metrics.RecordRequest(method, time.Since(start), err)
	}()

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      a.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make %s request: %w", method, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status code: %d", method, resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		rpcResp.Error.Method = method
		return rpcResp.Error
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return fmt.Errorf("%s: empty result", method)
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

type DefineReq struct {
	LockScript HexBytes `json:"lock_script"`
	CotaID     CotaID   `json:"cota_id"`
	Total      HexBytes `json:"total"`
	Issued     HexBytes `json:"issued"`
	Configure  HexBytes `json:"configure"`
}

type DefineResp struct {
	SmtRootHash    HexBytes `json:"smt_root_hash"`
	DefineSmtEntry HexBytes `json:"define_smt_entry"`
	BlockNumber    uint64   `json:"block_number"`
}

func (a *Aggregator) GenerateDefineCotaSmt(ctx context.Context, req DefineReq) (*DefineResp, error) {
	var res DefineResp
	if err := a.call(ctx, a.cotaURL, "generate_define_cota_smt", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type MintWithdrawalReq struct {
	TokenIndex     TokenIndex `json:"token_index"`
	State          HexBytes   `json:"state"`
	Characteristic HexBytes   `json:"characteristic"`
	ToLockScript   HexBytes   `json:"to_lock_script"`
}

type MintReq struct {
	LockScript  HexBytes            `json:"lock_script"`
	CotaID      CotaID              `json:"cota_id"`
	OutPoint    HexBytes            `json:"out_point"`
	Withdrawals []MintWithdrawalReq `json:"withdrawals"`
}

type MintResp struct {
	SmtRootHash  HexBytes `json:"smt_root_hash"`
	MintSmtEntry HexBytes `json:"mint_smt_entry"`
	BlockNumber  uint64   `json:"block_number"`
}

func (a *Aggregator) GenerateMintCotaSmt(ctx context.Context, req MintReq) (*MintResp, error) {
	var res MintResp
	if err := a.call(ctx, a.cotaURL, "generate_mint_cota_smt", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type TransferReqItem struct {
	CotaID       CotaID     `json:"cota_id"`
	TokenIndex   TokenIndex `json:"token_index"`
	ToLockScript HexBytes   `json:"to_lock_script"`
}

type TransferReq struct {
	LockScript         HexBytes          `json:"lock_script"`
	WithdrawalLockHash ecommon.Hash      `json:"withdrawal_lock_hash"`
	TransferOutPoint   HexBytes          `json:"transfer_out_point"`
	Transfers          []TransferReqItem `json:"transfers"`
}

type TransferResp struct {
	SmtRootHash       HexBytes `json:"smt_root_hash"`
	TransferSmtEntry  HexBytes `json:"transfer_smt_entry"`
	WithdrawBlockHash HexBytes `json:"withdraw_block_hash"`
	BlockNumber       uint64   `json:"block_number"`
}

func (a *Aggregator) GenerateTransferCotaSmt(ctx context.Context, req TransferReq) (*TransferResp, error) {
	var res TransferResp
	if err := a.call(ctx, a.cotaURL, "generate_transfer_cota_smt", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type WithdrawalReq struct {
	LockHash    ecommon.Hash      `json:"lock_hash"`
	LockScript  HexBytes          `json:"lock_script"`
	OutPoint    HexBytes          `json:"out_point"`
	Withdrawals []TransferReqItem `json:"withdrawals"`
}

type WithdrawalResp struct {
	SmtRootHash        HexBytes `json:"smt_root_hash"`
	WithdrawalSmtEntry HexBytes `json:"withdrawal_smt_entry"`
	BlockNumber        uint64   `json:"block_number"`
}

func (a *Aggregator) GenerateWithdrawalCotaSmt(ctx context.Context, req WithdrawalReq) (*WithdrawalResp, error) {
	var res WithdrawalResp
	if err := a.call(ctx, a.cotaURL, "generate_withdrawal_cota_smt", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type ClaimReqItem struct {
	CotaID     CotaID     `json:"cota_id"`
	TokenIndex TokenIndex `json:"token_index"`
}

type ClaimReq struct {
	LockScript           HexBytes       `json:"lock_script"`
	WithdrawalLockScript HexBytes       `json:"withdrawal_lock_script"`
	Claims               []ClaimReqItem `json:"claims"`
}

type ClaimResp struct {
	SmtRootHash       HexBytes `json:"smt_root_hash"`
	ClaimSmtEntry     HexBytes `json:"claim_smt_entry"`
	WithdrawBlockHash HexBytes `json:"withdraw_block_hash"`
	BlockNumber       uint64   `json:"block_number"`
}

func (a *Aggregator) GenerateClaimCotaSmt(ctx context.Context, req ClaimReq) (*ClaimResp, error) {
	var res ClaimResp
	if err := a.call(ctx, a.cotaURL, "generate_claim_cota_smt", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateReqItem sets the state and characteristic of one held token.
type UpdateReqItem struct {
	CotaID         CotaID     `json:"cota_id"`
	TokenIndex     TokenIndex `json:"token_index"`
	State          HexBytes   `json:"state"`
	Characteristic HexBytes   `json:"characteristic"`
}

// UpdateReq sends the lock both as a script and as a hash. Older aggregator
// releases read only lock_hash.
type UpdateReq struct {
	LockHash   ecommon.Hash    `json:"lock_hash"`
	LockScript HexBytes        `json:"lock_script"`
	Nfts       []UpdateReqItem `json:"nfts"`
}

type UpdateResp struct {
	SmtRootHash    HexBytes `json:"smt_root_hash"`
	UpdateSmtEntry HexBytes `json:"update_smt_entry"`
	BlockNumber    uint64   `json:"block_number"`
}

func (a *Aggregator) GenerateUpdateCotaSmt(ctx context.Context, req UpdateReq) (*UpdateResp, error) {
	var res UpdateResp
	if err := a.call(ctx, a.cotaURL, "generate_update_cota_smt", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type ClaimUpdateReq struct {
	LockScript           HexBytes        `json:"lock_script"`
	WithdrawalLockScript HexBytes        `json:"withdrawal_lock_script"`
	Nfts                 []UpdateReqItem `json:"nfts"`
}

type ClaimUpdateResp struct {
	SmtRootHash         HexBytes `json:"smt_root_hash"`
	ClaimUpdateSmtEntry HexBytes `json:"claim_update_smt_entry"`
	WithdrawBlockHash   HexBytes `json:"withdraw_block_hash"`
	BlockNumber         uint64   `json:"block_number"`
}

func (a *Aggregator) GenerateClaimUpdateCotaSmt(ctx context.Context, req ClaimUpdateReq) (*ClaimUpdateResp, error) {
	var res ClaimUpdateResp
	if err := a.call(ctx, a.cotaURL, "generate_claim_update_cota_smt", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type TransferUpdateReqItem struct {
	CotaID         CotaID     `json:"cota_id"`
	TokenIndex     TokenIndex `json:"token_index"`
	ToLockScript   HexBytes   `json:"to_lock_script"`
	State          HexBytes   `json:"state"`
	Characteristic HexBytes   `json:"characteristic"`
}

// TransferUpdateReq carries the withdrawal lock in both forms, like UpdateReq.
type TransferUpdateReq struct {
	LockScript           HexBytes                `json:"lock_script"`
	WithdrawalLockScript HexBytes                `json:"withdrawal_lock_script"`
	WithdrawalLockHash   ecommon.Hash            `json:"withdrawal_lock_hash"`
	TransferOutPoint     HexBytes                `json:"transfer_out_point"`
	Transfers            []TransferUpdateReqItem `json:"transfers"`
}

type TransferUpdateResp struct {
	SmtRootHash            HexBytes `json:"smt_root_hash"`
	TransferUpdateSmtEntry HexBytes `json:"transfer_update_smt_entry"`
	WithdrawBlockHash      HexBytes `json:"withdraw_block_hash"`
	BlockNumber            uint64   `json:"block_number"`
}

func (a *Aggregator) GenerateTransferUpdateCotaSmt(ctx context.Context, req TransferUpdateReq) (*TransferUpdateResp, error) {
	var res TransferUpdateResp
	if err := a.call(ctx, a.cotaURL, "generate_transfer_update_cota_smt", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

package ckb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

const rpcTimeout = 30 * time.Second

// genesis layout: the second transaction's first output is the secp256k1 dep group
const (
	genesisDepGroupTx    = 1
	genesisDepGroupIndex = 0
)

// dialRPC opens a JSON-RPC client with the same HTTP timeout every
// outbound call in this repository uses.
func dialRPC(ctx context.Context, url string) (*rpc.Client, error) {
	c, err := rpc.DialOptions(ctx, url, rpc.WithHTTPClient(&http.Client{
		Timeout: rpcTimeout,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return c, nil
}

// Client talks to a CKB node.
type Client struct {
	rpc *rpc.Client
}

func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := dialRPC(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewClient(c), nil
}

func NewClient(c *rpc.Client) *Client {
	return &Client{
		rpc: c,
	}
}

func (c *Client) Close() {
	c.rpc.Close()
}

// SendTransaction submits a signed transaction with the passthrough outputs
// validator and returns the hash reported by the node.
func (c *Client) SendTransaction(ctx context.Context, tx *Transaction) (ecommon.Hash, error) {
	var hash ecommon.Hash
	err := c.rpc.CallContext(ctx, &hash, "send_transaction", toRPCTransaction(tx), "passthrough")
	if err != nil {
		return ecommon.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return hash, nil
}

// GetTransactionStatus returns TxStatusUnknown when the node has never seen
// the hash.
func (c *Client) GetTransactionStatus(ctx context.Context, hash ecommon.Hash) (TxStatus, error) {
	var res *rpcTransactionWithStatus
	err := c.rpc.CallContext(ctx, &res, "get_transaction", hash)
	if err != nil {
		return "", fmt.Errorf("failed to get transaction %s: %w", hash.Hex(), err)
	}
	if res == nil || res.TxStatus.Status == "" {
		return TxStatusUnknown, nil
	}
	return res.TxStatus.Status, nil
}

func (c *Client) GetTipBlockNumber(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	err := c.rpc.CallContext(ctx, &n, "get_tip_block_number")
	if err != nil {
		return 0, fmt.Errorf("failed to get tip block number: %w", err)
	}
	return uint64(n), nil
}

// GenesisSecp256k1Dep loads the secp256k1 dep group out point from the
// genesis block, which works against devnets as well as public networks.
func (c *Client) GenesisSecp256k1Dep(ctx context.Context) (CellDep, error) {
	var block *rpcBlock
	err := c.rpc.CallContext(ctx, &block, "get_block_by_number", hexutil.Uint64(0))
	if err != nil {
		return CellDep{}, fmt.Errorf("failed to get genesis block: %w", err)
	}
	if block == nil || len(block.Transactions) <= genesisDepGroupTx {
		return CellDep{}, errors.New("genesis block has no dep group transaction")
	}
	return CellDep{
		OutPoint: OutPoint{
			TxHash: block.Transactions[genesisDepGroupTx].Hash,
			Index:  genesisDepGroupIndex,
		},
		DepType: DepTypeDepGroup,
	}, nil
}

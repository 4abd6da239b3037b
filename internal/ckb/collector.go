package ckb

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

const cellsPageSize = 100

// Collector finds live cells through the indexer RPC.
type Collector struct {
	indexer *rpc.Client
}

func DialCollector(ctx context.Context, indexerURL string) (*Collector, error) {
	c, err := dialRPC(ctx, indexerURL)
	if err != nil {
		return nil, err
	}
	return NewCollector(c), nil
}

func NewCollector(indexer *rpc.Client) *Collector {
	return &Collector{
		indexer: indexer,
	}
}

func (c *Collector) Close() {
	c.indexer.Close()
}

// GetCells returns every live cell locked by lock. A non-nil typ narrows the
// result to cells carrying that type script.
func (c *Collector) GetCells(ctx context.Context, lock Script, typ *Script) ([]Cell, error) {
	key := rpcSearchKey{
		Script:     toRPCScript(lock),
		ScriptType: "lock",
	}
	if typ != nil {
		t := toRPCScript(*typ)
		key.Filter = &rpcSearchKeyFilter{Script: &t}
	}

	var (
		cells  []Cell
		cursor *string
	)
	for {
		var page rpcCellsPage
		err := c.indexer.CallContext(ctx, &page, "get_cells", key, "asc", hexutil.Uint64(cellsPageSize), cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to get cells: %w", err)
		}
		for _, obj := range page.Objects {
			cells = append(cells, fromRPCIndexerCell(obj))
		}
		if len(page.Objects) < cellsPageSize || page.LastCursor == "" {
			return cells, nil
		}
		next := page.LastCursor
		cursor = &next
	}
}

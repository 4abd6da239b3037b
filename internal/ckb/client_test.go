package ckb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcHandler func(params []json.RawMessage) (any, error)

type recordedCall struct {
	Method string
	Params []json.RawMessage
}

// mockRPCServer answers positional JSON-RPC 2.0 calls from handlers keyed by
// method and records every call it served.
func mockRPCServer(t *testing.T, handlers map[string]rpcHandler) (*httptest.Server, func() []recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		calls = append(calls, recordedCall{Method: req.Method, Params: req.Params})
		mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		h, ok := handlers[req.Method]
		if !ok {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		} else if result, err := h(req.Params); err != nil {
			resp["error"] = map[string]any{"code": -3, "message": err.Error()}
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	return server, func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func TestClient_SendTransaction(t *testing.T) {
	txHash := "0x" + strings.Repeat("ab", 32)
	server, calls := mockRPCServer(t, map[string]rpcHandler{
		"send_transaction": func(params []json.RawMessage) (any, error) {
			return txHash, nil
		},
	})
	defer server.Close()

	ctx := context.Background()
	client, err := Dial(ctx, server.URL)
	require.NoError(t, err)
	defer client.Close()

	tx := sampleTransaction()
	hash, err := client.SendTransaction(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, ecommon.HexToHash(txHash), hash)

	got := calls()
	require.Len(t, got, 1)
	require.Len(t, got[0].Params, 2)
	assert.JSONEq(t, `"passthrough"`, string(got[0].Params[1]))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(got[0].Params[0], &sent))
	assert.Contains(t, sent, "cell_deps")
	assert.Contains(t, sent, "outputs_data")
	deps := sent["cell_deps"].([]any)
	assert.Equal(t, "dep_group", deps[0].(map[string]any)["dep_type"])
	input := sent["inputs"].([]any)[0].(map[string]any)
	assert.Equal(t, "0x1", input["previous_output"].(map[string]any)["index"])
	assert.Equal(t, "0x0", input["since"])
}

func TestClient_SendTransaction_RPCError(t *testing.T) {
	server, _ := mockRPCServer(t, map[string]rpcHandler{
		"send_transaction": func(params []json.RawMessage) (any, error) {
			return nil, assert.AnError
		},
	})
	defer server.Close()

	ctx := context.Background()
	client, err := Dial(ctx, server.URL)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.SendTransaction(ctx, sampleTransaction())
	require.Error(t, err)
	assert.Contains(t, err.Error(), assert.AnError.Error())
}

func TestClient_GetTransactionStatus(t *testing.T) {
	tests := []struct {
		name   string
		result any
		want   TxStatus
	}{
		{"committed", map[string]any{"tx_status": map[string]any{"status": "committed"}}, TxStatusCommitted},
		{"pending", map[string]any{"tx_status": map[string]any{"status": "pending"}}, TxStatusPending},
		{"null", nil, TxStatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := mockRPCServer(t, map[string]rpcHandler{
				"get_transaction": func(params []json.RawMessage) (any, error) {
					return tt.result, nil
				},
			})
			defer server.Close()

			ctx := context.Background()
			client, err := Dial(ctx, server.URL)
			require.NoError(t, err)
			defer client.Close()

			status, err := client.GetTransactionStatus(ctx, ecommon.HexToHash("0x01"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestClient_GenesisSecp256k1Dep(t *testing.T) {
	depTx := "0xf8de3bb47d055cdf460d93a2a6e1b05f7432f9777c8c474abf4eec1d4aee5d37"
	server, calls := mockRPCServer(t, map[string]rpcHandler{
		"get_block_by_number": func(params []json.RawMessage) (any, error) {
			return map[string]any{
				"transactions": []any{
					map[string]any{"hash": "0x" + strings.Repeat("11", 32)},
					map[string]any{"hash": depTx},
				},
			}, nil
		},
		"get_tip_block_number": func(params []json.RawMessage) (any, error) {
			return "0x400", nil
		},
	})
	defer server.Close()

	ctx := context.Background()
	client, err := Dial(ctx, server.URL)
	require.NoError(t, err)
	defer client.Close()

	dep, err := client.GenesisSecp256k1Dep(ctx)
	require.NoError(t, err)
	assert.Equal(t, Testnet.Secp256k1DepGroup(), dep)
	assert.JSONEq(t, `"0x0"`, string(calls()[0].Params[0]))

	tip, err := client.GetTipBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), tip)
}

func TestCollector_GetCells(t *testing.T) {
	lock := Secp256k1Lock(make([]byte, 20))
	typ := Script{CodeHash: ecommon.HexToHash("0x89cd"), HashType: HashTypeType}

	server, calls := mockRPCServer(t, map[string]rpcHandler{
		"get_cells": func(params []json.RawMessage) (any, error) {
			return map[string]any{
				"last_cursor": "0xdead",
				"objects": []any{map[string]any{
					"block_number": "0x10",
					"out_point": map[string]any{
						"tx_hash": "0x" + strings.Repeat("cc", 32),
						"index":   "0x2",
					},
					"output": map[string]any{
						"capacity": "0x2540be400",
						"lock":     map[string]any{"code_hash": lock.CodeHash.Hex(), "hash_type": "type", "args": "0x0000000000000000000000000000000000000000"},
						"type":     map[string]any{"code_hash": typ.CodeHash.Hex(), "hash_type": "type", "args": "0x"},
					},
					"output_data": "0x00" + "11",
					"tx_index":    "0x0",
				}},
			}, nil
		},
	})
	defer server.Close()

	ctx := context.Background()
	collector, err := DialCollector(ctx, server.URL)
	require.NoError(t, err)
	defer collector.Close()

	cells, err := collector.GetCells(ctx, lock, &typ)
	require.NoError(t, err)
	require.Len(t, cells, 1)

	cell := cells[0]
	assert.Equal(t, uint(2), uint(cell.OutPoint.Index))
	assert.Equal(t, uint64(10_000_000_000), uint64(cell.Output.Capacity))
	require.NotNil(t, cell.Output.Type)
	assert.True(t, cell.Output.Type.Equal(typ))
	assert.True(t, cell.Output.Lock.Equal(lock))
	assert.Equal(t, []byte{0x00, 0x11}, cell.Data)
	assert.Equal(t, uint64(16), cell.BlockNumber)

	got := calls()
	require.Len(t, got, 1)
	require.Len(t, got[0].Params, 4)
	var key map[string]any
	require.NoError(t, json.Unmarshal(got[0].Params[0], &key))
	assert.Equal(t, "lock", key["script_type"])
	filter := key["filter"].(map[string]any)["script"].(map[string]any)
	assert.Equal(t, typ.CodeHash.Hex(), filter["code_hash"])
	assert.JSONEq(t, `"asc"`, string(got[0].Params[1]))
	assert.JSONEq(t, `"0x64"`, string(got[0].Params[2]))
}

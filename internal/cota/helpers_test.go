package cota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"
	"github.com/vultisig/cota/internal/ckb"
)

const testFee = 3000

var (
	smtRoot      = strings.Repeat("ab", smtRootSize)
	blockHashHex = strings.Repeat("cd", ecommon.HashLength)
	testCotaDep  = ckb.CellDep{
		OutPoint: ckb.OutPoint{TxHash: ecommon.HexToHash("0x" + strings.Repeat("11", 32)), Index: 0},
		DepType:  ckb.DepTypeDepGroup,
	}
)

type aggregatorHandler func(params json.RawMessage) (any, error)

type aggregatorCall struct {
	Method string
	Params json.RawMessage
}

// rpcFailure makes the mock aggregator answer with a JSON-RPC error object.
type rpcFailure struct {
	code    int
	message string
}

func (f rpcFailure) Error() string {
	return f.message
}

// mockAggregator serves JSON-RPC calls whose params are objects, the way the
// CoTA aggregator takes them.
func mockAggregator(t *testing.T, handlers map[string]aggregatorHandler) (*Aggregator, func() []aggregatorCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []aggregatorCall
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		calls = append(calls, aggregatorCall{Method: req.Method, Params: req.Params})
		mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		h, ok := handlers[req.Method]
		if !ok {
			resp["error"] = map[string]any{"code": -32601, "message": "Method not found"}
		} else if result, err := h(req.Params); err != nil {
			code := -32000
			var f rpcFailure
			if errors.As(err, &f) {
				code = f.code
			}
			resp["error"] = map[string]any{"code": code, "message": err.Error()}
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	return NewAggregator(server.URL, server.URL), func() []aggregatorCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]aggregatorCall(nil), calls...)
	}
}

// fakeCollector returns the cells registered for a lock.
type fakeCollector struct {
	cells map[ecommon.Hash][]ckb.Cell
	err   error
}

func newFakeCollector(cells ...ckb.Cell) *fakeCollector {
	c := &fakeCollector{cells: map[ecommon.Hash][]ckb.Cell{}}
	for _, cell := range cells {
		h := cell.Output.Lock.Hash()
		c.cells[h] = append(c.cells[h], cell)
	}
	return c
}

func (c *fakeCollector) GetCells(_ context.Context, lock ckb.Script, _ *ckb.Script) ([]ckb.Cell, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.cells[lock.Hash()], nil
}

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testLock(b byte) ckb.Script {
	args := make([]byte, 20)
	for i := range args {
		args[i] = b
	}
	return ckb.Secp256k1Lock(args)
}

// cotaCell is a CoTA cell of lock with capacity CKB and an all-zero root.
func cotaCell(lock ckb.Script, txByte byte, capacity uint64) ckb.Cell {
	cotaType := CotaTypeScript(ckb.Testnet)
	return ckb.Cell{
		OutPoint: ckb.OutPoint{
			TxHash: ecommon.HexToHash("0x" + strings.Repeat(fmt.Sprintf("%02x", txByte), 32)),
			Index:  1,
		},
		Output: ckb.CellOutput{
			Capacity: hexutil.Uint64(capacity * ckb.ShannonsPerCKB),
			Lock:     lock,
			Type:     &cotaType,
		},
		Data:        make([]byte, 1+smtRootSize),
		BlockNumber: 100,
	}
}

func newTestBuilder(collector CellCollector, aggregator *Aggregator) *Builder {
	return NewBuilder(testLogger(), collector, aggregator, ckb.Testnet, testCotaDep, testFee)
}

func decodeParams[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("failed to decode params: %v", err)
	}
	return v
}

func parseWitness(t *testing.T, tx *ckb.Transaction) ckb.WitnessArgs {
	t.Helper()
	if len(tx.Witnesses) == 0 {
		t.Fatal("transaction has no witnesses")
	}
	w, err := ckb.ParseWitnessArgs(tx.Witnesses[0])
	if err != nil {
		t.Fatalf("failed to parse witness: %v", err)
	}
	return w
}

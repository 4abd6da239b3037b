package cota

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vultisig/cota/internal/ckb"
)

type fakeSender struct {
	sent []*ckb.Transaction
	err  error
}

func (s *fakeSender) SendTransaction(_ context.Context, tx *ckb.Transaction) (ecommon.Hash, error) {
	if s.err != nil {
		return ecommon.Hash{}, s.err
	}
	s.sent = append(s.sent, tx)
	return tx.Hash(), nil
}

type fakeWaiter struct {
	status ckb.TxStatus
	err    error
	waited []ecommon.Hash
}

func (w *fakeWaiter) WaitCommitted(_ context.Context, hash ecommon.Hash) (ckb.TxStatus, error) {
	w.waited = append(w.waited, hash)
	return w.status, w.err
}

var secpDep = ckb.Testnet.Secp256k1DepGroup()

func newTestSigner(t *testing.T) *ckb.SignerService {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return ckb.NewSignerService(key)
}

// transferBuild builds a transfer signed by signer's lock against the mock
// aggregator.
func transferBuild(t *testing.T, signer *ckb.SignerService) BuildFunc {
	t.Helper()
	sender := signer.LockScript()
	withdrawalLock := testLock(0x01)
	aggregator, _ := mockAggregator(t, map[string]aggregatorHandler{
		"generate_transfer_cota_smt": func(json.RawMessage) (any, error) {
			return map[string]any{
				"smt_root_hash":       smtRoot,
				"transfer_smt_entry":  "beef",
				"withdraw_block_hash": blockHashHex,
				"block_number":        12,
			}, nil
		},
	})
	builder := newTestBuilder(newFakeCollector(cotaCell(sender, 0xaa, 200), cotaCell(withdrawalLock, 0xbb, 200)), aggregator)
	return func(ctx context.Context) (*ckb.Transaction, error) {
		return builder.BuildTransferTx(ctx, sender, withdrawalLock, []TransferCotaInfo{
			{CotaID: testCotaID, TokenIndex: 0x1a, ToLockScript: testLock(0x03)},
		})
	}
}

func TestRunner_Run(t *testing.T) {
	signer := newTestSigner(t)
	sender := &fakeSender{}
	var out bytes.Buffer
	runner := NewRunner(testLogger(), signer, sender, FixedCellDep(secpDep), &out)

	res, err := runner.Run(context.Background(), ActionTransfer, transferBuild(t, signer))
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	sent := sender.sent[0]
	assert.Equal(t, sent.Hash(), res.TxHash)
	assert.Regexp(t, "^0x[0-9a-f]{64}$", res.TxHash.Hex())
	assert.False(t, res.DryRun)
	require.Len(t, sent.CellDeps, 3)
	assert.Equal(t, secpDep, sent.CellDeps[2])
	assert.Equal(t, testCotaDep, sent.CellDeps[1])

	witness, err := ckb.ParseWitnessArgs(sent.Witnesses[0])
	require.NoError(t, err)
	assert.Len(t, witness.Lock, 65)
	assert.Equal(t, []byte{byte(ActionTransfer), 0xbe, 0xef}, witness.InputType)

	var printed map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	for _, key := range []string{"cellDeps", "headerDeps", "inputs", "outputs", "outputsData", "witnesses"} {
		assert.Contains(t, printed, key)
	}
	var cellDeps []ckb.CellDep
	require.NoError(t, json.Unmarshal(printed["cellDeps"], &cellDeps))
	assert.Equal(t, sent.CellDeps, cellDeps)
}

func TestRunner_DryRun(t *testing.T) {
	signer := newTestSigner(t)
	sender := &fakeSender{}
	var out bytes.Buffer
	runner := NewRunner(testLogger(), signer, sender, FixedCellDep(secpDep), &out, WithDryRun(true))

	res, err := runner.Run(context.Background(), ActionTransfer, transferBuild(t, signer))
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Empty(t, sender.sent)
	assert.NotEmpty(t, out.String())
	assert.Equal(t, res.Tx.Hash(), res.TxHash)
}

func TestRunner_Wait(t *testing.T) {
	signer := newTestSigner(t)
	waiter := &fakeWaiter{status: ckb.TxStatusCommitted}
	runner := NewRunner(testLogger(), signer, &fakeSender{}, FixedCellDep(secpDep), &bytes.Buffer{}, WithWaiter(waiter))

	res, err := runner.Run(context.Background(), ActionTransfer, transferBuild(t, signer))
	require.NoError(t, err)
	assert.Equal(t, ckb.TxStatusCommitted, res.Status)
	assert.Equal(t, []ecommon.Hash{res.TxHash}, waiter.waited)
}

func TestRunner_StageErrors(t *testing.T) {
	signer := newTestSigner(t)
	okBuild := transferBuild(t, signer)

	tests := []struct {
		name    string
		build   BuildFunc
		dep     CellDepResolver
		sender  *fakeSender
		waiter  *fakeWaiter
		stage   Stage
		printed bool
	}{
		{
			name: "build",
			build: func(context.Context) (*ckb.Transaction, error) {
				return nil, &RPCError{Method: "generate_transfer_cota_smt", Code: -1, Message: "boom"}
			},
			dep:    FixedCellDep(secpDep),
			sender: &fakeSender{},
			stage:  StageBuildTx,
		},
		{
			name: "nil transaction",
			build: func(context.Context) (*ckb.Transaction, error) {
				return nil, nil
			},
			dep:    FixedCellDep(secpDep),
			sender: &fakeSender{},
			stage:  StageBuildTx,
		},
		{
			name:  "cell dep",
			build: okBuild,
			dep: func(context.Context) (ckb.CellDep, error) {
				return ckb.CellDep{}, errors.New("genesis unavailable")
			},
			sender: &fakeSender{},
			stage:  StageCellDep,
		},
		{
			name:    "send",
			build:   okBuild,
			dep:     FixedCellDep(secpDep),
			sender:  &fakeSender{err: errors.New("PoolRejectedDuplicatedTransaction")},
			stage:   StageSendTx,
			printed: true,
		},
		{
			name:    "wait",
			build:   okBuild,
			dep:     FixedCellDep(secpDep),
			sender:  &fakeSender{},
			waiter:  &fakeWaiter{status: ckb.TxStatusRejected, err: errors.New("rejected")},
			stage:   StageWait,
			printed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			var opts []RunnerOption
			if tt.waiter != nil {
				opts = append(opts, WithWaiter(tt.waiter))
			}
			runner := NewRunner(testLogger(), signer, tt.sender, tt.dep, &out, opts...)

			_, err := runner.Run(context.Background(), ActionTransfer, tt.build)
			require.Error(t, err)

			var stageErr *StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, tt.stage, stageErr.Stage)
			assert.Equal(t, tt.printed, out.Len() > 0)
		})
	}
}

func TestRunner_BuildErrorKeepsAggregatorError(t *testing.T) {
	signer := newTestSigner(t)
	aggregator, _ := mockAggregator(t, map[string]aggregatorHandler{
		"generate_transfer_cota_smt": func(json.RawMessage) (any, error) {
			return nil, rpcFailure{code: -32099, message: "The withdrawn NFT does not exist"}
		},
	})
	sender := signer.LockScript()
	withdrawalLock := testLock(0x01)
	builder := newTestBuilder(newFakeCollector(cotaCell(sender, 0xaa, 200), cotaCell(withdrawalLock, 0xbb, 200)), aggregator)
	runner := NewRunner(testLogger(), signer, &fakeSender{}, FixedCellDep(secpDep), &bytes.Buffer{})

	_, err := runner.Run(context.Background(), ActionTransfer, func(ctx context.Context) (*ckb.Transaction, error) {
		return builder.BuildTransferTx(ctx, sender, withdrawalLock, []TransferCotaInfo{
			{CotaID: testCotaID, TokenIndex: 0x15, ToLockScript: testLock(0x03)},
		})
	})

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageBuildTx, stageErr.Stage)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "The withdrawn NFT does not exist", rpcErr.Message)
}

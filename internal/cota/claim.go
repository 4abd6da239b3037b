package cota

import (
	"context"
	"errors"
	"fmt"

	"github.com/vultisig/cota/internal/ckb"
)

// BuildClaimTx claims tokens that withdrawalLock withdrew to claimer.
func (b *Builder) BuildClaimTx(
	ctx context.Context,
	claimer ckb.Script,
	withdrawalLock ckb.Script,
	claims []ClaimCotaInfo,
) (*ckb.Transaction, error) {
	if len(claims) == 0 {
		return nil, errors.New("claim needs at least one token")
	}

	cell, withdrawalCell, err := b.findCotaCellPair(ctx, claimer, withdrawalLock)
	if err != nil {
		return nil, err
	}
	input, output, err := b.spendCotaCell(cell)
	if err != nil {
		return nil, err
	}

	items := make([]ClaimReqItem, len(claims))
	for i, c := range claims {
		items[i] = ClaimReqItem{CotaID: c.CotaID, TokenIndex: c.TokenIndex}
	}
	res, err := b.aggregator.GenerateClaimCotaSmt(ctx, ClaimReq{
		LockScript:           claimer.Serialize(),
		WithdrawalLockScript: withdrawalLock.Serialize(),
		Claims:               items,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate claim smt: %w", err)
	}

	data, err := cotaCellData(cell.Data, res.SmtRootHash)
	if err != nil {
		return nil, err
	}
	witness, err := actionWitness(ActionClaim, res.ClaimSmtEntry, nil)
	if err != nil {
		return nil, err
	}
	headerDeps, err := blockHashDeps(res.WithdrawBlockHash)
	if err != nil {
		return nil, err
	}
	return b.assemble(input, output, data, witness, []ckb.CellDep{codeDep(withdrawalCell)}, headerDeps), nil
}

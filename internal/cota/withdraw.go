package cota

import (
	"context"
	"errors"
	"fmt"

	"github.com/vultisig/cota/internal/ckb"
)

// BuildWithdrawTx moves tokens held by owner into withdrawal records for
// their receivers, who claim them later.
func (b *Builder) BuildWithdrawTx(ctx context.Context, owner ckb.Script, withdrawals []TransferCotaInfo) (*ckb.Transaction, error) {
	if len(withdrawals) == 0 {
		return nil, errors.New("withdraw needs at least one token")
	}

	cell, err := b.FindCotaCell(ctx, owner)
	if err != nil {
		return nil, err
	}
	input, output, err := b.spendCotaCell(cell)
	if err != nil {
		return nil, err
	}

	res, err := b.aggregator.GenerateWithdrawalCotaSmt(ctx, WithdrawalReq{
		LockHash:    owner.Hash(),
		LockScript:  owner.Serialize(),
		OutPoint:    outPoint24(cell.OutPoint),
		Withdrawals: transferItems(withdrawals),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate withdrawal smt: %w", err)
	}

	data, err := cotaCellData(cell.Data, res.SmtRootHash)
	if err != nil {
		return nil, err
	}
	witness, err := actionWitness(ActionWithdraw, res.WithdrawalSmtEntry, nil)
	if err != nil {
		return nil, err
	}
	return b.assemble(input, output, data, witness, nil, nil), nil
}

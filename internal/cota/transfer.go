package cota

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vultisig/cota/internal/ckb"
)

// BuildTransferTx transfers tokens held by sender, which were originally
// withdrawn from withdrawalLock's CoTA cell.
func (b *Builder) BuildTransferTx(
	ctx context.Context,
	sender ckb.Script,
	withdrawalLock ckb.Script,
	transfers []TransferCotaInfo,
) (*ckb.Transaction, error) {
	if len(transfers) == 0 {
		return nil, errors.New("transfer needs at least one token")
	}

	cell, withdrawalCell, err := b.findCotaCellPair(ctx, sender, withdrawalLock)
	if err != nil {
		return nil, err
	}
	input, output, err := b.spendCotaCell(cell)
	if err != nil {
		return nil, err
	}

	res, err := b.aggregator.GenerateTransferCotaSmt(ctx, TransferReq{
		LockScript:         sender.Serialize(),
		WithdrawalLockHash: withdrawalLock.Hash(),
		TransferOutPoint:   outPoint24(cell.OutPoint),
		Transfers:          transferItems(transfers),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate transfer smt: %w", err)
	}

	data, err := cotaCellData(cell.Data, res.SmtRootHash)
	if err != nil {
		return nil, err
	}
	witness, err := actionWitness(ActionTransfer, res.TransferSmtEntry, nil)
	if err != nil {
		return nil, err
	}
	headerDeps, err := blockHashDeps(res.WithdrawBlockHash)
	if err != nil {
		return nil, err
	}

	b.logger.WithFields(logrus.Fields{
		"transfers": len(transfers),
		"block":     res.BlockNumber,
	}).Debug("transfer smt generated")
	return b.assemble(input, output, data, witness, []ckb.CellDep{codeDep(withdrawalCell)}, headerDeps), nil
}

func transferItems(transfers []TransferCotaInfo) []TransferReqItem {
	items := make([]TransferReqItem, len(transfers))
	for i, t := range transfers {
		items[i] = TransferReqItem{
			CotaID:       t.CotaID,
			TokenIndex:   t.TokenIndex,
			ToLockScript: t.ToLockScript.Serialize(),
		}
	}
	return items
}

package cota

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vultisig/cota/internal/ckb"
)

// BuildUpdateTx rewrites the state and characteristic of tokens owner holds.
func (b *Builder) BuildUpdateTx(ctx context.Context, owner ckb.Script, nfts []UpdateCotaInfo) (*ckb.Transaction, error) {
	if len(nfts) == 0 {
		return nil, errors.New("update needs at least one token")
	}

	cell, err := b.FindCotaCell(ctx, owner)
	if err != nil {
		return nil, err
	}
	input, output, err := b.spendCotaCell(cell)
	if err != nil {
		return nil, err
	}

	res, err := b.aggregator.GenerateUpdateCotaSmt(ctx, UpdateReq{
		LockHash:   owner.Hash(),
		LockScript: owner.Serialize(),
		Nfts:       updateItems(nfts),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate update smt: %w", err)
	}

	data, err := cotaCellData(cell.Data, res.SmtRootHash)
	if err != nil {
		return nil, err
	}
	witness, err := actionWitness(ActionUpdate, res.UpdateSmtEntry, nil)
	if err != nil {
		return nil, err
	}
	return b.assemble(input, output, data, witness, nil, nil), nil
}

// BuildClaimUpdateTx claims tokens withdrawn to claimer and sets their new
// state and characteristic in the same transaction.
func (b *Builder) BuildClaimUpdateTx(
	ctx context.Context,
	claimer ckb.Script,
	withdrawalLock ckb.Script,
	nfts []UpdateCotaInfo,
) (*ckb.Transaction, error) {
	if len(nfts) == 0 {
		return nil, errors.New("claim update needs at least one token")
	}

	cell, withdrawalCell, err := b.findCotaCellPair(ctx, claimer, withdrawalLock)
	if err != nil {
		return nil, err
	}
	input, output, err := b.spendCotaCell(cell)
	if err != nil {
		return nil, err
	}

	res, err := b.aggregator.GenerateClaimUpdateCotaSmt(ctx, ClaimUpdateReq{
		LockScript:           claimer.Serialize(),
		WithdrawalLockScript: withdrawalLock.Serialize(),
		Nfts:                 updateItems(nfts),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate claim update smt: %w", err)
	}

	data, err := cotaCellData(cell.Data, res.SmtRootHash)
	if err != nil {
		return nil, err
	}
	witness, err := actionWitness(ActionClaimUpdate, res.ClaimUpdateSmtEntry, nil)
	if err != nil {
		return nil, err
	}
	headerDeps, err := blockHashDeps(res.WithdrawBlockHash)
	if err != nil {
		return nil, err
	}
	return b.assemble(input, output, data, witness, []ckb.CellDep{codeDep(withdrawalCell)}, headerDeps), nil
}

// BuildTransferUpdateTx transfers tokens sender received from withdrawalLock
// and updates them on the way out.
func (b *Builder) BuildTransferUpdateTx(
	ctx context.Context,
	sender ckb.Script,
	withdrawalLock ckb.Script,
	transfers []TransferUpdateCotaInfo,
) (*ckb.Transaction, error) {
	if len(transfers) == 0 {
		return nil, errors.New("transfer update needs at least one token")
	}

	cell, withdrawalCell, err := b.findCotaCellPair(ctx, sender, withdrawalLock)
	if err != nil {
		return nil, err
	}
	input, output, err := b.spendCotaCell(cell)
	if err != nil {
		return nil, err
	}

	items := make([]TransferUpdateReqItem, len(transfers))
	for i, t := range transfers {
		items[i] = TransferUpdateReqItem{
			CotaID:         t.CotaID,
			TokenIndex:     t.TokenIndex,
			ToLockScript:   t.ToLockScript.Serialize(),
			State:          HexBytes{t.State},
			Characteristic: t.Characteristic[:],
		}
	}
	res, err := b.aggregator.GenerateTransferUpdateCotaSmt(ctx, TransferUpdateReq{
		LockScript:           sender.Serialize(),
		WithdrawalLockScript: withdrawalLock.Serialize(),
		WithdrawalLockHash:   withdrawalLock.Hash(),
		TransferOutPoint:     outPoint24(cell.OutPoint),
		Transfers:            items,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate transfer update smt: %w", err)
	}

	data, err := cotaCellData(cell.Data, res.SmtRootHash)
	if err != nil {
		return nil, err
	}
	witness, err := actionWitness(ActionTransferUpdate, res.TransferUpdateSmtEntry, nil)
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
	}).Debug("transfer update smt generated")
	return b.assemble(input, output, data, witness, []ckb.CellDep{codeDep(withdrawalCell)}, headerDeps), nil
}

func updateItems(nfts []UpdateCotaInfo) []UpdateReqItem {
	items := make([]UpdateReqItem, len(nfts))
	for i, n := range nfts {
		items[i] = UpdateReqItem{
			CotaID:         n.CotaID,
			TokenIndex:     n.TokenIndex,
			State:          HexBytes{n.State},
			Characteristic: n.Characteristic[:],
		}
	}
	return items
}

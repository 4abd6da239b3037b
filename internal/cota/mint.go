package cota

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vultisig/cota/internal/ckb"
)

// BuildMintTx mints withdrawal records of info.CotaID to their receivers
// from the issuer's CoTA cell.
func (b *Builder) BuildMintTx(ctx context.Context, issuer ckb.Script, info MintCotaInfo) (*ckb.Transaction, error) {
	if len(info.Withdrawals) == 0 {
		return nil, errors.New("mint needs at least one withdrawal")
	}

	cell, err := b.FindCotaCell(ctx, issuer)
	if err != nil {
		return nil, err
	}
	input, output, err := b.spendCotaCell(cell)
	if err != nil {
		return nil, err
	}

	withdrawals, err := b.mintWithdrawals(ctx, info)
	if err != nil {
		return nil, err
	}

	res, err := b.aggregator.GenerateMintCotaSmt(ctx, MintReq{
		LockScript:  issuer.Serialize(),
		CotaID:      info.CotaID,
		OutPoint:    outPoint24(cell.OutPoint),
		Withdrawals: withdrawals,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate mint smt: %w", err)
	}

	data, err := cotaCellData(cell.Data, res.SmtRootHash)
	if err != nil {
		return nil, err
	}
	witness, err := actionWitness(ActionMint, res.MintSmtEntry, nil)
	if err != nil {
		return nil, err
	}

	b.logger.WithFields(logrus.Fields{
		"cota_id":     info.CotaID.String(),
		"withdrawals": len(withdrawals),
		"block":       res.BlockNumber,
	}).Debug("mint smt generated")
	return b.assemble(input, output, data, witness, nil, nil), nil
}

// mintWithdrawals fills missing token indexes from the class' issued
// counter, in order.
func (b *Builder) mintWithdrawals(ctx context.Context, info MintCotaInfo) ([]MintWithdrawalReq, error) {
	var next TokenIndex
	if needsTokenIndex(info.Withdrawals) {
		define, err := b.aggregator.GetDefineInfo(ctx, info.CotaID)
		if err != nil {
			return nil, fmt.Errorf("failed to get define info: %w", err)
		}
		if define.Issued == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotDefined, info.CotaID)
		}
		next = TokenIndex(*define.Issued)
	}

	out := make([]MintWithdrawalReq, len(info.Withdrawals))
	for i, w := range info.Withdrawals {
		index := next
		if w.TokenIndex != nil {
			index = *w.TokenIndex
		} else {
			next++
		}
		out[i] = MintWithdrawalReq{
			TokenIndex:     index,
			State:          HexBytes{w.State},
			Characteristic: HexBytes(w.Characteristic[:]),
			ToLockScript:   w.ToLockScript.Serialize(),
		}
	}
	return out, nil
}

func needsTokenIndex(withdrawals []MintWithdrawal) bool {
	for _, w := range withdrawals {
		if w.TokenIndex == nil {
			return true
		}
	}
	return false
}

package main

import (
	"context"

	"github.com/vultisig/cota/internal/ckb"
	"github.com/vultisig/cota/internal/cota"
)

// Testnet fixture accounts and the class they exchange.
const (
	issuerAddress    = "ckt1qyq0scej4vn0uka238m63azcel7cmcme7f2sxj5ska"
	receiver1Address = "ckt1qyqrq7vdeh5a8rnp4n2tuuu08p5uw8a5qdtqrpvdsg"
	receiver2Address = "ckt1qyqz8vxeyrv4nur4j27ktp34fmwnua9wuyqqggd748"

	fixtureCotaID         = "0x096b5d210b3b32fab6f8fbd937e21b06b5d91e86"
	fixtureCharacteristic = "0x0505050505050505050505050505050505050505"
)

// preset is one fixture flow, signed by the account at from.
type preset struct {
	action cota.Action
	from   string
	key    func(cfg config) string
	// pinned replaces the configured secp256k1 dep resolution.
	pinned *ckb.CellDep
	build  func(builder *cota.Builder, sender ckb.Script) (cota.BuildFunc, error)
}

var presets = map[string]preset{
	"mint": {
		action: cota.ActionMint,
		from:   issuerAddress,
		key:    func(cfg config) string { return cfg.IssuerKey },
		build:  buildMint,
	},
	"transfer1": {
		action: cota.ActionTransfer,
		from:   receiver1Address,
		key:    func(cfg config) string { return cfg.Receiver1Key },
		pinned: publicSecp256k1Dep(),
		build:  buildTransfer(receiver2Address, 0x1a),
	},
	"transfer2": {
		action: cota.ActionTransfer,
		from:   receiver2Address,
		key:    func(cfg config) string { return cfg.Receiver2Key },
		build:  buildTransfer(receiver1Address, 0x15),
	},
}

func publicSecp256k1Dep() *ckb.CellDep {
	dep := ckb.Testnet.Secp256k1DepGroup()
	return &dep
}

func (p preset) secp256k1Dep(fallback cota.CellDepResolver) cota.CellDepResolver {
	if p.pinned != nil {
		return cota.FixedCellDep(*p.pinned)
	}
	return fallback
}

// buildMint mints one token to each receiver, indexes taken from the class'
// issued counter.
func buildMint(builder *cota.Builder, issuer ckb.Script) (cota.BuildFunc, error) {
	cotaID, err := cota.ParseCotaID(fixtureCotaID)
	if err != nil {
		return nil, err
	}
	characteristic, err := cota.ParseCharacteristic(fixtureCharacteristic)
	if err != nil {
		return nil, err
	}

	info := cota.MintCotaInfo{CotaID: cotaID}
	for _, address := range []string{receiver1Address, receiver2Address} {
		lock, err := ckb.AddressToScript(address)
		if err != nil {
			return nil, err
		}
		info.Withdrawals = append(info.Withdrawals, cota.MintWithdrawal{
			State:          0x00,
			Characteristic: characteristic,
			ToLockScript:   lock,
		})
	}

	return func(ctx context.Context) (*ckb.Transaction, error) {
		return builder.BuildMintTx(ctx, issuer, info)
	}, nil
}

// buildTransfer sends tokenIndex, minted by the issuer, to the account at to.
func buildTransfer(to string, tokenIndex cota.TokenIndex) func(*cota.Builder, ckb.Script) (cota.BuildFunc, error) {
	return func(builder *cota.Builder, sender ckb.Script) (cota.BuildFunc, error) {
		withdrawalLock, err := ckb.AddressToScript(issuerAddress)
		if err != nil {
			return nil, err
		}
		receiver, err := ckb.AddressToScript(to)
		if err != nil {
			return nil, err
		}
		cotaID, err := cota.ParseCotaID(fixtureCotaID)
		if err != nil {
			return nil, err
		}

		transfers := []cota.TransferCotaInfo{{CotaID: cotaID, TokenIndex: tokenIndex, ToLockScript: receiver}}
		return func(ctx context.Context) (*ckb.Transaction, error) {
			return builder.BuildTransferTx(ctx, sender, withdrawalLock, transfers)
		}, nil
	}
}

package ckb

import (
	"fmt"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/nervosnetwork/ckb-sdk-go/v2/systemscript"
	ckbtypes "github.com/nervosnetwork/ckb-sdk-go/v2/types"
)

type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case Mainnet, Testnet:
		return Network(s), nil
	default:
		return "", fmt.Errorf("unknown network %q", s)
	}
}

// Prefix is the bech32 human-readable part of addresses on the network.
func (n Network) Prefix() string {
	if n == Mainnet {
		return "ckb"
	}
	return "ckt"
}

func (n Network) sdk() ckbtypes.Network {
	if n == Mainnet {
		return ckbtypes.NetworkMain
	}
	return ckbtypes.NetworkTest
}

// Genesis system scripts, identical on mainnet and testnet.
var (
	Secp256k1Blake160CodeHash = ecommon.Hash(systemscript.GetCodeHash(ckbtypes.NetworkTest, systemscript.Secp256k1Blake160SighashAll))
	Secp256k1MultisigCodeHash = ecommon.Hash(systemscript.GetCodeHash(ckbtypes.NetworkTest, systemscript.Secp256k1Blake160MultisigAll))
)

// Secp256k1DepGroup is the dep group holding the secp256k1 lock and its data
// on the public network.
func (n Network) Secp256k1DepGroup() CellDep {
	info := systemscript.GetInfo(n.sdk(), systemscript.Secp256k1Blake160SighashAll)
	return CellDep{
		OutPoint: OutPoint{TxHash: ecommon.Hash(info.OutPoint.TxHash), Index: hexutil.Uint(info.OutPoint.Index)},
		DepType:  DepTypeDepGroup,
	}
}

// Secp256k1Lock builds a secp256k1-blake160 lock for the given pubkey hash.
func Secp256k1Lock(args []byte) Script {
	return Script{
		CodeHash: Secp256k1Blake160CodeHash,
		HashType: HashTypeType,
		Args:     append([]byte{}, args...),
	}
}

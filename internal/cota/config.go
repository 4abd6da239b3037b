package cota

import (
	"fmt"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vultisig/cota/internal/ckb"
	"github.com/vultisig/cota/internal/util"
)

// Config is embedded by the commands and read with envconfig, so a field
// named Ckb resolves to CKB_* variables.
type Config struct {
	Ckb        CkbConfig
	Aggregator AggregatorConfig
	Cota       CellConfig
}

type CkbConfig struct {
	NodeURL    string `envconfig:"NODE_URL" default:"http://localhost:8114"`
	IndexerURL string `envconfig:"INDEXER_URL" default:"http://localhost:8116"`
	Network    string `envconfig:"NETWORK" default:"testnet"`
	// Without a tx hash the secp256k1 dep group is loaded from the genesis
	// block.
	Secp256k1DepTxHash string `envconfig:"SECP256K1_DEP_TX_HASH"`
	Secp256k1DepIndex  uint   `envconfig:"SECP256K1_DEP_INDEX" default:"0"`
}

type AggregatorConfig struct {
	RegistryURL string `envconfig:"REGISTRY_URL" default:"http://localhost:3050"`
	CotaURL     string `envconfig:"COTA_URL" default:"http://localhost:3030"`
}

// CellConfig sets the fee, in CKB, paid from the CoTA cell. The CoTA type
// script dep defaults to the public deployment of the network; a tx hash
// overrides it.
type CellConfig struct {
	Fee           string `envconfig:"FEE" default:"0.00003"`
	CellDepTxHash string `envconfig:"CELL_DEP_TX_HASH"`
	CellDepIndex  uint   `envconfig:"CELL_DEP_INDEX" default:"0"`
	CellDepType   string `envconfig:"CELL_DEP_TYPE" default:"depGroup"`
}

type SignerConfig struct {
	PrivateKey string `envconfig:"PRIVATE_KEY"`
	Keystore   string `envconfig:"KEYSTORE"`
	Passphrase string `envconfig:"PASSPHRASE"`
}

func (c CkbConfig) network() (ckb.Network, error) {
	return ckb.ParseNetwork(c.Network)
}

// secp256k1Dep returns the configured dep, or false when it should come
// from the genesis block.
func (c CkbConfig) secp256k1Dep() (ckb.CellDep, bool, error) {
	if c.Secp256k1DepTxHash == "" {
		return ckb.CellDep{}, false, nil
	}
	txHash, err := parseHash(c.Secp256k1DepTxHash)
	if err != nil {
		return ckb.CellDep{}, false, fmt.Errorf("invalid secp256k1 dep tx hash: %w", err)
	}
	return ckb.CellDep{
		OutPoint: ckb.OutPoint{TxHash: txHash, Index: hexutil.Uint(c.Secp256k1DepIndex)},
		DepType:  ckb.DepTypeDepGroup,
	}, true, nil
}

func (c CellConfig) cellDep(network ckb.Network) (ckb.CellDep, error) {
	if c.CellDepTxHash == "" {
		return CotaCellDep(network), nil
	}
	txHash, err := parseHash(c.CellDepTxHash)
	if err != nil {
		return ckb.CellDep{}, fmt.Errorf("invalid cota cell dep tx hash: %w", err)
	}
	var depType ckb.DepType
	if err := depType.UnmarshalText([]byte(c.CellDepType)); err != nil {
		return ckb.CellDep{}, err
	}
	return ckb.CellDep{
		OutPoint: ckb.OutPoint{TxHash: txHash, Index: hexutil.Uint(c.CellDepIndex)},
		DepType:  depType,
	}, nil
}

// FeeShannons parses the configured fee.
func (c CellConfig) FeeShannons() (uint64, error) {
	fee, err := util.ToBaseUnits(c.Fee, ckb.Decimals)
	if err != nil {
		return 0, fmt.Errorf("invalid fee: %w", err)
	}
	return fee, nil
}

func parseHash(s string) (ecommon.Hash, error) {
	b, err := decodeFixedHex(s, ecommon.HashLength, "hash")
	if err != nil {
		return ecommon.Hash{}, err
	}
	return ecommon.BytesToHash(b), nil
}

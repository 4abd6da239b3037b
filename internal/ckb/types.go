package ckb

import (
	"fmt"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ScriptHashType selects how a script's code hash is matched against cells.
type ScriptHashType byte

const (
	HashTypeData  ScriptHashType = 0
	HashTypeType  ScriptHashType = 1
	HashTypeData1 ScriptHashType = 2
)

func (t ScriptHashType) String() string {
	switch t {
	case HashTypeData:
		return "data"
	case HashTypeType:
		return "type"
	case HashTypeData1:
		return "data1"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

func (t ScriptHashType) MarshalText() ([]byte, error) {
	switch t {
	case HashTypeData, HashTypeType, HashTypeData1:
		return []byte(t.String()), nil
	default:
		return nil, fmt.Errorf("invalid script hash type: %d", byte(t))
	}
}

func (t *ScriptHashType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "data":
		*t = HashTypeData
	case "type":
		*t = HashTypeType
	case "data1":
		*t = HashTypeData1
	default:
		return fmt.Errorf("invalid script hash type %q", string(b))
	}
	return nil
}

func hashTypeFromByte(b byte) (ScriptHashType, error) {
	switch ScriptHashType(b) {
	case HashTypeData, HashTypeType, HashTypeData1:
		return ScriptHashType(b), nil
	default:
		return 0, fmt.Errorf("invalid script hash type: %d", b)
	}
}

// DepType tells the VM whether a cell dependency is code or a group of deps.
type DepType byte

const (
	DepTypeCode     DepType = 0
	DepTypeDepGroup DepType = 1
)

func (d DepType) String() string {
	if d == DepTypeDepGroup {
		return "depGroup"
	}
	return "code"
}

func (d DepType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts both the camelCase form printed by this tool and the
// snake_case form used by the node RPC.
func (d *DepType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "code":
		*d = DepTypeCode
	case "depGroup", "dep_group":
		*d = DepTypeDepGroup
	default:
		return fmt.Errorf("invalid dep type %q", string(b))
	}
	return nil
}

type Script struct {
	CodeHash ecommon.Hash   `json:"codeHash"`
	HashType ScriptHashType `json:"hashType"`
	Args     hexutil.Bytes  `json:"args"`
}

// Equal reports whether two scripts are byte-identical.
func (s Script) Equal(o Script) bool {
	return s.CodeHash == o.CodeHash && s.HashType == o.HashType && string(s.Args) == string(o.Args)
}

type OutPoint struct {
	TxHash ecommon.Hash `json:"txHash"`
	Index  hexutil.Uint `json:"index"`
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxHash.Hex(), uint(o.Index))
}

type CellDep struct {
	OutPoint OutPoint `json:"outPoint"`
	DepType  DepType  `json:"depType"`
}

type CellInput struct {
	PreviousOutput OutPoint       `json:"previousOutput"`
	Since          hexutil.Uint64 `json:"since"`
}

type CellOutput struct {
	Capacity hexutil.Uint64 `json:"capacity"`
	Lock     Script         `json:"lock"`
	Type     *Script        `json:"type"`
}

// Transaction is a CKB transaction. Its JSON form uses the camelCase keys of
// the JS SDKs; the node RPC wire form lives in wire.go.
type Transaction struct {
	Version     hexutil.Uint    `json:"version"`
	CellDeps    []CellDep       `json:"cellDeps"`
	HeaderDeps  []ecommon.Hash  `json:"headerDeps"`
	Inputs      []CellInput     `json:"inputs"`
	Outputs     []CellOutput    `json:"outputs"`
	OutputsData []hexutil.Bytes `json:"outputsData"`
	Witnesses   []hexutil.Bytes `json:"witnesses"`
}

// Clone returns a copy whose slices can be mutated without touching t.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.CellDeps = append([]CellDep(nil), t.CellDeps...)
	c.HeaderDeps = append([]ecommon.Hash(nil), t.HeaderDeps...)
	c.Inputs = append([]CellInput(nil), t.Inputs...)
	c.Outputs = append([]CellOutput(nil), t.Outputs...)
	c.OutputsData = append([]hexutil.Bytes(nil), t.OutputsData...)
	c.Witnesses = make([]hexutil.Bytes, len(t.Witnesses))
	for i, w := range t.Witnesses {
		c.Witnesses[i] = append(hexutil.Bytes(nil), w...)
	}
	return &c
}

// WitnessArgs is the witness layout understood by lock and type scripts.
// A nil or empty field is serialized as None.
type WitnessArgs struct {
	Lock       []byte
	InputType  []byte
	OutputType []byte
}

// Cell is a live cell returned by the indexer.
type Cell struct {
	OutPoint    OutPoint
	Output      CellOutput
	Data        []byte
	BlockNumber uint64
}

// TxStatus is the commit state reported by get_transaction.
type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusProposed  TxStatus = "proposed"
	TxStatusCommitted TxStatus = "committed"
	TxStatusRejected  TxStatus = "rejected"
	TxStatusUnknown   TxStatus = "unknown"
)

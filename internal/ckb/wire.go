package ckb

import (
	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Node and indexer JSON-RPC structures (snake_case).

type rpcScript struct {
	CodeHash ecommon.Hash   `json:"code_hash"`
	HashType ScriptHashType `json:"hash_type"`
	Args     hexutil.Bytes  `json:"args"`
}

type rpcOutPoint struct {
	TxHash ecommon.Hash `json:"tx_hash"`
	Index  hexutil.Uint `json:"index"`
}

type rpcCellDep struct {
	OutPoint rpcOutPoint `json:"out_point"`
	DepType  string      `json:"dep_type"`
}

type rpcCellInput struct {
	Since          hexutil.Uint64 `json:"since"`
	PreviousOutput rpcOutPoint    `json:"previous_output"`
}

type rpcCellOutput struct {
	Capacity hexutil.Uint64 `json:"capacity"`
	Lock     rpcScript      `json:"lock"`
	Type     *rpcScript     `json:"type"`
}

type rpcTransaction struct {
	Version     hexutil.Uint    `json:"version"`
	CellDeps    []rpcCellDep    `json:"cell_deps"`
	HeaderDeps  []ecommon.Hash  `json:"header_deps"`
	Inputs      []rpcCellInput  `json:"inputs"`
	Outputs     []rpcCellOutput `json:"outputs"`
	OutputsData []hexutil.Bytes `json:"outputs_data"`
	Witnesses   []hexutil.Bytes `json:"witnesses"`
}

type rpcTransactionView struct {
	rpcTransaction
	Hash ecommon.Hash `json:"hash"`
}

type rpcBlock struct {
	Transactions []rpcTransactionView `json:"transactions"`
}

type rpcTxStatus struct {
	Status    TxStatus      `json:"status"`
	BlockHash *ecommon.Hash `json:"block_hash"`
	Reason    *string       `json:"reason"`
}

type rpcTransactionWithStatus struct {
	TxStatus rpcTxStatus `json:"tx_status"`
}

type rpcSearchKeyFilter struct {
	Script *rpcScript `json:"script,omitempty"`
}

type rpcSearchKey struct {
	Script     rpcScript           `json:"script"`
	ScriptType string              `json:"script_type"`
	Filter     *rpcSearchKeyFilter `json:"filter,omitempty"`
}

type rpcIndexerCell struct {
	Output      rpcCellOutput  `json:"output"`
	OutputData  hexutil.Bytes  `json:"output_data"`
	OutPoint    rpcOutPoint    `json:"out_point"`
	BlockNumber hexutil.Uint64 `json:"block_number"`
	TxIndex     hexutil.Uint   `json:"tx_index"`
}

type rpcCellsPage struct {
	Objects    []rpcIndexerCell `json:"objects"`
	LastCursor string           `json:"last_cursor"`
}

func toRPCScript(s Script) rpcScript {
	args := s.Args
	if args == nil {
		args = hexutil.Bytes{}
	}
	return rpcScript{CodeHash: s.CodeHash, HashType: s.HashType, Args: args}
}

func fromRPCScript(s rpcScript) Script {
	return Script{CodeHash: s.CodeHash, HashType: s.HashType, Args: s.Args}
}

func toRPCOutPoint(o OutPoint) rpcOutPoint {
	return rpcOutPoint{TxHash: o.TxHash, Index: o.Index}
}

func fromRPCOutPoint(o rpcOutPoint) OutPoint {
	return OutPoint{TxHash: o.TxHash, Index: o.Index}
}

func toRPCCellOutput(o CellOutput) rpcCellOutput {
	out := rpcCellOutput{Capacity: o.Capacity, Lock: toRPCScript(o.Lock)}
	if o.Type != nil {
		t := toRPCScript(*o.Type)
		out.Type = &t
	}
	return out
}

func fromRPCCellOutput(o rpcCellOutput) CellOutput {
	out := CellOutput{Capacity: o.Capacity, Lock: fromRPCScript(o.Lock)}
	if o.Type != nil {
		t := fromRPCScript(*o.Type)
		out.Type = &t
	}
	return out
}

func toRPCTransaction(tx *Transaction) rpcTransaction {
	out := rpcTransaction{
		Version:     tx.Version,
		CellDeps:    make([]rpcCellDep, len(tx.CellDeps)),
		HeaderDeps:  append([]ecommon.Hash{}, tx.HeaderDeps...),
		Inputs:      make([]rpcCellInput, len(tx.Inputs)),
		Outputs:     make([]rpcCellOutput, len(tx.Outputs)),
		OutputsData: make([]hexutil.Bytes, len(tx.OutputsData)),
		Witnesses:   make([]hexutil.Bytes, len(tx.Witnesses)),
	}
	for i, d := range tx.CellDeps {
		depType := "code"
		if d.DepType == DepTypeDepGroup {
			depType = "dep_group"
		}
		out.CellDeps[i] = rpcCellDep{OutPoint: toRPCOutPoint(d.OutPoint), DepType: depType}
	}
	for i, in := range tx.Inputs {
		out.Inputs[i] = rpcCellInput{Since: in.Since, PreviousOutput: toRPCOutPoint(in.PreviousOutput)}
	}
	for i, o := range tx.Outputs {
		out.Outputs[i] = toRPCCellOutput(o)
	}
	// the node rejects null for empty byte fields
	for i, d := range tx.OutputsData {
		out.OutputsData[i] = nonNil(d)
	}
	for i, w := range tx.Witnesses {
		out.Witnesses[i] = nonNil(w)
	}
	return out
}

func nonNil(b hexutil.Bytes) hexutil.Bytes {
	if b == nil {
		return hexutil.Bytes{}
	}
	return b
}

func fromRPCIndexerCell(c rpcIndexerCell) Cell {
	return Cell{
		OutPoint:    fromRPCOutPoint(c.OutPoint),
		Output:      fromRPCCellOutput(c.Output),
		Data:        c.OutputData,
		BlockNumber: uint64(c.BlockNumber),
	}
}

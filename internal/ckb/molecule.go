package ckb

import (
	"fmt"

	ecommon "github.com/ethereum/go-ethereum/common"
	ckbtypes "github.com/nervosnetwork/ckb-sdk-go/v2/types"
	"github.com/nervosnetwork/ckb-sdk-go/v2/types/molecule"
)

// The molecule encoding is owned by the SDK types; the values here convert
// into them on demand and keep their own JSON shape for printing.

func (t ScriptHashType) sdk() ckbtypes.ScriptHashType {
	switch t {
	case HashTypeData:
		return ckbtypes.HashTypeData
	case HashTypeData1:
		return ckbtypes.HashTypeData1
	default:
		return ckbtypes.HashTypeType
	}
}

func hashTypeFromSDK(t ckbtypes.ScriptHashType) (ScriptHashType, error) {
	var out ScriptHashType
	if err := out.UnmarshalText([]byte(t)); err != nil {
		return 0, err
	}
	return out, nil
}

func (d DepType) sdk() ckbtypes.DepType {
	if d == DepTypeDepGroup {
		return ckbtypes.DepTypeDepGroup
	}
	return ckbtypes.DepTypeCode
}

func (s Script) sdk() *ckbtypes.Script {
	return &ckbtypes.Script{
		CodeHash: ckbtypes.Hash(s.CodeHash),
		HashType: s.HashType.sdk(),
		Args:     s.Args,
	}
}

func scriptFromSDK(s *ckbtypes.Script) (Script, error) {
	hashType, err := hashTypeFromSDK(s.HashType)
	if err != nil {
		return Script{}, err
	}
	return Script{
		CodeHash: ecommon.Hash(s.CodeHash),
		HashType: hashType,
		Args:     append([]byte{}, s.Args...),
	}, nil
}

func (o OutPoint) sdk() *ckbtypes.OutPoint {
	return &ckbtypes.OutPoint{TxHash: ckbtypes.Hash(o.TxHash), Index: uint32(o.Index)}
}

func (d CellDep) sdk() *ckbtypes.CellDep {
	return &ckbtypes.CellDep{OutPoint: d.OutPoint.sdk(), DepType: d.DepType.sdk()}
}

func (i CellInput) sdk() *ckbtypes.CellInput {
	return &ckbtypes.CellInput{Since: uint64(i.Since), PreviousOutput: i.PreviousOutput.sdk()}
}

func (o CellOutput) sdk() *ckbtypes.CellOutput {
	out := &ckbtypes.CellOutput{Capacity: uint64(o.Capacity), Lock: o.Lock.sdk()}
	if o.Type != nil {
		out.Type = o.Type.sdk()
	}
	return out
}

// optBytes maps empty fields to None.
func optBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

func (w WitnessArgs) sdk() *ckbtypes.WitnessArgs {
	return &ckbtypes.WitnessArgs{
		Lock:       optBytes(w.Lock),
		InputType:  optBytes(w.InputType),
		OutputType: optBytes(w.OutputType),
	}
}

func (t *Transaction) sdk() *ckbtypes.Transaction {
	tx := &ckbtypes.Transaction{
		Version:     uint32(t.Version),
		CellDeps:    make([]*ckbtypes.CellDep, len(t.CellDeps)),
		HeaderDeps:  make([]ckbtypes.Hash, len(t.HeaderDeps)),
		Inputs:      make([]*ckbtypes.CellInput, len(t.Inputs)),
		Outputs:     make([]*ckbtypes.CellOutput, len(t.Outputs)),
		OutputsData: make([][]byte, len(t.OutputsData)),
		Witnesses:   make([][]byte, len(t.Witnesses)),
	}
	for i, d := range t.CellDeps {
		tx.CellDeps[i] = d.sdk()
	}
	for i, h := range t.HeaderDeps {
		tx.HeaderDeps[i] = ckbtypes.Hash(h)
	}
	for i, in := range t.Inputs {
		tx.Inputs[i] = in.sdk()
	}
	for i, o := range t.Outputs {
		tx.Outputs[i] = o.sdk()
	}
	for i, d := range t.OutputsData {
		tx.OutputsData[i] = d
	}
	for i, w := range t.Witnesses {
		tx.Witnesses[i] = w
	}
	return tx
}

func (s Script) Serialize() []byte {
	return s.sdk().Serialize()
}

// ParseScript decodes a molecule-serialized script.
func ParseScript(b []byte) (Script, error) {
	m, err := molecule.ScriptFromSlice(b, false)
	if err != nil {
		return Script{}, fmt.Errorf("failed to parse script: %w", err)
	}
	hashType, err := hashTypeFromByte(m.HashType().AsSlice()[0])
	if err != nil {
		return Script{}, err
	}

	var s Script
	copy(s.CodeHash[:], m.CodeHash().RawData())
	s.HashType = hashType
	s.Args = append([]byte{}, m.Args().RawData()...)
	return s, nil
}

func (o OutPoint) Serialize() []byte {
	return o.sdk().Serialize()
}

func (d CellDep) Serialize() []byte {
	return d.sdk().Serialize()
}

func (i CellInput) Serialize() []byte {
	return i.sdk().Serialize()
}

func (o CellOutput) Serialize() []byte {
	return o.sdk().Serialize()
}

func (w WitnessArgs) Serialize() []byte {
	return w.sdk().Serialize()
}

// ParseWitnessArgs decodes a witness. An empty witness yields empty args.
func ParseWitnessArgs(b []byte) (WitnessArgs, error) {
	if len(b) == 0 {
		return WitnessArgs{}, nil
	}
	w, err := ckbtypes.DeserializeWitnessArgs(b)
	if err != nil {
		return WitnessArgs{}, fmt.Errorf("failed to parse witness args: %w", err)
	}
	return WitnessArgs{
		Lock:       w.Lock,
		InputType:  w.InputType,
		OutputType: w.OutputType,
	}, nil
}

// SerializeRaw encodes the transaction without witnesses, the preimage of
// the transaction hash.
func (t *Transaction) SerializeRaw() []byte {
	return t.sdk().SerializeWithoutWitnesses()
}

func (t *Transaction) Serialize() []byte {
	return t.sdk().Serialize()
}

package cota

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sirupsen/logrus"
	"github.com/vultisig/cota/internal/ckb"
	"github.com/vultisig/cota/internal/util"
	"golang.org/x/sync/errgroup"
)

// smtRootSize is the length of the root stored after the version byte.
const (
	smtRootSize     = 32
	cotaDataVersion = 0x00
	outPointSize    = 24
)

// CellCollector finds live cells by lock and optional type.
type CellCollector interface {
	GetCells(ctx context.Context, lock ckb.Script, typ *ckb.Script) ([]ckb.Cell, error)
}

// Builder produces unsigned CoTA transactions. Every transaction spends the
// signer's CoTA cell and recreates it with a new SMT root, paying the fee
// out of its capacity.
type Builder struct {
	logger     logrus.FieldLogger
	collector  CellCollector
	aggregator *Aggregator
	cotaType   ckb.Script
	cotaDep    ckb.CellDep
	fee        uint64
}

func NewBuilder(
	logger logrus.FieldLogger,
	collector CellCollector,
	aggregator *Aggregator,
	network ckb.Network,
	cotaDep ckb.CellDep,
	fee uint64,
) *Builder {
	return &Builder{
		logger:     logger.WithField("pkg", "cota.Builder"),
		collector:  collector,
		aggregator: aggregator,
		cotaType:   CotaTypeScript(network),
		cotaDep:    cotaDep,
		fee:        fee,
	}
}

func (b *Builder) CotaType() ckb.Script {
	return b.cotaType
}

// FindCotaCell returns the CoTA cell owned by lock.
func (b *Builder) FindCotaCell(ctx context.Context, lock ckb.Script) (ckb.Cell, error) {
	cotaType := b.cotaType
	cells, err := b.collector.GetCells(ctx, lock, &cotaType)
	if err != nil {
		return ckb.Cell{}, fmt.Errorf("failed to find cota cell: %w", err)
	}
	for _, cell := range cells {
		if cell.Output.Type != nil && cell.Output.Type.Equal(b.cotaType) {
			return cell, nil
		}
	}
	return ckb.Cell{}, ErrCotaCellNotFound
}

// findCotaCellPair looks up the signer's and the withdrawer's CoTA cells
// concurrently.
func (b *Builder) findCotaCellPair(ctx context.Context, lock, withdrawalLock ckb.Script) (ckb.Cell, ckb.Cell, error) {
	var own, withdrawal ckb.Cell
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cell, err := b.FindCotaCell(gctx, lock)
		if err != nil {
			return fmt.Errorf("sender: %w", err)
		}
		own = cell
		return nil
	})
	g.Go(func() error {
		cell, err := b.FindCotaCell(gctx, withdrawalLock)
		if err != nil {
			return fmt.Errorf("withdrawal: %w", err)
		}
		withdrawal = cell
		return nil
	})
	if err := g.Wait(); err != nil {
		return ckb.Cell{}, ckb.Cell{}, err
	}
	return own, withdrawal, nil
}

// spendCotaCell returns the input consuming cell and its replacement output
// with the fee deducted.
func (b *Builder) spendCotaCell(cell ckb.Cell) (ckb.CellInput, ckb.CellOutput, error) {
	input := ckb.CellInput{PreviousOutput: cell.OutPoint, Since: 0}

	capacity := uint64(cell.Output.Capacity)
	output := cell.Output
	required := output.OccupiedCapacity(1+smtRootSize) + b.fee
	if capacity < required {
		return ckb.CellInput{}, ckb.CellOutput{}, fmt.Errorf(
			"%w: have %s CKB, need %s CKB",
			ErrInsufficientCapacity,
			util.FromBaseUnits(capacity, ckb.Decimals),
			util.FromBaseUnits(required, ckb.Decimals),
		)
	}
	output.Capacity = hexutil.Uint64(capacity - b.fee)
	return input, output, nil
}

// cotaCellData keeps the version byte of the spent cell in front of the
// new root.
func cotaCellData(spent []byte, root []byte) (hexutil.Bytes, error) {
	if len(root) != smtRootSize {
		return nil, fmt.Errorf("smt root must be %d bytes, got %d", smtRootSize, len(root))
	}
	version := byte(cotaDataVersion)
	if len(spent) > 0 {
		version = spent[0]
	}
	data := make([]byte, 0, 1+smtRootSize)
	data = append(data, version)
	return append(data, root...), nil
}

// outPoint24 is the aggregator's compact out point: the last 20 bytes of the
// transaction hash followed by the little-endian index.
func outPoint24(op ckb.OutPoint) HexBytes {
	out := make([]byte, 0, outPointSize)
	out = append(out, op.TxHash[12:]...)
	return binary.LittleEndian.AppendUint32(out, uint32(op.Index))
}

func actionWitness(action Action, entry []byte, outputType []byte) (hexutil.Bytes, error) {
	if len(entry) == 0 {
		return nil, errors.New("aggregator returned an empty smt entry")
	}
	inputType := make([]byte, 0, 1+len(entry))
	inputType = append(inputType, byte(action))
	inputType = append(inputType, entry...)
	return ckb.WitnessArgs{InputType: inputType, OutputType: outputType}.Serialize(), nil
}

// assemble builds the single-input single-output transaction every CoTA
// action produces. codeDeps come before the CoTA type dep.
func (b *Builder) assemble(
	input ckb.CellInput,
	output ckb.CellOutput,
	data hexutil.Bytes,
	witness hexutil.Bytes,
	codeDeps []ckb.CellDep,
	headerDeps []ecommon.Hash,
) *ckb.Transaction {
	cellDeps := make([]ckb.CellDep, 0, len(codeDeps)+1)
	cellDeps = append(cellDeps, codeDeps...)
	cellDeps = append(cellDeps, b.cotaDep)

	if headerDeps == nil {
		headerDeps = []ecommon.Hash{}
	}
	return &ckb.Transaction{
		Version:     0,
		CellDeps:    cellDeps,
		HeaderDeps:  headerDeps,
		Inputs:      []ckb.CellInput{input},
		Outputs:     []ckb.CellOutput{output},
		OutputsData: []hexutil.Bytes{data},
		Witnesses:   []hexutil.Bytes{witness},
	}
}

func codeDep(cell ckb.Cell) ckb.CellDep {
	return ckb.CellDep{OutPoint: cell.OutPoint, DepType: ckb.DepTypeCode}
}

// blockHashDeps turns an optional withdraw block hash into header deps.
func blockHashDeps(hash []byte) ([]ecommon.Hash, error) {
	switch len(hash) {
	case 0:
		return nil, nil
	case ecommon.HashLength:
		return []ecommon.Hash{ecommon.BytesToHash(hash)}, nil
	default:
		return nil, fmt.Errorf("withdraw block hash must be %d bytes, got %d", ecommon.HashLength, len(hash))
	}
}

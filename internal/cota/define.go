package cota

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/vultisig/cota/internal/ckb"
)

const (
	metadataID      = "CTMeta"
	metadataVersion = "1.0"
)

type metadataEnvelope struct {
	ID       string       `json:"id"`
	Version  string       `json:"ver"`
	Metadata metadataBody `json:"metadata"`
}

type metadataBody struct {
	Target string            `json:"target"`
	Type   string            `json:"type"`
	Data   classMetadataData `json:"data"`
}

type classMetadataData struct {
	Version string `json:"version"`
	CotaID  CotaID `json:"cotaId"`
	ClassMetadata
}

// BuildDefineTx defines a new token class owned by issuer and returns the
// transaction together with the derived class id.
func (b *Builder) BuildDefineTx(ctx context.Context, issuer ckb.Script, info DefineCotaInfo) (*ckb.Transaction, CotaID, error) {
	cell, err := b.FindCotaCell(ctx, issuer)
	if err != nil {
		return nil, CotaID{}, err
	}
	input, output, err := b.spendCotaCell(cell)
	if err != nil {
		return nil, CotaID{}, err
	}

	cotaID := GenerateCotaID(input, 0)
	res, err := b.aggregator.GenerateDefineCotaSmt(ctx, DefineReq{
		LockScript: issuer.Serialize(),
		CotaID:     cotaID,
		Total:      binary.BigEndian.AppendUint32(nil, info.Total),
		Issued:     HexBytes{0, 0, 0, 0},
		Configure:  HexBytes{info.Configure},
	})
	if err != nil {
		return nil, CotaID{}, fmt.Errorf("failed to generate define smt: %w", err)
	}

	var outputType []byte
	if info.Metadata != nil {
		outputType, err = json.Marshal(metadataEnvelope{
			ID:      metadataID,
			Version: metadataVersion,
			Metadata: metadataBody{
				Target: "output#0",
				Type:   "cota",
				Data: classMetadataData{
					Version:       "0",
					CotaID:        cotaID,
					ClassMetadata: *info.Metadata,
				},
			},
		})
		if err != nil {
			return nil, CotaID{}, fmt.Errorf("failed to marshal class metadata: %w", err)
		}
	}

	data, err := cotaCellData(cell.Data, res.SmtRootHash)
	if err != nil {
		return nil, CotaID{}, err
	}
	witness, err := actionWitness(ActionDefine, res.DefineSmtEntry, outputType)
	if err != nil {
		return nil, CotaID{}, err
	}

	b.logger.WithField("cota_id", cotaID.String()).Debug("define smt generated")
	return b.assemble(input, output, data, witness, nil, nil), cotaID, nil
}

package cota

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vultisig/cota/internal/ckb"
)

func TestCkbConfig_Secp256k1Dep(t *testing.T) {
	_, fixed, err := CkbConfig{}.secp256k1Dep()
	require.NoError(t, err)
	assert.False(t, fixed)

	dep, fixed, err := CkbConfig{
		Secp256k1DepTxHash: "0xf8de3bb47d055cdf460d93a2a6e1b05f7432f9777c8c474abf4eec1d4aee5d37",
	}.secp256k1Dep()
	require.NoError(t, err)
	assert.True(t, fixed)
	assert.Equal(t, ckb.Testnet.Secp256k1DepGroup(), dep)

	_, _, err = CkbConfig{Secp256k1DepTxHash: "0x1234"}.secp256k1Dep()
	assert.ErrorContains(t, err, "invalid secp256k1 dep tx hash")
}

func TestCellConfig_CellDep(t *testing.T) {
	txHash := "0x" + strings.Repeat("11", 32)

	dep, err := CellConfig{CellDepTxHash: txHash, CellDepType: "depGroup"}.cellDep(ckb.Testnet)
	require.NoError(t, err)
	assert.Equal(t, testCotaDep, dep)

	dep, err = CellConfig{CellDepTxHash: txHash, CellDepIndex: 2, CellDepType: "code"}.cellDep(ckb.Mainnet)
	require.NoError(t, err)
	assert.Equal(t, ckb.DepTypeCode, dep.DepType)
	assert.EqualValues(t, 2, dep.OutPoint.Index)

	_, err = CellConfig{CellDepTxHash: txHash, CellDepType: "data"}.cellDep(ckb.Testnet)
	assert.Error(t, err)
}

func TestCellConfig_FeeShannons(t *testing.T) {
	fee, err := CellConfig{Fee: "0.00003"}.FeeShannons()
	require.NoError(t, err)
	assert.Equal(t, uint64(3000), fee)

	_, err = CellConfig{Fee: "0.000000001"}.FeeShannons()
	assert.ErrorContains(t, err, "invalid fee")
}

func TestCellConfig_DefaultCellDep(t *testing.T) {
	tests := []struct {
		network ckb.Network
		txHash  string
	}{
		{ckb.Testnet, "0xd8c7396f955348bd74a8ed4398d896dad931977b7c1e3f117bd3e6f1ca3ec4c7"},
		{ckb.Mainnet, "0x875db3381ebe7a730676c110e1c0d78ae1bdd0c11beacb7db4db08e368baea98"},
	}

	for _, tt := range tests {
		t.Run(string(tt.network), func(t *testing.T) {
			dep, err := CellConfig{CellDepType: "code"}.cellDep(tt.network)
			require.NoError(t, err)
			assert.Equal(t, CotaCellDep(tt.network), dep)
			assert.Equal(t, tt.txHash, dep.OutPoint.TxHash.Hex())
			assert.EqualValues(t, 0, dep.OutPoint.Index)
			assert.Equal(t, ckb.DepTypeDepGroup, dep.DepType)
		})
	}
}

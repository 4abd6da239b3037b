package ckb

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"os"
	"testing"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignTransaction_RecoversSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := NewSignerService(key)

	tx := sampleTransaction()
	tx.Inputs = append(tx.Inputs, tx.Inputs[0])
	tx.Witnesses[0] = WitnessArgs{InputType: []byte{0x02, 0xff}}.Serialize()

	signed, err := signer.SignTransaction(tx)
	require.NoError(t, err)
	require.Len(t, signed.Witnesses, 2)

	// the input witness is untouched apart from the lock
	w, err := ParseWitnessArgs(signed.Witnesses[0])
	require.NoError(t, err)
	require.Len(t, w.Lock, signatureLength)
	assert.Equal(t, []byte{0x02, 0xff}, w.InputType)

	placeholder := WitnessArgs{Lock: make([]byte, signatureLength), InputType: w.InputType}.Serialize()
	message := sighashAllMessage(tx.Hash(), placeholder, signed.Witnesses[1:])
	pub, err := crypto.SigToPub(message[:], w.Lock)
	require.NoError(t, err)
	assert.Equal(t, crypto.CompressPubkey(&key.PublicKey), crypto.CompressPubkey(pub))

	assert.Equal(t, tx.Hash(), signed.Hash())
	assert.Len(t, tx.Witnesses, 1, "input transaction must not be mutated")
}

// Vectors computed outside this package from the molecule layout and
// RFC 6979 secp256k1 signing.
func TestSignTransaction_KnownVector(t *testing.T) {
	key, err := ParsePrivateKey("0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")
	require.NoError(t, err)
	signer := NewSignerService(key)
	assert.Equal(t, "57191c539026087ddedd729c894e2df647b1691d", hex.EncodeToString(signer.LockArgs()))

	tx := &Transaction{
		CellDeps: []CellDep{Testnet.Secp256k1DepGroup()},
		Inputs: []CellInput{
			{PreviousOutput: OutPoint{TxHash: ecommon.BytesToHash(bytes.Repeat([]byte{0x11}, 32)), Index: 0}},
			{PreviousOutput: OutPoint{TxHash: ecommon.BytesToHash(bytes.Repeat([]byte{0x22}, 32)), Index: 1}},
		},
		Outputs:     []CellOutput{{Capacity: 150_00000000, Lock: Secp256k1Lock(bytes.Repeat([]byte{0x33}, 20))}},
		OutputsData: []hexutil.Bytes{{}},
		Witnesses:   []hexutil.Bytes{WitnessArgs{InputType: []byte{0x02, 0xff}}.Serialize(), {}},
	}
	assert.Equal(t, "0x160000001000000010000000160000000200000002ff", hexutil.Encode(tx.Witnesses[0]))
	assert.Equal(t, "0xc9c64c8a6a5944a2bc9db1194262167dd77043c445647f4d3785a95df9563020", tx.Hash().Hex())

	signed, err := signer.SignTransaction(tx)
	require.NoError(t, err)
	assert.Equal(t,
		"0x5b00000010000000550000005b00000041000000"+
			"43d701415397e688d8e614eeaa845d350f41b8ee0c6934fd166102e9e89cccfa"+
			"1ed759041cd4cc6d4b12a74d4446b5521d47fd01b2d1d9f7a74535c6cfb89f3201"+
			"0200000002ff",
		hexutil.Encode(signed.Witnesses[0]),
	)
	assert.Empty(t, signed.Witnesses[1])
}

func TestSignTransaction_NoInputs(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	_, err = NewSignerService(key).SignTransaction(&Transaction{})
	require.Error(t, err)
}

func TestLockScript_MatchesAddress(t *testing.T) {
	hexKey := os.Getenv("ISSUER_PRIVATE_KEY")
	if hexKey == "" {
		t.Skip("ISSUER_PRIVATE_KEY not set")
	}
	key, err := ParsePrivateKey(hexKey)
	require.NoError(t, err)

	lock, err := AddressToScript("ckt1qyq0scej4vn0uka238m63azcel7cmcme7f2sxj5ska")
	require.NoError(t, err)
	assert.True(t, NewSignerService(key).LockScript().Equal(lock))
}

func TestLoadKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := "0x" + hex.EncodeToString(crypto.FromECDSA(key))

	loaded, err := LoadKey(hexKey, "", "")
	require.NoError(t, err)
	assert.Zero(t, key.D.Cmp(loaded.D))

	_, err = LoadKey("", "", "")
	require.Error(t, err)

	_, err = LoadKey("0xzz", "", "")
	require.Error(t, err)
}

// sighashAllMessage hashes the tx hash and every group witness, each
// prefixed with its little endian u64 length.
func sighashAllMessage(txHash ecommon.Hash, first []byte, rest []hexutil.Bytes) ecommon.Hash {
	parts := [][]byte{txHash[:]}
	for _, w := range append([]hexutil.Bytes{first}, rest...) {
		size := make([]byte, 8)
		binary.LittleEndian.PutUint64(size, uint64(len(w)))
		parts = append(parts, size, w)
	}
	return Blake256(parts...)
}

package ckb

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rfcShortAddress = "ckb1qyqt8xaupvm8837nv3gtc9x0ekkj64vud3jqfwyw5v"
	rfcFullAddress  = "ckb1qzda0cr08m85hc8jlnfp3zer7xulejywt49kt2rr0vthywaa50xwsqdnnw7qkdnnclfkg59uzn8umtfd2kwxceqxwquc4"
	rfcArgs         = "b39bbc0b3673c7d36450bc14cfcdad2d559c6c64"
)

func TestParseAddress_RFCVectors(t *testing.T) {
	args, _ := hex.DecodeString(rfcArgs)
	want := Secp256k1Lock(args)

	for _, s := range []string{rfcShortAddress, rfcFullAddress} {
		t.Run(s, func(t *testing.T) {
			addr, err := ParseAddress(s)
			require.NoError(t, err)
			assert.Equal(t, Mainnet, addr.Network)
			assert.True(t, addr.Script.Equal(want), "got %+v", addr.Script)
		})
	}
}

func TestAddressEncode_RFCVectors(t *testing.T) {
	args, _ := hex.DecodeString(rfcArgs)
	addr := Address{Network: Mainnet, Script: Secp256k1Lock(args)}

	full, err := addr.Encode()
	require.NoError(t, err)
	assert.Equal(t, rfcFullAddress, full)
	assert.Equal(t, rfcFullAddress, addr.String())

	short, err := addr.EncodeShort()
	require.NoError(t, err)
	assert.Equal(t, rfcShortAddress, short)
}

func TestParseAddress_TestnetFixtures(t *testing.T) {
	fixtures := []string{
		"ckt1qyq0scej4vn0uka238m63azcel7cmcme7f2sxj5ska",
		"ckt1qyqrq7vdeh5a8rnp4n2tuuu08p5uw8a5qdtqrpvdsg",
		"ckt1qyqz8vxeyrv4nur4j27ktp34fmwnua9wuyqqggd748",
	}

	for _, s := range fixtures {
		t.Run(s, func(t *testing.T) {
			addr, err := ParseAddress(s)
			require.NoError(t, err)
			assert.Equal(t, Testnet, addr.Network)
			assert.Equal(t, Secp256k1Blake160CodeHash, addr.Script.CodeHash)
			assert.Equal(t, HashTypeType, addr.Script.HashType)
			assert.Len(t, addr.Script.Args, 20)

			short, err := addr.EncodeShort()
			require.NoError(t, err)
			assert.Equal(t, s, short)

			// the full form must decode back to the same lock
			again, err := ParseAddress(addr.String())
			require.NoError(t, err)
			assert.True(t, again.Script.Equal(addr.Script))
		})
	}
}

func TestParseAddress_Errors(t *testing.T) {
	tests := []struct {
		name        string
		address     string
		unsupported bool
	}{
		{"garbage", "not-an-address", false},
		{"bad checksum", "ckb1qyqt8xaupvm8837nv3gtc9x0ekkj64vud3jqfwyw5w", false},
		{"foreign prefix", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAddress(tt.address)
			require.Error(t, err)
			assert.Equal(t, tt.unsupported, errors.Is(err, ErrUnsupportedAddress))
		})
	}
}

func TestEncodeShort_NoShortForm(t *testing.T) {
	addr := Address{Network: Testnet, Script: Script{HashType: HashTypeData, Args: make([]byte, 20)}}
	_, err := addr.EncodeShort()
	require.ErrorIs(t, err, ErrUnsupportedAddress)
}

package ckb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/nervosnetwork/ckb-sdk-go/v2/address"
)

const shortArgsLength = 20

var ErrUnsupportedAddress = errors.New("unsupported address")

type Address struct {
	Network Network
	Script  Script
}

// ParseAddress decodes short, deprecated full and full format addresses.
// The bech32 envelope is checked here so the SDK decoder only sees a known
// prefix and a non-empty payload.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	hrp, data5, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return Address{}, fmt.Errorf("failed to decode address %q: %w", s, err)
	}

	var network Network
	switch hrp {
	case Mainnet.Prefix():
		network = Mainnet
	case Testnet.Prefix():
		network = Testnet
	default:
		return Address{}, fmt.Errorf("%w: prefix %q", ErrUnsupportedAddress, hrp)
	}
	if len(data5) == 0 {
		return Address{}, fmt.Errorf("%w: empty payload", ErrUnsupportedAddress)
	}

	decoded, err := address.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrUnsupportedAddress, err)
	}
	script, err := scriptFromSDK(decoded.Script)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrUnsupportedAddress, err)
	}
	return Address{Network: network, Script: script}, nil
}

// AddressToScript returns the lock script an address encodes.
func AddressToScript(s string) (Script, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return Script{}, err
	}
	return addr.Script, nil
}

func (a Address) sdk() address.Address {
	return address.Address{Script: a.Script.sdk(), Network: a.Network.sdk()}
}

// String encodes the address in the full (bech32m) format.
func (a Address) String() string {
	s, err := a.Encode()
	if err != nil {
		return ""
	}
	return s
}

func (a Address) Encode() (string, error) {
	return a.sdk().EncodeFullBech32m()
}

// EncodeShort encodes a secp256k1 or multisig lock in the deprecated short
// format still used by many wallets and fixtures.
func (a Address) EncodeShort() (string, error) {
	switch {
	case a.Script.HashType != HashTypeType || len(a.Script.Args) != shortArgsLength:
		return "", fmt.Errorf("%w: script has no short form", ErrUnsupportedAddress)
	case a.Script.CodeHash != Secp256k1Blake160CodeHash && a.Script.CodeHash != Secp256k1MultisigCodeHash:
		return "", fmt.Errorf("%w: script has no short form", ErrUnsupportedAddress)
	}
	return a.sdk().EncodeShort()
}

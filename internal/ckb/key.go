package ckb

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

// ParsePrivateKey parses a hex secp256k1 key with or without 0x.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// LoadKeystore decrypts a go-ethereum style keystore file.
func LoadKeystore(path, passphrase string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}
	key, err := keystore.DecryptKey(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore: %w", err)
	}
	return key.PrivateKey, nil
}

// LoadKey prefers an explicit hex key and falls back to a keystore file.
func LoadKey(hexKey, keystorePath, passphrase string) (*ecdsa.PrivateKey, error) {
	switch {
	case hexKey != "":
		return ParsePrivateKey(hexKey)
	case keystorePath != "":
		return LoadKeystore(keystorePath, passphrase)
	default:
		return nil, errors.New("no signing key configured")
	}
}

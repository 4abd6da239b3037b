package ckb

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/nervosnetwork/ckb-sdk-go/v2/crypto/secp256k1"
	"github.com/nervosnetwork/ckb-sdk-go/v2/transaction/signer"
)

const signatureLength = 65

// SignerService signs transactions with the secp256k1-blake160 sighash-all
// scheme.
type SignerService struct {
	key *secp256k1.Secp256k1Key
}

func NewSignerService(key *ecdsa.PrivateKey) *SignerService {
	return &SignerService{
		key: &secp256k1.Secp256k1Key{PrivateKey: key},
	}
}

// LockArgs is blake160 of the compressed public key.
func (s *SignerService) LockArgs() []byte {
	return Blake160(s.key.PubKey())
}

func (s *SignerService) LockScript() Script {
	return Secp256k1Lock(s.LockArgs())
}

// SignTransaction treats every input as one script group owned by the key,
// which is what the CoTA builders produce. It returns a signed copy and
// leaves tx untouched.
func (s *SignerService) SignTransaction(tx *Transaction) (*Transaction, error) {
	if len(tx.Inputs) == 0 {
		return nil, errors.New("transaction has no inputs")
	}

	signed := tx.Clone()
	for len(signed.Witnesses) < len(signed.Inputs) {
		signed.Witnesses = append(signed.Witnesses, nil)
	}

	first, err := ParseWitnessArgs(signed.Witnesses[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse first witness: %w", err)
	}
	first.Lock = make([]byte, signatureLength)
	placeholder := first.Serialize()

	group := make([]int, len(signed.Inputs))
	for i := range group {
		group[i] = i
	}
	sig, err := signer.SignTransaction(signed.sdk(), group, placeholder, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	first.Lock = sig
	signed.Witnesses[0] = first.Serialize()
	return signed, nil
}

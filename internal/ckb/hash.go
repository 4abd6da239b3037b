package ckb

import (
	"hash"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/minio/blake2b-simd"
)

var hashPersonalization = []byte("ckb-default-hash")

func newHasher() hash.Hash {
	h, err := blake2b.New(&blake2b.Config{
		Size:   32,
		Person: hashPersonalization,
	})
	if err != nil {
		// only reachable with an invalid static config
		panic(err)
	}
	return h
}

// Blake256 is the CKB default hash: BLAKE2b-256 personalized with
// "ckb-default-hash".
func Blake256(data ...[]byte) ecommon.Hash {
	h := newHasher()
	for _, d := range data {
		h.Write(d)
	}
	var out ecommon.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Blake160 is the first 20 bytes of Blake256, used for lock args.
func Blake160(data []byte) []byte {
	h := Blake256(data)
	return append([]byte{}, h[:20]...)
}

func (s Script) Hash() ecommon.Hash {
	return ecommon.Hash(s.sdk().Hash())
}

func (t *Transaction) Hash() ecommon.Hash {
	return ecommon.Hash(t.sdk().ComputeHash())
}

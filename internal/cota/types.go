package cota

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	ecommon "github.com/ethereum/go-ethereum/common"
	"github.com/vultisig/cota/internal/ckb"
)

var (
	ErrCotaCellNotFound     = errors.New("cota cell doesn't exist")
	ErrInsufficientCapacity = errors.New("insufficient cota cell capacity")
	ErrNotDefined           = errors.New("cota class is not defined")
)

// Action is the first byte of the witness input_type of a CoTA transaction.
type Action byte

const (
	ActionDefine         Action = 0x01
	ActionMint           Action = 0x02
	ActionWithdraw       Action = 0x03
	ActionClaim          Action = 0x04
	ActionUpdate         Action = 0x05
	ActionTransfer       Action = 0x06
	ActionClaimUpdate    Action = 0x07
	ActionTransferUpdate Action = 0x08
)

func (a Action) String() string {
	switch a {
	case ActionDefine:
		return "define"
	case ActionMint:
		return "mint"
	case ActionWithdraw:
		return "withdraw"
	case ActionClaim:
		return "claim"
	case ActionUpdate:
		return "update"
	case ActionTransfer:
		return "transfer"
	case ActionClaimUpdate:
		return "claim_update"
	case ActionTransferUpdate:
		return "transfer_update"
	default:
		return fmt.Sprintf("action(0x%02x)", byte(a))
	}
}

// CoTA type script code hashes, hash type "type", empty args.
var (
	TestnetCotaCodeHash = ecommon.HexToHash("0x89cd8003a0eaf8e65e0c31525b7d1d5c1becefd2ea75bb4cff87810ae37764d8")
	MainnetCotaCodeHash = ecommon.HexToHash("0x1122a4fb54697cf2e6e3a96c9d80fd398a936559b90954c6e88eb7ba0cf652df")
)

func CotaTypeScript(network ckb.Network) ckb.Script {
	codeHash := TestnetCotaCodeHash
	if network == ckb.Mainnet {
		codeHash = MainnetCotaCodeHash
	}
	return ckb.Script{CodeHash: codeHash, HashType: ckb.HashTypeType, Args: []byte{}}
}

// Public deployments of the CoTA type script, as dep groups.
var (
	testnetCotaDepTxHash = ecommon.HexToHash("0xd8c7396f955348bd74a8ed4398d896dad931977b7c1e3f117bd3e6f1ca3ec4c7")
	mainnetCotaDepTxHash = ecommon.HexToHash("0x875db3381ebe7a730676c110e1c0d78ae1bdd0c11beacb7db4db08e368baea98")
)

// CotaCellDep is the cell dep of the public CoTA deployment on network.
func CotaCellDep(network ckb.Network) ckb.CellDep {
	txHash := testnetCotaDepTxHash
	if network == ckb.Mainnet {
		txHash = mainnetCotaDepTxHash
	}
	return ckb.CellDep{
		OutPoint: ckb.OutPoint{TxHash: txHash, Index: 0},
		DepType:  ckb.DepTypeDepGroup,
	}
}

// HexBytes marshals as 0x-prefixed hex and accepts input with or without
// the prefix, since the aggregator answers generate_* calls without it.
type HexBytes []byte

func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte("0x" + hex.EncodeToString(b)), nil
}

func (b *HexBytes) UnmarshalText(text []byte) error {
	decoded, err := decodeHex(string(text))
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

func (b HexBytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}

func decodeFixedHex(s string, size int, what string) ([]byte, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, fmt.Errorf("%s must be %d bytes, got %d", what, size, len(b))
	}
	return b, nil
}

// CotaID identifies a token class.
type CotaID [20]byte

func ParseCotaID(s string) (CotaID, error) {
	var id CotaID
	b, err := decodeFixedHex(s, len(id), "cota id")
	if err != nil {
		return id, err
	}
	copy(id[:], b)
	return id, nil
}

func (id CotaID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id CotaID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *CotaID) UnmarshalText(text []byte) error {
	parsed, err := ParseCotaID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// GenerateCotaID derives a class id from the first input of the define
// transaction and the define's position in it.
func GenerateCotaID(firstInput ckb.CellInput, index uint64) CotaID {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], index)
	h := ckb.Blake256(firstInput.Serialize(), le[:])

	var id CotaID
	copy(id[:], h[:len(id)])
	return id
}

// TokenIndex is serialized as 4 big-endian bytes.
type TokenIndex uint32

func ParseTokenIndex(s string) (TokenIndex, error) {
	b, err := decodeFixedHex(s, 4, "token index")
	if err != nil {
		return 0, err
	}
	return TokenIndex(binary.BigEndian.Uint32(b)), nil
}

func (i TokenIndex) String() string {
	return fmt.Sprintf("0x%08x", uint32(i))
}

func (i TokenIndex) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *TokenIndex) UnmarshalText(text []byte) error {
	parsed, err := ParseTokenIndex(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

type Characteristic [20]byte

func ParseCharacteristic(s string) (Characteristic, error) {
	var c Characteristic
	b, err := decodeFixedHex(s, len(c), "characteristic")
	if err != nil {
		return c, err
	}
	copy(c[:], b)
	return c, nil
}

func (c Characteristic) String() string {
	return "0x" + hex.EncodeToString(c[:])
}

// MintWithdrawal is one token minted to a receiver. A nil TokenIndex is
// assigned from the class' issued counter.
type MintWithdrawal struct {
	TokenIndex     *TokenIndex
	State          byte
	Characteristic Characteristic
	ToLockScript   ckb.Script
}

type MintCotaInfo struct {
	CotaID      CotaID
	Withdrawals []MintWithdrawal
}

// TransferCotaInfo moves one held token to another lock. Withdraw requests
// use the same shape.
type TransferCotaInfo struct {
	CotaID       CotaID
	TokenIndex   TokenIndex
	ToLockScript ckb.Script
}

type ClaimCotaInfo struct {
	CotaID     CotaID
	TokenIndex TokenIndex
}

// UpdateCotaInfo is the new state and characteristic of a token. Claim
// updates use the same shape.
type UpdateCotaInfo struct {
	CotaID         CotaID
	TokenIndex     TokenIndex
	State          byte
	Characteristic Characteristic
}

type TransferUpdateCotaInfo struct {
	CotaID         CotaID
	TokenIndex     TokenIndex
	ToLockScript   ckb.Script
	State          byte
	Characteristic Characteristic
}

// ClassMetadata is the optional class description attached to a define.
type ClassMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Audio       string `json:"audio,omitempty"`
	Video       string `json:"video,omitempty"`
	Model       string `json:"model,omitempty"`
	Properties  string `json:"properties,omitempty"`
}

type DefineCotaInfo struct {
	// Total of zero means unlimited supply.
	Total     uint32
	Configure byte
	Metadata  *ClassMetadata
}

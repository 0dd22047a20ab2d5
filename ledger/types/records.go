package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/crypto"
)

// Checkpoint is a committed range of child-domain blocks. It is stored under a
// checkpoint id that is a multiple of the checkpoint interval.
type Checkpoint struct {
	Proposer  common.Address
	Start     uint64
	End       uint64
	Root      common.Hash
	CreatedAt uint64
}

func (c *Checkpoint) String() string {
	if c == nil {
		return "nil-Checkpoint"
	}
	return fmt.Sprintf("Checkpoint{Proposer: %v, Start: %v, End: %v, Root: %v, CreatedAt: %v}",
		c.Proposer, c.Start, c.End, c.Root.Hex(), c.CreatedAt)
}

// CheckpointJSON is the RPC representation of a checkpoint.
type CheckpointJSON struct {
	ID        common.JSONUint64 `json:"id"`
	Proposer  common.Address    `json:"proposer"`
	Start     common.JSONUint64 `json:"start"`
	End       common.JSONUint64 `json:"end"`
	Root      common.Hash       `json:"root"`
	CreatedAt common.JSONUint64 `json:"created_at"`
}

func NewCheckpointJSON(id uint64, c *Checkpoint) CheckpointJSON {
	return CheckpointJSON{
		ID:        common.JSONUint64(id),
		Proposer:  c.Proposer,
		Start:     common.JSONUint64(c.Start),
		End:       common.JSONUint64(c.End),
		Root:      c.Root,
		CreatedAt: common.JSONUint64(c.CreatedAt),
	}
}

// DepositRecord commits to one accepted deposit.
type DepositRecord struct {
	CommitmentHash common.Hash
	CreatedAt      uint64
}

// DepositCommitment returns keccak256(user ‖ token ‖ uint256(value)).
func DepositCommitment(user, token common.Address, value *big.Int) common.Hash {
	return crypto.Keccak256Hash(user.Bytes(), token.Bytes(), common.LeftPadBytes(value.Bytes(), 32))
}

// LedgerCursor holds the id allocation state of the checkpoint ledger.
type LedgerCursor struct {
	NextCheckpointID uint64
	DepositCursor    uint64
}

// NewLedgerCursor returns the cursor of an empty ledger.
func NewLedgerCursor(interval uint64) *LedgerCursor {
	return &LedgerCursor{
		NextCheckpointID: interval,
		DepositCursor:    1,
	}
}

// RelayMessage is one entry of the relay outbox.
type RelayMessage struct {
	ID       uint64
	Receiver common.Address
	Payload  common.Bytes
}

// RelayMessageJSON is the RPC representation of a relay message.
type RelayMessageJSON struct {
	ID       common.JSONUint64 `json:"id"`
	Receiver common.Address    `json:"receiver"`
	Payload  string            `json:"payload"`
}

func NewRelayMessageJSON(m *RelayMessage) RelayMessageJSON {
	return RelayMessageJSON{
		ID:       common.JSONUint64(m.ID),
		Receiver: m.Receiver,
		Payload:  hexutil.Encode(m.Payload),
	}
}

// CustodyConfig is the custody's cached view of the directory.
type CustodyConfig struct {
	ChildChain common.Address
	Relay      common.Address
	Locked     bool
}

// TokenMapping describes a root token registered with the directory.
type TokenMapping struct {
	ChildToken  common.Address
	NonFungible bool
}

// DirectoryAddresses are the component addresses the directory resolves.
type DirectoryAddresses struct {
	Custody       common.Address
	Ledger        common.Address
	Verifier      common.Address
	Relay         common.Address
	ChildChain    common.Address
	WrappedNative common.Address
}

// DepositPayload is the relay message custody sends to the child domain for
// every deposit.
type DepositPayload struct {
	User      common.Address
	Token     common.Address
	Value     *big.Int
	DepositID uint64
}

// Bytes returns the RLP list [user, token, value, depositId].
func (p *DepositPayload) Bytes() common.Bytes {
	raw, err := rlp.EncodeToBytes(p)
	if err != nil {
		logger.Panicf("Failed to encode deposit payload %v: %v", p, err)
	}
	return raw
}

// DecodeDepositPayload parses a deposit relay payload.
func DecodeDepositPayload(raw []byte) (*DepositPayload, error) {
	p := &DepositPayload{}
	if err := rlp.DecodeBytes(raw, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ToBytes encodes a state record.
func ToBytes(a interface{}) ([]byte, error) {
	return rlp.EncodeToBytes(a)
}

// FromBytes decodes a state record.
func FromBytes(in []byte, a interface{}) error {
	return rlp.DecodeBytes(in, a)
}

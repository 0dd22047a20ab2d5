package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/thetatoken/rootchain/common"
)

// Event kinds emitted by the ledger components.
const (
	EventNewCheckpoint         = "NewCheckpoint"
	EventNewDepositRecord      = "NewDepositRecord"
	EventStateSynced           = "StateSynced"
	EventNewRegistration       = "NewRegistration"
	EventRegistrationUpdated   = "RegistrationUpdated"
	EventChildChainChanged     = "ChildChainChanged"
	EventRelayChanged          = "RelayChanged"
	EventCustodyLocked         = "CustodyLocked"
	EventCustodyUnlocked       = "CustodyUnlocked"
	EventDomainIDChanged       = "DomainIDChanged"
	EventTokenMapped           = "TokenMapped"
	EventPredicateChanged      = "PredicateChanged"
	EventDirectoryUpdated      = "DirectoryUpdated"
	EventTransfer              = "Transfer"
	EventApproval              = "Approval"
	EventWrappedNativeDeposit  = "WrappedNativeDeposit"
	EventWrappedNativeWithdraw = "WrappedNativeWithdraw"
	EventAccountStateRoot      = "AccountStateRoot"
)

// EventAttribute is one key/value pair of an event.
type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is a notification emitted by a successful operation. Events of a failed
// operation are discarded together with its state changes.
type Event struct {
	Kind       string           `json:"kind"`
	Attributes []EventAttribute `json:"attributes"`
}

// NewEvent creates an event from alternating key/value arguments.
func NewEvent(kind string, kvs ...interface{}) Event {
	if len(kvs)%2 != 0 {
		logger.Panicf("Odd number of event attributes for %v", kind)
	}
	ev := Event{Kind: kind}
	for i := 0; i < len(kvs); i += 2 {
		ev.Attributes = append(ev.Attributes, EventAttribute{
			Key:   fmt.Sprintf("%v", kvs[i]),
			Value: formatAttribute(kvs[i+1]),
		})
	}
	return ev
}

// Get returns the value of the attribute with the given key.
func (ev Event) Get(key string) (string, bool) {
	for _, attr := range ev.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

func formatAttribute(v interface{}) string {
	switch t := v.(type) {
	case common.Address:
		return t.Hex()
	case common.Hash:
		return t.Hex()
	case common.Bytes:
		return hexutil.Encode(t)
	case []byte:
		return hexutil.Encode(t)
	case *big.Int:
		if t == nil {
			return "0"
		}
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

package relay

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "relay"})

var _ vm.MessagePoster = (*Relay)(nil)

// Relay is a sequenced outbox. Each receiver trusts exactly one registered sender,
// and every accepted message takes the next id of a single counter shared by all
// receivers.
type Relay struct {
	address common.Address
}

// NewRelay creates the relay deployed at the address
func NewRelay(address common.Address) *Relay {
	return &Relay{address: address}
}

// Address returns the address the relay is deployed at
func (r *Relay) Address() common.Address {
	return r.address
}

// Register sets the trusted sender of a receiver. The caller must be the owner
// or the currently registered sender.
func (r *Relay) Register(env *vm.Env, sender, receiver common.Address) result.Result {
	current := env.View.GetRelaySender(receiver)
	isOwner := vm.OnlyOwner(env).IsOK()
	if !isOwner && (current.IsEmpty() || env.Caller != current) {
		return result.Error("%v may not register a sender for %v", env.Caller, receiver).
			WithErrorCode(result.CodeUnauthorized)
	}

	env.View.SetRelaySender(receiver, sender)
	if current.IsEmpty() {
		env.Emit(types.NewEvent(types.EventNewRegistration, "user", env.Caller, "sender", sender, "receiver", receiver))
	} else {
		env.Emit(types.NewEvent(types.EventRegistrationUpdated, "user", env.Caller, "sender", sender, "receiver", receiver))
	}
	logger.Debugf("Registered relay sender %v for receiver %v", sender, receiver)
	return result.OK
}

// Post appends a message for the receiver and returns its sequence id
func (r *Relay) Post(env *vm.Env, receiver common.Address, payload common.Bytes) (uint64, result.Result) {
	sender := env.View.GetRelaySender(receiver)
	if sender.IsEmpty() || env.Caller != sender {
		return 0, result.Error("%v is not the registered sender for %v", env.Caller, receiver).
			WithErrorCode(result.CodeUnauthorized)
	}

	counter := env.View.GetRelayCounter()
	if counter == math.MaxUint64 {
		return 0, result.Error("Relay counter overflow").WithErrorCode(result.CodeIntervalExhausted)
	}
	counter++
	env.View.SetRelayCounter(counter)
	env.View.SetRelayMessage(&types.RelayMessage{
		ID:       counter,
		Receiver: receiver,
		Payload:  common.CopyBytes(payload),
	})
	env.Emit(types.NewEvent(types.EventStateSynced, "id", counter, "contractAddress", receiver, "data", payload))
	return counter, result.OK
}

// Sender returns the registered sender of the receiver
func (r *Relay) Sender(view *state.StoreView, receiver common.Address) common.Address {
	return view.GetRelaySender(receiver)
}

// Counter returns the id of the last posted message
func (r *Relay) Counter(view *state.StoreView) uint64 {
	return view.GetRelayCounter()
}

// Message returns the posted message with the id, or nil
func (r *Relay) Message(view *state.StoreView, id uint64) *types.RelayMessage {
	return view.GetRelayMessage(id)
}

package execution

import (
	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/relay"
	st "github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

var _ TxExecutor = (*RelayRegisterTxExecutor)(nil)

// ------------------------------- RelayRegister Transaction -----------------------------------

// RelayRegisterTxExecutor implements the TxExecutor interface
type RelayRegisterTxExecutor struct {
	relay *relay.Relay
}

// NewRelayRegisterTxExecutor creates a new instance of RelayRegisterTxExecutor
func NewRelayRegisterTxExecutor(relay *relay.Relay) *RelayRegisterTxExecutor {
	return &RelayRegisterTxExecutor{
		relay: relay,
	}
}

func (exec *RelayRegisterTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.RelayRegisterTx)
	if res := validateAddress(tx.RelaySender, "relay sender"); res.IsError() {
		return res
	}
	return validateAddress(tx.Receiver, "receiver")
}

func (exec *RelayRegisterTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.RelayRegisterTx)
	return nil, exec.relay.Register(env, tx.RelaySender, tx.Receiver)
}

var _ TxExecutor = (*RelayPostTxExecutor)(nil)

// ------------------------------- RelayPost Transaction -----------------------------------

// RelayPostTxExecutor implements the TxExecutor interface
type RelayPostTxExecutor struct {
	relay *relay.Relay
}

// NewRelayPostTxExecutor creates a new instance of RelayPostTxExecutor
func NewRelayPostTxExecutor(relay *relay.Relay) *RelayPostTxExecutor {
	return &RelayPostTxExecutor{
		relay: relay,
	}
}

func (exec *RelayPostTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.RelayPostTx)
	return validateAddress(tx.Receiver, "receiver")
}

func (exec *RelayPostTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.RelayPostTx)
	id, res := exec.relay.Post(env, tx.Receiver, tx.Payload)
	if res.IsError() {
		return nil, res
	}
	return encodeID(id), result.OK
}

package execution

import (
	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/assets"
	st "github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

var _ TxExecutor = (*MapTokenTxExecutor)(nil)

// ------------------------------- MapToken Transaction -----------------------------------

// MapTokenTxExecutor implements the TxExecutor interface
type MapTokenTxExecutor struct {
	registry *assets.Registry
}

// NewMapTokenTxExecutor creates a new instance of MapTokenTxExecutor
func NewMapTokenTxExecutor(registry *assets.Registry) *MapTokenTxExecutor {
	return &MapTokenTxExecutor{
		registry: registry,
	}
}

func (exec *MapTokenTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.MapTokenTx)
	if res := validateAddress(tx.RootToken, "root token"); res.IsError() {
		return res
	}
	return validateAddress(tx.ChildToken, "child token")
}

func (exec *MapTokenTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.MapTokenTx)
	return nil, exec.registry.MapToken(env, tx.RootToken, tx.ChildToken, tx.NonFungible)
}

var _ TxExecutor = (*SetPredicateTxExecutor)(nil)

// ------------------------------- SetPredicate Transaction -----------------------------------

// SetPredicateTxExecutor implements the TxExecutor interface
type SetPredicateTxExecutor struct {
	registry *assets.Registry
}

// NewSetPredicateTxExecutor creates a new instance of SetPredicateTxExecutor
func NewSetPredicateTxExecutor(registry *assets.Registry) *SetPredicateTxExecutor {
	return &SetPredicateTxExecutor{
		registry: registry,
	}
}

func (exec *SetPredicateTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.SetPredicateTx)
	return validateAddress(tx.Predicate, "predicate")
}

func (exec *SetPredicateTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.SetPredicateTx)
	return nil, exec.registry.SetPredicate(env, tx.Predicate, tx.Authorized)
}

var _ TxExecutor = (*UpdateDirectoryTxExecutor)(nil)

// ------------------------------- UpdateDirectory Transaction -----------------------------------

// UpdateDirectoryTxExecutor implements the TxExecutor interface
type UpdateDirectoryTxExecutor struct {
	registry *assets.Registry
}

// NewUpdateDirectoryTxExecutor creates a new instance of UpdateDirectoryTxExecutor
func NewUpdateDirectoryTxExecutor(registry *assets.Registry) *UpdateDirectoryTxExecutor {
	return &UpdateDirectoryTxExecutor{
		registry: registry,
	}
}

func (exec *UpdateDirectoryTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.UpdateDirectoryTx)
	if res := validateAddress(tx.ChildChain, "child chain"); res.IsError() {
		return res
	}
	return validateAddress(tx.Relay, "relay")
}

func (exec *UpdateDirectoryTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.UpdateDirectoryTx)
	return nil, exec.registry.UpdateChildChainAndRelay(env, tx.ChildChain, tx.Relay)
}

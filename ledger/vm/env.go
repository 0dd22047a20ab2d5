package vm

import (
	"math/big"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
)

// Env is the context of one call into a ledger component. Sub-calls share the
// view of the caller, so their writes are discarded together with the caller's.
type Env struct {
	View      *state.StoreView
	Caller    common.Address
	Value     *big.Int // native currency attached to the call
	Time      uint64
	Contracts *Contracts
}

// NewEnv creates the environment of a top level call
func NewEnv(view *state.StoreView, caller common.Address, value *big.Int, time uint64, contracts *Contracts) *Env {
	if value == nil {
		value = big.NewInt(0)
	}
	return &Env{
		View:      view,
		Caller:    caller,
		Value:     value,
		Time:      time,
		Contracts: contracts,
	}
}

// Call returns the environment of a sub-call made by the given component
func (env *Env) Call(caller common.Address) *Env {
	return env.CallWithValue(caller, big.NewInt(0))
}

// CallWithValue returns the environment of a sub-call that carries native currency
func (env *Env) CallWithValue(caller common.Address, value *big.Int) *Env {
	return &Env{
		View:      env.View,
		Caller:    caller,
		Value:     value,
		Time:      env.Time,
		Contracts: env.Contracts,
	}
}

// Emit records an event in the current view
func (env *Env) Emit(event types.Event) {
	env.View.Emit(event)
}

// Atomic runs fn on a branch of the current view. The branch is merged only
// when fn succeeds, so a failed fn leaves neither state changes nor events.
func (env *Env) Atomic(fn func(env *Env) result.Result) result.Result {
	branch := env.View.Branch()
	child := *env
	child.View = branch
	res := fn(&child)
	if res.IsOK() {
		branch.Merge()
	}
	return res
}

// OnlyOwner fails unless the caller is the privileged owner
func OnlyOwner(env *Env) result.Result {
	owner := env.View.GetOwner()
	if owner.IsEmpty() || env.Caller != owner {
		return result.Error("Caller %v is not the owner", env.Caller).WithErrorCode(result.CodeUnauthorized)
	}
	return result.OK
}

// CanTransfer checks whether the native balance of the address covers amount
func CanTransfer(view *state.StoreView, addr common.Address, amount *big.Int) bool {
	return view.GetBalance(NativeToken, addr).Cmp(amount) >= 0
}

// Transfer moves native currency between two addresses
func Transfer(view *state.StoreView, from, to common.Address, amount *big.Int) result.Result {
	if amount.Sign() < 0 {
		return result.Error("Negative transfer amount %v", amount).WithErrorCode(result.CodeInvalidInput)
	}
	if amount.Sign() == 0 || from == to {
		return result.OK
	}
	if !CanTransfer(view, from, amount) {
		return result.Error("Insufficient native balance of %v", from).WithErrorCode(result.CodeInsufficientFunds)
	}
	view.SetBalance(NativeToken, from, new(big.Int).Sub(view.GetBalance(NativeToken, from), amount))
	view.SetBalance(NativeToken, to, new(big.Int).Add(view.GetBalance(NativeToken, to), amount))
	return result.OK
}

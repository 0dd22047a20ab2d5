package assets

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

var _ vm.WrappedNativeToken = (*Token)(nil)

// TokenBank keeps the balances of every token on the ledger. Whether a token is
// fungible follows its directory mapping; the zero address is the native currency.
type TokenBank struct {
	registry *Registry
}

// NewTokenBank creates a new instance of TokenBank
func NewTokenBank(registry *Registry) *TokenBank {
	return &TokenBank{registry: registry}
}

// At returns the token deployed at the address
func (b *TokenBank) At(address common.Address) *Token {
	return &Token{bank: b, address: address}
}

// Resolve is the contract resolver that maps every address onto the bank
func (b *TokenBank) Resolve(address common.Address) interface{} {
	return b.At(address)
}

// Token is the handle of one token of the bank
type Token struct {
	bank    *TokenBank
	address common.Address
}

// Address returns the token address
func (t *Token) Address() common.Address {
	return t.address
}

func (t *Token) isNonFungible(env *vm.Env) bool {
	return t.bank.registry.IsNonFungible(env.View, t.address)
}

func (t *Token) isWrappedNative(env *vm.Env) bool {
	return !t.address.IsEmpty() && t.bank.registry.WrappedNative(env.View) == t.address
}

// BalanceOf returns the fungible balance of holder
func (t *Token) BalanceOf(env *vm.Env, holder common.Address) *big.Int {
	return env.View.GetBalance(t.address, holder)
}

// OwnerOf returns the owner of the token instance
func (t *Token) OwnerOf(env *vm.Env, id *big.Int) common.Address {
	return env.View.GetTokenOwner(t.address, id)
}

// Mint creates value units, or the token instance value, for to. Owner only.
func (t *Token) Mint(env *vm.Env, to common.Address, value *big.Int) error {
	if res := vm.OnlyOwner(env); res.IsError() {
		return res.Err()
	}
	if err := checkValue(value); err != nil {
		return err
	}
	if to.IsEmpty() {
		return result.Error("Cannot mint to the zero address").WithErrorCode(result.CodeInvalidInput).Err()
	}
	if t.isNonFungible(env) {
		if !env.View.GetTokenOwner(t.address, value).IsEmpty() {
			return result.Error("Token %v already exists", value).WithErrorCode(result.CodeInvalidInput).Err()
		}
		env.View.SetTokenOwner(t.address, value, to)
	} else {
		env.View.SetBalance(t.address, to, new(big.Int).Add(env.View.GetBalance(t.address, to), value))
	}
	env.Emit(types.NewEvent(types.EventTransfer, "token", t.address, "from", common.Address{}, "to", to, "value", value))
	return nil
}

// Transfer moves value from the caller to to
func (t *Token) Transfer(env *vm.Env, to common.Address, value *big.Int) error {
	if t.isNonFungible(env) {
		return t.TransferFrom(env, env.Caller, to, value)
	}
	if err := checkValue(value); err != nil {
		return err
	}
	return t.move(env, env.Caller, to, value)
}

// TransferFrom moves value, or the token instance value, from from to to. The
// caller must be from or hold an approval.
func (t *Token) TransferFrom(env *vm.Env, from, to common.Address, value *big.Int) error {
	if err := checkValue(value); err != nil {
		return err
	}
	if to.IsEmpty() {
		return result.Error("Cannot transfer to the zero address").WithErrorCode(result.CodeInvalidInput).Err()
	}

	if t.isNonFungible(env) {
		owner := env.View.GetTokenOwner(t.address, value)
		if owner.IsEmpty() || owner != from {
			return result.Error("%v does not own token %v", from, value).WithErrorCode(result.CodeInsufficientFunds).Err()
		}
		if env.Caller != from && env.View.GetTokenApproval(t.address, value) != env.Caller {
			return result.Error("%v is not approved for token %v", env.Caller, value).WithErrorCode(result.CodeUnauthorized).Err()
		}
		env.View.SetTokenApproval(t.address, value, common.Address{})
		env.View.SetTokenOwner(t.address, value, to)
		env.Emit(types.NewEvent(types.EventTransfer, "token", t.address, "from", from, "to", to, "value", value))
		return nil
	}

	if env.Caller != from {
		allowance := env.View.GetAllowance(t.address, from, env.Caller)
		if allowance.Cmp(value) < 0 {
			return result.Error("Allowance of %v exceeded", env.Caller).WithErrorCode(result.CodeInsufficientFunds).Err()
		}
		env.View.SetAllowance(t.address, from, env.Caller, new(big.Int).Sub(allowance, value))
	}
	return t.move(env, from, to, value)
}

// Approve lets spender move value of the caller's balance, or the token instance value
func (t *Token) Approve(env *vm.Env, spender common.Address, value *big.Int) error {
	if err := checkValue(value); err != nil {
		return err
	}
	if t.isNonFungible(env) {
		if env.View.GetTokenOwner(t.address, value) != env.Caller {
			return result.Error("%v does not own token %v", env.Caller, value).WithErrorCode(result.CodeUnauthorized).Err()
		}
		env.View.SetTokenApproval(t.address, value, spender)
	} else {
		env.View.SetAllowance(t.address, env.Caller, spender, value)
	}
	env.Emit(types.NewEvent(types.EventApproval, "token", t.address, "owner", env.Caller, "spender", spender, "value", value))
	return nil
}

// SafeTransfer moves value from the caller to to and notifies to when it
// declares the matching receive capability.
func (t *Token) SafeTransfer(env *vm.Env, to common.Address, value *big.Int, data common.Bytes) error {
	if t.isNonFungible(env) {
		if err := t.TransferFrom(env, env.Caller, to, value); err != nil {
			return err
		}
		if receiver, ok := env.Contracts.ReceivesNonFungible(to); ok {
			err := receiver.OnNonFungibleReceived(env.Call(t.address), env.Caller, env.Caller, value, data)
			return errors.Wrapf(err, "receiver %v rejected token %v", to, value)
		}
		return nil
	}

	if err := t.Transfer(env, to, value); err != nil {
		return err
	}
	if receiver, ok := env.Contracts.ReceivesPushedTokens(to); ok {
		err := receiver.OnTokensReceived(env.Call(t.address), env.Caller, value, data)
		return errors.Wrapf(err, "receiver %v rejected %v tokens", to, value)
	}
	return nil
}

// Deposit mints env.Value wrapped units to the caller, who already paid the
// native currency to the token address.
func (t *Token) Deposit(env *vm.Env) error {
	if !t.isWrappedNative(env) {
		return result.Error("%v is not the wrapped native token", t.address).WithErrorCode(result.CodeInvalidInput).Err()
	}
	value := env.Value
	if err := checkValue(value); err != nil {
		return err
	}
	if res := vm.Transfer(env.View, env.Caller, t.address, value); res.IsError() {
		return res.Err()
	}
	env.View.SetBalance(t.address, env.Caller, new(big.Int).Add(env.View.GetBalance(t.address, env.Caller), value))
	env.Emit(types.NewEvent(types.EventWrappedNativeDeposit, "to", env.Caller, "value", value))
	return nil
}

// WithdrawTo burns amount wrapped units of the caller and sends the native
// currency to recipient.
func (t *Token) WithdrawTo(env *vm.Env, amount *big.Int, recipient common.Address) error {
	if !t.isWrappedNative(env) {
		return result.Error("%v is not the wrapped native token", t.address).WithErrorCode(result.CodeInvalidInput).Err()
	}
	if err := checkValue(amount); err != nil {
		return err
	}
	balance := env.View.GetBalance(t.address, env.Caller)
	if balance.Cmp(amount) < 0 {
		return result.Error("Insufficient wrapped balance of %v", env.Caller).WithErrorCode(result.CodeInsufficientFunds).Err()
	}
	env.View.SetBalance(t.address, env.Caller, new(big.Int).Sub(balance, amount))
	if res := vm.Transfer(env.View, t.address, recipient, amount); res.IsError() {
		return res.Err()
	}
	env.Emit(types.NewEvent(types.EventWrappedNativeWithdraw, "from", env.Caller, "to", recipient, "value", amount))
	return nil
}

func (t *Token) move(env *vm.Env, from, to common.Address, value *big.Int) error {
	if t.address == vm.NativeToken {
		if res := vm.Transfer(env.View, from, to, value); res.IsError() {
			return res.Err()
		}
	} else {
		balance := env.View.GetBalance(t.address, from)
		if balance.Cmp(value) < 0 {
			return result.Error("Insufficient balance of %v", from).WithErrorCode(result.CodeInsufficientFunds).Err()
		}
		env.View.SetBalance(t.address, from, new(big.Int).Sub(balance, value))
		env.View.SetBalance(t.address, to, new(big.Int).Add(env.View.GetBalance(t.address, to), value))
	}
	env.Emit(types.NewEvent(types.EventTransfer, "token", t.address, "from", from, "to", to, "value", value))
	return nil
}

func checkValue(value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return result.Error("Invalid value %v", value).WithErrorCode(result.CodeInvalidInput).Err()
	}
	return nil
}

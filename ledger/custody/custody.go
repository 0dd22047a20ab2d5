package custody

import (
	"math/big"

	log "github.com/sirupsen/logrus"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "custody"})

var (
	_ vm.ReceivesNonFungible  = (*Custody)(nil)
	_ vm.ReceivesPushedTokens = (*Custody)(nil)
)

// Custody escrows deposited assets. Every accepted deposit takes an id from the
// checkpoint ledger, leaves a deposit record and posts a relay message to the
// child chain. Each entry point runs as one atomic unit and rejects reentrant calls.
type Custody struct {
	address   common.Address
	directory vm.Directory

	entered bool
}

// NewCustody creates the custody deployed at the address
func NewCustody(address common.Address, directory vm.Directory) *Custody {
	return &Custody{
		address:   address,
		directory: directory,
	}
}

// Address returns the address the custody is deployed at
func (c *Custody) Address() common.Address {
	return c.address
}

// Init caches the child chain and relay addresses of the directory
func (c *Custody) Init(view *state.StoreView) {
	childChain, relay := c.directory.ChildChainAndRelay(view)
	cfg := view.GetCustodyConfig()
	cfg.ChildChain = childChain
	cfg.Relay = relay
	view.SetCustodyConfig(cfg)
}

// Config returns the cached directory values and the lock flag
func (c *Custody) Config(view *state.StoreView) *types.CustodyConfig {
	return view.GetCustodyConfig()
}

// DepositRecord returns the deposit record with the id, or nil
func (c *Custody) DepositRecord(view *state.StoreView, id uint64) *types.DepositRecord {
	return view.GetDepositRecord(id)
}

// DepositNative wraps the native currency attached to the call and deposits it
// for the caller.
func (c *Custody) DepositNative(env *vm.Env) (depositID uint64, res result.Result) {
	res = c.execute(env, true, func(env *vm.Env) result.Result {
		value := env.Value
		if value == nil || value.Sign() <= 0 {
			return result.Error("No native currency attached").WithErrorCode(result.CodeInvalidInput)
		}
		wrappedAddr := c.directory.WrappedNative(env.View)
		wrapped, ok := env.Contracts.WrappedNativeToken(wrappedAddr)
		if !ok {
			return result.Error("No wrapped native token at %v", wrappedAddr).WithErrorCode(result.CodeDependentCallFailed)
		}
		if err := wrapped.Deposit(env.CallWithValue(c.address, value)); err != nil {
			return transferFailed(wrappedAddr, err)
		}
		depositID, res = c.allocateAndRecord(env, env.Caller, wrappedAddr, value)
		return res
	})
	if res.IsError() {
		return 0, res
	}
	return depositID, res
}

// DepositFungible pulls amount of token from the caller and deposits it for the caller
func (c *Custody) DepositFungible(env *vm.Env, token common.Address, amount *big.Int) (uint64, result.Result) {
	return c.DepositFungibleForUser(env, token, env.Caller, amount)
}

// DepositFungibleForUser pulls amount of token from the caller and deposits it for user
func (c *Custody) DepositFungibleForUser(env *vm.Env, token, user common.Address, amount *big.Int) (depositID uint64, res result.Result) {
	res = c.execute(env, true, func(env *vm.Env) result.Result {
		if res := c.pull(env, token, env.Caller, amount, false); res.IsError() {
			return res
		}
		depositID, res = c.allocateAndRecord(env, user, token, amount)
		return res
	})
	if res.IsError() {
		return 0, res
	}
	return depositID, res
}

// DepositNonFungible pulls the token instance from the caller and deposits it for the caller
func (c *Custody) DepositNonFungible(env *vm.Env, token common.Address, tokenID *big.Int) (uint64, result.Result) {
	return c.DepositNonFungibleForUser(env, token, env.Caller, tokenID)
}

// DepositNonFungibleForUser pulls the token instance from the caller and deposits it for user
func (c *Custody) DepositNonFungibleForUser(env *vm.Env, token, user common.Address, tokenID *big.Int) (depositID uint64, res result.Result) {
	res = c.execute(env, true, func(env *vm.Env) result.Result {
		if res := c.pull(env, token, env.Caller, tokenID, true); res.IsError() {
			return res
		}
		depositID, res = c.allocateAndRecord(env, user, token, tokenID)
		return res
	})
	if res.IsError() {
		return 0, res
	}
	return depositID, res
}

// DepositBatch deposits several assets for user with one id allocation. Entries
// are routed by the kind the directory registered for the token. Any failing
// entry rejects the whole batch.
func (c *Custody) DepositBatch(env *vm.Env, tokens []common.Address, values []*big.Int, user common.Address) (baseID uint64, res result.Result) {
	res = c.execute(env, true, func(env *vm.Env) result.Result {
		if len(tokens) != len(values) {
			return result.Error("Batch has %v tokens but %v values", len(tokens), len(values)).
				WithErrorCode(result.CodeInvalidInput)
		}
		if len(tokens) == 0 {
			return result.Error("Batch is empty").WithErrorCode(result.CodeInvalidInput)
		}

		var res result.Result
		baseID, res = c.allocate(env, uint64(len(tokens)))
		if res.IsError() {
			return res
		}
		for i, token := range tokens {
			nonFungible := c.directory.IsNonFungible(env.View, token)
			if res := c.pull(env, token, env.Caller, values[i], nonFungible); res.IsError() {
				return res
			}
			if res := c.recordDeposit(env, user, token, values[i], baseID+uint64(i)); res.IsError() {
				return res
			}
		}
		return result.OK
	})
	if res.IsError() {
		return 0, res
	}
	return baseID, res
}

// OnNonFungibleReceived records a token instance pushed to the custody. The
// calling token is the deposited asset and from is the depositing user.
func (c *Custody) OnNonFungibleReceived(env *vm.Env, operator, from common.Address, id *big.Int, data common.Bytes) error {
	res := c.execute(env, true, func(env *vm.Env) result.Result {
		_, res := c.allocateAndRecord(env, from, env.Caller, id)
		return res
	})
	return res.Err()
}

// OnTokensReceived records fungible tokens pushed to the custody. The calling
// token is the deposited asset and from is the depositing user.
func (c *Custody) OnTokensReceived(env *vm.Env, from common.Address, amount *big.Int, data common.Bytes) error {
	res := c.execute(env, true, func(env *vm.Env) result.Result {
		_, res := c.allocateAndRecord(env, from, env.Caller, amount)
		return res
	})
	return res.Err()
}

// ReleaseAsset sends an escrowed asset to user. Only predicates may release.
func (c *Custody) ReleaseAsset(env *vm.Env, token, user common.Address, value *big.Int) result.Result {
	return c.execute(env, false, func(env *vm.Env) result.Result {
		if !c.directory.IsPredicate(env.View, env.Caller) {
			return result.Error("%v is not a predicate", env.Caller).WithErrorCode(result.CodeUnauthorized)
		}
		if !c.directory.IsTokenMapped(env.View, token) {
			return result.Error("Token %v is not mapped", token).WithErrorCode(result.CodeTokenNotSupported)
		}
		if value == nil || value.Sign() < 0 {
			return result.Error("Invalid release value").WithErrorCode(result.CodeInvalidInput)
		}

		callEnv := env.Call(c.address)
		var err error
		switch {
		case c.directory.IsNonFungible(env.View, token):
			t, ok := env.Contracts.Token(token)
			if !ok {
				return noToken(token)
			}
			err = t.TransferFrom(callEnv, c.address, user, value)
		case token == c.directory.WrappedNative(env.View):
			t, ok := env.Contracts.WrappedNativeToken(token)
			if !ok {
				return noToken(token)
			}
			err = t.WithdrawTo(callEnv, value, user)
		default:
			t, ok := env.Contracts.FungibleToken(token)
			if !ok {
				return noToken(token)
			}
			err = t.Transfer(callEnv, user, value)
		}
		if err != nil {
			return transferFailed(token, err)
		}
		logger.Infof("Released %v of token %v to %v", value, token, user)
		return result.OK
	})
}

// RefreshChildChainAndRelay reloads the child chain and relay addresses from the
// directory. It fails when neither address changed.
func (c *Custody) RefreshChildChainAndRelay(env *vm.Env) result.Result {
	return c.execute(env, false, func(env *vm.Env) result.Result {
		childChain, relay := c.directory.ChildChainAndRelay(env.View)
		cfg := env.View.GetCustodyConfig()
		if cfg.ChildChain == childChain && cfg.Relay == relay {
			return result.Error("Child chain and relay addresses are unchanged").WithErrorCode(result.CodeNoChange)
		}
		if cfg.ChildChain != childChain {
			env.Emit(types.NewEvent(types.EventChildChainChanged, "previous", cfg.ChildChain, "current", childChain))
			cfg.ChildChain = childChain
		}
		if cfg.Relay != relay {
			env.Emit(types.NewEvent(types.EventRelayChanged, "previous", cfg.Relay, "current", relay))
			cfg.Relay = relay
		}
		env.View.SetCustodyConfig(cfg)
		return result.OK
	})
}

// SetLocked locks or unlocks deposits. Releases stay available while locked.
func (c *Custody) SetLocked(env *vm.Env, locked bool) result.Result {
	return c.execute(env, false, func(env *vm.Env) result.Result {
		if res := vm.OnlyOwner(env); res.IsError() {
			return res
		}
		cfg := env.View.GetCustodyConfig()
		if cfg.Locked == locked {
			return result.Error("Custody lock is already %v", locked).WithErrorCode(result.CodeNoChange)
		}
		cfg.Locked = locked
		env.View.SetCustodyConfig(cfg)
		if locked {
			env.Emit(types.NewEvent(types.EventCustodyLocked, "by", env.Caller))
		} else {
			env.Emit(types.NewEvent(types.EventCustodyUnlocked, "by", env.Caller))
		}
		return result.OK
	})
}

// execute runs fn atomically behind the reentrancy guard
func (c *Custody) execute(env *vm.Env, deposit bool, fn func(env *vm.Env) result.Result) result.Result {
	if c.entered {
		return result.Error("Reentrant call into custody").WithErrorCode(result.CodeReentrantCall)
	}
	c.entered = true
	defer func() { c.entered = false }()

	if deposit && env.View.GetCustodyConfig().Locked {
		return result.Error("Custody is locked").WithErrorCode(result.CodeCustodyLocked)
	}
	res := env.Atomic(fn)
	if res.IsError() {
		logger.Debugf("Custody call by %v rejected: %v", env.Caller, res.Message)
	}
	return res
}

// pull moves an asset from the depositor into escrow
func (c *Custody) pull(env *vm.Env, token, from common.Address, value *big.Int, nonFungible bool) result.Result {
	if value == nil || value.Sign() < 0 {
		return result.Error("Invalid deposit value").WithErrorCode(result.CodeInvalidInput)
	}
	if !c.directory.IsTokenMapped(env.View, token) {
		return result.Error("Token %v is not mapped", token).WithErrorCode(result.CodeTokenNotSupported)
	}
	if c.directory.IsNonFungible(env.View, token) != nonFungible {
		return result.Error("Token %v has a different asset kind", token).WithErrorCode(result.CodeInvalidInput)
	}
	t, ok := env.Contracts.Token(token)
	if !ok {
		return noToken(token)
	}
	if err := t.TransferFrom(env.Call(c.address), from, c.address, value); err != nil {
		return transferFailed(token, err)
	}
	return result.OK
}

func (c *Custody) allocate(env *vm.Env, count uint64) (uint64, result.Result) {
	ledgerAddr := c.directory.Ledger(env.View)
	allocator, ok := env.Contracts.DepositIDAllocator(ledgerAddr)
	if !ok {
		return 0, result.Error("No deposit id allocator at %v", ledgerAddr).WithErrorCode(result.CodeDependentCallFailed)
	}
	return allocator.AllocateDepositIDs(env.Call(c.address), count)
}

func (c *Custody) allocateAndRecord(env *vm.Env, user, token common.Address, value *big.Int) (uint64, result.Result) {
	depositID, res := c.allocate(env, 1)
	if res.IsError() {
		return 0, res
	}
	return depositID, c.recordDeposit(env, user, token, value, depositID)
}

// recordDeposit stores the deposit record and tells the child chain about it
func (c *Custody) recordDeposit(env *vm.Env, user, token common.Address, value *big.Int, depositID uint64) result.Result {
	if !c.directory.IsTokenMapped(env.View, token) {
		return result.Error("Token %v is not mapped", token).WithErrorCode(result.CodeTokenNotSupported)
	}
	if value == nil {
		value = big.NewInt(0)
	}
	if env.View.GetDepositRecord(depositID) != nil {
		return result.Error("Deposit %v is already recorded", depositID).WithErrorCode(result.CodeInvalidInput)
	}

	env.View.SetDepositRecord(depositID, &types.DepositRecord{
		CommitmentHash: types.DepositCommitment(user, token, value),
		CreatedAt:      env.Time,
	})

	cfg := env.View.GetCustodyConfig()
	poster, ok := env.Contracts.MessagePoster(cfg.Relay)
	if !ok {
		return result.Error("No relay at %v", cfg.Relay).WithErrorCode(result.CodeDependentCallFailed)
	}
	payload := &types.DepositPayload{
		User:      user,
		Token:     token,
		Value:     value,
		DepositID: depositID,
	}
	if _, res := poster.Post(env.Call(c.address), cfg.ChildChain, payload.Bytes()); res.IsError() {
		return result.Error("Relay post failed: %v", res.Message).WithErrorCode(result.CodeDependentCallFailed)
	}

	env.Emit(types.NewEvent(types.EventNewDepositRecord,
		"user", user,
		"token", token,
		"value", value,
		"depositId", depositID))
	logger.Infof("Deposit %v recorded: %v of token %v for %v", depositID, value, token, user)
	return result.OK
}

func noToken(token common.Address) result.Result {
	return result.Error("No token at %v", token).WithErrorCode(result.CodeDependentCallFailed)
}

func transferFailed(token common.Address, err error) result.Result {
	return result.Error("Transfer of token %v failed: %v", token, err).WithErrorCode(result.CodeDependentCallFailed)
}

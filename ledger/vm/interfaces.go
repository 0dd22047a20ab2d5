package vm

import (
	"math/big"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/state"
)

// Token is an asset whose holdings can be pulled by an approved caller. For a
// non-fungible token value is the token id, otherwise the amount.
type Token interface {
	TransferFrom(env *Env, from, to common.Address, value *big.Int) error
}

// FungibleToken can additionally be pushed by its holder
type FungibleToken interface {
	Token
	Transfer(env *Env, to common.Address, value *big.Int) error
}

// WrappedNativeToken is the fungible representation of the native currency
type WrappedNativeToken interface {
	FungibleToken
	// Deposit mints env.Value wrapped units to the caller
	Deposit(env *Env) error
	// WithdrawTo burns amount from the caller and sends the native currency to recipient
	WithdrawTo(env *Env, amount *big.Int, recipient common.Address) error
}

// ReceivesNonFungible is declared by components that accept safe non-fungible transfers
type ReceivesNonFungible interface {
	OnNonFungibleReceived(env *Env, operator, from common.Address, id *big.Int, data common.Bytes) error
}

// ReceivesPushedTokens is declared by components that accept pushed fungible transfers
type ReceivesPushedTokens interface {
	OnTokensReceived(env *Env, from common.Address, amount *big.Int, data common.Bytes) error
}

// Directory resolves component addresses and token metadata
type Directory interface {
	Custody(view *state.StoreView) common.Address
	Ledger(view *state.StoreView) common.Address
	Verifier(view *state.StoreView) common.Address
	ChildChainAndRelay(view *state.StoreView) (childChain common.Address, relay common.Address)
	WrappedNative(view *state.StoreView) common.Address
	IsTokenMapped(view *state.StoreView, token common.Address) bool
	IsNonFungible(view *state.StoreView, token common.Address) bool
	IsPredicate(view *state.StoreView, addr common.Address) bool
}

// SignatureVerifier checks the quorum behind a checkpoint vote and returns the proposer reward
type SignatureVerifier interface {
	Verify(env *Env, blockSpan uint64, voteHash common.Hash, rewardStateRoot common.Hash, sigs []common.Bytes) (*big.Int, error)
}

// MessagePoster appends a message to the relay outbox and returns its sequence id
type MessagePoster interface {
	Post(env *Env, receiver common.Address, payload common.Bytes) (uint64, result.Result)
}

// DepositIDAllocator hands out deposit ids
type DepositIDAllocator interface {
	AllocateDepositIDs(env *Env, count uint64) (uint64, result.Result)
}

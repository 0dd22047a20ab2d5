package vm

import (
	"sync"

	"github.com/thetatoken/rootchain/common"
)

// NativeToken is the token address under which native currency balances are kept
var NativeToken = common.Address{}

// Contracts resolves an address to the component deployed at it. Components are
// registered explicitly; a resolver answers for addresses without a registration,
// which is how every token address maps onto the token bank.
type Contracts struct {
	mu         sync.RWMutex
	registered map[common.Address]interface{}
	resolver   func(addr common.Address) interface{}
}

// NewContracts creates an empty registry
func NewContracts() *Contracts {
	return &Contracts{
		registered: make(map[common.Address]interface{}),
	}
}

// Register deploys a component at the address
func (c *Contracts) Register(addr common.Address, contract interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registered[addr] = contract
}

// SetResolver sets the fallback for unregistered addresses
func (c *Contracts) SetResolver(resolver func(addr common.Address) interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolver = resolver
}

// Get returns the component at the address, or nil
func (c *Contracts) Get(addr common.Address) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if contract, ok := c.registered[addr]; ok {
		return contract
	}
	if c.resolver != nil {
		return c.resolver(addr)
	}
	return nil
}

// Token returns the token at the address
func (c *Contracts) Token(addr common.Address) (Token, bool) {
	token, ok := c.Get(addr).(Token)
	return token, ok
}

// FungibleToken returns the fungible token at the address
func (c *Contracts) FungibleToken(addr common.Address) (FungibleToken, bool) {
	token, ok := c.Get(addr).(FungibleToken)
	return token, ok
}

// WrappedNativeToken returns the wrapped native token at the address
func (c *Contracts) WrappedNativeToken(addr common.Address) (WrappedNativeToken, bool) {
	token, ok := c.Get(addr).(WrappedNativeToken)
	return token, ok
}

// MessagePoster returns the relay at the address
func (c *Contracts) MessagePoster(addr common.Address) (MessagePoster, bool) {
	poster, ok := c.Get(addr).(MessagePoster)
	return poster, ok
}

// ReceivesNonFungible returns the address's non-fungible receive hook, if it declares one
func (c *Contracts) ReceivesNonFungible(addr common.Address) (ReceivesNonFungible, bool) {
	receiver, ok := c.Get(addr).(ReceivesNonFungible)
	return receiver, ok
}

// ReceivesPushedTokens returns the address's pushed-token hook, if it declares one
func (c *Contracts) ReceivesPushedTokens(addr common.Address) (ReceivesPushedTokens, bool) {
	receiver, ok := c.Get(addr).(ReceivesPushedTokens)
	return receiver, ok
}

// SignatureVerifier returns the checkpoint signature verifier at the address
func (c *Contracts) SignatureVerifier(addr common.Address) (SignatureVerifier, bool) {
	verifier, ok := c.Get(addr).(SignatureVerifier)
	return verifier, ok
}

// DepositIDAllocator returns the deposit id allocator at the address
func (c *Contracts) DepositIDAllocator(addr common.Address) (DepositIDAllocator, bool) {
	allocator, ok := c.Get(addr).(DepositIDAllocator)
	return allocator, ok
}

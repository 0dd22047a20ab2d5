package assets

import (
	log "github.com/sirupsen/logrus"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "assets"})

var _ vm.Directory = (*Registry)(nil)

// Registry is the state backed directory of component addresses, token
// mappings and release predicates. Only the owner may change it.
type Registry struct {
}

// NewRegistry creates a new instance of Registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Init sets the component addresses
func (r *Registry) Init(view *state.StoreView, addrs *types.DirectoryAddresses) {
	view.SetDirectoryAddresses(addrs)
}

func (r *Registry) Custody(view *state.StoreView) common.Address {
	return view.GetDirectoryAddresses().Custody
}

func (r *Registry) Ledger(view *state.StoreView) common.Address {
	return view.GetDirectoryAddresses().Ledger
}

func (r *Registry) Verifier(view *state.StoreView) common.Address {
	return view.GetDirectoryAddresses().Verifier
}

func (r *Registry) ChildChainAndRelay(view *state.StoreView) (common.Address, common.Address) {
	addrs := view.GetDirectoryAddresses()
	return addrs.ChildChain, addrs.Relay
}

func (r *Registry) WrappedNative(view *state.StoreView) common.Address {
	return view.GetDirectoryAddresses().WrappedNative
}

func (r *Registry) IsTokenMapped(view *state.StoreView, token common.Address) bool {
	return view.GetTokenMapping(token) != nil
}

func (r *Registry) IsNonFungible(view *state.StoreView, token common.Address) bool {
	mapping := view.GetTokenMapping(token)
	return mapping != nil && mapping.NonFungible
}

func (r *Registry) IsPredicate(view *state.StoreView, addr common.Address) bool {
	return view.IsPredicate(addr)
}

// MapToken registers a root token and its child counterpart
func (r *Registry) MapToken(env *vm.Env, rootToken, childToken common.Address, nonFungible bool) result.Result {
	if res := vm.OnlyOwner(env); res.IsError() {
		return res
	}
	if childToken.IsEmpty() {
		return result.Error("Child token must not be empty").WithErrorCode(result.CodeInvalidInput)
	}
	if existing := env.View.GetTokenMapping(rootToken); existing != nil && existing.NonFungible != nonFungible {
		return result.Error("Token %v is already mapped with another asset kind", rootToken).
			WithErrorCode(result.CodeInvalidInput)
	}
	env.View.SetTokenMapping(rootToken, &types.TokenMapping{
		ChildToken:  childToken,
		NonFungible: nonFungible,
	})
	env.Emit(types.NewEvent(types.EventTokenMapped,
		"rootToken", rootToken, "childToken", childToken, "nonFungible", nonFungible))
	logger.Infof("Mapped root token %v to child token %v, nonFungible: %v", rootToken, childToken, nonFungible)
	return result.OK
}

// SetPredicate authorizes or revokes a release predicate
func (r *Registry) SetPredicate(env *vm.Env, predicate common.Address, authorized bool) result.Result {
	if res := vm.OnlyOwner(env); res.IsError() {
		return res
	}
	if predicate.IsEmpty() {
		return result.Error("Predicate must not be empty").WithErrorCode(result.CodeInvalidInput)
	}
	env.View.SetPredicate(predicate, authorized)
	env.Emit(types.NewEvent(types.EventPredicateChanged, "predicate", predicate, "authorized", authorized))
	return result.OK
}

// UpdateChildChainAndRelay changes the child chain and relay addresses. The
// custody picks them up on its next refresh.
func (r *Registry) UpdateChildChainAndRelay(env *vm.Env, childChain, relay common.Address) result.Result {
	if res := vm.OnlyOwner(env); res.IsError() {
		return res
	}
	addrs := env.View.GetDirectoryAddresses()
	addrs.ChildChain = childChain
	addrs.Relay = relay
	env.View.SetDirectoryAddresses(addrs)
	env.Emit(types.NewEvent(types.EventDirectoryUpdated, "childChain", childChain, "relay", relay))
	return result.OK
}

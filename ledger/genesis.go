package ledger

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/crypto"
	"github.com/thetatoken/rootchain/ledger/assets"
	"github.com/thetatoken/rootchain/ledger/checkpoint"
	"github.com/thetatoken/rootchain/ledger/custody"
	exec "github.com/thetatoken/rootchain/ledger/execution"
	"github.com/thetatoken/rootchain/ledger/relay"
	st "github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

// Genesis describes the components of a ledger and the state it starts from.
type Genesis struct {
	ChainID            string
	Owner              common.Address
	Addresses          types.DirectoryAddresses
	Tokens             []assets.TokenSpec
	Predicates         []common.Address
	CheckpointInterval uint64
	EnforceContinuity  bool
	Validators         []assets.Validator
	RewardPerBlock     *big.Int
}

// DomainID returns the domain identifier checkpoint votes must carry
func (g *Genesis) DomainID() common.Hash {
	return crypto.Keccak256Hash([]byte(g.ChainID))
}

// Validate checks the genesis for missing or inconsistent entries
func (g *Genesis) Validate() error {
	if g.ChainID == "" {
		return errors.New("genesis chain id is empty")
	}
	if g.Owner.IsEmpty() {
		return errors.New("genesis owner is empty")
	}
	if g.CheckpointInterval < 2 {
		return errors.Errorf("checkpoint interval %v is below 2", g.CheckpointInterval)
	}
	addrs := []common.Address{g.Addresses.Custody, g.Addresses.Ledger, g.Addresses.Verifier,
		g.Addresses.Relay, g.Addresses.ChildChain, g.Addresses.WrappedNative}
	seen := make(map[common.Address]bool)
	for _, addr := range addrs {
		if addr.IsEmpty() {
			return errors.Errorf("genesis directory has an empty address: %+v", g.Addresses)
		}
		if seen[addr] {
			return errors.Errorf("genesis directory address %v is used twice", addr)
		}
		seen[addr] = true
	}
	if g.RewardPerBlock == nil || g.RewardPerBlock.Sign() < 0 {
		return errors.Errorf("invalid reward per block %v", g.RewardPerBlock)
	}
	return nil
}

// GenesisFromConfig reads the genesis from the loaded viper config
func GenesisFromConfig() (*Genesis, error) {
	tokens, err := assets.ParseTokenSpecs(viper.GetStringSlice(common.CfgGenesisTokens))
	if err != nil {
		return nil, err
	}
	validators, err := assets.ParseValidators(viper.GetStringSlice(common.CfgVerifierValidators))
	if err != nil {
		return nil, err
	}
	reward, ok := new(big.Int).SetString(viper.GetString(common.CfgVerifierRewardPerBlock), 10)
	if !ok {
		return nil, errors.Errorf("invalid %v: %q", common.CfgVerifierRewardPerBlock,
			viper.GetString(common.CfgVerifierRewardPerBlock))
	}
	var predicates []common.Address
	for _, p := range viper.GetStringSlice(common.CfgGenesisPredicates) {
		predicates = append(predicates, common.HexToAddress(p))
	}

	g := &Genesis{
		ChainID: viper.GetString(common.CfgGenesisDomainID),
		Owner:   common.HexToAddress(viper.GetString(common.CfgGenesisOwner)),
		Addresses: types.DirectoryAddresses{
			Custody:       common.HexToAddress(viper.GetString(common.CfgGenesisCustody)),
			Ledger:        common.HexToAddress(viper.GetString(common.CfgGenesisLedger)),
			Verifier:      common.HexToAddress(viper.GetString(common.CfgGenesisVerifier)),
			Relay:         common.HexToAddress(viper.GetString(common.CfgGenesisRelay)),
			ChildChain:    common.HexToAddress(viper.GetString(common.CfgGenesisChildChain)),
			WrappedNative: common.HexToAddress(viper.GetString(common.CfgGenesisWrappedNative)),
		},
		Tokens:             tokens,
		Predicates:         predicates,
		CheckpointInterval: viper.GetUint64(common.CfgLedgerCheckpointInterval),
		EnforceContinuity:  viper.GetBool(common.CfgLedgerEnforceContinuity),
		Validators:         validators,
		RewardPerBlock:     reward,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// newComponents builds the ledger components and registers them with a fresh
// contract registry.
func newComponents(g *Genesis) *exec.Components {
	registry := assets.NewRegistry()
	bank := assets.NewTokenBank(registry)
	c := &exec.Components{
		Registry:    registry,
		Bank:        bank,
		Checkpoints: checkpoint.NewLedger(g.Addresses.Ledger, g.CheckpointInterval, g.EnforceContinuity, registry),
		Relay:       relay.NewRelay(g.Addresses.Relay),
		Custody:     custody.NewCustody(g.Addresses.Custody, registry),
		Verifier:    assets.NewQuorumVerifier(g.Validators, g.RewardPerBlock),
		Contracts:   vm.NewContracts(),
	}
	c.Contracts.Register(g.Addresses.Custody, c.Custody)
	c.Contracts.Register(g.Addresses.Ledger, c.Checkpoints)
	c.Contracts.Register(g.Addresses.Relay, c.Relay)
	c.Contracts.Register(g.Addresses.Verifier, c.Verifier)
	c.Contracts.SetResolver(bank.Resolve)
	return c
}

// isBootstrapped tells whether the genesis was already applied to the state
func isBootstrapped(view *st.StoreView) bool {
	return !view.GetOwner().IsEmpty()
}

// bootstrap writes the genesis state into view. It runs once, on an empty state.
func bootstrap(g *Genesis, c *exec.Components, view *st.StoreView, blockTime uint64) error {
	view.SetOwner(g.Owner)
	addrs := g.Addresses
	c.Registry.Init(view, &addrs)
	c.Checkpoints.Init(view, g.DomainID())

	env := vm.NewEnv(view, g.Owner, nil, blockTime, c.Contracts)
	if res := c.Relay.Register(env, g.Addresses.Custody, g.Addresses.ChildChain); res.IsError() {
		return errors.Errorf("failed to register custody with the relay: %v", res.Message)
	}
	for _, token := range g.Tokens {
		if res := c.Registry.MapToken(env, token.RootToken, token.ChildToken, token.NonFungible); res.IsError() {
			return errors.Errorf("failed to map token %v: %v", token.RootToken, res.Message)
		}
	}
	if !c.Registry.IsTokenMapped(view, g.Addresses.WrappedNative) {
		// Native deposits escrow the wrapped token, so it is always mapped
		if res := c.Registry.MapToken(env, g.Addresses.WrappedNative, g.Addresses.WrappedNative, false); res.IsError() {
			return errors.Errorf("failed to map the wrapped native token: %v", res.Message)
		}
	}
	for _, p := range g.Predicates {
		if res := c.Registry.SetPredicate(env, p, true); res.IsError() {
			return errors.Errorf("failed to authorize predicate %v: %v", p, res.Message)
		}
	}
	c.Custody.Init(view)

	logger.Infof("Bootstrapped ledger %v: owner %v, custody %v, checkpoint interval %v",
		g.ChainID, g.Owner, g.Addresses.Custody, g.CheckpointInterval)
	return nil
}

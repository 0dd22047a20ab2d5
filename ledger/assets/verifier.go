package assets

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/crypto"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

var _ vm.SignatureVerifier = (*QuorumVerifier)(nil)

// Validator is a checkpoint signer with its voting stake
type Validator struct {
	Address common.Address
	Stake   *big.Int
}

// QuorumVerifier accepts a checkpoint vote when validators holding more than
// two thirds of the total stake signed the vote hash.
type QuorumVerifier struct {
	validators     map[common.Address]*big.Int
	totalStake     *big.Int
	rewardPerBlock *big.Int
}

// NewQuorumVerifier creates a verifier for a fixed validator set
func NewQuorumVerifier(validators []Validator, rewardPerBlock *big.Int) *QuorumVerifier {
	v := &QuorumVerifier{
		validators:     make(map[common.Address]*big.Int),
		totalStake:     big.NewInt(0),
		rewardPerBlock: new(big.Int).Set(rewardPerBlock),
	}
	for _, va := range validators {
		if va.Stake == nil || va.Stake.Sign() <= 0 {
			continue
		}
		if stake, ok := v.validators[va.Address]; ok {
			v.totalStake.Sub(v.totalStake, stake)
		}
		v.validators[va.Address] = new(big.Int).Set(va.Stake)
		v.totalStake.Add(v.totalStake, va.Stake)
	}
	return v
}

// TotalStake returns the stake of the whole validator set
func (v *QuorumVerifier) TotalStake() *big.Int {
	return new(big.Int).Set(v.totalStake)
}

// Verify checks the signatures over voteHash, records the reward state root and
// returns the proposer reward for blockSpan blocks.
func (v *QuorumVerifier) Verify(env *vm.Env, blockSpan uint64, voteHash common.Hash, rewardStateRoot common.Hash, sigs []common.Bytes) (*big.Int, error) {
	if v.totalStake.Sign() == 0 {
		return nil, errors.New("empty validator set")
	}

	signedStake := big.NewInt(0)
	signers := make(map[common.Address]bool)
	for i, raw := range sigs {
		sig, err := crypto.SignatureFromBytes(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %v", i)
		}
		signer, err := sig.RecoverSignerAddressFromHash(voteHash)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %v", i)
		}
		stake, ok := v.validators[signer]
		if !ok {
			return nil, errors.Errorf("signature %v is from %v, which is not a validator", i, signer)
		}
		if signers[signer] {
			return nil, errors.Errorf("duplicate signature from %v", signer)
		}
		signers[signer] = true
		signedStake.Add(signedStake, stake)
	}

	lhs := new(big.Int).Mul(signedStake, big.NewInt(3))
	rhs := new(big.Int).Mul(v.totalStake, big.NewInt(2))
	if lhs.Cmp(rhs) <= 0 {
		return nil, errors.Errorf("quorum not reached: signed stake %v of %v", signedStake, v.totalStake)
	}

	reward := new(big.Int).Mul(new(big.Int).SetUint64(blockSpan), v.rewardPerBlock)
	env.View.SetAccountStateRoot(rewardStateRoot)
	env.Emit(types.NewEvent(types.EventAccountStateRoot, "root", rewardStateRoot, "reward", reward))
	return reward, nil
}

// ParseValidators parses "address:stake" entries
func ParseValidators(entries []string) ([]Validator, error) {
	var validators []Validator
	for _, entry := range entries {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid validator entry %q", entry)
		}
		stake, ok := new(big.Int).SetString(parts[1], 10)
		if !ok || stake.Sign() <= 0 {
			return nil, errors.Errorf("invalid stake in validator entry %q", entry)
		}
		validators = append(validators, Validator{
			Address: common.HexToAddress(parts[0]),
			Stake:   stake,
		})
	}
	return validators, nil
}

// TokenSpec is a token mapping configured at genesis
type TokenSpec struct {
	RootToken   common.Address
	ChildToken  common.Address
	NonFungible bool
}

// ParseTokenSpecs parses "root:child" and "root:child:nft" entries
func ParseTokenSpecs(entries []string) ([]TokenSpec, error) {
	var specs []TokenSpec
	for _, entry := range entries {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, errors.Errorf("invalid token entry %q", entry)
		}
		spec := TokenSpec{
			RootToken:  common.HexToAddress(parts[0]),
			ChildToken: common.HexToAddress(parts[1]),
		}
		if len(parts) == 3 {
			if parts[2] != "nft" {
				return nil, errors.Errorf("invalid token kind in entry %q", entry)
			}
			spec.NonFungible = true
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

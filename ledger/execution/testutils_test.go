package execution

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/crypto"
	"github.com/thetatoken/rootchain/ledger/assets"
	"github.com/thetatoken/rootchain/ledger/checkpoint"
	"github.com/thetatoken/rootchain/ledger/custody"
	"github.com/thetatoken/rootchain/ledger/relay"
	st "github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
	"github.com/thetatoken/rootchain/store/database/backend"
)

const testChainID = "rootchain-test"

var (
	custodyAddr   = common.HexToAddress("0x1001")
	ledgerAddr    = common.HexToAddress("0x1002")
	relayAddr     = common.HexToAddress("0x1003")
	verifierAddr  = common.HexToAddress("0x1004")
	wrappedNative = common.HexToAddress("0x1010")
	childChain    = common.HexToAddress("0x2001")
	fungible      = common.HexToAddress("0xf1")
	nonFungible   = common.HexToAddress("0xf2")

	testDomainID = crypto.Keccak256Hash([]byte(testChainID))
)

type testAccount struct {
	key     *crypto.PrivateKey
	address common.Address
}

func newTestAccount(t *testing.T, seed string) testAccount {
	sk, pk, err := crypto.TEST_GenerateKeyPairWithSeed(seed)
	require.Nil(t, err)
	return testAccount{key: sk, address: pk.Address()}
}

type execTest struct {
	t          *testing.T
	state      *st.LedgerState
	components *Components
	executor   *Executor
	owner      testAccount
	alice      testAccount
	validators []testAccount
	blockTime  uint64
}

func newExecTest(t *testing.T) *execTest {
	et := &execTest{
		t:         t,
		state:     st.NewLedgerState(backend.NewMemDatabase()),
		owner:     newTestAccount(t, "owner"),
		alice:     newTestAccount(t, "alice"),
		blockTime: 1700000000,
	}

	var validators []assets.Validator
	for _, seed := range []string{"v1", "v2", "v3"} {
		acc := newTestAccount(t, seed)
		et.validators = append(et.validators, acc)
		validators = append(validators, assets.Validator{Address: acc.address, Stake: big.NewInt(100)})
	}

	registry := assets.NewRegistry()
	bank := assets.NewTokenBank(registry)
	components := &Components{
		Registry:    registry,
		Bank:        bank,
		Checkpoints: checkpoint.NewLedger(ledgerAddr, 10000, false, registry),
		Relay:       relay.NewRelay(relayAddr),
		Custody:     custody.NewCustody(custodyAddr, registry),
		Verifier:    assets.NewQuorumVerifier(validators, big.NewInt(10)),
		Contracts:   vm.NewContracts(),
	}
	components.Contracts.Register(custodyAddr, components.Custody)
	components.Contracts.Register(ledgerAddr, components.Checkpoints)
	components.Contracts.Register(relayAddr, components.Relay)
	components.Contracts.Register(verifierAddr, components.Verifier)
	components.Contracts.SetResolver(bank.Resolve)
	et.components = components

	view := et.state.Delivered()
	view.SetOwner(et.owner.address)
	registry.Init(view, &types.DirectoryAddresses{
		Custody:       custodyAddr,
		Ledger:        ledgerAddr,
		Verifier:      verifierAddr,
		Relay:         relayAddr,
		ChildChain:    childChain,
		WrappedNative: wrappedNative,
	})
	components.Checkpoints.Init(view, testDomainID)
	components.Custody.Init(view)
	view.SetBalance(vm.NativeToken, et.alice.address, big.NewInt(1000))

	et.executor = NewExecutor(testChainID, et.state, components)

	et.mustExec(et.owner, &types.RelayRegisterTx{RelaySender: custodyAddr, Receiver: childChain})
	et.mustExec(et.owner, &types.MapTokenTx{RootToken: fungible, ChildToken: common.HexToAddress("0xc1")})
	et.mustExec(et.owner, &types.MapTokenTx{RootToken: nonFungible, ChildToken: common.HexToAddress("0xc2"), NonFungible: true})
	et.mustExec(et.owner, &types.MapTokenTx{RootToken: wrappedNative, ChildToken: common.HexToAddress("0xc4")})
	return et
}

// exec signs tx for from with the next sequence and executes it
func (et *execTest) exec(from testAccount, tx types.Tx) *TxResult {
	header := txHeader(tx)
	header.From = from.address
	header.Sequence = et.state.Delivered().GetSequence(from.address) + 1
	require.Nil(et.t, types.SignTx(testChainID, tx, from.key))
	return et.executor.ExecuteTx(tx, et.blockTime)
}

func (et *execTest) mustExec(from testAccount, tx types.Tx) *TxResult {
	res := et.exec(from, tx)
	require.True(et.t, res.IsOK(), "%T: %v", tx, res.Message)
	return res
}

func txHeader(tx types.Tx) *types.TxHeader {
	switch t := tx.(type) {
	case *types.SubmitCheckpointTx:
		return &t.TxHeader
	case *types.DepositNativeTx:
		return &t.TxHeader
	case *types.DepositFungibleTx:
		return &t.TxHeader
	case *types.DepositNonFungibleTx:
		return &t.TxHeader
	case *types.DepositBatchTx:
		return &t.TxHeader
	case *types.ReleaseAssetTx:
		return &t.TxHeader
	case *types.RelayRegisterTx:
		return &t.TxHeader
	case *types.RelayPostTx:
		return &t.TxHeader
	case *types.RefreshCustodyTx:
		return &t.TxHeader
	case *types.SetCustodyLockTx:
		return &t.TxHeader
	case *types.SetDomainIDTx:
		return &t.TxHeader
	case *types.MapTokenTx:
		return &t.TxHeader
	case *types.SetPredicateTx:
		return &t.TxHeader
	case *types.UpdateDirectoryTx:
		return &t.TxHeader
	case *types.MintTx:
		return &t.TxHeader
	case *types.TokenTransferTx:
		return &t.TxHeader
	case *types.TokenApproveTx:
		return &t.TxHeader
	case *types.SafeTransferTx:
		return &t.TxHeader
	}
	panic("unknown tx type")
}

// checkpointTx builds a checkpoint over [start, end] signed by the given validators
func (et *execTest) checkpointTx(start, end uint64, signers ...testAccount) *types.SubmitCheckpointTx {
	proposer := et.validators[0].address
	root := common.HexToHash("0x0101")
	rewardRoot := common.HexToHash("0xbeef")
	header := []interface{}{proposer, start, end, root[:], rewardRoot.Big()}
	extraData, err := rlp.EncodeToBytes([]interface{}{header})
	require.Nil(et.t, err)

	digest := crypto.Sha256(extraData)
	vote, err := rlp.EncodeToBytes([]interface{}{testDomainID[:], uint64(checkpoint.VoteType), uint64(1), uint64(0), digest[:]})
	require.Nil(et.t, err)

	var sigs []common.Bytes
	for _, signer := range signers {
		sig, err := signer.key.SignHash(crypto.Keccak256Hash(vote))
		require.Nil(et.t, err)
		sigs = append(sigs, sig.ToBytes())
	}
	return &types.SubmitCheckpointTx{Vote: vote, Signatures: sigs, ExtraData: extraData}
}

func returnedID(t *testing.T, res *TxResult) uint64 {
	require.Len(t, res.ReturnData, 8)
	var id uint64
	for _, b := range res.ReturnData {
		id = id<<8 | uint64(b)
	}
	return id
}

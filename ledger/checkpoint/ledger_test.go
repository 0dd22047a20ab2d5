package checkpoint

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/crypto"
	"github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
	"github.com/thetatoken/rootchain/store/database/backend"
)

const testInterval = uint64(10000)

var (
	testOwner    = common.HexToAddress("0x0a")
	testCustody  = common.HexToAddress("0x1001")
	testLedger   = common.HexToAddress("0x1002")
	testVerifier = common.HexToAddress("0x1004")
	testProposer = common.HexToAddress("0x7e7e")
	testDomainID = crypto.Keccak256Hash([]byte("rootchain-test"))
)

type testDirectory struct{}

func (testDirectory) Custody(view *state.StoreView) common.Address  { return testCustody }
func (testDirectory) Ledger(view *state.StoreView) common.Address   { return testLedger }
func (testDirectory) Verifier(view *state.StoreView) common.Address { return testVerifier }
func (testDirectory) ChildChainAndRelay(view *state.StoreView) (common.Address, common.Address) {
	return common.Address{}, common.Address{}
}
func (testDirectory) WrappedNative(view *state.StoreView) common.Address { return common.Address{} }
func (testDirectory) IsTokenMapped(view *state.StoreView, token common.Address) bool {
	return false
}
func (testDirectory) IsNonFungible(view *state.StoreView, token common.Address) bool {
	return false
}
func (testDirectory) IsPredicate(view *state.StoreView, addr common.Address) bool { return false }

type testVerifierStub struct {
	calls     int
	lastSpan  uint64
	lastVote  common.Hash
	lastRoot  common.Hash
	err       error
	onVerify  func(env *vm.Env)
	rewardWei int64
}

func (v *testVerifierStub) Verify(env *vm.Env, blockSpan uint64, voteHash common.Hash, rewardStateRoot common.Hash, sigs []common.Bytes) (*big.Int, error) {
	v.calls++
	v.lastSpan = blockSpan
	v.lastVote = voteHash
	v.lastRoot = rewardStateRoot
	if v.onVerify != nil {
		v.onVerify(env)
	}
	if v.err != nil {
		return nil, v.err
	}
	return big.NewInt(v.rewardWei), nil
}

type testEnv struct {
	ledger   *Ledger
	view     *state.StoreView
	verifier *testVerifierStub
	env      *vm.Env
}

func newTestEnv(enforceContinuity bool) *testEnv {
	view := state.NewStoreView(1, backend.NewMemDatabase())
	view.SetOwner(testOwner)
	ledger := NewLedger(testLedger, testInterval, enforceContinuity, testDirectory{})
	ledger.Init(view, testDomainID)

	verifier := &testVerifierStub{rewardWei: 1000}
	contracts := vm.NewContracts()
	contracts.Register(testLedger, ledger)
	contracts.Register(testVerifier, verifier)

	return &testEnv{
		ledger:   ledger,
		view:     view,
		verifier: verifier,
		env:      vm.NewEnv(view, testProposer, nil, 1700000000, contracts),
	}
}

func encodeExtraData(proposer common.Address, start, end uint64, root common.Hash, rewardRoot common.Hash) common.Bytes {
	header := []interface{}{proposer, start, end, root[:], rewardRoot.Big()}
	raw, err := rlp.EncodeToBytes([]interface{}{header})
	if err != nil {
		panic(err)
	}
	return raw
}

func encodeVote(domainID common.Hash, voteType uint64, extraData common.Bytes) common.Bytes {
	digest := crypto.Sha256(extraData)
	raw, err := rlp.EncodeToBytes([]interface{}{domainID[:], voteType, uint64(77), uint64(0), digest[:]})
	if err != nil {
		panic(err)
	}
	return raw
}

func (te *testEnv) submit(start, end uint64) (*types.Checkpoint, result.Result) {
	extraData := encodeExtraData(testProposer, start, end, common.HexToHash("0x0101"), common.HexToHash("0xbeef"))
	vote := encodeVote(testDomainID, VoteType, extraData)
	return te.ledger.SubmitCheckpoint(te.env, vote, []common.Bytes{common.Bytes("sig")}, extraData)
}

func (te *testEnv) allocate(count uint64) (uint64, result.Result) {
	return te.ledger.AllocateDepositIDs(te.env.Call(testCustody), count)
}

func TestAllocateAcrossCheckpoint(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	te := newTestEnv(false)
	assert.Equal(uint64(0), te.ledger.CurrentCheckpointID(te.view))

	for i := uint64(1); i <= 5; i++ {
		id, res := te.allocate(1)
		require.True(res.IsOK(), res.String())
		assert.Equal(i, id)
	}

	cp, res := te.submit(1, 256)
	require.True(res.IsOK(), res.String())
	assert.Equal(uint64(1), cp.Start)
	assert.Equal(uint64(256), cp.End)
	assert.Equal(uint64(1700000000), cp.CreatedAt)
	assert.Equal(testInterval, te.ledger.CurrentCheckpointID(te.view))
	assert.Equal(cp, te.ledger.Checkpoint(te.view, testInterval))

	id, res := te.allocate(1)
	require.True(res.IsOK())
	assert.Equal(uint64(10001), id)

	_, res = te.submit(257, 300)
	require.True(res.IsOK())
	assert.Equal(2*testInterval, te.ledger.CurrentCheckpointID(te.view))
	assert.Equal(3*testInterval, te.ledger.Cursor(te.view).NextCheckpointID)
}

func TestAllocateBlockMatchesSingles(t *testing.T) {
	assert := assert.New(t)

	single := newTestEnv(false)
	block := newTestEnv(false)

	var singles []uint64
	for i := 0; i < 7; i++ {
		id, res := single.allocate(1)
		assert.True(res.IsOK())
		singles = append(singles, id)
	}
	base, res := block.allocate(7)
	assert.True(res.IsOK())
	for i, id := range singles {
		assert.Equal(base+uint64(i), id)
	}
	assert.Equal(single.ledger.Cursor(single.view), block.ledger.Cursor(block.view))
}

func TestAllocateIntervalExhausted(t *testing.T) {
	assert := assert.New(t)

	te := newTestEnv(false)
	id, res := te.allocate(testInterval - 2)
	assert.True(res.IsOK())
	assert.Equal(uint64(1), id)

	id, res = te.allocate(1)
	assert.True(res.IsOK())
	assert.Equal(testInterval-1, id)

	before := te.ledger.Cursor(te.view)
	_, res = te.allocate(1)
	assert.Equal(result.CodeIntervalExhausted, res.Code)
	assert.Equal(before, te.ledger.Cursor(te.view))

	// A fresh interval is all-or-nothing too
	_, res = te.submit(1, 10)
	assert.True(res.IsOK())
	_, res = te.allocate(testInterval)
	assert.Equal(result.CodeIntervalExhausted, res.Code)
	id, res = te.allocate(testInterval - 1)
	assert.True(res.IsOK())
	assert.Equal(testInterval+1, id)
}

func TestAllocateZeroRejected(t *testing.T) {
	assert := assert.New(t)

	te := newTestEnv(false)
	_, res := te.allocate(0)
	assert.Equal(result.CodeInvalidInput, res.Code)
	assert.Equal(uint64(1), te.ledger.Cursor(te.view).DepositCursor)

	id, res := te.allocate(1)
	assert.True(res.IsOK())
	assert.Equal(uint64(1), id)
}

func TestAllocateOnlyCustody(t *testing.T) {
	assert := assert.New(t)

	te := newTestEnv(false)
	_, res := te.ledger.AllocateDepositIDs(te.env, 1)
	assert.Equal(result.CodeUnauthorized, res.Code)
	assert.Equal(uint64(1), te.ledger.Cursor(te.view).DepositCursor)
}

func TestSubmitInvalidVoteType(t *testing.T) {
	assert := assert.New(t)

	te := newTestEnv(false)
	te.allocate(3)
	extraData := encodeExtraData(testProposer, 1, 10, common.HexToHash("0x01"), common.Hash{})
	vote := encodeVote(testDomainID, 3, extraData)

	_, res := te.ledger.SubmitCheckpoint(te.env, vote, nil, extraData)
	assert.Equal(result.CodeInvalidCommitment, res.Code)
	assert.Equal(testInterval, te.ledger.Cursor(te.view).NextCheckpointID)
	assert.Equal(uint64(4), te.ledger.Cursor(te.view).DepositCursor)
	assert.Nil(te.ledger.Checkpoint(te.view, testInterval))
	assert.Equal(0, te.verifier.calls)
	assert.Equal(0, len(te.view.Events()))
}

func TestSubmitCommitmentMismatch(t *testing.T) {
	assert := assert.New(t)

	te := newTestEnv(false)
	extraData := encodeExtraData(testProposer, 1, 10, common.HexToHash("0x01"), common.Hash{})

	wrongDomain := encodeVote(crypto.Keccak256Hash([]byte("other")), VoteType, extraData)
	_, res := te.ledger.SubmitCheckpoint(te.env, wrongDomain, nil, extraData)
	assert.Equal(result.CodeInvalidCommitment, res.Code)

	otherExtra := encodeExtraData(testProposer, 1, 11, common.HexToHash("0x01"), common.Hash{})
	vote := encodeVote(testDomainID, VoteType, otherExtra)
	_, res = te.ledger.SubmitCheckpoint(te.env, vote, nil, extraData)
	assert.Equal(result.CodeInvalidCommitment, res.Code)

	backwards := encodeExtraData(testProposer, 10, 9, common.HexToHash("0x01"), common.Hash{})
	_, res = te.ledger.SubmitCheckpoint(te.env, encodeVote(testDomainID, VoteType, backwards), nil, backwards)
	assert.Equal(result.CodeInvalidCommitment, res.Code)

	assert.Equal(testInterval, te.ledger.Cursor(te.view).NextCheckpointID)
}

func TestSubmitMalformed(t *testing.T) {
	assert := assert.New(t)

	te := newTestEnv(false)
	extraData := encodeExtraData(testProposer, 1, 10, common.HexToHash("0x01"), common.Hash{})
	vote := encodeVote(testDomainID, VoteType, extraData)

	_, res := te.ledger.SubmitCheckpoint(te.env, vote[:len(vote)-1], nil, extraData)
	assert.Equal(result.CodeMalformedInput, res.Code)

	shortVote, _ := rlp.EncodeToBytes([]interface{}{testDomainID[:], uint64(VoteType)})
	_, res = te.ledger.SubmitCheckpoint(te.env, shortVote, nil, extraData)
	assert.Equal(result.CodeMalformedInput, res.Code)

	// A root that is not padded to 32 bytes is ambiguous
	header := []interface{}{testProposer, uint64(1), uint64(10), []byte{0x01}, uint64(0)}
	loose, _ := rlp.EncodeToBytes([]interface{}{header})
	_, res = te.ledger.SubmitCheckpoint(te.env, encodeVote(testDomainID, VoteType, loose), nil, loose)
	assert.Equal(result.CodeMalformedInput, res.Code)

	assert.Equal(testInterval, te.ledger.Cursor(te.view).NextCheckpointID)
}

func TestSubmitVerifierFailure(t *testing.T) {
	assert := assert.New(t)

	te := newTestEnv(false)
	te.verifier.err = errors.New("quorum not reached")

	_, res := te.submit(1, 10)
	assert.Equal(result.CodeDependentCallFailed, res.Code)
	assert.Equal(1, te.verifier.calls)
	assert.Nil(te.ledger.Checkpoint(te.view, testInterval))
	assert.Equal(testInterval, te.ledger.Cursor(te.view).NextCheckpointID)
}

func TestSubmitVerifierArguments(t *testing.T) {
	assert := assert.New(t)

	te := newTestEnv(false)
	extraData := encodeExtraData(testProposer, 100, 355, common.HexToHash("0x01"), common.HexToHash("0xbeef"))
	vote := encodeVote(testDomainID, VoteType, extraData)
	_, res := te.ledger.SubmitCheckpoint(te.env, vote, nil, extraData)
	assert.True(res.IsOK())

	assert.Equal(uint64(255), te.verifier.lastSpan)
	assert.Equal(crypto.Keccak256Hash(vote), te.verifier.lastVote)
	assert.Equal(common.HexToHash("0xbeef"), te.verifier.lastRoot)

	events := te.view.Events()
	assert.Equal(1, len(events))
	assert.Equal(types.EventNewCheckpoint, events[0].Kind)
	reward, _ := events[0].Get("reward")
	assert.Equal("1000", reward)
	id, _ := events[0].Get("headerBlockId")
	assert.Equal("10000", id)
}

func TestSubmitContinuity(t *testing.T) {
	assert := assert.New(t)

	relaxed := newTestEnv(false)
	_, res := relaxed.submit(1, 10)
	assert.True(res.IsOK())
	_, res = relaxed.submit(50, 60)
	assert.True(res.IsOK())

	strict := newTestEnv(true)
	_, res = strict.submit(5, 10)
	assert.True(res.IsOK())
	_, res = strict.submit(50, 60)
	assert.Equal(result.CodeCheckpointDiscontinuous, res.Code)
	_, res = strict.submit(11, 60)
	assert.True(res.IsOK())
}

func TestSubmitReentrancy(t *testing.T) {
	assert := assert.New(t)

	te := newTestEnv(false)
	var inner result.Result
	te.verifier.onVerify = func(env *vm.Env) {
		_, inner = te.submit(11, 20)
	}
	_, res := te.submit(1, 10)
	assert.True(res.IsOK())
	assert.Equal(result.CodeReentrantCall, inner.Code)
	assert.Equal(2*testInterval, te.ledger.Cursor(te.view).NextCheckpointID)
}

func TestSetDomainID(t *testing.T) {
	assert := assert.New(t)

	te := newTestEnv(false)
	newDomain := crypto.Keccak256Hash([]byte("next"))
	res := te.ledger.SetDomainID(te.env, newDomain)
	assert.Equal(result.CodeUnauthorized, res.Code)

	res = te.ledger.SetDomainID(te.env.Call(testOwner), newDomain)
	assert.True(res.IsOK())
	_, res = te.submit(1, 10)
	assert.Equal(result.CodeInvalidCommitment, res.Code)
}

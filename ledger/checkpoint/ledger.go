package checkpoint

import (
	"bytes"
	"math"
	"math/big"

	log "github.com/sirupsen/logrus"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/crypto"
	"github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
	"github.com/thetatoken/rootchain/rlpreader"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "checkpoint"})

// VoteType is the only vote type accepted for checkpoint submissions
const VoteType = 2

// minimum number of elements of a vote and of a checkpoint header
const (
	minVoteFields   = 5
	minHeaderFields = 5
)

var _ vm.DepositIDAllocator = (*Ledger)(nil)

// Ledger records checkpoints and owns the deposit id space. Checkpoint ids are
// multiples of the interval; the deposit ids of an interval lie strictly between
// the id of the last checkpoint and the id the next checkpoint will take.
type Ledger struct {
	address           common.Address
	interval          uint64
	enforceContinuity bool
	directory         vm.Directory

	entered bool
}

// NewLedger creates the checkpoint ledger deployed at the address
func NewLedger(address common.Address, interval uint64, enforceContinuity bool, directory vm.Directory) *Ledger {
	if interval < 2 {
		logger.Panicf("Invalid checkpoint interval %v", interval)
	}
	return &Ledger{
		address:           address,
		interval:          interval,
		enforceContinuity: enforceContinuity,
		directory:         directory,
	}
}

// Address returns the address the ledger is deployed at
func (l *Ledger) Address() common.Address {
	return l.address
}

// Interval returns the id distance between two checkpoints
func (l *Ledger) Interval() uint64 {
	return l.interval
}

// Init sets up the cursor of an empty ledger
func (l *Ledger) Init(view *state.StoreView, domainID common.Hash) {
	if view.GetLedgerCursor() != nil {
		return
	}
	view.SetLedgerCursor(types.NewLedgerCursor(l.interval))
	view.SetDomainID(domainID)
}

// Cursor returns the allocation cursor
func (l *Ledger) Cursor(view *state.StoreView) *types.LedgerCursor {
	cursor := view.GetLedgerCursor()
	if cursor == nil {
		return types.NewLedgerCursor(l.interval)
	}
	return cursor
}

// CurrentCheckpointID returns the id of the last checkpoint, 0 before the first one
func (l *Ledger) CurrentCheckpointID(view *state.StoreView) uint64 {
	return l.Cursor(view).NextCheckpointID - l.interval
}

// Checkpoint returns the checkpoint stored under the id, or nil
func (l *Ledger) Checkpoint(view *state.StoreView, id uint64) *types.Checkpoint {
	return view.GetCheckpoint(id)
}

// SetDomainID changes the domain identifier checkpoint votes must carry
func (l *Ledger) SetDomainID(env *vm.Env, domainID common.Hash) result.Result {
	if res := vm.OnlyOwner(env); res.IsError() {
		return res
	}
	env.View.SetDomainID(domainID)
	env.Emit(types.NewEvent(types.EventDomainIDChanged, "domainID", domainID))
	return result.OK
}

// AllocateDepositIDs reserves count consecutive deposit ids and returns the first.
// Only the custody may allocate. A request that does not fit into the current
// interval is rejected as a whole, as is a request for zero ids.
func (l *Ledger) AllocateDepositIDs(env *vm.Env, count uint64) (uint64, result.Result) {
	custody := l.directory.Custody(env.View)
	if custody.IsEmpty() || env.Caller != custody {
		return 0, result.Error("%v may not allocate deposit ids", env.Caller).
			WithErrorCode(result.CodeUnauthorized)
	}

	if count == 0 {
		return 0, result.Error("Deposit id count must be positive").WithErrorCode(result.CodeInvalidInput)
	}

	cursor := l.Cursor(env.View)
	if count > l.interval-cursor.DepositCursor {
		return 0, result.Error("Deposit interval exhausted: cursor %v, requested %v, interval %v",
			cursor.DepositCursor, count, l.interval).WithErrorCode(result.CodeIntervalExhausted)
	}

	base := cursor.NextCheckpointID - l.interval + cursor.DepositCursor
	cursor.DepositCursor += count
	env.View.SetLedgerCursor(cursor)
	return base, result.OK
}

// SubmitCheckpoint validates a signed vote over extraData, stores the checkpoint
// it describes under the next checkpoint id and opens a fresh deposit interval.
func (l *Ledger) SubmitCheckpoint(env *vm.Env, vote common.Bytes, sigs []common.Bytes, extraData common.Bytes) (*types.Checkpoint, result.Result) {
	if l.entered {
		return nil, result.Error("Reentrant checkpoint submission").WithErrorCode(result.CodeReentrantCall)
	}
	l.entered = true
	defer func() { l.entered = false }()

	var cp *types.Checkpoint
	res := env.Atomic(func(env *vm.Env) result.Result {
		var res result.Result
		cp, res = l.submitCheckpoint(env, vote, sigs, extraData)
		return res
	})
	if res.IsError() {
		logger.Debugf("Rejected checkpoint: %v", res.Message)
		return nil, res
	}
	return cp, res
}

func (l *Ledger) submitCheckpoint(env *vm.Env, vote common.Bytes, sigs []common.Bytes, extraData common.Bytes) (*types.Checkpoint, result.Result) {
	if res := l.checkVote(env.View, vote, extraData); res.IsError() {
		return nil, res
	}

	cp, rewardStateRoot, res := decodeCheckpointHeader(extraData)
	if res.IsError() {
		return nil, res
	}
	if cp.End < cp.Start {
		return nil, result.Error("Checkpoint ends at %v before its start %v", cp.End, cp.Start).
			WithErrorCode(result.CodeInvalidCommitment)
	}

	cursor := l.Cursor(env.View)
	if l.enforceContinuity {
		if res := l.checkContinuity(env.View, cursor, cp); res.IsError() {
			return nil, res
		}
	}
	if cursor.NextCheckpointID > math.MaxUint64-l.interval {
		return nil, result.Error("Checkpoint id space exhausted").WithErrorCode(result.CodeIntervalExhausted)
	}

	checkpointID := cursor.NextCheckpointID
	cp.CreatedAt = env.Time
	env.View.SetCheckpoint(checkpointID, cp)

	verifierAddr := l.directory.Verifier(env.View)
	verifier, ok := env.Contracts.SignatureVerifier(verifierAddr)
	if !ok {
		return nil, result.Error("No signature verifier at %v", verifierAddr).WithErrorCode(result.CodeDependentCallFailed)
	}
	reward, err := verifier.Verify(env.Call(l.address), cp.End-cp.Start, crypto.Keccak256Hash(vote), rewardStateRoot, sigs)
	if err != nil {
		return nil, result.Error("Signature verification failed: %v", err).
			WithErrorCode(result.CodeDependentCallFailed)
	}
	if reward == nil {
		reward = big.NewInt(0)
	}

	env.Emit(types.NewEvent(types.EventNewCheckpoint,
		"proposer", cp.Proposer,
		"headerBlockId", checkpointID,
		"reward", reward,
		"start", cp.Start,
		"end", cp.End,
		"root", cp.Root))

	cursor.NextCheckpointID += l.interval
	cursor.DepositCursor = 1
	env.View.SetLedgerCursor(cursor)

	logger.Infof("Checkpoint %v accepted: blocks %v-%v, root %v, proposer %v",
		checkpointID, cp.Start, cp.End, cp.Root.Hex(), cp.Proposer)
	return cp, result.OK
}

// checkVote verifies the domain, the vote type and the extraData digest of a vote
func (l *Ledger) checkVote(view *state.StoreView, vote common.Bytes, extraData common.Bytes) result.Result {
	fields, err := decodeList(vote)
	if err != nil {
		return malformedResult("vote", err)
	}
	if len(fields) < minVoteFields {
		return result.Error("Vote has %v fields, want at least %v", len(fields), minVoteFields).
			WithErrorCode(result.CodeMalformedInput)
	}

	domain, err := fields[0].ToPayloadBytes()
	if err != nil {
		return malformedResult("vote domain", err)
	}
	domainID := view.GetDomainID()
	if crypto.Keccak256Hash(domain) != crypto.Keccak256Hash(domainID[:]) {
		return result.Error("Vote domain does not match %v", domainID.Hex()).
			WithErrorCode(result.CodeInvalidCommitment)
	}

	voteType, err := fields[1].ToUint()
	if err != nil {
		return malformedResult("vote type", err)
	}
	if voteType.Cmp(big.NewInt(VoteType)) != 0 {
		return result.Error("Vote type %v, want %v", voteType, VoteType).
			WithErrorCode(result.CodeInvalidCommitment)
	}

	extraDataDigest, err := fields[4].ToPayloadBytes()
	if err != nil {
		return malformedResult("vote extra data digest", err)
	}
	expected := crypto.Sha256(extraData)
	if !bytes.Equal(crypto.Keccak256(extraDataDigest), crypto.Keccak256(expected[:])) {
		return result.Error("Extra data digest mismatch").WithErrorCode(result.CodeInvalidCommitment)
	}
	return result.OK
}

func (l *Ledger) checkContinuity(view *state.StoreView, cursor *types.LedgerCursor, cp *types.Checkpoint) result.Result {
	if cursor.NextCheckpointID == l.interval {
		return result.OK
	}
	prev := view.GetCheckpoint(cursor.NextCheckpointID - l.interval)
	if prev == nil {
		logger.Panicf("Missing checkpoint %v", cursor.NextCheckpointID-l.interval)
	}
	if prev.End == math.MaxUint64 || cp.Start != prev.End+1 {
		return result.Error("Checkpoint starts at %v, previous ended at %v", cp.Start, prev.End).
			WithErrorCode(result.CodeCheckpointDiscontinuous)
	}
	return result.OK
}

// decodeCheckpointHeader decodes [[proposer, start, end, root, rewardStateRoot], ...]
func decodeCheckpointHeader(extraData common.Bytes) (*types.Checkpoint, common.Hash, result.Result) {
	outer, err := decodeList(extraData)
	if err != nil {
		return nil, common.Hash{}, malformedResult("extra data", err)
	}
	if len(outer) == 0 {
		return nil, common.Hash{}, result.Error("Empty extra data").WithErrorCode(result.CodeMalformedInput)
	}
	fields, err := outer[0].ToList()
	if err != nil {
		return nil, common.Hash{}, malformedResult("checkpoint header", err)
	}
	if len(fields) < minHeaderFields {
		return nil, common.Hash{}, result.Error("Checkpoint header has %v fields, want at least %v",
			len(fields), minHeaderFields).WithErrorCode(result.CodeMalformedInput)
	}

	cp := &types.Checkpoint{}
	if cp.Proposer, err = fields[0].ToAddress(); err != nil {
		return nil, common.Hash{}, malformedResult("proposer", err)
	}
	if cp.Start, err = fields[1].ToUint64(); err != nil {
		return nil, common.Hash{}, malformedResult("start", err)
	}
	if cp.End, err = fields[2].ToUint64(); err != nil {
		return nil, common.Hash{}, malformedResult("end", err)
	}
	root, err := fields[3].ToUintStrict()
	if err != nil {
		return nil, common.Hash{}, malformedResult("root", err)
	}
	cp.Root = common.BigToHash(root)
	rewardStateRoot, err := fields[4].ToUint()
	if err != nil {
		return nil, common.Hash{}, malformedResult("reward state root", err)
	}
	return cp, common.BigToHash(rewardStateRoot), result.OK
}

func decodeList(raw []byte) ([]rlpreader.Item, error) {
	item, err := rlpreader.DecodeItem(raw)
	if err != nil {
		return nil, err
	}
	return item.ToList()
}

func malformedResult(what string, err error) result.Result {
	return result.Error("Malformed %v: %v", what, err).WithErrorCode(result.CodeMalformedInput)
}

package ledger

import (
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	exec "github.com/thetatoken/rootchain/ledger/execution"
	st "github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/metrics"
	"github.com/thetatoken/rootchain/store/database"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "ledger"})

const defaultCheckpointCacheSize = 256

// Ledger serializes transaction execution over the ledger state and answers
// queries against the committed state.
type Ledger struct {
	mu sync.Mutex

	genesis    *Genesis
	state      *st.LedgerState
	components *exec.Components
	executor   *exec.Executor
	metrics    *metrics.Metrics

	checkpointCache *lru.Cache
	pending         int
	now             func() uint64
}

// Status summarizes the committed state of the ledger
type Status struct {
	ChainID             string            `json:"chain_id"`
	Height              common.JSONUint64 `json:"height"`
	StateHash           common.Hash       `json:"state_hash"`
	CurrentCheckpointID common.JSONUint64 `json:"current_checkpoint_id"`
	NextCheckpointID    common.JSONUint64 `json:"next_checkpoint_id"`
	DepositCursor       common.JSONUint64 `json:"deposit_cursor"`
	RelayCounter        common.JSONUint64 `json:"relay_counter"`
	CustodyLocked       bool              `json:"custody_locked"`
}

// NewLedger opens the ledger stored in db. An empty db is bootstrapped from the
// genesis and committed at height 1.
func NewLedger(genesis *Genesis, db database.Database, m *metrics.Metrics, cacheSize int) (*Ledger, error) {
	if err := genesis.Validate(); err != nil {
		return nil, err
	}
	if cacheSize <= 0 {
		cacheSize = defaultCheckpointCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create checkpoint cache")
	}

	components := newComponents(genesis)
	state := st.NewLedgerState(db)
	ledger := &Ledger{
		genesis:         genesis,
		state:           state,
		components:      components,
		executor:        exec.NewExecutor(genesis.ChainID, state, components),
		metrics:         m,
		checkpointCache: cache,
		now:             func() uint64 { return uint64(time.Now().Unix()) },
	}

	if !isBootstrapped(state.Committed()) {
		if err := bootstrap(genesis, components, state.Delivered(), ledger.now()); err != nil {
			return nil, err
		}
		hash := state.Commit()
		logger.Infof("Committed genesis state, hash: %v", hash.Hex())
	} else {
		domainID := state.Committed().GetDomainID()
		if domainID != genesis.DomainID() {
			logger.Warnf("Stored domain id %v differs from genesis %v", domainID.Hex(), genesis.DomainID().Hex())
		}
	}
	return ledger, nil
}

// ChainID returns the chain id transactions are signed for
func (ledger *Ledger) ChainID() string {
	return ledger.genesis.ChainID
}

// GetState returns the state of the ledger
func (ledger *Ledger) GetState() *st.LedgerState {
	return ledger.state
}

// Components returns the ledger components
func (ledger *Ledger) Components() *exec.Components {
	return ledger.components
}

// ExecuteRawTx decodes and executes an encoded transaction
func (ledger *Ledger) ExecuteRawTx(raw common.Bytes) (*exec.TxResult, error) {
	tx, err := types.TxFromBytes(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode tx")
	}
	return ledger.ExecuteTx(tx), nil
}

// ExecuteTx executes the transaction on the delivered state. Transactions run
// one at a time and each either applies fully or not at all.
func (ledger *Ledger) ExecuteTx(tx types.Tx) *exec.TxResult {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	res := ledger.executor.ExecuteTx(tx, ledger.now())
	ledger.metrics.IncTx(txTypeName(tx), res.IsOK())
	if !res.IsOK() {
		logger.Debugf("Tx %v rejected, code %v: %v", res.TxHash.Hex(), res.Code, res.Message)
		return res
	}

	ledger.pending++
	deposits := 0
	for _, ev := range res.Events {
		switch ev.Kind {
		case types.EventNewDepositRecord:
			deposits++
		case types.EventNewCheckpoint:
			ledger.metrics.IncCheckpoints()
		}
	}
	ledger.metrics.AddDeposits(deposits)
	return res
}

// HasPending tells whether executed transactions await a commit
func (ledger *Ledger) HasPending() bool {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	return ledger.pending > 0
}

// Commit persists the delivered state and returns its hash
func (ledger *Ledger) Commit() common.Hash {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	height := ledger.state.Height()
	hash := ledger.state.Commit()
	ledger.pending = 0

	committed := ledger.state.Committed()
	ledger.metrics.SetCommitted(height, committed.GetRelayCounter())
	logger.Debugf("Committed height %v, hash %v", height, hash.Hex())
	return hash
}

// GetCheckpoint returns the committed checkpoint with the id, or nil
func (ledger *Ledger) GetCheckpoint(id uint64) *types.Checkpoint {
	if cached, ok := ledger.checkpointCache.Get(id); ok {
		ledger.metrics.IncCheckpointCache(true)
		return cached.(*types.Checkpoint)
	}
	ledger.metrics.IncCheckpointCache(false)

	cp := ledger.state.Committed().GetCheckpoint(id)
	if cp != nil {
		// Committed checkpoints never change
		ledger.checkpointCache.Add(id, cp)
	}
	return cp
}

// GetDepositRecord returns the committed deposit record with the id, or nil
func (ledger *Ledger) GetDepositRecord(id uint64) *types.DepositRecord {
	return ledger.state.Committed().GetDepositRecord(id)
}

// GetRelayMessage returns the committed relay message with the id, or nil
func (ledger *Ledger) GetRelayMessage(id uint64) *types.RelayMessage {
	return ledger.state.Committed().GetRelayMessage(id)
}

// GetRelayCounter returns the id of the last committed relay message
func (ledger *Ledger) GetRelayCounter() uint64 {
	return ledger.state.Committed().GetRelayCounter()
}

// GetRelayMessages returns up to limit committed relay messages with ids
// greater than after, in id order.
func (ledger *Ledger) GetRelayMessages(after uint64, limit int) []*types.RelayMessage {
	view := ledger.state.Committed()
	counter := view.GetRelayCounter()
	var msgs []*types.RelayMessage
	for id := after + 1; id <= counter && id > after && len(msgs) < limit; id++ {
		msg := view.GetRelayMessage(id)
		if msg == nil {
			logger.Panicf("Missing relay message %v, counter is %v", id, counter)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// GetBalance returns the committed fungible balance of holder. The empty token
// is the native currency.
func (ledger *Ledger) GetBalance(token, holder common.Address) *big.Int {
	return ledger.state.Committed().GetBalance(token, holder)
}

// GetTokenOwner returns the committed owner of a non-fungible token instance
func (ledger *Ledger) GetTokenOwner(token common.Address, id *big.Int) common.Address {
	return ledger.state.Committed().GetTokenOwner(token, id)
}

// GetTokenMapping returns the committed child token mapping of a root token, or nil
func (ledger *Ledger) GetTokenMapping(token common.Address) *types.TokenMapping {
	return ledger.state.Committed().GetTokenMapping(token)
}

// GetSequence returns the sequence of the last tx executed from addr, including
// txs not yet committed. The next tx from addr must carry this value plus one.
func (ledger *Ledger) GetSequence(addr common.Address) uint64 {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	return ledger.state.Delivered().GetSequence(addr)
}

// GetCursor returns the committed id allocation cursor
func (ledger *Ledger) GetCursor() *types.LedgerCursor {
	return ledger.components.Checkpoints.Cursor(ledger.state.Committed())
}

// GetStatus summarizes the committed state
func (ledger *Ledger) GetStatus() *Status {
	view := ledger.state.Committed()
	cursor := ledger.components.Checkpoints.Cursor(view)
	return &Status{
		ChainID:             ledger.genesis.ChainID,
		Height:              common.JSONUint64(view.Height()),
		StateHash:           view.Hash(),
		CurrentCheckpointID: common.JSONUint64(cursor.NextCheckpointID - ledger.genesis.CheckpointInterval),
		NextCheckpointID:    common.JSONUint64(cursor.NextCheckpointID),
		DepositCursor:       common.JSONUint64(cursor.DepositCursor),
		RelayCounter:        common.JSONUint64(view.GetRelayCounter()),
		CustodyLocked:       view.GetCustodyConfig().Locked,
	}
}

func txTypeName(tx types.Tx) string {
	name := fmt.Sprintf("%T", tx)
	return name[strings.LastIndex(name, ".")+1:]
}

// ResultError converts a failed tx result into an error, nil for success
func ResultError(res *exec.TxResult) error {
	if res.IsOK() {
		return nil
	}
	return result.Result{Code: res.Code, Message: res.Message}.Err()
}

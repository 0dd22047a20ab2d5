package state

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/crypto"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/store"
	"github.com/thetatoken/rootchain/store/database"
)

//
// ------------------------- StoreView -------------------------
//

// StoreView is a write-back overlay over the database or over a parent view.
// Writes stay in the view until they are merged into the parent (Merge) or, for
// a root view, written to the database (Save). Dropping a branch discards its
// writes and events.
type StoreView struct {
	height uint64 // block height
	db     database.Database
	parent *StoreView

	cache  map[string]common.Bytes // nil value marks a deletion
	events []types.Event
}

// NewStoreView creates a root view over the database
func NewStoreView(height uint64, db database.Database) *StoreView {
	return &StoreView{
		height: height,
		db:     db,
		cache:  make(map[string]common.Bytes),
	}
}

// Branch returns a child view whose writes are invisible to sv until merged
func (sv *StoreView) Branch() *StoreView {
	return &StoreView{
		height: sv.height,
		db:     sv.db,
		parent: sv,
		cache:  make(map[string]common.Bytes),
	}
}

// Merge applies the writes and events of a branch to its parent
func (sv *StoreView) Merge() {
	if sv.parent == nil {
		panic("Cannot merge a root StoreView")
	}
	for k, v := range sv.cache {
		sv.parent.cache[k] = v
	}
	sv.parent.events = append(sv.parent.events, sv.events...)
	sv.cache = make(map[string]common.Bytes)
	sv.events = nil
}

// Height returns the block height corresponding to the stored state
func (sv *StoreView) Height() uint64 {
	return sv.height
}

// IncrementHeight increments the block height by 1
func (sv *StoreView) IncrementHeight() {
	sv.height++
}

// Save writes a root view to the database in one batch and returns the new
// state hash, which chains the previous hash with the written entries.
func (sv *StoreView) Save() common.Hash {
	if sv.parent != nil {
		panic("Cannot save a branched StoreView")
	}

	keys := make([]string, 0, len(sv.cache))
	for k := range sv.cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	prevHash := sv.Hash()
	chunks := [][]byte{prevHash[:]}
	batch := sv.db.NewBatch()
	for _, k := range keys {
		v := sv.cache[k]
		chunks = append(chunks, []byte(k), v)
		var err error
		if v == nil {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), v)
		}
		if err != nil {
			panic(fmt.Sprintf("Failed to save the StoreView: %v", err))
		}
	}
	hash := crypto.Keccak256Hash(chunks...)

	if err := batch.Put(StateHashKey(), hash[:]); err != nil {
		panic(fmt.Sprintf("Failed to save the StoreView: %v", err))
	}
	if err := batch.Put(HeightKey(), common.Uint64ToBytes(sv.height)); err != nil {
		panic(fmt.Sprintf("Failed to save the StoreView: %v", err))
	}
	if err := batch.Write(); err != nil {
		panic(fmt.Sprintf("Failed to save the StoreView: %v", err))
	}

	sv.cache = make(map[string]common.Bytes)
	sv.events = nil
	return hash
}

// Hash returns the state hash of the last save
func (sv *StoreView) Hash() common.Hash {
	return common.BytesToHash(sv.Get(StateHashKey()))
}

// Get returns the value corresponding the key, or nil if absent
func (sv *StoreView) Get(key common.Bytes) common.Bytes {
	if value, ok := sv.cache[string(key)]; ok {
		return value
	}
	if sv.parent != nil {
		return sv.parent.Get(key)
	}
	value, err := sv.db.Get(key)
	if err == store.ErrKeyNotFound {
		return nil
	}
	if err != nil {
		panic(fmt.Sprintf("Failed to read key %X: %v", []byte(key), err))
	}
	return value
}

// Set sets the value of the key
func (sv *StoreView) Set(key common.Bytes, value common.Bytes) {
	if value == nil {
		value = common.Bytes{}
	}
	sv.cache[string(key)] = common.CopyBytes(value)
}

// Delete removes the key
func (sv *StoreView) Delete(key common.Bytes) {
	sv.cache[string(key)] = nil
}

// Emit records an event of the current operation
func (sv *StoreView) Emit(event types.Event) {
	sv.events = append(sv.events, event)
}

// Events returns the events recorded in this view and not yet merged
func (sv *StoreView) Events() []types.Event {
	return sv.events
}

func (sv *StoreView) getRecord(key common.Bytes, record interface{}) bool {
	data := sv.Get(key)
	if len(data) == 0 {
		return false
	}
	if err := types.FromBytes(data, record); err != nil {
		panic(fmt.Sprintf("Error reading record %X error: %v", []byte(data), err.Error()))
	}
	return true
}

func (sv *StoreView) setRecord(key common.Bytes, record interface{}) {
	data, err := types.ToBytes(record)
	if err != nil {
		panic(fmt.Sprintf("Error writing record %v error: %v", record, err.Error()))
	}
	sv.Set(key, data)
}

func (sv *StoreView) getBig(key common.Bytes) *big.Int {
	data := sv.Get(key)
	return new(big.Int).SetBytes(data)
}

func (sv *StoreView) setBig(key common.Bytes, value *big.Int) {
	if value.Sign() == 0 {
		sv.Delete(key)
		return
	}
	sv.Set(key, value.Bytes())
}

func (sv *StoreView) getUint64(key common.Bytes) uint64 {
	return new(big.Int).SetBytes(sv.Get(key)).Uint64()
}

func (sv *StoreView) setUint64(key common.Bytes, value uint64) {
	sv.Set(key, common.Uint64ToBytes(value))
}

func (sv *StoreView) getAddress(key common.Bytes) common.Address {
	return common.BytesToAddress(sv.Get(key))
}

func (sv *StoreView) setAddress(key common.Bytes, addr common.Address) {
	if addr.IsEmpty() {
		sv.Delete(key)
		return
	}
	sv.Set(key, addr[:])
}

package state

import (
	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/store/database"
)

//
// ------------------------- State -------------------------
//

type LedgerState struct {
	db database.Database

	delivered *StoreView // for actually applying the transactions
}

// NewLedgerState creates a ledger state that resumes from the last committed height.
func NewLedgerState(db database.Database) *LedgerState {
	s := &LedgerState{
		db: db,
	}
	committed := NewStoreView(0, db)
	height := committed.getUint64(HeightKey())
	s.delivered = NewStoreView(height+1, db)
	return s
}

// DB returns the database instance of the ledger state
func (s *LedgerState) DB() database.Database {
	return s.db
}

// Height returns the height the delivered transactions will be committed at
func (s *LedgerState) Height() uint64 {
	return s.delivered.Height()
}

// Delivered returns a view of current state that contains both committed and delivered
// transcations.
func (s *LedgerState) Delivered() *StoreView {
	return s.delivered
}

// Committed returns a read-only view of the committed state.
func (s *LedgerState) Committed() *StoreView {
	committed := NewStoreView(0, s.db)
	committed.height = committed.getUint64(HeightKey())
	return committed
}

// Commit stores the delivered view and returns the hash for the commit.
func (s *LedgerState) Commit() common.Hash {
	hash := s.delivered.Save()
	s.delivered.IncrementHeight()
	return hash
}

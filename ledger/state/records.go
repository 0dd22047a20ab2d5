package state

import (
	"math/big"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/ledger/types"
)

// GetOwner returns the privileged owner
func (sv *StoreView) GetOwner() common.Address {
	return sv.getAddress(OwnerKey())
}

// SetOwner sets the privileged owner
func (sv *StoreView) SetOwner(owner common.Address) {
	sv.setAddress(OwnerKey(), owner)
}

// GetDomainID returns the checkpoint domain identifier
func (sv *StoreView) GetDomainID() common.Hash {
	return common.BytesToHash(sv.Get(DomainIDKey()))
}

// SetDomainID sets the checkpoint domain identifier
func (sv *StoreView) SetDomainID(id common.Hash) {
	sv.Set(DomainIDKey(), id[:])
}

// GetLedgerCursor returns the allocation cursor, or nil before genesis
func (sv *StoreView) GetLedgerCursor() *types.LedgerCursor {
	cursor := &types.LedgerCursor{}
	if !sv.getRecord(LedgerCursorKey(), cursor) {
		return nil
	}
	return cursor
}

// SetLedgerCursor sets the allocation cursor
func (sv *StoreView) SetLedgerCursor(cursor *types.LedgerCursor) {
	sv.setRecord(LedgerCursorKey(), cursor)
}

// GetCheckpoint returns the checkpoint stored under the id, or nil
func (sv *StoreView) GetCheckpoint(id uint64) *types.Checkpoint {
	cp := &types.Checkpoint{}
	if !sv.getRecord(CheckpointKey(id), cp) {
		return nil
	}
	return cp
}

// SetCheckpoint stores a checkpoint under the id
func (sv *StoreView) SetCheckpoint(id uint64, cp *types.Checkpoint) {
	sv.setRecord(CheckpointKey(id), cp)
}

// GetDepositRecord returns the deposit record with the id, or nil
func (sv *StoreView) GetDepositRecord(id uint64) *types.DepositRecord {
	record := &types.DepositRecord{}
	if !sv.getRecord(DepositRecordKey(id), record) {
		return nil
	}
	return record
}

// SetDepositRecord stores a deposit record under the id
func (sv *StoreView) SetDepositRecord(id uint64, record *types.DepositRecord) {
	sv.setRecord(DepositRecordKey(id), record)
}

// GetRelaySender returns the registered sender of a receiver
func (sv *StoreView) GetRelaySender(receiver common.Address) common.Address {
	return sv.getAddress(RelaySenderKey(receiver))
}

// SetRelaySender registers the sender of a receiver
func (sv *StoreView) SetRelaySender(receiver, sender common.Address) {
	sv.setAddress(RelaySenderKey(receiver), sender)
}

// GetRelayCounter returns the id of the last posted relay message
func (sv *StoreView) GetRelayCounter() uint64 {
	return sv.getUint64(RelayCounterKey())
}

// SetRelayCounter sets the id of the last posted relay message
func (sv *StoreView) SetRelayCounter(counter uint64) {
	sv.setUint64(RelayCounterKey(), counter)
}

// GetRelayMessage returns the relay message with the id, or nil
func (sv *StoreView) GetRelayMessage(id uint64) *types.RelayMessage {
	msg := &types.RelayMessage{}
	if !sv.getRecord(RelayMessageKey(id), msg) {
		return nil
	}
	return msg
}

// SetRelayMessage stores a relay message under its id
func (sv *StoreView) SetRelayMessage(msg *types.RelayMessage) {
	sv.setRecord(RelayMessageKey(msg.ID), msg)
}

// GetCustodyConfig returns the custody's cached directory values
func (sv *StoreView) GetCustodyConfig() *types.CustodyConfig {
	cfg := &types.CustodyConfig{}
	sv.getRecord(CustodyConfigKey(), cfg)
	return cfg
}

// SetCustodyConfig sets the custody's cached directory values
func (sv *StoreView) SetCustodyConfig(cfg *types.CustodyConfig) {
	sv.setRecord(CustodyConfigKey(), cfg)
}

// GetDirectoryAddresses returns the directory's component addresses
func (sv *StoreView) GetDirectoryAddresses() *types.DirectoryAddresses {
	addrs := &types.DirectoryAddresses{}
	sv.getRecord(DirectoryAddressesKey(), addrs)
	return addrs
}

// SetDirectoryAddresses sets the directory's component addresses
func (sv *StoreView) SetDirectoryAddresses(addrs *types.DirectoryAddresses) {
	sv.setRecord(DirectoryAddressesKey(), addrs)
}

// GetTokenMapping returns the directory entry of a root token, or nil if unmapped
func (sv *StoreView) GetTokenMapping(token common.Address) *types.TokenMapping {
	mapping := &types.TokenMapping{}
	if !sv.getRecord(TokenMappingKey(token), mapping) {
		return nil
	}
	return mapping
}

// SetTokenMapping sets the directory entry of a root token
func (sv *StoreView) SetTokenMapping(token common.Address, mapping *types.TokenMapping) {
	sv.setRecord(TokenMappingKey(token), mapping)
}

// IsPredicate returns whether the address may release escrowed assets
func (sv *StoreView) IsPredicate(addr common.Address) bool {
	return len(sv.Get(PredicateKey(addr))) > 0
}

// SetPredicate authorizes or revokes a release predicate
func (sv *StoreView) SetPredicate(addr common.Address, authorized bool) {
	if authorized {
		sv.Set(PredicateKey(addr), common.Bytes{1})
	} else {
		sv.Delete(PredicateKey(addr))
	}
}

// GetSequence returns the sequence of the last tx accepted from addr
func (sv *StoreView) GetSequence(addr common.Address) uint64 {
	return sv.getUint64(SequenceKey(addr))
}

// SetSequence sets the sequence of the last tx accepted from addr
func (sv *StoreView) SetSequence(addr common.Address, seq uint64) {
	sv.setUint64(SequenceKey(addr), seq)
}

// GetBalance returns the fungible balance of a holder. The empty token is the native currency.
func (sv *StoreView) GetBalance(token, holder common.Address) *big.Int {
	return sv.getBig(BalanceKey(token, holder))
}

// SetBalance sets the fungible balance of a holder
func (sv *StoreView) SetBalance(token, holder common.Address, value *big.Int) {
	sv.setBig(BalanceKey(token, holder), value)
}

// GetAllowance returns the amount spender may move on behalf of owner
func (sv *StoreView) GetAllowance(token, owner, spender common.Address) *big.Int {
	return sv.getBig(AllowanceKey(token, owner, spender))
}

// SetAllowance sets the amount spender may move on behalf of owner
func (sv *StoreView) SetAllowance(token, owner, spender common.Address, value *big.Int) {
	sv.setBig(AllowanceKey(token, owner, spender), value)
}

// GetTokenOwner returns the owner of a non-fungible token instance
func (sv *StoreView) GetTokenOwner(token common.Address, id *big.Int) common.Address {
	return sv.getAddress(TokenOwnerKey(token, common.BigToHash(id)))
}

// SetTokenOwner sets the owner of a non-fungible token instance
func (sv *StoreView) SetTokenOwner(token common.Address, id *big.Int, owner common.Address) {
	sv.setAddress(TokenOwnerKey(token, common.BigToHash(id)), owner)
}

// GetTokenApproval returns the approved operator of a token instance
func (sv *StoreView) GetTokenApproval(token common.Address, id *big.Int) common.Address {
	return sv.getAddress(TokenApprovalKey(token, common.BigToHash(id)))
}

// SetTokenApproval sets the approved operator of a token instance
func (sv *StoreView) SetTokenApproval(token common.Address, id *big.Int, operator common.Address) {
	sv.setAddress(TokenApprovalKey(token, common.BigToHash(id)), operator)
}

// GetAccountStateRoot returns the last reward account state root
func (sv *StoreView) GetAccountStateRoot() common.Hash {
	return common.BytesToHash(sv.Get(AccountStateRootKey()))
}

// SetAccountStateRoot sets the reward account state root
func (sv *StoreView) SetAccountStateRoot(root common.Hash) {
	sv.Set(AccountStateRootKey(), root[:])
}

package state

import "github.com/thetatoken/rootchain/common"

//
// ------------------------- Ledger State Keys -------------------------
//

// HeightKey returns the key of the committed height
func HeightKey() common.Bytes {
	return common.Bytes("ls/height")
}

// StateHashKey returns the key of the committed state hash
func StateHashKey() common.Bytes {
	return common.Bytes("ls/hash")
}

// OwnerKey returns the key of the privileged owner
func OwnerKey() common.Bytes {
	return common.Bytes("ls/owner")
}

// DomainIDKey returns the key of the checkpoint domain identifier
func DomainIDKey() common.Bytes {
	return common.Bytes("ls/domain")
}

// LedgerCursorKey returns the key of the checkpoint ledger cursor
func LedgerCursorKey() common.Bytes {
	return common.Bytes("ls/cursor")
}

// CheckpointKey constructs the state key for the given checkpoint id
func CheckpointKey(id uint64) common.Bytes {
	return append(common.Bytes("ls/cp/"), common.Uint64ToBytes(id)...)
}

// DepositRecordKey constructs the state key for the given deposit id
func DepositRecordKey(id uint64) common.Bytes {
	return append(common.Bytes("ls/dep/"), common.Uint64ToBytes(id)...)
}

// RelaySenderKey constructs the state key of the registered sender of a receiver
func RelaySenderKey(receiver common.Address) common.Bytes {
	return append(common.Bytes("ls/rr/"), receiver[:]...)
}

// RelayCounterKey returns the key of the global relay sequence counter
func RelayCounterKey() common.Bytes {
	return common.Bytes("ls/rc")
}

// RelayMessageKey constructs the state key of the relay message with the given sequence id
func RelayMessageKey(id uint64) common.Bytes {
	return append(common.Bytes("ls/rm/"), common.Uint64ToBytes(id)...)
}

// CustodyConfigKey returns the key of the custody's cached directory values
func CustodyConfigKey() common.Bytes {
	return common.Bytes("ls/cc")
}

// DirectoryAddressesKey returns the key of the directory's component addresses
func DirectoryAddressesKey() common.Bytes {
	return common.Bytes("ls/dir/addrs")
}

// TokenMappingKey constructs the key of the directory entry of a root token
func TokenMappingKey(token common.Address) common.Bytes {
	return append(common.Bytes("ls/dir/tm/"), token[:]...)
}

// PredicateKey constructs the key of the predicate flag of an address
func PredicateKey(addr common.Address) common.Bytes {
	return append(common.Bytes("ls/dir/pr/"), addr[:]...)
}

// BalanceKey constructs the key of a fungible balance. The empty token is the native currency.
func BalanceKey(token, holder common.Address) common.Bytes {
	key := append(common.Bytes("ls/tb/b/"), token[:]...)
	return append(key, holder[:]...)
}

// AllowanceKey constructs the key of a fungible allowance
func AllowanceKey(token, owner, spender common.Address) common.Bytes {
	key := append(common.Bytes("ls/tb/a/"), token[:]...)
	key = append(key, owner[:]...)
	return append(key, spender[:]...)
}

// TokenOwnerKey constructs the key of the owner of a non-fungible token instance
func TokenOwnerKey(token common.Address, id common.Hash) common.Bytes {
	key := append(common.Bytes("ls/tb/o/"), token[:]...)
	return append(key, id[:]...)
}

// TokenApprovalKey constructs the key of the approved operator of a token instance
func TokenApprovalKey(token common.Address, id common.Hash) common.Bytes {
	key := append(common.Bytes("ls/tb/p/"), token[:]...)
	return append(key, id[:]...)
}

// SequenceKey constructs the key of the last accepted tx sequence of a sender
func SequenceKey(addr common.Address) common.Bytes {
	return append(common.Bytes("ls/seq/"), addr[:]...)
}

// AccountStateRootKey returns the key of the latest reward account state root
func AccountStateRootKey() common.Bytes {
	return common.Bytes("ls/qv/asr")
}

package execution

import (
	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/custody"
	st "github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

var _ TxExecutor = (*DepositNativeTxExecutor)(nil)

// ------------------------------- DepositNative Transaction -----------------------------------

// DepositNativeTxExecutor implements the TxExecutor interface
type DepositNativeTxExecutor struct {
	custody *custody.Custody
}

// NewDepositNativeTxExecutor creates a new instance of DepositNativeTxExecutor
func NewDepositNativeTxExecutor(custody *custody.Custody) *DepositNativeTxExecutor {
	return &DepositNativeTxExecutor{
		custody: custody,
	}
}

func (exec *DepositNativeTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.DepositNativeTx)
	if res := validateValue(tx.Value, "value"); res.IsError() {
		return res
	}
	if tx.Value.Sign() == 0 {
		return result.Error("Deposit value must be positive").WithErrorCode(result.CodeInvalidInput)
	}
	if !vm.CanTransfer(view, tx.From, tx.Value) {
		return result.Error("Insufficient native balance of %v", tx.From).WithErrorCode(result.CodeInsufficientFunds)
	}
	return result.OK
}

func (exec *DepositNativeTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.DepositNativeTx)

	// The attached value reaches the custody before it runs
	if res := vm.Transfer(env.View, tx.From, exec.custody.Address(), tx.Value); res.IsError() {
		return nil, res
	}
	id, res := exec.custody.DepositNative(env.CallWithValue(tx.From, tx.Value))
	if res.IsError() {
		return nil, res
	}
	return encodeID(id), result.OK
}

var _ TxExecutor = (*DepositFungibleTxExecutor)(nil)

// ------------------------------- DepositFungible Transaction -----------------------------------

// DepositFungibleTxExecutor implements the TxExecutor interface
type DepositFungibleTxExecutor struct {
	custody *custody.Custody
}

// NewDepositFungibleTxExecutor creates a new instance of DepositFungibleTxExecutor
func NewDepositFungibleTxExecutor(custody *custody.Custody) *DepositFungibleTxExecutor {
	return &DepositFungibleTxExecutor{
		custody: custody,
	}
}

func (exec *DepositFungibleTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.DepositFungibleTx)
	if res := validateAddress(tx.Token, "token"); res.IsError() {
		return res
	}
	return validateValue(tx.Amount, "amount")
}

func (exec *DepositFungibleTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.DepositFungibleTx)
	id, res := exec.custody.DepositFungibleForUser(env, tx.Token, userOrSender(tx.User, tx.From), tx.Amount)
	if res.IsError() {
		return nil, res
	}
	return encodeID(id), result.OK
}

var _ TxExecutor = (*DepositNonFungibleTxExecutor)(nil)

// ------------------------------- DepositNonFungible Transaction -----------------------------------

// DepositNonFungibleTxExecutor implements the TxExecutor interface
type DepositNonFungibleTxExecutor struct {
	custody *custody.Custody
}

// NewDepositNonFungibleTxExecutor creates a new instance of DepositNonFungibleTxExecutor
func NewDepositNonFungibleTxExecutor(custody *custody.Custody) *DepositNonFungibleTxExecutor {
	return &DepositNonFungibleTxExecutor{
		custody: custody,
	}
}

func (exec *DepositNonFungibleTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.DepositNonFungibleTx)
	if res := validateAddress(tx.Token, "token"); res.IsError() {
		return res
	}
	return validateValue(tx.TokenID, "token id")
}

func (exec *DepositNonFungibleTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.DepositNonFungibleTx)
	id, res := exec.custody.DepositNonFungibleForUser(env, tx.Token, userOrSender(tx.User, tx.From), tx.TokenID)
	if res.IsError() {
		return nil, res
	}
	return encodeID(id), result.OK
}

var _ TxExecutor = (*DepositBatchTxExecutor)(nil)

// ------------------------------- DepositBatch Transaction -----------------------------------

// DepositBatchTxExecutor implements the TxExecutor interface
type DepositBatchTxExecutor struct {
	custody *custody.Custody
}

// NewDepositBatchTxExecutor creates a new instance of DepositBatchTxExecutor
func NewDepositBatchTxExecutor(custody *custody.Custody) *DepositBatchTxExecutor {
	return &DepositBatchTxExecutor{
		custody: custody,
	}
}

func (exec *DepositBatchTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.DepositBatchTx)
	if len(tx.Tokens) != len(tx.Values) {
		return result.Error("Batch has %v tokens but %v values", len(tx.Tokens), len(tx.Values)).
			WithErrorCode(result.CodeInvalidInput)
	}
	if len(tx.Tokens) == 0 {
		return result.Error("Batch is empty").WithErrorCode(result.CodeInvalidInput)
	}
	for _, value := range tx.Values {
		if res := validateValue(value, "value"); res.IsError() {
			return res
		}
	}
	return result.OK
}

func (exec *DepositBatchTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.DepositBatchTx)
	base, res := exec.custody.DepositBatch(env, tx.Tokens, tx.Values, userOrSender(tx.User, tx.From))
	if res.IsError() {
		return nil, res
	}
	return encodeID(base), result.OK
}

var _ TxExecutor = (*ReleaseAssetTxExecutor)(nil)

// ------------------------------- ReleaseAsset Transaction -----------------------------------

// ReleaseAssetTxExecutor implements the TxExecutor interface
type ReleaseAssetTxExecutor struct {
	custody *custody.Custody
}

// NewReleaseAssetTxExecutor creates a new instance of ReleaseAssetTxExecutor
func NewReleaseAssetTxExecutor(custody *custody.Custody) *ReleaseAssetTxExecutor {
	return &ReleaseAssetTxExecutor{
		custody: custody,
	}
}

func (exec *ReleaseAssetTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.ReleaseAssetTx)
	if res := validateAddress(tx.User, "user"); res.IsError() {
		return res
	}
	return validateValue(tx.Value, "value")
}

func (exec *ReleaseAssetTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.ReleaseAssetTx)
	return nil, exec.custody.ReleaseAsset(env, tx.Token, tx.User, tx.Value)
}

var _ TxExecutor = (*RefreshCustodyTxExecutor)(nil)

// ------------------------------- RefreshCustody Transaction -----------------------------------

// RefreshCustodyTxExecutor implements the TxExecutor interface
type RefreshCustodyTxExecutor struct {
	custody *custody.Custody
}

// NewRefreshCustodyTxExecutor creates a new instance of RefreshCustodyTxExecutor
func NewRefreshCustodyTxExecutor(custody *custody.Custody) *RefreshCustodyTxExecutor {
	return &RefreshCustodyTxExecutor{
		custody: custody,
	}
}

func (exec *RefreshCustodyTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	return result.OK
}

func (exec *RefreshCustodyTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	return nil, exec.custody.RefreshChildChainAndRelay(env)
}

var _ TxExecutor = (*SetCustodyLockTxExecutor)(nil)

// ------------------------------- SetCustodyLock Transaction -----------------------------------

// SetCustodyLockTxExecutor implements the TxExecutor interface
type SetCustodyLockTxExecutor struct {
	custody *custody.Custody
}

// NewSetCustodyLockTxExecutor creates a new instance of SetCustodyLockTxExecutor
func NewSetCustodyLockTxExecutor(custody *custody.Custody) *SetCustodyLockTxExecutor {
	return &SetCustodyLockTxExecutor{
		custody: custody,
	}
}

func (exec *SetCustodyLockTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	return result.OK
}

func (exec *SetCustodyLockTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.SetCustodyLockTx)
	return nil, exec.custody.SetLocked(env, tx.Locked)
}

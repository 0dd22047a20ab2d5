package execution

import (
	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/assets"
	st "github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

var _ TxExecutor = (*MintTxExecutor)(nil)

// ------------------------------- Mint Transaction -----------------------------------

// MintTxExecutor implements the TxExecutor interface. The zero token address
// mints native currency.
type MintTxExecutor struct {
	bank *assets.TokenBank
}

// NewMintTxExecutor creates a new instance of MintTxExecutor
func NewMintTxExecutor(bank *assets.TokenBank) *MintTxExecutor {
	return &MintTxExecutor{
		bank: bank,
	}
}

func (exec *MintTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.MintTx)
	if res := validateAddress(tx.To, "recipient"); res.IsError() {
		return res
	}
	return validateValue(tx.Value, "value")
}

func (exec *MintTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.MintTx)
	return nil, result.FromError(exec.bank.At(tx.Token).Mint(env, tx.To, tx.Value))
}

var _ TxExecutor = (*TokenTransferTxExecutor)(nil)

// ------------------------------- TokenTransfer Transaction -----------------------------------

// TokenTransferTxExecutor implements the TxExecutor interface. The zero token
// address moves the native currency.
type TokenTransferTxExecutor struct {
	bank *assets.TokenBank
}

// NewTokenTransferTxExecutor creates a new instance of TokenTransferTxExecutor
func NewTokenTransferTxExecutor(bank *assets.TokenBank) *TokenTransferTxExecutor {
	return &TokenTransferTxExecutor{
		bank: bank,
	}
}

func (exec *TokenTransferTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.TokenTransferTx)
	if res := validateAddress(tx.To, "recipient"); res.IsError() {
		return res
	}
	if res := validateValue(tx.Value, "value"); res.IsError() {
		return res
	}
	if tx.Token == vm.NativeToken && !vm.CanTransfer(view, tx.From, tx.Value) {
		return result.Error("Insufficient native balance of %v", tx.From).WithErrorCode(result.CodeInsufficientFunds)
	}
	return result.OK
}

func (exec *TokenTransferTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.TokenTransferTx)
	return nil, result.FromError(exec.bank.At(tx.Token).Transfer(env, tx.To, tx.Value))
}

var _ TxExecutor = (*TokenApproveTxExecutor)(nil)

// ------------------------------- TokenApprove Transaction -----------------------------------

// TokenApproveTxExecutor implements the TxExecutor interface
type TokenApproveTxExecutor struct {
	bank *assets.TokenBank
}

// NewTokenApproveTxExecutor creates a new instance of TokenApproveTxExecutor
func NewTokenApproveTxExecutor(bank *assets.TokenBank) *TokenApproveTxExecutor {
	return &TokenApproveTxExecutor{
		bank: bank,
	}
}

func (exec *TokenApproveTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.TokenApproveTx)
	if res := validateAddress(tx.Token, "token"); res.IsError() {
		return res
	}
	if res := validateAddress(tx.Spender, "spender"); res.IsError() {
		return res
	}
	return validateValue(tx.Value, "value")
}

func (exec *TokenApproveTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.TokenApproveTx)
	return nil, result.FromError(exec.bank.At(tx.Token).Approve(env, tx.Spender, tx.Value))
}

var _ TxExecutor = (*SafeTransferTxExecutor)(nil)

// ------------------------------- SafeTransfer Transaction -----------------------------------

// SafeTransferTxExecutor implements the TxExecutor interface. Sending to the
// custody this way is a passive deposit.
type SafeTransferTxExecutor struct {
	bank *assets.TokenBank
}

// NewSafeTransferTxExecutor creates a new instance of SafeTransferTxExecutor
func NewSafeTransferTxExecutor(bank *assets.TokenBank) *SafeTransferTxExecutor {
	return &SafeTransferTxExecutor{
		bank: bank,
	}
}

func (exec *SafeTransferTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.SafeTransferTx)
	if res := validateAddress(tx.Token, "token"); res.IsError() {
		return res
	}
	if res := validateAddress(tx.To, "recipient"); res.IsError() {
		return res
	}
	return validateValue(tx.Value, "value")
}

func (exec *SafeTransferTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.SafeTransferTx)
	return nil, result.FromError(exec.bank.At(tx.Token).SafeTransfer(env, tx.To, tx.Value, tx.Data))
}

package execution

import (
	"math/big"

	log "github.com/sirupsen/logrus"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/assets"
	"github.com/thetatoken/rootchain/ledger/checkpoint"
	"github.com/thetatoken/rootchain/ledger/custody"
	"github.com/thetatoken/rootchain/ledger/relay"
	st "github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "execution"})

//
// TxExecutor defines the interface of the transaction executors
//
type TxExecutor interface {
	sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result
	process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result)
}

//
// Components are the ledger components transactions are executed against
//
type Components struct {
	Registry    *assets.Registry
	Bank        *assets.TokenBank
	Checkpoints *checkpoint.Ledger
	Relay       *relay.Relay
	Custody     *custody.Custody
	Verifier    vm.SignatureVerifier
	Contracts   *vm.Contracts
}

// TxResult is the outcome of one executed transaction
type TxResult struct {
	TxHash     common.Hash      `json:"hash"`
	Code       result.ErrorCode `json:"code"`
	Message    string           `json:"message"`
	Events     []types.Event    `json:"events"`
	ReturnData common.Bytes     `json:"return_data"`
}

// IsOK indicates if the transaction was applied
func (r *TxResult) IsOK() bool {
	return r.Code == result.CodeOK
}

//
// Executor executes the transactions
//
type Executor struct {
	state      *st.LedgerState
	chainID    string
	components *Components

	submitCheckpointTxExec   *SubmitCheckpointTxExecutor
	depositNativeTxExec      *DepositNativeTxExecutor
	depositFungibleTxExec    *DepositFungibleTxExecutor
	depositNonFungibleTxExec *DepositNonFungibleTxExecutor
	depositBatchTxExec       *DepositBatchTxExecutor
	releaseAssetTxExec       *ReleaseAssetTxExecutor
	relayRegisterTxExec      *RelayRegisterTxExecutor
	relayPostTxExec          *RelayPostTxExecutor
	refreshCustodyTxExec     *RefreshCustodyTxExecutor
	setCustodyLockTxExec     *SetCustodyLockTxExecutor
	setDomainIDTxExec        *SetDomainIDTxExecutor
	mapTokenTxExec           *MapTokenTxExecutor
	setPredicateTxExec       *SetPredicateTxExecutor
	updateDirectoryTxExec    *UpdateDirectoryTxExecutor
	mintTxExec               *MintTxExecutor
	tokenTransferTxExec      *TokenTransferTxExecutor
	tokenApproveTxExec       *TokenApproveTxExecutor
	safeTransferTxExec       *SafeTransferTxExecutor

	skipSanityCheck bool
}

// NewExecutor creates a new instance of Executor
func NewExecutor(chainID string, state *st.LedgerState, components *Components) *Executor {
	executor := &Executor{
		state:                    state,
		chainID:                  chainID,
		components:               components,
		submitCheckpointTxExec:   NewSubmitCheckpointTxExecutor(components.Checkpoints),
		depositNativeTxExec:      NewDepositNativeTxExecutor(components.Custody),
		depositFungibleTxExec:    NewDepositFungibleTxExecutor(components.Custody),
		depositNonFungibleTxExec: NewDepositNonFungibleTxExecutor(components.Custody),
		depositBatchTxExec:       NewDepositBatchTxExecutor(components.Custody),
		releaseAssetTxExec:       NewReleaseAssetTxExecutor(components.Custody),
		relayRegisterTxExec:      NewRelayRegisterTxExecutor(components.Relay),
		relayPostTxExec:          NewRelayPostTxExecutor(components.Relay),
		refreshCustodyTxExec:     NewRefreshCustodyTxExecutor(components.Custody),
		setCustodyLockTxExec:     NewSetCustodyLockTxExecutor(components.Custody),
		setDomainIDTxExec:        NewSetDomainIDTxExecutor(components.Checkpoints),
		mapTokenTxExec:           NewMapTokenTxExecutor(components.Registry),
		setPredicateTxExec:       NewSetPredicateTxExecutor(components.Registry),
		updateDirectoryTxExec:    NewUpdateDirectoryTxExecutor(components.Registry),
		mintTxExec:               NewMintTxExecutor(components.Bank),
		tokenTransferTxExec:      NewTokenTransferTxExecutor(components.Bank),
		tokenApproveTxExec:       NewTokenApproveTxExecutor(components.Bank),
		safeTransferTxExec:       NewSafeTransferTxExecutor(components.Bank),
		skipSanityCheck:          false,
	}

	return executor
}

// SetSkipSanityCheck sets the flag for sanity check.
// Skip checks while replaying trusted transactions.
func (exec *Executor) SetSkipSanityCheck(skip bool) {
	exec.skipSanityCheck = skip
}

// ExecuteTx checks and applies the transaction to the delivered view. A failed
// transaction leaves neither state changes nor events behind.
func (exec *Executor) ExecuteTx(tx types.Tx, blockTime uint64) *TxResult {
	txResult := &TxResult{TxHash: types.TxID(tx)}
	view := exec.state.Delivered()

	res := exec.sanityCheck(view, tx)
	if res.IsError() {
		txResult.Code, txResult.Message = res.Code, res.Message
		return txResult
	}

	txExecutor := exec.getTxExecutor(tx)
	branch := view.Branch()
	env := vm.NewEnv(branch, tx.Sender(), big.NewInt(0), blockTime, exec.components.Contracts)
	returnData, res := txExecutor.process(exec.chainID, env, tx)
	if res.IsError() {
		logger.Debugf("Tx %v failed: %v", txResult.TxHash.Hex(), res.Message)
		txResult.Code, txResult.Message = res.Code, res.Message
		return txResult
	}

	sender := tx.Sender()
	if !sender.IsEmpty() {
		branch.SetSequence(sender, branch.GetSequence(sender)+1)
	}

	txResult.Events = append(txResult.Events, branch.Events()...)
	txResult.ReturnData = returnData
	branch.Merge()
	return txResult
}

func (exec *Executor) sanityCheck(view *st.StoreView, tx types.Tx) result.Result {
	txExecutor := exec.getTxExecutor(tx)
	if txExecutor == nil {
		return result.Error("Unknown tx type %T", tx).WithErrorCode(result.CodeUnknownTx)
	}
	if exec.skipSanityCheck {
		return result.OK
	}
	if tx.Sender().IsEmpty() {
		return result.Error("Tx has no sender").WithErrorCode(result.CodeInvalidInput)
	}
	if err := types.VerifyTxSignature(exec.chainID, tx); err != nil {
		return result.Error("Invalid tx signature: %v", err).WithErrorCode(result.CodeUnauthorized)
	}
	if seq := view.GetSequence(tx.Sender()); tx.GetSequence() != seq+1 {
		return result.Error("Got sequence %v, expected %v", tx.GetSequence(), seq+1).
			WithErrorCode(result.CodeInvalidSequence)
	}
	return txExecutor.sanityCheck(exec.chainID, view, tx)
}

func (exec *Executor) getTxExecutor(tx types.Tx) TxExecutor {
	var txExecutor TxExecutor
	switch tx.(type) {
	case *types.SubmitCheckpointTx:
		txExecutor = exec.submitCheckpointTxExec
	case *types.DepositNativeTx:
		txExecutor = exec.depositNativeTxExec
	case *types.DepositFungibleTx:
		txExecutor = exec.depositFungibleTxExec
	case *types.DepositNonFungibleTx:
		txExecutor = exec.depositNonFungibleTxExec
	case *types.DepositBatchTx:
		txExecutor = exec.depositBatchTxExec
	case *types.ReleaseAssetTx:
		txExecutor = exec.releaseAssetTxExec
	case *types.RelayRegisterTx:
		txExecutor = exec.relayRegisterTxExec
	case *types.RelayPostTx:
		txExecutor = exec.relayPostTxExec
	case *types.RefreshCustodyTx:
		txExecutor = exec.refreshCustodyTxExec
	case *types.SetCustodyLockTx:
		txExecutor = exec.setCustodyLockTxExec
	case *types.SetDomainIDTx:
		txExecutor = exec.setDomainIDTxExec
	case *types.MapTokenTx:
		txExecutor = exec.mapTokenTxExec
	case *types.SetPredicateTx:
		txExecutor = exec.setPredicateTxExec
	case *types.UpdateDirectoryTx:
		txExecutor = exec.updateDirectoryTxExec
	case *types.MintTx:
		txExecutor = exec.mintTxExec
	case *types.TokenTransferTx:
		txExecutor = exec.tokenTransferTxExec
	case *types.TokenApproveTx:
		txExecutor = exec.tokenApproveTxExec
	case *types.SafeTransferTx:
		txExecutor = exec.safeTransferTxExec
	default:
		txExecutor = nil
	}
	return txExecutor
}

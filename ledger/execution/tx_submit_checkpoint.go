package execution

import (
	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/checkpoint"
	st "github.com/thetatoken/rootchain/ledger/state"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

var _ TxExecutor = (*SubmitCheckpointTxExecutor)(nil)

// ------------------------------- SubmitCheckpoint Transaction -----------------------------------

// SubmitCheckpointTxExecutor implements the TxExecutor interface
type SubmitCheckpointTxExecutor struct {
	checkpoints *checkpoint.Ledger
}

// NewSubmitCheckpointTxExecutor creates a new instance of SubmitCheckpointTxExecutor
func NewSubmitCheckpointTxExecutor(checkpoints *checkpoint.Ledger) *SubmitCheckpointTxExecutor {
	return &SubmitCheckpointTxExecutor{
		checkpoints: checkpoints,
	}
}

func (exec *SubmitCheckpointTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.SubmitCheckpointTx)
	if len(tx.Vote) == 0 || len(tx.ExtraData) == 0 {
		return result.Error("Vote and extra data are required").WithErrorCode(result.CodeMalformedInput)
	}
	return result.OK
}

func (exec *SubmitCheckpointTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.SubmitCheckpointTx)
	_, res := exec.checkpoints.SubmitCheckpoint(env, tx.Vote, tx.Signatures, tx.ExtraData)
	if res.IsError() {
		return nil, res
	}
	return encodeID(exec.checkpoints.CurrentCheckpointID(env.View)), result.OK
}

var _ TxExecutor = (*SetDomainIDTxExecutor)(nil)

// ------------------------------- SetDomainID Transaction -----------------------------------

// SetDomainIDTxExecutor implements the TxExecutor interface
type SetDomainIDTxExecutor struct {
	checkpoints *checkpoint.Ledger
}

// NewSetDomainIDTxExecutor creates a new instance of SetDomainIDTxExecutor
func NewSetDomainIDTxExecutor(checkpoints *checkpoint.Ledger) *SetDomainIDTxExecutor {
	return &SetDomainIDTxExecutor{
		checkpoints: checkpoints,
	}
}

func (exec *SetDomainIDTxExecutor) sanityCheck(chainID string, view *st.StoreView, transaction types.Tx) result.Result {
	tx := transaction.(*types.SetDomainIDTx)
	if tx.DomainID.IsEmpty() {
		return result.Error("Domain id must not be empty").WithErrorCode(result.CodeInvalidInput)
	}
	return result.OK
}

func (exec *SetDomainIDTxExecutor) process(chainID string, env *vm.Env, transaction types.Tx) (common.Bytes, result.Result) {
	tx := transaction.(*types.SetDomainIDTx)
	return nil, exec.checkpoints.SetDomainID(env, tx.DomainID)
}

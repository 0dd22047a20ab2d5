package execution

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/ledger/vm"
)

func TestExecuteFungibleDeposit(t *testing.T) {
	assert := assert.New(t)
	et := newExecTest(t)

	et.mustExec(et.owner, &types.MintTx{Token: fungible, To: et.alice.address, Value: big.NewInt(100)})
	et.mustExec(et.alice, &types.TokenApproveTx{Token: fungible, Spender: custodyAddr, Value: big.NewInt(100)})
	res := et.mustExec(et.alice, &types.DepositFungibleTx{Token: fungible, Amount: big.NewInt(30)})

	assert.Equal(uint64(1), returnedID(t, res))
	view := et.state.Delivered()
	record := view.GetDepositRecord(1)
	require.NotNil(t, record)
	assert.Equal(types.DepositCommitment(et.alice.address, fungible, big.NewInt(30)), record.CommitmentHash)
	assert.Equal(et.blockTime, record.CreatedAt)
	assert.Equal(int64(30), view.GetBalance(fungible, custodyAddr).Int64())

	kinds := make(map[string]bool)
	for _, ev := range res.Events {
		kinds[ev.Kind] = true
	}
	assert.True(kinds[types.EventNewDepositRecord])
	assert.True(kinds[types.EventStateSynced])
	assert.True(kinds[types.EventTransfer])
}

func TestExecuteNativeDeposit(t *testing.T) {
	assert := assert.New(t)
	et := newExecTest(t)

	res := et.mustExec(et.alice, &types.DepositNativeTx{Value: big.NewInt(250)})
	assert.Equal(uint64(1), returnedID(t, res))

	view := et.state.Delivered()
	assert.Equal(int64(750), view.GetBalance(vm.NativeToken, et.alice.address).Int64())
	assert.Equal(int64(250), view.GetBalance(vm.NativeToken, wrappedNative).Int64())
	assert.Equal(int64(250), view.GetBalance(wrappedNative, custodyAddr).Int64())
	assert.Equal(types.DepositCommitment(et.alice.address, wrappedNative, big.NewInt(250)),
		view.GetDepositRecord(1).CommitmentHash)

	res = et.exec(et.alice, &types.DepositNativeTx{Value: big.NewInt(5000)})
	assert.Equal(result.CodeInsufficientFunds, res.Code)
}

func TestExecuteNonFungibleDepositAndRelease(t *testing.T) {
	assert := assert.New(t)
	et := newExecTest(t)
	bob := newTestAccount(t, "bob")

	et.mustExec(et.owner, &types.MintTx{Token: nonFungible, To: et.alice.address, Value: big.NewInt(7)})
	et.mustExec(et.alice, &types.TokenApproveTx{Token: nonFungible, Spender: custodyAddr, Value: big.NewInt(7)})
	res := et.mustExec(et.alice, &types.DepositNonFungibleTx{Token: nonFungible, User: bob.address, TokenID: big.NewInt(7)})
	assert.Equal(uint64(1), returnedID(t, res))

	view := et.state.Delivered()
	assert.Equal(custodyAddr, view.GetTokenOwner(nonFungible, big.NewInt(7)))
	assert.Equal(types.DepositCommitment(bob.address, nonFungible, big.NewInt(7)), view.GetDepositRecord(1).CommitmentHash)

	// Only predicates release
	res = et.exec(bob, &types.ReleaseAssetTx{Token: nonFungible, User: bob.address, Value: big.NewInt(7)})
	assert.Equal(result.CodeUnauthorized, res.Code)

	et.mustExec(et.owner, &types.SetPredicateTx{Predicate: bob.address, Authorized: true})
	et.mustExec(bob, &types.ReleaseAssetTx{Token: nonFungible, User: bob.address, Value: big.NewInt(7)})
	assert.Equal(bob.address, et.state.Delivered().GetTokenOwner(nonFungible, big.NewInt(7)))
}

func TestExecuteBatchDepositRollback(t *testing.T) {
	assert := assert.New(t)
	et := newExecTest(t)

	et.mustExec(et.owner, &types.MintTx{Token: fungible, To: et.alice.address, Value: big.NewInt(100)})
	et.mustExec(et.alice, &types.TokenApproveTx{Token: fungible, Spender: custodyAddr, Value: big.NewInt(100)})

	// The NFT was never minted, so the second leg fails and nothing is kept
	res := et.exec(et.alice, &types.DepositBatchTx{
		Tokens: []common.Address{fungible, nonFungible},
		Values: []*big.Int{big.NewInt(10), big.NewInt(3)},
	})
	assert.False(res.IsOK())
	assert.Empty(res.Events)
	view := et.state.Delivered()
	assert.Nil(view.GetDepositRecord(1))
	assert.Equal(int64(100), view.GetBalance(fungible, et.alice.address).Int64())
	assert.Equal(uint64(0), view.GetRelayCounter())

	res = et.mustExec(et.alice, &types.DepositBatchTx{
		Tokens: []common.Address{fungible, fungible},
		Values: []*big.Int{big.NewInt(10), big.NewInt(20)},
	})
	assert.Equal(uint64(1), returnedID(t, res))
	assert.NotNil(et.state.Delivered().GetDepositRecord(2))

	res = et.exec(et.alice, &types.DepositBatchTx{
		Tokens: []common.Address{fungible},
		Values: []*big.Int{big.NewInt(10), big.NewInt(20)},
	})
	assert.Equal(result.CodeInvalidInput, res.Code)

	res = et.exec(et.alice, &types.DepositBatchTx{})
	assert.Equal(result.CodeInvalidInput, res.Code)
	assert.Equal(uint64(3), et.state.Delivered().GetLedgerCursor().DepositCursor)
}

func TestExecuteCheckpoint(t *testing.T) {
	assert := assert.New(t)
	et := newExecTest(t)

	// Two of three validators hold exactly two thirds of the stake
	res := et.exec(et.alice, et.checkpointTx(0, 255, et.validators[0], et.validators[1]))
	assert.Equal(result.CodeDependentCallFailed, res.Code)
	assert.Nil(et.state.Delivered().GetCheckpoint(10000))

	res = et.mustExec(et.alice, et.checkpointTx(0, 255, et.validators...))
	assert.Equal(uint64(10000), returnedID(t, res))

	view := et.state.Delivered()
	cp := view.GetCheckpoint(10000)
	require.NotNil(t, cp)
	assert.Equal(uint64(255), cp.End)
	assert.Equal(et.blockTime, cp.CreatedAt)
	assert.Equal(common.HexToHash("0xbeef"), view.GetAccountStateRoot())

	var reward string
	for _, ev := range res.Events {
		if ev.Kind == types.EventNewCheckpoint {
			reward, _ = ev.Get("reward")
		}
	}
	assert.Equal("2550", reward)

	// The next deposit lands after the new checkpoint id
	et.mustExec(et.owner, &types.MintTx{Token: fungible, To: et.alice.address, Value: big.NewInt(5)})
	et.mustExec(et.alice, &types.TokenApproveTx{Token: fungible, Spender: custodyAddr, Value: big.NewInt(5)})
	res = et.mustExec(et.alice, &types.DepositFungibleTx{Token: fungible, Amount: big.NewInt(5)})
	assert.Equal(uint64(10001), returnedID(t, res))
}

func TestExecuteRejectsBadSignature(t *testing.T) {
	assert := assert.New(t)
	et := newExecTest(t)

	tx := &types.DepositNativeTx{Value: big.NewInt(1)}
	tx.From, tx.Sequence = et.alice.address, 1
	require.Nil(t, types.SignTx(testChainID, tx, et.owner.key))
	res := et.executor.ExecuteTx(tx, et.blockTime)
	assert.Equal(result.CodeUnauthorized, res.Code)

	tx = &types.DepositNativeTx{Value: big.NewInt(1)}
	tx.From, tx.Sequence = et.alice.address, 1
	require.Nil(t, types.SignTx("another-chain", tx, et.alice.key))
	res = et.executor.ExecuteTx(tx, et.blockTime)
	assert.Equal(result.CodeUnauthorized, res.Code)

	et.executor.SetSkipSanityCheck(true)
	res = et.executor.ExecuteTx(tx, et.blockTime)
	assert.True(res.IsOK(), res.Message)
	assert.Equal(uint64(1), et.state.Delivered().GetSequence(et.alice.address))
}

func TestExecuteRejectsReplayedTx(t *testing.T) {
	assert := assert.New(t)
	et := newExecTest(t)
	bob := newTestAccount(t, "bob")

	et.mustExec(et.owner, &types.MintTx{Token: nonFungible, To: et.alice.address, Value: big.NewInt(7)})
	et.mustExec(et.alice, &types.TokenApproveTx{Token: nonFungible, Spender: custodyAddr, Value: big.NewInt(7)})
	et.mustExec(et.alice, &types.DepositNonFungibleTx{Token: nonFungible, User: bob.address, TokenID: big.NewInt(7)})
	et.mustExec(et.owner, &types.SetPredicateTx{Predicate: bob.address, Authorized: true})

	release := &types.ReleaseAssetTx{Token: nonFungible, User: bob.address, Value: big.NewInt(7)}
	et.mustExec(bob, release)
	assert.Equal(uint64(1), et.state.Delivered().GetSequence(bob.address))

	// Deposit the token again, then submit the same signed release a second time
	et.mustExec(bob, &types.TokenApproveTx{Token: nonFungible, Spender: custodyAddr, Value: big.NewInt(7)})
	et.mustExec(bob, &types.DepositNonFungibleTx{Token: nonFungible, TokenID: big.NewInt(7)})
	assert.Equal(custodyAddr, et.state.Delivered().GetTokenOwner(nonFungible, big.NewInt(7)))
	res := et.executor.ExecuteTx(release, et.blockTime)
	assert.Equal(result.CodeInvalidSequence, res.Code)
	assert.Empty(res.Events)
	assert.Equal(custodyAddr, et.state.Delivered().GetTokenOwner(nonFungible, big.NewInt(7)))

	transfer := &types.TokenTransferTx{To: bob.address, Value: big.NewInt(100)}
	et.mustExec(et.alice, transfer)
	res = et.executor.ExecuteTx(transfer, et.blockTime)
	assert.Equal(result.CodeInvalidSequence, res.Code)
	view := et.state.Delivered()
	assert.Equal(int64(900), view.GetBalance(vm.NativeToken, et.alice.address).Int64())
	assert.Equal(int64(100), view.GetBalance(vm.NativeToken, bob.address).Int64())

	// A sequence ahead of the next expected one is rejected as well
	skip := &types.TokenTransferTx{To: bob.address, Value: big.NewInt(1)}
	skip.From = et.alice.address
	skip.Sequence = view.GetSequence(et.alice.address) + 2
	require.Nil(t, types.SignTx(testChainID, skip, et.alice.key))
	res = et.executor.ExecuteTx(skip, et.blockTime)
	assert.Equal(result.CodeInvalidSequence, res.Code)

	// Failed txs do not consume a sequence
	seq := view.GetSequence(et.alice.address)
	res = et.exec(et.alice, &types.TokenTransferTx{To: bob.address, Value: big.NewInt(5000)})
	assert.Equal(result.CodeInsufficientFunds, res.Code)
	assert.Equal(seq, et.state.Delivered().GetSequence(et.alice.address))
}

func TestExecuteAdminTxs(t *testing.T) {
	assert := assert.New(t)
	et := newExecTest(t)
	newChild := common.HexToAddress("0x2002")

	res := et.exec(et.alice, &types.SetCustodyLockTx{Locked: true})
	assert.Equal(result.CodeUnauthorized, res.Code)

	et.mustExec(et.owner, &types.SetCustodyLockTx{Locked: true})
	res = et.exec(et.alice, &types.DepositNativeTx{Value: big.NewInt(1)})
	assert.Equal(result.CodeCustodyLocked, res.Code)
	et.mustExec(et.owner, &types.SetCustodyLockTx{Locked: false})

	res = et.exec(et.alice, &types.RefreshCustodyTx{})
	assert.Equal(result.CodeNoChange, res.Code)

	et.mustExec(et.owner, &types.UpdateDirectoryTx{ChildChain: newChild, Relay: relayAddr})
	res = et.mustExec(et.alice, &types.RefreshCustodyTx{})
	require.Len(t, res.Events, 1)
	assert.Equal(types.EventChildChainChanged, res.Events[0].Kind)
	assert.Equal(newChild, et.components.Custody.Config(et.state.Delivered()).ChildChain)

	domainID := common.HexToHash("0x0d")
	res = et.exec(et.alice, &types.SetDomainIDTx{DomainID: domainID})
	assert.Equal(result.CodeUnauthorized, res.Code)
	et.mustExec(et.owner, &types.SetDomainIDTx{DomainID: domainID})
	assert.Equal(domainID, et.state.Delivered().GetDomainID())
}

func TestExecuteRelayPost(t *testing.T) {
	assert := assert.New(t)
	et := newExecTest(t)
	receiver := common.HexToAddress("0x3001")

	res := et.exec(et.alice, &types.RelayPostTx{Receiver: receiver, Payload: common.Bytes("hi")})
	assert.Equal(result.CodeUnauthorized, res.Code)

	res = et.exec(et.alice, &types.RelayRegisterTx{RelaySender: et.alice.address, Receiver: receiver})
	assert.Equal(result.CodeUnauthorized, res.Code)

	et.mustExec(et.owner, &types.RelayRegisterTx{RelaySender: et.alice.address, Receiver: receiver})
	res = et.mustExec(et.alice, &types.RelayPostTx{Receiver: receiver, Payload: common.Bytes("hi")})
	assert.Equal(uint64(1), returnedID(t, res))

	msg := et.state.Delivered().GetRelayMessage(1)
	require.NotNil(t, msg)
	assert.Equal(common.Bytes("hi"), msg.Payload)
}

func TestExecutePassiveDeposit(t *testing.T) {
	assert := assert.New(t)
	et := newExecTest(t)

	et.mustExec(et.owner, &types.MintTx{Token: fungible, To: et.alice.address, Value: big.NewInt(50)})
	res := et.mustExec(et.alice, &types.SafeTransferTx{Token: fungible, To: custodyAddr, Value: big.NewInt(50)})

	var depositID string
	for _, ev := range res.Events {
		if ev.Kind == types.EventNewDepositRecord {
			depositID, _ = ev.Get("depositId")
		}
	}
	assert.Equal("1", depositID)
	assert.NotNil(et.state.Delivered().GetDepositRecord(1))
}

func TestExecuteNativeTransfer(t *testing.T) {
	assert := assert.New(t)
	et := newExecTest(t)
	bob := newTestAccount(t, "bob")

	et.mustExec(et.alice, &types.TokenTransferTx{To: bob.address, Value: big.NewInt(400)})
	view := et.state.Delivered()
	assert.Equal(int64(600), view.GetBalance(vm.NativeToken, et.alice.address).Int64())
	assert.Equal(int64(400), view.GetBalance(vm.NativeToken, bob.address).Int64())

	res := et.exec(et.alice, &types.TokenTransferTx{To: bob.address, Value: big.NewInt(601)})
	assert.Equal(result.CodeInsufficientFunds, res.Code)
}

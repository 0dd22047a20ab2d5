package rpc

import (
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/powerman/rpc-codec/jsonrpc2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/crypto"
	"github.com/thetatoken/rootchain/ledger"
	"github.com/thetatoken/rootchain/ledger/assets"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/metrics"
	"github.com/thetatoken/rootchain/store/database/backend"
)

var (
	fungible = common.HexToAddress("0xf1")
	custody  = common.HexToAddress("0x1001")
)

type testKey struct {
	key     *crypto.PrivateKey
	address common.Address
}

func newTestKey(t *testing.T, seed string) testKey {
	sk, pk, err := crypto.TEST_GenerateKeyPairWithSeed(seed)
	require.Nil(t, err)
	return testKey{key: sk, address: pk.Address()}
}

type rpcTest struct {
	t        *testing.T
	owner    testKey
	user     testKey
	ledger   *ledger.Ledger
	server   *httptest.Server
	client   *jsonrpc2.Client
	registry *prometheus.Registry
}

func newRPCTest(t *testing.T) *rpcTest {
	owner := newTestKey(t, "owner")
	g := &ledger.Genesis{
		ChainID: "rootchain-test",
		Owner:   owner.address,
		Addresses: types.DirectoryAddresses{
			Custody:       custody,
			Ledger:        common.HexToAddress("0x1002"),
			Verifier:      common.HexToAddress("0x1004"),
			Relay:         common.HexToAddress("0x1003"),
			ChildChain:    common.HexToAddress("0x2001"),
			WrappedNative: common.HexToAddress("0x1010"),
		},
		Tokens:             []assets.TokenSpec{{RootToken: fungible, ChildToken: common.HexToAddress("0xc1")}},
		CheckpointInterval: 10000,
		RewardPerBlock:     big.NewInt(1),
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.Nil(t, err)
	l, err := ledger.NewLedger(g, backend.NewMemDatabase(), m, 0)
	require.Nil(t, err)

	server := httptest.NewServer(NewRootchainRPCServer(l, m, reg).Handler())
	t.Cleanup(server.Close)

	client := jsonrpc2.NewHTTPClient(server.URL + "/rpc")
	t.Cleanup(func() { client.Close() })

	return &rpcTest{
		t:        t,
		owner:    owner,
		user:     newTestKey(t, "user"),
		ledger:   l,
		server:   server,
		client:   client,
		registry: reg,
	}
}

func (rt *rpcTest) sign(from testKey, header *types.TxHeader, tx types.Tx) common.Bytes {
	seq := &GetSequenceResult{}
	require.Nil(rt.t, rt.client.Call("rootchain.GetSequence", &GetSequenceArgs{Address: from.address.Hex()}, seq))
	header.From = from.address
	header.Sequence = uint64(seq.Sequence) + 1
	require.Nil(rt.t, types.SignTx(rt.ledger.ChainID(), tx, from.key))
	raw, err := types.TxToBytes(tx)
	require.Nil(rt.t, err)
	return raw
}

func (rt *rpcTest) broadcastRaw(raw common.Bytes) *BroadcastRawTransactionResult {
	res := &BroadcastRawTransactionResult{}
	err := rt.client.Call("rootchain.BroadcastRawTransaction",
		&BroadcastRawTransactionArgs{TxBytes: hexutil.Encode(raw)}, res)
	require.Nil(rt.t, err)
	return res
}

func (rt *rpcTest) deposit(amount int64) *BroadcastRawTransactionResult {
	mint := &types.MintTx{Token: fungible, To: rt.user.address, Value: big.NewInt(amount)}
	require.Equal(rt.t, result.CodeOK, rt.broadcastRaw(rt.sign(rt.owner, &mint.TxHeader, mint)).Code)

	approve := &types.TokenApproveTx{Token: fungible, Spender: custody, Value: big.NewInt(amount)}
	require.Equal(rt.t, result.CodeOK, rt.broadcastRaw(rt.sign(rt.user, &approve.TxHeader, approve)).Code)

	dep := &types.DepositFungibleTx{Token: fungible, Amount: big.NewInt(amount)}
	return rt.broadcastRaw(rt.sign(rt.user, &dep.TxHeader, dep))
}

func TestBroadcastAndQuery(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rt := newRPCTest(t)

	res := rt.deposit(100)
	require.Equal(result.CodeOK, res.Code, res.Message)
	assert.Equal("0x0000000000000001", res.ReturnData)
	assert.NotEmpty(res.Events)

	// Not visible before the commit
	record := &GetDepositRecordResult{}
	assert.NotNil(rt.client.Call("rootchain.GetDepositRecord", &GetDepositRecordArgs{ID: 1}, record))

	rt.ledger.Commit()

	require.Nil(rt.client.Call("rootchain.GetDepositRecord", &GetDepositRecordArgs{ID: 1}, record))
	assert.Equal(types.DepositCommitment(rt.user.address, fungible, big.NewInt(100)), record.CommitmentHash)

	msgs := &GetRelayMessagesResult{}
	require.Nil(rt.client.Call("rootchain.GetRelayMessages", &GetRelayMessagesArgs{}, msgs))
	assert.Equal(common.JSONUint64(1), msgs.Counter)
	require.Equal(1, len(msgs.Messages))
	assert.Equal(common.HexToAddress("0x2001"), msgs.Messages[0].Receiver)

	require.Nil(rt.client.Call("rootchain.GetRelayMessages", &GetRelayMessagesArgs{After: 1}, msgs))
	assert.Equal(0, len(msgs.Messages))

	balance := &GetBalanceResult{}
	require.Nil(rt.client.Call("rootchain.GetBalance",
		&GetBalanceArgs{Token: fungible.Hex(), Address: custody.Hex()}, balance))
	assert.Equal("100", balance.Balance)

	status := &GetStatusResult{}
	require.Nil(rt.client.Call("rootchain.GetStatus", &GetStatusArgs{}, status))
	assert.Equal("rootchain-test", status.ChainID)
	assert.Equal(common.JSONUint64(2), status.DepositCursor)
	assert.Equal(common.JSONUint64(1), status.RelayCounter)

	mapping := &GetTokenMappingResult{}
	require.Nil(rt.client.Call("rootchain.GetTokenMapping", &GetTokenMappingArgs{Token: fungible.Hex()}, mapping))
	assert.Equal(common.HexToAddress("0xc1"), mapping.ChildToken)
	assert.False(mapping.NonFungible)
}

func TestBroadcastRejected(t *testing.T) {
	assert := assert.New(t)
	rt := newRPCTest(t)

	// The user holds no tokens
	dep := &types.DepositFungibleTx{Token: fungible, Amount: big.NewInt(1)}
	res := rt.broadcastRaw(rt.sign(rt.user, &dep.TxHeader, dep))
	assert.NotEqual(result.CodeOK, res.Code)
	assert.NotEmpty(res.Message)

	// Unmapped token
	dep = &types.DepositFungibleTx{Token: common.HexToAddress("0xdead"), Amount: big.NewInt(1)}
	res = rt.broadcastRaw(rt.sign(rt.user, &dep.TxHeader, dep))
	assert.Equal(result.CodeTokenNotSupported, res.Code)

	out := &BroadcastRawTransactionResult{}
	err := rt.client.Call("rootchain.BroadcastRawTransaction", &BroadcastRawTransactionArgs{TxBytes: "0xzz"}, out)
	assert.NotNil(err)
	err = rt.client.Call("rootchain.BroadcastRawTransaction", &BroadcastRawTransactionArgs{}, out)
	assert.NotNil(err)
}

func TestBroadcastReplayRejected(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rt := newRPCTest(t)

	mint := &types.MintTx{Token: fungible, To: rt.user.address, Value: big.NewInt(10)}
	raw := rt.sign(rt.owner, &mint.TxHeader, mint)
	require.Equal(result.CodeOK, rt.broadcastRaw(raw).Code)

	res := rt.broadcastRaw(raw)
	assert.Equal(result.CodeInvalidSequence, res.Code)
	rt.ledger.Commit()

	seq := &GetSequenceResult{}
	require.Nil(rt.client.Call("rootchain.GetSequence", &GetSequenceArgs{Address: rt.owner.address.Hex()}, seq))
	assert.Equal(common.JSONUint64(1), seq.Sequence)
	balance := &GetBalanceResult{}
	require.Nil(rt.client.Call("rootchain.GetBalance",
		&GetBalanceArgs{Token: fungible.Hex(), Address: rt.user.address.Hex()}, balance))
	assert.Equal("10", balance.Balance)

	assert.NotNil(rt.client.Call("rootchain.GetSequence", &GetSequenceArgs{}, seq))
}

func TestQueryNotFound(t *testing.T) {
	assert := assert.New(t)
	rt := newRPCTest(t)

	cp := &GetCheckpointResult{}
	err := rt.client.Call("rootchain.GetCheckpoint", &GetCheckpointArgs{ID: 10000}, cp)
	if assert.NotNil(err) {
		assert.Contains(err.Error(), "checkpoint 10000 not found")
	}

	mapping := &GetTokenMappingResult{}
	assert.NotNil(rt.client.Call("rootchain.GetTokenMapping", &GetTokenMappingArgs{Token: "0xdead"}, mapping))

	balance := &GetBalanceResult{}
	assert.NotNil(rt.client.Call("rootchain.GetBalance", &GetBalanceArgs{}, balance))

	owner := &GetTokenOwnerResult{}
	assert.NotNil(rt.client.Call("rootchain.GetTokenOwner", &GetTokenOwnerArgs{Token: "0xf2", TokenID: "x"}, owner))
	assert.Nil(rt.client.Call("rootchain.GetTokenOwner", &GetTokenOwnerArgs{Token: "0xf2", TokenID: "7"}, owner))
	assert.True(owner.Owner.IsEmpty())
}

func TestHTTPEndpoints(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rt := newRPCTest(t)

	v := &GetVersionResult{}
	require.Nil(rt.client.Call("rootchain.GetVersion", &GetVersionArgs{}, v))
	assert.NotEmpty(v.Version)

	resp, err := http.Get(rt.server.URL + "/")
	require.Nil(err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(string(body), "up and running")

	req, err := http.NewRequest(http.MethodOptions, rt.server.URL+"/rpc", nil)
	require.Nil(err)
	resp, err = http.DefaultClient.Do(req)
	require.Nil(err)
	resp.Body.Close()
	assert.Equal(http.StatusOK, resp.StatusCode)
	assert.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(rt.server.URL + "/metrics")
	require.Nil(err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(string(body), `rootchain_rpc_calls_total{method="GetVersion",status="success"} 1`)
}

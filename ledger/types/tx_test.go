package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/crypto"
)

func TestTxEncoding(t *testing.T) {
	assert := assert.New(t)

	tx := &DepositBatchTx{
		TxHeader: TxHeader{From: common.HexToAddress("0xa1"), Sequence: 9},
		Tokens:   []common.Address{common.HexToAddress("0xf1"), common.HexToAddress("0xf2")},
		Values:   []*big.Int{big.NewInt(10), big.NewInt(7)},
		User:     common.HexToAddress("0xb0"),
	}
	raw, err := TxToBytes(tx)
	require.Nil(t, err)
	assert.Equal(byte(TxDepositBatch), raw[0])

	decoded, err := TxFromBytes(raw)
	require.Nil(t, err)
	batch, ok := decoded.(*DepositBatchTx)
	require.True(t, ok)
	assert.Equal(tx.From, batch.Sender())
	assert.Equal(uint64(9), batch.GetSequence())
	assert.Equal(tx.Tokens, batch.Tokens)
	assert.Equal(int64(7), batch.Values[1].Int64())
	assert.Equal(tx.User, batch.User)

	_, err = TxFromBytes(nil)
	assert.NotNil(err)
	_, err = TxFromBytes([]byte{0xee, 0xc0})
	assert.NotNil(err)
}

func TestTxSignature(t *testing.T) {
	assert := assert.New(t)

	sk, pk, err := crypto.TEST_GenerateKeyPairWithSeed("alice")
	require.Nil(t, err)

	tx := &SetCustodyLockTx{TxHeader: TxHeader{From: pk.Address()}, Locked: true}
	require.Nil(t, SignTx("chain-a", tx, sk))
	assert.Nil(VerifyTxSignature("chain-a", tx))
	assert.NotNil(VerifyTxSignature("chain-b", tx))

	// The signature survives the wire encoding
	raw, err := TxToBytes(tx)
	require.Nil(t, err)
	decoded, err := TxFromBytes(raw)
	require.Nil(t, err)
	assert.Nil(VerifyTxSignature("chain-a", decoded))
	assert.Equal(TxID(tx), TxID(decoded))

	tx.Locked = false
	assert.NotNil(VerifyTxSignature("chain-a", tx))
	tx.Locked = true

	// The sequence is covered by the signature
	tx.Sequence = 2
	assert.NotNil(VerifyTxSignature("chain-a", tx))
	tx.Sequence = 0
	assert.Nil(VerifyTxSignature("chain-a", tx))

	tx.From = common.HexToAddress("0xa1")
	tx.Locked = true
	assert.NotNil(VerifyTxSignature("chain-a", tx))
}

func TestDepositPayload(t *testing.T) {
	assert := assert.New(t)

	payload := &DepositPayload{
		User:      common.HexToAddress("0xa1"),
		Token:     common.HexToAddress("0xf1"),
		Value:     big.NewInt(12345),
		DepositID: 10001,
	}
	decoded, err := DecodeDepositPayload(payload.Bytes())
	require.Nil(t, err)
	assert.Equal(payload.User, decoded.User)
	assert.Equal(payload.Token, decoded.Token)
	assert.Equal(int64(12345), decoded.Value.Int64())
	assert.Equal(uint64(10001), decoded.DepositID)

	_, err = DecodeDepositPayload([]byte{0x01})
	assert.NotNil(err)
}

func TestDepositCommitment(t *testing.T) {
	assert := assert.New(t)

	user := common.HexToAddress("0xa1")
	token := common.HexToAddress("0xf1")
	h := DepositCommitment(user, token, big.NewInt(5))
	assert.Equal(h, DepositCommitment(user, token, big.NewInt(5)))
	assert.NotEqual(h, DepositCommitment(user, token, big.NewInt(6)))
	assert.NotEqual(h, DepositCommitment(token, user, big.NewInt(5)))
}

func TestEventAttributes(t *testing.T) {
	assert := assert.New(t)

	ev := NewEvent(EventNewDepositRecord,
		"user", common.HexToAddress("0xa1"),
		"value", big.NewInt(40),
		"depositId", uint64(3),
		"data", common.Bytes{0xab})
	v, ok := ev.Get("user")
	assert.True(ok)
	assert.Equal(common.HexToAddress("0xa1").Hex(), v)
	v, _ = ev.Get("value")
	assert.Equal("40", v)
	v, _ = ev.Get("depositId")
	assert.Equal("3", v)
	v, _ = ev.Get("data")
	assert.Equal("0xab", v)
	_, ok = ev.Get("missing")
	assert.False(ok)

	assert.Panics(func() { NewEvent(EventTransfer, "from") })
}

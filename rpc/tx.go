package rpc

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/common/result"
	"github.com/thetatoken/rootchain/ledger/types"
)

// ------------------------------- BroadcastRawTransaction -----------------------------------

type BroadcastRawTransactionArgs struct {
	TxBytes string `json:"tx_bytes"`
}

type BroadcastRawTransactionResult struct {
	TxHash     string           `json:"hash"`
	Code       result.ErrorCode `json:"code"`
	Message    string           `json:"message"`
	Events     []types.Event    `json:"events"`
	ReturnData string           `json:"return_data"`
}

// BroadcastRawTransaction executes a signed transaction. A rejected
// transaction is reported through the result code; the error is reserved for
// undecodable input.
func (t *RootchainRPCService) BroadcastRawTransaction(
	args *BroadcastRawTransactionArgs, result *BroadcastRawTransactionResult) (err error) {
	defer t.count("BroadcastRawTransaction", &err)

	txBytes, err := decodeHex(args.TxBytes)
	if err != nil {
		return err
	}
	res, err := t.ledger.ExecuteRawTx(txBytes)
	if err != nil {
		return err
	}

	result.TxHash = res.TxHash.Hex()
	result.Code = res.Code
	result.Message = res.Message
	result.Events = res.Events
	if result.Events == nil {
		result.Events = []types.Event{}
	}
	result.ReturnData = hexutil.Encode(res.ReturnData)
	return nil
}

func decodeHex(s string) (common.Bytes, error) {
	if s == "" {
		return nil, errors.New("tx_bytes must be specified")
	}
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tx_bytes")
	}
	return raw, nil
}

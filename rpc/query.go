package rpc

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/ledger"
	"github.com/thetatoken/rootchain/ledger/types"
	"github.com/thetatoken/rootchain/version"
)

const maxRelayMessagesPerQuery = 1000

// ------------------------------- GetVersion -----------------------------------

type GetVersionArgs struct {
}

type GetVersionResult struct {
	Version   string `json:"version"`
	GitHash   string `json:"git_hash"`
	Timestamp string `json:"timestamp"`
}

func (t *RootchainRPCService) GetVersion(args *GetVersionArgs, result *GetVersionResult) (err error) {
	defer t.count("GetVersion", &err)

	result.Version = version.Version
	result.GitHash = version.GitHash
	result.Timestamp = version.Timestamp
	return nil
}

// ------------------------------- GetStatus -----------------------------------

type GetStatusArgs struct {
}

type GetStatusResult struct {
	*ledger.Status
}

func (t *RootchainRPCService) GetStatus(args *GetStatusArgs, result *GetStatusResult) (err error) {
	defer t.count("GetStatus", &err)

	result.Status = t.ledger.GetStatus()
	return nil
}

// ------------------------------- GetCheckpoint -----------------------------------

type GetCheckpointArgs struct {
	ID common.JSONUint64 `json:"id"`
}

type GetCheckpointResult struct {
	*types.CheckpointJSON
}

func (t *RootchainRPCService) GetCheckpoint(args *GetCheckpointArgs, result *GetCheckpointResult) (err error) {
	defer t.count("GetCheckpoint", &err)

	id := uint64(args.ID)
	cp := t.ledger.GetCheckpoint(id)
	if cp == nil {
		return errors.Errorf("checkpoint %v not found", id)
	}
	cpJSON := types.NewCheckpointJSON(id, cp)
	result.CheckpointJSON = &cpJSON
	return nil
}

// ------------------------------- GetDepositRecord -----------------------------------

type GetDepositRecordArgs struct {
	ID common.JSONUint64 `json:"id"`
}

type GetDepositRecordResult struct {
	ID             common.JSONUint64 `json:"id"`
	CommitmentHash common.Hash       `json:"commitment_hash"`
	CreatedAt      common.JSONUint64 `json:"created_at"`
}

func (t *RootchainRPCService) GetDepositRecord(args *GetDepositRecordArgs, result *GetDepositRecordResult) (err error) {
	defer t.count("GetDepositRecord", &err)

	id := uint64(args.ID)
	record := t.ledger.GetDepositRecord(id)
	if record == nil {
		return errors.Errorf("deposit record %v not found", id)
	}
	result.ID = args.ID
	result.CommitmentHash = record.CommitmentHash
	result.CreatedAt = common.JSONUint64(record.CreatedAt)
	return nil
}

// ------------------------------- GetRelayMessages -----------------------------------

type GetRelayMessagesArgs struct {
	After common.JSONUint64 `json:"after"`
	Limit int               `json:"limit"`
}

type GetRelayMessagesResult struct {
	Counter  common.JSONUint64        `json:"counter"`
	Messages []types.RelayMessageJSON `json:"messages"`
}

func (t *RootchainRPCService) GetRelayMessages(args *GetRelayMessagesArgs, result *GetRelayMessagesResult) (err error) {
	defer t.count("GetRelayMessages", &err)

	limit := args.Limit
	if limit <= 0 || limit > maxRelayMessagesPerQuery {
		limit = maxRelayMessagesPerQuery
	}
	result.Counter = common.JSONUint64(t.ledger.GetRelayCounter())
	result.Messages = []types.RelayMessageJSON{}
	for _, msg := range t.ledger.GetRelayMessages(uint64(args.After), limit) {
		result.Messages = append(result.Messages, types.NewRelayMessageJSON(msg))
	}
	return nil
}

// ------------------------------- GetBalance -----------------------------------

type GetBalanceArgs struct {
	Token   string `json:"token"` // empty for the native currency
	Address string `json:"address"`
}

type GetBalanceResult struct {
	Token   common.Address `json:"token"`
	Address common.Address `json:"address"`
	Balance string         `json:"balance"`
}

func (t *RootchainRPCService) GetBalance(args *GetBalanceArgs, result *GetBalanceResult) (err error) {
	defer t.count("GetBalance", &err)

	if args.Address == "" {
		return errors.New("Address must be specified")
	}
	result.Address = common.HexToAddress(args.Address)
	if args.Token != "" {
		result.Token = common.HexToAddress(args.Token)
	}
	result.Balance = t.ledger.GetBalance(result.Token, result.Address).String()
	return nil
}

// ------------------------------- GetTokenOwner -----------------------------------

type GetTokenOwnerArgs struct {
	Token   string `json:"token"`
	TokenID string `json:"token_id"`
}

type GetTokenOwnerResult struct {
	Owner common.Address `json:"owner"`
}

func (t *RootchainRPCService) GetTokenOwner(args *GetTokenOwnerArgs, result *GetTokenOwnerResult) (err error) {
	defer t.count("GetTokenOwner", &err)

	if args.Token == "" {
		return errors.New("Token must be specified")
	}
	id, ok := new(big.Int).SetString(args.TokenID, 10)
	if !ok {
		return errors.Errorf("invalid token id %q", args.TokenID)
	}
	result.Owner = t.ledger.GetTokenOwner(common.HexToAddress(args.Token), id)
	return nil
}

// ------------------------------- GetTokenMapping -----------------------------------

type GetTokenMappingArgs struct {
	Token string `json:"token"`
}

type GetTokenMappingResult struct {
	RootToken   common.Address `json:"root_token"`
	ChildToken  common.Address `json:"child_token"`
	NonFungible bool           `json:"non_fungible"`
}

func (t *RootchainRPCService) GetTokenMapping(args *GetTokenMappingArgs, result *GetTokenMappingResult) (err error) {
	defer t.count("GetTokenMapping", &err)

	token := common.HexToAddress(args.Token)
	mapping := t.ledger.GetTokenMapping(token)
	if mapping == nil {
		return errors.Errorf("token %v is not mapped", token)
	}
	result.RootToken = token
	result.ChildToken = mapping.ChildToken
	result.NonFungible = mapping.NonFungible
	return nil
}

// ------------------------------- GetSequence -----------------------------------

type GetSequenceArgs struct {
	Address string `json:"address"`
}

type GetSequenceResult struct {
	Sequence common.JSONUint64 `json:"sequence"`
}

// GetSequence returns the sequence of the last tx executed from the address.
// The next tx must be signed with this value plus one.
func (t *RootchainRPCService) GetSequence(args *GetSequenceArgs, result *GetSequenceResult) (err error) {
	defer t.count("GetSequence", &err)

	if args.Address == "" {
		return errors.New("Address must be specified")
	}
	result.Sequence = common.JSONUint64(t.ledger.GetSequence(common.HexToAddress(args.Address)))
	return nil
}

func (t *RootchainRPCService) count(method string, err *error) {
	t.metrics.IncRPCCall(method, *err == nil)
}

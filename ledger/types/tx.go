package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	log "github.com/sirupsen/logrus"

	"github.com/thetatoken/rootchain/common"
	"github.com/thetatoken/rootchain/crypto"
)

var logger *log.Entry = log.WithFields(log.Fields{"prefix": "ledger"})

/*
Tx (Transaction) is an atomic operation on the ledger state.

Transaction Types:
 - SubmitCheckpointTx      Submit a signed checkpoint of child-domain blocks
 - DepositNativeTx         Deposit native currency (wrapped on the way in)
 - DepositFungibleTx       Deposit a fungible token, optionally for another user
 - DepositNonFungibleTx    Deposit a non-fungible token, optionally for another user
 - DepositBatchTx          Deposit several tokens with one id allocation
 - ReleaseAssetTx          Release an escrowed asset (predicates only)
 - RelayRegisterTx         Register the trusted relay sender of a receiver
 - RelayPostTx             Post an opaque message through the relay
 - RefreshCustodyTx        Reload the child chain and relay addresses into custody
 - SetCustodyLockTx        Lock or unlock deposits (owner only)
 - SetDomainIDTx           Change the checkpoint domain identifier (owner only)
 - MapTokenTx              Register a root token with the directory (owner only)
 - SetPredicateTx          Authorize or revoke a release predicate (owner only)
 - UpdateDirectoryTx       Update the child chain and relay addresses (owner only)
 - MintTx                  Mint tokens or native currency (owner only)
 - TokenTransferTx         Transfer tokens or native currency
 - TokenApproveTx          Approve a spender for a token amount or instance
 - SafeTransferTx          Transfer that notifies a receiving contract
*/

// TxType is the leading byte of an encoded transaction
type TxType byte

const (
	TxSubmitCheckpoint TxType = iota + 1
	TxDepositNative
	TxDepositFungible
	TxDepositNonFungible
	TxDepositBatch
	TxReleaseAsset
	TxRelayRegister
	TxRelayPost
	TxRefreshCustody
	TxSetCustodyLock
	TxSetDomainID
	TxMapToken
	TxSetPredicate
	TxUpdateDirectory
	TxMint
	TxTokenTransfer
	TxTokenApprove
	TxSafeTransfer
)

type Tx interface {
	AssertIsTx()
	Sender() common.Address
	GetSequence() uint64
	GetSignature() common.Bytes
	SetSignature(sig common.Bytes)
}

// TxHeader carries the caller of a transaction, its sequence and its signature.
// Sequence must be one above the last sequence accepted from the caller.
type TxHeader struct {
	From      common.Address
	Sequence  uint64
	Signature common.Bytes
}

func (h *TxHeader) AssertIsTx() {}

// Sender returns the caller identity of the transaction
func (h *TxHeader) Sender() common.Address {
	return h.From
}

func (h *TxHeader) GetSequence() uint64 {
	return h.Sequence
}

func (h *TxHeader) GetSignature() common.Bytes {
	return h.Signature
}

func (h *TxHeader) SetSignature(sig common.Bytes) {
	h.Signature = sig
}

//-----------------------------------------------------------------------------

// TxID returns the hash of the encoded transaction
func TxID(tx Tx) common.Hash {
	raw, err := TxToBytes(tx)
	if err != nil {
		return common.Hash{}
	}
	return crypto.Keccak256Hash(raw)
}

// SignBytes returns the bytes the sender signs: the chain id followed by the
// encoded transaction without its signature.
func SignBytes(chainID string, tx Tx) []byte {
	sig := tx.GetSignature()
	tx.SetSignature(nil)
	raw, err := TxToBytes(tx)
	tx.SetSignature(sig)
	if err != nil {
		logger.Panicf("Failed to encode tx %v: %v", tx, err)
	}
	return append(encodeToBytes(chainID), raw...)
}

// SignTx signs the transaction with the given key
func SignTx(chainID string, tx Tx, key *crypto.PrivateKey) error {
	sig, err := key.Sign(SignBytes(chainID, tx))
	if err != nil {
		return err
	}
	tx.SetSignature(sig.ToBytes())
	return nil
}

// VerifyTxSignature checks that the transaction is signed by its sender
func VerifyTxSignature(chainID string, tx Tx) error {
	sig, err := crypto.SignatureFromBytes(tx.GetSignature())
	if err != nil {
		return err
	}
	signer, err := sig.RecoverSignerAddress(SignBytes(chainID, tx))
	if err != nil {
		return err
	}
	if signer != tx.Sender() {
		return fmt.Errorf("tx signed by %v, sender is %v", signer, tx.Sender())
	}
	return nil
}

func encodeToBytes(str string) []byte {
	encodedBytes, err := rlp.EncodeToBytes(str)
	if err != nil {
		log.Panicf("Failed to encode %v: %v", str, err)
	}
	return encodedBytes
}

//-----------------------------------------------------------------------------

type SubmitCheckpointTx struct {
	TxHeader
	Vote       common.Bytes
	Signatures []common.Bytes
	ExtraData  common.Bytes
}

func (tx *SubmitCheckpointTx) String() string {
	return fmt.Sprintf("SubmitCheckpointTx{From: %v, Vote: %v, NumSigs: %v, ExtraData: %v}",
		tx.From, []byte(tx.Vote), len(tx.Signatures), []byte(tx.ExtraData))
}

type DepositNativeTx struct {
	TxHeader
	Value *big.Int
}

func (tx *DepositNativeTx) String() string {
	return fmt.Sprintf("DepositNativeTx{From: %v, Value: %v}", tx.From, tx.Value)
}

// DepositFungibleTx deposits Amount of Token. An empty User deposits for the sender.
type DepositFungibleTx struct {
	TxHeader
	Token  common.Address
	User   common.Address
	Amount *big.Int
}

func (tx *DepositFungibleTx) String() string {
	return fmt.Sprintf("DepositFungibleTx{From: %v, Token: %v, User: %v, Amount: %v}",
		tx.From, tx.Token, tx.User, tx.Amount)
}

// DepositNonFungibleTx deposits one token instance. An empty User deposits for the sender.
type DepositNonFungibleTx struct {
	TxHeader
	Token   common.Address
	User    common.Address
	TokenID *big.Int
}

func (tx *DepositNonFungibleTx) String() string {
	return fmt.Sprintf("DepositNonFungibleTx{From: %v, Token: %v, User: %v, TokenID: %v}",
		tx.From, tx.Token, tx.User, tx.TokenID)
}

type DepositBatchTx struct {
	TxHeader
	Tokens []common.Address
	Values []*big.Int
	User   common.Address
}

func (tx *DepositBatchTx) String() string {
	return fmt.Sprintf("DepositBatchTx{From: %v, Tokens: %v, Values: %v, User: %v}",
		tx.From, tx.Tokens, tx.Values, tx.User)
}

type ReleaseAssetTx struct {
	TxHeader
	Token common.Address
	User  common.Address
	Value *big.Int
}

func (tx *ReleaseAssetTx) String() string {
	return fmt.Sprintf("ReleaseAssetTx{From: %v, Token: %v, User: %v, Value: %v}",
		tx.From, tx.Token, tx.User, tx.Value)
}

type RelayRegisterTx struct {
	TxHeader
	RelaySender common.Address
	Receiver    common.Address
}

func (tx *RelayRegisterTx) String() string {
	return fmt.Sprintf("RelayRegisterTx{From: %v, Sender: %v, Receiver: %v}", tx.From, tx.RelaySender, tx.Receiver)
}

type RelayPostTx struct {
	TxHeader
	Receiver common.Address
	Payload  common.Bytes
}

func (tx *RelayPostTx) String() string {
	return fmt.Sprintf("RelayPostTx{From: %v, Receiver: %v, Payload: %v}", tx.From, tx.Receiver, tx.Payload)
}

type RefreshCustodyTx struct {
	TxHeader
}

func (tx *RefreshCustodyTx) String() string {
	return fmt.Sprintf("RefreshCustodyTx{From: %v}", tx.From)
}

type SetCustodyLockTx struct {
	TxHeader
	Locked bool
}

func (tx *SetCustodyLockTx) String() string {
	return fmt.Sprintf("SetCustodyLockTx{From: %v, Locked: %v}", tx.From, tx.Locked)
}

type SetDomainIDTx struct {
	TxHeader
	DomainID common.Hash
}

func (tx *SetDomainIDTx) String() string {
	return fmt.Sprintf("SetDomainIDTx{From: %v, DomainID: %v}", tx.From, tx.DomainID.Hex())
}

type MapTokenTx struct {
	TxHeader
	RootToken   common.Address
	ChildToken  common.Address
	NonFungible bool
}

func (tx *MapTokenTx) String() string {
	return fmt.Sprintf("MapTokenTx{From: %v, RootToken: %v, ChildToken: %v, NonFungible: %v}",
		tx.From, tx.RootToken, tx.ChildToken, tx.NonFungible)
}

type SetPredicateTx struct {
	TxHeader
	Predicate  common.Address
	Authorized bool
}

func (tx *SetPredicateTx) String() string {
	return fmt.Sprintf("SetPredicateTx{From: %v, Predicate: %v, Authorized: %v}", tx.From, tx.Predicate, tx.Authorized)
}

type UpdateDirectoryTx struct {
	TxHeader
	ChildChain common.Address
	Relay      common.Address
}

func (tx *UpdateDirectoryTx) String() string {
	return fmt.Sprintf("UpdateDirectoryTx{From: %v, ChildChain: %v, Relay: %v}", tx.From, tx.ChildChain, tx.Relay)
}

// MintTx mints Value of Token to To. An empty Token mints native currency; for a
// non-fungible token Value is the token id.
type MintTx struct {
	TxHeader
	Token common.Address
	To    common.Address
	Value *big.Int
}

func (tx *MintTx) String() string {
	return fmt.Sprintf("MintTx{From: %v, Token: %v, To: %v, Value: %v}", tx.From, tx.Token, tx.To, tx.Value)
}

// TokenTransferTx transfers Value of Token. An empty Token transfers native currency.
type TokenTransferTx struct {
	TxHeader
	Token common.Address
	To    common.Address
	Value *big.Int
}

func (tx *TokenTransferTx) String() string {
	return fmt.Sprintf("TokenTransferTx{From: %v, Token: %v, To: %v, Value: %v}", tx.From, tx.Token, tx.To, tx.Value)
}

type TokenApproveTx struct {
	TxHeader
	Token   common.Address
	Spender common.Address
	Value   *big.Int
}

func (tx *TokenApproveTx) String() string {
	return fmt.Sprintf("TokenApproveTx{From: %v, Token: %v, Spender: %v, Value: %v}", tx.From, tx.Token, tx.Spender, tx.Value)
}

// SafeTransferTx transfers Value of Token to To and notifies To when it is a
// contract that declares the matching receive capability.
type SafeTransferTx struct {
	TxHeader
	Token common.Address
	To    common.Address
	Value *big.Int
	Data  common.Bytes
}

func (tx *SafeTransferTx) String() string {
	return fmt.Sprintf("SafeTransferTx{From: %v, Token: %v, To: %v, Value: %v, Data: %v}",
		tx.From, tx.Token, tx.To, tx.Value, []byte(tx.Data))
}

//-----------------------------------------------------------------------------

// TxToBytes encodes the transaction as its type byte followed by the RLP body
func TxToBytes(t Tx) ([]byte, error) {
	var txType TxType
	switch t.(type) {
	case *SubmitCheckpointTx:
		txType = TxSubmitCheckpoint
	case *DepositNativeTx:
		txType = TxDepositNative
	case *DepositFungibleTx:
		txType = TxDepositFungible
	case *DepositNonFungibleTx:
		txType = TxDepositNonFungible
	case *DepositBatchTx:
		txType = TxDepositBatch
	case *ReleaseAssetTx:
		txType = TxReleaseAsset
	case *RelayRegisterTx:
		txType = TxRelayRegister
	case *RelayPostTx:
		txType = TxRelayPost
	case *RefreshCustodyTx:
		txType = TxRefreshCustody
	case *SetCustodyLockTx:
		txType = TxSetCustodyLock
	case *SetDomainIDTx:
		txType = TxSetDomainID
	case *MapTokenTx:
		txType = TxMapToken
	case *SetPredicateTx:
		txType = TxSetPredicate
	case *UpdateDirectoryTx:
		txType = TxUpdateDirectory
	case *MintTx:
		txType = TxMint
	case *TokenTransferTx:
		txType = TxTokenTransfer
	case *TokenApproveTx:
		txType = TxTokenApprove
	case *SafeTransferTx:
		txType = TxSafeTransfer
	default:
		return nil, fmt.Errorf("unsupported tx type: %T", t)
	}
	body, err := rlp.EncodeToBytes(t)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(txType)}, body...), nil
}

// TxFromBytes decodes a transaction produced by TxToBytes
func TxFromBytes(raw []byte) (Tx, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty tx bytes")
	}
	var tx Tx
	switch TxType(raw[0]) {
	case TxSubmitCheckpoint:
		tx = &SubmitCheckpointTx{}
	case TxDepositNative:
		tx = &DepositNativeTx{}
	case TxDepositFungible:
		tx = &DepositFungibleTx{}
	case TxDepositNonFungible:
		tx = &DepositNonFungibleTx{}
	case TxDepositBatch:
		tx = &DepositBatchTx{}
	case TxReleaseAsset:
		tx = &ReleaseAssetTx{}
	case TxRelayRegister:
		tx = &RelayRegisterTx{}
	case TxRelayPost:
		tx = &RelayPostTx{}
	case TxRefreshCustody:
		tx = &RefreshCustodyTx{}
	case TxSetCustodyLock:
		tx = &SetCustodyLockTx{}
	case TxSetDomainID:
		tx = &SetDomainIDTx{}
	case TxMapToken:
		tx = &MapTokenTx{}
	case TxSetPredicate:
		tx = &SetPredicateTx{}
	case TxUpdateDirectory:
		tx = &UpdateDirectoryTx{}
	case TxMint:
		tx = &MintTx{}
	case TxTokenTransfer:
		tx = &TokenTransferTx{}
	case TxTokenApprove:
		tx = &TokenApproveTx{}
	case TxSafeTransfer:
		tx = &SafeTransferTx{}
	default:
		return nil, fmt.Errorf("unknown tx type: %v", raw[0])
	}
	if err := rlp.DecodeBytes(raw[1:], tx); err != nil {
		return nil, err
	}
	return tx, nil
}

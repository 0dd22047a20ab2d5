package crypto

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/thetatoken/rootchain/common"
	"golang.org/x/crypto/sha3"
)

// SignatureLength is the length of a recoverable [R || S || V] signature.
const SignatureLength = 65

// ----------------------- Keys ----------------------- //

//
// PublicKey wraps a secp256k1 public key
//
type PublicKey struct {
	pubKey *ecdsa.PublicKey
}

// Address returns the address corresponding to the public key
func (pk *PublicKey) Address() common.Address {
	return common.BytesToAddress(ethcrypto.PubkeyToAddress(*pk.pubKey).Bytes())
}

// IsEmpty indicates whether the public key is empty
func (pk *PublicKey) IsEmpty() bool {
	return pk == nil || pk.pubKey == nil || pk.pubKey.X == nil || pk.pubKey.Y == nil
}

// ToBytes returns the uncompressed bytes representation of the public key
func (pk *PublicKey) ToBytes() common.Bytes {
	return ethcrypto.FromECDSAPub(pk.pubKey)
}

// PublicKeyFromBytes parses an uncompressed public key
func PublicKeyFromBytes(b common.Bytes) (*PublicKey, error) {
	pub, err := ethcrypto.UnmarshalPubkey(b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{pubKey: pub}, nil
}

// VerifySignature checks that sig was produced over keccak256(msg) by the key
func (pk *PublicKey) VerifySignature(msg common.Bytes, sig *Signature) bool {
	if sig == nil || sig.IsEmpty() {
		return false
	}
	signer, err := sig.RecoverSignerAddress(msg)
	if err != nil {
		return false
	}
	return signer == pk.Address()
}

//
// PrivateKey wraps a secp256k1 private key
//
type PrivateKey struct {
	privKey *ecdsa.PrivateKey
}

// PublicKey returns the public key corresponding to the private key
func (sk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{pubKey: &sk.privKey.PublicKey}
}

// ToBytes returns the bytes representation of the private key
func (sk *PrivateKey) ToBytes() common.Bytes {
	return ethcrypto.FromECDSA(sk.privKey)
}

// PrivateKeyFromBytes parses a 32 byte private key
func PrivateKeyFromBytes(b common.Bytes) (*PrivateKey, error) {
	priv, err := ethcrypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{privKey: priv}, nil
}

// Sign signs keccak256(msg)
func (sk *PrivateKey) Sign(msg common.Bytes) (*Signature, error) {
	return sk.SignHash(Keccak256Hash(msg))
}

// SignHash signs a precomputed 32 byte digest
func (sk *PrivateKey) SignHash(hash common.Hash) (*Signature, error) {
	data, err := ethcrypto.Sign(hash.Bytes(), sk.privKey)
	if err != nil {
		return nil, err
	}
	return &Signature{data: data}, nil
}

// SaveToFile saves the private key to the designated file
func (sk *PrivateKey) SaveToFile(filepath string) error {
	return ethcrypto.SaveECDSA(filepath, sk.privKey)
}

// GenerateKeyPair generates a random private/public key pair
func GenerateKeyPair() (*PrivateKey, *PublicKey, error) {
	priv, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	sk := &PrivateKey{privKey: priv}
	return sk, sk.PublicKey(), nil
}

// LoadPrivateKeyFromFile loads the private key from the given file
func LoadPrivateKeyFromFile(filepath string) (*PrivateKey, error) {
	priv, err := ethcrypto.LoadECDSA(filepath)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{privKey: priv}, nil
}

// ----------------------- Signature ----------------------- //

//
// Signature is a recoverable secp256k1 signature
//
type Signature struct {
	data common.Bytes
}

// SignatureFromBytes wraps raw signature bytes
func SignatureFromBytes(b common.Bytes) (*Signature, error) {
	if len(b) != SignatureLength {
		return nil, fmt.Errorf("invalid signature length: %v", len(b))
	}
	return &Signature{data: common.CopyBytes(b)}, nil
}

// IsEmpty indicates whether the signature is empty
func (sig *Signature) IsEmpty() bool {
	return len(sig.data) == 0
}

// ToBytes returns the bytes representation of the signature
func (sig *Signature) ToBytes() common.Bytes {
	return sig.data
}

// RecoverSignerAddress recovers the address that signed keccak256(msg)
func (sig *Signature) RecoverSignerAddress(msg common.Bytes) (common.Address, error) {
	return sig.RecoverSignerAddressFromHash(Keccak256Hash(msg))
}

// RecoverSignerAddressFromHash recovers the address that signed the digest
func (sig *Signature) RecoverSignerAddressFromHash(hash common.Hash) (common.Address, error) {
	if len(sig.data) != SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: %v", len(sig.data))
	}
	pub, err := ethcrypto.SigToPub(hash.Bytes(), sig.data)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "signature recovery failed")
	}
	return common.BytesToAddress(ethcrypto.PubkeyToAddress(*pub).Bytes()), nil
}

// ----------------------- Hashing ----------------------- //

// Keccak256 calculates and returns the Keccak256 hash of the input data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates and returns the Keccak256 hash of the input data,
// converting it to an internal Hash data structure.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	return common.BytesToHash(Keccak256(data...))
}

// Sha256 calculates the SHA-256 digest of data.
func Sha256(data []byte) common.Hash {
	return common.Hash(sha256.Sum256(data))
}

package common

import (
	"encoding/binary"
	"math/big"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	// HashLength is the expected length of the hash
	HashLength = gethcommon.HashLength
	// AddressLength is the expected length of the address
	AddressLength = gethcommon.AddressLength
)

// Bytes is a raw byte slice used for keys and encoded values. It marshals to
// 0x-prefixed hex.
type Bytes = hexutil.Bytes

// ------------------------------- Hash -----------------------------------

// Hash represents the 32 byte Keccak256 hash of arbitrary data.
type Hash gethcommon.Hash

// BytesToHash sets b to hash. If b is larger than len(h), b will be cropped from the left.
func BytesToHash(b []byte) Hash {
	return Hash(gethcommon.BytesToHash(b))
}

// BigToHash sets byte representation of b to hash.
func BigToHash(b *big.Int) Hash {
	if b == nil {
		return Hash{}
	}
	return Hash(gethcommon.BigToHash(b))
}

// HexToHash sets byte representation of s to hash.
func HexToHash(s string) Hash {
	return Hash(gethcommon.HexToHash(s))
}

// Bytes gets the byte representation of the underlying hash.
func (h Hash) Bytes() []byte { return h[:] }

// Big converts a hash to a big integer.
func (h Hash) Big() *big.Int { return new(big.Int).SetBytes(h[:]) }

// Hex converts a hash to a hex string.
func (h Hash) Hex() string { return hexutil.Encode(h[:]) }

// String implements the stringer interface
func (h Hash) String() string { return h.Hex() }

// IsEmpty indicates whether all bytes of the hash are zero
func (h Hash) IsEmpty() bool { return h == Hash{} }

// SetBytes sets the hash to the value of b, cropping from the left.
func (h *Hash) SetBytes(b []byte) {
	(*gethcommon.Hash)(h).SetBytes(b)
}

// MarshalText returns the hex representation of h.
func (h Hash) MarshalText() ([]byte, error) {
	return hexutil.Bytes(h[:]).MarshalText()
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Hash", input, h[:])
}

// ------------------------------- Address -----------------------------------

// Address represents the 20 byte address of an account or a component.
type Address gethcommon.Address

// BytesToAddress returns Address with value b. If b is larger than len(h), b will be cropped from the left.
func BytesToAddress(b []byte) Address {
	return Address(gethcommon.BytesToAddress(b))
}

// BigToAddress returns Address with byte values of b.
func BigToAddress(b *big.Int) Address {
	if b == nil {
		return Address{}
	}
	return Address(gethcommon.BigToAddress(b))
}

// HexToAddress returns Address with byte values of s.
func HexToAddress(s string) Address {
	return Address(gethcommon.HexToAddress(s))
}

// Bytes gets the string representation of the underlying address.
func (a Address) Bytes() []byte { return a[:] }

// Big converts an address to a big integer.
func (a Address) Big() *big.Int { return new(big.Int).SetBytes(a[:]) }

// Hex returns the lower case hex string representation of the address.
func (a Address) Hex() string { return hexutil.Encode(a[:]) }

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// IsEmpty indicates whether the address is the zero address
func (a Address) IsEmpty() bool { return a == Address{} }

// SetBytes sets the address to the value of b, cropping from the left.
func (a *Address) SetBytes(b []byte) {
	(*gethcommon.Address)(a).SetBytes(b)
}

// MarshalText returns the hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return hexutil.Bytes(a[:]).MarshalText()
}

// UnmarshalText parses an address in hex syntax.
func (a *Address) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Address", input, a[:])
}

// ------------------------------- Helpers -----------------------------------

// FromHex returns the bytes represented by the hexadecimal string s.
// s may be prefixed with "0x".
func FromHex(s string) []byte {
	return gethcommon.FromHex(s)
}

// CopyBytes returns an exact copy of the provided bytes.
func CopyBytes(b []byte) []byte {
	return gethcommon.CopyBytes(b)
}

// LeftPadBytes zero-pads slice to the left up to length l.
func LeftPadBytes(slice []byte, l int) []byte {
	return gethcommon.LeftPadBytes(slice, l)
}

// Uint64ToBytes returns the big-endian encoding of n, used for ordered keys
func Uint64ToBytes(n uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, n)
}

// Package rlpreader decodes RLP encoded buffers into typed views without copying
// them. An Item only records where its encoding sits inside the owning buffer;
// bytes are copied out only when a final value is materialized.
package rlpreader

import (
	"errors"
	"math/big"

	pkgerrors "github.com/pkg/errors"
	"github.com/thetatoken/rootchain/common"
)

// ErrMalformed is returned for every length or format violation.
var ErrMalformed = errors.New("malformed encoding")

const (
	strShortStart  byte = 0x80
	strLongStart   byte = 0xb8
	listShortStart byte = 0xc0
	listLongStart  byte = 0xf8

	wordSize = 32

	// prefix byte of a 32 byte string
	strictUintPrefix = strShortStart + wordSize
)

// Item is a view of one encoded element: the owning buffer, the offset of the
// element's first prefix byte, and the total encoded length.
type Item struct {
	buf    []byte
	offset int
	length int
}

// DecodeItem wraps the whole buffer as one item. The buffer must hold exactly one
// complete element.
func DecodeItem(buf []byte) (Item, error) {
	if len(buf) == 0 {
		return Item{}, malformed("empty buffer")
	}
	prefixLen, payloadLen, err := header(buf, 0, len(buf))
	if err != nil {
		return Item{}, err
	}
	if prefixLen+payloadLen != len(buf) {
		return Item{}, malformed("item declares %v bytes, buffer holds %v", prefixLen+payloadLen, len(buf))
	}
	return Item{buf: buf, offset: 0, length: len(buf)}, nil
}

// Len returns the total encoded length of the item, prefix included.
func (item Item) Len() int {
	return item.length
}

// IsList classifies the item by its first prefix byte.
func (item Item) IsList() bool {
	if item.length == 0 {
		return false
	}
	return item.buf[item.offset] >= listShortStart
}

// Iterator returns a fresh forward-only iterator over the children of a list item.
func (item Item) Iterator() (*Iterator, error) {
	if !item.IsList() {
		return nil, malformed("item is not a list")
	}
	prefixLen, _, err := item.header()
	if err != nil {
		return nil, err
	}
	return &Iterator{
		buf:  item.buf,
		next: item.offset + prefixLen,
		end:  item.offset + item.length,
	}, nil
}

// ToList returns all children of a list item.
func (item Item) ToList() ([]Item, error) {
	it, err := item.Iterator()
	if err != nil {
		return nil, err
	}
	var items []Item
	for it.HasNext() {
		child, err := it.Next()
		if err != nil {
			return nil, err
		}
		items = append(items, child)
	}
	return items, nil
}

// ToUint decodes a scalar of at most 32 payload bytes as a big-endian unsigned integer.
func (item Item) ToUint() (*big.Int, error) {
	if item.length == 0 || item.length > wordSize+1 {
		return nil, malformed("uint item has length %v", item.length)
	}
	payload, err := item.scalarPayload()
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(payload), nil
}

// ToUintStrict decodes a scalar that must be padded to exactly 32 payload bytes.
func (item Item) ToUintStrict() (*big.Int, error) {
	if item.length != wordSize+1 || item.buf[item.offset] != strictUintPrefix {
		return nil, malformed("strict uint item has length %v", item.length)
	}
	return new(big.Int).SetBytes(item.buf[item.offset+1 : item.offset+item.length]), nil
}

// ToUint64 decodes a scalar that must fit in 64 bits.
func (item Item) ToUint64() (uint64, error) {
	v, err := item.ToUint()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, malformed("value %v overflows uint64", v)
	}
	return v.Uint64(), nil
}

// ToAddress decodes a 21 byte item (prefix + 20 bytes) as an address.
func (item Item) ToAddress() (common.Address, error) {
	if item.length != common.AddressLength+1 || item.IsList() {
		return common.Address{}, malformed("address item has length %v", item.length)
	}
	return common.BytesToAddress(item.buf[item.offset+1 : item.offset+item.length]), nil
}

// ToBoolean decodes a single byte item; any nonzero byte is true.
func (item Item) ToBoolean() (bool, error) {
	if item.length != 1 {
		return false, malformed("boolean item has length %v", item.length)
	}
	return item.buf[item.offset] != 0, nil
}

// ToRawBytes returns a copy of the full encoding of the item, prefix included.
func (item Item) ToRawBytes() []byte {
	return common.CopyBytes(item.buf[item.offset : item.offset+item.length])
}

// ToPayloadBytes returns a copy of the item's payload, prefix stripped.
func (item Item) ToPayloadBytes() ([]byte, error) {
	if item.length == 0 {
		return nil, malformed("empty item")
	}
	prefixLen, payloadLen, err := item.header()
	if err != nil {
		return nil, err
	}
	start := item.offset + prefixLen
	return common.CopyBytes(item.buf[start : start+payloadLen]), nil
}

func (item Item) scalarPayload() ([]byte, error) {
	if item.IsList() {
		return nil, malformed("expected a scalar, got a list")
	}
	prefixLen, payloadLen, err := item.header()
	if err != nil {
		return nil, err
	}
	start := item.offset + prefixLen
	return item.buf[start : start+payloadLen], nil
}

func (item Item) header() (int, int, error) {
	return header(item.buf, item.offset, item.offset+item.length)
}

// Iterator walks the children of a list item in order.
type Iterator struct {
	buf  []byte
	next int
	end  int
}

// HasNext reports whether another child remains.
func (it *Iterator) HasNext() bool {
	return it.next < it.end
}

// Next returns the next child. It fails when no child remains or the child's
// declared length overruns its parent.
func (it *Iterator) Next() (Item, error) {
	if !it.HasNext() {
		return Item{}, malformed("iterator exhausted")
	}
	prefixLen, payloadLen, err := header(it.buf, it.next, it.end)
	if err != nil {
		return Item{}, err
	}
	child := Item{buf: it.buf, offset: it.next, length: prefixLen + payloadLen}
	it.next += child.length
	return child, nil
}

// header parses the prefix at buf[offset] and returns the prefix and payload
// lengths. The element must end at or before end.
func header(buf []byte, offset, end int) (prefixLen int, payloadLen int, err error) {
	if offset < 0 || end > len(buf) || offset >= end {
		return 0, 0, malformed("offset %v out of range", offset)
	}
	avail := end - offset
	b0 := buf[offset]

	switch {
	case b0 < strShortStart:
		return 0, 1, nil
	case b0 < strLongStart:
		prefixLen, payloadLen = 1, int(b0-strShortStart)
	case b0 < listShortStart:
		prefixLen, payloadLen, err = longHeader(buf, offset, avail, int(b0-strLongStart)+1)
		if err != nil {
			return 0, 0, err
		}
	case b0 < listLongStart:
		prefixLen, payloadLen = 1, int(b0-listShortStart)
	default:
		prefixLen, payloadLen, err = longHeader(buf, offset, avail, int(b0-listLongStart)+1)
		if err != nil {
			return 0, 0, err
		}
	}

	if payloadLen > avail-prefixLen {
		return 0, 0, malformed("payload of %v bytes overruns the %v available", payloadLen, avail-prefixLen)
	}
	return prefixLen, payloadLen, nil
}

func longHeader(buf []byte, offset, avail, lenOfLen int) (int, int, error) {
	if lenOfLen > 8 {
		return 0, 0, malformed("length of length %v too large", lenOfLen)
	}
	if 1+lenOfLen > avail {
		return 0, 0, malformed("length prefix truncated")
	}
	var length uint64
	for _, b := range buf[offset+1 : offset+1+lenOfLen] {
		length = length<<8 | uint64(b)
	}
	if length > uint64(avail) {
		return 0, 0, malformed("declared length %v overruns the buffer", length)
	}
	return 1 + lenOfLen, int(length), nil
}

func malformed(format string, args ...interface{}) error {
	return pkgerrors.Wrapf(ErrMalformed, format, args...)
}

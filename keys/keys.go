// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package keys

import (
	"encoding/binary"

	"github.com/ava-labs/weightedvm/consts"
)

const chunkSize = 64 // bytes

// Valid reports whether [key] is long enough to carry a chunk suffix.
func Valid(key string) bool {
	return len(key) >= consts.Uint16Len
}

// MaxChunks returns the number of value chunks [key] may hold.
func MaxChunks(key []byte) (uint16, bool) {
	l := len(key)
	if l < consts.Uint16Len {
		return 0, false
	}
	return binary.BigEndian.Uint16(key[l-consts.Uint16Len:]), true
}

func NumChunks(value []byte) (uint16, bool) {
	return numChunks(len(value))
}

func numChunks(valueLen int) (uint16, bool) {
	if valueLen == 0 {
		return 0, true
	}
	raw := valueLen/chunkSize + 1
	if raw > int(consts.MaxUint16) {
		return 0, false
	}
	return uint16(raw), true
}

// VerifyValue checks that [value] fits in the chunks reserved by [key].
func VerifyValue(key []byte, value []byte) bool {
	valueChunks, ok := NumChunks(value)
	if !ok {
		return false
	}
	keyChunks, ok := MaxChunks(key)
	if !ok {
		return false
	}
	return valueChunks <= keyChunks
}

// EncodeChunks appends the [maxChunks] suffix to [key].
func EncodeChunks(key []byte, maxChunks uint16) []byte {
	return binary.BigEndian.AppendUint16(key, maxChunks)
}

// Encode appends a suffix large enough to hold [maxSize] bytes.
func Encode(key []byte, maxSize int) ([]byte, bool) {
	chunks, ok := numChunks(maxSize)
	if !ok {
		return nil, false
	}
	return EncodeChunks(key, chunks), true
}

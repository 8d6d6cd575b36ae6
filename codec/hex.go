// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// LoadHex decodes [s], with or without a 0x prefix. A non-negative
// [expectedSize] is enforced.
func LoadHex(s string, expectedSize int) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, err
	}
	if expectedSize >= 0 && len(b) != expectedSize {
		return nil, fmt.Errorf("%w: %d bytes, expected %d", ErrInvalidSize, len(b), expectedSize)
	}
	return b, nil
}

// Bytes is encoded as 0x prefixed hex in JSON and YAML.
type Bytes []byte

func (b Bytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bytes) UnmarshalText(text []byte) error {
	v, err := LoadHex(string(text), -1)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

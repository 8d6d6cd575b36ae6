// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/json"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

func TestAddressText(t *testing.T) {
	require := require.New(t)
	addr := CreateAddress(0, ids.GenerateTestID())

	text, err := addr.MarshalText()
	require.NoError(err)

	var parsed Address
	require.NoError(parsed.UnmarshalText(text))
	require.Equal(addr, parsed)
}

func TestAddressJSON(t *testing.T) {
	require := require.New(t)
	addr := CreateAddress(16, ids.GenerateTestID())

	b, err := json.Marshal(addr)
	require.NoError(err)

	var parsed Address
	require.NoError(json.Unmarshal(b, &parsed))
	require.Equal(addr, parsed)
	require.Equal(uint8(16), parsed.TypeID())
	require.Equal(addr.ID(), parsed.ID())
}

func TestAddressUnmarshalTextWrongSize(t *testing.T) {
	var a Address
	require.ErrorIs(t, a.UnmarshalText([]byte("0x0102")), ErrInvalidSize)
}

func TestAddressBech32(t *testing.T) {
	require := require.New(t)
	addr := CreateAddress(0, ids.GenerateTestID())

	s, err := AddressBech32("weighted", addr)
	require.NoError(err)

	parsed, err := ParseAddressBech32("weighted", s)
	require.NoError(err)
	require.Equal(addr, parsed)

	_, err = ParseAddressBech32("other", s)
	require.ErrorIs(err, ErrIncorrectHRP)

	parsed, err = ParseAddress("weighted", s)
	require.NoError(err)
	require.Equal(addr, parsed)

	hex, err := addr.MarshalText()
	require.NoError(err)
	parsed, err = ParseAddress("weighted", string(hex))
	require.NoError(err)
	require.Equal(addr, parsed)
}

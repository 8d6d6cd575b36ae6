// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const AddressLen = 33

// Address represents the 33 byte address of an account, a program derived
// authority or a token mint. The first byte is the type id.
type Address [AddressLen]byte

var EmptyAddress = Address{}

// CreateAddress returns [Address] made from concatenating
// [typeID] with [id].
func CreateAddress(typeID uint8, id ids.ID) Address {
	a := make([]byte, AddressLen)
	a[0] = typeID
	copy(a[1:], id[:])
	return Address(a)
}

// TypeID returns the leading type byte of a.
func (a Address) TypeID() uint8 {
	return a[0]
}

// ID returns the 32 bytes following the type byte.
func (a Address) ID() ids.ID {
	var id ids.ID
	copy(id[:], a[1:])
	return id
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalText returns the hex representation of a.
func (a Address) MarshalText() ([]byte, error) {
	result := make([]byte, len(a)*2+2)
	copy(result, `0x`)
	hex.Encode(result[2:], a[:])
	return result, nil
}

// UnmarshalText parses a hex-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	b, err := LoadHex(string(input), AddressLen)
	if err != nil {
		return err
	}
	copy(a[:], b)
	return nil
}

// AddressBech32 returns a Bech32 address string with human readable part [hrp].
func AddressBech32(hrp string, a Address) (string, error) {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, conv)
}

// MustAddressBech32 is the same as [AddressBech32] but panics on error.
func MustAddressBech32(hrp string, a Address) string {
	addr, err := AddressBech32(hrp, a)
	if err != nil {
		panic(err)
	}
	return addr
}

// ParseAddressBech32 parses a Bech32 encoded address string and checks its
// human readable part.
func ParseAddressBech32(hrp, saddr string) (Address, error) {
	phrp, p, err := bech32.Decode(saddr)
	if err != nil {
		return EmptyAddress, err
	}
	if phrp != hrp {
		return EmptyAddress, ErrIncorrectHRP
	}
	// The parsed value may be greater than [minLength] because the
	// underlying Bech32 implementation requires bytes to each encode 5 bits
	// instead of 8 (and we must pad the input to ensure we fill all bytes):
	// https://github.com/btcsuite/btcd/blob/902f797b0c4b3af3f7196d2f5d2343931d1b2bdf/btcutil/bech32/bech32.go#L325-L331
	converted, err := bech32.ConvertBits(p, 5, 8, false)
	if err != nil {
		return EmptyAddress, err
	}
	if len(converted) != AddressLen {
		return EmptyAddress, fmt.Errorf("%w: %d bytes", ErrInvalidAddress, len(converted))
	}
	return Address(converted[:AddressLen]), nil
}

// ParseAddress accepts either the hex or the Bech32 form of an address.
func ParseAddress(hrp, s string) (Address, error) {
	if len(s) >= 2 && s[:2] == "0x" {
		var a Address
		return a, a.UnmarshalText([]byte(s))
	}
	return ParseAddressBech32(hrp, s)
}

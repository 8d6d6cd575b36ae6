// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/binary"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
)

// Key prefixes
const (
	vaultPrefix byte = iota
	reservePrefix
	poolPrefix
	tokenPrefix
	balancePrefix
)

// Chunks
const (
	VaultChunks   uint16 = 1
	ReserveChunks uint16 = 1
	PoolChunks    uint16 = 7
	TokenChunks   uint16 = 1
	BalanceChunks uint16 = 1
)

const MaxSymbolSize = 8

func addressKey(prefix byte, addr codec.Address, chunks uint16) []byte {
	k := make([]byte, 1+codec.AddressLen+consts.Uint16Len)
	k[0] = prefix
	copy(k[1:], addr[:])
	binary.BigEndian.PutUint16(k[1+codec.AddressLen:], chunks)
	return k
}

func pairKey(prefix byte, a codec.Address, b codec.Address, chunks uint16) []byte {
	k := make([]byte, 1+codec.AddressLen*2+consts.Uint16Len)
	k[0] = prefix
	copy(k[1:], a[:])
	copy(k[1+codec.AddressLen:], b[:])
	binary.BigEndian.PutUint16(k[1+codec.AddressLen*2:], chunks)
	return k
}

// VaultKey is the key of the [VaultState] stored at a derived vault address.
func VaultKey(vault codec.Address) []byte {
	return addressKey(vaultPrefix, vault, VaultChunks)
}

// ReserveKey is the key of the amount of [token] custodied by [vault].
func ReserveKey(vault codec.Address, token codec.Address) []byte {
	return pairKey(reservePrefix, vault, token, ReserveChunks)
}

func PoolKey(pool codec.Address) []byte {
	return addressKey(poolPrefix, pool, PoolChunks)
}

func TokenKey(token codec.Address) []byte {
	return addressKey(tokenPrefix, token, TokenChunks)
}

func BalanceKey(token codec.Address, owner codec.Address) []byte {
	return pairKey(balancePrefix, token, owner, BalanceChunks)
}

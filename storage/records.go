// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"github.com/ava-labs/weightedvm/codec"
)

// VaultState is the custody record of a vault. Reserves are stored next to
// it, one key per token.
type VaultState struct {
	Owner     codec.Address `json:"owner"`
	Bump      uint8         `json:"bump"`
	PoolCount uint64        `json:"poolCount"`
}

// PoolState is the bookkeeping of a weighted pool over the reserves of
// [Vault]. Weights are 18 decimal fractions summing to one.
type PoolState struct {
	Vault               codec.Address   `json:"vault"`
	LpMint              codec.Address   `json:"lpMint"`
	Tokens              []codec.Address `json:"tokens"`
	Weights             []uint64        `json:"weights"`
	SwapFeeBps          uint16          `json:"swapFeeBps"`
	TotalLpSupply       uint64          `json:"totalLpSupply"`
	Bump                uint8           `json:"bump"`
	LpMintBump          uint8           `json:"lpMintBump"`
	LpMintAuthorityBump uint8           `json:"lpMintAuthorityBump"`
}

// TokenIndex returns the position of [token] in the pool or -1.
func (p *PoolState) TokenIndex(token codec.Address) int {
	for i, t := range p.Tokens {
		if t == token {
			return i
		}
	}
	return -1
}

type TokenInfo struct {
	Symbol        string        `json:"symbol"`
	Decimals      uint8         `json:"decimals"`
	Supply        uint64        `json:"supply"`
	MintAuthority codec.Address `json:"mintAuthority"`
}

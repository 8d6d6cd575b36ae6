// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/weightedvm/authority"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/weightedmath"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

const (
	MinTokens = 2
	MaxTokens = 8

	// FeeCapBps is the exclusive upper bound of the swap fee.
	FeeCapBps uint16 = 1_000

	// MinWeight is 1%.
	MinWeight = weightedmath.OneUint64 / 100

	LPSymbol   = "WLP"
	LPDecimals = 18
)

// ValidateConfig checks the token set, weights and fee of a new pool.
func ValidateConfig(tokens []codec.Address, weights []uint64, swapFeeBps uint16) error {
	if len(tokens) < MinTokens || len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d", ErrInvalidTokenCount, len(tokens))
	}
	if len(weights) != len(tokens) {
		return fmt.Errorf("%w: %d weights for %d tokens", ErrInvalidWeights, len(weights), len(tokens))
	}
	seen := set.NewSet[codec.Address](len(tokens))
	for _, t := range tokens {
		if seen.Contains(t) {
			return fmt.Errorf("%w: %s", ErrIdenticalTokens, t)
		}
		seen.Add(t)
	}
	var sum uint64
	for i, w := range weights {
		if w < MinWeight {
			return fmt.Errorf("%w: weight %d below minimum", ErrInvalidWeights, i)
		}
		var err error
		sum, err = smath.Add64(sum, w)
		if err != nil {
			return fmt.Errorf("%w: weights overflow", ErrInvalidWeights)
		}
	}
	if sum != weightedmath.OneUint64 {
		return fmt.Errorf("%w: weights sum to %d", ErrInvalidWeights, sum)
	}
	if swapFeeBps >= FeeCapBps {
		return fmt.Errorf("%w: %d >= %d bps", ErrFeeTooHigh, swapFeeBps, FeeCapBps)
	}
	return nil
}

// Address returns the pool derived for [vault].
func Address(vault codec.Address) (codec.Address, uint8, error) {
	return authority.Derive(authority.PoolProgram, authority.PoolStateSeed, vault)
}

// LPMint returns the LP token of [pool].
func LPMint(pool codec.Address) (codec.Address, uint8, error) {
	return authority.Derive(authority.PoolProgram, authority.LPMintSeed, pool)
}

// LPMintAuthority returns the address allowed to mint LP shares of [pool].
func LPMintAuthority(pool codec.Address) (codec.Address, uint8, error) {
	return authority.Derive(authority.PoolProgram, authority.LPMintAuthoritySeed, pool)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package weightedmath

import (
	"fmt"

	"lukechampine.com/uint128"
)

const (
	// InitialLPSupply is minted by the first deposit into an empty pool.
	InitialLPSupply uint64 = 1e18

	// MinimumLiquidity of the initial supply is locked forever.
	MinimumLiquidity uint64 = 1000
)

// ComputeProportionalLpOut returns the LP shares minted for [depositAmounts].
// An empty pool mints [InitialLPSupply]. Otherwise the mint follows the
// smallest deposit to reserve ratio so existing holders are never diluted.
func ComputeProportionalLpOut(depositAmounts []uint64, reserves []uint64, totalLpSupply uint64) (uint64, error) {
	if len(depositAmounts) != len(reserves) || len(depositAmounts) == 0 {
		return 0, ErrLengthMismatch
	}
	if totalLpSupply == 0 {
		for i, d := range depositAmounts {
			if d == 0 {
				return 0, fmt.Errorf("%w: initial deposit of token %d is zero", ErrInvalidReserves, i)
			}
		}
		return InitialLPSupply, nil
	}

	var lpOut uint128.Uint128
	for i, d := range depositAmounts {
		if reserves[i] == 0 {
			return 0, ErrInvalidReserves
		}
		share := uint128.From64(d).Mul64(totalLpSupply).Div64(reserves[i])
		if i == 0 || share.Cmp(lpOut) < 0 {
			lpOut = share
		}
	}
	if lpOut.Hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lpOut.Lo, nil
}

// ComputeProportionalAmountsIn returns the deposit backing [lpOut] shares,
// rounded up per token.
func ComputeProportionalAmountsIn(lpOut uint64, reserves []uint64, totalLpSupply uint64) ([]uint64, error) {
	if totalLpSupply == 0 {
		return nil, ErrInsufficientLiquidity
	}
	amounts := make([]uint64, len(reserves))
	for i, r := range reserves {
		q, rem := uint128.From64(r).Mul64(lpOut).QuoRem64(totalLpSupply)
		if rem != 0 {
			q = q.Add64(1)
		}
		if q.Hi != 0 {
			return nil, ErrArithmeticOverflow
		}
		amounts[i] = q.Lo
	}
	return amounts, nil
}

// ComputeWithdrawAmounts returns the pro rata share of every reserve owed for
// burning [lpAmountIn], rounded down.
func ComputeWithdrawAmounts(lpAmountIn uint64, reserves []uint64, totalLpSupply uint64) ([]uint64, error) {
	if totalLpSupply == 0 || lpAmountIn > totalLpSupply {
		return nil, fmt.Errorf("%w: burn %d of %d", ErrInsufficientLiquidity, lpAmountIn, totalLpSupply)
	}
	amounts := make([]uint64, len(reserves))
	for i, r := range reserves {
		amounts[i] = uint128.From64(r).Mul64(lpAmountIn).Div64(totalLpSupply).Lo
	}
	return amounts, nil
}

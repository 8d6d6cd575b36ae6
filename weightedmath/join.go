// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package weightedmath

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Joins and exits that move the reserves out of proportion. The part of an
// amount beyond its proportional share is an implicit swap and pays the swap
// fee; the proportional part is free.

func checkBalances(reserves, weights, amounts []uint64, totalLpSupply uint64) error {
	if len(reserves) != len(weights) || len(reserves) != len(amounts) || len(reserves) == 0 {
		return ErrLengthMismatch
	}
	if totalLpSupply == 0 {
		return fmt.Errorf("%w: pool has no shares", ErrInsufficientLiquidity)
	}
	for i := range reserves {
		if reserves[i] == 0 {
			return ErrInvalidReserves
		}
		if weights[i] == 0 || weights[i] > OneUint64 {
			return ErrInvalidWeights
		}
	}
	return nil
}

func checkBalance(reserve, weight, totalLpSupply uint64) error {
	if reserve == 0 {
		return ErrInvalidReserves
	}
	if weight == 0 || weight > OneUint64 {
		return ErrInvalidWeights
	}
	if totalLpSupply == 0 {
		return fmt.Errorf("%w: pool has no shares", ErrInsufficientLiquidity)
	}
	return nil
}

// subFloor returns a - b, or zero when b exceeds a.
func subFloor(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(a, b)
}

// ComputeLpOutGivenExactTokensIn returns the LP shares minted for depositing
// [amountsIn] in any proportion, including a single token. Rounds down.
func ComputeLpOutGivenExactTokensIn(
	reserves, weights, amountsIn []uint64,
	totalLpSupply uint64,
	feeBps uint16,
) (uint64, error) {
	if err := checkBalances(reserves, weights, amountsIn, totalLpSupply); err != nil {
		return 0, err
	}
	fee, err := FeeFraction(feeBps)
	if err != nil {
		return 0, err
	}

	// The weighted mean of the balance ratios is the growth a proportional
	// deposit of the same value would give every token.
	var (
		ratios = make([]*uint256.Int, len(reserves))
		mean   = new(uint256.Int)
	)
	for i, r := range reserves {
		balance := uint256.NewInt(r)
		ratios[i], err = DivDown(new(uint256.Int).Add(balance, uint256.NewInt(amountsIn[i])), balance)
		if err != nil {
			return 0, err
		}
		w, err := MulDown(ratios[i], uint256.NewInt(weights[i]))
		if err != nil {
			return 0, err
		}
		mean.Add(mean, w)
	}

	invariantRatio := One()
	for i, r := range reserves {
		if amountsIn[i] == 0 {
			continue
		}
		balance := uint256.NewInt(r)
		amount := uint256.NewInt(amountsIn[i])
		if ratios[i].Gt(mean) {
			nonTaxable, err := MulDown(balance, subFloor(mean, one))
			if err != nil {
				return 0, err
			}
			if nonTaxable.Gt(amount) {
				nonTaxable = amount
			}
			taxed, err := MulDown(new(uint256.Int).Sub(amount, nonTaxable), Complement(fee))
			if err != nil {
				return 0, err
			}
			amount = taxed.Add(taxed, nonTaxable)
		}
		ratio, err := DivDown(new(uint256.Int).Add(balance, amount), balance)
		if err != nil {
			return 0, err
		}
		power, err := PowDown(ratio, uint256.NewInt(weights[i]))
		if err != nil {
			return 0, err
		}
		invariantRatio, err = MulDown(invariantRatio, power)
		if err != nil {
			return 0, err
		}
	}
	if !invariantRatio.Gt(one) {
		return 0, nil
	}
	lpOut, err := MulDown(uint256.NewInt(totalLpSupply), invariantRatio.Sub(invariantRatio, one))
	if err != nil {
		return 0, err
	}
	return toUint64(lpOut)
}

// ComputeTokenInGivenExactLpOut returns how much of a single token must be
// deposited to mint exactly [lpOut] shares. Rounds up.
func ComputeTokenInGivenExactLpOut(
	reserve, weight uint64,
	lpOut uint64,
	totalLpSupply uint64,
	feeBps uint16,
) (uint64, error) {
	if err := checkBalance(reserve, weight, totalLpSupply); err != nil {
		return 0, err
	}
	fee, err := FeeFraction(feeBps)
	if err != nil {
		return 0, err
	}

	supply := uint256.NewInt(totalLpSupply)
	invariantRatio, err := DivUp(new(uint256.Int).Add(supply, uint256.NewInt(lpOut)), supply)
	if err != nil {
		return 0, err
	}
	exponent, err := DivUp(one, uint256.NewInt(weight))
	if err != nil {
		return 0, err
	}
	power, err := PowUp(invariantRatio, exponent)
	if err != nil {
		return 0, err
	}
	balance := uint256.NewInt(reserve)
	newBalance, err := MulUp(balance, power)
	if err != nil {
		return 0, err
	}
	amount := subFloor(newBalance, balance)

	nonTaxable, err := MulUp(balance, subFloor(invariantRatio, one))
	if err != nil {
		return 0, err
	}
	if nonTaxable.Gt(amount) {
		nonTaxable = amount
	}
	taxed, err := DivUp(new(uint256.Int).Sub(amount, nonTaxable), Complement(fee))
	if err != nil {
		return 0, err
	}
	return toUint64(taxed.Add(taxed, nonTaxable))
}

// ComputeTokenOutGivenExactLpIn returns what burning [lpIn] shares pays out
// in a single token. Rounds down. The whole supply cannot leave through one
// token.
func ComputeTokenOutGivenExactLpIn(
	reserve, weight uint64,
	lpIn uint64,
	totalLpSupply uint64,
	feeBps uint16,
) (uint64, error) {
	if err := checkBalance(reserve, weight, totalLpSupply); err != nil {
		return 0, err
	}
	if lpIn >= totalLpSupply {
		return 0, fmt.Errorf("%w: burn %d of %d", ErrInsufficientLiquidity, lpIn, totalLpSupply)
	}
	fee, err := FeeFraction(feeBps)
	if err != nil {
		return 0, err
	}

	burned, err := DivDown(uint256.NewInt(lpIn), uint256.NewInt(totalLpSupply))
	if err != nil {
		return 0, err
	}
	exponent, err := DivDown(one, uint256.NewInt(weight))
	if err != nil {
		return 0, err
	}
	power, err := PowUp(Complement(burned), exponent)
	if err != nil {
		return 0, err
	}
	balance := uint256.NewInt(reserve)
	newBalance, err := MulUp(balance, power)
	if err != nil {
		return 0, err
	}
	amount := subFloor(balance, newBalance)

	nonTaxable, err := MulDown(balance, burned)
	if err != nil {
		return 0, err
	}
	if nonTaxable.Gt(amount) {
		nonTaxable = amount
	}
	taxed, err := MulDown(new(uint256.Int).Sub(amount, nonTaxable), Complement(fee))
	if err != nil {
		return 0, err
	}
	return toUint64(taxed.Add(taxed, nonTaxable))
}

// ComputeLpInGivenExactTokensOut returns the LP shares to burn for
// withdrawing exactly [amountsOut] in any proportion. Rounds up.
func ComputeLpInGivenExactTokensOut(
	reserves, weights, amountsOut []uint64,
	totalLpSupply uint64,
	feeBps uint16,
) (uint64, error) {
	if err := checkBalances(reserves, weights, amountsOut, totalLpSupply); err != nil {
		return 0, err
	}
	fee, err := FeeFraction(feeBps)
	if err != nil {
		return 0, err
	}

	var (
		ratios = make([]*uint256.Int, len(reserves))
		mean   = new(uint256.Int)
	)
	for i, r := range reserves {
		if amountsOut[i] >= r {
			return 0, fmt.Errorf("%w: requested %d of %d", ErrInsufficientReserves, amountsOut[i], r)
		}
		balance := uint256.NewInt(r)
		ratios[i], err = DivUp(uint256.NewInt(r-amountsOut[i]), balance)
		if err != nil {
			return 0, err
		}
		w, err := MulUp(ratios[i], uint256.NewInt(weights[i]))
		if err != nil {
			return 0, err
		}
		mean.Add(mean, w)
	}

	invariantRatio := One()
	for i, r := range reserves {
		if amountsOut[i] == 0 {
			continue
		}
		balance := uint256.NewInt(r)
		amount := uint256.NewInt(amountsOut[i])
		if ratios[i].Lt(mean) {
			nonTaxable, err := MulDown(balance, Complement(mean))
			if err != nil {
				return 0, err
			}
			if nonTaxable.Gt(amount) {
				nonTaxable = amount
			}
			taxed, err := DivUp(new(uint256.Int).Sub(amount, nonTaxable), Complement(fee))
			if err != nil {
				return 0, err
			}
			amount = taxed.Add(taxed, nonTaxable)
		}
		if !amount.Lt(balance) {
			return 0, fmt.Errorf("%w: requested %s of %d with fee", ErrInsufficientReserves, amount.Dec(), r)
		}
		ratio, err := DivDown(new(uint256.Int).Sub(balance, amount), balance)
		if err != nil {
			return 0, err
		}
		power, err := PowDown(ratio, uint256.NewInt(weights[i]))
		if err != nil {
			return 0, err
		}
		invariantRatio, err = MulDown(invariantRatio, power)
		if err != nil {
			return 0, err
		}
	}
	if !invariantRatio.Lt(one) {
		return 0, nil
	}
	lpIn, err := MulUp(uint256.NewInt(totalLpSupply), Complement(invariantRatio))
	if err != nil {
		return 0, err
	}
	return toUint64(lpIn)
}

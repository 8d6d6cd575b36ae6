// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package weightedmath

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	BpsDenominator uint64 = 10_000

	bpsUnit = OneUint64 / BpsDenominator
)

// FeeFraction converts a fee in basis points to an 18 decimal fraction.
func FeeFraction(feeBps uint16) (*uint256.Int, error) {
	if uint64(feeBps) >= BpsDenominator {
		return nil, fmt.Errorf("%w: %d bps", ErrFeeTooHigh, feeBps)
	}
	return uint256.NewInt(uint64(feeBps) * bpsUnit), nil
}

// ComputeSwapOut returns the amount of the out token paid for [amountIn] of
// the in token. The fee is taken from the input first:
//
//	out = reserveOut * (1 - (reserveIn / (reserveIn + amountIn*(1-fee)))^(weightIn/weightOut))
//
// Every step rounds against the trader.
func ComputeSwapOut(
	reserveIn, reserveOut uint64,
	weightIn, weightOut uint64,
	amountIn uint64,
	feeBps uint16,
) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrInvalidReserves
	}
	if weightIn == 0 || weightOut == 0 {
		return 0, ErrInvalidWeights
	}
	fee, err := FeeFraction(feeBps)
	if err != nil {
		return 0, err
	}
	amountInNet, err := MulDown(uint256.NewInt(amountIn), Complement(fee))
	if err != nil {
		return 0, err
	}

	balanceIn := uint256.NewInt(reserveIn)
	denominator := new(uint256.Int).Add(balanceIn, amountInNet)
	base, err := DivUp(balanceIn, denominator)
	if err != nil {
		return 0, err
	}
	exponent, err := DivDown(uint256.NewInt(weightIn), uint256.NewInt(weightOut))
	if err != nil {
		return 0, err
	}
	power, err := PowUp(base, exponent)
	if err != nil {
		return 0, err
	}
	out, err := MulDown(uint256.NewInt(reserveOut), Complement(power))
	if err != nil {
		return 0, err
	}
	return toUint64(out)
}

// ComputeSwapIn returns the amount of the in token required to receive
// exactly [amountOut] of the out token, fee included. Rounds up.
func ComputeSwapIn(
	reserveIn, reserveOut uint64,
	weightIn, weightOut uint64,
	amountOut uint64,
	feeBps uint16,
) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrInvalidReserves
	}
	if weightIn == 0 || weightOut == 0 {
		return 0, ErrInvalidWeights
	}
	if amountOut >= reserveOut {
		return 0, fmt.Errorf("%w: requested %d of %d", ErrInsufficientReserves, amountOut, reserveOut)
	}
	fee, err := FeeFraction(feeBps)
	if err != nil {
		return 0, err
	}

	balanceOut := uint256.NewInt(reserveOut)
	remaining := uint256.NewInt(reserveOut - amountOut)
	base, err := DivUp(balanceOut, remaining)
	if err != nil {
		return 0, err
	}
	exponent, err := DivUp(uint256.NewInt(weightOut), uint256.NewInt(weightIn))
	if err != nil {
		return 0, err
	}
	power, err := PowUp(base, exponent)
	if err != nil {
		return 0, err
	}
	ratio := new(uint256.Int)
	if power.Gt(one) {
		ratio.Sub(power, one)
	}
	amountInNet, err := MulUp(uint256.NewInt(reserveIn), ratio)
	if err != nil {
		return 0, err
	}
	amountIn, err := DivUp(amountInNet, Complement(fee))
	if err != nil {
		return 0, err
	}
	return toUint64(amountIn)
}

// Invariant returns the weighted product of reserves, rounded down.
func Invariant(reserves []uint64, weights []uint64) (uint64, error) {
	if len(reserves) != len(weights) || len(reserves) == 0 {
		return 0, ErrLengthMismatch
	}
	inv := One()
	for i, r := range reserves {
		if r == 0 {
			return 0, ErrInvalidReserves
		}
		p, err := PowDown(uint256.NewInt(r), uint256.NewInt(weights[i]))
		if err != nil {
			return 0, err
		}
		inv, err = MulDown(inv, p)
		if err != nil {
			return 0, err
		}
	}
	return toUint64(inv)
}

// SpotPrice returns the marginal price of the out token in units of the in
// token as an 18 decimal number, fee included.
func SpotPrice(
	reserveIn, weightIn uint64,
	reserveOut, weightOut uint64,
	feeBps uint16,
) (*uint256.Int, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return nil, ErrInvalidReserves
	}
	if weightIn == 0 || weightOut == 0 {
		return nil, ErrInvalidWeights
	}
	fee, err := FeeFraction(feeBps)
	if err != nil {
		return nil, err
	}
	// (reserveIn / weightIn) / (reserveOut / weightOut) in a single division.
	numer := new(uint256.Int).Mul(uint256.NewInt(reserveIn), uint256.NewInt(weightOut))
	denom := new(uint256.Int).Mul(uint256.NewInt(reserveOut), uint256.NewInt(weightIn))
	ratio, overflow := new(uint256.Int).MulDivOverflow(numer, one, denom)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return DivDown(ratio, Complement(fee))
}

func toUint64(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, ErrArithmeticOverflow
	}
	return v.Uint64(), nil
}

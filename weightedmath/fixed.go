// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package weightedmath

import "github.com/holiman/uint256"

// OneUint64 is 1.0 in 18 decimal fixed point.
const OneUint64 uint64 = 1e18

// maxPowRelativeError bounds the relative error of [Pow] (1e-14).
const maxPowRelativeError uint64 = 10_000

var (
	one = uint256.NewInt(OneUint64)
	two = uint256.NewInt(2 * OneUint64)
)

// One returns a fresh copy of the fixed point unit.
func One() *uint256.Int {
	return new(uint256.Int).Set(one)
}

func MulDown(a, b *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, one)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func MulUp(a, b *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	if product.IsZero() {
		return product, nil
	}
	product.SubUint64(product, 1)
	product.Div(product, one)
	return product.AddUint64(product, 1), nil
}

func DivDown(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrZeroDivision
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, one, b)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return z, nil
}

func DivUp(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrZeroDivision
	}
	if a.IsZero() {
		return new(uint256.Int), nil
	}
	inflated, overflow := new(uint256.Int).MulOverflow(a, one)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	inflated.SubUint64(inflated, 1)
	inflated.Div(inflated, b)
	return inflated.AddUint64(inflated, 1), nil
}

// Complement returns 1 - x, saturating at zero.
func Complement(x *uint256.Int) *uint256.Int {
	if x.Lt(one) {
		return new(uint256.Int).Sub(one, x)
	}
	return new(uint256.Int)
}

// PowDown returns x^y rounded down by the maximum relative error of [Pow].
func PowDown(x, y *uint256.Int) (*uint256.Int, error) {
	switch {
	case y.Eq(one):
		return new(uint256.Int).Set(x), nil
	case y.Eq(two):
		return MulDown(x, x)
	}
	raw, err := Pow(x, y)
	if err != nil {
		return nil, err
	}
	maxError, err := powError(raw)
	if err != nil {
		return nil, err
	}
	if raw.Lt(maxError) {
		return new(uint256.Int), nil
	}
	return raw.Sub(raw, maxError), nil
}

// PowUp returns x^y rounded up by the maximum relative error of [Pow].
func PowUp(x, y *uint256.Int) (*uint256.Int, error) {
	switch {
	case y.Eq(one):
		return new(uint256.Int).Set(x), nil
	case y.Eq(two):
		return MulUp(x, x)
	}
	raw, err := Pow(x, y)
	if err != nil {
		return nil, err
	}
	maxError, err := powError(raw)
	if err != nil {
		return nil, err
	}
	if _, overflow := raw.AddOverflow(raw, maxError); overflow {
		return nil, ErrArithmeticOverflow
	}
	return raw, nil
}

func powError(raw *uint256.Int) (*uint256.Int, error) {
	e, err := MulUp(raw, uint256.NewInt(maxPowRelativeError))
	if err != nil {
		return nil, err
	}
	return e.AddUint64(e, 1), nil
}

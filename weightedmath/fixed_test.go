// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package weightedmath

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func fixed(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func TestMulDivRounding(t *testing.T) {
	require := require.New(t)

	third, err := DivDown(fixed(OneUint64), fixed(3*OneUint64))
	require.NoError(err)
	require.Equal(uint64(333_333_333_333_333_333), third.Uint64())

	thirdUp, err := DivUp(fixed(OneUint64), fixed(3*OneUint64))
	require.NoError(err)
	require.Equal(uint64(333_333_333_333_333_334), thirdUp.Uint64())

	down, err := MulDown(fixed(3), fixed(OneUint64/2))
	require.NoError(err)
	require.Equal(uint64(1), down.Uint64())

	up, err := MulUp(fixed(3), fixed(OneUint64/2))
	require.NoError(err)
	require.Equal(uint64(2), up.Uint64())

	zero, err := MulUp(fixed(0), fixed(OneUint64))
	require.NoError(err)
	require.True(zero.IsZero())

	_, err = DivDown(fixed(1), fixed(0))
	require.ErrorIs(err, ErrZeroDivision)
	_, err = DivUp(fixed(1), fixed(0))
	require.ErrorIs(err, ErrZeroDivision)
}

func TestMulOverflow(t *testing.T) {
	require := require.New(t)

	maxInt := new(uint256.Int).SetAllOne()
	_, err := MulUp(maxInt, fixed(2))
	require.ErrorIs(err, ErrArithmeticOverflow)
	_, err = MulDown(maxInt, fixed(2*OneUint64))
	require.ErrorIs(err, ErrArithmeticOverflow)
	_, err = DivUp(maxInt, fixed(1))
	require.ErrorIs(err, ErrArithmeticOverflow)
}

func TestComplement(t *testing.T) {
	require := require.New(t)

	require.Equal(uint64(7e17), Complement(fixed(3e17)).Uint64())
	require.True(Complement(fixed(OneUint64)).IsZero())
	require.True(Complement(fixed(2 * OneUint64)).IsZero())
}

func TestPow(t *testing.T) {
	tests := []struct {
		name     string
		x        uint64
		y        uint64
		expected uint64
	}{
		{
			name:     "sqrt two",
			x:        2 * OneUint64,
			y:        OneUint64 / 2,
			expected: 1_414_213_562_373_095_047,
		},
		{
			name:     "cube of a half",
			x:        OneUint64 / 2,
			y:        3 * OneUint64,
			expected: 125_000_000_000_000_000,
		},
		{
			name:     "zero exponent",
			x:        12345,
			y:        0,
			expected: OneUint64,
		},
		{
			name:     "zero base",
			x:        0,
			y:        OneUint64,
			expected: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)
			out, err := Pow(fixed(tt.x), fixed(tt.y))
			r.NoError(err)
			r.Equal(tt.expected, out.Uint64())
		})
	}
}

func TestPowRounding(t *testing.T) {
	require := require.New(t)

	raw, err := Pow(fixed(2*OneUint64), fixed(OneUint64/2))
	require.NoError(err)
	down, err := PowDown(fixed(2*OneUint64), fixed(OneUint64/2))
	require.NoError(err)
	up, err := PowUp(fixed(2*OneUint64), fixed(OneUint64/2))
	require.NoError(err)
	require.True(down.Lt(raw))
	require.True(up.Gt(raw))

	// Integral exponents are exact.
	sq, err := PowUp(fixed(3*OneUint64), fixed(2*OneUint64))
	require.NoError(err)
	require.Equal(uint64(9*OneUint64), sq.Uint64())
	id, err := PowDown(fixed(12345), fixed(OneUint64))
	require.NoError(err)
	require.Equal(uint64(12345), id.Uint64())
}

func TestPowOutOfBounds(t *testing.T) {
	require := require.New(t)

	// ln(18.4) * 100 is far above the largest natural exponent.
	exponent := new(uint256.Int).Mul(fixed(100), fixed(OneUint64))
	_, err := Pow(fixed(math.MaxUint64), exponent)
	require.ErrorIs(err, ErrArithmeticOverflow)
}

func TestPowUnderflow(t *testing.T) {
	require := require.New(t)

	// ln(0.625) * 99 is below the smallest natural exponent.
	base := fixed(OneUint64 / 1000 * 625)
	exponent := new(uint256.Int).Mul(fixed(99), fixed(OneUint64))
	raw, err := Pow(base, exponent)
	require.NoError(err)
	require.True(raw.IsZero())

	down, err := PowDown(base, exponent)
	require.NoError(err)
	require.True(down.IsZero())

	up, err := PowUp(base, exponent)
	require.NoError(err)
	require.Equal(uint64(1), up.Uint64())
}

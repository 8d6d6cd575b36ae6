// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package weightedmath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	half      = OneUint64 / 2
	reserve   = 1_000_000_000_000 // 1000 tokens with 9 decimals
	hundred   = 100_000_000_000
	eightyPct = 8 * OneUint64 / 10
	twentyPct = 2 * OneUint64 / 10
)

func TestComputeSwapOutConstantProduct(t *testing.T) {
	require := require.New(t)

	// 1000 * 100 / 1100
	out, err := ComputeSwapOut(reserve, reserve, half, half, hundred, 0)
	require.NoError(err)
	require.Equal(uint64(90_909_090_909), out)

	withFee, err := ComputeSwapOut(reserve, reserve, half, half, hundred, 30)
	require.NoError(err)
	require.Equal(uint64(90_661_089_388), withFee)
	require.Less(withFee, out)
}

func TestComputeSwapOutWeighted(t *testing.T) {
	require := require.New(t)

	out, err := ComputeSwapOut(reserve, 2*reserve, eightyPct, twentyPct, hundred, 30)
	require.NoError(err)
	require.Equal(uint64(632_481_861_486), out)
	require.Less(out, uint64(2*reserve))
}

func TestComputeSwapOutExtremeRatios(t *testing.T) {
	tests := []struct {
		name      string
		weightIn  uint64
		weightOut uint64
		amountIn  uint64
		expected  uint64
	}{
		{
			name:      "99/1 pool below the exponent floor",
			weightIn:  OneUint64 / 100 * 99,
			weightOut: OneUint64 / 100,
			amountIn:  500,
			expected:  999,
		},
		{
			name:      "99/1 pool past the exponent floor",
			weightIn:  OneUint64 / 100 * 99,
			weightOut: OneUint64 / 100,
			amountIn:  600,
			expected:  999,
		},
		{
			name:      "60/40 pool with a huge trade",
			weightIn:  6 * OneUint64 / 10,
			weightOut: 4 * OneUint64 / 10,
			amountIn:  1_000_000_000_000_000,
			expected:  999,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			out, err := ComputeSwapOut(1000, 1000, tt.weightIn, tt.weightOut, tt.amountIn, 0)
			require.NoError(err)
			require.Equal(tt.expected, out)
		})
	}
}

func TestComputeSwapOutErrors(t *testing.T) {
	tests := []struct {
		name                  string
		reserveIn, reserveOut uint64
		weightIn, weightOut   uint64
		feeBps                uint16
		expectedErr           error
	}{
		{
			name:        "zero reserve in",
			reserveOut:  reserve,
			weightIn:    half,
			weightOut:   half,
			expectedErr: ErrInvalidReserves,
		},
		{
			name:        "zero reserve out",
			reserveIn:   reserve,
			weightIn:    half,
			weightOut:   half,
			expectedErr: ErrInvalidReserves,
		},
		{
			name:        "zero weight",
			reserveIn:   reserve,
			reserveOut:  reserve,
			weightIn:    half,
			expectedErr: ErrInvalidWeights,
		},
		{
			name:        "full fee",
			reserveIn:   reserve,
			reserveOut:  reserve,
			weightIn:    half,
			weightOut:   half,
			feeBps:      10_000,
			expectedErr: ErrFeeTooHigh,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSwapOut(tt.reserveIn, tt.reserveOut, tt.weightIn, tt.weightOut, hundred, tt.feeBps)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestSwapOutMonotonicInAmount(t *testing.T) {
	weights := [][2]uint64{
		{half, half},
		{eightyPct, twentyPct},
		{twentyPct, eightyPct},
		{3 * OneUint64 / 10, 7 * OneUint64 / 10},
	}
	for _, w := range weights {
		r := require.New(t)
		prev := uint64(0)
		for amountIn := uint64(100_000_000_000); amountIn < 130_000_000_000; amountIn += 100_000_000 {
			out, err := ComputeSwapOut(reserve, reserve, w[0], w[1], amountIn, 30)
			r.NoError(err)
			r.GreaterOrEqual(out, prev)
			prev = out
		}
		prev = 0
		for _, amountIn := range []uint64{1, 1_000, 1_000_000, 1_000_000_000, hundred, 500_000_000_000, 5_000_000_000_000} {
			out, err := ComputeSwapOut(reserve, reserve, w[0], w[1], amountIn, 30)
			r.NoError(err)
			r.GreaterOrEqual(out, prev)
			prev = out
		}
	}
}

func TestSwapOutMonotonicInFee(t *testing.T) {
	require := require.New(t)

	prev := uint64(0)
	for fee := 999; fee >= 0; fee -= 37 {
		out, err := ComputeSwapOut(reserve, reserve, eightyPct, twentyPct, hundred, uint16(fee))
		require.NoError(err)
		require.GreaterOrEqual(out, prev)
		prev = out
	}
}

func TestSwapNeverDecreasesInvariant(t *testing.T) {
	weights := [][2]uint64{
		{half, half},
		{eightyPct, twentyPct},
		{twentyPct, eightyPct},
	}
	for _, w := range weights {
		for _, fee := range []uint16{0, 30, 100} {
			for _, amountIn := range []uint64{1_000_000, 1_000_000_000, hundred, reserve} {
				r := require.New(t)
				out, err := ComputeSwapOut(reserve, reserve, w[0], w[1], amountIn, fee)
				r.NoError(err)

				before, err := Invariant([]uint64{reserve, reserve}, w[:])
				r.NoError(err)
				after, err := Invariant([]uint64{reserve + amountIn, reserve - out}, w[:])
				r.NoError(err)
				r.GreaterOrEqual(after, before)
			}
		}
	}
}

func TestConstantProductExactAtZeroFee(t *testing.T) {
	require := require.New(t)

	out, err := ComputeSwapOut(reserve, reserve, half, half, hundred, 0)
	require.NoError(err)

	// x*y never decreases and one more unit of output would break it.
	before := new(big.Int).Mul(big.NewInt(reserve), big.NewInt(reserve))
	after := new(big.Int).Mul(big.NewInt(reserve+hundred), big.NewInt(int64(reserve-out)))
	require.GreaterOrEqual(after.Cmp(before), 0)
	greedy := new(big.Int).Mul(big.NewInt(reserve+hundred), big.NewInt(int64(reserve-out-1)))
	require.Negative(greedy.Cmp(before))
}

func TestComputeSwapIn(t *testing.T) {
	require := require.New(t)

	in, err := ComputeSwapIn(reserve, reserve, half, half, 90_000_000_000, 30)
	require.NoError(err)
	require.Equal(uint64(99_198_694_987), in)

	// Exact out inverts exact in.
	out, err := ComputeSwapOut(reserve, reserve, eightyPct, twentyPct, 50_000_000_000, 30)
	require.NoError(err)
	in, err = ComputeSwapIn(reserve, reserve, eightyPct, twentyPct, out, 30)
	require.NoError(err)
	require.Equal(uint64(50_000_000_000), in)

	_, err = ComputeSwapIn(reserve, reserve, half, half, reserve, 0)
	require.ErrorIs(err, ErrInsufficientReserves)
}

func TestInvariant(t *testing.T) {
	require := require.New(t)

	inv, err := Invariant([]uint64{reserve, reserve}, []uint64{half, half})
	require.NoError(err)
	require.Equal(uint64(reserve-1), inv)

	inv, err = Invariant([]uint64{4 * reserve, reserve}, []uint64{eightyPct, twentyPct})
	require.NoError(err)
	require.Equal(uint64(3_031_433_133_020), inv)

	_, err = Invariant([]uint64{reserve}, []uint64{half, half})
	require.ErrorIs(err, ErrLengthMismatch)
	_, err = Invariant([]uint64{reserve, 0}, []uint64{half, half})
	require.ErrorIs(err, ErrInvalidReserves)
}

func TestSpotPrice(t *testing.T) {
	require := require.New(t)

	price, err := SpotPrice(reserve, half, reserve, half, 0)
	require.NoError(err)
	require.Equal(OneUint64, price.Uint64())

	withFee, err := SpotPrice(reserve, half, reserve, half, 30)
	require.NoError(err)
	require.True(withFee.Gt(price))

	// 80/20 pool holding 4:1 by value parity quotes one to one.
	price, err = SpotPrice(4*reserve, eightyPct, reserve, twentyPct, 0)
	require.NoError(err)
	require.Equal(OneUint64, price.Uint64())

	// Small reserves keep full precision: (1000 / 0.3) / (1000 / 0.7).
	price, err = SpotPrice(1000, 3*OneUint64/10, 1000, 7*OneUint64/10, 0)
	require.NoError(err)
	require.Equal(uint64(2_333_333_333_333_333_333), price.Uint64())
}

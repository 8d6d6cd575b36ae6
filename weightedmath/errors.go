// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package weightedmath

import "errors"

var (
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
	ErrZeroDivision          = errors.New("division by zero")
	ErrInvalidReserves       = errors.New("invalid reserves")
	ErrInvalidWeights        = errors.New("invalid weights")
	ErrFeeTooHigh            = errors.New("fee too high")
	ErrInsufficientReserves  = errors.New("insufficient reserves")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrLengthMismatch        = errors.New("length mismatch")
	ErrZeroAmount            = errors.New("zero amount")
)

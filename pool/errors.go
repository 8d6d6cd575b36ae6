// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"errors"

	"github.com/ava-labs/weightedvm/vault"
	"github.com/ava-labs/weightedvm/weightedmath"
)

var (
	ErrAlreadyInitialized = errors.New("pool already initialized")
	ErrPoolNotInitialized = errors.New("pool not initialized")
	ErrIdenticalTokens    = errors.New("identical tokens")
	ErrSlippageExceeded   = errors.New("slippage exceeded")
	ErrInvalidTokenCount  = errors.New("invalid token count")
	ErrTokenIndex         = errors.New("token index out of range")
	ErrInvalidAmounts     = errors.New("amounts do not match pool tokens")
	ErrInvalidDirection   = errors.New("invalid transfer direction")

	ErrInvalidWeights        = weightedmath.ErrInvalidWeights
	ErrFeeTooHigh            = weightedmath.ErrFeeTooHigh
	ErrInvalidReserves       = weightedmath.ErrInvalidReserves
	ErrInsufficientReserves  = weightedmath.ErrInsufficientReserves
	ErrInsufficientLiquidity = weightedmath.ErrInsufficientLiquidity
	ErrArithmeticOverflow    = weightedmath.ErrArithmeticOverflow
	ErrZeroAmount            = weightedmath.ErrZeroAmount
	ErrUnauthorized          = vault.ErrUnauthorized
	ErrVaultNotInitialized   = vault.ErrVaultNotInitialized
)

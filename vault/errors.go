// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"errors"

	"github.com/ava-labs/weightedvm/weightedmath"
)

var (
	ErrAlreadyInitialized   = errors.New("vault already initialized")
	ErrVaultNotInitialized  = errors.New("vault not initialized")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrSelfTransfer         = errors.New("vault cannot transfer to itself")
	ErrInsufficientReserves = weightedmath.ErrInsufficientReserves
	ErrArithmeticOverflow   = weightedmath.ErrArithmeticOverflow
	ErrZeroAmount           = weightedmath.ErrZeroAmount
)

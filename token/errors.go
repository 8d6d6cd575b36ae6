// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import "errors"

var (
	ErrTokenExists         = errors.New("token already exists")
	ErrTokenNotFound       = errors.New("token not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrOverflow            = errors.New("overflow")
	ErrInvalidSymbol       = errors.New("invalid symbol")
	ErrInvalidDecimals     = errors.New("invalid decimals")
	ErrZeroAmount          = errors.New("zero amount")
)

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "errors"

var (
	ErrMisalignedTime    = errors.New("misaligned time")
	ErrTimestampTooLate  = errors.New("timestamp too late")
	ErrTimestampTooEarly = errors.New("timestamp too early")
	ErrInvalidChainID    = errors.New("invalid chain id")
	ErrNoActions         = errors.New("no actions")
	ErrTooManyActions    = errors.New("too many actions")
	ErrInvalidKeyValue   = errors.New("invalid key or value")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrDuplicateTx       = errors.New("duplicate transaction")
)

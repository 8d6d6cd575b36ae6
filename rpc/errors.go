// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import "errors"

var (
	ErrClosed          = errors.New("closed")
	ErrUnknownQuote    = errors.New("unknown quote kind")
	ErrUnknownSeed     = errors.New("unknown derivation seed")
	ErrNoSubmitter     = errors.New("server does not accept transactions")
	ErrUnexpectedReply = errors.New("unexpected reply")
)

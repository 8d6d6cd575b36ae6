// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import "errors"

var (
	ErrUnknownProgram   = errors.New("unknown program")
	ErrDuplicateProgram = errors.New("duplicate program")
	ErrUnknownMethod    = errors.New("unknown method")
	ErrCallDepth        = errors.New("call depth exceeded")
	ErrInvalidParams    = errors.New("invalid params")
)

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "errors"

var (
	ErrTokenNotInPool = errors.New("token not in pool")
	ErrTokenMismatch  = errors.New("tokens do not match pool")
)

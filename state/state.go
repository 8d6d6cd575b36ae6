// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/utils/maybe"
)

type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

// Reversible is a [Mutable] that logs every write so it can be restored to
// an earlier operation index.
type Reversible interface {
	Mutable

	OpIndex() int
	Rollback(ctx context.Context, restorePoint int)
}

// Database is the persistent store state is committed to. A change holding
// [maybe.Nothing] deletes the key.
type Database interface {
	Immutable

	Apply(ctx context.Context, changes map[string]maybe.Maybe[[]byte]) error
	Close() error
}

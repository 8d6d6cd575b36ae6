// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
)

var _ Mutable = (*SimpleMutable)(nil)

// SimpleMutable buffers writes over a [Database] without scope checks.
// It is used where no transaction is involved (genesis, local tooling).
type SimpleMutable struct {
	db Database

	changes map[string]maybe.Maybe[[]byte]
}

func NewSimpleMutable(db Database) *SimpleMutable {
	return &SimpleMutable{db, make(map[string]maybe.Maybe[[]byte])}
}

func (s *SimpleMutable) GetValue(ctx context.Context, k []byte) ([]byte, error) {
	if v, ok := s.changes[string(k)]; ok {
		if v.IsNothing() {
			return nil, database.ErrNotFound
		}
		return v.Value(), nil
	}
	return s.db.GetValue(ctx, k)
}

func (s *SimpleMutable) Insert(_ context.Context, k []byte, v []byte) error {
	s.changes[string(k)] = maybe.Some(v)
	return nil
}

func (s *SimpleMutable) Remove(_ context.Context, k []byte) error {
	s.changes[string(k)] = maybe.Nothing[[]byte]()
	return nil
}

func (s *SimpleMutable) Commit(ctx context.Context) error {
	if err := s.db.Apply(ctx, s.changes); err != nil {
		return err
	}
	s.changes = make(map[string]maybe.Maybe[[]byte])
	return nil
}

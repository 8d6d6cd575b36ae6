// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"

	"github.com/ava-labs/weightedvm/state"
)

var _ state.Database = (*InMemoryStore)(nil)

// InMemoryStore is an in-memory implementation of [state.Database]
type InMemoryStore struct {
	Storage map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Storage: make(map[string][]byte),
	}
}

func (i *InMemoryStore) GetValue(_ context.Context, key []byte) ([]byte, error) {
	val, ok := i.Storage[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return val, nil
}

func (i *InMemoryStore) Insert(_ context.Context, key []byte, value []byte) error {
	i.Storage[string(key)] = value
	return nil
}

func (i *InMemoryStore) Remove(_ context.Context, key []byte) error {
	delete(i.Storage, string(key))
	return nil
}

func (i *InMemoryStore) Apply(_ context.Context, changes map[string]maybe.Maybe[[]byte]) error {
	for k, v := range changes {
		if v.IsNothing() {
			delete(i.Storage, k)
			continue
		}
		i.Storage[k] = v.Value()
	}
	return nil
}

func (*InMemoryStore) Close() error {
	return nil
}

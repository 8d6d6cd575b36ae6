// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/maybe"
)

var _ Database = (*MemoryDatabase)(nil)

// MemoryDatabase adapts an avalanchego [database.Database] to [Database].
type MemoryDatabase struct {
	db database.Database
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{db: memdb.New()}
}

func (m *MemoryDatabase) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return m.db.Get(key)
}

func (m *MemoryDatabase) Apply(_ context.Context, changes map[string]maybe.Maybe[[]byte]) error {
	batch := m.db.NewBatch()
	for k, v := range changes {
		if v.IsNothing() {
			if err := batch.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := batch.Put([]byte(k), v.Value()); err != nil {
			return err
		}
	}
	return batch.Write()
}

func (m *MemoryDatabase) Close() error {
	return m.db.Close()
}

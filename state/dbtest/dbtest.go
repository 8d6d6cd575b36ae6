// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dbtest opens transaction views over an in-memory database.
package dbtest

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/tstate"
)

// Batch is one transaction view over a database.
type Batch struct {
	db   state.Database
	ts   *tstate.TState
	View *tstate.TStateView
}

// NewBatch loads the values of [scope] from [db] and opens a view over them.
func NewBatch(ctx context.Context, db state.Database, scope state.Keys) (*Batch, error) {
	storage := make(map[string][]byte, len(scope))
	for k := range scope {
		v, err := db.GetValue(ctx, []byte(k))
		switch {
		case errors.Is(err, database.ErrNotFound):
			continue
		case err != nil:
			return nil, err
		}
		storage[k] = v
	}
	ts := tstate.New(len(scope))
	return &Batch{
		db:   db,
		ts:   ts,
		View: ts.NewView(scope, storage),
	}, nil
}

// Commit writes the changes of the view to the database.
func (b *Batch) Commit(ctx context.Context) error {
	b.View.Commit()
	return b.db.Apply(ctx, b.ts.Changes())
}

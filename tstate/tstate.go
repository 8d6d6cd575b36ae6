// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/utils/maybe"

	"github.com/ava-labs/weightedvm/keys"
)

// TState collects the changes committed by every [TStateView] of a batch.
type TState struct {
	l           sync.RWMutex
	ops         int
	changedKeys map[string]maybe.Maybe[[]byte]
}

// New returns a new instance of TState. [changedSize] is an estimate of the
// number of keys that will be changed.
func New(changedSize int) *TState {
	return &TState{
		changedKeys: make(map[string]maybe.Maybe[[]byte], changedSize),
	}
}

func (ts *TState) getChangedValue(_ context.Context, key string) ([]byte, bool, bool) {
	ts.l.RLock()
	defer ts.l.RUnlock()

	if v, ok := ts.changedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	return nil, false, false
}

// Insert writes directly to [TState], bypassing any view. It is used to load
// genesis allocations.
func (ts *TState) Insert(_ context.Context, key []byte, value []byte) error {
	if !keys.VerifyValue(key, value) {
		return ErrInvalidKeyValue
	}
	ts.l.Lock()
	defer ts.l.Unlock()

	ts.changedKeys[string(key)] = maybe.Some(value)
	ts.ops++
	return nil
}

// OpIndex returns the number of operations committed to [TState].
func (ts *TState) OpIndex() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return ts.ops
}

// PendingChanges returns the number of keys changed.
func (ts *TState) PendingChanges() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return len(ts.changedKeys)
}

// Changes returns a copy of every change, ready for [state.Database.Apply].
func (ts *TState) Changes() map[string]maybe.Maybe[[]byte] {
	ts.l.RLock()
	defer ts.l.RUnlock()

	changes := make(map[string]maybe.Maybe[[]byte], len(ts.changedKeys))
	for k, v := range ts.changedKeys {
		changes[k] = v
	}
	return changes
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"

	"github.com/ava-labs/weightedvm/keys"
	"github.com/ava-labs/weightedvm/state"
)

const defaultOps = 8

var _ state.Reversible = (*TStateView)(nil)

type op struct {
	k string

	pastExists  bool
	pastV       []byte
	pastChanged bool
}

// TStateView is the view a single transaction executes against. Only keys in
// [scope] may be touched, with the permissions declared there.
type TStateView struct {
	ts                 *TState
	pendingChangedKeys map[string]maybe.Maybe[[]byte]

	// Ops is a record of all operations performed on [TStateView]. Tracking
	// operations allows for reverting state to a certain point-in-time.
	ops []*op

	scope        state.Keys
	scopeStorage map[string][]byte
}

// NewView returns a view over [ts]. [storage] holds the persisted values of
// the keys in [scope] (missing keys are treated as not existing).
func (ts *TState) NewView(scope state.Keys, storage map[string][]byte) *TStateView {
	return &TStateView{
		ts:                 ts,
		pendingChangedKeys: make(map[string]maybe.Maybe[[]byte], len(scope)),
		ops:                make([]*op, 0, defaultOps),
		scope:              scope,
		scopeStorage:       storage,
	}
}

// Rollback restores the view to the ts.ops[restorePoint] operation.
func (ts *TStateView) Rollback(_ context.Context, restorePoint int) {
	for i := len(ts.ops) - 1; i >= restorePoint; i-- {
		op := ts.ops[i]

		// The key was not changed by this view before [op].
		if !op.pastChanged {
			delete(ts.pendingChangedKeys, op.k)
			continue
		}

		// The key was removed by this view before [op].
		if !op.pastExists {
			ts.pendingChangedKeys[op.k] = maybe.Nothing[[]byte]()
			continue
		}

		ts.pendingChangedKeys[op.k] = maybe.Some(op.pastV)
	}
	ts.ops = ts.ops[:restorePoint]
}

// OpIndex returns the number of operations done on ts.
func (ts *TStateView) OpIndex() int {
	return len(ts.ops)
}

func (ts *TStateView) checkScope(k string, perm state.Permissions) bool {
	return ts.scope[k].Has(perm)
}

// GetValue returns the value associated with [key]. The key must have been
// declared with Read permission.
func (ts *TStateView) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	k := string(key)
	if !ts.checkScope(k, state.Read) {
		return nil, ErrInvalidKeyOrPermission
	}
	v, _, exists := ts.getValue(ctx, k)
	if !exists {
		return nil, database.ErrNotFound
	}
	return v, nil
}

// getValue returns the value, whether this view has already changed it and
// whether it exists.
func (ts *TStateView) getValue(ctx context.Context, key string) ([]byte, bool, bool) {
	if v, ok := ts.pendingChangedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	if v, changed, exists := ts.ts.getChangedValue(ctx, key); changed {
		return v, false, exists
	}
	if v, ok := ts.scopeStorage[key]; ok {
		return v, false, true
	}
	return nil, false, false
}

// Insert sets [key] to [value]. Updating an existing key requires Write
// permission and creating one requires Allocate.
//
// Any bytes passed into [Insert] will be consumed by [TStateView] and should
// not be modified/referenced after this call.
func (ts *TStateView) Insert(ctx context.Context, key []byte, value []byte) error {
	k := string(key)
	if !keys.VerifyValue(key, value) {
		return ErrInvalidKeyValue
	}
	past, changed, exists := ts.getValue(ctx, k)
	if exists {
		if !ts.checkScope(k, state.Write) {
			return ErrInvalidKeyOrPermission
		}
	} else if !ts.checkScope(k, state.Allocate|state.Write) {
		return ErrInvalidKeyOrPermission
	}
	ts.pendingChangedKeys[k] = maybe.Some(value)
	ts.ops = append(ts.ops, &op{
		k:           k,
		pastExists:  exists,
		pastV:       past,
		pastChanged: changed,
	})
	return nil
}

// Remove deletes [key]. Removing a key that does not exist is a no-op.
func (ts *TStateView) Remove(ctx context.Context, key []byte) error {
	k := string(key)
	if !ts.checkScope(k, state.Write) {
		return ErrInvalidKeyOrPermission
	}
	past, changed, exists := ts.getValue(ctx, k)
	if !exists {
		return nil
	}
	ts.pendingChangedKeys[k] = maybe.Nothing[[]byte]()
	ts.ops = append(ts.ops, &op{
		k:           k,
		pastExists:  true,
		pastV:       past,
		pastChanged: changed,
	})
	return nil
}

// PendingChanges returns the number of keys this view has changed.
func (ts *TStateView) PendingChanges() int {
	return len(ts.pendingChangedKeys)
}

// Commit publishes every pending change to the parent [TState].
func (ts *TStateView) Commit() {
	ts.ts.l.Lock()
	defer ts.ts.l.Unlock()

	for k, v := range ts.pendingChangedKeys {
		ts.ts.changedKeys[k] = v
	}
	ts.ts.ops += len(ts.ops)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
)

var (
	ErrUndeclaredKey = errors.New("key accessed but not declared")

	_ Reversible = (*Recorder)(nil)
)

// Recorder wraps an [Immutable] and records the permissions every key
// access would need from a [tstate.TStateView]. It never writes through.
type Recorder struct {
	state Immutable

	// base caches what [state] returned; nil marks a missing key
	base    map[string][]byte
	changed map[string][]byte
	keys    Keys
	ops     []recorderOp
}

type recorderOp struct {
	k       string
	prev    []byte
	changed bool
}

func NewRecorder(db Immutable) *Recorder {
	return &Recorder{
		state:   db,
		base:    map[string][]byte{},
		changed: map[string][]byte{},
		keys:    Keys{},
	}
}

func (r *Recorder) load(ctx context.Context, key []byte) ([]byte, error) {
	k := string(key)
	if v, ok := r.base[k]; ok {
		return v, nil
	}
	v, err := r.state.GetValue(ctx, key)
	switch {
	case errors.Is(err, database.ErrNotFound):
		r.base[k] = nil
		return nil, nil
	case err != nil:
		return nil, err
	}
	r.base[k] = v
	return v, nil
}

func (r *Recorder) Insert(ctx context.Context, key []byte, value []byte) error {
	v, err := r.load(ctx, key)
	if err != nil {
		return err
	}
	k := string(key)
	if v == nil {
		r.keys.Add(k, Allocate|Write)
	} else {
		r.keys.Add(k, Write)
	}
	r.set(k, value)
	return nil
}

func (r *Recorder) Remove(_ context.Context, key []byte) error {
	k := string(key)
	r.keys.Add(k, Write)
	r.set(k, nil)
	return nil
}

func (r *Recorder) set(k string, v []byte) {
	prev, changed := r.changed[k]
	r.ops = append(r.ops, recorderOp{k: k, prev: prev, changed: changed})
	r.changed[k] = v
}

func (r *Recorder) OpIndex() int {
	return len(r.ops)
}

// Rollback undoes every write after [restorePoint]. Recorded permissions
// are kept.
func (r *Recorder) Rollback(_ context.Context, restorePoint int) {
	for i := len(r.ops) - 1; i >= restorePoint; i-- {
		op := r.ops[i]
		if op.changed {
			r.changed[op.k] = op.prev
		} else {
			delete(r.changed, op.k)
		}
	}
	r.ops = r.ops[:restorePoint]
}

// Changes returns the writes recorded so far in the form accepted by
// [Database.Apply].
func (r *Recorder) Changes() map[string]maybe.Maybe[[]byte] {
	changes := make(map[string]maybe.Maybe[[]byte], len(r.changed))
	for k, v := range r.changed {
		if v == nil {
			changes[k] = maybe.Nothing[[]byte]()
			continue
		}
		changes[k] = maybe.Some(v)
	}
	return changes
}

func (r *Recorder) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	v, err := r.load(ctx, key)
	if err != nil {
		return nil, err
	}
	k := string(key)
	r.keys.Add(k, Read)
	if c, ok := r.changed[k]; ok {
		v = c
	}
	if v == nil {
		return nil, database.ErrNotFound
	}
	return v, nil
}

// GetStateKeys returns every key touched so far with its permissions.
func (r *Recorder) GetStateKeys() Keys {
	return r.keys
}

// CoveredBy returns an error naming the first recorded key whose
// permissions are not granted by [declared].
func (r *Recorder) CoveredBy(declared Keys) error {
	for k, p := range r.keys {
		if !declared[k].Has(p) {
			return fmt.Errorf("%w: %x needs %s, declared %s", ErrUndeclaredKey, k, p, declared[k])
		}
	}
	return nil
}

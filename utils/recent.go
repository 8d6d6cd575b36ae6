// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"errors"
	"sync"

	"github.com/ava-labs/avalanchego/utils/buffer"
)

var errInvalidMaxSize = errors.New("maxSize must be greater than 0")

// Recent keeps the newest [maxSize] values in insertion order. It is safe
// for concurrent use.
type Recent[T any] struct {
	l       sync.RWMutex
	items   buffer.Deque[T]
	maxSize int
	onEvict func(T)
}

// NewRecent calls [onEvict], if not nil, with every value pushed out.
func NewRecent[T any](maxSize int, onEvict func(T)) (*Recent[T], error) {
	if maxSize < 1 {
		return nil, errInvalidMaxSize
	}
	return &Recent[T]{
		items:   buffer.NewUnboundedDeque[T](maxSize + 1),
		maxSize: maxSize,
		onEvict: onEvict,
	}, nil
}

func (r *Recent[T]) Insert(v T) {
	r.l.Lock()
	defer r.l.Unlock()

	if r.items.Len() == r.maxSize {
		evicted, _ := r.items.PopLeft()
		if r.onEvict != nil {
			r.onEvict(evicted)
		}
	}
	r.items.PushRight(v)
}

// Last is the newest value, if any.
func (r *Recent[T]) Last() (T, bool) {
	r.l.RLock()
	defer r.l.RUnlock()
	return r.items.PeekRight()
}

// Items are ordered oldest first.
func (r *Recent[T]) Items() []T {
	r.l.RLock()
	defer r.l.RUnlock()
	return r.items.List()
}

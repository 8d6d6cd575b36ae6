// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/ava-labs/weightedvm/state"
)

// Metrics observes how often a task had to wait for a conflicting task.
type Metrics interface {
	RecordBlocked()
	RecordExecutable()
}

// Executor sequences the concurrent execution of
// tasks with arbitrary conflicts on-the-fly.
//
// Executor ensures that conflicting tasks
// are executed in the order they were queued.
// Tasks with no conflicts are executed immediately.
// Tasks that only read a key never block each other.
type Executor struct {
	metrics Metrics

	added int
	tasks []*task
	keys  map[string]*keyEdges

	workers     chan struct{}
	outstanding sync.WaitGroup

	err atomic.Error
}

type keyEdges struct {
	writer  int // -1 if no writer yet
	readers []int
}

// New creates a new [Executor] that accepts up to [items] tasks and runs
// at most [concurrency] of them at once. [metrics] may be nil.
func New(items, concurrency int, metrics Metrics) *Executor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Executor{
		metrics: metrics,
		tasks:   make([]*task, items),
		keys:    make(map[string]*keyEdges, items*2),
		workers: make(chan struct{}, concurrency),
	}
}

type task struct {
	f func() error

	l        sync.Mutex
	waiters  []*sync.WaitGroup
	executed bool
}

// dependOn registers [wg] to be released once task [id] finishes. It returns
// false if the task already finished.
func (e *Executor) dependOn(id int, wg *sync.WaitGroup) bool {
	t := e.tasks[id]
	t.l.Lock()
	defer t.l.Unlock()

	if t.executed {
		return false
	}
	wg.Add(1)
	t.waiters = append(t.waiters, wg)
	return true
}

// Run executes [f] after all previously enqueued [f] with
// overlapping [conflicts] are executed. A key held only with
// [state.Read] conflicts with writers of that key, not with other readers.
//
// Run is not safe to call concurrently.
func (e *Executor) Run(conflicts state.Keys, f func() error) {
	if e.added >= len(e.tasks) {
		e.err.CompareAndSwap(nil, ErrTooManyTasks)
		return
	}

	id := e.added
	e.added++
	t := &task{f: f}
	e.tasks[id] = t
	e.outstanding.Add(1)

	// Record dependencies
	var (
		wg      sync.WaitGroup
		blocked bool
	)
	for k, perm := range conflicts {
		edges, ok := e.keys[k]
		if !ok {
			edges = &keyEdges{writer: -1}
			e.keys[k] = edges
		}
		if edges.writer >= 0 && edges.writer != id {
			blocked = e.dependOn(edges.writer, &wg) || blocked
		}
		if perm == state.Read {
			edges.readers = append(edges.readers, id)
			continue
		}
		for _, r := range edges.readers {
			blocked = e.dependOn(r, &wg) || blocked
		}
		edges.writer = id
		edges.readers = nil
	}
	if e.metrics != nil {
		if blocked {
			e.metrics.RecordBlocked()
		} else {
			e.metrics.RecordExecutable()
		}
	}

	go func() {
		// Block until our dependencies have been executed
		wg.Wait()

		// Ensure we unblock our dependencies
		defer func() {
			t.l.Lock()
			for _, w := range t.waiters {
				w.Done()
			}
			t.waiters = nil
			t.executed = true
			t.l.Unlock()
			e.outstanding.Done()
		}()

		// Stop early if executor is stopped
		if e.err.Load() != nil {
			return
		}

		// Execute task once we aren't too busy
		e.workers <- struct{}{}
		defer func() { <-e.workers }()
		if err := t.f(); err != nil {
			e.err.CompareAndSwap(nil, err)
		}
	}()
}

// Stop prevents any task that has not started from running.
func (e *Executor) Stop() {
	e.err.CompareAndSwap(nil, ErrStopped)
}

// Wait returns as soon as all enqueued [f] are executed.
//
// You should not call [Run] after [Wait] is called.
func (e *Executor) Wait() error {
	e.outstanding.Wait()
	return e.err.Load()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workers

import (
	"sync"

	"go.uber.org/atomic"
)

type orderedTask[T any] struct {
	i int
	f func() (T, error)
}

// Ordered computes tasks on up to [workers] goroutines and hands each result
// to [apply] in the order the tasks were submitted. After the first error no
// further task runs and no further result is applied.
type Ordered[T any] struct {
	apply func(T)

	enqueued   int
	tasks      sync.WaitGroup
	queue      chan *orderedTask[T]
	queueClose sync.Once

	spawner chan struct{}
	running sync.WaitGroup
	work    chan *orderedTask[T]

	resultsL sync.Mutex
	results  map[int]T
	next     int

	err atomic.Error
}

func NewOrdered[T any](workers, backlog int, apply func(T)) *Ordered[T] {
	o := &Ordered[T]{
		apply:   apply,
		queue:   make(chan *orderedTask[T], backlog),
		spawner: make(chan struct{}, workers),
		work:    make(chan *orderedTask[T]),
		results: make(map[int]T),
	}
	go o.dispatch()
	return o
}

// dispatch feeds idle workers first and spawns a new worker only when none
// is idle and the limit allows it.
func (o *Ordered[T]) dispatch() {
	defer close(o.work)

	for t := range o.queue {
		select {
		case o.work <- t:
			continue
		default:
		}
		select {
		case o.work <- t:
		case o.spawner <- struct{}{}:
			o.spawn(t)
		}
	}
}

func (o *Ordered[T]) spawn(t *orderedTask[T]) {
	o.running.Add(1)
	go func() {
		defer o.running.Done()

		o.run(t)
		for nt := range o.work {
			o.run(nt)
		}
	}()
}

func (o *Ordered[T]) run(t *orderedTask[T]) {
	defer o.tasks.Done()

	if o.err.Load() != nil {
		return
	}
	v, err := t.f()
	if err != nil {
		o.err.CompareAndSwap(nil, err)
		return
	}

	o.resultsL.Lock()
	defer o.resultsL.Unlock()

	o.results[t.i] = v
	for {
		r, ok := o.results[o.next]
		if !ok || o.err.Load() != nil {
			return
		}
		delete(o.results, o.next)
		o.next++
		o.apply(r)
	}
}

// Go enqueues [f]. It must not be called concurrently or after [Wait].
func (o *Ordered[T]) Go(f func() (T, error)) {
	if o.err.Load() != nil {
		return
	}
	o.tasks.Add(1)
	o.queue <- &orderedTask[T]{i: o.enqueued, f: f}
	o.enqueued++
}

// Wait blocks until every enqueued task finished and returns the first
// error, if any.
func (o *Ordered[T]) Wait() error {
	o.queueClose.Do(func() {
		close(o.queue)
	})
	o.tasks.Wait()
	o.running.Wait()
	return o.err.Load()
}

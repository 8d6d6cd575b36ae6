// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workers

import (
	"sync"

	"go.uber.org/atomic"
)

var (
	_ Workers = (*Pool)(nil)
	_ Job     = (*PoolJob)(nil)
)

type task struct {
	job *PoolJob
	f   func() error
}

// Pool runs the tasks of one job at a time on a fixed set of goroutines.
type Pool struct {
	count int
	jobs  chan *PoolJob
	tasks chan *task

	l       sync.Mutex
	stopped bool
	exited  sync.WaitGroup
}

func NewPool(workers int, maxJobs int) Workers {
	p := &Pool{
		count: workers,
		jobs:  make(chan *PoolJob, maxJobs),
		tasks: make(chan *task),
	}
	p.exited.Add(workers + 1)
	go p.schedule()
	for i := 0; i < workers; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) schedule() {
	defer p.exited.Done()
	defer close(p.tasks)

	for j := range p.jobs {
		for f := range j.tasks {
			j.running.Add(1)
			p.tasks <- &task{job: j, f: f}
		}
		j.running.Wait()
		close(j.completed)
	}
}

func (p *Pool) work() {
	defer p.exited.Done()

	for t := range p.tasks {
		// skip the rest of a failed job
		if t.job.err.Load() == nil {
			if err := t.f(); err != nil {
				t.job.err.CompareAndSwap(nil, err)
			}
		}
		t.job.running.Done()
	}
}

// Stop finishes queued jobs and waits for every goroutine to exit.
func (p *Pool) Stop() {
	p.l.Lock()
	if p.stopped {
		p.l.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.l.Unlock()

	p.exited.Wait()
}

// NewJob queues a job. Go blocks once [backlog] tasks are pending.
func (p *Pool) NewJob(backlog int) (Job, error) {
	p.l.Lock()
	defer p.l.Unlock()

	if p.stopped {
		return nil, ErrShutdown
	}
	j := &PoolJob{
		count:     p.count,
		tasks:     make(chan func() error, backlog),
		completed: make(chan struct{}),
	}
	p.jobs <- j
	return j, nil
}

type PoolJob struct {
	count     int
	tasks     chan func() error
	running   sync.WaitGroup
	completed chan struct{}
	err       atomic.Error
}

func (j *PoolJob) Go(f func() error) {
	j.tasks <- f
}

// Done seals the job. [f], if not nil, is called once every task returned.
func (j *PoolJob) Done(f func()) {
	close(j.tasks)
	if f != nil {
		go func() {
			<-j.completed
			f()
		}()
	}
}

func (j *PoolJob) Wait() error {
	<-j.completed
	return j.err.Load()
}

func (j *PoolJob) Workers() int {
	return j.count
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workers

// Workers runs jobs one after another.
type Workers interface {
	NewJob(backlog int) (Job, error)
	Stop()
}

// Job is a set of tasks. Tasks are added with Go, sealed with Done and
// awaited with Wait, which returns the first task error.
type Job interface {
	Go(func() error)
	Done(func())
	Wait() error
	Workers() int
}

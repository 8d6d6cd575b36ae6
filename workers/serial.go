// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workers

var (
	_ Workers = (*Serial)(nil)
	_ Job     = (*SerialJob)(nil)
)

// Serial runs every task on the calling goroutine.
type Serial struct{}

func NewSerial() Workers {
	return Serial{}
}

func (Serial) NewJob(int) (Job, error) {
	return &SerialJob{}, nil
}

func (Serial) Stop() {}

type SerialJob struct {
	err error
}

func (j *SerialJob) Go(f func() error) {
	if j.err == nil {
		j.err = f()
	}
}

func (*SerialJob) Done(f func()) {
	if f != nil {
		f()
	}
}

func (j *SerialJob) Wait() error {
	return j.err
}

func (*SerialJob) Workers() int {
	return 1
}

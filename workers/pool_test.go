// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestPoolJob(t *testing.T) {
	require := require.New(t)
	w := NewPool(4, 2)
	defer w.Stop()

	var sum atomic.Int64
	job, err := w.NewJob(8)
	require.NoError(err)
	require.Equal(4, job.Workers())
	for i := 1; i <= 100; i++ {
		i := i
		job.Go(func() error {
			sum.Add(int64(i))
			return nil
		})
	}
	done := make(chan struct{})
	job.Done(func() { close(done) })
	require.NoError(job.Wait())
	<-done
	require.Equal(int64(5050), sum.Load())
}

func TestPoolJobError(t *testing.T) {
	require := require.New(t)
	w := NewPool(2, 2)
	defer w.Stop()

	errBoom := errors.New("boom")
	job, err := w.NewJob(4)
	require.NoError(err)
	for i := 0; i < 10; i++ {
		i := i
		job.Go(func() error {
			if i == 3 {
				return errBoom
			}
			return nil
		})
	}
	job.Done(nil)
	require.ErrorIs(job.Wait(), errBoom)

	// the next job starts clean
	job, err = w.NewJob(1)
	require.NoError(err)
	job.Go(func() error { return nil })
	job.Done(nil)
	require.NoError(job.Wait())
}

func TestPoolStop(t *testing.T) {
	require := require.New(t)
	w := NewPool(2, 1)

	var ran atomic.Bool
	job, err := w.NewJob(1)
	require.NoError(err)
	job.Go(func() error {
		ran.Store(true)
		return nil
	})
	job.Done(nil)
	w.Stop()
	require.True(ran.Load())
	require.NoError(job.Wait())

	_, err = w.NewJob(1)
	require.ErrorIs(err, ErrShutdown)
	w.Stop()
}

func TestSerial(t *testing.T) {
	require := require.New(t)
	w := NewSerial()

	errBoom := errors.New("boom")
	job, err := w.NewJob(0)
	require.NoError(err)
	calls := 0
	for i := 0; i < 3; i++ {
		job.Go(func() error {
			calls++
			return errBoom
		})
	}
	job.Done(nil)
	require.ErrorIs(job.Wait(), errBoom)
	require.Equal(1, calls)
}

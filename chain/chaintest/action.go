// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"
)

// ActionTest is a single parameterized test. It calls Execute on the action
// with the passed parameters and checks that all assertions pass.
//
// Every key the action touches must be declared by its StateKeys. On
// success the writes are applied to [State] before [Assertion] runs.
type ActionTest struct {
	Name string

	Action chain.Action

	Invoker   chain.Invoker
	State     *InMemoryStore
	Timestamp int64
	Actor     codec.Address
	ActionID  ids.ID

	ExpectedOutputs codec.Typed
	ExpectedErr     error

	Assertion func(context.Context, *testing.T, state.Immutable)
}

// Run executes the [ActionTest] and make sure all assertions pass.
func (test *ActionTest) Run(ctx context.Context, t *testing.T) {
	t.Run(test.Name, func(t *testing.T) {
		require := require.New(t)

		r := state.NewRecorder(test.State)
		output, err := test.Action.Execute(ctx, test.Invoker, r, test.Timestamp, test.Actor, test.ActionID)

		require.ErrorIs(err, test.ExpectedErr)
		require.Equal(test.ExpectedOutputs, output)
		require.NoError(r.CoveredBy(test.Action.StateKeys(test.Actor)))

		if err == nil {
			require.NoError(test.State.Apply(ctx, r.Changes()))
		}
		if test.Assertion != nil {
			test.Assertion(ctx, t, test.State)
		}
	})
}

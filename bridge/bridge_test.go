// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/weightedvm/authority"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/keys"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/state/dbtest"
)

var (
	errBoom          = errors.New("boom")
	errMissingSigner = errors.New("missing signer")

	outerKey = keys.EncodeChunks([]byte("outer"), 1)
	innerKey = keys.EncodeChunks([]byte("inner"), 1)
)

type echoParams struct {
	Value  string
	Expect codec.Address
	Bump   uint8
}

// newTestBridge registers two programs. The pool program writes a key and
// forwards to the vault program, which writes another key and fails on
// demand.
func newTestBridge(require *require.Assertions) *Bridge {
	b := New(logging.NoLog{}, trace.Noop)
	require.NoError(b.Register(authority.VaultProgram, "vault", Router{
		"write": func(ctx context.Context, mu state.Reversible, call *Call) ([]byte, error) {
			var p echoParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			if err := mu.Insert(ctx, innerKey, []byte(p.Value)); err != nil {
				return nil, err
			}
			if p.Value == "fail" {
				return nil, errBoom
			}
			if p.Expect != codec.EmptyAddress && !call.IsSigner(p.Expect) {
				return nil, errMissingSigner
			}
			return Encode(call.Caller)
		},
	}))
	require.NoError(b.Register(authority.PoolProgram, "pool", Router{
		"forward": func(ctx context.Context, mu state.Reversible, call *Call) ([]byte, error) {
			var p echoParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			if err := mu.Insert(ctx, outerKey, []byte("outer")); err != nil {
				return nil, err
			}
			msg, err := NewMessage(authority.VaultProgram, "write", p)
			if err != nil {
				return nil, err
			}
			var signers []authority.Signer
			if p.Bump != 0 {
				s, err := authority.NewSigner(authority.PoolProgram, authority.PoolStateSeed, call.Actor, p.Bump)
				if err != nil {
					return nil, err
				}
				signers = append(signers, s)
			}
			out, err := call.Invoke(ctx, mu, msg, signers...)
			if err != nil {
				return nil, err
			}
			return out, nil
		},
	}))
	return b
}

func newBatch(require *require.Assertions) *dbtest.Batch {
	batch, err := dbtest.NewBatch(context.Background(), state.NewMemoryDatabase(), state.Keys{
		string(outerKey): state.All,
		string(innerKey): state.All,
	})
	require.NoError(err)
	return batch
}

func TestInvokeNested(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	b := newTestBridge(require)
	batch := newBatch(require)
	actor := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())

	msg, err := NewMessage(authority.PoolProgram, "forward", echoParams{Value: "ok"})
	require.NoError(err)
	out, err := b.Invoke(ctx, batch.View, actor, msg)
	require.NoError(err)

	caller, err := Decode[codec.Address](out)
	require.NoError(err)
	require.Equal(authority.PoolProgram, caller)

	v, err := batch.View.GetValue(ctx, innerKey)
	require.NoError(err)
	require.Equal([]byte("ok"), v)
}

func TestInvokeRollsBackOnFailure(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	b := newTestBridge(require)
	batch := newBatch(require)
	actor := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())

	msg, err := NewMessage(authority.PoolProgram, "forward", echoParams{Value: "fail"})
	require.NoError(err)
	_, err = b.Invoke(ctx, batch.View, actor, msg)
	require.ErrorIs(err, errBoom)
	require.Zero(batch.View.OpIndex())

	_, err = batch.View.GetValue(ctx, outerKey)
	require.Error(err)
	_, err = batch.View.GetValue(ctx, innerKey)
	require.Error(err)
}

func TestInvokeSigners(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	b := newTestBridge(r)
	actor := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())

	derived, bump, err := authority.Derive(authority.PoolProgram, authority.PoolStateSeed, actor)
	r.NoError(err)

	tests := []struct {
		name        string
		params      echoParams
		expectedErr error
	}{
		{
			name:   "actor signature reaches nested calls",
			params: echoParams{Value: "ok", Expect: actor},
		},
		{
			name:   "program signs for its derived address",
			params: echoParams{Value: "ok", Expect: derived, Bump: bump},
		},
		{
			name:        "derived address without a signer",
			params:      echoParams{Value: "ok", Expect: derived},
			expectedErr: errMissingSigner,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			batch := newBatch(require)
			msg, err := NewMessage(authority.PoolProgram, "forward", tt.params)
			require.NoError(err)
			_, err = b.Invoke(ctx, batch.View, actor, msg)
			require.ErrorIs(err, tt.expectedErr)
		})
	}
}

func TestSignerOfAnotherProgram(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	b := newTestBridge(require)
	batch := newBatch(require)
	actor := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())

	_, bump, err := authority.Derive(authority.VaultProgram, authority.PoolStateSeed, actor)
	require.NoError(err)
	vaultSigner, err := authority.NewSigner(authority.VaultProgram, authority.PoolStateSeed, actor, bump)
	require.NoError(err)

	call := &Call{
		Program: authority.PoolProgram,
		Actor:   actor,
		bridge:  b,
	}
	msg, err := NewMessage(authority.VaultProgram, "write", echoParams{Value: "ok"})
	require.NoError(err)
	_, err = call.Invoke(ctx, batch.View, msg, vaultSigner)
	require.ErrorIs(err, authority.ErrWrongProgram)
}

func TestUnknownTargets(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	b := newTestBridge(require)
	batch := newBatch(require)
	actor := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())

	_, err := b.Invoke(ctx, batch.View, actor, Message{Program: authority.TokenProgram, Method: "write"})
	require.ErrorIs(err, ErrUnknownProgram)
	_, err = b.Invoke(ctx, batch.View, actor, Message{Program: authority.VaultProgram, Method: "read"})
	require.ErrorIs(err, ErrUnknownMethod)
	_, err = b.Invoke(ctx, batch.View, actor, Message{Program: authority.VaultProgram, Method: "write", Params: []byte{1}})
	require.ErrorIs(err, ErrInvalidParams)

	require.ErrorIs(b.Register(authority.VaultProgram, "vault", Router{}), ErrDuplicateProgram)
}

func TestCallDepth(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	b := New(logging.NoLog{}, trace.Noop)
	require.NoError(b.Register(authority.VaultProgram, "vault", Router{
		"loop": func(ctx context.Context, mu state.Reversible, call *Call) ([]byte, error) {
			return call.Invoke(ctx, mu, Message{Program: authority.VaultProgram, Method: "loop"})
		},
	}))

	batch := newBatch(require)
	actor := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())
	_, err := b.Invoke(ctx, batch.View, actor, Message{Program: authority.VaultProgram, Method: "loop"})
	require.ErrorIs(err, ErrCallDepth)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/chain/chaintest"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"
)

const now = 10_000

type processorEnv struct {
	chainID   ids.ID
	store     *chaintest.InMemoryStore
	engine    *chaintest.TestAuthEngine
	processor *chain.Processor

	actionRegistry chain.ActionRegistry
	authRegistry   chain.AuthRegistry
}

func newProcessorEnv(t *testing.T) *processorEnv {
	e := &processorEnv{
		chainID: ids.GenerateTestID(),
		store:   chaintest.NewInMemoryStore(),
		engine:  &chaintest.TestAuthEngine{},
	}
	e.actionRegistry, e.authRegistry = chaintest.NewTestRegistries()

	cfg := chain.NewDefaultConfig()
	cfg.ChainID = e.chainID
	processor, err := chain.NewProcessor(
		logging.NoLog{},
		trace.Noop,
		prometheus.NewRegistry(),
		nil,
		e.store,
		map[uint8]chain.AuthEngine{chaintest.TestAuthTypeID: e.engine},
		cfg,
	)
	require.NoError(t, err)
	t.Cleanup(processor.Close)
	e.processor = processor
	return e
}

func (e *processorEnv) tx(t *testing.T, auth *chaintest.TestAuth, timestamp int64, actions ...chain.Action) *chain.Transaction {
	tx, err := chain.NewTx(&chain.Base{Timestamp: timestamp, ChainID: e.chainID}, actions).Sign(
		&chaintest.TestAuthFactory{TestAuth: auth},
		e.actionRegistry,
		e.authRegistry,
	)
	require.NoError(t, err)
	return tx
}

func write(name string, value byte) *chaintest.TestAction {
	return &chaintest.TestAction{
		WriteKeys: [][]byte{chaintest.NewTestKey(name)},
		Value:     []byte{value},
	}
}

func (e *processorEnv) value(name string) ([]byte, bool) {
	v, ok := e.store.Storage[string(chaintest.NewTestKey(name))]
	return v, ok
}

func TestProcessorExecute(t *testing.T) {
	require := require.New(t)
	e := newProcessorEnv(t)
	auth := &chaintest.TestAuth{ActorAddress: newTestAddress()}

	failing := write("c", 3)
	failing.ShouldErr = true
	txs := []*chain.Transaction{
		e.tx(t, auth, now, write("a", 1)),
		e.tx(t, auth, now+1_000, write("a", 2), write("b", 2)),
		e.tx(t, auth, now+2_000, write("d", 4), failing),
		e.tx(t, auth, now+3_000, write("e", 5)),
	}

	results, err := e.processor.Execute(context.Background(), txs, now)
	require.NoError(err)
	require.Len(results, len(txs))

	require.True(results[0].Success)
	require.Equal([]codec.Typed{&chaintest.TestOutput{Written: 1}}, results[0].Outputs)
	require.True(results[1].Success)
	require.Len(results[1].Outputs, 2)
	require.False(results[2].Success)
	require.ErrorIs(results[2].Err(), chaintest.ErrTestAction)
	require.Empty(results[2].Outputs)
	require.True(results[3].Success)
	for i, tx := range txs {
		require.Equal(tx.ID(), results[i].TxID)
	}

	// conflicting writes apply in submission order
	v, ok := e.value("a")
	require.True(ok)
	require.Equal([]byte{2}, v)
	v, ok = e.value("b")
	require.True(ok)
	require.Equal([]byte{2}, v)

	// a failed transaction leaves nothing behind, even from earlier actions
	_, ok = e.value("c")
	require.False(ok)
	_, ok = e.value("d")
	require.False(ok)

	v, ok = e.value("e")
	require.True(ok)
	require.Equal([]byte{5}, v)
	require.Equal(1, e.engine.Batches)
}

func TestProcessorRejects(t *testing.T) {
	auth := &chaintest.TestAuth{ActorAddress: newTestAddress()}

	tests := []struct {
		name    string
		tx      func(t *testing.T, e *processorEnv) *chain.Transaction
		wantErr error
	}{
		{
			name: "expired",
			tx: func(t *testing.T, e *processorEnv) *chain.Transaction {
				return e.tx(t, auth, now-1_000, write("a", 1))
			},
			wantErr: chain.ErrTimestampTooLate,
		},
		{
			name: "outside validity window",
			tx: func(t *testing.T, e *processorEnv) *chain.Transaction {
				return e.tx(t, auth, now+chain.NewDefaultConfig().ValidityWindow+1_000, write("a", 1))
			},
			wantErr: chain.ErrTimestampTooEarly,
		},
		{
			name: "other chain",
			tx: func(t *testing.T, e *processorEnv) *chain.Transaction {
				tx, err := chain.NewTx(&chain.Base{Timestamp: now, ChainID: ids.GenerateTestID()}, []chain.Action{write("a", 1)}).Sign(
					&chaintest.TestAuthFactory{TestAuth: auth},
					e.actionRegistry,
					e.authRegistry,
				)
				require.NoError(t, err)
				return tx
			},
			wantErr: chain.ErrInvalidChainID,
		},
		{
			name: "bad signature",
			tx: func(t *testing.T, e *processorEnv) *chain.Transaction {
				return e.tx(t, &chaintest.TestAuth{ActorAddress: auth.ActorAddress, ShouldErr: true}, now, write("a", 1))
			},
			wantErr: chain.ErrInvalidSignature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			e := newProcessorEnv(t)

			valid := e.tx(t, auth, now+1_000, write("b", 2))
			results, err := e.processor.Execute(context.Background(), []*chain.Transaction{tt.tx(t, e), valid}, now)
			require.NoError(err)

			require.False(results[0].Success)
			require.ErrorIs(results[0].Err(), tt.wantErr)
			require.NotEmpty(results[0].Error)
			_, ok := e.value("a")
			require.False(ok)

			// other transactions of the batch are unaffected
			require.True(results[1].Success)
			_, ok = e.value("b")
			require.True(ok)
		})
	}
}

func TestProcessorDuplicateTx(t *testing.T) {
	require := require.New(t)
	e := newProcessorEnv(t)
	auth := &chaintest.TestAuth{ActorAddress: newTestAddress()}

	tx := e.tx(t, auth, now, write("a", 1))
	results, err := e.processor.Execute(context.Background(), []*chain.Transaction{tx, tx}, now)
	require.NoError(err)
	require.True(results[0].Success)
	require.False(results[1].Success)
	require.ErrorIs(results[1].Err(), chain.ErrDuplicateTx)
}

func TestProcessorUndeclaredKey(t *testing.T) {
	require := require.New(t)
	e := newProcessorEnv(t)
	auth := &chaintest.TestAuth{ActorAddress: newTestAddress()}

	// signing would decode the action back into a [chaintest.TestAction]
	tx := chain.NewTx(&chain.Base{Timestamp: now, ChainID: e.chainID}, []chain.Action{&undeclaredWrite{TestAction: write("a", 1)}})
	tx.Auth = auth
	results, err := e.processor.Execute(context.Background(), []*chain.Transaction{tx}, now)
	require.NoError(err)
	require.False(results[0].Success)
	_, ok := e.value("a")
	require.False(ok)
}

// undeclaredWrite performs the writes of [TestAction] without declaring
// any key.
type undeclaredWrite struct {
	*chaintest.TestAction
}

func (*undeclaredWrite) StateKeys(codec.Address) state.Keys {
	return state.Keys{}
}

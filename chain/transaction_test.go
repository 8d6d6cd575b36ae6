// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/chain/chaintest"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
)

func newTestAddress() codec.Address {
	return codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())
}

func TestTransactionSign(t *testing.T) {
	require := require.New(t)
	actionRegistry, authRegistry := chaintest.NewTestRegistries()

	actor := newTestAddress()
	tx := chain.NewTx(
		&chain.Base{Timestamp: 1_000, ChainID: ids.GenerateTestID()},
		[]chain.Action{
			&chaintest.TestAction{WriteKeys: [][]byte{chaintest.NewTestKey("a")}, Value: []byte{1}},
			&chaintest.TestAction{WriteKeys: [][]byte{chaintest.NewTestKey("b")}, Value: []byte{2}, ShouldErr: true},
		},
	)
	signed, err := tx.Sign(&chaintest.TestAuthFactory{TestAuth: &chaintest.TestAuth{ActorAddress: actor}}, actionRegistry, authRegistry)
	require.NoError(err)

	require.Equal(tx.Base, signed.Base)
	require.Equal(tx.Actions, signed.Actions)
	require.Equal(actor, signed.Auth.Actor())
	require.NotEqual(ids.Empty, signed.ID())
	require.NotEqual(signed.ActionID(0), signed.ActionID(1))

	digest, err := tx.Digest()
	require.NoError(err)
	signedDigest, err := signed.Digest()
	require.NoError(err)
	require.Equal(digest, signedDigest)

	// the encoding is canonical
	again, err := chain.UnmarshalTx(codec.NewReader(signed.Bytes(), consts.NetworkSizeLimit), actionRegistry, authRegistry)
	require.NoError(err)
	require.Equal(signed.ID(), again.ID())

	stateKeys, err := signed.StateKeys()
	require.NoError(err)
	require.Len(stateKeys, 2)
}

func TestUnmarshalTxErrors(t *testing.T) {
	actionRegistry, authRegistry := chaintest.NewTestRegistries()
	base := &chain.Base{Timestamp: 1_000, ChainID: ids.GenerateTestID()}

	tests := []struct {
		name       string
		numActions int
		wantErr    error
	}{
		{
			name:       "no actions",
			numActions: 0,
			wantErr:    chain.ErrNoActions,
		},
		{
			name:       "too many actions",
			numActions: chain.MaxActions + 1,
			wantErr:    chain.ErrTooManyActions,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			p := codec.NewWriter(0, consts.NetworkSizeLimit)
			base.Marshal(p)
			p.PackByte(uint8(tt.numActions))
			require.NoError(p.Err())

			_, err := chain.UnmarshalTx(codec.NewReader(p.Bytes(), consts.NetworkSizeLimit), actionRegistry, authRegistry)
			require.ErrorIs(err, tt.wantErr)
		})
	}
}

func TestBaseVerify(t *testing.T) {
	chainID := ids.GenerateTestID()
	const validityWindow = 10_000

	tests := []struct {
		name    string
		base    chain.Base
		wantErr error
	}{
		{
			name: "valid",
			base: chain.Base{Timestamp: 5_000, ChainID: chainID},
		},
		{
			name:    "misaligned",
			base:    chain.Base{Timestamp: 5_001, ChainID: chainID},
			wantErr: chain.ErrMisalignedTime,
		},
		{
			name:    "expired",
			base:    chain.Base{Timestamp: 1_000, ChainID: chainID},
			wantErr: chain.ErrTimestampTooLate,
		},
		{
			name:    "too far ahead",
			base:    chain.Base{Timestamp: 20_000, ChainID: chainID},
			wantErr: chain.ErrTimestampTooEarly,
		},
		{
			name:    "other chain",
			base:    chain.Base{Timestamp: 5_000, ChainID: ids.GenerateTestID()},
			wantErr: chain.ErrInvalidChainID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.base.Verify(chainID, validityWindow, 2_000), tt.wantErr)
		})
	}
}

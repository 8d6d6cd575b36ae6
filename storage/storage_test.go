// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/keys"
	"github.com/ava-labs/weightedvm/state"
)

func testAddress() codec.Address {
	return codec.CreateAddress(consts.PDAID, ids.GenerateTestID())
}

func TestPoolRecord(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := state.NewSimpleMutable(state.NewMemoryDatabase())

	pool := testAddress()
	_, exists, err := GetPool(ctx, mu, pool)
	require.NoError(err)
	require.False(exists)

	tokens := make([]codec.Address, 8)
	weights := make([]uint64, 8)
	for i := range tokens {
		tokens[i] = testAddress()
		weights[i] = 125_000_000_000_000_000
	}
	expected := &PoolState{
		Vault:               testAddress(),
		LpMint:              testAddress(),
		Tokens:              tokens,
		Weights:             weights,
		SwapFeeBps:          30,
		TotalLpSupply:       1e18,
		Bump:                255,
		LpMintBump:          254,
		LpMintAuthorityBump: 253,
	}
	require.NoError(SetPool(ctx, mu, pool, expected))

	// The largest pool still fits the declared chunks.
	raw, err := mu.GetValue(ctx, PoolKey(pool))
	require.NoError(err)
	require.True(keys.VerifyValue(PoolKey(pool), raw))

	got, exists, err := GetPool(ctx, mu, pool)
	require.NoError(err)
	require.True(exists)
	require.Equal(expected, got)
	require.Equal(3, got.TokenIndex(tokens[3]))
	require.Equal(-1, got.TokenIndex(pool))
}

func TestAmountsRemovedAtZero(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := state.NewMemoryDatabase()
	mu := state.NewSimpleMutable(db)

	vault, token := testAddress(), testAddress()
	require.NoError(SetReserve(ctx, mu, vault, token, 42))
	require.NoError(mu.Commit(ctx))

	r, err := GetReserve(ctx, db, vault, token)
	require.NoError(err)
	require.Equal(uint64(42), r)

	require.NoError(SetReserve(ctx, mu, vault, token, 0))
	require.NoError(mu.Commit(ctx))
	_, err = db.GetValue(ctx, ReserveKey(vault, token))
	require.Error(err)

	r, err = GetReserve(ctx, db, vault, token)
	require.NoError(err)
	require.Zero(r)
}

func TestTokenRecordFitsChunks(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := state.NewSimpleMutable(state.NewMemoryDatabase())

	token := testAddress()
	info := &TokenInfo{
		Symbol:        "ABCDEFGH",
		Decimals:      18,
		Supply:        1 << 63,
		MintAuthority: testAddress(),
	}
	require.Len(info.Symbol, MaxSymbolSize)
	require.NoError(SetToken(ctx, mu, token, info))
	raw, err := mu.GetValue(ctx, TokenKey(token))
	require.NoError(err)
	require.True(keys.VerifyValue(TokenKey(token), raw))

	got, exists, err := GetToken(ctx, mu, token)
	require.NoError(err)
	require.True(exists)
	require.Equal(info, got)
}

func TestCorruptRecord(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	mu := state.NewSimpleMutable(state.NewMemoryDatabase())

	vault := testAddress()
	require.NoError(mu.Insert(ctx, VaultKey(vault), []byte{1, 2}))
	_, _, err := GetVault(ctx, mu, vault)
	require.ErrorIs(err, ErrCorruptRecord)

	require.NoError(mu.Insert(ctx, BalanceKey(vault, vault), []byte{1, 2}))
	_, err = GetBalance(ctx, mu, vault, vault)
	require.ErrorIs(err, ErrCorruptRecord)
}

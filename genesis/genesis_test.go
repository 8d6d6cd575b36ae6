// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/token"
)

func TestApply(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	var (
		tok   = codec.CreateAddress(consts.PDAID, ids.GenerateTestID())
		alice = codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())
		bob   = codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())
	)
	b := []byte(fmt.Sprintf(`{
		"tokens": [{
			"address": %q,
			"symbol": "USDC",
			"decimals": 6,
			"allocations": [
				{"address": %q, "balance": 100},
				{"address": %q, "balance": 250}
			]
		}]
	}`, codec.MustAddressBech32(consts.HRP, tok), codec.MustAddressBech32(consts.HRP, alice), bob.String()))
	g, err := Parse(b)
	require.NoError(err)

	db := state.NewMemoryDatabase()
	// hex addresses need the 0x prefix
	require.Error(g.Apply(ctx, trace.Noop, db))
	_, err = token.Info(ctx, db, tok)
	require.ErrorIs(err, token.ErrTokenNotFound)

	g.Tokens[0].Allocations[1].Address = "0x" + bob.String()
	require.NoError(g.Apply(ctx, trace.Noop, db))

	info, err := token.Info(ctx, db, tok)
	require.NoError(err)
	require.Equal("USDC", info.Symbol)
	require.Equal(uint8(6), info.Decimals)
	require.Equal(uint64(350), info.Supply)
	require.Equal(codec.EmptyAddress, info.MintAuthority)
	balance, err := token.BalanceOf(ctx, db, tok, bob)
	require.NoError(err)
	require.Equal(uint64(250), balance)

	require.ErrorIs(g.Apply(ctx, trace.Noop, db), token.ErrTokenExists)
}

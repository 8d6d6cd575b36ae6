// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/weightedvm/bridge"
	"github.com/ava-labs/weightedvm/chain/chaintest"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/pool"
	"github.com/ava-labs/weightedvm/programs"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/storage"
	"github.com/ava-labs/weightedvm/token"
	"github.com/ava-labs/weightedvm/vault"
	"github.com/ava-labs/weightedvm/weightedmath"
)

const (
	half     = weightedmath.OneUint64 / 2
	thousand = 1_000_000_000_000
	hundred  = 100_000_000_000
	funds    = 10 * thousand
)

type env struct {
	bridge *bridge.Bridge
	store  *chaintest.InMemoryStore

	owner  codec.Address
	trader codec.Address
	vault  codec.Address
	pool   codec.Address
	lpMint codec.Address
	tokens []codec.Address
}

func newAddress() codec.Address {
	return codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())
}

func newEnv(t *testing.T) *env {
	require := require.New(t)
	ctx := context.Background()

	b, err := programs.New(logging.NoLog{}, trace.Noop)
	require.NoError(err)
	e := &env{
		bridge: b,
		store:  chaintest.NewInMemoryStore(),
		owner:  newAddress(),
		trader: newAddress(),
	}
	e.vault, _, err = vault.Address(e.owner)
	require.NoError(err)
	e.pool, _, err = pool.Address(e.vault)
	require.NoError(err)
	e.lpMint, _, err = pool.LPMint(e.pool)
	require.NoError(err)
	for i := 0; i < 3; i++ {
		tok := codec.CreateAddress(consts.PDAID, ids.GenerateTestID())
		require.NoError(token.Create(ctx, e.store, tok, fmt.Sprintf("T%d", i), 9, e.owner))
		require.NoError(token.Mint(ctx, e.store, tok, e.owner, funds))
		require.NoError(token.Mint(ctx, e.store, tok, e.trader, funds))
		e.tokens = append(e.tokens, tok)
	}
	return e
}

func (e *env) balance(t *testing.T, im state.Immutable, tok codec.Address, owner codec.Address) uint64 {
	b, err := token.BalanceOf(context.Background(), im, tok, owner)
	require.NoError(t, err)
	return b
}

func (e *env) reserves(t *testing.T, im state.Immutable) []uint64 {
	r, err := vault.Reserves(context.Background(), im, e.vault, e.tokens[:2])
	require.NoError(t, err)
	return r
}

func TestVaultActions(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	tok := e.tokens[0]

	tests := []chaintest.ActionTest{
		{
			Name:            "initialize",
			Action:          &InitializeVault{},
			Actor:           e.owner,
			ExpectedOutputs: &InitializeVaultResult{Vault: e.vault},
			Assertion: func(ctx context.Context, t *testing.T, im state.Immutable) {
				v, err := vault.Get(ctx, im, e.vault)
				require.NoError(t, err)
				require.Equal(t, e.owner, v.Owner)
				require.Zero(t, v.PoolCount)
			},
		},
		{
			Name:        "initialize twice",
			Action:      &InitializeVault{},
			Actor:       e.owner,
			ExpectedErr: vault.ErrAlreadyInitialized,
		},
		{
			Name:            "deposit",
			Action:          &Deposit{Vault: e.vault, Token: tok, Amount: hundred},
			Actor:           e.trader,
			ExpectedOutputs: &ReserveResult{TypeID: consts.DepositID, Reserve: hundred},
			Assertion: func(ctx context.Context, t *testing.T, im state.Immutable) {
				require.Equal(t, uint64(funds-hundred), e.balance(t, im, tok, e.trader))
				require.Equal(t, uint64(hundred), e.balance(t, im, tok, e.vault))
			},
		},
		{
			Name:        "deposit more than held",
			Action:      &Deposit{Vault: e.vault, Token: tok, Amount: funds},
			Actor:       e.trader,
			ExpectedErr: token.ErrInsufficientBalance,
		},
		{
			Name:        "withdraw by stranger",
			Action:      &Withdraw{Vault: e.vault, Token: tok, To: e.trader, Amount: hundred},
			Actor:       e.trader,
			ExpectedErr: vault.ErrUnauthorized,
			Assertion: func(ctx context.Context, t *testing.T, im state.Immutable) {
				reserve, err := storage.GetReserve(ctx, im, e.vault, tok)
				require.NoError(t, err)
				require.Equal(t, uint64(hundred), reserve)
			},
		},
		{
			Name:        "withdraw above reserve",
			Action:      &Withdraw{Vault: e.vault, Token: tok, To: e.trader, Amount: hundred + 1},
			Actor:       e.owner,
			ExpectedErr: vault.ErrInsufficientReserves,
		},
		{
			Name:            "withdraw by owner",
			Action:          &Withdraw{Vault: e.vault, Token: tok, To: e.trader, Amount: hundred / 4},
			Actor:           e.owner,
			ExpectedOutputs: &ReserveResult{TypeID: consts.WithdrawID, Reserve: 3 * hundred / 4},
			Assertion: func(_ context.Context, t *testing.T, im state.Immutable) {
				require.Equal(t, uint64(funds-3*hundred/4), e.balance(t, im, tok, e.trader))
			},
		},
		{
			Name:            "transfer",
			Action:          &Transfer{Token: tok, To: e.owner, Value: 7},
			Actor:           e.trader,
			ExpectedOutputs: &TransferResult{SenderBalance: funds - 3*hundred/4 - 7, ReceiverBalance: funds + 7},
		},
	}
	for _, tt := range tests {
		tt.Invoker = e.bridge
		tt.State = e.store
		tt.Run(ctx, t)
	}
}

func TestPoolActions(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	pair := e.tokens[:2]

	// Reserves and supply after the swap and the removal below.
	const (
		reserve0 = 990_000_000_000
		reserve1 = 818_181_818_182
		supply   = weightedmath.InitialLPSupply / 10 * 9
	)
	joinLpOut, err := weightedmath.ComputeLpOutGivenExactTokensIn(
		[]uint64{reserve0, reserve1}, []uint64{half, half}, []uint64{hundred, 0}, supply, 0,
	)
	require.NoError(t, err)
	exitAmountOut, err := weightedmath.ComputeTokenOutGivenExactLpIn(reserve1, half, joinLpOut, supply+joinLpOut, 0)
	require.NoError(t, err)

	tests := []chaintest.ActionTest{
		{
			Name:        "pool without vault",
			Action:      &InitializePool{Vault: e.vault, Tokens: pair, Weights: []uint64{half, half}},
			Actor:       e.owner,
			ExpectedErr: vault.ErrVaultNotInitialized,
		},
		{
			Name:            "initialize vault",
			Action:          &InitializeVault{},
			Actor:           e.owner,
			ExpectedOutputs: &InitializeVaultResult{Vault: e.vault},
		},
		{
			Name:        "invalid weights",
			Action:      &InitializePool{Vault: e.vault, Tokens: pair, Weights: []uint64{half, half / 2}},
			Actor:       e.owner,
			ExpectedErr: pool.ErrInvalidWeights,
		},
		{
			Name:        "not the vault owner",
			Action:      &InitializePool{Vault: e.vault, Tokens: pair, Weights: []uint64{half, half}},
			Actor:       e.trader,
			ExpectedErr: pool.ErrUnauthorized,
		},
		{
			Name:            "initialize pool",
			Action:          &InitializePool{Vault: e.vault, Tokens: pair, Weights: []uint64{half, half}},
			Actor:           e.owner,
			ExpectedOutputs: &InitializePoolResult{Pool: e.pool, LpMint: e.lpMint},
			Assertion: func(ctx context.Context, t *testing.T, im state.Immutable) {
				v, err := vault.Get(ctx, im, e.vault)
				require.NoError(t, err)
				require.Equal(t, uint64(1), v.PoolCount)
			},
		},
		{
			Name:        "initialize pool twice",
			Action:      &InitializePool{Vault: e.vault, Tokens: pair, Weights: []uint64{half, half}},
			Actor:       e.owner,
			ExpectedErr: pool.ErrAlreadyInitialized,
		},
		{
			Name:        "liquidity for other tokens",
			Action:      &AddLiquidity{Vault: e.vault, Tokens: e.tokens, MaxAmountsIn: []uint64{thousand, thousand, thousand}},
			Actor:       e.owner,
			ExpectedErr: ErrTokenMismatch,
		},
		{
			Name:   "add liquidity",
			Action: &AddLiquidity{Vault: e.vault, Tokens: pair, MaxAmountsIn: []uint64{thousand, thousand}},
			Actor:  e.owner,
			ExpectedOutputs: &AddLiquidityResult{
				LpOut:     weightedmath.InitialLPSupply - weightedmath.MinimumLiquidity,
				AmountsIn: []uint64{thousand, thousand},
			},
			Assertion: func(_ context.Context, t *testing.T, im state.Immutable) {
				require.Equal(t, []uint64{thousand, thousand}, e.reserves(t, im))
				require.Equal(t, weightedmath.MinimumLiquidity, e.balance(t, im, e.lpMint, codec.EmptyAddress))
			},
		},
		{
			Name:        "swap below minimum out",
			Action:      &Swap{Vault: e.vault, TokenIn: pair[0], TokenOut: pair[1], AmountIn: hundred, MinAmountOut: 90_909_090_910},
			Actor:       e.trader,
			ExpectedErr: pool.ErrSlippageExceeded,
			Assertion: func(_ context.Context, t *testing.T, im state.Immutable) {
				require.Equal(t, []uint64{thousand, thousand}, e.reserves(t, im))
				require.Equal(t, uint64(funds), e.balance(t, im, pair[0], e.trader))
			},
		},
		{
			Name:        "swap token outside pool",
			Action:      &Swap{Vault: e.vault, TokenIn: e.tokens[2], TokenOut: pair[1], AmountIn: hundred},
			Actor:       e.trader,
			ExpectedErr: ErrTokenNotInPool,
		},
		{
			Name:        "swap identical tokens",
			Action:      &Swap{Vault: e.vault, TokenIn: pair[0], TokenOut: pair[0], AmountIn: hundred},
			Actor:       e.trader,
			ExpectedErr: pool.ErrIdenticalTokens,
		},
		{
			Name:            "swap",
			Action:          &Swap{Vault: e.vault, TokenIn: pair[0], TokenOut: pair[1], AmountIn: hundred, MinAmountOut: 90_909_090_909},
			Actor:           e.trader,
			ExpectedOutputs: &SwapResult{TypeID: consts.SwapID, AmountIn: hundred, AmountOut: 90_909_090_909},
			Assertion: func(_ context.Context, t *testing.T, im state.Immutable) {
				require.Equal(t, []uint64{thousand + hundred, thousand - 90_909_090_909}, e.reserves(t, im))
				require.Equal(t, uint64(funds+90_909_090_909), e.balance(t, im, pair[1], e.trader))
			},
		},
		{
			Name:        "swap out entire reserve",
			Action:      &SwapExactOut{Vault: e.vault, TokenIn: pair[1], TokenOut: pair[0], AmountOut: thousand + hundred, MaxAmountIn: funds},
			Actor:       e.trader,
			ExpectedErr: pool.ErrInsufficientReserves,
		},
		{
			Name:        "remove more than held",
			Action:      &RemoveLiquidity{Vault: e.vault, Tokens: pair, LpAmountIn: 1, MinAmountsOut: []uint64{0, 0}},
			Actor:       e.trader,
			ExpectedErr: pool.ErrInsufficientLiquidity,
		},
		{
			Name:   "remove liquidity",
			Action: &RemoveLiquidity{Vault: e.vault, Tokens: pair, LpAmountIn: weightedmath.InitialLPSupply / 10, MinAmountsOut: []uint64{0, 0}},
			Actor:  e.owner,
			ExpectedOutputs: &RemoveLiquidityResult{AmountsOut: []uint64{
				(thousand + hundred) / 10,
				(thousand - 90_909_090_909) / 10,
			}},
			Assertion: func(ctx context.Context, t *testing.T, im state.Immutable) {
				p, err := pool.Get(ctx, im, e.pool)
				require.NoError(t, err)
				require.Equal(t, weightedmath.InitialLPSupply-weightedmath.InitialLPSupply/10, p.TotalLpSupply)
			},
		},
		{
			Name:        "join with tokens out of order",
			Action:      &JoinPool{Vault: e.vault, Tokens: []codec.Address{pair[1], pair[0]}, AmountsIn: []uint64{hundred, 0}},
			Actor:       e.trader,
			ExpectedErr: ErrTokenMismatch,
		},
		{
			Name:            "join with a single token",
			Action:          &JoinPool{Vault: e.vault, Tokens: pair, AmountsIn: []uint64{hundred, 0}, MinLpOut: joinLpOut},
			Actor:           e.trader,
			ExpectedOutputs: &JoinPoolResult{LpOut: joinLpOut},
			Assertion: func(_ context.Context, t *testing.T, im state.Immutable) {
				require.Equal(t, []uint64{reserve0 + hundred, reserve1}, e.reserves(t, im))
				require.Equal(t, joinLpOut, e.balance(t, im, e.lpMint, e.trader))
			},
		},
		{
			Name:        "exit to a token outside the pool",
			Action:      &ExitPool{Vault: e.vault, Token: e.tokens[2], LpAmountIn: joinLpOut},
			Actor:       e.trader,
			ExpectedErr: ErrTokenNotInPool,
		},
		{
			Name:            "exit to a single token",
			Action:          &ExitPool{Vault: e.vault, Token: pair[1], LpAmountIn: joinLpOut, MinAmountOut: exitAmountOut},
			Actor:           e.trader,
			ExpectedOutputs: &ExitPoolResult{AmountOut: exitAmountOut},
			Assertion: func(_ context.Context, t *testing.T, im state.Immutable) {
				require.Equal(t, []uint64{reserve0 + hundred, reserve1 - exitAmountOut}, e.reserves(t, im))
				require.Zero(t, e.balance(t, im, e.lpMint, e.trader))
			},
		},
	}
	for _, tt := range tests {
		tt.Invoker = e.bridge
		tt.State = e.store
		tt.Run(ctx, t)
	}
}

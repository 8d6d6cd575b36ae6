// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ava-labs/weightedvm/authority"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/storage"
	"github.com/ava-labs/weightedvm/vault"
	"github.com/ava-labs/weightedvm/weightedmath"
)

func pairReserves(
	ctx context.Context,
	im state.Immutable,
	p *storage.PoolState,
	idxIn, idxOut uint8,
) (uint64, uint64, error) {
	if err := tokenPair(p, idxIn, idxOut); err != nil {
		return 0, 0, err
	}
	reserves, err := vault.Reserves(ctx, im, p.Vault, []codec.Address{p.Tokens[idxIn], p.Tokens[idxOut]})
	if err != nil {
		return 0, 0, err
	}
	return reserves[0], reserves[1], nil
}

// QuoteSwap returns what selling [amountIn] of token [idxIn] pays out now.
func QuoteSwap(
	ctx context.Context,
	im state.Immutable,
	p *storage.PoolState,
	idxIn, idxOut uint8,
	amountIn uint64,
) (uint64, error) {
	reserveIn, reserveOut, err := pairReserves(ctx, im, p, idxIn, idxOut)
	if err != nil {
		return 0, err
	}
	return weightedmath.ComputeSwapOut(
		reserveIn, reserveOut,
		p.Weights[idxIn], p.Weights[idxOut],
		amountIn, p.SwapFeeBps,
	)
}

// QuoteSwapExactOut returns the input needed to buy [amountOut] of token
// [idxOut] now.
func QuoteSwapExactOut(
	ctx context.Context,
	im state.Immutable,
	p *storage.PoolState,
	idxIn, idxOut uint8,
	amountOut uint64,
) (uint64, error) {
	reserveIn, reserveOut, err := pairReserves(ctx, im, p, idxIn, idxOut)
	if err != nil {
		return 0, err
	}
	return weightedmath.ComputeSwapIn(
		reserveIn, reserveOut,
		p.Weights[idxIn], p.Weights[idxOut],
		amountOut, p.SwapFeeBps,
	)
}

// SpotPrice is the marginal price of token [idxOut] in token [idxIn].
func SpotPrice(
	ctx context.Context,
	im state.Immutable,
	p *storage.PoolState,
	idxIn, idxOut uint8,
) (*uint256.Int, error) {
	reserveIn, reserveOut, err := pairReserves(ctx, im, p, idxIn, idxOut)
	if err != nil {
		return nil, err
	}
	return weightedmath.SpotPrice(reserveIn, p.Weights[idxIn], reserveOut, p.Weights[idxOut], p.SwapFeeBps)
}

// Invariant returns the weighted product of the current reserves.
func Invariant(ctx context.Context, im state.Immutable, p *storage.PoolState) (uint64, error) {
	reserves, err := vault.Reserves(ctx, im, p.Vault, p.Tokens)
	if err != nil {
		return 0, err
	}
	return weightedmath.Invariant(reserves, p.Weights)
}

func tokenReserve(ctx context.Context, im state.Immutable, p *storage.PoolState, idx uint8) (uint64, error) {
	if int(idx) >= len(p.Tokens) {
		return 0, fmt.Errorf("%w: %d of %d", ErrTokenIndex, idx, len(p.Tokens))
	}
	reserves, err := vault.Reserves(ctx, im, p.Vault, []codec.Address{p.Tokens[idx]})
	if err != nil {
		return 0, err
	}
	return reserves[0], nil
}

// QuoteJoin returns the LP shares depositing [amountsIn] mints now.
func QuoteJoin(ctx context.Context, im state.Immutable, p *storage.PoolState, amountsIn []uint64) (uint64, error) {
	if len(amountsIn) != len(p.Tokens) {
		return 0, fmt.Errorf("%w: %d amounts for %d tokens", ErrInvalidAmounts, len(amountsIn), len(p.Tokens))
	}
	reserves, err := vault.Reserves(ctx, im, p.Vault, p.Tokens)
	if err != nil {
		return 0, err
	}
	return weightedmath.ComputeLpOutGivenExactTokensIn(reserves, p.Weights, amountsIn, p.TotalLpSupply, p.SwapFeeBps)
}

// QuoteJoinExactLpOut returns how much of token [idxIn] alone mints exactly
// [lpOut] shares now.
func QuoteJoinExactLpOut(ctx context.Context, im state.Immutable, p *storage.PoolState, idxIn uint8, lpOut uint64) (uint64, error) {
	reserve, err := tokenReserve(ctx, im, p, idxIn)
	if err != nil {
		return 0, err
	}
	return weightedmath.ComputeTokenInGivenExactLpOut(reserve, p.Weights[idxIn], lpOut, p.TotalLpSupply, p.SwapFeeBps)
}

// QuoteExit returns what burning [lpIn] shares pays out in token [idxOut]
// alone.
func QuoteExit(ctx context.Context, im state.Immutable, p *storage.PoolState, idxOut uint8, lpIn uint64) (uint64, error) {
	reserve, err := tokenReserve(ctx, im, p, idxOut)
	if err != nil {
		return 0, err
	}
	return weightedmath.ComputeTokenOutGivenExactLpIn(reserve, p.Weights[idxOut], lpIn, p.TotalLpSupply, p.SwapFeeBps)
}

// QuoteExitExactTokenOut returns the shares to burn for exactly [amountOut]
// of token [idxOut].
func QuoteExitExactTokenOut(ctx context.Context, im state.Immutable, p *storage.PoolState, idxOut uint8, amountOut uint64) (uint64, error) {
	if int(idxOut) >= len(p.Tokens) {
		return 0, fmt.Errorf("%w: %d of %d", ErrTokenIndex, idxOut, len(p.Tokens))
	}
	reserves, err := vault.Reserves(ctx, im, p.Vault, p.Tokens)
	if err != nil {
		return 0, err
	}
	amountsOut := make([]uint64, len(p.Tokens))
	amountsOut[idxOut] = amountOut
	return weightedmath.ComputeLpInGivenExactTokensOut(reserves, p.Weights, amountsOut, p.TotalLpSupply, p.SwapFeeBps)
}

// StateKeys are the keys any operation on the pool of [vault] over
// [tokens] may touch on behalf of [actor].
func StateKeys(vault codec.Address, tokens []codec.Address, actor codec.Address) state.Keys {
	var (
		pool   = authority.MustDerive(authority.PoolProgram, authority.PoolStateSeed, vault)
		lpMint = authority.MustDerive(authority.PoolProgram, authority.LPMintSeed, pool)
		keys   = state.Keys{}
	)
	keys.Add(string(storage.PoolKey(pool)), state.All)
	keys.Add(string(storage.VaultKey(vault)), state.Read|state.Write)
	keys.Add(string(storage.TokenKey(lpMint)), state.All)
	for _, holder := range []codec.Address{actor, codec.EmptyAddress} {
		keys.Add(string(storage.BalanceKey(lpMint, holder)), state.All)
	}
	for _, t := range tokens {
		keys.Add(string(storage.TokenKey(t)), state.Read)
		keys.Add(string(storage.ReserveKey(vault, t)), state.All)
		keys.Add(string(storage.BalanceKey(t, actor)), state.All)
		keys.Add(string(storage.BalanceKey(t, vault)), state.All)
	}
	return keys
}

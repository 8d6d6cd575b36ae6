// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pool prices swaps and liquidity changes against the reserves of a
// vault using the weighted invariant. The pool keeps weights, fee and LP
// supply; the vault keeps the tokens.
package pool

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/weightedvm/authority"
	"github.com/ava-labs/weightedvm/bridge"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/storage"
	"github.com/ava-labs/weightedvm/token"
	"github.com/ava-labs/weightedvm/vault"
	"github.com/ava-labs/weightedvm/weightedmath"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

type Manager struct {
	log logging.Logger
}

func New(log logging.Logger) *Manager {
	return &Manager{log: log}
}

// Get returns an initialized pool.
func Get(ctx context.Context, im state.Immutable, pool codec.Address) (*storage.PoolState, error) {
	p, exists, err := storage.GetPool(ctx, im, pool)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotInitialized, pool)
	}
	return p, nil
}

func poolSigner(p *storage.PoolState) (authority.Signer, error) {
	return authority.NewSigner(authority.PoolProgram, authority.PoolStateSeed, p.Vault, p.Bump)
}

func lpMintAuthoritySigner(pool codec.Address, p *storage.PoolState) (authority.Signer, error) {
	return authority.NewSigner(authority.PoolProgram, authority.LPMintAuthoritySeed, pool, p.LpMintAuthorityBump)
}

// InitializePool creates the pool of [vaultAddr] over [tokens]. The vault
// owner must sign. The LP mint is created with the pool's mint authority and
// the vault records the new pool.
func (m *Manager) InitializePool(
	ctx context.Context,
	mu state.Reversible,
	call *bridge.Call,
	vaultAddr codec.Address,
	tokens []codec.Address,
	weights []uint64,
	swapFeeBps uint16,
) (codec.Address, error) {
	if err := ValidateConfig(tokens, weights, swapFeeBps); err != nil {
		return codec.EmptyAddress, err
	}
	v, err := vault.Get(ctx, mu, vaultAddr)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if !call.IsSigner(v.Owner) {
		return codec.EmptyAddress, fmt.Errorf("%w: vault owner %s did not sign", ErrUnauthorized, v.Owner)
	}
	poolAddr, bump, err := Address(vaultAddr)
	if err != nil {
		return codec.EmptyAddress, err
	}
	_, exists, err := storage.GetPool(ctx, mu, poolAddr)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if exists {
		return codec.EmptyAddress, fmt.Errorf("%w: %s", ErrAlreadyInitialized, poolAddr)
	}
	for _, t := range tokens {
		if _, err := token.Info(ctx, mu, t); err != nil {
			return codec.EmptyAddress, err
		}
	}

	lpMint, lpMintBump, err := LPMint(poolAddr)
	if err != nil {
		return codec.EmptyAddress, err
	}
	lpMintAuthority, lpMintAuthorityBump, err := LPMintAuthority(poolAddr)
	if err != nil {
		return codec.EmptyAddress, err
	}
	p := &storage.PoolState{
		Vault:               vaultAddr,
		LpMint:              lpMint,
		Tokens:              tokens,
		Weights:             weights,
		SwapFeeBps:          swapFeeBps,
		Bump:                bump,
		LpMintBump:          lpMintBump,
		LpMintAuthorityBump: lpMintAuthorityBump,
	}

	mintSigner, err := authority.NewSigner(authority.PoolProgram, authority.LPMintSeed, poolAddr, lpMintBump)
	if err != nil {
		return codec.EmptyAddress, err
	}
	msg, err := bridge.NewMessage(authority.TokenProgram, token.CreateMethod, token.CreateParams{
		Token:         lpMint,
		Symbol:        LPSymbol,
		Decimals:      LPDecimals,
		MintAuthority: lpMintAuthority,
	})
	if err != nil {
		return codec.EmptyAddress, err
	}
	if _, err := call.Invoke(ctx, mu, msg, mintSigner); err != nil {
		return codec.EmptyAddress, err
	}

	signer, err := poolSigner(p)
	if err != nil {
		return codec.EmptyAddress, err
	}
	msg, err = bridge.NewMessage(authority.VaultProgram, vault.RegisterPoolMethod, vault.RegisterPoolParams{
		Vault: vaultAddr,
	})
	if err != nil {
		return codec.EmptyAddress, err
	}
	if _, err := call.Invoke(ctx, mu, msg, signer); err != nil {
		return codec.EmptyAddress, err
	}

	if err := storage.SetPool(ctx, mu, poolAddr, p); err != nil {
		return codec.EmptyAddress, err
	}
	m.log.Debug("pool initialized",
		zap.Stringer("pool", poolAddr),
		zap.Stringer("vault", vaultAddr),
		zap.Int("tokens", len(tokens)),
		zap.Uint16("swapFeeBps", swapFeeBps),
	)
	return poolAddr, nil
}

func tokenPair(p *storage.PoolState, idxIn, idxOut uint8) error {
	if idxIn == idxOut {
		return fmt.Errorf("%w: %d", ErrIdenticalTokens, idxIn)
	}
	if int(idxIn) >= len(p.Tokens) || int(idxOut) >= len(p.Tokens) {
		return fmt.Errorf("%w: %d/%d of %d", ErrTokenIndex, idxIn, idxOut, len(p.Tokens))
	}
	return nil
}

// Swap sells exactly [amountIn] of token [idxIn] for at least [minAmountOut]
// of token [idxOut]. The transaction actor pays and receives.
func (m *Manager) Swap(
	ctx context.Context,
	mu state.Reversible,
	call *bridge.Call,
	poolAddr codec.Address,
	idxIn, idxOut uint8,
	amountIn, minAmountOut uint64,
) (uint64, error) {
	if idxIn == idxOut {
		return 0, fmt.Errorf("%w: %d", ErrIdenticalTokens, idxIn)
	}
	if amountIn == 0 {
		return 0, ErrZeroAmount
	}
	p, err := Get(ctx, mu, poolAddr)
	if err != nil {
		return 0, err
	}
	amountOut, err := QuoteSwap(ctx, mu, p, idxIn, idxOut, amountIn)
	if err != nil {
		return 0, err
	}
	if amountOut < minAmountOut {
		return 0, fmt.Errorf("%w: out %d < min %d", ErrSlippageExceeded, amountOut, minAmountOut)
	}
	if amountOut == 0 {
		return 0, fmt.Errorf("%w: swap pays nothing", ErrZeroAmount)
	}
	if err := m.settleSwap(ctx, mu, call, p, idxIn, idxOut, amountIn, amountOut); err != nil {
		return 0, err
	}
	return amountOut, nil
}

// SwapExactOut buys exactly [amountOut] of token [idxOut] for at most
// [maxAmountIn] of token [idxIn].
func (m *Manager) SwapExactOut(
	ctx context.Context,
	mu state.Reversible,
	call *bridge.Call,
	poolAddr codec.Address,
	idxIn, idxOut uint8,
	amountOut, maxAmountIn uint64,
) (uint64, error) {
	if idxIn == idxOut {
		return 0, fmt.Errorf("%w: %d", ErrIdenticalTokens, idxIn)
	}
	if amountOut == 0 {
		return 0, ErrZeroAmount
	}
	p, err := Get(ctx, mu, poolAddr)
	if err != nil {
		return 0, err
	}
	amountIn, err := QuoteSwapExactOut(ctx, mu, p, idxIn, idxOut, amountOut)
	if err != nil {
		return 0, err
	}
	if amountIn > maxAmountIn {
		return 0, fmt.Errorf("%w: in %d > max %d", ErrSlippageExceeded, amountIn, maxAmountIn)
	}
	if err := m.settleSwap(ctx, mu, call, p, idxIn, idxOut, amountIn, amountOut); err != nil {
		return 0, err
	}
	return amountIn, nil
}

func (m *Manager) settleSwap(
	ctx context.Context,
	mu state.Reversible,
	call *bridge.Call,
	p *storage.PoolState,
	idxIn, idxOut uint8,
	amountIn, amountOut uint64,
) error {
	signer, err := poolSigner(p)
	if err != nil {
		return err
	}
	if err := InvokeVaultTransfer(ctx, mu, call, VaultTransfer{
		Vault:     p.Vault,
		Token:     p.Tokens[idxIn],
		Amount:    amountIn,
		Direction: IntoVault,
		Party:     call.Actor,
	}); err != nil {
		return err
	}
	return InvokeVaultTransfer(ctx, mu, call, VaultTransfer{
		Vault:     p.Vault,
		Token:     p.Tokens[idxOut],
		Amount:    amountOut,
		Direction: OutOfVault,
		Party:     call.Actor,
		Authority: &signer,
	})
}

// AddLiquidity deposits up to [maxAmountsIn] in proportion to the current
// reserves and mints the LP shares to the actor. The first deposit funds
// every token in full and locks [weightedmath.MinimumLiquidity] shares.
func (m *Manager) AddLiquidity(
	ctx context.Context,
	mu state.Reversible,
	call *bridge.Call,
	poolAddr codec.Address,
	maxAmountsIn []uint64,
	minLpOut uint64,
) (uint64, []uint64, error) {
	p, err := Get(ctx, mu, poolAddr)
	if err != nil {
		return 0, nil, err
	}
	if len(maxAmountsIn) != len(p.Tokens) {
		return 0, nil, fmt.Errorf("%w: %d amounts for %d tokens", ErrInvalidAmounts, len(maxAmountsIn), len(p.Tokens))
	}
	reserves, err := vault.Reserves(ctx, mu, p.Vault, p.Tokens)
	if err != nil {
		return 0, nil, err
	}
	minted, err := weightedmath.ComputeProportionalLpOut(maxAmountsIn, reserves, p.TotalLpSupply)
	if err != nil {
		return 0, nil, err
	}

	var (
		amountsIn = maxAmountsIn
		lpOut     = minted
		locked    uint64
	)
	if p.TotalLpSupply == 0 {
		locked = weightedmath.MinimumLiquidity
		lpOut = minted - locked
	} else {
		amountsIn, err = weightedmath.ComputeProportionalAmountsIn(minted, reserves, p.TotalLpSupply)
		if err != nil {
			return 0, nil, err
		}
	}
	if lpOut < minLpOut {
		return 0, nil, fmt.Errorf("%w: lp %d < min %d", ErrSlippageExceeded, lpOut, minLpOut)
	}
	if lpOut == 0 {
		return 0, nil, fmt.Errorf("%w: deposit mints no shares", ErrZeroAmount)
	}
	newSupply, err := smath.Add64(p.TotalLpSupply, minted)
	if err != nil {
		return 0, nil, ErrArithmeticOverflow
	}

	for i, amount := range amountsIn {
		if amount == 0 {
			continue
		}
		if err := InvokeVaultTransfer(ctx, mu, call, VaultTransfer{
			Vault:     p.Vault,
			Token:     p.Tokens[i],
			Amount:    amount,
			Direction: IntoVault,
			Party:     call.Actor,
		}); err != nil {
			return 0, nil, err
		}
	}
	if locked > 0 {
		if err := m.mintLP(ctx, mu, call, poolAddr, p, codec.EmptyAddress, locked); err != nil {
			return 0, nil, err
		}
	}
	if err := m.mintLP(ctx, mu, call, poolAddr, p, call.Actor, lpOut); err != nil {
		return 0, nil, err
	}

	p.TotalLpSupply = newSupply
	if err := storage.SetPool(ctx, mu, poolAddr, p); err != nil {
		return 0, nil, err
	}
	return lpOut, amountsIn, nil
}

func (*Manager) mintLP(
	ctx context.Context,
	mu state.Reversible,
	call *bridge.Call,
	poolAddr codec.Address,
	p *storage.PoolState,
	to codec.Address,
	amount uint64,
) error {
	signer, err := lpMintAuthoritySigner(poolAddr, p)
	if err != nil {
		return err
	}
	msg, err := bridge.NewMessage(authority.TokenProgram, token.MintMethod, token.MintParams{
		Token:  p.LpMint,
		To:     to,
		Amount: amount,
	})
	if err != nil {
		return err
	}
	_, err = call.Invoke(ctx, mu, msg, signer)
	return err
}

// RemoveLiquidity burns [lpAmountIn] shares of the actor and pays out the
// pro rata share of every reserve.
func (m *Manager) RemoveLiquidity(
	ctx context.Context,
	mu state.Reversible,
	call *bridge.Call,
	poolAddr codec.Address,
	lpAmountIn uint64,
	minAmountsOut []uint64,
) ([]uint64, error) {
	if lpAmountIn == 0 {
		return nil, ErrZeroAmount
	}
	p, err := Get(ctx, mu, poolAddr)
	if err != nil {
		return nil, err
	}
	if len(minAmountsOut) != len(p.Tokens) {
		return nil, fmt.Errorf("%w: %d minimums for %d tokens", ErrInvalidAmounts, len(minAmountsOut), len(p.Tokens))
	}
	held, err := token.BalanceOf(ctx, mu, p.LpMint, call.Actor)
	if err != nil {
		return nil, err
	}
	if held < lpAmountIn {
		return nil, fmt.Errorf("%w: holds %d, burning %d", ErrInsufficientLiquidity, held, lpAmountIn)
	}
	reserves, err := vault.Reserves(ctx, mu, p.Vault, p.Tokens)
	if err != nil {
		return nil, err
	}
	amountsOut, err := weightedmath.ComputeWithdrawAmounts(lpAmountIn, reserves, p.TotalLpSupply)
	if err != nil {
		return nil, err
	}
	for i, amount := range amountsOut {
		if amount < minAmountsOut[i] {
			return nil, fmt.Errorf("%w: token %d out %d < min %d", ErrSlippageExceeded, i, amount, minAmountsOut[i])
		}
	}

	msg, err := bridge.NewMessage(authority.TokenProgram, token.BurnMethod, token.BurnParams{
		Token:  p.LpMint,
		From:   call.Actor,
		Amount: lpAmountIn,
	})
	if err != nil {
		return nil, err
	}
	if _, err := call.Invoke(ctx, mu, msg); err != nil {
		return nil, err
	}

	signer, err := poolSigner(p)
	if err != nil {
		return nil, err
	}
	for i, amount := range amountsOut {
		if amount == 0 {
			continue
		}
		if err := InvokeVaultTransfer(ctx, mu, call, VaultTransfer{
			Vault:     p.Vault,
			Token:     p.Tokens[i],
			Amount:    amount,
			Direction: OutOfVault,
			Party:     call.Actor,
			Authority: &signer,
		}); err != nil {
			return nil, err
		}
	}

	p.TotalLpSupply -= lpAmountIn
	if err := storage.SetPool(ctx, mu, poolAddr, p); err != nil {
		return nil, err
	}
	return amountsOut, nil
}

// JoinPool deposits [amountsIn] in any proportion, a single token included,
// and mints the LP shares to the actor. The part of a deposit beyond its
// proportional share pays the swap fee. The pool must already hold
// liquidity.
func (m *Manager) JoinPool(
	ctx context.Context,
	mu state.Reversible,
	call *bridge.Call,
	poolAddr codec.Address,
	amountsIn []uint64,
	minLpOut uint64,
) (uint64, error) {
	p, err := Get(ctx, mu, poolAddr)
	if err != nil {
		return 0, err
	}
	if len(amountsIn) != len(p.Tokens) {
		return 0, fmt.Errorf("%w: %d amounts for %d tokens", ErrInvalidAmounts, len(amountsIn), len(p.Tokens))
	}
	if p.TotalLpSupply == 0 {
		return 0, fmt.Errorf("%w: first deposit must fund every token", ErrInsufficientLiquidity)
	}
	reserves, err := vault.Reserves(ctx, mu, p.Vault, p.Tokens)
	if err != nil {
		return 0, err
	}
	lpOut, err := weightedmath.ComputeLpOutGivenExactTokensIn(reserves, p.Weights, amountsIn, p.TotalLpSupply, p.SwapFeeBps)
	if err != nil {
		return 0, err
	}
	if lpOut < minLpOut {
		return 0, fmt.Errorf("%w: lp %d < min %d", ErrSlippageExceeded, lpOut, minLpOut)
	}
	if lpOut == 0 {
		return 0, fmt.Errorf("%w: deposit mints no shares", ErrZeroAmount)
	}
	newSupply, err := smath.Add64(p.TotalLpSupply, lpOut)
	if err != nil {
		return 0, ErrArithmeticOverflow
	}

	for i, amount := range amountsIn {
		if amount == 0 {
			continue
		}
		if err := InvokeVaultTransfer(ctx, mu, call, VaultTransfer{
			Vault:     p.Vault,
			Token:     p.Tokens[i],
			Amount:    amount,
			Direction: IntoVault,
			Party:     call.Actor,
		}); err != nil {
			return 0, err
		}
	}
	if err := m.mintLP(ctx, mu, call, poolAddr, p, call.Actor, lpOut); err != nil {
		return 0, err
	}

	p.TotalLpSupply = newSupply
	if err := storage.SetPool(ctx, mu, poolAddr, p); err != nil {
		return 0, err
	}
	m.log.Debug("joined pool",
		zap.Stringer("pool", poolAddr),
		zap.Uint64("lpOut", lpOut),
	)
	return lpOut, nil
}

// ExitPool burns [lpAmountIn] shares of the actor and pays out token
// [idxOut] alone. The part beyond the proportional share of that token pays
// the swap fee.
func (m *Manager) ExitPool(
	ctx context.Context,
	mu state.Reversible,
	call *bridge.Call,
	poolAddr codec.Address,
	idxOut uint8,
	lpAmountIn uint64,
	minAmountOut uint64,
) (uint64, error) {
	if lpAmountIn == 0 {
		return 0, ErrZeroAmount
	}
	p, err := Get(ctx, mu, poolAddr)
	if err != nil {
		return 0, err
	}
	reserve, err := tokenReserve(ctx, mu, p, idxOut)
	if err != nil {
		return 0, err
	}
	held, err := token.BalanceOf(ctx, mu, p.LpMint, call.Actor)
	if err != nil {
		return 0, err
	}
	if held < lpAmountIn {
		return 0, fmt.Errorf("%w: holds %d, burning %d", ErrInsufficientLiquidity, held, lpAmountIn)
	}
	amountOut, err := weightedmath.ComputeTokenOutGivenExactLpIn(
		reserve, p.Weights[idxOut],
		lpAmountIn, p.TotalLpSupply,
		p.SwapFeeBps,
	)
	if err != nil {
		return 0, err
	}
	if amountOut < minAmountOut {
		return 0, fmt.Errorf("%w: out %d < min %d", ErrSlippageExceeded, amountOut, minAmountOut)
	}
	if amountOut == 0 {
		return 0, fmt.Errorf("%w: burn pays out nothing", ErrZeroAmount)
	}

	msg, err := bridge.NewMessage(authority.TokenProgram, token.BurnMethod, token.BurnParams{
		Token:  p.LpMint,
		From:   call.Actor,
		Amount: lpAmountIn,
	})
	if err != nil {
		return 0, err
	}
	if _, err := call.Invoke(ctx, mu, msg); err != nil {
		return 0, err
	}
	signer, err := poolSigner(p)
	if err != nil {
		return 0, err
	}
	if err := InvokeVaultTransfer(ctx, mu, call, VaultTransfer{
		Vault:     p.Vault,
		Token:     p.Tokens[idxOut],
		Amount:    amountOut,
		Direction: OutOfVault,
		Party:     call.Actor,
		Authority: &signer,
	}); err != nil {
		return 0, err
	}

	p.TotalLpSupply -= lpAmountIn
	if err := storage.SetPool(ctx, mu, poolAddr, p); err != nil {
		return 0, err
	}
	m.log.Debug("exited pool",
		zap.Stringer("pool", poolAddr),
		zap.Uint8("tokenOut", idxOut),
		zap.Uint64("amountOut", amountOut),
	)
	return amountOut, nil
}

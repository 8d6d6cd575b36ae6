// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"
	"slices"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/weightedvm/authority"
	"github.com/ava-labs/weightedvm/bridge"
	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/pool"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/storage"
)

var (
	_ chain.Action = (*InitializePool)(nil)
	_ chain.Action = (*Swap)(nil)
	_ chain.Action = (*SwapExactOut)(nil)
	_ chain.Action = (*AddLiquidity)(nil)
	_ chain.Action = (*RemoveLiquidity)(nil)
	_ chain.Action = (*JoinPool)(nil)
	_ chain.Action = (*ExitPool)(nil)
)

// loadPool returns the pool of [vault] and its record.
func loadPool(ctx context.Context, im state.Immutable, vault codec.Address) (codec.Address, *storage.PoolState, error) {
	addr, _, err := pool.Address(vault)
	if err != nil {
		return codec.EmptyAddress, nil, err
	}
	p, err := pool.Get(ctx, im, addr)
	if err != nil {
		return codec.EmptyAddress, nil, err
	}
	return addr, p, nil
}

func tokenIndex(p *storage.PoolState, token codec.Address) (uint8, error) {
	i := p.TokenIndex(token)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrTokenNotInPool, token)
	}
	return uint8(i), nil
}

// loadPoolTokens returns the pool of [vault] after checking it holds
// exactly [tokens] in the same order.
func loadPoolTokens(ctx context.Context, im state.Immutable, vault codec.Address, tokens []codec.Address) (codec.Address, error) {
	addr, p, err := loadPool(ctx, im, vault)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if !slices.Equal(p.Tokens, tokens) {
		return codec.EmptyAddress, ErrTokenMismatch
	}
	return addr, nil
}

func invoke[T any](
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	actor codec.Address,
	method string,
	params any,
) (T, error) {
	var out T
	msg, err := bridge.NewMessage(authority.PoolProgram, method, params)
	if err != nil {
		return out, err
	}
	b, err := invoker.Invoke(ctx, mu, actor, msg)
	if err != nil {
		return out, err
	}
	return bridge.Decode[T](b)
}

// InitializePool creates the weighted pool over the reserves of [Vault].
// The actor must own the vault.
type InitializePool struct {
	Vault      codec.Address   `json:"vault"`
	Tokens     []codec.Address `json:"tokens"`
	Weights    []uint64        `json:"weights"`
	SwapFeeBps uint16          `json:"swapFeeBps"`
}

func (*InitializePool) GetTypeID() uint8 {
	return consts.InitializePoolID
}

func (i *InitializePool) StateKeys(actor codec.Address) state.Keys {
	return pool.StateKeys(i.Vault, i.Tokens, actor)
}

func (i *InitializePool) Marshal(p *codec.Packer) {
	p.PackAddress(i.Vault)
	p.PackAddresses(i.Tokens)
	p.PackUint64s(i.Weights)
	p.PackUint16(i.SwapFeeBps)
}

func UnmarshalInitializePool(p *codec.Packer) (chain.Action, error) {
	var i InitializePool
	p.UnpackAddress(true, &i.Vault)
	i.Tokens = p.UnpackAddresses(pool.MaxTokens)
	i.Weights = p.UnpackUint64s(pool.MaxTokens)
	i.SwapFeeBps = p.UnpackUint16(false)
	return &i, p.Err()
}

func (i *InitializePool) Execute(
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	addr, err := invoke[codec.Address](ctx, invoker, mu, actor, pool.InitializePoolMethod, pool.InitializePoolParams{
		Vault:      i.Vault,
		Tokens:     i.Tokens,
		Weights:    i.Weights,
		SwapFeeBps: i.SwapFeeBps,
	})
	if err != nil {
		return nil, err
	}
	lpMint, _, err := pool.LPMint(addr)
	if err != nil {
		return nil, err
	}
	return &InitializePoolResult{Pool: addr, LpMint: lpMint}, nil
}

type InitializePoolResult struct {
	Pool   codec.Address `json:"pool"`
	LpMint codec.Address `json:"lpMint"`
}

func (*InitializePoolResult) GetTypeID() uint8 {
	return consts.InitializePoolID
}

// Swap trades exactly [AmountIn] of [TokenIn] for at least [MinAmountOut]
// of [TokenOut].
type Swap struct {
	Vault        codec.Address `json:"vault"`
	TokenIn      codec.Address `json:"tokenIn"`
	TokenOut     codec.Address `json:"tokenOut"`
	AmountIn     uint64        `json:"amountIn"`
	MinAmountOut uint64        `json:"minAmountOut"`
}

func (*Swap) GetTypeID() uint8 {
	return consts.SwapID
}

func (s *Swap) StateKeys(actor codec.Address) state.Keys {
	return pool.StateKeys(s.Vault, []codec.Address{s.TokenIn, s.TokenOut}, actor)
}

func (s *Swap) Marshal(p *codec.Packer) {
	p.PackAddress(s.Vault)
	p.PackAddress(s.TokenIn)
	p.PackAddress(s.TokenOut)
	p.PackUint64(s.AmountIn)
	p.PackUint64(s.MinAmountOut)
}

func UnmarshalSwap(p *codec.Packer) (chain.Action, error) {
	var s Swap
	p.UnpackAddress(true, &s.Vault)
	p.UnpackAddress(true, &s.TokenIn)
	p.UnpackAddress(true, &s.TokenOut)
	s.AmountIn = p.UnpackUint64(false)
	s.MinAmountOut = p.UnpackUint64(false)
	return &s, p.Err()
}

func (s *Swap) Execute(
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	addr, p, err := loadPool(ctx, mu, s.Vault)
	if err != nil {
		return nil, err
	}
	idxIn, err := tokenIndex(p, s.TokenIn)
	if err != nil {
		return nil, err
	}
	idxOut, err := tokenIndex(p, s.TokenOut)
	if err != nil {
		return nil, err
	}
	amountOut, err := invoke[uint64](ctx, invoker, mu, actor, pool.SwapMethod, pool.SwapParams{
		Pool:         addr,
		TokenIn:      idxIn,
		TokenOut:     idxOut,
		AmountIn:     s.AmountIn,
		MinAmountOut: s.MinAmountOut,
	})
	if err != nil {
		return nil, err
	}
	return &SwapResult{TypeID: consts.SwapID, AmountIn: s.AmountIn, AmountOut: amountOut}, nil
}

// SwapExactOut trades at most [MaxAmountIn] of [TokenIn] for exactly
// [AmountOut] of [TokenOut].
type SwapExactOut struct {
	Vault       codec.Address `json:"vault"`
	TokenIn     codec.Address `json:"tokenIn"`
	TokenOut    codec.Address `json:"tokenOut"`
	AmountOut   uint64        `json:"amountOut"`
	MaxAmountIn uint64        `json:"maxAmountIn"`
}

func (*SwapExactOut) GetTypeID() uint8 {
	return consts.SwapExactOutID
}

func (s *SwapExactOut) StateKeys(actor codec.Address) state.Keys {
	return pool.StateKeys(s.Vault, []codec.Address{s.TokenIn, s.TokenOut}, actor)
}

func (s *SwapExactOut) Marshal(p *codec.Packer) {
	p.PackAddress(s.Vault)
	p.PackAddress(s.TokenIn)
	p.PackAddress(s.TokenOut)
	p.PackUint64(s.AmountOut)
	p.PackUint64(s.MaxAmountIn)
}

func UnmarshalSwapExactOut(p *codec.Packer) (chain.Action, error) {
	var s SwapExactOut
	p.UnpackAddress(true, &s.Vault)
	p.UnpackAddress(true, &s.TokenIn)
	p.UnpackAddress(true, &s.TokenOut)
	s.AmountOut = p.UnpackUint64(false)
	s.MaxAmountIn = p.UnpackUint64(false)
	return &s, p.Err()
}

func (s *SwapExactOut) Execute(
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	addr, p, err := loadPool(ctx, mu, s.Vault)
	if err != nil {
		return nil, err
	}
	idxIn, err := tokenIndex(p, s.TokenIn)
	if err != nil {
		return nil, err
	}
	idxOut, err := tokenIndex(p, s.TokenOut)
	if err != nil {
		return nil, err
	}
	amountIn, err := invoke[uint64](ctx, invoker, mu, actor, pool.SwapExactOutMethod, pool.SwapExactOutParams{
		Pool:        addr,
		TokenIn:     idxIn,
		TokenOut:    idxOut,
		AmountOut:   s.AmountOut,
		MaxAmountIn: s.MaxAmountIn,
	})
	if err != nil {
		return nil, err
	}
	return &SwapResult{TypeID: consts.SwapExactOutID, AmountIn: amountIn, AmountOut: s.AmountOut}, nil
}

type SwapResult struct {
	TypeID    uint8  `json:"-"`
	AmountIn  uint64 `json:"amountIn"`
	AmountOut uint64 `json:"amountOut"`
}

func (r *SwapResult) GetTypeID() uint8 {
	return r.TypeID
}

// AddLiquidity deposits at most [MaxAmountsIn] for at least [MinLpOut]
// LP shares. [Tokens] must list the pool tokens in pool order.
type AddLiquidity struct {
	Vault        codec.Address   `json:"vault"`
	Tokens       []codec.Address `json:"tokens"`
	MaxAmountsIn []uint64        `json:"maxAmountsIn"`
	MinLpOut     uint64          `json:"minLpOut"`
}

func (*AddLiquidity) GetTypeID() uint8 {
	return consts.AddLiquidityID
}

func (a *AddLiquidity) StateKeys(actor codec.Address) state.Keys {
	return pool.StateKeys(a.Vault, a.Tokens, actor)
}

func (a *AddLiquidity) Marshal(p *codec.Packer) {
	p.PackAddress(a.Vault)
	p.PackAddresses(a.Tokens)
	p.PackUint64s(a.MaxAmountsIn)
	p.PackUint64(a.MinLpOut)
}

func UnmarshalAddLiquidity(p *codec.Packer) (chain.Action, error) {
	var a AddLiquidity
	p.UnpackAddress(true, &a.Vault)
	a.Tokens = p.UnpackAddresses(pool.MaxTokens)
	a.MaxAmountsIn = p.UnpackUint64s(pool.MaxTokens)
	a.MinLpOut = p.UnpackUint64(false)
	return &a, p.Err()
}

func (a *AddLiquidity) Execute(
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	addr, err := loadPoolTokens(ctx, mu, a.Vault, a.Tokens)
	if err != nil {
		return nil, err
	}
	result, err := invoke[pool.AddLiquidityResult](ctx, invoker, mu, actor, pool.AddLiquidityMethod, pool.AddLiquidityParams{
		Pool:         addr,
		MaxAmountsIn: a.MaxAmountsIn,
		MinLpOut:     a.MinLpOut,
	})
	if err != nil {
		return nil, err
	}
	return &AddLiquidityResult{LpOut: result.LpOut, AmountsIn: result.AmountsIn}, nil
}

type AddLiquidityResult struct {
	LpOut     uint64   `json:"lpOut"`
	AmountsIn []uint64 `json:"amountsIn"`
}

func (*AddLiquidityResult) GetTypeID() uint8 {
	return consts.AddLiquidityID
}

// RemoveLiquidity burns [LpAmountIn] LP shares for at least
// [MinAmountsOut]. [Tokens] must list the pool tokens in pool order.
type RemoveLiquidity struct {
	Vault         codec.Address   `json:"vault"`
	Tokens        []codec.Address `json:"tokens"`
	LpAmountIn    uint64          `json:"lpAmountIn"`
	MinAmountsOut []uint64        `json:"minAmountsOut"`
}

func (*RemoveLiquidity) GetTypeID() uint8 {
	return consts.RemoveLiquidityID
}

func (r *RemoveLiquidity) StateKeys(actor codec.Address) state.Keys {
	return pool.StateKeys(r.Vault, r.Tokens, actor)
}

func (r *RemoveLiquidity) Marshal(p *codec.Packer) {
	p.PackAddress(r.Vault)
	p.PackAddresses(r.Tokens)
	p.PackUint64(r.LpAmountIn)
	p.PackUint64s(r.MinAmountsOut)
}

func UnmarshalRemoveLiquidity(p *codec.Packer) (chain.Action, error) {
	var r RemoveLiquidity
	p.UnpackAddress(true, &r.Vault)
	r.Tokens = p.UnpackAddresses(pool.MaxTokens)
	r.LpAmountIn = p.UnpackUint64(false)
	r.MinAmountsOut = p.UnpackUint64s(pool.MaxTokens)
	return &r, p.Err()
}

func (r *RemoveLiquidity) Execute(
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	addr, err := loadPoolTokens(ctx, mu, r.Vault, r.Tokens)
	if err != nil {
		return nil, err
	}
	amountsOut, err := invoke[[]uint64](ctx, invoker, mu, actor, pool.RemoveLiquidityMethod, pool.RemoveLiquidityParams{
		Pool:          addr,
		LpAmountIn:    r.LpAmountIn,
		MinAmountsOut: r.MinAmountsOut,
	})
	if err != nil {
		return nil, err
	}
	return &RemoveLiquidityResult{AmountsOut: amountsOut}, nil
}

type RemoveLiquidityResult struct {
	AmountsOut []uint64 `json:"amountsOut"`
}

func (*RemoveLiquidityResult) GetTypeID() uint8 {
	return consts.RemoveLiquidityID
}

// JoinPool deposits [AmountsIn] in any proportion for at least [MinLpOut]
// LP shares. Zero amounts are allowed, so a single token can join.
// [Tokens] must list the pool tokens in pool order.
type JoinPool struct {
	Vault     codec.Address   `json:"vault"`
	Tokens    []codec.Address `json:"tokens"`
	AmountsIn []uint64        `json:"amountsIn"`
	MinLpOut  uint64          `json:"minLpOut"`
}

func (*JoinPool) GetTypeID() uint8 {
	return consts.JoinPoolID
}

func (j *JoinPool) StateKeys(actor codec.Address) state.Keys {
	return pool.StateKeys(j.Vault, j.Tokens, actor)
}

func (j *JoinPool) Marshal(p *codec.Packer) {
	p.PackAddress(j.Vault)
	p.PackAddresses(j.Tokens)
	p.PackUint64s(j.AmountsIn)
	p.PackUint64(j.MinLpOut)
}

func UnmarshalJoinPool(p *codec.Packer) (chain.Action, error) {
	var j JoinPool
	p.UnpackAddress(true, &j.Vault)
	j.Tokens = p.UnpackAddresses(pool.MaxTokens)
	j.AmountsIn = p.UnpackUint64s(pool.MaxTokens)
	j.MinLpOut = p.UnpackUint64(false)
	return &j, p.Err()
}

func (j *JoinPool) Execute(
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	addr, err := loadPoolTokens(ctx, mu, j.Vault, j.Tokens)
	if err != nil {
		return nil, err
	}
	lpOut, err := invoke[uint64](ctx, invoker, mu, actor, pool.JoinPoolMethod, pool.JoinPoolParams{
		Pool:      addr,
		AmountsIn: j.AmountsIn,
		MinLpOut:  j.MinLpOut,
	})
	if err != nil {
		return nil, err
	}
	return &JoinPoolResult{LpOut: lpOut}, nil
}

type JoinPoolResult struct {
	LpOut uint64 `json:"lpOut"`
}

func (*JoinPoolResult) GetTypeID() uint8 {
	return consts.JoinPoolID
}

// ExitPool burns [LpAmountIn] LP shares for at least [MinAmountOut] of
// [Token] alone.
type ExitPool struct {
	Vault        codec.Address `json:"vault"`
	Token        codec.Address `json:"token"`
	LpAmountIn   uint64        `json:"lpAmountIn"`
	MinAmountOut uint64        `json:"minAmountOut"`
}

func (*ExitPool) GetTypeID() uint8 {
	return consts.ExitPoolID
}

func (x *ExitPool) StateKeys(actor codec.Address) state.Keys {
	return pool.StateKeys(x.Vault, []codec.Address{x.Token}, actor)
}

func (x *ExitPool) Marshal(p *codec.Packer) {
	p.PackAddress(x.Vault)
	p.PackAddress(x.Token)
	p.PackUint64(x.LpAmountIn)
	p.PackUint64(x.MinAmountOut)
}

func UnmarshalExitPool(p *codec.Packer) (chain.Action, error) {
	var x ExitPool
	p.UnpackAddress(true, &x.Vault)
	p.UnpackAddress(true, &x.Token)
	x.LpAmountIn = p.UnpackUint64(true)
	x.MinAmountOut = p.UnpackUint64(false)
	return &x, p.Err()
}

func (x *ExitPool) Execute(
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	addr, p, err := loadPool(ctx, mu, x.Vault)
	if err != nil {
		return nil, err
	}
	idxOut, err := tokenIndex(p, x.Token)
	if err != nil {
		return nil, err
	}
	amountOut, err := invoke[uint64](ctx, invoker, mu, actor, pool.ExitPoolMethod, pool.ExitPoolParams{
		Pool:         addr,
		TokenOut:     idxOut,
		LpAmountIn:   x.LpAmountIn,
		MinAmountOut: x.MinAmountOut,
	})
	if err != nil {
		return nil, err
	}
	return &ExitPoolResult{AmountOut: amountOut}, nil
}

type ExitPoolResult struct {
	AmountOut uint64 `json:"amountOut"`
}

func (*ExitPoolResult) GetTypeID() uint8 {
	return consts.ExitPoolID
}

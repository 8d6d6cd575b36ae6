// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"context"

	"github.com/ava-labs/weightedvm/bridge"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"
)

// Methods
const (
	InitializePoolMethod  = "initialize_pool"
	SwapMethod            = "swap"
	SwapExactOutMethod    = "swap_exact_out"
	AddLiquidityMethod    = "add_liquidity"
	RemoveLiquidityMethod = "remove_liquidity"
	JoinPoolMethod        = "join_pool"
	ExitPoolMethod        = "exit_pool"
)

type InitializePoolParams struct {
	Vault      codec.Address
	Tokens     []codec.Address
	Weights    []uint64
	SwapFeeBps uint16
}

type SwapParams struct {
	Pool         codec.Address
	TokenIn      uint8
	TokenOut     uint8
	AmountIn     uint64
	MinAmountOut uint64
}

type SwapExactOutParams struct {
	Pool        codec.Address
	TokenIn     uint8
	TokenOut    uint8
	AmountOut   uint64
	MaxAmountIn uint64
}

type AddLiquidityParams struct {
	Pool         codec.Address
	MaxAmountsIn []uint64
	MinLpOut     uint64
}

type AddLiquidityResult struct {
	LpOut     uint64
	AmountsIn []uint64
}

type RemoveLiquidityParams struct {
	Pool          codec.Address
	LpAmountIn    uint64
	MinAmountsOut []uint64
}

type JoinPoolParams struct {
	Pool      codec.Address
	AmountsIn []uint64
	MinLpOut  uint64
}

type ExitPoolParams struct {
	Pool         codec.Address
	TokenOut     uint8
	LpAmountIn   uint64
	MinAmountOut uint64
}

// Program returns the bridge handler of the pool.
func (m *Manager) Program() bridge.Handler {
	return bridge.Router{
		InitializePoolMethod: func(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
			var p InitializePoolParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			addr, err := m.InitializePool(ctx, mu, call, p.Vault, p.Tokens, p.Weights, p.SwapFeeBps)
			if err != nil {
				return nil, err
			}
			return bridge.Encode(addr)
		},
		SwapMethod: func(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
			var p SwapParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			out, err := m.Swap(ctx, mu, call, p.Pool, p.TokenIn, p.TokenOut, p.AmountIn, p.MinAmountOut)
			if err != nil {
				return nil, err
			}
			return bridge.Encode(out)
		},
		SwapExactOutMethod: func(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
			var p SwapExactOutParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			in, err := m.SwapExactOut(ctx, mu, call, p.Pool, p.TokenIn, p.TokenOut, p.AmountOut, p.MaxAmountIn)
			if err != nil {
				return nil, err
			}
			return bridge.Encode(in)
		},
		AddLiquidityMethod: func(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
			var p AddLiquidityParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			lpOut, amountsIn, err := m.AddLiquidity(ctx, mu, call, p.Pool, p.MaxAmountsIn, p.MinLpOut)
			if err != nil {
				return nil, err
			}
			return bridge.Encode(AddLiquidityResult{LpOut: lpOut, AmountsIn: amountsIn})
		},
		RemoveLiquidityMethod: func(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
			var p RemoveLiquidityParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			amountsOut, err := m.RemoveLiquidity(ctx, mu, call, p.Pool, p.LpAmountIn, p.MinAmountsOut)
			if err != nil {
				return nil, err
			}
			return bridge.Encode(amountsOut)
		},
		JoinPoolMethod: func(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
			var p JoinPoolParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			lpOut, err := m.JoinPool(ctx, mu, call, p.Pool, p.AmountsIn, p.MinLpOut)
			if err != nil {
				return nil, err
			}
			return bridge.Encode(lpOut)
		},
		ExitPoolMethod: func(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
			var p ExitPoolParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			out, err := m.ExitPool(ctx, mu, call, p.Pool, p.TokenOut, p.LpAmountIn, p.MinAmountOut)
			if err != nil {
				return nil, err
			}
			return bridge.Encode(out)
		},
	}
}

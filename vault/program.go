// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"context"

	"github.com/ava-labs/weightedvm/bridge"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"
)

// Methods
const (
	InitializeMethod   = "initialize"
	DepositMethod      = "deposit"
	WithdrawMethod     = "withdraw"
	RegisterPoolMethod = "register_pool"
)

type InitializeParams struct {
	Owner codec.Address
}

type DepositParams struct {
	Vault  codec.Address
	Token  codec.Address
	From   codec.Address
	Amount uint64
}

type WithdrawParams struct {
	Vault       codec.Address
	Token       codec.Address
	To          codec.Address
	Amount      uint64
	RequestedBy codec.Address
}

type RegisterPoolParams struct {
	Vault codec.Address
}

// Program returns the bridge handler of the vault.
func (m *Manager) Program() bridge.Handler {
	return bridge.Router{
		InitializeMethod: func(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
			var p InitializeParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			addr, err := m.Initialize(ctx, mu, call, p.Owner)
			if err != nil {
				return nil, err
			}
			return bridge.Encode(addr)
		},
		DepositMethod: func(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
			var p DepositParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			reserve, err := m.Deposit(ctx, mu, call, p.Vault, p.Token, p.From, p.Amount)
			if err != nil {
				return nil, err
			}
			return bridge.Encode(reserve)
		},
		WithdrawMethod: func(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
			var p WithdrawParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			reserve, err := m.Withdraw(ctx, mu, call, p.Vault, p.Token, p.To, p.Amount, p.RequestedBy)
			if err != nil {
				return nil, err
			}
			return bridge.Encode(reserve)
		},
		RegisterPoolMethod: func(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
			var p RegisterPoolParams
			if err := call.Decode(&p); err != nil {
				return nil, err
			}
			count, err := m.RegisterPool(ctx, mu, call, p.Vault)
			if err != nil {
				return nil, err
			}
			return bridge.Encode(count)
		},
	}
}

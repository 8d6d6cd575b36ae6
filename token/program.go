// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"context"
	"fmt"

	"github.com/ava-labs/weightedvm/bridge"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"
)

// Methods
const (
	CreateMethod   = "create"
	MintMethod     = "mint"
	BurnMethod     = "burn"
	TransferMethod = "transfer"
)

type CreateParams struct {
	Token         codec.Address
	Symbol        string
	Decimals      uint8
	MintAuthority codec.Address
}

type MintParams struct {
	Token  codec.Address
	To     codec.Address
	Amount uint64
}

type BurnParams struct {
	Token  codec.Address
	From   codec.Address
	Amount uint64
}

type TransferParams struct {
	Token  codec.Address
	From   codec.Address
	To     codec.Address
	Amount uint64
}

// Program exposes the ledger through the bridge. Every method checks that
// the party giving up value signed the call.
func Program() bridge.Handler {
	return bridge.Router{
		CreateMethod:   create,
		MintMethod:     mint,
		BurnMethod:     burn,
		TransferMethod: transfer,
	}
}

func create(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
	var p CreateParams
	if err := call.Decode(&p); err != nil {
		return nil, err
	}
	// The account being created signs for itself.
	if !call.IsSigner(p.Token) {
		return nil, fmt.Errorf("%w: %s did not sign", ErrUnauthorized, p.Token)
	}
	return nil, Create(ctx, mu, p.Token, p.Symbol, p.Decimals, p.MintAuthority)
}

func mint(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
	var p MintParams
	if err := call.Decode(&p); err != nil {
		return nil, err
	}
	info, err := getInfo(ctx, mu, p.Token)
	if err != nil {
		return nil, err
	}
	if !call.IsSigner(info.MintAuthority) {
		return nil, fmt.Errorf("%w: mint authority %s did not sign", ErrUnauthorized, info.MintAuthority)
	}
	return nil, Mint(ctx, mu, p.Token, p.To, p.Amount)
}

func burn(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
	var p BurnParams
	if err := call.Decode(&p); err != nil {
		return nil, err
	}
	if !call.IsSigner(p.From) {
		return nil, fmt.Errorf("%w: %s did not sign", ErrUnauthorized, p.From)
	}
	return nil, Burn(ctx, mu, p.Token, p.From, p.Amount)
}

func transfer(ctx context.Context, mu state.Reversible, call *bridge.Call) ([]byte, error) {
	var p TransferParams
	if err := call.Decode(&p); err != nil {
		return nil, err
	}
	if !call.IsSigner(p.From) {
		return nil, fmt.Errorf("%w: %s did not sign", ErrUnauthorized, p.From)
	}
	if p.Amount == 0 {
		return nil, ErrZeroAmount
	}
	return nil, Transfer(ctx, mu, p.Token, p.From, p.To, p.Amount)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"context"
	"fmt"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

const MaxDecimals = 18

// Create registers [token]. Authorization is left to the caller.
func Create(
	ctx context.Context,
	mu state.Mutable,
	token codec.Address,
	symbol string,
	decimals uint8,
	mintAuthority codec.Address,
) error {
	if len(symbol) == 0 || len(symbol) > storage.MaxSymbolSize {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	if decimals > MaxDecimals {
		return fmt.Errorf("%w: %d", ErrInvalidDecimals, decimals)
	}
	_, exists, err := storage.GetToken(ctx, mu, token)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrTokenExists, token)
	}
	return storage.SetToken(ctx, mu, token, &storage.TokenInfo{
		Symbol:        symbol,
		Decimals:      decimals,
		MintAuthority: mintAuthority,
	})
}

func getInfo(ctx context.Context, im state.Immutable, token codec.Address) (*storage.TokenInfo, error) {
	info, exists, err := storage.GetToken(ctx, im, token)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, token)
	}
	return info, nil
}

// Mint credits [to] with [amount] new units of [token].
func Mint(ctx context.Context, mu state.Mutable, token codec.Address, to codec.Address, amount uint64) error {
	info, err := getInfo(ctx, mu, token)
	if err != nil {
		return err
	}
	balance, err := storage.GetBalance(ctx, mu, token, to)
	if err != nil {
		return err
	}
	newSupply, err := smath.Add64(info.Supply, amount)
	if err != nil {
		return fmt.Errorf("%w: supply of %s", ErrOverflow, token)
	}
	newBalance, err := smath.Add64(balance, amount)
	if err != nil {
		return fmt.Errorf("%w: balance of %s", ErrOverflow, to)
	}
	info.Supply = newSupply
	if err := storage.SetToken(ctx, mu, token, info); err != nil {
		return err
	}
	return storage.SetBalance(ctx, mu, token, to, newBalance)
}

// Burn destroys [amount] units of [token] held by [from].
func Burn(ctx context.Context, mu state.Mutable, token codec.Address, from codec.Address, amount uint64) error {
	info, err := getInfo(ctx, mu, token)
	if err != nil {
		return err
	}
	balance, err := storage.GetBalance(ctx, mu, token, from)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: %s holds %d, burning %d", ErrInsufficientBalance, from, balance, amount)
	}
	// Supply always covers any single balance.
	info.Supply -= amount
	if err := storage.SetToken(ctx, mu, token, info); err != nil {
		return err
	}
	return storage.SetBalance(ctx, mu, token, from, balance-amount)
}

// Transfer moves [amount] of [token] from [from] to [to].
func Transfer(
	ctx context.Context,
	mu state.Mutable,
	token codec.Address,
	from codec.Address,
	to codec.Address,
	amount uint64,
) error {
	if _, err := getInfo(ctx, mu, token); err != nil {
		return err
	}
	fromBalance, err := storage.GetBalance(ctx, mu, token, from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return fmt.Errorf("%w: %s holds %d, sending %d", ErrInsufficientBalance, from, fromBalance, amount)
	}
	if from == to {
		return nil
	}
	toBalance, err := storage.GetBalance(ctx, mu, token, to)
	if err != nil {
		return err
	}
	newToBalance, err := smath.Add64(toBalance, amount)
	if err != nil {
		return fmt.Errorf("%w: balance of %s", ErrOverflow, to)
	}
	if err := storage.SetBalance(ctx, mu, token, from, fromBalance-amount); err != nil {
		return err
	}
	return storage.SetBalance(ctx, mu, token, to, newToBalance)
}

func BalanceOf(ctx context.Context, im state.Immutable, token codec.Address, owner codec.Address) (uint64, error) {
	return storage.GetBalance(ctx, im, token, owner)
}

func Info(ctx context.Context, im state.Immutable, token codec.Address) (*storage.TokenInfo, error) {
	return getInfo(ctx, im, token)
}

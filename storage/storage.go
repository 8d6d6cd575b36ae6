// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage lays out vault, pool and token records in keyed state.
// Records are borsh encoded and amounts are big endian uint64 values.
package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/near/borsh-go"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/state"
)

var ErrCorruptRecord = errors.New("corrupt record")

func getRecord[T any](ctx context.Context, im state.Immutable, key []byte) (*T, bool, error) {
	v, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rec T
	if err := borsh.Deserialize(&rec, v); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return &rec, true, nil
}

func putRecord[T any](ctx context.Context, mu state.Mutable, key []byte, rec *T) error {
	v, err := borsh.Serialize(*rec)
	if err != nil {
		return err
	}
	return mu.Insert(ctx, key, v)
}

func getAmount(ctx context.Context, im state.Immutable, key []byte) (uint64, error) {
	v, err := im.GetValue(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(v) != consts.Uint64Len {
		return 0, ErrCorruptRecord
	}
	return binary.BigEndian.Uint64(v), nil
}

// putAmount removes the key once the amount reaches zero.
func putAmount(ctx context.Context, mu state.Mutable, key []byte, amount uint64) error {
	if amount == 0 {
		return mu.Remove(ctx, key)
	}
	v := make([]byte, consts.Uint64Len)
	binary.BigEndian.PutUint64(v, amount)
	return mu.Insert(ctx, key, v)
}

func GetVault(ctx context.Context, im state.Immutable, vault codec.Address) (*VaultState, bool, error) {
	return getRecord[VaultState](ctx, im, VaultKey(vault))
}

func SetVault(ctx context.Context, mu state.Mutable, vault codec.Address, v *VaultState) error {
	return putRecord(ctx, mu, VaultKey(vault), v)
}

func GetReserve(ctx context.Context, im state.Immutable, vault codec.Address, token codec.Address) (uint64, error) {
	return getAmount(ctx, im, ReserveKey(vault, token))
}

func SetReserve(ctx context.Context, mu state.Mutable, vault codec.Address, token codec.Address, amount uint64) error {
	return putAmount(ctx, mu, ReserveKey(vault, token), amount)
}

// GetReserves reads the reserve of every token in order.
func GetReserves(ctx context.Context, im state.Immutable, vault codec.Address, tokens []codec.Address) ([]uint64, error) {
	reserves := make([]uint64, len(tokens))
	for i, token := range tokens {
		r, err := GetReserve(ctx, im, vault, token)
		if err != nil {
			return nil, err
		}
		reserves[i] = r
	}
	return reserves, nil
}

func GetPool(ctx context.Context, im state.Immutable, pool codec.Address) (*PoolState, bool, error) {
	return getRecord[PoolState](ctx, im, PoolKey(pool))
}

func SetPool(ctx context.Context, mu state.Mutable, pool codec.Address, p *PoolState) error {
	return putRecord(ctx, mu, PoolKey(pool), p)
}

func GetToken(ctx context.Context, im state.Immutable, token codec.Address) (*TokenInfo, bool, error) {
	return getRecord[TokenInfo](ctx, im, TokenKey(token))
}

func SetToken(ctx context.Context, mu state.Mutable, token codec.Address, info *TokenInfo) error {
	return putRecord(ctx, mu, TokenKey(token), info)
}

func GetBalance(ctx context.Context, im state.Immutable, token codec.Address, owner codec.Address) (uint64, error) {
	return getAmount(ctx, im, BalanceKey(token, owner))
}

func SetBalance(ctx context.Context, mu state.Mutable, token codec.Address, owner codec.Address, amount uint64) error {
	return putAmount(ctx, mu, BalanceKey(token, owner), amount)
}

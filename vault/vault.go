// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vault custodies pool reserves. Tokens deposited into a vault are
// held by its derived address and only leave through [Withdraw], which the
// owner or the vault's pool authority must sign.
package vault

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

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// Address returns the vault derived for [owner].
func Address(owner codec.Address) (codec.Address, uint8, error) {
	return authority.Derive(authority.VaultProgram, authority.VaultStateSeed, owner)
}

// PoolAuthority returns the pool address allowed to withdraw from [vault].
func PoolAuthority(vault codec.Address) (codec.Address, uint8, error) {
	return authority.Derive(authority.PoolProgram, authority.PoolStateSeed, vault)
}

type Manager struct {
	log logging.Logger
}

func New(log logging.Logger) *Manager {
	return &Manager{log: log}
}

func get(ctx context.Context, im state.Immutable, vault codec.Address) (*storage.VaultState, error) {
	v, exists, err := storage.GetVault(ctx, im, vault)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotInitialized, vault)
	}
	return v, nil
}

// Get returns the vault record.
func Get(ctx context.Context, im state.Immutable, vault codec.Address) (*storage.VaultState, error) {
	return get(ctx, im, vault)
}

// Reserves returns the custodied amount of each token.
func Reserves(ctx context.Context, im state.Immutable, vault codec.Address, tokens []codec.Address) ([]uint64, error) {
	if _, err := get(ctx, im, vault); err != nil {
		return nil, err
	}
	return storage.GetReserves(ctx, im, vault, tokens)
}

// Initialize creates the vault of [owner]. The owner must sign.
func (m *Manager) Initialize(ctx context.Context, mu state.Mutable, call *bridge.Call, owner codec.Address) (codec.Address, error) {
	if !call.IsSigner(owner) {
		return codec.EmptyAddress, fmt.Errorf("%w: owner %s did not sign", ErrUnauthorized, owner)
	}
	addr, bump, err := Address(owner)
	if err != nil {
		return codec.EmptyAddress, err
	}
	_, exists, err := storage.GetVault(ctx, mu, addr)
	if err != nil {
		return codec.EmptyAddress, err
	}
	if exists {
		return codec.EmptyAddress, fmt.Errorf("%w: %s", ErrAlreadyInitialized, addr)
	}
	if err := storage.SetVault(ctx, mu, addr, &storage.VaultState{
		Owner: owner,
		Bump:  bump,
	}); err != nil {
		return codec.EmptyAddress, err
	}
	m.log.Debug("vault initialized",
		zap.Stringer("vault", addr),
		zap.Stringer("owner", owner),
	)
	return addr, nil
}

// Deposit moves [amount] of [tok] from [from] into the vault and credits its
// reserve. Anyone may deposit; [from] must sign.
func (m *Manager) Deposit(
	ctx context.Context,
	mu state.Reversible,
	call *bridge.Call,
	vault codec.Address,
	tok codec.Address,
	from codec.Address,
	amount uint64,
) (uint64, error) {
	if amount == 0 {
		return 0, ErrZeroAmount
	}
	if from == vault {
		return 0, ErrSelfTransfer
	}
	if _, err := get(ctx, mu, vault); err != nil {
		return 0, err
	}
	reserve, err := storage.GetReserve(ctx, mu, vault, tok)
	if err != nil {
		return 0, err
	}
	newReserve, err := smath.Add64(reserve, amount)
	if err != nil {
		return 0, fmt.Errorf("%w: reserve of %s", ErrArithmeticOverflow, tok)
	}
	msg, err := bridge.NewMessage(authority.TokenProgram, token.TransferMethod, token.TransferParams{
		Token:  tok,
		From:   from,
		To:     vault,
		Amount: amount,
	})
	if err != nil {
		return 0, err
	}
	if _, err := call.Invoke(ctx, mu, msg); err != nil {
		return 0, err
	}
	if err := storage.SetReserve(ctx, mu, vault, tok, newReserve); err != nil {
		return 0, err
	}
	return newReserve, nil
}

// Withdraw releases [amount] of [tok] to [to]. [requestedBy] must sign and
// be either the vault owner or the pool authority derived from the vault.
func (m *Manager) Withdraw(
	ctx context.Context,
	mu state.Reversible,
	call *bridge.Call,
	vault codec.Address,
	tok codec.Address,
	to codec.Address,
	amount uint64,
	requestedBy codec.Address,
) (uint64, error) {
	if amount == 0 {
		return 0, ErrZeroAmount
	}
	if to == vault {
		return 0, ErrSelfTransfer
	}
	v, err := get(ctx, mu, vault)
	if err != nil {
		return 0, err
	}
	if err := authorize(call, vault, v, requestedBy); err != nil {
		m.log.Debug("rejected withdrawal",
			zap.Stringer("vault", vault),
			zap.Stringer("requestedBy", requestedBy),
		)
		return 0, err
	}
	reserve, err := storage.GetReserve(ctx, mu, vault, tok)
	if err != nil {
		return 0, err
	}
	if amount > reserve {
		return 0, fmt.Errorf("%w: requested %d of %d", ErrInsufficientReserves, amount, reserve)
	}
	if err := storage.SetReserve(ctx, mu, vault, tok, reserve-amount); err != nil {
		return 0, err
	}

	signer, err := authority.NewSigner(authority.VaultProgram, authority.VaultStateSeed, v.Owner, v.Bump)
	if err != nil {
		return 0, err
	}
	msg, err := bridge.NewMessage(authority.TokenProgram, token.TransferMethod, token.TransferParams{
		Token:  tok,
		From:   vault,
		To:     to,
		Amount: amount,
	})
	if err != nil {
		return 0, err
	}
	if _, err := call.Invoke(ctx, mu, msg, signer); err != nil {
		return 0, err
	}
	return reserve - amount, nil
}

func authorize(call *bridge.Call, vault codec.Address, v *storage.VaultState, requestedBy codec.Address) error {
	if !call.IsSigner(requestedBy) {
		return fmt.Errorf("%w: %s did not sign", ErrUnauthorized, requestedBy)
	}
	if requestedBy == v.Owner {
		return nil
	}
	pool, _, err := PoolAuthority(vault)
	if err != nil {
		return err
	}
	if requestedBy != pool {
		return fmt.Errorf("%w: %s is not an authority of %s", ErrUnauthorized, requestedBy, vault)
	}
	return nil
}

// RegisterPool records a pool initialized over [vault]. Only the pool
// authority of the vault may register.
func (m *Manager) RegisterPool(ctx context.Context, mu state.Mutable, call *bridge.Call, vault codec.Address) (uint64, error) {
	v, err := get(ctx, mu, vault)
	if err != nil {
		return 0, err
	}
	pool, _, err := PoolAuthority(vault)
	if err != nil {
		return 0, err
	}
	if !call.IsSigner(pool) {
		return 0, fmt.Errorf("%w: pool %s did not sign", ErrUnauthorized, pool)
	}
	count, err := smath.Add64(v.PoolCount, 1)
	if err != nil {
		return 0, ErrArithmeticOverflow
	}
	v.PoolCount = count
	if err := storage.SetVault(ctx, mu, vault, v); err != nil {
		return 0, err
	}
	return count, nil
}

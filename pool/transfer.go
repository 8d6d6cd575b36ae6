// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"context"
	"fmt"

	"github.com/ava-labs/weightedvm/authority"
	"github.com/ava-labs/weightedvm/bridge"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/vault"
)

type Direction uint8

const (
	// IntoVault deposits from the party into the vault.
	IntoVault Direction = iota
	// OutOfVault withdraws from the vault to the party.
	OutOfVault
)

func (d Direction) String() string {
	switch d {
	case IntoVault:
		return "in"
	case OutOfVault:
		return "out"
	default:
		return "unknown"
	}
}

// VaultTransfer moves reserves between a vault and a party.
type VaultTransfer struct {
	Vault     codec.Address
	Token     codec.Address
	Amount    uint64
	Direction Direction
	// Party pays for deposits and receives withdrawals.
	Party codec.Address
	// Authority signs withdrawals. It must be the pool authority of the
	// vault or the vault owner.
	Authority *authority.Signer
}

// InvokeVaultTransfer runs [t] through the vault program as part of [call].
// A failed transfer is rolled back by the bridge and fails the enclosing
// call.
func InvokeVaultTransfer(ctx context.Context, mu state.Reversible, call *bridge.Call, t VaultTransfer) error {
	var (
		msg     bridge.Message
		signers []authority.Signer
		err     error
	)
	switch t.Direction {
	case IntoVault:
		msg, err = bridge.NewMessage(authority.VaultProgram, vault.DepositMethod, vault.DepositParams{
			Vault:  t.Vault,
			Token:  t.Token,
			From:   t.Party,
			Amount: t.Amount,
		})
	case OutOfVault:
		if t.Authority == nil {
			return fmt.Errorf("%w: withdrawal without authority", ErrUnauthorized)
		}
		msg, err = bridge.NewMessage(authority.VaultProgram, vault.WithdrawMethod, vault.WithdrawParams{
			Vault:       t.Vault,
			Token:       t.Token,
			To:          t.Party,
			Amount:      t.Amount,
			RequestedBy: t.Authority.Address(),
		})
		signers = append(signers, *t.Authority)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidDirection, t.Direction)
	}
	if err != nil {
		return err
	}
	_, err = call.Invoke(ctx, mu, msg, signers...)
	return err
}

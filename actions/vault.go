// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/weightedvm/authority"
	"github.com/ava-labs/weightedvm/bridge"
	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/storage"
	"github.com/ava-labs/weightedvm/vault"
)

var (
	_ chain.Action = (*InitializeVault)(nil)
	_ chain.Action = (*Deposit)(nil)
	_ chain.Action = (*Withdraw)(nil)
)

// InitializeVault creates the vault owned by the actor.
type InitializeVault struct{}

func (*InitializeVault) GetTypeID() uint8 {
	return consts.InitializeVaultID
}

func (*InitializeVault) StateKeys(actor codec.Address) state.Keys {
	v := authority.MustDerive(authority.VaultProgram, authority.VaultStateSeed, actor)
	return state.Keys{
		string(storage.VaultKey(v)): state.All,
	}
}

func (*InitializeVault) Marshal(*codec.Packer) {}

func UnmarshalInitializeVault(*codec.Packer) (chain.Action, error) {
	return &InitializeVault{}, nil
}

func (*InitializeVault) Execute(
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	msg, err := bridge.NewMessage(authority.VaultProgram, vault.InitializeMethod, vault.InitializeParams{Owner: actor})
	if err != nil {
		return nil, err
	}
	out, err := invoker.Invoke(ctx, mu, actor, msg)
	if err != nil {
		return nil, err
	}
	addr, err := bridge.Decode[codec.Address](out)
	if err != nil {
		return nil, err
	}
	return &InitializeVaultResult{Vault: addr}, nil
}

type InitializeVaultResult struct {
	Vault codec.Address `json:"vault"`
}

func (*InitializeVaultResult) GetTypeID() uint8 {
	return consts.InitializeVaultID
}

// Deposit moves tokens of the actor into a vault.
type Deposit struct {
	Vault  codec.Address `json:"vault"`
	Token  codec.Address `json:"token"`
	Amount uint64        `json:"amount"`
}

func (*Deposit) GetTypeID() uint8 {
	return consts.DepositID
}

func (d *Deposit) StateKeys(actor codec.Address) state.Keys {
	return state.Keys{
		string(storage.VaultKey(d.Vault)):            state.Read,
		string(storage.ReserveKey(d.Vault, d.Token)): state.All,
		string(storage.TokenKey(d.Token)):            state.Read,
		string(storage.BalanceKey(d.Token, actor)):   state.Read | state.Write,
		string(storage.BalanceKey(d.Token, d.Vault)): state.All,
	}
}

func (d *Deposit) Marshal(p *codec.Packer) {
	p.PackAddress(d.Vault)
	p.PackAddress(d.Token)
	p.PackUint64(d.Amount)
}

func UnmarshalDeposit(p *codec.Packer) (chain.Action, error) {
	var d Deposit
	p.UnpackAddress(true, &d.Vault)
	p.UnpackAddress(true, &d.Token)
	d.Amount = p.UnpackUint64(true)
	return &d, p.Err()
}

func (d *Deposit) Execute(
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	msg, err := bridge.NewMessage(authority.VaultProgram, vault.DepositMethod, vault.DepositParams{
		Vault:  d.Vault,
		Token:  d.Token,
		From:   actor,
		Amount: d.Amount,
	})
	if err != nil {
		return nil, err
	}
	out, err := invoker.Invoke(ctx, mu, actor, msg)
	if err != nil {
		return nil, err
	}
	reserve, err := bridge.Decode[uint64](out)
	if err != nil {
		return nil, err
	}
	return &ReserveResult{TypeID: consts.DepositID, Reserve: reserve}, nil
}

// Withdraw releases tokens of a vault to [To]. The actor must be the vault
// owner.
type Withdraw struct {
	Vault  codec.Address `json:"vault"`
	Token  codec.Address `json:"token"`
	To     codec.Address `json:"to"`
	Amount uint64        `json:"amount"`
}

func (*Withdraw) GetTypeID() uint8 {
	return consts.WithdrawID
}

func (w *Withdraw) StateKeys(codec.Address) state.Keys {
	return state.Keys{
		string(storage.VaultKey(w.Vault)):            state.Read,
		string(storage.ReserveKey(w.Vault, w.Token)): state.Read | state.Write,
		string(storage.TokenKey(w.Token)):            state.Read,
		string(storage.BalanceKey(w.Token, w.Vault)): state.Read | state.Write,
		string(storage.BalanceKey(w.Token, w.To)):    state.All,
	}
}

func (w *Withdraw) Marshal(p *codec.Packer) {
	p.PackAddress(w.Vault)
	p.PackAddress(w.Token)
	p.PackAddress(w.To)
	p.PackUint64(w.Amount)
}

func UnmarshalWithdraw(p *codec.Packer) (chain.Action, error) {
	var w Withdraw
	p.UnpackAddress(true, &w.Vault)
	p.UnpackAddress(true, &w.Token)
	p.UnpackAddress(true, &w.To)
	w.Amount = p.UnpackUint64(true)
	return &w, p.Err()
}

func (w *Withdraw) Execute(
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	msg, err := bridge.NewMessage(authority.VaultProgram, vault.WithdrawMethod, vault.WithdrawParams{
		Vault:       w.Vault,
		Token:       w.Token,
		To:          w.To,
		Amount:      w.Amount,
		RequestedBy: actor,
	})
	if err != nil {
		return nil, err
	}
	out, err := invoker.Invoke(ctx, mu, actor, msg)
	if err != nil {
		return nil, err
	}
	reserve, err := bridge.Decode[uint64](out)
	if err != nil {
		return nil, err
	}
	return &ReserveResult{TypeID: consts.WithdrawID, Reserve: reserve}, nil
}

// ReserveResult is the vault reserve of the token after a deposit or
// withdrawal.
type ReserveResult struct {
	TypeID  uint8  `json:"-"`
	Reserve uint64 `json:"reserve"`
}

func (r *ReserveResult) GetTypeID() uint8 {
	return r.TypeID
}

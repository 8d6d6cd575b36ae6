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
	"github.com/ava-labs/weightedvm/token"
)

var _ chain.Action = (*Transfer)(nil)

type Transfer struct {
	Token codec.Address `json:"token"`

	// To is the recipient of [Value].
	To    codec.Address `json:"to"`
	Value uint64        `json:"value"`
}

func (*Transfer) GetTypeID() uint8 {
	return consts.TransferID
}

func (t *Transfer) StateKeys(actor codec.Address) state.Keys {
	return state.Keys{
		string(storage.TokenKey(t.Token)):          state.Read,
		string(storage.BalanceKey(t.Token, actor)): state.Read | state.Write,
		string(storage.BalanceKey(t.Token, t.To)):  state.All,
	}
}

func (t *Transfer) Marshal(p *codec.Packer) {
	p.PackAddress(t.Token)
	p.PackAddress(t.To)
	p.PackUint64(t.Value)
}

func UnmarshalTransfer(p *codec.Packer) (chain.Action, error) {
	var t Transfer
	p.UnpackAddress(true, &t.Token)
	p.UnpackAddress(false, &t.To)
	t.Value = p.UnpackUint64(true)
	return &t, p.Err()
}

func (t *Transfer) Execute(
	ctx context.Context,
	invoker chain.Invoker,
	mu state.Reversible,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	msg, err := bridge.NewMessage(authority.TokenProgram, token.TransferMethod, token.TransferParams{
		Token:  t.Token,
		From:   actor,
		To:     t.To,
		Amount: t.Value,
	})
	if err != nil {
		return nil, err
	}
	if _, err := invoker.Invoke(ctx, mu, actor, msg); err != nil {
		return nil, err
	}
	senderBalance, err := storage.GetBalance(ctx, mu, t.Token, actor)
	if err != nil {
		return nil, err
	}
	receiverBalance, err := storage.GetBalance(ctx, mu, t.Token, t.To)
	if err != nil {
		return nil, err
	}
	return &TransferResult{
		SenderBalance:   senderBalance,
		ReceiverBalance: receiverBalance,
	}, nil
}

type TransferResult struct {
	SenderBalance   uint64 `json:"senderBalance"`
	ReceiverBalance uint64 `json:"receiverBalance"`
}

func (*TransferResult) GetTypeID() uint8 {
	return consts.TransferID
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/keys"
	"github.com/ava-labs/weightedvm/state"
)

const (
	TestActionTypeID = 0
	TestOutputTypeID = 0

	maxTestKeys = 16
)

var (
	ErrTestAction = errors.New("test action error")

	_ chain.Action = (*TestAction)(nil)
	_ codec.Typed  = (*TestOutput)(nil)
)

// TestAction writes [Value] to every key in [WriteKeys] and fails after
// doing so when [ShouldErr] is set.
type TestAction struct {
	WriteKeys [][]byte `json:"writeKeys"`
	Value     []byte   `json:"value"`
	ShouldErr bool     `json:"shouldErr"`
}

// NewTestKey returns a key with room for a single chunk.
func NewTestKey(name string) []byte {
	return keys.EncodeChunks([]byte(name), 1)
}

func (*TestAction) GetTypeID() uint8 {
	return TestActionTypeID
}

func (t *TestAction) StateKeys(codec.Address) state.Keys {
	stateKeys := make(state.Keys, len(t.WriteKeys))
	for _, k := range t.WriteKeys {
		stateKeys.Add(string(k), state.All)
	}
	return stateKeys
}

func (t *TestAction) Marshal(p *codec.Packer) {
	p.PackByte(uint8(len(t.WriteKeys)))
	for _, k := range t.WriteKeys {
		p.PackBytes(k)
	}
	p.PackBytes(t.Value)
	p.PackBool(t.ShouldErr)
}

func UnmarshalTestAction(p *codec.Packer) (chain.Action, error) {
	var t TestAction
	n := int(p.UnpackByte())
	if n > maxTestKeys {
		return nil, codec.ErrTooManyItems
	}
	t.WriteKeys = make([][]byte, n)
	for i := range t.WriteKeys {
		p.UnpackBytes(-1, true, &t.WriteKeys[i])
	}
	p.UnpackBytes(-1, true, &t.Value)
	t.ShouldErr = p.UnpackBool()
	return &t, p.Err()
}

func (t *TestAction) Execute(
	ctx context.Context,
	_ chain.Invoker,
	mu state.Reversible,
	_ int64,
	_ codec.Address,
	_ ids.ID,
) (codec.Typed, error) {
	for _, k := range t.WriteKeys {
		if err := mu.Insert(ctx, k, t.Value); err != nil {
			return nil, err
		}
	}
	if t.ShouldErr {
		return nil, ErrTestAction
	}
	return &TestOutput{Written: len(t.WriteKeys)}, nil
}

type TestOutput struct {
	Written int `json:"written"`
}

func (*TestOutput) GetTypeID() uint8 {
	return TestOutputTypeID
}

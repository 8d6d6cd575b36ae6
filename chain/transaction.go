// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/keys"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/utils"
)

const MaxActions = 16

type Transaction struct {
	Base *Base `json:"base"`

	Actions []Action `json:"actions"`
	Auth    Auth     `json:"auth"`

	digest    []byte
	bytes     []byte
	id        ids.ID
	stateKeys state.Keys
}

func NewTx(base *Base, actions []Action) *Transaction {
	return &Transaction{
		Base:    base,
		Actions: actions,
	}
}

// Digest is the signed portion of the transaction.
func (t *Transaction) Digest() ([]byte, error) {
	if len(t.digest) > 0 {
		return t.digest, nil
	}
	p := codec.NewWriter(t.Base.Size(), consts.NetworkSizeLimit)
	t.Base.Marshal(p)
	p.PackByte(uint8(len(t.Actions)))
	for _, action := range t.Actions {
		p.PackByte(action.GetTypeID())
		action.Marshal(p)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	t.digest = p.Bytes()
	return t.digest, nil
}

// Sign authorizes the transaction with [factory] and returns it reloaded
// from its encoding.
func (t *Transaction) Sign(
	factory AuthFactory,
	actionRegistry ActionRegistry,
	authRegistry AuthRegistry,
) (*Transaction, error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	auth, err := factory.Sign(msg)
	if err != nil {
		return nil, err
	}
	t.Auth = auth

	p := codec.NewWriter(len(msg)+consts.ByteLen+auth.Size(), consts.NetworkSizeLimit)
	if err := t.Marshal(p); err != nil {
		return nil, err
	}
	return UnmarshalTx(codec.NewReader(p.Bytes(), consts.NetworkSizeLimit), actionRegistry, authRegistry)
}

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) ID() ids.ID { return t.id }

func (t *Transaction) Expiry() int64 { return t.Base.Timestamp }

// ActionID identifies the [i]th action of the transaction.
func (t *Transaction) ActionID(i int) ids.ID {
	return t.id.Prefix(uint64(i))
}

// StateKeys is the union of the keys declared by every action.
func (t *Transaction) StateKeys() (state.Keys, error) {
	if t.stateKeys != nil {
		return t.stateKeys, nil
	}
	stateKeys := make(state.Keys)
	for _, action := range t.Actions {
		for k, v := range action.StateKeys(t.Auth.Actor()) {
			if !keys.Valid(k) {
				return nil, ErrInvalidKeyValue
			}
			stateKeys.Add(k, v)
		}
	}
	t.stateKeys = stateKeys
	return stateKeys, nil
}

// Execute runs every action on [mu]. Either all actions apply or the view
// is restored to where it was before the first one.
func (t *Transaction) Execute(
	ctx context.Context,
	invoker Invoker,
	mu state.Reversible,
	timestamp int64,
) *Result {
	var (
		start  = mu.OpIndex()
		actor  = t.Auth.Actor()
		result = &Result{TxID: t.id, Actor: actor, Outputs: make([]codec.Typed, 0, len(t.Actions))}
	)
	for i, action := range t.Actions {
		output, err := action.Execute(ctx, invoker, mu, timestamp, actor, t.ActionID(i))
		if err != nil {
			mu.Rollback(ctx, start)
			result.Outputs = nil
			result.Error = fmt.Sprintf("action %d: %s", i, err)
			result.err = err
			return result
		}
		result.Outputs = append(result.Outputs, output)
	}
	result.Success = true
	return result
}

func (t *Transaction) Marshal(p *codec.Packer) error {
	if len(t.bytes) > 0 {
		p.PackFixedBytes(t.bytes)
		return p.Err()
	}
	digest, err := t.Digest()
	if err != nil {
		return err
	}
	p.PackFixedBytes(digest)
	p.PackByte(t.Auth.GetTypeID())
	t.Auth.Marshal(p)
	return p.Err()
}

func UnmarshalTx(
	p *codec.Packer,
	actionRegistry ActionRegistry,
	authRegistry AuthRegistry,
) (*Transaction, error) {
	start := p.Offset()
	base, err := UnmarshalBase(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal base", err)
	}
	numActions := int(p.UnpackByte())
	if err := p.Err(); err != nil {
		return nil, err
	}
	if numActions == 0 {
		return nil, ErrNoActions
	}
	if numActions > MaxActions {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyActions, numActions, MaxActions)
	}
	actions := make([]Action, 0, numActions)
	for i := 0; i < numActions; i++ {
		action, err := actionRegistry.Unmarshal(p)
		if err != nil {
			return nil, fmt.Errorf("%w: could not unmarshal action %d", err, i)
		}
		actions = append(actions, action)
	}
	digest := p.Offset()
	auth, err := authRegistry.Unmarshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal auth", err)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	tx := NewTx(base, actions)
	tx.Auth = auth
	raw := p.Bytes()
	tx.digest = raw[start:digest]
	tx.bytes = raw[start:p.Offset()]
	tx.id = utils.ToID(tx.bytes)
	return tx, nil
}

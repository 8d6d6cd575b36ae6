// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/weightedvm/bridge"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"
)

type (
	ActionRegistry = *codec.TypeParser[Action]
	AuthRegistry   = *codec.TypeParser[Auth]
)

// Invoker runs a program call on behalf of a transaction actor.
type Invoker interface {
	Invoke(ctx context.Context, mu state.Reversible, actor codec.Address, msg bridge.Message) ([]byte, error)
}

var _ Invoker = (*bridge.Bridge)(nil)

type Action interface {
	codec.Typed

	// StateKeys is the full set of keys [Execute] may touch when run by
	// [actor]. Touching any other key fails the transaction.
	StateKeys(actor codec.Address) state.Keys

	Marshal(p *codec.Packer)

	// Execute applies the action. A returned error fails the whole
	// transaction and reverts every action of it.
	Execute(
		ctx context.Context,
		invoker Invoker,
		mu state.Reversible,
		timestamp int64,
		actor codec.Address,
		actionID ids.ID,
	) (codec.Typed, error)
}

type Auth interface {
	codec.Typed

	// Actor is the account the transaction acts for.
	Actor() codec.Address

	Verify(ctx context.Context, msg []byte) error

	Marshal(p *codec.Packer)
	Size() int
}

type AuthFactory interface {
	Sign(msg []byte) (Auth, error)
	Address() codec.Address
}

// AuthBatchVerifier checks many signatures of one auth type together.
type AuthBatchVerifier interface {
	Add(digest []byte, auth Auth)
	Verify() error
}

// AuthEngine provides batch verification for an auth type.
type AuthEngine interface {
	GetBatchVerifier(count int) AuthBatchVerifier
}

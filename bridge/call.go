// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/near/borsh-go"

	"github.com/ava-labs/weightedvm/authority"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"
)

// Message addresses a method of a program. Params are borsh encoded.
type Message struct {
	Program codec.Address
	Method  string
	Params  []byte
}

func NewMessage(program codec.Address, method string, params any) (Message, error) {
	b, err := borsh.Serialize(params)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return Message{
		Program: program,
		Method:  method,
		Params:  b,
	}, nil
}

// Call is the context a program runs with.
type Call struct {
	// Program is the program being run.
	Program codec.Address
	// Caller is the transaction actor at the top level and the invoking
	// program otherwise.
	Caller codec.Address
	// Actor signed the transaction.
	Actor codec.Address

	Method string
	Params []byte
	Depth  int

	signers set.Set[codec.Address]
	bridge  *Bridge
}

// IsSigner reports whether [addr] authorized this call, either by signing
// the transaction or as an authority of a calling program.
func (c *Call) IsSigner(addr codec.Address) bool {
	return c.signers.Contains(addr)
}

// Decode unpacks the call params into [v].
func (c *Call) Decode(v any) error {
	if err := borsh.Deserialize(v, c.Params); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidParams, c.Method, err)
	}
	return nil
}

// Invoke calls another program on behalf of [c.Program]. Each signer must
// belong to the invoking program. The callee inherits the signers of [c].
func (c *Call) Invoke(
	ctx context.Context,
	mu state.Reversible,
	msg Message,
	signers ...authority.Signer,
) ([]byte, error) {
	if c.Depth+1 > MaxDepth {
		return nil, ErrCallDepth
	}
	next := set.NewSet[codec.Address](c.signers.Len() + len(signers))
	next.Union(c.signers)
	for _, s := range signers {
		if err := s.Verify(c.Program); err != nil {
			return nil, err
		}
		next.Add(s.Address())
	}
	return c.bridge.run(ctx, mu, &Call{
		Program: msg.Program,
		Caller:  c.Program,
		Actor:   c.Actor,
		Method:  msg.Method,
		Params:  msg.Params,
		Depth:   c.Depth + 1,
		signers: next,
		bridge:  c.bridge,
	})
}

// Decode unpacks a borsh encoded program output.
func Decode[T any](out []byte) (T, error) {
	var v T
	if err := borsh.Deserialize(&v, out); err != nil {
		return v, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return v, nil
}

// Encode packs a program output.
func Encode(v any) ([]byte, error) {
	return borsh.Serialize(v)
}

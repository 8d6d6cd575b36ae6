// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/token"

	oteltrace "go.opentelemetry.io/otel/trace"
)

// Allocation credits [Balance] of a token to [Address]. Addresses may be
// bech32 or 0x prefixed hex.
type Allocation struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

type Token struct {
	Address       string        `json:"address"`
	Symbol        string        `json:"symbol"`
	Decimals      uint8         `json:"decimals"`
	MintAuthority string        `json:"mintAuthority"`
	Allocations   []*Allocation `json:"allocations"`
}

type Genesis struct {
	ChainID ids.ID   `json:"chainId"`
	Tokens  []*Token `json:"tokens"`
}

func NewDefaultGenesis(chainID ids.ID, tokens []*Token) *Genesis {
	return &Genesis{
		ChainID: chainID,
		Tokens:  tokens,
	}
}

func Parse(b []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := json.Unmarshal(b, g); err != nil {
		return nil, err
	}
	return g, nil
}

func Load(path string) (*Genesis, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// InitializeState creates every token and mints its allocations.
func (g *Genesis) InitializeState(ctx context.Context, tracer trace.Tracer, mu state.Mutable) error {
	ctx, span := tracer.Start(ctx, "Genesis.InitializeState", oteltrace.WithAttributes(
		attribute.Int("tokens", len(g.Tokens)),
	))
	defer span.End()

	for _, t := range g.Tokens {
		addr, err := codec.ParseAddress(consts.HRP, t.Address)
		if err != nil {
			return fmt.Errorf("%w: token %s", err, t.Address)
		}
		mintAuthority := codec.EmptyAddress
		if len(t.MintAuthority) > 0 {
			mintAuthority, err = codec.ParseAddress(consts.HRP, t.MintAuthority)
			if err != nil {
				return fmt.Errorf("%w: mint authority %s", err, t.MintAuthority)
			}
		}
		if err := token.Create(ctx, mu, addr, t.Symbol, t.Decimals, mintAuthority); err != nil {
			return err
		}
		for _, alloc := range t.Allocations {
			owner, err := codec.ParseAddress(consts.HRP, alloc.Address)
			if err != nil {
				return fmt.Errorf("%w: %s", err, alloc.Address)
			}
			if err := token.Mint(ctx, mu, addr, owner, alloc.Balance); err != nil {
				return fmt.Errorf("%w: token=%s addr=%s bal=%d", err, t.Symbol, alloc.Address, alloc.Balance)
			}
		}
	}
	return nil
}

// Apply initializes [db], which must not hold any of the genesis tokens yet.
func (g *Genesis) Apply(ctx context.Context, tracer trace.Tracer, db state.Database) error {
	mu := state.NewSimpleMutable(db)
	if err := g.InitializeState(ctx, tracer, mu); err != nil {
		return err
	}
	return mu.Commit(ctx)
}

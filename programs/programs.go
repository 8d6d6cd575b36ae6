// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package programs wires the native token, vault and pool programs into a
// bridge.
package programs

import (
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/weightedvm/authority"
	"github.com/ava-labs/weightedvm/bridge"
	"github.com/ava-labs/weightedvm/pool"
	"github.com/ava-labs/weightedvm/token"
	"github.com/ava-labs/weightedvm/vault"
)

const (
	TokenName = "token"
	VaultName = "vault"
	PoolName  = "weighted_pool"
)

// New returns a bridge with every native program registered at its fixed
// program id.
func New(log logging.Logger, tracer trace.Tracer) (*bridge.Bridge, error) {
	b := bridge.New(log, tracer)
	errs := wrappers.Errs{}
	errs.Add(
		b.Register(authority.TokenProgram, TokenName, token.Program()),
		b.Register(authority.VaultProgram, VaultName, vault.New(log).Program()),
		b.Register(authority.PoolProgram, PoolName, pool.New(log).Program()),
	)
	if errs.Errored() {
		return nil, errs.Err
	}
	return b, nil
}

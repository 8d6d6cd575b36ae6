// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"errors"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
)

// NewTestRegistries returns registries holding [TestAction] and [TestAuth].
func NewTestRegistries() (chain.ActionRegistry, chain.AuthRegistry) {
	actionRegistry := codec.NewTypeParser[chain.Action]()
	authRegistry := codec.NewTypeParser[chain.Auth]()

	err := errors.Join(
		actionRegistry.Register(&TestAction{}, UnmarshalTestAction),
		authRegistry.Register(&TestAuth{}, UnmarshalTestAuth),
	)
	if err != nil {
		panic(err)
	}
	return actionRegistry, authRegistry
}

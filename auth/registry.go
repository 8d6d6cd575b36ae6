// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"errors"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
)

var ErrUnexpectedAuth = errors.New("unexpected auth type")

func NewRegistry() (chain.AuthRegistry, error) {
	r := codec.NewTypeParser[chain.Auth]()
	if err := r.Register(&ED25519{}, UnmarshalED25519); err != nil {
		return nil, err
	}
	return r, nil
}

func Engines() map[uint8]chain.AuthEngine {
	return map[uint8]chain.AuthEngine{
		consts.ED25519ID: &ED25519AuthEngine{},
	}
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chaintest

import (
	"context"
	"errors"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
)

const TestAuthTypeID = 0

var (
	ErrTestAuthVerify = errors.New("test auth verification error")

	_ chain.Auth        = (*TestAuth)(nil)
	_ chain.AuthFactory = (*TestAuthFactory)(nil)
	_ chain.AuthEngine  = (*TestAuthEngine)(nil)
)

type TestAuth struct {
	ActorAddress codec.Address `json:"actor"`
	ShouldErr    bool          `json:"shouldErr"`
}

func (*TestAuth) GetTypeID() uint8 {
	return TestAuthTypeID
}

func (t *TestAuth) Actor() codec.Address {
	return t.ActorAddress
}

func (t *TestAuth) Verify(context.Context, []byte) error {
	if t.ShouldErr {
		return ErrTestAuthVerify
	}
	return nil
}

func (t *TestAuth) Marshal(p *codec.Packer) {
	p.PackAddress(t.ActorAddress)
	p.PackBool(t.ShouldErr)
}

func (*TestAuth) Size() int {
	return codec.AddressLen + consts.BoolLen
}

func UnmarshalTestAuth(p *codec.Packer) (chain.Auth, error) {
	var t TestAuth
	p.UnpackAddress(true, &t.ActorAddress)
	t.ShouldErr = p.UnpackBool()
	return &t, p.Err()
}

type TestAuthFactory struct {
	TestAuth *TestAuth
}

func (t *TestAuthFactory) Sign([]byte) (chain.Auth, error) {
	return t.TestAuth, nil
}

func (t *TestAuthFactory) Address() codec.Address {
	return t.TestAuth.ActorAddress
}

// TestAuthEngine counts batches and fails every batch holding an auth with
// [TestAuth.ShouldErr] set.
type TestAuthEngine struct {
	Batches int
}

func (e *TestAuthEngine) GetBatchVerifier(count int) chain.AuthBatchVerifier {
	e.Batches++
	return &testBatchVerifier{auths: make([]chain.Auth, 0, count)}
}

type testBatchVerifier struct {
	auths []chain.Auth
}

func (b *testBatchVerifier) Add(_ []byte, auth chain.Auth) {
	b.auths = append(b.auths, auth)
}

func (b *testBatchVerifier) Verify() error {
	for _, auth := range b.auths {
		if err := auth.Verify(context.Background(), nil); err != nil {
			return err
		}
	}
	return nil
}

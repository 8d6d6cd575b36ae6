// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auth signs transactions with ed25519 keys.
package auth

import (
	"context"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/crypto/ed25519"
	"github.com/ava-labs/weightedvm/utils"
)

var (
	_ chain.Auth        = (*ED25519)(nil)
	_ chain.AuthFactory = (*ED25519Factory)(nil)
	_ chain.AuthEngine  = (*ED25519AuthEngine)(nil)
)

const ED25519Size = ed25519.PublicKeyLen + ed25519.SignatureLen

type ED25519 struct {
	Signer    ed25519.PublicKey `json:"signer"`
	Signature ed25519.Signature `json:"signature"`

	addr codec.Address
}

func (d *ED25519) address() codec.Address {
	if d.addr == codec.EmptyAddress {
		d.addr = NewED25519Address(d.Signer)
	}
	return d.addr
}

func (*ED25519) GetTypeID() uint8 {
	return consts.ED25519ID
}

func (d *ED25519) Verify(_ context.Context, msg []byte) error {
	if !ed25519.Verify(msg, d.Signer, d.Signature) {
		return ed25519.ErrInvalidSignature
	}
	return nil
}

func (d *ED25519) Actor() codec.Address {
	return d.address()
}

func (*ED25519) Size() int {
	return ED25519Size
}

func (d *ED25519) Marshal(p *codec.Packer) {
	p.PackFixedBytes(d.Signer[:])
	p.PackFixedBytes(d.Signature[:])
}

func UnmarshalED25519(p *codec.Packer) (chain.Auth, error) {
	var d ED25519
	signer := d.Signer[:]
	p.UnpackFixedBytes(ed25519.PublicKeyLen, &signer)
	signature := d.Signature[:]
	p.UnpackFixedBytes(ed25519.SignatureLen, &signature)
	return &d, p.Err()
}

type ED25519Factory struct {
	priv ed25519.PrivateKey
}

func NewED25519Factory(priv ed25519.PrivateKey) *ED25519Factory {
	return &ED25519Factory{priv}
}

func (d *ED25519Factory) Sign(msg []byte) (chain.Auth, error) {
	sig := ed25519.Sign(msg, d.priv)
	return &ED25519{Signer: d.priv.PublicKey(), Signature: sig}, nil
}

func (d *ED25519Factory) Address() codec.Address {
	return NewED25519Address(d.priv.PublicKey())
}

func NewED25519Address(pk ed25519.PublicKey) codec.Address {
	return codec.CreateAddress(consts.ED25519ID, utils.ToID(pk[:]))
}

type ED25519AuthEngine struct{}

// GetBatchVerifier returns a verifier for [count] signatures. Batches
// smaller than [ed25519.MinBatchSize] are checked one at a time.
func (*ED25519AuthEngine) GetBatchVerifier(count int) chain.AuthBatchVerifier {
	if count < ed25519.MinBatchSize {
		return &ED25519Serial{auths: make([]*ED25519, 0, count), msgs: make([][]byte, 0, count)}
	}
	return &ED25519Batch{batch: ed25519.NewBatch(count)}
}

type ED25519Batch struct {
	batch *ed25519.Batch
	err   error
}

func (b *ED25519Batch) Add(msg []byte, rauth chain.Auth) {
	auth, ok := rauth.(*ED25519)
	if !ok {
		b.err = ErrUnexpectedAuth
		return
	}
	b.batch.Add(msg, auth.Signer, auth.Signature)
}

func (b *ED25519Batch) Verify() error {
	if b.err != nil {
		return b.err
	}
	return b.batch.Verify()
}

type ED25519Serial struct {
	auths []*ED25519
	msgs  [][]byte
	err   error
}

func (s *ED25519Serial) Add(msg []byte, rauth chain.Auth) {
	auth, ok := rauth.(*ED25519)
	if !ok {
		s.err = ErrUnexpectedAuth
		return
	}
	s.auths = append(s.auths, auth)
	s.msgs = append(s.msgs, msg)
}

func (s *ED25519Serial) Verify() error {
	if s.err != nil {
		return s.err
	}
	for i, auth := range s.auths {
		if !ed25519.Verify(s.msgs[i], auth.Signer, auth.Signature) {
			return ed25519.ErrInvalidSignature
		}
	}
	return nil
}

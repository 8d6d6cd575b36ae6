// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ed25519 signs transactions and verifies them under the ZIP-215
// rules, one at a time or in batches.
package ed25519

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/hdevalence/ed25519consensus"
)

type (
	PublicKey  [ed25519.PublicKeySize]byte
	PrivateKey [ed25519.PrivateKeySize]byte
	Signature  [ed25519.SignatureSize]byte
)

const (
	PublicKeyLen      = ed25519.PublicKeySize
	PrivateKeyLen     = ed25519.PrivateKeySize
	PrivateKeySeedLen = ed25519.SeedSize
	SignatureLen      = ed25519.SignatureSize

	// MinBatchSize is the smallest batch worth verifying together.
	MinBatchSize = 4
)

var (
	EmptyPublicKey  = PublicKey{}
	EmptyPrivateKey = PrivateKey{}
	EmptySignature  = Signature{}
)

func GeneratePrivateKey() (PrivateKey, error) {
	_, k, err := ed25519.GenerateKey(nil)
	if err != nil {
		return EmptyPrivateKey, err
	}
	return PrivateKey(k), nil
}

// PublicKey is the trailing half of [p].
func (p PrivateKey) PublicKey() PublicKey {
	return PublicKey(p[PrivateKeySeedLen:])
}

func (p PrivateKey) Hex() string {
	return hex.EncodeToString(p[:])
}

func (p PublicKey) Hex() string {
	return hex.EncodeToString(p[:])
}

// PrivateKeyFromHex parses a hex encoded key, with or without a 0x prefix.
func PrivateKeyFromHex(s string) (PrivateKey, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return EmptyPrivateKey, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}
	if len(b) != PrivateKeyLen {
		return EmptyPrivateKey, fmt.Errorf("%w: %d bytes", ErrInvalidPrivateKey, len(b))
	}
	return PrivateKey(b), nil
}

// LoadKey reads a hex encoded private key from [path].
func LoadKey(path string) (PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return EmptyPrivateKey, err
	}
	return PrivateKeyFromHex(string(b))
}

// Save writes [p] to [path], readable by the owner only.
func (p PrivateKey) Save(path string) error {
	return os.WriteFile(path, []byte(p.Hex()), 0o600)
}

func Sign(msg []byte, p PrivateKey) Signature {
	return Signature(ed25519.Sign(p[:], msg))
}

func Verify(msg []byte, p PublicKey, s Signature) bool {
	return ed25519consensus.Verify(p[:], msg, s[:])
}

// Batch verifies many signatures at once. A failed batch does not say which
// signature is invalid.
type Batch struct {
	bv ed25519consensus.BatchVerifier
}

func NewBatch(size int) *Batch {
	return &Batch{bv: ed25519consensus.NewPreallocatedBatchVerifier(size)}
}

func (b *Batch) Add(msg []byte, p PublicKey, s Signature) {
	b.bv.Add(p[:], msg, s[:])
}

func (b *Batch) Verify() error {
	if !b.bv.Verify() {
		return ErrInvalidSignature
	}
	return nil
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package authority derives program owned addresses and the signing
// capabilities programs use to act for them.
package authority

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/gagliardetto/solana-go"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
)

// Seed labels
const (
	VaultStateSeed      = "vault-state"
	PoolStateSeed       = "pool-state"
	LPMintAuthoritySeed = "lp-mint-authority"
	LPMintSeed          = "lp-mint"
)

var (
	ErrInvalidSeed   = errors.New("invalid seed")
	ErrNotProgram    = errors.New("address is not a program")
	ErrDerivation    = errors.New("address derivation failed")
	ErrBumpMismatch  = errors.New("bump does not derive address")
	ErrWrongProgram  = errors.New("signer belongs to another program")
	ErrUnknownSigner = errors.New("unknown signer")
)

var (
	VaultProgram = ProgramAddress(solana.MustPublicKeyFromBase58(consts.VaultProgram))
	PoolProgram  = ProgramAddress(solana.MustPublicKeyFromBase58(consts.PoolProgram))
	TokenProgram = ProgramAddress(solana.MustPublicKeyFromBase58(consts.TokenProgram))
)

// ProgramAddress returns the address a program is invoked by.
func ProgramAddress(key solana.PublicKey) codec.Address {
	return codec.CreateAddress(consts.ProgramID, ids.ID(key))
}

// ProgramKey returns the 32 byte key of a program address.
func ProgramKey(program codec.Address) (solana.PublicKey, error) {
	if program.TypeID() != consts.ProgramID {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrNotProgram, program)
	}
	return solana.PublicKey(program.ID()), nil
}

func seeds(label string, ref codec.Address) ([][]byte, error) {
	if len(label) == 0 || len(label) > solana.MaxSeedLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, label)
	}
	return [][]byte{[]byte(label), ref[:1], ref[1:]}, nil
}

// Derive returns the address [program] owns for ([label], [ref]) and the
// bump that moves it off the ed25519 curve. Anyone holding the same inputs
// derives the same address.
func Derive(program codec.Address, label string, ref codec.Address) (codec.Address, uint8, error) {
	key, err := ProgramKey(program)
	if err != nil {
		return codec.EmptyAddress, 0, err
	}
	s, err := seeds(label, ref)
	if err != nil {
		return codec.EmptyAddress, 0, err
	}
	derived, bump, err := solana.FindProgramAddress(s, key)
	if err != nil {
		return codec.EmptyAddress, 0, fmt.Errorf("%w: %w", ErrDerivation, err)
	}
	return codec.CreateAddress(consts.PDAID, ids.ID(derived)), bump, nil
}

// MustDerive is [Derive] for fixed inputs known to be valid.
func MustDerive(program codec.Address, label string, ref codec.Address) codec.Address {
	addr, _, err := Derive(program, label, ref)
	if err != nil {
		panic(err)
	}
	return addr
}

// CreateWithBump recomputes a derived address from a stored bump.
func CreateWithBump(program codec.Address, label string, ref codec.Address, bump uint8) (codec.Address, error) {
	key, err := ProgramKey(program)
	if err != nil {
		return codec.EmptyAddress, err
	}
	s, err := seeds(label, ref)
	if err != nil {
		return codec.EmptyAddress, err
	}
	derived, err := solana.CreateProgramAddress(append(s, []byte{bump}), key)
	if err != nil {
		return codec.EmptyAddress, fmt.Errorf("%w: %w", ErrDerivation, err)
	}
	return codec.CreateAddress(consts.PDAID, ids.ID(derived)), nil
}

// Signer lets the program owning a derived address sign with it. The bridge
// only honors a Signer presented by the program it was created for.
type Signer struct {
	program codec.Address
	address codec.Address
	label   string
	bump    uint8
}

func NewSigner(program codec.Address, label string, ref codec.Address, bump uint8) (Signer, error) {
	addr, err := CreateWithBump(program, label, ref, bump)
	if err != nil {
		return Signer{}, err
	}
	return Signer{
		program: program,
		address: addr,
		label:   label,
		bump:    bump,
	}, nil
}

func (s Signer) Program() codec.Address { return s.program }

func (s Signer) Address() codec.Address { return s.address }

func (s Signer) String() string {
	return fmt.Sprintf("%s/%d:%s", s.label, s.bump, s.address)
}

// Verify checks that [s] was created by [caller].
func (s Signer) Verify(caller codec.Address) error {
	if s.address == codec.EmptyAddress {
		return ErrUnknownSigner
	}
	if s.program != caller {
		return fmt.Errorf("%w: %s signed for %s", ErrWrongProgram, caller, s.program)
	}
	return nil
}

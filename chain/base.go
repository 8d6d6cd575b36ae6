// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
)

const BaseSize = consts.Int64Len + consts.IDLen

type Base struct {
	// Timestamp is the expiry of the transaction (inclusive). Once this time
	// passes the transaction can no longer be executed.
	Timestamp int64 `json:"timestamp"`

	// ChainID protects against replays on other chains.
	ChainID ids.ID `json:"chainId"`
}

// Verify checks [b] against a batch executed at [timestamp].
func (b *Base) Verify(chainID ids.ID, validityWindow int64, timestamp int64) error {
	switch {
	case b.Timestamp%consts.MillisecondsPerSecond != 0:
		return fmt.Errorf("%w: timestamp=%d", ErrMisalignedTime, b.Timestamp)
	case b.Timestamp < timestamp:
		return ErrTimestampTooLate
	case b.Timestamp > timestamp+validityWindow:
		return ErrTimestampTooEarly
	case b.ChainID != chainID:
		return ErrInvalidChainID
	default:
		return nil
	}
}

func (*Base) Size() int {
	return BaseSize
}

func (b *Base) Marshal(p *codec.Packer) {
	p.PackInt64(b.Timestamp)
	p.PackID(b.ChainID)
}

func UnmarshalBase(p *codec.Packer) (*Base, error) {
	var base Base
	base.Timestamp = p.UnpackInt64(true)
	if base.Timestamp%consts.MillisecondsPerSecond != 0 {
		return nil, fmt.Errorf("%w: timestamp=%d", ErrMisalignedTime, base.Timestamp)
	}
	p.UnpackID(true, &base.ChainID)
	return &base, p.Err()
}

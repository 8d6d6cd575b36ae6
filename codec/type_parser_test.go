// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/weightedvm/consts"
)

type blah struct {
	v uint64
}

func (*blah) GetTypeID() uint8 { return 3 }

func unmarshalBlah(p *Packer) (*blah, error) {
	return &blah{v: p.UnpackUint64(true)}, p.Err()
}

func TestTypeParser(t *testing.T) {
	require := require.New(t)
	tp := NewTypeParser[*blah]()

	require.NoError(tp.Register(&blah{}, unmarshalBlah))
	require.ErrorIs(tp.Register(&blah{}, unmarshalBlah), ErrDuplicateItem)

	wp := NewWriter(0, consts.MaxInt)
	wp.PackByte(3)
	wp.PackUint64(7)
	b, err := tp.Unmarshal(NewReader(wp.Bytes(), consts.MaxInt))
	require.NoError(err)
	require.Equal(uint64(7), b.v)

	_, ok := tp.LookupIndex(4)
	require.False(ok)

	_, err = tp.Unmarshal(NewReader([]byte{4}, consts.MaxInt))
	require.ErrorIs(err, ErrUnknownType)
}

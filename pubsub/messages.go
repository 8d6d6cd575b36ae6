// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
)

// CreateBatchMessage packs [msgs] into one length prefixed frame.
func CreateBatchMessage(maxSize int, msgs [][]byte) ([]byte, error) {
	size := consts.IntLen
	for _, msg := range msgs {
		size += consts.IntLen + len(msg)
	}
	p := codec.NewWriter(size, maxSize)
	p.PackInt(uint32(len(msgs)))
	for _, msg := range msgs {
		p.PackBytes(msg)
	}
	return p.Bytes(), p.Err()
}

func ParseBatchMessage(maxSize int, msg []byte) ([][]byte, error) {
	p := codec.NewReader(msg, maxSize)
	count := int(p.UnpackInt(true))
	if err := p.Err(); err != nil {
		return nil, err
	}
	if count > maxSize/consts.IntLen {
		return nil, codec.ErrTooManyItems
	}
	msgs := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		var m []byte
		p.UnpackBytes(maxSize, true, &m)
		msgs = append(msgs, m)
	}
	if !p.Empty() {
		return nil, codec.ErrInvalidSize
	}
	return msgs, p.Err()
}

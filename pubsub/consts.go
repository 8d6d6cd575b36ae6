// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
)

type ServerConfig struct {
	// Size of the ws read buffer
	ReadBufferSize int `json:"readBufferSize" yaml:"readBufferSize"`
	// Size of the ws write buffer
	WriteBufferSize int `json:"writeBufferSize" yaml:"writeBufferSize"`
	// Time allowed to write a message to the peer.
	WriteWait time.Duration `json:"writeWait" yaml:"writeWait"`
	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration `json:"pongWait" yaml:"pongWait"`
	// Send pings to peer with this period. Must be less than PongWait.
	PingPeriod time.Duration `json:"pingPeriod" yaml:"pingPeriod"`
	// Maximum message size in bytes allowed from peer.
	MaxReadMessageSize int `json:"maxReadMessageSize" yaml:"maxReadMessageSize"`
	// Maximum size of a batch of messages sent to a peer.
	MaxWriteMessageSize int `json:"maxWriteMessageSize" yaml:"maxWriteMessageSize"`
	// Maximum number of pending batches to send to a peer.
	MaxPendingMessages int `json:"maxPendingMessages" yaml:"maxPendingMessages"`
	// Maximum time a message waits before its batch is flushed.
	MaxMessageWait time.Duration `json:"maxMessageWait" yaml:"maxMessageWait"`
}

func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:      units.KiB,
		WriteBufferSize:     units.KiB,
		WriteWait:           10 * time.Second,
		PongWait:            60 * time.Second,
		PingPeriod:          54 * time.Second,
		MaxReadMessageSize:  256 * units.KiB,
		MaxWriteMessageSize: 256 * units.KiB,
		MaxPendingMessages:  1_024,
		MaxMessageWait:      10 * time.Millisecond,
	}
}

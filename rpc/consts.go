// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import "github.com/ava-labs/weightedvm/consts"

const (
	Name              = consts.Name
	JSONRPCEndpoint   = "/rpc"
	WebSocketEndpoint = "/ws"

	// recentResults is how many committed results the stream replays to a
	// client that asks for them.
	recentResults = 256
)

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"encoding/json"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
)

// Client request modes.
const (
	// RecentMode asks the server to replay its recent results.
	RecentMode byte = 0
)

// StreamedResult is a committed result as seen by a stream client. Outputs
// are left encoded since their type depends on the action.
type StreamedResult struct {
	TxID    ids.ID            `json:"txId"`
	Actor   codec.Address     `json:"actor"`
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Outputs []json.RawMessage `json:"outputs,omitempty"`
}

func PackResultMessage(r *chain.Result) ([]byte, error) {
	return json.Marshal(r)
}

func UnpackResultMessage(msg []byte) (*StreamedResult, error) {
	var r StreamedResult
	if err := json.Unmarshal(msg, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

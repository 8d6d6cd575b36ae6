// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/weightedvm/codec"
)

// Result is the outcome of one transaction. Outputs hold one typed output
// per action and are only set on success.
type Result struct {
	TxID    ids.ID        `json:"txId"`
	Actor   codec.Address `json:"actor"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Outputs []codec.Typed `json:"outputs,omitempty"`

	err error
}

// Err returns the error that failed the transaction.
func (r *Result) Err() error {
	return r.err
}

func failed(tx *Transaction, err error) *Result {
	r := &Result{TxID: tx.ID(), Error: err.Error(), err: err}
	if tx.Auth != nil {
		r.Actor = tx.Auth.Actor()
	}
	return r
}

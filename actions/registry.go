// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
)

// NewRegistry returns the parser of every action.
func NewRegistry() (chain.ActionRegistry, error) {
	r := codec.NewTypeParser[chain.Action]()
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(&InitializeVault{}, UnmarshalInitializeVault),
		r.Register(&Deposit{}, UnmarshalDeposit),
		r.Register(&Withdraw{}, UnmarshalWithdraw),
		r.Register(&InitializePool{}, UnmarshalInitializePool),
		r.Register(&Swap{}, UnmarshalSwap),
		r.Register(&SwapExactOut{}, UnmarshalSwapExactOut),
		r.Register(&AddLiquidity{}, UnmarshalAddLiquidity),
		r.Register(&RemoveLiquidity{}, UnmarshalRemoveLiquidity),
		r.Register(&Transfer{}, UnmarshalTransfer),
		r.Register(&JoinPool{}, UnmarshalJoinPool),
		r.Register(&ExitPool{}, UnmarshalExitPool),
	)
	if errs.Errored() {
		return nil, errs.Err
	}
	return r, nil
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/rpc"
)

type deriveReply struct {
	Seed    string `json:"seed"`
	Ref     string `json:"ref"`
	Address string `json:"address"`
	Hex     string `json:"hex"`
	Bump    uint8  `json:"bump"`
}

func deriveAddress(seed string, ref codec.Address) (codec.Address, error) {
	addr, _, err := rpc.Derive(seed, ref)
	return addr, err
}

var deriveCmd = &cobra.Command{
	Use:   "derive [seed] [address]",
	Short: "Derive the program address for seed vault-state, pool-state, lp-mint or lp-mint-authority",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := codec.ParseAddress(consts.HRP, args[1])
		if err != nil {
			return err
		}
		addr, bump, err := rpc.Derive(args[0], ref)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), &deriveReply{
			Seed:    args[0],
			Ref:     codec.MustAddressBech32(consts.HRP, ref),
			Address: codec.MustAddressBech32(consts.HRP, addr),
			Hex:     addr.String(),
			Bump:    bump,
		})
	},
}

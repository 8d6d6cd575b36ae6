// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/pebble"
	"github.com/ava-labs/weightedvm/pool"
	"github.com/ava-labs/weightedvm/rpc"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/storage"
	"github.com/ava-labs/weightedvm/token"
	"github.com/ava-labs/weightedvm/utils"
	"github.com/ava-labs/weightedvm/vault"
)

var rpcURI string

type poolTokenInfo struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Weight  string `json:"weight"`
	Reserve string `json:"reserve"`
}

type poolInfo struct {
	Pool          string           `json:"pool"`
	Vault         string           `json:"vault"`
	LpMint        string           `json:"lpMint"`
	SwapFeeBps    uint16           `json:"swapFeeBps"`
	TotalLpSupply string           `json:"totalLpSupply"`
	Invariant     uint64           `json:"invariant"`
	Tokens        []*poolTokenInfo `json:"tokens"`
}

// loadPoolInfo reads [addr] from [im]. [addr] may be the pool or its vault.
func loadPoolInfo(ctx context.Context, im state.Immutable, addr codec.Address) (*poolInfo, error) {
	if _, err := vault.Get(ctx, im, addr); err == nil {
		addr, _, err = pool.Address(addr)
		if err != nil {
			return nil, err
		}
	}
	p, err := pool.Get(ctx, im, addr)
	if err != nil {
		return nil, err
	}
	reserves, err := vault.Reserves(ctx, im, p.Vault, p.Tokens)
	if err != nil {
		return nil, err
	}
	invariant, err := pool.Invariant(ctx, im, p)
	if err != nil {
		return nil, err
	}
	info := &poolInfo{
		Pool:          codec.MustAddressBech32(consts.HRP, addr),
		Vault:         codec.MustAddressBech32(consts.HRP, p.Vault),
		LpMint:        codec.MustAddressBech32(consts.HRP, p.LpMint),
		SwapFeeBps:    p.SwapFeeBps,
		TotalLpSupply: utils.FormatBalance(p.TotalLpSupply, pool.LPDecimals),
		Invariant:     invariant,
	}
	for i, t := range p.Tokens {
		ti, err := token.Info(ctx, im, t)
		if err != nil {
			return nil, err
		}
		info.Tokens = append(info.Tokens, &poolTokenInfo{
			Address: codec.MustAddressBech32(consts.HRP, t),
			Symbol:  ti.Symbol,
			Weight:  utils.FormatBalance(p.Weights[i], weightDecimals),
			Reserve: utils.FormatBalance(reserves[i], ti.Decimals),
		})
	}
	return info, nil
}

type remotePoolInfo struct {
	*storage.PoolState
	Reserves  []uint64 `json:"reserves"`
	Invariant uint64   `json:"invariant"`
}

// remotePoolInfoFrom mirrors [loadPoolInfo] over JSON-RPC.
func remotePoolInfoFrom(ctx context.Context, cli *rpc.JSONRPCClient, addr codec.Address) (*remotePoolInfo, error) {
	if v, err := cli.Vault(ctx, addr); err == nil {
		addr = v.Pool
	}
	reply, err := cli.Pool(ctx, addr)
	if err != nil {
		return nil, err
	}
	invariant, err := cli.Quote(ctx, &rpc.QuoteArgs{Pool: addr, Kind: rpc.QuoteInvariant})
	if err != nil {
		return nil, err
	}
	return &remotePoolInfo{
		PoolState: reply.Pool,
		Reserves:  reply.Reserves,
		Invariant: invariant.Amount,
	}, nil
}

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Inspect pools",
}

var poolInfoCmd = &cobra.Command{
	Use:   "info [pool or vault]",
	Short: "Print the configuration and reserves of a pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := codec.ParseAddress(consts.HRP, args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if rpcURI != "" {
			info, err := remotePoolInfoFrom(ctx, rpc.NewJSONRPCClient(rpcURI), addr)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		}
		db, _, err := pebble.New(cfg.DatabaseDir, cfg.Pebble)
		if err != nil {
			return err
		}
		defer db.Close()
		info, err := loadPoolInfo(ctx, db, addr)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), info)
	},
}

func init() {
	poolInfoCmd.Flags().StringVar(&rpcURI, "rpc", "", "query a running server instead of the local database")
	poolCmd.AddCommand(poolInfoCmd)
}


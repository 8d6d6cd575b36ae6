// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/ava-labs/avalanchego/trace"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/weightedvm/genesis"
	"github.com/ava-labs/weightedvm/pebble"
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Manage the genesis state",
}

var genesisApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create the genesis tokens and balances in an empty database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		g, err := genesis.Load(cfg.GenesisPath)
		if err != nil {
			return err
		}
		db, _, err := pebble.New(cfg.DatabaseDir, cfg.Pebble)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := g.Apply(cmd.Context(), trace.Noop, db); err != nil {
			return err
		}
		log.Info("applied genesis",
			zap.String("path", cfg.GenesisPath),
			zap.Int("tokens", len(g.Tokens)),
			zap.Stringer("chainID", g.ChainID),
		)
		return printJSON(cmd.OutOrStdout(), g)
	},
}

func init() {
	genesisCmd.AddCommand(genesisApplyCmd)
}

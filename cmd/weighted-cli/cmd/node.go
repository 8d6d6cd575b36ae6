// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/weightedvm/actions"
	"github.com/ava-labs/weightedvm/auth"
	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/config"
	"github.com/ava-labs/weightedvm/genesis"
	"github.com/ava-labs/weightedvm/pebble"
	"github.com/ava-labs/weightedvm/programs"
)

// node is everything needed to execute transactions against the local
// database.
type node struct {
	log     logging.Logger
	chainID ids.ID
	window  int64

	db        *pebble.Database
	gatherers prometheus.Gatherers

	actionRegistry chain.ActionRegistry
	authRegistry   chain.AuthRegistry
	processor      *chain.Processor
}

func openNode(log logging.Logger, cfg config.Config) (*node, error) {
	g, err := genesis.Load(cfg.GenesisPath)
	if err != nil {
		return nil, err
	}
	n := &node{log: log, chainID: g.ChainID, window: cfg.Chain.ValidityWindow}

	var dbRegistry *prometheus.Registry
	n.db, dbRegistry, err = pebble.New(cfg.DatabaseDir, cfg.Pebble)
	if err != nil {
		return nil, err
	}
	registry := prometheus.NewRegistry()
	n.gatherers = prometheus.Gatherers{registry, dbRegistry}

	errs := wrappers.Errs{}
	n.actionRegistry, err = actions.NewRegistry()
	errs.Add(err)
	n.authRegistry, err = auth.NewRegistry()
	errs.Add(err)
	b, err := programs.New(log, trace.Noop)
	errs.Add(err)
	if errs.Errored() {
		_ = n.db.Close()
		return nil, errs.Err
	}

	chainCfg := cfg.Chain
	chainCfg.ChainID = g.ChainID
	n.processor, err = chain.NewProcessor(log, trace.Noop, registry, b, n.db, auth.Engines(), chainCfg)
	if err != nil {
		_ = n.db.Close()
		return nil, err
	}
	log.Info("opened database",
		zap.String("dir", cfg.DatabaseDir),
		zap.Stringer("chainID", g.ChainID),
	)
	return n, nil
}

func (n *node) Close() error {
	n.processor.Close()
	return n.db.Close()
}

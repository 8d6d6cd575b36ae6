// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type chainMetrics struct {
	txsSucceeded prometheus.Counter
	txsFailed    prometheus.Counter
	txsRejected  prometheus.Counter

	stateChanges prometheus.Counter

	waitSignatures metric.Averager
	execute        metric.Averager

	executorBlocked    prometheus.Counter
	executorExecutable prometheus.Counter
}

func (m *chainMetrics) RecordBlocked() {
	m.executorBlocked.Inc()
}

func (m *chainMetrics) RecordExecutable() {
	m.executorExecutable.Inc()
}

func newMetrics(r prometheus.Registerer) (*chainMetrics, error) {
	waitSignatures, err := metric.NewAverager(
		"",
		"chain_wait_signatures",
		"time spent verifying transaction signatures",
		r,
	)
	if err != nil {
		return nil, err
	}
	execute, err := metric.NewAverager(
		"",
		"chain_execute",
		"time spent executing a batch of transactions",
		r,
	)
	if err != nil {
		return nil, err
	}

	m := &chainMetrics{
		waitSignatures: waitSignatures,
		execute:        execute,
		txsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_succeeded",
			Help:      "number of transactions whose actions all succeeded",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_failed",
			Help:      "number of transactions reverted by an action error",
		}),
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_rejected",
			Help:      "number of transactions rejected before execution",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "state_changes",
			Help:      "number of keys written to the database",
		}),
		executorBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "executor_blocked",
			Help:      "transactions that waited on a conflicting transaction",
		}),
		executorExecutable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "executor_executable",
			Help:      "transactions that could run immediately",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsSucceeded),
		r.Register(m.txsFailed),
		r.Register(m.txsRejected),
		r.Register(m.stateChanges),
		r.Register(m.executorBlocked),
		r.Register(m.executorExecutable),
	)
	return m, errs.Err
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace       = "pebble"
	metricsInterval = 10 * time.Second
)

type metrics struct {
	delayStart time.Time
	writeStall metric.Averager
	getLatency metric.Averager

	l0Compactions     prometheus.Counter
	otherCompactions  prometheus.Counter
	activeCompactions prometheus.Gauge

	tombstones     prometheus.Gauge
	obsoleteTables prometheus.Gauge
	zombieTables   prometheus.Gauge
	obsoleteWAL    prometheus.Gauge
}

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	writeStall, err := metric.NewAverager(
		"",
		"pebble_write_stall",
		"time spent waiting for disk write",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	getLatency, err := metric.NewAverager(
		"",
		"pebble_read_latency",
		"time spent waiting for db get",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	m := &metrics{
		writeStall:        writeStall,
		getLatency:        getLatency,
		l0Compactions:     newCounter("l0_compactions", "number of l0 compactions"),
		otherCompactions:  newCounter("other_compactions", "number of l1+ compactions"),
		activeCompactions: newGauge("active_compactions", "number of active compactions"),
		tombstones:        newGauge("tombstone_count", "approximate count of internal tombstones"),
		obsoleteTables:    newGauge("obsolete_table_size", "bytes in tables no longer referenced by the db"),
		zombieTables:      newGauge("zombie_table_size", "bytes in unreferenced tables still held by iterators"),
		obsoleteWAL:       newGauge("obsolete_wal_size", "bytes in WAL files no longer needed by the db"),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.l0Compactions),
		r.Register(m.otherCompactions),
		r.Register(m.activeCompactions),
		r.Register(m.tombstones),
		r.Register(m.obsoleteTables),
		r.Register(m.zombieTables),
		r.Register(m.obsoleteWAL),
	)
	return r, m, errs.Err
}

func (m *metrics) observeGet(start time.Time) {
	m.getLatency.Observe(float64(time.Since(start)))
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.activeCompactions.Inc()
	if len(info.Input) > 0 && info.Input[0].Level == 0 {
		db.metrics.l0Compactions.Inc()
	} else {
		db.metrics.otherCompactions.Inc()
	}
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.activeCompactions.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.delayStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.writeStall.Observe(float64(time.Since(db.metrics.delayStart)))
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			stats := db.db.Metrics()
			db.metrics.tombstones.Set(float64(stats.Keys.TombstoneCount))
			db.metrics.obsoleteTables.Set(float64(stats.Table.ObsoleteSize))
			db.metrics.zombieTables.Set(float64(stats.Table.ZombieSize))
			db.metrics.obsoleteWAL.Set(float64(stats.WAL.ObsoletePhysicalSize))
		case <-db.closing:
			return
		}
	}
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pebble persists committed state in a pebble database.
package pebble

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/weightedvm/state"
)

var _ state.Database = (*Database)(nil)

type Config struct {
	CacheSize                   int  `json:"cacheSize"                   yaml:"cacheSize"`
	BytesPerSync                int  `json:"bytesPerSync"                yaml:"bytesPerSync"`
	MemTableStopWritesThreshold int  `json:"memTableStopWritesThreshold" yaml:"memTableStopWritesThreshold"`
	MemTableSize                int  `json:"memTableSize"                yaml:"memTableSize"`
	MaxOpenFiles                int  `json:"maxOpenFiles"                yaml:"maxOpenFiles"`
	ConcurrentCompactions       int  `json:"concurrentCompactions"       yaml:"concurrentCompactions"`
	Sync                        bool `json:"sync"                        yaml:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   64 * 1024 * 1024,
		BytesPerSync:                1024 * 1024,
		MemTableStopWritesThreshold: 8,
		MemTableSize:                16 * 1024 * 1024,
		MaxOpenFiles:                4_096,
		ConcurrentCompactions:       1,
		Sync:                        true,
	}
}

type Database struct {
	db      *pebble.DB
	metrics *metrics
	sync    bool

	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New opens the database in [dir]. The returned registry carries the
// compaction and latency metrics of the database.
func New(dir string, cfg Config) (*Database, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	db := &Database{
		metrics: metrics,
		sync:    cfg.Sync,
		closing: make(chan struct{}),
	}
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync:                cfg.BytesPerSync,
		Comparer:                    pebble.DefaultComparer,
		WALBytesPerSync:             cfg.BytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                uint64(cfg.MemTableSize),
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions: func() int {
			return cfg.ConcurrentCompactions
		},
	}
	opts.Experimental.ReadSamplingMultiplier = -1
	opts.EventListener = &pebble.EventListener{
		CompactionBegin: db.onCompactionBegin,
		CompactionEnd:   db.onCompactionEnd,
		WriteStallBegin: db.onWriteStallBegin,
		WriteStallEnd:   db.onWriteStallEnd,
	}
	d, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, nil, err
	}
	db.db = d
	db.wg.Add(1)
	go func() {
		defer db.wg.Done()
		db.collectMetrics()
	}()
	return db, registry, nil
}

// GetValue returns a copy of the value stored at [key] or
// [database.ErrNotFound].
func (db *Database) GetValue(_ context.Context, key []byte) ([]byte, error) {
	defer db.metrics.observeGet(time.Now())

	data, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return slices.Clone(data), closer.Close()
}

// Apply writes [changes] in one batch. A [maybe.Nothing] value deletes the
// key.
func (db *Database) Apply(_ context.Context, changes map[string]maybe.Maybe[[]byte]) error {
	batch := db.db.NewBatch()
	defer batch.Close()

	for k, v := range changes {
		if v.IsNothing() {
			if err := batch.Delete([]byte(k), nil); err != nil {
				return err
			}
			continue
		}
		if err := batch.Set([]byte(k), v.Value(), nil); err != nil {
			return err
		}
	}
	opts := pebble.NoSync
	if db.sync {
		opts = pebble.Sync
	}
	return batch.Commit(opts)
}

func (db *Database) Close() error {
	db.closeOnce.Do(func() {
		close(db.closing)
	})
	db.wg.Wait()
	return db.db.Close()
}

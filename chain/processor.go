// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ava-labs/weightedvm/executor"
	"github.com/ava-labs/weightedvm/keys"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/tstate"
	"github.com/ava-labs/weightedvm/workers"

	oteltrace "go.opentelemetry.io/otel/trace"
)

type Config struct {
	// Concurrency is the number of transactions executed at once.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
	// FetchWorkers load state keys and check transactions ahead of
	// execution.
	FetchWorkers int `json:"fetchWorkers" yaml:"fetchWorkers"`
	// VerifyWorkers check signatures. With one worker signatures are
	// checked on the calling goroutine.
	VerifyWorkers int `json:"verifyWorkers" yaml:"verifyWorkers"`
	// ValidityWindow is how far (ms) into the future a transaction may
	// expire.
	ValidityWindow int64  `json:"validityWindow" yaml:"validityWindow"`
	ChainID        ids.ID `json:"chainId" yaml:"-"`
}

func NewDefaultConfig() Config {
	return Config{
		Concurrency:    4,
		FetchWorkers:   4,
		VerifyWorkers:  2,
		ValidityWindow: 60_000,
	}
}

// Processor executes batches of transactions against a [state.Database].
// Only one batch may be executed at a time.
type Processor struct {
	log     logging.Logger
	tracer  trace.Tracer
	metrics *chainMetrics

	invoker Invoker
	db      state.Database
	engines map[uint8]AuthEngine
	cfg     Config

	verifiers workers.Workers
}

func NewProcessor(
	log logging.Logger,
	tracer trace.Tracer,
	registerer prometheus.Registerer,
	invoker Invoker,
	db state.Database,
	engines map[uint8]AuthEngine,
	cfg Config,
) (*Processor, error) {
	metrics, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	verifiers := workers.NewSerial()
	if cfg.VerifyWorkers > 1 {
		verifiers = workers.NewPool(cfg.VerifyWorkers, 1)
	}
	return &Processor{
		log:       log,
		tracer:    tracer,
		metrics:   metrics,
		invoker:   invoker,
		db:        db,
		engines:   engines,
		cfg:       cfg,
		verifiers: verifiers,
	}, nil
}

// Close stops the signature workers.
func (p *Processor) Close() {
	p.verifiers.Stop()
}

type fetched struct {
	tx      *Transaction
	digest  []byte
	keys    state.Keys
	storage map[string][]byte

	// err rejects the transaction before execution
	err error
}

// Execute runs [txs] in order as of [timestamp] and applies the resulting
// state changes. A returned error means nothing was applied; per
// transaction failures are reported in the results.
func (p *Processor) Execute(ctx context.Context, txs []*Transaction, timestamp int64) ([]*Result, error) {
	ctx, span := p.tracer.Start(ctx, "Processor.Execute", oteltrace.WithAttributes(
		attribute.Int("txs", len(txs)),
		attribute.Int64("timestamp", timestamp),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		p.metrics.execute.Observe(float64(time.Since(start)))
	}()

	batch, err := p.fetch(ctx, txs, timestamp)
	if err != nil {
		return nil, err
	}
	if err := p.verifySignatures(ctx, batch); err != nil {
		return nil, err
	}

	var (
		results = make([]*Result, len(batch))
		ts      = tstate.New(len(batch) * 2)
		e       = executor.New(len(batch), p.cfg.Concurrency, p.metrics)
	)
	for i, f := range batch {
		i, f := i, f
		if f.err != nil {
			p.log.Debug("rejected transaction",
				zap.Stringer("txID", f.tx.ID()),
				zap.Error(f.err),
			)
			results[i] = failed(f.tx, f.err)
			p.metrics.txsRejected.Inc()
			continue
		}
		e.Run(f.keys, func() error {
			tsv := ts.NewView(f.keys, f.storage)
			result := f.tx.Execute(ctx, p.invoker, tsv, timestamp)
			if result.Success {
				tsv.Commit()
				p.metrics.txsSucceeded.Inc()
			} else {
				p.metrics.txsFailed.Inc()
			}
			results[i] = result
			return nil
		})
	}
	if err := e.Wait(); err != nil {
		return nil, err
	}

	changes := ts.Changes()
	if err := p.db.Apply(ctx, changes); err != nil {
		return nil, fmt.Errorf("%w: could not apply changes", err)
	}
	p.metrics.stateChanges.Add(float64(len(changes)))
	p.log.Debug("executed batch",
		zap.Int("txs", len(txs)),
		zap.Int("changes", len(changes)),
		zap.Int64("timestamp", timestamp),
		zap.Duration("t", time.Since(start)),
	)
	return results, nil
}

// fetch checks every transaction and loads the values of its declared keys
// from the database.
func (p *Processor) fetch(ctx context.Context, txs []*Transaction, timestamp int64) ([]*fetched, error) {
	var (
		batch = make([]*fetched, 0, len(txs))
		seen  = set.NewSet[ids.ID](len(txs))
		o     = workers.NewOrdered(p.cfg.FetchWorkers, len(txs), func(f *fetched) {
			batch = append(batch, f)
		})
	)
	for _, tx := range txs {
		tx := tx
		dup := seen.Contains(tx.ID())
		seen.Add(tx.ID())
		o.Go(func() (*fetched, error) {
			f := &fetched{tx: tx}
			switch {
			case dup:
				f.err = ErrDuplicateTx
				return f, nil
			case tx.Auth == nil:
				f.err = ErrInvalidSignature
				return f, nil
			}
			digest, err := tx.Digest()
			if err != nil {
				f.err = err
				return f, nil
			}
			f.digest = digest
			if err := tx.Base.Verify(p.cfg.ChainID, p.cfg.ValidityWindow, timestamp); err != nil {
				f.err = err
				return f, nil
			}
			stateKeys, err := tx.StateKeys()
			if err != nil {
				f.err = err
				return f, nil
			}
			f.keys = stateKeys
			f.storage = make(map[string][]byte, len(stateKeys))
			for k := range stateKeys {
				v, err := p.db.GetValue(ctx, []byte(k))
				if errors.Is(err, database.ErrNotFound) {
					continue
				}
				if err != nil {
					return nil, err
				}
				if _, ok := keys.NumChunks(v); !ok {
					return nil, fmt.Errorf("%w: %x", ErrInvalidKeyValue, k)
				}
				f.storage[k] = v
			}
			return f, nil
		})
	}
	if err := o.Wait(); err != nil {
		return nil, err
	}
	return batch, nil
}

// verifySignatures checks the auth of every transaction not yet rejected.
// Each auth type is checked on its own worker: as one batch when it has an
// engine, falling back to one by one verification when the batch fails.
func (p *Processor) verifySignatures(ctx context.Context, batch []*fetched) error {
	start := time.Now()
	defer func() {
		p.metrics.waitSignatures.Observe(float64(time.Since(start)))
	}()

	groups := make(map[uint8][]*fetched)
	for _, f := range batch {
		if f.err != nil {
			continue
		}
		typeID := f.tx.Auth.GetTypeID()
		groups[typeID] = append(groups[typeID], f)
	}
	job, err := p.verifiers.NewJob(len(groups))
	if err != nil {
		return err
	}
	for typeID, group := range groups {
		engine, ok := p.engines[typeID]
		group := group
		job.Go(func() error {
			if ok {
				bv := engine.GetBatchVerifier(len(group))
				for _, f := range group {
					bv.Add(f.digest, f.tx.Auth)
				}
				if bv.Verify() == nil {
					return nil
				}
			}
			for _, f := range group {
				if err := f.tx.Auth.Verify(ctx, f.digest); err != nil {
					f.err = fmt.Errorf("%w: %w", ErrInvalidSignature, err)
				}
			}
			return nil
		})
	}
	job.Done(nil)
	return job.Wait()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/ava-labs/weightedvm/chain"
)

var _ Submitter = (*ProcessorSubmitter)(nil)

// ProcessorSubmitter executes submitted transactions one batch at a time
// and streams their results.
type ProcessorSubmitter struct {
	l              sync.Mutex
	processor      *chain.Processor
	actionRegistry chain.ActionRegistry
	authRegistry   chain.AuthRegistry
	stream         *WebSocketServer
	now            func() time.Time
}

// NewProcessorSubmitter wires [processor] to [stream]. [stream] may be nil.
func NewProcessorSubmitter(
	processor *chain.Processor,
	actionRegistry chain.ActionRegistry,
	authRegistry chain.AuthRegistry,
	stream *WebSocketServer,
) *ProcessorSubmitter {
	return &ProcessorSubmitter{
		processor:      processor,
		actionRegistry: actionRegistry,
		authRegistry:   authRegistry,
		stream:         stream,
		now:            time.Now,
	}
}

func (s *ProcessorSubmitter) Registry() (chain.ActionRegistry, chain.AuthRegistry) {
	return s.actionRegistry, s.authRegistry
}

func (s *ProcessorSubmitter) Submit(ctx context.Context, txs []*chain.Transaction) ([]*chain.Result, error) {
	s.l.Lock()
	defer s.l.Unlock()

	results, err := s.processor.Execute(ctx, txs, s.now().UnixMilli())
	if err != nil {
		return nil, err
	}
	if s.stream != nil {
		s.stream.PublishResults(results)
	}
	return results, nil
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge dispatches calls between native programs. A call runs on
// the caller's state view and is rolled back on failure, so a failed
// invocation leaves no partial effect behind.
package bridge

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/state"

	oteltrace "go.opentelemetry.io/otel/trace"
)

const MaxDepth = 4

type Handler interface {
	Run(ctx context.Context, mu state.Reversible, call *Call) ([]byte, error)
}

type HandlerFunc func(ctx context.Context, mu state.Reversible, call *Call) ([]byte, error)

// Router is a [Handler] dispatching on the call method.
type Router map[string]HandlerFunc

func (r Router) Run(ctx context.Context, mu state.Reversible, call *Call) ([]byte, error) {
	f, ok := r[call.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, call.Method)
	}
	return f(ctx, mu, call)
}

type program struct {
	name    string
	handler Handler
}

type Bridge struct {
	log    logging.Logger
	tracer trace.Tracer

	programs map[codec.Address]program
}

func New(log logging.Logger, tracer trace.Tracer) *Bridge {
	return &Bridge{
		log:      log,
		tracer:   tracer,
		programs: make(map[codec.Address]program),
	}
}

func (b *Bridge) Register(addr codec.Address, name string, h Handler) error {
	if _, ok := b.programs[addr]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProgram, name)
	}
	b.programs[addr] = program{name: name, handler: h}
	return nil
}

// Invoke runs [msg] as the top level call of a transaction signed by [actor].
func (b *Bridge) Invoke(ctx context.Context, mu state.Reversible, actor codec.Address, msg Message) ([]byte, error) {
	signers := set.NewSet[codec.Address](1)
	signers.Add(actor)
	return b.run(ctx, mu, &Call{
		Program: msg.Program,
		Caller:  actor,
		Actor:   actor,
		Method:  msg.Method,
		Params:  msg.Params,
		signers: signers,
		bridge:  b,
	})
}

func (b *Bridge) run(ctx context.Context, mu state.Reversible, call *Call) ([]byte, error) {
	p, ok := b.programs[call.Program]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, call.Program)
	}
	ctx, span := b.tracer.Start(
		ctx, "Bridge.Invoke",
		oteltrace.WithAttributes(
			attribute.String("program", p.name),
			attribute.String("method", call.Method),
			attribute.Int("depth", call.Depth),
		),
	)
	defer span.End()

	restorePoint := mu.OpIndex()
	out, err := p.handler.Run(ctx, mu, call)
	if err != nil {
		mu.Rollback(ctx, restorePoint)
		b.log.Debug("program call reverted",
			zap.String("program", p.name),
			zap.String("method", call.Method),
			zap.Int("depth", call.Depth),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s.%s: %w", p.name, call.Method, err)
	}
	return out, nil
}

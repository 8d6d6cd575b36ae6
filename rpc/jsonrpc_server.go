// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/weightedvm/authority"
	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/pool"
	"github.com/ava-labs/weightedvm/state"
	"github.com/ava-labs/weightedvm/storage"
	"github.com/ava-labs/weightedvm/token"
	"github.com/ava-labs/weightedvm/vault"
)

// Quote kinds accepted by [JSONRPCServer.Quote].
const (
	QuoteExactIn   = "exactIn"
	QuoteExactOut  = "exactOut"
	QuoteSpotPrice = "spotPrice"
	QuoteInvariant = "invariant"

	// Single token joins take the token from IdxIn, exits pay in IdxOut.
	QuoteJoin           = "join"
	QuoteJoinExactLpOut = "joinExactLpOut"
	QuoteExit           = "exit"
	QuoteExitExactOut   = "exitExactOut"
)

// Submitter executes transactions against the state served by the
// [JSONRPCServer].
type Submitter interface {
	Submit(ctx context.Context, txs []*chain.Transaction) ([]*chain.Result, error)
	Registry() (chain.ActionRegistry, chain.AuthRegistry)
}

// JSONRPCServer answers read-only queries over pools, vaults and balances.
// Transactions are accepted only when a [Submitter] is set.
type JSONRPCServer struct {
	log       logging.Logger
	tracer    trace.Tracer
	chainID   ids.ID
	state     state.Immutable
	submitter Submitter
}

func NewJSONRPCServer(
	log logging.Logger,
	tracer trace.Tracer,
	chainID ids.ID,
	im state.Immutable,
	submitter Submitter,
) *JSONRPCServer {
	return &JSONRPCServer{
		log:       log,
		tracer:    tracer,
		chainID:   chainID,
		state:     im,
		submitter: submitter,
	}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (*JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) error {
	reply.Success = true
	return nil
}

type NetworkReply struct {
	Name    string `json:"name"`
	HRP     string `json:"hrp"`
	ChainID ids.ID `json:"chainId"`
}

func (j *JSONRPCServer) Network(_ *http.Request, _ *struct{}, reply *NetworkReply) error {
	reply.Name = Name
	reply.HRP = consts.HRP
	reply.ChainID = j.chainID
	return nil
}

type VaultArgs struct {
	Vault codec.Address `json:"vault"`
}

type VaultReply struct {
	Owner     codec.Address `json:"owner"`
	Bump      uint8         `json:"bump"`
	PoolCount uint64        `json:"poolCount"`
	Pool      codec.Address `json:"pool"`
}

func (j *JSONRPCServer) Vault(req *http.Request, args *VaultArgs, reply *VaultReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.Vault")
	defer span.End()

	v, err := vault.Get(ctx, j.state, args.Vault)
	if err != nil {
		return err
	}
	p, _, err := pool.Address(args.Vault)
	if err != nil {
		return err
	}
	reply.Owner = v.Owner
	reply.Bump = v.Bump
	reply.PoolCount = v.PoolCount
	reply.Pool = p
	return nil
}

type PoolArgs struct {
	Pool codec.Address `json:"pool"`
}

type PoolReply struct {
	Pool     *storage.PoolState `json:"pool"`
	Reserves []uint64           `json:"reserves"`
}

func (j *JSONRPCServer) Pool(req *http.Request, args *PoolArgs, reply *PoolReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.Pool")
	defer span.End()

	p, err := pool.Get(ctx, j.state, args.Pool)
	if err != nil {
		return err
	}
	reserves, err := vault.Reserves(ctx, j.state, p.Vault, p.Tokens)
	if err != nil {
		return err
	}
	reply.Pool = p
	reply.Reserves = reserves
	return nil
}

type BalanceArgs struct {
	Token codec.Address `json:"token"`
	Owner codec.Address `json:"owner"`
}

type BalanceReply struct {
	Amount uint64 `json:"amount"`
}

func (j *JSONRPCServer) Balance(req *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.Balance")
	defer span.End()

	if _, err := token.Info(ctx, j.state, args.Token); err != nil {
		return err
	}
	amount, err := token.BalanceOf(ctx, j.state, args.Token, args.Owner)
	if err != nil {
		return err
	}
	reply.Amount = amount
	return nil
}

type QuoteArgs struct {
	Pool   codec.Address `json:"pool"`
	Kind   string        `json:"kind"`
	IdxIn  uint8         `json:"idxIn"`
	IdxOut uint8         `json:"idxOut"`
	Amount uint64        `json:"amount"`
}

type QuoteReply struct {
	// Amount is the output of an exactIn quote, the input of an exactOut
	// quote, the LP shares minted or burned by a join or exit, the token
	// amount of joinExactLpOut and exit, or the invariant.
	Amount uint64 `json:"amount"`
	// Price is the 18 decimal spot price of a spotPrice quote.
	Price string `json:"price,omitempty"`
}

func (j *JSONRPCServer) Quote(req *http.Request, args *QuoteArgs, reply *QuoteReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.Quote")
	defer span.End()

	p, err := pool.Get(ctx, j.state, args.Pool)
	if err != nil {
		return err
	}
	switch args.Kind {
	case QuoteExactIn:
		reply.Amount, err = pool.QuoteSwap(ctx, j.state, p, args.IdxIn, args.IdxOut, args.Amount)
	case QuoteExactOut:
		reply.Amount, err = pool.QuoteSwapExactOut(ctx, j.state, p, args.IdxIn, args.IdxOut, args.Amount)
	case QuoteSpotPrice:
		price, perr := pool.SpotPrice(ctx, j.state, p, args.IdxIn, args.IdxOut)
		if perr != nil {
			return perr
		}
		reply.Price = price.Dec()
	case QuoteInvariant:
		reply.Amount, err = pool.Invariant(ctx, j.state, p)
	case QuoteJoin:
		if int(args.IdxIn) >= len(p.Tokens) {
			return fmt.Errorf("%w: %d", pool.ErrTokenIndex, args.IdxIn)
		}
		amountsIn := make([]uint64, len(p.Tokens))
		amountsIn[args.IdxIn] = args.Amount
		reply.Amount, err = pool.QuoteJoin(ctx, j.state, p, amountsIn)
	case QuoteJoinExactLpOut:
		reply.Amount, err = pool.QuoteJoinExactLpOut(ctx, j.state, p, args.IdxIn, args.Amount)
	case QuoteExit:
		reply.Amount, err = pool.QuoteExit(ctx, j.state, p, args.IdxOut, args.Amount)
	case QuoteExitExactOut:
		reply.Amount, err = pool.QuoteExitExactTokenOut(ctx, j.state, p, args.IdxOut, args.Amount)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownQuote, args.Kind)
	}
	return err
}

type DeriveArgs struct {
	Seed string        `json:"seed"`
	Ref  codec.Address `json:"ref"`
}

type DeriveReply struct {
	Address codec.Address `json:"address"`
	Bump    uint8         `json:"bump"`
}

// Derive predicts a program derived address without touching state.
func (*JSONRPCServer) Derive(_ *http.Request, args *DeriveArgs, reply *DeriveReply) error {
	addr, bump, err := Derive(args.Seed, args.Ref)
	if err != nil {
		return err
	}
	reply.Address = addr
	reply.Bump = bump
	return nil
}

// Derive resolves [seed] to its program and derives the address for [ref].
func Derive(seed string, ref codec.Address) (codec.Address, uint8, error) {
	switch seed {
	case authority.VaultStateSeed:
		return vault.Address(ref)
	case authority.PoolStateSeed:
		return pool.Address(ref)
	case authority.LPMintSeed:
		return pool.LPMint(ref)
	case authority.LPMintAuthoritySeed:
		return pool.LPMintAuthority(ref)
	default:
		return codec.EmptyAddress, 0, fmt.Errorf("%w: %q", ErrUnknownSeed, seed)
	}
}

type SubmitTxArgs struct {
	Tx codec.Bytes `json:"tx"`
}

type SubmitTxReply struct {
	TxID    ids.ID `json:"txId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (j *JSONRPCServer) SubmitTx(req *http.Request, args *SubmitTxArgs, reply *SubmitTxReply) error {
	ctx, span := j.tracer.Start(req.Context(), "JSONRPCServer.SubmitTx")
	defer span.End()

	if j.submitter == nil {
		return ErrNoSubmitter
	}
	actionRegistry, authRegistry := j.submitter.Registry()
	p := codec.NewReader(args.Tx, consts.NetworkSizeLimit)
	tx, err := chain.UnmarshalTx(p, actionRegistry, authRegistry)
	if err != nil {
		return fmt.Errorf("%w: unable to unmarshal transaction", err)
	}
	if !p.Empty() {
		return codec.ErrInvalidSize
	}
	results, err := j.submitter.Submit(ctx, []*chain.Transaction{tx})
	if err != nil {
		j.log.Warn("failed to execute transaction",
			zap.Stringer("txID", tx.ID()),
			zap.Error(err),
		)
		return err
	}
	if len(results) != 1 {
		return fmt.Errorf("%w: %d results", ErrUnexpectedReply, len(results))
	}
	reply.TxID = tx.ID()
	reply.Success = results[0].Success
	reply.Error = results[0].Error
	return nil
}

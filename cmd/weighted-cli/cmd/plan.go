// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/ava-labs/weightedvm/actions"
	"github.com/ava-labs/weightedvm/auth"
	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/crypto/ed25519"
	"github.com/ava-labs/weightedvm/rpc"
	"github.com/ava-labs/weightedvm/utils"
)

// Action types of a plan step.
const (
	InitializeVaultAction = "initializeVault"
	DepositAction         = "deposit"
	WithdrawAction        = "withdraw"
	InitializePoolAction  = "initializePool"
	SwapAction            = "swap"
	SwapExactOutAction    = "swapExactOut"
	AddLiquidityAction    = "addLiquidity"
	RemoveLiquidityAction = "removeLiquidity"
	JoinPoolAction        = "joinPool"
	ExitPoolAction        = "exitPool"
	TransferAction        = "transfer"

	weightDecimals = 18
	maxRefDepth    = 4
)

// Plan is a list of transactions to execute in order. Addresses in a plan
// are bech32 or 0x hex, a key name, or "<seed>:<address>" for a program
// derived address, e.g. "pool-state:vault-state:alice".
type Plan struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Keys maps names to key files, relative to the plan.
	Keys  map[string]string `yaml:"keys"`
	Steps []Step            `yaml:"steps"`
}

type Step struct {
	Description string   `yaml:"description"`
	Signer      string   `yaml:"signer"`
	Actions     []Action `yaml:"actions"`
	Require     *Require `yaml:"require,omitempty"`
}

// Require asserts the outcome of a step.
type Require struct {
	Success bool `yaml:"success"`
	// Error must be contained in the failure message.
	Error string `yaml:"error,omitempty"`
}

type Action struct {
	Type         string   `yaml:"type"`
	Vault        string   `yaml:"vault,omitempty"`
	Token        string   `yaml:"token,omitempty"`
	TokenIn      string   `yaml:"tokenIn,omitempty"`
	TokenOut     string   `yaml:"tokenOut,omitempty"`
	Tokens       []string `yaml:"tokens,omitempty"`
	To           string   `yaml:"to,omitempty"`
	Amount       uint64   `yaml:"amount,omitempty"`
	Amounts      []uint64 `yaml:"amounts,omitempty"`
	MinAmountOut uint64   `yaml:"minAmountOut,omitempty"`
	MaxAmountIn  uint64   `yaml:"maxAmountIn,omitempty"`
	MinLpOut     uint64   `yaml:"minLpOut,omitempty"`
	// Weights are decimal fractions such as "0.8".
	Weights    []string `yaml:"weights,omitempty"`
	SwapFeeBps uint16   `yaml:"swapFeeBps,omitempty"`
}

func unmarshalPlan(b []byte) (*Plan, error) {
	p := &Plan{}
	if err := yaml.UnmarshalStrict(b, p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return p, nil
}

func (p *Plan) Verify() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: no steps found", ErrInvalidPlan)
	}
	for i, s := range p.Steps {
		if _, ok := p.Keys[s.Signer]; !ok {
			return fmt.Errorf("%w %d: %w: %q", ErrInvalidStep, i, ErrUnknownKey, s.Signer)
		}
		if len(s.Actions) == 0 || len(s.Actions) > chain.MaxActions {
			return fmt.Errorf("%w %d: %d actions", ErrInvalidStep, i, len(s.Actions))
		}
	}
	return nil
}

// resolver turns plan references into keys and addresses.
type resolver struct {
	dir  string
	keys map[string]string

	factories map[string]*auth.ED25519Factory
}

func newResolver(dir string, keys map[string]string) *resolver {
	return &resolver{
		dir:       dir,
		keys:      keys,
		factories: map[string]*auth.ED25519Factory{},
	}
}

func (r *resolver) factory(name string) (*auth.ED25519Factory, error) {
	if f, ok := r.factories[name]; ok {
		return f, nil
	}
	path, ok := r.keys[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, path)
	}
	priv, err := ed25519.LoadKey(path)
	if err != nil {
		return nil, err
	}
	f := auth.NewED25519Factory(priv)
	r.factories[name] = f
	return f, nil
}

func (r *resolver) address(ref string) (codec.Address, error) {
	return r.resolve(ref, 0)
}

func (r *resolver) resolve(ref string, depth int) (codec.Address, error) {
	if depth > maxRefDepth {
		return codec.EmptyAddress, fmt.Errorf("%w: %q", ErrRecursiveReference, ref)
	}
	if ref == "" {
		return codec.EmptyAddress, ErrMissingAddress
	}
	if _, ok := r.keys[ref]; ok {
		f, err := r.factory(ref)
		if err != nil {
			return codec.EmptyAddress, err
		}
		return f.Address(), nil
	}
	if seed, inner, ok := strings.Cut(ref, ":"); ok {
		base, err := r.resolve(inner, depth+1)
		if err != nil {
			return codec.EmptyAddress, err
		}
		addr, _, err := rpc.Derive(seed, base)
		return addr, err
	}
	return codec.ParseAddress(consts.HRP, ref)
}

func (r *resolver) addresses(refs []string) ([]codec.Address, error) {
	addrs := make([]codec.Address, len(refs))
	for i, ref := range refs {
		addr, err := r.address(ref)
		if err != nil {
			return nil, err
		}
		addrs[i] = addr
	}
	return addrs, nil
}

// build converts [a] into the action it names.
func (a *Action) build(r *resolver) (chain.Action, error) {
	var (
		errs []error
		addr = func(ref string) codec.Address {
			v, err := r.address(ref)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %q", err, ref))
			}
			return v
		}
		addrs = func(refs []string) []codec.Address {
			v, err := r.addresses(refs)
			if err != nil {
				errs = append(errs, err)
			}
			return v
		}
		action chain.Action
	)
	switch a.Type {
	case InitializeVaultAction:
		action = &actions.InitializeVault{}
	case DepositAction:
		action = &actions.Deposit{Vault: addr(a.Vault), Token: addr(a.Token), Amount: a.Amount}
	case WithdrawAction:
		action = &actions.Withdraw{Vault: addr(a.Vault), Token: addr(a.Token), To: addr(a.To), Amount: a.Amount}
	case InitializePoolAction:
		weights := make([]uint64, len(a.Weights))
		for i, w := range a.Weights {
			v, err := utils.ParseBalance(w, weightDecimals)
			if err != nil {
				errs = append(errs, err)
			}
			weights[i] = v
		}
		action = &actions.InitializePool{
			Vault:      addr(a.Vault),
			Tokens:     addrs(a.Tokens),
			Weights:    weights,
			SwapFeeBps: a.SwapFeeBps,
		}
	case SwapAction:
		action = &actions.Swap{
			Vault:        addr(a.Vault),
			TokenIn:      addr(a.TokenIn),
			TokenOut:     addr(a.TokenOut),
			AmountIn:     a.Amount,
			MinAmountOut: a.MinAmountOut,
		}
	case SwapExactOutAction:
		action = &actions.SwapExactOut{
			Vault:       addr(a.Vault),
			TokenIn:     addr(a.TokenIn),
			TokenOut:    addr(a.TokenOut),
			AmountOut:   a.Amount,
			MaxAmountIn: a.MaxAmountIn,
		}
	case AddLiquidityAction:
		action = &actions.AddLiquidity{
			Vault:        addr(a.Vault),
			Tokens:       addrs(a.Tokens),
			MaxAmountsIn: a.Amounts,
			MinLpOut:     a.MinLpOut,
		}
	case RemoveLiquidityAction:
		action = &actions.RemoveLiquidity{
			Vault:         addr(a.Vault),
			Tokens:        addrs(a.Tokens),
			LpAmountIn:    a.Amount,
			MinAmountsOut: a.Amounts,
		}
	case JoinPoolAction:
		action = &actions.JoinPool{
			Vault:     addr(a.Vault),
			Tokens:    addrs(a.Tokens),
			AmountsIn: a.Amounts,
			MinLpOut:  a.MinLpOut,
		}
	case ExitPoolAction:
		action = &actions.ExitPool{
			Vault:        addr(a.Vault),
			Token:        addr(a.Token),
			LpAmountIn:   a.Amount,
			MinAmountOut: a.MinAmountOut,
		}
	case TransferAction:
		action = &actions.Transfer{Token: addr(a.Token), To: addr(a.To), Value: a.Amount}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", a.Type, errs[0])
	}
	return action, nil
}

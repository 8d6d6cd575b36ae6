// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
	"github.com/ava-labs/weightedvm/config"
	"github.com/ava-labs/weightedvm/consts"
	"github.com/ava-labs/weightedvm/genesis"
	"github.com/ava-labs/weightedvm/pool"
	"github.com/ava-labs/weightedvm/rpc"
	"github.com/ava-labs/weightedvm/vault"
	"github.com/ava-labs/weightedvm/weightedmath"
)

const supply = 10_000_000_000_000

type testNode struct {
	*node
	dir    string
	alice  codec.Address
	tokens []string
}

func newTestNode(t *testing.T) *testNode {
	require := require.New(t)
	dir := t.TempDir()
	alice := newKeyFile(t, dir, "alice.key")
	aliceAddr := codec.MustAddressBech32(consts.HRP, alice.Address())

	g := genesis.NewDefaultGenesis(ids.GenerateTestID(), nil)
	tokens := make([]string, 2)
	for i := range tokens {
		tokens[i] = codec.MustAddressBech32(consts.HRP, codec.CreateAddress(consts.PDAID, ids.GenerateTestID()))
		g.Tokens = append(g.Tokens, &genesis.Token{
			Address:     tokens[i],
			Symbol:      fmt.Sprintf("T%d", i),
			Decimals:    9,
			Allocations: []*genesis.Allocation{{Address: aliceAddr, Balance: supply}},
		})
	}
	b, err := json.Marshal(g)
	require.NoError(err)

	cfg := config.Default()
	cfg.DatabaseDir = filepath.Join(dir, "db")
	cfg.GenesisPath = filepath.Join(dir, "genesis.json")
	require.NoError(os.WriteFile(cfg.GenesisPath, b, 0o600))

	n, err := openNode(logging.NoLog{}, cfg)
	require.NoError(err)
	t.Cleanup(func() { _ = n.Close() })
	require.NoError(g.Apply(context.Background(), trace.Noop, n.db))
	return &testNode{node: n, dir: dir, alice: alice.Address(), tokens: tokens}
}

func (n *testNode) plan(t *testing.T, steps string) *Plan {
	p, err := unmarshalPlan([]byte(fmt.Sprintf(`
name: test
keys:
  alice: alice.key
steps:
%s`, steps)))
	require.NoError(t, err)
	require.NoError(t, p.Verify())
	return p
}

func decodeResponses(t *testing.T, r io.Reader) []*Response {
	var (
		dec       = json.NewDecoder(r)
		responses []*Response
	)
	for {
		var resp struct {
			ID      int    `json:"id"`
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		err := dec.Decode(&resp)
		if errors.Is(err, io.EOF) {
			return responses
		}
		require.NoError(t, err)
		responses = append(responses, &Response{ID: resp.ID, Success: resp.Success, Error: resp.Error})
	}
}

func setupSteps(tokens []string) string {
	return fmt.Sprintf(`
  - description: create the pool
    signer: alice
    actions:
      - type: initializeVault
      - type: initializePool
        vault: vault-state:alice
        tokens: [%[1]s, %[2]s]
        weights: ["0.8", "0.2"]
        swapFeeBps: 30
      - type: addLiquidity
        vault: vault-state:alice
        tokens: [%[1]s, %[2]s]
        amounts: [4000000000000, 1000000000000]
    require:
      success: true
`, tokens[0], tokens[1])
}

func TestRunPlan(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newTestNode(t)

	steps := setupSteps(n.tokens) + fmt.Sprintf(`
  - description: swap
    signer: alice
    actions:
      - type: swap
        vault: vault-state:alice
        tokenIn: %[1]s
        tokenOut: %[2]s
        amount: 100000000000
        minAmountOut: 1
  - description: swap with a bound that cannot be met
    signer: alice
    actions:
      - type: swap
        vault: vault-state:alice
        tokenIn: %[1]s
        tokenOut: %[2]s
        amount: 100000000000
        minAmountOut: 100000000000
    require:
      success: false
      error: slippage exceeded
`, n.tokens[0], n.tokens[1])

	var out bytes.Buffer
	require.NoError(runPlan(ctx, &out, n.node, n.plan(t, steps), n.dir))
	responses := decodeResponses(t, &out)
	require.Len(responses, 3)
	require.True(responses[0].Success, responses[0].Error)
	require.True(responses[1].Success, responses[1].Error)
	require.False(responses[2].Success)

	v, _, err := vault.Address(n.alice)
	require.NoError(err)
	info, err := loadPoolInfo(ctx, n.db, v)
	require.NoError(err)
	p, _, err := pool.Address(v)
	require.NoError(err)
	require.Equal(codec.MustAddressBech32(consts.HRP, p), info.Pool)
	require.Equal(uint16(30), info.SwapFeeBps)
	require.Len(info.Tokens, 2)
	require.Equal("0.800000000000000000", info.Tokens[0].Weight)
	require.Equal("4100.000000000", info.Tokens[0].Reserve)
	require.NotZero(info.Invariant)
}

func TestRunPlanJoinExit(t *testing.T) {
	require := require.New(t)
	n := newTestNode(t)

	steps := setupSteps(n.tokens) + fmt.Sprintf(`
  - description: single sided join
    signer: alice
    actions:
      - type: joinPool
        vault: vault-state:alice
        tokens: [%[1]s, %[2]s]
        amounts: [0, 100000000000]
        minLpOut: 1
    require:
      success: true
  - description: single token exit
    signer: alice
    actions:
      - type: exitPool
        vault: vault-state:alice
        token: %[1]s
        amount: 1000000000
        minAmountOut: 1
    require:
      success: true
`, n.tokens[0], n.tokens[1])

	var out bytes.Buffer
	require.NoError(runPlan(context.Background(), &out, n.node, n.plan(t, steps), n.dir))
	require.Len(decodeResponses(t, &out), 3)

	v, _, err := vault.Address(n.alice)
	require.NoError(err)
	info, err := loadPoolInfo(context.Background(), n.db, v)
	require.NoError(err)
	require.Equal("1100.000000000", info.Tokens[1].Reserve)
	require.NotEqual("4000.000000000", info.Tokens[0].Reserve)
}

func TestRunPlanRequirementFailed(t *testing.T) {
	n := newTestNode(t)

	steps := fmt.Sprintf(`
  - signer: alice
    actions:
      - type: deposit
        vault: vault-state:alice
        token: %s
        amount: 1
    require:
      success: true
`, n.tokens[0])
	err := runPlan(context.Background(), io.Discard, n.node, n.plan(t, steps), n.dir)
	require.ErrorIs(t, err, ErrRequirementFailed)
}

// dropSubmitter executes nothing and reports no results.
type dropSubmitter struct {
	n *node
}

func (d *dropSubmitter) Submit(context.Context, []*chain.Transaction) ([]*chain.Result, error) {
	return nil, nil
}

func (d *dropSubmitter) Registry() (chain.ActionRegistry, chain.AuthRegistry) {
	return d.n.actionRegistry, d.n.authRegistry
}

func TestRunPlanMissingResult(t *testing.T) {
	n := newTestNode(t)

	err := executePlan(context.Background(), io.Discard, n.node, &dropSubmitter{n: n.node}, n.plan(t, setupSteps(n.tokens)), n.dir)
	require.ErrorIs(t, err, ErrUnexpectedResults)
}

func TestServeHandler(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	n := newTestNode(t)

	var out bytes.Buffer
	require.NoError(runPlan(ctx, &out, n.node, n.plan(t, setupSteps(n.tokens)), n.dir))

	handler, err := newServeHandler(n.node, config.Default())
	require.NoError(err)
	server := httptest.NewServer(handler)
	defer server.Close()

	cli := rpc.NewJSONRPCClient(server.URL)
	chainID, err := cli.Network(ctx)
	require.NoError(err)
	require.Equal(n.chainID, chainID)

	v, _, err := vault.Address(n.alice)
	require.NoError(err)
	remote, err := remotePoolInfoFrom(ctx, cli, v)
	require.NoError(err)
	require.Equal(weightedmath.OneUint64/5*4, remote.PoolState.Weights[0])
	require.Equal(uint64(4_000_000_000_000), remote.Reserves[0])

	resp, err := server.Client().Get(server.URL + metricsEndpoint)
	require.NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.Contains(string(body), "pebble")
}

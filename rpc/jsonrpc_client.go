// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/gorilla/rpc/v2/json2"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/codec"
)

type JSONRPCClient struct {
	uri    string
	client *http.Client

	chainID ids.ID
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	return &JSONRPCClient{uri: uri, client: http.DefaultClient}
}

func (cli *JSONRPCClient) sendRequest(ctx context.Context, method string, params interface{}, reply interface{}) error {
	if params == nil {
		params = struct{}{}
	}
	body, err := json2.EncodeClientRequest(Name+"."+method, params)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cli.uri, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := cli.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to issue request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status code %d", ErrUnexpectedReply, resp.StatusCode)
	}
	return json2.DecodeClientResponse(resp.Body, reply)
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.sendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Network(ctx context.Context) (ids.ID, error) {
	if cli.chainID != ids.Empty {
		return cli.chainID, nil
	}

	resp := new(NetworkReply)
	err := cli.sendRequest(
		ctx,
		"network",
		nil,
		resp,
	)
	if err != nil {
		return ids.Empty, err
	}
	cli.chainID = resp.ChainID
	return resp.ChainID, nil
}

func (cli *JSONRPCClient) Vault(ctx context.Context, vault codec.Address) (*VaultReply, error) {
	resp := new(VaultReply)
	err := cli.sendRequest(
		ctx,
		"vault",
		&VaultArgs{Vault: vault},
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) Pool(ctx context.Context, pool codec.Address) (*PoolReply, error) {
	resp := new(PoolReply)
	err := cli.sendRequest(
		ctx,
		"pool",
		&PoolArgs{Pool: pool},
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) Balance(ctx context.Context, token codec.Address, owner codec.Address) (uint64, error) {
	resp := new(BalanceReply)
	err := cli.sendRequest(
		ctx,
		"balance",
		&BalanceArgs{Token: token, Owner: owner},
		resp,
	)
	return resp.Amount, err
}

func (cli *JSONRPCClient) Quote(ctx context.Context, args *QuoteArgs) (*QuoteReply, error) {
	resp := new(QuoteReply)
	err := cli.sendRequest(
		ctx,
		"quote",
		args,
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) Derive(ctx context.Context, seed string, ref codec.Address) (codec.Address, uint8, error) {
	resp := new(DeriveReply)
	err := cli.sendRequest(
		ctx,
		"derive",
		&DeriveArgs{Seed: seed, Ref: ref},
		resp,
	)
	return resp.Address, resp.Bump, err
}

func (cli *JSONRPCClient) SubmitTx(ctx context.Context, tx *chain.Transaction) (*SubmitTxReply, error) {
	resp := new(SubmitTxReply)
	err := cli.sendRequest(
		ctx,
		"submitTx",
		&SubmitTxArgs{Tx: tx.Bytes()},
		resp,
	)
	return resp, err
}

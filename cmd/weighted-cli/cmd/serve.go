// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/weightedvm/config"
	"github.com/ava-labs/weightedvm/rpc"
)

const (
	metricsEndpoint = "/metrics"
	readTimeout     = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve JSON-RPC, the result stream and metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := openNode(log, cfg)
		if err != nil {
			return err
		}
		defer n.Close()
		return serve(cmd.Context(), n, cfg)
	},
}

func newServeHandler(n *node, cfg config.Config) (http.Handler, error) {
	stream, err := rpc.NewWebSocketServer(n.log, cfg.Stream)
	if err != nil {
		return nil, err
	}
	submitter := rpc.NewProcessorSubmitter(n.processor, n.actionRegistry, n.authRegistry, stream)
	service := rpc.NewJSONRPCServer(n.log, trace.Noop, n.chainID, n.db, submitter)
	api, err := rpc.NewHandler(service, stream, cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.Handle(metricsEndpoint, promhttp.HandlerFor(n.gatherers, promhttp.HandlerOpts{}))
	router.PathPrefix("/").Handler(api)
	return router, nil
}

func serve(ctx context.Context, n *node, cfg config.Config) error {
	addr := cfg.RPCAddress
	handler, err := newServeHandler(n, cfg)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n.log.Info("serving",
			zap.String("addr", addr),
			zap.Stringer("chainID", n.chainID),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

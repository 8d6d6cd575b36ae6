// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	"github.com/rs/cors"
)

func NewJSONRPCHandler(
	name string,
	service interface{},
) (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	return server, server.RegisterService(service, name)
}

// NewHandler routes the JSON-RPC service and the result stream. JSON-RPC
// responses are gzipped when the client accepts it; the websocket route is
// left untouched so it can be hijacked.
func NewHandler(service *JSONRPCServer, stream *WebSocketServer, allowedOrigins []string) (http.Handler, error) {
	jsonrpc, err := NewJSONRPCHandler(Name, service)
	if err != nil {
		return nil, err
	}
	r := mux.NewRouter()
	r.Handle(JSONRPCEndpoint, gziphandler.GzipHandler(jsonrpc)).Methods(http.MethodPost)
	if stream != nil {
		r.Handle(WebSocketEndpoint, stream)
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	})
	return c.Handler(r), nil
}

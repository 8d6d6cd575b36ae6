// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/weightedvm/chain"
	"github.com/ava-labs/weightedvm/pubsub"
	"github.com/ava-labs/weightedvm/utils"
)

var _ http.Handler = (*WebSocketServer)(nil)

// WebSocketServer streams committed results to every connected client and
// keeps the most recent ones for replay.
type WebSocketServer struct {
	log logging.Logger
	s   *pubsub.Server

	recent *utils.Recent[[]byte]
}

func NewWebSocketServer(log logging.Logger, cfg pubsub.ServerConfig) (*WebSocketServer, error) {
	recent, err := utils.NewRecent[[]byte](recentResults, nil)
	if err != nil {
		return nil, err
	}
	w := &WebSocketServer{
		log:    log,
		recent: recent,
	}
	w.s = pubsub.New(log, cfg, w.MessageCallback())
	return w, nil
}

func (w *WebSocketServer) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	w.s.ServeHTTP(rw, r)
}

// MessageCallback handles client requests.
func (w *WebSocketServer) MessageCallback() pubsub.Callback {
	return func(msg []byte, c *pubsub.Connection) {
		if len(msg) == 0 {
			w.log.Debug("dropping empty message")
			return
		}
		switch msg[0] {
		case RecentMode:
			for _, item := range w.recent.Items() {
				if !c.Send(item) {
					return
				}
			}
		default:
			w.log.Debug("unknown message mode",
				zap.Uint8("mode", msg[0]),
			)
		}
	}
}

// PublishResults sends [results] to all clients in order.
func (w *WebSocketServer) PublishResults(results []*chain.Result) {
	for _, r := range results {
		msg, err := PackResultMessage(r)
		if err != nil {
			w.log.Error("failed to pack result",
				zap.Stringer("txID", r.TxID),
				zap.Error(err),
			)
			continue
		}
		w.recent.Insert(msg)
		w.s.Broadcast(msg)
	}
}

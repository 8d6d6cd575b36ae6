// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var _ http.Handler = (*Server)(nil)

// Server upgrades HTTP requests to websocket connections and fans messages
// out to them. Mount it on a router; it does not listen by itself.
type Server struct {
	log      logging.Logger
	config   ServerConfig
	upgrader websocket.Upgrader
	conns    *Connections
	callback Callback
}

// New returns a new Server. [callback] handles messages sent by clients
// and may be nil.
func New(log logging.Logger, config ServerConfig, callback Callback) *Server {
	return &Server{
		log:    log,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		conns:    NewConnections(),
		callback: callback,
	}
}

// ServeHTTP adds a connection to the server and starts its read and write
// pumps.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	conn := &Connection{
		s:    s,
		conn: wsConn,
		mb: NewMessageBuffer(
			s.log,
			s.config.MaxPendingMessages,
			s.config.MaxWriteMessageSize,
			s.config.MaxMessageWait,
		),
	}
	conn.active.Store(true)
	s.conns.Add(conn)

	go conn.writeLoop()
	go conn.readLoop()
}

// Publish sends [msg] to every connection of [toConns] still held by [s].
func (s *Server) Publish(msg []byte, toConns *Connections) {
	for _, conn := range toConns.Conns() {
		if !s.conns.Has(conn) {
			continue
		}
		if !conn.Send(msg) {
			s.log.Verbo(
				"dropping message to subscribed connection due to too many pending messages",
			)
		}
	}
}

// Broadcast sends [msg] to every connection.
func (s *Server) Broadcast(msg []byte) {
	s.Publish(msg, s.conns)
}

// Connections are the live connections of [s].
func (s *Server) Connections() *Connections {
	return s.conns
}

func (s *Server) removeConnection(conn *Connection) {
	s.conns.Remove(conn)
}

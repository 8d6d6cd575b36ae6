// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ava-labs/weightedvm/pubsub"
)

type WebSocketClient struct {
	conn *websocket.Conn
	cfg  pubsub.ServerConfig

	wl      sync.Mutex
	rl      sync.Mutex
	pending [][]byte
	cl      sync.Once
}

// NewWebSocketClient dials the result stream of the server at [uri].
func NewWebSocketClient(uri string) (*WebSocketClient, error) {
	uri = strings.TrimSuffix(uri, "/")
	uri = strings.Replace(uri, "http", "ws", 1) + WebSocketEndpoint
	conn, resp, err := websocket.DefaultDialer.Dial(uri, nil)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()
	return &WebSocketClient{conn: conn, cfg: pubsub.NewDefaultServerConfig()}, nil
}

// RequestRecent asks the server to replay its recent results.
func (c *WebSocketClient) RequestRecent() error {
	c.wl.Lock()
	defer c.wl.Unlock()

	msg, err := pubsub.CreateBatchMessage(c.cfg.MaxReadMessageSize, [][]byte{{RecentMode}})
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, msg)
}

// ListenResult blocks until the next result arrives.
func (c *WebSocketClient) ListenResult() (*StreamedResult, error) {
	c.rl.Lock()
	defer c.rl.Unlock()

	for len(c.pending) == 0 {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		msgs, err := pubsub.ParseBatchMessage(c.cfg.MaxWriteMessageSize, msg)
		if err != nil {
			return nil, err
		}
		c.pending = msgs
	}
	msg := c.pending[0]
	c.pending = c.pending[1:]
	return UnpackResultMessage(msg)
}

func (c *WebSocketClient) Close() error {
	var err error
	c.cl.Do(func() {
		err = c.conn.Close()
	})
	return err
}

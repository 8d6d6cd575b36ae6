// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"io"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Callback handles one message received on [*Connection].
type Callback func([]byte, *Connection)

// Connection is a websocket client of a [Server].
type Connection struct {
	s    *Server
	conn *websocket.Conn
	mb   *MessageBuffer

	active atomic.Bool
}

func (c *Connection) isActive() bool {
	return c.active.Load()
}

// deactivate stops accepting messages. Only the first call closes the
// buffer, which ends the write loop.
func (c *Connection) deactivate() {
	if c.active.Swap(false) {
		_ = c.mb.Close()
	}
}

// close is called by both loops so errors are ignored.
func (c *Connection) close() {
	c.s.removeConnection(c)
	c.deactivate()
	_ = c.conn.Close()
}

func (c *Connection) debug(reason string, err error) {
	c.s.log.Debug("closing websocket connection",
		zap.Stringer("remote", c.conn.RemoteAddr()),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

// Send queues [msg] and returns whether it was accepted.
func (c *Connection) Send(msg []byte) bool {
	if !c.isActive() {
		return false
	}
	if err := c.mb.Send(msg); err != nil {
		c.s.log.Debug("dropping websocket message",
			zap.Int("size", len(msg)),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (c *Connection) extendReadDeadline(string) error {
	return c.conn.SetReadDeadline(time.Now().Add(c.s.config.PongWait))
}

// readBatch blocks for the next batch sent by the peer.
func (c *Connection) readBatch() ([][]byte, error) {
	_, reader, err := c.conn.NextReader()
	if err != nil {
		return nil, err
	}
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	return ParseBatchMessage(c.s.config.MaxReadMessageSize, b)
}

// readLoop is the only reader of the connection.
func (c *Connection) readLoop() {
	defer c.close()

	c.conn.SetReadLimit(int64(c.s.config.MaxReadMessageSize))
	if err := c.extendReadDeadline(""); err != nil {
		c.debug("read deadline", err)
		return
	}
	c.conn.SetPongHandler(c.extendReadDeadline)
	for {
		msgs, err := c.readBatch()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.debug("unexpected close", err)
			}
			return
		}
		if c.s.callback == nil {
			continue
		}
		for _, msg := range msgs {
			c.s.callback(msg, c)
		}
	}
}

func (c *Connection) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.s.config.WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// writeLoop is the only writer of the connection. It exits once the
// message buffer is closed.
func (c *Connection) writeLoop() {
	ping := time.NewTicker(c.s.config.PingPeriod)
	defer func() {
		ping.Stop()
		c.close()
	}()

	for {
		select {
		case batch, ok := <-c.mb.Queue:
			if !ok {
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			if err := c.write(websocket.BinaryMessage, batch); err != nil {
				c.debug("write", err)
				return
			}
		case <-ping.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.debug("ping", err)
				return
			}
		}
	}
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"sync"

	"github.com/ava-labs/avalanchego/utils/set"
)

// Connections is a set of connections safe for concurrent use. The zero
// value is empty.
type Connections struct {
	l     sync.RWMutex
	conns set.Set[*Connection]
}

func NewConnections(conns ...*Connection) *Connections {
	return &Connections{conns: set.Of(conns...)}
}

// Conns is a snapshot of the connections.
func (c *Connections) Conns() []*Connection {
	c.l.RLock()
	defer c.l.RUnlock()
	return c.conns.List()
}

func (c *Connections) Has(conn *Connection) bool {
	c.l.RLock()
	defer c.l.RUnlock()
	return c.conns.Contains(conn)
}

func (c *Connections) Len() int {
	c.l.RLock()
	defer c.l.RUnlock()
	return c.conns.Len()
}

func (c *Connections) Add(conns ...*Connection) {
	c.l.Lock()
	defer c.l.Unlock()
	c.conns.Add(conns...)
}

func (c *Connections) Remove(conns ...*Connection) {
	c.l.Lock()
	defer c.l.Unlock()
	c.conns.Remove(conns...)
}

// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"io"
	"sync"
)

// A Transport knows how to establish a bidirectional JSON-RPC Connection to
// an MCP peer. Transports are used once, by a single Server or Client, to
// create one Connection per logical session.
type Transport interface {
	// Connect establishes the connection, returning a Connection ready for
	// use.
	Connect(ctx context.Context) (Connection, error)
}

// A Connection is a logical bidirectional JSON-RPC connection: a single
// transport-level channel over which both peers may send requests,
// notifications, and responses.
type Connection interface {
	// Read reads the next message sent by the peer, blocking until one is
	// available. It returns io.EOF when the connection is closed.
	Read(ctx context.Context) (JSONRPCMessage, error)
	// Write sends a message to the peer.
	Write(ctx context.Context, msg JSONRPCMessage) error
	// SessionID returns the logical session ID assigned to this connection,
	// or the empty string if the transport doesn't use one (stdio, or the
	// in-memory transport).
	SessionID() string
	// Close terminates the connection. Calling Close concurrently with Read
	// or Write must unblock them with an error.
	io.Closer
}

// memConn implements Connection over in-process channels, passing messages
// directly without marshalling, which is both faster and simpler to debug
// than looping messages through a pipe and the JSON codec.
//
// The message channels themselves are never closed (closing a channel that
// may still have a pending send in flight would panic); instead, each side
// has its own closed signal, and holds the peer's, so that closing either
// end unblocks both sides' Read and Write.
type memConn struct {
	id         string
	send       chan<- JSONRPCMessage
	recv       <-chan JSONRPCMessage
	closeOnce  sync.Once
	closed     chan struct{} // closed when this side calls Close
	peerClosed chan struct{} // closed when the peer calls Close
}

func (c *memConn) SessionID() string { return c.id }

func (c *memConn) Read(ctx context.Context) (JSONRPCMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, io.EOF
	case <-c.peerClosed:
		return nil, io.EOF
	case msg, ok := <-c.recv:
		if !ok {
			return nil, io.EOF
		}
		return msg, nil
	}
}

func (c *memConn) Write(ctx context.Context, msg JSONRPCMessage) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closed:
		return ErrConnectionClosed
	case <-c.peerClosed:
		return ErrConnectionClosed
	case c.send <- msg:
		return nil
	}
}

func (c *memConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// memTransport is a Transport that always returns the same pre-connected
// Connection; it exists so that NewInMemoryTransports can satisfy the
// Transport interface on both ends of the pipe.
type memTransport struct {
	conn *memConn
}

func (t *memTransport) Connect(context.Context) (Connection, error) { return t.conn, nil }

// NewInMemoryTransports returns two Transports connected to each other by
// in-process channels, suitable for tests and for embedding a client and
// server in the same process.
func NewInMemoryTransports() (client, server Transport) {
	c2s := make(chan JSONRPCMessage, 16)
	s2c := make(chan JSONRPCMessage, 16)
	clientClosed := make(chan struct{})
	serverClosed := make(chan struct{})
	clientConn := &memConn{send: c2s, recv: s2c, closed: clientClosed, peerClosed: serverClosed}
	serverConn := &memConn{send: s2c, recv: c2s, closed: serverClosed, peerClosed: clientClosed}
	return &memTransport{conn: clientConn}, &memTransport{conn: serverConn}
}

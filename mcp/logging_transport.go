// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gomcp/core/internal/jsonrpc2"
)

// A LoggingTransport wraps a Transport, logging the JSON-RPC wire messages
// read from and written to the underlying Connection to Writer. It is
// intended for debugging: wrap either end of an [NewInMemoryTransports] pair,
// a [StdioTransport], or any other Transport.
type LoggingTransport struct {
	// Transport is the wrapped transport.
	Transport Transport
	// Writer receives one line per message, prefixed with "read: " or
	// "write: ".
	Writer io.Writer
}

// NewLoggingTransport returns a LoggingTransport that logs t's traffic to w.
func NewLoggingTransport(t Transport, w io.Writer) *LoggingTransport {
	return &LoggingTransport{Transport: t, Writer: w}
}

// Connect implements the Transport interface.
func (t *LoggingTransport) Connect(ctx context.Context) (Connection, error) {
	conn, err := t.Transport.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &loggingConn{Connection: conn, w: t.Writer}, nil
}

// loggingConn wraps a Connection, logging every message that passes through
// Read or Write.
type loggingConn struct {
	Connection
	mu sync.Mutex
	w  io.Writer
}

func (c *loggingConn) Read(ctx context.Context) (JSONRPCMessage, error) {
	msg, err := c.Connection.Read(ctx)
	if err == nil {
		c.log("read", msg)
	}
	return msg, err
}

func (c *loggingConn) Write(ctx context.Context, msg JSONRPCMessage) error {
	c.log("write", msg)
	return c.Connection.Write(ctx, msg)
}

func (c *loggingConn) log(dir string, msg JSONRPCMessage) {
	data, err := jsonrpc2.EncodeMessage(msg)
	if err != nil {
		data = []byte(fmt.Sprintf("<!%s>", err))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%s: %s\n", dir, data)
}

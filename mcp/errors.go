// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"errors"

	"github.com/gomcp/core/jsonrpc"
)

// Standard JSON-RPC 2.0 error codes, plus the MCP-specific extensions,
// re-exported here so that callers working with Tool and Session errors
// don't need to import the jsonrpc package directly.
const (
	CodeParseError     = jsonrpc.CodeParseError
	CodeInvalidRequest = jsonrpc.CodeInvalidRequest
	CodeMethodNotFound = jsonrpc.CodeMethodNotFound
	CodeInvalidParams  = jsonrpc.CodeInvalidParams
	CodeInternalError  = jsonrpc.CodeInternalError
	CodeCancelled      = jsonrpc.CodeCancelled

	// CodeResourceNotFound is returned when a client asks to read a resource
	// URI the server doesn't recognize.
	CodeResourceNotFound int64 = -32002
)

var (
	// ErrConnectionClosed is returned by Session methods, and by in-flight
	// calls, once the session's connection has been closed, locally or by
	// the peer.
	ErrConnectionClosed = errors.New("mcp: connection closed")

	// ErrSessionMissing is returned by StreamableServerTransport and client
	// session methods when the server no longer recognizes the session ID
	// presented by the client, for example because the server has
	// restarted or evicted the session.
	ErrSessionMissing = errors.New("mcp: session not found")

	// ErrNoSession is returned by SessionStore.Load when no session state
	// has been stored for the given ID.
	ErrNoSession = errors.New("mcp: no session")
)

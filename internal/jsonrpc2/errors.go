// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonrpc2

import "github.com/gomcp/core/jsonrpc"

// WireError is the error carrier exchanged on the wire, re-exported from the
// transport-independent jsonrpc package so that callers working at the
// internal/jsonrpc2 layer don't need to import both.
type WireError = jsonrpc.Error

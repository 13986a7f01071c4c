// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

// chainMiddleware wraps base in mws, so that mws[0] is the outermost layer
// (called first on the way in, last on the way out) and base is innermost.
func chainMiddleware(base MethodHandler, mws []Middleware) MethodHandler {
	h := base
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

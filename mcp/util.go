// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
)

// assert panics with msg if cond is false; used to guard internal
// invariants that a caller cannot violate through the public API.
func assert(cond bool, msg string) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: %s", msg))
	}
}

// newSessionID returns a fresh, high-entropy opaque string suitable for use
// as an Mcp-Session-Id: unguessable, and distinct across concurrent
// sessions with overwhelming probability.
func newSessionID() string {
	return rand.Text()
}

// remarshal round-trips from through JSON into to, which must be a pointer.
// Used to convert between two Go types that share a JSON shape but not a Go
// type (e.g. applying a schema-inferred struct's tags to a map[string]any
// payload).
func remarshal(from, to any) error {
	data, err := json.Marshal(from)
	if err != nil {
		return fmt.Errorf("remarshal: marshal: %w", err)
	}
	if err := json.Unmarshal(data, to); err != nil {
		return fmt.Errorf("remarshal: unmarshal: %w", err)
	}
	return nil
}

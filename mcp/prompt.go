// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import "context"

// A PromptHandler returns the content of a prompt, given arguments supplied
// by the client.
type PromptHandler func(ctx context.Context, req *GetPromptRequest) (*GetPromptResult, error)

// serverPrompt associates a Prompt with its handler.
type serverPrompt struct {
	prompt  *Prompt
	handler PromptHandler
}

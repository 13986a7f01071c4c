// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"encoding/json"
	"fmt"

	internaljson "github.com/gomcp/core/internal/json"
)

// ModelHint nudges model selection toward a substring match on a model
// name; the client may reinterpret it against a different provider's
// catalog entirely.
type ModelHint struct {
	Name string `json:"name,omitempty"`
}

// ModelPreferences expresses a server's (purely advisory) priorities for
// model selection during sampling; the client decides how, or whether, to
// honor them.
type ModelPreferences struct {
	CostPriority float64 `json:"costPriority,omitempty"`
	// Hints are evaluated in order; the first match wins, and takes
	// precedence over the numeric priorities below.
	Hints                []*ModelHint `json:"hints,omitempty"`
	IntelligencePriority float64      `json:"intelligencePriority,omitempty"`
	SpeedPriority        float64      `json:"speedPriority,omitempty"`
}

// CreateMessageParams requests that the client sample from an LLM on the
// server's behalf.
type CreateMessageParams struct {
	Meta `json:"_meta,omitempty"`
	// IncludeContext requests attaching context from MCP servers to the
	// prompt; "none" (default), "thisServer", and "allServers" (the latter
	// two soft-deprecated) are recognized, and a client may ignore it.
	IncludeContext   string             `json:"includeContext,omitempty"`
	MaxTokens        int64              `json:"maxTokens"`
	Messages         []*SamplingMessage `json:"messages"`
	Metadata         any                `json:"metadata,omitempty"`
	ModelPreferences *ModelPreferences  `json:"modelPreferences,omitempty"`
	StopSequences    []string           `json:"stopSequences,omitempty"`
	SystemPrompt     string             `json:"systemPrompt,omitempty"`
	Temperature      float64            `json:"temperature,omitempty"`
}

func (x *CreateMessageParams) isParams()              {}
func (x *CreateMessageParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *CreateMessageParams) SetProgressToken(t any) { setProgressToken(x, t) }

// CreateMessageWithToolsParams extends CreateMessageParams with tool
// definitions and tool choice, and lets each message carry several content
// blocks (needed for parallel tool-use/tool-result pairs). Send it with
// [ServerSession.CreateMessageWithTools].
type CreateMessageWithToolsParams struct {
	Meta             `json:"_meta,omitempty"`
	IncludeContext   string               `json:"includeContext,omitempty"`
	MaxTokens        int64                `json:"maxTokens"`
	Messages         []*SamplingMessageV2 `json:"messages"`
	Metadata         any                  `json:"metadata,omitempty"`
	ModelPreferences *ModelPreferences    `json:"modelPreferences,omitempty"`
	StopSequences    []string             `json:"stopSequences,omitempty"`
	SystemPrompt     string               `json:"systemPrompt,omitempty"`
	Temperature      float64              `json:"temperature,omitempty"`
	Tools            []*Tool              `json:"tools,omitempty"`
	ToolChoice       *ToolChoice          `json:"toolChoice,omitempty"`
}

func (x *CreateMessageWithToolsParams) isParams()              {}
func (x *CreateMessageWithToolsParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *CreateMessageWithToolsParams) SetProgressToken(t any) { setProgressToken(x, t) }

// toBase downgrades to a CreateMessageParams by taking each message's sole
// content block, dropping Tools/ToolChoice. Fails if any message carries
// more than one block, since SamplingMessage has room for exactly one.
func (p *CreateMessageWithToolsParams) toBase() (*CreateMessageParams, error) {
	msgs := make([]*SamplingMessage, 0, len(p.Messages))
	for _, m := range p.Messages {
		if len(m.Content) > 1 {
			return nil, fmt.Errorf("message has %d content blocks; use CreateMessageWithToolsHandler to support multiple content", len(m.Content))
		}
		var content Content
		if len(m.Content) > 0 {
			content = m.Content[0]
		}
		msgs = append(msgs, &SamplingMessage{Content: content, Role: m.Role})
	}
	return &CreateMessageParams{
		Meta:             p.Meta,
		IncludeContext:   p.IncludeContext,
		MaxTokens:        p.MaxTokens,
		Messages:         msgs,
		Metadata:         p.Metadata,
		ModelPreferences: p.ModelPreferences,
		StopSequences:    p.StopSequences,
		SystemPrompt:     p.SystemPrompt,
		Temperature:      p.Temperature,
	}, nil
}

// SamplingMessage is a single-block message exchanged during sampling: text,
// image, audio, or tool_use for an assistant message; text, image, audio, or
// tool_result for a user message.
type SamplingMessage struct {
	Content Content `json:"content"`
	Role    Role    `json:"role"`
}

var samplingMessageAllow = map[string]bool{
	string(blockText): true, string(blockImage): true, string(blockAudio): true,
	string(blockToolUse): true, string(blockToolResult): true,
}

func (m *SamplingMessage) UnmarshalJSON(data []byte) error {
	type alias SamplingMessage
	var wire struct {
		alias
		Content *rawBlock `json:"content"`
	}
	if err := internaljson.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := decodeBlock(wire.Content, samplingMessageAllow)
	if err != nil {
		return err
	}
	wire.alias.Content = content
	*m = SamplingMessage(wire.alias)
	return nil
}

// SamplingMessageV2 is the 2025-11-25 successor to SamplingMessage, carrying
// an array of content blocks so a single message can hold parallel
// tool_use/tool_result pairs. It will replace SamplingMessage outright in a
// future major version.
//
// A single-element Content marshals as a bare object, for compatibility
// with peers expecting the pre-array wire shape; the reverse is also
// accepted when unmarshaling.
type SamplingMessageV2 struct {
	Content []Content `json:"content"`
	Role    Role      `json:"role"`
}

var samplingWithToolsAllow = map[string]bool{
	string(blockText): true, string(blockImage): true, string(blockAudio): true,
	string(blockToolUse): true, string(blockToolResult): true,
}

func (m *SamplingMessageV2) MarshalJSON() ([]byte, error) {
	if len(m.Content) == 1 {
		return json.Marshal(&SamplingMessage{Content: m.Content[0], Role: m.Role})
	}
	type alias SamplingMessageV2
	return json.Marshal((*alias)(m))
}

func (m *SamplingMessageV2) UnmarshalJSON(data []byte) error {
	type alias SamplingMessageV2
	var wire struct {
		alias
		Content json.RawMessage `json:"content"`
	}
	if err := internaljson.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := decodeContentList(wire.Content, samplingWithToolsAllow)
	if err != nil {
		return err
	}
	wire.alias.Content = content
	*m = SamplingMessageV2(wire.alias)
	return nil
}

// CreateMessageResult is the client's reply to sampling/createMessage. A
// client should surface the sampled message to its user before replying, so
// they can review it (human in the loop) and veto sending it to the server.
type CreateMessageResult struct {
	Meta    `json:"_meta,omitempty"`
	Content Content `json:"content"`
	Model   string  `json:"model"`
	Role    Role    `json:"role"`
	// StopReason is one of "endTurn", "stopSequence", "maxTokens", or
	// "toolUse", when known.
	StopReason string `json:"stopReason,omitempty"`
}

func (*CreateMessageResult) isResult() {}

var createMessageResultAllow = map[string]bool{
	string(blockText): true, string(blockImage): true, string(blockAudio): true,
}

func (r *CreateMessageResult) UnmarshalJSON(data []byte) error {
	type alias CreateMessageResult
	var wire struct {
		alias
		Content *rawBlock `json:"content"`
	}
	if err := internaljson.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := decodeBlock(wire.Content, createMessageResultAllow)
	if err != nil {
		return err
	}
	wire.alias.Content = content
	*r = CreateMessageResult(wire.alias)
	return nil
}

// CreateMessageWithToolsResult answers a sampling request that included
// tools. Content is a slice so the model can return several tool_use blocks
// for parallel tool calls in one reply. A lone content object on the wire
// is accepted and wrapped in a one-element slice.
//
// Use [ServerSession.CreateMessageWithTools] to issue the matching request.
type CreateMessageWithToolsResult struct {
	Meta       `json:"_meta,omitempty"`
	Content    []Content `json:"content"`
	Model      string    `json:"model"`
	Role       Role      `json:"role"`
	StopReason string    `json:"stopReason,omitempty"`
}

func (*CreateMessageWithToolsResult) isResult() {}

// createMessageWithToolsResultAllow excludes tool_result: only assistant
// replies land here, and tool_result is a user-message-only block.
var createMessageWithToolsResultAllow = map[string]bool{
	string(blockText): true, string(blockImage): true, string(blockAudio): true,
	string(blockToolUse): true,
}

func (r *CreateMessageWithToolsResult) MarshalJSON() ([]byte, error) {
	if len(r.Content) == 1 {
		return json.Marshal(&CreateMessageResult{
			Meta:       r.Meta,
			Content:    r.Content[0],
			Model:      r.Model,
			Role:       r.Role,
			StopReason: r.StopReason,
		})
	}
	type alias CreateMessageWithToolsResult
	return json.Marshal((*alias)(r))
}

func (r *CreateMessageWithToolsResult) UnmarshalJSON(data []byte) error {
	type alias CreateMessageWithToolsResult
	var wire struct {
		alias
		Content json.RawMessage `json:"content"`
	}
	if err := internaljson.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := decodeContentList(wire.Content, createMessageWithToolsResultAllow)
	if err != nil {
		return err
	}
	wire.alias.Content = content
	*r = CreateMessageWithToolsResult(wire.alias)
	return nil
}

// toWithTools upgrades a basic CreateMessageResult to the tools-capable
// shape, for [ServerSession.CreateMessageWithTools] when the client has not
// advertised sampling tools and was sent a plain createMessage request.
func (r *CreateMessageResult) toWithTools() *CreateMessageWithToolsResult {
	var content []Content
	if r.Content != nil {
		content = []Content{r.Content}
	}
	return &CreateMessageWithToolsResult{
		Meta:       r.Meta,
		Content:    content,
		Model:      r.Model,
		Role:       r.Role,
		StopReason: r.StopReason,
	}
}

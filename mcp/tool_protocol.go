// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"encoding/json"

	internaljson "github.com/gomcp/core/internal/json"
)

// CallToolParams is sent by a client to invoke a tool by name.
type CallToolParams struct {
	Meta      `json:"_meta,omitempty"`
	Name      string `json:"name"`
	Arguments any    `json:"arguments,omitempty"`
}

// CallToolParamsRaw is the server-side view of a tool call: Arguments is
// left as raw JSON so the tool handler controls its own unmarshaling and
// validation (see [AddTool]).
type CallToolParamsRaw struct {
	Meta      `json:"_meta,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult is the outcome of a tool invocation, returned by
// [ToolHandler] and by the handler [AddTool] builds around a typed handler
// (which fills in most fields automatically; see field docs for what it
// populates).
type CallToolResult struct {
	Meta `json:"_meta,omitempty"`

	// Content is the unstructured result of the call. The handler [AddTool]
	// builds fills this with a JSON text rendering of StructuredContent when
	// the typed handler leaves it unset.
	Content []Content `json:"content"`

	// StructuredContent is the structured result, if any; it must marshal
	// to a JSON object. The handler [AddTool] builds populates this from the
	// typed handler's return value, so typed handlers should leave it unset.
	StructuredContent any `json:"structuredContent,omitempty"`

	// IsError, when true, marks the call as failed. Tool-level failures
	// belong here (with the error text in Content) rather than as a
	// protocol-level error response, so the model can see and react to
	// them; only failures to locate or invoke the tool at all are
	// protocol-level errors.
	IsError bool `json:"isError,omitempty"`

	// err is the error SetError recorded; never marshaled, readable only
	// through getError on the server that produced the result.
	err error
}

// SetError records err as the result of a failed tool call: it renders err
// as text content and sets IsError.
func (r *CallToolResult) SetError(err error) {
	r.Content = []Content{&TextContent{Text: err.Error()}}
	r.IsError = true
	r.err = err
}

// GetError returns the error passed to SetError, or nil. Always nil on the
// client side, since err never crosses the wire.
func (r *CallToolResult) GetError() error {
	return r.err
}

// getError is the unexported form of GetError used by server-side sending
// middleware, which runs before the error is erased by marshaling.
func (r *CallToolResult) getError() error {
	return r.err
}

func (*CallToolResult) isResult() {}

func (x *CallToolResult) UnmarshalJSON(data []byte) error {
	type alias CallToolResult
	var wire struct {
		alias
		Content []*rawBlock `json:"content"`
	}
	if err := internaljson.Unmarshal(data, &wire); err != nil {
		return err
	}
	content, err := decodeBlocks(wire.Content, nil)
	if err != nil {
		return err
	}
	wire.alias.Content = content
	*x = CallToolResult(wire.alias)
	return nil
}

func (x *CallToolParams) isParams()              {}
func (x *CallToolParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *CallToolParams) SetProgressToken(t any) { setProgressToken(x, t) }

func (x *CallToolParamsRaw) isParams()              {}
func (x *CallToolParamsRaw) GetProgressToken() any  { return getProgressToken(x) }
func (x *CallToolParamsRaw) SetProgressToken(t any) { setProgressToken(x, t) }

// Tool describes a tool the server exposes, including its JSON Schema
// input/output contracts.
type Tool struct {
	Meta        `json:"_meta,omitempty"`
	Annotations *ToolAnnotations `json:"annotations,omitempty"`
	Description string           `json:"description,omitempty"`

	// InputSchema is an opaque JSON Schema document describing the expected
	// arguments. [AddTool] infers and validates against this using
	// github.com/google/jsonschema-go, which supports the 2020-12 draft;
	// use [Server.AddTool] directly to bring your own validation.
	InputSchema any `json:"inputSchema"`

	Name string `json:"name"`

	// OutputSchema, if set, constrains CallToolResult.StructuredContent the
	// same way InputSchema constrains Arguments.
	OutputSchema any    `json:"outputSchema,omitempty"`
	Title        string `json:"title,omitempty"`
	Icons        []Icon `json:"icons,omitempty"`
}

// ToolAnnotations are hints about tool behavior, not guarantees. A client
// must not base tool-use decisions on annotations from an untrusted server.
type ToolAnnotations struct {
	// DestructiveHint: the tool may perform destructive updates (meaningful
	// only when ReadOnlyHint is false). Default true.
	DestructiveHint *bool `json:"destructiveHint,omitempty"`
	// IdempotentHint: repeated calls with identical arguments have no
	// additional effect (meaningful only when ReadOnlyHint is false).
	IdempotentHint bool `json:"idempotentHint,omitempty"`
	// OpenWorldHint: the tool interacts with an open-ended set of external
	// entities (e.g. web search) rather than a closed domain. Default true.
	OpenWorldHint *bool `json:"openWorldHint,omitempty"`
	// ReadOnlyHint: the tool never modifies its environment.
	ReadOnlyHint bool   `json:"readOnlyHint,omitempty"`
	Title        string `json:"title,omitempty"`
}

// ToolChoice steers tool use during a sampling request.
type ToolChoice struct {
	// Mode is one of "auto" (default), "required", or "none".
	Mode string `json:"mode,omitempty"`
}

type ToolListChangedParams struct {
	Meta `json:"_meta,omitempty"`
}

func (x *ToolListChangedParams) isParams()              {}
func (x *ToolListChangedParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *ToolListChangedParams) SetProgressToken(t any) { setProgressToken(x, t) }

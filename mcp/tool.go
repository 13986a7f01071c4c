// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/gomcp/core/jsonrpc"
)

// A ToolHandler handles a call to tools/call. req.Params.Arguments holds the
// raw JSON arguments sent by the client; the handler is responsible for
// unmarshaling and validating them itself. Most tools should instead be
// registered with the generic [AddTool], which takes care of schema
// inference, unmarshaling, and validation.
type ToolHandler func(ctx context.Context, req *CallToolRequest) (*CallToolResult, error)

// A TypedToolHandler handles a call to tools/call with schema-validated,
// typed arguments and a typed structured result.
type TypedToolHandler[In, Out any] func(ctx context.Context, req *CallToolRequest, args In) (*CallToolResult, Out, error)

// A serverTool is a tool definition bound to a handler.
type serverTool struct {
	tool                           *Tool
	handler                        ToolHandler
	inputResolved, outputResolved  *jsonschema.Resolved
}

// newServerTool builds a serverTool from a raw handler, resolving the tool's
// input/output schemas if present. It performs no schema inference: h is
// responsible for interpreting req.Params.Arguments.
func newServerTool(t *Tool, h ToolHandler) (*serverTool, error) {
	st := &serverTool{tool: t, handler: h}
	if h == nil {
		st.handler = func(context.Context, *CallToolRequest) (*CallToolResult, error) { return &CallToolResult{}, nil }
	}
	var err error
	if s, ok := t.InputSchema.(*jsonschema.Schema); ok && s != nil {
		st.inputResolved, err = s.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
		if err != nil {
			return nil, fmt.Errorf("input schema: %w", err)
		}
	}
	if s, ok := t.OutputSchema.(*jsonschema.Schema); ok && s != nil {
		st.outputResolved, err = s.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
		if err != nil {
			return nil, fmt.Errorf("output schema: %w", err)
		}
	}
	return st, nil
}

// newTypedServerTool creates a serverTool from a tool and a typed handler.
// If the tool doesn't have an input schema, one is inferred from In. If the
// tool doesn't have an output schema and Out is not the empty interface, one
// is inferred from Out. Both inferred schemas must describe a JSON object,
// since tool arguments and structured content are always objects.
func newTypedServerTool[In, Out any](t *Tool, h TypedToolHandler[In, Out]) (*serverTool, error) {
	return newTypedServerToolCached(t, h, nil)
}

// newTypedServerToolCached is newTypedServerTool, threading a SchemaCache
// (which may be nil) through to setSchema so that repeated registrations of
// the same tool type can skip re-inference and re-resolution.
func newTypedServerToolCached[In, Out any](t *Tool, h TypedToolHandler[In, Out], cache *schemaCache) (*serverTool, error) {
	if t.InputSchema != nil {
		if _, ok := t.InputSchema.(*jsonschema.Schema); !ok {
			return nil, fmt.Errorf("tool input schema must be a *jsonschema.Schema, got %T", t.InputSchema)
		}
	}
	var inputResolved *jsonschema.Resolved
	inputSchema, err := setSchema[In](&t.InputSchema, &inputResolved, cache)
	if err != nil {
		return nil, fmt.Errorf("inferring input schema: %w", err)
	}
	if inputSchema.Type != "" && inputSchema.Type != "object" {
		return nil, fmt.Errorf("tool input type must be an object, got %q", inputSchema.Type)
	}

	hasOut := reflect.TypeFor[Out]() != reflect.TypeFor[any]()
	if t.OutputSchema != nil {
		if _, ok := t.OutputSchema.(*jsonschema.Schema); !ok {
			return nil, fmt.Errorf("tool output schema must be a *jsonschema.Schema, got %T", t.OutputSchema)
		}
	}
	var outputSchema *jsonschema.Schema
	var outputResolved *jsonschema.Resolved
	if hasOut || t.OutputSchema != nil {
		outputSchema, err = setSchema[Out](&t.OutputSchema, &outputResolved, cache)
		if err != nil {
			return nil, fmt.Errorf("inferring output schema: %w", err)
		}
	}
	if outputSchema != nil && outputSchema.Type != "" && outputSchema.Type != "object" {
		return nil, fmt.Errorf("tool output type must be an object, got %q", outputSchema.Type)
	}

	wrapped := func(ctx context.Context, req *CallToolRequest) (*CallToolResult, error) {
		data, err := applySchema(req.Params.Arguments, inputResolved)
		if err != nil {
			return nil, jsonrpcInvalidParams(fmt.Sprintf("validating arguments: %v", err))
		}
		var args In
		if err := json.Unmarshal(data, &args); err != nil {
			return &CallToolResult{
				Content: []Content{&TextContent{Text: fmt.Sprintf("unmarshaling arguments: %v", err)}},
				IsError: true,
			}, nil
		}
		res, out, err := h(ctx, req, args)
		if err != nil {
			var werr *jsonrpc.Error
			if errors.As(err, &werr) {
				// A handler that returns a JSON-RPC error explicitly wants it
				// surfaced as a protocol-level error, not wrapped in a result.
				return nil, werr
			}
			errRes := &CallToolResult{}
			errRes.SetError(err)
			return errRes, nil
		}
		if res == nil {
			res = &CallToolResult{}
		}
		if hasOut || outputResolved != nil {
			outJSON, err := json.Marshal(out)
			if err != nil {
				return nil, fmt.Errorf("marshaling tool output: %w", err)
			}
			outJSON, err = applySchema(outJSON, outputResolved)
			if err != nil {
				return nil, fmt.Errorf("validating tool output: %w", err)
			}
			res.StructuredContent = json.RawMessage(outJSON)
			if res.Content == nil {
				res.Content = []Content{&TextContent{Text: string(outJSON)}}
			}
		}
		return res, nil
	}
	return &serverTool{tool: t, handler: wrapped, inputResolved: inputResolved, outputResolved: outputResolved}, nil
}

// applySchema decodes raw as a generic JSON value, applies resolved's
// defaults, validates the result against resolved, and re-encodes it. If
// resolved is nil, raw is returned unchanged (except that an empty raw is
// normalized to an empty JSON object).
func applySchema(raw json.RawMessage, resolved *jsonschema.Resolved) (json.RawMessage, error) {
	if resolved == nil {
		if len(raw) == 0 {
			return json.RawMessage("{}"), nil
		}
		return raw, nil
	}
	return applySchemaMapBased(raw, resolved)
}

// applySchemaMapBased is the map[string]any-based implementation backing
// applySchema: it does not require a concrete Go type for the JSON value, so
// it works equally for typed tool arguments and untyped values such as
// elicitation responses.
func applySchemaMapBased(raw json.RawMessage, resolved *jsonschema.Resolved) (json.RawMessage, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if resolved == nil {
		return raw, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("unmarshaling: %w", err)
	}
	if err := resolved.ApplyDefaults(&v); err != nil {
		return nil, fmt.Errorf("applying defaults from \n\t%s\nto\n\t%s:\n%w", schemaJSON(resolved.Schema()), raw, err)
	}
	if err := resolved.Validate(v); err != nil {
		return nil, fmt.Errorf("validating\n\t%s\nagainst\n\t%s:\n%w", raw, schemaJSON(resolved.Schema()), err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling: %w", err)
	}
	return out, nil
}

// schemaJSON returns the JSON value for s as a string, or a string
// indicating an error.
func schemaJSON(s *jsonschema.Schema) string {
	m, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("<!%s>", err)
	}
	return string(m)
}

// toolForErr builds a *Tool and raw handler from a TypedToolHandler without
// registering them on a Server, for unit testing schema inference.
func toolForErr[In, Out any](t *Tool, h TypedToolHandler[In, Out]) (*Tool, ToolHandler, error) {
	st, err := newTypedServerTool(t, h)
	if err != nil {
		return nil, nil, err
	}
	return st.tool, st.handler, nil
}

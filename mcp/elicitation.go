// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/gomcp/core/jsonrpc"
)

// allowedElicitFormats are the string formats an elicitation schema property
// may declare, matching the restricted subset of JSON Schema that clients
// are expected to render as a form.
var allowedElicitFormats = map[string]bool{
	"email":     true,
	"uri":       true,
	"date":      true,
	"date-time": true,
}

// validateElicitSchema checks that raw describes a flat object whose
// properties are all primitives, the restricted subset of JSON Schema that
// [ElicitParams.RequestedSchema] must satisfy so that clients can render it
// as a simple form. A nil schema is valid: it imposes no constraints on the
// elicited content.
func validateElicitSchema(raw any) error {
	if raw == nil {
		return nil
	}
	s, ok := raw.(*jsonschema.Schema)
	if !ok {
		return jsonrpcInvalidParams(fmt.Sprintf("requestedSchema must be a *jsonschema.Schema, got %T", raw))
	}
	if s == nil {
		return nil
	}
	if s.Type != "" && s.Type != "object" {
		return jsonrpcInvalidParams(fmt.Sprintf("elicit schema must be of type 'object', got %q", s.Type))
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := validateElicitProperty(name, s.Properties[name]); err != nil {
			return err
		}
	}
	return nil
}

func validateElicitProperty(name string, p *jsonschema.Schema) error {
	if len(p.Properties) > 0 {
		return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q contains nested properties, only primitive properties are allowed", name))
	}
	switch p.Type {
	case "string", "number", "integer", "boolean":
	default:
		return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q has unsupported type %q, only string, number, integer, and boolean are allowed", name, p.Type))
	}

	if p.Type == "string" && p.Format != "" && !allowedElicitFormats[p.Format] {
		return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q has unsupported format %q, only email, uri, date, and date-time are allowed", name, p.Format))
	}

	if p.MinLength != nil && *p.MinLength < 0 {
		return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q has invalid minLength %d, must be non-negative", name, *p.MinLength))
	}
	if p.MaxLength != nil && *p.MaxLength < 0 {
		return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q has invalid maxLength %d, must be non-negative", name, *p.MaxLength))
	}
	if p.MinLength != nil && p.MaxLength != nil && *p.MaxLength < *p.MinLength {
		return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q has maxLength %d less than minLength %d", name, *p.MaxLength, *p.MinLength))
	}

	if p.Minimum != nil && p.Maximum != nil && *p.Maximum < *p.Minimum {
		return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q has maximum %g less than minimum %g", name, *p.Maximum, *p.Minimum))
	}

	if len(p.Default) > 0 {
		if err := validateElicitDefault(name, p); err != nil {
			return err
		}
	}

	if len(p.Enum) > 0 {
		if err := validateElicitEnum(name, p); err != nil {
			return err
		}
	}

	return nil
}

func validateElicitDefault(name string, p *jsonschema.Schema) error {
	switch p.Type {
	case "boolean":
		var b bool
		if err := json.Unmarshal(p.Default, &b); err != nil {
			return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q has invalid default value, must be a bool", name))
		}
	case "string":
		var s string
		if err := json.Unmarshal(p.Default, &s); err != nil {
			return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q has invalid default value, must be a string", name))
		}
	case "integer", "number":
		var n float64
		if err := json.Unmarshal(p.Default, &n); err != nil {
			return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q has default value that cannot be interpreted as an int or float", name))
		}
	}
	return nil
}

func validateElicitEnum(name string, p *jsonschema.Schema) error {
	raw, ok := p.Extra["enumNames"]
	if !ok {
		return nil
	}
	names, ok := raw.([]any)
	if !ok {
		return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q has invalid enumNames type, must be an array", name))
	}
	if len(names) != len(p.Enum) {
		return jsonrpcInvalidParams(fmt.Sprintf("elicit schema property %q has %d enum values but %d enumNames, they must match", name, len(p.Enum), len(names)))
	}
	return nil
}

// validateElicitParams checks the mode-specific constraints on an
// ElicitParams before it is sent: url elicitation requires a URL and
// forbids a requested schema, form elicitation (the default) requires the
// schema to satisfy validateElicitSchema.
func validateElicitParams(p *ElicitParams) error {
	if p.Mode == "url" {
		if p.URL == "" {
			return jsonrpcInvalidParams("URL must be set for URL elicitation")
		}
		if p.RequestedSchema != nil {
			return jsonrpcInvalidParams("requestedSchema must not be set for URL elicitation")
		}
		return nil
	}
	return validateElicitSchema(p.RequestedSchema)
}

// validateElicitContent checks that the content of an accepted elicitation
// result conforms to the schema that was requested, after filling in the
// schema's defaults for properties the content leaves out. Declined or
// cancelled responses carry no content and are not validated.
func validateElicitContent(p *ElicitParams, res *ElicitResult) error {
	if res.Action != "accept" {
		return nil
	}
	s, ok := p.RequestedSchema.(*jsonschema.Schema)
	if !ok || s == nil {
		return nil
	}
	resolved, err := s.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
	if err != nil {
		return jsonrpcInvalidParams(fmt.Sprintf("resolving requested schema: %v", err))
	}
	if res.Content != nil {
		if err := resolved.ApplyDefaults(&res.Content); err != nil {
			return jsonrpcInvalidParams(fmt.Sprintf("applying requested schema defaults: %v", err))
		}
	}
	if err := resolved.Validate(res.Content); err != nil {
		return jsonrpcInvalidParams(fmt.Sprintf("elicitation response content does not match requested schema: %v", err))
	}
	return nil
}

// jsonrpcInvalidParams builds a *jsonrpc.Error carrying CodeInvalidParams,
// for validation failures detected locally (before any message is sent to
// the peer).
func jsonrpcInvalidParams(msg string) error {
	return jsonrpc.NewError(CodeInvalidParams, msg)
}

// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import "maps"

// RootCapabilities describes a client's support for the roots primitive.
type RootCapabilities struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ClientCapabilities is the capability record a client advertises during
// initialize. It is not a closed set: a client is free to add arbitrary
// entries under Experimental or Extensions.
type ClientCapabilities struct {
	// NOTE: extend [ClientCapabilities.clone] when adding a field that
	// holds a pointer or map.

	Experimental map[string]any `json:"experimental,omitempty"`

	// Extensions holds settings for vendor extensions, keyed by
	// "{vendor-prefix}/{extension-name}". Use [ClientCapabilities.AddExtension]
	// rather than writing the map directly, so a nil settings value is
	// normalized to an empty object (the wire format forbids null here).
	Extensions map[string]any `json:"extensions,omitempty"`

	// Roots is retained for wire compatibility with peers built against
	// protocol revisions before #607 fixed Roots to be a pointer; new code
	// should read/write RootsV2 instead.
	//
	// Deprecated: use RootsV2.
	Roots struct {
		ListChanged bool `json:"listChanged,omitempty"`
	} `json:"roots,omitempty"`

	RootsV2     *RootCapabilities        `json:"-"`
	Sampling    *SamplingCapabilities    `json:"sampling,omitempty"`
	Elicitation *ElicitationCapabilities `json:"elicitation,omitempty"`
}

// AddExtension records settings for a vendor extension under name, coercing
// a nil settings value to an empty object.
func (c *ClientCapabilities) AddExtension(name string, settings map[string]any) {
	if c.Extensions == nil {
		c.Extensions = make(map[string]any)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	c.Extensions[name] = settings
}

func (c *ClientCapabilities) clone() *ClientCapabilities {
	cp := *c
	cp.Experimental = maps.Clone(c.Experimental)
	cp.Extensions = maps.Clone(c.Extensions)
	cp.RootsV2 = shallowClone(c.RootsV2)
	cp.Sampling = cloneSamplingCapabilities(c.Sampling)
	cp.Elicitation = cloneElicitationCapabilities(c.Elicitation)
	return &cp
}

func cloneSamplingCapabilities(s *SamplingCapabilities) *SamplingCapabilities {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Tools = shallowClone(s.Tools)
	cp.Context = shallowClone(s.Context)
	return &cp
}

func cloneElicitationCapabilities(e *ElicitationCapabilities) *ElicitationCapabilities {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Form = shallowClone(e.Form)
	cp.URL = shallowClone(e.URL)
	return &cp
}

// shallowClone returns a shallow copy of *p, or nil if p is nil.
func shallowClone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (c *ClientCapabilities) toV2() *clientCapabilitiesV2 {
	return &clientCapabilitiesV2{ClientCapabilities: *c, Roots: c.RootsV2}
}

// clientCapabilitiesV2 carries Roots as a pointer, fixing the #607 field
// layout mistake in [ClientCapabilities] without breaking peers that still
// rely on the original, non-pointer Roots field.
type clientCapabilitiesV2 struct {
	ClientCapabilities
	Roots *RootCapabilities `json:"roots,omitempty"`
}

func (c *clientCapabilitiesV2) toV1() *ClientCapabilities {
	caps := c.ClientCapabilities
	caps.RootsV2 = c.Roots
	if caps.RootsV2 != nil {
		caps.Roots = *caps.RootsV2
	}
	return &caps
}

// SamplingCapabilities describes a client's support for sampling requests.
type SamplingCapabilities struct {
	// Context is present when the client accepts includeContext values other
	// than "none".
	Context *SamplingContextCapabilities `json:"context,omitempty"`
	// Tools is present when the client accepts tools/toolChoice in a
	// sampling request.
	Tools *SamplingToolsCapabilities `json:"tools,omitempty"`
}

type SamplingContextCapabilities struct{}

type SamplingToolsCapabilities struct{}

// ElicitationCapabilities describes a client's support for elicitation.
// Absent both Form and URL, form elicitation is assumed.
type ElicitationCapabilities struct {
	Form *FormElicitationCapabilities `json:"form,omitempty"`
	URL  *URLElicitationCapabilities  `json:"url,omitempty"`
}

type FormElicitationCapabilities struct{}

type URLElicitationCapabilities struct{}

// CompletionCapabilities describes a server's support for argument
// autocompletion.
type CompletionCapabilities struct{}

// LoggingCapabilities describes a server's support for log message
// notifications.
type LoggingCapabilities struct{}

// PromptCapabilities describes a server's support for the prompt registry.
type PromptCapabilities struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourceCapabilities describes a server's support for the resource
// registry.
type ResourceCapabilities struct {
	ListChanged bool `json:"listChanged,omitempty"`
	Subscribe   bool `json:"subscribe,omitempty"`
}

// ToolCapabilities describes a server's support for the tool registry.
type ToolCapabilities struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerCapabilities is the capability record a server advertises in its
// initialize response.
type ServerCapabilities struct {
	// NOTE: extend [ServerCapabilities.clone] when adding a pointer or map
	// field here.

	Experimental map[string]any `json:"experimental,omitempty"`
	Extensions   map[string]any `json:"extensions,omitempty"`

	Completions *CompletionCapabilities `json:"completions,omitempty"`
	Logging     *LoggingCapabilities    `json:"logging,omitempty"`
	Prompts     *PromptCapabilities     `json:"prompts,omitempty"`
	Resources   *ResourceCapabilities   `json:"resources,omitempty"`
	Tools       *ToolCapabilities       `json:"tools,omitempty"`
}

// AddExtension records settings for a vendor extension under name, coercing
// a nil settings value to an empty object.
func (c *ServerCapabilities) AddExtension(name string, settings map[string]any) {
	if c.Extensions == nil {
		c.Extensions = make(map[string]any)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	c.Extensions[name] = settings
}

func (c *ServerCapabilities) clone() *ServerCapabilities {
	cp := *c
	cp.Experimental = maps.Clone(c.Experimental)
	cp.Extensions = maps.Clone(c.Extensions)
	cp.Completions = shallowClone(c.Completions)
	cp.Logging = shallowClone(c.Logging)
	cp.Prompts = shallowClone(c.Prompts)
	cp.Resources = shallowClone(c.Resources)
	cp.Tools = shallowClone(c.Tools)
	return &cp
}

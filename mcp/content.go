// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"encoding/json"
	"fmt"

	internaljson "github.com/gomcp/core/internal/json"
)

// blockKind is the wire discriminator carried in every content block's
// "type" field. It is also the key into the contentFactories registry used
// to decode an arbitrary block without a type switch.
type blockKind string

const (
	blockText       blockKind = "text"
	blockImage      blockKind = "image"
	blockAudio      blockKind = "audio"
	blockResLink    blockKind = "resource_link"
	blockResEmbed   blockKind = "resource"
	blockToolUse    blockKind = "tool_use"
	blockToolResult blockKind = "tool_result"
)

// Content is one block of a message, tool result, or prompt: [TextContent],
// [ImageContent], [AudioContent], [ResourceLink], [EmbeddedResource],
// [ToolUseContent], or [ToolResultContent].
//
// [ToolUseContent] and [ToolResultContent] only ever appear inside sampling
// messages (CreateMessageParams/CreateMessageResult); a handler that
// receives them in any other context should treat it as a protocol error.
type Content interface {
	MarshalJSON() ([]byte, error)
	populate(*rawBlock)
}

// contentFactories maps each wire type tag to a constructor for the zero
// value of the Go type representing it. Decoding a block is then "look up,
// allocate, populate" rather than a hand-written switch per call site.
var contentFactories = map[blockKind]func() Content{
	blockText:       func() Content { return new(TextContent) },
	blockImage:      func() Content { return new(ImageContent) },
	blockAudio:      func() Content { return new(AudioContent) },
	blockResLink:    func() Content { return new(ResourceLink) },
	blockResEmbed:   func() Content { return new(EmbeddedResource) },
	blockToolUse:    func() Content { return new(ToolUseContent) },
	blockToolResult: func() Content { return new(ToolResultContent) },
}

// taggedJSON marshals v as a JSON object with an injected "type" field,
// avoiding a bespoke anonymous struct literal per content variant. The
// object is built from a map, so its keys are emitted in sorted order.
func taggedJSON(kind blockKind, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s content: %w", kind, err)
	}
	var fields map[string]json.RawMessage
	if err := internaljson.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(fields)+1)
	typeTag, _ := json.Marshal(string(kind))
	out["type"] = typeTag
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// TextContent is plain text content.
type TextContent struct {
	Text        string
	Meta        Meta
	Annotations *Annotations
}

func (c *TextContent) MarshalJSON() ([]byte, error) {
	wire := struct {
		Text        string       `json:"text"`
		Meta        Meta         `json:"_meta,omitempty"`
		Annotations *Annotations `json:"annotations,omitempty"`
	}{c.Text, c.Meta, c.Annotations}
	return taggedJSON(blockText, wire)
}

func (c *TextContent) populate(raw *rawBlock) {
	c.Text = raw.Text
	c.Meta = raw.Meta
	c.Annotations = raw.Annotations
}

// ImageContent holds base64-encoded image bytes.
type ImageContent struct {
	Meta        Meta
	Annotations *Annotations
	Data        []byte // base64-encoded
	MIMEType    string
}

func (c *ImageContent) MarshalJSON() ([]byte, error) {
	return marshalMediaBlock(blockImage, c.MIMEType, c.Data, c.Meta, c.Annotations)
}

func (c *ImageContent) populate(raw *rawBlock) {
	c.MIMEType = raw.MIMEType
	c.Data = raw.Data
	c.Meta = raw.Meta
	c.Annotations = raw.Annotations
}

// AudioContent holds base64-encoded audio bytes.
type AudioContent struct {
	Data        []byte
	MIMEType    string
	Meta        Meta
	Annotations *Annotations
}

func (c AudioContent) MarshalJSON() ([]byte, error) {
	return marshalMediaBlock(blockAudio, c.MIMEType, c.Data, c.Meta, c.Annotations)
}

func (c *AudioContent) populate(raw *rawBlock) {
	c.MIMEType = raw.MIMEType
	c.Data = raw.Data
	c.Meta = raw.Meta
	c.Annotations = raw.Annotations
}

// marshalMediaBlock is shared by ImageContent and AudioContent, which carry
// an identical wire shape (mimeType + base64 data) under different tags.
// The "data" field is required by the schema so a nil payload is encoded as
// an explicit empty string, never omitted.
func marshalMediaBlock(kind blockKind, mimeType string, data []byte, meta Meta, ann *Annotations) ([]byte, error) {
	if data == nil {
		data = []byte{}
	}
	wire := struct {
		MIMEType    string       `json:"mimeType"`
		Data        []byte       `json:"data"`
		Meta        Meta         `json:"_meta,omitempty"`
		Annotations *Annotations `json:"annotations,omitempty"`
	}{mimeType, data, meta, ann}
	return taggedJSON(kind, wire)
}

// ResourceLink points at a resource by URI without embedding its contents.
type ResourceLink struct {
	URI         string
	Name        string
	Title       string
	Description string
	MIMEType    string
	Size        *int64
	Meta        Meta
	Annotations *Annotations
	Icons       []Icon `json:"icons,omitempty"`
}

func (c *ResourceLink) MarshalJSON() ([]byte, error) {
	wire := struct {
		URI         string       `json:"uri"`
		Name        string       `json:"name"`
		Title       string       `json:"title,omitempty"`
		Description string       `json:"description,omitempty"`
		MIMEType    string       `json:"mimeType,omitempty"`
		Size        *int64       `json:"size,omitempty"`
		Meta        Meta         `json:"_meta,omitempty"`
		Annotations *Annotations `json:"annotations,omitempty"`
		Icons       []Icon       `json:"icons,omitempty"`
	}{c.URI, c.Name, c.Title, c.Description, c.MIMEType, c.Size, c.Meta, c.Annotations, c.Icons}
	return taggedJSON(blockResLink, wire)
}

func (c *ResourceLink) populate(raw *rawBlock) {
	c.URI = raw.URI
	c.Name = raw.Name
	c.Title = raw.Title
	c.Description = raw.Description
	c.MIMEType = raw.MIMEType
	c.Size = raw.Size
	c.Meta = raw.Meta
	c.Annotations = raw.Annotations
	c.Icons = raw.Icons
}

// EmbeddedResource inlines the full contents of a resource.
type EmbeddedResource struct {
	Resource    *ResourceContents
	Meta        Meta
	Annotations *Annotations
}

func (c *EmbeddedResource) MarshalJSON() ([]byte, error) {
	wire := struct {
		Resource    *ResourceContents `json:"resource"`
		Meta        Meta              `json:"_meta,omitempty"`
		Annotations *Annotations      `json:"annotations,omitempty"`
	}{c.Resource, c.Meta, c.Annotations}
	return taggedJSON(blockResEmbed, wire)
}

func (c *EmbeddedResource) populate(raw *rawBlock) {
	c.Resource = raw.Resource
	c.Meta = raw.Meta
	c.Annotations = raw.Annotations
}

// ToolUseContent is an assistant-issued request, inside a sampling message,
// to invoke a tool. Pairs with a later [ToolResultContent] sharing ID.
type ToolUseContent struct {
	ID    string
	Name  string
	Input map[string]any
	Meta  Meta
}

func (c *ToolUseContent) MarshalJSON() ([]byte, error) {
	input := c.Input
	if input == nil {
		input = map[string]any{}
	}
	wire := struct {
		ID    string         `json:"id"`
		Name  string         `json:"name"`
		Input map[string]any `json:"input"`
		Meta  Meta           `json:"_meta,omitempty"`
	}{c.ID, c.Name, input, c.Meta}
	return taggedJSON(blockToolUse, wire)
}

func (c *ToolUseContent) populate(raw *rawBlock) {
	c.ID = raw.ID
	c.Name = raw.Name
	c.Input = raw.Input
	c.Meta = raw.Meta
}

// ToolResultContent carries the outcome of a tool invocation requested via
// [ToolUseContent], back inside a sampling message with role "user".
type ToolResultContent struct {
	ToolUseID         string
	Content           []Content
	StructuredContent any
	IsError           bool
	Meta              Meta
}

// toolResultNestedKinds is the subset of block kinds legal inside a
// ToolResultContent's own Content slice — the same set CallToolResult uses.
var toolResultNestedKinds = map[string]bool{
	string(blockText): true, string(blockImage): true, string(blockAudio): true,
	string(blockResLink): true, string(blockResEmbed): true,
}

func (c *ToolResultContent) MarshalJSON() ([]byte, error) {
	nested := make([]json.RawMessage, 0, len(c.Content))
	for _, block := range c.Content {
		data, err := block.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal nested tool result content: %w", err)
		}
		nested = append(nested, data)
	}
	wire := struct {
		ToolUseID         string            `json:"toolUseId"`
		Content           []json.RawMessage `json:"content"`
		StructuredContent any               `json:"structuredContent,omitempty"`
		IsError           bool              `json:"isError,omitempty"`
		Meta              Meta              `json:"_meta,omitempty"`
	}{c.ToolUseID, nested, c.StructuredContent, c.IsError, c.Meta}
	return taggedJSON(blockToolResult, wire)
}

func (c *ToolResultContent) populate(raw *rawBlock) {
	c.ToolUseID = raw.ToolUseID
	c.StructuredContent = raw.StructuredContent
	c.IsError = raw.IsError
	c.Meta = raw.Meta
	// raw.NestedContent is decoded separately by decodeBlock, since it
	// needs the same recursive dispatch as a top-level content list.
}

// ResourceContents holds the body of a resource or sub-resource: exactly one
// of Text or Blob is populated, per MIMEType.
type ResourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     []byte `json:"blob,omitzero"`
	Meta     Meta   `json:"_meta,omitempty"`
}

// rawBlock is the union of every field any content variant might put on the
// wire; decoding goes through this shape before dispatching to a concrete
// Go type by tag.
type rawBlock struct {
	Type              string            `json:"type"`
	Text              string            `json:"text,omitempty"`
	MIMEType          string            `json:"mimeType,omitempty"`
	Data              []byte            `json:"data,omitempty"`
	Resource          *ResourceContents `json:"resource,omitempty"`
	URI               string            `json:"uri,omitempty"`
	Name              string            `json:"name,omitempty"`
	Title             string            `json:"title,omitempty"`
	Description       string            `json:"description,omitempty"`
	Size              *int64            `json:"size,omitempty"`
	Meta              Meta              `json:"_meta,omitempty"`
	Annotations       *Annotations      `json:"annotations,omitempty"`
	Icons             []Icon            `json:"icons,omitempty"`
	ID                string            `json:"id,omitempty"`
	Input             map[string]any    `json:"input,omitempty"`
	ToolUseID         string            `json:"toolUseId,omitempty"`
	NestedContent     []*rawBlock       `json:"content,omitempty"`
	StructuredContent any               `json:"structuredContent,omitempty"`
	IsError           bool              `json:"isError,omitempty"`
}

// decodeContentList unmarshals raw JSON that is either one content object or
// an array of them, returning a single-element slice in the scalar case.
func decodeContentList(raw json.RawMessage, allow map[string]bool) ([]Content, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("content field is empty")
	}
	var many []*rawBlock
	if err := internaljson.Unmarshal(raw, &many); err == nil {
		return decodeBlocks(many, allow)
	}
	var one rawBlock
	if err := internaljson.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	block, err := decodeBlock(&one, allow)
	if err != nil {
		return nil, err
	}
	return []Content{block}, nil
}

func decodeBlocks(raws []*rawBlock, allow map[string]bool) ([]Content, error) {
	out := make([]Content, 0, len(raws))
	for _, raw := range raws {
		block, err := decodeBlock(raw, allow)
		if err != nil {
			return nil, err
		}
		out = append(out, block)
	}
	return out, nil
}

func decodeBlock(raw *rawBlock, allow map[string]bool) (Content, error) {
	if raw == nil {
		return nil, fmt.Errorf("content block is nil")
	}
	if allow != nil && !allow[raw.Type] {
		return nil, fmt.Errorf("content type %q is not permitted here", raw.Type)
	}
	factory, ok := contentFactories[blockKind(raw.Type)]
	if !ok {
		return nil, fmt.Errorf("unrecognized content type %q", raw.Type)
	}
	block := factory()
	block.populate(raw)
	if tr, ok := block.(*ToolResultContent); ok && raw.NestedContent != nil {
		nested, err := decodeBlocks(raw.NestedContent, toolResultNestedKinds)
		if err != nil {
			return nil, fmt.Errorf("tool_result nested content: %w", err)
		}
		tr.Content = nested
	}
	return block, nil
}

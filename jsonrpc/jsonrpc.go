// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package jsonrpc defines the JSON-RPC 2.0 message envelopes used by the
// Model Context Protocol, independent of any particular transport.
package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Standard JSON-RPC 2.0 error codes, plus the MCP-specific extensions.
const (
	CodeParseError     int64 = -32700
	CodeInvalidRequest int64 = -32600
	CodeMethodNotFound int64 = -32601
	CodeInvalidParams  int64 = -32602
	CodeInternalError  int64 = -32603

	// CodeCancelled is used for requests terminated by a
	// notifications/cancelled from the peer.
	CodeCancelled int64 = -32800
)

// ID is a JSON-RPC request identifier. Per the JSON-RPC 2.0 spec, an ID is
// either a string, a number, or (for notifications) absent; the zero value
// represents "no ID".
type ID struct {
	name   string
	number int64
	isName bool
	isSet  bool
}

// StringID returns an ID holding a string value.
func StringID(s string) ID { return ID{name: s, isName: true, isSet: true} }

// Int64ID returns an ID holding a numeric value.
func Int64ID(n int64) ID { return ID{number: n, isSet: true} }

// IsValid reports whether the ID was explicitly set (as opposed to being
// the ID of a notification).
func (id ID) IsValid() bool { return id.isSet }

// Raw reports the underlying value: a string, an int64, or nil if unset.
func (id ID) Raw() any {
	switch {
	case !id.isSet:
		return nil
	case id.isName:
		return id.name
	default:
		return id.number
	}
}

func (id ID) String() string {
	switch {
	case !id.isSet:
		return "<no id>"
	case id.isName:
		return id.name
	default:
		return fmt.Sprintf("%d", id.number)
	}
}

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	switch {
	case !id.isSet:
		return []byte("null"), nil
	case id.isName:
		return json.Marshal(id.name)
	default:
		return json.Marshal(id.number)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	*id = ID{}
	if string(data) == "null" {
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*id = Int64ID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("jsonrpc: id must be a string or an integer: %w", err)
	}
	*id = StringID(s)
	return nil
}

// Error is the error carrier used on the wire and returned to callers of
// Session.SendRequest. It satisfies the error interface.
type Error struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewError returns an *Error with the given code and message.
func NewError(code int64, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Message is implemented by Request, Response, and Notification.
type Message interface {
	isJSONRPCMessage()
}

// wireMessage is the superset of fields needed to decode any message shape;
// it is never sent as-is.
type wireMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *ID             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Request is a call that expects a Response.
type Request struct {
	ID     ID
	Method string
	Params json.RawMessage
}

func (*Request) isJSONRPCMessage() {}

// Notification is a call that expects no response.
type Notification struct {
	Method string
	Params json.RawMessage
}

func (*Notification) isJSONRPCMessage() {}

// Response carries the result (or error) of a Request.
type Response struct {
	ID     ID
	Result json.RawMessage
	Error  *Error
}

func (*Response) isJSONRPCMessage() {}

const protocolVersion = "2.0"

// MarshalJSON implements json.Marshaler for Request.
func (r *Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMessage{JSONRPC: protocolVersion, ID: &r.ID, Method: r.Method, Params: r.Params})
}

// MarshalJSON implements json.Marshaler for Notification.
func (n *Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMessage{JSONRPC: protocolVersion, Method: n.Method, Params: n.Params})
}

// MarshalJSON implements json.Marshaler for Response.
func (r *Response) MarshalJSON() ([]byte, error) {
	w := wireMessage{JSONRPC: protocolVersion, ID: &r.ID, Error: r.Error}
	if r.Error == nil {
		if r.Result == nil {
			w.Result = json.RawMessage("null")
		} else {
			w.Result = r.Result
		}
	}
	return json.Marshal(w)
}

// Decode discriminates a raw JSON-RPC envelope into one of *Request,
// *Notification, or *Response, following the presence of "method", "id",
// "result" and "error" as described by the JSON-RPC 2.0 spec.
func Decode(data []byte) (Message, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("jsonrpc: decode: %w", err)
	}
	switch {
	case w.Method != "" && w.ID != nil:
		return &Request{ID: *w.ID, Method: w.Method, Params: w.Params}, nil
	case w.Method != "":
		return &Notification{Method: w.Method, Params: w.Params}, nil
	case w.ID != nil:
		return &Response{ID: *w.ID, Result: w.Result, Error: w.Error}, nil
	default:
		return nil, fmt.Errorf("jsonrpc: message has neither method nor id/result/error")
	}
}

// Encode serializes m to its wire form.
func Encode(m Message) ([]byte, error) {
	switch v := m.(type) {
	case *Request:
		return v.MarshalJSON()
	case *Notification:
		return v.MarshalJSON()
	case *Response:
		return v.MarshalJSON()
	default:
		return nil, fmt.Errorf("jsonrpc: unknown message type %T", m)
	}
}

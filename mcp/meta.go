// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"reflect"

	"github.com/gomcp/core/jsonrpc"
)

// Type aliases binding the transport-neutral jsonrpc package into the
// vocabulary used throughout this package.
type (
	JSONRPCMessage      = jsonrpc.Message
	JSONRPCID           = jsonrpc.ID
	JSONRPCRequest      = jsonrpc.Request
	JSONRPCResponse     = jsonrpc.Response
	JSONRPCNotification = jsonrpc.Notification
)

// Meta holds the "_meta" field present on every params and result type,
// carrying out-of-band metadata such as progress tokens.
type Meta map[string]any

const progressTokenKey = "progressToken"

// GetProgressToken returns the progress token carried in m, if any.
func (m Meta) GetProgressToken() any {
	if m == nil {
		return nil
	}
	return m[progressTokenKey]
}

// SetProgressToken records a progress token in m.
func (m *Meta) SetProgressToken(token any) {
	if *m == nil {
		*m = make(Meta)
	}
	(*m)[progressTokenKey] = token
}

// GetMeta returns m itself, promoted onto every params/result type that
// anonymously embeds a Meta field.
func (m Meta) GetMeta() Meta { return m }

// getProgressToken and setProgressToken operate on the embedded Meta field
// of a concrete *xxxParams pointer via reflection, since the field is
// embedded anonymously and may start out nil. Every xxxParams type forwards
// its GetProgressToken/SetProgressToken methods to these helpers.
func getProgressToken(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	f := rv.FieldByName("Meta")
	if !f.IsValid() {
		return nil
	}
	m, _ := f.Interface().(Meta)
	return m.GetProgressToken()
}

func setProgressToken(v any, token any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	f := rv.FieldByName("Meta")
	if !f.IsValid() || !f.CanSet() {
		return
	}
	m, _ := f.Interface().(Meta)
	m.SetProgressToken(token)
	f.Set(reflect.ValueOf(m))
}

// Params is implemented by every xxxParams type so that generic request
// envelopes can access the common "_meta" field.
type Params interface {
	// GetMeta returns the params' metadata map, which may be nil.
	GetMeta() Meta
	// GetProgressToken returns the progress token from the params' metadata,
	// if present.
	GetProgressToken() any
	// SetProgressToken records a progress token in the params' metadata.
	SetProgressToken(any)
	isParams()
}

// Result is implemented by every xxxResult type.
type Result interface {
	// GetMeta returns the result's metadata map, which may be nil.
	GetMeta() Meta
	isResult()
}

// Session is satisfied by *ServerSession and *ClientSession. It is used as a
// type constraint for helpers (such as middleware) that are generic over
// which side of the connection they run on.
type Session interface {
	// ID returns the session's unique identifier, which may be empty for
	// transports (such as stdio) that carry a single implicit session.
	ID() string
}

// Request is the method-erased view of a ServerRequest[P] or ClientRequest[P]
// used by Middleware, which cannot be generic over P because a single
// handler chain serves every method.
type Request interface {
	GetParams() Params
	GetSession() Session
	isRequest()
}

// MethodHandler handles a single JSON-RPC method call (request or
// notification) addressed to method, returning the result to send back (nil
// for notifications).
type MethodHandler func(ctx context.Context, method string, req Request) (Result, error)

// Middleware wraps a MethodHandler to add cross-cutting behavior such as
// logging, rate limiting, or tracing. Middleware added to a Server or Client
// applies to every session subsequently created from it.
type Middleware func(MethodHandler) MethodHandler

// ServerRequest is the request envelope passed to handlers running on the
// server side of a session: tool calls, resource reads, completions, and so
// on. P is the concrete params type for the method being handled.
type ServerRequest[P Params] struct {
	// Session is the server-side session the request arrived on.
	Session *ServerSession
	// Params are the method's decoded parameters.
	Params P
}

func (r *ServerRequest[P]) GetParams() Params    { return r.Params }
func (r *ServerRequest[P]) GetSession() Session  { return r.Session }
func (r *ServerRequest[P]) isRequest()           {}

// ClientRequest is the request envelope passed to handlers running on the
// client side of a session: sampling, elicitation, roots, and logging.
type ClientRequest[P Params] struct {
	// Session is the client-side session the request arrived on.
	Session *ClientSession
	// Params are the method's decoded parameters.
	Params P
}

func (r *ClientRequest[P]) GetParams() Params   { return r.Params }
func (r *ClientRequest[P]) GetSession() Session { return r.Session }
func (r *ClientRequest[P]) isRequest()          {}

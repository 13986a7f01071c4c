// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strconv"
	"sync"

	"github.com/gomcp/core/jsonrpc"
)

// rawHandler decodes and dispatches a single incoming request or
// notification. params is nil for notifications carrying no arguments.
// It is supplied by ServerSession/ClientSession, which know how to map a
// method name to a concrete Params type and wrap it in the right Request
// envelope before invoking the method/middleware chain.
type rawHandler func(ctx context.Context, method string, params json.RawMessage) (Result, error)

// jsonConn is the transport-neutral request/response multiplexer shared by
// ServerSession and ClientSession. It owns the read loop for a Connection,
// matching incoming Responses to outstanding calls and dispatching incoming
// Requests/Notifications to a rawHandler.
type jsonConn struct {
	conn    Connection
	handler rawHandler
	logger  *slog.Logger

	mu       sync.Mutex
	nextID   int64
	pending  map[string]chan *JSONRPCResponse
	inFlight map[string]context.CancelFunc
	closed   bool
	exitErr  error

	handlersWG sync.WaitGroup
	doneCh     chan struct{}
}

func newJSONConn(conn Connection, handler rawHandler, logger *slog.Logger) *jsonConn {
	if logger == nil {
		logger = slog.Default()
	}
	return &jsonConn{
		conn:     conn,
		handler:  handler,
		logger:   logger,
		pending:  make(map[string]chan *JSONRPCResponse),
		inFlight: make(map[string]context.CancelFunc),
		doneCh:   make(chan struct{}),
	}
}

// inFlightRequestKey is defined in streamable_server.go; it correlates an
// in-flight incoming request with its ID, so that a transport (such as the
// streamable HTTP transport) can route server-initiated calls made during
// the handling of that request back to the right logical HTTP stream.

func (c *jsonConn) run(ctx context.Context) {
	defer close(c.doneCh)
	for {
		msg, err := c.conn.Read(ctx)
		if err != nil {
			c.mu.Lock()
			c.exitErr = cleanCloseErr(err)
			c.mu.Unlock()
			c.abortPending(err)
			return
		}
		switch m := msg.(type) {
		case *JSONRPCResponse:
			c.deliver(m)
		case *JSONRPCRequest:
			c.handlersWG.Add(1)
			go c.handleRequest(ctx, m)
		case *JSONRPCNotification:
			if m.Method == notificationCancelled {
				c.handleCancel(m)
				continue
			}
			c.handlersWG.Add(1)
			go c.handleNotification(ctx, m)
		}
	}
}

func (c *jsonConn) deliver(resp *JSONRPCResponse) {
	c.mu.Lock()
	ch, ok := c.pending[resp.ID.String()]
	if ok {
		delete(c.pending, resp.ID.String())
	}
	c.mu.Unlock()
	if ok {
		ch <- resp
	}
}

func (c *jsonConn) abortPending(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]chan *JSONRPCResponse)
	c.mu.Unlock()
	for _, ch := range pending {
		ch <- &JSONRPCResponse{Error: jsonrpc.NewError(jsonrpc.CodeInternalError, err.Error())}
	}
}

func (c *jsonConn) handleCancel(n *JSONRPCNotification) {
	var p CancelledParams
	if err := json.Unmarshal(n.Params, &p); err != nil {
		return
	}
	c.mu.Lock()
	cancel, ok := c.inFlight[anyIDKey(p.RequestID)]
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

func (c *jsonConn) handleRequest(ctx context.Context, req *JSONRPCRequest) {
	defer c.handlersWG.Done()
	hctx, cancel := context.WithCancel(ctx)
	hctx = context.WithValue(hctx, inFlightRequestKey{}, req.ID)
	c.mu.Lock()
	c.inFlight[req.ID.String()] = cancel
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.inFlight, req.ID.String())
		c.mu.Unlock()
		cancel()
	}()

	result, err := c.handler(hctx, req.Method, req.Params)
	resp := &JSONRPCResponse{ID: req.ID}
	if err != nil {
		resp.Error = toWireError(err)
	} else {
		data, merr := json.Marshal(result)
		if merr != nil {
			resp.Error = jsonrpc.NewError(jsonrpc.CodeInternalError, fmt.Sprintf("marshal result: %v", merr))
		} else {
			resp.Result = data
		}
	}
	if werr := c.conn.Write(ctx, resp); werr != nil {
		c.logger.Debug("failed to write response", "method", req.Method, "error", werr)
	}
}

func (c *jsonConn) handleNotification(ctx context.Context, n *JSONRPCNotification) {
	defer c.handlersWG.Done()
	if _, err := c.handler(ctx, n.Method, n.Params); err != nil {
		c.logger.Debug("notification handler failed", "method", n.Method, "error", err)
	}
}

// toWireError converts err to a *jsonrpc.Error suitable for the wire,
// preserving code and data if err already carries them.
func toWireError(err error) *jsonrpc.Error {
	var werr *jsonrpc.Error
	if errors.As(err, &werr) {
		return werr
	}
	return jsonrpc.NewError(jsonrpc.CodeInternalError, err.Error())
}

// nextRequestID allocates a fresh, monotonically increasing request ID for
// outbound calls on this connection.
func (c *jsonConn) nextRequestID() JSONRPCID {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.mu.Unlock()
	return jsonrpc.Int64ID(id)
}

// call sends method/params as a JSON-RPC request and blocks until the
// matching response arrives or ctx is done. On context cancellation, a
// best-effort notifications/cancelled is sent to the peer.
func (c *jsonConn) call(ctx context.Context, method string, params Params) (json.RawMessage, error) {
	data, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	id := c.nextRequestID()
	ch := make(chan *JSONRPCResponse, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnectionClosed
	}
	c.pending[id.String()] = ch
	c.mu.Unlock()

	if err := c.conn.Write(ctx, &JSONRPCRequest{ID: id, Method: method, Params: data}); err != nil {
		c.mu.Lock()
		delete(c.pending, id.String())
		c.mu.Unlock()
		return nil, err
	}

	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id.String())
		c.mu.Unlock()
		cp := &CancelledParams{RequestID: id.Raw(), Reason: ctx.Err().Error()}
		cpData, _ := json.Marshal(cp)
		_ = c.conn.Write(context.Background(), &JSONRPCNotification{Method: notificationCancelled, Params: cpData})
		return nil, ctx.Err()
	case resp := <-ch:
		if resp.Error != nil {
			return nil, resp.Error
		}
		return resp.Result, nil
	}
}

// notify sends method/params as a JSON-RPC notification.
func (c *jsonConn) notify(ctx context.Context, method string, params Params) error {
	data, err := marshalParams(params)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, &JSONRPCNotification{Method: method, Params: data})
}

func marshalParams(params Params) (json.RawMessage, error) {
	if params == nil || reflect.ValueOf(params).IsNil() {
		return nil, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	return data, nil
}

// anyIDKey converts a decoded JSON-RPC id value (string or float64, as
// produced by encoding/json for an "any" field) into the same string form
// used to key jsonConn's pending/inFlight maps.
func anyIDKey(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Close shuts down the underlying connection. Call Wait to block until the
// read loop and all in-flight handlers have finished.
func (c *jsonConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}

// Wait blocks until the read loop has exited (because the connection was
// closed, locally or by the peer) and all handler goroutines it spawned
// have returned. Call Err afterward to find out whether the connection
// closed cleanly.
func (c *jsonConn) Wait() {
	<-c.doneCh
	c.handlersWG.Wait()
}

// Err returns the error that ended the read loop, or nil if the connection
// closed cleanly (locally, or because the peer closed it). It must only be
// called after Wait returns.
func (c *jsonConn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exitErr
}

// cleanCloseErr maps the errors that Connection.Read returns for an
// ordinary close (as opposed to a genuine transport failure) to nil.
func cleanCloseErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

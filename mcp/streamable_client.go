// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gomcp/core/internal/jsonrpc2"
)

// A StreamableClientTransport is a [Transport] that can communicate with an
// MCP endpoint serving the streamable HTTP transport.
//
// TODO(rfindley): support resumption tokens across process restarts.
type StreamableClientTransport struct {
	url  string
	opts StreamableClientTransportOptions
}

// StreamableClientTransportOptions configures a [StreamableClientTransport].
type StreamableClientTransportOptions struct {
	// HTTPClient is the client used for requests. http.DefaultClient is used
	// if nil.
	HTTPClient *http.Client
	// MaxRetries bounds how many times a failed send, or a dropped hanging
	// GET, is retried. Zero means no retries beyond the first attempt.
	MaxRetries int
	// InitialBackoff is the delay before the first retry; later retries
	// back off exponentially from it. Defaults to one second.
	InitialBackoff time.Duration
}

// NewStreamableClientTransport returns a client transport that connects to
// the streamable HTTP server at url.
func NewStreamableClientTransport(url string, opts *StreamableClientTransportOptions) *StreamableClientTransport {
	t := &StreamableClientTransport{url: url}
	if opts != nil {
		t.opts = *opts
	}
	if t.opts.InitialBackoff == 0 {
		t.opts.InitialBackoff = time.Second
	}
	return t
}

// Connect implements the [Transport] interface.
//
// The returned [Connection] posts each outgoing message to url with the
// Mcp-Session-Id header set, and receives incoming messages over one or
// more hanging GET requests to the same URL. Close issues a DELETE to
// terminate the logical session.
func (t *StreamableClientTransport) Connect(ctx context.Context) (Connection, error) {
	client := t.opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	conn := &streamableClientConn{
		url:             t.url,
		client:          client,
		incoming:        make(chan []byte, 100),
		done:            make(chan struct{}),
		pendingMessages: make(chan JSONRPCMessage, 100),
		maxRetries:      t.opts.MaxRetries,
		initialBackoff:  t.opts.InitialBackoff,
		randSource:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	conn.sessionID.Store("")

	go conn.sendLoop()
	go conn.receiveLoop()

	return conn, nil
}

// streamableClientConn is the client-side [Connection] for a streamable
// HTTP session. Sending and receiving run on independent goroutines
// (sendLoop, receiveLoop) so a stalled hanging GET never blocks outgoing
// POSTs, and vice versa.
type streamableClientConn struct {
	url       string
	sessionID atomic.Value // string
	client    *http.Client
	incoming  chan []byte
	done      chan struct{}

	closeOnce sync.Once
	closeErr  error

	mu          sync.Mutex
	lastEventID string // for Last-Event-ID replay on reconnect
	err         error  // sticky error once the connection is considered dead

	pendingMessages chan JSONRPCMessage

	maxRetries     int
	initialBackoff time.Duration
	randSource     *rand.Rand

	// cancelHangingGet cancels whichever hanging GET is currently in
	// flight, if any; set while receiveLoop owns an active request.
	cancelHangingGet context.CancelFunc
}

func (c *streamableClientConn) SessionID() string {
	return c.sessionID.Load().(string)
}

// Read implements the [Connection] interface.
func (c *streamableClientConn) Read(ctx context.Context) (JSONRPCMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.err != nil {
			return nil, c.err
		}
		return nil, io.EOF
	case data := <-c.incoming:
		return jsonrpc2.DecodeMessage(data)
	}
}

// Write implements the [Connection] interface by queuing msg for delivery;
// sendLoop performs the actual POST, including retries.
func (c *streamableClientConn) Write(ctx context.Context, msg JSONRPCMessage) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.err != nil {
			return c.err
		}
		return io.EOF
	case c.pendingMessages <- msg:
		return nil
	}
}

// sendLoop drains pendingMessages, POSTing each one with retry-on-failure.
func (c *streamableClientConn) sendLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.pendingMessages:
			ctx, cancel := context.WithCancel(context.Background())
			go c.deliverWithRetry(ctx, cancel, msg)
		}
	}
}

func (c *streamableClientConn) deliverWithRetry(ctx context.Context, cancel context.CancelFunc, msg JSONRPCMessage) {
	defer cancel()

	sid := c.sessionID.Load().(string)
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		gotSID, err := c.postMessage(ctx, sid, msg)
		if err == nil {
			if sid == "" && gotSID != "" {
				c.sessionID.Store(gotSID)
			}
			return
		}

		lastErr = err
		if !shouldRetry(err) || attempt == c.maxRetries {
			break
		}
		if !sleepBackoff(ctx, c.done, backoffDelay(c.initialBackoff, attempt, c.randSource)) {
			return
		}
	}

	c.mu.Lock()
	c.err = fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
	c.mu.Unlock()
	c.Close()
}

// postMessage sends one JSON-RPC message as an HTTP POST and returns the
// session ID the server assigned or confirmed.
func (c *streamableClientConn) postMessage(ctx context.Context, sessionID string, msg JSONRPCMessage) (string, error) {
	data, err := jsonrpc2.EncodeMessage(msg)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build POST request: %w", err)
	}
	if sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("POST request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return "", &httpStatusErr{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d %s: %s", resp.StatusCode, resp.Status, strings.TrimSpace(string(body))),
		}
	}

	newSID := resp.Header.Get("Mcp-Session-Id")
	if sessionID == "" && newSID == "" {
		resp.Body.Close()
		return "", fmt.Errorf("initial POST response carried no Mcp-Session-Id")
	}
	if newSID == "" {
		newSID = sessionID
	}

	if resp.Header.Get("Content-Type") == "text/event-stream" {
		go c.consumeSSE(resp)
	} else {
		resp.Body.Close()
	}

	return newSID, nil
}

// receiveLoop maintains a standing hanging GET for server-to-client
// messages, reconnecting with backoff whenever it drops.
func (c *streamableClientConn) receiveLoop() {
	backoff := c.initialBackoff
	retries := 0

	for {
		select {
		case <-c.done:
			return
		default:
		}

		sid := c.sessionID.Load().(string)
		if sid == "" {
			// First POST hasn't established a session yet.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		c.mu.Lock()
		c.cancelHangingGet = cancel
		lastEventID := c.lastEventID
		c.mu.Unlock()

		err := c.hangingGet(ctx, sid, lastEventID)

		c.mu.Lock()
		c.cancelHangingGet = nil
		c.mu.Unlock()
		cancel()

		if err == nil {
			retries = 0
			backoff = c.initialBackoff
			continue
		}

		if retries >= c.maxRetries {
			c.mu.Lock()
			c.err = fmt.Errorf("SSE stream failed after %d retries: %w", c.maxRetries, err)
			c.mu.Unlock()
			c.Close()
			return
		}

		delay := backoff + time.Duration(c.randSource.Int63n(int64(backoff/2)+1))
		if !sleepBackoff(context.Background(), c.done, delay) {
			return
		}
		retries++
		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}

// hangingGet issues one GET for the SSE stream, blocking until it ends.
func (c *streamableClientConn) hangingGet(ctx context.Context, sessionID, lastEventID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("build GET request: %w", err)
	}
	req.Header.Set("Mcp-Session-Id", sessionID)
	req.Header.Set("Accept", "text/event-stream")
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return &httpStatusErr{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d %s: %s", resp.StatusCode, resp.Status, strings.TrimSpace(string(body))),
		}
	}

	return c.consumeSSE(resp)
}

// consumeSSE reads events from resp until the stream ends, delivering each
// to incoming and advancing lastEventID for replay on reconnect.
func (c *streamableClientConn) consumeSSE(resp *http.Response) error {
	defer resp.Body.Close()
	for evt, err := range scanEvents(resp.Body) {
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("scan SSE stream: %w", err)
		}
		if evt.id != "" {
			c.mu.Lock()
			c.lastEventID = evt.id
			c.mu.Unlock()
		}
		select {
		case c.incoming <- evt.data:
		case <-c.done:
			return io.EOF
		}
	}
	return nil
}

// backoffDelay computes an exponential backoff with jitter for the given
// attempt number, seeded off base.
func backoffDelay(base time.Duration, attempt int, src *rand.Rand) time.Duration {
	d := base * time.Duration(1<<uint(attempt))
	jitter := time.Duration(src.Int63n(int64(d/2) + 1))
	return d + jitter
}

// sleepBackoff waits out delay, returning false if done or ctx fires first.
func sleepBackoff(ctx context.Context, done <-chan struct{}, delay time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-done:
		return false
	case <-time.After(delay):
		return true
	}
}

// shouldRetry reports whether err reflects a transient condition worth
// retrying.
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *httpStatusErr
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusRequestTimeout,
			http.StatusTooEarly,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return false
}

// Close implements the [Connection] interface: it stops sendLoop and
// receiveLoop, then makes a best-effort DELETE to end the server-side
// session.
func (c *streamableClientConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		if c.cancelHangingGet != nil {
			c.cancelHangingGet()
		}
		c.mu.Unlock()
		close(c.pendingMessages)

		sid := c.sessionID.Load().(string)
		if sid != "" {
			req, err := http.NewRequest(http.MethodDelete, c.url, nil)
			if err != nil {
				c.closeErr = fmt.Errorf("build DELETE request: %w", err)
			} else {
				req.Header.Set("Mcp-Session-Id", sid)
				if _, err := c.client.Do(req); err != nil {
					c.closeErr = fmt.Errorf("send DELETE request: %w", err)
				}
			}
		}
	})
	return c.closeErr
}

// httpStatusErr pairs an HTTP status code with the error it produced, so
// shouldRetry can branch on the code without string matching.
type httpStatusErr struct {
	StatusCode int
	Err        error
}

func (e *httpStatusErr) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP status %d", e.StatusCode)
}

func (e *httpStatusErr) Unwrap() error {
	return e.Err
}

// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gomcp/core/internal/jsonrpc2"
)

// StreamableHTTPHandler is an http.Handler serving one or more streamable
// MCP sessions, as defined by the [MCP spec].
//
// [MCP spec]: https://modelcontextprotocol.io/2025/03/26/streamable-http-transport.html
type StreamableHTTPHandler struct {
	getServer func(*http.Request) *Server

	sessionsMu sync.Mutex
	sessions   map[string]*StreamableServerTransport // keyed by Mcp-Session-Id
}

// StreamableHTTPOptions reserves room for future handler configuration
// (custom session-ID generation, event-store and retention policy).
type StreamableHTTPOptions struct{}

// NewStreamableHTTPHandler returns a handler that serves streamable MCP
// sessions. getServer is called to obtain the [Server] for a new session;
// it is fine for it to return the same Server for every call.
func NewStreamableHTTPHandler(getServer func(*http.Request) *Server, opts *StreamableHTTPOptions) *StreamableHTTPHandler {
	return &StreamableHTTPHandler{
		getServer: getServer,
		sessions:  make(map[string]*StreamableServerTransport),
	}
}

// closeAll terminates every session the handler currently tracks.
func (h *StreamableHTTPHandler) closeAll() {
	h.sessionsMu.Lock()
	defer h.sessionsMu.Unlock()
	for _, s := range h.sessions {
		s.Close()
	}
	h.sessions = nil
}

func (h *StreamableHTTPHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// A request may repeat the Accept header; fold them into one comma list.
	// https://developer.mozilla.org/en-US/docs/Web/HTTP/Reference/Headers/Accept#syntax
	accept := strings.Split(strings.Join(req.Header.Values("Accept"), ","), ",")
	var jsonOK, streamOK bool
	for _, c := range accept {
		switch strings.TrimSpace(c) {
		case "application/json":
			jsonOK = true
		case "text/event-stream":
			streamOK = true
		}
	}

	if req.Method == http.MethodGet {
		if !streamOK {
			http.Error(w, "Accept must contain 'text/event-stream' for GET requests", http.StatusBadRequest)
			return
		}
	} else if !jsonOK || !streamOK {
		http.Error(w, "Accept must contain both 'application/json' and 'text/event-stream'", http.StatusBadRequest)
		return
	}

	var session *StreamableServerTransport
	if id := req.Header.Get("Mcp-Session-Id"); id != "" {
		h.sessionsMu.Lock()
		session = h.sessions[id]
		h.sessionsMu.Unlock()
		if session == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
	}

	if req.Method == http.MethodDelete {
		if session == nil {
			http.Error(w, "DELETE requires an Mcp-Session-Id header", http.StatusBadRequest)
			return
		}
		h.sessionsMu.Lock()
		delete(h.sessions, session.id)
		h.sessionsMu.Unlock()
		session.Close()
		w.WriteHeader(http.StatusNoContent)
		return
	}

	switch req.Method {
	case http.MethodPost, http.MethodGet:
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "unsupported method", http.StatusMethodNotAllowed)
		return
	}

	if session == nil {
		s := NewStreamableServerTransport(newSessionID())
		server := h.getServer(req)
		// req.Context() is passed through so middleware-added values survive;
		// its cancellation is removed, since the session outlives this request.
		if _, err := server.Connect(context.WithoutCancel(req.Context()), s, nil); err != nil {
			http.Error(w, "failed connection", http.StatusInternalServerError)
			return
		}
		h.sessionsMu.Lock()
		h.sessions[s.id] = s
		h.sessionsMu.Unlock()
		session = s
	}

	session.ServeHTTP(w, req)
}

// NewStreamableServerTransport returns the server side of a streamable HTTP
// session identified by sessionID.
func NewStreamableServerTransport(sessionID string) *StreamableServerTransport {
	return &StreamableServerTransport{
		id:               sessionID,
		incoming:         make(chan JSONRPCMessage, 10),
		done:             make(chan struct{}),
		outgoingMessages: make(map[streamID][]*queuedEvent),
		signals:          make(map[streamID]chan struct{}),
		requestStreams:   make(map[JSONRPCID]streamID),
		streamRequests:   make(map[streamID]map[JSONRPCID]struct{}),
	}
}

func (t *StreamableServerTransport) SessionID() string {
	return t.id
}

// StreamableServerTransport implements [Transport] for one streamable HTTP
// session, which may fan out across several concurrent HTTP exchanges.
type StreamableServerTransport struct {
	nextStreamID atomic.Int64

	id       string
	incoming chan JSONRPCMessage // client -> server

	mu sync.Mutex

	isDone bool // sessions close exactly once
	done   chan struct{}

	// A session can be served by several overlapping HTTP requests, and a
	// dropped connection may be resumed by a later request with the same
	// logical stream id. The four maps below track that bookkeeping; they
	// are kept separate (rather than merged into one struct) because each
	// has a different lifetime, noted per field.

	// outgoingMessages holds, per logical stream, every event queued for
	// it so far. streamID 0 carries messages with no correlated incoming
	// request. Lives for the session; nothing is ever evicted.
	outgoingMessages map[streamID][]*queuedEvent

	// signals maps a logical stream to a 1-buffered wakeup channel owned by
	// whichever HTTP request currently holds that stream. Only one request
	// may hold a stream at a time. Lives only while some request is
	// actively serving that stream.
	signals map[streamID]chan struct{}

	// requestStreams maps an inbound request id to the logical stream that
	// carried it in. Lives for the session.
	requestStreams map[JSONRPCID]streamID

	// streamRequests maps a logical stream to the set of inbound requests
	// still awaiting a reply on it; once empty, the stream can be closed.
	// Entries are removed as replies are queued, not as they're delivered
	// to an HTTP response (delivery isn't guaranteed).
	streamRequests map[streamID]map[JSONRPCID]struct{}
}

type streamID int64

// queuedEvent is one SSE event queued for delivery, tagged with its
// position in its logical stream's event log.
type queuedEvent struct {
	idx   int
	event event
}

// Connect implements the [Transport] interface.
func (s *StreamableServerTransport) Connect(context.Context) (Connection, error) {
	return s, nil
}

// inFlightRequestKey is the context key under which [jsonConn] stashes
// the id of the inbound request currently being handled, so that
// notifications and server-to-client calls issued while handling it land
// as SSE events on the same logical stream.
//
// This privileged channel only works because StreamableServerTransport has
// access to it; a caller implementing their own streaming transport could
// not replicate this behavior without a wider API (e.g. an exported
// `ForRequest(context.Context) JSONRPCID` accessor, or a transport-level
// handler-middleware hook).
type inFlightRequestKey struct{}

// ServeHTTP handles one HTTP request belonging to this session.
func (t *StreamableServerTransport) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		t.serveGET(w, req)
	case http.MethodPost:
		t.servePOST(w, req)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "unsupported method", http.StatusMethodNotAllowed)
	}
}

func (t *StreamableServerTransport) serveGET(w http.ResponseWriter, req *http.Request) {
	id, nextIdx := streamID(0), 0 // stream 0 is the default standing GET
	if len(req.Header.Values("Last-Event-ID")) > 0 {
		eid := req.Header.Get("Last-Event-ID")
		var ok bool
		id, nextIdx, ok = decodeEventID(eid)
		if !ok {
			http.Error(w, fmt.Sprintf("malformed Last-Event-ID %q", eid), http.StatusBadRequest)
			return
		}
		nextIdx++
	}

	t.mu.Lock()
	if _, ok := t.signals[id]; ok {
		http.Error(w, "stream ID conflicts with ongoing stream", http.StatusBadRequest)
		t.mu.Unlock()
		return
	}
	signal := make(chan struct{}, 1)
	t.signals[id] = signal
	t.mu.Unlock()

	t.streamResponse(w, req, id, nextIdx, signal)
}

func (t *StreamableServerTransport) servePOST(w http.ResponseWriter, req *http.Request) {
	if len(req.Header.Values("Last-Event-ID")) > 0 {
		http.Error(w, "can't send Last-Event-ID for POST request", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "POST requires a non-empty body", http.StatusBadRequest)
		return
	}
	incoming, _, err := readBatch(body)
	if err != nil {
		http.Error(w, fmt.Sprintf("malformed payload: %v", err), http.StatusBadRequest)
		return
	}
	pending := make(map[JSONRPCID]struct{})
	for _, msg := range incoming {
		if r, ok := msg.(*JSONRPCRequest); ok && r.ID.IsValid() {
			pending[r.ID] = struct{}{}
		}
	}

	id := streamID(t.nextStreamID.Add(1))
	signal := make(chan struct{}, 1)
	t.mu.Lock()
	if len(pending) > 0 {
		t.streamRequests[id] = make(map[JSONRPCID]struct{})
	}
	for reqID := range pending {
		t.requestStreams[reqID] = id
		t.streamRequests[id][reqID] = struct{}{}
	}
	t.signals[id] = signal
	t.mu.Unlock()

	for _, msg := range incoming {
		t.incoming <- msg
	}

	t.streamResponse(w, req, id, 0, signal)
}

func (t *StreamableServerTransport) streamResponse(w http.ResponseWriter, req *http.Request, id streamID, nextIndex int, signal chan struct{}) {
	defer func() {
		t.mu.Lock()
		delete(t.signals, id)
		t.mu.Unlock()
	}()

	if nextIndex > 0 {
		// Resuming: clamp to what's actually queued for this stream.
		t.mu.Lock()
		if n := len(t.outgoingMessages[id]); nextIndex > n {
			nextIndex = n
		}
		t.mu.Unlock()
	}

	w.Header().Set("Mcp-Session-Id", t.id)
	w.Header().Set("Content-Type", "text/event-stream") // Accept was validated by StreamableHTTPHandler
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")

	writes := 0
stream:
	for {
		t.mu.Lock()
		pending := t.outgoingMessages[id][nextIndex:]
		t.mu.Unlock()

		for _, qe := range pending {
			if _, err := writeEvent(w, qe.event); err != nil {
				return // connection closed or broken
			}
			writes++
			nextIndex++
		}

		t.mu.Lock()
		nOutstanding := len(t.streamRequests[id])
		nQueued := len(t.outgoingMessages[id])
		t.mu.Unlock()

		if nextIndex < nQueued {
			continue // more queued than we've sent; loop and drain it
		}
		if req.Method == http.MethodPost && nOutstanding == 0 {
			if writes == 0 {
				// Spec: a server accepting input with no reply due yet must
				// answer 202 with no body.
				w.WriteHeader(http.StatusAccepted)
			}
			return
		}

		select {
		case <-signal:
		case <-t.done:
			if writes == 0 {
				http.Error(w, "session terminated", http.StatusGone)
			}
			break stream
		case <-req.Context().Done():
			if writes == 0 {
				w.WriteHeader(http.StatusNoContent)
			}
			break stream
		}
	}
}

// Event ids are "<streamID>_<idx>", matching the reference TypeScript
// implementation's encoding so clients written against either agree on
// Last-Event-ID semantics.

func encodeEventID(sid streamID, idx int) string {
	return fmt.Sprintf("%d_%d", sid, idx)
}

func decodeEventID(eventID string) (sid streamID, idx int, ok bool) {
	parts := strings.Split(eventID, "_")
	if len(parts) != 2 {
		return 0, 0, false
	}
	stream, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || stream < 0 {
		return 0, 0, false
	}
	idx, err = strconv.Atoi(parts[1])
	if err != nil || idx < 0 {
		return 0, 0, false
	}
	return streamID(stream), idx, true
}

// Read implements the [Connection] interface.
func (t *StreamableServerTransport) Read(ctx context.Context) (JSONRPCMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-t.incoming:
		if !ok {
			return nil, io.EOF
		}
		return msg, nil
	case <-t.done:
		return nil, io.EOF
	}
}

// Write implements the [Connection] interface.
func (t *StreamableServerTransport) Write(ctx context.Context, msg JSONRPCMessage) error {
	// A response correlates with its own request id. Anything else
	// (notification, server-to-client call) correlates with whatever
	// inbound request was being handled when it was sent, if any.
	var forRequest, replyTo JSONRPCID
	if resp, ok := msg.(*JSONRPCResponse); ok {
		forRequest = resp.ID
		replyTo = resp.ID
	} else if v := ctx.Value(inFlightRequestKey{}); v != nil {
		forRequest = v.(JSONRPCID)
	}

	// Messages sent outside any request context land on stream 0.
	var forConn streamID
	if forRequest.IsValid() {
		t.mu.Lock()
		forConn = t.requestStreams[forRequest]
		t.mu.Unlock()
	}

	data, err := jsonrpc2.EncodeMessage(msg)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isDone {
		return fmt.Errorf("session is closed")
	}

	if _, ok := t.streamRequests[forConn]; !ok && forConn != 0 {
		// This stream has no outstanding requests left, so the server is
		// writing to it out of sequence. Route to the shared queue instead
		// of dropping the message.
		forConn = 0
	}

	idx := len(t.outgoingMessages[forConn])
	t.outgoingMessages[forConn] = append(t.outgoingMessages[forConn], &queuedEvent{
		idx: idx,
		event: event{
			name: "message",
			id:   encodeEventID(forConn, idx),
			data: data,
		},
	})
	if replyTo.IsValid() {
		delete(t.streamRequests[forConn], replyTo)
		if len(t.streamRequests[forConn]) == 0 {
			delete(t.streamRequests, forConn)
		}
	}

	if c, ok := t.signals[forConn]; ok {
		select {
		case c <- struct{}{}:
		default:
		}
	}
	return nil
}

// Close implements the [Connection] interface.
func (t *StreamableServerTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isDone {
		t.isDone = true
		close(t.done)
	}
	return nil
}

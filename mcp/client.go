// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// ClientOptions configures the behavior of a [Client].
type ClientOptions struct {
	// Capabilities, if set, is used verbatim as the client's capabilities
	// during the initialize handshake. If nil, capabilities are inferred
	// from the handlers configured below.
	Capabilities *ClientCapabilities

	// CreateMessageHandler, if set, allows the connected server to sample
	// an LLM message through this client.
	CreateMessageHandler func(context.Context, *CreateMessageRequest) (*CreateMessageResult, error)

	// CreateMessageWithToolsHandler, if set, allows the connected server to
	// sample an LLM message, offering it tools to call. At most one of
	// CreateMessageHandler and CreateMessageWithToolsHandler may be set.
	CreateMessageWithToolsHandler func(context.Context, *CreateMessageWithToolsRequest) (*CreateMessageWithToolsResult, error)

	// ElicitationHandler, if set, allows the connected server to request
	// additional information from the user.
	ElicitationHandler func(context.Context, *ElicitRequest) (*ElicitResult, error)

	// ElicitationCompleteHandler, if set, is called when the server reports
	// that an out-of-band elicitation has completed.
	ElicitationCompleteHandler func(context.Context, *ElicitationCompleteNotificationRequest)

	// ProgressNotificationHandler, if set, is called for every progress
	// notification received from the server.
	ProgressNotificationHandler func(ctx context.Context, req *ProgressNotificationClientRequest)

	// LoggingMessageHandler, if set, is called for every log message
	// notification received from the server.
	LoggingMessageHandler func(ctx context.Context, req *LoggingMessageRequest)

	// ToolListChangedHandler, PromptListChangedHandler, and
	// ResourceListChangedHandler, if set, are called when the server
	// reports that the corresponding list has changed.
	ToolListChangedHandler     func(context.Context, *ToolListChangedRequest)
	PromptListChangedHandler   func(context.Context, *PromptListChangedRequest)
	ResourceListChangedHandler func(context.Context, *ResourceListChangedRequest)

	// ResourceUpdatedHandler, if set, is called when the server reports
	// that a subscribed resource has changed.
	ResourceUpdatedHandler func(context.Context, *ResourceUpdatedNotificationRequest)

	// Roots lists the filesystem roots this client exposes to the server.
	Roots []*Root

	// Logger receives diagnostic output from sessions created by this
	// client. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// A Client connects to an MCP server and makes its tools, prompts, and
// resources available, via any number of sessions, each created by a call
// to [Client.Connect].
type Client struct {
	impl *Implementation
	opts ClientOptions

	mu          sync.Mutex
	sendingMW   []Middleware
	receivingMW []Middleware
}

// NewClient creates a new Client with the given implementation metadata. If
// opts is nil, default options are used.
//
// NewClient panics if opts sets both CreateMessageHandler and
// CreateMessageWithToolsHandler: a client supports one sampling contract or
// the other.
func NewClient(impl *Implementation, opts *ClientOptions) *Client {
	c := &Client{impl: impl}
	if opts != nil {
		c.opts = *opts
	}
	if c.opts.CreateMessageHandler != nil && c.opts.CreateMessageWithToolsHandler != nil {
		panic("mcp.NewClient: at most one of CreateMessageHandler and CreateMessageWithToolsHandler may be set")
	}
	if c.opts.Logger == nil {
		c.opts.Logger = slog.Default()
	}
	return c
}

// AddSendingMiddleware wraps the client's outgoing request dispatch (calls
// a ClientSession makes to its peer) with mws, in the order given: the
// first middleware is outermost.
func (c *Client) AddSendingMiddleware(mws ...Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendingMW = append(c.sendingMW, mws...)
}

// AddReceivingMiddleware wraps the client's incoming request dispatch
// (calls made by the peer and handled on a ClientSession) with mws, in the
// order given: the first middleware is outermost.
func (c *Client) AddReceivingMiddleware(mws ...Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receivingMW = append(c.receivingMW, mws...)
}

// capabilities computes the ClientCapabilities to send during initialize.
func (c *Client) capabilities() *ClientCapabilities {
	if c.opts.Capabilities != nil {
		return c.opts.Capabilities.clone()
	}
	caps := &ClientCapabilities{
		RootsV2: &RootCapabilities{ListChanged: true},
	}
	if c.opts.CreateMessageHandler != nil || c.opts.CreateMessageWithToolsHandler != nil {
		caps.Sampling = &SamplingCapabilities{}
		if c.opts.CreateMessageWithToolsHandler != nil {
			caps.Sampling.Tools = &SamplingToolsCapabilities{}
		}
	}
	if c.opts.ElicitationHandler != nil {
		caps.Elicitation = &ElicitationCapabilities{}
	}
	return caps
}

// ClientSessionOptions configures a single session created by
// [Client.Connect]. It is currently reserved for future use.
type ClientSessionOptions struct{}

// Connect connects the client to a transport, performing the initialize
// handshake and returning once it completes.
func (c *Client) Connect(ctx context.Context, t Transport, _ *ClientSessionOptions) (*ClientSession, error) {
	conn, err := t.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting transport: %w", err)
	}
	cs := &ClientSession{client: c}
	cs.conn = newJSONConn(conn, cs.rawHandler, c.opts.Logger)
	go cs.conn.run(ctx)

	initParams := &InitializeParams{
		Capabilities:    c.capabilities(),
		ClientInfo:      c.impl,
		ProtocolVersion: latestProtocolVersion,
	}
	data, err := cs.call(ctx, methodInitialize, &initializeParamsV2{
		InitializeParams: *initParams,
		Capabilities:     initParams.Capabilities.toV2(),
	})
	if err != nil {
		_ = cs.Close()
		return nil, fmt.Errorf("initialize: %w", err)
	}
	res := &InitializeResult{}
	if err := json.Unmarshal(data, res); err != nil {
		_ = cs.Close()
		return nil, err
	}
	cs.mu.Lock()
	cs.initializeResult = res
	cs.mu.Unlock()

	if err := cs.notify(ctx, notificationInitialized, &InitializedParams{}); err != nil {
		_ = cs.Close()
		return nil, fmt.Errorf("notifying initialized: %w", err)
	}
	return cs, nil
}

// A ClientSession is a single logical connection between a Client and one
// server, created by [Client.Connect].
type ClientSession struct {
	client *Client
	conn   *jsonConn

	mu               sync.Mutex
	initializeResult *InitializeResult
}

// ID returns the transport-level session identifier, or the empty string
// if the underlying transport doesn't use one.
func (cs *ClientSession) ID() string {
	if cs.conn == nil {
		return ""
	}
	return cs.conn.conn.SessionID()
}

// InitializeResult returns the result the server sent in response to this
// session's initialize request.
func (cs *ClientSession) InitializeResult() *InitializeResult {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.initializeResult
}

// Ping sends a ping request to the server.
func (cs *ClientSession) Ping(ctx context.Context, params *PingParams) error {
	if params == nil {
		params = &PingParams{}
	}
	_, err := cs.call(ctx, methodPing, params)
	return err
}

// CallTool invokes a tool on the server.
func (cs *ClientSession) CallTool(ctx context.Context, params *CallToolParams) (*CallToolResult, error) {
	if params == nil {
		params = &CallToolParams{}
	}
	data, err := cs.call(ctx, methodCallTool, params)
	if err != nil {
		return nil, err
	}
	res := &CallToolResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ListTools lists the tools the server offers.
func (cs *ClientSession) ListTools(ctx context.Context, params *ListToolsParams) (*ListToolsResult, error) {
	if params == nil {
		params = &ListToolsParams{}
	}
	data, err := cs.call(ctx, methodListTools, params)
	if err != nil {
		return nil, err
	}
	res := &ListToolsResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ListPrompts lists the prompts the server offers.
func (cs *ClientSession) ListPrompts(ctx context.Context, params *ListPromptsParams) (*ListPromptsResult, error) {
	if params == nil {
		params = &ListPromptsParams{}
	}
	data, err := cs.call(ctx, methodListPrompts, params)
	if err != nil {
		return nil, err
	}
	res := &ListPromptsResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetPrompt fetches a prompt from the server.
func (cs *ClientSession) GetPrompt(ctx context.Context, params *GetPromptParams) (*GetPromptResult, error) {
	if params == nil {
		params = &GetPromptParams{}
	}
	data, err := cs.call(ctx, methodGetPrompt, params)
	if err != nil {
		return nil, err
	}
	res := &GetPromptResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ListResources lists the resources the server offers.
func (cs *ClientSession) ListResources(ctx context.Context, params *ListResourcesParams) (*ListResourcesResult, error) {
	if params == nil {
		params = &ListResourcesParams{}
	}
	data, err := cs.call(ctx, methodListResources, params)
	if err != nil {
		return nil, err
	}
	res := &ListResourcesResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ListResourceTemplates lists the resource templates the server offers.
func (cs *ClientSession) ListResourceTemplates(ctx context.Context, params *ListResourceTemplatesParams) (*ListResourceTemplatesResult, error) {
	if params == nil {
		params = &ListResourceTemplatesParams{}
	}
	data, err := cs.call(ctx, methodListResourceTemplates, params)
	if err != nil {
		return nil, err
	}
	res := &ListResourceTemplatesResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ReadResource reads a resource from the server.
func (cs *ClientSession) ReadResource(ctx context.Context, params *ReadResourceParams) (*ReadResourceResult, error) {
	if params == nil {
		params = &ReadResourceParams{}
	}
	data, err := cs.call(ctx, methodReadResource, params)
	if err != nil {
		return nil, err
	}
	res := &ReadResourceResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Subscribe asks the server to notify this session of changes to a resource.
func (cs *ClientSession) Subscribe(ctx context.Context, params *SubscribeParams) error {
	_, err := cs.call(ctx, methodSubscribe, params)
	return err
}

// Unsubscribe asks the server to stop notifying this session of changes to
// a resource.
func (cs *ClientSession) Unsubscribe(ctx context.Context, params *UnsubscribeParams) error {
	_, err := cs.call(ctx, methodUnsubscribe, params)
	return err
}

// SetLevel sets the minimum severity of log messages the server should send
// to this session.
func (cs *ClientSession) SetLevel(ctx context.Context, params *SetLoggingLevelParams) error {
	_, err := cs.call(ctx, methodSetLevel, params)
	return err
}

// Complete asks the server to complete a partial argument value.
func (cs *ClientSession) Complete(ctx context.Context, params *CompleteParams) (*CompleteResult, error) {
	data, err := cs.call(ctx, methodComplete, params)
	if err != nil {
		return nil, err
	}
	res := &CompleteResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Close terminates the session.
func (cs *ClientSession) Close() error {
	return cs.conn.Close()
}

// Wait blocks until the session's connection closes, returning the error
// that ended it, or nil if it closed cleanly.
func (cs *ClientSession) Wait() error {
	cs.conn.Wait()
	return cs.conn.Err()
}

func (cs *ClientSession) call(ctx context.Context, method string, params Params) (json.RawMessage, error) {
	h := MethodHandler(func(ctx context.Context, method string, req Request) (Result, error) {
		data, err := cs.conn.call(ctx, method, req.GetParams())
		if err != nil {
			return nil, err
		}
		return rawResult(data), nil
	})
	h = chainMiddleware(h, cs.client.sendingMW)
	req := &ClientRequest[Params]{Session: cs, Params: params}
	res, err := h(ctx, method, req)
	if err != nil {
		return nil, err
	}
	if rr, ok := res.(rawResult); ok {
		return json.RawMessage(rr), nil
	}
	return json.Marshal(res)
}

func (cs *ClientSession) notify(ctx context.Context, method string, params Params) error {
	h := MethodHandler(func(ctx context.Context, method string, req Request) (Result, error) {
		return nil, cs.conn.notify(ctx, method, req.GetParams())
	})
	h = chainMiddleware(h, cs.client.sendingMW)
	req := &ClientRequest[Params]{Session: cs, Params: params}
	_, err := h(ctx, method, req)
	return err
}

// rawHandler is the entry point invoked by jsonConn for every incoming
// request or notification on this session.
func (cs *ClientSession) rawHandler(ctx context.Context, method string, rawParams json.RawMessage) (Result, error) {
	base := MethodHandler(cs.dispatch)
	h := chainMiddleware(base, cs.client.receivingMW)
	req, err := cs.buildRequest(method, rawParams)
	if err != nil {
		return nil, err
	}
	return h(ctx, method, req)
}

func (cs *ClientSession) buildRequest(method string, rawParams json.RawMessage) (Request, error) {
	newParams := func(p Params) (Params, error) {
		if len(rawParams) > 0 {
			if err := json.Unmarshal(rawParams, p); err != nil {
				return nil, fmt.Errorf("unmarshaling params for %q: %w", method, err)
			}
		}
		return p, nil
	}
	switch method {
	case methodListRoots:
		p, err := newParams(&ListRootsParams{})
		if err != nil {
			return nil, err
		}
		return &ClientRequest[*ListRootsParams]{Session: cs, Params: p.(*ListRootsParams)}, nil
	case methodCreateMessage:
		p, err := newParams(&CreateMessageParams{})
		if err != nil {
			return nil, err
		}
		return &ClientRequest[*CreateMessageParams]{Session: cs, Params: p.(*CreateMessageParams)}, nil
	case methodElicit:
		p, err := newParams(&ElicitParams{})
		if err != nil {
			return nil, err
		}
		return &ClientRequest[*ElicitParams]{Session: cs, Params: p.(*ElicitParams)}, nil
	case methodPing:
		p, err := newParams(&PingParams{})
		if err != nil {
			return nil, err
		}
		return &ClientRequest[*PingParams]{Session: cs, Params: p.(*PingParams)}, nil
	case notificationProgress:
		p, err := newParams(&ProgressNotificationParams{})
		if err != nil {
			return nil, err
		}
		return &ClientRequest[*ProgressNotificationParams]{Session: cs, Params: p.(*ProgressNotificationParams)}, nil
	case notificationLoggingMessage:
		p, err := newParams(&LoggingMessageParams{})
		if err != nil {
			return nil, err
		}
		return &ClientRequest[*LoggingMessageParams]{Session: cs, Params: p.(*LoggingMessageParams)}, nil
	case notificationToolListChanged:
		p, err := newParams(&ToolListChangedParams{})
		if err != nil {
			return nil, err
		}
		return &ClientRequest[*ToolListChangedParams]{Session: cs, Params: p.(*ToolListChangedParams)}, nil
	case notificationPromptListChanged:
		p, err := newParams(&PromptListChangedParams{})
		if err != nil {
			return nil, err
		}
		return &ClientRequest[*PromptListChangedParams]{Session: cs, Params: p.(*PromptListChangedParams)}, nil
	case notificationResourceListChanged:
		p, err := newParams(&ResourceListChangedParams{})
		if err != nil {
			return nil, err
		}
		return &ClientRequest[*ResourceListChangedParams]{Session: cs, Params: p.(*ResourceListChangedParams)}, nil
	case notificationResourceUpdated:
		p, err := newParams(&ResourceUpdatedNotificationParams{})
		if err != nil {
			return nil, err
		}
		return &ClientRequest[*ResourceUpdatedNotificationParams]{Session: cs, Params: p.(*ResourceUpdatedNotificationParams)}, nil
	case notificationElicitationComplete:
		p, err := newParams(&ElicitationCompleteParams{})
		if err != nil {
			return nil, err
		}
		return &ClientRequest[*ElicitationCompleteParams]{Session: cs, Params: p.(*ElicitationCompleteParams)}, nil
	default:
		return nil, jsonrpcMethodNotFound(method)
	}
}

func (cs *ClientSession) dispatch(ctx context.Context, method string, req Request) (Result, error) {
	opts := cs.client.opts
	switch method {
	case methodListRoots:
		return &ListRootsResult{Roots: opts.Roots}, nil
	case methodCreateMessage:
		return cs.handleCreateMessage(ctx, req.(*ClientRequest[*CreateMessageParams]))
	case methodElicit:
		if opts.ElicitationHandler == nil {
			return nil, jsonrpcMethodNotFound(method)
		}
		return opts.ElicitationHandler(ctx, req.(*ElicitRequest))
	case methodPing:
		return &emptyResult{}, nil
	case notificationProgress:
		if opts.ProgressNotificationHandler != nil {
			opts.ProgressNotificationHandler(ctx, req.(*ProgressNotificationClientRequest))
		}
		return nil, nil
	case notificationLoggingMessage:
		if opts.LoggingMessageHandler != nil {
			opts.LoggingMessageHandler(ctx, req.(*LoggingMessageRequest))
		}
		return nil, nil
	case notificationToolListChanged:
		if opts.ToolListChangedHandler != nil {
			opts.ToolListChangedHandler(ctx, req.(*ToolListChangedRequest))
		}
		return nil, nil
	case notificationPromptListChanged:
		if opts.PromptListChangedHandler != nil {
			opts.PromptListChangedHandler(ctx, req.(*PromptListChangedRequest))
		}
		return nil, nil
	case notificationResourceListChanged:
		if opts.ResourceListChangedHandler != nil {
			opts.ResourceListChangedHandler(ctx, req.(*ResourceListChangedRequest))
		}
		return nil, nil
	case notificationResourceUpdated:
		if opts.ResourceUpdatedHandler != nil {
			opts.ResourceUpdatedHandler(ctx, req.(*ResourceUpdatedNotificationRequest))
		}
		return nil, nil
	case notificationElicitationComplete:
		if opts.ElicitationCompleteHandler != nil {
			opts.ElicitationCompleteHandler(ctx, req.(*ElicitationCompleteNotificationRequest))
		}
		return nil, nil
	default:
		return nil, jsonrpcMethodNotFound(method)
	}
}

// handleCreateMessage dispatches an incoming sampling/createMessage request
// to whichever of CreateMessageHandler/CreateMessageWithToolsHandler is
// configured, transparently adapting params and results when the server's
// request shape doesn't match the configured handler's.
func (cs *ClientSession) handleCreateMessage(ctx context.Context, req *ClientRequest[*CreateMessageParams]) (Result, error) {
	opts := cs.client.opts
	switch {
	case opts.CreateMessageHandler != nil:
		return opts.CreateMessageHandler(ctx, req)
	case opts.CreateMessageWithToolsHandler != nil:
		wtParams := &CreateMessageWithToolsParams{
			Meta:             req.Params.Meta,
			Messages:         promoteSamplingMessages(req.Params.Messages),
			IncludeContext:   req.Params.IncludeContext,
			MaxTokens:        req.Params.MaxTokens,
			Metadata:         req.Params.Metadata,
			ModelPreferences: req.Params.ModelPreferences,
			StopSequences:    req.Params.StopSequences,
			SystemPrompt:     req.Params.SystemPrompt,
			Temperature:      req.Params.Temperature,
		}
		wtReq := &CreateMessageWithToolsRequest{Session: cs, Params: wtParams}
		res, err := opts.CreateMessageWithToolsHandler(ctx, wtReq)
		if err != nil {
			return nil, err
		}
		if len(res.Content) > 1 {
			return nil, fmt.Errorf("result has %d content blocks; use CreateMessageWithTools to support multiple content", len(res.Content))
		}
		base := &CreateMessageResult{
			Meta:       res.Meta,
			Content:    res.Content[0],
			Model:      res.Model,
			Role:       res.Role,
			StopReason: res.StopReason,
		}
		return base, nil
	default:
		return nil, jsonrpcMethodNotFound(methodCreateMessage)
	}
}

// promoteSamplingMessages converts base sampling messages (one content
// block each) to the WithTools shape (a slice of content blocks each), for
// forwarding a basic sampling/createMessage request to a handler that only
// understands CreateMessageWithTools.
func promoteSamplingMessages(msgs []*SamplingMessage) []*SamplingMessageV2 {
	out := make([]*SamplingMessageV2, len(msgs))
	for i, m := range msgs {
		out[i] = &SamplingMessageV2{Role: m.Role, Content: []Content{m.Content}}
	}
	return out
}

// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gomcp/core/jsonrpc"
)

// latestProtocolVersion is the protocol revision this package implements and
// advertises during the initialize handshake.
const latestProtocolVersion = "2025-06-18"

// ServerOptions configures the behavior of a [Server].
type ServerOptions struct {
	// Instructions are returned to clients in the initialize response,
	// describing how to use the server and its features.
	Instructions string

	// KeepAlive, if positive, causes every ServerSession to periodically
	// ping its peer, closing the session if a ping round-trip fails.
	KeepAlive time.Duration

	// PageSize is the maximum number of items returned by a single call to
	// a paginated list method. The zero value uses defaultPageSize.
	PageSize int

	// HasPrompts, HasResources, and HasTools force the corresponding
	// capability to be advertised even if no features of that kind have
	// been registered yet, for servers that register features lazily.
	HasPrompts   bool
	HasResources bool
	HasTools     bool

	// CompletionHandler, if set, handles completion/complete requests and
	// causes the completions capability to be advertised.
	CompletionHandler func(context.Context, *CompleteRequest) (*CompleteResult, error)

	// SubscribeHandler and UnsubscribeHandler, if both set (together with
	// at least one registered resource or resource template), cause the
	// server to advertise resource subscription support.
	SubscribeHandler   func(context.Context, *SubscribeRequest) error
	UnsubscribeHandler func(context.Context, *UnsubscribeRequest) error

	// InitializedHandler, if set, is called after a ServerSession finishes
	// processing the client's notifications/initialized notification.
	InitializedHandler func(context.Context, *InitializedRequest)

	// SchemaCache, if set, is used to cache inferred and resolved JSON
	// schemas across calls to the generic AddTool, so that repeated
	// registrations of tools sharing argument/result types need not
	// re-infer and re-resolve their schemas.
	SchemaCache *schemaCache

	// Logger receives diagnostic output from sessions created by this
	// server. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// A Server serves MCP features (tools, prompts, resources) to any number of
// client sessions, each created by a call to [Server.Connect].
type Server struct {
	impl *Implementation
	opts ServerOptions

	mu                sync.Mutex
	tools             *featureSet[*serverTool]
	prompts           *featureSet[*serverPrompt]
	resources         *featureSet[*serverResource]
	resourceTemplates *featureSet[*serverResourceTemplate]
	sendingMW         []Middleware
	receivingMW       []Middleware
}

// NewServer creates a new Server with the given implementation metadata. If
// opts is nil, default options are used.
func NewServer(impl *Implementation, opts *ServerOptions) *Server {
	s := &Server{
		impl:              impl,
		tools:             newFeatureSet(func(t *serverTool) string { return t.tool.Name }),
		prompts:           newFeatureSet(func(p *serverPrompt) string { return p.prompt.Name }),
		resources:         newFeatureSet(func(r *serverResource) string { return r.resource.URI }),
		resourceTemplates: newFeatureSet(func(t *serverResourceTemplate) string { return t.resourceTemplate.URITemplate }),
	}
	if opts != nil {
		s.opts = *opts
	}
	if s.opts.Logger == nil {
		s.opts.Logger = slog.Default()
	}
	if s.opts.PageSize <= 0 {
		s.opts.PageSize = defaultPageSize
	}
	return s
}

// AddTool registers t on the server with the raw handler h. If h is nil, the
// tool responds to every call with an empty result. Registering a tool whose
// name is already registered replaces the existing registration.
//
// Most callers should prefer the generic [AddTool] function, which infers
// and validates JSON schemas from Go types.
func (s *Server) AddTool(t *Tool, h ToolHandler) {
	st, err := newServerTool(t, h)
	if err != nil {
		// newServerTool only fails to resolve a schema explicitly supplied
		// on t; such a caller-supplied schema error is a programming error.
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools.add(st)
}

// AddTool registers a tool on s with a typed handler. The tool's input
// schema is inferred from In if t.InputSchema is unset, and its output
// schema is inferred from Out (unless Out is the empty interface) if
// t.OutputSchema is unset. It panics if the inferred or supplied schemas do
// not describe a JSON object, since tool arguments and structured results
// are always objects.
func AddTool[In, Out any](s *Server, t *Tool, h TypedToolHandler[In, Out]) {
	st, err := newTypedServerToolCached(t, h, s.opts.SchemaCache)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools.add(st)
}

// AddPrompt registers p on the server with handler h.
func (s *Server) AddPrompt(p *Prompt, h PromptHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts.add(&serverPrompt{prompt: p, handler: h})
}

// AddResource registers r on the server with handler h.
func (s *Server) AddResource(r *Resource, h ResourceHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources.add(&serverResource{resource: r, handler: h})
}

// AddResourceTemplate registers rt on the server with handler h. It panics
// if rt's URI template cannot be compiled.
func (s *Server) AddResourceTemplate(rt *ResourceTemplate, h ResourceHandler) {
	srt := newServerResourceTemplate(rt, h)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resourceTemplates.add(srt)
}

// AddSendingMiddleware wraps the server's outgoing request dispatch (calls
// a ServerSession makes to its peer) with mws, in the order given: the
// first middleware is outermost.
func (s *Server) AddSendingMiddleware(mws ...Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendingMW = append(s.sendingMW, mws...)
}

// AddReceivingMiddleware wraps the server's incoming request dispatch
// (calls made by the peer and handled on a ServerSession) with mws, in the
// order given: the first middleware is outermost.
func (s *Server) AddReceivingMiddleware(mws ...Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receivingMW = append(s.receivingMW, mws...)
}

// capabilities computes the ServerCapabilities to advertise during
// initialize, based on registered features and options.
func (s *Server) capabilities() *ServerCapabilities {
	s.mu.Lock()
	defer s.mu.Unlock()

	caps := &ServerCapabilities{
		Logging: &LoggingCapabilities{},
	}
	if s.opts.HasPrompts || s.prompts.len() > 0 {
		caps.Prompts = &PromptCapabilities{ListChanged: true}
	}
	if s.opts.HasResources || s.resources.len() > 0 || s.resourceTemplates.len() > 0 {
		rc := &ResourceCapabilities{ListChanged: true}
		if s.opts.SubscribeHandler != nil && s.opts.UnsubscribeHandler != nil {
			rc.Subscribe = true
		}
		caps.Resources = rc
	}
	if s.opts.HasTools || s.tools.len() > 0 {
		caps.Tools = &ToolCapabilities{ListChanged: true}
	}
	if s.opts.CompletionHandler != nil {
		caps.Completions = &CompletionCapabilities{}
	}
	return caps
}

// Connect connects the server to a transport, starting a new ServerSession.
// Connect returns once the connection is established; it does not wait for
// the client to complete the initialize handshake.
func (s *Server) Connect(ctx context.Context, t Transport, _ *ServerSessionOptions) (*ServerSession, error) {
	conn, err := t.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting transport: %w", err)
	}
	ss := &ServerSession{server: s}
	ss.conn = newJSONConn(conn, ss.rawHandler, s.opts.Logger)
	go ss.conn.run(ctx)
	return ss, nil
}

// ServerSessionOptions configures a single session created by
// [Server.Connect]. It is currently reserved for future use.
type ServerSessionOptions struct{}

// A ServerSession is a single logical connection between a Server and one
// client, created by [Server.Connect].
type ServerSession struct {
	server *Server
	conn   *jsonConn

	mu                sync.Mutex
	initializeParams  *InitializeParams
	initialized       bool
	logLevel          LoggingLevel
	keepaliveCancel   context.CancelFunc
}

// ID returns the transport-level session identifier, or the empty string
// if the underlying transport doesn't use one.
func (ss *ServerSession) ID() string {
	if ss.conn == nil {
		return ""
	}
	return ss.conn.conn.SessionID()
}

// InitializeParams returns the parameters the client sent with its
// initialize request, or nil if initialization has not completed.
func (ss *ServerSession) InitializeParams() *InitializeParams {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.initializeParams
}

func (ss *ServerSession) initialize(ctx context.Context, params *InitializeParams) (*InitializeResult, error) {
	ss.mu.Lock()
	if ss.initializeParams != nil {
		ss.mu.Unlock()
		return nil, errors.New("duplicate initialize request")
	}
	ss.initializeParams = params
	ss.mu.Unlock()
	return &InitializeResult{
		Capabilities:    ss.server.capabilities(),
		Instructions:    ss.server.opts.Instructions,
		ProtocolVersion: latestProtocolVersion,
		ServerInfo:      ss.server.impl,
	}, nil
}

func (ss *ServerSession) initialized(ctx context.Context, params *InitializedParams) (*InitializedParams, error) {
	ss.mu.Lock()
	if ss.initialized {
		ss.mu.Unlock()
		return nil, errors.New("duplicate initialized received")
	}
	ss.initialized = true
	keepAlive := ss.server.opts.KeepAlive
	ss.mu.Unlock()

	if keepAlive > 0 {
		kctx, cancel := context.WithCancel(context.Background())
		ss.mu.Lock()
		ss.keepaliveCancel = cancel
		ss.mu.Unlock()
		go ss.startKeepalive(kctx, keepAlive)
	}
	if h := ss.server.opts.InitializedHandler; h != nil {
		h(ctx, &InitializedRequest{Session: ss, Params: params})
	}
	return params, nil
}

func (ss *ServerSession) startKeepalive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ss.Ping(ctx, nil); err != nil {
				_ = ss.Close()
				return
			}
		}
	}
}

// Ping sends a ping request to the client.
func (ss *ServerSession) Ping(ctx context.Context, params *PingParams) error {
	if params == nil {
		params = &PingParams{}
	}
	_, err := ss.call(ctx, methodPing, params)
	return err
}

// ListRoots requests the list of filesystem roots the client has exposed.
func (ss *ServerSession) ListRoots(ctx context.Context, params *ListRootsParams) (*ListRootsResult, error) {
	if params == nil {
		params = &ListRootsParams{}
	}
	data, err := ss.call(ctx, methodListRoots, params)
	if err != nil {
		return nil, err
	}
	res := &ListRootsResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Elicit requests additional information from the user via the client. It
// returns an error if the client has not declared elicitation support.
func (ss *ServerSession) Elicit(ctx context.Context, params *ElicitParams) (*ElicitResult, error) {
	if !ss.clientSupportsElicitation() {
		return nil, errors.New("client does not support elicitation")
	}
	if err := validateElicitParams(params); err != nil {
		return nil, err
	}
	data, err := ss.call(ctx, methodElicit, params)
	if err != nil {
		return nil, err
	}
	res := &ElicitResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	if err := validateElicitContent(params, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (ss *ServerSession) clientSupportsElicitation() bool {
	ip := ss.InitializeParams()
	return ip != nil && ip.Capabilities != nil && ip.Capabilities.Elicitation != nil
}

func (ss *ServerSession) clientSamplingCapabilities() *SamplingCapabilities {
	ip := ss.InitializeParams()
	if ip == nil || ip.Capabilities == nil {
		return nil
	}
	return ip.Capabilities.Sampling
}

// CreateMessage asks the client to sample an LLM message. If the connected
// client only supports CreateMessageWithTools, the request and response are
// adapted transparently; this fails if the client's response contains more
// than one content block.
func (ss *ServerSession) CreateMessage(ctx context.Context, params *CreateMessageParams) (*CreateMessageResult, error) {
	if ss.clientSamplingCapabilities() == nil {
		return nil, errors.New("client does not support sampling")
	}
	data, err := ss.call(ctx, methodCreateMessage, params)
	if err != nil {
		return nil, err
	}
	res := &CreateMessageResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res, nil
}

// CreateMessageWithTools asks the client to sample an LLM message, offering
// it tools to call. If the connected client only supports the base
// CreateMessage method, the request and response are adapted transparently.
func (ss *ServerSession) CreateMessageWithTools(ctx context.Context, params *CreateMessageWithToolsParams) (*CreateMessageWithToolsResult, error) {
	caps := ss.clientSamplingCapabilities()
	if caps == nil {
		return nil, errors.New("client does not support sampling")
	}
	data, err := ss.call(ctx, methodCreateMessage, params)
	if err != nil {
		return nil, err
	}
	if caps.Tools != nil {
		res := &CreateMessageWithToolsResult{}
		if err := json.Unmarshal(data, res); err != nil {
			return nil, err
		}
		return res, nil
	}
	res := &CreateMessageResult{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, err
	}
	return res.toWithTools(), nil
}

// NotifyProgress sends a progress notification to the client for an
// in-flight request that provided a progress token.
func (ss *ServerSession) NotifyProgress(ctx context.Context, params *ProgressNotificationParams) error {
	return ss.notify(ctx, notificationProgress, params)
}

// Log sends a logging message notification to the client, if the message's
// level meets or exceeds the level most recently set by the client via
// logging/setLevel.
func (ss *ServerSession) Log(ctx context.Context, params *LoggingMessageParams) error {
	ss.mu.Lock()
	level := ss.logLevel
	ss.mu.Unlock()
	if level != "" && !levelAtLeast(params.Level, level) {
		return nil
	}
	return ss.notify(ctx, notificationLoggingMessage, params)
}

// Close terminates the session.
func (ss *ServerSession) Close() error {
	ss.mu.Lock()
	cancel := ss.keepaliveCancel
	ss.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return ss.conn.Close()
}

// Wait blocks until the session's connection closes, returning the error
// that ended it, or nil if it closed cleanly.
func (ss *ServerSession) Wait() error {
	ss.conn.Wait()
	return ss.conn.Err()
}

func (ss *ServerSession) call(ctx context.Context, method string, params Params) (json.RawMessage, error) {
	h := MethodHandler(func(ctx context.Context, method string, req Request) (Result, error) {
		data, err := ss.conn.call(ctx, method, req.GetParams())
		if err != nil {
			return nil, err
		}
		return rawResult(data), nil
	})
	h = chainMiddleware(h, ss.server.sendingMW)
	req := &ServerRequest[Params]{Session: ss, Params: params}
	res, err := h(ctx, method, req)
	if err != nil {
		return nil, err
	}
	if rr, ok := res.(rawResult); ok {
		return json.RawMessage(rr), nil
	}
	return json.Marshal(res)
}

func (ss *ServerSession) notify(ctx context.Context, method string, params Params) error {
	h := MethodHandler(func(ctx context.Context, method string, req Request) (Result, error) {
		return nil, ss.conn.notify(ctx, method, req.GetParams())
	})
	h = chainMiddleware(h, ss.server.sendingMW)
	req := &ServerRequest[Params]{Session: ss, Params: params}
	_, err := h(ctx, method, req)
	return err
}

// rawResult wraps an already-encoded JSON result so that it can flow
// through the generic Result-typed middleware pipeline without a
// round-trip through a concrete Go type.
type rawResult json.RawMessage

func (rawResult) isResult() {}
func (r rawResult) GetMeta() Meta { return nil }
func (r rawResult) MarshalJSON() ([]byte, error) { return json.RawMessage(r), nil }

// rawHandler is the entry point invoked by jsonConn for every incoming
// request or notification on this session.
func (ss *ServerSession) rawHandler(ctx context.Context, method string, rawParams json.RawMessage) (Result, error) {
	base := MethodHandler(ss.dispatch)
	h := chainMiddleware(base, ss.server.receivingMW)
	req, err := ss.buildRequest(method, rawParams)
	if err != nil {
		return nil, err
	}
	return h(ctx, method, req)
}

// buildRequest decodes rawParams into the concrete Params type expected by
// method, wrapping it in a ServerRequest envelope.
func (ss *ServerSession) buildRequest(method string, rawParams json.RawMessage) (Request, error) {
	newParams := func(p Params) (Params, error) {
		if len(rawParams) > 0 {
			if err := json.Unmarshal(rawParams, p); err != nil {
				return nil, fmt.Errorf("unmarshaling params for %q: %w", method, err)
			}
		}
		return p, nil
	}
	switch method {
	case methodInitialize:
		p, err := newParams(&InitializeParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*InitializeParams]{Session: ss, Params: p.(*InitializeParams)}, nil
	case notificationInitialized:
		p, err := newParams(&InitializedParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*InitializedParams]{Session: ss, Params: p.(*InitializedParams)}, nil
	case methodCallTool:
		p, err := newParams(&CallToolParamsRaw{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*CallToolParamsRaw]{Session: ss, Params: p.(*CallToolParamsRaw)}, nil
	case methodListTools:
		p, err := newParams(&ListToolsParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*ListToolsParams]{Session: ss, Params: p.(*ListToolsParams)}, nil
	case methodListPrompts:
		p, err := newParams(&ListPromptsParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*ListPromptsParams]{Session: ss, Params: p.(*ListPromptsParams)}, nil
	case methodGetPrompt:
		p, err := newParams(&GetPromptParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*GetPromptParams]{Session: ss, Params: p.(*GetPromptParams)}, nil
	case methodListResources:
		p, err := newParams(&ListResourcesParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*ListResourcesParams]{Session: ss, Params: p.(*ListResourcesParams)}, nil
	case methodListResourceTemplates:
		p, err := newParams(&ListResourceTemplatesParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*ListResourceTemplatesParams]{Session: ss, Params: p.(*ListResourceTemplatesParams)}, nil
	case methodReadResource:
		p, err := newParams(&ReadResourceParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*ReadResourceParams]{Session: ss, Params: p.(*ReadResourceParams)}, nil
	case methodSubscribe:
		p, err := newParams(&SubscribeParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*SubscribeParams]{Session: ss, Params: p.(*SubscribeParams)}, nil
	case methodUnsubscribe:
		p, err := newParams(&UnsubscribeParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*UnsubscribeParams]{Session: ss, Params: p.(*UnsubscribeParams)}, nil
	case methodSetLevel:
		p, err := newParams(&SetLoggingLevelParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*SetLoggingLevelParams]{Session: ss, Params: p.(*SetLoggingLevelParams)}, nil
	case methodComplete:
		p, err := newParams(&CompleteParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*CompleteParams]{Session: ss, Params: p.(*CompleteParams)}, nil
	case methodPing:
		p, err := newParams(&PingParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*PingParams]{Session: ss, Params: p.(*PingParams)}, nil
	case notificationRootsListChanged:
		p, err := newParams(&RootsListChangedParams{})
		if err != nil {
			return nil, err
		}
		return &ServerRequest[*RootsListChangedParams]{Session: ss, Params: p.(*RootsListChangedParams)}, nil
	default:
		return nil, jsonrpcMethodNotFound(method)
	}
}

// dispatch is the innermost MethodHandler: it performs the actual work for
// each supported method, after middleware has run.
func (ss *ServerSession) dispatch(ctx context.Context, method string, req Request) (Result, error) {
	switch method {
	case methodInitialize:
		return ss.initialize(ctx, req.GetParams().(*InitializeParams))
	case notificationInitialized:
		return ss.initialized(ctx, req.GetParams().(*InitializedParams))
	case methodCallTool:
		return ss.handleCallTool(ctx, req.(*ServerRequest[*CallToolParamsRaw]))
	case methodListTools:
		return ss.handleListTools(ctx, req.(*ServerRequest[*ListToolsParams]))
	case methodListPrompts:
		return ss.handleListPrompts(ctx, req.(*ServerRequest[*ListPromptsParams]))
	case methodGetPrompt:
		return ss.handleGetPrompt(ctx, req.(*ServerRequest[*GetPromptParams]))
	case methodListResources:
		return ss.handleListResources(ctx, req.(*ServerRequest[*ListResourcesParams]))
	case methodListResourceTemplates:
		return ss.handleListResourceTemplates(ctx, req.(*ServerRequest[*ListResourceTemplatesParams]))
	case methodReadResource:
		return ss.handleReadResource(ctx, req.(*ServerRequest[*ReadResourceParams]))
	case methodSubscribe:
		if ss.server.opts.SubscribeHandler == nil {
			return nil, jsonrpcMethodNotFound(method)
		}
		return nil, ss.server.opts.SubscribeHandler(ctx, req.(*ServerRequest[*SubscribeParams]))
	case methodUnsubscribe:
		if ss.server.opts.UnsubscribeHandler == nil {
			return nil, jsonrpcMethodNotFound(method)
		}
		return nil, ss.server.opts.UnsubscribeHandler(ctx, req.(*ServerRequest[*UnsubscribeParams]))
	case methodSetLevel:
		p := req.GetParams().(*SetLoggingLevelParams)
		ss.mu.Lock()
		ss.logLevel = p.Level
		ss.mu.Unlock()
		return &emptyResult{}, nil
	case methodComplete:
		if ss.server.opts.CompletionHandler == nil {
			return nil, jsonrpcMethodNotFound(method)
		}
		return ss.server.opts.CompletionHandler(ctx, req.(*ServerRequest[*CompleteParams]))
	case methodPing:
		return &emptyResult{}, nil
	case notificationRootsListChanged:
		return nil, nil
	default:
		return nil, jsonrpcMethodNotFound(method)
	}
}

func (ss *ServerSession) handleCallTool(ctx context.Context, req *ServerRequest[*CallToolParamsRaw]) (Result, error) {
	ss.server.mu.Lock()
	st, ok := ss.server.tools.get(req.Params.Name)
	ss.server.mu.Unlock()
	if !ok {
		return nil, jsonrpcInvalidParams(fmt.Sprintf("unknown tool %q", req.Params.Name))
	}
	ctReq := &CallToolRequest{Session: ss, Params: req.Params}
	return st.handler(ctx, ctReq)
}

func (ss *ServerSession) handleListTools(ctx context.Context, req *ServerRequest[*ListToolsParams]) (Result, error) {
	ss.server.mu.Lock()
	defer ss.server.mu.Unlock()
	return paginateList(ss.server.tools, ss.server.opts.PageSize, req.Params, &ListToolsResult{}, func(res *ListToolsResult, items []*serverTool) {
		for _, it := range items {
			res.Tools = append(res.Tools, it.tool)
		}
	})
}

func (ss *ServerSession) handleListPrompts(ctx context.Context, req *ServerRequest[*ListPromptsParams]) (Result, error) {
	ss.server.mu.Lock()
	defer ss.server.mu.Unlock()
	return paginateList(ss.server.prompts, ss.server.opts.PageSize, req.Params, &ListPromptsResult{}, func(res *ListPromptsResult, items []*serverPrompt) {
		for _, it := range items {
			res.Prompts = append(res.Prompts, it.prompt)
		}
	})
}

func (ss *ServerSession) handleGetPrompt(ctx context.Context, req *ServerRequest[*GetPromptParams]) (Result, error) {
	ss.server.mu.Lock()
	sp, ok := ss.server.prompts.get(req.Params.Name)
	ss.server.mu.Unlock()
	if !ok {
		return nil, jsonrpcInvalidParams(fmt.Sprintf("unknown prompt %q", req.Params.Name))
	}
	return sp.handler(ctx, req)
}

func (ss *ServerSession) handleListResources(ctx context.Context, req *ServerRequest[*ListResourcesParams]) (Result, error) {
	ss.server.mu.Lock()
	defer ss.server.mu.Unlock()
	return paginateList(ss.server.resources, ss.server.opts.PageSize, req.Params, &ListResourcesResult{}, func(res *ListResourcesResult, items []*serverResource) {
		for _, it := range items {
			res.Resources = append(res.Resources, it.resource)
		}
	})
}

func (ss *ServerSession) handleListResourceTemplates(ctx context.Context, req *ServerRequest[*ListResourceTemplatesParams]) (Result, error) {
	ss.server.mu.Lock()
	defer ss.server.mu.Unlock()
	return paginateList(ss.server.resourceTemplates, ss.server.opts.PageSize, req.Params, &ListResourceTemplatesResult{}, func(res *ListResourceTemplatesResult, items []*serverResourceTemplate) {
		for _, it := range items {
			res.ResourceTemplates = append(res.ResourceTemplates, it.resourceTemplate)
		}
	})
}

func (ss *ServerSession) handleReadResource(ctx context.Context, req *ServerRequest[*ReadResourceParams]) (Result, error) {
	ss.server.mu.Lock()
	sr, ok := ss.server.resources.get(req.Params.URI)
	var candidates []*serverResourceTemplate
	if !ok {
		for t := range ss.server.resourceTemplates.all() {
			if t.matches(req.Params.URI) {
				candidates = append(candidates, t)
			}
		}
	}
	ss.server.mu.Unlock()
	if ok {
		return sr.handler(ctx, req)
	}
	for _, t := range candidates {
		rreq := &ReadResourceRequest{Session: ss, Params: req.Params}
		return t.handler(ctx, rreq)
	}
	return nil, ResourceNotFoundError(req.Params.URI)
}

// emptyResult is a Result with no data, used for methods that respond with
// an empty JSON object, such as ping and logging/setLevel.
type emptyResult struct {
	Meta `json:"_meta,omitempty"`
}

func (*emptyResult) isResult() {}

// jsonrpcMethodNotFound builds the standard JSON-RPC "method not found"
// error for method.
func jsonrpcMethodNotFound(method string) error {
	return jsonrpc.NewError(CodeMethodNotFound, fmt.Sprintf("method not found: %q", method))
}

// levelAtLeast reports whether level meets or exceeds min in RFC 5424
// severity order (emergency is most severe, debug is least).
func levelAtLeast(level, min LoggingLevel) bool {
	order := map[LoggingLevel]int{
		"debug": 0, "info": 1, "notice": 2, "warning": 3,
		"error": 4, "critical": 5, "alert": 6, "emergency": 7,
	}
	lv, ok1 := order[level]
	mv, ok2 := order[min]
	if !ok1 || !ok2 {
		return true
	}
	return lv >= mv
}

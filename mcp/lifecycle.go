// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

// InitializeParams opens the handshake: the client states the protocol
// version it wants and what it can do.
type InitializeParams struct {
	Meta            `json:"_meta,omitempty"`
	Capabilities    *ClientCapabilities `json:"capabilities"`
	ClientInfo      *Implementation     `json:"clientInfo"`
	ProtocolVersion string              `json:"protocolVersion"`
}

func (p *InitializeParams) toV2() *initializeParamsV2 {
	return &initializeParamsV2{InitializeParams: *p, Capabilities: p.Capabilities.toV2()}
}

// initializeParamsV2 mirrors clientCapabilitiesV2's #607 pointer fix at the
// InitializeParams level.
type initializeParamsV2 struct {
	InitializeParams
	Capabilities *clientCapabilitiesV2 `json:"capabilities"`
}

func (p *initializeParamsV2) toV1() *InitializeParams {
	p1 := p.InitializeParams
	if p.Capabilities != nil {
		p1.Capabilities = p.Capabilities.toV1()
	}
	return &p1
}

func (x *InitializeParams) isParams()              {}
func (x *InitializeParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *InitializeParams) SetProgressToken(t any) { setProgressToken(x, t) }

// InitializeResult closes the handshake: the server states which protocol
// version it picked and what it can do.
type InitializeResult struct {
	Meta         `json:"_meta,omitempty"`
	Capabilities *ServerCapabilities `json:"capabilities"`
	// Instructions is a hint to the model about how to use this server; a
	// client may fold it into the system prompt.
	Instructions string `json:"instructions,omitempty"`
	// ProtocolVersion is the version the server chose, which may differ
	// from what the client requested; a client that cannot speak it must
	// disconnect.
	ProtocolVersion string          `json:"protocolVersion"`
	ServerInfo      *Implementation `json:"serverInfo"`
}

func (*InitializeResult) isResult() {}

// InitializedParams accompanies notifications/initialized, the client's
// acknowledgment that closes the handshake.
type InitializedParams struct {
	Meta `json:"_meta,omitempty"`
}

func (x *InitializedParams) isParams()              {}
func (x *InitializedParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *InitializedParams) SetProgressToken(t any) { setProgressToken(x, t) }

// PingParams accompanies the keepalive ping method, legal at any point in
// the session including before initialization completes.
type PingParams struct {
	Meta `json:"_meta,omitempty"`
}

func (x *PingParams) isParams()              {}
func (x *PingParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *PingParams) SetProgressToken(t any) { setProgressToken(x, t) }

// CancelledParams asks the peer to abandon an in-flight request it
// previously issued in the same direction.
type CancelledParams struct {
	Meta `json:"_meta,omitempty"`
	// Reason is free text that may be logged or shown to a user.
	Reason    string `json:"reason,omitempty"`
	RequestID any    `json:"requestId"`
}

func (x *CancelledParams) isParams()              {}
func (x *CancelledParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *CancelledParams) SetProgressToken(t any) { setProgressToken(x, t) }

// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

// ProgressNotificationParams reports progress against an in-flight request,
// correlated by the progress token the caller attached to that request.
type ProgressNotificationParams struct {
	Meta `json:"_meta,omitempty"`
	// ProgressToken ties this update back to the request that issued it.
	ProgressToken any    `json:"progressToken"`
	Message       string `json:"message,omitempty"`
	// Progress only ever increases, even when Total is unknown.
	Progress float64 `json:"progress"`
	// Total is the expected final value of Progress, or zero if unknown.
	Total float64 `json:"total,omitempty"`
}

func (x *ProgressNotificationParams) isParams()              {}
func (x *ProgressNotificationParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *ProgressNotificationParams) SetProgressToken(t any) { setProgressToken(x, t) }

// LoggingLevel is a syslog severity (RFC 5424 §6.2.1).
type LoggingLevel string

// LoggingMessageParams carries one log record pushed from server to client.
type LoggingMessageParams struct {
	Meta `json:"_meta,omitempty"`
	// Data is any JSON-serializable value: a string, or a structured object.
	Data   any          `json:"data"`
	Level  LoggingLevel `json:"level"`
	Logger string       `json:"logger,omitempty"`
}

func (x *LoggingMessageParams) isParams()              {}
func (x *LoggingMessageParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *LoggingMessageParams) SetProgressToken(t any) { setProgressToken(x, t) }

// SetLoggingLevelParams asks the server to emit notifications/message at
// Level and above (more severe).
type SetLoggingLevelParams struct {
	Meta  `json:"_meta,omitempty"`
	Level LoggingLevel `json:"level"`
}

func (x *SetLoggingLevelParams) isParams()              {}
func (x *SetLoggingLevelParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *SetLoggingLevelParams) SetProgressToken(t any) { setProgressToken(x, t) }

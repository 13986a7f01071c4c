// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

// This file, together with capabilities.go, tool_protocol.go,
// sampling_protocol.go, prompt_protocol.go, resource_protocol.go,
// pagination.go, lifecycle.go, completion.go, notifications.go, and
// elicit_types.go, implements the wire types for protocol revision
// 2025-06-18. Field names and JSON tags below are fixed by that revision;
// everything else (file layout, helper names, doc prose) is ours.

// Role names the sender or recipient of a conversational message: "user" or
// "assistant".
type Role string

// Annotations hint to a client how to treat a piece of content: who it is
// for, how fresh it is, and how important it is.
type Annotations struct {
	// Audience lists the intended readers, e.g. []Role{"user", "assistant"}
	// when content is relevant to both.
	Audience []Role `json:"audience,omitempty"`
	// LastModified is an ISO 8601 timestamp (e.g. "2025-01-12T15:00:58Z"),
	// such as when an attached file was last touched.
	LastModified string `json:"lastModified,omitempty"`
	// Priority ranges from 0 (entirely optional) to 1 (effectively
	// required) and describes how important the data is to the server.
	Priority float64 `json:"priority,omitempty"`
}

// IconTheme names the background an [Icon] is designed to sit on.
type IconTheme string

const (
	IconThemeLight IconTheme = "light"
	IconThemeDark  IconTheme = "dark"
)

// Icon is a visual identifier attached to a resource, tool, prompt, or
// implementation.
type Icon struct {
	// Source is an http(s) URL or a data: URI carrying base64 image data.
	Source   string `json:"src"`
	MIMEType string `json:"mimeType,omitempty"`
	// Sizes lists supported dimensions, e.g. ["48x48"], ["any"] for a
	// scalable format, or several entries for a multi-resolution icon.
	Sizes []string  `json:"sizes,omitempty"`
	Theme IconTheme `json:"theme,omitempty"`
}

// Implementation names and versions one side of an MCP session.
type Implementation struct {
	Name       string `json:"name"`
	Title      string `json:"title,omitempty"`
	Version    string `json:"version"`
	WebsiteURL string `json:"websiteUrl,omitempty"`
	Icons      []Icon `json:"icons,omitempty"`
}

// Wire method and notification names for protocol revision 2025-06-18.
const (
	methodCallTool                  = "tools/call"
	notificationCancelled           = "notifications/cancelled"
	methodComplete                  = "completion/complete"
	methodCreateMessage             = "sampling/createMessage"
	methodElicit                    = "elicitation/create"
	notificationElicitationComplete = "notifications/elicitation/complete"
	methodGetPrompt                 = "prompts/get"
	methodInitialize                = "initialize"
	notificationInitialized         = "notifications/initialized"
	methodListPrompts               = "prompts/list"
	methodListResourceTemplates     = "resources/templates/list"
	methodListResources             = "resources/list"
	methodListRoots                 = "roots/list"
	methodListTools                 = "tools/list"
	notificationLoggingMessage      = "notifications/message"
	methodPing                      = "ping"
	notificationProgress            = "notifications/progress"
	notificationPromptListChanged   = "notifications/prompts/list_changed"
	methodReadResource              = "resources/read"
	notificationResourceListChanged = "notifications/resources/list_changed"
	notificationResourceUpdated     = "notifications/resources/updated"
	notificationRootsListChanged    = "notifications/roots/list_changed"
	methodSetLevel                  = "logging/setLevel"
	methodSubscribe                 = "resources/subscribe"
	notificationToolListChanged     = "notifications/tools/list_changed"
	methodUnsubscribe               = "resources/unsubscribe"
)

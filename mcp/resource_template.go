// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// serverResourceTemplate associates a ResourceTemplate with its handler.
type serverResourceTemplate struct {
	resourceTemplate *ResourceTemplate
	handler          ResourceHandler
	matcher          *regexp.Regexp
}

// matches reports whether uri is described by the receiver's URI template.
func (rt *serverResourceTemplate) matches(uri string) bool {
	return rt.matcher.MatchString(uri)
}

// compileURITemplate validates a level-1 RFC 6570 URI template (the subset
// MCP resource templates use: simple {var} expansions, no operators, no
// modifiers) and compiles it to a regexp that matches concrete URIs produced
// by expanding it.
//
// TODO: move to github.com/yosida95/uritemplate/v3 once resource templates
// need to support more than simple expansions.
func compileURITemplate(raw string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	seen := map[string]bool{}
	pat := raw
	for len(pat) > 0 {
		literal, rest, ok := strings.Cut(pat, "{")
		b.WriteString(regexp.QuoteMeta(literal))
		if !ok {
			break
		}
		name, rest, ok := strings.Cut(rest, "}")
		if !ok {
			return nil, errors.New("unclosed '{' in URI template")
		}
		pat = rest
		if name == "" {
			return nil, errors.New("empty variable name in URI template")
		}
		if strings.ContainsAny(name, ",:*+#./;?&") {
			return nil, fmt.Errorf("unsupported URI template expression %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate variable name %q in URI template", name)
		}
		seen[name] = true
		b.WriteString(`[^/]*`)
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}

// newServerResourceTemplate builds a serverResourceTemplate from rt and h,
// panicking if rt's URI template is malformed. Handlers for resource
// templates are looked up dynamically against incoming resources/read
// requests, unlike plain resources which are looked up by exact URI.
func newServerResourceTemplate(rt *ResourceTemplate, h ResourceHandler) *serverResourceTemplate {
	re, err := compileURITemplate(rt.URITemplate)
	if err != nil {
		panic(fmt.Errorf("invalid resource template %q: %w", rt.URITemplate, err))
	}
	return &serverResourceTemplate{resourceTemplate: rt, handler: h, matcher: re}
}

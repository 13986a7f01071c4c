// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomcp/core/jsonrpc"
)

// A ResourceHandler reads the contents of a resource, or a resource that
// matches a registered resource template.
type ResourceHandler func(ctx context.Context, req *ReadResourceRequest) (*ReadResourceResult, error)

// serverResource associates a Resource with its handler.
type serverResource struct {
	resource *Resource
	handler  ResourceHandler
}

// ResourceNotFoundError returns an error indicating that a resource being
// read could not be found, surfaced to the client as a JSON-RPC error with
// CodeResourceNotFound rather than embedded in a successful result, since
// the client must be able to distinguish "no such resource" from a resource
// whose contents happen to describe an error.
func ResourceNotFoundError(uri string) error {
	return jsonrpc.NewError(CodeResourceNotFound, fmt.Sprintf("resource not found: %s", uri))
}

// fileResourceHandler returns a ResourceHandler that serves file:// resource
// reads from files rooted at dir. The URI's path is interpreted relative to
// dir; attempts to escape dir (for example via "../") are rejected.
func fileResourceHandler(dir string) ResourceHandler {
	dirAbs, err := filepath.Abs(dir)
	if err != nil {
		panic(err)
	}
	return func(_ context.Context, req *ReadResourceRequest) (*ReadResourceResult, error) {
		uri := req.Params.URI
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("reading resource %s: %w", uri, err)
		}
		if u.Scheme != "file" {
			return nil, fmt.Errorf("reading resource %s: not a file URI", uri)
		}
		rel := strings.TrimPrefix(u.Path, "/")
		path := filepath.Join(dirAbs, filepath.FromSlash(rel))
		if r, err := filepath.Rel(dirAbs, path); err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("reading resource %s: escapes %s", uri, dir)
		}
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ResourceNotFoundError(uri)
			}
			return nil, fmt.Errorf("reading resource %s: %w", uri, err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("reading resource %s: %w", uri, err)
		}
		return &ReadResourceResult{
			Contents: []*ResourceContents{{URI: uri, MIMEType: "text/plain", Text: string(data)}},
		}, nil
	}
}

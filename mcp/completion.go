// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"encoding/json"
	"fmt"

	internaljson "github.com/gomcp/core/internal/json"
)

// CompleteParamsArgument names the argument being completed and the partial
// value typed so far.
type CompleteParamsArgument struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CompleteContext supplies variables already resolved elsewhere in a URI
// template or prompt, so completions can be scoped to them.
type CompleteContext struct {
	Arguments map[string]string `json:"arguments,omitempty"`
}

// CompleteReference identifies what is being completed: a prompt argument
// (Type "ref/prompt", Name set) or a resource template variable (Type
// "ref/resource", URI set). The two are mutually exclusive by construction.
type CompleteReference struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	URI  string `json:"uri,omitempty"`
}

// validateCompleteReference enforces the Type/Name/URI mutual exclusion
// shared by marshaling and unmarshaling.
func validateCompleteReference(r *CompleteReference) error {
	switch r.Type {
	case "ref/prompt":
		if r.URI != "" {
			return fmt.Errorf("reference of type %q must not have a URI set", r.Type)
		}
	case "ref/resource":
		if r.Name != "" {
			return fmt.Errorf("reference of type %q must not have a Name set", r.Type)
		}
	default:
		return fmt.Errorf("unrecognized reference type %q", r.Type)
	}
	return nil
}

func (r *CompleteReference) UnmarshalJSON(data []byte) error {
	type alias CompleteReference
	var a alias
	if err := internaljson.Unmarshal(data, &a); err != nil {
		return err
	}
	if err := validateCompleteReference((*CompleteReference)(&a)); err != nil {
		return err
	}
	*r = CompleteReference(a)
	return nil
}

func (r *CompleteReference) MarshalJSON() ([]byte, error) {
	if err := validateCompleteReference(r); err != nil {
		return nil, err
	}
	type alias CompleteReference
	return json.Marshal((*alias)(r))
}

// CompleteParams requests completion suggestions for one prompt or
// resource-template argument.
type CompleteParams struct {
	Meta     `json:"_meta,omitempty"`
	Argument CompleteParamsArgument `json:"argument"`
	Context  *CompleteContext       `json:"context,omitempty"`
	Ref      *CompleteReference     `json:"ref"`
}

func (x *CompleteParams) isParams()              {}
func (x *CompleteParams) GetProgressToken() any  { return getProgressToken(x) }
func (x *CompleteParams) SetProgressToken(t any) { setProgressToken(x, t) }

// CompletionResultDetails carries the suggestions themselves.
type CompletionResultDetails struct {
	HasMore bool     `json:"hasMore,omitempty"`
	Total   int      `json:"total,omitempty"`
	Values  []string `json:"values"`
}

// CompleteResult is the server's answer to completion/complete.
type CompleteResult struct {
	Meta       `json:"_meta,omitempty"`
	Completion CompletionResultDetails `json:"completion"`
}

func (*CompleteResult) isResult() {}

// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"fmt"
	"iter"
	"sort"
)

// defaultPageSize is used when a caller requests a page of listed features
// without specifying a size.
const defaultPageSize = 1000

// featureSet is an ordered-by-key collection of registered features (tools,
// prompts, resources, resource templates), keyed by name or URI. Iteration is
// always in sorted-key order, so that pagination cursors remain stable across
// additions and removals.
type featureSet[T any] struct {
	keyFunc func(T) string
	items   map[string]T
}

// newFeatureSet creates an empty featureSet whose entries are keyed by keyFunc.
func newFeatureSet[T any](keyFunc func(T) string) *featureSet[T] {
	return &featureSet[T]{keyFunc: keyFunc, items: make(map[string]T)}
}

// add inserts or overwrites entries in the set, keyed by keyFunc(item).
func (s *featureSet[T]) add(items ...T) {
	for _, it := range items {
		s.items[s.keyFunc(it)] = it
	}
}

// remove deletes the entries with the given keys, if present.
func (s *featureSet[T]) remove(keys ...string) {
	for _, k := range keys {
		delete(s.items, k)
	}
}

// get returns the entry for key, if present.
func (s *featureSet[T]) get(key string) (T, bool) {
	v, ok := s.items[key]
	return v, ok
}

// len returns the number of entries in the set.
func (s *featureSet[T]) len() int { return len(s.items) }

func (s *featureSet[T]) sortedKeys() []string {
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// all iterates over every entry in ascending key order.
func (s *featureSet[T]) all() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, k := range s.sortedKeys() {
			if !yield(s.items[k]) {
				return
			}
		}
	}
}

// above iterates over every entry whose key sorts strictly after key, in
// ascending key order.
func (s *featureSet[T]) above(key string) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, k := range s.sortedKeys() {
			if k <= key {
				continue
			}
			if !yield(s.items[k]) {
				return
			}
		}
	}
}

// cursorParams is implemented by list request params types that carry a
// pagination cursor.
type cursorParams interface {
	cursorPtr() *string
}

// cursorResult is implemented by list result types that carry a
// next-page cursor.
type cursorResult interface {
	nextCursorPtr() *string
}

// paginateList computes a single page of fs, starting just after the cursor
// in params, and writes it into res via setItems. The page holds at most
// pageSize items (defaultPageSize if pageSize <= 0); res's next cursor is set
// if more items remain.
func paginateList[T any, P cursorParams, R cursorResult](fs *featureSet[T], pageSize int, params P, res R, setItems func(R, []T)) (R, error) {
	var zero R
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	start := ""
	if cursor := *params.cursorPtr(); cursor != "" {
		decoded, err := decodeCursor(cursor)
		if err != nil {
			return zero, fmt.Errorf("invalid cursor: %w", err)
		}
		start = decoded
	}

	seq := fs.all()
	if start != "" {
		seq = fs.above(start)
	}

	var items []T
	var last string
	for it := range seq {
		if len(items) == pageSize {
			break
		}
		items = append(items, it)
		last = fs.keyFunc(it)
	}
	setItems(res, items)

	if len(items) == pageSize {
		hasMore := false
		for range fs.above(last) {
			hasMore = true
			break
		}
		if hasMore {
			enc, err := encodeCursor(last)
			if err != nil {
				return zero, err
			}
			*res.nextCursorPtr() = enc
		}
	}
	return res, nil
}

// encodeCursor encodes key as an opaque pagination cursor.
func encodeCursor(key string) (string, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(key); err != nil {
		return "", fmt.Errorf("encoding cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeCursor decodes a pagination cursor produced by encodeCursor.
func decodeCursor(cursor string) (string, error) {
	data, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("decoding cursor: %w", err)
	}
	var key string
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&key); err != nil {
		return "", fmt.Errorf("decoding cursor: %w", err)
	}
	return key, nil
}

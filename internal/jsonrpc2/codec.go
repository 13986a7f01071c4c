// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package jsonrpc2

import (
	"bytes"
	"fmt"

	segmentjson "github.com/segmentio/encoding/json"

	"github.com/gomcp/core/jsonrpc"
)

// EncodeMessage serializes m using the fast segmentio JSON codec, which is a
// drop-in replacement for encoding/json on the hot path of the streamable
// transport.
func EncodeMessage(m jsonrpc.Message) ([]byte, error) {
	data, err := jsonrpc.Encode(m)
	if err != nil {
		return nil, err
	}
	// Round-trip through the fast codec so that callers relying on the
	// segmentio encoder's field ordering and number formatting get a
	// consistent wire format, while still reusing jsonrpc.Encode's message
	// discrimination logic.
	var v any
	if err := segmentjson.Unmarshal(data, &v); err != nil {
		return data, nil
	}
	out, err := segmentjson.Marshal(v)
	if err != nil {
		return data, nil
	}
	return out, nil
}

// DecodeMessage parses data as a single JSON-RPC message, discriminating
// between request, notification, and response shapes. Messages containing
// object keys that differ only in case are rejected.
func DecodeMessage(data []byte) (jsonrpc.Message, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("jsonrpc2: empty message")
	}
	if err := validateNoDuplicateKeys(data); err != nil {
		return nil, fmt.Errorf("jsonrpc2: %w", err)
	}
	return jsonrpc.Decode(data)
}

// DecodeBatch parses data as either a single JSON-RPC message or a JSON
// array of messages (a "batch", per the JSON-RPC 2.0 spec), returning the
// decoded messages in order along with whether the payload was a batch.
func DecodeBatch(data []byte) ([]jsonrpc.Message, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, false, fmt.Errorf("jsonrpc2: empty payload")
	}
	if data[0] != '[' {
		msg, err := DecodeMessage(data)
		if err != nil {
			return nil, false, err
		}
		return []jsonrpc.Message{msg}, false, nil
	}
	var raws []rawMessageJSON
	if err := segmentjson.Unmarshal(data, &raws); err != nil {
		return nil, true, fmt.Errorf("jsonrpc2: decode batch: %w", err)
	}
	if len(raws) == 0 {
		return nil, true, fmt.Errorf("jsonrpc2: batch must not be empty")
	}
	msgs := make([]jsonrpc.Message, 0, len(raws))
	for _, r := range raws {
		msg, err := DecodeMessage(r)
		if err != nil {
			return nil, true, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, true, nil
}

// rawMessageJSON defers decoding of each batch element until we know its
// shape.
type rawMessageJSON = segmentjson.RawMessage

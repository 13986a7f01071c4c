// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"iter"

	"github.com/gomcp/core/internal/jsonrpc2"
)

// event is a single Server-Sent Event, as used by the streamable HTTP
// transport to frame outgoing JSON-RPC messages.
type event struct {
	name string
	id   string
	data []byte
}

// writeEvent writes e to w in the text/event-stream wire format, flushing if
// w supports it.
func writeEvent(w io.Writer, e event) (int, error) {
	var buf bytes.Buffer
	if e.name != "" {
		fmt.Fprintf(&buf, "event: %s\n", e.name)
	}
	if e.id != "" {
		fmt.Fprintf(&buf, "id: %s\n", e.id)
	}
	for _, line := range bytes.Split(e.data, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	n, err := w.Write(buf.Bytes())
	if f, ok := w.(interface{ Flush() }); ok {
		f.Flush()
	}
	return n, err
}

// scanEvents parses a text/event-stream body into a sequence of events,
// following the whatwg SSE field grammar (event/id/data/retry lines,
// terminated by a blank line).
func scanEvents(r io.Reader) iter.Seq2[event, error] {
	return func(yield func(event, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		var cur event
		var data bytes.Buffer
		haveData := false
		flush := func() bool {
			if !haveData && cur.name == "" && cur.id == "" {
				return true
			}
			ev := cur
			if haveData {
				b := data.Bytes()
				ev.data = append([]byte(nil), bytes.TrimSuffix(b, []byte("\n"))...)
			}
			cur = event{}
			data.Reset()
			haveData = false
			return yield(ev, nil)
		}
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				if !flush() {
					return
				}
				continue
			}
			field, value, _ := cutSSEField(line)
			switch field {
			case "event":
				cur.name = value
			case "id":
				cur.id = value
			case "data":
				data.WriteString(value)
				data.WriteByte('\n')
				haveData = true
			case "retry", "":
				// ignored
			}
		}
		if err := scanner.Err(); err != nil {
			yield(event{}, err)
			return
		}
		if haveData || cur.name != "" || cur.id != "" {
			flush()
		}
		yield(event{}, io.EOF)
	}
}

// cutSSEField splits a raw SSE line into its field name and value, per the
// "field: value" (or bare "field") grammar; a leading single space after the
// colon is stripped.
func cutSSEField(line string) (field, value string, ok bool) {
	i := bytes.IndexByte([]byte(line), ':')
	if i < 0 {
		return line, "", false
	}
	field = line[:i]
	value = line[i+1:]
	if len(value) > 0 && value[0] == ' ' {
		value = value[1:]
	}
	return field, value, true
}

// readBatch parses body as either a single JSON-RPC message or a JSON-RPC
// batch array, returning the decoded messages and whether it was a batch.
func readBatch(body []byte) ([]JSONRPCMessage, bool, error) {
	return jsonrpc2.DecodeBatch(body)
}

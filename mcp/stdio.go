// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/gomcp/core/internal/jsonrpc2"
)

// maxStderrTail bounds the amount of a launched server's stderr output kept
// in memory for inclusion in an abnormal-exit error.
const maxStderrTail = 4 << 10

// A StdioTransport communicates over newline-delimited JSON on a pair of
// io.Reader/io.Writer, the conventional framing for MCP servers launched as
// a local subprocess (stdin/stdout) or for the process's own standard
// streams.
type StdioTransport struct {
	reader io.Reader
	writer io.Writer

	// stderr, if non-nil, is read in the background and its tail retained so
	// that an abnormal exit can be reported with context.
	stderr io.Reader

	logger *slog.Logger
}

// NewStdioTransport returns a Transport framing messages as newline-delimited
// JSON over r and w.
func NewStdioTransport(r io.Reader, w io.Writer) *StdioTransport {
	return &StdioTransport{reader: r, writer: w}
}

// WithStderr attaches a subprocess's stderr stream so that its tail is
// captured for diagnostics on abnormal termination.
func (t *StdioTransport) WithStderr(stderr io.Reader) *StdioTransport {
	t.stderr = stderr
	return t
}

// Connect implements the Transport interface.
func (t *StdioTransport) Connect(ctx context.Context) (Connection, error) {
	c := &stdioConn{
		scanner: bufio.NewScanner(t.reader),
		writer:  t.writer,
		closed:  make(chan struct{}),
	}
	c.scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	if t.stderr != nil {
		c.stderrTail = newTailBuffer(maxStderrTail)
		go c.drainStderr(t.stderr)
	}
	return c, nil
}

type stdioConn struct {
	scanner *bufio.Scanner
	writer  io.Writer

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}

	stderrTail *tailBuffer
}

func (c *stdioConn) SessionID() string { return "" }

func (c *stdioConn) Read(ctx context.Context) (JSONRPCMessage, error) {
	type result struct {
		msg JSONRPCMessage
		err error
	}
	ch := make(chan result, 1)
	go func() {
		if !c.scanner.Scan() {
			err := c.scanner.Err()
			if err == nil {
				err = io.EOF
			}
			if c.stderrTail != nil && err != nil {
				if tail := c.stderrTail.String(); tail != "" {
					err = fmt.Errorf("%w (stderr: %s)", err, tail)
				}
			}
			ch <- result{nil, err}
			return
		}
		line := c.scanner.Bytes()
		msg, err := jsonrpc2.DecodeMessage(line)
		ch <- result{msg, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, io.EOF
	case r := <-ch:
		return r.msg, r.err
	}
}

func (c *stdioConn) Write(ctx context.Context, msg JSONRPCMessage) error {
	data, err := jsonrpc2.EncodeMessage(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("stdio write: %w", err)
	}
	return nil
}

func (c *stdioConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *stdioConn) drainStderr(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			c.stderrTail.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// tailBuffer retains only the last n bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	n   int
}

func newTailBuffer(n int) *tailBuffer {
	return &tailBuffer{n: n}
}

func (t *tailBuffer) Write(p []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if extra := t.buf.Len() - t.n; extra > 0 {
		t.buf.Next(extra)
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

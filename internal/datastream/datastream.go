// Package datastream implements the line-oriented protocol used to stream
// assistant output from /api/chat. Each part is written as `<code>:<json>\n`.
package datastream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// PartType identifies a stream part
type PartType string

const (
	PartText   PartType = "0"
	PartError  PartType = "3"
	PartFinish PartType = "d"
)

// HeaderName marks responses encoded with this protocol
const (
	HeaderName  = "X-Vercel-AI-Data-Stream"
	HeaderValue = "v1"
	ContentType = "text/plain; charset=utf-8"
)

// maxLineSize bounds a single encoded part
const maxLineSize = 1 << 20

// Part is a decoded stream part
type Part struct {
	Type         PartType
	Text         string
	FinishReason string
}

type finishPayload struct {
	FinishReason string `json:"finishReason"`
}

// Flusher is satisfied by bufio.Writer
type Flusher interface {
	io.Writer
	Flush() error
}

// Writer encodes parts and flushes after each one
type Writer struct {
	w Flusher
}

// NewWriter wraps w
func NewWriter(w Flusher) *Writer {
	return &Writer{w: w}
}

// Text writes a text delta
func (w *Writer) Text(s string) error {
	return w.write(PartText, s)
}

// Error writes an error part
func (w *Writer) Error(msg string) error {
	return w.write(PartError, msg)
}

// Finish writes the terminating part
func (w *Writer) Finish(reason string) error {
	if reason == "" {
		reason = "stop"
	}
	return w.write(PartFinish, finishPayload{FinishReason: reason})
}

func (w *Writer) write(t PartType, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.w, "%s:%s\n", t, data); err != nil {
		return err
	}
	return w.w.Flush()
}

// Reader decodes parts from a stream
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next known part, or io.EOF when the stream ends
func (r *Reader) Next() (Part, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" {
			continue
		}

		code, payload, ok := strings.Cut(line, ":")
		if !ok {
			return Part{}, fmt.Errorf("malformed stream part: %q", line)
		}

		switch PartType(code) {
		case PartText, PartError:
			var s string
			if err := json.Unmarshal([]byte(payload), &s); err != nil {
				return Part{}, fmt.Errorf("decode %s part: %w", code, err)
			}
			return Part{Type: PartType(code), Text: s}, nil
		case PartFinish:
			var f finishPayload
			if err := json.Unmarshal([]byte(payload), &f); err != nil {
				return Part{}, fmt.Errorf("decode finish part: %w", err)
			}
			return Part{Type: PartFinish, FinishReason: f.FinishReason}, nil
		default:
			// Annotations, tool calls and other codes are not used here
			continue
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Part{}, err
	}
	return Part{}, io.EOF
}

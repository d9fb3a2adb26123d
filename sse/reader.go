package sse

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxLineSize bounds a single SSE line. Idea fragments are small but the
// producer may send a whole section in one data line.
const maxLineSize = 1 << 20

// Message is one dispatched server-sent event.
type Message struct {
	Event string // Empty when the producer sent no event field.
	Data  string // Data lines joined with "\n".
	ID    string
}

// Reader parses a text/event-stream body into messages.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader returns a Reader that parses r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// Next reads lines until a complete message is assembled. A message is
// dispatched on a blank line once an event or data field has been seen.
// Comments and retry hints are skipped. At the end of input a pending
// message is returned before io.EOF.
func (r *Reader) Next() (Message, error) {
	var (
		msg     Message
		data    strings.Builder
		hasData bool
		pending bool
	)
	dispatch := func() Message {
		msg.Data = data.String()
		return msg
	}

	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")

		if line == "" {
			if pending {
				return dispatch(), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			msg.Event = value
			pending = true
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
			pending = true
		case "id":
			msg.ID = value
		}
		// "retry" and unknown fields are ignored.
	}

	if err := r.scanner.Err(); err != nil {
		return Message{}, fmt.Errorf("sse: %w", err)
	}
	if pending {
		return dispatch(), nil
	}
	return Message{}, io.EOF
}

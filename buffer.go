package ideas

import (
	"regexp"
	"strings"
)

// Framing describes how a source's fragment boundaries relate to lines.
type Framing int

const (
	// FramingLine treats every data fragment as a complete line. A line
	// break is appended after each fragment, so block structure survives
	// even when the producer strips newlines from its payloads. Splitting
	// one prose line across two fragments therefore changes the text by a
	// soft break, though the rendered paragraph stays the same. Use
	// FramingToken when the exact text must not depend on chunking.
	FramingLine Framing = iota

	// FramingToken treats fragments as raw token deltas that carry their
	// own newlines. Nothing is appended after a fragment.
	FramingToken
)

// blockStart matches a fragment that opens a heading, bullet or ordered
// list item.
var blockStart = regexp.MustCompile(`^(?:#{1,6} |[-*+] |\d{1,3}[.)] )`)

// Buffer accumulates the fragments of one streaming session.
//
// The accumulated text is append-only until Reset. Once a terminal event
// has been ingested the buffer is frozen and further events are ignored.
// A Buffer is not safe for concurrent use.
type Buffer struct {
	framing    Framing
	text       strings.Builder
	terminated bool
}

// NewBuffer returns an empty buffer using the given framing.
func NewBuffer(framing Framing) *Buffer {
	return &Buffer{framing: framing}
}

// Reset clears the text and the terminated flag.
func (b *Buffer) Reset() {
	b.text.Reset()
	b.terminated = false
}

// Ingest applies one event to the buffer and reports whether the
// accumulated text or the terminated flag changed.
func (b *Buffer) Ingest(evt Event) bool {
	if b.terminated {
		return false
	}
	if IsTerminal(evt) {
		b.terminated = true
		return true
	}
	switch e := evt.(type) {
	case EventData:
		return b.appendFragment(e.Text)
	case EventError:
		b.appendError(e.Message)
		return true
	}
	return false
}

// String returns the accumulated text.
func (b *Buffer) String() string {
	return b.text.String()
}

// Terminated reports whether a terminal event has been ingested.
func (b *Buffer) Terminated() bool {
	return b.terminated
}

// Len returns the length of the accumulated text in bytes.
func (b *Buffer) Len() int {
	return b.text.Len()
}

func (b *Buffer) appendFragment(fragment string) bool {
	if fragment == "" && b.framing == FramingToken {
		return false
	}
	if blockStart.MatchString(fragment) {
		b.ensureLineStart()
	}
	b.text.WriteString(fragment)
	if b.framing == FramingLine {
		b.text.WriteByte('\n')
	}
	return true
}

func (b *Buffer) appendError(msg string) {
	b.ensureLineStart()
	msg = strings.Join(strings.Fields(msg), " ")
	if msg == "" {
		msg = "unknown error"
	}
	b.text.WriteString("> **Stream error:** ")
	b.text.WriteString(msg)
	b.text.WriteString("\n\n")
}

// ensureLineStart writes a line break unless the buffer is empty or
// already ends with one.
func (b *Buffer) ensureLineStart() {
	s := b.text.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		b.text.WriteByte('\n')
	}
}

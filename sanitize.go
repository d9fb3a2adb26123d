package ideas

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize strips terminal escape sequences and control characters from
// streamed text before it reaches the screen. Tabs and newlines are kept;
// CRLF and lone CR both become LF, as in Markdown.
func Sanitize(s string) string {
	// Parser-based stripping handles CSI, OSC and the other sequence kinds.
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\t' || r == '\n' || (r > 0x1F && r != 0x7F) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

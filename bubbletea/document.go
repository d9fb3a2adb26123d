package bubbletea

import "strings"

// Document renders the latest snapshot text. Snapshots repeat the whole
// document, so the stable prefix ending at the last paragraph break is
// rendered once per width and cached; only the trailing paragraph is
// re-rendered on each update.
type Document struct {
	render RenderFunc
	raw    string

	// finalizedRaw is the stable prefix ending at the last double newline.
	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewDocument creates an empty Document that renders with render.
func NewDocument(render RenderFunc) *Document {
	return &Document{
		render:           render,
		finalizedByWidth: make(map[int]string),
	}
}

// SetText replaces the document text.
func (d *Document) SetText(text string) {
	d.raw = text
	if d.finalizedRaw != "" && !strings.HasPrefix(text, d.finalizedRaw+"\n\n") {
		d.finalizedRaw = ""
		clear(d.finalizedByWidth)
	}
	d.promoteFinalized()
}

// Text returns the raw document text.
func (d *Document) Text() string { return d.raw }

// Reset clears the document.
func (d *Document) Reset() {
	d.raw = ""
	d.finalizedRaw = ""
	clear(d.finalizedByWidth)
}

// View renders the document at width.
func (d *Document) View(width int) string {
	finalizedRendered := d.renderFinalized(width)
	trailing := d.trailingRaw()
	if hasUnclosedFence(trailing) {
		// Close fence only for rendering so partial streams display safely.
		trailing += "\n```"
	}
	if strings.TrimSpace(trailing) == "" {
		return finalizedRendered
	}
	trailingRendered := d.render(trailing, width)
	if strings.TrimSpace(trailingRendered) == "" {
		return finalizedRendered
	}
	if finalizedRendered == "" {
		return trailingRendered
	}
	// Independently rendered fragments are joined with a single paragraph
	// break to match full-document output.
	return strings.TrimRight(finalizedRendered, "\n") + "\n\n" + strings.TrimLeft(trailingRendered, "\n")
}

// promoteFinalized scans for the last "\n\n" boundary that doesn't fall
// inside an unclosed fenced code block.
func (d *Document) promoteFinalized() {
	raw := d.raw
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != d.finalizedRaw {
				d.finalizedRaw = candidate
				clear(d.finalizedByWidth)
			}
			return
		}
		end = idx
	}
}

func (d *Document) renderFinalized(width int) string {
	if width <= 0 || d.finalizedRaw == "" {
		return ""
	}
	if cached, ok := d.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := d.render(d.finalizedRaw, width)
	d.finalizedByWidth[width] = rendered
	return rendered
}

func (d *Document) trailingRaw() string {
	if d.finalizedRaw == "" {
		return d.raw
	}
	return strings.TrimPrefix(d.raw, d.finalizedRaw+"\n\n")
}

// hasUnclosedFence detects whether s contains an unclosed fenced code block
// by checking for an odd number of "```" occurrences.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}

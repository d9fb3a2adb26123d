// Package markdown renders idea documents to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling. GitHub-flavored
// tables, strikethrough and task lists are supported.
package markdown

import "github.com/fwojciec/ideas"

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow.
func Render(source string, width int, theme ideas.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}

// Renderer binds a theme so the result satisfies the view layer's render
// function type.
func Renderer(theme ideas.Theme) func(source string, width int) string {
	return func(source string, width int) string {
		return Render(source, width, theme)
	}
}

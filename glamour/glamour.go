// Package glamour renders idea documents with charmbracelet/glamour's
// stock styles. It is the alternative to package markdown for users who
// prefer glamour's look over the theme-driven renderer.
package glamour

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// DefaultStyle is used when no style name is given.
const DefaultStyle = styles.DarkStyle

type rendererKey struct {
	style string
	width int
}

var (
	mu        sync.Mutex
	renderers = map[rendererKey]*glamour.TermRenderer{}
)

// Render renders source with the named standard style ("dark", "light",
// "dracula", "notty", ...) wrapped at width.
func Render(source string, width int, style string) (string, error) {
	if source == "" {
		return "", nil
	}
	r, err := renderer(style, width)
	if err != nil {
		return "", err
	}

	// TermRenderer is not safe for concurrent use.
	mu.Lock()
	defer mu.Unlock()
	out, err := r.Render(source)
	if err != nil {
		return "", fmt.Errorf("glamour: %w", err)
	}
	return out, nil
}

// Renderer returns a render function for the view layer. Rendering errors
// fall back to the raw source so a partial document is never lost.
func Renderer(style string) func(source string, width int) string {
	return func(source string, width int) string {
		out, err := Render(source, width, style)
		if err != nil {
			return source
		}
		return out
	}
}

func renderer(style string, width int) (*glamour.TermRenderer, error) {
	if style == "" {
		style = DefaultStyle
	}
	if width <= 0 {
		width = 80
	}
	key := rendererKey{style: style, width: width}

	mu.Lock()
	defer mu.Unlock()
	if r, ok := renderers[key]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("glamour: %w", err)
	}
	renderers[key] = r
	return r, nil
}

// Package bubbletea provides a Bubble Tea TUI that streams one business idea
// into a live-updating Markdown view.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/ideas"
)

// Header text shown above the document.
const (
	Title       = "AI-Driven Opportunity Startup Finder"
	Tagline     = "Discover untapped markets and profitable ideas with AI-powered insights"
	LoadingText = "Generating your business idea..."
)

// RunFunc performs one streaming attempt, calling publish with each
// snapshot. It blocks until the attempt ends or ctx is cancelled.
// (*ideas.Session).Run satisfies it.
type RunFunc func(ctx context.Context, publish func(ideas.Snapshot)) error

// RenderFunc turns Markdown into terminal output wrapped at width.
type RenderFunc func(source string, width int) string

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits and returns the final model. The context is used for
// graceful shutdown: when cancelled, the program quits.
func Run(ctx context.Context, m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	fm, err := p.Run()
	if final, ok := fm.(Model); ok {
		m = final
	}
	return m, err
}

// GateMsg carries the entitlement decision.
type GateMsg struct {
	Entitled bool
	Err      error
}

// SnapshotMsg delivers one published snapshot to the model.
type SnapshotMsg struct {
	Snapshot ideas.Snapshot
}

// SessionDoneMsg signals that a streaming attempt has ended.
type SessionDoneMsg struct {
	Err error
}

package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ideas"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Title   lipgloss.Style
	Tagline lipgloss.Style
	Accent  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Panel   lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t ideas.Theme) Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Foreground(ansiColor(t.Title)).Bold(true),
		Tagline: lipgloss.NewStyle().Foreground(ansiColor(t.Tagline)),
		Accent:  lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success: lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Warning: lipgloss.NewStyle().Foreground(ansiColor(t.Warning)).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ansiColor(t.Muted)).
			Padding(1, 2),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

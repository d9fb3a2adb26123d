package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/ideas"
	"github.com/fwojciec/ideas/markdown"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

type phase int

const (
	phaseGate phase = iota
	phasePaywall
	phaseAuth
	phaseStream
)

// Model is the Bubble Tea model for the idea viewer.
type Model struct {
	// Viewport is the scrollable document area. Exported for test access.
	Viewport viewport.Model
	// Spinner animates the gate check and loading views.
	Spinner spinner.Model

	run        RunFunc
	gate       ideas.Gate
	render     RenderFunc
	styles     Styles
	pricingURL string

	doc   *Document
	phase phase
	snap  ideas.Snapshot

	running bool
	cancel  context.CancelFunc
	snapCh  chan ideas.Snapshot
	doneCh  chan error
	err     error
	ready   bool
	width   int
}

// Option configures a Model.
type Option func(*Model)

// WithGate sets the entitlement check run before streaming. Default is
// ideas.AllowAll.
func WithGate(g ideas.Gate) Option {
	return func(m *Model) { m.gate = g }
}

// WithRenderer sets the Markdown renderer. Default is markdown.Renderer.
func WithRenderer(r RenderFunc) Option {
	return func(m *Model) { m.render = r }
}

// WithPricingURL sets the link shown on the upgrade prompt.
func WithPricingURL(url string) Option {
	return func(m *Model) { m.pricingURL = url }
}

// New creates a TUI Model that streams with run and styles output with theme.
func New(run RunFunc, theme ideas.Theme, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	styles := NewStyles(theme)
	s.Style = styles.Accent

	m := Model{
		Spinner: s,
		run:     run,
		gate:    ideas.AllowAll,
		styles:  styles,
		snap:    ideas.Snapshot{Text: ideas.LoadingPlaceholder, Status: ideas.StatusLoading},
	}
	for _, o := range opts {
		o(&m)
	}
	if m.render == nil {
		m.render = markdown.Renderer(theme)
	}
	m.doc = NewDocument(m.render)
	return m
}

// Running returns whether a streaming attempt is in progress.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Final returns the most recent snapshot.
func (m Model) Final() ideas.Snapshot { return m.snap }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(checkGate(m.gate), m.Spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case GateMsg:
		return m.handleGate(msg)

	case SnapshotMsg:
		m = m.applySnapshot(msg.Snapshot)
		if m.snapCh != nil {
			return m, listenForSnapshot(m.snapCh, m.doneCh)
		}
		return m, nil

	case SessionDoneMsg:
		m.running = false
		m.cancel = nil
		m.snapCh = nil
		m.doneCh = nil
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) && !errors.Is(msg.Err, ideas.ErrAuthRequired) {
			m.err = msg.Err
		}
		return m, nil

	case spinner.TickMsg:
		// Dropping the tick stops the animation until the next restart.
		if !m.spinning() {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render(Title))
	b.WriteString("\n")
	b.WriteString(m.styles.Tagline.Render(runewidth.Truncate(Tagline, m.width, "…")))
	b.WriteString("\n\n")

	switch {
	case m.phase == phaseGate:
		b.WriteString(m.Spinner.View() + " Checking subscription...")
	case m.phase == phasePaywall:
		b.WriteString(m.paywallView())
	case m.phase == phaseAuth && m.err != nil:
		b.WriteString(m.styles.Error.Render("Could not verify subscription"))
	case m.phase == phaseAuth:
		b.WriteString(m.styles.Error.Render(ideas.AuthRequiredMessage))
	case m.snap.Status == ideas.StatusLoading:
		b.WriteString(m.Spinner.View() + " " + LoadingText)
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render(m.snap.Text))
	default:
		b.WriteString(m.Viewport.View())
	}
	b.WriteString("\n")

	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	headerHeight := 3 // title, tagline, blank line
	statusHeight := 1
	vpHeight := msg.Height - headerHeight - statusHeight - 1

	if vpHeight < 1 {
		vpHeight = 1
	}

	m.width = msg.Width
	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.doc.View(msg.Width))
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case "r":
		if m.running || m.phase == phasePaywall || m.phase == phaseGate {
			return m, nil
		}
		// A retry re-checks entitlement since the token may have changed.
		m.phase = phaseGate
		m.err = nil
		return m, tea.Batch(checkGate(m.gate), m.Spinner.Tick)
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func (m Model) handleGate(msg GateMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.Err, ideas.ErrAuthRequired):
		m.phase = phaseAuth
		m.snap = ideas.Snapshot{Text: ideas.AuthRequiredMessage, Status: ideas.StatusAuthRequired, Err: msg.Err}
		return m, nil
	case msg.Err != nil:
		m.phase = phaseAuth
		m.err = msg.Err
		return m, nil
	case !msg.Entitled:
		m.phase = phasePaywall
		return m, nil
	}
	return m.start()
}

func (m Model) start() (tea.Model, tea.Cmd) {
	m.phase = phaseStream
	m.err = nil
	m.doc.Reset()
	m.snap = ideas.Snapshot{Text: ideas.LoadingPlaceholder, Status: ideas.StatusLoading}
	if m.ready {
		m.Viewport.SetContent("")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.snapCh = make(chan ideas.Snapshot, 64)
	m.doneCh = make(chan error, 1)
	m.running = true

	return m, tea.Batch(
		startSession(m.run, ctx, m.snapCh, m.doneCh),
		listenForSnapshot(m.snapCh, m.doneCh),
		m.Spinner.Tick,
	)
}

func (m Model) applySnapshot(s ideas.Snapshot) Model {
	m.snap = s
	switch s.Status {
	case ideas.StatusAuthRequired:
		m.phase = phaseAuth
		return m
	case ideas.StatusLoading:
		return m
	}
	m.doc.SetText(s.Text)
	if m.ready {
		m.Viewport.SetContent(m.doc.View(m.Viewport.Width))
		m.Viewport.GotoBottom()
	}
	return m
}

func (m Model) spinning() bool {
	return m.phase == phaseGate || (m.phase == phaseStream && m.snap.Status == ideas.StatusLoading)
}

func (m Model) paywallView() string {
	var b strings.Builder
	b.WriteString(m.styles.Warning.Render("Upgrade required"))
	b.WriteString("\n\n")
	b.WriteString("Generating business ideas requires an active subscription.")
	if m.pricingURL != "" {
		b.WriteString("\n")
		b.WriteString("See plans at " + m.styles.Accent.Render(m.pricingURL))
	}
	return m.styles.Panel.Render(b.String())
}

func (m Model) statusLine() string {
	text, style := m.status()
	if m.width > 0 {
		text = runewidth.Truncate(text, m.width, "…")
	}
	return style.Render(text)
}

func (m Model) status() (string, lipgloss.Style) {
	if m.err != nil {
		return fmt.Sprintf("Error: %v. r to retry, q to quit", m.err), m.styles.Error
	}
	switch m.phase {
	case phaseGate, phasePaywall:
		return "q to quit", m.styles.Muted
	case phaseAuth:
		return "Sign in and press r to retry, q to quit", m.styles.Error
	}
	switch m.snap.Status {
	case ideas.StatusDone:
		return "Done. r for another idea, q to quit", m.styles.Success
	case ideas.StatusFailed:
		if m.snap.Err != nil {
			return fmt.Sprintf("Error: %v. r to retry, q to quit", m.snap.Err), m.styles.Error
		}
		return "Stream failed. r to retry, q to quit", m.styles.Error
	}
	return "Streaming... q to quit", m.styles.Muted
}

// startSession runs one attempt in a goroutine and signals completion.
func startSession(run RunFunc, ctx context.Context, snapCh chan<- ideas.Snapshot, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := run(ctx, func(s ideas.Snapshot) {
			select {
			case snapCh <- s:
			case <-ctx.Done():
			}
		})
		close(snapCh)
		doneCh <- err
		return nil
	}
}

// listenForSnapshot waits for the next snapshot from the channel.
// When the channel closes, it reads the error from doneCh and returns
// SessionDoneMsg.
func listenForSnapshot(ch <-chan ideas.Snapshot, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return SessionDoneMsg{Err: <-doneCh}
		}
		return SnapshotMsg{Snapshot: s}
	}
}

func checkGate(g ideas.Gate) tea.Cmd {
	return func() tea.Msg {
		ok, err := g.Entitled(context.Background())
		return GateMsg{Entitled: ok, Err: err}
	}
}

package bubbletea_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/ideas"
	bt "github.com/fwojciec/ideas/bubbletea"
	"github.com/fwojciec/ideas/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(source string, _ int) string { return source }

func nopRun(context.Context, func(ideas.Snapshot)) error { return nil }

func initModel(t *testing.T, opts ...bt.Option) bt.Model {
	t.Helper()
	opts = append([]bt.Option{bt.WithRenderer(plain)}, opts...)
	m := bt.New(nopRun, ideas.DefaultTheme(), opts...)
	return updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	result, _ := m.Update(msg)
	model, ok := result.(bt.Model)
	require.True(t, ok)
	return model
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func streamingModel(t *testing.T) bt.Model {
	t.Helper()
	m := initModel(t)
	result, cmd := m.Update(bt.GateMsg{Entitled: true})
	require.NotNil(t, cmd)
	m, ok := result.(bt.Model)
	require.True(t, ok)
	require.True(t, m.Running())
	return m
}

func TestModel_InitializingBeforeSize(t *testing.T) {
	t.Parallel()
	m := bt.New(nopRun, ideas.DefaultTheme(), bt.WithRenderer(plain))
	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_Header(t *testing.T) {
	t.Parallel()
	m := initModel(t)
	view := m.View()
	assert.Contains(t, view, bt.Title)
	assert.Contains(t, view, bt.Tagline)
	assert.Contains(t, view, "Checking subscription...")
}

func TestModel_Gate(t *testing.T) {
	t.Parallel()

	t.Run("paywall", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, bt.WithPricingURL("https://example.com/pricing"))
		m = updateModel(t, m, bt.GateMsg{Entitled: false})

		view := m.View()
		assert.Contains(t, view, "Upgrade required")
		assert.Contains(t, view, "https://example.com/pricing")
		assert.False(t, m.Running())
	})

	t.Run("auth required", func(t *testing.T) {
		t.Parallel()
		m := initModel(t)
		m = updateModel(t, m, bt.GateMsg{Err: ideas.ErrAuthRequired})

		assert.Contains(t, m.View(), ideas.AuthRequiredMessage)
		assert.Equal(t, ideas.StatusAuthRequired, m.Final().Status)
		assert.NoError(t, m.Err())
		assert.False(t, m.Running())
	})

	t.Run("gate error", func(t *testing.T) {
		t.Parallel()
		m := initModel(t)
		boom := errors.New("billing unavailable")
		m = updateModel(t, m, bt.GateMsg{Err: boom})

		assert.Contains(t, m.View(), "Could not verify subscription")
		assert.Contains(t, m.View(), "billing unavailable")
		assert.ErrorIs(t, m.Err(), boom)
	})

	t.Run("entitled starts session", func(t *testing.T) {
		t.Parallel()
		m := streamingModel(t)
		assert.Contains(t, m.View(), bt.LoadingText)
		assert.Contains(t, m.View(), ideas.LoadingPlaceholder)
	})
}

func TestModel_Snapshots(t *testing.T) {
	t.Parallel()
	m := streamingModel(t)

	m = updateModel(t, m, bt.SnapshotMsg{Snapshot: ideas.Snapshot{Text: ideas.LoadingPlaceholder, Status: ideas.StatusLoading}})
	assert.Contains(t, m.View(), bt.LoadingText)

	m = updateModel(t, m, bt.SnapshotMsg{Snapshot: ideas.Snapshot{Text: "## Idea\n\nAgentic", Status: ideas.StatusStreaming}})
	view := m.View()
	assert.Contains(t, view, "## Idea")
	assert.Contains(t, view, "Agentic")
	assert.NotContains(t, view, bt.LoadingText)
	assert.Contains(t, view, "Streaming...")

	m = updateModel(t, m, bt.SnapshotMsg{Snapshot: ideas.Snapshot{Text: "## Idea\n\nAgentic ledger", Status: ideas.StatusDone}})
	assert.Contains(t, m.View(), "Agentic ledger")
	assert.Contains(t, m.View(), "Done. r for another idea")

	m = updateModel(t, m, bt.SessionDoneMsg{})
	assert.False(t, m.Running())
	assert.NoError(t, m.Err())
	assert.Equal(t, "## Idea\n\nAgentic ledger", m.Final().Text)
}

func TestModel_FailedSnapshotKeepsPartialText(t *testing.T) {
	t.Parallel()
	m := streamingModel(t)
	boom := errors.New("connection reset")

	m = updateModel(t, m, bt.SnapshotMsg{Snapshot: ideas.Snapshot{Text: "partial", Status: ideas.StatusFailed, Err: boom}})
	m = updateModel(t, m, bt.SessionDoneMsg{Err: boom})

	view := m.View()
	assert.Contains(t, view, "partial")
	assert.Contains(t, view, "Error: connection reset")
	assert.ErrorIs(t, m.Err(), boom)
}

func TestModel_AuthRequiredSnapshot(t *testing.T) {
	t.Parallel()
	m := streamingModel(t)

	m = updateModel(t, m, bt.SnapshotMsg{Snapshot: ideas.Snapshot{Text: ideas.AuthRequiredMessage, Status: ideas.StatusAuthRequired, Err: ideas.ErrAuthRequired}})
	m = updateModel(t, m, bt.SessionDoneMsg{Err: ideas.ErrAuthRequired})

	assert.Contains(t, m.View(), ideas.AuthRequiredMessage)
	assert.NoError(t, m.Err())
}

func TestModel_CancelledSessionIsNotAnError(t *testing.T) {
	t.Parallel()
	m := streamingModel(t)
	m = updateModel(t, m, bt.SessionDoneMsg{Err: context.Canceled})

	assert.False(t, m.Running())
	assert.NoError(t, m.Err())
}

func TestModel_Keys(t *testing.T) {
	t.Parallel()

	t.Run("q quits", func(t *testing.T) {
		t.Parallel()
		m := streamingModel(t)
		_, cmd := m.Update(keyRune('q'))
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok)
	})

	t.Run("ctrl+c quits", func(t *testing.T) {
		t.Parallel()
		m := initModel(t)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok)
	})

	t.Run("r ignored while running", func(t *testing.T) {
		t.Parallel()
		m := streamingModel(t)
		_, cmd := m.Update(keyRune('r'))
		assert.Nil(t, cmd)
	})

	t.Run("r ignored on paywall", func(t *testing.T) {
		t.Parallel()
		m := initModel(t)
		m = updateModel(t, m, bt.GateMsg{Entitled: false})
		_, cmd := m.Update(keyRune('r'))
		assert.Nil(t, cmd)
	})

	t.Run("r retries after failure", func(t *testing.T) {
		t.Parallel()
		m := streamingModel(t)
		boom := errors.New("boom")
		m = updateModel(t, m, bt.SnapshotMsg{Snapshot: ideas.Snapshot{Status: ideas.StatusFailed, Err: boom}})
		m = updateModel(t, m, bt.SessionDoneMsg{Err: boom})

		result, cmd := m.Update(keyRune('r'))
		require.NotNil(t, cmd)
		m, ok := result.(bt.Model)
		require.True(t, ok)
		assert.NoError(t, m.Err())
		assert.Contains(t, m.View(), "Checking subscription...")
	})
}

func TestModel_StatusLineTruncated(t *testing.T) {
	t.Parallel()
	m := bt.New(nopRun, ideas.DefaultTheme(), bt.WithRenderer(plain))
	m = updateModel(t, m, tea.WindowSizeMsg{Width: 20, Height: 10})
	m = updateModel(t, m, bt.GateMsg{Err: errors.New("a very long failure description")})

	assert.Contains(t, m.View(), "…")
	assert.NotContains(t, m.View(), "description")
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("streams a session to completion", func(t *testing.T) {
		t.Parallel()
		stream, closed := mock.Events(
			ideas.EventData{Text: "## Idea"},
			ideas.EventData{Text: "Agentic ledger"},
			ideas.EventDone{},
		)
		source := &mock.Source{OpenFn: func(context.Context, string) (ideas.Stream, error) {
			return stream, nil
		}}
		session := ideas.NewSession(source, ideas.StaticToken("tok"), ideas.WithFrameInterval(time.Millisecond))
		m := bt.New(session.Run, ideas.DefaultTheme(), bt.WithRenderer(plain))

		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Done. r for another idea"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(keyRune('q'))

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.Equal(t, ideas.StatusDone, final.Final().Status)
		assert.Equal(t, "## Idea\n\nAgentic ledger\n", final.Final().Text)
		assert.Eventually(t, closed, time.Second, 10*time.Millisecond)
	})

	t.Run("shows auth required without a token", func(t *testing.T) {
		t.Parallel()
		source := &mock.Source{OpenFn: func(context.Context, string) (ideas.Stream, error) {
			t.Error("Open must not be called without a token")
			return nil, errors.New("unexpected")
		}}
		session := ideas.NewSession(source, ideas.StaticToken(""))
		m := bt.New(session.Run, ideas.DefaultTheme(), bt.WithRenderer(plain))

		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte(ideas.AuthRequiredMessage))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
	})

	t.Run("paywall blocks streaming", func(t *testing.T) {
		t.Parallel()
		gate := &mock.Gate{EntitledFn: func(context.Context) (bool, error) { return false, nil }}
		run := func(context.Context, func(ideas.Snapshot)) error {
			t.Error("session must not run behind the paywall")
			return nil
		}
		m := bt.New(run, ideas.DefaultTheme(), bt.WithRenderer(plain), bt.WithGate(gate))

		tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Upgrade required"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(keyRune('q'))
		tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
	})
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/apex/log/handlers/text"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fwojciec/ideas"
	bt "github.com/fwojciec/ideas/bubbletea"
	ideasjson "github.com/fwojciec/ideas/json"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// titleWidth caps the title column of -list.
const titleWidth = 50

// errUpgradeRequired is returned in print mode when the gate denies access.
var errUpgradeRequired = errors.New("upgrade required: generating ideas needs an active subscription")

// printIdea checks the gate, runs one session and writes the final text to
// w. render may be nil to write raw Markdown. The final snapshot is returned
// even when run fails so partial text can be saved.
func printIdea(ctx context.Context, w io.Writer, run bt.RunFunc, gate ideas.Gate, render bt.RenderFunc, width int, pricingURL string) (ideas.Snapshot, error) {
	ok, err := gate.Entitled(ctx)
	switch {
	case errors.Is(err, ideas.ErrAuthRequired):
		fmt.Fprintln(w, ideas.AuthRequiredMessage)
		return ideas.Snapshot{Text: ideas.AuthRequiredMessage, Status: ideas.StatusAuthRequired, Err: err}, err
	case err != nil:
		return ideas.Snapshot{}, fmt.Errorf("check subscription: %w", err)
	case !ok:
		if pricingURL != "" {
			return ideas.Snapshot{}, fmt.Errorf("%w (see %s)", errUpgradeRequired, pricingURL)
		}
		return ideas.Snapshot{}, errUpgradeRequired
	}

	var final ideas.Snapshot
	err = run(ctx, func(s ideas.Snapshot) {
		if s.Final() {
			final = s
		}
	})
	if final.Text != "" {
		writeMarkdown(w, final.Text, render, width)
	}
	return final, err
}

// listIdeas writes a table of archived ideas, newest first.
func listIdeas(w io.Writer, archive *ideasjson.Archive) error {
	list, err := archive.List()
	if err != nil {
		return fmt.Errorf("list ideas: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "No saved ideas.")
		return nil
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "CREATED", "SOURCE", "STATUS", "TITLE")
	for _, i := range list {
		t.Row(i.ID, i.CreatedAt.Local().Format("2006-01-02 15:04"), i.Source, i.Status.String(), title(i.Markdown))
	}
	fmt.Fprintln(w, t.Render())
	return nil
}

// openIdea writes the archived idea matching id.
func openIdea(w io.Writer, archive *ideasjson.Archive, id string, render bt.RenderFunc, width int) error {
	i, err := archive.Find(id)
	if err != nil {
		return fmt.Errorf("open idea: %w", err)
	}
	writeMarkdown(w, i.Markdown, render, width)
	return nil
}

// login reads a token from in and stores it. A terminal input is read
// without echo.
func login(in *os.File, prompt io.Writer, store interface{ Set(string) error }) error {
	var token string
	if term.IsTerminal(int(in.Fd())) {
		fmt.Fprint(prompt, "Token: ")
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		token = string(b)
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read token: %w", err)
		}
		token = line
	}
	if err := store.Set(strings.TrimSpace(token)); err != nil {
		return err
	}
	fmt.Fprintln(prompt, "Token saved.")
	return nil
}

// newLogger returns a text logger writing to path, or a discarding logger
// when path is empty. The TUI owns the terminal, so logs never go there.
func newLogger(path, level string) (log.Interface, func() error, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	if path == "" {
		return &log.Logger{Handler: discard.New(), Level: lvl}, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return &log.Logger{Handler: text.New(f), Level: lvl}, f.Close, nil
}

func writeMarkdown(w io.Writer, source string, render bt.RenderFunc, width int) {
	out := source
	if render != nil {
		out = render(source, width)
	}
	fmt.Fprintln(w, strings.TrimRight(out, "\n"))
}

// title returns the first heading or, failing that, the first non-blank
// line of a document, shortened to titleWidth cells.
func title(markdown string) string {
	var first string
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if h := strings.TrimLeft(line, "#"); h != line && strings.HasPrefix(h, " ") {
			return runewidth.Truncate(strings.TrimSpace(h), titleWidth, "…")
		}
		if first == "" {
			first = line
		}
	}
	return runewidth.Truncate(first, titleWidth, "…")
}

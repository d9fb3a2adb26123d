// Command ideas streams an AI-generated business idea into the terminal as
// live-updating Markdown.
//
// Usage:
//
//	IDEAS_URL=https://example.com/api ideas [flags]
//	ANTHROPIC_API_KEY=sk-... ideas -source anthropic
//	GEMINI_API_KEY=gk-...   ideas -source gemini
//
// Flags:
//
//	-url string          SSE endpoint URL (sse source)
//	-token string        Bearer token (overrides the keyring)
//	-source string       Source: sse, anthropic, gemini (default "sse")
//	-model string        Model ID for LLM sources
//	-renderer string     Markdown renderer: markdown, glamour, plain
//	-login, -logout      Manage the bearer token in the system keyring
//	-list, -open ID      Browse saved ideas
//	-print               Print the finished idea instead of starting the TUI
//
// Every flag has an IDEAS_* environment variable counterpart; flags win.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/apex/log"
	"github.com/fwojciec/ideas"
	bt "github.com/fwojciec/ideas/bubbletea"
	ideasjson "github.com/fwojciec/ideas/json"
	"github.com/fwojciec/ideas/keyring"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ideas: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// Env is read here only and passed down as values.
	cfg, err := loadConfig(os.Environ())
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("ideas", flag.ContinueOnError)
	act := cfg.bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	logger, closeLog, err := newLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	theme := ideas.DefaultTheme()
	render, err := resolveRenderer(cfg.Renderer, theme)
	if err != nil {
		return err
	}
	store := &keyring.Store{}
	archive := &ideasjson.Archive{Dir: cfg.archiveDir()}
	stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))
	outRender, width := outputRenderer(render, stdoutTTY)

	switch {
	case act.login:
		return login(os.Stdin, os.Stderr, store)
	case act.logout:
		return store.Delete()
	case act.list:
		return listIdeas(os.Stdout, archive)
	case act.open != "":
		return openIdea(os.Stdout, archive, act.open, outRender, width)
	}

	src, err := resolveSource(cfg, store, logger)
	if err != nil {
		return err
	}
	session := ideas.NewSession(src.source, src.tokens,
		ideas.WithFraming(src.framing),
		ideas.WithFrameInterval(cfg.FrameInterval),
		ideas.WithLogger(logger),
	)
	logger.WithFields(log.Fields{"source": src.name, "renderer": cfg.Renderer}).Info("starting session")

	var (
		final  ideas.Snapshot
		runErr error
	)
	if !act.print && stdoutTTY && term.IsTerminal(int(os.Stdin.Fd())) {
		m := bt.New(session.Run, theme,
			bt.WithGate(src.gate),
			bt.WithRenderer(render),
			bt.WithPricingURL(cfg.PricingURL),
		)
		fm, err := bt.Run(ctx, m)
		if err != nil {
			return fmt.Errorf("TUI: %w", err)
		}
		final = fm.Final()
	} else {
		final, runErr = printIdea(ctx, os.Stdout, session.Run, src.gate, outRender, width, cfg.PricingURL)
	}

	if !act.noSave {
		if err := saveIdea(os.Stderr, archive, ideas.NewIdea(final, src.name, time.Now().UTC())); err != nil {
			logger.WithError(err).Error("save idea")
			if runErr == nil {
				runErr = err
			}
		}
	}
	return runErr
}

// saveIdea archives i when it has content and reports where it went.
func saveIdea(w io.Writer, archive *ideasjson.Archive, i ideas.Idea) error {
	if !i.Archivable() {
		return nil
	}
	saved, err := archive.Save(i)
	if err != nil {
		return fmt.Errorf("save idea: %w", err)
	}
	fmt.Fprintf(w, "Idea saved as %s\n", saved.ID)
	return nil
}

// outputRenderer returns the renderer and width for non-TUI output. Piped
// output gets raw Markdown.
func outputRenderer(render bt.RenderFunc, tty bool) (bt.RenderFunc, int) {
	if !tty {
		return nil, 0
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	return render, width
}

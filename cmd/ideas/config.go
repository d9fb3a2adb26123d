package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// config holds settings read from the environment. Flags registered by
// bindFlags use these values as defaults, so flags override env.
type config struct {
	URL           string        `env:"IDEAS_URL"`
	Token         string        `env:"IDEAS_TOKEN"`
	Source        string        `env:"IDEAS_SOURCE" envDefault:"sse"`
	Model         string        `env:"IDEAS_MODEL"`
	Renderer      string        `env:"IDEAS_RENDERER" envDefault:"markdown"`
	FrameInterval time.Duration `env:"IDEAS_FRAME_INTERVAL" envDefault:"16ms"`
	LogFile       string        `env:"IDEAS_LOG_FILE"`
	LogLevel      string        `env:"IDEAS_LOG_LEVEL" envDefault:"info"`
	ArchiveDir    string        `env:"IDEAS_ARCHIVE_DIR"`
	PlanClaim     string        `env:"IDEAS_PLAN_CLAIM"`
	Plans         []string      `env:"IDEAS_PLANS" envSeparator:"," envDefault:"premium"`
	PricingURL    string        `env:"IDEAS_PRICING_URL"`
	AnthropicKey  string        `env:"ANTHROPIC_API_KEY"`
	GeminiKey     string        `env:"GEMINI_API_KEY"`
}

// actions are the one-shot commands selected by flags.
type actions struct {
	login  bool
	logout bool
	list   bool
	open   string
	print  bool
	noSave bool
}

// loadConfig parses environ (KEY=VALUE pairs) into a config.
func loadConfig(environ []string) (config, error) {
	cfg, err := env.ParseAsWithOptions[config](env.Options{Environment: env.ToMap(environ)})
	if err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// bindFlags registers flags on fs that write into c.
func (c *config) bindFlags(fs *flag.FlagSet) *actions {
	a := &actions{}
	fs.StringVar(&c.URL, "url", c.URL, "SSE endpoint URL (sse source)")
	fs.StringVar(&c.Token, "token", c.Token, "Bearer token (overrides the keyring)")
	fs.StringVar(&c.Source, "source", c.Source, "Source: sse, anthropic, gemini")
	fs.StringVar(&c.Model, "model", c.Model, "Model ID for LLM sources (default: source default)")
	fs.StringVar(&c.Renderer, "renderer", c.Renderer, "Markdown renderer: markdown, glamour, plain")
	fs.DurationVar(&c.FrameInterval, "frame-interval", c.FrameInterval, "Minimum time between screen updates")
	fs.StringVar(&c.LogFile, "log", c.LogFile, "Write logs to this file")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&c.ArchiveDir, "archive-dir", c.ArchiveDir, "Directory for saved ideas (default: ~/.ideas/archive)")
	fs.StringVar(&c.PlanClaim, "plan-claim", c.PlanClaim, "JWT claim holding the subscription plan (unset disables the paywall)")
	fs.Func("plans", "Comma-separated plans that unlock generation (default: "+strings.Join(c.Plans, ",")+")", func(s string) error {
		c.Plans = splitList(s)
		return nil
	})
	fs.StringVar(&c.PricingURL, "pricing-url", c.PricingURL, "Link shown on the upgrade prompt")

	fs.BoolVar(&a.login, "login", false, "Store a bearer token in the system keyring and exit")
	fs.BoolVar(&a.logout, "logout", false, "Remove the stored bearer token and exit")
	fs.BoolVar(&a.list, "list", false, "List saved ideas and exit")
	fs.StringVar(&a.open, "open", "", "Render a saved idea by ID (prefix) and exit")
	fs.BoolVar(&a.print, "print", false, "Print the finished idea instead of starting the TUI")
	fs.BoolVar(&a.noSave, "no-save", false, "Don't save the finished idea")
	return a
}

func (c config) archiveDir() string {
	if c.ArchiveDir != "" {
		return c.ArchiveDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".ideas", "archive")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

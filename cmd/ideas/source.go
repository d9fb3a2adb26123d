package main

import (
	"fmt"

	"github.com/apex/log"
	"github.com/fwojciec/ideas"
	"github.com/fwojciec/ideas/anthropic"
	bt "github.com/fwojciec/ideas/bubbletea"
	"github.com/fwojciec/ideas/claims"
	"github.com/fwojciec/ideas/gemini"
	"github.com/fwojciec/ideas/glamour"
	"github.com/fwojciec/ideas/markdown"
	"github.com/fwojciec/ideas/sse"
)

// resolved is a source with the credentials, framing and gate that go
// with it.
type resolved struct {
	name    string
	source  ideas.Source
	tokens  ideas.TokenSource
	framing ideas.Framing
	gate    ideas.Gate
}

// resolveSource selects and constructs the source. stored supplies the
// keyring token for the sse source. All env values arrive through cfg.
func resolveSource(cfg config, stored ideas.TokenSource, logger log.Interface) (resolved, error) {
	switch cfg.Source {
	case "sse":
		if cfg.URL == "" {
			return resolved{}, fmt.Errorf("IDEAS_URL not set (use -url flag or environment variable): %w", ideas.ErrValidation)
		}
		tokens := ideas.FirstToken(ideas.StaticToken(cfg.Token), stored)
		gate := ideas.AllowAll
		if cfg.PlanClaim != "" {
			gate = claims.New(tokens, claims.WithClaim(cfg.PlanClaim), claims.WithPlans(cfg.Plans...))
		}
		return resolved{
			name:    "sse",
			source:  sse.New(cfg.URL, sse.WithLogger(logger)),
			tokens:  tokens,
			framing: ideas.FramingLine,
			gate:    gate,
		}, nil

	case "anthropic":
		var opts []anthropic.Option
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		// A missing key surfaces as "Authentication required" in the view.
		return resolved{
			name:    "anthropic",
			source:  anthropic.New(opts...),
			tokens:  ideas.StaticToken(cfg.AnthropicKey),
			framing: ideas.FramingToken,
			gate:    ideas.AllowAll,
		}, nil

	case "gemini":
		var opts []gemini.Option
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		return resolved{
			name:    "gemini",
			source:  gemini.New(opts...),
			tokens:  ideas.StaticToken(cfg.GeminiKey),
			framing: ideas.FramingToken,
			gate:    ideas.AllowAll,
		}, nil

	default:
		return resolved{}, fmt.Errorf("unknown source %q: must be \"sse\", \"anthropic\" or \"gemini\": %w", cfg.Source, ideas.ErrValidation)
	}
}

// resolveRenderer selects the Markdown renderer by name.
func resolveRenderer(name string, theme ideas.Theme) (bt.RenderFunc, error) {
	switch name {
	case "markdown":
		return markdown.Renderer(theme), nil
	case "glamour":
		return glamour.Renderer(glamour.DefaultStyle), nil
	case "plain":
		return func(source string, _ int) string { return source }, nil
	default:
		return nil, fmt.Errorf("unknown renderer %q: must be \"markdown\", \"glamour\" or \"plain\": %w", name, ideas.ErrValidation)
	}
}

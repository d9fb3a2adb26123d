package main

import (
	"context"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/fwojciec/ideas"
	"github.com/fwojciec/ideas/anthropic"
	"github.com/fwojciec/ideas/claims"
	"github.com/fwojciec/ideas/gemini"
	"github.com/fwojciec/ideas/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = &log.Logger{Handler: discard.New(), Level: log.InfoLevel}

func TestResolveSource_SSE(t *testing.T) {
	t.Parallel()
	cfg := config{Source: "sse", URL: "https://example.com/api", PlanClaim: "plan", Plans: []string{"premium"}}
	stored := ideas.StaticToken("from-keyring")

	r, err := resolveSource(cfg, stored, testLogger)
	require.NoError(t, err)

	assert.Equal(t, "sse", r.name)
	assert.IsType(t, &sse.Client{}, r.source)
	assert.Equal(t, ideas.FramingLine, r.framing)
	assert.IsType(t, &claims.Gate{}, r.gate)

	tok, err := r.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", tok)
}

func TestResolveSource_SSEFlagTokenWins(t *testing.T) {
	t.Parallel()
	cfg := config{Source: "sse", URL: "https://example.com/api", Token: "explicit"}

	r, err := resolveSource(cfg, ideas.StaticToken("from-keyring"), testLogger)
	require.NoError(t, err)

	tok, err := r.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "explicit", tok)
}

func TestResolveSource_SSEWithoutPlanClaimAllowsAll(t *testing.T) {
	t.Parallel()
	r, err := resolveSource(config{Source: "sse", URL: "https://example.com/api"}, ideas.StaticToken(""), testLogger)
	require.NoError(t, err)

	_, isClaims := r.gate.(*claims.Gate)
	assert.False(t, isClaims)
	ok, err := r.gate.Entitled(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolveSource_SSEOpaqueTokenIsNotAuthRequired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		planClaim string
	}{
		{"default config", ""},
		{"plan claim configured", "plan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := loadConfig([]string{"IDEAS_URL=https://example.com/api", "IDEAS_TOKEN=opaque-session-token"})
			require.NoError(t, err)
			cfg.PlanClaim = tt.planClaim

			r, err := resolveSource(cfg, ideas.StaticToken(""), testLogger)
			require.NoError(t, err)
			ok, err := r.gate.Entitled(context.Background())
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestResolveSource_SSERequiresURL(t *testing.T) {
	t.Parallel()
	_, err := resolveSource(config{Source: "sse"}, ideas.StaticToken(""), testLogger)
	require.ErrorIs(t, err, ideas.ErrValidation)
	assert.Contains(t, err.Error(), "IDEAS_URL not set")
}

func TestResolveSource_Anthropic(t *testing.T) {
	t.Parallel()
	r, err := resolveSource(config{Source: "anthropic", AnthropicKey: "sk-ant", Model: "claude-test"}, nil, testLogger)
	require.NoError(t, err)

	assert.IsType(t, &anthropic.Client{}, r.source)
	assert.Equal(t, ideas.FramingToken, r.framing)
	tok, err := r.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-ant", tok)
}

func TestResolveSource_Gemini(t *testing.T) {
	t.Parallel()
	r, err := resolveSource(config{Source: "gemini", GeminiKey: "gk-gem"}, nil, testLogger)
	require.NoError(t, err)

	assert.IsType(t, &gemini.Client{}, r.source)
	assert.Equal(t, ideas.FramingToken, r.framing)
	tok, err := r.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gk-gem", tok)
}

func TestResolveSource_Unknown(t *testing.T) {
	t.Parallel()
	_, err := resolveSource(config{Source: "openai"}, nil, testLogger)
	require.ErrorIs(t, err, ideas.ErrValidation)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestResolveRenderer(t *testing.T) {
	t.Parallel()
	theme := ideas.DefaultTheme()

	for _, name := range []string{"markdown", "glamour", "plain"} {
		r, err := resolveRenderer(name, theme)
		require.NoError(t, err, name)
		assert.NotNil(t, r, name)
	}

	plain, err := resolveRenderer("plain", theme)
	require.NoError(t, err)
	assert.Equal(t, "## Idea", plain("## Idea", 80))

	_, err = resolveRenderer("html", theme)
	assert.ErrorIs(t, err, ideas.ErrValidation)
}

package main

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "sse", cfg.Source)
	assert.Equal(t, "markdown", cfg.Renderer)
	assert.Equal(t, 16*time.Millisecond, cfg.FrameInterval)
	assert.Empty(t, cfg.PlanClaim)
	assert.Equal(t, []string{"premium"}, cfg.Plans)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Parallel()
	cfg, err := loadConfig([]string{
		"IDEAS_URL=https://example.com/api",
		"IDEAS_SOURCE=anthropic",
		"IDEAS_FRAME_INTERVAL=50ms",
		"IDEAS_PLANS=pro,team",
		"ANTHROPIC_API_KEY=sk-ant",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/api", cfg.URL)
	assert.Equal(t, "anthropic", cfg.Source)
	assert.Equal(t, 50*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, []string{"pro", "team"}, cfg.Plans)
	assert.Equal(t, "sk-ant", cfg.AnthropicKey)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Parallel()
	_, err := loadConfig([]string{"IDEAS_FRAME_INTERVAL=soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestBindFlags_OverrideEnv(t *testing.T) {
	t.Parallel()
	cfg, err := loadConfig([]string{"IDEAS_URL=https://env.example.com", "IDEAS_RENDERER=glamour"})
	require.NoError(t, err)

	fs := flag.NewFlagSet("ideas", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	act := cfg.bindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-url", "https://flag.example.com", "-plans", "gold, silver", "-open", "01AB", "-no-save"}))

	assert.Equal(t, "https://flag.example.com", cfg.URL)
	assert.Equal(t, "glamour", cfg.Renderer)
	assert.Equal(t, []string{"gold", "silver"}, cfg.Plans)
	assert.Equal(t, "01AB", act.open)
	assert.True(t, act.noSave)
	assert.False(t, act.print)
}

func TestConfig_ArchiveDir(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/tmp/ideas", config{ArchiveDir: "/tmp/ideas"}.archiveDir())
	assert.Contains(t, config{}.archiveDir(), ".ideas")
}

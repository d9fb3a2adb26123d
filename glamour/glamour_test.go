package glamour_test

import (
	"testing"

	"github.com/fwojciec/ideas/glamour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		out, err := glamour.Render("", 80, "notty")
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("renders headings and lists", func(t *testing.T) {
		t.Parallel()
		out, err := glamour.Render("## Problem\n\n- paperwork\n- invoices", 60, "notty")
		require.NoError(t, err)
		assert.Contains(t, out, "Problem")
		assert.Contains(t, out, "paperwork")
		assert.Contains(t, out, "invoices")
	})

	t.Run("renders tables", func(t *testing.T) {
		t.Parallel()
		out, err := glamour.Render("| Metric | Value |\n|---|---|\n| TAM | 4B |", 60, "notty")
		require.NoError(t, err)
		assert.Contains(t, out, "Metric")
		assert.Contains(t, out, "TAM")
		assert.NotContains(t, out, "|---|")
	})

	t.Run("default style", func(t *testing.T) {
		t.Parallel()
		out, err := glamour.Render("hello", 0, "")
		require.NoError(t, err)
		assert.Contains(t, out, "hello")
	})
}

func TestRenderer(t *testing.T) {
	t.Parallel()

	render := glamour.Renderer("notty")
	out := render("**bold** idea", 40)
	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "idea")
}

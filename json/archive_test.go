package json_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/ideas"
	ideasjson "github.com/fwojciec/ideas/json"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_SaveAssignsIDAndTime(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 4, 5, 6, 7, 8, 0, time.UTC)
	a := &ideasjson.Archive{Dir: t.TempDir(), Now: func() time.Time { return at }}

	saved, err := a.Save(ideas.Idea{Source: "sse", Status: ideas.StatusDone, Markdown: "## Idea"})
	require.NoError(t, err)

	assert.Equal(t, at, saved.CreatedAt)
	id, err := ulid.ParseStrict(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), id.Time())
	assert.FileExists(t, filepath.Join(a.Dir, saved.ID+".json"))
}

func TestArchive_ListNewestFirst(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	a := &ideasjson.Archive{Dir: dir}

	older, err := a.Save(ideas.Idea{CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Status: ideas.StatusDone, Markdown: "old"})
	require.NoError(t, err)
	newer, err := a.Save(ideas.Idea{CreatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Status: ideas.StatusDone, Markdown: "new"})
	require.NoError(t, err)
	nested := ideas.Idea{ID: "01AAAAAAAAAAAAAAAAAAAAAAAA", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Status: ideas.StatusDone, Markdown: "nested"}
	require.NoError(t, ideasjson.Save(filepath.Join(dir, "2025", nested.ID+".json"), nested))

	list, err := a.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{newer.ID, older.ID, nested.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestArchive_ListMissingDir(t *testing.T) {
	t.Parallel()
	a := &ideasjson.Archive{Dir: filepath.Join(t.TempDir(), "absent")}
	list, err := a.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestArchive_Find(t *testing.T) {
	t.Parallel()
	a := &ideasjson.Archive{Dir: t.TempDir()}
	first := ideas.Idea{ID: "01AAAAAAAAAAAAAAAAAAAAAAAA", Status: ideas.StatusDone, Markdown: "first"}
	second := ideas.Idea{ID: "01AAAAAAAAAAAAAAAAAAAAAAAB", Status: ideas.StatusDone, Markdown: "second"}
	_, err := a.Save(first)
	require.NoError(t, err)
	_, err = a.Save(second)
	require.NoError(t, err)

	t.Run("full id", func(t *testing.T) {
		t.Parallel()
		got, err := a.Find(second.ID)
		require.NoError(t, err)
		assert.Equal(t, "second", got.Markdown)
	})

	t.Run("unique lowercase prefix", func(t *testing.T) {
		t.Parallel()
		got, err := a.Find("01aaaaaaaaaaaaaaaaaaaaaaaa")
		require.NoError(t, err)
		assert.Equal(t, "first", got.Markdown)
	})

	t.Run("ambiguous prefix", func(t *testing.T) {
		t.Parallel()
		_, err := a.Find("01AAAA")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ambiguous")
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		_, err := a.Find("01ZZ")
		assert.ErrorIs(t, err, ideasjson.ErrNotFound)
	})

	t.Run("glob characters rejected", func(t *testing.T) {
		t.Parallel()
		_, err := a.Find("*")
		assert.ErrorIs(t, err, ideas.ErrValidation)
	})
}

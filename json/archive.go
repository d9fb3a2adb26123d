package json

import (
	"crypto/rand"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/ideas"
	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when no archived idea matches an ID.
var ErrNotFound = errors.New("idea not found")

// Archive stores one JSON file per idea under Dir, named by ULID so that
// lexical order is creation order. Ideas may be grouped in subdirectories;
// lookups search the whole tree.
type Archive struct {
	Dir string
	Now func() time.Time
}

// Save assigns an ID and creation time when missing, writes the idea and
// returns it as stored.
func (a *Archive) Save(i ideas.Idea) (ideas.Idea, error) {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = a.now()
	}
	if i.ID == "" {
		id, err := newID(i.CreatedAt)
		if err != nil {
			return ideas.Idea{}, fmt.Errorf("new id: %w", err)
		}
		i.ID = id
	}
	if err := Save(filepath.Join(a.Dir, i.ID+".json"), i); err != nil {
		return ideas.Idea{}, err
	}
	return i, nil
}

// List returns all archived ideas, newest first.
func (a *Archive) List() ([]ideas.Idea, error) {
	paths, err := a.glob("**/*.json")
	if err != nil {
		return nil, err
	}
	out := make([]ideas.Idea, 0, len(paths))
	for _, p := range paths {
		i, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out = append(out, i)
	}
	slices.SortFunc(out, func(x, y ideas.Idea) int { return strings.Compare(y.ID, x.ID) })
	return out, nil
}

// Find loads the idea whose ID starts with prefix. The prefix must match
// exactly one idea.
func (a *Archive) Find(prefix string) (ideas.Idea, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" || strings.ContainsAny(prefix, `*?[]{}/\`) {
		return ideas.Idea{}, fmt.Errorf("invalid id %q: %w", prefix, ideas.ErrValidation)
	}
	paths, err := a.glob("**/" + prefix + "*.json")
	if err != nil {
		return ideas.Idea{}, err
	}
	switch len(paths) {
	case 0:
		return ideas.Idea{}, fmt.Errorf("%s: %w", prefix, ErrNotFound)
	case 1:
		return Load(paths[0])
	}
	return ideas.Idea{}, fmt.Errorf("id %q is ambiguous: %d matches", prefix, len(paths))
}

// glob returns the paths of regular files under Dir matching pattern. A
// missing Dir is an empty archive.
func (a *Archive) glob(pattern string) ([]string, error) {
	if _, err := os.Stat(a.Dir); errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	var paths []string
	err := doublestar.GlobWalk(os.DirFS(a.Dir), pattern, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		paths = append(paths, filepath.Join(a.Dir, filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	return paths, nil
}

func (a *Archive) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func newID(t time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

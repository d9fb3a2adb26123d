// Package json persists finished ideas as JSON files.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/ideas"
)

// envelope is the v1 wire format for a persisted idea.
type envelope struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	Markdown  string    `json:"markdown"`
}

// MarshalIdea serializes an Idea to JSON in v1 envelope format.
func MarshalIdea(i ideas.Idea) ([]byte, error) {
	if i.ID == "" {
		return nil, fmt.Errorf("idea has no id: %w", ideas.ErrValidation)
	}
	env := envelope{
		Version:   1,
		ID:        i.ID,
		CreatedAt: i.CreatedAt,
		Source:    i.Source,
		Status:    i.Status.String(),
		Markdown:  i.Markdown,
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalIdea deserializes an Idea from JSON in v1 envelope format.
func UnmarshalIdea(data []byte) (ideas.Idea, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ideas.Idea{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return ideas.Idea{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	status, err := parseStatus(env.Status)
	if err != nil {
		return ideas.Idea{}, err
	}
	return ideas.Idea{
		ID:        env.ID,
		CreatedAt: env.CreatedAt,
		Source:    env.Source,
		Status:    status,
		Markdown:  env.Markdown,
	}, nil
}

// Save writes an Idea to a JSON file, creating parent directories as needed.
func Save(path string, i ideas.Idea) error {
	data, err := MarshalIdea(i)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads an Idea from a JSON file.
func Load(path string) (ideas.Idea, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ideas.Idea{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalIdea(data)
}

func parseStatus(s string) (ideas.Status, error) {
	for st := ideas.StatusLoading; st <= ideas.StatusAuthRequired; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown status: %q", s)
}

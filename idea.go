package ideas

import "time"

// Idea is a finished generation kept for later viewing.
type Idea struct {
	ID        string
	CreatedAt time.Time
	Source    string // Name of the source that produced it, e.g. "sse".
	Status    Status
	Markdown  string
}

// NewIdea builds an Idea from the final snapshot of a session.
func NewIdea(s Snapshot, source string, at time.Time) Idea {
	return Idea{
		CreatedAt: at,
		Source:    source,
		Status:    s.Status,
		Markdown:  s.Text,
	}
}

// Archivable reports whether the idea has content worth keeping.
func (i Idea) Archivable() bool {
	switch i.Status {
	case StatusDone, StatusFailed:
		return i.Markdown != "" && i.Markdown != LoadingPlaceholder
	}
	return false
}

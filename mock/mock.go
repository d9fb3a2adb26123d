// Package mock provides test doubles for ideas interfaces using function fields.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/fwojciec/ideas"
)

// Interface compliance checks.
var (
	_ ideas.Source      = (*Source)(nil)
	_ ideas.Stream      = (*Stream)(nil)
	_ ideas.Gate        = (*Gate)(nil)
	_ ideas.TokenSource = (*TokenSource)(nil)
)

// Source is a test double for ideas.Source.
// Set OpenFn before calling Open.
type Source struct {
	OpenFn func(ctx context.Context, token string) (ideas.Stream, error)
}

// Open delegates to OpenFn.
func (s *Source) Open(ctx context.Context, token string) (ideas.Stream, error) {
	return s.OpenFn(ctx, token)
}

// Stream is a test double for ideas.Stream.
// NextFn panics when nil to catch missing setup. CloseFn and StateFn are
// nil-safe because test code commonly defers Close and rarely needs State.
type Stream struct {
	NextFn  func() (ideas.Event, error)
	StateFn func() ideas.StreamState
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (ideas.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() ideas.StreamState {
	if s.StateFn == nil {
		return ideas.StreamStateNew
	}
	return s.StateFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Events returns a Stream that yields events in order and then io.EOF.
// Closed reports whether Close was called.
func Events(events ...ideas.Event) (s *Stream, closed func() bool) {
	var (
		mu       sync.Mutex
		i        int
		isClosed bool
	)
	s = &Stream{
		NextFn: func() (ideas.Event, error) {
			mu.Lock()
			defer mu.Unlock()
			if i >= len(events) {
				return nil, io.EOF
			}
			evt := events[i]
			i++
			return evt, nil
		},
		CloseFn: func() error {
			mu.Lock()
			defer mu.Unlock()
			isClosed = true
			return nil
		},
	}
	return s, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return isClosed
	}
}

// Gate is a test double for ideas.Gate.
type Gate struct {
	EntitledFn func(ctx context.Context) (bool, error)
}

// Entitled delegates to EntitledFn.
func (g *Gate) Entitled(ctx context.Context) (bool, error) {
	return g.EntitledFn(ctx)
}

// TokenSource is a test double for ideas.TokenSource that counts calls.
type TokenSource struct {
	TokenFn func(ctx context.Context) (string, error)

	mu    sync.Mutex
	calls int
}

// Token delegates to TokenFn.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return t.TokenFn(ctx)
}

// Calls returns how many times Token was called.
func (t *TokenSource) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

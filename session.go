package ideas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
)

// LoadingPlaceholder is published until the first fragment with visible
// content arrives.
const LoadingPlaceholder = "…loading"

// Status describes where a streaming session is in its lifecycle.
type Status int

const (
	StatusLoading      Status = iota // Waiting for the first fragment.
	StatusStreaming                  // Fragments are arriving.
	StatusDone                       // Terminal signal received.
	StatusFailed                     // Open or transport failure; Text keeps any partial content.
	StatusAuthRequired               // No token was available; nothing was opened.
)

// String returns a lowercase name for the status.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusStreaming:
		return "streaming"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusAuthRequired:
		return "auth_required"
	default:
		return "unknown"
	}
}

// Snapshot is the renderable state published to the view layer.
type Snapshot struct {
	Text   string // Normalized Markdown, or LoadingPlaceholder / AuthRequiredMessage.
	Status Status
	Err    error // Set when Status is StatusFailed.
}

// Final reports whether no further snapshots will follow for this run.
func (s Snapshot) Final() bool {
	switch s.Status {
	case StatusDone, StatusFailed, StatusAuthRequired:
		return true
	}
	return false
}

// Session streams one idea from a Source into snapshots.
type Session struct {
	source    Source
	tokens    TokenSource
	framing   Framing
	interval  time.Duration
	afterFunc AfterFunc
	logger    log.Interface
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithFraming sets how fragment boundaries are interpreted. Default is
// FramingLine.
func WithFraming(f Framing) SessionOption {
	return func(s *Session) { s.framing = f }
}

// WithFrameInterval sets the minimum time between published snapshots.
func WithFrameInterval(d time.Duration) SessionOption {
	return func(s *Session) { s.interval = d }
}

// WithTimer replaces the scheduler's timer. Useful for deterministic tests.
func WithTimer(fn AfterFunc) SessionOption {
	return func(s *Session) { s.afterFunc = fn }
}

// WithLogger sets the logger used for transport errors.
func WithLogger(l log.Interface) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a Session reading from source with credentials from
// tokens.
func NewSession(source Source, tokens TokenSource, opts ...SessionOption) *Session {
	s := &Session{
		source:   source,
		tokens:   tokens,
		interval: DefaultFrameInterval,
		logger:   &log.Logger{Handler: discard.New(), Level: log.InfoLevel},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run performs one streaming attempt and blocks until it ends. Every call
// starts from an empty buffer, so calling Run again is a retry.
//
// publish receives an initial loading snapshot, throttled intermediate
// snapshots and exactly one final snapshot (see Snapshot.Final), except
// when ctx is cancelled: then publishing stops before Run returns and no
// final snapshot is sent.
func (s *Session) Run(ctx context.Context, publish func(Snapshot)) error {
	publish(Snapshot{Text: LoadingPlaceholder, Status: StatusLoading})

	token, err := s.tokens.Token(ctx)
	if err != nil {
		err = fmt.Errorf("token: %w", err)
		publish(Snapshot{Status: StatusFailed, Err: err})
		return err
	}
	if token == "" {
		s.logger.Warn("no token available, not connecting")
		publish(Snapshot{Text: AuthRequiredMessage, Status: StatusAuthRequired, Err: ErrAuthRequired})
		return ErrAuthRequired
	}

	stream, err := s.source.Open(ctx, token)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.WithError(err).Error("open stream")
		publish(Snapshot{Status: StatusFailed, Err: err})
		return err
	}
	defer stream.Close()

	var (
		mu      sync.Mutex
		buf     = NewBuffer(s.framing)
		failure error
	)
	var schedOpts []SchedulerOption
	if s.afterFunc != nil {
		schedOpts = append(schedOpts, WithAfterFunc(s.afterFunc))
	}
	sched := NewScheduler(s.interval, func() {
		mu.Lock()
		snap := snapshot(buf, failure)
		mu.Unlock()
		publish(snap)
	}, schedOpts...)
	defer sched.Stop()

	for {
		evt, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Streams report completion as EventDone first; treat a bare
				// EOF the same way.
				evt = EventDone{}
			} else {
				if ctx.Err() != nil {
					sched.Stop()
					return ctx.Err()
				}
				s.logger.WithError(err).WithField("received", bufLen(&mu, buf)).Error("stream interrupted")
				mu.Lock()
				failure = err
				mu.Unlock()
				sched.Flush()
				return err
			}
		}

		if e, ok := evt.(EventError); ok {
			s.logger.WithField("message", e.Message).Warn("producer reported error")
		}

		mu.Lock()
		changed := buf.Ingest(evt)
		done := buf.Terminated()
		mu.Unlock()

		if done {
			sched.Flush()
			return nil
		}
		if changed {
			sched.Mark()
		}
	}
}

// snapshot builds the published view of buf. The caller holds the lock
// guarding buf.
func snapshot(buf *Buffer, failure error) Snapshot {
	text := Normalize(Sanitize(buf.String()))
	switch {
	case failure != nil:
		return Snapshot{Text: text, Status: StatusFailed, Err: failure}
	case buf.Terminated():
		return Snapshot{Text: text, Status: StatusDone}
	case strings.TrimSpace(text) == "":
		return Snapshot{Text: LoadingPlaceholder, Status: StatusLoading}
	default:
		return Snapshot{Text: text, Status: StatusStreaming}
	}
}

func bufLen(mu *sync.Mutex, buf *Buffer) int {
	mu.Lock()
	defer mu.Unlock()
	return buf.Len()
}

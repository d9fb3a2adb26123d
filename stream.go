package ideas

import "context"

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving fragments.
	StreamStateComplete                     // EventDone delivered; Next() returns io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// String returns a lowercase name for the state.
func (s StreamState) String() string {
	switch s {
	case StreamStateNew:
		return "new"
	case StreamStateStreaming:
		return "streaming"
	case StreamStateComplete:
		return "complete"
	case StreamStateError:
		return "error"
	case StreamStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// context passed to Source.Open().
//
// Next() returns events in arrival order. Completion is reported once as
// EventDone; every call after that returns io.EOF. A producer that closes the
// connection cleanly without a completion marker is reported as EventDone
// too. After Close(), Next() returns an error wrapping ErrStreamClosed.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Close() error
}

// Source opens streams of idea text. The token is the bearer credential
// obtained from a TokenSource; it is never empty.
type Source interface {
	Open(ctx context.Context, token string) (Stream, error)
}

package sse

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fwojciec/ideas"
)

// Interface compliance check.
var _ ideas.Stream = (*stream)(nil)

// stream implements [ideas.Stream] over an open event-stream response.
type stream struct {
	ctx    context.Context
	body   io.ReadCloser
	reader *Reader
	state  ideas.StreamState
	err    error // terminal error, if any
}

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		ctx:    ctx,
		body:   body,
		reader: NewReader(body),
		state:  ideas.StreamStateNew,
	}
}

// Next returns the next event. A body that ends without a completion
// marker is reported as EventDone.
func (s *stream) Next() (ideas.Event, error) {
	switch s.state {
	case ideas.StreamStateComplete:
		return nil, io.EOF
	case ideas.StreamStateError:
		return nil, s.err
	case ideas.StreamStateClosed:
		return nil, fmt.Errorf("sse: %w", ideas.ErrStreamClosed)
	}

	msg, err := s.reader.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.state = ideas.StreamStateComplete
			return ideas.EventDone{}, nil
		}
		s.state = ideas.StreamStateError
		if ctxErr := s.ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		s.err = err
		return nil, s.err
	}

	s.state = ideas.StreamStateStreaming
	evt := toEvent(msg)
	if ideas.IsTerminal(evt) {
		s.state = ideas.StreamStateComplete
	}
	return evt, nil
}

// State returns the current stream state.
func (s *stream) State() ideas.StreamState {
	return s.state
}

// Close closes the response body.
func (s *stream) Close() error {
	if s.state != ideas.StreamStateComplete && s.state != ideas.StreamStateError {
		s.state = ideas.StreamStateClosed
	}
	return s.body.Close()
}

func toEvent(msg Message) ideas.Event {
	switch msg.Event {
	case eventDone:
		return ideas.EventDone{}
	case eventError:
		return ideas.EventError{Message: msg.Data}
	default:
		return ideas.EventData{Text: msg.Data}
	}
}

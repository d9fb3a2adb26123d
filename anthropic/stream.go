package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fwojciec/ideas"
	"github.com/fwojciec/ideas/sse"
)

// stream implements [ideas.Stream] by mapping Messages API events to idea
// fragments.
type stream struct {
	body   io.ReadCloser
	reader *sse.Reader
	ctx    context.Context
	state  ideas.StreamState
	failed bool  // an error event was delivered
	err    error // terminal error, if any
}

// Interface compliance check.
var _ ideas.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:   body,
		reader: sse.NewReader(body),
		ctx:    ctx,
		state:  ideas.StreamStateNew,
	}
}

// Next reads the next fragment. message_stop is reported as EventDone and
// an API error event as EventError. A body that ends without message_stop
// is an error unless an error event explained it.
func (s *stream) Next() (ideas.Event, error) {
	switch s.state {
	case ideas.StreamStateComplete:
		return nil, io.EOF
	case ideas.StreamStateError:
		return nil, s.err
	case ideas.StreamStateClosed:
		return nil, fmt.Errorf("anthropic: %w", ideas.ErrStreamClosed)
	}

	for {
		msg, err := s.reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) && s.failed {
				s.state = ideas.StreamStateComplete
				return ideas.EventDone{}, nil
			}
			s.terminate(err)
			return nil, s.err
		}

		s.state = ideas.StreamStateStreaming

		evt, err := s.processEvent(msg.Event, msg.Data)
		if err != nil {
			s.terminate(err)
			return nil, s.err
		}
		if evt != nil {
			return evt, nil
		}
		// Non-text event (ping, message_start, etc.) - keep reading.
	}
}

// State returns the current stream state.
func (s *stream) State() ideas.StreamState {
	return s.state
}

// Close closes the underlying HTTP response body.
func (s *stream) Close() error {
	if s.state != ideas.StreamStateComplete && s.state != ideas.StreamStateError {
		s.state = ideas.StreamStateClosed
	}
	return s.body.Close()
}

// terminate records a terminal error.
func (s *stream) terminate(err error) {
	s.state = ideas.StreamStateError
	switch {
	case s.ctx.Err() != nil:
		s.err = s.ctx.Err()
	case errors.Is(err, io.EOF):
		s.err = errors.New("anthropic: unexpected end of stream")
	default:
		s.err = err
	}
}

// processEvent maps an SSE event to an idea event. Returns nil for events
// that carry no text.
func (s *stream) processEvent(eventType, data string) (ideas.Event, error) {
	switch eventType {
	case "content_block_delta":
		var evt sseContentBlockDelta
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return nil, fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
		}
		if evt.Delta.Type != "text_delta" || evt.Delta.Text == "" {
			return nil, nil
		}
		return ideas.EventData{Text: evt.Delta.Text}, nil
	case "message_stop":
		s.state = ideas.StreamStateComplete
		return ideas.EventDone{}, nil
	case "error":
		var evt sseError
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			return nil, fmt.Errorf("anthropic: failed to parse error event: %w", err)
		}
		s.failed = true
		return ideas.EventError{Message: evt.Error.Type + ": " + evt.Error.Message}, nil
	default:
		// message_start, content_block_start/stop, message_delta, ping and
		// unknown event types carry no text.
		return nil, nil
	}
}

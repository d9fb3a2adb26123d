package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/ideas"
	"google.golang.org/genai"
)

// stream implements [ideas.Stream] by wrapping the genai SDK's streaming
// iterator. Each chunk's visible text becomes one fragment; exhausting the
// iterator completes the stream.
type stream struct {
	ctx   context.Context
	pull  func() (*genai.GenerateContentResponse, error, bool)
	stop  func()
	state ideas.StreamState
	next  ideas.Event // queued behind a fragment from the same chunk
	err   error
}

// Interface compliance check.
var _ ideas.Stream = (*stream)(nil)

func newStream(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) *stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: ideas.StreamStateNew,
	}
}

func (s *stream) Next() (ideas.Event, error) {
	switch s.state {
	case ideas.StreamStateComplete:
		return nil, io.EOF
	case ideas.StreamStateError:
		return nil, s.err
	case ideas.StreamStateClosed:
		return nil, fmt.Errorf("gemini: %w", ideas.ErrStreamClosed)
	}
	if evt := s.next; evt != nil {
		s.next = nil
		return evt, nil
	}

	for {
		resp, err, ok := s.pull()
		if !ok {
			s.state = ideas.StreamStateComplete
			return ideas.EventDone{}, nil
		}
		if err != nil {
			s.state = ideas.StreamStateError
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				s.err = ctxErr
			} else {
				s.err = fmt.Errorf("gemini: %w", err)
			}
			return nil, s.err
		}
		s.state = ideas.StreamStateStreaming

		text, msg := visibleText(resp), blocked(resp)
		switch {
		case text != "" && msg != "":
			s.next = ideas.EventError{Message: msg}
			return ideas.EventData{Text: text}, nil
		case text != "":
			return ideas.EventData{Text: text}, nil
		case msg != "":
			return ideas.EventError{Message: msg}, nil
		}
		// Chunk with only thoughts or metadata - keep pulling.
	}
}

func (s *stream) State() ideas.StreamState {
	return s.state
}

func (s *stream) Close() error {
	if s.state != ideas.StreamStateComplete && s.state != ideas.StreamStateError {
		s.state = ideas.StreamStateClosed
	}
	s.stop()
	return nil
}

// visibleText joins the first candidate's non-thought text parts.
func visibleText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// blocked describes why generation stopped early, or returns "".
func blocked(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "prompt blocked: " + string(fb.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return ""
	}
	switch r := resp.Candidates[0].FinishReason; r {
	case "", genai.FinishReasonUnspecified, genai.FinishReasonStop, genai.FinishReasonMaxTokens:
		return ""
	default:
		return "generation stopped: " + string(r)
	}
}

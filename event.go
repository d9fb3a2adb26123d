package ideas

import "strings"

// DoneSentinel is the literal payload some producers send in place of a
// typed completion event.
const DoneSentinel = "[DONE]"

// Event is a sealed interface representing one inbound stream event.
// Transport failures come from Next()'s error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventData carries one text fragment.
type EventData struct {
	Text string
}

func (EventData) event() {}

// EventDone signals that no more fragments will arrive.
type EventDone struct{}

func (EventDone) event() {}

// EventError reports a non-fatal error raised by the producer mid-stream.
type EventError struct {
	Message string
}

func (EventError) event() {}

// IsTerminal reports whether evt ends the stream, either as an explicit
// EventDone or as a data fragment equal to DoneSentinel.
func IsTerminal(evt Event) bool {
	switch e := evt.(type) {
	case EventDone:
		return true
	case EventData:
		return strings.TrimSpace(e.Text) == DoneSentinel
	}
	return false
}

// Interface compliance checks.
var (
	_ Event = EventData{}
	_ Event = EventDone{}
	_ Event = EventError{}
)

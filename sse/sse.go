// Package sse implements an [ideas.Source] that reads idea fragments from a
// server-sent events endpoint.
package sse

// Event types with special meaning. Any other event type carries data.
const (
	eventDone  = "done"
	eventError = "error"
)

const (
	contentType     = "text/event-stream"
	defaultMaxTries = 5
)

package ideas

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrAuthRequired indicates the token source had no token to offer.
	ErrAuthRequired = errors.New("authentication required")

	// ErrUnexpectedResponse indicates the stream endpoint answered with a
	// non-success status or a content type other than text/event-stream.
	ErrUnexpectedResponse = errors.New("unexpected response")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")

	// ErrValidation indicates invalid configuration.
	ErrValidation = errors.New("validation error")
)

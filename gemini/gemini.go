// Package gemini implements [ideas.Source] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Streaming uses the SDK's
// iter.Seq2 iterator, wrapped into the pull-based [ideas.Stream] interface.
// Chunks carry their own line breaks, so sessions reading from it should
// use [ideas.FramingToken].
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 4096
)

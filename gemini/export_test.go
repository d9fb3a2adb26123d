package gemini

// Export unexported functions for testing.
var (
	NewStreamFromIter = newStream
	BuildConfig       = buildConfig
)

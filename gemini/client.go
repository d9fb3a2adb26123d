package gemini

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fwojciec/ideas"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ ideas.Source = (*Client)(nil)

// Client implements [ideas.Source] for the Google Gemini API. The token
// passed to Open is used as the API key.
type Client struct {
	model      string
	maxTokens  int32
	prompt     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens caps the length of the generated idea.
func WithMaxTokens(n int32) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithPrompt replaces [ideas.DefaultPrompt] as the user message.
func WithPrompt(p string) Option {
	return func(c *Client) { c.prompt = p }
}

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new Gemini [Client].
func New(opts ...Option) *Client {
	c := &Client{
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
		prompt:    ideas.DefaultPrompt,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Open starts generating an idea and returns a stream of its text chunks.
func (c *Client) Open(ctx context.Context, token string) (ideas.Stream, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      token,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	contents := []*genai.Content{genai.NewContentFromText(c.prompt, genai.RoleUser)}
	seq := gc.Models.GenerateContentStream(ctx, c.model, contents, buildConfig(c.maxTokens))
	return newStream(ctx, seq), nil
}

func buildConfig(maxTokens int32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		MaxOutputTokens: maxTokens,
	}
}

package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fwojciec/ideas"
)

// Interface compliance check.
var _ ideas.Source = (*Client)(nil)

// Client implements [ideas.Source] for the Anthropic Messages API. The token
// passed to Open is used as the API key.
type Client struct {
	baseURL    string
	httpClient *http.Client
	model      string
	maxTokens  int
	system     string
	prompt     string
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens caps the length of the generated idea.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithSystemPrompt sets a system prompt.
func WithSystemPrompt(s string) Option {
	return func(c *Client) { c.system = s }
}

// WithPrompt replaces [ideas.DefaultPrompt] as the user message.
func WithPrompt(p string) Option {
	return func(c *Client) { c.prompt = p }
}

// New creates a new Anthropic [Client].
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		model:      defaultModel,
		maxTokens:  defaultMaxTokens,
		prompt:     ideas.DefaultPrompt,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Open sends the idea prompt and returns a stream of its text deltas.
func (c *Client) Open(ctx context.Context, token string) (ideas.Stream, error) {
	body, err := json.Marshal(apiRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Stream:    true,
		System:    c.system,
		Messages: []apiMessage{{
			Role:    "user",
			Content: []apiContentBlock{{Type: "text", Text: c.prompt}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-Api-Key", token)
	req.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(ctx, resp.Body), nil
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("anthropic: %w: HTTP %d: %s", ideas.ErrUnexpectedResponse, resp.StatusCode, string(body))
	}
	return fmt.Errorf("anthropic: %w: %s: %s", ideas.ErrUnexpectedResponse, apiErr.Error.Type, apiErr.Error.Message)
}

package sse

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/cenkalti/backoff/v5"
	"github.com/fwojciec/ideas"
)

// Interface compliance check.
var _ ideas.Source = (*Client)(nil)

// Client implements [ideas.Source] for an SSE endpoint that streams idea
// fragments. Connection attempts are retried with exponential backoff;
// a response that is not an event stream is not retried, and neither is
// a stream that fails after it opened.
type Client struct {
	url        string
	httpClient *http.Client
	logger     log.Interface
	maxTries   uint
	interval   time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for connection retries.
func WithLogger(l log.Interface) Option {
	return func(c *Client) { c.logger = l }
}

// WithMaxTries limits connection attempts. Zero means a single attempt.
func WithMaxTries(n uint) Option {
	return func(c *Client) { c.maxTries = max(n, 1) }
}

// WithRetryInterval sets the initial delay between connection attempts.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) { c.interval = d }
}

// New creates a [Client] for the endpoint at url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: http.DefaultClient,
		logger:     &log.Logger{Handler: discard.New(), Level: log.InfoLevel},
		maxTries:   defaultMaxTries,
		interval:   backoff.DefaultInitialInterval,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Open connects to the endpoint with token as the bearer credential and
// returns once the response has been validated as an event stream.
func (c *Client) Open(ctx context.Context, token string) (ideas.Stream, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.interval

	attempt := 0
	resp, err := backoff.Retry(ctx, func() (*http.Response, error) {
		attempt++
		return c.connect(ctx, token)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.WithError(err).WithFields(log.Fields{
				"attempt": attempt,
				"retry":   next,
			}).Warn("connect failed")
		}),
	)
	if err != nil {
		return nil, err
	}
	return newStream(ctx, resp.Body), nil
}

// connect performs one request. Errors that retrying cannot fix are marked
// permanent.
func (c *Client) connect(ctx context.Context, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("sse: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}
	if err := validate(resp); err != nil {
		resp.Body.Close()
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}
	return resp, nil
}

// ResponseError reports a response that did not open an event stream.
type ResponseError struct {
	StatusCode  int
	Status      string // e.g. "500 Internal Server Error"
	ContentType string
}

func (e *ResponseError) Error() string {
	return "Unexpected response: " + e.Status
}

// Unwrap lets callers match with errors.Is(err, ideas.ErrUnexpectedResponse).
func (e *ResponseError) Unwrap() error {
	return ideas.ErrUnexpectedResponse
}

// validate accepts a 2xx response whose content type is an event stream.
func validate(resp *http.Response) error {
	ct := resp.Header.Get("Content-Type")
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || !strings.Contains(ct, contentType) {
		return &ResponseError{StatusCode: resp.StatusCode, Status: resp.Status, ContentType: ct}
	}
	return nil
}

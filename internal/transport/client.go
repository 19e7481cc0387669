package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/agentstation/dogsync/pkg/constants"
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication and rate limiting.
type Client struct {
	api     string
	http    *http.Client
	auth    Authenticator
	limiter *RateLimiter
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithAuth sets the authenticator.
func WithAuth(auth Authenticator) Option {
	return func(c *Client) {
		c.auth = auth
	}
}

// WithTimeout sets the overall per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit caps the client at perSecond requests in any one-second window.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		c.limiter = NewRateLimiter(perSecond)
	}
}

// New creates a new transport client for the named API.
func New(api string, opts ...Option) *Client {
	c := &Client{
		api:  api,
		http: &http.Client{Timeout: DefaultHTTPTimeout},
		auth: &NoAuth{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// API returns the API name used in errors.
func (c *Client) API() string {
	return c.api
}

// Do performs an HTTP request with authentication applied. It waits for the
// rate limiter first. Transport failures are returned as *errors.APIError.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.auth.Apply(req)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	logging.FromContext(ctx).Trace().
		Str("api", c.api).
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Msg("HTTP request")

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return nil, &errors.APIError{
			API:      c.api,
			Endpoint: req.URL.Redacted(),
			Message:  "request failed",
			Err:      err,
		}
	}
	return resp, nil
}

// Request builds and performs a request.
func (c *Client) Request(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &errors.APIError{API: c.api, Endpoint: url, Message: "invalid request", Err: err}
	}
	return c.Do(ctx, req)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, url, nil)
}

// GetJSON performs a GET request and decodes a 200 JSON response into target.
func (c *Client) GetJSON(ctx context.Context, url string, target any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	return DecodeResponse(resp, c.api, target)
}

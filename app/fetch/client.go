// Package fetch is the outbound HTTP client shared by every stage: user
// agent, timeout, rate limiting and optional response caching.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/lysyi3m/wiki-api-connector/app/database"
)

type Options struct {
	UserAgent string
	Timeout   time.Duration
	// RateLimit is requests per second; zero or negative disables limiting.
	RateLimit float64
	// Cache, when set, serves repeated GETs from the store for CacheTTL.
	Cache    database.ResponseStore
	CacheTTL time.Duration
	// Transport overrides the network transport.
	Transport http.RoundTripper
}

type Client struct {
	http      *http.Client
	userAgent string
}

type Response struct {
	StatusCode int
	URL        string // final URL after redirects
	Header     http.Header
	Body       []byte
}

// StatusError reports a response with an unexpected status code.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

func NewClient(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	var transport http.RoundTripper = &limitedTransport{
		base:    base,
		limiter: rate.NewLimiter(limit, 1),
	}
	if opts.Cache != nil && opts.CacheTTL > 0 {
		transport = NewCacheTransport(transport, opts.Cache, opts.CacheTTL)
	}

	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent: opts.UserAgent,
	}
}

// HTTPClient returns the underlying client for callers that build their own
// requests.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func (c *Client) UserAgent() string {
	return c.userAgent
}

// Get fetches url and returns the response whatever its status. Only
// transport failures are errors.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		URL:        resp.Request.URL.String(),
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// Download streams the body of url into w, following redirects, and returns
// the final URL. Non-2xx responses are reported as *StatusError.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (string, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL.String()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return finalURL, &StatusError{URL: finalURL, StatusCode: resp.StatusCode}
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return finalURL, fmt.Errorf("failed to read response body: %w", err)
	}
	return finalURL, nil
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	return resp, nil
}

type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

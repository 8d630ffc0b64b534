// Package upstream is the shared HTTP client for the affiliate network APIs.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultUserAgent = "Affiliate-Aggregator/1.0"
	excerptLimit     = 500
)

type Options struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
	// Transport overrides the default round tripper, mostly for tests.
	Transport http.RoundTripper
}

type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// Response is the raw upstream reply. Body is never decoded.
type Response struct {
	Status      int
	StatusText  string
	Header      http.Header
	Body        []byte
	ContentType string
}

// HTTPError is returned for any reply with a status of 400 or above.
type HTTPError struct {
	Status     int
	StatusText string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream returned status %d %s", e.Status, e.StatusText)
}

// Excerpt returns at most the first 500 bytes of the body.
func (e *HTTPError) Excerpt() string {
	return excerpt(e.Body)
}

// Message prefers the "message" field of a JSON error body and falls back to
// Error.
func (e *HTTPError) Message() string {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(e.Body, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return e.Error()
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		limiter:   rate.NewLimiter(limit, opts.Burst),
		userAgent: opts.UserAgent,
	}
}

// Get performs a GET request. A non-nil *Response is returned together with an
// *HTTPError when the upstream answered with an error status, so callers can
// still inspect the body.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values, headers map[string]string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}
	if len(query) > 0 {
		merged := target.Query()
		for k, vs := range query {
			for _, v := range vs {
				merged.Add(k, v)
			}
		}
		target.RawQuery = merged.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", target.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	out := &Response{
		Status:      resp.StatusCode,
		StatusText:  http.StatusText(resp.StatusCode),
		Header:      resp.Header,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return out, &HTTPError{Status: out.Status, StatusText: out.StatusText, Body: body}
	}
	return out, nil
}

// excerpt never ends in a partial rune.
func excerpt(b []byte) string {
	if len(b) > excerptLimit {
		b = b[:excerptLimit]
	}
	return strings.ToValidUTF8(string(b), "")
}

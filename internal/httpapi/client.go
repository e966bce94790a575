package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Getter issues a single GET and returns the raw response. Implemented by
// *Client; tests substitute their own.
type Getter interface {
	Get(ctx context.Context, req Request) (*Response, error)
}

// Ensure Client implements Getter at compile time.
var _ Getter = (*Client)(nil)

// Request describes one outbound GET.
type Request struct {
	URL       string
	RequestID string
}

// Response carries the status and, for 2xx responses, the fully read body.
// Status interpretation is left to the caller.
type Response struct {
	StatusCode int
	Body       []byte
}

// Options configure a Client.
type Options struct {
	// Timeout bounds the whole exchange. Zero means no client timeout, which
	// leaves the limit to the transport and the request context.
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	// Transport overrides the default round tripper.
	Transport http.RoundTripper
}

// ErrBodyTooLarge is returned when a response body exceeds MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body too large")

// Client talks to public JSON endpoints.
type Client struct {
	http      *http.Client
	userAgent string
	maxBody   int64
}

const (
	DefaultUserAgent    = "listfeed/0.1"
	DefaultMaxBodyBytes = 8 << 20
)

// NewClient builds a Client from opts, filling defaults for blank fields.
func NewClient(opts Options) *Client {
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		userAgent: ua,
		maxBody:   maxBody,
	}
}

// Get performs the request. A non-nil error means no usable response was
// received.
func (c *Client) Get(ctx context.Context, r Request) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	target, err := parseTarget(r.URL)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if id := strings.TrimSpace(r.RequestID); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Non-2xx bodies are never decoded, so they are discarded unread and the
	// size cap only applies to success responses.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBody))
		return &Response{StatusCode: resp.StatusCode}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("read response: %w (limit %d bytes)", ErrBodyTooLarge, c.maxBody)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func parseTarget(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("parse url: empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse url %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse url %q: missing host", raw)
	}
	return u, nil
}

// Package api is the JSON-over-HTTP client shared by the LLM analyzers and
// the email sender.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"tradeshot/internal/logger"
)

const (
	defaultTimeout = 30 * time.Second
	// maxBodyBytes caps how much of a response is buffered.
	maxBodyBytes = 4 << 20
	// errBodyChars caps how much of an error body ends up in errors and logs.
	errBodyChars = 512
)

// StatusError is returned for responses with status >= 400.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// StatusCode extracts the HTTP status from err, or 0 when err carries none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// retryable reports whether another attempt could succeed. Transport errors,
// 429 and 5xx are retried.
func retryable(err error) bool {
	code := StatusCode(err)
	return code == 0 || code == http.StatusTooManyRequests || code >= 500
}

// NotDelivered reports whether err proves the server never accepted the
// request: the connection could not be opened, or the server answered 429.
// Non-idempotent calls retry only on these.
func NotDelivered(err error) bool {
	if StatusCode(err) == http.StatusTooManyRequests {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

type Client struct {
	http    *http.Client
	headers http.Header
	verbose bool
}

type ClientOption func(*Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithLogging logs requests at debug and failures at warn.
func WithLogging(enabled bool) ClientOption {
	return func(c *Client) { c.verbose = enabled }
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request is one call. Body, when set, is sent as JSON.
type Request struct {
	Method  string
	URL     string
	Body    any
	Headers map[string]string
	ctx     context.Context
}

func NewRequest(method, url string) *Request {
	return &Request{Method: method, URL: url, Headers: map[string]string{}, ctx: context.Background()}
}

func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

func (r *Request) WithBody(body any) *Request {
	r.Body = body
	return r
}

func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Do sends req once. Statuses >= 400 come back as *StatusError.
func (c *Client) Do(req *Request) (*Response, error) {
	var payload io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(req.ctx, req.Method, req.URL, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			httpReq.Header.Set(k, v)
		}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if payload != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.warn(req.ctx, "HTTP request failed", "method", req.Method, "url", req.URL, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if c.verbose {
		logger.Debug(req.ctx, "HTTP exchange",
			"method", req.Method,
			"url", req.URL,
			"status", httpResp.StatusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"body_bytes", len(body),
		)
	}

	if httpResp.StatusCode >= 400 {
		se := &StatusError{StatusCode: httpResp.StatusCode, Body: truncate(string(body), errBodyChars)}
		c.warn(req.ctx, "HTTP error response", "method", req.Method, "url", req.URL, "status", se.StatusCode, "body", se.Body)
		return nil, se
	}
	return &Response{StatusCode: httpResp.StatusCode, Body: body, Headers: httpResp.Header}, nil
}

// POST sends body as JSON with optional per-request headers.
func (c *Client) POST(ctx context.Context, url string, body any, headers ...map[string]string) (*Response, error) {
	req := NewRequest(http.MethodPost, url).WithContext(ctx).WithBody(body)
	for _, h := range headers {
		for k, v := range h {
			req.WithHeader(k, v)
		}
	}
	return c.Do(req)
}

// RetryConfig bounds DoWithRetry. The wait doubles after each failed attempt
// up to MaxWait. Retryable overrides which failures are retried.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Retryable   func(error) bool
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{MaxAttempts: 3, InitialWait: time.Second, MaxWait: 5 * time.Second}
}

// DoWithRetry repeats Do while the failure is retryable and attempts remain.
// The last error is returned wrapped, so StatusCode still sees it.
func (c *Client) DoWithRetry(req *Request, cfg *RetryConfig) (*Response, error) {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	again := cfg.Retryable
	if again == nil {
		again = retryable
	}
	wait := cfg.InitialWait
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		resp, err := c.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !again(err) || attempt == cfg.MaxAttempts {
			break
		}
		c.warn(req.ctx, "Retrying request", "attempt", attempt, "wait", wait, "error", err)
		select {
		case <-req.ctx.Done():
			return nil, req.ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, cfg.MaxWait)
	}
	return nil, fmt.Errorf("after %d attempt(s): %w", cfg.MaxAttempts, lastErr)
}

func (c *Client) warn(ctx context.Context, msg string, args ...any) {
	if c.verbose {
		logger.Warn(ctx, msg, args...)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"

	"mailwatch/internal/observability"
)

const (
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	maxResponseBytes = 10 << 20
	maxErrorBody     = 512
)

type RetryPolicy struct {
	MaxRetries      int
	BaseDelay       time.Duration
	RequestTimeout  time.Duration
	UserListTimeout time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		BaseDelay:       2 * time.Second,
		RequestTimeout:  10 * time.Second,
		UserListTimeout: 15 * time.Second,
	}
}

// RateLimitDelay is the cooldown applied after a 429.
func (p RetryPolicy) RateLimitDelay() time.Duration {
	return 2 * p.BaseDelay
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Request is one logical Graph call. URL is either absolute or a path
// relative to the client's base URL.
type Request struct {
	Method  string
	URL     string
	Body    any
	Timeout time.Duration
}

type Client struct {
	baseURL    string
	tokens     oauth2.TokenSource
	httpClient *http.Client
	policy     RetryPolicy
	sleep      Sleeper
	now        func() time.Time
	log        *observability.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p }
}

func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = observability.Component(l, "graph") }
}

func NewClient(tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		tokens:     tokens,
		httpClient: &http.Client{},
		policy:     DefaultRetryPolicy(),
		sleep:      Sleep,
		now:        time.Now,
		log:        observability.Component(nil, "graph"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy.MaxRetries < 0 {
		c.policy.MaxRetries = 0
	}
	return c
}

func (c *Client) Policy() RetryPolicy {
	return c.policy
}

// Do executes req with bounded retries and decodes a successful JSON body
// into out (when out is non-nil and the body is non-empty).
//
// 401 fails immediately with ErrAuthExpired. 429 waits 2×BaseDelay and
// retries. Timeouts and other transport errors wait BaseDelay and retry.
// Every other non-2xx status fails immediately. At most MaxRetries+1
// attempts are made.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	maxRetries := c.policy.MaxRetries
	for attempt := 0; ; attempt++ {
		body, err := c.once(ctx, req, attempt)
		if err == nil {
			return decodeBody(body, out)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		reason, delay, retryable := c.classify(err)
		if !retryable {
			if errors.Is(err, ErrAuthExpired) {
				c.log.Error(ctx, "credential rejected, re-authentication required", "method", req.Method, "path", pathOf(req.URL))
			} else {
				c.log.Error(ctx, "graph request failed", "method", req.Method, "path", pathOf(req.URL), "error", err.Error())
			}
			return err
		}
		if attempt >= maxRetries {
			c.log.Error(ctx, "max retries reached", "method", req.Method, "path", pathOf(req.URL), "reason", reason, "attempts", attempt+1, "error", err.Error())
			return exhausted(reason, attempt+1, err)
		}

		c.log.Warn(ctx, "retrying graph request",
			"method", req.Method,
			"path", pathOf(req.URL),
			"reason", reason,
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"delay", delay.String(),
			"error", err.Error(),
		)
		observability.RecordHTTPRetry(ctx, reason, attempt+1)
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (c *Client) once(ctx context.Context, req Request, attempt int) ([]byte, error) {
	ctx, span := observability.StartSpan(ctx, "graph.request",
		attribute.String("http.method", req.Method),
		attribute.String("url.path", pathOf(req.URL)),
		attribute.Int("attempt", attempt),
	)
	defer span.End()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.policy.RequestTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		observability.RecordHTTPAttempt(ctx, req.Method, 0)
		return nil, err
	}
	defer resp.Body.Close()
	observability.RecordHTTPAttempt(ctx, req.Method, resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     req.Method,
			Path:       pathOf(req.URL),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, permanent(fmt.Errorf("marshal request body: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolve(req.URL), body)
	if err != nil {
		return nil, permanent(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			if grantRejected(err) {
				return nil, fmt.Errorf("%w: %w", ErrAuthExpired, err)
			}
			return nil, fmt.Errorf("obtain token: %w", err)
		}
		tok.SetAuthHeader(httpReq)
	}
	return httpReq, nil
}

// grantRejected reports whether the token endpoint refused the refresh token
// itself. Other token endpoint failures are retried like any network error.
func grantRejected(err error) bool {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return false
	}
	if re.Response == nil {
		return true
	}
	switch re.Response.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized:
		return true
	}
	return false
}

func (c *Client) resolve(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return c.baseURL + u
}

// classify decides whether err is worth another attempt and how long to wait.
func (c *Client) classify(err error) (reason string, delay time.Duration, retryable bool) {
	var pe *permanentError
	switch {
	case errors.As(err, &pe):
		return "permanent", 0, false
	case errors.Is(err, ErrAuthExpired):
		return "auth_expired", 0, false
	case errors.Is(err, ErrRateLimited):
		return "rate_limited", c.policy.RateLimitDelay(), true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return "http_status", 0, false
	}
	if isTimeout(err) {
		return "timeout", c.policy.BaseDelay, true
	}
	return "network", c.policy.BaseDelay, true
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func exhausted(reason string, attempts int, err error) error {
	switch reason {
	case "rate_limited":
		return err
	case "timeout":
		return fmt.Errorf("%w after %d attempts: %w", ErrTimeout, attempts, err)
	default:
		return fmt.Errorf("%w after %d attempts: %w", ErrTransientNetwork, attempts, err)
	}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return &permanentError{err: err} }

func decodeBody(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}

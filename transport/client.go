package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 4 << 20

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Hooks observe requests. Every hook is optional.
type Hooks struct {
	OnRequest  func(ctx context.Context, req *http.Request)
	OnResponse func(ctx context.Context, resp *http.Response, duration time.Duration)
	OnError    func(ctx context.Context, err *APIError)
}

// Client issues JSON requests against the backend. It never retries; a
// failure is reported once, as an *APIError, and the caller decides.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	tokens    TokenStore
	hooks     Hooks
	logger    *slog.Logger
	requestID func() string
	tracing   bool
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithHooks(h Hooks) Option {
	return func(c *Client) { c.hooks = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRequestIDFunc overrides X-Request-ID generation.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.requestID = fn
		}
	}
}

// WithTracing wraps the round tripper with OpenTelemetry HTTP instrumentation.
func WithTracing() Option {
	return func(c *Client) { c.tracing = true }
}

// New builds a Client. Trailing slashes on the base URL are dropped so paths
// can always start with "/". A nil TokenStore sends no Authorization header.
func New(cfg Config, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		tokens:    tokens,
		logger:    slog.New(slog.DiscardHandler),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	if c.tracing {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *c.http
		wrapped.Transport = otelhttp.NewTransport(base)
		c.http = &wrapped
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken persists token for subsequent requests; an empty token clears it.
func (c *Client) SetToken(ctx context.Context, token string) error {
	if c.tokens == nil {
		return nil
	}
	return c.tokens.SetToken(ctx, token)
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reqID := c.requestID()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return c.fail(ctx, &APIError{Message: "Request could not be encoded", RequestID: reqID, Err: err})
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return c.fail(ctx, newNetworkError(reqID, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.hooks.OnRequest != nil {
		c.hooks.OnRequest(ctx, req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return c.fail(ctx, newNetworkError(reqID, err))
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	if c.hooks.OnResponse != nil {
		c.hooks.OnResponse(ctx, resp, elapsed)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.fail(ctx, newNetworkError(reqID, err))
	}

	c.logger.DebugContext(ctx, "dashauth: request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", elapsed,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data := &ErrorData{}
		if err := json.Unmarshal(raw, data); err != nil {
			data = &ErrorData{}
		}
		return c.fail(ctx, newStatusError(resp.StatusCode, data, reqID))
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(ctx, &APIError{
			Status:    resp.StatusCode,
			Message:   InvalidResponseMessage,
			RequestID: reqID,
			Err:       err,
		})
	}
	return nil
}

func (c *Client) token(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	token, ok, err := c.tokens.Token(ctx)
	if err != nil {
		// an unreadable store degrades to an anonymous request
		c.logger.WarnContext(ctx, "dashauth: token read failed", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

func (c *Client) fail(ctx context.Context, apiErr *APIError) error {
	if c.hooks.OnError != nil {
		c.hooks.OnError(ctx, apiErr)
	}
	return apiErr
}

// Get issues a GET and decodes the body into a T.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Get(ctx, path, &out)
	return out, err
}

// Post issues a POST with body and decodes the response into a T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Post(ctx, path, body, &out)
	return out, err
}

// Put issues a PUT with body and decodes the response into a T.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var out T
	err := c.Put(ctx, path, body, &out)
	return out, err
}

// Delete issues a DELETE and decodes the response into a T.
func Delete[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	err := c.Delete(ctx, path, &out)
	return out, err
}

// Package apiclient is the single outbound HTTP client to the booking backend.
// Every request passes through one pre-send hook that attaches the caller's
// bearer token; responses are never cached, retried or coalesced.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/go-querystring/query"
	"go.uber.org/zap"
)

// TokenSource yields the bearer token for the request bound to ctx, or "".
type TokenSource func(ctx context.Context) string

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	token   TokenSource
	log     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource installs the credential lookup used by the pre-send hook.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log.With(zap.String("component", "apiclient")) }
}

// WithTimeout bounds each round trip. Zero leaves requests bounded only by
// their context. A client passed through WithHTTPClient is copied, never
// modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New binds a client to baseURL. Paths given to the request methods are
// appended to it.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u.String(),
		http:    &http.Client{},
		token:   func(context.Context) string { return "" },
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// Get issues GET path with q encoded through its `url` struct tags.
func (c *Client) Get(ctx context.Context, path string, q any, out any) error {
	return c.do(ctx, http.MethodGet, path, q, nil, out)
}

func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) PatchJSON(ctx context.Context, path string, in, out any) error {
	body, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Patch issues a PATCH without a body.
func (c *Client) Patch(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, nil, out)
}

func (c *Client) PostMultipart(ctx context.Context, path string, form *MultipartForm, out any) error {
	body, err := form.encode()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) PutMultipart(ctx context.Context, path string, form *MultipartForm, out any) error {
	body, err := form.encode()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// PathEscape escapes one path segment such as an id or booking reference.
func PathEscape(segment string) string {
	return url.PathEscape(segment)
}

type requestBody struct {
	contentType string
	reader      io.Reader
}

func jsonBody(in any) (*requestBody, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return &requestBody{contentType: "application/json", reader: bytes.NewReader(data)}, nil
}

// endpoint joins path onto the base URL. Path segments taken from user input
// must already be escaped with PathEscape.
func (c *Client) endpoint(path string, q any) (string, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if q == nil {
		return target, nil
	}

	values, err := query.Values(q)
	if err != nil {
		return "", fmt.Errorf("encode query: %w", err)
	}
	if encoded := values.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target, nil
}

// authorize is the pre-send hook.
func (c *Client) authorize(ctx context.Context, req *http.Request) {
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID := chimw.GetReqID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
}

func (c *Client) do(ctx context.Context, method, path string, q any, body *requestBody, out any) error {
	target, err := c.endpoint(path, q)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = body.reader
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}
	c.authorize(ctx, req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("Backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Package client is a typed HTTP client for the URL shortener REST API.
//
// Every method maps to one request under <base>/api, decodes the JSON response
// into a models type and reports non-2xx responses as *errors.RequestError.
// The client never retries, caches or deduplicates: a failed attempt is
// returned to the caller as is. It is safe for concurrent use.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	customerrors "github.com/axellelanca/shortlinkctl/internal/errors"
)

const (
	apiPrefix = "/api"

	// DefaultLimit is used by GetPopularLinks and GetRecentLinks when limit <= 0.
	DefaultLimit = 10
	// DefaultTrendDays is used by GetTrends when days <= 0.
	DefaultTrendDays = 30
)

// Client talks to one shortener API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request debug logs.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the API served at baseURL (scheme and host, with an
// optional path prefix; "/api" is appended by the client).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", customerrors.ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q needs an http(s) scheme and a host", customerrors.ErrInvalidBaseURL, baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		baseURL:    u,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client targets, "/api" included.
func (c *Client) BaseURL() string {
	return c.baseURL.String() + apiPrefix
}

// endpoint resolves path (relative to /api) and query against the base URL.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + apiPrefix + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", apiPrefix+path),
		zap.String("request_id", requestID),
	)
	log.Debug("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", customerrors.ErrTransport, method, apiPrefix+path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response body: %v", customerrors.ErrTransport, err)
	}
	log.Debug("received response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(payload)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return customerrors.NewRequestError(method, apiPrefix+path, resp.StatusCode, payload)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", customerrors.ErrDecode, method, apiPrefix+path, err)
	}
	return nil
}

// Package polymarket implements the hybrid REST venue adapter. Market
// discovery pages the Gamma listing endpoint by limit/offset; price history
// comes from the CLOB prices-history endpoint, queried per venue-internal
// token id. No request signing is involved.
package polymarket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/marketlens/marketdata/internal/source"
)

const venueName = "polymarket"

// Default endpoints.
const (
	DefaultGammaURL = "https://gamma-api.polymarket.com"
	DefaultClobURL  = "https://clob.polymarket.com"
)

// Client provides access to the Gamma and CLOB APIs.
type Client struct {
	gammaURL   string
	clobURL    string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new client for both endpoints.
func NewClient(gammaURL, clobURL string, opts ...ClientOption) *Client {
	if gammaURL == "" {
		gammaURL = DefaultGammaURL
	}
	if clobURL == "" {
		clobURL = DefaultClobURL
	}

	c := &Client{
		gammaURL: gammaURL,
		clobURL:  clobURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   2,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// APIError represents a non-2xx response from either endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("polymarket api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// doRequest performs a GET against baseURL+path.
func (c *Client) doRequest(ctx context.Context, baseURL, path string, query url.Values) ([]byte, error) {
	fullURL := baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, source.NetworkError(venueName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, source.NetworkError(venueName, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a request with exponential backoff retry.
func (c *Client) doWithRetry(ctx context.Context, baseURL, path string, query url.Values) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, baseURL, path, query)
		if err == nil {
			return body, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	if source.IsNetwork(err) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	return false
}

// getGamma performs a Gamma GET and returns the raw body. Listing responses
// arrive in more than one shape, so decoding is left to the caller.
func (c *Client) getGamma(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.doWithRetry(ctx, c.gammaURL, path, query)
}

// getClob performs a CLOB GET and unmarshals the response.
func (c *Client) getClob(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.doWithRetry(ctx, c.clobURL, path, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return source.DataShapeError(venueName, fmt.Errorf("unmarshal response: %w", err))
	}

	return nil
}

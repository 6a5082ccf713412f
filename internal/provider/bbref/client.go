// Package bbref fetches basketball-reference pages and runs them through the
// extraction engine.
//
// Every request passes through a token bucket limiter sized from
// BBREF_REQUESTS_PER_MINUTE; the site blocks clients that exceed roughly
// twenty requests a minute. Throttled (429) and 5xx responses are retried with
// backoff inside the client; once retries are exhausted the last status is
// surfaced as *provider.FetchError and the pipeline never retries on its own.
package bbref

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/albapepper/bbref-tables/internal/provider"
	"github.com/albapepper/bbref-tables/internal/tables"
)

// Fetcher returns the parsed page at a site-relative path.
type Fetcher interface {
	Document(ctx context.Context, path string) (*tables.Document, error)
}

// ClientOptions tunes the HTTP client. Zero values take the defaults.
type ClientOptions struct {
	UserAgent string
	RetryMax  int
	Timeout   time.Duration
}

// Client is the rate-limited HTTP client for basketball-reference.
type Client struct {
	httpClient *retryablehttp.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a site client with rate limiting and retries.
func NewClient(baseURL string, requestsPerMinute int, opts ClientOptions, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "bbref-tables/1.0"
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 30 * time.Second
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = logger
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: rc,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  opts.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// URL joins a site-relative path onto the base URL.
func (c *Client) URL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Document fetches and parses one page.
func (c *Client) Document(ctx context.Context, path string) (*tables.Document, error) {
	body, contentType, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	doc, err := tables.Parse(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// get performs a rate-limited GET request for a site page.
func (c *Client) get(ctx context.Context, path string) ([]byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.URL(path)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: create request: %v", provider.ErrInvalidArgument, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &provider.FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	// One byte past the limit tells an oversized page from one that fits.
	body, err := io.ReadAll(io.LimitReader(resp.Body, tables.MaxDocumentSize+1))
	if err != nil {
		return nil, "", &provider.FetchError{URL: u, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("page fetch failed", "url", u, "status", resp.StatusCode, "body", truncate(body, 200))
		return nil, "", &provider.FetchError{URL: u, StatusCode: resp.StatusCode}
	}
	if len(body) > tables.MaxDocumentSize {
		c.logger.Warn("page too large", "url", u, "limit", tables.MaxDocumentSize)
		return nil, "", &provider.FetchError{URL: u, Err: fmt.Errorf("response body exceeds %d bytes", tables.MaxDocumentSize)}
	}
	c.logger.Debug("page fetched", "url", u, "bytes", len(body), "elapsed", time.Since(start))
	return body, resp.Header.Get("Content-Type"), nil
}

// truncate returns a truncated string representation for log messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}

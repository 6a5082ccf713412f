package bbref

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chromedp/chromedp"

	"github.com/albapepper/bbref-tables/internal/provider"
)

// Renderer returns the outer HTML of the node matching an XPath expression
// after the page's scripts have run.
type Renderer interface {
	Render(ctx context.Context, path, xpath string) (string, error)
}

// HeadlessRenderer drives a headless Chrome through chromedp. It shares the
// client's limiter, base URL and timeout.
type HeadlessRenderer struct {
	client *Client
	logger *slog.Logger
}

// NewHeadlessRenderer creates a renderer for pages served by client's site.
func NewHeadlessRenderer(client *Client, logger *slog.Logger) *HeadlessRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HeadlessRenderer{client: client, logger: logger}
}

// Render navigates to path and waits for xpath to match.
func (r *HeadlessRenderer) Render(ctx context.Context, path, xpath string) (string, error) {
	if err := r.client.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(r.client.userAgent),
	)

	ctx, cancel := context.WithTimeout(ctx, r.client.httpClient.HTTPClient.Timeout)
	defer cancel()

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		r.logger.Debug(fmt.Sprintf(format, v...))
	}))
	defer cancel()

	u := r.client.URL(path)
	var outer string
	err := chromedp.Run(ctx,
		chromedp.Navigate(u),
		chromedp.WaitReady(xpath, chromedp.BySearch),
		chromedp.OuterHTML(xpath, &outer, chromedp.BySearch),
	)
	if err != nil {
		return "", &provider.FetchError{URL: u, Err: fmt.Errorf("render %s: %w", xpath, err)}
	}
	r.logger.Debug("page rendered", "url", u, "xpath", xpath, "bytes", len(outer))
	return outer, nil
}

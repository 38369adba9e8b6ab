// Package extraction holds the adapters that turn URLs into extracted
// content: a shared page fetcher plus the web and video extractors.
package extraction

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/recipebox/recipebox/pkg/errors"
)

// DefaultUserAgent is a current desktop Chrome identity. Many recipe sites
// reject requests that do not look like a browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// BrowserHeaders returns the full header set a desktop browser sends on a
// top-level navigation.
func BrowserHeaders(userAgent string) http.Header {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Sec-Ch-Ua", `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

// VideoPageHeaders returns the reduced header set used for video watch pages.
func VideoPageHeaders(userAgent string) http.Header {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	h := http.Header{}
	h.Set("User-Agent", userAgent)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	return h
}

// FetcherConfig bounds every fetch.
type FetcherConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

// Fetcher retrieves pages over HTTP with a hard timeout and a body cap.
type Fetcher struct {
	client       *http.Client
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewFetcher creates a fetcher whose transport is traced.
func NewFetcher(cfg FetcherConfig, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 5 << 20
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       logger.Named("fetcher"),
	}
}

// Fetch issues a GET and returns the body. Non-2xx statuses, network errors
// and timeouts all come back as fetch errors.
func (f *Fetcher) Fetch(ctx context.Context, url string, headers http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewFetchError(url, 0, err)
	}
	req.Header = headers.Clone()

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("Fetch failed", zap.String("url", url), zap.Error(err))
		return nil, errors.NewFetchError(url, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		f.logger.Warn("Fetch returned non-success status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return nil, errors.NewFetchError(url, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, errors.NewFetchError(url, 0, fmt.Errorf("read body: %w", err))
	}

	f.logger.Debug("Fetched page",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("latency", time.Since(start)),
	)
	return body, nil
}

// Package web fetches source documents over HTTP the way a desktop browser would.
package web

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/couchcryptid/threat-level-monitor/internal/domain"
	"github.com/couchcryptid/threat-level-monitor/internal/observability"
)

const (
	// DefaultTimeout bounds a single fetch including redirects and body read.
	DefaultTimeout = 20 * time.Second

	maxResponseBodyBytes = 2 << 20 // 2 MiB

	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	acceptHeader   = "text/html,application/xhtml+xml,application/xml;q=0.9,application/rss+xml;q=0.9,application/atom+xml;q=0.9,*/*;q=0.8"
	acceptLanguage = "en-GB,en;q=0.9"
	acceptEncoding = "gzip, br"
)

// Response is a successful (2xx) fetch.
type Response struct {
	Body        []byte
	StatusCode  int
	FinalURL    string // after redirects
	ContentType string
}

// Client performs classified GET requests against source URLs.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a fetch client. A non-positive timeout uses DefaultTimeout.
func NewClient(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: newHTTPClient(timeout),
		logger:     logger,
		metrics:    metrics,
	}
}

// newHTTPClient follows redirects (net/http default policy) and bounds the
// whole exchange by timeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Fetch GETs src.URL with browser-like headers and classifies the outcome.
// Every failure is a *FetchError.
func (c *Client) Fetch(ctx context.Context, src domain.SourceDescriptor) (Response, error) {
	start := time.Now()
	resp, err := c.do(ctx, src)
	c.metrics.FetchDuration.WithLabelValues(src.Name).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
	}
	c.metrics.FetchRequests.WithLabelValues(src.Name, outcome).Inc()

	if err != nil {
		c.logger.Debug("fetch failed", "source", src.Name, "url", src.URL, "kind", outcome, "error", err)
		return Response{}, err
	}
	c.logger.Debug("fetch succeeded", "source", src.Name, "url", src.URL,
		"status", resp.StatusCode, "bytes", len(resp.Body), "final_url", resp.FinalURL)
	return resp, nil
}

func (c *Client) do(ctx context.Context, src domain.SourceDescriptor) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return Response{}, &FetchError{Kind: KindNetwork, URL: src.URL, Err: fmt.Errorf("create request: %w", err)}
	}
	setBrowserHeaders(req, src.Headers)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, &FetchError{Kind: KindNetwork, URL: src.URL, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return Response{}, &FetchError{Kind: KindForbidden, URL: src.URL, StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Response{}, &FetchError{Kind: KindHTTPError, URL: src.URL, StatusCode: resp.StatusCode}
	}

	body, err := readBody(resp)
	if err != nil {
		return Response{}, &FetchError{Kind: KindNetwork, URL: src.URL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	return Response{
		Body:        body,
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func setBrowserHeaders(req *http.Request, extra map[string]string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)
	req.Header.Set("Accept-Encoding", acceptEncoding)
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range extra {
		req.Header.Set(k, v)
	}
}

// readBody decodes the content encoding we advertised. Setting Accept-Encoding
// by hand disables the transport's transparent gzip handling.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	case "br":
		r = brotli.NewReader(resp.Body)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}
	return io.ReadAll(io.LimitReader(r, maxResponseBodyBytes))
}

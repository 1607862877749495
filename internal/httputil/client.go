package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lox/jmaetrn/internal/metrics"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "jmaetrn/1.0"
)

// NewClient returns an HTTP client with standard timeout configuration.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
	}
}

// StatusError is a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// Fetcher GETs pages and parses them into goquery documents. It is safe
// for concurrent use; share one per process.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = NewClient(DefaultTimeout)
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{client: client, userAgent: userAgent}
}

// Fetch retrieves rawURL. Timeouts and cancellation come from ctx and the
// underlying client; nothing is retried here.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	page := pageLabel(rawURL)
	start := time.Now()
	defer func() {
		metrics.PageFetchLatency.WithLabelValues(page).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.PageFetchesTotal.WithLabelValues(page, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	metrics.PageFetchesTotal.WithLabelValues(page, strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Body: string(b)}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Close drops idle keep-alive connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// pageLabel keeps metric cardinality bounded: the script name only.
func pageLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "unknown"
	}
	return path.Base(u.Path)
}

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultUserAgent = "job-router/1.0 (+https://github.com/spigell/job-router)"

// HTTP holds what all HTTP adapters share.
type HTTP struct {
	Client       *http.Client
	UserAgent    string
	MaxPerSource int
}

// NewHTTP builds a client whose transport waits on limiter per host.
func NewHTTP(limiter *HostLimiter, timeout time.Duration, maxPerSource int) HTTP {
	if limiter == nil {
		limiter = NewHostLimiter(0, 1)
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return HTTP{
		Client: &http.Client{
			Timeout:   timeout,
			Transport: limiter.Transport(nil),
		},
		UserAgent:    defaultUserAgent,
		MaxPerSource: maxPerSource,
	}
}

func (h HTTP) withDefaults() HTTP {
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 20 * time.Second}
	}
	if h.UserAgent == "" {
		h.UserAgent = defaultUserAgent
	}
	if h.MaxPerSource <= 0 {
		h.MaxPerSource = DefaultMaxPerSource
	}
	return h
}

func (h HTTP) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", h.UserAgent)
	req.Header.Set("Accept", accept)

	res, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, res.Body)
		res.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", rawURL, res.StatusCode)
	}

	return res, nil
}

func (h HTTP) getJSON(ctx context.Context, rawURL string, target any) error {
	res, err := h.get(ctx, rawURL, "application/json")
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	return nil
}

func (h HTTP) getDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	res, err := h.get(ctx, rawURL, "text/html")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return doc, nil
}

func capItems[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

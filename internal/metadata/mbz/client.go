// Package mbz provides a MusicBrainz client for release search, release
// detail lookup, and Cover Art Archive cover resolution.
package mbz

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/1899nils/Spherix-sub000/internal/errors"
)

const (
	defaultBaseURL      = "https://musicbrainz.org/ws/2"
	defaultCoverBaseURL = "https://coverartarchive.org"

	// MusicBrainz asks anonymous clients to stay at or below one
	// request per second.
	defaultInterval = time.Second

	userAgent = "Spherix/1.0 (https://github.com/1899nils/Spherix-sub000)"

	requestTimeout = 30 * time.Second
)

// Client provides access to the MusicBrainz web service.
type Client struct {
	httpClient   *http.Client
	rateLimiter  *rate.Limiter
	baseURL      string
	coverBaseURL string
	logger       *slog.Logger
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL         string
	CoverBaseURL    string
	RequestInterval time.Duration
}

// NewClient creates a rate-limited MusicBrainz client.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.CoverBaseURL == "" {
		opts.CoverBaseURL = defaultCoverBaseURL
	}
	if opts.RequestInterval <= 0 {
		opts.RequestInterval = defaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter:  rate.NewLimiter(rate.Every(opts.RequestInterval), 1),
		baseURL:      opts.BaseURL,
		coverBaseURL: opts.CoverBaseURL,
		logger:       logger,
	}
}

// get performs a rate-limited GET and returns the response.
// The caller owns the response body.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Catalog("rate limit", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Catalog("create request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Catalog("catalog request", err)
	}
	return resp, nil
}

// statusError wraps a non-2xx response.
func statusError(resp *http.Response, what string) error {
	return errors.Catalog(fmt.Sprintf("%s: status %d", what, resp.StatusCode), nil)
}

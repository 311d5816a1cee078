// Package youtube resolves video metadata and expands playlists using
// public endpoints: noembed for oEmbed data, the thumbnail CDN for the
// aspect check, and the playlist page (optionally through a CORS proxy).
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/retry"
	"github.com/tessro/tubeq/internal/shorts"
)

const (
	// DefaultOEmbedURL is the noembed endpoint used for title/author lookups.
	DefaultOEmbedURL = "https://noembed.com/embed"

	defaultWatchURL     = "https://www.youtube.com/watch"
	defaultPlaylistURL  = "https://www.youtube.com/playlist"
	defaultThumbnailURL = "https://i.ytimg.com/vi"

	defaultTimeout     = 10 * time.Second
	defaultConcurrency = 8

	// Responses larger than this are truncated; playlist pages run to a
	// few megabytes.
	maxBodySize = 16 << 20
)

// Client talks to the lookup endpoints. It implements core.Lookup.
type Client struct {
	httpClient   *http.Client
	oembedURL    string
	proxyURL     string
	watchURL     string
	playlistURL  string
	thumbnailURL string
	retry        retry.Config
	detector     *shorts.Detector
	concurrency  int
	publishedAt  bool
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithOEmbedURL overrides the oEmbed endpoint.
func WithOEmbedURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.oembedURL = u
		}
	}
}

// WithProxyURL routes playlist page fetches through a proxy that answers
// {"contents": "<html>"} for ?url=<target>.
func WithProxyURL(u string) Option {
	return func(c *Client) {
		c.proxyURL = u
	}
}

// WithBaseURLs overrides the watch, playlist and thumbnail endpoints.
func WithBaseURLs(watch, playlist, thumbnail string) Option {
	return func(c *Client) {
		if watch != "" {
			c.watchURL = watch
		}
		if playlist != "" {
			c.playlistURL = playlist
		}
		if thumbnail != "" {
			c.thumbnailURL = thumbnail
		}
	}
}

// WithRetry sets the retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithDetector sets the shorts detector.
func WithDetector(d *shorts.Detector) Option {
	return func(c *Client) {
		if d != nil {
			c.detector = d
		}
	}
}

// WithConcurrency bounds parallel thumbnail checks during playlist expansion.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithPublishedAt enables the extra watch-page fetch for upload dates.
func WithPublishedAt(enabled bool) Option {
	return func(c *Client) {
		c.publishedAt = enabled
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a lookup client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		oembedURL:    DefaultOEmbedURL,
		watchURL:     defaultWatchURL,
		playlistURL:  defaultPlaylistURL,
		thumbnailURL: defaultThumbnailURL,
		retry:        retry.DefaultConfig(),
		detector:     shorts.New(),
		concurrency:  defaultConcurrency,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// get fetches rawURL, retrying network errors and 5xx responses.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.fetch(ctx, rawURL, c.retry)
}

func (c *Client) fetch(ctx context.Context, rawURL string, policy retry.Config) ([]byte, error) {
	var body []byte
	attempt := 0
	err := retry.Do(ctx, policy, nil, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			c.logger.Debug("retrying request", "url", rawURL, "attempt", attempt)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Debug("request failed", "url", rawURL, "err", err)
			return classifyNetErr(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return fmt.Errorf("%w: read response: %v", tqerrors.ErrNetworkError, err)
		}
		c.logger.Debug("response", "url", rawURL, "status", resp.StatusCode,
			"bytes", len(data), "elapsed", time.Since(start))

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return retry.Permanent(fmt.Errorf("%w: %w", tqerrors.ErrNotFound, &StatusError{URL: rawURL, Status: resp.StatusCode}))
		case resp.StatusCode >= 500:
			return &StatusError{URL: rawURL, Status: resp.StatusCode}
		case resp.StatusCode >= 400:
			return retry.Permanent(&StatusError{URL: rawURL, Status: resp.StatusCode})
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func classifyNetErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", tqerrors.ErrTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %w", tqerrors.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", tqerrors.ErrNetworkError, err)
}

func withQuery(base string, params map[string]string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strings"
	"time"

	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/retry"
	"github.com/tessro/tubeq/internal/ytid"
)

// Fallback metadata used when a lookup answers without a title or author.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Artist"
)

// oembedResponse is the subset of the noembed answer we use.
type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	Error        string `json:"error"`
}

// OEmbed fetches title and author for videoID.
func (c *Client) OEmbed(ctx context.Context, videoID string) (title, author string, err error) {
	target := withQuery(c.oembedURL, map[string]string{"url": ytid.WatchURL(videoID)})
	body, err := c.get(ctx, target)
	if err != nil {
		return "", "", fmt.Errorf("oembed %s: %w", videoID, err)
	}

	var resp oembedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", fmt.Errorf("oembed %s: parse response: %w", videoID, err)
	}
	if resp.Error != "" {
		return "", "", fmt.Errorf("oembed %s: %w: %s", videoID, tqerrors.ErrNotFound, resp.Error)
	}

	title, author = resp.Title, resp.AuthorName
	if title == "" {
		title = UnknownTitle
	}
	if author == "" {
		author = UnknownAuthor
	}
	return title, author, nil
}

// ThumbnailSize returns the pixel size of the hqdefault thumbnail. Only the
// image header is decoded.
func (c *Client) ThumbnailSize(ctx context.Context, videoID string) (width, height int, err error) {
	target := strings.TrimRight(c.thumbnailURL, "/") + "/" + videoID + "/hqdefault.jpg"
	once := c.retry
	once.MaxRetries = 0
	body, err := c.fetch(ctx, target, once)
	if err != nil {
		return 0, 0, err
	}
	conf, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("decode thumbnail %s: %w", videoID, err)
	}
	return conf.Width, conf.Height, nil
}

// IsVertical reports whether the thumbnail of videoID is taller than wide.
// Failures count as not vertical.
func (c *Client) IsVertical(ctx context.Context, videoID string) bool {
	w, h, err := c.ThumbnailSize(ctx, videoID)
	if err != nil {
		c.logger.Debug("thumbnail check failed", "id", videoID, "err", err)
		return false
	}
	return c.detector.Aspect(w, h)
}

var publishedRegexes = []*regexp.Regexp{
	regexp.MustCompile(`"publishDate":\s*"([^"]+)"`),
	regexp.MustCompile(`"uploadDate":\s*"([^"]+)"`),
	regexp.MustCompile(`itemprop="datePublished"\s+content="([^"]+)"`),
}

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02",
}

// PublishedAt reads the upload date from the watch page.
func (c *Client) PublishedAt(ctx context.Context, videoID string) (*time.Time, error) {
	body, err := c.get(ctx, withQuery(c.watchURL, map[string]string{"v": videoID}))
	if err != nil {
		return nil, err
	}
	for _, re := range publishedRegexes {
		m := re.FindSubmatch(body)
		if m == nil {
			continue
		}
		if t, ok := parsePublished(string(m[1])); ok {
			return &t, nil
		}
	}
	return nil, retry.Permanent(fmt.Errorf("%w: no publish date for %s", tqerrors.ErrNotFound, videoID))
}

func parsePublished(s string) (time.Time, bool) {
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Video resolves metadata for a single video and classifies it as a short.
func (c *Client) Video(ctx context.Context, videoID string) (*core.VideoInfo, error) {
	title, author, err := c.OEmbed(ctx, videoID)
	if err != nil {
		return nil, err
	}

	info := &core.VideoInfo{
		Title:  title,
		Author: author,
		Short:  c.detector.Title(title),
	}
	if !info.Short {
		info.Short = c.IsVertical(ctx, videoID)
	}

	if c.publishedAt && !info.Short {
		if p, err := c.PublishedAt(ctx, videoID); err == nil {
			info.PublishedAt = p
		} else {
			c.logger.Debug("publish date unavailable", "id", videoID, "err", err)
		}
	}
	return info, nil
}

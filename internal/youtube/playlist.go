package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
)

var initialDataMarker = []byte("var ytInitialData = ")

// proxyResponse is the allorigins-style wrapper around a proxied page.
type proxyResponse struct {
	Contents string `json:"contents"`
}

// textRuns is YouTube's formatted-text value: either a list of runs or a
// plain simpleText.
type textRuns struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
	SimpleText string `json:"simpleText"`
}

func (t textRuns) String() string {
	if len(t.Runs) > 0 {
		return t.Runs[0].Text
	}
	return t.SimpleText
}

type videoRenderer struct {
	VideoID         string   `json:"videoId"`
	Title           textRuns `json:"title"`
	ShortBylineText textRuns `json:"shortBylineText"`
}

type tabContent struct {
	SectionListRenderer struct {
		Contents []struct {
			ItemSectionRenderer struct {
				Contents []struct {
					PlaylistVideoListRenderer struct {
						Contents []struct {
							PlaylistVideoRenderer *videoRenderer `json:"playlistVideoRenderer"`
						} `json:"contents"`
					} `json:"playlistVideoListRenderer"`
				} `json:"contents"`
			} `json:"itemSectionRenderer"`
		} `json:"contents"`
	} `json:"sectionListRenderer"`
}

type initialData struct {
	Contents struct {
		TwoColumnBrowseResultsRenderer struct {
			Tabs []struct {
				Content     *tabContent `json:"content"`
				TabRenderer struct {
					Content *tabContent `json:"content"`
				} `json:"tabRenderer"`
			} `json:"tabs"`
		} `json:"twoColumnBrowseResultsRenderer"`
	} `json:"contents"`
}

// renderers walks to the playlist video list of the first tab.
func (d *initialData) renderers() []*videoRenderer {
	tabs := d.Contents.TwoColumnBrowseResultsRenderer.Tabs
	if len(tabs) == 0 {
		return nil
	}
	content := tabs[0].Content
	if content == nil {
		content = tabs[0].TabRenderer.Content
	}
	if content == nil {
		return nil
	}
	sections := content.SectionListRenderer.Contents
	if len(sections) == 0 {
		return nil
	}
	items := sections[0].ItemSectionRenderer.Contents
	if len(items) == 0 {
		return nil
	}

	var out []*videoRenderer
	for _, c := range items[0].PlaylistVideoListRenderer.Contents {
		if c.PlaylistVideoRenderer != nil && c.PlaylistVideoRenderer.VideoID != "" {
			out = append(out, c.PlaylistVideoRenderer)
		}
	}
	return out
}

// parseInitialData extracts the ytInitialData object embedded in a
// playlist page.
func parseInitialData(page []byte) (*initialData, error) {
	i := bytes.Index(page, initialDataMarker)
	if i < 0 {
		return nil, fmt.Errorf("%w: ytInitialData not found", tqerrors.ErrNotFound)
	}
	dec := json.NewDecoder(bytes.NewReader(page[i+len(initialDataMarker):]))
	var data initialData
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("parse ytInitialData: %w", err)
	}
	return &data, nil
}

// playlistPage fetches the playlist HTML, through the proxy when one is set.
func (c *Client) playlistPage(ctx context.Context, playlistID string) ([]byte, error) {
	page := withQuery(c.playlistURL, map[string]string{"list": playlistID})
	if c.proxyURL == "" {
		return c.get(ctx, page)
	}

	body, err := c.get(ctx, withQuery(c.proxyURL, map[string]string{"url": page}))
	if err != nil {
		return nil, err
	}
	var resp proxyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse proxy response: %w", err)
	}
	return []byte(resp.Contents), nil
}

// Playlist expands a playlist into its entries. Entries whose title
// carries the shorts marker or whose thumbnail is vertical are dropped and
// counted in Skipped. Order is preserved.
func (c *Client) Playlist(ctx context.Context, playlistID string) (*core.PlaylistResult, error) {
	page, err := c.playlistPage(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("playlist %s: %w", playlistID, err)
	}
	data, err := parseInitialData(page)
	if err != nil {
		return nil, fmt.Errorf("playlist %s: %w", playlistID, err)
	}

	renderers := data.renderers()
	result := &core.PlaylistResult{}
	candidates := make([]core.PlaylistEntry, 0, len(renderers))
	for _, r := range renderers {
		title := r.Title.String()
		if c.detector.Title(title) {
			result.Skipped++
			continue
		}
		candidates = append(candidates, core.PlaylistEntry{
			ID:     r.VideoID,
			Title:  title,
			Author: r.ShortBylineText.String(),
		})
	}

	vertical := make([]bool, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, e := range candidates {
		g.Go(func() error {
			vertical[i] = c.IsVertical(gctx, e.ID)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("playlist %s: %w", playlistID, classifyNetErr(err))
	}

	for i, e := range candidates {
		if vertical[i] {
			result.Skipped++
			continue
		}
		if e.Title == "" {
			e.Title = UnknownTitle
		}
		if e.Author == "" {
			e.Author = UnknownAuthor
		}
		result.Entries = append(result.Entries, e)
	}

	c.logger.Debug("playlist expanded", "id", playlistID,
		"entries", len(result.Entries), "skipped", result.Skipped)
	return result, nil
}

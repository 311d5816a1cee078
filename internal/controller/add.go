package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/events"
	"github.com/tessro/tubeq/internal/ytid"
)

// PendingKind distinguishes single-video and playlist adds.
type PendingKind int

const (
	PendingVideo PendingKind = iota
	PendingPlaylist
)

// Pending is an add that has been accepted but not yet resolved.
type Pending struct {
	Kind       PendingKind
	Raw        string
	VideoID    string
	PlaylistID string
	// Token identifies the placeholder inserted for a single video.
	Token string
	// Title and Author are user-supplied metadata; lookups only fill the
	// fields left blank.
	Title  string
	Author string
}

// Resolution carries lookup results for a Pending add.
type Resolution struct {
	Video    *core.VideoInfo
	Playlist *core.PlaylistResult
	Err      error
}

// Result summarizes a completed add.
type Result struct {
	Added   int
	Skipped int
	Item    *core.Item
	Notice  string
}

// SkippedNotice is the message shown when a playlist add dropped shorts.
func SkippedNotice(n int) string {
	return fmt.Sprintf("%d件が除外されました！（ショート動画または縦長動画）", n)
}

// BeginAdd classifies raw and, for a single video, inserts a placeholder
// immediately. The returned Pending must be passed to Resolve and then
// Complete.
func (c *Controller) BeginAdd(raw, title, author string) (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return nil, tqerrors.ErrLocked
	}
	if c.queue.Full() {
		return nil, tqerrors.QueueFull(c.queue.Capacity())
	}

	if listID := ytid.ExtractPlaylistID(raw); listID != "" {
		p := &Pending{Kind: PendingPlaylist, Raw: raw, PlaylistID: listID, Title: title, Author: author}
		if id, kind := ytid.ExtractID(raw); kind == ytid.KindVideo {
			p.VideoID = id
		}
		return p, nil
	}

	id, kind := ytid.ExtractID(raw)
	switch kind {
	case ytid.KindShort:
		return nil, fmt.Errorf("%w: %s", tqerrors.ErrShortVideo, id)
	case ytid.KindNone:
		return nil, fmt.Errorf("%w: %q", tqerrors.ErrInvalidInput, raw)
	}

	it := core.NewItem(id, title, author, c.now())
	if it.Title == "" {
		it.Title = core.PlaceholderTitle
	}
	if it.Author == "" {
		it.Author = core.PlaceholderAuthor
	}
	if _, err := c.queue.Append(it); err != nil {
		return nil, err
	}
	c.emit(events.Event{Type: events.EventAdded, Item: itemCopy(&it), Index: c.queue.Len() - 1})

	return &Pending{Kind: PendingVideo, Raw: raw, VideoID: id, Token: it.Token, Title: title, Author: author}, nil
}

// Resolve performs the lookups for p. It does not touch controller state
// and may run on any goroutine.
func (c *Controller) Resolve(ctx context.Context, p *Pending) Resolution {
	if c.lookup == nil || p == nil {
		return Resolution{}
	}

	var res Resolution
	if p.Kind == PendingPlaylist {
		res.Playlist, res.Err = c.lookup.Playlist(ctx, p.PlaylistID)
		if res.Err == nil && len(res.Playlist.Entries) > 0 {
			return res
		}
		if p.VideoID == "" {
			return res
		}
		c.logger.Debug("playlist unavailable, falling back to video", "list", p.PlaylistID, "id", p.VideoID, "err", res.Err)
	}

	// Metadata supplied by the user is trusted as is.
	if p.Title != "" && p.Author != "" {
		return Resolution{Playlist: res.Playlist}
	}
	video, err := c.lookup.Video(ctx, p.VideoID)
	return Resolution{Video: video, Playlist: res.Playlist, Err: err}
}

// Complete applies res to the queue. Placeholders are located by token,
// so a placeholder removed in the meantime makes this a no-op.
func (c *Controller) Complete(ctx context.Context, p *Pending, res Resolution) (Result, error) {
	if p == nil {
		return Result{}, nil
	}
	c.mu.Lock()

	var (
		result Result
		err    error
	)
	if p.Kind == PendingPlaylist {
		result, err = c.completePlaylistLocked(p, res)
	} else {
		result, err = c.completeVideoLocked(p, res)
	}

	if err == nil && c.autoplay && c.queue.CurrentIndex() == core.NoIndex && !c.queue.IsEmpty() {
		if perr := c.playLocked(0); perr != nil {
			c.logger.Warn("autoplay failed", "err", perr)
		}
	}
	c.settle(ctx, "player update after add failed")
	return result, err
}

func (c *Controller) completeVideoLocked(p *Pending, res Resolution) (Result, error) {
	i := c.queue.IndexOf(p.Token)
	if i == core.NoIndex {
		return Result{}, nil
	}
	if res.Err != nil || res.Video == nil {
		if res.Err != nil {
			c.logger.Warn("metadata lookup failed", "id", p.VideoID, "err", res.Err)
			c.notice(tqerrors.Notice(res.Err))
		}
		return Result{Added: 1, Item: itemCopy(c.queue.At(i))}, nil
	}

	if res.Video.Short {
		wasCurrent := c.queue.CurrentIndex() == i
		removed, _ := c.queue.RemoveToken(p.Token)
		c.afterRemoveLocked(wasCurrent)
		err := fmt.Errorf("%w: %s", tqerrors.ErrShortExcluded, p.VideoID)
		c.emit(events.Event{Type: events.EventShortExcluded, Item: &removed, Index: i, Message: tqerrors.Notice(err)})
		return Result{Skipped: 1}, err
	}

	it := c.queue.At(i)
	if p.Title == "" {
		it.Title = res.Video.Title
	}
	if p.Author == "" {
		it.Author = res.Video.Author
	}
	it.PublishedAt = res.Video.PublishedAt
	return Result{Added: 1, Item: itemCopy(it)}, nil
}

func (c *Controller) completePlaylistLocked(p *Pending, res Resolution) (Result, error) {
	if res.Playlist != nil && len(res.Playlist.Entries) > 0 {
		now := c.now()
		items := make([]core.Item, 0, len(res.Playlist.Entries))
		for _, e := range res.Playlist.Entries {
			items = append(items, core.NewItem(e.ID, e.Title, e.Author, now))
		}
		n, err := c.queue.Append(items...)
		if err != nil {
			return Result{}, err
		}
		result := Result{Added: n, Skipped: res.Playlist.Skipped}
		c.emit(events.Event{Type: events.EventPlaylistAdded, Count: n, Message: p.PlaylistID})
		if result.Skipped > 0 {
			result.Notice = SkippedNotice(result.Skipped)
			c.notice(result.Notice)
		}
		return result, nil
	}

	if res.Playlist == nil && res.Err != nil {
		c.logger.Warn("playlist lookup failed", "list", p.PlaylistID, "err", res.Err)
	}
	if p.VideoID == "" {
		err := fmt.Errorf("%w: %q", tqerrors.ErrInvalidInput, p.Raw)
		if res.Err != nil {
			err = errors.Join(err, res.Err)
		}
		return Result{}, err
	}
	return c.addResolvedLocked(p, res)
}

// addResolvedLocked appends a video whose metadata was looked up before
// insertion.
func (c *Controller) addResolvedLocked(p *Pending, res Resolution) (Result, error) {
	if res.Video != nil && res.Video.Short {
		return Result{Skipped: 1}, fmt.Errorf("%w: %s", tqerrors.ErrShortExcluded, p.VideoID)
	}
	if c.queue.Full() {
		return Result{}, tqerrors.QueueFull(c.queue.Capacity())
	}

	it := core.NewItem(p.VideoID, p.Title, p.Author, c.now())
	if v := res.Video; v != nil {
		if it.Title == "" {
			it.Title = v.Title
		}
		if it.Author == "" {
			it.Author = v.Author
		}
		it.PublishedAt = v.PublishedAt
	}
	if it.Title == "" {
		it.Title = core.PlaceholderTitle
	}
	if it.Author == "" {
		it.Author = core.PlaceholderAuthor
	}
	if _, err := c.queue.Append(it); err != nil {
		return Result{}, err
	}
	c.emit(events.Event{Type: events.EventAdded, Item: itemCopy(&it), Index: c.queue.Len() - 1})
	return Result{Added: 1, Item: itemCopy(&it)}, nil
}

// Add runs BeginAdd, Resolve and Complete in sequence.
func (c *Controller) Add(ctx context.Context, raw, title, author string) (Result, error) {
	p, err := c.BeginAdd(raw, title, author)
	if err != nil {
		return Result{}, err
	}
	return c.Complete(ctx, p, c.Resolve(ctx, p))
}

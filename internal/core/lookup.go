package core

import (
	"context"
	"time"
)

// VideoInfo is resolved metadata for a single video.
type VideoInfo struct {
	Title       string
	Author      string
	Short       bool
	PublishedAt *time.Time
}

// PlaylistEntry is one resolvable entry of a remote playlist.
type PlaylistEntry struct {
	ID     string
	Title  string
	Author string
}

// PlaylistResult is an expanded playlist with shorts already filtered out.
type PlaylistResult struct {
	Entries []PlaylistEntry
	Skipped int
}

// Lookup resolves metadata for videos and playlists.
type Lookup interface {
	Video(ctx context.Context, videoID string) (*VideoInfo, error)
	Playlist(ctx context.Context, playlistID string) (*PlaylistResult, error)
}

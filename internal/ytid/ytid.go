// Package ytid extracts canonical video and playlist identifiers from the
// URL shapes users paste into the queue.
package ytid

import (
	"net/url"
	"regexp"
	"strings"
)

// Kind classifies the result of ExtractID.
type Kind int

const (
	// KindNone means no identifier could be found.
	KindNone Kind = iota
	// KindVideo means a regular video identifier was found.
	KindVideo
	// KindShort means the input points at a shorts video.
	KindShort
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindShort:
		return "short"
	default:
		return "none"
	}
}

// IDLength is the length of a video identifier.
const IDLength = 11

var (
	idRegex       = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	videoURLRegex = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=|music\.youtube\.com/watch\?v=)([^#&?]*).*`)
	playlistRegex = regexp.MustCompile(`[?&]list=([^#&?]+)`)
)

const shortsMarker = "/shorts/"

// Valid reports whether s has the shape of a video identifier.
func Valid(s string) bool {
	return idRegex.MatchString(s)
}

// ExtractID returns the video identifier contained in raw.
//
// A bare identifier is returned unchanged. A shorts URL yields KindShort
// with its identifier so callers can reject it. Otherwise the watch,
// short-link, embed and music URL shapes are tried in order.
func ExtractID(raw string) (string, Kind) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", KindNone
	}
	if Valid(s) {
		return s, KindVideo
	}

	if _, rest, ok := strings.Cut(s, shortsMarker); ok && rest != "" {
		id, _, _ := strings.Cut(rest, "?")
		id, _, _ = strings.Cut(id, "&")
		if len(id) == IDLength {
			return id, KindShort
		}
	}

	m := videoURLRegex.FindStringSubmatch(s)
	if m == nil || len(m[2]) != IDLength {
		return "", KindNone
	}
	return m[2], KindVideo
}

// ExtractPlaylistID returns the value of the list= query parameter, or "".
func ExtractPlaylistID(raw string) string {
	m := playlistRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ""
	}
	return m[1]
}

// WatchURL returns the canonical watch page URL for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}

// ThumbnailURL returns the high-quality default thumbnail URL for id.
func ThumbnailURL(id string) string {
	return "https://i.ytimg.com/vi/" + url.PathEscape(id) + "/hqdefault.jpg"
}

// PlaylistURL returns the playlist page URL for listID.
func PlaylistURL(listID string) string {
	return "https://www.youtube.com/playlist?list=" + url.QueryEscape(listID)
}

// Package playlistfile reads and writes the persisted queue: a JSON array
// of items, indented with two spaces.
package playlistfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
)

// DefaultName is the file name used for exports.
const DefaultName = "playlist.txt"

// Encode writes items as an indented JSON array. An empty queue encodes as [].
func Encode(w io.Writer, items []core.Item) error {
	if items == nil {
		items = []core.Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encode playlist: %w", err)
	}
	return nil
}

// Decode reads a playlist. The root must be a JSON array; elements that
// are not objects or carry no id are skipped. Fields of an unexpected type
// are read leniently rather than dropping the item. Any other failure is
// ErrInvalidImport.
func Decode(r io.Reader) ([]core.Item, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", tqerrors.ErrInvalidImport, err)
	}
	if raw == nil {
		// A literal null decodes without error.
		return nil, fmt.Errorf("%w: root is not an array", tqerrors.ErrInvalidImport)
	}

	items := make([]core.Item, 0, len(raw))
	for _, el := range raw {
		el = bytes.TrimSpace(el)
		if len(el) == 0 || el[0] != '{' {
			continue
		}
		var w wireItem
		if err := json.Unmarshal(el, &w); err != nil {
			continue
		}
		if it, ok := w.item(); ok {
			items = append(items, it)
		}
	}
	return items, nil
}

// wireItem is a decoded element before its fields are interpreted. Files
// written by other tools may carry numbers where strings are expected,
// millisecond timestamps, or negative counts.
type wireItem struct {
	ID          json.RawMessage `json:"id"`
	Title       json.RawMessage `json:"title"`
	Author      json.RawMessage `json:"author"`
	PlayCount   json.RawMessage `json:"playCount"`
	AddedAt     json.RawMessage `json:"addedAt"`
	PublishedAt json.RawMessage `json:"publishedAt"`
}

func (w wireItem) item() (core.Item, bool) {
	it := core.Item{
		ID:        textField(w.ID),
		Title:     textField(w.Title),
		Author:    textField(w.Author),
		PlayCount: countField(w.PlayCount),
	}
	if it.ID == "" {
		return core.Item{}, false
	}
	if t, ok := timeField(w.AddedAt); ok {
		it.AddedAt = t
	}
	if t, ok := timeField(w.PublishedAt); ok {
		it.PublishedAt = &t
	}
	return it, true
}

// textField returns strings as is and the literal text of numbers and
// booleans. Anything else is blank.
func textField(raw json.RawMessage) string {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case float64, bool:
		return string(bytes.TrimSpace(raw))
	}
	return ""
}

// countField reads a non-negative count from a number or numeric string.
func countField(raw json.RawMessage) int {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return 0
	}
	var f float64
	switch v := v.(type) {
	case float64:
		f = v
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}
	if f < 0 || math.IsNaN(f) {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// timeField accepts RFC 3339 strings and epoch milliseconds, either as a
// number or a numeric string.
func timeField(raw json.RawMessage) (time.Time, bool) {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return time.Time{}, false
	}
	switch v := v.(type) {
	case float64:
		return time.UnixMilli(int64(v)).UTC(), true
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, true
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	}
	return time.Time{}, false
}

// Load reads the playlist at path.
func Load(path string) ([]core.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Save atomically writes items to path, creating parent directories.
func Save(path string, items []core.Item) error {
	w, err := newAtomicWriter(path)
	if err != nil {
		return err
	}
	if err := Encode(w, items); err != nil {
		w.abort()
		return err
	}
	return w.commit()
}

// DefaultPath returns $XDG_DATA_HOME/tubeq/playlist.txt, falling back to
// ~/.local/share/tubeq/playlist.txt.
func DefaultPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "tubeq", DefaultName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultName
	}
	return filepath.Join(home, ".local", "share", "tubeq", DefaultName)
}

// record is the persisted projection of an item. Hashing it rather than
// core.Item keeps tokens and time.Time internals out of the fingerprint.
type record struct {
	ID          string
	Title       string
	Author      string
	PlayCount   int
	AddedAt     int64
	PublishedAt int64
}

// Fingerprint hashes the persisted content of items. Two queues that would
// export identically share a fingerprint.
func Fingerprint(items []core.Item) uint64 {
	recs := make([]record, len(items))
	for i, it := range items {
		recs[i] = record{
			ID:        it.ID,
			Title:     it.Title,
			Author:    it.Author,
			PlayCount: it.PlayCount,
			AddedAt:   it.AddedAt.UnixNano(),
		}
		if it.PublishedAt != nil {
			recs[i].PublishedAt = it.PublishedAt.UnixNano()
		}
	}
	h, err := hashstructure.Hash(recs, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return h
}

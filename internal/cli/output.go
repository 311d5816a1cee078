package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tessro/tubeq/internal/core"
	"github.com/tessro/tubeq/internal/ytid"
)

// Table provides a simple table formatter.
type Table struct {
	w       *tabwriter.Writer
	headers []string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := &Table{
		w:       tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		headers: headers,
	}
	if len(headers) > 0 {
		_, _ = t.w.Write([]byte(strings.Join(headers, "\t") + "\n"))
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

// printJSON writes v to stdout as one JSON document.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// TruncateString truncates s to maxLen runes, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// FormatDuration formats a duration as m:ss or h:mm:ss.
func FormatDuration(d time.Duration) string {
	seconds := int(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// RelativeTime renders t relative to now, or "-" for the zero time.
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// itemJSON is the CLI's JSON view of a queue item.
type itemJSON struct {
	Position    int        `json:"position"`
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	PlayCount   int        `json:"playCount"`
	AddedAt     time.Time  `json:"addedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	URL         string     `json:"url"`
}

func toItemJSON(i int, it core.Item) itemJSON {
	return itemJSON{
		Position:    i + 1,
		ID:          it.ID,
		Title:       it.Title,
		Author:      it.Author,
		PlayCount:   it.PlayCount,
		AddedAt:     it.AddedAt,
		PublishedAt: it.PublishedAt,
		URL:         ytid.WatchURL(it.ID),
	}
}

// printItems renders items as a table, or JSON with --json. positions
// maps rows to queue positions; nil means row order.
func printItems(items []core.Item, positions []int) error {
	pos := func(row int) int {
		if positions != nil {
			return positions[row]
		}
		return row
	}

	if JSONOutput() {
		out := make([]itemJSON, len(items))
		for i, it := range items {
			out[i] = toItemJSON(pos(i), it)
		}
		return printJSON(out)
	}

	t := NewTable("#", "ID", "TITLE", "AUTHOR", "PLAYS", "ADDED")
	for i, it := range items {
		t.Row(
			fmt.Sprintf("%d", pos(i)+1),
			it.ID,
			TruncateString(it.Title, 48),
			TruncateString(it.Author, 24),
			humanize.Comma(int64(it.PlayCount)),
			RelativeTime(it.AddedAt),
		)
	}
	t.Flush()
	return nil
}

package events

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template. Invalid templates are ignored.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl == "" {
			return
		}
		if t, err := template.New("format").Parse(tmpl); err == nil {
			f.template = t
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{showEmoji: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

func (f *Formatter) formatLine(e Event) string {
	var parts []string
	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, Emoji(e.Type))
	}
	parts = append(parts, Describe(e))
	return strings.Join(parts, " ")
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	ID        string
	Title     string
	Author    string
	Index     int
	Count     int
	Message   string
}

func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      e.Type.String(),
		Emoji:     Emoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
		Index:     e.Index,
		Count:     e.Count,
		Message:   e.Message,
	}
	if e.Item != nil {
		data.ID = e.Item.ID
		data.Title = e.Item.Title
		data.Author = e.Item.Author
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

func itemLabel(e Event) string {
	if e.Item == nil {
		return ""
	}
	return fmt.Sprintf("%s - %s", e.Item.Author, e.Item.Title)
}

// Describe returns a human-readable description of the event.
func Describe(e Event) string {
	label := itemLabel(e)
	switch e.Type {
	case EventPlay:
		if label != "" {
			return "Now playing: " + label
		}
		return "Playing"
	case EventStop:
		return "Stopped"
	case EventPause:
		return "Paused"
	case EventResume:
		return "Resumed"
	case EventEnded:
		if label != "" {
			return "Finished: " + label
		}
		return "Finished"
	case EventAdded:
		if label != "" {
			return "Added: " + label
		}
		return "Added"
	case EventRemoved:
		if label != "" {
			return "Removed: " + label
		}
		return "Removed"
	case EventShortExcluded, EventNotice:
		return e.Message
	case EventPlaylistAdded:
		return fmt.Sprintf("Added %d from playlist", e.Count)
	case EventDeduped:
		return fmt.Sprintf("Removed %d duplicates", e.Count)
	case EventSorted:
		if e.Message != "" {
			return "Sorted by " + e.Message
		}
		return "Sorted"
	case EventShuffled:
		return "Shuffled queue"
	case EventCleared:
		return "Cleared queue"
	case EventImported:
		return fmt.Sprintf("Imported %d items", e.Count)
	case EventExported:
		if e.Message != "" {
			return fmt.Sprintf("Exported %d items to %s", e.Count, e.Message)
		}
		return fmt.Sprintf("Exported %d items", e.Count)
	case EventModeChanged:
		return fmt.Sprintf("Loop %s, shuffle %s", onOff(e.Mode.Loop), onOff(e.Mode.Shuffle))
	case EventLocked:
		return "Controls locked"
	case EventUnlocked:
		return "Controls unlocked"
	default:
		return "Unknown event"
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Emoji returns an emoji for the event type.
func Emoji(t EventType) string {
	switch t {
	case EventPlay:
		return "🎵"
	case EventStop:
		return "⏹️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventEnded:
		return "✅"
	case EventAdded, EventPlaylistAdded, EventImported:
		return "➕"
	case EventRemoved, EventCleared, EventDeduped:
		return "➖"
	case EventShortExcluded:
		return "🚫"
	case EventSorted, EventShuffled:
		return "🔀"
	case EventExported:
		return "💾"
	case EventModeChanged:
		return "🔁"
	case EventLocked:
		return "🔒"
	case EventUnlocked:
		return "🔓"
	case EventNotice:
		return "💬"
	default:
		return "❓"
	}
}

var typeNames = map[EventType]string{
	EventPlay:          "play",
	EventStop:          "stop",
	EventPause:         "pause",
	EventResume:        "resume",
	EventEnded:         "ended",
	EventAdded:         "added",
	EventRemoved:       "removed",
	EventShortExcluded: "short_excluded",
	EventPlaylistAdded: "playlist_added",
	EventDeduped:       "deduped",
	EventSorted:        "sorted",
	EventShuffled:      "shuffled",
	EventCleared:       "cleared",
	EventImported:      "imported",
	EventExported:      "exported",
	EventModeChanged:   "mode_changed",
	EventLocked:        "locked",
	EventUnlocked:      "unlocked",
	EventNotice:        "notice",
}

// String returns the snake_case name of the event type.
func (t EventType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

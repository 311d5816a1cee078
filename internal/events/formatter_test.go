package events

import (
	"strings"
	"testing"
	"time"

	"github.com/tessro/tubeq/internal/core"
)

var t0 = time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)

func testItem() *core.Item {
	it := core.NewItem("dQw4w9WgXcQ", "Never Gonna Give You Up", "Rick Astley", t0)
	return &it
}

func TestFormatter_Line(t *testing.T) {
	tests := []struct {
		name  string
		opts  []FormatterOption
		event Event
		want  string
	}{
		{
			name:  "play with emoji",
			event: Event{Type: EventPlay, Item: testItem()},
			want:  "🎵 Now playing: Rick Astley - Never Gonna Give You Up",
		},
		{
			name:  "no emoji",
			opts:  []FormatterOption{WithEmoji(false)},
			event: Event{Type: EventPause},
			want:  "Paused",
		},
		{
			name:  "timestamp",
			opts:  []FormatterOption{WithEmoji(false), WithTimestamp(true)},
			event: Event{Type: EventDeduped, Timestamp: t0, Count: 2},
			want:  "10:30:45 Removed 2 duplicates",
		},
		{
			name:  "notice carries message",
			opts:  []FormatterOption{WithEmoji(false)},
			event: Event{Type: EventNotice, Message: "1件の重複を除去"},
			want:  "1件の重複を除去",
		},
		{
			name:  "mode",
			opts:  []FormatterOption{WithEmoji(false)},
			event: Event{Type: EventModeChanged, Mode: core.Mode{Loop: true}},
			want:  "Loop on, shuffle off",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFormatter(tt.opts...)
			if got := f.Format(tt.event); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatter_Template(t *testing.T) {
	f := NewFormatter(WithTemplate("{{.Type}} {{.ID}} {{.Title}} by {{.Author}}"))
	got := f.Format(Event{Type: EventAdded, Item: testItem()})
	want := "added dQw4w9WgXcQ Never Gonna Give You Up by Rick Astley"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatter_InvalidTemplateFallsBack(t *testing.T) {
	f := NewFormatter(WithTemplate("{{.Broken"), WithEmoji(false))
	if got := f.Format(Event{Type: EventStop}); got != "Stopped" {
		t.Errorf("Format() = %q, want %q", got, "Stopped")
	}
}

func TestEventTypeNames(t *testing.T) {
	for typ := EventPlay; typ <= EventNotice; typ++ {
		if typ.String() == "unknown" {
			t.Errorf("EventType(%d) has no name", typ)
		}
		if Emoji(typ) == "❓" {
			t.Errorf("EventType(%d) has no emoji", typ)
		}
		if strings.TrimSpace(Describe(Event{Type: typ, Message: "m"})) == "" {
			t.Errorf("EventType(%d) has no description", typ)
		}
	}
}

func TestLog(t *testing.T) {
	l := NewLog(3)
	sink := Fanout(l.Sink(), nil)
	for i := 0; i < 5; i++ {
		sink(Event{Type: EventNotice, Count: i})
	}
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	recent := l.Recent(2)
	if len(recent) != 2 || recent[0].Count != 4 || recent[1].Count != 3 {
		t.Errorf("Recent(2) = %+v, want counts 4, 3", recent)
	}
	if all := l.Recent(0); len(all) != 3 || all[2].Count != 2 {
		t.Errorf("Recent(0) = %+v, want counts 4, 3, 2", all)
	}
}

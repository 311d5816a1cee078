package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title", 8, "a lon..."},
		{"abcdef", 3, "abc"},
		{"日本語のタイトルです", 6, "日本語..."},
	}

	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{65 * time.Second, "1:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	if got := RelativeTime(time.Time{}); got != "-" {
		t.Errorf("RelativeTime(zero) = %q, want -", got)
	}
	if got := RelativeTime(time.Now().Add(-3 * time.Hour)); got != "3 hours ago" {
		t.Errorf("RelativeTime() = %q, want %q", got, "3 hours ago")
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableWriter(&buf, "A", "B")
	tbl.Row("1", "two")
	tbl.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("table = %q, want 2 lines", buf.String())
	}
	if !strings.HasPrefix(lines[1], "1  two") {
		t.Errorf("row = %q", lines[1])
	}
}

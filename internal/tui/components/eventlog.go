package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tessro/tubeq/internal/events"
	"github.com/tessro/tubeq/internal/tui/styles"
)

// EventLog displays recent queue and playback events
type EventLog struct {
	formatter *events.Formatter
	now       func() time.Time
}

// NewEventLog creates a new EventLog component
func NewEventLog() *EventLog {
	return &EventLog{
		formatter: events.NewFormatter(events.WithEmoji(true)),
		now:       time.Now,
	}
}

// Render renders the event log panel. entries are newest first.
func (l *EventLog) Render(entries []events.Event, width, height int, focused bool) string {
	title := styles.PanelTitle("Activity", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No activity yet")
	} else {
		content = l.renderEntries(entries, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (l *EventLog) renderEntries(entries []events.Event, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for i, e := range entries {
		if i >= maxLines {
			break
		}

		ago := formatTimeAgo(l.now().Sub(e.Timestamp))
		text := styles.Truncate(l.formatter.Format(e), max(width-len(ago)-1, 1))

		padding := max(width-runewidth.StringWidth(text)-len(ago), 1)

		style := lipgloss.NewStyle()
		switch e.Type {
		case events.EventNotice, events.EventShortExcluded:
			style = styles.Notice
		case events.EventLocked, events.EventUnlocked:
			style = styles.Locked
		}

		lines = append(lines, style.Render(text)+
			lipgloss.NewStyle().Width(padding).Render("")+
			styles.Dim.Render(ago))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatTimeAgo(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/tubeq/internal/core"
	"github.com/tessro/tubeq/internal/tui/styles"
)

// NowPlaying displays the current video and playback modes
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// PlaybackView is what the now playing panel renders.
type PlaybackView struct {
	Item     *core.Item
	Index    int
	Total    int
	State    core.PlayerState
	Position time.Duration
	Mode     core.Mode
	Locked   bool
	// Hold is the lock gesture progress in [0, 1]; zero hides the bar.
	Hold    float64
	Pending int
}

// Render renders the now playing panel
func (n *NowPlaying) Render(v PlaybackView, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if v.Item == nil {
		content = styles.Muted.Render("Nothing playing")
	} else {
		content = n.renderItem(v, width-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
		"",
		n.renderStatus(v, width-4),
	))
}

func (n *NowPlaying) renderItem(v PlaybackView, width int) string {
	it := v.Item

	icon := styles.StatusIcon(v.State == core.StatePlaying)
	title := styles.Title.Render(styles.Truncate(it.Title, width-4))
	author := styles.Subtitle.Render(styles.Truncate(it.Author, width-2))

	details := []string{
		fmt.Sprintf("%d/%d", v.Index+1, v.Total),
		formatDuration(v.Position),
		v.State.String(),
		fmt.Sprintf("%s plays", humanize.Comma(int64(it.PlayCount))),
	}
	if !it.AddedAt.IsZero() {
		details = append(details, "added "+humanize.Time(it.AddedAt))
	}
	if it.PublishedAt != nil {
		details = append(details, "uploaded "+it.PublishedAt.Format("2006-01-02"))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+author,
		"  "+styles.Dim.Render(strings.Join(details, " · ")),
	)
}

func (n *NowPlaying) renderStatus(v PlaybackView, width int) string {
	var parts []string

	parts = append(parts, flag("loop", v.Mode.Loop), flag("shuffle", v.Mode.Shuffle))
	if v.Pending > 0 {
		parts = append(parts, styles.Notice.Render(fmt.Sprintf("resolving %d…", v.Pending)))
	}

	switch {
	case v.Hold > 0:
		label := "locking"
		if v.Locked {
			label = "unlocking"
		}
		parts = append(parts, styles.Locked.Render(label)+" "+styles.ProgressBar(v.Hold, max(width/4, 10), styles.Error))
	case v.Locked:
		parts = append(parts, styles.Locked.Render("🔒 locked (hold L)"))
	}

	return strings.Join(parts, "  ")
}

func flag(name string, on bool) string {
	if on {
		return styles.Highlight.Render("[" + name + "]")
	}
	return styles.Dim.Render("[" + name + "]")
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

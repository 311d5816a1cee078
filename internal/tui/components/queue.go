package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tessro/tubeq/internal/core"
	"github.com/tessro/tubeq/internal/tui/styles"
)

// Queue displays the play queue
type Queue struct {
	offset int
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{}
}

// QueueView is what the queue panel renders.
type QueueView struct {
	Items    []core.Item
	Current  int
	Selected int
	// Matches maps queue positions to matched rune positions in
	// title + " " + author.
	Matches map[int][]int
	Dirty   bool
}

// Render renders the queue panel
func (q *Queue) Render(v QueueView, width, height int, focused bool) string {
	label := fmt.Sprintf("Queue (%d)", len(v.Items))
	if v.Dirty {
		label += " *"
	}
	title := styles.PanelTitle(label, focused)

	var content string
	if len(v.Items) == 0 {
		content = styles.Muted.Render("Queue is empty. Press a to add a video.")
	} else {
		content = q.renderQueue(v, width-4, height-4)
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

// scrollTo keeps anchor inside a window of visible rows.
func (q *Queue) scrollTo(anchor, visible, n int) {
	if anchor < 0 {
		anchor = 0
	}
	if anchor < q.offset {
		q.offset = anchor
	}
	if anchor >= q.offset+visible {
		q.offset = anchor - visible + 1
	}
	q.offset = min(q.offset, max(n-visible, 0))
}

func (q *Queue) renderQueue(v QueueView, width, maxLines int) string {
	visible := max(maxLines-1, 1) // leave room for "more" indicator

	anchor := v.Selected
	if anchor == core.NoIndex {
		anchor = v.Current
	}
	q.scrollTo(anchor, visible, len(v.Items))

	start := q.offset
	end := min(start+visible, len(v.Items))

	lines := make([]string, 0, end-start+1)

	// number, marker, separator and plays column
	const overhead = 17

	for i := start; i < end; i++ {
		lines = append(lines, q.renderLine(v, i, width-overhead))
	}

	if end < len(v.Items) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("      ... and %d more", len(v.Items)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (q *Queue) renderLine(v QueueView, i, available int) string {
	it := v.Items[i]

	authorSpace := min(max(available/3, 8), runewidth.StringWidth(it.Author))
	titleSpace := max(available-authorSpace, 4)

	title := styles.Truncate(it.Title, titleSpace)
	author := styles.Truncate(it.Author, authorSpace)

	if pos, ok := v.Matches[i]; ok {
		title = highlight(title, pos, 0)
		author = highlight(author, pos, len([]rune(it.Title))+1)
	} else if i != v.Current {
		author = styles.Muted.Render(author)
	}

	num := fmt.Sprintf("%4d.", i+1)
	plays := ""
	if it.PlayCount > 0 {
		plays = fmt.Sprintf("×%d", it.PlayCount)
	}

	var line string
	if i == v.Current {
		line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s — %s", num, title, author)) + " " + styles.Dim.Render(plays)
	} else {
		line = fmt.Sprintf("%s   %s — %s %s", styles.Dim.Render(num), title, author, styles.Dim.Render(plays))
	}
	if i == v.Selected {
		line = styles.Selected.Render(line)
	}
	return line
}

// highlight styles the runes of s whose position, shifted by offset, is
// in positions.
func highlight(s string, positions []int, offset int) string {
	if len(positions) == 0 {
		return s
	}
	hit := make(map[int]bool, len(positions))
	for _, p := range positions {
		hit[p-offset] = true
	}

	var b strings.Builder
	for i, r := range []rune(s) {
		if hit[i] {
			b.WriteString(styles.Match.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

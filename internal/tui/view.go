package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/tui/components"
	"github.com/tessro/tubeq/internal/tui/styles"
)

const (
	nowPlayingHeight = 9
	// Below this width the activity panel is hidden.
	wideLayout = 100
)

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	switch m.mode {
	case modeHelp:
		return m.overlay(m.renderHelp())
	case modeAdd, modeEdit:
		return m.overlay(m.renderForm())
	case modeSort:
		return m.overlay(m.renderSort())
	case modeConfirmClear:
		return m.overlay(m.renderConfirm())
	}

	leftWidth := m.width
	if m.width >= wideLayout {
		leftWidth = m.width * 60 / 100
	}
	rightWidth := m.width - leftWidth
	queueHeight := max(m.height-nowPlayingHeight-3, 5)

	nowPlaying := m.nowPlaying.Render(components.PlaybackView{
		Item:     m.snap.CurrentItem(),
		Index:    m.snap.Current,
		Total:    len(m.snap.Items),
		State:    m.snap.State,
		Position: m.position,
		Mode:     m.snap.Mode,
		Locked:   m.snap.Locked,
		Hold:     m.holdProg,
		Pending:  m.pending,
	}, leftWidth-2, nowPlayingHeight-2, false)

	queueView := m.queueView.Render(components.QueueView{
		Items:    m.snap.Items,
		Current:  m.snap.Current,
		Selected: m.snap.Selected,
		Matches:  m.matchPositions(),
		Dirty:    m.dirty,
	}, leftWidth-2, queueHeight-2, m.mode == modeSearch)

	main := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, queueView)
	if rightWidth > 0 {
		activity := m.eventLog.Render(m.events.Recent(m.height), rightWidth-2, m.height-3, false)
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, activity)
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) matchPositions() map[int][]int {
	if len(m.matches) == 0 {
		return nil
	}
	out := make(map[int][]int, len(m.matches))
	for _, match := range m.matches {
		out[match.Index] = match.Positions
	}
	return out
}

func (m Model) renderStatusBar() string {
	var status string
	switch {
	case m.mode == modeSearch:
		count := styles.Dim.Render(fmt.Sprintf("  %d matches  ↑/↓:cycle  enter:play  esc:close", len(m.matches)))
		status = m.query.View() + count
	case m.notice != "":
		status = styles.Notice.Render(m.notice)
	case m.snap.Locked:
		status = styles.Locked.Render("Controls locked. Hold L to unlock.")
	default:
		status = m.help.ShortHelpView(m.keys.ShortHelp())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) overlay(content string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Padding(1, 2).Render(content))
}

func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("tubeq - Keyboard Shortcuts"),
		"",
		h.FullHelpView(m.keys.FullHelp()),
		"",
		styles.Dim.Render("Press ? or Esc to close"),
	)
}

func (m Model) renderForm() string {
	var b strings.Builder

	labels := []string{"URL or video id", "Title", "Author"}
	title := "Add to queue"
	first := 0
	if m.mode == modeEdit {
		title = "Edit current item"
		first = 1
	}

	b.WriteString(styles.Title.Render(title))
	b.WriteString("\n\n")
	for i := first; i < len(m.inputs); i++ {
		label := styles.Label.Render(labels[i])
		if i == m.focus {
			label = styles.Highlight.Render(labels[i])
		}
		b.WriteString(label + "\n")
		b.WriteString(m.inputs[i].View() + "\n\n")
	}

	if m.formErr != nil {
		b.WriteString(styles.Notice.Render(tqerrors.Notice(m.formErr)) + "\n\n")
	}
	b.WriteString(styles.Dim.Render("tab:next field  enter:submit  esc:cancel"))
	return b.String()
}

func (m Model) renderSort() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Sort queue by"))
	b.WriteString("\n\n")
	for i, opt := range m.sortOpts {
		if i == m.sortIdx {
			b.WriteString(styles.Selected.Render("> "+opt.Key) + "\n")
		} else {
			b.WriteString("  " + opt.Key + "\n")
		}
	}
	b.WriteString("\n" + styles.Dim.Render("↑/↓:choose  enter:sort  esc:cancel"))
	return b.String()
}

func (m Model) renderConfirm() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(fmt.Sprintf("Remove all %d items?", len(m.snap.Items))),
		"",
		styles.Dim.Render("y:clear  n:keep"),
	)
}

package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/tubeq/internal/core"
	"github.com/tessro/tubeq/internal/search"
)

// Precision selects how loosely the picker matches.
type Precision int

const (
	PrecisionNormal Precision = iota
	PrecisionStrict
	PrecisionPermissive
)

var precisionNames = []string{"Normal", "Strict", "Loose"}

func (p Precision) minScore() int {
	switch p {
	case PrecisionStrict:
		return search.ScoreThresholdStrict
	case PrecisionPermissive:
		return search.ScoreThresholdPermissive
	}
	return search.ScoreThresholdNormal
}

// PickerModel is the bubbletea model for picking a queue item.
type PickerModel struct {
	input     textinput.Model
	items     []core.Item
	matches   []int
	cursor    int
	precision Precision
	searcher  *search.Searcher
	selected  int
	width     int
	height    int
}

// Styles
var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	pickerTabStyle = lipgloss.NewStyle().
			Padding(0, 2)

	pickerActiveTabStyle = lipgloss.NewStyle().
				Padding(0, 2).
				Background(lipgloss.Color("205")).
				Foreground(lipgloss.Color("0"))

	pickerResultStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	pickerSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	pickerSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// NewPickerModel creates a picker over items. With an empty query every
// item is listed in queue order.
func NewPickerModel(items []core.Item) PickerModel {
	ti := textinput.New()
	ti.Placeholder = "Filter by title or author..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	m := PickerModel{
		input:    ti,
		items:    items,
		searcher: search.New(),
		selected: core.NoIndex,
		width:    80,
		height:   20,
	}
	m.refilter()
	return m
}

// Init initializes the model.
func (m PickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *PickerModel) refilter() {
	m.searcher.SetMinScore(m.precision.minScore())
	m.matches = nil
	query := m.input.Value()
	if strings.TrimSpace(query) == "" {
		for i := range m.items {
			m.matches = append(m.matches, i)
		}
	} else {
		for _, match := range m.searcher.Items(query, m.items) {
			m.matches = append(m.matches, match.Index)
		}
	}
	if m.cursor >= len(m.matches) {
		m.cursor = max(len(m.matches)-1, 0)
	}
}

// Update handles messages.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.cursor < len(m.matches) {
				m.selected = m.matches[m.cursor]
				return m, tea.Quit
			}
			return m, nil

		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case "down", "ctrl+n":
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil

		case "tab":
			m.precision = (m.precision + 1) % 3
			m.refilter()
			return m, nil

		case "shift+tab":
			m.precision = (m.precision + 2) % 3
			m.refilter()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.cursor = 0
		m.refilter()
	}
	return m, cmd
}

// View renders the model.
func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(pickerTitleStyle.Render("🔍 Find in queue"))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	for i, name := range precisionNames {
		if Precision(i) == m.precision {
			b.WriteString(pickerActiveTabStyle.Render(name))
		} else {
			b.WriteString(pickerTabStyle.Render(name))
		}
	}
	b.WriteString("\n\n")

	if len(m.matches) == 0 {
		b.WriteString("No matches")
	} else {
		maxResults := max(m.height-10, 5)
		for i, idx := range m.matches {
			if i >= maxResults {
				b.WriteString(pickerSubtitleStyle.Render(fmt.Sprintf("  ...and %d more", len(m.matches)-i)))
				break
			}

			it := m.items[idx]
			line := fmt.Sprintf("%3d. %s %s", idx+1, it.Title, pickerSubtitleStyle.Render(it.Author))
			if i == m.cursor {
				b.WriteString(pickerSelectedStyle.Render("▸ " + line))
			} else {
				b.WriteString(pickerResultStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(pickerSubtitleStyle.Render("↑/↓ navigate • tab precision • enter select • esc quit"))

	return b.String()
}

// Selected returns the chosen queue index, or core.NoIndex.
func (m PickerModel) Selected() int {
	return m.selected
}

// RunPicker runs the picker and returns the chosen queue index.
func RunPicker(items []core.Item) (int, error) {
	model := NewPickerModel(items)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return core.NoIndex, err
	}
	return finalModel.(PickerModel).Selected(), nil
}

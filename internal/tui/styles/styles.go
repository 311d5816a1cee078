// Package styles holds the dashboard's lipgloss styles, built from a
// catppuccin flavor.
package styles

import (
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Colors of the active flavor.
var (
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	Surface   lipgloss.Color
	Border    lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	TextDim   lipgloss.Color
)

// Text styles
var (
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	Playing   lipgloss.Style
	Paused    lipgloss.Style
	Selected  lipgloss.Style
	Match     lipgloss.Style
	Notice    lipgloss.Style
	Locked    lipgloss.Style
)

// Border styles
var (
	BorderStyle   lipgloss.Style
	FocusedBorder lipgloss.Style
)

func init() {
	Apply("mocha")
}

// Flavor resolves a theme name. "auto" picks mocha on dark terminals and
// latte otherwise.
func Flavor(theme string) catppuccin.Flavor {
	switch theme {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	case "mocha":
		return catppuccin.Mocha
	}
	if lipgloss.HasDarkBackground() {
		return catppuccin.Mocha
	}
	return catppuccin.Latte
}

// Apply rebuilds every style from the named theme.
func Apply(theme string) {
	f := Flavor(theme)
	c := func(col catppuccin.Color) lipgloss.Color { return lipgloss.Color(col.Hex) }

	Primary = c(f.Mauve())
	Secondary = c(f.Green())
	Accent = c(f.Peach())
	Success = c(f.Green())
	Warning = c(f.Yellow())
	Error = c(f.Red())
	Info = c(f.Blue())
	Surface = c(f.Surface0())
	Border = c(f.Surface2())
	Text = c(f.Text())
	TextMuted = c(f.Subtext0())
	TextDim = c(f.Overlay0())

	Title = lipgloss.NewStyle().Bold(true).Foreground(Text)
	Subtitle = lipgloss.NewStyle().Foreground(TextMuted)
	Label = lipgloss.NewStyle().Foreground(TextDim)
	Highlight = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	Dim = lipgloss.NewStyle().Foreground(TextDim)
	Playing = lipgloss.NewStyle().Foreground(Success)
	Paused = lipgloss.NewStyle().Foreground(Warning)
	Selected = lipgloss.NewStyle().Background(Surface)
	Match = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	Notice = lipgloss.NewStyle().Foreground(Info)
	Locked = lipgloss.NewStyle().Bold(true).Foreground(Error)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)
	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)
}

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar renders fraction in [0, 1] as a bar of width cells.
func ProgressBar(fraction float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	filled := min(max(int(fraction*float64(width)), 0), width)

	filledStyle := lipgloss.NewStyle().Foreground(color)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}

// Truncate shortens s to at most width terminal cells.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

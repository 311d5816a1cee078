package wizard

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/ytid"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled bool
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// AddInput is what the add form collects.
type AddInput struct {
	Raw    string
	Title  string
	Author string
}

// ValidateRaw accepts anything that names a video or a playlist.
func ValidateRaw(raw string) error {
	raw = strings.TrimSpace(raw)
	if ytid.ExtractPlaylistID(raw) != "" {
		return nil
	}
	switch _, kind := ytid.ExtractID(raw); kind {
	case ytid.KindVideo:
		return nil
	case ytid.KindShort:
		return tqerrors.ErrShortVideo
	}
	return tqerrors.ErrInvalidInput
}

// PromptAdd asks for a URL or id plus optional metadata. Returns nil if
// not interactive.
func (i *Interactive) PromptAdd() (*AddInput, error) {
	if !i.CanInteract() {
		return nil, nil
	}

	var in AddInput
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("URL or video id").
				Placeholder("https://www.youtube.com/watch?v=...").
				Value(&in.Raw).
				Validate(ValidateRaw),
			huh.NewInput().
				Title("Title").
				Description("Leave blank to look it up").
				Value(&in.Title),
			huh.NewInput().
				Title("Author").
				Description("Leave blank to look it up").
				Value(&in.Author),
		),
	)
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("add cancelled: %w", err)
	}
	in.Raw = strings.TrimSpace(in.Raw)
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	return &in, nil
}

// SortOptions lists the sort keys with their labels.
func SortOptions() []huh.Option[core.SortKey] {
	return []huh.Option[core.SortKey]{
		huh.NewOption("Most played", core.SortByPlayCount),
		huh.NewOption("Recently added", core.SortByAddedAt),
		huh.NewOption("Newest upload", core.SortByPublishedAt),
	}
}

// PromptSortKey asks which field to sort by.
func (i *Interactive) PromptSortKey() (core.SortKey, error) {
	if !i.CanInteract() {
		return "", nil
	}

	var key core.SortKey
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[core.SortKey]().
				Title("Sort queue by").
				Options(SortOptions()...).
				Value(&key),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return key, nil
}

// ConfirmClear asks before emptying a queue of n items. Non-interactive
// sessions get false.
func (i *Interactive) ConfirmClear(n int) (bool, error) {
	if !i.CanInteract() {
		return false, nil
	}

	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Remove all %d items?", n)).
				Affirmative("Clear").
				Negative("Keep").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// PromptItem launches the fuzzy picker over items. Returns core.NoIndex
// if cancelled or not interactive.
func (i *Interactive) PromptItem(items []core.Item) (int, error) {
	if !i.CanInteract() || len(items) == 0 {
		return core.NoIndex, nil
	}
	return RunPicker(items)
}

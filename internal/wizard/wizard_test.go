package wizard

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
)

func TestValidateRaw(t *testing.T) {
	tests := []struct {
		raw  string
		want error
	}{
		{"dQw4w9WgXcQ", nil},
		{"https://youtu.be/dQw4w9WgXcQ", nil},
		{"https://www.youtube.com/playlist?list=PL1234567890", nil},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", tqerrors.ErrShortVideo},
		{"not a video", tqerrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		if got := ValidateRaw(tt.raw); !errors.Is(got, tt.want) {
			t.Errorf("ValidateRaw(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestInteractive_Disabled(t *testing.T) {
	i := NewInteractive()
	i.SetEnabled(false)

	if i.CanInteract() {
		t.Error("CanInteract() = true while disabled")
	}
	in, err := i.PromptAdd()
	if in != nil || err != nil {
		t.Errorf("PromptAdd() = %v, %v, want nil, nil", in, err)
	}
	idx, err := i.PromptItem([]core.Item{{ID: "a"}})
	if idx != core.NoIndex || err != nil {
		t.Errorf("PromptItem() = %d, %v, want NoIndex", idx, err)
	}
	ok, err := i.ConfirmClear(3)
	if ok || err != nil {
		t.Errorf("ConfirmClear() = %v, %v, want false", ok, err)
	}
}

func pickerItems() []core.Item {
	return []core.Item{
		{ID: "aaaaaaaaaaa", Title: "Never Gonna Give You Up", Author: "Rick Astley"},
		{ID: "bbbbbbbbbbb", Title: "Bohemian Rhapsody", Author: "Queen"},
		{ID: "ccccccccccc", Title: "Take On Me", Author: "a-ha"},
	}
}

func typeString(m PickerModel, s string) PickerModel {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(PickerModel)
	}
	return m
}

func TestPicker_EmptyQueryListsAll(t *testing.T) {
	m := NewPickerModel(pickerItems())
	if len(m.matches) != 3 {
		t.Fatalf("matches = %v, want all 3 items", m.matches)
	}
}

func TestPicker_FilterAndSelect(t *testing.T) {
	m := typeString(NewPickerModel(pickerItems()), "queen")
	if len(m.matches) == 0 || m.matches[0] != 1 {
		t.Fatalf("matches = %v, want index 1 first", m.matches)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := next.(PickerModel).Selected(); got != 1 {
		t.Errorf("Selected() = %d, want 1", got)
	}
}

func TestPicker_Escape(t *testing.T) {
	m := NewPickerModel(pickerItems())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := next.(PickerModel).Selected(); got != core.NoIndex {
		t.Errorf("Selected() = %d, want NoIndex", got)
	}
}

func TestPicker_CursorBounds(t *testing.T) {
	m := NewPickerModel(pickerItems())
	for range 5 {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = next.(PickerModel)
	}
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := next.(PickerModel).cursor; got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}
}

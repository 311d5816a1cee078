package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev        key.Binding
	Next        key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	Pause       key.Binding
	Stop        key.Binding
	First       key.Binding
	Last        key.Binding
	Loop        key.Binding
	Shuffle     key.Binding
	Jump        key.Binding

	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	PlaySel   key.Binding
	Deselect  key.Binding
	Duplicate key.Binding
	Remove    key.Binding
	Add       key.Binding
	Edit      key.Binding
	Search    key.Binding
	Dedupe    key.Binding
	Sort      key.Binding
	Clear     key.Binding

	Save    key.Binding
	Lock    key.Binding
	Copy    key.Binding
	Browser key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "prev")),
		Next:        key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "next")),
		SeekBack:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "seek back")),
		SeekForward: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "seek forward")),
		Pause:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "play/pause")),
		Stop:        key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "stop")),
		First:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "first")),
		Last:        key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "last")),
		Loop:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "loop")),
		Shuffle:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "shuffle")),
		Jump: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0"),
			key.WithHelp("1-5/6-0", "jump -5..-1/+1..+5"),
		),

		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "select up")),
		Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "select down")),
		PageUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		PlaySel:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play selection")),
		Deselect:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		Duplicate: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "duplicate/add")),
		Remove:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "remove")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit current")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Dedupe:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dedupe")),
		Sort:      key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sort")),
		Clear:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear")),

		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Lock:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L (hold)", "lock")),
		Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy url")),
		Browser: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "open in browser")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Prev, k.Next, k.Add, k.Search, k.Lock, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Stop, k.Prev, k.Next, k.SeekBack, k.SeekForward, k.First, k.Last, k.Jump},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.PlaySel, k.Deselect, k.Loop, k.Shuffle},
		{k.Add, k.Duplicate, k.Remove, k.Edit, k.Search, k.Dedupe, k.Sort, k.Clear},
		{k.Save, k.Lock, k.Copy, k.Browser, k.Help, k.Quit},
	}
}

// jumpDelta maps the digit row to relative jumps: 1..5 go back five to
// one, 6..9 and 0 go forward one to five.
func jumpDelta(s string) (int, bool) {
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, false
	}
	d := int(s[0] - '0')
	switch {
	case d == 0:
		return 5, true
	case d <= 5:
		return d - 6, true
	}
	return d - 5, true
}

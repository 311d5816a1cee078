package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/tubeq/internal/controller"
	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
	"github.com/tessro/tubeq/internal/events"
	"github.com/tessro/tubeq/internal/player"
)

func newTestModel(t *testing.T, ids ...string) (Model, *controller.Controller, *player.Nop) {
	t.Helper()

	p := player.NewNop()
	log := events.NewLog(50)
	ctrl := controller.New(p, nil, controller.Options{Capacity: 100, Sink: log.Sink()})

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	items := make([]core.Item, 0, len(ids))
	for i, id := range ids {
		items = append(items, core.NewItem(id, "Video "+id, "Author", now.Add(time.Duration(i)*time.Minute)))
	}
	ctrl.Load(items)

	m := NewModel(Options{
		Controller:   ctrl,
		Player:       p,
		Events:       log,
		File:         t.TempDir() + "/playlist.txt",
		HoldDuration: 200 * time.Millisecond,
	})
	return m, ctrl, p
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return nm, cmd
}

// press sends a key and, if it produced a controller action, runs it and
// feeds the result back.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	m, cmd := update(t, m, keyMsg(k))
	return settle(t, m, cmd)
}

func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case actionMsg, resolvedMsg, savedMsg:
		default:
			return m
		}
		m, cmd = update(t, m, msg)
	}
	return m
}

func TestJumpDelta(t *testing.T) {
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"1", -5, true},
		{"5", -1, true},
		{"6", 1, true},
		{"9", 4, true},
		{"0", 5, true},
		{"a", 0, false},
		{"10", 0, false},
	}
	for _, tt := range tests {
		got, ok := jumpDelta(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("jumpDelta(%q) = %d, %v, want %d, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPlaybackKeys(t *testing.T) {
	m, _, p := newTestModel(t, "aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc")

	m = press(t, m, "d")
	if m.snap.Current != 0 || p.VideoID() != "aaaaaaaaaaa" {
		t.Fatalf("after first: current = %d, loaded %q", m.snap.Current, p.VideoID())
	}

	m = press(t, m, "k")
	if m.snap.Current != 1 || p.VideoID() != "bbbbbbbbbbb" {
		t.Errorf("after next: current = %d, loaded %q", m.snap.Current, p.VideoID())
	}

	m = press(t, m, "j")
	if m.snap.Current != 2 {
		t.Errorf("after last: current = %d, want 2", m.snap.Current)
	}

	m = press(t, m, "s")
	if m.snap.Current != 1 {
		t.Errorf("after prev: current = %d, want 1", m.snap.Current)
	}

	m = press(t, m, "q")
	if !m.snap.Mode.Loop {
		t.Error("loop not enabled")
	}
}

func TestSelectionAndRemove(t *testing.T) {
	m, ctrl, _ := newTestModel(t, "aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc")

	m = press(t, m, "down")
	m = press(t, m, "down")
	if m.snap.Selected != 1 {
		t.Fatalf("selected = %d, want 1", m.snap.Selected)
	}

	m = press(t, m, "]")
	items := ctrl.Items()
	if len(items) != 2 || items[1].ID != "ccccccccccc" {
		t.Errorf("items after remove = %v", items)
	}
	if !m.dirty {
		t.Error("dirty = false after remove")
	}

	m = press(t, m, "esc")
	if m.snap.Selected != core.NoIndex {
		t.Errorf("selected = %d after esc, want none", m.snap.Selected)
	}
}

func TestLockBlocksKeys(t *testing.T) {
	m, ctrl, p := newTestModel(t, "aaaaaaaaaaa", "bbbbbbbbbbb")
	ctrl.ToggleLock()
	m.refreshState()

	for _, k := range []string{"d", "k", "x", "a", "]"} {
		var cmd tea.Cmd
		m, cmd = update(t, m, keyMsg(k))
		if cmd != nil {
			t.Errorf("key %q returned a command while locked", k)
		}
	}
	if m.mode != modeNormal {
		t.Errorf("mode = %d, want normal", m.mode)
	}
	if p.VideoID() != "" {
		t.Errorf("player loaded %q while locked", p.VideoID())
	}
	if want := tqerrors.Notice(tqerrors.ErrLocked); m.notice != want {
		t.Errorf("notice = %q, want %q", m.notice, want)
	}
}

func TestHoldToggleLock(t *testing.T) {
	m, ctrl, _ := newTestModel(t, "aaaaaaaaaaa")
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }

	m, cmd := update(t, m, keyMsg("L"))
	if cmd == nil || !m.holding {
		t.Fatal("L did not start a hold")
	}

	m, _ = update(t, m, holdTickMsg(start.Add(100*time.Millisecond)))
	if ctrl.Locked() {
		t.Fatal("locked before the hold completed")
	}
	if m.holdProg <= 0 {
		t.Errorf("holdProg = %v, want progress", m.holdProg)
	}

	m, _ = update(t, m, holdTickMsg(start.Add(250*time.Millisecond)))
	if !ctrl.Locked() || !m.snap.Locked {
		t.Fatal("hold did not lock")
	}

	// Releasing the key ends the hold without toggling again.
	m, cmd = update(t, m, holdTickMsg(start.Add(2*time.Second)))
	if cmd != nil || m.holding {
		t.Error("hold still active after release")
	}
	if !ctrl.Locked() {
		t.Error("lock toggled twice by one hold")
	}
}

func TestAddFlow(t *testing.T) {
	m, ctrl, p := newTestModel(t)

	m, _ = update(t, m, keyMsg("a"))
	if m.mode != modeAdd {
		t.Fatalf("mode = %d, want add", m.mode)
	}

	m, _ = update(t, m, keyMsg("dQw4w9WgXcQ"))
	m = press(t, m, "enter")

	if m.mode != modeNormal {
		t.Errorf("mode = %d after submit, want normal", m.mode)
	}
	items := ctrl.Items()
	if len(items) != 1 || items[0].ID != "dQw4w9WgXcQ" {
		t.Fatalf("items = %v", items)
	}
	if m.pending != 0 {
		t.Errorf("pending = %d, want 0", m.pending)
	}
	if p.VideoID() != "dQw4w9WgXcQ" {
		t.Errorf("autoplay loaded %q", p.VideoID())
	}
}

func TestAddRejectsShorts(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	m, _ = update(t, m, keyMsg("a"))
	m, _ = update(t, m, keyMsg("https://www.youtube.com/shorts/dQw4w9WgXcQ"))
	m = press(t, m, "enter")

	if m.mode != modeAdd {
		t.Errorf("mode = %d, want form to stay open", m.mode)
	}
	if m.formErr == nil {
		t.Error("formErr = nil, want short video error")
	}
	if len(ctrl.Items()) != 0 {
		t.Errorf("items = %v, want empty", ctrl.Items())
	}
}

func TestDuplicateOpensAddWithoutSelection(t *testing.T) {
	m, ctrl, _ := newTestModel(t, "aaaaaaaaaaa")

	m, _ = update(t, m, keyMsg("["))
	if m.mode != modeAdd {
		t.Fatalf("mode = %d, want add", m.mode)
	}
	m = press(t, m, "esc")

	m = press(t, m, "down")
	m = press(t, m, "[")
	if got := len(ctrl.Items()); got != 2 {
		t.Errorf("len(items) = %d after duplicate, want 2", got)
	}
}

func TestDedupeNotice(t *testing.T) {
	m, ctrl, _ := newTestModel(t, "aaaaaaaaaaa", "aaaaaaaaaaa", "bbbbbbbbbbb")

	m = press(t, m, "x")
	if got := len(ctrl.Items()); got != 2 {
		t.Errorf("len(items) = %d, want 2", got)
	}
	if want := controller.DedupeNotice(1); m.notice != want {
		t.Errorf("notice = %q, want %q", m.notice, want)
	}
}

func TestSearchSelectsMatch(t *testing.T) {
	m, _, p := newTestModel(t, "aaaaaaaaaaa", "bbbbbbbbbbb")

	m, _ = update(t, m, keyMsg("/"))
	if m.mode != modeSearch {
		t.Fatalf("mode = %d, want search", m.mode)
	}
	m, _ = update(t, m, keyMsg("bbbbbbbbbbb"))
	if len(m.matches) == 0 || m.snap.Selected != 1 {
		t.Fatalf("matches = %v, selected = %d", m.matches, m.snap.Selected)
	}

	m = press(t, m, "enter")
	if m.mode != modeNormal || p.VideoID() != "bbbbbbbbbbb" {
		t.Errorf("mode = %d, loaded %q", m.mode, p.VideoID())
	}
}

func TestSortAndClear(t *testing.T) {
	m, ctrl, _ := newTestModel(t, "aaaaaaaaaaa", "bbbbbbbbbbb")

	m = press(t, m, "S")
	m = press(t, m, "down")
	m = press(t, m, "enter")
	if items := ctrl.Items(); items[0].ID != "bbbbbbbbbbb" {
		t.Errorf("after sort by added: first = %q, want newest", items[0].ID)
	}

	m = press(t, m, "C")
	if m.mode != modeConfirmClear {
		t.Fatalf("mode = %d, want confirm", m.mode)
	}
	m = press(t, m, "n")
	if len(ctrl.Items()) != 2 {
		t.Fatal("clear ran without confirmation")
	}
	m = press(t, m, "C")
	_ = press(t, m, "y")
	if len(ctrl.Items()) != 0 {
		t.Errorf("items = %v after confirmed clear", ctrl.Items())
	}
}

func TestSaveClearsDirty(t *testing.T) {
	m, _, _ := newTestModel(t, "aaaaaaaaaaa", "aaaaaaaaaaa")

	m = press(t, m, "x")
	if !m.dirty {
		t.Fatal("dirty = false after dedupe")
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = settle(t, m, cmd)
	if m.dirty {
		t.Error("dirty = true after save")
	}
}

func TestEndedAdvances(t *testing.T) {
	m, _, p := newTestModel(t, "aaaaaaaaaaa", "bbbbbbbbbbb")
	m = press(t, m, "d")

	m, cmd := update(t, m, endedMsg{})
	if cmd == nil {
		t.Fatal("ended produced no command")
	}
	// The batch holds the OnEnded action and the re-armed listener; run
	// the action directly.
	m, _ = update(t, m, m.run(m.ctrl.OnEnded)())
	if m.snap.Current != 1 || p.VideoID() != "bbbbbbbbbbb" {
		t.Errorf("after end: current = %d, loaded %q", m.snap.Current, p.VideoID())
	}
}

func TestView(t *testing.T) {
	m, _, _ := newTestModel(t, "aaaaaaaaaaa")
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before size = %q", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	out := m.View()
	for _, want := range []string{"Now Playing", "Queue (1)", "Activity", "Video aaaaaaaaaaa"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m = press(t, m, "?")
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help overlay not shown")
	}
}

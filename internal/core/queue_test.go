package core

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	tqerrors "github.com/tessro/tubeq/internal/errors"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestQueue(t *testing.T, ids ...string) *Queue {
	t.Helper()
	q := NewQueue(0)
	for i, id := range ids {
		if _, err := q.Append(NewItem(id, "title "+id, "author", t0.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append(%q) error = %v", id, err)
		}
	}
	return q
}

func ids(q *Queue) []string {
	out := make([]string, 0, q.Len())
	for _, it := range q.Items() {
		out = append(out, it.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewQueue(t *testing.T) {
	q := NewQueue(0)
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if q.CurrentIndex() != NoIndex {
		t.Errorf("CurrentIndex() = %d, want %d", q.CurrentIndex(), NoIndex)
	}
	if q.SelectedIndex() != NoIndex {
		t.Errorf("SelectedIndex() = %d, want %d", q.SelectedIndex(), NoIndex)
	}
	if q.Capacity() != MaxCapacity {
		t.Errorf("Capacity() = %d, want %d", q.Capacity(), MaxCapacity)
	}
	if q.Current() != nil {
		t.Error("Current() should be nil on an empty queue")
	}

	if got := NewQueue(MaxCapacity + 1).Capacity(); got != MaxCapacity {
		t.Errorf("NewQueue(MaxCapacity+1).Capacity() = %d, want %d", got, MaxCapacity)
	}
	if got := NewQueue(3).Capacity(); got != 3 {
		t.Errorf("NewQueue(3).Capacity() = %d, want 3", got)
	}
}

func TestQueue_AppendRespectsCapacity(t *testing.T) {
	q := NewQueue(3)

	n, err := q.Append(
		NewItem("a", "", "", t0),
		NewItem("b", "", "", t0),
		NewItem("c", "", "", t0),
		NewItem("d", "", "", t0),
	)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Append() added %d, want 3", n)
	}

	_, err = q.Append(NewItem("e", "", "", t0))
	if !errors.Is(err, tqerrors.ErrQueueFull) {
		t.Errorf("Append() on full queue error = %v, want ErrQueueFull", err)
	}
	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3", q.Len())
	}
}

func TestQueue_AppendAssignsTokens(t *testing.T) {
	q := NewQueue(0)
	if _, err := q.Append(Item{ID: "a"}, Item{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	a, b := q.At(0), q.At(1)
	if a.Token == "" || b.Token == "" {
		t.Fatal("Append() should assign tokens")
	}
	if a.Token == b.Token {
		t.Error("tokens should be unique per entry")
	}
	if q.IndexOf(b.Token) != 1 {
		t.Errorf("IndexOf() = %d, want 1", q.IndexOf(b.Token))
	}
	if q.IndexOf("") != NoIndex {
		t.Error("IndexOf(\"\") should be NoIndex")
	}
}

func TestQueue_RemoveAt(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		remove      int
		wantIDs     []string
		wantCurrent int
	}{
		{"remove before cursor", 2, 0, []string{"b", "c"}, 1},
		{"remove after cursor", 0, 2, []string{"a", "b"}, 0},
		{"remove cursor in middle", 1, 1, []string{"a", "c"}, 1},
		{"remove cursor at end clamps", 2, 2, []string{"a", "b"}, 1},
		{"remove with no cursor", NoIndex, 1, []string{"a", "c"}, NoIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQueue(t, "a", "b", "c")
			if tt.current != NoIndex {
				if err := q.SetCurrent(tt.current); err != nil {
					t.Fatal(err)
				}
			}
			if err := q.Select(tt.remove); err != nil {
				t.Fatal(err)
			}

			if _, err := q.RemoveSelected(); err != nil {
				t.Fatalf("RemoveSelected() error = %v", err)
			}
			if !equalIDs(ids(q), tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids(q), tt.wantIDs)
			}
			if q.CurrentIndex() != tt.wantCurrent {
				t.Errorf("CurrentIndex() = %d, want %d", q.CurrentIndex(), tt.wantCurrent)
			}
			if q.SelectedIndex() != NoIndex {
				t.Errorf("SelectedIndex() = %d, want %d", q.SelectedIndex(), NoIndex)
			}
		})
	}
}

func TestQueue_RemoveLastItemResetsCursor(t *testing.T) {
	q := newTestQueue(t, "a")
	_ = q.SetCurrent(0)
	if _, err := q.RemoveAt(0); err != nil {
		t.Fatal(err)
	}
	if q.CurrentIndex() != NoIndex {
		t.Errorf("CurrentIndex() = %d, want %d", q.CurrentIndex(), NoIndex)
	}
}

func TestQueue_RemoveSelectedWithoutSelection(t *testing.T) {
	q := newTestQueue(t, "a")
	if _, err := q.RemoveSelected(); !errors.Is(err, tqerrors.ErrNoSelection) {
		t.Errorf("RemoveSelected() error = %v, want ErrNoSelection", err)
	}
}

func TestQueue_RemoveToken(t *testing.T) {
	q := newTestQueue(t, "a", "b", "c")
	_ = q.SetCurrent(2)
	_ = q.Select(2)
	tok := q.At(0).Token

	if _, ok := q.RemoveToken(tok); !ok {
		t.Fatal("RemoveToken() = false, want true")
	}
	if q.CurrentIndex() != 1 || q.Current().ID != "c" {
		t.Errorf("current = %d, want 1 (c)", q.CurrentIndex())
	}
	if q.SelectedIndex() != 1 {
		t.Errorf("SelectedIndex() = %d, want 1", q.SelectedIndex())
	}
	if _, ok := q.RemoveToken(tok); ok {
		t.Error("RemoveToken() of a removed item should report false")
	}
}

func TestQueue_DuplicateSelected(t *testing.T) {
	q := newTestQueue(t, "a", "b", "c")
	_ = q.SetCurrent(2)
	_ = q.Select(0)
	later := t0.Add(time.Hour)

	dup, err := q.DuplicateSelected(later)
	if err != nil {
		t.Fatalf("DuplicateSelected() error = %v", err)
	}
	if !equalIDs(ids(q), []string{"a", "a", "b", "c"}) {
		t.Errorf("ids = %v", ids(q))
	}
	if !dup.AddedAt.Equal(later) {
		t.Errorf("AddedAt = %v, want %v", dup.AddedAt, later)
	}
	if dup.Token == q.At(0).Token {
		t.Error("duplicate should get its own token")
	}
	if q.Current().ID != "c" || q.CurrentIndex() != 3 {
		t.Errorf("current = %d, want 3 (c)", q.CurrentIndex())
	}
}

func TestQueue_DuplicateAtCapacity(t *testing.T) {
	q := NewQueue(1)
	_, _ = q.Append(NewItem("a", "", "", t0))
	_ = q.Select(0)
	if _, err := q.DuplicateSelected(t0); !errors.Is(err, tqerrors.ErrQueueFull) {
		t.Errorf("DuplicateSelected() error = %v, want ErrQueueFull", err)
	}
}

func TestQueue_Dedupe(t *testing.T) {
	q := newTestQueue(t, "a", "b", "a", "c", "b")
	_ = q.SetCurrent(3)

	removed := q.Dedupe()
	if removed != 2 {
		t.Errorf("Dedupe() = %d, want 2", removed)
	}
	if !equalIDs(ids(q), []string{"a", "b", "c"}) {
		t.Errorf("ids = %v, want [a b c]", ids(q))
	}
	if q.Current().ID != "c" {
		t.Errorf("current id = %q, want %q", q.Current().ID, "c")
	}

	if again := q.Dedupe(); again != 0 {
		t.Errorf("second Dedupe() = %d, want 0", again)
	}
	if !equalIDs(ids(q), []string{"a", "b", "c"}) {
		t.Errorf("Dedupe should be idempotent, ids = %v", ids(q))
	}
}

func TestQueue_DedupeRelocatesRemovedDuplicate(t *testing.T) {
	q := newTestQueue(t, "a", "b", "a")
	_ = q.SetCurrent(2)

	q.Dedupe()
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0 (first occurrence of a)", q.CurrentIndex())
	}
}

func TestQueue_Sort(t *testing.T) {
	pub := func(d int) *time.Time {
		p := t0.AddDate(0, 0, d)
		return &p
	}

	q := NewQueue(0)
	_, _ = q.Append(
		Item{ID: "a", PlayCount: 1, AddedAt: t0, PublishedAt: pub(1)},
		Item{ID: "b", PlayCount: 5, AddedAt: t0.Add(2 * time.Minute)},
		Item{ID: "c", PlayCount: 5, AddedAt: t0.Add(time.Minute), PublishedAt: pub(3)},
	)
	_ = q.SetCurrent(0) // a now has 2 plays

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortByPlayCount, []string{"b", "c", "a"}},
		{SortByAddedAt, []string{"b", "c", "a"}},
		{SortByPublishedAt, []string{"c", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if err := q.Sort(tt.key); err != nil {
				t.Fatalf("Sort() error = %v", err)
			}
			if !equalIDs(ids(q), tt.want) {
				t.Errorf("ids = %v, want %v", ids(q), tt.want)
			}
			if q.Current().ID != "a" {
				t.Errorf("current id = %q, want %q", q.Current().ID, "a")
			}
		})
	}

	if err := q.Sort("title"); err == nil {
		t.Error("Sort() with unknown key should fail")
	}
}

func TestQueue_SortIsStable(t *testing.T) {
	q := newTestQueue(t, "a", "b", "c", "d")
	if err := q.Sort(SortByPlayCount); err != nil {
		t.Fatal(err)
	}
	if !equalIDs(ids(q), []string{"a", "b", "c", "d"}) {
		t.Errorf("equal keys should keep order, ids = %v", ids(q))
	}
}

func TestQueue_ShuffleKeepsCurrentItem(t *testing.T) {
	q := newTestQueue(t, "a", "b", "c", "d", "e", "f")
	_ = q.SetCurrent(4)

	q.Shuffle(rand.New(rand.NewPCG(1, 2)))
	if q.Len() != 6 {
		t.Errorf("Len() = %d, want 6", q.Len())
	}
	if q.Current().ID != "e" {
		t.Errorf("current id = %q, want %q", q.Current().ID, "e")
	}
}

func TestQueue_Move(t *testing.T) {
	q := newTestQueue(t, "a", "b", "c", "d")
	_ = q.SetCurrent(1)

	if err := q.Move(0, 3); err != nil {
		t.Fatal(err)
	}
	if !equalIDs(ids(q), []string{"b", "c", "d", "a"}) {
		t.Errorf("ids = %v", ids(q))
	}
	if q.Current().ID != "b" {
		t.Errorf("current id = %q, want %q", q.Current().ID, "b")
	}
	if err := q.Move(0, 9); !errors.Is(err, tqerrors.ErrIndexOutOfRange) {
		t.Errorf("Move() error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestQueue_ClearAndReplace(t *testing.T) {
	q := newTestQueue(t, "a", "b")
	_ = q.SetCurrent(1)
	_ = q.Select(0)

	q.Clear()
	if q.Len() != 0 || q.CurrentIndex() != NoIndex || q.SelectedIndex() != NoIndex {
		t.Errorf("after Clear: len=%d current=%d selected=%d", q.Len(), q.CurrentIndex(), q.SelectedIndex())
	}

	small := NewQueue(2)
	n := small.Replace([]Item{{ID: "x"}, {ID: "y"}, {ID: "z"}})
	if n != 2 {
		t.Errorf("Replace() = %d, want 2", n)
	}
	if small.At(0).Token == "" {
		t.Error("Replace() should assign tokens")
	}
}

func TestQueue_SetCurrentCountsPlays(t *testing.T) {
	q := newTestQueue(t, "a")
	_ = q.SetCurrent(0)
	_ = q.SetCurrent(0)
	if q.At(0).PlayCount != 2 {
		t.Errorf("PlayCount = %d, want 2", q.At(0).PlayCount)
	}
	if err := q.SetCurrent(1); !errors.Is(err, tqerrors.ErrIndexOutOfRange) {
		t.Errorf("SetCurrent(1) error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestQueue_EditCurrent(t *testing.T) {
	q := newTestQueue(t, "a")
	if err := q.EditCurrent("x", "y"); !errors.Is(err, tqerrors.ErrIndexOutOfRange) {
		t.Errorf("EditCurrent() with no cursor error = %v", err)
	}
	_ = q.SetCurrent(0)
	if err := q.EditCurrent("New Title", "New Author"); err != nil {
		t.Fatal(err)
	}
	if q.Current().Title != "New Title" || q.Current().Author != "New Author" {
		t.Errorf("current = %+v", q.Current())
	}
}

func TestParseSortKey(t *testing.T) {
	for in, want := range map[string]SortKey{
		"plays":       SortByPlayCount,
		"playCount":   SortByPlayCount,
		"added":       SortByAddedAt,
		"publishedAt": SortByPublishedAt,
	} {
		got, err := ParseSortKey(in)
		if err != nil || got != want {
			t.Errorf("ParseSortKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSortKey("title"); err == nil {
		t.Error("ParseSortKey(\"title\") should fail")
	}
}

package core

import (
	"math/rand/v2"
	"testing"
)

func TestNextIndex(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		current int
		mode    Mode
		want    int
		wantOK  bool
	}{
		{"advance", []string{"a", "b", "c"}, 0, Mode{}, 1, true},
		{"from nothing played", []string{"a", "b"}, NoIndex, Mode{}, 0, true},
		{"end of queue stops", []string{"a", "b", "c"}, 2, Mode{}, 2, false},
		{"loop replays", []string{"a", "b", "c"}, 1, Mode{Loop: true}, 1, true},
		{"loop wins over shuffle", []string{"a", "b", "c"}, 1, Mode{Loop: true, Shuffle: true}, 1, true},
		{"shuffle single item replays", []string{"a"}, 0, Mode{Shuffle: true}, 0, true},
		{"empty queue", nil, NoIndex, Mode{}, NoIndex, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newTestQueue(t, tt.ids...)
			if tt.current != NoIndex {
				_ = q.SetCurrent(tt.current)
			}
			got, ok := NextIndex(q, tt.mode, nil)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NextIndex() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNextIndex_ShufflePicksAnotherItem(t *testing.T) {
	q := newTestQueue(t, "a", "b", "c", "d")
	_ = q.SetCurrent(2)
	rng := rand.New(rand.NewPCG(7, 7))

	for i := 0; i < 200; i++ {
		got, ok := NextIndex(q, Mode{Shuffle: true}, rng)
		if !ok {
			t.Fatal("NextIndex() should not stop in shuffle mode")
		}
		if got == 2 {
			t.Fatalf("shuffle picked the current index")
		}
		if got < 0 || got >= q.Len() {
			t.Fatalf("shuffle picked out-of-range index %d", got)
		}
	}
}

func TestPrevIndex(t *testing.T) {
	q := newTestQueue(t, "a", "b")
	_ = q.SetCurrent(1)
	if got, ok := PrevIndex(q); got != 0 || !ok {
		t.Errorf("PrevIndex() = (%d, %v), want (0, true)", got, ok)
	}
	_ = q.SetCurrent(0)
	if got, ok := PrevIndex(q); got != 0 || ok {
		t.Errorf("PrevIndex() at start = (%d, %v), want (0, false)", got, ok)
	}
}

func TestJumpTarget(t *testing.T) {
	q := newTestQueue(t, "a", "b", "c", "d", "e", "f", "g")
	_ = q.SetCurrent(3)

	tests := []struct {
		delta  int
		want   int
		wantOK bool
	}{
		{-1, 2, true},
		{-3, 0, true},
		{-4, NoIndex, false},
		{+3, 6, true},
		{+4, NoIndex, false},
		{0, NoIndex, false},
		{-6, NoIndex, false},
		{+6, NoIndex, false},
	}
	for _, tt := range tests {
		got, ok := JumpTarget(q, tt.delta)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("JumpTarget(%d) = (%d, %v), want (%d, %v)", tt.delta, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFirstLastIndex(t *testing.T) {
	empty := NewQueue(0)
	if _, ok := FirstIndex(empty); ok {
		t.Error("FirstIndex() on empty queue should be false")
	}
	if _, ok := LastIndex(empty); ok {
		t.Error("LastIndex() on empty queue should be false")
	}

	q := newTestQueue(t, "a", "b", "c")
	if got, _ := FirstIndex(q); got != 0 {
		t.Errorf("FirstIndex() = %d, want 0", got)
	}
	if got, _ := LastIndex(q); got != 2 {
		t.Errorf("LastIndex() = %d, want 2", got)
	}
}

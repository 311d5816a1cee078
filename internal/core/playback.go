package core

import "math/rand/v2"

// Mode holds the playback advance toggles.
type Mode struct {
	Loop    bool `json:"loop"`
	Shuffle bool `json:"shuffle"`
}

// Relative jump bounds offered by the numeric shortcuts.
const (
	MinJump = -5
	MaxJump = 5
)

// NextIndex decides which item plays after the current one. It reports
// false when playback should stop, leaving the cursor where it is.
func NextIndex(q *Queue, mode Mode, rng *rand.Rand) (int, bool) {
	n := q.Len()
	cur := q.CurrentIndex()
	if n == 0 {
		return NoIndex, false
	}

	if mode.Loop && cur != NoIndex {
		return cur, true
	}

	if mode.Shuffle {
		if n == 1 {
			return 0, true
		}
		intN := rand.IntN
		if rng != nil {
			intN = rng.IntN
		}
		next := cur
		for next == cur {
			next = intN(n)
		}
		return next, true
	}

	if cur+1 < n {
		return cur + 1, true
	}
	return cur, false
}

// PrevIndex returns the previous index, or false when the current item
// should restart from the beginning instead.
func PrevIndex(q *Queue) (int, bool) {
	cur := q.CurrentIndex()
	if cur > 0 {
		return cur - 1, true
	}
	return cur, false
}

// JumpTarget returns the index delta items away from the cursor. Deltas
// outside [MinJump, MaxJump] and targets outside the queue are rejected.
func JumpTarget(q *Queue, delta int) (int, bool) {
	if delta == 0 || delta < MinJump || delta > MaxJump {
		return NoIndex, false
	}
	target := q.CurrentIndex() + delta
	if target < 0 || target >= q.Len() {
		return NoIndex, false
	}
	return target, true
}

// FirstIndex returns the first index, or false on an empty queue.
func FirstIndex(q *Queue) (int, bool) {
	if q.IsEmpty() {
		return NoIndex, false
	}
	return 0, true
}

// LastIndex returns the last index, or false on an empty queue.
func LastIndex(q *Queue) (int, bool) {
	if q.IsEmpty() {
		return NoIndex, false
	}
	return q.Len() - 1, true
}

// Package lock implements the press-and-hold gesture that toggles the
// control lock.
//
// Terminals do not report key release, so a hold is a run of presses
// (key auto-repeat) with no gap longer than ReleaseGap. The gesture fires
// once the run has lasted Duration.
package lock

import "time"

const (
	// DefaultDuration is how long the key must be held.
	DefaultDuration = 4 * time.Second

	// DefaultReleaseGap covers the initial auto-repeat delay of most
	// terminals.
	DefaultReleaseGap = 600 * time.Millisecond

	// PollInterval is how often callers should Poll while a hold is active.
	PollInterval = 50 * time.Millisecond
)

// Hold tracks a single long-press gesture.
type Hold struct {
	Duration   time.Duration
	ReleaseGap time.Duration

	start     time.Time
	lastPress time.Time
	active    bool
	fired     bool
}

// New returns a Hold with the given duration. Non-positive values use
// DefaultDuration.
func New(d time.Duration) *Hold {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Hold{Duration: d, ReleaseGap: DefaultReleaseGap}
}

// Press records a key press at now. The first press starts the hold;
// later presses within ReleaseGap extend it.
func (h *Hold) Press(now time.Time) {
	if !h.active || now.Sub(h.lastPress) > h.gap() {
		h.start = now
		h.active = true
		h.fired = false
	}
	h.lastPress = now
}

// Release cancels the hold.
func (h *Hold) Release() {
	h.active = false
	h.fired = false
}

// Active reports whether a hold is in progress.
func (h *Hold) Active() bool {
	return h.active
}

// Poll reports the hold progress in [0, 1] and whether the gesture fired
// on this call. It fires at most once per hold. A hold with no press
// within ReleaseGap is released.
func (h *Hold) Poll(now time.Time) (progress float64, fired bool) {
	if !h.active {
		return 0, false
	}
	if now.Sub(h.lastPress) > h.gap() {
		h.Release()
		return 0, false
	}

	elapsed := now.Sub(h.start)
	if elapsed >= h.Duration {
		if h.fired {
			return 1, false
		}
		h.fired = true
		return 1, true
	}
	return float64(elapsed) / float64(h.Duration), false
}

func (h *Hold) gap() time.Duration {
	if h.ReleaseGap <= 0 {
		return DefaultReleaseGap
	}
	return h.ReleaseGap
}

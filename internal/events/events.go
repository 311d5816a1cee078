// Package events describes queue and playback state changes and formats
// them for the event log and CLI output.
package events

import (
	"sync"
	"time"

	"github.com/tessro/tubeq/internal/core"
)

// EventType represents the kind of state change.
type EventType int

const (
	EventPlay EventType = iota
	EventStop
	EventPause
	EventResume
	EventEnded
	EventAdded
	EventRemoved
	EventShortExcluded
	EventPlaylistAdded
	EventDeduped
	EventSorted
	EventShuffled
	EventCleared
	EventImported
	EventExported
	EventModeChanged
	EventLocked
	EventUnlocked
	EventNotice
)

// Event represents a single state change. Item is a copy of the affected
// item, if any.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Item      *core.Item
	Index     int
	Count     int
	Message   string
	Mode      core.Mode
}

// Sink receives events. It must not block.
type Sink func(Event)

// Log keeps the most recent events in memory.
type Log struct {
	mu     sync.Mutex
	events []Event
	max    int
}

// NewLog creates a log holding at most max events.
func NewLog(max int) *Log {
	if max <= 0 {
		max = 100
	}
	return &Log{max: max}
}

// Add appends e, dropping the oldest event when full.
func (l *Log) Add(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	if len(l.events) > l.max {
		l.events = l.events[len(l.events)-l.max:]
	}
}

// Sink returns a Sink that appends to the log.
func (l *Log) Sink() Sink {
	return l.Add
}

// Recent returns up to n events, newest first.
func (l *Log) Recent(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.events) {
		n = len(l.events)
	}
	out := make([]Event, 0, n)
	for i := len(l.events) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.events[i])
	}
	return out
}

// Len returns the number of stored events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Fanout returns a Sink that forwards to every non-nil sink.
func Fanout(sinks ...Sink) Sink {
	return func(e Event) {
		for _, s := range sinks {
			if s != nil {
				s(e)
			}
		}
	}
}

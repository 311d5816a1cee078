// Package player holds the player backends that do not need an external
// process.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/tessro/tubeq/internal/core"
)

// Nop is a silent player that only tracks state. It is used when no
// playback backend is configured.
type Nop struct {
	mu       sync.Mutex
	videoID  string
	state    core.PlayerState
	position time.Duration
	ended    chan struct{}
}

// NewNop creates a silent player.
func NewNop() *Nop {
	return &Nop{ended: make(chan struct{}, 1)}
}

func (n *Nop) Load(_ context.Context, videoID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.videoID = videoID
	n.position = 0
	n.state = core.StatePlaying
	return nil
}

func (n *Nop) Play(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.videoID != "" {
		n.state = core.StatePlaying
	}
	return nil
}

func (n *Nop) Pause(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == core.StatePlaying {
		n.state = core.StatePaused
	}
	return nil
}

func (n *Nop) Stop(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state = core.StateStopped
	n.position = 0
	return nil
}

func (n *Nop) Seek(_ context.Context, pos time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.position = max(pos, 0)
	return nil
}

func (n *Nop) Position(context.Context) (time.Duration, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.position, nil
}

func (n *Nop) State(context.Context) (core.PlayerState, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state, nil
}

// VideoID returns the loaded video id.
func (n *Nop) VideoID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.videoID
}

// Finish simulates the loaded video reaching its end.
func (n *Nop) Finish() {
	n.mu.Lock()
	n.state = core.StateEnded
	n.mu.Unlock()
	select {
	case n.ended <- struct{}{}:
	default:
	}
}

func (n *Nop) Ended() <-chan struct{} {
	return n.ended
}

func (n *Nop) Close() error {
	return nil
}

var _ core.Player = (*Nop)(nil)

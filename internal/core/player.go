package core

import (
	"context"
	"time"
)

// PlayerState mirrors the state reported by the embedded player.
type PlayerState int

const (
	StateUnstarted PlayerState = iota
	StatePlaying
	StatePaused
	StateStopped
	StateEnded
	StateBuffering
)

func (s PlayerState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateEnded:
		return "ended"
	case StateBuffering:
		return "buffering"
	default:
		return "unstarted"
	}
}

// Player defines the capability surface of the video player.
type Player interface {
	// Playback control
	Load(ctx context.Context, videoID string) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Seek(ctx context.Context, position time.Duration) error

	// State queries
	Position(ctx context.Context) (time.Duration, error)
	State(ctx context.Context) (PlayerState, error)

	// Ended fires once each time the loaded video plays to completion.
	Ended() <-chan struct{}

	Close() error
}

package config

import "github.com/tessro/tubeq/internal/core"

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Queue: QueueConfig{
			Capacity: core.MaxCapacity,
		},
		Player: PlayerConfig{
			Backend:  "mpv",
			MPVPath:  "mpv",
			SeekStep: 2,
		},
		Lookup: LookupConfig{
			OEmbedURL:   "https://noembed.com/embed",
			Timeout:     10,
			MaxRetries:  3,
			Concurrency: 8,
		},
		Lock: LockConfig{
			HoldMS: 4000,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 500,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Queue
	if c.Queue.Capacity == 0 {
		c.Queue.Capacity = d.Queue.Capacity
	}

	// Player
	if c.Player.Backend == "" {
		c.Player.Backend = d.Player.Backend
	}
	if c.Player.MPVPath == "" {
		c.Player.MPVPath = d.Player.MPVPath
	}
	if c.Player.SeekStep == 0 {
		c.Player.SeekStep = d.Player.SeekStep
	}

	// Lookup
	if c.Lookup.OEmbedURL == "" {
		c.Lookup.OEmbedURL = d.Lookup.OEmbedURL
	}
	if c.Lookup.Timeout == 0 {
		c.Lookup.Timeout = d.Lookup.Timeout
	}
	if c.Lookup.Concurrency == 0 {
		c.Lookup.Concurrency = d.Lookup.Concurrency
	}

	// Lock
	if c.Lock.HoldMS == 0 {
		c.Lock.HoldMS = d.Lock.HoldMS
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

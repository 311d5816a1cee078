package config

// Config is the root configuration structure.
type Config struct {
	Queue  QueueConfig  `toml:"queue" json:"queue"`
	Player PlayerConfig `toml:"player" json:"player"`
	Lookup LookupConfig `toml:"lookup" json:"lookup"`
	Lock   LockConfig   `toml:"lock" json:"lock"`
	TUI    TUIConfig    `toml:"tui" json:"tui"`
	Log    LogConfig    `toml:"log" json:"log"`
}

// QueueConfig holds queue settings.
type QueueConfig struct {
	Capacity int `toml:"capacity" json:"capacity"`
	// File is the playlist file loaded at startup and written on save.
	File string `toml:"file" json:"file"`
	// Loop and Shuffle are the initial playback modes.
	Loop    bool `toml:"loop" json:"loop"`
	Shuffle bool `toml:"shuffle" json:"shuffle"`
}

// PlayerConfig holds playback backend settings.
type PlayerConfig struct {
	Backend  string `toml:"backend" json:"backend"`
	MPVPath  string `toml:"mpv_path" json:"mpv_path"`
	Socket   string `toml:"socket" json:"socket"`
	Video    bool   `toml:"video" json:"video"`
	SeekStep int    `toml:"seek_step" json:"seek_step"` // seconds
}

// LookupConfig holds metadata lookup settings.
type LookupConfig struct {
	OEmbedURL     string `toml:"oembed_url" json:"oembed_url"`
	ProxyURL      string `toml:"proxy_url" json:"proxy_url"`
	Timeout       int    `toml:"timeout" json:"timeout"` // seconds
	MaxRetries    int    `toml:"max_retries" json:"max_retries"`
	IncludeShorts bool   `toml:"include_shorts" json:"include_shorts"`
	PublishedAt   bool   `toml:"published_at" json:"published_at"`
	Concurrency   int    `toml:"concurrency" json:"concurrency"`
}

// LockConfig holds long-press lock settings.
type LockConfig struct {
	HoldMS int `toml:"hold_ms" json:"hold_ms"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme" json:"theme"`
	RefreshInterval int    `toml:"refresh_interval" json:"refresh_interval"` // milliseconds
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

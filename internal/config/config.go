package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.tubeqrc, $XDG_CONFIG_HOME/tubeq/config.toml, ~/.config/tubeq/config.toml
func Load() (*Config, error) {
	cfg := Default()

	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Path returns the config file that Load would read, or "" if none exists.
func Path() string {
	return findConfigFile()
}

// DefaultPath is where a new config file is created.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tubeqrc"
	}
	return filepath.Join(home, ".tubeqrc")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".tubeqrc"),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "tubeq", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Queue
	envInt("TUBEQ_QUEUE_CAPACITY", &cfg.Queue.Capacity)
	envString("TUBEQ_QUEUE_FILE", &cfg.Queue.File)

	// Player
	envString("TUBEQ_PLAYER_BACKEND", &cfg.Player.Backend)
	envString("TUBEQ_PLAYER_MPV_PATH", &cfg.Player.MPVPath)
	envString("TUBEQ_PLAYER_SOCKET", &cfg.Player.Socket)
	envBool("TUBEQ_PLAYER_VIDEO", &cfg.Player.Video)
	envInt("TUBEQ_PLAYER_SEEK_STEP", &cfg.Player.SeekStep)

	// Lookup
	envString("TUBEQ_LOOKUP_OEMBED_URL", &cfg.Lookup.OEmbedURL)
	envString("TUBEQ_LOOKUP_PROXY_URL", &cfg.Lookup.ProxyURL)
	envInt("TUBEQ_LOOKUP_TIMEOUT", &cfg.Lookup.Timeout)
	envInt("TUBEQ_LOOKUP_MAX_RETRIES", &cfg.Lookup.MaxRetries)
	envBool("TUBEQ_LOOKUP_INCLUDE_SHORTS", &cfg.Lookup.IncludeShorts)
	envBool("TUBEQ_LOOKUP_PUBLISHED_AT", &cfg.Lookup.PublishedAt)
	envInt("TUBEQ_LOOKUP_CONCURRENCY", &cfg.Lookup.Concurrency)

	// Lock
	envInt("TUBEQ_LOCK_HOLD_MS", &cfg.Lock.HoldMS)

	// TUI
	envString("TUBEQ_TUI_THEME", &cfg.TUI.Theme)
	envInt("TUBEQ_TUI_REFRESH_INTERVAL", &cfg.TUI.RefreshInterval)

	// Log
	envString("TUBEQ_LOG_LEVEL", &cfg.Log.Level)
	envString("TUBEQ_LOG_FILE", &cfg.Log.File)
}

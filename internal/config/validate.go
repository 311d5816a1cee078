package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/tessro/tubeq/internal/core"
	tqerrors "github.com/tessro/tubeq/internal/errors"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Queue.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("queue: %w", err))
	}
	if err := c.Player.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("player: %w", err))
	}
	if err := c.Lookup.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("lookup: %w", err))
	}
	if err := c.Lock.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("lock: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return tqerrors.WithSuggestion(
			fmt.Errorf("%w: %w", tqerrors.ErrInvalidConfig, err),
			"Fix the listed keys with 'tubeq config set' or 'tubeq config edit'",
		)
	}
	return nil
}

// Validate checks QueueConfig for errors.
func (c *QueueConfig) Validate() error {
	if c.Capacity < 1 || c.Capacity > core.MaxCapacity {
		return fmt.Errorf("capacity must be between 1 and %d", core.MaxCapacity)
	}
	return nil
}

// Validate checks PlayerConfig for errors.
func (c *PlayerConfig) Validate() error {
	switch c.Backend {
	case "", "mpv", "none":
		// valid
	default:
		return fmt.Errorf("invalid backend: %s (must be mpv or none)", c.Backend)
	}
	if c.SeekStep < 0 {
		return errors.New("seek_step must be non-negative")
	}
	return nil
}

// Validate checks LookupConfig for errors.
func (c *LookupConfig) Validate() error {
	for name, raw := range map[string]string{"oembed_url": c.OEmbedURL, "proxy_url": c.ProxyURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid %s: scheme must be http or https", name)
		}
	}
	if c.Timeout < 0 {
		return errors.New("timeout must be non-negative")
	}
	if c.MaxRetries < 0 {
		return errors.New("max_retries must be non-negative")
	}
	if c.Concurrency < 0 {
		return errors.New("concurrency must be non-negative")
	}
	return nil
}

// Validate checks LockConfig for errors.
func (c *LockConfig) Validate() error {
	if c.HoldMS < 0 {
		return errors.New("hold_ms must be non-negative")
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "latte", "frappe", "macchiato", "mocha":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, latte, frappe, macchiato, or mocha)", c.Theme)
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("engine: %w", err))
	}
	if err := c.Markers.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("markers: %w", err))
	}
	if err := c.Catalog.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("catalog: %w", err))
	}
	if err := validateRegionMusic(c.RegionMusic); err != nil {
		errs = append(errs, fmt.Errorf("region_music: %w", err))
	}
	if err := c.Bridge.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bridge: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks EngineConfig for errors.
func (c *EngineConfig) Validate() error {
	if c.DeviceTickMs < 0 || c.RegionTickMs < 0 || c.TeleportDelayMs < 0 {
		return errors.New("tick intervals must be non-negative")
	}
	if c.HearingRadius < 0 {
		return errors.New("hearing_radius must be non-negative")
	}
	if c.Volume < 0 || c.Volume > 4 {
		return errors.New("volume must be between 0 and 4")
	}
	if c.Pitch < 0 || c.Pitch > 2 {
		return errors.New("pitch must be between 0 and 2")
	}
	if strings.ContainsAny(c.SoundNamespace, " :") {
		return fmt.Errorf("invalid sound_namespace: %q", c.SoundNamespace)
	}
	return nil
}

// Validate checks MarkersConfig for errors.
func (c *MarkersConfig) Validate() error {
	if c.PrimaryOffset < 0 || c.AlternateOffset < 0 {
		return errors.New("marker offsets must be non-negative")
	}
	return nil
}

// Validate checks CatalogConfig for errors.
func (c *CatalogConfig) Validate() error {
	switch c.Driver {
	case "", "json", "sqlite":
		// valid
	default:
		return fmt.Errorf("invalid driver: %s (must be json or sqlite)", c.Driver)
	}
	return nil
}

func validateRegionMusic(entries []RegionMusic) error {
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Region) == "" {
			return fmt.Errorf("entry %d: region is required", i)
		}
		if strings.TrimSpace(e.Track) == "" {
			return fmt.Errorf("entry %d: track is required", i)
		}
		key := strings.ToLower(e.Region)
		if seen[key] {
			return fmt.Errorf("duplicate region: %s", e.Region)
		}
		seen[key] = true
	}
	return nil
}

// Validate checks BridgeConfig for errors.
func (c *BridgeConfig) Validate() error {
	if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("invalid path: %s (must start with /)", c.Path)
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light", "mocha", "macchiato", "frappe", "latte":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, light, or a catppuccin flavor)", c.Theme)
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

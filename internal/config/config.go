package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.jukeboxrc, $XDG_CONFIG_HOME/jukebox/config.toml, ~/.config/jukebox/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	path := FindConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as TOML to path.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintln(f, "# Jukebox Configuration")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// FindConfigFile returns the first existing config file path.
func FindConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".jukeboxrc"),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "jukebox", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// DataDir returns the directory holding the catalog and persisted engine state.
func DataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "jukebox")
}

// applyEnvOverrides loads .env and applies JUKEBOX_* environment variables.
func applyEnvOverrides(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	sections := []struct {
		prefix string
		target any
	}{
		{"JUKEBOX_ENGINE_", &cfg.Engine},
		{"JUKEBOX_MARKERS_", &cfg.Markers},
		{"JUKEBOX_CATALOG_", &cfg.Catalog},
		{"JUKEBOX_BRIDGE_", &cfg.Bridge},
		{"JUKEBOX_TUI_", &cfg.TUI},
		{"JUKEBOX_LOG_", &cfg.Log},
	}
	for _, s := range sections {
		if err := env.ParseWithOptions(s.target, env.Options{Prefix: s.prefix}); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	return nil
}

// DeviceTick returns the device session tick interval.
func (c *EngineConfig) DeviceTick() time.Duration {
	return time.Duration(c.DeviceTickMs) * time.Millisecond
}

// RegionTick returns the region loop check interval.
func (c *EngineConfig) RegionTick() time.Duration {
	return time.Duration(c.RegionTickMs) * time.Millisecond
}

// TeleportDelay returns how long region checks wait after a teleport.
func (c *EngineConfig) TeleportDelay() time.Duration {
	return time.Duration(c.TeleportDelayMs) * time.Millisecond
}

// CatalogPath returns the configured catalog path or the default for the driver.
func (c *CatalogConfig) CatalogPath() string {
	if c.Path != "" {
		return c.Path
	}
	if c.Driver == "sqlite" {
		return filepath.Join(DataDir(), "discs.db")
	}
	return filepath.Join(DataDir(), "discs.json")
}

// SetRegionMusic adds or replaces the mapping for region.
func (c *Config) SetRegionMusic(region, track string, priority int) {
	for i := range c.RegionMusic {
		if strings.EqualFold(c.RegionMusic[i].Region, region) {
			c.RegionMusic[i].Track = track
			c.RegionMusic[i].Priority = priority
			return
		}
	}
	c.RegionMusic = append(c.RegionMusic, RegionMusic{Region: region, Track: track, Priority: priority})
}

// RemoveRegionMusic deletes the mapping for region. It returns false if none existed.
func (c *Config) RemoveRegionMusic(region string) bool {
	for i := range c.RegionMusic {
		if strings.EqualFold(c.RegionMusic[i].Region, region) {
			c.RegionMusic = append(c.RegionMusic[:i], c.RegionMusic[i+1:]...)
			return true
		}
	}
	return false
}

// LoopPath returns the file the loop set persists to.
func (c *EngineConfig) LoopPath() string {
	if c.LoopFile != "" {
		return c.LoopFile
	}
	return filepath.Join(DataDir(), "loops.json")
}

package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			DeviceTickMs:    500,
			RegionTickMs:    1000,
			TeleportDelayMs: 100,
			HearingRadius:   64,
			Volume:          1.0,
			Pitch:           1.0,
			SoundNamespace:  "jukebox",
		},
		Markers: MarkersConfig{
			PrimaryOffset:       1.2,
			AlternateOffset:     1.5,
			AlternateCapability: "alternate-client",
		},
		Catalog: CatalogConfig{
			Driver: "json",
		},
		Bridge: BridgeConfig{
			Listen: ":8765",
			Path:   "/host",
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Engine
	if c.Engine.DeviceTickMs == 0 {
		c.Engine.DeviceTickMs = d.Engine.DeviceTickMs
	}
	if c.Engine.RegionTickMs == 0 {
		c.Engine.RegionTickMs = d.Engine.RegionTickMs
	}
	if c.Engine.TeleportDelayMs == 0 {
		c.Engine.TeleportDelayMs = d.Engine.TeleportDelayMs
	}
	if c.Engine.HearingRadius == 0 {
		c.Engine.HearingRadius = d.Engine.HearingRadius
	}
	if c.Engine.Volume == 0 {
		c.Engine.Volume = d.Engine.Volume
	}
	if c.Engine.Pitch == 0 {
		c.Engine.Pitch = d.Engine.Pitch
	}
	if c.Engine.SoundNamespace == "" {
		c.Engine.SoundNamespace = d.Engine.SoundNamespace
	}

	// Markers
	if c.Markers.PrimaryOffset == 0 {
		c.Markers.PrimaryOffset = d.Markers.PrimaryOffset
	}
	if c.Markers.AlternateOffset == 0 {
		c.Markers.AlternateOffset = d.Markers.AlternateOffset
	}
	if c.Markers.AlternateCapability == "" {
		c.Markers.AlternateCapability = d.Markers.AlternateCapability
	}

	// Catalog
	if c.Catalog.Driver == "" {
		c.Catalog.Driver = d.Catalog.Driver
	}

	// Bridge
	if c.Bridge.Listen == "" {
		c.Bridge.Listen = d.Bridge.Listen
	}
	if c.Bridge.Path == "" {
		c.Bridge.Path = d.Bridge.Path
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

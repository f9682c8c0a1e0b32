package config

// Config is the root configuration structure.
type Config struct {
	Engine      EngineConfig  `toml:"engine"`
	Markers     MarkersConfig `toml:"markers"`
	Catalog     CatalogConfig `toml:"catalog"`
	RegionMusic []RegionMusic `toml:"region_music"`
	Bridge      BridgeConfig  `toml:"bridge"`
	TUI         TUIConfig     `toml:"tui"`
	Log         LogConfig     `toml:"log"`
}

// EngineConfig holds playback session engine settings.
type EngineConfig struct {
	DeviceTickMs    int     `toml:"device_tick_ms" env:"DEVICE_TICK_MS"`
	RegionTickMs    int     `toml:"region_tick_ms" env:"REGION_TICK_MS"`
	TeleportDelayMs int     `toml:"teleport_delay_ms" env:"TELEPORT_DELAY_MS"`
	HearingRadius   float64 `toml:"hearing_radius" env:"HEARING_RADIUS"`
	Volume          float64 `toml:"volume" env:"VOLUME"`
	Pitch           float64 `toml:"pitch" env:"PITCH"`
	SoundNamespace  string  `toml:"sound_namespace" env:"SOUND_NAMESPACE"`
	LoopFile        string  `toml:"loop_file" env:"LOOP_FILE"`
}

// MarkersConfig holds now-playing marker settings.
type MarkersConfig struct {
	PrimaryOffset       float64 `toml:"primary_offset" env:"PRIMARY_OFFSET"`
	AlternateOffset     float64 `toml:"alternate_offset" env:"ALTERNATE_OFFSET"`
	AlternateCapability string  `toml:"alternate_capability" env:"ALTERNATE_CAPABILITY"`
}

// CatalogConfig selects where tracks are stored.
type CatalogConfig struct {
	Driver string `toml:"driver" env:"DRIVER"`
	Path   string `toml:"path" env:"PATH"`
}

// RegionMusic maps a region to the track played inside it.
type RegionMusic struct {
	Region   string `toml:"region"`
	Track    string `toml:"track"`
	Priority int    `toml:"priority,omitempty"`
}

// BridgeConfig holds host bridge settings.
type BridgeConfig struct {
	Listen string `toml:"listen" env:"LISTEN"`
	Path   string `toml:"path" env:"PATH"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme" env:"THEME"`
	RefreshInterval int    `toml:"refresh_interval" env:"REFRESH_INTERVAL"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"LEVEL"`
	File  string `toml:"file" env:"FILE"`
}

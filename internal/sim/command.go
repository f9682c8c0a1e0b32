package sim

import "github.com/tessro/jukebox/internal/core"

// CommandKind names a side effect the engine asked the world to perform.
type CommandKind string

const (
	CommandSoundPlay        CommandKind = "sound.play"
	CommandSoundStop        CommandKind = "sound.stop"
	CommandMarkerSpawn      CommandKind = "marker.spawn"
	CommandMarkerRemove     CommandKind = "marker.remove"
	CommandMarkerText       CommandKind = "marker.text"
	CommandMarkerVisibility CommandKind = "marker.visibility"
	CommandNotify           CommandKind = "notify"
	CommandEffect           CommandKind = "effect"
)

// Command is one recorded side effect. Only the fields relevant to Kind are set.
type Command struct {
	Kind     CommandKind    `json:"type"`
	Scope    *core.Scope    `json:"scope,omitempty"`
	Key      string         `json:"key,omitempty"`
	Volume   float32        `json:"volume,omitempty"`
	Pitch    float32        `json:"pitch,omitempty"`
	Marker   core.MarkerID  `json:"marker,omitempty"`
	Position *core.Position `json:"position,omitempty"`
	Text     string         `json:"text,omitempty"`
	Viewer   core.PlayerID  `json:"viewer,omitempty"`
	Hidden   bool           `json:"hidden,omitempty"`
	Note     float64        `json:"note,omitempty"`
}

package core

import "time"

// PlayerID identifies a connected player.
type PlayerID string

// MarkerID identifies a spawned visual marker entity.
type MarkerID string

// Capability is a client feature tag resolved per viewer.
type Capability string

// DeviceState describes what the world reports about a device block.
type DeviceState int

const (
	// DeviceUnobservable means the device's area is not loaded.
	DeviceUnobservable DeviceState = iota
	// DeviceHolding means the device holds a track.
	DeviceHolding
	// DeviceEmpty means the device exists but holds nothing.
	DeviceEmpty
	// DeviceAbsent means the block is no longer a device.
	DeviceAbsent
)

func (s DeviceState) String() string {
	switch s {
	case DeviceHolding:
		return "holding"
	case DeviceEmpty:
		return "empty"
	case DeviceAbsent:
		return "absent"
	default:
		return "unobservable"
	}
}

// Scope selects who hears a sound: everyone near a location, or one player.
type Scope struct {
	Location *Location `json:"location,omitempty"`
	Radius   float64   `json:"radius,omitempty"`
	Player   PlayerID  `json:"player,omitempty"`
}

// AtLocation scopes a sound to listeners within radius of loc.
func AtLocation(loc Location, radius float64) Scope {
	return Scope{Location: &loc, Radius: radius}
}

// ForPlayer scopes a sound to a single player.
func ForPlayer(id PlayerID) Scope {
	return Scope{Player: id}
}

func (s Scope) String() string {
	if s.Location != nil {
		return "near " + s.Location.String()
	}
	return "player " + string(s.Player)
}

// Catalog resolves track ids to catalog entries.
type Catalog interface {
	Track(id string) (*Track, bool)
}

// SpatialQuery resolves the geofenced regions containing a position.
// The order of the returned ids is defined by the implementation.
type SpatialQuery interface {
	RegionsContaining(pos Position) ([]string, error)
}

// Sound plays and stops namespaced sounds.
type Sound interface {
	Play(scope Scope, key string, volume, pitch float32) error
	// Stop stops key within scope. An empty key stops every track sound.
	Stop(scope Scope, key string) error
}

// Markers manages non-persistent visual marker entities.
type Markers interface {
	Spawn(pos Position) (MarkerID, error)
	Remove(id MarkerID) error
	Exists(id MarkerID) bool
	SetText(id MarkerID, text string) error
	SetVisibility(viewer PlayerID, id MarkerID, hidden bool) error
}

// Handle cancels a scheduled callback.
type Handle interface {
	Cancel()
}

// Scheduler runs callbacks on the simulation thread.
type Scheduler interface {
	RunRepeating(interval time.Duration, fn func()) Handle
	RunLater(delay time.Duration, fn func()) Handle
	Now() time.Time
}

// World answers questions about devices, areas and players.
type World interface {
	Device(loc Location) DeviceState
	// Viewers returns the players currently relevant to markers in a world.
	Viewers(world string) []PlayerID
	PlayerPosition(id PlayerID) (Position, bool)
	// Effect emits a cosmetic note effect at pos.
	Effect(pos Position, note float64)
}

// Notifier delivers short status messages to players.
type Notifier interface {
	Notify(player PlayerID, msg string)
	NotifyNear(loc Location, radius float64, msg string)
}

// CapabilityProvider reports whether a viewer's client supports a capability.
type CapabilityProvider interface {
	Supports(viewer PlayerID, c Capability) bool
}

// NoCapabilities is the provider used when no probe is available.
type NoCapabilities struct{}

// Supports always returns false.
func (NoCapabilities) Supports(PlayerID, Capability) bool { return false }

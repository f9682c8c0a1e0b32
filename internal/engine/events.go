package engine

import "github.com/tessro/jukebox/internal/core"

// Event is a notification from the host world.
type Event interface {
	isEvent()
}

// DeviceGainedTrack reports that a device at Location now holds TrackID.
type DeviceGainedTrack struct {
	Location core.Location
	TrackID  string
	Player   core.PlayerID
}

// DeviceLostTrack reports that a device was emptied.
type DeviceLostTrack struct {
	Location core.Location
}

// DeviceDestroyed reports that a device block is gone.
type DeviceDestroyed struct {
	Location core.Location
}

// LoopToggled reports a loop-toggle interaction with a device.
type LoopToggled struct {
	Location core.Location
	Player   core.PlayerID
}

// PlayerMoved reports a position change.
type PlayerMoved struct {
	Player core.PlayerID
	From   core.Position
	To     core.Position
}

// PlayerTeleported reports a teleport. The destination is read from the world
// after a short delay.
type PlayerTeleported struct {
	Player core.PlayerID
}

// PlayerJoined reports a new connection.
type PlayerJoined struct {
	Player core.PlayerID
}

// PlayerQuit reports a disconnection.
type PlayerQuit struct {
	Player core.PlayerID
}

func (DeviceGainedTrack) isEvent() {}
func (DeviceLostTrack) isEvent()   {}
func (DeviceDestroyed) isEvent()   {}
func (LoopToggled) isEvent()       {}
func (PlayerMoved) isEvent()       {}
func (PlayerTeleported) isEvent()  {}
func (PlayerJoined) isEvent()      {}
func (PlayerQuit) isEvent()        {}

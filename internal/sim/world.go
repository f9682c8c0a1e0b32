// Package sim is an in-memory world that implements every collaborator the
// engine consumes. It records the side effects it is asked to perform, which
// makes it usable both as a test double and as the mirror behind the host bridge.
package sim

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/tessro/jukebox/internal/core"
	jberrors "github.com/tessro/jukebox/internal/errors"
)

// Player is a connected player.
type Player struct {
	ID           core.PlayerID
	Position     core.Position
	Capabilities map[core.Capability]bool
}

// Region is an axis-aligned box.
type Region struct {
	Name string
	Min  core.Position
	Max  core.Position
}

// Contains reports whether pos lies inside the region, inclusive.
func (r Region) Contains(pos core.Position) bool {
	return pos.World == r.Min.World &&
		pos.X >= r.Min.X && pos.X <= r.Max.X &&
		pos.Y >= r.Min.Y && pos.Y <= r.Max.Y &&
		pos.Z >= r.Min.Z && pos.Z <= r.Max.Z
}

// Marker is a spawned marker entity.
type Marker struct {
	ID         core.MarkerID
	Position   core.Position
	Text       string
	HiddenFrom map[core.PlayerID]bool
}

// World is an in-memory world. It is not safe for concurrent use.
type World struct {
	devices map[core.Location]string
	loaded  map[core.Chunk]bool
	players map[core.PlayerID]*Player
	regions []Region
	markers map[core.MarkerID]*Marker

	commands  []Command
	onCommand func(Command)

	// QueryErr, when set, is returned by RegionsContaining.
	QueryErr error
	// NewMarkerID generates marker ids.
	NewMarkerID func() core.MarkerID
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		devices: make(map[core.Location]string),
		loaded:  make(map[core.Chunk]bool),
		players: make(map[core.PlayerID]*Player),
		markers: make(map[core.MarkerID]*Marker),
		NewMarkerID: func() core.MarkerID {
			return core.MarkerID(uuid.NewString())
		},
	}
}

// OnCommand registers a callback invoked for every recorded command.
func (w *World) OnCommand(fn func(Command)) {
	w.onCommand = fn
}

func (w *World) record(c Command) {
	w.commands = append(w.commands, c)
	if w.onCommand != nil {
		w.onCommand(c)
	}
}

// Commands returns recorded commands, optionally filtered by kind.
func (w *World) Commands(kinds ...CommandKind) []Command {
	if len(kinds) == 0 {
		return append([]Command(nil), w.commands...)
	}
	var out []Command
	for _, c := range w.commands {
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Count returns how many commands of kind were recorded.
func (w *World) Count(kind CommandKind) int {
	return len(w.Commands(kind))
}

// ResetCommands clears the command log.
func (w *World) ResetCommands() {
	w.commands = nil
}

// Devices

// PlaceDevice puts an empty device at loc.
func (w *World) PlaceDevice(loc core.Location) {
	if _, ok := w.devices[loc]; !ok {
		w.devices[loc] = ""
	}
}

// Insert places trackID into the device at loc, creating the device if needed.
func (w *World) Insert(loc core.Location, trackID string) {
	w.devices[loc] = trackID
}

// Eject empties the device at loc.
func (w *World) Eject(loc core.Location) {
	if _, ok := w.devices[loc]; ok {
		w.devices[loc] = ""
	}
}

// Break removes the device at loc.
func (w *World) Break(loc core.Location) {
	delete(w.devices, loc)
}

// Held returns the track held at loc.
func (w *World) Held(loc core.Location) (string, bool) {
	id, ok := w.devices[loc]
	return id, ok && id != ""
}

// Device implements core.World.
func (w *World) Device(loc core.Location) core.DeviceState {
	if !w.loaded[loc.Chunk()] {
		return core.DeviceUnobservable
	}
	id, ok := w.devices[loc]
	switch {
	case !ok:
		return core.DeviceAbsent
	case id == "":
		return core.DeviceEmpty
	default:
		return core.DeviceHolding
	}
}

// Chunks

// Load marks a chunk as loaded.
func (w *World) Load(c core.Chunk) {
	w.loaded[c] = true
}

// LoadAround loads the chunk containing loc.
func (w *World) LoadAround(loc core.Location) {
	w.Load(loc.Chunk())
}

// Unload marks a chunk as unloaded and discards the non-persistent markers in it.
func (w *World) Unload(c core.Chunk) {
	delete(w.loaded, c)
	for id, m := range w.markers {
		if m.Position.Block().Chunk() == c {
			delete(w.markers, id)
		}
	}
}

// Loaded reports whether a chunk is loaded.
func (w *World) Loaded(c core.Chunk) bool {
	return w.loaded[c]
}

// Players

// Join adds a player at pos with the given capabilities.
func (w *World) Join(id core.PlayerID, pos core.Position, caps ...core.Capability) {
	p := &Player{ID: id, Position: pos, Capabilities: make(map[core.Capability]bool)}
	for _, c := range caps {
		p.Capabilities[c] = true
	}
	w.players[id] = p
}

// Quit removes a player.
func (w *World) Quit(id core.PlayerID) {
	delete(w.players, id)
}

// Move sets a player's position and returns the previous one.
func (w *World) Move(id core.PlayerID, pos core.Position) (core.Position, bool) {
	p, ok := w.players[id]
	if !ok {
		return core.Position{}, false
	}
	prev := p.Position
	p.Position = pos
	return prev, true
}

// PlayerPosition implements core.World.
func (w *World) PlayerPosition(id core.PlayerID) (core.Position, bool) {
	p, ok := w.players[id]
	if !ok {
		return core.Position{}, false
	}
	return p.Position, true
}

// Viewers implements core.World.
func (w *World) Viewers(world string) []core.PlayerID {
	var out []core.PlayerID
	for id, p := range w.players {
		if p.Position.World == world {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Supports implements core.CapabilityProvider.
func (w *World) Supports(viewer core.PlayerID, c core.Capability) bool {
	p, ok := w.players[viewer]
	return ok && p.Capabilities[c]
}

// Effect implements core.World.
func (w *World) Effect(pos core.Position, note float64) {
	w.record(Command{Kind: CommandEffect, Position: &pos, Note: note})
}

// Regions

// DefineRegion adds or replaces a region. Query order is definition order.
func (w *World) DefineRegion(r Region) {
	for i := range w.regions {
		if w.regions[i].Name == r.Name {
			w.regions[i] = r
			return
		}
	}
	w.regions = append(w.regions, r)
}

// RegionsContaining implements core.SpatialQuery.
func (w *World) RegionsContaining(pos core.Position) ([]string, error) {
	if w.QueryErr != nil {
		return nil, w.QueryErr
	}
	var out []string
	for _, r := range w.regions {
		if r.Contains(pos) {
			out = append(out, r.Name)
		}
	}
	return out, nil
}

// Sound

// Play implements core.Sound.
func (w *World) Play(scope core.Scope, key string, volume, pitch float32) error {
	w.record(Command{Kind: CommandSoundPlay, Scope: &scope, Key: key, Volume: volume, Pitch: pitch})
	return nil
}

// Stop implements core.Sound.
func (w *World) Stop(scope core.Scope, key string) error {
	w.record(Command{Kind: CommandSoundStop, Scope: &scope, Key: key})
	return nil
}

// Markers

// Spawn implements core.Markers.
func (w *World) Spawn(pos core.Position) (core.MarkerID, error) {
	if !w.loaded[pos.Block().Chunk()] {
		return "", fmt.Errorf("spawn at %s: %w", pos.Block(), jberrors.ErrAreaNotLoaded)
	}
	id := w.NewMarkerID()
	w.markers[id] = &Marker{ID: id, Position: pos, HiddenFrom: make(map[core.PlayerID]bool)}
	w.record(Command{Kind: CommandMarkerSpawn, Marker: id, Position: &pos})
	return id, nil
}

// Remove implements core.Markers.
func (w *World) Remove(id core.MarkerID) error {
	delete(w.markers, id)
	w.record(Command{Kind: CommandMarkerRemove, Marker: id})
	return nil
}

// Exists implements core.Markers.
func (w *World) Exists(id core.MarkerID) bool {
	_, ok := w.markers[id]
	return ok
}

// SetText implements core.Markers.
func (w *World) SetText(id core.MarkerID, text string) error {
	m, ok := w.markers[id]
	if !ok {
		return fmt.Errorf("marker %s not found", id)
	}
	m.Text = text
	w.record(Command{Kind: CommandMarkerText, Marker: id, Text: text})
	return nil
}

// SetVisibility implements core.Markers.
func (w *World) SetVisibility(viewer core.PlayerID, id core.MarkerID, hidden bool) error {
	m, ok := w.markers[id]
	if !ok {
		return fmt.Errorf("marker %s not found", id)
	}
	m.HiddenFrom[viewer] = hidden
	w.record(Command{Kind: CommandMarkerVisibility, Marker: id, Viewer: viewer, Hidden: hidden})
	return nil
}

// Marker returns a spawned marker.
func (w *World) Marker(id core.MarkerID) (*Marker, bool) {
	m, ok := w.markers[id]
	return m, ok
}

// MarkerCount returns the number of live markers.
func (w *World) MarkerCount() int {
	return len(w.markers)
}

// DropMarker removes a marker without recording a command, as if the host
// discarded the entity on its own.
func (w *World) DropMarker(id core.MarkerID) {
	delete(w.markers, id)
}

// Notifier

// Notify implements core.Notifier.
func (w *World) Notify(player core.PlayerID, msg string) {
	w.record(Command{Kind: CommandNotify, Viewer: player, Text: msg})
}

// NotifyNear implements core.Notifier.
func (w *World) NotifyNear(loc core.Location, radius float64, msg string) {
	scope := core.AtLocation(loc, radius)
	w.record(Command{Kind: CommandNotify, Scope: &scope, Text: msg})
}

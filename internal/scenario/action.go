// Package scenario drives the engine from scripted or streamed world actions.
package scenario

import (
	"fmt"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/engine"
	"github.com/tessro/jukebox/internal/sim"
)

// Action kinds.
const (
	ActLoad         = "load"
	ActUnload       = "unload"
	ActPlace        = "place"
	ActInsert       = "insert"
	ActEject        = "eject"
	ActBreak        = "break"
	ActToggleLoop   = "toggle_loop"
	ActJoin         = "join"
	ActQuit         = "quit"
	ActMove         = "move"
	ActTeleport     = "teleport"
	ActDefineRegion = "define_region"
	ActMarkerGone   = "marker_gone"
	ActPlayFor      = "play_for"
	ActStopFor      = "stop_for"
	ActNowPlaying   = "now_playing"
	ActDisable      = "disable"
	ActWait         = "wait"
)

// RegionDef is an axis-aligned region.
type RegionDef struct {
	Name  string     `json:"name" toml:"name"`
	World string     `json:"world" toml:"world"`
	Min   [3]float64 `json:"min" toml:"min"`
	Max   [3]float64 `json:"max" toml:"max"`
}

func (r RegionDef) region() sim.Region {
	return sim.Region{
		Name: r.Name,
		Min:  core.Position{World: r.World, X: r.Min[0], Y: r.Min[1], Z: r.Min[2]},
		Max:  core.Position{World: r.World, X: r.Max[0], Y: r.Max[1], Z: r.Max[2]},
	}
}

// Action is one change to the world. Only the fields the kind needs are set.
type Action struct {
	Type         string         `json:"type" toml:"action"`
	Location     *core.Location `json:"location,omitempty" toml:"location"`
	Player       core.PlayerID  `json:"player,omitempty" toml:"player"`
	Position     *core.Position `json:"position,omitempty" toml:"position"`
	Track        string         `json:"track,omitempty" toml:"track"`
	Capabilities []string       `json:"capabilities,omitempty" toml:"capabilities"`
	Region       *RegionDef     `json:"region,omitempty" toml:"region"`
	Marker       core.MarkerID  `json:"marker,omitempty" toml:"marker"`
}

// Validate checks that the fields the action needs are present.
func (a Action) Validate() error {
	need := func(ok bool, field string) error {
		if !ok {
			return fmt.Errorf("%s: %s is required", a.Type, field)
		}
		return nil
	}
	switch a.Type {
	case ActLoad, ActUnload, ActPlace, ActEject, ActBreak, ActToggleLoop:
		return need(a.Location != nil, "location")
	case ActInsert:
		if err := need(a.Location != nil, "location"); err != nil {
			return err
		}
		return need(a.Track != "", "track")
	case ActJoin, ActMove, ActTeleport:
		if err := need(a.Player != "", "player"); err != nil {
			return err
		}
		return need(a.Position != nil, "position")
	case ActQuit, ActStopFor:
		return need(a.Player != "", "player")
	case ActPlayFor, ActNowPlaying:
		if err := need(a.Player != "", "player"); err != nil {
			return err
		}
		return need(a.Track != "", "track")
	case ActDefineRegion:
		if err := need(a.Region != nil, "region"); err != nil {
			return err
		}
		return need(a.Region.Name != "", "region.name")
	case ActMarkerGone:
		return need(a.Marker != "", "marker")
	case ActDisable, ActWait:
		return nil
	default:
		return fmt.Errorf("unknown action %q", a.Type)
	}
}

// Apply mirrors a onto world and dispatches the matching engine event. It
// must run on the scheduler goroutine.
func Apply(w *sim.World, e *engine.Engine, a Action) error {
	if err := a.Validate(); err != nil {
		return err
	}

	switch a.Type {
	case ActLoad:
		w.LoadAround(*a.Location)
	case ActUnload:
		w.Unload(a.Location.Chunk())
	case ActPlace:
		w.PlaceDevice(*a.Location)
	case ActInsert:
		w.Insert(*a.Location, a.Track)
		return e.Dispatch(engine.DeviceGainedTrack{Location: *a.Location, TrackID: a.Track, Player: a.Player})
	case ActEject:
		w.Eject(*a.Location)
		return e.Dispatch(engine.DeviceLostTrack{Location: *a.Location})
	case ActBreak:
		w.Break(*a.Location)
		return e.Dispatch(engine.DeviceDestroyed{Location: *a.Location})
	case ActToggleLoop:
		return e.Dispatch(engine.LoopToggled{Location: *a.Location, Player: a.Player})
	case ActJoin:
		caps := make([]core.Capability, 0, len(a.Capabilities))
		for _, c := range a.Capabilities {
			caps = append(caps, core.Capability(c))
		}
		w.Join(a.Player, *a.Position, caps...)
		return e.Dispatch(engine.PlayerJoined{Player: a.Player})
	case ActQuit:
		w.Quit(a.Player)
		return e.Dispatch(engine.PlayerQuit{Player: a.Player})
	case ActMove:
		from, ok := w.Move(a.Player, *a.Position)
		if !ok {
			return fmt.Errorf("move: unknown player %s", a.Player)
		}
		return e.Dispatch(engine.PlayerMoved{Player: a.Player, From: from, To: *a.Position})
	case ActTeleport:
		if _, ok := w.Move(a.Player, *a.Position); !ok {
			return fmt.Errorf("teleport: unknown player %s", a.Player)
		}
		return e.Dispatch(engine.PlayerTeleported{Player: a.Player})
	case ActDefineRegion:
		w.DefineRegion(a.Region.region())
	case ActMarkerGone:
		w.DropMarker(a.Marker)
	case ActPlayFor:
		return e.PlayFor(a.Player, a.Track)
	case ActStopFor:
		return e.StopFor(a.Player, a.Track)
	case ActNowPlaying:
		return e.NowPlaying(a.Player, a.Track)
	case ActDisable:
		return e.DisableAll()
	}
	return nil
}

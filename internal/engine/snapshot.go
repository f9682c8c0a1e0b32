package engine

import (
	"time"

	"github.com/tessro/jukebox/internal/core"
)

// DeviceView describes one device session.
type DeviceView struct {
	Location core.Location
	TrackID  string
	Name     string
	Author   string
	Looping  bool
	Audible  bool
	Markers  int
	Started  time.Time     `hash:"ignore"`
	Elapsed  time.Duration `hash:"ignore"`
	Duration time.Duration
}

// RegionView describes one player's region session.
type RegionView struct {
	Player  core.PlayerID
	Region  string
	TrackID string
	Name    string
	Started time.Time     `hash:"ignore"`
	Elapsed time.Duration `hash:"ignore"`
}

// Snapshot is a point-in-time view of every session.
type Snapshot struct {
	Time    time.Time `hash:"ignore"`
	Enabled bool
	Devices []DeviceView
	Regions []RegionView
	Loops   []core.Location
	Mapped  int
}

// Snapshot captures the current sessions.
func (e *Engine) Snapshot() Snapshot {
	now := e.deps.Scheduler.Now()
	snap := Snapshot{
		Time:    now,
		Enabled: e.enabled,
		Loops:   e.devices.Loops().Locations(),
		Mapped:  e.regions.Map().Len(),
	}

	for _, s := range e.devices.Sessions() {
		snap.Devices = append(snap.Devices, DeviceView{
			Location: s.Location,
			TrackID:  s.TrackID,
			Name:     s.TrackName,
			Author:   s.TrackAuthor,
			Looping:  e.devices.Looping(s.Location),
			Audible:  s.Audible,
			Markers:  len(s.Markers),
			Started:  s.Started,
			Elapsed:  s.Elapsed(now),
			Duration: s.Duration,
		})
	}

	for _, s := range e.regions.Sessions() {
		v := RegionView{Player: s.Player, Region: s.Region, TrackID: s.TrackID, Started: s.Started}
		if t, ok := e.deps.Catalog.Track(s.TrackID); ok {
			v.Name = t.Name
		}
		if !s.Started.IsZero() {
			v.Elapsed = now.Sub(s.Started)
		}
		snap.Regions = append(snap.Regions, v)
	}
	return snap
}

package device

import (
	"time"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/marker"
)

// Reason explains why a session ended.
type Reason string

const (
	ReasonStopped   Reason = "stopped"
	ReasonReplaced  Reason = "replaced"
	ReasonEjected   Reason = "ejected"
	ReasonDestroyed Reason = "destroyed"
	ReasonFinished  Reason = "finished"
	ReasonDisabled  Reason = "disabled"
)

// Session is the live state of a device playing a track.
type Session struct {
	Location    core.Location
	Markers     marker.Set
	Started     time.Time
	Duration    time.Duration
	TrackID     string
	TrackName   string
	TrackAuthor string
	// Audible is false while playback waits for the area to become observable.
	Audible bool

	timer core.Handle
}

// Elapsed returns how long the current iteration has been playing.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if !s.Audible {
		return 0
	}
	return now.Sub(s.Started)
}

func (s *Session) label(looping bool) marker.Label {
	return marker.Label{Name: s.TrackName, Author: s.TrackAuthor, Looping: looping}
}

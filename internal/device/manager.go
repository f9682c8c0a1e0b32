// Package device manages playback sessions bound to physical devices in the world.
package device

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/jukebox/internal/core"
	jberrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/marker"
)

// noteSteps is the number of discrete ambient note values minus one.
const noteSteps = 24

// Options tunes a Manager.
type Options struct {
	Tick          time.Duration
	HearingRadius float64
	Volume        float32
	Pitch         float32
	Namespace     string
	Rand          *rand.Rand
	Loops         *LoopSet
	Observer      core.Observer
}

// Deps are the collaborators a Manager consumes.
type Deps struct {
	Catalog   core.Catalog
	World     core.World
	Sound     core.Sound
	Notifier  core.Notifier
	Scheduler core.Scheduler
	Markers   *marker.Controller
}

// Manager owns at most one session per device location.
type Manager struct {
	deps     Deps
	opts     Options
	loops    *LoopSet
	sessions map[core.Location]*Session
	log      zerolog.Logger
}

// NewManager creates a device session manager.
func NewManager(deps Deps, opts Options, log zerolog.Logger) *Manager {
	if opts.Tick <= 0 {
		opts.Tick = 500 * time.Millisecond
	}
	if opts.HearingRadius <= 0 {
		opts.HearingRadius = 64
	}
	if opts.Volume == 0 {
		opts.Volume = 1
	}
	if opts.Pitch == 0 {
		opts.Pitch = 1
	}
	if opts.Namespace == "" {
		opts.Namespace = "jukebox"
	}
	loops := opts.Loops
	if loops == nil {
		loops = NewLoopSet()
	}
	return &Manager{
		deps:     deps,
		opts:     opts,
		loops:    loops,
		sessions: make(map[core.Location]*Session),
		log:      log.With().Str("component", "device").Logger(),
	}
}

// Loops returns the manager's loop set.
func (m *Manager) Loops() *LoopSet {
	return m.loops
}

// Start begins playing trackID at loc, fully stopping any session already there.
// by is the interacting player, if any.
func (m *Manager) Start(loc core.Location, trackID string, by core.PlayerID) error {
	if _, exists := m.sessions[loc]; exists {
		m.stop(loc, ReasonReplaced, true)
	}

	track, ok := m.deps.Catalog.Track(trackID)
	if !ok {
		m.log.Warn().Str("location", loc.String()).Str("track", trackID).Msg("unknown track, not starting")
		return fmt.Errorf("start %s: %w", loc, jberrors.ErrTrackNotFound)
	}

	now := m.deps.Scheduler.Now()
	s := &Session{
		Location:    loc,
		Started:     now,
		Duration:    track.Duration(),
		TrackID:     track.ID,
		TrackName:   track.Name,
		TrackAuthor: track.Author,
	}

	if m.deps.World.Device(loc) != core.DeviceUnobservable {
		m.play(s)
		s.Audible = true
		m.spawnMarkers(s)
		m.deps.Notifier.NotifyNear(loc, m.opts.HearingRadius, "Now Playing: "+track.Name)
		if by != "" {
			m.deps.Notifier.Notify(by, "Tip: Shift-Right-Click the Jukebox to toggle Loop Mode [∞]")
		}
	} else {
		m.log.Debug().Str("location", loc.String()).Msg("area not loaded, deferring playback")
	}

	s.timer = m.deps.Scheduler.RunRepeating(m.opts.Tick, func() { m.tick(loc, s) })
	m.sessions[loc] = s

	m.emit(core.Notice{Kind: core.NoticeDeviceStarted, Location: &loc, Player: by, TrackID: s.TrackID, Name: s.TrackName, Author: s.TrackAuthor, Looping: m.loops.Contains(loc)})
	return nil
}

// Stop ends the session at loc, stopping its sound.
func (m *Manager) Stop(loc core.Location, reason Reason) error {
	if _, ok := m.sessions[loc]; !ok {
		return fmt.Errorf("stop %s: %w", loc, jberrors.ErrNoSession)
	}
	return m.stop(loc, reason, true)
}

// ToggleLoop flips loc's loop flag and returns the new state. An active
// session only has its marker text updated.
func (m *Manager) ToggleLoop(loc core.Location) bool {
	looping := m.loops.Toggle(loc)
	if s, ok := m.sessions[loc]; ok {
		m.deps.Markers.SetLabel(s.Markers, s.label(looping))
	}
	m.emit(core.Notice{Kind: core.NoticeLoopToggled, Location: &loc, Looping: looping})
	return looping
}

// Looping reports whether loc loops.
func (m *Manager) Looping(loc core.Location) bool {
	return m.loops.Contains(loc)
}

// ShowTo applies marker visibility for a newly joined viewer.
func (m *Manager) ShowTo(viewer core.PlayerID) {
	for _, loc := range m.locations() {
		s := m.sessions[loc]
		if len(s.Markers) > 0 {
			m.deps.Markers.ShowTo(viewer, s.Markers)
		}
	}
}

// StopAll ends every session, cancelling all timers and removing all markers.
func (m *Manager) StopAll(reason Reason) error {
	var result jberrors.PartialResult[int]
	for _, loc := range m.locations() {
		result.AddError(m.stop(loc, reason, true))
		result.Data++
	}
	if result.HasErrors() {
		m.log.Warn().Int("sessions", result.Data).Str("errors", result.ErrorSummary()).Msg("stop all finished with errors")
	}
	return result.Err()
}

// Session returns a copy of the session at loc.
func (m *Manager) Session(loc core.Location) (Session, bool) {
	s, ok := m.sessions[loc]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Sessions returns copies of all sessions ordered by location.
func (m *Manager) Sessions() []Session {
	out := make([]Session, 0, len(m.sessions))
	for _, loc := range m.locations() {
		out = append(out, *m.sessions[loc])
	}
	return out
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	return len(m.sessions)
}

func (m *Manager) locations() []core.Location {
	locs := make([]core.Location, 0, len(m.sessions))
	for l := range m.sessions {
		locs = append(locs, l)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].String() < locs[j].String() })
	return locs
}

// tick re-evaluates one session exactly once. Every branch that changes
// session state returns; nothing re-enters the tick.
func (m *Manager) tick(loc core.Location, s *Session) {
	if m.sessions[loc] != s {
		return
	}

	switch m.deps.World.Device(loc) {
	case core.DeviceEmpty:
		m.stop(loc, ReasonEjected, true)
		return
	case core.DeviceAbsent:
		m.stop(loc, ReasonDestroyed, true)
		return
	case core.DeviceUnobservable:
		return
	}

	now := m.deps.Scheduler.Now()
	if !s.Audible {
		m.play(s)
		s.Audible = true
		s.Started = now
	}

	if !m.deps.Markers.Present(s.Markers) {
		m.deps.Markers.Remove(s.Markers)
		m.spawnMarkers(s)
		m.log.Debug().Str("location", loc.String()).Msg("markers respawned")
		m.emit(core.Notice{Kind: core.NoticeMarkersRespawned, Location: &loc, TrackID: s.TrackID, Name: s.TrackName})
		return
	}

	if s.Duration > 0 && now.Sub(s.Started) >= s.Duration {
		if m.loops.Contains(loc) {
			key := m.key(s)
			if err := m.deps.Sound.Stop(m.scope(loc), key); err != nil {
				m.log.Debug().Err(err).Str("location", loc.String()).Msg("stop before loop failed")
			}
			m.play(s)
			s.Started = now
			m.emit(core.Notice{Kind: core.NoticeDeviceLooped, Location: &loc, TrackID: s.TrackID, Name: s.TrackName, Author: s.TrackAuthor, Looping: true})
			return
		}
		m.stop(loc, ReasonFinished, false)
		return
	}

	m.deps.World.Effect(loc.Offset(0.5, 0.8, 0.5), m.note())
}

func (m *Manager) stop(loc core.Location, reason Reason, stopSound bool) error {
	s, ok := m.sessions[loc]
	if !ok {
		return nil
	}
	delete(m.sessions, loc)
	if s.timer != nil {
		s.timer.Cancel()
	}

	var err error
	if stopSound && s.Audible {
		if err = m.deps.Sound.Stop(m.scope(loc), m.key(s)); err != nil {
			m.log.Warn().Err(err).Str("location", loc.String()).Str("track", s.TrackID).Msg("stop sound failed")
			err = fmt.Errorf("stop sound at %s: %w", loc, err)
		}
	}
	m.deps.Markers.Remove(s.Markers)

	m.emit(core.Notice{Kind: core.NoticeDeviceStopped, Location: &loc, TrackID: s.TrackID, Name: s.TrackName, Author: s.TrackAuthor, Reason: string(reason)})
	return err
}

func (m *Manager) play(s *Session) {
	if err := m.deps.Sound.Play(m.scope(s.Location), m.key(s), m.opts.Volume, m.opts.Pitch); err != nil {
		m.log.Warn().Err(err).Str("location", s.Location.String()).Str("track", s.TrackID).Msg("play failed")
	}
}

func (m *Manager) spawnMarkers(s *Session) {
	set, err := m.deps.Markers.Spawn(s.Location, s.label(m.loops.Contains(s.Location)))
	if err != nil {
		m.log.Debug().Err(err).Str("location", s.Location.String()).Msg("marker spawn deferred")
		s.Markers = nil
		return
	}
	s.Markers = set
}

func (m *Manager) scope(loc core.Location) core.Scope {
	return core.AtLocation(loc, m.opts.HearingRadius)
}

func (m *Manager) key(s *Session) string {
	return core.SoundKey(m.opts.Namespace, s.TrackID)
}

func (m *Manager) note() float64 {
	var n int
	if m.opts.Rand != nil {
		n = m.opts.Rand.IntN(noteSteps + 1)
	} else {
		n = rand.IntN(noteSteps + 1)
	}
	return float64(n) / noteSteps
}

func (m *Manager) emit(n core.Notice) {
	if m.opts.Observer == nil {
		return
	}
	n.Time = m.deps.Scheduler.Now()
	m.opts.Observer(n)
}

// SetObserver replaces the notice observer.
func (m *Manager) SetObserver(o core.Observer) {
	m.opts.Observer = o
}

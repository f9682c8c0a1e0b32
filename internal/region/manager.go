package region

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/jukebox/internal/core"
)

// Session is the region a player is currently hearing.
type Session struct {
	Player  core.PlayerID
	Region  string
	TrackID string
	// Started is zero when the mapped track is not in the catalog.
	Started time.Time
}

// Deps are the collaborators a Manager consumes.
type Deps struct {
	Catalog   core.Catalog
	World     core.World
	Spatial   core.SpatialQuery
	Sound     core.Sound
	Notifier  core.Notifier
	Scheduler core.Scheduler
}

// Options tunes a Manager.
type Options struct {
	Tick          time.Duration
	TeleportDelay time.Duration
	Volume        float32
	Pitch         float32
	Namespace     string
	Observer      core.Observer
}

// Manager tracks at most one region session per player.
type Manager struct {
	deps     Deps
	opts     Options
	regions  *Map
	sessions map[core.PlayerID]*Session
	timer    core.Handle
	log      zerolog.Logger
}

// NewManager creates a region session manager. Call Enable to start looping.
func NewManager(deps Deps, regions *Map, opts Options, log zerolog.Logger) *Manager {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.TeleportDelay <= 0 {
		opts.TeleportDelay = 100 * time.Millisecond
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
	if regions == nil {
		regions = NewMap()
	}
	return &Manager{
		deps:     deps,
		opts:     opts,
		regions:  regions,
		sessions: make(map[core.PlayerID]*Session),
		log:      log.With().Str("component", "region").Logger(),
	}
}

// Enable schedules the loop tick.
func (m *Manager) Enable() {
	if m.timer != nil {
		m.timer.Cancel()
	}
	m.timer = m.deps.Scheduler.RunRepeating(m.opts.Tick, m.tick)
}

// Disable cancels the loop tick and stops every tracked sound.
func (m *Manager) Disable() {
	if m.timer != nil {
		m.timer.Cancel()
		m.timer = nil
	}
	for _, p := range m.players() {
		s := m.sessions[p]
		m.stopSound(s)
		delete(m.sessions, p)
	}
}

// Reload replaces the region map and restarts the loop tick if it is
// running. Tracked sessions are reconciled on each player's next move or
// teleport.
func (m *Manager) Reload(regions *Map) {
	if regions == nil {
		regions = NewMap()
	}
	m.regions = regions
	m.log.Info().Int("regions", regions.Len()).Msg("region map reloaded")
	if m.timer != nil {
		m.Enable()
	}
}

// Map returns the current region map.
func (m *Manager) Map() *Map {
	return m.regions
}

// OnMove reconciles a player that moved. Moves within one block are ignored.
func (m *Manager) OnMove(player core.PlayerID, from, to core.Position) {
	if from.Block() == to.Block() {
		return
	}
	m.check(player, to)
}

// OnTeleport reconciles a player after the teleport has settled.
func (m *Manager) OnTeleport(player core.PlayerID) {
	m.deps.Scheduler.RunLater(m.opts.TeleportDelay, func() {
		pos, ok := m.deps.World.PlayerPosition(player)
		if !ok {
			return
		}
		m.check(player, pos)
	})
}

// OnQuit forgets a player. Player-scoped sounds end with the connection.
func (m *Manager) OnQuit(player core.PlayerID) {
	delete(m.sessions, player)
}

// Check reconciles a player at their current position.
func (m *Manager) Check(player core.PlayerID) {
	pos, ok := m.deps.World.PlayerPosition(player)
	if !ok {
		return
	}
	m.check(player, pos)
}

func (m *Manager) check(player core.PlayerID, pos core.Position) {
	prev, tracked := m.sessions[player]
	if !tracked && m.regions.Len() == 0 {
		return
	}

	ids, err := m.deps.Spatial.RegionsContaining(pos)
	if err != nil {
		m.log.Warn().Err(err).Str("player", string(player)).Msg("region query failed, treating as outside all regions")
		ids = nil
	}
	entry, found := m.regions.Select(ids)

	if tracked && found && m.regions.Same(prev.Region, entry.Region) {
		return
	}
	if !tracked && !found {
		return
	}

	if tracked {
		m.stopSound(prev)
		delete(m.sessions, player)
		m.emit(core.Notice{Kind: core.NoticeRegionLeft, Player: player, Region: prev.Region, TrackID: prev.TrackID})
	}
	if !found {
		return
	}

	s := &Session{Player: player, Region: entry.Region, TrackID: entry.Track}
	m.sessions[player] = s

	track, ok := m.deps.Catalog.Track(entry.Track)
	if !ok {
		m.log.Warn().Str("player", string(player)).Str("region", entry.Region).Str("track", entry.Track).Msg("region mapped to unknown track")
		return
	}
	s.Started = m.deps.Scheduler.Now()
	m.play(s)
	m.deps.Notifier.Notify(player, fmt.Sprintf("♫ Now Playing: %s by %s", track.Name, track.Author))
	m.emit(core.Notice{Kind: core.NoticeRegionEntered, Player: player, Region: entry.Region, TrackID: track.ID, Name: track.Name, Author: track.Author})
}

func (m *Manager) tick() {
	now := m.deps.Scheduler.Now()
	for _, p := range m.players() {
		s := m.sessions[p]
		if s.Started.IsZero() {
			continue
		}
		track, ok := m.deps.Catalog.Track(s.TrackID)
		if !ok || track.Indefinite() {
			continue
		}
		if now.Sub(s.Started) < track.Duration() {
			continue
		}
		m.play(s)
		s.Started = now
		m.emit(core.Notice{Kind: core.NoticeRegionLooped, Player: p, Region: s.Region, TrackID: s.TrackID, Name: track.Name, Author: track.Author})
	}
}

// Session returns a copy of player's session.
func (m *Manager) Session(player core.PlayerID) (Session, bool) {
	s, ok := m.sessions[player]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Sessions returns copies of all sessions ordered by player.
func (m *Manager) Sessions() []Session {
	out := make([]Session, 0, len(m.sessions))
	for _, p := range m.players() {
		out = append(out, *m.sessions[p])
	}
	return out
}

// Len returns the number of tracked players.
func (m *Manager) Len() int {
	return len(m.sessions)
}

// SetObserver replaces the notice observer.
func (m *Manager) SetObserver(o core.Observer) {
	m.opts.Observer = o
}

func (m *Manager) players() []core.PlayerID {
	out := make([]core.PlayerID, 0, len(m.sessions))
	for p := range m.sessions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *Manager) play(s *Session) {
	key := core.SoundKey(m.opts.Namespace, s.TrackID)
	if err := m.deps.Sound.Play(core.ForPlayer(s.Player), key, m.opts.Volume, m.opts.Pitch); err != nil {
		m.log.Warn().Err(err).Str("player", string(s.Player)).Str("track", s.TrackID).Msg("play failed")
	}
}

func (m *Manager) stopSound(s *Session) {
	key := core.SoundKey(m.opts.Namespace, s.TrackID)
	if err := m.deps.Sound.Stop(core.ForPlayer(s.Player), key); err != nil {
		m.log.Warn().Err(err).Str("player", string(s.Player)).Str("track", s.TrackID).Msg("stop failed")
	}
}

func (m *Manager) emit(n core.Notice) {
	if m.opts.Observer == nil {
		return
	}
	n.Time = m.deps.Scheduler.Now()
	m.opts.Observer(n)
}

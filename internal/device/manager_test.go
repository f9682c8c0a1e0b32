package device

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/jukebox/internal/core"
	jberrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/marker"
	"github.com/tessro/jukebox/internal/schedule"
	"github.com/tessro/jukebox/internal/sim"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type catalogMap map[string]*core.Track

func (c catalogMap) Track(id string) (*core.Track, bool) {
	t, ok := c[id]
	return t, ok
}

var testCatalog = catalogMap{
	"cat":     {ID: "cat", Name: "Cat", Author: "C418", DurationSeconds: 10},
	"ambient": {ID: "ambient", Name: "Ambient", Author: "Nobody", DurationSeconds: 0},
}

type harness struct {
	m       *Manager
	world   *sim.World
	loop    *schedule.Loop
	loc     core.Location
	notices []core.Notice
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		world: sim.NewWorld(),
		loop:  schedule.NewManual(epoch),
		loc:   core.Location{World: "world", X: 10, Y: 64, Z: -3},
	}
	h.world.LoadAround(h.loc)
	h.world.PlaceDevice(h.loc)

	markers := marker.NewController(h.world, h.world, h.world, nil, zerolog.Nop())
	h.m = NewManager(Deps{
		Catalog:   testCatalog,
		World:     h.world,
		Sound:     h.world,
		Notifier:  h.world,
		Scheduler: h.loop,
		Markers:   markers,
	}, Options{
		Tick: 500 * time.Millisecond,
		Rand: rand.New(rand.NewPCG(1, 2)),
		Observer: func(n core.Notice) {
			h.notices = append(h.notices, n)
		},
	}, zerolog.Nop())
	return h
}

func (h *harness) start(t *testing.T, trackID string) {
	t.Helper()
	h.world.Insert(h.loc, trackID)
	if err := h.m.Start(h.loc, trackID, "alice"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}

func TestStartPlaysAndSpawnsMarkers(t *testing.T) {
	h := newHarness(t)
	h.start(t, "cat")

	plays := h.world.Commands(sim.CommandSoundPlay)
	if len(plays) != 1 {
		t.Fatalf("plays = %d, want 1", len(plays))
	}
	if plays[0].Key != "jukebox:disc.cat" {
		t.Errorf("Key = %q, want %q", plays[0].Key, "jukebox:disc.cat")
	}
	if plays[0].Scope.Location == nil || *plays[0].Scope.Location != h.loc || plays[0].Scope.Radius != 64 {
		t.Errorf("Scope = %+v, want location scope radius 64", plays[0].Scope)
	}
	if got := h.world.MarkerCount(); got != 2 {
		t.Errorf("MarkerCount() = %d, want 2", got)
	}

	s, ok := h.m.Session(h.loc)
	if !ok {
		t.Fatal("Session() missing after Start")
	}
	if !s.Started.Equal(epoch) {
		t.Errorf("Started = %v, want %v", s.Started, epoch)
	}
	if s.Duration != 10*time.Second {
		t.Errorf("Duration = %v, want 10s", s.Duration)
	}
	if h.loop.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", h.loop.Pending())
	}

	notifies := h.world.Commands(sim.CommandNotify)
	if len(notifies) != 2 {
		t.Fatalf("notifies = %d, want 2", len(notifies))
	}
	if notifies[0].Text != "Now Playing: Cat" {
		t.Errorf("near notice = %q, want %q", notifies[0].Text, "Now Playing: Cat")
	}
	if notifies[1].Viewer != "alice" {
		t.Errorf("tip viewer = %q, want alice", notifies[1].Viewer)
	}
	if len(h.notices) != 1 || h.notices[0].Kind != core.NoticeDeviceStarted {
		t.Errorf("notices = %+v, want one device_started", h.notices)
	}
}

func TestRapidStartsKeepOneSession(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 5; i++ {
		h.start(t, "cat")
	}

	if h.m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.m.Len())
	}
	if got := h.world.MarkerCount(); got != 2 {
		t.Errorf("MarkerCount() = %d, want 2", got)
	}
	if h.loop.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", h.loop.Pending())
	}
	if got := h.world.Count(sim.CommandSoundStop); got != 4 {
		t.Errorf("stops = %d, want 4", got)
	}
}

func TestStartThenStopLeavesNothing(t *testing.T) {
	h := newHarness(t)
	h.start(t, "cat")

	if err := h.m.Stop(h.loc, ReasonStopped); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if h.world.MarkerCount() != 0 {
		t.Errorf("MarkerCount() = %d, want 0", h.world.MarkerCount())
	}
	h.loop.Step(time.Second)
	if h.loop.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", h.loop.Pending())
	}
	if h.m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.m.Len())
	}
	if got := h.world.Count(sim.CommandSoundStop); got != 1 {
		t.Errorf("stops = %d, want 1", got)
	}
}

func TestStopWithoutSession(t *testing.T) {
	h := newHarness(t)
	err := h.m.Stop(h.loc, ReasonStopped)
	if !errors.Is(err, jberrors.ErrNoSession) {
		t.Errorf("Stop() error = %v, want ErrNoSession", err)
	}
}

func TestUnknownTrackIsNoop(t *testing.T) {
	h := newHarness(t)
	err := h.m.Start(h.loc, "missing", "")
	if !errors.Is(err, jberrors.ErrTrackNotFound) {
		t.Errorf("Start() error = %v, want ErrTrackNotFound", err)
	}
	if h.m.Len() != 0 || h.loop.Pending() != 0 || len(h.world.Commands()) != 0 {
		t.Errorf("unknown track produced side effects")
	}
}

func TestUnknownTrackStopsPreviousSession(t *testing.T) {
	h := newHarness(t)
	h.start(t, "cat")

	h.world.Insert(h.loc, "nope")
	err := h.m.Start(h.loc, "nope", "alice")
	if !errors.Is(err, jberrors.ErrTrackNotFound) {
		t.Errorf("Start() error = %v, want ErrTrackNotFound", err)
	}
	h.loop.Step(2 * time.Second)

	if h.m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.m.Len())
	}
	stops := h.world.Commands(sim.CommandSoundStop)
	if len(stops) != 1 || stops[0].Key != "jukebox:disc.cat" {
		t.Errorf("stops = %+v, want one stop of cat", stops)
	}
	if h.world.MarkerCount() != 0 {
		t.Errorf("MarkerCount() = %d, want 0", h.world.MarkerCount())
	}
	if h.loop.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", h.loop.Pending())
	}
	last := h.notices[len(h.notices)-1]
	if last.Kind != core.NoticeDeviceStopped || last.Reason != string(ReasonReplaced) {
		t.Errorf("last notice = %+v, want replaced stop", last)
	}
}

func TestFinishedTrackStops(t *testing.T) {
	h := newHarness(t)
	h.start(t, "cat")

	h.loop.Step(9500 * time.Millisecond)
	if h.m.Len() != 1 {
		t.Fatalf("session ended early at t0+9.5s")
	}

	h.loop.Step(500 * time.Millisecond)
	if h.m.Len() != 0 {
		t.Errorf("Len() = %d, want 0 at t0+10s", h.m.Len())
	}
	if h.loop.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", h.loop.Pending())
	}
	if h.world.MarkerCount() != 0 {
		t.Errorf("MarkerCount() = %d, want 0", h.world.MarkerCount())
	}
	last := h.notices[len(h.notices)-1]
	if last.Kind != core.NoticeDeviceStopped || last.Reason != string(ReasonFinished) {
		t.Errorf("last notice = %+v, want finished stop", last)
	}
}

func TestLoopingTrackReplays(t *testing.T) {
	h := newHarness(t)
	h.m.ToggleLoop(h.loc)
	h.start(t, "cat")

	h.loop.Step(10 * time.Second)

	s, ok := h.m.Session(h.loc)
	if !ok {
		t.Fatal("looping session ended")
	}
	if want := epoch.Add(10 * time.Second); !s.Started.Equal(want) {
		t.Errorf("Started = %v, want %v", s.Started, want)
	}
	if got := h.world.Count(sim.CommandSoundPlay); got != 2 {
		t.Errorf("plays = %d, want 2", got)
	}
	if h.loop.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", h.loop.Pending())
	}
}

func TestIndefiniteTrackNeverEnds(t *testing.T) {
	h := newHarness(t)
	h.start(t, "ambient")

	h.loop.Step(10 * time.Minute)

	if h.m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.m.Len())
	}
	if got := h.world.Count(sim.CommandSoundPlay); got != 1 {
		t.Errorf("plays = %d, want 1", got)
	}
	effects := h.world.Commands(sim.CommandEffect)
	if len(effects) == 0 {
		t.Fatal("no ambient effects emitted")
	}
	for _, e := range effects {
		steps := e.Note * 24
		if e.Note < 0 || e.Note > 1 || math.Abs(steps-math.Round(steps)) > 1e-9 {
			t.Fatalf("Note = %v, want k/24 in [0,1]", e.Note)
		}
	}
}

func TestToggleLoopOnlyChangesText(t *testing.T) {
	h := newHarness(t)
	h.start(t, "cat")
	h.loop.Step(3 * time.Second)
	before, _ := h.m.Session(h.loc)
	h.world.ResetCommands()

	if !h.m.ToggleLoop(h.loc) {
		t.Fatal("ToggleLoop() = false, want true")
	}

	after, _ := h.m.Session(h.loc)
	if !after.Started.Equal(before.Started) {
		t.Errorf("Started = %v, want %v", after.Started, before.Started)
	}
	for _, c := range h.world.Commands() {
		if c.Kind != sim.CommandMarkerText {
			t.Errorf("unexpected command %s", c.Kind)
		}
	}
	for _, id := range after.Markers {
		mk, ok := h.world.Marker(id)
		if !ok {
			t.Fatalf("marker %s removed by toggle", id)
		}
		want := marker.Label{Name: "Cat", Author: "C418", Looping: true}.String()
		if mk.Text != want {
			t.Errorf("Text = %q, want %q", mk.Text, want)
		}
	}

	if h.m.ToggleLoop(h.loc) {
		t.Error("second ToggleLoop() = true, want false")
	}
}

func TestEjectAndBreakStop(t *testing.T) {
	tests := []struct {
		name   string
		act    func(w *sim.World, loc core.Location)
		reason Reason
	}{
		{"eject", func(w *sim.World, loc core.Location) { w.Eject(loc) }, ReasonEjected},
		{"break", func(w *sim.World, loc core.Location) { w.Break(loc) }, ReasonDestroyed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.start(t, "ambient")
			tt.act(h.world, h.loc)
			h.loop.Step(500 * time.Millisecond)

			if h.m.Len() != 0 {
				t.Errorf("Len() = %d, want 0", h.m.Len())
			}
			if h.world.Count(sim.CommandSoundStop) != 1 {
				t.Errorf("stops = %d, want 1", h.world.Count(sim.CommandSoundStop))
			}
			last := h.notices[len(h.notices)-1]
			if last.Reason != string(tt.reason) {
				t.Errorf("Reason = %q, want %q", last.Reason, tt.reason)
			}
		})
	}
}

func TestUnloadedAreaSkipsAndRespawns(t *testing.T) {
	h := newHarness(t)
	h.start(t, "ambient")

	h.world.Unload(h.loc.Chunk())
	h.world.ResetCommands()
	h.loop.Step(2 * time.Second)

	if h.m.Len() != 1 {
		t.Fatal("session dropped while area unloaded")
	}
	if n := len(h.world.Commands()); n != 0 {
		t.Errorf("commands while unloaded = %d, want 0", n)
	}

	h.world.LoadAround(h.loc)
	h.loop.Step(500 * time.Millisecond)

	if got := h.world.MarkerCount(); got != 2 {
		t.Errorf("MarkerCount() = %d, want 2 after reload", got)
	}
	if got := h.world.Count(sim.CommandEffect); got != 0 {
		t.Errorf("effects on respawn tick = %d, want 0", got)
	}
	if got := h.world.Count(sim.CommandSoundPlay); got != 0 {
		t.Errorf("plays on respawn tick = %d, want 0", got)
	}

	h.loop.Step(500 * time.Millisecond)
	if got := h.world.Count(sim.CommandEffect); got != 1 {
		t.Errorf("effects after respawn = %d, want 1", got)
	}
}

func TestExternallyRemovedMarkerRespawns(t *testing.T) {
	h := newHarness(t)
	h.start(t, "ambient")
	s, _ := h.m.Session(h.loc)
	h.world.DropMarker(s.Markers[0])

	h.loop.Step(500 * time.Millisecond)

	if got := h.world.MarkerCount(); got != 2 {
		t.Errorf("MarkerCount() = %d, want 2", got)
	}
	after, _ := h.m.Session(h.loc)
	if after.Markers[0] == s.Markers[0] {
		t.Error("markers were not respawned")
	}
}

func TestStartInUnloadedAreaDefersSound(t *testing.T) {
	h := newHarness(t)
	h.world.Unload(h.loc.Chunk())
	h.world.Insert(h.loc, "cat")
	if err := h.m.Start(h.loc, "cat", ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if n := len(h.world.Commands()); n != 0 {
		t.Errorf("commands = %d, want 0 while unloaded", n)
	}

	h.loop.Step(30 * time.Second)
	if h.m.Len() != 1 {
		t.Fatal("deferred session expired while unloaded")
	}

	h.world.LoadAround(h.loc)
	h.loop.Step(500 * time.Millisecond)

	if got := h.world.Count(sim.CommandSoundPlay); got != 1 {
		t.Errorf("plays = %d, want 1", got)
	}
	s, _ := h.m.Session(h.loc)
	if want := epoch.Add(30500 * time.Millisecond); !s.Started.Equal(want) {
		t.Errorf("Started = %v, want %v", s.Started, want)
	}
}

func TestStopAll(t *testing.T) {
	h := newHarness(t)
	other := core.Location{World: "world", X: 11, Y: 64, Z: -3}
	h.world.Insert(other, "ambient")
	h.start(t, "cat")
	if err := h.m.Start(other, "ambient", ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := h.m.StopAll(ReasonDisabled); err != nil {
		t.Fatalf("StopAll() error = %v", err)
	}
	if h.m.Len() != 0 || h.loop.Pending() != 0 || h.world.MarkerCount() != 0 {
		t.Errorf("StopAll left sessions=%d timers=%d markers=%d", h.m.Len(), h.loop.Pending(), h.world.MarkerCount())
	}
}

func TestShowToNewViewer(t *testing.T) {
	h := newHarness(t)
	h.start(t, "ambient")
	h.world.Join("bob", core.Position{World: "world"}, "alternate-client")
	h.world.ResetCommands()

	h.m.ShowTo("bob")

	vis := h.world.Commands(sim.CommandMarkerVisibility)
	if len(vis) != 1 {
		t.Fatalf("visibility commands = %d, want 1", len(vis))
	}
	s, _ := h.m.Session(h.loc)
	if vis[0].Marker != s.Markers[0] || !vis[0].Hidden {
		t.Errorf("visibility = %+v, want primary hidden", vis[0])
	}
}

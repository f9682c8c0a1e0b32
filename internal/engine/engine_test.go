package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/jukebox/internal/catalog"
	"github.com/tessro/jukebox/internal/config"
	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/region"
	"github.com/tessro/jukebox/internal/schedule"
	"github.com/tessro/jukebox/internal/sim"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	e       *Engine
	world   *sim.World
	loop    *schedule.Loop
	notices []core.Notice
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{world: sim.NewWorld(), loop: schedule.NewManual(epoch)}
	cat := catalog.NewMemory(
		core.Track{ID: "cat", Name: "Cat", Author: "C418", DurationSeconds: 10},
		core.Track{ID: "x", Name: "Theme X", Author: "Composer", DurationSeconds: 30},
	)
	e, err := New(Deps{
		Catalog:      cat,
		World:        h.world,
		Spatial:      h.world,
		Sound:        h.world,
		Markers:      h.world,
		Notifier:     h.world,
		Capabilities: h.world,
		Scheduler:    h.loop,
	}, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.SetObserver(func(n core.Notice) { h.notices = append(h.notices, n) })
	e.Enable()
	h.e = e
	return h
}

var jukebox = core.Location{World: "world", X: 0, Y: 64, Z: 0}

func TestDispatchDeviceLifecycle(t *testing.T) {
	h := newHarness(t, Options{})
	h.world.LoadAround(jukebox)
	h.world.Insert(jukebox, "cat")

	if err := h.e.Dispatch(DeviceGainedTrack{Location: jukebox, TrackID: "cat", Player: "alice"}); err != nil {
		t.Fatalf("Dispatch(gained) error = %v", err)
	}
	if h.e.Devices().Len() != 1 {
		t.Fatalf("device sessions = %d, want 1", h.e.Devices().Len())
	}

	h.world.Eject(jukebox)
	if err := h.e.Dispatch(DeviceLostTrack{Location: jukebox}); err != nil {
		t.Fatalf("Dispatch(lost) error = %v", err)
	}
	if h.e.Devices().Len() != 0 || h.world.MarkerCount() != 0 {
		t.Errorf("session or markers remain after eject")
	}
	if err := h.e.Dispatch(DeviceDestroyed{Location: jukebox}); err != nil {
		t.Errorf("Dispatch(destroyed) without session error = %v", err)
	}
}

func TestDispatchLoopToggleNotifiesPlayer(t *testing.T) {
	h := newHarness(t, Options{})
	if err := h.e.Dispatch(LoopToggled{Location: jukebox, Player: "alice"}); err != nil {
		t.Fatal(err)
	}
	h.e.Dispatch(LoopToggled{Location: jukebox, Player: "alice"})

	notifies := h.world.Commands(sim.CommandNotify)
	if len(notifies) != 2 {
		t.Fatalf("notifies = %d, want 2", len(notifies))
	}
	if notifies[0].Text != "Looping: ENABLED [∞]" || notifies[1].Text != "Looping: DISABLED" {
		t.Errorf("messages = %q, %q", notifies[0].Text, notifies[1].Text)
	}
}

func TestScenarioCatWithoutLoop(t *testing.T) {
	h := newHarness(t, Options{})
	h.world.LoadAround(jukebox)
	h.world.Insert(jukebox, "cat")
	if err := h.e.StartDeviceSession(jukebox, "cat"); err != nil {
		t.Fatal(err)
	}

	h.loop.Step(10 * time.Second)

	if h.e.Devices().Len() != 0 {
		t.Errorf("device sessions = %d, want 0", h.e.Devices().Len())
	}
	if got := h.loop.Pending(); got != 1 {
		t.Errorf("Pending() = %d, want only the region tick", got)
	}
}

func TestScenarioCatWithLoop(t *testing.T) {
	h := newHarness(t, Options{})
	h.world.LoadAround(jukebox)
	h.world.Insert(jukebox, "cat")
	h.e.ToggleLoop(jukebox)
	if err := h.e.StartDeviceSession(jukebox, "cat"); err != nil {
		t.Fatal(err)
	}

	h.loop.Step(10 * time.Second)

	snap := h.e.Snapshot()
	if len(snap.Devices) != 1 {
		t.Fatalf("devices = %d, want 1", len(snap.Devices))
	}
	d := snap.Devices[0]
	if !d.Looping {
		t.Error("Looping = false, want true")
	}
	if want := epoch.Add(10 * time.Second); !d.Started.Equal(want) {
		t.Errorf("Started = %v, want %v", d.Started, want)
	}
	if got := h.world.Count(sim.CommandSoundPlay); got != 2 {
		t.Errorf("plays = %d, want 2", got)
	}
}

func TestRegionFlowThroughEngine(t *testing.T) {
	h := newHarness(t, Options{Regions: region.NewMap(region.Entry{Region: "a", Track: "x"})})
	inA := core.Position{World: "world", X: 5, Y: 64, Z: 5}
	outside := core.Position{World: "world", X: 50, Y: 64, Z: 5}
	h.world.DefineRegion(sim.Region{Name: "A", Min: core.Position{World: "world"}, Max: core.Position{World: "world", X: 10, Y: 100, Z: 10}})
	h.world.Join("alice", outside)

	h.world.Move("alice", inA)
	h.e.Dispatch(PlayerMoved{Player: "alice", From: outside, To: inA})

	snap := h.e.Snapshot()
	if len(snap.Regions) != 1 || snap.Regions[0].Name != "Theme X" {
		t.Fatalf("regions = %+v, want alice in a", snap.Regions)
	}

	h.e.Dispatch(PlayerQuit{Player: "alice"})
	if h.e.Regions().Len() != 0 {
		t.Errorf("region sessions = %d, want 0", h.e.Regions().Len())
	}
}

func TestDisableAllPersistsLoops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loops.json")
	h := newHarness(t, Options{LoopFile: path})
	h.world.LoadAround(jukebox)
	h.world.Insert(jukebox, "cat")
	h.e.ToggleLoop(jukebox)
	h.e.StartDeviceSession(jukebox, "cat")

	if err := h.e.DisableAll(); err != nil {
		t.Fatalf("DisableAll() error = %v", err)
	}
	if h.loop.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", h.loop.Pending())
	}
	if h.world.MarkerCount() != 0 {
		t.Errorf("MarkerCount() = %d, want 0", h.world.MarkerCount())
	}
	if h.e.Enabled() {
		t.Error("Enabled() = true after DisableAll")
	}

	restored := newHarness(t, Options{LoopFile: path})
	if !restored.e.Devices().Looping(jukebox) {
		t.Error("loop set not restored")
	}
}

func TestPlayForAndStopFor(t *testing.T) {
	h := newHarness(t, Options{})
	if err := h.e.PlayFor("bob", "cat"); err != nil {
		t.Fatalf("PlayFor() error = %v", err)
	}
	if err := h.e.PlayFor("bob", "nope"); err == nil {
		t.Error("PlayFor(unknown) error = nil")
	}
	h.e.StopFor("bob", "cat")
	h.e.StopAllFor("bob")

	stops := h.world.Commands(sim.CommandSoundStop)
	if len(stops) != 2 || stops[0].Key != "jukebox:disc.cat" || stops[1].Key != "" {
		t.Errorf("stops = %+v", stops)
	}
	plays := h.world.Commands(sim.CommandSoundPlay)
	if len(plays) != 1 || plays[0].Scope.Player != "bob" || plays[0].Volume != 1 {
		t.Errorf("plays = %+v", plays)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.LoopFile = "/tmp/loops.json"
	cfg.SetRegionMusic("Spawn", "cat", 2)

	opts := OptionsFromConfig(cfg)
	if opts.DeviceTick != 500*time.Millisecond {
		t.Errorf("DeviceTick = %v, want 500ms", opts.DeviceTick)
	}
	if opts.LoopFile != "/tmp/loops.json" {
		t.Errorf("LoopFile = %q", opts.LoopFile)
	}
	if e, ok := opts.Regions.Lookup("spawn"); !ok || e.Priority != 2 {
		t.Errorf("Regions.Lookup(spawn) = %+v, %v", e, ok)
	}
	if len(opts.Variants) != 2 || opts.Variants[1].Capability != "alternate-client" {
		t.Errorf("Variants = %+v", opts.Variants)
	}
}

func TestNowPlayingNotifiesPlayer(t *testing.T) {
	h := newHarness(t, Options{})
	if err := h.e.NowPlaying("bob", "x"); err != nil {
		t.Fatalf("NowPlaying() error = %v", err)
	}
	if err := h.e.NowPlaying("bob", "nope"); err == nil {
		t.Error("NowPlaying(unknown) error = nil")
	}
	notifies := h.world.Commands(sim.CommandNotify)
	if len(notifies) != 1 || notifies[0].Text != "♫ Now Playing: Theme X by Composer" {
		t.Errorf("notifies = %+v", notifies)
	}
}

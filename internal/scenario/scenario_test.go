package scenario

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/engine"
	"github.com/tessro/jukebox/internal/schedule"
	"github.com/tessro/jukebox/internal/sim"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func run(t *testing.T, sc *Scenario) (*Runner, []core.Notice) {
	t.Helper()
	r, err := NewRunner(sc, nil, schedule.NewManual(epoch), engine.Options{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	var notices []core.Notice
	r.Engine.SetObserver(func(n core.Notice) { notices = append(notices, n) })
	r.RunManual()
	return r, notices
}

func TestLoadDemo(t *testing.T) {
	sc, err := Load("testdata/demo.toml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(sc.Steps) != 6 || len(sc.Tracks) != 2 {
		t.Fatalf("steps = %d, tracks = %d", len(sc.Steps), len(sc.Tracks))
	}
	if got := sc.Duration(); got != 14*time.Second {
		t.Errorf("Duration() = %v, want 14s", got)
	}

	r, notices := run(t, sc)

	if r.Engine.Devices().Len() != 0 {
		t.Errorf("device sessions = %d, want 0 after eject", r.Engine.Devices().Len())
	}
	if r.World.MarkerCount() != 0 {
		t.Errorf("MarkerCount() = %d, want 0", r.World.MarkerCount())
	}
	kinds := map[core.NoticeKind]int{}
	for _, n := range notices {
		kinds[n.Kind]++
	}
	if kinds[core.NoticeDeviceLooped] != 1 {
		t.Errorf("device loops = %d, want 1", kinds[core.NoticeDeviceLooped])
	}
	if kinds[core.NoticeRegionEntered] != 1 {
		t.Errorf("region entries = %d, want 1", kinds[core.NoticeRegionEntered])
	}
	if s, ok := r.Engine.Regions().Session("alice"); !ok || s.TrackID != "x" {
		t.Errorf("Session(alice) = %+v, %v", s, ok)
	}
}

func TestRegionRoundTrip(t *testing.T) {
	sc, err := Parse(`
[[track]]
id = "x"
name = "X"
author = "Y"
duration_seconds = 60

[[region]]
name = "A"
world = "w"
min = [0.0, 0.0, 0.0]
max = [9.0, 255.0, 9.0]

[[region]]
name = "B"
world = "w"
min = [10.0, 0.0, 0.0]
max = [19.0, 255.0, 9.0]

[[region_music]]
region = "A"
track = "x"

[[step]]
action = "join"
player = "p"
position = { world = "w", x = 30.0, y = 64.0, z = 5.0 }

[[step]]
action = "move"
player = "p"
position = { world = "w", x = 5.0, y = 64.0, z = 5.0 }

[[step]]
action = "move"
player = "p"
position = { world = "w", x = 15.0, y = 64.0, z = 5.0 }

[[step]]
action = "move"
player = "p"
position = { world = "w", x = 5.0, y = 64.0, z = 5.0 }
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	r, _ := run(t, sc)

	if got := r.World.Count(sim.CommandSoundPlay); got != 2 {
		t.Errorf("plays = %d, want 2", got)
	}
	if got := r.World.Count(sim.CommandNotify); got != 2 {
		t.Errorf("entry notices = %d, want 2", got)
	}
	if got := r.World.Count(sim.CommandSoundStop); got != 1 {
		t.Errorf("stops = %d, want 1", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown action", "[[step]]\naction = \"dance\"", "unknown action"},
		{"missing location", "[[step]]\naction = \"insert\"\ntrack = \"cat\"", "location is required"},
		{"bad wait", "[[step]]\nwait = \"soon\"", "invalid wait"},
		{"bad after", "after = \"later\"", "invalid after"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestApplyUnknownPlayer(t *testing.T) {
	sc, _ := Parse("")
	r, err := NewRunner(sc, nil, schedule.NewManual(epoch), engine.Options{}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	pos := core.Position{World: "w"}
	if err := Apply(r.World, r.Engine, Action{Type: ActMove, Player: "ghost", Position: &pos}); err == nil {
		t.Error("Apply(move ghost) error = nil")
	}
}

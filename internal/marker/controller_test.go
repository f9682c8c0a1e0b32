package marker

import (
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/sim"
)

const altClient core.Capability = "alternate-client"

func newTestController(t *testing.T) (*Controller, *sim.World, core.Location) {
	t.Helper()
	w := sim.NewWorld()
	loc := core.Location{World: "world", X: 0, Y: 64, Z: 0}
	w.LoadAround(loc)
	c := NewController(w, w, w, DefaultVariants(1.2, 1.5, altClient), zerolog.Nop())
	return c, w, loc
}

func TestLabelString(t *testing.T) {
	l := Label{Name: "Cat", Author: "C418"}
	if got, want := l.String(), "♫ Now Playing ♫\nCat\nby C418"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	l.Looping = true
	if !strings.Contains(l.String(), LoopIndicator) {
		t.Errorf("String() = %q, want loop indicator", l.String())
	}
}

func TestSpawnHidesInappropriateVariant(t *testing.T) {
	c, w, loc := newTestController(t)
	w.Join("standard", core.Position{World: "world"})
	w.Join("alternate", core.Position{World: "world"}, altClient)
	w.Join("elsewhere", core.Position{World: "nether"})

	set, err := c.Spawn(loc, Label{Name: "Cat", Author: "C418"})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("len(set) = %d, want 2", len(set))
	}

	primary, _ := w.Marker(set[0])
	alternate, _ := w.Marker(set[1])

	if !alternate.HiddenFrom["standard"] || primary.HiddenFrom["standard"] {
		t.Error("standard viewer should only see the primary marker")
	}
	if !primary.HiddenFrom["alternate"] || alternate.HiddenFrom["alternate"] {
		t.Error("alternate viewer should only see the alternate marker")
	}
	if _, ok := primary.HiddenFrom["elsewhere"]; ok {
		t.Error("viewer in another world should not be touched")
	}
	if math.Abs(primary.Position.Y-65.2) > 1e-9 || math.Abs(alternate.Position.Y-65.5) > 1e-9 {
		t.Errorf("marker heights = %v, %v, want 65.2, 65.5", primary.Position.Y, alternate.Position.Y)
	}
}

func TestPresentAndRemove(t *testing.T) {
	c, w, loc := newTestController(t)
	set, err := c.Spawn(loc, Label{Name: "Cat", Author: "C418"})
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if !c.Present(set) {
		t.Fatal("Present() = false after spawn")
	}

	w.DropMarker(set[1])
	if c.Present(set) {
		t.Error("Present() = true with a missing marker")
	}

	c.Remove(set)
	if w.MarkerCount() != 0 {
		t.Errorf("MarkerCount() = %d, want 0", w.MarkerCount())
	}
	if c.Present(nil) {
		t.Error("Present(nil) = true")
	}
}

func TestSetLabelUpdatesInPlace(t *testing.T) {
	c, w, loc := newTestController(t)
	set, _ := c.Spawn(loc, Label{Name: "Cat", Author: "C418"})
	spawns := w.Count(sim.CommandMarkerSpawn)

	c.SetLabel(set, Label{Name: "Cat", Author: "C418", Looping: true})

	if w.Count(sim.CommandMarkerSpawn) != spawns {
		t.Error("SetLabel() respawned markers")
	}
	for _, id := range set {
		m, _ := w.Marker(id)
		if !strings.Contains(m.Text, LoopIndicator) {
			t.Errorf("marker %s text = %q, want loop indicator", id, m.Text)
		}
	}
}

func TestVariantForDefaultsWithoutProvider(t *testing.T) {
	w := sim.NewWorld()
	c := NewController(w, w, nil, nil, zerolog.Nop())
	if got := c.VariantFor("anyone"); got != 0 {
		t.Errorf("VariantFor() = %d, want 0", got)
	}
}

func TestSpawnFailureCleansUp(t *testing.T) {
	w := sim.NewWorld()
	c := NewController(w, w, w, nil, zerolog.Nop())
	loc := core.Location{World: "world", X: 0, Y: 64, Z: 0}

	if _, err := c.Spawn(loc, Label{}); err == nil {
		t.Fatal("Spawn() in unloaded area error = nil")
	}
	if w.MarkerCount() != 0 {
		t.Errorf("MarkerCount() = %d, want 0", w.MarkerCount())
	}
}

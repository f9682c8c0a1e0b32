package sim

import (
	"errors"
	"testing"

	"github.com/tessro/jukebox/internal/core"
	jberrors "github.com/tessro/jukebox/internal/errors"
)

func TestDeviceStates(t *testing.T) {
	w := NewWorld()
	loc := core.Location{World: "world", X: 10, Y: 64, Z: -3}

	if got := w.Device(loc); got != core.DeviceUnobservable {
		t.Errorf("Device() before load = %v, want unobservable", got)
	}

	w.LoadAround(loc)
	if got := w.Device(loc); got != core.DeviceAbsent {
		t.Errorf("Device() with no block = %v, want absent", got)
	}

	w.PlaceDevice(loc)
	if got := w.Device(loc); got != core.DeviceEmpty {
		t.Errorf("Device() after place = %v, want empty", got)
	}

	w.Insert(loc, "cat")
	if got := w.Device(loc); got != core.DeviceHolding {
		t.Errorf("Device() after insert = %v, want holding", got)
	}

	w.Eject(loc)
	if got := w.Device(loc); got != core.DeviceEmpty {
		t.Errorf("Device() after eject = %v, want empty", got)
	}

	w.Break(loc)
	if got := w.Device(loc); got != core.DeviceAbsent {
		t.Errorf("Device() after break = %v, want absent", got)
	}
}

func TestUnloadDropsMarkers(t *testing.T) {
	w := NewWorld()
	loc := core.Location{World: "world", X: 1, Y: 64, Z: 1}

	if _, err := w.Spawn(loc.Offset(0.5, 1.2, 0.5)); !errors.Is(err, jberrors.ErrAreaNotLoaded) {
		t.Errorf("Spawn() in unloaded chunk error = %v, want ErrAreaNotLoaded", err)
	}

	w.LoadAround(loc)
	id, err := w.Spawn(loc.Offset(0.5, 1.2, 0.5))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if !w.Exists(id) {
		t.Fatal("Exists() = false after spawn")
	}

	w.Unload(loc.Chunk())
	if w.Exists(id) {
		t.Error("Exists() = true after unload, markers must not persist")
	}
}

func TestRegionsContainingKeepsDefinitionOrder(t *testing.T) {
	w := NewWorld()
	w.DefineRegion(Region{Name: "town", Min: core.Position{World: "world", X: -100, Y: 0, Z: -100}, Max: core.Position{World: "world", X: 100, Y: 255, Z: 100}})
	w.DefineRegion(Region{Name: "tavern", Min: core.Position{World: "world", X: 0, Y: 0, Z: 0}, Max: core.Position{World: "world", X: 10, Y: 255, Z: 10}})

	got, err := w.RegionsContaining(core.Position{World: "world", X: 5, Y: 64, Z: 5})
	if err != nil {
		t.Fatalf("RegionsContaining() error = %v", err)
	}
	if len(got) != 2 || got[0] != "town" || got[1] != "tavern" {
		t.Errorf("RegionsContaining() = %v, want [town tavern]", got)
	}

	w.QueryErr = errors.New("unavailable")
	if _, err := w.RegionsContaining(core.Position{World: "world"}); err == nil {
		t.Error("RegionsContaining() error = nil, want QueryErr")
	}
}

func TestOnCommand(t *testing.T) {
	w := NewWorld()
	var seen []CommandKind
	w.OnCommand(func(c Command) { seen = append(seen, c.Kind) })

	_ = w.Play(core.ForPlayer("alex"), "jukebox:disc.cat", 1, 1)
	w.Notify("alex", "hello")

	if len(seen) != 2 || seen[0] != CommandSoundPlay || seen[1] != CommandNotify {
		t.Errorf("seen = %v", seen)
	}
	if w.Count(CommandSoundPlay) != 1 {
		t.Errorf("Count(sound.play) = %d, want 1", w.Count(CommandSoundPlay))
	}
}

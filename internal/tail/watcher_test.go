package tail

import (
	"context"
	"testing"
	"time"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/engine"
)

func TestHashIgnoresElapsed(t *testing.T) {
	loc := core.Location{World: "world"}
	a := engine.Snapshot{Devices: []engine.DeviceView{{Location: loc, TrackID: "cat", Elapsed: time.Second}}}
	b := engine.Snapshot{Time: time.Now(), Devices: []engine.DeviceView{{Location: loc, TrackID: "cat", Elapsed: time.Minute}}}
	c := engine.Snapshot{Devices: []engine.DeviceView{{Location: loc, TrackID: "cat", Looping: true}}}

	ha, _ := Hash(a)
	hb, _ := Hash(b)
	hc, _ := Hash(c)
	if ha != hb {
		t.Error("Hash() differs for elapsed-only change")
	}
	if ha == hc {
		t.Error("Hash() equal after loop change")
	}
}

func TestWatcherEmitsOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snaps := make(chan engine.Snapshot, 8)
	current := engine.Snapshot{}
	source := func(ctx context.Context) (engine.Snapshot, error) {
		select {
		case s := <-snaps:
			current = s
		default:
		}
		return current, nil
	}

	w := NewWatcher(source, 5*time.Millisecond)
	go w.Start(ctx)

	select {
	case <-w.Updates():
	case <-time.After(time.Second):
		t.Fatal("no initial update")
	}

	snaps <- engine.Snapshot{Devices: []engine.DeviceView{{TrackID: "cat"}}}
	select {
	case u := <-w.Updates():
		if len(u.Snapshot.Devices) != 1 {
			t.Errorf("devices = %d, want 1", len(u.Snapshot.Devices))
		}
	case <-time.After(time.Second):
		t.Fatal("no update after change")
	}
	w.Stop()
}

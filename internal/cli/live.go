package cli

import (
	"context"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/engine"
	"github.com/tessro/jukebox/internal/schedule"
)

// liveEngine runs engine calls on the loop goroutine for callers on other
// goroutines.
type liveEngine struct {
	loop   *schedule.Loop
	engine *engine.Engine
}

func (l *liveEngine) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := l.loop.Call(ctx, func() { snap = l.engine.Snapshot() })
	return snap, err
}

func (l *liveEngine) ToggleLoop(ctx context.Context, loc core.Location) (bool, error) {
	var looping bool
	err := l.loop.Call(ctx, func() { looping = l.engine.ToggleLoop(loc) })
	return looping, err
}

func (l *liveEngine) Stop(ctx context.Context, loc core.Location) error {
	var stopErr error
	if err := l.loop.Call(ctx, func() { stopErr = l.engine.StopDeviceSession(loc) }); err != nil {
		return err
	}
	return stopErr
}

// disable shuts the engine down on the loop. It must run before the loop stops.
func (l *liveEngine) disable(ctx context.Context) error {
	var disableErr error
	if err := l.loop.Call(ctx, func() { disableErr = l.engine.DisableAll() }); err != nil {
		return err
	}
	return disableErr
}

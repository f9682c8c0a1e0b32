package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/tessro/jukebox/internal/catalog"
	"github.com/tessro/jukebox/internal/config"
	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/engine"
	"github.com/tessro/jukebox/internal/schedule"
	"github.com/tessro/jukebox/internal/sim"
)

// Step is an action applied after waiting.
type Step struct {
	Wait string `toml:"wait"`
	Action
}

// Scenario is a scripted sequence of world actions.
type Scenario struct {
	Name        string               `toml:"name"`
	Tracks      []core.Track         `toml:"track"`
	Regions     []RegionDef          `toml:"region"`
	RegionMusic []config.RegionMusic `toml:"region_music"`
	Steps       []Step               `toml:"step"`
	// After is how long to keep running once the last step was applied.
	After string `toml:"after"`

	waits []time.Duration
	after time.Duration
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	var sc Scenario
	if _, err := toml.DecodeFile(path, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.prepare(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

// Parse reads a scenario from TOML text.
func Parse(data string) (*Scenario, error) {
	var sc Scenario
	if _, err := toml.Decode(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.prepare(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) prepare() error {
	sc.waits = make([]time.Duration, len(sc.Steps))
	for i, st := range sc.Steps {
		if st.Type == "" {
			sc.Steps[i].Type = ActWait
			st.Type = ActWait
		}
		if err := st.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		if st.Wait != "" {
			d, err := time.ParseDuration(st.Wait)
			if err != nil {
				return fmt.Errorf("step %d: invalid wait: %w", i+1, err)
			}
			sc.waits[i] = d
		}
	}
	if sc.After != "" {
		d, err := time.ParseDuration(sc.After)
		if err != nil {
			return fmt.Errorf("invalid after: %w", err)
		}
		sc.after = d
	}
	return nil
}

// Duration returns the total scripted time.
func (sc *Scenario) Duration() time.Duration {
	total := sc.after
	for _, w := range sc.waits {
		total += w
	}
	return total
}

// Runner plays a scenario against an in-memory world.
type Runner struct {
	Scenario *Scenario
	World    *sim.World
	Loop     *schedule.Loop
	Engine   *engine.Engine
	log      zerolog.Logger
}

// NewRunner builds a world and engine for sc. Scenario tracks are layered over
// base, which may be nil. Region music in the scenario replaces the configured map.
func NewRunner(sc *Scenario, base catalog.Store, loop *schedule.Loop, opts engine.Options, log zerolog.Logger) (*Runner, error) {
	tracks := catalog.NewMemory()
	if base != nil {
		list, err := base.List()
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		for _, t := range list {
			if err := tracks.Put(t); err != nil {
				return nil, err
			}
		}
	}
	for _, t := range sc.Tracks {
		if err := tracks.Put(t); err != nil {
			return nil, err
		}
	}

	w := sim.NewWorld()
	for _, r := range sc.Regions {
		w.DefineRegion(r.region())
	}
	if len(sc.RegionMusic) > 0 {
		opts.Regions = engine.RegionMap(sc.RegionMusic)
	}

	e, err := engine.New(engine.Deps{
		Catalog:      tracks,
		World:        w,
		Spatial:      w,
		Sound:        w,
		Markers:      w,
		Notifier:     w,
		Capabilities: w,
		Scheduler:    loop,
	}, opts, log)
	if err != nil {
		return nil, err
	}

	return &Runner{Scenario: sc, World: w, Loop: loop, Engine: e, log: log.With().Str("component", "scenario").Logger()}, nil
}

func (r *Runner) apply(i int) {
	st := r.Scenario.Steps[i]
	if err := Apply(r.World, r.Engine, st.Action); err != nil {
		r.log.Warn().Err(err).Int("step", i+1).Str("action", st.Type).Msg("step failed")
	}
}

// RunManual plays the scenario on a manual clock as fast as possible.
func (r *Runner) RunManual() {
	r.Engine.Enable()
	for i := range r.Scenario.Steps {
		r.Loop.Step(r.Scenario.waits[i])
		r.apply(i)
	}
	r.Loop.Step(r.Scenario.after)
}

// RunLive plays the scenario in real time. The loop must be driven by Run in
// another goroutine; every step is marshaled onto it.
func (r *Runner) RunLive(ctx context.Context) error {
	if err := r.Loop.Call(ctx, r.Engine.Enable); err != nil {
		return err
	}
	for i := range r.Scenario.Steps {
		if err := sleep(ctx, r.Scenario.waits[i]); err != nil {
			return err
		}
		if err := r.Loop.Call(ctx, func() { r.apply(i) }); err != nil {
			return err
		}
	}
	return sleep(ctx, r.Scenario.after)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

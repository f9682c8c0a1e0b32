// Package engine is the playback session engine. It owns the device and
// region session managers and routes world events to them. Every method must
// be called from the scheduler's goroutine.
package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/jukebox/internal/config"
	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/device"
	jberrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/marker"
	"github.com/tessro/jukebox/internal/region"
)

// Deps are the host collaborators.
type Deps struct {
	Catalog      core.Catalog
	World        core.World
	Spatial      core.SpatialQuery
	Sound        core.Sound
	Markers      core.Markers
	Notifier     core.Notifier
	Capabilities core.CapabilityProvider
	Scheduler    core.Scheduler
}

// Options tunes the engine.
type Options struct {
	DeviceTick    time.Duration
	RegionTick    time.Duration
	TeleportDelay time.Duration
	HearingRadius float64
	Volume        float32
	Pitch         float32
	Namespace     string
	Variants      []marker.Variant
	// LoopFile persists the loop set across restarts when set.
	LoopFile string
	Regions  *region.Map
	Rand     *rand.Rand
}

// OptionsFromConfig builds engine options from configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DeviceTick:    cfg.Engine.DeviceTick(),
		RegionTick:    cfg.Engine.RegionTick(),
		TeleportDelay: cfg.Engine.TeleportDelay(),
		HearingRadius: cfg.Engine.HearingRadius,
		Volume:        float32(cfg.Engine.Volume),
		Pitch:         float32(cfg.Engine.Pitch),
		Namespace:     cfg.Engine.SoundNamespace,
		Variants: marker.DefaultVariants(
			cfg.Markers.PrimaryOffset,
			cfg.Markers.AlternateOffset,
			core.Capability(cfg.Markers.AlternateCapability),
		),
		LoopFile: cfg.Engine.LoopPath(),
		Regions:  RegionMap(cfg.RegionMusic),
	}
}

// RegionMap converts configured region music into a region map.
func RegionMap(entries []config.RegionMusic) *region.Map {
	out := make([]region.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, region.Entry{Region: e.Region, Track: e.Track, Priority: e.Priority})
	}
	return region.NewMap(out...)
}

// Engine is one running instance of the playback session engine.
type Engine struct {
	deps     Deps
	opts     Options
	markers  *marker.Controller
	devices  *device.Manager
	regions  *region.Manager
	observer core.Observer
	enabled  bool
	log      zerolog.Logger
}

// New creates an engine and restores the persisted loop set.
func New(deps Deps, opts Options, log zerolog.Logger) (*Engine, error) {
	if deps.Capabilities == nil {
		deps.Capabilities = core.NoCapabilities{}
	}
	if opts.Namespace == "" {
		opts.Namespace = "jukebox"
	}

	loops := device.NewLoopSet()
	if opts.LoopFile != "" {
		var err error
		loops, err = device.LoadLoopSet(opts.LoopFile)
		if err != nil {
			return nil, fmt.Errorf("restore loop set: %w", err)
		}
	}

	e := &Engine{deps: deps, opts: opts, log: log.With().Str("component", "engine").Logger()}
	e.markers = marker.NewController(deps.Markers, deps.World, deps.Capabilities, opts.Variants, log)
	e.devices = device.NewManager(device.Deps{
		Catalog:   deps.Catalog,
		World:     deps.World,
		Sound:     deps.Sound,
		Notifier:  deps.Notifier,
		Scheduler: deps.Scheduler,
		Markers:   e.markers,
	}, device.Options{
		Tick:          opts.DeviceTick,
		HearingRadius: opts.HearingRadius,
		Volume:        opts.Volume,
		Pitch:         opts.Pitch,
		Namespace:     opts.Namespace,
		Rand:          opts.Rand,
		Loops:         loops,
		Observer:      e.emit,
	}, log)
	e.regions = region.NewManager(region.Deps{
		Catalog:   deps.Catalog,
		World:     deps.World,
		Spatial:   deps.Spatial,
		Sound:     deps.Sound,
		Notifier:  deps.Notifier,
		Scheduler: deps.Scheduler,
	}, opts.Regions, region.Options{
		Tick:          opts.RegionTick,
		TeleportDelay: opts.TeleportDelay,
		Volume:        opts.Volume,
		Pitch:         opts.Pitch,
		Namespace:     opts.Namespace,
		Observer:      e.emit,
	}, log)
	return e, nil
}

// Enable starts the region loop tick.
func (e *Engine) Enable() {
	if e.enabled {
		return
	}
	e.enabled = true
	e.regions.Enable()
	e.log.Info().
		Int("regions", e.regions.Map().Len()).
		Int("loops", e.devices.Loops().Len()).
		Msg("engine enabled")
}

// Enabled reports whether the engine is running.
func (e *Engine) Enabled() bool {
	return e.enabled
}

// SetObserver registers a callback for session notices.
func (e *Engine) SetObserver(o core.Observer) {
	e.observer = o
}

func (e *Engine) emit(n core.Notice) {
	if e.observer != nil {
		e.observer(n)
	}
}

// Dispatch routes a world event to the session managers.
func (e *Engine) Dispatch(ev Event) error {
	switch ev := ev.(type) {
	case DeviceGainedTrack:
		return e.devices.Start(ev.Location, ev.TrackID, ev.Player)
	case DeviceLostTrack:
		return ignoreNoSession(e.devices.Stop(ev.Location, device.ReasonEjected))
	case DeviceDestroyed:
		return ignoreNoSession(e.devices.Stop(ev.Location, device.ReasonDestroyed))
	case LoopToggled:
		looping := e.devices.ToggleLoop(ev.Location)
		if ev.Player != "" {
			e.deps.Notifier.Notify(ev.Player, LoopMessage(looping))
		}
		return nil
	case PlayerMoved:
		e.regions.OnMove(ev.Player, ev.From, ev.To)
		return nil
	case PlayerTeleported:
		e.regions.OnTeleport(ev.Player)
		return nil
	case PlayerJoined:
		e.devices.ShowTo(ev.Player)
		return nil
	case PlayerQuit:
		e.regions.OnQuit(ev.Player)
		return nil
	default:
		return fmt.Errorf("unknown event %T", ev)
	}
}

// LoopMessage is the text shown to a player who toggled looping.
func LoopMessage(looping bool) string {
	if looping {
		return "Looping: ENABLED " + marker.LoopIndicator
	}
	return "Looping: DISABLED"
}

func ignoreNoSession(err error) error {
	if errors.Is(err, jberrors.ErrNoSession) {
		return nil
	}
	return err
}

// StartDeviceSession starts trackID at loc, replacing any session there.
func (e *Engine) StartDeviceSession(loc core.Location, trackID string) error {
	return e.devices.Start(loc, trackID, "")
}

// StopDeviceSession stops the session at loc.
func (e *Engine) StopDeviceSession(loc core.Location) error {
	return e.devices.Stop(loc, device.ReasonStopped)
}

// ToggleLoop flips looping for loc and returns the new state.
func (e *Engine) ToggleLoop(loc core.Location) bool {
	return e.devices.ToggleLoop(loc)
}

// ReloadRegionMap replaces the region-to-track mapping.
func (e *Engine) ReloadRegionMap(m *region.Map) {
	e.regions.Reload(m)
}

// DisableAll stops every session, cancels every timer and persists the loop set.
func (e *Engine) DisableAll() error {
	var result jberrors.PartialResult[struct{}]
	result.AddError(e.devices.StopAll(device.ReasonDisabled))
	e.regions.Disable()
	e.enabled = false

	if e.opts.LoopFile != "" {
		if err := e.devices.Loops().Save(e.opts.LoopFile); err != nil {
			result.AddError(fmt.Errorf("persist loop set: %w", err))
		}
	}
	if result.HasErrors() {
		e.log.Warn().Str("errors", result.ErrorSummary()).Msg("disable finished with errors")
	} else {
		e.log.Info().Msg("engine disabled")
	}
	return result.Err()
}

// PlayFor plays trackID to a single player, outside any session.
func (e *Engine) PlayFor(player core.PlayerID, trackID string) error {
	track, ok := e.deps.Catalog.Track(trackID)
	if !ok {
		e.log.Warn().Str("player", string(player)).Str("track", trackID).Msg("unknown track")
		return fmt.Errorf("play %s for %s: %w", trackID, player, jberrors.ErrTrackNotFound)
	}
	key := core.SoundKey(e.opts.Namespace, track.ID)
	volume, pitch := e.opts.Volume, e.opts.Pitch
	if volume == 0 {
		volume = 1
	}
	if pitch == 0 {
		pitch = 1
	}
	if err := e.deps.Sound.Play(core.ForPlayer(player), key, volume, pitch); err != nil {
		return fmt.Errorf("play %s for %s: %w", trackID, player, err)
	}
	return nil
}

// StopFor stops trackID for a player. An empty trackID stops every track sound.
func (e *Engine) StopFor(player core.PlayerID, trackID string) error {
	key := ""
	if trackID != "" {
		key = core.SoundKey(e.opts.Namespace, trackID)
	}
	if err := e.deps.Sound.Stop(core.ForPlayer(player), key); err != nil {
		return fmt.Errorf("stop for %s: %w", player, err)
	}
	return nil
}

// StopAllFor stops every track sound for a player.
func (e *Engine) StopAllFor(player core.PlayerID) error {
	return e.StopFor(player, "")
}

// NowPlaying sends the now-playing line for trackID to a player.
func (e *Engine) NowPlaying(player core.PlayerID, trackID string) error {
	track, ok := e.deps.Catalog.Track(trackID)
	if !ok {
		return fmt.Errorf("now playing %s: %w", trackID, jberrors.ErrTrackNotFound)
	}
	e.deps.Notifier.Notify(player, fmt.Sprintf("♫ Now Playing: %s by %s", track.Name, track.Author))
	return nil
}

// Devices exposes the device session manager.
func (e *Engine) Devices() *device.Manager {
	return e.devices
}

// Regions exposes the region session manager.
func (e *Engine) Regions() *region.Manager {
	return e.regions
}

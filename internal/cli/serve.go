package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/bridge"
	"github.com/tessro/jukebox/internal/engine"
	"github.com/tessro/jukebox/internal/schedule"
	"github.com/tessro/jukebox/internal/sim"
	"github.com/tessro/jukebox/internal/tail"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the engine behind the host bridge",
	Long: `Run the playback session engine and accept a game host over WebSocket.

The host streams world actions (device changes, player moves, region
definitions) as JSON frames and receives the sound, marker and notify
commands the engine issues. The loop set is restored on start and saved
on shutdown.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default: bridge.listen)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	world := sim.NewWorld()
	loop := schedule.New()
	e, err := engine.New(engine.Deps{
		Catalog:      store,
		World:        world,
		Spatial:      world,
		Sound:        world,
		Markers:      world,
		Notifier:     world,
		Capabilities: world,
		Scheduler:    loop,
	}, engine.OptionsFromConfig(cfg), logger)
	if err != nil {
		return err
	}
	server := bridge.NewServer(loop, world, e, cfg.Bridge.Path, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The loop outlives ctx so shutdown can still run on it.
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = loop.Run(loopCtx)
	}()

	live := &liveEngine{loop: loop, engine: e}
	if err := loop.Call(ctx, e.Enable); err != nil {
		return err
	}

	watcher := tail.NewWatcher(live.Snapshot, time.Second)
	go func() { _ = watcher.Start(ctx) }()
	go func() {
		for u := range watcher.Updates() {
			logger.Info().
				Int("devices", len(u.Snapshot.Devices)).
				Int("regions", len(u.Snapshot.Regions)).
				Int("looping", len(u.Snapshot.Loops)).
				Int("hosts", server.Clients()).
				Msg("sessions changed")
		}
	}()

	addr := serveListen
	if addr == "" {
		addr = cfg.Bridge.Listen
	}
	serveErr := server.ListenAndServe(ctx, addr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := live.disable(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("shutdown finished with errors")
	}
	cancelLoop()
	<-loopDone

	if serveErr != nil {
		return fmt.Errorf("serve: %w", serveErr)
	}
	return nil
}

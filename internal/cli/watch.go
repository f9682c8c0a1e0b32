package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/scenario"
	"github.com/tessro/jukebox/internal/schedule"
	"github.com/tessro/jukebox/internal/tui"
)

var (
	watchRefresh int
	watchSeed    uint64
)

var watchCmd = &cobra.Command{
	Use:     "watch <scenario.toml>",
	Aliases: []string{"ui"},
	Short:   "Play a scenario in real time on a live dashboard",
	Long: `Play a scenario in real time and watch its sessions on a dashboard.

The dashboard shows:
  • Devices - active jukebox sessions
  • Now Playing - the selected session with progress
  • Regions - players hearing region music
  • Activity - session notices as they happen

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Filter devices
  l            Toggle loop mode
  x            Stop session
  Tab          Switch panel`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchRefresh, "refresh", 0, "refresh interval in milliseconds (default: tui.refresh_interval)")
	watchCmd.Flags().Uint64Var(&watchSeed, "seed", 1, "random seed for effect notes")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	base := scenarioCatalog(false)
	if base != nil {
		defer func() { _ = base.Close() }()
	}

	loop := schedule.New()
	runner, err := scenario.NewRunner(sc, base, loop, scenarioOptions(watchSeed), logger)
	if err != nil {
		return err
	}

	notices := make(chan core.Notice, 256)
	runner.Engine.SetObserver(func(n core.Notice) {
		select {
		case notices <- n:
		default:
		}
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := runner.RunLive(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("scenario failed")
		}
	}()

	refresh := watchRefresh
	if refresh <= 0 {
		refresh = cfg.TUI.RefreshInterval
	}

	live := &liveEngine{loop: loop, engine: runner.Engine}
	title := "jukebox"
	if sc.Name != "" {
		title = "jukebox · " + sc.Name
	}
	return tui.Run(live, tui.Options{
		Refresh: time.Duration(refresh) * time.Millisecond,
		Theme:   cfg.TUI.Theme,
		Title:   title,
		Notices: notices,
		Done:    done,
	})
}

package cli

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/catalog"
	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/engine"
	"github.com/tessro/jukebox/internal/scenario"
	"github.com/tessro/jukebox/internal/schedule"
	"github.com/tessro/jukebox/internal/sim"
	"github.com/tessro/jukebox/internal/tail"
)

var (
	simCommands  bool
	simEffects   bool
	simSeed      uint64
	simNoCatalog bool
	simNoColor   bool
	simTemplate  string
)

var simulateCmd = &cobra.Command{
	Use:     "simulate <scenario.toml>",
	Aliases: []string{"sim"},
	Short:   "Run a scenario offline on a simulated clock",
	Long: `Run a scenario script against an in-memory world as fast as possible and
print every session notice. Time is simulated, so a ten minute scenario
finishes instantly and the output is repeatable for a given --seed.

Template fields for --format:
  {{.Time}} {{.Kind}} {{.Location}} {{.Player}} {{.Region}} {{.Track}}
  {{.Name}} {{.Author}} {{.Looping}} {{.Reason}} {{.Emoji}}`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().BoolVar(&simCommands, "commands", false, "also print world commands")
	simulateCmd.Flags().BoolVar(&simEffects, "effects", false, "include ambient effects with --commands")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 1, "random seed for effect notes")
	simulateCmd.Flags().BoolVar(&simNoCatalog, "no-catalog", false, "use only the scenario's tracks")
	simulateCmd.Flags().BoolVar(&simNoColor, "no-color", false, "disable colors")
	simulateCmd.Flags().StringVar(&simTemplate, "format", "", "custom output template")
	rootCmd.AddCommand(simulateCmd)
}

// scenarioCatalog returns the configured catalog as a base for scenario
// tracks, or nil when it is disabled or cannot be opened.
func scenarioCatalog(skip bool) catalog.Store {
	if skip {
		return nil
	}
	store, err := openCatalog()
	if err != nil {
		logger.Warn().Err(err).Msg("catalog unavailable, using scenario tracks only")
		return nil
	}
	return store
}

// scenarioOptions returns engine options for running a scenario. The loop
// set is never persisted from a scenario.
func scenarioOptions(seed uint64) engine.Options {
	opts := engine.OptionsFromConfig(cfg)
	opts.LoopFile = ""
	opts.Rand = rand.New(rand.NewPCG(seed, seed))
	return opts
}

func runSimulate(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	base := scenarioCatalog(simNoCatalog)
	if base != nil {
		defer func() { _ = base.Close() }()
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loop := schedule.NewManual(start)
	runner, err := scenario.NewRunner(sc, base, loop, scenarioOptions(simSeed), logger)
	if err != nil {
		return err
	}

	var formatter *tail.Formatter
	if !JSONOutput() {
		opts := []tail.FormatterOption{tail.WithEmoji(true), tail.WithTimestamp(true)}
		if !simNoColor {
			opts = append(opts, tail.WithColor(cfg.TUI.Theme))
		}
		if simTemplate != "" {
			opts = append(opts, tail.WithTemplate(simTemplate))
		}
		formatter = tail.NewFormatter(opts...)
	}

	enc := json.NewEncoder(os.Stdout)
	runner.Engine.SetObserver(func(n core.Notice) {
		if formatter == nil {
			_ = enc.Encode(n)
			return
		}
		fmt.Println(formatter.Format(n))
	})
	if simCommands {
		runner.World.OnCommand(func(c sim.Command) {
			if c.Kind == sim.CommandEffect && !simEffects {
				return
			}
			if formatter == nil {
				_ = enc.Encode(c)
				return
			}
			line, _ := json.Marshal(c)
			fmt.Printf("  %s %s\n", loop.Now().Format("15:04:05.000"), line)
		})
	}

	if sc.Name != "" && formatter != nil {
		fmt.Printf("Scenario: %s (%s)\n\n", sc.Name, sc.Duration())
	}
	runner.RunManual()

	snap := runner.Engine.Snapshot()
	if formatter != nil {
		fmt.Printf("\n%d device sessions, %d region sessions, %d looping after %s\n",
			len(snap.Devices), len(snap.Regions), len(snap.Loops), snap.Time.Sub(start))
	}
	return nil
}

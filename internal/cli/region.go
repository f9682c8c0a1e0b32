package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/engine"
	jberrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/wizard"
)

var regionPriority int

var regionCmd = &cobra.Command{
	Use:   "region",
	Short: "Manage region music",
	Long: `Commands for mapping regions to the track played inside them.

Region names are matched case-insensitively. When a player stands in several
mapped regions, the highest priority wins.`,
}

var regionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List region mappings",
	RunE:    runRegionList,
}

var regionSetCmd = &cobra.Command{
	Use:   "set <region> [track]",
	Short: "Map a region to a track",
	Long: `Map a region to a track. Without a track, search the catalog for one.

Examples:
  jukebox region set spawn cat
  jukebox region set arena --priority 10`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRegionSet,
}

var regionRemoveCmd = &cobra.Command{
	Use:     "remove <region>",
	Aliases: []string{"rm"},
	Short:   "Remove a region mapping",
	Args:    cobra.ExactArgs(1),
	RunE:    runRegionRemove,
}

func init() {
	regionSetCmd.Flags().IntVarP(&regionPriority, "priority", "p", 0, "priority when regions overlap")

	regionCmd.AddCommand(regionListCmd)
	regionCmd.AddCommand(regionSetCmd)
	regionCmd.AddCommand(regionRemoveCmd)
	rootCmd.AddCommand(regionCmd)
}

func runRegionList(cmd *cobra.Command, args []string) error {
	entries := engine.RegionMap(cfg.RegionMusic).Entries()

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No regions mapped. Add one with 'jukebox region set'")
		return nil
	}

	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	table := NewTable("REGION", "TRACK", "NAME", "PRIORITY")
	for _, e := range entries {
		name := "(missing)"
		if t, ok := store.Track(e.Track); ok {
			name = t.Name
		}
		table.Row(e.Region, e.Track, TruncateString(name, 32), fmt.Sprint(e.Priority))
	}
	table.Flush()
	return nil
}

func runRegionSet(cmd *cobra.Command, args []string) error {
	region := strings.TrimSpace(args[0])
	if region == "" {
		return fmt.Errorf("region name is empty")
	}

	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var track string
	if len(args) == 2 {
		track = strings.ToLower(args[1])
	} else {
		tracks, err := store.List()
		if err != nil {
			return err
		}
		if len(tracks) == 0 {
			return jberrors.WithSuggestion(
				fmt.Errorf("the catalog is empty"),
				"Add a track with 'jukebox catalog add' first",
			)
		}

		picked, err := wizard.NewInteractive().PromptTrack("Select music for "+region, tracks)
		if err != nil {
			return err
		}
		if picked == nil {
			return fmt.Errorf("no track selected")
		}
		track = picked.ID
	}

	if _, ok := store.Track(track); !ok {
		logger.Warn().Str("region", region).Str("track", track).Msg("mapping a region to a track missing from the catalog")
	}

	cfg.SetRegionMusic(region, track, regionPriority)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := saveConfig(); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"status":   "updated",
			"region":   region,
			"track":    track,
			"priority": regionPriority,
		})
	}
	fmt.Printf("Region %s plays %s\n", region, track)
	return nil
}

func runRegionRemove(cmd *cobra.Command, args []string) error {
	region := args[0]
	if !cfg.RemoveRegionMusic(region) {
		return fmt.Errorf("%w: %s", jberrors.ErrRegionNotMapped, region)
	}
	if err := saveConfig(); err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "removed", "region": region})
	}
	fmt.Printf("Removed mapping for %s\n", region)
	return nil
}

// saveConfig writes cfg back to the active config file.
func saveConfig() error {
	return cfg.Save(getConfigPath())
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/catalog"
	"github.com/tessro/jukebox/internal/core"
	jberrors "github.com/tessro/jukebox/internal/errors"
)

var (
	addName      string
	addAuthor    string
	addLore      []string
	addDuration  int
	addAudio     string
	addStyle     string
	addModelData int
	keyCopy      bool
	removeAudio  bool
)

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Aliases: []string{"discs"},
	Short:   "Manage the track catalog",
	Long:    `Commands for listing, adding and removing catalog tracks.`,
}

var catalogListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List catalog tracks",
	RunE:    runCatalogList,
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add or replace a track",
	Long: `Add a track to the catalog, replacing any track with the same id.

When --audio names an MP3, its duration is probed unless --duration is set.
The file is copied into the audio directory next to the catalog.

Examples:
  jukebox catalog add cat --name Cat --author C418 --duration 185
  jukebox catalog add theme --name "Town Theme" --author Ana --audio theme.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogAdd,
}

var catalogRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a track",
	Args:    cobra.ExactArgs(1),
	RunE:    runCatalogRemove,
}

var catalogKeyCmd = &cobra.Command{
	Use:   "key <id>",
	Short: "Print the sound key a track plays under",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogKey,
}

func init() {
	catalogAddCmd.Flags().StringVar(&addName, "name", "", "display name (required)")
	catalogAddCmd.Flags().StringVar(&addAuthor, "author", "", "author")
	catalogAddCmd.Flags().StringSliceVar(&addLore, "lore", nil, "lore lines")
	catalogAddCmd.Flags().IntVar(&addDuration, "duration", -1, "duration in seconds (0 plays indefinitely)")
	catalogAddCmd.Flags().StringVar(&addAudio, "audio", "", "audio file to import (.mp3 or .ogg)")
	catalogAddCmd.Flags().StringVar(&addStyle, "style", core.DefaultStyle, "disc style")
	catalogAddCmd.Flags().IntVar(&addModelData, "model-data", 0, "custom model data")
	_ = catalogAddCmd.MarkFlagRequired("name")

	catalogRemoveCmd.Flags().BoolVar(&removeAudio, "audio", true, "also delete imported audio")
	catalogKeyCmd.Flags().BoolVar(&keyCopy, "copy", false, "copy the key to the clipboard")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogRemoveCmd)
	catalogCmd.AddCommand(catalogKeyCmd)
	rootCmd.AddCommand(catalogCmd)
}

func openCatalog() (catalog.Store, error) {
	return catalog.Open(cfg.Catalog.Driver, cfg.Catalog.CatalogPath())
}

// audioDir holds imported audio next to the catalog file.
func audioDir() string {
	return filepath.Join(filepath.Dir(cfg.Catalog.CatalogPath()), "audio")
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	tracks, err := store.List()
	if err != nil {
		return err
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(tracks)
	}

	if len(tracks) == 0 {
		fmt.Println("No tracks. Add one with 'jukebox catalog add'")
		return nil
	}

	table := NewTable("ID", "NAME", "AUTHOR", "DURATION", "STYLE")
	for _, t := range tracks {
		duration := "∞"
		if !t.Indefinite() {
			duration = FormatDuration(t.DurationSeconds)
		}
		table.Row(t.ID, TruncateString(t.Name, 32), TruncateString(t.Author, 24), duration, t.Style)
	}
	table.Flush()
	return nil
}

func runCatalogAdd(cmd *cobra.Command, args []string) error {
	track := core.Track{
		ID:              strings.ToLower(args[0]),
		Name:            addName,
		Author:          addAuthor,
		Lore:            addLore,
		DurationSeconds: addDuration,
		Style:           addStyle,
		CustomModelData: addModelData,
	}

	var imported int64
	if addAudio != "" {
		if track.DurationSeconds < 0 && strings.EqualFold(filepath.Ext(addAudio), ".mp3") {
			secs, err := catalog.ProbeFile(addAudio)
			if err != nil {
				return jberrors.WithSuggestion(err, "Pass --duration to set the length by hand")
			}
			track.DurationSeconds = secs
		}
		n, err := catalog.ImportAudio(audioDir(), track.ID, addAudio)
		if err != nil {
			return err
		}
		imported = n
	}
	if track.DurationSeconds < 0 {
		return jberrors.WithSuggestion(
			fmt.Errorf("no duration for track %s", track.ID),
			"Pass --duration, or --audio with an MP3 to probe",
		)
	}

	if err := catalog.Validate(&track); err != nil {
		return err
	}

	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Put(track); err != nil {
		return err
	}
	logger.Debug().Str("track", track.ID).Int("duration", track.DurationSeconds).Msg("track saved")

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(track)
	}

	fmt.Printf("Added %s (%s by %s)\n", track.ID, track.Name, track.Author)
	if imported > 0 {
		fmt.Printf("  imported %s of audio into %s\n", humanize.Bytes(uint64(imported)), audioDir())
	}
	if track.Indefinite() {
		fmt.Println("  plays until stopped")
	} else {
		fmt.Printf("  duration %s\n", FormatDuration(track.DurationSeconds))
	}
	return nil
}

func runCatalogRemove(cmd *cobra.Command, args []string) error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	id := strings.ToLower(args[0])
	ok, err := store.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return jberrors.WithSuggestion(
			fmt.Errorf("%w: %s", jberrors.ErrTrackNotFound, id),
			"Run 'jukebox catalog list' to see available tracks",
		)
	}
	if removeAudio {
		if err := catalog.RemoveAudio(audioDir(), id); err != nil {
			logger.Warn().Err(err).Str("track", id).Msg("failed to remove audio")
		}
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "removed", "id": id})
	}
	fmt.Printf("Removed %s\n", id)
	return nil
}

func runCatalogKey(cmd *cobra.Command, args []string) error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	id := strings.ToLower(args[0])
	track, ok := store.Track(id)
	if !ok {
		return fmt.Errorf("%w: %s", jberrors.ErrTrackNotFound, id)
	}

	key := core.SoundKey(cfg.Engine.SoundNamespace, track.ID)
	if keyCopy {
		if err := clipboard.WriteAll(key); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{
			"id":         track.ID,
			"key":        key,
			"model_data": strconv.Itoa(track.CustomModelData),
			"copied":     strconv.FormatBool(keyCopy),
		})
	}

	fmt.Println(key)
	if keyCopy && Verbose() {
		fmt.Fprintln(os.Stderr, "copied to clipboard")
	}
	return nil
}

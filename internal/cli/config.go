package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/config"
	jberrors "github.com/tessro/jukebox/internal/errors"
	"github.com/tessro/jukebox/internal/wizard"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing jukebox configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, including defaults and environment overrides.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  engine.device_tick_ms        Device session tick interval
  engine.region_tick_ms        Region loop check interval
  engine.teleport_delay_ms     Delay before re-checking regions after a teleport
  engine.hearing_radius        Radius device sounds carry, in blocks
  engine.volume                Playback volume
  engine.pitch                 Playback pitch
  engine.sound_namespace       Namespace of packaged track sounds
  engine.loop_file             File the loop set is saved to
  markers.primary_offset       Marker height for most viewers
  markers.alternate_offset     Marker height for alternate clients
  markers.alternate_capability Capability selecting the alternate height
  catalog.driver               Catalog store (json or sqlite)
  catalog.path                 Catalog location
  bridge.listen                Bridge listen address
  bridge.path                  Bridge WebSocket path
  tui.theme                    Dashboard theme (auto, mocha, latte, ...)
  tui.refresh_interval         Dashboard refresh in milliseconds
  log.level                    Log level
  log.file                     Log file (default: stderr)

Examples:
  jukebox config set engine.device_tick_ms 250
  jukebox config set catalog.driver sqlite`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var initInteractive bool

func init() {
	configInitCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "answer setup questions instead of using defaults")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(cfg)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return jberrors.WithSuggestion(
			fmt.Errorf("%w at %s", jberrors.ErrConfigNotFound, configPath),
			"Run 'jukebox config init' first",
		)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	initial := config.Default()
	if initInteractive {
		if err := wizard.RunSetup(initial); err != nil {
			return err
		}
	}
	if err := initial.Save(configPath); err != nil {
		return err
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	} else {
		fmt.Printf("Created config file: %s\n", configPath)
		fmt.Println("\nNext steps:")
		fmt.Println("  1. Add tracks with 'jukebox catalog add'")
		fmt.Println("  2. Map regions with 'jukebox region set'")
		fmt.Println("  3. Try a scenario with 'jukebox simulate'")
	}

	return nil
}

// getConfigPath returns the file commands write to: --config, the first
// existing config file, or ~/.jukeboxrc.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := config.FindConfigFile(); p != "" {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".jukeboxrc"
	}

	return filepath.Join(home, ".jukeboxrc")
}

// configValue converts a raw value to the TOML type of key.
func configValue(key, value string) (interface{}, error) {
	switch key {
	case "engine.device_tick_ms", "engine.region_tick_ms", "engine.teleport_delay_ms", "tui.refresh_interval":
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return int64(i), nil
	case "engine.hearing_radius", "engine.volume", "engine.pitch", "markers.primary_offset", "markers.alternate_offset":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("value must be a number for %s", key)
		}
		return f, nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return jberrors.WithSuggestion(
			fmt.Errorf("%w at %s", jberrors.ErrConfigNotFound, configPath),
			"Run 'jukebox config init' first",
		)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var rawConfig map[string]interface{}
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format. Use 'section.key' (e.g., engine.volume)")
	}
	section, field := parts[0], parts[1]

	typedValue, err := configValue(key, value)
	if err != nil {
		return err
	}

	sectionMap, ok := rawConfig[section].(map[string]interface{})
	if !ok {
		sectionMap = make(map[string]interface{})
		rawConfig[section] = sectionMap
	}
	sectionMap[field] = typedValue

	if err := writeRawConfig(configPath, rawConfig); err != nil {
		return err
	}

	// Reject values that leave the file invalid.
	updated, err := config.LoadFrom(configPath)
	if err == nil {
		err = updated.Validate()
	}
	if err != nil {
		_ = os.WriteFile(configPath, data, 0o644)
		return fmt.Errorf("%w: %v", jberrors.ErrInvalidConfig, err)
	}

	if JSONOutput() {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	} else {
		fmt.Printf("Set %s = %s\n", key, value)
	}

	return nil
}

func writeRawConfig(path string, raw map[string]interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintln(f, "# Jukebox Configuration")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(raw); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

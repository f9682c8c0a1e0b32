package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/jukebox/internal/core"
	"github.com/tessro/jukebox/internal/device"
	"github.com/tessro/jukebox/internal/wizard"
)

var loopsCmd = &cobra.Command{
	Use:   "loops",
	Short: "Manage the saved loop set",
	Long: `Commands for the set of device locations in loop mode.

The engine restores this set on start and saves it on shutdown. Edit it only
while 'jukebox serve' is stopped, or the running engine will overwrite it.`,
}

var loopsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List looping device locations",
	RunE:    runLoopsList,
}

var loopsAddCmd = &cobra.Command{
	Use:   "add <world(x,y,z)>",
	Short: "Put a device location in loop mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoopsAdd,
}

var loopsRemoveCmd = &cobra.Command{
	Use:     "remove [world(x,y,z)]",
	Aliases: []string{"rm"},
	Short:   "Take a device location out of loop mode",
	Long:    `Take a device location out of loop mode. Without a location, pick one.`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runLoopsRemove,
}

var loopsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Take every device out of loop mode",
	RunE:  runLoopsClear,
}

func init() {
	loopsCmd.AddCommand(loopsListCmd)
	loopsCmd.AddCommand(loopsAddCmd)
	loopsCmd.AddCommand(loopsRemoveCmd)
	loopsCmd.AddCommand(loopsClearCmd)
	rootCmd.AddCommand(loopsCmd)
}

func loadLoops() (*device.LoopSet, error) {
	return device.LoadLoopSet(cfg.Engine.LoopPath())
}

func runLoopsList(cmd *cobra.Command, args []string) error {
	loops, err := loadLoops()
	if err != nil {
		return err
	}
	locs := loops.Locations()

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(locs)
	}
	if len(locs) == 0 {
		fmt.Println("No device is in loop mode")
		return nil
	}

	table := NewTable("WORLD", "X", "Y", "Z")
	for _, l := range locs {
		table.Row(l.World, fmt.Sprint(l.X), fmt.Sprint(l.Y), fmt.Sprint(l.Z))
	}
	table.Flush()
	return nil
}

func runLoopsAdd(cmd *cobra.Command, args []string) error {
	loc, err := core.ParseLocation(args[0])
	if err != nil {
		return err
	}
	loops, err := loadLoops()
	if err != nil {
		return err
	}
	if loops.Contains(loc) {
		fmt.Printf("%s is already looping\n", loc)
		return nil
	}
	loops.Toggle(loc)
	if err := loops.Save(cfg.Engine.LoopPath()); err != nil {
		return err
	}
	fmt.Printf("%s now loops\n", loc)
	return nil
}

func runLoopsRemove(cmd *cobra.Command, args []string) error {
	loops, err := loadLoops()
	if err != nil {
		return err
	}

	var loc core.Location
	if wizard.NeedsArg(args, 0) {
		picked, err := wizard.NewInteractive().PromptLocation("Stop looping", loops.Locations())
		if err != nil {
			return err
		}
		if picked == nil {
			return fmt.Errorf("no location selected")
		}
		loc = *picked
	} else {
		loc, err = core.ParseLocation(args[0])
		if err != nil {
			return err
		}
	}

	if !loops.Contains(loc) {
		return fmt.Errorf("%s is not looping", loc)
	}
	loops.Toggle(loc)
	if err := loops.Save(cfg.Engine.LoopPath()); err != nil {
		return err
	}
	fmt.Printf("%s no longer loops\n", loc)
	return nil
}

func runLoopsClear(cmd *cobra.Command, args []string) error {
	loops, err := loadLoops()
	if err != nil {
		return err
	}
	n := loops.Len()
	if err := device.NewLoopSet().Save(cfg.Engine.LoopPath()); err != nil {
		return err
	}
	fmt.Printf("Cleared %d looping locations\n", n)
	return nil
}

package wizard

import (
	"os"

	"golang.org/x/term"

	"github.com/tessro/jukebox/internal/core"
)

// Interactive provides interactive fallbacks for commands missing an argument.
type Interactive struct {
	enabled bool
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptTrack launches the track search if interactive mode is available.
// Returns the selected track, or nil if cancelled or not interactive.
func (i *Interactive) PromptTrack(title string, tracks []core.Track) (*core.Track, error) {
	if !i.CanInteract() || len(tracks) == 0 {
		return nil, nil
	}
	return RunSearch(title, tracks)
}

// PromptLocation launches the location picker if interactive mode is available.
func (i *Interactive) PromptLocation(title string, locs []core.Location) (*core.Location, error) {
	if !i.CanInteract() || len(locs) == 0 {
		return nil, nil
	}
	return RunLocationPicker(title, locs)
}

// NeedsArg returns true if a positional argument at index is missing.
func NeedsArg(args []string, index int) bool {
	return len(args) <= index
}

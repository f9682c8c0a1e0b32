package device

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tessro/jukebox/internal/core"
)

// LoopSet holds the locations whose devices loop forever. Membership is
// independent of whether a session is active.
type LoopSet struct {
	locs map[core.Location]struct{}
}

// NewLoopSet creates an empty loop set.
func NewLoopSet(locs ...core.Location) *LoopSet {
	s := &LoopSet{locs: make(map[core.Location]struct{}, len(locs))}
	for _, l := range locs {
		s.locs[l] = struct{}{}
	}
	return s
}

// Contains reports whether loc loops.
func (s *LoopSet) Contains(loc core.Location) bool {
	_, ok := s.locs[loc]
	return ok
}

// Toggle flips loc's membership and returns the new state.
func (s *LoopSet) Toggle(loc core.Location) bool {
	if s.Contains(loc) {
		delete(s.locs, loc)
		return false
	}
	s.locs[loc] = struct{}{}
	return true
}

// Len returns the number of looping locations.
func (s *LoopSet) Len() int {
	return len(s.locs)
}

// Locations returns the looping locations in a stable order.
func (s *LoopSet) Locations() []core.Location {
	out := make([]core.Location, 0, len(s.locs))
	for l := range s.locs {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// LoadLoopSet reads a loop set from path. A missing file yields an empty set.
func LoadLoopSet(path string) (*LoopSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLoopSet(), nil
		}
		return nil, fmt.Errorf("failed to read loop file: %w", err)
	}

	var locs []core.Location
	if err := json.Unmarshal(data, &locs); err != nil {
		return nil, fmt.Errorf("failed to parse loop file: %w", err)
	}
	return NewLoopSet(locs...), nil
}

// Save writes the loop set to path.
func (s *LoopSet) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s.Locations(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal loop set: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write loop file: %w", err)
	}
	return nil
}

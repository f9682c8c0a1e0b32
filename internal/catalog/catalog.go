// Package catalog stores the uploaded tracks the engine can play.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tessro/jukebox/internal/core"
	jberrors "github.com/tessro/jukebox/internal/errors"
)

// Store is a writable track catalog.
type Store interface {
	core.Catalog
	List() ([]core.Track, error)
	Put(t core.Track) error
	// Delete removes a track and reports whether it existed.
	Delete(id string) (bool, error)
	Close() error
}

var idPattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// Validate checks a track before it is stored and fills in defaults.
func Validate(t *core.Track) error {
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		return fmt.Errorf("track id is required")
	}
	if !idPattern.MatchString(t.ID) {
		return fmt.Errorf("track id %q must be lowercase letters, digits, '_', '-' or '.'", t.ID)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("track %s: name is required", t.ID)
	}
	if t.DurationSeconds < 0 {
		return fmt.Errorf("track %s: duration cannot be negative", t.ID)
	}
	if t.Style == "" {
		t.Style = core.DefaultStyle
	}
	if !core.ValidStyle(t.Style) {
		return fmt.Errorf("track %s: unknown style %q", t.ID, t.Style)
	}
	return nil
}

// Open opens the store for driver at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", "json":
		return OpenJSON(path)
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, jberrors.WithSuggestion(
			fmt.Errorf("%w: unknown catalog driver %q", jberrors.ErrCatalogUnavailable, driver),
			"Set [catalog] driver to \"json\" or \"sqlite\"",
		)
	}
}

// Memory is an in-memory catalog.
type Memory struct {
	tracks map[string]core.Track
}

// NewMemory creates a catalog holding tracks.
func NewMemory(tracks ...core.Track) *Memory {
	m := &Memory{tracks: make(map[string]core.Track, len(tracks))}
	for _, t := range tracks {
		m.tracks[t.ID] = t
	}
	return m
}

// Track implements core.Catalog.
func (m *Memory) Track(id string) (*core.Track, bool) {
	t, ok := m.tracks[id]
	if !ok {
		return nil, false
	}
	return &t, true
}

// List returns all tracks ordered by id.
func (m *Memory) List() ([]core.Track, error) {
	out := make([]core.Track, 0, len(m.tracks))
	for _, t := range m.tracks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Put adds or replaces a track.
func (m *Memory) Put(t core.Track) error {
	if err := Validate(&t); err != nil {
		return err
	}
	m.tracks[t.ID] = t
	return nil
}

// Delete removes a track.
func (m *Memory) Delete(id string) (bool, error) {
	if _, ok := m.tracks[id]; !ok {
		return false, nil
	}
	delete(m.tracks, id)
	return true, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

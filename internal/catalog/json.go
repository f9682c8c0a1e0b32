package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tessro/jukebox/internal/core"
)

// JSONStore persists the catalog as a JSON list of tracks.
type JSONStore struct {
	*Memory
	path string
}

// OpenJSON loads the catalog at path, creating an empty file if none exists.
func OpenJSON(path string) (*JSONStore, error) {
	s := &JSONStore{Memory: NewMemory(), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}

	var tracks []core.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	for _, t := range tracks {
		if t.Style == "" {
			t.Style = core.DefaultStyle
		}
		s.tracks[t.ID] = t
	}
	return s, nil
}

// Path returns the catalog file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Put adds or replaces a track and writes the file.
func (s *JSONStore) Put(t core.Track) error {
	if err := s.Memory.Put(t); err != nil {
		return err
	}
	return s.save()
}

// Delete removes a track and writes the file.
func (s *JSONStore) Delete(id string) (bool, error) {
	ok, _ := s.Memory.Delete(id)
	if !ok {
		return false, nil
	}
	return true, s.save()
}

func (s *JSONStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	tracks, _ := s.List()
	data, err := json.MarshalIndent(tracks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// Package region plays mapped tracks to players standing inside geofenced regions.
package region

import (
	"sort"

	"golang.org/x/text/cases"
)

// Entry maps a region to the track played inside it. Higher priorities win
// when a position lies in several mapped regions.
type Entry struct {
	Region   string
	Track    string
	Priority int
}

// Map is the region-to-track mapping. Region names are matched case-insensitively.
type Map struct {
	entries map[string]Entry
	fold    cases.Caser
}

// NewMap builds a map. Later entries replace earlier ones for the same region.
func NewMap(entries ...Entry) *Map {
	m := &Map{entries: make(map[string]Entry, len(entries)), fold: cases.Fold()}
	for _, e := range entries {
		m.entries[m.key(e.Region)] = e
	}
	return m
}

func (m *Map) key(region string) string {
	return m.fold.String(region)
}

// Len returns the number of mapped regions.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Lookup returns the entry for region.
func (m *Map) Lookup(region string) (Entry, bool) {
	if m == nil {
		return Entry{}, false
	}
	e, ok := m.entries[m.key(region)]
	return e, ok
}

// Select picks the mapped region among regions, which are in query order.
// The highest priority wins; ties keep the first in query order.
func (m *Map) Select(regions []string) (Entry, bool) {
	var best Entry
	found := false
	for _, r := range regions {
		e, ok := m.Lookup(r)
		if !ok {
			continue
		}
		if !found || e.Priority > best.Priority {
			best, found = e, true
		}
	}
	return best, found
}

// Same reports whether a and b name the same region.
func (m *Map) Same(a, b string) bool {
	return m.key(a) == m.key(b)
}

// Entries returns all entries ordered by region name.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out
}

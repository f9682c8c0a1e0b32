package core

import (
	"fmt"
	"time"
)

// Track is an immutable catalog entry for an uploaded audio track.
type Track struct {
	ID              string   `json:"id" toml:"id"`
	Name            string   `json:"name" toml:"name"`
	Author          string   `json:"author" toml:"author"`
	Lore            []string `json:"lore" toml:"lore"`
	DurationSeconds int      `json:"durationSeconds" toml:"duration_seconds"`
	Style           string   `json:"style" toml:"style"`
	CustomModelData int      `json:"customModelData,omitempty" toml:"custom_model_data"`
}

// Duration returns the track length. Zero means indefinite.
func (t *Track) Duration() time.Duration {
	if t == nil || t.DurationSeconds <= 0 {
		return 0
	}
	return time.Duration(t.DurationSeconds) * time.Second
}

// Indefinite returns true if the track never ends by elapsed time.
func (t *Track) Indefinite() bool {
	return t.Duration() == 0
}

// DefaultStyle is used when a track does not name a disc style.
const DefaultStyle = "cat"

// Styles lists the disc styles a track can be rendered with.
var Styles = []string{
	"13", "cat", "blocks", "chirp", "far", "mall", "mellohi", "stal", "strad",
	"ward", "11", "wait", "otherside", "5", "pigstep", "relic", "creator",
	"precipice", "creator_music_box",
}

// ValidStyle reports whether s is a known disc style.
func ValidStyle(s string) bool {
	for _, style := range Styles {
		if style == s {
			return true
		}
	}
	return false
}

// SoundKey returns the namespaced sound key under which a track is packaged.
func SoundKey(namespace, trackID string) string {
	return fmt.Sprintf("%s:disc.%s", namespace, trackID)
}

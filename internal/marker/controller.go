// Package marker spawns and maintains the paired now-playing markers shown
// above an active device, one variant per client population.
package marker

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tessro/jukebox/internal/core"
)

// Variant describes one rendering of a session's markers.
type Variant struct {
	Name   string
	Height float64
	// Capability selects the viewers that see this variant. The variant with an
	// empty capability is shown to everyone else.
	Capability core.Capability
}

// DefaultVariants returns the standard two-population layout.
func DefaultVariants(primaryHeight, alternateHeight float64, alternate core.Capability) []Variant {
	return []Variant{
		{Name: "primary", Height: primaryHeight},
		{Name: "alternate", Height: alternateHeight, Capability: alternate},
	}
}

// Set holds the marker ids of one session, indexed like the controller's variants.
type Set []core.MarkerID

// Controller owns marker lifecycle and per-viewer visibility.
type Controller struct {
	markers  core.Markers
	world    core.World
	caps     core.CapabilityProvider
	variants []Variant
	log      zerolog.Logger
}

// NewController creates a marker controller. A nil capability provider reports
// no capabilities for any viewer.
func NewController(markers core.Markers, world core.World, caps core.CapabilityProvider, variants []Variant, log zerolog.Logger) *Controller {
	if caps == nil {
		caps = core.NoCapabilities{}
	}
	if len(variants) == 0 {
		variants = DefaultVariants(1.2, 1.5, "alternate-client")
	}
	return &Controller{
		markers:  markers,
		world:    world,
		caps:     caps,
		variants: variants,
		log:      log.With().Str("component", "markers").Logger(),
	}
}

// Variants returns the configured variants.
func (c *Controller) Variants() []Variant {
	return c.variants
}

// Spawn creates one marker per variant above loc, labels them and applies
// visibility for every current viewer in loc's world.
func (c *Controller) Spawn(loc core.Location, label Label) (Set, error) {
	set := make(Set, 0, len(c.variants))
	text := label.String()

	for _, v := range c.variants {
		id, err := c.markers.Spawn(loc.Offset(0.5, v.Height, 0.5))
		if err != nil {
			c.Remove(set)
			return nil, fmt.Errorf("spawn %s marker at %s: %w", v.Name, loc, err)
		}
		set = append(set, id)
		if err := c.markers.SetText(id, text); err != nil {
			c.log.Debug().Err(err).Str("marker", string(id)).Msg("set marker text failed")
		}
	}

	for _, viewer := range c.world.Viewers(loc.World) {
		c.ShowTo(viewer, set)
	}
	return set, nil
}

// Present reports whether every marker of the set still exists.
func (c *Controller) Present(set Set) bool {
	if len(set) != len(c.variants) {
		return false
	}
	for _, id := range set {
		if !c.markers.Exists(id) {
			return false
		}
	}
	return true
}

// SetLabel updates the text of existing markers in place.
func (c *Controller) SetLabel(set Set, label Label) {
	text := label.String()
	for _, id := range set {
		if !c.markers.Exists(id) {
			continue
		}
		if err := c.markers.SetText(id, text); err != nil {
			c.log.Debug().Err(err).Str("marker", string(id)).Msg("set marker text failed")
		}
	}
}

// Remove deletes every marker of the set that still exists.
func (c *Controller) Remove(set Set) {
	for _, id := range set {
		if !c.markers.Exists(id) {
			continue
		}
		if err := c.markers.Remove(id); err != nil {
			c.log.Debug().Err(err).Str("marker", string(id)).Msg("remove marker failed")
		}
	}
}

// ShowTo hides every variant of set that is inappropriate for viewer.
func (c *Controller) ShowTo(viewer core.PlayerID, set Set) {
	keep := c.VariantFor(viewer)
	for i, id := range set {
		if i == keep {
			continue
		}
		if err := c.markers.SetVisibility(viewer, id, true); err != nil {
			c.log.Debug().Err(err).Str("viewer", string(viewer)).Str("marker", string(id)).Msg("hide marker failed")
		}
	}
}

// VariantFor resolves the index of the variant viewer should see.
func (c *Controller) VariantFor(viewer core.PlayerID) int {
	fallback := 0
	for i, v := range c.variants {
		if v.Capability == "" {
			fallback = i
			continue
		}
		if c.caps.Supports(viewer, v.Capability) {
			return i
		}
	}
	return fallback
}

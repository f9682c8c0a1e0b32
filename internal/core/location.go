package core

import (
	"fmt"
	"math"
	"strings"
)

// Location identifies a block in a world. It is comparable and used as a map key.
type Location struct {
	World string `json:"world" toml:"world"`
	X     int    `json:"x" toml:"x"`
	Y     int    `json:"y" toml:"y"`
	Z     int    `json:"z" toml:"z"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s(%d,%d,%d)", l.World, l.X, l.Y, l.Z)
}

// ParseLocation parses the String form "world(x,y,z)". The form
// "world x y z" is accepted too.
func ParseLocation(s string) (Location, error) {
	var l Location
	s = strings.TrimSpace(s)
	if open := strings.IndexByte(s, '('); open > 0 && strings.HasSuffix(s, ")") {
		l.World = s[:open]
		if _, err := fmt.Sscanf(s[open:], "(%d,%d,%d)", &l.X, &l.Y, &l.Z); err != nil {
			return Location{}, fmt.Errorf("invalid location %q: %w", s, err)
		}
		return l, nil
	}
	if _, err := fmt.Sscanf(s, "%s %d %d %d", &l.World, &l.X, &l.Y, &l.Z); err != nil {
		return Location{}, fmt.Errorf("invalid location %q: want world(x,y,z)", s)
	}
	return l, nil
}

// Offset returns a position relative to the block's minimum corner.
func (l Location) Offset(dx, dy, dz float64) Position {
	return Position{
		World: l.World,
		X:     float64(l.X) + dx,
		Y:     float64(l.Y) + dy,
		Z:     float64(l.Z) + dz,
	}
}

// Chunk returns the 16x16 column containing the block.
func (l Location) Chunk() Chunk {
	return Chunk{World: l.World, X: l.X >> 4, Z: l.Z >> 4}
}

// Position is a continuous point in a world.
type Position struct {
	World string  `json:"world" toml:"world"`
	X     float64 `json:"x" toml:"x"`
	Y     float64 `json:"y" toml:"y"`
	Z     float64 `json:"z" toml:"z"`
}

// Block returns the discrete cell containing the position.
func (p Position) Block() Location {
	return Location{
		World: p.World,
		X:     int(math.Floor(p.X)),
		Y:     int(math.Floor(p.Y)),
		Z:     int(math.Floor(p.Z)),
	}
}

// Distance returns the euclidean distance between two positions in the same world.
// Positions in different worlds are infinitely far apart.
func (p Position) Distance(o Position) float64 {
	if p.World != o.World {
		return math.Inf(1)
	}
	dx, dy, dz := p.X-o.X, p.Y-o.Y, p.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Chunk is a loadable column of the world.
type Chunk struct {
	World string `json:"world" toml:"world"`
	X     int    `json:"x" toml:"x"`
	Z     int    `json:"z" toml:"z"`
}

func (c Chunk) String() string {
	return fmt.Sprintf("%s[%d,%d]", c.World, c.X, c.Z)
}

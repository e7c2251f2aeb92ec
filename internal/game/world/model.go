// Package world provides the procedurally generated world: an unbounded grid
// of locations materialized chunk by chunk, crossed by rivers and populated by
// spawners driven by the world clock.
package world

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidConfiguration is returned when a world, preset or spawner is built
// from invalid parameters.
var ErrInvalidConfiguration = errors.New("invalid world configuration")

// Point identifies a Location on the unbounded integer plane.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// String returns the point in "(x, y)" format.
func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Direction is a compass direction the hero can walk in.
type Direction string

// Compass directions. North increases y; east increases x.
const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// StandardDirections contains the four compass directions.
var StandardDirections = []Direction{North, South, East, West}

// ParseDirection resolves a full direction name or its one-letter abbreviation.
//
// Postcondition: Returns (dir, true) on success, or ("", false) otherwise.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "n", string(North):
		return North, true
	case "s", string(South):
		return South, true
	case "e", string(East):
		return East, true
	case "w", string(West):
		return West, true
	}
	return "", false
}

// Offset returns the unit step of d.
//
// Precondition: d is one of StandardDirections.
func (d Direction) Offset() Point {
	switch d {
	case North:
		return Point{Y: 1}
	case South:
		return Point{Y: -1}
	case East:
		return Point{X: 1}
	case West:
		return Point{X: -1}
	default:
		return Point{}
	}
}

// Opposite returns the opposite of a standard direction, or "" for anything else.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return ""
	}
}

// PresetType selects where the generator may place a preset.
type PresetType string

const (
	// PresetLand is placed on any point that is neither river nor bridge.
	PresetLand PresetType = "land"
	// PresetRiver is placed on open water.
	PresetRiver PresetType = "river"
	// PresetBridge is placed where a bridge crosses a river.
	PresetBridge PresetType = "bridge"
)

var validPresetTypes = []PresetType{PresetLand, PresetRiver, PresetBridge}

// SpawnerPreset describes one creature kind a location keeps populated.
type SpawnerPreset struct {
	// CreatureID is the creature template to spawn.
	CreatureID string
	// Population is the maximum number of that creature in the location.
	Population int
	// SpawnsPerDay determines the refill delay: one in-game day divided by it.
	SpawnsPerDay int
}

// ItemChance is the probability of an item appearing when a location is created.
type ItemChance struct {
	ItemID      string
	Probability float64
}

// Preset is immutable template data used to instantiate a Location.
type Preset struct {
	ID                string
	Name              string
	Description       string
	Type              PresetType
	LightPermittivity float64
	Spawners          []SpawnerPreset
	Items             []ItemChance
}

// Validate checks preset invariants.
//
// Postcondition: Returns nil if valid, or an error wrapping
// ErrInvalidConfiguration describing the first violation.
func (p *Preset) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: preset ID must not be empty", ErrInvalidConfiguration)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: preset %q: name must not be empty", ErrInvalidConfiguration, p.ID)
	}
	if !slices.Contains(validPresetTypes, p.Type) {
		return fmt.Errorf("%w: preset %q: type must be one of land, river, bridge; got %q", ErrInvalidConfiguration, p.ID, p.Type)
	}
	if p.LightPermittivity < 0 || p.LightPermittivity > 1 {
		return fmt.Errorf("%w: preset %q: light permittivity %v outside [0, 1]", ErrInvalidConfiguration, p.ID, p.LightPermittivity)
	}
	seen := make(map[string]bool, len(p.Spawners))
	for _, sp := range p.Spawners {
		if err := sp.Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", p.ID, err)
		}
		if seen[sp.CreatureID] {
			return fmt.Errorf("%w: preset %q: duplicate spawner for creature %q", ErrInvalidConfiguration, p.ID, sp.CreatureID)
		}
		seen[sp.CreatureID] = true
	}
	for _, ic := range p.Items {
		if ic.ItemID == "" {
			return fmt.Errorf("%w: preset %q: item chance has empty item ID", ErrInvalidConfiguration, p.ID)
		}
		if ic.Probability < 0 || ic.Probability > 1 {
			return fmt.Errorf("%w: preset %q: item %q probability %v outside [0, 1]", ErrInvalidConfiguration, p.ID, ic.ItemID, ic.Probability)
		}
	}
	return nil
}

// Validate checks spawner preset invariants.
//
// Postcondition: Returns nil iff CreatureID is non-empty, Population >= 1 and
// SpawnsPerDay >= 1; otherwise an error wrapping ErrInvalidConfiguration.
func (sp SpawnerPreset) Validate() error {
	if sp.CreatureID == "" {
		return fmt.Errorf("%w: spawner creature ID must not be empty", ErrInvalidConfiguration)
	}
	if sp.Population < 1 {
		return fmt.Errorf("%w: spawner %q: population must be >= 1, got %d", ErrInvalidConfiguration, sp.CreatureID, sp.Population)
	}
	if sp.SpawnsPerDay <= 0 {
		return fmt.Errorf("%w: spawner %q: spawns per day must be >= 1, got %d", ErrInvalidConfiguration, sp.CreatureID, sp.SpawnsPerDay)
	}
	return nil
}

// CheckReferences verifies that every spawner and item chance of presets names
// a known creature template or item definition.
//
// Postcondition: Returns nil if every reference resolves, or an error listing
// the first dangling reference.
func CheckReferences(presets []*Preset, creatureIDs, itemIDs []string) error {
	for _, p := range presets {
		for _, sp := range p.Spawners {
			if !slices.Contains(creatureIDs, sp.CreatureID) {
				return fmt.Errorf("preset %q: spawner references unknown creature %q", p.ID, sp.CreatureID)
			}
		}
		for _, ic := range p.Items {
			if !slices.Contains(itemIDs, ic.ItemID) {
				return fmt.Errorf("preset %q: item chance references unknown item %q", p.ID, ic.ItemID)
			}
		}
	}
	return nil
}

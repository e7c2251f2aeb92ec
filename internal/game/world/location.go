package world

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/dice"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/item"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/npc"
)

// Location is one cell of the world grid.
// All methods are safe for concurrent use.
//
// Invariant: the spawner list is fixed at construction from the preset.
type Location struct {
	mu        sync.Mutex
	world     *World
	point     Point
	preset    *Preset
	creatures []*npc.Instance
	items     []*item.Instance
	spawners  []*Spawner
}

// newLocation builds the location at p from preset, creating one spawner per
// spawner preset and rolling each item chance independently.
//
// Precondition: preset is valid; w's random source and factories are set.
func newLocation(w *World, p Point, preset *Preset) (*Location, error) {
	loc := &Location{world: w, point: p, preset: preset}
	loc.spawners = make([]*Spawner, 0, len(preset.Spawners))
	for _, sp := range preset.Spawners {
		s, err := newSpawner(loc, sp, w.cfg.DayLengthSeconds)
		if err != nil {
			return nil, fmt.Errorf("location %s: %w", p, err)
		}
		loc.spawners = append(loc.spawners, s)
	}
	for _, ic := range preset.Items {
		if !dice.Chance(w.src, ic.Probability) {
			continue
		}
		it, err := w.items.Make(ic.ItemID)
		if err != nil {
			w.logger.Warn("location skipped unknown item",
				zap.String("item", ic.ItemID),
				zap.Stringer("point", p),
				zap.Error(err),
			)
			continue
		}
		loc.items = append(loc.items, it)
	}
	return loc, nil
}

// Point returns the coordinates of the location.
func (l *Location) Point() Point { return l.point }

// Name returns the display name from the preset.
func (l *Location) Name() string { return l.preset.Name }

// Description returns the description from the preset.
func (l *Location) Description() string { return l.preset.Description }

// Preset returns the preset the location was built from.
func (l *Location) Preset() *Preset { return l.preset }

// LightPermittivity returns how much ambient light reaches this location, in [0, 1].
func (l *Location) LightPermittivity() float64 { return l.preset.LightPermittivity }

// Luminosity returns the light permittivity times the current ambient
// luminosity. It is recomputed on every call because ambient light follows the
// time of day.
func (l *Location) Luminosity() float64 {
	return l.preset.LightPermittivity * l.world.clock.Luminosity()
}

// Creatures returns a snapshot of the creatures in the location.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (l *Location) Creatures() []*npc.Instance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*npc.Instance{}, l.creatures...)
}

// Items returns a snapshot of the items in the location.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (l *Location) Items() []*item.Instance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*item.Instance{}, l.items...)
}

// Spawners returns the spawners of the location in preset order.
func (l *Location) Spawners() []*Spawner {
	return slices.Clone(l.spawners)
}

// CreatureCount returns the number of creatures of templateID in the location.
func (l *Location) CreatureCount(templateID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.creatureCountLocked(templateID)
}

func (l *Location) creatureCountLocked(templateID string) int {
	n := 0
	for _, c := range l.creatures {
		if c.TemplateID == templateID {
			n++
		}
	}
	return n
}

// AddCreature places c in the location.
//
// Precondition: c must not be nil.
func (l *Location) AddCreature(c *npc.Instance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.creatures = append(l.creatures, c)
}

// RemoveCreature removes the creature with instance ID id. Every spawner is
// notified before the removal.
//
// Postcondition: Returns the removed creature and true, or (nil, false) if no
// creature has that ID.
func (l *Location) RemoveCreature(id string) (*npc.Instance, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := slices.IndexFunc(l.creatures, func(c *npc.Instance) bool { return c.ID == id })
	if i < 0 {
		return nil, false
	}
	c := l.creatures[i]
	for _, s := range l.spawners {
		s.notifyKillLocked(c.TemplateID)
	}
	l.creatures = slices.Delete(l.creatures, i, i+1)
	return c, true
}

// AddItem places it in the location.
//
// Precondition: it must not be nil.
func (l *Location) AddItem(it *item.Instance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, it)
}

// RemoveItem removes the item with instance ID id.
//
// Postcondition: Returns the removed item and true, or (nil, false) if absent.
func (l *Location) RemoveItem(id string) (*item.Instance, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := slices.IndexFunc(l.items, func(it *item.Instance) bool { return it.ID == id })
	if i < 0 {
		return nil, false
	}
	it := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	return it, true
}

// FindCreature returns the first creature whose name equals name, ignoring case.
//
// Postcondition: Returns (creature, true) if found, or (nil, false) otherwise.
func (l *Location) FindCreature(name string) (*npc.Instance, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.creatures {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return nil, false
}

// FindItem returns the first item whose name equals name, ignoring case.
//
// Postcondition: Returns (item, true) if found, or (nil, false) otherwise.
func (l *Location) FindItem(name string) (*item.Instance, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if strings.EqualFold(it.Name, name) {
			return it, true
		}
	}
	return nil, false
}

// RefreshSpawners refreshes every spawner of the location in preset order.
func (l *Location) RefreshSpawners() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.spawners {
		s.refreshLocked()
	}
}

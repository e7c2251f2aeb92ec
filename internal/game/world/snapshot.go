package world

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/calendar"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/item"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/npc"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/river"
)

// ErrInvalidSnapshot is returned when a snapshot cannot be restored without
// breaking a world invariant.
var ErrInvalidSnapshot = errors.New("invalid world snapshot")

// Snapshot is the serializable form of a World.
type Snapshot struct {
	ChunkSide     int                `json:"chunk_side"`
	Generated     int                `json:"generated"`
	Elapsed       int64              `json:"elapsed"`
	SpawnCounters map[string]int     `json:"spawn_counters"`
	Field         river.Snapshot     `json:"river_field"`
	Locations     []LocationSnapshot `json:"locations"`
}

// LocationSnapshot is the serializable form of a Location.
type LocationSnapshot struct {
	Point     Point             `json:"point"`
	PresetID  string            `json:"preset_id"`
	Creatures []*npc.Instance   `json:"creatures"`
	Items     []*item.Instance  `json:"items"`
	Spawners  []SpawnerSnapshot `json:"spawners"`
}

// SpawnerSnapshot is the serializable form of a Spawner.
type SpawnerSnapshot struct {
	CreatureID    string `json:"creature_id"`
	MaxPopulation int    `json:"max_population"`
	Delay         int64  `json:"delay"`
	LastSpawn     int64  `json:"last_spawn"`
}

// Snapshot captures the complete world state.
//
// Postcondition: Locations are sorted by X, then Y.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	snap := Snapshot{
		ChunkSide:     w.chunkSide,
		Generated:     w.generated,
		Elapsed:       w.clock.Elapsed(),
		SpawnCounters: w.counters.snapshot(),
		Field:         w.field.Snapshot(),
		Locations:     make([]LocationSnapshot, 0, len(w.locations)),
	}
	for _, loc := range w.locations {
		snap.Locations = append(snap.Locations, loc.snapshot())
	}
	slices.SortFunc(snap.Locations, func(a, b LocationSnapshot) int {
		return cmp.Or(cmp.Compare(a.Point.X, b.Point.X), cmp.Compare(a.Point.Y, b.Point.Y))
	})
	return snap
}

func (l *Location) snapshot() LocationSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	ls := LocationSnapshot{
		Point:     l.point,
		PresetID:  l.preset.ID,
		Creatures: slices.Clone(l.creatures),
		Items:     slices.Clone(l.items),
		Spawners:  make([]SpawnerSnapshot, 0, len(l.spawners)),
	}
	for _, s := range l.spawners {
		ls.Spawners = append(ls.Spawners, SpawnerSnapshot{
			CreatureID:    s.creatureID,
			MaxPopulation: s.maxPopulation,
			Delay:         s.delay,
			LastSpawn:     s.lastSpawn,
		})
	}
	return ls
}

// Restore rebuilds a World from snap. The clock is restored from the snapshot;
// deps.Clock is ignored.
//
// Precondition: presets must contain every preset referenced by snap.
// Postcondition: Returns the restored World, or an error wrapping
// ErrInvalidSnapshot or ErrInvalidConfiguration when any invariant fails.
func Restore(snap Snapshot, cfg Config, presets []*Preset, deps Deps) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clock, err := calendar.RestoreClock(snap.Elapsed, cfg.DayLengthSeconds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	deps.Clock = clock
	w, err := newWorld(cfg, presets, deps)
	if err != nil {
		return nil, err
	}
	if snap.ChunkSide < cfg.MinChunkSide || snap.ChunkSide > cfg.MaxChunkSide {
		return nil, fmt.Errorf("%w: chunk side %d outside [%d, %d]", ErrInvalidSnapshot, snap.ChunkSide, cfg.MinChunkSide, cfg.MaxChunkSide)
	}
	w.chunkSide = snap.ChunkSide
	if snap.Generated != len(snap.Locations) {
		return nil, fmt.Errorf("%w: generated count %d does not match %d locations", ErrInvalidSnapshot, snap.Generated, len(snap.Locations))
	}
	w.generated = snap.Generated

	field, err := river.RestoreField(snap.Field, deps.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	w.field = field

	for id, n := range snap.SpawnCounters {
		if n < 0 {
			return nil, fmt.Errorf("%w: negative spawn counter for %q", ErrInvalidSnapshot, id)
		}
		w.counters.counts[id] = n
	}

	for _, ls := range snap.Locations {
		if _, dup := w.locations[ls.Point]; dup {
			return nil, fmt.Errorf("%w: duplicate location at %s", ErrInvalidSnapshot, ls.Point)
		}
		loc, err := w.restoreLocation(ls, snap.Elapsed)
		if err != nil {
			return nil, err
		}
		w.locations[ls.Point] = loc
	}
	return w, nil
}

// restoreLocation rebuilds one location and checks that its spawners match its preset.
func (w *World) restoreLocation(ls LocationSnapshot, elapsed int64) (*Location, error) {
	preset, ok := w.presets[ls.PresetID]
	if !ok {
		return nil, fmt.Errorf("%w: location %s references unknown preset %q", ErrInvalidSnapshot, ls.Point, ls.PresetID)
	}
	if len(ls.Spawners) != len(preset.Spawners) {
		return nil, fmt.Errorf("%w: location %s has %d spawners, preset %q defines %d",
			ErrInvalidSnapshot, ls.Point, len(ls.Spawners), preset.ID, len(preset.Spawners))
	}
	loc := &Location{
		world:     w,
		point:     ls.Point,
		preset:    preset,
		creatures: slices.Clone(ls.Creatures),
		items:     slices.Clone(ls.Items),
		spawners:  make([]*Spawner, 0, len(ls.Spawners)),
	}
	for i, ss := range ls.Spawners {
		want := preset.Spawners[i]
		if ss.CreatureID != want.CreatureID {
			return nil, fmt.Errorf("%w: location %s spawner %d is for %q, preset expects %q",
				ErrInvalidSnapshot, ls.Point, i, ss.CreatureID, want.CreatureID)
		}
		if ss.MaxPopulation < 1 || ss.Delay < 0 {
			return nil, fmt.Errorf("%w: location %s spawner %q has population %d and delay %d",
				ErrInvalidSnapshot, ls.Point, ss.CreatureID, ss.MaxPopulation, ss.Delay)
		}
		if ss.LastSpawn < 0 || ss.LastSpawn > elapsed {
			return nil, fmt.Errorf("%w: location %s spawner %q last spawn %d outside [0, %d]",
				ErrInvalidSnapshot, ls.Point, ss.CreatureID, ss.LastSpawn, elapsed)
		}
		loc.spawners = append(loc.spawners, &Spawner{
			location:      loc,
			creatureID:    ss.CreatureID,
			maxPopulation: ss.MaxPopulation,
			delay:         ss.Delay,
			lastSpawn:     ss.LastSpawn,
		})
	}
	return loc, nil
}

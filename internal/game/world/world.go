package world

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/calendar"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/dice"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/item"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/npc"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/river"
)

// ErrNoLocation is returned when an entity is placed at a point that has not
// been materialized yet. Callers must Expand first.
var ErrNoLocation = errors.New("no location materialized at point")

// CreatureFactory makes live creatures from template IDs.
type CreatureFactory interface {
	Make(templateID string) (*npc.Instance, error)
}

// ItemFactory makes item instances from definition IDs.
type ItemFactory interface {
	Make(defID string) (*item.Instance, error)
}

// Config holds the generation parameters of a World.
type Config struct {
	// ChunkSide is the initial chunk side; it is clamped into
	// [MinChunkSide, MaxChunkSide].
	ChunkSide    int
	MinChunkSide int
	MaxChunkSide int
	// DayLengthSeconds is the length of an in-game day; spawner delays are
	// this value divided by spawns per day, and the clock's hour of day is
	// scaled to it.
	DayLengthSeconds int64
	River            river.Config
}

// DefaultConfig returns the standard generation parameters.
func DefaultConfig() Config {
	return Config{
		ChunkSide:        5,
		MinChunkSide:     1,
		MaxChunkSide:     50,
		DayLengthSeconds: 86400,
		River:            river.DefaultConfig(),
	}
}

// Validate checks the configuration invariants.
//
// Postcondition: Returns nil if valid, or an error wrapping
// ErrInvalidConfiguration describing the first violation.
func (c Config) Validate() error {
	if c.MinChunkSide < 1 {
		return fmt.Errorf("%w: min chunk side must be >= 1, got %d", ErrInvalidConfiguration, c.MinChunkSide)
	}
	if c.MaxChunkSide < c.MinChunkSide {
		return fmt.Errorf("%w: max chunk side %d below min chunk side %d", ErrInvalidConfiguration, c.MaxChunkSide, c.MinChunkSide)
	}
	if c.DayLengthSeconds <= 0 {
		return fmt.Errorf("%w: day length must be positive, got %d", ErrInvalidConfiguration, c.DayLengthSeconds)
	}
	if err := c.River.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return nil
}

// Deps are the collaborators a World draws on.
type Deps struct {
	// Source is the shared random source. Required.
	Source dice.Source
	// Clock is the world clock. Nil means a fresh clock at world creation.
	// Its day length must equal Config.DayLengthSeconds.
	Clock *calendar.Clock
	// Creatures makes spawned creatures. Required.
	Creatures CreatureFactory
	// Items makes rolled items. Required.
	Items ItemFactory
	// Logger receives diagnostics. Nil means no logging.
	Logger *zap.Logger
}

// Stats summarizes the generator state.
type Stats struct {
	ChunkSide          int
	ChunkSize          int
	GeneratedLocations int
	RiverLines         int
}

// World owns the sparse map of materialized locations, the river field and
// the global spawn statistics. All methods are safe for concurrent use.
//
// Invariant: the location map only grows; a point is generated at most once.
type World struct {
	mu        sync.RWMutex
	cfg       Config
	chunkSide int
	locations map[Point]*Location
	field     *river.Field
	generated int

	presets     map[string]*Preset
	presetsType map[PresetType][]*Preset

	src       dice.Source
	clock     *calendar.Clock
	creatures CreatureFactory
	items     ItemFactory
	counters  *spawnCounters
	logger    *zap.Logger
}

// New creates an empty World that generates locations from presets.
//
// Precondition: presets must hold at least one land preset; IDs must be unique.
// Postcondition: Returns a World with no locations, or an error wrapping
// ErrInvalidConfiguration.
func New(cfg Config, presets []*Preset, deps Deps) (*World, error) {
	w, err := newWorld(cfg, presets, deps)
	if err != nil {
		return nil, err
	}
	field, err := river.NewField(cfg.River, deps.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	w.field = field
	return w, nil
}

// newWorld validates cfg, presets and deps and builds a World without a river field.
func newWorld(cfg Config, presets []*Preset, deps Deps) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Source == nil {
		return nil, fmt.Errorf("%w: random source must not be nil", ErrInvalidConfiguration)
	}
	if deps.Creatures == nil || deps.Items == nil {
		return nil, fmt.Errorf("%w: creature and item factories must not be nil", ErrInvalidConfiguration)
	}
	if len(presets) == 0 {
		return nil, fmt.Errorf("%w: preset list must not be empty", ErrInvalidConfiguration)
	}
	w := &World{
		cfg:         cfg,
		chunkSide:   clamp(cfg.ChunkSide, cfg.MinChunkSide, cfg.MaxChunkSide),
		locations:   make(map[Point]*Location),
		presets:     make(map[string]*Preset, len(presets)),
		presetsType: make(map[PresetType][]*Preset),
		src:         deps.Source,
		clock:       deps.Clock,
		creatures:   deps.Creatures,
		items:       deps.Items,
		counters:    newSpawnCounters(),
		logger:      deps.Logger,
	}
	if w.clock == nil {
		clock, err := calendar.NewClock(cfg.DayLengthSeconds)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
		w.clock = clock
	}
	if w.clock.DayLength() != cfg.DayLengthSeconds {
		return nil, fmt.Errorf("%w: clock day length %d differs from configured %d",
			ErrInvalidConfiguration, w.clock.DayLength(), cfg.DayLengthSeconds)
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	for _, p := range presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := w.presets[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate preset ID %q", ErrInvalidConfiguration, p.ID)
		}
		w.presets[p.ID] = p
		w.presetsType[p.Type] = append(w.presetsType[p.Type], p)
	}
	if len(w.presetsType[PresetLand]) == 0 {
		return nil, fmt.Errorf("%w: at least one land preset is required", ErrInvalidConfiguration)
	}
	return w, nil
}

// Clock returns the world clock.
func (w *World) Clock() *calendar.Clock {
	return w.clock
}

// Logger returns the world logger.
func (w *World) Logger() *zap.Logger {
	return w.logger
}

// HasLocation reports whether a Location has been materialized at p.
func (w *World) HasLocation(p Point) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.locations[p]
	return ok
}

// GetLocation returns the Location at p. It never generates; call Expand first.
//
// Postcondition: Returns (loc, true) if materialized, or (nil, false) otherwise.
func (w *World) GetLocation(p Point) (*Location, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	loc, ok := w.locations[p]
	return loc, ok
}

// AddCreature places c in the Location at p.
//
// Postcondition: Returns an error wrapping ErrNoLocation if p is not materialized.
func (w *World) AddCreature(c *npc.Instance, p Point) error {
	loc, ok := w.GetLocation(p)
	if !ok {
		return fmt.Errorf("adding creature %q at %s: %w", c.Name, p, ErrNoLocation)
	}
	loc.AddCreature(c)
	return nil
}

// AddItem places it in the Location at p.
//
// Postcondition: Returns an error wrapping ErrNoLocation if p is not materialized.
func (w *World) AddItem(it *item.Instance, p Point) error {
	loc, ok := w.GetLocation(p)
	if !ok {
		return fmt.Errorf("adding item %q at %s: %w", it.Name, p, ErrNoLocation)
	}
	loc.AddItem(it)
	return nil
}

// SetChunkSide clamps n into [MinChunkSide, MaxChunkSide] and uses it for
// future expansions. Existing chunks are not reshaped.
//
// Postcondition: Returns the clamped value now in effect.
func (w *World) SetChunkSide(n int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chunkSide = clamp(n, w.cfg.MinChunkSide, w.cfg.MaxChunkSide)
	return w.chunkSide
}

// ChunkSide returns the chunk side used by the next expansion.
func (w *World) ChunkSide() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chunkSide
}

// IsRiver reports whether p is open river water, resolving the river field as needed.
func (w *World) IsRiver(p Point) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.field.IsRiver(p.X, p.Y)
}

// IsBridge reports whether p is a bridge over a river, resolving the river field as needed.
func (w *World) IsBridge(p Point) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.field.IsBridge(p.X, p.Y)
}

// Stats returns the current generator statistics.
func (w *World) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Stats{
		ChunkSide:          w.chunkSide,
		ChunkSize:          w.chunkSide * w.chunkSide,
		GeneratedLocations: w.generated,
		RiverLines:         len(w.field.Lines()),
	}
}

// SpawnCounters returns the number of spawns per creature template so far.
//
// Postcondition: Returns a non-nil copy.
func (w *World) SpawnCounters() map[string]int {
	return w.counters.snapshot()
}

// SpawnReport renders the spawn counters as a fixed-width table sorted by creature ID.
func (w *World) SpawnReport() string {
	return w.counters.report()
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}

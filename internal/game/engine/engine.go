// Package engine drives the hero through the world one turn at a time.
// Every action consumes world time, after which the spawners of the hero's
// location get a chance to react.
package engine

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/npc"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/world"
)

// ErrBlocked is returned when the hero tries to walk into open river water.
var ErrBlocked = errors.New("the way is blocked by the river")

// ErrNoTarget is returned when an attack names no creature present.
var ErrNoTarget = errors.New("no such creature here")

// Config holds the turn parameters.
type Config struct {
	// TurnSeconds is the world time consumed by one action.
	TurnSeconds int64
	// HeroAttack is the damage the hero deals per hit.
	HeroAttack int
}

// DefaultConfig returns the standard turn parameters.
func DefaultConfig() Config {
	return Config{TurnSeconds: 60, HeroAttack: 4}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if c.TurnSeconds <= 0 {
		return fmt.Errorf("engine: turn seconds must be positive, got %d", c.TurnSeconds)
	}
	if c.HeroAttack < 1 {
		return fmt.Errorf("engine: hero attack must be >= 1, got %d", c.HeroAttack)
	}
	return nil
}

// AttackResult describes one hit on a creature.
type AttackResult struct {
	Target *npc.Instance
	Damage int
	Killed bool
}

// Engine owns the hero position and runs turns against a World.
// All methods are safe for concurrent use; turns are serialized.
type Engine struct {
	mu     sync.Mutex
	cfg    Config
	world  *world.World
	hero   world.Point
	logger *zap.Logger
}

// New creates an Engine with the hero at start.
//
// Precondition: w must be non-nil.
// Postcondition: Returns an error if cfg is invalid.
func New(cfg Config, w *world.World, start world.Point, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, world: w, hero: start, logger: logger}, nil
}

// World returns the world the engine runs on.
func (e *Engine) World() *world.World {
	return e.world
}

// Config returns the turn parameters.
func (e *Engine) Config() Config {
	return e.cfg
}

// Position returns the hero's current point.
func (e *Engine) Position() world.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hero
}

// Look materializes and returns the hero's location. Looking is free.
//
// Postcondition: Returns a non-nil Location.
func (e *Engine) Look() *world.Location {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.locationAt(e.hero)
}

// locationAt expands the world as needed and returns the Location at p.
func (e *Engine) locationAt(p world.Point) *world.Location {
	if loc, ok := e.world.GetLocation(p); ok {
		return loc
	}
	e.world.Expand(p)
	loc, ok := e.world.GetLocation(p)
	if !ok {
		panic(fmt.Sprintf("engine: expansion did not materialize %s", p))
	}
	return loc
}

// Move walks the hero one step in dir and ends the turn.
//
// Precondition: dir is one of world.StandardDirections.
// Postcondition: On success the hero stands on the returned location; on
// any error neither the hero nor the clock moves.
func (e *Engine) Move(dir world.Direction) (*world.Location, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	dest := e.hero.Add(dir.Offset())
	loc := e.locationAt(dest)
	if e.world.IsRiver(dest) {
		return nil, fmt.Errorf("moving %s to %s: %w", dir, dest, ErrBlocked)
	}
	prev := e.hero
	e.hero = dest
	if err := e.endTurnLocked(e.cfg.TurnSeconds); err != nil {
		e.hero = prev
		return nil, err
	}
	return loc, nil
}

// Wait lets seconds of world time pass at the hero's location.
//
// Postcondition: Returns an error and leaves the clock unchanged if seconds < 0.
func (e *Engine) Wait(seconds int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.endTurnLocked(seconds)
}

// Attack hits the first creature at the hero's location named name (ignoring
// case) and ends the turn. A creature brought to zero hit points is removed,
// which lets the location's spawners restart their delay.
//
// Postcondition: Returns an error wrapping ErrNoTarget if no creature matches.
func (e *Engine) Attack(name string) (AttackResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	loc := e.locationAt(e.hero)
	target, ok := loc.FindCreature(name)
	if !ok {
		return AttackResult{}, fmt.Errorf("%w: %q", ErrNoTarget, name)
	}
	res := AttackResult{Target: target, Damage: e.cfg.HeroAttack}
	if target.TakeDamage(e.cfg.HeroAttack) {
		loc.RemoveCreature(target.ID)
		res.Killed = true
		e.logger.Debug("creature killed",
			zap.String("creature", target.TemplateID),
			zap.Stringer("point", e.hero),
		)
	}
	if err := e.endTurnLocked(e.cfg.TurnSeconds); err != nil {
		return AttackResult{}, err
	}
	return res, nil
}

// SetChunkSide forwards to World.SetChunkSide and reports the clamped value.
func (e *Engine) SetChunkSide(n int) int {
	return e.world.SetChunkSide(n)
}

// endTurnLocked advances the clock and refreshes the spawners at the hero's location.
//
// Precondition: e.mu is held.
func (e *Engine) endTurnLocked(seconds int64) error {
	if err := e.world.Clock().Advance(seconds); err != nil {
		return fmt.Errorf("ending turn: %w", err)
	}
	e.locationAt(e.hero).RefreshSpawners()
	return nil
}

// SaveGame is everything needed to resume a session.
type SaveGame struct {
	Hero  world.Point    `json:"hero"`
	World world.Snapshot `json:"world"`
}

// Save captures the hero position and the world.
func (e *Engine) Save() SaveGame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SaveGame{Hero: e.hero, World: e.world.Snapshot()}
}

// Load rebuilds an Engine from save.
//
// Postcondition: Returns an error if the world cannot be restored or cfg is invalid.
func Load(save SaveGame, cfg Config, worldCfg world.Config, presets []*world.Preset, deps world.Deps) (*Engine, error) {
	w, err := world.Restore(save.World, worldCfg, presets, deps)
	if err != nil {
		return nil, fmt.Errorf("restoring world: %w", err)
	}
	return New(cfg, w, save.Hero, deps.Logger)
}

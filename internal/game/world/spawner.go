package world

import (
	"fmt"

	"go.uber.org/zap"
)

// Spawner keeps one creature kind populated in one Location.
//
// Invariant: it never spawns while the location holds maxPopulation or more
// creatures of its kind, nor before lastSpawn+delay on the world clock.
//
// A Spawner's state is guarded by the mutex of its Location.
type Spawner struct {
	location      *Location
	creatureID    string
	maxPopulation int
	// delay and lastSpawn are world-clock seconds.
	delay     int64
	lastSpawn int64
}

// newSpawner builds a spawner for loc from preset. lastSpawn starts at world creation.
//
// Postcondition: Returns an error wrapping ErrInvalidConfiguration if the
// preset is invalid; in particular SpawnsPerDay <= 0 is rejected here rather
// than dividing by zero at spawn time.
func newSpawner(loc *Location, preset SpawnerPreset, dayLengthSeconds int64) (*Spawner, error) {
	if err := preset.Validate(); err != nil {
		return nil, err
	}
	if dayLengthSeconds <= 0 {
		return nil, fmt.Errorf("%w: day length must be positive, got %d", ErrInvalidConfiguration, dayLengthSeconds)
	}
	return &Spawner{
		location:      loc,
		creatureID:    preset.CreatureID,
		maxPopulation: preset.Population,
		delay:         dayLengthSeconds / int64(preset.SpawnsPerDay),
	}, nil
}

// CreatureID returns the creature template this spawner produces.
func (s *Spawner) CreatureID() string { return s.creatureID }

// MaxPopulation returns the population cap.
func (s *Spawner) MaxPopulation() int { return s.maxPopulation }

// Delay returns the minimum world-clock seconds between spawns.
func (s *Spawner) Delay() int64 { return s.delay }

// LastSpawn returns the world-clock second of the last spawn.
func (s *Spawner) LastSpawn() int64 {
	s.location.mu.Lock()
	defer s.location.mu.Unlock()
	return s.lastSpawn
}

// Refresh spawns one creature if the delay has elapsed and the population is
// under the cap. Calling it every turn never double-spawns.
func (s *Spawner) Refresh() {
	s.location.mu.Lock()
	defer s.location.mu.Unlock()
	s.refreshLocked()
}

// refreshLocked implements Refresh.
//
// Precondition: s.location.mu is held.
func (s *Spawner) refreshLocked() {
	w := s.location.world
	now := w.clock.Elapsed()
	if now-s.lastSpawn < s.delay {
		return
	}
	if s.location.creatureCountLocked(s.creatureID) >= s.maxPopulation {
		return
	}
	s.lastSpawn = now
	creature, err := w.creatures.Make(s.creatureID)
	if err != nil {
		w.logger.Warn("spawner skipped unknown creature",
			zap.String("creature", s.creatureID),
			zap.Stringer("point", s.location.point),
			zap.Error(err),
		)
		return
	}
	s.location.creatures = append(s.location.creatures, creature)
	w.counters.increment(s.creatureID)
	w.logger.Debug("spawned creature",
		zap.String("creature", s.creatureID),
		zap.String("id", creature.ID),
		zap.Stringer("point", s.location.point),
		zap.Int64("elapsed", now),
	)
}

// notifyKillLocked is called before a creature of creatureID leaves the location.
// When the population was exactly at the cap, the delay restarts now.
//
// Precondition: s.location.mu is held.
func (s *Spawner) notifyKillLocked(creatureID string) {
	if creatureID != s.creatureID {
		return
	}
	if s.location.creatureCountLocked(s.creatureID) == s.maxPopulation {
		s.lastSpawn = s.location.world.clock.Elapsed()
	}
}

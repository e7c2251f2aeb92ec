package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/dice"
)

// floorDiv divides rounding toward negative infinity.
//
// Precondition: b > 0.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

// chunkOrigin returns the lower-left corner of the chunk of side containing p.
func chunkOrigin(p Point, side int) Point {
	return Point{X: side * floorDiv(p.X, side), Y: side * floorDiv(p.Y, side)}
}

// Expand materializes the chunk containing p. Points already present are left
// untouched, so expanding a covered point only re-derives the chunk bounds.
func (w *World) Expand(p Point) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.expandLocked(p)
}

// expandLocked implements Expand.
//
// Precondition: w.mu is held for writing.
func (w *World) expandLocked(p Point) {
	side := w.chunkSide
	origin := chunkOrigin(p, side)
	rivers := w.field.Expand(p.X, side)

	generated := 0
	for x := origin.X; x < origin.X+side; x++ {
		for y := origin.Y; y < origin.Y+side; y++ {
			pt := Point{X: x, Y: y}
			if _, ok := w.locations[pt]; ok {
				continue
			}
			loc, err := newLocation(w, pt, w.pickPreset(pt))
			if err != nil {
				// Presets were validated by New or Restore.
				panic(fmt.Sprintf("world: generating %s: %v", pt, err))
			}
			w.locations[pt] = loc
			w.generated++
			generated++
		}
	}

	if generated > 0 || len(rivers) > 0 {
		w.logger.Debug("expanded world",
			zap.Stringer("target", p),
			zap.Stringer("origin", origin),
			zap.Int("chunk_side", side),
			zap.Int("generated", generated),
			zap.Ints("new_rivers", rivers),
		)
	}
}

// pickPreset chooses a preset for pt uniformly among those of the type the
// river field dictates, falling back to land presets when none is configured.
//
// Precondition: w.mu is held for writing.
func (w *World) pickPreset(pt Point) *Preset {
	typ := PresetLand
	switch {
	case w.field.IsRiver(pt.X, pt.Y):
		typ = PresetRiver
	case w.field.IsBridge(pt.X, pt.Y):
		typ = PresetBridge
	}
	candidates := w.presetsType[typ]
	if len(candidates) == 0 {
		candidates = w.presetsType[PresetLand]
	}
	return dice.Select(w.src, candidates)
}

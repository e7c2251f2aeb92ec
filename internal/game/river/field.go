package river

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/dice"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/intset"
)

// Config tunes river spacing.
type Config struct {
	// Threshold is the minimum |x| of a river line; candidate lines closer to
	// the origin are discarded.
	Threshold int
	// LineMinGap and LineMaxGap bound the spacing between candidate lines.
	LineMinGap int
	LineMaxGap int
	// BridgeMinGap and BridgeMaxGap bound the spacing between bridges on a river.
	BridgeMinGap int
	BridgeMaxGap int
}

// DefaultConfig returns the standard river spacing.
func DefaultConfig() Config {
	return Config{
		Threshold:    10,
		LineMinGap:   6,
		LineMaxGap:   11,
		BridgeMinGap: 4,
		BridgeMaxGap: 20,
	}
}

// Validate checks the configuration invariants.
//
// Postcondition: Returns nil if valid, or an error wrapping
// intset.ErrInvalidConfiguration describing the first violation.
func (c Config) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("%w: river threshold must be >= 0, got %d", intset.ErrInvalidConfiguration, c.Threshold)
	}
	if err := intset.ValidateGaps(c.LineMinGap, c.LineMaxGap); err != nil {
		return fmt.Errorf("river lines: %w", err)
	}
	if err := intset.ValidateGaps(c.BridgeMinGap, c.BridgeMaxGap); err != nil {
		return fmt.Errorf("bridges: %w", err)
	}
	return nil
}

// Field owns the candidate river lines and the rivers realized from them.
//
// Invariant: every key of rivers is an element of lines with |key| >= Threshold.
//
// Field is not safe for concurrent use; the world serializes access.
type Field struct {
	cfg    Config
	src    dice.Source
	lines  *intset.ExpandableSet
	rivers map[int]*River
}

// NewField creates a river field.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a Field with one candidate line and no rivers, or an
// error when cfg is invalid.
func NewField(cfg Config, src dice.Source) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lines, err := intset.New(cfg.LineMinGap, cfg.LineMaxGap, src)
	if err != nil {
		return nil, fmt.Errorf("creating river line set: %w", err)
	}
	f := &Field{
		cfg:    cfg,
		src:    src,
		lines:  lines,
		rivers: make(map[int]*River),
	}
	f.register(lines.Values())
	return f, nil
}

// register realizes a River for every candidate at or beyond the threshold.
// It returns the coordinates of the rivers it created.
func (f *Field) register(candidates []int) []int {
	var created []int
	for _, x := range candidates {
		if abs(x) < f.cfg.Threshold {
			continue
		}
		if _, ok := f.rivers[x]; ok {
			continue
		}
		r, err := newRiver(f.cfg.BridgeMinGap, f.cfg.BridgeMaxGap, f.src)
		if err != nil {
			// Bridge gaps were validated by NewField or RestoreField.
			panic(fmt.Sprintf("river: creating river at x=%d: %v", x, err))
		}
		f.rivers[x] = r
		created = append(created, x)
	}
	return created
}

// Expand ensures candidate-line coverage of [x-chunkSide, x+chunkSide], so the
// river membership of a whole chunk resolves without further expansion.
//
// Postcondition: Returns the x coordinates of newly registered rivers.
func (f *Field) Expand(x, chunkSide int) []int {
	created := f.register(f.lines.Expand(x - chunkSide))
	return append(created, f.register(f.lines.Expand(x+chunkSide))...)
}

// IsRiverLine resolves x and reports whether it carries a river.
func (f *Field) IsRiverLine(x int) bool {
	f.register(f.lines.Expand(x))
	_, ok := f.rivers[x]
	return ok
}

// IsRiver reports whether (x, y) is open water: x is a river line and y is not
// one of its bridges.
func (f *Field) IsRiver(x, y int) bool {
	if !f.IsRiverLine(x) {
		return false
	}
	return !f.rivers[x].IsBridge(y)
}

// IsBridge reports whether (x, y) is a bridge over a river.
func (f *Field) IsBridge(x, y int) bool {
	if !f.IsRiverLine(x) {
		return false
	}
	return f.rivers[x].IsBridge(y)
}

// Lines returns the registered river lines in ascending order.
func (f *Field) Lines() []int {
	out := make([]int, 0, len(f.rivers))
	for x := range f.rivers {
		out = append(out, x)
	}
	sort.Ints(out)
	return out
}

// Config returns the field configuration.
func (f *Field) Config() Config {
	return f.cfg
}

// Snapshot is the serializable form of a Field.
type Snapshot struct {
	Threshold int              `json:"threshold"`
	Lines     intset.Snapshot  `json:"lines"`
	Rivers    []RiverSnapshot  `json:"rivers"`
	Bridges   BridgeGapsConfig `json:"bridge_gaps"`
}

// BridgeGapsConfig records the bridge spacing used for rivers created after a restore.
type BridgeGapsConfig struct {
	MinGap int `json:"min_gap"`
	MaxGap int `json:"max_gap"`
}

// RiverSnapshot is the serializable form of one River.
type RiverSnapshot struct {
	X       int             `json:"x"`
	Bridges intset.Snapshot `json:"bridges"`
}

// Snapshot captures the exact contents of the candidate set and of every
// river's bridge set.
//
// Postcondition: Rivers is sorted by X.
func (f *Field) Snapshot() Snapshot {
	snap := Snapshot{
		Threshold: f.cfg.Threshold,
		Lines:     f.lines.Snapshot(),
		Bridges:   BridgeGapsConfig{MinGap: f.cfg.BridgeMinGap, MaxGap: f.cfg.BridgeMaxGap},
	}
	for _, x := range f.Lines() {
		snap.Rivers = append(snap.Rivers, RiverSnapshot{X: x, Bridges: f.rivers[x].bridges.Snapshot()})
	}
	return snap
}

// ErrInvalidSnapshot is returned when a restored field breaks its invariants.
var ErrInvalidSnapshot = errors.New("invalid river field snapshot")

// RestoreField rebuilds a Field from snap, drawing future randomness from src.
//
// Precondition: src must be non-nil.
// Postcondition: Returns the restored Field, or an error when any set is
// invalid or a river lies on a non-candidate line or inside the threshold.
func RestoreField(snap Snapshot, src dice.Source) (*Field, error) {
	cfg := Config{
		Threshold:    snap.Threshold,
		LineMinGap:   snap.Lines.MinGap,
		LineMaxGap:   snap.Lines.MaxGap,
		BridgeMinGap: snap.Bridges.MinGap,
		BridgeMaxGap: snap.Bridges.MaxGap,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lines, err := intset.Restore(snap.Lines, src)
	if err != nil {
		return nil, fmt.Errorf("restoring river lines: %w", err)
	}
	f := &Field{cfg: cfg, src: src, lines: lines, rivers: make(map[int]*River, len(snap.Rivers))}
	values := lines.Values()
	for _, rs := range snap.Rivers {
		if _, found := slices.BinarySearch(values, rs.X); !found {
			return nil, fmt.Errorf("%w: river at x=%d is not a candidate line", ErrInvalidSnapshot, rs.X)
		}
		if abs(rs.X) < cfg.Threshold {
			return nil, fmt.Errorf("%w: river at x=%d is inside threshold %d", ErrInvalidSnapshot, rs.X, cfg.Threshold)
		}
		bridges, err := intset.Restore(rs.Bridges, src)
		if err != nil {
			return nil, fmt.Errorf("restoring bridges of river at x=%d: %w", rs.X, err)
		}
		f.rivers[rs.X] = &River{bridges: bridges}
	}
	for _, x := range values {
		if abs(x) >= cfg.Threshold && f.rivers[x] == nil {
			return nil, fmt.Errorf("%w: candidate line x=%d has no river", ErrInvalidSnapshot, x)
		}
	}
	return f, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Package intset provides a sorted integer set that grows outward in
// randomized steps. It is the lazy primitive behind river lines and bridges:
// only as much of the infinite axis is generated as has been explored.
package intset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/dice"
)

// ErrInvalidConfiguration is returned when the gap bounds or restored contents
// of a set are invalid.
var ErrInvalidConfiguration = errors.New("invalid expandable set configuration")

// ErrPreconditionViolation is the panic value wrapped when a set that was never
// initialized is expanded.
var ErrPreconditionViolation = errors.New("expandable set precondition violated")

// ExpandableSet is a sorted set of integers that only grows outward.
//
// Invariant: values is sorted ascending and non-empty after construction;
// every adjacent pair differs by an amount in [minGap, maxGap).
//
// ExpandableSet is not safe for concurrent use; its owner serializes access.
type ExpandableSet struct {
	minGap int
	maxGap int
	values []int
	src    dice.Source
}

// New creates a set whose first element is chosen uniformly in [0, minGap).
//
// Precondition: src must be non-nil.
// Postcondition: Returns a set with exactly one element, or an error wrapping
// ErrInvalidConfiguration when minGap <= 0 or maxGap <= minGap.
func New(minGap, maxGap int, src dice.Source) (*ExpandableSet, error) {
	if err := ValidateGaps(minGap, maxGap); err != nil {
		return nil, err
	}
	return &ExpandableSet{
		minGap: minGap,
		maxGap: maxGap,
		values: []int{src.Intn(minGap)},
		src:    src,
	}, nil
}

// ValidateGaps checks the gap bounds accepted by New.
//
// Postcondition: Returns nil iff minGap > 0 and maxGap > minGap; otherwise an
// error wrapping ErrInvalidConfiguration.
func ValidateGaps(minGap, maxGap int) error {
	if minGap <= 0 {
		return fmt.Errorf("%w: minimum gap must be positive, got %d", ErrInvalidConfiguration, minGap)
	}
	if maxGap <= minGap {
		return fmt.Errorf("%w: maximum gap %d must exceed minimum gap %d", ErrInvalidConfiguration, maxGap, minGap)
	}
	return nil
}

// step returns a random gap in [minGap, maxGap).
func (s *ExpandableSet) step() int {
	return dice.Between(s.src, s.minGap, s.maxGap)
}

// Expand grows the set until its greatest element is >= target and its least
// element is <= target. Only the side that does not yet cover target grows.
//
// Precondition: the set was built by New or Restore. Expanding a zero-value set
// panics with an error wrapping ErrPreconditionViolation.
// Postcondition: Returns the newly inserted integers in generation order; the
// result is empty when target was already covered.
func (s *ExpandableSet) Expand(target int) []int {
	if len(s.values) == 0 {
		panic(fmt.Errorf("%w: expand called on an uninitialized set", ErrPreconditionViolation))
	}
	var added []int

	last := s.values[len(s.values)-1]
	for last < target {
		last += s.step()
		added = append(added, last)
		s.values = append(s.values, last)
	}

	first := s.values[0]
	var lower []int
	for first > target {
		first -= s.step()
		added = append(added, first)
		lower = append(lower, first)
	}
	if len(lower) > 0 {
		slices.Reverse(lower)
		s.values = append(lower, s.values...)
	}
	return added
}

// Contains reports whether value is currently in the set. It never expands.
func (s *ExpandableSet) Contains(value int) bool {
	_, found := slices.BinarySearch(s.values, value)
	return found
}

// Len returns the number of elements in the set.
func (s *ExpandableSet) Len() int {
	return len(s.values)
}

// Min returns the least element.
//
// Precondition: the set is initialized.
func (s *ExpandableSet) Min() int {
	return s.values[0]
}

// Max returns the greatest element.
//
// Precondition: the set is initialized.
func (s *ExpandableSet) Max() int {
	return s.values[len(s.values)-1]
}

// Values returns a sorted copy of the set contents.
func (s *ExpandableSet) Values() []int {
	return slices.Clone(s.values)
}

// String implements fmt.Stringer.
func (s *ExpandableSet) String() string {
	return fmt.Sprintf("ExpandableSet%v", s.values)
}

// Snapshot is the serializable form of an ExpandableSet. It carries the full
// contents, not just the extremes, so later expansions stay consistent with
// earlier ones.
type Snapshot struct {
	MinGap int   `json:"min_gap"`
	MaxGap int   `json:"max_gap"`
	Values []int `json:"values"`
}

// Snapshot captures the configuration and exact contents of the set.
func (s *ExpandableSet) Snapshot() Snapshot {
	return Snapshot{MinGap: s.minGap, MaxGap: s.maxGap, Values: s.Values()}
}

// Restore rebuilds a set from snap, drawing future steps from src.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a set equal to the captured one, or an error wrapping
// ErrInvalidConfiguration when the gaps are invalid, the contents are empty or
// unsorted, or an adjacent pair violates the gap bounds.
func Restore(snap Snapshot, src dice.Source) (*ExpandableSet, error) {
	if err := ValidateGaps(snap.MinGap, snap.MaxGap); err != nil {
		return nil, err
	}
	if len(snap.Values) == 0 {
		return nil, fmt.Errorf("%w: restored set is empty", ErrInvalidConfiguration)
	}
	for i := 1; i < len(snap.Values); i++ {
		gap := snap.Values[i] - snap.Values[i-1]
		if gap < snap.MinGap || gap >= snap.MaxGap {
			return nil, fmt.Errorf("%w: gap %d between %d and %d outside [%d, %d)",
				ErrInvalidConfiguration, gap, snap.Values[i-1], snap.Values[i], snap.MinGap, snap.MaxGap)
		}
	}
	return &ExpandableSet{
		minGap: snap.MinGap,
		maxGap: snap.MaxGap,
		values: slices.Clone(snap.Values),
		src:    src,
	}, nil
}

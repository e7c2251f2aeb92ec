// Package river decides which vertical lines of the world carry rivers and
// where those rivers are crossed by bridges.
package river

import (
	"fmt"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/dice"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/intset"
)

// River is a line of water of constant x, crossed by bridges at sparse rows.
type River struct {
	bridges *intset.ExpandableSet
}

// newRiver creates a river whose bridges are spaced by [minGap, maxGap).
func newRiver(minGap, maxGap int, src dice.Source) (*River, error) {
	bridges, err := intset.New(minGap, maxGap, src)
	if err != nil {
		return nil, fmt.Errorf("creating bridge set: %w", err)
	}
	return &River{bridges: bridges}, nil
}

// IsBridge expands the bridge set toward y and reports whether row y is a
// bridge. A row that is not a bridge is open water.
func (r *River) IsBridge(y int) bool {
	r.bridges.Expand(y)
	return r.bridges.Contains(y)
}

// Bridges returns the bridge rows generated so far.
func (r *River) Bridges() []int {
	return r.bridges.Values()
}

// String implements fmt.Stringer.
func (r *River) String() string {
	return fmt.Sprintf("River with bridges in %v", r.bridges)
}

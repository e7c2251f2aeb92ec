package world

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// spawnCounters counts spawns per creature template across the whole world.
type spawnCounters struct {
	mu     sync.Mutex
	counts map[string]int
}

func newSpawnCounters() *spawnCounters {
	return &spawnCounters{counts: make(map[string]int)}
}

func (c *spawnCounters) increment(creatureID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[creatureID]++
}

func (c *spawnCounters) snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.counts)
}

// report renders one "%-20s%10d" row per creature, sorted by creature ID.
func (c *spawnCounters) report() string {
	counts := c.snapshot()
	var b strings.Builder
	for _, id := range slices.Sorted(maps.Keys(counts)) {
		fmt.Fprintf(&b, "%-20s%10d\n", id, counts[id])
	}
	return b.String()
}

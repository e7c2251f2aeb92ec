package command

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/dice"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/engine"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/item"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/npc"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/world"
	"github.com/bernardosulzbach/dungeon-sub001/internal/storage/snapshot"
)

var testPresets = []*world.Preset{{
	ID: "field", Name: "Open Field", Description: "Grass as far as the eye can see.",
	Type: world.PresetLand, LightPermittivity: 1,
	Spawners: []world.SpawnerPreset{{CreatureID: "rat", Population: 1, SpawnsPerDay: 24}},
	Items:    []world.ItemChance{{ItemID: "stone", Probability: 1}},
}}

func testDeps(t *testing.T, seed uint64) world.Deps {
	t.Helper()
	creatures, err := npc.NewRegistry(&npc.Template{ID: "rat", Name: "Rat", Description: "A scrawny rat.", Level: 1, MaxHP: 6, Attack: 1})
	require.NoError(t, err)
	items, err := item.NewRegistry(&item.Def{ID: "stone", Name: "Stone", Description: "A smooth stone.", Kind: item.KindMisc, Weight: 0.5})
	require.NoError(t, err)
	return world.Deps{Source: dice.NewSeededSource(seed), Creatures: creatures, Items: items}
}

func newTestInterpreter(t *testing.T, store snapshot.Store) *Interpreter {
	t.Helper()
	w, err := world.New(world.DefaultConfig(), testPresets, testDeps(t, 1))
	require.NoError(t, err)
	eng, err := engine.New(engine.DefaultConfig(), w, world.Point{}, nil)
	require.NoError(t, err)
	restore := func(save engine.SaveGame) (*engine.Engine, error) {
		return engine.Load(save, engine.DefaultConfig(), world.DefaultConfig(), testPresets, testDeps(t, 2))
	}
	return NewInterpreter(eng, store, restore, nil)
}

func run(t *testing.T, in *Interpreter, line string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, in.Execute(context.Background(), line, &buf))
	return buf.String()
}

func TestExecute_EmptyAndUnknown(t *testing.T) {
	in := newTestInterpreter(t, nil)
	assert.Equal(t, "", run(t, in, "   "))
	assert.Contains(t, run(t, in, "dance"), `Unknown command "dance"`)
}

func TestExecute_Look(t *testing.T) {
	in := newTestInterpreter(t, nil)
	out := run(t, in, "LOOK")
	assert.Contains(t, out, "Open Field (0, 0)")
	assert.Contains(t, out, "Grass as far as the eye can see.")
	assert.Contains(t, out, "It is Dawn. The light here is 60%.")
	assert.Contains(t, out, "Items: Stone.")
	assert.NotContains(t, out, "Creatures:")
	assert.Equal(t, int64(0), in.Engine().World().Clock().Elapsed())
}

func TestExecute_Move(t *testing.T) {
	in := newTestInterpreter(t, nil)
	assert.Contains(t, run(t, in, "n"), "Open Field (0, 1)")
	assert.Contains(t, run(t, in, "go east"), "Open Field (1, 1)")
	assert.Contains(t, run(t, in, "move W"), "Open Field (0, 1)")
	assert.Equal(t, int64(180), in.Engine().World().Clock().Elapsed())

	assert.Contains(t, run(t, in, "go up"), "Usage: go <direction>")
	assert.Contains(t, run(t, in, "go"), "Usage: go <direction>")
	assert.Equal(t, world.Point{Y: 1}, in.Engine().Position())
}

func TestExecute_WaitAttackExamine(t *testing.T) {
	in := newTestInterpreter(t, nil)

	assert.Contains(t, run(t, in, "attack rat"), "There is no such creature here.")
	assert.Equal(t, int64(0), in.Engine().World().Clock().Elapsed())

	out := run(t, in, "wait 1h")
	assert.Contains(t, out, "Time passes.")
	assert.Contains(t, out, "2055-06-02 07:10")
	assert.Contains(t, run(t, in, "look"), "Creatures: Rat (unharmed).")

	assert.Contains(t, run(t, in, "examine rat"), "A scrawny rat.\nIt is unharmed (level 1, 6/6 HP).")
	assert.Contains(t, run(t, in, "x stone"), "A misc item weighing 0.5.")
	assert.Contains(t, run(t, in, "x dragon"), "You see no dragon here.")

	assert.Contains(t, run(t, in, "attack rat"), "You hit the Rat for 4 damage. It is badly wounded.")
	assert.Contains(t, run(t, in, "kill RAT"), "You kill the Rat.")
	assert.Equal(t, int64(3720), in.Engine().World().Clock().Elapsed())

	assert.Contains(t, run(t, in, "wait"), "Time passes.")
	assert.Equal(t, int64(3780), in.Engine().World().Clock().Elapsed())
	assert.Contains(t, run(t, in, "wait soon"), "Usage: wait [seconds]")
	assert.Contains(t, run(t, in, "wait -5"), "You can't do that")
	assert.Contains(t, run(t, in, "attack"), "Usage: attack <name>")
}

func TestExecute_AbbreviationsAndArticles(t *testing.T) {
	in := newTestInterpreter(t, nil)
	run(t, in, "wait 1h")
	assert.Contains(t, run(t, in, "exa the Rat"), "A scrawny rat.")
	assert.Contains(t, run(t, in, "x a stone"), "A smooth stone.")
	assert.Contains(t, run(t, in, "nor"), "Open Field (0, 1)")
	assert.Contains(t, run(t, in, "walk"), `Unknown command "walk"`)
	assert.Contains(t, run(t, in, "sa"), `Unknown command "sa"`)
}

func TestExecute_WorldCommands(t *testing.T) {
	in := newTestInterpreter(t, nil)
	assert.Equal(t, "Nothing has spawned yet.\n", run(t, in, "spawns"))
	assert.Equal(t, "Chunk side is 5.\n", run(t, in, "chunk"))
	assert.Equal(t, "Chunk side set to 50.\n", run(t, in, "chunk 999"))
	assert.Equal(t, "Chunk side set to 3.\n", run(t, in, "chunk 3"))
	assert.Contains(t, run(t, in, "chunk big"), "Usage: chunk [side]")

	run(t, in, "look")
	stats := run(t, in, "stats")
	assert.Contains(t, stats, "Chunk side: 3\n")
	assert.Contains(t, stats, "Generated locations: 9\n")

	run(t, in, "wait 3600")
	assert.Contains(t, run(t, in, "spawns"), "rat")
	assert.Contains(t, run(t, in, "time"), "Morning")
	assert.Contains(t, run(t, in, "help"), "movement:")
}

func TestExecute_SaveLoad(t *testing.T) {
	store, err := snapshot.NewFileStore(t.TempDir())
	require.NoError(t, err)
	in := newTestInterpreter(t, store)

	assert.Equal(t, "No saved games.\n", run(t, in, "saves"))
	run(t, in, "north")
	assert.Equal(t, "Saved as \"slot1\".\n", run(t, in, "save slot1"))
	saved := in.Engine().Save()

	run(t, in, "south")
	run(t, in, "south")
	before := in.Engine()

	out := run(t, in, "load slot1")
	assert.Contains(t, out, `Loaded "slot1".`)
	assert.Contains(t, out, "Open Field (0, 1)")
	assert.NotSame(t, before, in.Engine())
	assert.Equal(t, saved, in.Engine().Save())

	assert.Equal(t, "Saved games: slot1\n", run(t, in, "saves"))
	assert.Contains(t, run(t, in, "load nothing"), "There is no saved game by that name.")
	assert.Contains(t, run(t, in, "save ../x"), "Save names may only use")
	assert.Contains(t, run(t, in, "save"), "Usage: save <name>")
}

func TestExecute_NoStore(t *testing.T) {
	in := newTestInterpreter(t, nil)
	for _, line := range []string{"save a", "load a", "saves"} {
		assert.Contains(t, run(t, in, line), "saving is not configured", line)
	}
}

func TestExecute_WaitPastEndOfTime(t *testing.T) {
	in := newTestInterpreter(t, nil)
	assert.Contains(t, run(t, in, "wait 9223372036854775000"), "Time passes.")
	assert.Contains(t, run(t, in, "wait 9223372036854775000"), "Time cannot pass any further in this world.")
	assert.Equal(t, int64(9223372036854775000), in.Engine().World().Clock().Elapsed())
	assert.Contains(t, run(t, in, "look"), "Open Field (0, 0)")
}

func TestExecute_Quit(t *testing.T) {
	in := newTestInterpreter(t, nil)
	var buf bytes.Buffer
	err := in.Execute(context.Background(), "exit", &buf)
	assert.ErrorIs(t, err, ErrQuit)
	assert.Equal(t, "Farewell.\n", buf.String())
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "The river is too deep to cross here. Look for a bridge.",
		describeError(fmt.Errorf("moving: %w", engine.ErrBlocked)))
	assert.Equal(t, "You can't do that: boom", describeError(fmt.Errorf("boom")))
}

func TestParseSeconds(t *testing.T) {
	cases := map[string]int64{"90": 90, "2h": 7200, "1m30s": 90, "-3": -3}
	for in, want := range cases {
		got, err := parseSeconds(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseSeconds("later")
	assert.Error(t, err)
}

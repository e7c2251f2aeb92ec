package world_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/world"
)

const presetsYAML = `
presets:
  - id: meadow
    name: Meadow
    description: |
      Tall grass sways in the wind.
    light_permittivity: 0.9
    spawners:
      - creature: rat
        population: 2
        spawns_per_day: 12
    items:
      - item: stone
        probability: 0.25
  - id: ford
    name: Shallow Ford
    type: river
    light_permittivity: 1.0
`

func TestLoadPresetsFromBytes_Valid(t *testing.T) {
	presets, err := world.LoadPresetsFromBytes([]byte(presetsYAML))
	require.NoError(t, err)
	require.Len(t, presets, 2)

	m := presets[0]
	assert.Equal(t, "meadow", m.ID)
	assert.Equal(t, world.PresetLand, m.Type, "type defaults to land")
	assert.Equal(t, "Tall grass sways in the wind.", m.Description)
	assert.Equal(t, []world.SpawnerPreset{{CreatureID: "rat", Population: 2, SpawnsPerDay: 12}}, m.Spawners)
	assert.Equal(t, []world.ItemChance{{ItemID: "stone", Probability: 0.25}}, m.Items)
	assert.Equal(t, world.PresetRiver, presets[1].Type)
}

func TestLoadPresetsFromBytes_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing presets key": "locations: []\n",
		"missing name":        "presets:\n  - id: x\n    light_permittivity: 0.5\n",
		"unknown field":       "presets:\n  - id: x\n    name: X\n    light_permittivity: 0.5\n    colour: red\n",
		"bad type":            "presets:\n  - id: x\n    name: X\n    type: lava\n    light_permittivity: 0.5\n",
		"light above one":     "presets:\n  - id: x\n    name: X\n    light_permittivity: 1.5\n",
		"zero spawns per day": "presets:\n  - id: x\n    name: X\n    light_permittivity: 0.5\n    spawners:\n      - {creature: rat, population: 1, spawns_per_day: 0}\n",
		"fractional population": "presets:\n  - id: x\n    name: X\n    light_permittivity: 0.5\n    spawners:\n      - {creature: rat, population: 1.5, spawns_per_day: 2}\n",
		"probability above one": "presets:\n  - id: x\n    name: X\n    light_permittivity: 0.5\n    items:\n      - {item: stone, probability: 2}\n",
		"malformed yaml":        ":::invalid",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := world.LoadPresetsFromBytes([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadPresetsFromBytes_DuplicateSpawnerRejected(t *testing.T) {
	data := `
presets:
  - id: den
    name: Den
    light_permittivity: 0.1
    spawners:
      - {creature: rat, population: 1, spawns_per_day: 2}
      - {creature: rat, population: 3, spawns_per_day: 2}
`
	_, err := world.LoadPresetsFromBytes([]byte(data))
	assert.ErrorIs(t, err, world.ErrInvalidConfiguration)
}

func TestLoadPresetsFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "land.yaml"), []byte(presetsYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	presets, err := world.LoadPresetsFromDir(dir)
	require.NoError(t, err)
	assert.Len(t, presets, 2)
}

func TestLoadPresetsFromDir_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(presetsYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte(presetsYAML), 0644))

	_, err := world.LoadPresetsFromDir(dir)
	assert.ErrorContains(t, err, "duplicate preset ID")
}

func TestLoadPresetsFromDir_Empty(t *testing.T) {
	_, err := world.LoadPresetsFromDir(t.TempDir())
	assert.Error(t, err)
}

func TestCheckReferences(t *testing.T) {
	presets, err := world.LoadPresetsFromBytes([]byte(presetsYAML))
	require.NoError(t, err)

	assert.NoError(t, world.CheckReferences(presets, []string{"rat"}, []string{"stone"}))
	assert.ErrorContains(t, world.CheckReferences(presets, nil, []string{"stone"}), `unknown creature "rat"`)
	assert.ErrorContains(t, world.CheckReferences(presets, []string{"rat"}, nil), `unknown item "stone"`)
}

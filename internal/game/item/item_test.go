package item_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDef_Validate(t *testing.T) {
	tests := []struct {
		name    string
		def     item.Def
		wantErr bool
	}{
		{"valid misc", item.Def{ID: "stone", Name: "Stone", Kind: item.KindMisc, Weight: 1}, false},
		{"valid weapon", item.Def{ID: "club", Name: "Club", Kind: item.KindWeapon, Damage: 3}, false},
		{"valid food", item.Def{ID: "apple", Name: "Apple", Kind: item.KindFood, Nutrition: 2}, false},
		{"missing id", item.Def{Name: "Stone", Kind: item.KindMisc}, true},
		{"missing name", item.Def{ID: "stone", Kind: item.KindMisc}, true},
		{"bad kind", item.Def{ID: "stone", Name: "Stone", Kind: "rock"}, true},
		{"negative weight", item.Def{ID: "stone", Name: "Stone", Kind: item.KindMisc, Weight: -1}, true},
		{"weapon without damage", item.Def{ID: "club", Name: "Club", Kind: item.KindWeapon}, true},
		{"food without nutrition", item.Def{ID: "apple", Name: "Apple", Kind: item.KindFood}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadItems(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stick.yaml"), []byte(`
id: stick
name: Stick
description: A dry stick.
kind: weapon
weight: 0.5
damage: 1
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apple.yml"), []byte(`
id: apple
name: Apple
kind: food
weight: 0.2
nutrition: 3
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	defs, err := item.LoadItems(dir)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	ids := []string{defs[0].ID, defs[1].ID}
	assert.ElementsMatch(t, []string{"stick", "apple"}, ids)
}

func TestLoadItems_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: x\nkind: nope\n"), 0644))
	_, err := item.LoadItems(dir)
	assert.Error(t, err)
}

func TestRegistry_MakeAndLookup(t *testing.T) {
	stone := &item.Def{ID: "stone", Name: "Stone", Kind: item.KindMisc, Weight: 1}
	reg, err := item.NewRegistry(stone)
	require.NoError(t, err)

	d, ok := reg.Def("stone")
	require.True(t, ok)
	assert.Same(t, stone, d)

	inst, err := reg.Make("stone")
	require.NoError(t, err)
	assert.Equal(t, "stone", inst.DefID)
	assert.Equal(t, "Stone", inst.Name)
	assert.NotEmpty(t, inst.ID)

	_, err = reg.Make("gem")
	assert.ErrorIs(t, err, item.ErrUnknownItem)
	assert.Error(t, reg.Register(stone))
}

func TestProperty_Registry_UniqueInstanceIDs(t *testing.T) {
	reg, err := item.NewRegistry(&item.Def{ID: "stone", Name: "Stone", Kind: item.KindMisc})
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(rt, "n")
		seen := make(map[string]bool, n)
		for i := 0; i < n; i++ {
			inst, err := reg.Make("stone")
			require.NoError(rt, err)
			if seen[inst.ID] {
				rt.Fatalf("duplicate instance id %s", inst.ID)
			}
			seen[inst.ID] = true
		}
	})
}

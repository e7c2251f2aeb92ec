package npc_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/npc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const ratYAML = `
id: rat
name: Rat
description: A grey rat with a long tail.
level: 1
max_hp: 6
attack: 1
tags: [corpse]
`

func TestLoadTemplateFromBytes_Valid(t *testing.T) {
	tmpl, err := npc.LoadTemplateFromBytes([]byte(ratYAML))
	require.NoError(t, err)
	assert.Equal(t, "rat", tmpl.ID)
	assert.Equal(t, "Rat", tmpl.Name)
	assert.Equal(t, 6, tmpl.MaxHP)
	assert.Equal(t, 1, tmpl.Attack)
	assert.True(t, tmpl.HasTag(npc.TagCorpse))
	assert.False(t, tmpl.HasTag(npc.TagHostile))
}

func TestLoadTemplateFromBytes_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing id":     "name: Rat\nlevel: 1\nmax_hp: 6\n",
		"missing name":   "id: rat\nlevel: 1\nmax_hp: 6\n",
		"zero level":     "id: rat\nname: Rat\nlevel: 0\nmax_hp: 6\n",
		"zero hp":        "id: rat\nname: Rat\nlevel: 1\nmax_hp: 0\n",
		"negative atk":   "id: rat\nname: Rat\nlevel: 1\nmax_hp: 6\nattack: -1\n",
		"malformed yaml": ":::invalid",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := npc.LoadTemplateFromBytes([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestProperty_Template_ValidFieldsPassValidation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		id := rapid.StringMatching(`[a-z][a-z0-9_]{0,15}`).Draw(rt, "id")
		level := rapid.IntRange(1, 20).Draw(rt, "level")
		maxHP := rapid.IntRange(1, 300).Draw(rt, "max_hp")
		attack := rapid.IntRange(0, 50).Draw(rt, "attack")

		data := []byte(fmt.Sprintf("id: %q\nname: Creature\nlevel: %d\nmax_hp: %d\nattack: %d\n", id, level, maxHP, attack))
		tmpl, err := npc.LoadTemplateFromBytes(data)
		require.NoError(rt, err)
		assert.Equal(rt, id, tmpl.ID)
		assert.Equal(rt, maxHP, tmpl.MaxHP)
	})
}

func TestLoadTemplates_ValidDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rat.yaml"), []byte(ratYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0644))

	templates, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "rat", templates[0].ID)
}

func TestLoadTemplates_EmptyDir(t *testing.T) {
	templates, err := npc.LoadTemplates(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestLoadTemplates_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(":::invalid"), 0644))
	_, err := npc.LoadTemplates(dir)
	assert.Error(t, err)
}

func TestLoadTemplates_MissingDir(t *testing.T) {
	_, err := npc.LoadTemplates(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

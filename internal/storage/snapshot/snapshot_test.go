package snapshot_test

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/bernardosulzbach/dungeon-sub001/internal/game/dice"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/engine"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/item"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/npc"
	"github.com/bernardosulzbach/dungeon-sub001/internal/game/world"
	"github.com/bernardosulzbach/dungeon-sub001/internal/storage/snapshot"
)

type record struct {
	Name   string  `json:"name"`
	Values []int64 `json:"values"`
}

// rawStream compresses header and payload exactly as given.
func rawStream(t *testing.T, header, payload string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(header + "\n" + payload))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestProperty_Codec_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		in := record{
			Name:   rapid.String().Draw(rt, "name"),
			Values: rapid.SliceOf(rapid.Int64()).Draw(rt, "values"),
		}
		data, err := snapshot.Encode(in)
		if err != nil {
			rt.Fatalf("encode: %v", err)
		}
		var out record
		if err := snapshot.Decode(data, &out); err != nil {
			rt.Fatalf("decode: %v", err)
		}
		if out.Name != in.Name || len(out.Values) != len(in.Values) {
			rt.Fatalf("round trip changed %+v into %+v", in, out)
		}
		for i := range in.Values {
			if in.Values[i] != out.Values[i] {
				rt.Fatalf("value %d: %d != %d", i, in.Values[i], out.Values[i])
			}
		}
	})
}

func TestDecode_ChecksumMismatch(t *testing.T) {
	data := rawStream(t, `{"version":1,"xxhash64":12345,"size":13}`, `{"name":"a"}`)
	var out record
	assert.ErrorIs(t, snapshot.Decode(data, &out), snapshot.ErrChecksum)
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	data := rawStream(t, `{"version":99,"xxhash64":0,"size":0}`, ``)
	var out record
	assert.ErrorIs(t, snapshot.Decode(data, &out), snapshot.ErrUnsupportedVersion)
}

func TestDecode_Garbage(t *testing.T) {
	var out record
	assert.Error(t, snapshot.Decode([]byte("not zstd at all"), &out))
	assert.Error(t, snapshot.Decode(rawStream(t, "{broken", ""), &out))
}

func TestDecode_PayloadLongerThanDeclared(t *testing.T) {
	data := rawStream(t, `{"version":1,"xxhash64":0,"size":10}`, strings.Repeat("x", 4<<20))
	var out record
	assert.ErrorIs(t, snapshot.Decode(data, &out), snapshot.ErrChecksum)
}

func TestDecode_DeclaredSizeOutOfRange(t *testing.T) {
	var out record
	for _, size := range []int{-1, snapshot.MaxPayloadSize + 1} {
		header := fmt.Sprintf(`{"version":1,"xxhash64":0,"size":%d}`, size)
		assert.ErrorIs(t, snapshot.Decode(rawStream(t, header, `{}`), &out), snapshot.ErrTooLarge, size)
	}
}

func TestDecode_HeaderWithoutNewline(t *testing.T) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write(bytes.Repeat([]byte("{"), 2<<20))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var out record
	assert.ErrorIs(t, snapshot.Decode(buf.Bytes(), &out), bufio.ErrBufferFull)
}

func TestDecode_TruncatedStream(t *testing.T) {
	data, err := snapshot.Encode(record{Name: "hero", Values: []int64{1, 2, 3}})
	require.NoError(t, err)
	var out record
	assert.Error(t, snapshot.Decode(data[:len(data)/2], &out))
}

func TestFileStore_SaveLoadList(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "saves")
	s, err := snapshot.NewFileStore(dir)
	require.NoError(t, err)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.Save(ctx, "beta", []byte("two")))
	require.NoError(t, s.Save(ctx, "alpha", []byte("one")))
	require.NoError(t, s.Save(ctx, "beta", []byte("three")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0o644))

	names, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	data, err := s.Load(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, []byte("three"), data)
}

func TestFileStore_Errors(t *testing.T) {
	ctx := context.Background()
	s, err := snapshot.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	for _, name := range []string{"", "../escape", "a/b", "has space"} {
		assert.ErrorIs(t, s.Save(ctx, name, nil), snapshot.ErrInvalidName, name)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.Save(cancelled, "ok", nil), context.Canceled)
}

func TestSaveValue_EngineRoundTrip(t *testing.T) {
	ctx := context.Background()
	presets := []*world.Preset{{
		ID: "field", Name: "Field", Type: world.PresetLand, LightPermittivity: 1,
		Spawners: []world.SpawnerPreset{{CreatureID: "rat", Population: 1, SpawnsPerDay: 24}},
	}}
	deps := func(seed uint64) world.Deps {
		creatures, err := npc.NewRegistry(&npc.Template{ID: "rat", Name: "Rat", Level: 1, MaxHP: 6, Attack: 1})
		require.NoError(t, err)
		items, err := item.NewRegistry()
		require.NoError(t, err)
		return world.Deps{Source: dice.NewSeededSource(seed), Creatures: creatures, Items: items}
	}

	w, err := world.New(world.DefaultConfig(), presets, deps(5))
	require.NoError(t, err)
	e, err := engine.New(engine.DefaultConfig(), w, world.Point{}, nil)
	require.NoError(t, err)
	_, err = e.Move(world.West)
	require.NoError(t, err)
	require.NoError(t, e.Wait(7200))

	s, err := snapshot.NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, snapshot.SaveValue(ctx, s, "slot1", e.Save()))

	var save engine.SaveGame
	require.NoError(t, snapshot.LoadValue(ctx, s, "slot1", &save))
	loaded, err := engine.Load(save, engine.DefaultConfig(), world.DefaultConfig(), presets, deps(6))
	require.NoError(t, err)
	assert.Equal(t, e.Save(), loaded.Save())
}

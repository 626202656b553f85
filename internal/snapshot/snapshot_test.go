package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docdex/pkg/types"
)

func sampleSnapshot() *types.Snapshot {
	return &types.Snapshot{
		Version:     types.SnapshotVersion,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Root:        "/proj",
		Symbols: []types.SymbolRecord{
			{ID: "a.go#A:function", Name: "A", Kind: types.KindFunction, File: "a.go"},
		},
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "index.json")

	require.NoError(t, Write(path, sampleSnapshot()))

	snap, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, types.SnapshotVersion, snap.Version)
	assert.Equal(t, "/proj", snap.Root)
	require.Len(t, snap.Symbols, 1)
	assert.Equal(t, "A", snap.Symbols[0].Name)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	require.NoError(t, Write(path, sampleSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "index.json", entries[0].Name())
}

func TestWriteFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, Write(path, sampleSnapshot()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "index.json"))
	assert.ErrorIs(t, err, types.ErrSnapshotNotFound)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, types.ErrSnapshotMalformed)
}

func TestLoadVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	snap := sampleSnapshot()
	snap.Version = types.SnapshotVersion + 1
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Load(path)
	assert.ErrorIs(t, err, types.ErrSnapshotVersion)
}

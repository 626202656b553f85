package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docdex/internal/build"
	"docdex/internal/cache"
	"docdex/internal/config"
)

func writeWatchProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"),
		[]byte("package a\n\nfunc A() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"),
		[]byte("package b\n\nfunc B() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, config.DefaultFileName),
		[]byte("debounce_ms: 100\n"), 0o644))
	return root
}

func TestRebuildFuncPicksUpConfigEdits(t *testing.T) {
	root := writeWatchProject(t)

	var indexed int
	events := &build.Events{
		OnProgress: func(phase string, current, total int, file string) {
			if phase == build.PhaseIndexing {
				indexed++
			}
		},
	}

	fn := rebuildFunc(context.Background(), []string{root}, events)
	require.NoError(t, fn())
	assert.Equal(t, 2, indexed)

	// Edit the project file between builds. The next build must treat every
	// file as changed and stamp the manifest with the live fingerprint.
	require.NoError(t, os.WriteFile(filepath.Join(root, config.DefaultFileName),
		[]byte("debounce_ms: 200\n"), 0o644))

	indexed = 0
	require.NoError(t, fn())
	assert.Equal(t, 2, indexed, "a config edit invalidates every cached entry")

	live, err := config.Load(filepath.Join(root, config.DefaultFileName))
	require.NoError(t, err)
	m := cache.Load(live.CachePath(), live.Fingerprint(), nil)
	require.NotNil(t, m, "the manifest must carry the live config fingerprint")
	assert.Len(t, m.Files, 2)
}

func TestRebuildFuncUnchangedConfigStaysIncremental(t *testing.T) {
	root := writeWatchProject(t)

	var indexed int
	events := &build.Events{
		OnProgress: func(phase string, current, total int, file string) {
			if phase == build.PhaseIndexing {
				indexed++
			}
		},
	}

	fn := rebuildFunc(context.Background(), []string{root}, events)
	require.NoError(t, fn())

	indexed = 0
	require.NoError(t, fn())
	assert.Zero(t, indexed, "re-resolving an unchanged config must not defeat the cache")
}

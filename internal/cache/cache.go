package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"docdex/pkg/types"
)

// FormatVersion is the cache envelope version. Any mismatch between this
// constant and a manifest on disk discards the manifest entirely.
const FormatVersion = 1

// FileEntry is the last-known state of one source file. Fingerprint is
// always the hash of the exact bytes that produced Symbols; the two are
// written together and never updated independently. ModTime (UnixNano) is
// advisory: zero means unknown, and a stale value only costs one hash.
type FileEntry struct {
	Fingerprint string               `json:"fingerprint"`
	Symbols     []types.SymbolRecord `json:"symbols"`
	ModTime     int64                `json:"mtime,omitempty"`
}

// Manifest is the persisted cache document. Keys of Files are
// slash-separated paths relative to the project root.
type Manifest struct {
	CacheVersion      int                  `json:"cache_version"`
	IndexVersion      int                  `json:"index_version"`
	ConfigFingerprint string               `json:"config_fingerprint"`
	Plugins           []string             `json:"plugins"`
	Files             map[string]FileEntry `json:"files"`
}

// New returns an empty manifest stamped with the current versions.
func New(configFingerprint string, plugins []string) *Manifest {
	sorted := append([]string(nil), plugins...)
	sort.Strings(sorted)
	return &Manifest{
		CacheVersion:      FormatVersion,
		IndexVersion:      types.SnapshotVersion,
		ConfigFingerprint: configFingerprint,
		Plugins:           sorted,
		Files:             make(map[string]FileEntry),
	}
}

// Load reads a manifest and runs the invalidation chain, cheapest check
// first: envelope shape, cache version, index version, plugin set, config
// fingerprint. Any failure returns nil (full rebuild); staleness is never
// an error. Entry-level data inside a valid envelope is trusted as
// engine-authored and not re-validated.
func Load(path, configFingerprint string, plugins []string) *Manifest {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		slog.Debug("cache manifest malformed, rebuilding", "path", path, "error", err)
		return nil
	}

	if m.CacheVersion != FormatVersion {
		slog.Debug("cache format version mismatch, rebuilding", "have", m.CacheVersion, "want", FormatVersion)
		return nil
	}
	if m.IndexVersion != types.SnapshotVersion {
		slog.Debug("index schema version mismatch, rebuilding", "have", m.IndexVersion, "want", types.SnapshotVersion)
		return nil
	}

	sorted := append([]string(nil), plugins...)
	sort.Strings(sorted)
	if !equalStrings(m.Plugins, sorted) {
		slog.Debug("active plugin set changed, rebuilding")
		return nil
	}

	if m.ConfigFingerprint != configFingerprint {
		slog.Debug("project config fingerprint changed, rebuilding")
		return nil
	}

	if m.Files == nil {
		m.Files = make(map[string]FileEntry)
	}
	return &m
}

// Write persists the manifest, creating parent directories as needed. The
// engine assumes a single writer process, so no locking is involved.
func Write(path string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache manifest: %w", err)
	}
	return nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

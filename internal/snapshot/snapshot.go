package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"docdex/pkg/types"
)

// Write publishes a snapshot by writing to a temporary file in the target
// directory and renaming it into place, so readers never observe a
// half-written index.
func Write(path string, snap *types.Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.json")
	if err != nil {
		return fmt.Errorf("failed to create snapshot temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	// CreateTemp opens 0600; the published index is world-readable like the
	// cache manifest.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot. It returns types.ErrSnapshotNotFound when the file
// does not exist, types.ErrSnapshotMalformed when it is not valid JSON, and
// types.ErrSnapshotVersion when it was written by an incompatible schema.
func Load(path string) (*types.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap types.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSnapshotMalformed, err)
	}
	if snap.Version != types.SnapshotVersion {
		return nil, fmt.Errorf("%w: have %d, want %d", types.ErrSnapshotVersion, snap.Version, types.SnapshotVersion)
	}
	return &snap, nil
}

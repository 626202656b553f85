package types

import "errors"

// Sentinel errors shared across the engine.
var (
	// ErrSnapshotNotFound means no index has been built yet.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrSnapshotMalformed means the snapshot file exists but is not valid JSON.
	ErrSnapshotMalformed = errors.New("snapshot malformed")
	// ErrSnapshotVersion means the snapshot was written by an incompatible schema.
	ErrSnapshotVersion = errors.New("snapshot schema version mismatch")
)

package types

import "time"

// SnapshotVersion is the index schema version. Bumping it invalidates every
// existing cache and snapshot; there is no migration path.
const SnapshotVersion = 1

// Snapshot is the complete published index for one build generation. It is
// rebuilt from scratch and atomically replaced on disk after every
// successful build; it is never patched in place.
type Snapshot struct {
	Version     int            `json:"version"`
	GeneratedAt time.Time      `json:"generated_at"`
	Root        string         `json:"root"`
	Symbols     []SymbolRecord `json:"symbols"`
}

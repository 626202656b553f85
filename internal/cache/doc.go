// Package cache persists the per-file build manifest that makes rebuilds
// incremental.
//
// Each entry maps a relative file path to the SHA-256 fingerprint of the
// bytes last extracted, the symbol records produced from those bytes, and an
// advisory modification time. The manifest is replaced wholesale after
// every successful build and never patched in place.
//
// # Basic Usage
//
//	m := cache.Load(cfg.CachePath(), cfg.Fingerprint(), pluginNames)
//	if m == nil {
//	    // full rebuild: no usable manifest
//	}
//
//	next := cache.New(cfg.Fingerprint(), pluginNames)
//	next.Files["pkg/a.go"] = cache.FileEntry{
//	    Fingerprint: cache.HashBytes(content),
//	    Symbols:     records,
//	    ModTime:     info.ModTime().UnixNano(),
//	}
//	err := cache.Write(cfg.CachePath(), next)
//
// # Invalidation Chain
//
// Load runs a chain of staleness checks, cheapest first:
//
//  1. Envelope shape: unreadable or malformed JSON
//  2. Cache format version: this package's FormatVersion
//  3. Index schema version: types.SnapshotVersion
//  4. Active plugin set: compared as sorted names, order-insensitive
//  5. Project config fingerprint: hash of the live project file
//
// Any failure returns nil, which the orchestrator treats as "no cache";
// staleness is never surfaced as an error. The check is deliberately
// two-tier: the envelope is validated at the boundary, but entry-level data
// inside a valid envelope is trusted as engine-authored and not
// re-validated.
//
// # Fingerprints and Timestamps
//
// Fingerprint and Symbols in one entry are always written together from the
// same bytes; nothing updates them independently. ModTime is only an
// optimization hint for the diff engine's fast path:
//
//	entry.ModTime == 0      // unknown: the diff falls back to hashing
//	entry.ModTime == liveMt // bit-equal: unchanged without reading the file
//
// A stale timestamp therefore costs at most one content hash, never a wrong
// classification.
package cache

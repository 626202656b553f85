// Package snapshot reads and atomically writes the published index
// artifact. Readers get distinct failures for a missing file, malformed
// JSON, and a schema version mismatch so callers can diagnose each case.
package snapshot

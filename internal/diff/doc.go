// Package diff classifies the current file set against a cache manifest.
//
// The engine partitions paths into changed, unchanged, and deleted, telling
// the orchestrator exactly which files need re-extraction and which cached
// entries can be carried forward verbatim.
//
// # Basic Usage
//
//	e := diff.New()
//	res, err := e.Diff(ctx, cfg.Root, paths, manifest)
//
//	for _, rel := range res.Changed {
//	    // re-extract
//	}
//	for _, rel := range res.Unchanged {
//	    // carry the cached entry forward
//	}
//
// A nil manifest means first build: every path is changed and nothing is
// read or hashed.
//
// # Two-Tier Check
//
// Each cache-known path goes through the checks in cost order:
//
//	modTime := stat(path)
//	if entry.ModTime != 0 && entry.ModTime == modTime {
//	    return unchanged // fast path, file never read
//	}
//	hash := sha256(read(path))
//	return hash != entry.Fingerprint // slow path decides
//
// The timestamp comparison is bit-equality, never a tolerance window. A
// file whose mtime drifted but whose content is identical is classified
// unchanged, and the fresh mtime is reported back so the next manifest
// stores it and the next build takes the fast path again.
//
// # Bounded Batches
//
// Stat and hash operations run in concurrent batches of BatchWidth (32 by
// default), awaited sequentially, so no more than BatchWidth file
// descriptors are ever open for diffing regardless of tree size. Outcomes
// land in a preallocated slice per batch; result slices are sorted before
// return so output is deterministic.
//
// # Deleted Paths
//
// Every manifest path absent from the current file set is reported in
// Deleted. The list is informational: the orchestrator removes such files
// by simply not carrying their entries into the next manifest, so deletion
// costs no explicit work.
//
// Hashes and ModTimes computed during classification are returned in the
// Result so the orchestrator never recomputes them when assembling the new
// manifest.
package diff

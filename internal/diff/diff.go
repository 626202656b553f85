package diff

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"docdex/internal/cache"
)

// DefaultBatchWidth bounds how many stat/hash operations run concurrently.
// Batches are awaited sequentially so no more than this many file
// descriptors are ever open for diffing at once.
const DefaultBatchWidth = 32

// Result partitions one file set relative to a cache manifest. Changed and
// Unchanged together cover every current path; Deleted lists cache-known
// paths that no longer exist (informational; removal happens by omission
// when the next manifest is assembled). Hashes and ModTimes carry values
// computed during the comparison so the orchestrator need not recompute
// them when writing the new cache.
type Result struct {
	Changed   []string
	Unchanged []string
	Deleted   []string
	Hashes    map[string]string
	ModTimes  map[string]int64
}

// Engine compares live files against cached entries. The function fields
// exist so tests can observe or fail individual operations; zero values use
// the real filesystem.
type Engine struct {
	BatchWidth int

	hashFile func(path string) (string, error)
	statMod  func(path string) (int64, error)
}

// New returns an Engine with the default batch width.
func New() *Engine {
	return &Engine{
		BatchWidth: DefaultBatchWidth,
		hashFile:   cache.HashFile,
		statMod:    statModTime,
	}
}

// Diff classifies every path in paths (slash-separated, relative to root)
// against the manifest. A nil manifest means first build: everything is
// changed and nothing is hashed.
func (e *Engine) Diff(ctx context.Context, root string, paths []string, m *cache.Manifest) (*Result, error) {
	res := &Result{
		Hashes:   make(map[string]string),
		ModTimes: make(map[string]int64),
	}

	if m == nil {
		res.Changed = append(res.Changed, paths...)
		sort.Strings(res.Changed)
		return res, nil
	}

	current := make(map[string]struct{}, len(paths))
	var known []string
	for _, p := range paths {
		current[p] = struct{}{}
		if _, ok := m.Files[p]; ok {
			known = append(known, p)
		} else {
			// No baseline to compare against; hashing would be wasted work.
			res.Changed = append(res.Changed, p)
		}
	}

	if err := e.compareKnown(ctx, root, known, m, res); err != nil {
		return nil, err
	}

	for p := range m.Files {
		if _, ok := current[p]; !ok {
			res.Deleted = append(res.Deleted, p)
		}
	}

	sort.Strings(res.Changed)
	sort.Strings(res.Unchanged)
	sort.Strings(res.Deleted)
	return res, nil
}

// outcome is the per-file comparison verdict produced inside a batch.
type outcome struct {
	path    string
	changed bool
	hash    string
	modTime int64
}

// compareKnown runs the two-tier check over cache-known paths in bounded
// concurrent batches, merging results after each batch completes.
func (e *Engine) compareKnown(ctx context.Context, root string, known []string, m *cache.Manifest, res *Result) error {
	width := e.BatchWidth
	if width <= 0 {
		width = DefaultBatchWidth
	}

	for start := 0; start < len(known); start += width {
		end := start + width
		if end > len(known) {
			end = len(known)
		}
		batch := known[start:end]
		outcomes := make([]outcome, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for i, p := range batch {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out, err := e.compareOne(root, p, m.Files[p])
				if err != nil {
					return err
				}
				outcomes[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, out := range outcomes {
			if out.changed {
				res.Changed = append(res.Changed, out.path)
			} else {
				res.Unchanged = append(res.Unchanged, out.path)
			}
			if out.hash != "" {
				res.Hashes[out.path] = out.hash
			}
			if out.modTime != 0 {
				res.ModTimes[out.path] = out.modTime
			}
		}
	}

	return nil
}

// compareOne applies the fast path (bit-equal mtime, no read) and falls back
// to hashing the content when the timestamp is absent or drifted.
func (e *Engine) compareOne(root, relPath string, entry cache.FileEntry) (outcome, error) {
	abs := filepath.Join(root, filepath.FromSlash(relPath))

	modTime, err := e.statMod(abs)
	if err != nil {
		return outcome{}, err
	}

	if entry.ModTime != 0 && entry.ModTime == modTime {
		return outcome{path: relPath, modTime: modTime}, nil
	}

	hash, err := e.hashFile(abs)
	if err != nil {
		return outcome{}, err
	}

	return outcome{
		path:    relPath,
		changed: hash != entry.Fingerprint,
		hash:    hash,
		modTime: modTime,
	}, nil
}

func statModTime(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.ModTime().UnixNano(), nil
}

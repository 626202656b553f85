package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"docdex/internal/cache"
	"docdex/internal/config"
	"docdex/internal/diff"
	"docdex/internal/extractor"
	"docdex/internal/plugin"
	"docdex/internal/router"
	"docdex/internal/snapshot"
	"docdex/pkg/types"
)

// Orchestrator drives one full build: route files, diff against the cache,
// re-extract only what changed, merge plugin output, and publish the new
// snapshot and cache manifest. It owns the extraction context and every
// plugin for the duration of a build; neither is shared across builds.
type Orchestrator struct {
	cfg     *config.Config
	plugins []plugin.Plugin
	diff    *diff.Engine
	events  *Events
}

// NewOrchestrator wires an orchestrator for one project. The plugin slice
// order is registration order and determines processing order.
func NewOrchestrator(cfg *config.Config, plugins []plugin.Plugin, events *Events) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		plugins: plugins,
		diff:    diff.New(),
		events:  events,
	}
}

// Build runs the whole pipeline and returns the published snapshot. On any
// error nothing is written: the previous on-disk artifacts stay untouched.
func (o *Orchestrator) Build(ctx context.Context) (*types.Snapshot, error) {
	start := time.Now()
	o.events.buildStart()

	snap, err := o.build(ctx)
	if err != nil {
		o.events.buildError(err)
		return nil, err
	}

	o.events.buildComplete(len(snap.Symbols), time.Since(start))
	return snap, nil
}

func (o *Orchestrator) build(ctx context.Context) (*types.Snapshot, error) {
	names := make([]string, len(o.plugins))
	handlers := make([]router.Handler, len(o.plugins))
	for i, p := range o.plugins {
		names[i] = p.Name()
		handlers[i] = p
	}

	routes, err := router.Walk(o.cfg.Root, o.cfg.Include, o.cfg.Excludes(), handlers)
	if err != nil {
		return nil, fmt.Errorf("failed to walk project: %w", err)
	}

	fingerprint := o.cfg.Fingerprint()
	var prev *cache.Manifest
	if o.cfg.IncrementalEnabled() {
		prev = cache.Load(o.cfg.CachePath(), fingerprint, names)
	}
	next := cache.New(fingerprint, names)

	var records []types.SymbolRecord

	nativeRecords, err := o.buildNative(ctx, routes.Native, prev, next)
	if err != nil {
		return nil, err
	}
	records = append(records, nativeRecords...)

	pluginRecords, err := o.buildPlugins(ctx, routes, prev, next)
	if err != nil {
		return nil, err
	}
	records = append(records, pluginRecords...)

	types.SortRecords(records)
	snap := &types.Snapshot{
		Version:     types.SnapshotVersion,
		GeneratedAt: time.Now().UTC(),
		Root:        o.cfg.Root,
		Symbols:     records,
	}

	// The two artifacts are independent; write them concurrently.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return snapshot.Write(o.cfg.SnapshotPath(), snap)
	})
	if o.cfg.IncrementalEnabled() {
		g.Go(func() error {
			return cache.Write(o.cfg.CachePath(), next)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return snap, nil
}

// buildNative diffs the native file set, carries unchanged entries forward
// verbatim, and re-extracts only changed files. The extraction context is
// discarded and recreated every ExtractBatchSize files so the token.FileSet
// does not grow for the life of a long watch session.
func (o *Orchestrator) buildNative(ctx context.Context, paths []string, prev, next *cache.Manifest) ([]types.SymbolRecord, error) {
	d, err := o.diff.Diff(ctx, o.cfg.Root, paths, prev)
	if err != nil {
		return nil, fmt.Errorf("failed to diff native files: %w", err)
	}

	var records []types.SymbolRecord
	carryForward(d, prev, next, &records)

	ectx := extractor.NewContext()
	for i, rel := range d.Changed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 && i%o.cfg.ExtractBatchSize == 0 {
			ectx = extractor.NewContext()
		}
		o.events.progress(PhaseIndexing, i+1, len(d.Changed), rel)

		abs := filepath.Join(o.cfg.Root, filepath.FromSlash(rel))
		content, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", rel, err)
		}

		recs, err := ectx.Extract(abs, rel, content)
		if err != nil {
			return nil, err
		}

		records = append(records, recs...)
		entry, err := o.newEntry(abs, rel, content, recs, d)
		if err != nil {
			return nil, err
		}
		next.Files[rel] = entry
	}

	return records, nil
}

// buildPlugins initializes every plugin before any plugin file is touched,
// then processes each plugin's changed files in registration order. When
// several plugins contribute records for the same underlying file, the
// contributions merge into one cache entry.
func (o *Orchestrator) buildPlugins(ctx context.Context, routes *router.Routes, prev, next *cache.Manifest) ([]types.SymbolRecord, error) {
	if len(o.plugins) == 0 {
		return nil, nil
	}

	initCtx := plugin.InitContext{Root: o.cfg.Root}
	var initialized []plugin.Plugin
	defer func() { disposeAll(initialized) }()

	for _, p := range o.plugins {
		if err := p.Init(initCtx); err != nil {
			return nil, fmt.Errorf("failed to initialize plugin %q: %w", p.Name(), err)
		}
		initialized = append(initialized, p)
	}

	d, err := o.diff.Diff(ctx, o.cfg.Root, routes.Claimed, prev)
	if err != nil {
		return nil, fmt.Errorf("failed to diff plugin files: %w", err)
	}

	var records []types.SymbolRecord
	carryForward(d, prev, next, &records)

	changed := make(map[string]struct{}, len(d.Changed))
	for _, rel := range d.Changed {
		changed[rel] = struct{}{}
	}

	// Contributions per underlying file, merged across plugins.
	merged := make(map[string][]types.SymbolRecord)
	contents := make(map[string][]byte)

	ectx := extractor.NewContext()
	processed := 0
	for _, p := range o.plugins {
		phase := PluginPhase(p.Name())
		var files []string
		for _, rel := range routes.Buckets[p.Name()] {
			if _, ok := changed[rel]; ok {
				files = append(files, rel)
			}
		}

		for i, rel := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			o.events.progress(phase, i+1, len(files), rel)

			content, ok := contents[rel]
			if !ok {
				abs := filepath.Join(o.cfg.Root, filepath.FromSlash(rel))
				content, err = os.ReadFile(abs)
				if err != nil {
					return nil, fmt.Errorf("failed to read %s: %w", rel, err)
				}
				contents[rel] = content
			}

			recs, err := o.runPlugin(p, ectx, rel, content)
			if err != nil {
				return nil, err
			}
			merged[rel] = append(merged[rel], recs...)

			processed++
			if processed%o.cfg.ExtractBatchSize == 0 {
				ectx = extractor.NewContext()
				initialized, err = recycle(initialized, initCtx)
				if err != nil {
					return nil, err
				}
			}
		}
	}

	for _, rel := range d.Changed {
		recs := merged[rel]
		records = append(records, recs...)
		abs := filepath.Join(o.cfg.Root, filepath.FromSlash(rel))
		entry, err := o.newEntry(abs, rel, contents[rel], recs, d)
		if err != nil {
			return nil, err
		}
		next.Files[rel] = entry
	}

	return records, nil
}

// runPlugin invokes one plugin on one file through whichever extraction
// contract it implements. Translated source is extracted under a synthetic
// path and the resulting records are rekeyed to the original file.
func (o *Orchestrator) runPlugin(p plugin.Plugin, ectx *extractor.Context, rel string, content []byte) ([]types.SymbolRecord, error) {
	switch impl := p.(type) {
	case plugin.DirectExtractor:
		recs, err := impl.ExtractDirect(rel, content)
		if err != nil {
			return nil, fmt.Errorf("plugin %q failed on %s: %w", p.Name(), rel, err)
		}
		for i := range recs {
			o.normalizeRecord(&recs[i], rel)
		}
		return recs, nil

	case plugin.Translator:
		src, ok, err := impl.Translate(rel, content)
		if err != nil {
			return nil, fmt.Errorf("plugin %q failed on %s: %w", p.Name(), rel, err)
		}
		if !ok {
			return nil, nil
		}
		synthetic := rel + ".go"
		recs, err := ectx.Extract(synthetic, synthetic, []byte(src))
		if err != nil {
			return nil, fmt.Errorf("plugin %q produced unparsable source for %s: %w", p.Name(), rel, err)
		}
		for i := range recs {
			recs[i].Rekey(rel)
		}
		return recs, nil
	}

	// Unreachable for validated plugins.
	return nil, fmt.Errorf("%w: plugin %q implements no extraction contract", plugin.ErrInvalidPlugin, p.Name())
}

// normalizeRecord makes plugin-returned paths trustworthy identifier
// components: absolute paths become project-relative and the ID is
// regenerated from the normalized path.
func (o *Orchestrator) normalizeRecord(rec *types.SymbolRecord, rel string) {
	file := rec.File
	if file == "" {
		file = rel
	}
	if filepath.IsAbs(file) {
		if r, err := filepath.Rel(o.cfg.Root, file); err == nil {
			file = filepath.ToSlash(r)
		}
	}
	if file != rec.File || rec.ID == "" {
		rec.Rekey(file)
	}
}

// newEntry assembles the cache entry for a freshly processed file, reusing
// the fingerprint and modification time recorded by the diff when present.
func (o *Orchestrator) newEntry(abs, rel string, content []byte, recs []types.SymbolRecord, d *diff.Result) (cache.FileEntry, error) {
	fp, ok := d.Hashes[rel]
	if !ok {
		fp = cache.HashBytes(content)
	}

	mt, ok := d.ModTimes[rel]
	if !ok {
		info, err := os.Stat(abs)
		if err != nil {
			return cache.FileEntry{}, fmt.Errorf("failed to stat %s: %w", rel, err)
		}
		mt = info.ModTime().UnixNano()
	}

	return cache.FileEntry{Fingerprint: fp, Symbols: recs, ModTime: mt}, nil
}

// carryForward copies cached entries for unchanged files into the next
// manifest, refreshing only the stored timestamp when it drifted without a
// content change. Deleted files are never copied, so they vanish from both
// artifacts by omission.
func carryForward(d *diff.Result, prev, next *cache.Manifest, records *[]types.SymbolRecord) {
	for _, rel := range d.Unchanged {
		entry := prev.Files[rel]
		if mt, ok := d.ModTimes[rel]; ok && mt != entry.ModTime {
			entry.ModTime = mt
		}
		next.Files[rel] = entry
		*records = append(*records, entry.Symbols...)
	}
}

// recycle disposes and re-initializes every successfully initialized plugin
// to bound per-plugin internal caches on the same cadence as the extraction
// context. It returns the set that is still initialized, so a plugin whose
// re-init failed is not disposed a second time.
func recycle(initialized []plugin.Plugin, initCtx plugin.InitContext) ([]plugin.Plugin, error) {
	for i, p := range initialized {
		if err := p.Dispose(); err != nil {
			slog.Warn("plugin dispose failed during recycle", "plugin", p.Name(), "error", err)
		}
		if err := p.Init(initCtx); err != nil {
			remaining := append([]plugin.Plugin{}, initialized[:i]...)
			remaining = append(remaining, initialized[i+1:]...)
			return remaining, fmt.Errorf("failed to re-initialize plugin %q: %w", p.Name(), err)
		}
	}
	return initialized, nil
}

// disposeAll disposes plugins in initialization order. Dispose failures are
// logged, not propagated: disposal runs on both success and failure paths
// and must not mask the original error.
func disposeAll(initialized []plugin.Plugin) {
	for _, p := range initialized {
		if err := p.Dispose(); err != nil {
			slog.Warn("plugin dispose failed", "plugin", p.Name(), "error", err)
		}
	}
}

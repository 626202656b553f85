// Package build drives the end-to-end index build and the watch-mode
// scheduler.
//
// The orchestrator runs one complete build: route files, diff against the
// cache manifest, re-extract only what changed, merge plugin output, and
// publish the snapshot and manifest. The controller sits above it in watch
// mode, coalescing filesystem notifications into a minimal sequence of
// builds.
//
// # Basic Usage
//
//	cfg := config.Default("/path/to/project")
//	plugins, _ := plugin.Resolve(cfg.Plugins)
//
//	orch := build.NewOrchestrator(cfg, plugins, nil)
//	snap, err := orch.Build(ctx)
//
//	fmt.Printf("indexed %d symbols\n", len(snap.Symbols))
//
// # Build Pipeline
//
// Build executes the stages in order:
//
//  1. Route: one recursive walk splits files into native Go sources and
//     per-plugin buckets (a claimed file never reaches the native path)
//  2. Load cache: the manifest's invalidation chain runs cheapest check
//     first; any mismatch degrades to a full rebuild, never an error
//  3. Diff: classify every routed file as changed or unchanged against the
//     manifest (mtime fast path, hash fallback)
//  4. Extract: re-extract changed files sequentially, carrying unchanged
//     entries forward verbatim; deleted files vanish by omission
//  5. Publish: write snapshot and manifest concurrently, only after every
//     stage succeeded
//
// On any error nothing is written: the previously published artifacts stay
// exactly as they were.
//
// # Resource Recycling
//
// The extraction context (a token.FileSet) grows with every parsed file, so
// the orchestrator discards and recreates it every ExtractBatchSize files.
// Plugins are recycled on the same cadence:
//
//	if processed%cfg.ExtractBatchSize == 0 {
//	    ectx = extractor.NewContext()
//	    initialized, err = recycle(initialized, initCtx)
//	}
//
// Every plugin is initialized before the first plugin file is touched, and
// every successfully initialized plugin is disposed in initialization order
// whether the build succeeds or fails.
//
// # Progress Events
//
// Observers attach through Events; all hooks are fire-and-forget:
//
//	events := &build.Events{
//	    OnProgress: func(phase string, current, total int, file string) {
//	        fmt.Printf("%s %d/%d %s\n", phase, current, total, file)
//	    },
//	    OnBuildComplete: func(symbols int, elapsed time.Duration) {
//	        fmt.Printf("done: %d symbols in %v\n", symbols, elapsed)
//	    },
//	}
//
// Native extraction reports under the "indexing" phase; each plugin reports
// under "plugin:" + its name, with its own 1..N sequence.
//
// # Watch Scheduling
//
// The controller debounces bursts of change notifications and guarantees
// single-flight execution:
//
//	c := build.NewController(300*time.Millisecond, buildFn, onError)
//	c.Schedule() // restart the debounce timer while idle
//	c.Schedule() // no extra build: the burst coalesces
//
// A Schedule arriving mid-build queues exactly one follow-up build, no
// matter how many notifications arrive before the current build finishes.
// A failing or panicking build is reported through the error callback and
// returns the state machine to idle; the watch loop never stops. Stop
// cancels a pending debounce timer, and WaitForIdle blocks until no build
// is running or pending.
package build

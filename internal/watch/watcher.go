package watch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Op classifies a filesystem change.
type Op string

const (
	OpAdd    Op = "add"
	OpChange Op = "change"
	OpRemove Op = "remove"
)

// Event is one filesystem change, with Path relative to the watched root.
type Event struct {
	Path string
	Op   Op
}

// Watcher wraps fsnotify with recursive directory registration and an
// ignore predicate. Events for ignored paths never reach the handler.
type Watcher struct {
	root    string
	ignore  func(rel string) bool
	onEvent func(Event)

	fsw     *fsnotify.Watcher
	ready   chan struct{}
	done    chan struct{}
	started bool
}

// New creates a watcher rooted at root. ignore may be nil; onEvent is
// required and is called from the watch goroutine.
func New(root string, ignore func(rel string) bool, onEvent func(Event)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if ignore == nil {
		ignore = func(string) bool { return false }
	}
	return &Watcher{
		root:    root,
		ignore:  ignore,
		onEvent: onEvent,
		fsw:     fsw,
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Start registers every non-ignored directory under the root, closes the
// Ready channel, and begins dispatching events until Close is called.
func (w *Watcher) Start() error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel != "." && w.ignore(rel+"/") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to register watches: %w", err)
	}

	close(w.ready)
	w.started = true
	go w.loop()
	return nil
}

// Ready is closed when the initial scan is complete.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Close stops event dispatch and releases the underlying watcher. It is
// safe to call when Start failed or was never called: the dispatch
// goroutine is only awaited if it was launched.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	if w.started {
		<-w.done
	}
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("filesystem watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if w.ignore(rel) {
		return
	}

	// New directories must be registered before their contents can be seen.
	if ev.Op.Has(fsnotify.Create) {
		if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
			if !w.ignore(rel + "/") {
				if addErr := w.fsw.Add(ev.Name); addErr != nil {
					slog.Warn("failed to watch new directory", "path", rel, "error", addErr)
				}
			}
			return
		}
	}

	var op Op
	switch {
	case ev.Op.Has(fsnotify.Create):
		op = OpAdd
	case ev.Op.Has(fsnotify.Write):
		op = OpChange
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		op = OpRemove
	default:
		return
	}

	w.onEvent(Event{Path: rel, Op: op})
}

// NewIgnore builds the engine's ignore predicate from exclusion patterns
// and plugin-claimed extensions. Paths are matched slash-separated and
// relative to the root; directory paths carry a trailing slash.
func NewIgnore(excludes, claimedExts []string) func(rel string) bool {
	exts := make(map[string]struct{}, len(claimedExts))
	for _, ext := range claimedExts {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	return func(rel string) bool {
		if !strings.HasSuffix(rel, "/") {
			if _, ok := exts[strings.ToLower(filepath.Ext(rel))]; ok {
				return true
			}
		}
		for _, pattern := range excludes {
			if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
				return true
			}
		}
		return false
	}
}

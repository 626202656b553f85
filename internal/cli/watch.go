package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docdex/internal/build"
	"docdex/internal/plugin"
	"docdex/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a project and rebuild the index on change",
	Long: `Watch the project tree and keep the documentation index current.
Bursts of changes (bulk saves, branch switches) coalesce into a single
rebuild after a quiet period.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

// rebuildFunc returns the closure the controller runs for every build. The
// project configuration is resolved from scratch each time, so edits to the
// project file between builds take effect and the manifest is stamped with
// the live fingerprint.
func rebuildFunc(ctx context.Context, args []string, events *build.Events) func() error {
	return func() error {
		cfg, err := resolveConfig(args)
		if err != nil {
			return err
		}
		plugins, err := plugin.Resolve(cfg.Plugins)
		if err != nil {
			return err
		}
		_, err = build.NewOrchestrator(cfg, plugins, events).Build(ctx)
		return err
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}

	plugins, err := plugin.Resolve(cfg.Plugins)
	if err != nil {
		return err
	}

	events := &build.Events{
		OnBuildComplete: func(symbolCount int, elapsed time.Duration) {
			slog.Info("index updated", "symbols", symbolCount, "elapsed", elapsed.Round(time.Millisecond))
		},
	}

	controller := build.NewController(cfg.Debounce(), rebuildFunc(cmd.Context(), args, events), func(err error) {
		slog.Error("build failed", "error", err)
	})

	var claimed []string
	for _, p := range plugins {
		claimed = append(claimed, p.Extensions()...)
	}
	ignore := watch.NewIgnore(cfg.Excludes(), claimed)

	watcher, err := watch.New(cfg.Root, ignore, func(ev watch.Event) {
		slog.Debug("file event", "op", ev.Op, "path", ev.Path)
		controller.Schedule()
	})
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Start(); err != nil {
		return err
	}

	<-watcher.Ready()
	fmt.Fprintf(os.Stderr, "Watching %s\n", cfg.Root)

	// Build once up front so the index exists before the first change.
	controller.Schedule()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	controller.Stop()
	controller.WaitForIdle()
	return nil
}

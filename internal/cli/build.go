package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docdex/internal/build"
	"docdex/internal/plugin"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Build or refresh the documentation index",
	Long: `Build the documentation index for a project. With an existing cache
manifest only changed files are re-extracted.

Examples:
  docdex build .                 # Index the current directory
  docdex build /path/to/project  # Index a specific project`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Bool("full", false, "Ignore the cache manifest and re-extract every file")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(args)
	if err != nil {
		return err
	}

	if full, _ := cmd.Flags().GetBool("full"); full {
		_ = os.Remove(cfg.CachePath())
	}

	plugins, err := plugin.Resolve(cfg.Plugins)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	barPhase := ""
	events := &build.Events{
		OnProgress: func(phase string, current, total int, file string) {
			if bar == nil || phase != barPhase {
				barPhase = phase
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription(phase),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(current)
		},
	}

	orch := build.NewOrchestrator(cfg, plugins, events)
	start := time.Now()
	snap, err := orch.Build(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Indexed %d symbols in %s (%s)\n",
		len(snap.Symbols), time.Since(start).Round(time.Millisecond), cfg.SnapshotPath())
	return nil
}

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"docdex/internal/config"
)

var (
	// Version is stamped at build time.
	Version = "dev"
)

var rootCmd = &cobra.Command{
	Use:          "docdex",
	Short:        "Incremental documentation index for Go projects",
	Long:         `docdex maintains a JSON documentation index (one record per source symbol) over a Go project, rebuilding only what filesystem changes invalidated.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}
		// Stdout stays clean for command output and the MCP protocol.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the project file (default: docdex.yaml in the project root)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging")

	viper.SetEnvPrefix("DOCDEX")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

// resolveConfig loads the project configuration for the given root argument:
// an explicit --config path wins, then docdex.yaml in the root, then
// built-in defaults.
func resolveConfig(args []string) (*config.Config, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid project root: %w", err)
	}

	if cfgPath := viper.GetString("config"); cfgPath != "" {
		return config.Load(cfgPath)
	}

	cfgPath := filepath.Join(root, config.DefaultFileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return config.Load(cfgPath)
	}
	return config.Default(root), nil
}

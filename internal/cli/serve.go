package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"docdex/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the index engine over MCP on stdio",
	Long: `Start an MCP server exposing build_index, search_symbols, and
get_status tools. Stdout carries the protocol; logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	server := mcp.NewServer()
	slog.Info("docdex MCP server ready, listening on stdio", "version", Version)
	return server.Serve(cmd.Context())
}

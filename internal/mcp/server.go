package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/server"

	"docdex/internal/config"
	"docdex/internal/searcher"
)

const (
	// ServerName is the MCP server name.
	ServerName = "docdex"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with per-project searchers.
type Server struct {
	mcp *server.MCPServer

	mu        sync.Mutex
	searchers map[string]*searcher.Searcher
}

// NewServer creates a new MCP server instance and registers the tools.
func NewServer() *Server {
	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion),
		searchers: make(map[string]*searcher.Searcher),
	}

	s.mcp.AddTool(buildIndexTool(), s.handleBuildIndex)
	s.mcp.AddTool(searchSymbolsTool(), s.handleSearchSymbols)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return s
}

// Serve starts the MCP server on stdio and blocks until stdin closes or the
// context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// projectConfig resolves the configuration for a project root: the
// docdex.yaml in the root when present, built-in defaults otherwise.
func projectConfig(root string) (*config.Config, error) {
	cfgPath := filepath.Join(root, config.DefaultFileName)
	if _, err := os.Stat(cfgPath); err == nil {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("invalid project config: %w", err)
		}
		return cfg, nil
	}
	return config.Default(root), nil
}

// searcherFor returns (creating on first use) the searcher for a project's
// snapshot, so its query cache survives across tool calls.
func (s *Server) searcherFor(snapshotPath string) *searcher.Searcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sr, ok := s.searchers[snapshotPath]; ok {
		return sr
	}
	sr := searcher.New(snapshotPath)
	s.searchers[snapshotPath] = sr
	return sr
}

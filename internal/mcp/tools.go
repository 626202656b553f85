package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"docdex/internal/build"
	"docdex/internal/plugin"
	"docdex/internal/searcher"
	"docdex/internal/snapshot"
	"docdex/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNotIndexed    = -32001 // Project has no published index yet
	ErrorCodeBuildFailed   = -32002 // Build aborted; prior artifacts untouched
)

// handleBuildIndex handles the build_index tool invocation.
func (s *Server) handleBuildIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	root, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	cfg, err := projectConfig(root)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid project configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if full, _ := args["full_rebuild"].(bool); full {
		// Dropping the manifest forces every file through extraction.
		_ = os.Remove(cfg.CachePath())
	}

	plugins, err := plugin.Resolve(cfg.Plugins)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "plugin resolution failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	orch := build.NewOrchestrator(cfg, plugins, nil)
	snap, err := orch.Build(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeBuildFailed, "build failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"built":        true,
		"symbol_count": len(snap.Symbols),
		"generated_at": snap.GeneratedAt,
		"snapshot":     cfg.SnapshotPath(),
	})), nil
}

// handleSearchSymbols handles the search_symbols tool invocation.
func (s *Server) handleSearchSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	root, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	query, _ := args["query"].(string)
	if query == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", searcher.DefaultLimit)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	cfg, err := projectConfig(root)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid project configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	kind, _ := args["kind"].(string)
	file, _ := args["file"].(string)
	exportedOnly, _ := args["exported_only"].(bool)

	resp, err := s.searcherFor(cfg.SnapshotPath()).Search(searcher.Request{
		Query:        query,
		Kind:         types.SymbolKind(kind),
		File:         file,
		ExportedOnly: exportedOnly,
		Limit:        limit,
	})
	if err != nil {
		return nil, snapshotError(err)
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, rec := range resp.Results {
		results = append(results, map[string]interface{}{
			"id":        rec.ID,
			"name":      rec.Name,
			"kind":      rec.Kind,
			"file":      rec.File,
			"line":      rec.Line,
			"signature": rec.Signature,
			"doc":       rec.Doc,
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"results":     results,
		"total":       resp.Total,
		"duration_ms": resp.Duration.Milliseconds(),
		"cache_hit":   resp.CacheHit,
	})), nil
}

// handleGetStatus handles the get_status tool invocation.
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	root, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	cfg, err := projectConfig(root)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid project configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	snap, err := loadStatus(cfg.SnapshotPath())
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"indexed": false,
		})), nil
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"indexed":      true,
		"version":      snap.Version,
		"generated_at": snap.GeneratedAt,
		"root":         snap.Root,
		"symbol_count": len(snap.Symbols),
	})), nil
}

func loadStatus(path string) (*types.Snapshot, error) {
	snap, err := snapshot.Load(path)
	if err != nil {
		if errors.Is(err, types.ErrSnapshotNotFound) {
			return nil, nil
		}
		return nil, snapshotError(err)
	}
	return snap, nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error.
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// snapshotError maps the snapshot reader's taxonomy onto MCP errors so a
// caller can tell "not built yet" from "corrupt" from "wrong schema".
func snapshotError(err error) error {
	switch {
	case errors.Is(err, types.ErrSnapshotNotFound):
		return newMCPError(ErrorCodeNotIndexed, "project is not indexed yet", nil)
	case errors.Is(err, types.ErrSnapshotMalformed):
		return newMCPError(ErrorCodeInternalError, "snapshot is malformed", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, types.ErrSnapshotVersion):
		return newMCPError(ErrorCodeInternalError, "snapshot schema version mismatch; rebuild the index", map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// requirePath extracts and validates the mandatory path argument.
func requirePath(args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if !filepath.IsAbs(path) {
		return "", newMCPError(ErrorCodeInvalidParams, "path must be absolute", map[string]interface{}{
			"param": "path",
		})
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", newMCPError(ErrorCodeInvalidParams, "path is not a readable directory", map[string]interface{}{
			"param": "path",
		})
	}
	return path, nil
}

// formatJSON formats a map as indented JSON.
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value.
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docdex/pkg/types"
)

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "tool results are text content")

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func fixtureProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	src := "package demo\n\n// Greet says hello.\nfunc Greet() {}\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "demo.go"), []byte(src), 0o644))
	return root
}

func TestBuildSearchStatusRoundTrip(t *testing.T) {
	s := NewServer()
	root := fixtureProject(t)
	ctx := context.Background()

	// Before any build the project reports unindexed.
	result, err := s.handleGetStatus(ctx, toolRequest("get_status", map[string]interface{}{"path": root}))
	require.NoError(t, err)
	assert.Equal(t, false, resultJSON(t, result)["indexed"])

	result, err = s.handleBuildIndex(ctx, toolRequest("build_index", map[string]interface{}{"path": root}))
	require.NoError(t, err)
	built := resultJSON(t, result)
	assert.Equal(t, true, built["built"])
	assert.Equal(t, float64(1), built["symbol_count"])

	result, err = s.handleSearchSymbols(ctx, toolRequest("search_symbols", map[string]interface{}{
		"path":  root,
		"query": "greet",
	}))
	require.NoError(t, err)
	found := resultJSON(t, result)
	assert.Equal(t, float64(1), found["total"])
	results := found["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, "demo.go#Greet:function", first["id"])

	result, err = s.handleGetStatus(ctx, toolRequest("get_status", map[string]interface{}{"path": root}))
	require.NoError(t, err)
	status := resultJSON(t, result)
	assert.Equal(t, true, status["indexed"])
	assert.Equal(t, float64(1), status["symbol_count"])
}

func TestSearchBeforeBuildReturnsNotIndexed(t *testing.T) {
	s := NewServer()
	root := fixtureProject(t)

	_, err := s.handleSearchSymbols(context.Background(), toolRequest("search_symbols", map[string]interface{}{
		"path":  root,
		"query": "greet",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeNotIndexed, mcpErr.Code)
}

func TestRequirePath(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name string
		args map[string]interface{}
		ok   bool
	}{
		{"valid", map[string]interface{}{"path": root}, true},
		{"missing", map[string]interface{}{}, false},
		{"empty", map[string]interface{}{"path": ""}, false},
		{"relative", map[string]interface{}{"path": "some/dir"}, false},
		{"nonexistent", map[string]interface{}{"path": filepath.Join(root, "missing")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := requirePath(tt.args)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, root, got)
				return
			}
			require.Error(t, err)
			var mcpErr *MCPError
			require.ErrorAs(t, err, &mcpErr)
			assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
		})
	}
}

func TestSearchSymbolsValidation(t *testing.T) {
	s := NewServer()
	root := fixtureProject(t)
	ctx := context.Background()

	_, err := s.handleSearchSymbols(ctx, toolRequest("search_symbols", map[string]interface{}{
		"path": root,
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query")

	_, err = s.handleSearchSymbols(ctx, toolRequest("search_symbols", map[string]interface{}{
		"path":  root,
		"query": "greet",
		"limit": float64(500),
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestSnapshotErrorTaxonomy(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{types.ErrSnapshotNotFound, ErrorCodeNotIndexed},
		{types.ErrSnapshotMalformed, ErrorCodeInternalError},
		{types.ErrSnapshotVersion, ErrorCodeInternalError},
		{errors.New("disk on fire"), ErrorCodeInternalError},
	}
	for _, tt := range tests {
		var mcpErr *MCPError
		require.ErrorAs(t, snapshotError(tt.err), &mcpErr)
		assert.Equal(t, tt.code, mcpErr.Code, "err=%v", tt.err)
	}
}

func TestServeHonorsContextCancellation(t *testing.T) {
	s := NewServer()
	ctx, cancel := context.WithCancel(context.Background())

	// A pipe that never delivers input keeps the read pending, so only
	// cancellation can end the serve loop.
	r, w := io.Pipe()
	defer w.Close()

	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, r, io.Discard) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after context cancellation")
	}
}

func TestGetIntDefault(t *testing.T) {
	args := map[string]interface{}{
		"from_json": float64(7),
		"native":    3,
		"wrong":     "nope",
	}
	assert.Equal(t, 7, getIntDefault(args, "from_json", 20))
	assert.Equal(t, 3, getIntDefault(args, "native", 20))
	assert.Equal(t, 20, getIntDefault(args, "wrong", 20))
	assert.Equal(t, 20, getIntDefault(args, "absent", 20))
}

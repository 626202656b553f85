package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// buildIndexTool returns the tool definition for build_index.
func buildIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "build_index",
		Description: "Build or incrementally refresh the documentation index for a Go project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root",
				},
				"full_rebuild": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, ignore the cache manifest and re-extract every file",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchSymbolsTool returns the tool definition for search_symbols.
func searchSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_symbols",
		Description: "Search the documentation index by symbol name, kind, or file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to an indexed project root",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Symbol name query (exact, prefix, or substring)",
				},
				"kind": map[string]interface{}{
					"type":        "string",
					"description": "Filter by symbol kind",
					"enum":        []string{"function", "method", "struct", "interface", "type", "const", "var", "field", "heading"},
				},
				"file": map[string]interface{}{
					"type":        "string",
					"description": "Filter by relative file path prefix (e.g. 'internal/')",
				},
				"exported_only": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, return only exported symbols",
					"default":     false,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"path", "query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status.
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report whether a project has a published index and its generation metadata",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root",
				},
			},
			Required: []string{"path"},
		},
	}
}

// Package mcp exposes the build engine over the Model Context Protocol on
// stdio. The tools are thin shells: they resolve a project, call into the
// orchestrator or searcher, and render results.
package mcp

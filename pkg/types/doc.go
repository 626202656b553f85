// Package types defines the symbol record and snapshot shapes shared by the
// build engine, its plugins, and the CLI/MCP front ends.
package types

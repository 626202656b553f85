// Package cli implements the docdex command line front end. Commands are
// thin shells over the build orchestrator, controller, and MCP server.
package cli

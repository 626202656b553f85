// Package searcher answers symbol queries against the published index
// snapshot. Results are cached per snapshot generation so repeated queries
// in watch or MCP sessions do not re-rank the whole record set.
package searcher

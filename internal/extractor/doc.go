// Package extractor produces documentation symbol records from Go source
// files via AST parsing. A Context accumulates parser state (the shared
// token.FileSet) and is periodically discarded and recreated by the build
// orchestrator so long runs do not grow without bound.
package extractor

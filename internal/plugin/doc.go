// Package plugin defines the extension-handler contract for non-Go files
// and the registry that resolves configured plugin names. A plugin claims
// file extensions and either returns fully-formed symbol records
// (DirectExtractor) or returns Go source text that is fed back through the
// symbol extractor under a synthetic path (Translator).
package plugin

package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the project file docdex looks for in the project root.
const DefaultFileName = "docdex.yaml"

// DefaultOutDir holds the snapshot and cache artifacts, relative to the root.
const DefaultOutDir = ".docdex"

// Config is the normalized project configuration. A malformed project file
// is fatal: no build starts and nothing is written.
type Config struct {
	// Root is the project root. Defaults to the directory containing the
	// config file.
	Root string `yaml:"root"`

	// Include narrows the walked file set (doublestar globs, relative to
	// Root). Empty means every file under Root.
	Include []string `yaml:"include"`

	// Exclude patterns are skipped entirely and never reach extraction.
	Exclude []string `yaml:"exclude"`

	// OutDir receives index.json and cache.json. Always excluded from the
	// walk so the engine never indexes its own output.
	OutDir string `yaml:"out_dir"`

	// Incremental enables the cache manifest. When false every build is a
	// full rebuild and no cache file is written.
	Incremental *bool `yaml:"incremental"`

	// Plugins names the extension handlers to activate, in registration
	// order. Unknown names fail at plugin-resolution time, before any build.
	Plugins []string `yaml:"plugins"`

	// DebounceMs is the watch-mode quiet period in milliseconds before a
	// rebuild fires.
	DebounceMs int `yaml:"debounce_ms"`

	// ExtractBatchSize is how many changed files are re-extracted before the
	// extraction context (and every plugin) is recycled to bound memory.
	ExtractBatchSize int `yaml:"extract_batch_size"`

	// path and raw bytes of the loaded file, kept for fingerprinting.
	path string
	raw  []byte
}

// defaultExcludes are always in effect in addition to Config.Exclude.
var defaultExcludes = []string{
	"vendor/**",
	"testdata/**",
	"**/testdata/**",
	"**/*_test.go",
	"**/.*",
	"**/.*/**",
}

// Load reads and validates a project file. The raw bytes are retained so
// Fingerprint reflects exactly what was parsed.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project config: %w", err)
	}

	cfg := &Config{path: path, raw: raw}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse project config %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if cfg.Root == "" {
		cfg.Root = filepath.Dir(abs)
	} else if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(abs), cfg.Root)
	}
	cfg.applyDefaults()

	return cfg, nil
}

// Default returns the configuration used when no project file exists:
// index everything under root with the standard exclusions.
func Default(root string) *Config {
	abs, err := filepath.Abs(root)
	if err == nil {
		root = abs
	}
	cfg := &Config{Root: root}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.OutDir == "" {
		c.OutDir = DefaultOutDir
	}
	if c.Incremental == nil {
		t := true
		c.Incremental = &t
	}
	if c.DebounceMs <= 0 {
		c.DebounceMs = 300
	}
	if c.ExtractBatchSize <= 0 {
		c.ExtractBatchSize = 50
	}
}

// Debounce returns the watch-mode debounce window.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// IncrementalEnabled reports whether a cache manifest should be read/written.
func (c *Config) IncrementalEnabled() bool {
	return c.Incremental == nil || *c.Incremental
}

// Excludes returns the effective exclusion patterns: defaults, the output
// directory, and anything the project file added.
func (c *Config) Excludes() []string {
	out := make([]string, 0, len(defaultExcludes)+len(c.Exclude)+2)
	out = append(out, defaultExcludes...)
	out = append(out, filepath.ToSlash(c.OutDir)+"/**", filepath.ToSlash(c.OutDir))
	out = append(out, c.Exclude...)
	return out
}

// SnapshotPath is where the published index lives.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.Root, c.OutDir, "index.json")
}

// CachePath is where the cache manifest lives.
func (c *Config) CachePath() string {
	return filepath.Join(c.Root, c.OutDir, "cache.json")
}

// Fingerprint hashes the raw project file bytes. A configuration change
// therefore invalidates the whole cache even when no source file changed.
// Returns the empty string when no project file was loaded.
func (c *Config) Fingerprint() string {
	if len(c.raw) == 0 {
		return ""
	}
	sum := sha256.Sum256(c.raw)
	return hex.EncodeToString(sum[:])
}

package plugin

import (
	"errors"
	"fmt"
	"sort"

	"docdex/pkg/types"
)

// Plugin is the lifecycle contract every extension handler implements. A
// plugin must additionally implement exactly one of DirectExtractor or
// Translator; shape validation rejects anything else before a build starts.
type Plugin interface {
	// Name identifies the plugin in configuration and in the cache manifest.
	Name() string
	// Extensions lists the claimed file extensions (leading dot, matched
	// case-insensitively).
	Extensions() []string
	// Init prepares the plugin. It is called before any file is processed
	// and again whenever the orchestrator recycles plugins at a batch
	// boundary.
	Init(ctx InitContext) error
	// Dispose releases plugin resources. Only plugins whose Init succeeded
	// are disposed, in initialization order.
	Dispose() error
}

// InitContext carries what a plugin may need during a build.
type InitContext struct {
	// Root is the absolute project root.
	Root string
}

// DirectExtractor produces symbol records straight from file content.
type DirectExtractor interface {
	ExtractDirect(relPath string, content []byte) ([]types.SymbolRecord, error)
}

// Translator turns file content into Go source text for the symbol
// extractor. Returning ok=false means the file yields nothing.
type Translator interface {
	Translate(relPath string, content []byte) (src string, ok bool, err error)
}

// Validation errors are fatal at plugin-resolution time, before any build.
var (
	ErrUnknownPlugin = errors.New("unknown plugin")
	ErrInvalidPlugin = errors.New("invalid plugin")
)

// Validate checks the plugin shape: a name, at least one claimed extension,
// and exactly one extraction contract.
func Validate(p Plugin) error {
	if p.Name() == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPlugin)
	}
	if len(p.Extensions()) == 0 {
		return fmt.Errorf("%w: plugin %q claims no extensions", ErrInvalidPlugin, p.Name())
	}

	_, direct := p.(DirectExtractor)
	_, translate := p.(Translator)
	switch {
	case direct && translate:
		return fmt.Errorf("%w: plugin %q implements both extraction contracts", ErrInvalidPlugin, p.Name())
	case !direct && !translate:
		return fmt.Errorf("%w: plugin %q implements no extraction contract", ErrInvalidPlugin, p.Name())
	}
	return nil
}

// Factory constructs a fresh plugin instance.
type Factory func() Plugin

var builtins = map[string]Factory{}

// Register adds a plugin factory to the registry. Called from init
// functions of built-in plugins; front ends may add their own before
// resolving.
func Register(name string, f Factory) {
	builtins[name] = f
}

// Names returns the registered plugin names, sorted.
func Names() []string {
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve instantiates and validates the named plugins in configuration
// order. An unknown name or a shape failure aborts before any build begins.
func Resolve(names []string) ([]Plugin, error) {
	plugins := make([]Plugin, 0, len(names))
	for _, name := range names {
		f, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, name)
		}
		p := f()
		if err := Validate(p); err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

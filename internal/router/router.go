package router

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Handler is the slice of the plugin contract the router needs: a name to
// bucket under and the extensions it claims.
type Handler interface {
	Name() string
	Extensions() []string
}

// Routes is the outcome of one walk. All paths are slash-separated,
// relative to the root, and sorted. A file may appear in several buckets
// when handlers claim overlapping extensions, but a claimed file never
// appears in Native, so nothing is processed twice by the native path.
type Routes struct {
	Native  []string
	Buckets map[string][]string
	Claimed []string
}

// Walk performs the single recursive walk shared by all handlers. Files
// matching any exclusion pattern are skipped entirely; when include
// patterns are given, a file must match one of them to be considered.
func Walk(root string, include, exclude []string, handlers []Handler) (*Routes, error) {
	claimed := make(map[string][]string) // lowercase ext -> handler names in registration order
	for _, h := range handlers {
		for _, ext := range h.Extensions() {
			ext = strings.ToLower(ext)
			claimed[ext] = append(claimed[ext], h.Name())
		}
	}

	routes := &Routes{Buckets: make(map[string][]string)}
	claimedSet := make(map[string]struct{})

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if matchesAny(exclude, rel) || matchesAny(exclude, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAny(exclude, rel) {
			return nil
		}
		if len(include) > 0 && !matchesAny(include, rel) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(rel))
		if names, ok := claimed[ext]; ok {
			for _, name := range names {
				routes.Buckets[name] = append(routes.Buckets[name], rel)
			}
			if _, dup := claimedSet[rel]; !dup {
				claimedSet[rel] = struct{}{}
				routes.Claimed = append(routes.Claimed, rel)
			}
			return nil
		}

		if ext == ".go" {
			routes.Native = append(routes.Native, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(routes.Native)
	sort.Strings(routes.Claimed)
	for name := range routes.Buckets {
		sort.Strings(routes.Buckets[name])
	}
	return routes, nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

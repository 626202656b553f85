package searcher

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"docdex/internal/snapshot"
	"docdex/pkg/types"
)

// DefaultLimit caps results when a request does not set one.
const DefaultLimit = 20

// Request describes one symbol query. Empty filter fields match everything.
type Request struct {
	Query        string
	Kind         types.SymbolKind
	File         string // prefix match on the record's relative path
	ExportedOnly bool
	Limit        int
}

// Response carries ranked results plus query metadata.
type Response struct {
	Results  []types.SymbolRecord
	Total    int
	Duration time.Duration
	CacheHit bool
}

// Searcher serves queries over the current snapshot file. Loading is lazy:
// every search re-reads the snapshot's generation and invalidates cached
// responses when a new build has been published.
type Searcher struct {
	path  string
	cache *lru.Cache[[32]byte, *Response]
}

// New creates a Searcher over the snapshot at path.
func New(path string) *Searcher {
	c, err := lru.New[[32]byte, *Response](512)
	if err != nil {
		// Only possible with a non-positive size.
		panic(fmt.Sprintf("failed to create query cache: %v", err))
	}
	return &Searcher{path: path, cache: c}
}

// Search loads the snapshot and returns matching records ranked by match
// quality (exact name, name prefix, substring, then doc text), with ID as
// the tie-break so output is deterministic.
func (s *Searcher) Search(req Request) (*Response, error) {
	start := time.Now()

	snap, err := snapshot.Load(s.path)
	if err != nil {
		return nil, err
	}

	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}

	key := cacheKey(req, snap.GeneratedAt)
	if cached, ok := s.cache.Get(key); ok {
		hit := *cached
		hit.CacheHit = true
		hit.Duration = time.Since(start)
		return &hit, nil
	}

	type scored struct {
		rec  types.SymbolRecord
		rank int
	}

	query := strings.ToLower(req.Query)
	var matches []scored
	for _, rec := range snap.Symbols {
		if req.Kind != "" && rec.Kind != req.Kind {
			continue
		}
		if req.ExportedOnly && !rec.Exported {
			continue
		}
		if req.File != "" && !strings.HasPrefix(rec.File, req.File) {
			continue
		}

		rank := matchRank(&rec, query)
		if rank < 0 {
			continue
		}
		matches = append(matches, scored{rec: rec, rank: rank})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].rec.ID < matches[j].rec.ID
	})

	resp := &Response{Total: len(matches)}
	for i := 0; i < len(matches) && i < req.Limit; i++ {
		resp.Results = append(resp.Results, matches[i].rec)
	}

	s.cache.Add(key, resp)

	out := *resp
	out.Duration = time.Since(start)
	return &out, nil
}

// matchRank orders match quality; -1 means no match. An empty query matches
// everything at the weakest rank, which lets callers browse by filter only.
func matchRank(rec *types.SymbolRecord, query string) int {
	if query == "" {
		return 3
	}
	name := strings.ToLower(rec.Name)
	switch {
	case name == query:
		return 0
	case strings.HasPrefix(name, query):
		return 1
	case strings.Contains(name, query):
		return 2
	case strings.Contains(strings.ToLower(rec.Doc), query):
		return 3
	default:
		return -1
	}
}

func cacheKey(req Request, generation time.Time) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%t|%d|%d",
		req.Query, req.Kind, req.File, req.ExportedOnly, req.Limit, generation.UnixNano())))
}

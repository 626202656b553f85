package searcher

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docdex/internal/snapshot"
	"docdex/pkg/types"
)

func mkRecord(file, receiver, name string, kind types.SymbolKind, doc string, exported bool) types.SymbolRecord {
	return types.SymbolRecord{
		ID:       types.SymbolID(file, receiver, name, kind),
		Name:     name,
		Kind:     kind,
		File:     file,
		Receiver: receiver,
		Doc:      doc,
		Line:     1,
		Exported: exported,
	}
}

func writeSnapshot(t *testing.T, path string, generatedAt time.Time, records []types.SymbolRecord) {
	t.Helper()
	types.SortRecords(records)
	snap := &types.Snapshot{
		Version:     types.SnapshotVersion,
		GeneratedAt: generatedAt,
		Root:        "/project",
		Symbols:     records,
	}
	require.NoError(t, snapshot.Write(path, snap))
}

func testSearcher(t *testing.T) (*Searcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.json")
	writeSnapshot(t, path, time.Now().UTC(), []types.SymbolRecord{
		mkRecord("store.go", "", "Get", types.KindFunction, "Get returns a value.", true),
		mkRecord("store.go", "", "GetAll", types.KindFunction, "GetAll returns everything.", true),
		mkRecord("store.go", "Store", "get", types.KindMethod, "get is the internal lookup.", false),
		mkRecord("util.go", "", "Widget", types.KindStruct, "Widget can get things done.", true),
		mkRecord("docs/guide.md", "", "Getting Started", types.KindHeading, "", false),
	})
	return New(path), path
}

func TestSearchRanking(t *testing.T) {
	s, _ := testSearcher(t)

	resp, err := s.Search(Request{Query: "get"})
	require.NoError(t, err)
	require.Equal(t, 5, resp.Total)

	names := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		names[i] = r.Name
	}
	// Exact matches first, then prefix matches in ID order, then doc-only.
	assert.Equal(t, []string{"Get", "get", "Getting Started", "GetAll", "Widget"}, names)
}

func TestSearchFilters(t *testing.T) {
	s, _ := testSearcher(t)

	resp, err := s.Search(Request{Query: "get", Kind: types.KindFunction})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	resp, err = s.Search(Request{Query: "get", ExportedOnly: true})
	require.NoError(t, err)
	for _, r := range resp.Results {
		assert.True(t, r.Exported)
	}

	resp, err = s.Search(Request{Query: "get", File: "docs/"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Getting Started", resp.Results[0].Name)
}

func TestSearchEmptyQueryBrowsesByFilter(t *testing.T) {
	s, _ := testSearcher(t)

	resp, err := s.Search(Request{Kind: types.KindHeading})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Getting Started", resp.Results[0].Name)
}

func TestSearchLimit(t *testing.T) {
	s, _ := testSearcher(t)

	resp, err := s.Search(Request{Query: "get", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Total, "Total counts all matches, not the returned page")
	assert.Len(t, resp.Results, 2)
}

func TestSearchCacheHit(t *testing.T) {
	s, _ := testSearcher(t)

	first, err := s.Search(Request{Query: "get"})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := s.Search(Request{Query: "get"})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Results, second.Results)
}

func TestSearchCacheInvalidatedByNewGeneration(t *testing.T) {
	s, path := testSearcher(t)

	_, err := s.Search(Request{Query: "widget"})
	require.NoError(t, err)

	// A rebuild publishes a new generation; the old cached answer must not
	// serve the new snapshot's content.
	writeSnapshot(t, path, time.Now().UTC().Add(time.Second), []types.SymbolRecord{
		mkRecord("util.go", "", "Widget", types.KindStruct, "Widget, renamed docs.", true),
		mkRecord("util.go", "", "WidgetPool", types.KindStruct, "WidgetPool pools widgets.", true),
	})

	resp, err := s.Search(Request{Query: "widget"})
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, 2, resp.Total)
}

func TestSearchMissingSnapshot(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "index.json"))

	_, err := s.Search(Request{Query: "anything"})
	assert.ErrorIs(t, err, types.ErrSnapshotNotFound)
}

package nodenorm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/annotator/internal/core/model"
	"github.com/agenthands/annotator/internal/transport"
)

type fakeNodeNorm struct {
	mu       sync.Mutex
	classes  map[string][]string
	requests [][]string
}

func (f *fakeNodeNorm) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, req.Curies)
	f.mu.Unlock()

	out := make(map[string]interface{}, len(req.Curies))
	for _, c := range req.Curies {
		class, ok := f.classes[c]
		if !ok {
			out[c] = nil
			continue
		}
		var eq []map[string]string
		for _, id := range class {
			eq = append(eq, map[string]string{"identifier": id})
		}
		out[c] = map[string]interface{}{"equivalent_identifiers": eq}
	}
	_ = json.NewEncoder(w).Encode(out)
}

func newTestNormalizer(t *testing.T, f *fakeNodeNorm, cacheSize int) *Normalizer {
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	n, err := New(server.URL, cacheSize, WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return n
}

func lookup(t *testing.T, m *model.NormalizationMap, id string) string {
	t.Helper()
	v, ok := m.Lookup(id)
	require.True(t, ok, "expected %s in map", id)
	return v
}

func TestNormalizeMapsEquivalentsToOriginal(t *testing.T) {
	f := &fakeNodeNorm{classes: map[string][]string{
		"NCBIGene:7157": {"NCBIGene:7157", "HGNC:11998", "ENSEMBL:ENSG00000141510"},
		"HGNC:6973":     {"NCBIGene:4193", "HGNC:6973"},
	}}
	n := newTestNormalizer(t, f, 0)

	m, err := n.Normalize(context.Background(), []string{"NCBIGene:7157", "HGNC:6973", "NCBIGene:7157"})
	require.NoError(t, err)

	assert.Equal(t, "NCBIGene:7157", lookup(t, m, "NCBIGene:7157"))
	assert.Equal(t, "NCBIGene:7157", lookup(t, m, "HGNC:11998"))
	assert.Equal(t, "NCBIGene:7157", lookup(t, m, "ENSEMBL:ENSG00000141510"))
	assert.Equal(t, "HGNC:6973", lookup(t, m, "NCBIGene:4193"))
	assert.Equal(t, "HGNC:6973", lookup(t, m, "HGNC:6973"))
	assert.Empty(t, m.Collisions)

	require.Len(t, f.requests, 1)
	got := append([]string(nil), f.requests[0]...)
	sort.Strings(got)
	assert.Equal(t, []string{"HGNC:6973", "NCBIGene:7157"}, got)
}

func TestNormalizeDropsUnknown(t *testing.T) {
	f := &fakeNodeNorm{classes: map[string][]string{"GENE:1": {"GENE:1"}}}
	n := newTestNormalizer(t, f, 0)

	m, err := n.Normalize(context.Background(), []string{"GENE:1", "GENE:404"})
	require.NoError(t, err)

	_, ok := m.Lookup("GENE:404")
	assert.False(t, ok)
	assert.Equal(t, "GENE:1", lookup(t, m, "GENE:1"))
}

func TestNormalizeOriginalsMapToThemselves(t *testing.T) {
	// A's class claims B, which the caller also submitted.
	f := &fakeNodeNorm{classes: map[string][]string{
		"A": {"A", "B", "SHARED"},
		"B": {"B", "SHARED"},
	}}
	n := newTestNormalizer(t, f, 0)

	m, err := n.Normalize(context.Background(), []string{"B", "A"})
	require.NoError(t, err)

	assert.Equal(t, "A", lookup(t, m, "A"))
	assert.Equal(t, "B", lookup(t, m, "B"))
	// Originals are processed in sorted order, so B claims SHARED last.
	assert.Equal(t, "B", lookup(t, m, "SHARED"))
	assert.Contains(t, m.Collisions, model.Collision{Identifier: "B", Kept: "B", Dropped: "A"})
	assert.Contains(t, m.Collisions, model.Collision{Identifier: "SHARED", Kept: "B", Dropped: "A"})
}

func TestNormalizeUnresolvedOriginalJoinsClass(t *testing.T) {
	// X was submitted but the service only knows it through A.
	f := &fakeNodeNorm{classes: map[string][]string{
		"A": {"A", "X"},
	}}
	n := newTestNormalizer(t, f, 0)

	m, err := n.Normalize(context.Background(), []string{"A", "X"})
	require.NoError(t, err)

	assert.Equal(t, "A", lookup(t, m, "A"))
	assert.Equal(t, "A", lookup(t, m, "X"))
	assert.Empty(t, m.Collisions)
}

func TestNormalizeUsesCache(t *testing.T) {
	f := &fakeNodeNorm{classes: map[string][]string{
		"A": {"A", "A2"},
		"B": {"B"},
	}}
	n := newTestNormalizer(t, f, 16)

	_, err := n.Normalize(context.Background(), []string{"A"})
	require.NoError(t, err)
	m, err := n.Normalize(context.Background(), []string{"A", "B"})
	require.NoError(t, err)
	_, err = n.Normalize(context.Background(), []string{"B", "A"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"A"}, {"B"}}, f.requests)
	assert.Equal(t, "A", lookup(t, m, "A2"))
}

func TestNormalizeEmpty(t *testing.T) {
	f := &fakeNodeNorm{}
	n := newTestNormalizer(t, f, 16)
	m, err := n.Normalize(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, f.requests)
}

func TestNormalizeServiceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	n, err := New(server.URL, 0, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = n.Normalize(context.Background(), []string{"A"})
	assert.ErrorIs(t, err, transport.ErrNetwork)
}

package embedcache

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/sitegen/recommender/internal/catalog"
)

// fakeEmbedder produces deterministic vectors derived from the input text and
// counts how many embeddings it computed.
type fakeEmbedder struct {
	dimension int
	calls     atomic.Int64
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	vec := make([]float32, f.dimension)
	for i, r := range text {
		vec[i%f.dimension] += float32(r%13) / 13.0
	}
	return vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

func (f *fakeEmbedder) Dimension() int    { return f.dimension }
func (f *fakeEmbedder) ModelName() string { return "fake-model" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestEmbeddingText(t *testing.T) {
	tpl := catalog.Template{
		ID:          "template_1",
		Name:        "Modern Business",
		Description: "A sleek template",
		Industries:  []string{"technology", "consulting"},
		Style:       "modern",
		Features:    []string{"contact form", "testimonials"},
	}

	expected := "Modern Business. A sleek template. " +
		"Industries: technology, consulting. " +
		"Features: contact form, testimonials. " +
		"Style: modern. "
	if got := EmbeddingText(tpl); got != expected {
		t.Errorf("unexpected embedding text:\ngot:  %q\nwant: %q", got, expected)
	}
}

func TestGetOrCompute_CachesResult(t *testing.T) {
	emb := &fakeEmbedder{dimension: 8}
	store := New(emb, nil, testLogger())
	tpl := catalog.Template{ID: "template_1", Name: "One", Description: "First"}

	first, err := store.GetOrCompute(context.Background(), tpl)
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}
	second, err := store.GetOrCompute(context.Background(), tpl)
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}

	if emb.calls.Load() != 1 {
		t.Errorf("expected 1 embedder call, got %d", emb.calls.Load())
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("cached vector differs at index %d", i)
		}
	}
}

func TestGetOrCompute_CacheHitIsAuthoritative(t *testing.T) {
	emb := &fakeEmbedder{dimension: 8}
	store := New(emb, nil, testLogger())

	tpl := catalog.Template{ID: "template_1", Name: "One", Description: "First"}
	original, err := store.GetOrCompute(context.Background(), tpl)
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}

	// Changed metadata does not invalidate the cached entry
	tpl.Description = "Completely rewritten description"
	after, err := store.GetOrCompute(context.Background(), tpl)
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}

	if emb.calls.Load() != 1 {
		t.Errorf("expected no recomputation on metadata change, got %d calls", emb.calls.Load())
	}
	for i := range original {
		if original[i] != after[i] {
			t.Fatal("cache hit should return the original vector unchanged")
		}
	}
}

func TestBulkGetOrCompute_OnlyComputesMissing(t *testing.T) {
	emb := &fakeEmbedder{dimension: 8}
	store := New(emb, nil, testLogger())

	templates := []catalog.Template{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	}

	if _, err := store.GetOrCompute(context.Background(), templates[0]); err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}

	result, err := store.BulkGetOrCompute(context.Background(), templates)
	if err != nil {
		t.Fatalf("BulkGetOrCompute failed: %v", err)
	}

	if len(result) != 3 {
		t.Errorf("expected 3 embeddings, got %d", len(result))
	}
	// One call for "a" up front, two for the missing "b" and "c"
	if emb.calls.Load() != 3 {
		t.Errorf("expected 3 embedder calls total, got %d", emb.calls.Load())
	}
}

func TestClear_ForcesRecompute(t *testing.T) {
	emb := &fakeEmbedder{dimension: 8}
	store := New(emb, nil, testLogger())
	tpl := catalog.Template{ID: "template_1", Name: "One"}

	if _, err := store.GetOrCompute(context.Background(), tpl); err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}
	store.Clear()
	if store.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d entries", store.Len())
	}
	if _, err := store.GetOrCompute(context.Background(), tpl); err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}

	if emb.calls.Load() != 2 {
		t.Errorf("expected recomputation after Clear, got %d calls", emb.calls.Load())
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings", "cache.json")
	fs := NewFileStore(path)

	embeddings := map[string][]float32{
		"template_1": {0.1, 0.2, 0.30000001, -0.4},
		"template_2": {1.5e-7, 0.9999999, 42},
	}

	if err := fs.Save(context.Background(), "fake-model", embeddings); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := fs.Load(context.Background(), "fake-model")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded) != len(embeddings) {
		t.Fatalf("expected %d entries, got %d", len(embeddings), len(loaded))
	}
	for id, want := range embeddings {
		got, ok := loaded[id]
		if !ok {
			t.Fatalf("missing entry %s", id)
		}
		if len(got) != len(want) {
			t.Fatalf("entry %s: dimension %d, want %d", id, len(got), len(want))
		}
		for i := range want {
			// Bit-identical round trip
			if got[i] != want[i] {
				t.Errorf("entry %s differs at index %d: %v != %v", id, i, got[i], want[i])
			}
		}
	}
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))

	loaded, err := fs.Load(context.Background(), "fake-model")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty cache for missing file, got %d entries", len(loaded))
	}
}

func TestFileStore_ModelMismatchDiscardsCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	fs := NewFileStore(path)

	if err := fs.Save(context.Background(), "old-model", map[string][]float32{"a": {1, 2}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := fs.Load(context.Background(), "new-model")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected cache recorded under another model to be discarded, got %d entries", len(loaded))
	}
}

func TestStore_PersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	emb := &fakeEmbedder{dimension: 8}

	store := New(emb, NewFileStore(path), testLogger())
	templates := []catalog.Template{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
	}
	if _, err := store.BulkGetOrCompute(context.Background(), templates); err != nil {
		t.Fatalf("BulkGetOrCompute failed: %v", err)
	}
	if err := store.Persist(context.Background()); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	// A fresh store loads the persisted cache and computes nothing
	emb2 := &fakeEmbedder{dimension: 8}
	store2 := New(emb2, NewFileStore(path), testLogger())
	if err := store2.LoadCached(context.Background()); err != nil {
		t.Fatalf("LoadCached failed: %v", err)
	}
	if _, err := store2.BulkGetOrCompute(context.Background(), templates); err != nil {
		t.Fatalf("BulkGetOrCompute failed: %v", err)
	}
	if emb2.calls.Load() != 0 {
		t.Errorf("expected no embedder calls after reload, got %d", emb2.calls.Load())
	}
}

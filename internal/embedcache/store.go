// Package embedcache computes template embeddings lazily and caches them
// across process restarts.
package embedcache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sitegen/recommender/internal/catalog"
	"github.com/sitegen/recommender/internal/embedder"
)

// CacheStore persists the template embedding cache.
type CacheStore interface {
	// Load returns the persisted embeddings recorded for the given model.
	// A missing store yields an empty map, not an error.
	Load(ctx context.Context, model string) (map[string][]float32, error)

	// Save persists the full cache for the given model. Vectors must
	// round-trip exactly: same dimension, same values.
	Save(ctx context.Context, model string, embeddings map[string][]float32) error
}

// Store maps template ids to embeddings, computing missing ones via the
// embedder. A cache hit is authoritative even if the template metadata has
// since changed; the only invalidation path is Clear.
type Store struct {
	embedder  embedder.Embedder
	persister CacheStore
	logger    *slog.Logger

	mu    sync.RWMutex
	cache map[string][]float32
}

// New creates an embedding store. persister may be nil, in which case the
// cache lives only for the process lifetime.
func New(emb embedder.Embedder, persister CacheStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		embedder:  emb,
		persister: persister,
		logger:    logger,
		cache:     make(map[string][]float32),
	}
}

// LoadCached populates the in-memory cache from the persisted store. Entries
// recorded under a different model are discarded by the store itself, so a
// model change forces recomputation.
func (s *Store) LoadCached(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	cached, err := s.persister.Load(ctx, s.embedder.ModelName())
	if err != nil {
		return fmt.Errorf("failed to load embedding cache: %w", err)
	}

	s.mu.Lock()
	for id, vec := range cached {
		s.cache[id] = vec
	}
	s.mu.Unlock()

	if len(cached) > 0 {
		s.logger.Info("loaded cached template embeddings", "count", len(cached), "model", s.embedder.ModelName())
	}
	return nil
}

// GetOrCompute returns the cached embedding for the template, computing and
// inserting it when absent.
func (s *Store) GetOrCompute(ctx context.Context, tpl catalog.Template) ([]float32, error) {
	s.mu.RLock()
	vec, ok := s.cache[tpl.ID]
	s.mu.RUnlock()
	if ok {
		return vec, nil
	}

	vec, err := s.embedder.Embed(ctx, EmbeddingText(tpl))
	if err != nil {
		return nil, fmt.Errorf("failed to embed template %s: %w", tpl.ID, err)
	}

	// Insert-if-absent: a concurrent computation of the same template yields
	// the same vector, so last-write-wins is sound.
	s.mu.Lock()
	if existing, ok := s.cache[tpl.ID]; ok {
		vec = existing
	} else {
		s.cache[tpl.ID] = vec
	}
	s.mu.Unlock()

	return vec, nil
}

// BulkGetOrCompute returns embeddings for all given templates, batching the
// computation of whichever ones are not yet cached. Used during warm-up and
// per-request ranking.
func (s *Store) BulkGetOrCompute(ctx context.Context, templates []catalog.Template) (map[string][]float32, error) {
	result := make(map[string][]float32, len(templates))

	var missing []catalog.Template
	s.mu.RLock()
	for _, tpl := range templates {
		if vec, ok := s.cache[tpl.ID]; ok {
			result[tpl.ID] = vec
		} else {
			missing = append(missing, tpl)
		}
	}
	s.mu.RUnlock()

	if len(missing) == 0 {
		return result, nil
	}

	texts := make([]string, len(missing))
	for i, tpl := range missing {
		texts[i] = EmbeddingText(tpl)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %d templates: %w", len(missing), err)
	}

	s.mu.Lock()
	for i, tpl := range missing {
		vec := vectors[i]
		if existing, ok := s.cache[tpl.ID]; ok {
			vec = existing
		} else {
			s.cache[tpl.ID] = vec
		}
		result[tpl.ID] = vec
	}
	s.mu.Unlock()

	s.logger.Debug("computed template embeddings", "count", len(missing))
	return result, nil
}

// Persist serializes the full cache to the persisted store. Called once after
// the startup warm-up pass, and again after an explicit rebuild.
func (s *Store) Persist(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	s.mu.RLock()
	snapshot := make(map[string][]float32, len(s.cache))
	for id, vec := range s.cache {
		snapshot[id] = vec
	}
	s.mu.RUnlock()

	if err := s.persister.Save(ctx, s.embedder.ModelName(), snapshot); err != nil {
		return fmt.Errorf("failed to persist embedding cache: %w", err)
	}

	s.logger.Info("persisted template embeddings", "count", len(snapshot))
	return nil
}

// Clear drops every cached embedding. The next GetOrCompute recomputes from
// the current template text.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cache = make(map[string][]float32)
	s.mu.Unlock()
}

// Len returns the number of cached embeddings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// EmbeddingText composes the text a template is embedded from: name,
// description, industries, features and style, each segment separated by ". ".
func EmbeddingText(tpl catalog.Template) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s. %s. ", tpl.Name, tpl.Description)
	fmt.Fprintf(&sb, "Industries: %s. ", strings.Join(tpl.Industries, ", "))
	fmt.Fprintf(&sb, "Features: %s. ", strings.Join(tpl.Features, ", "))
	fmt.Fprintf(&sb, "Style: %s. ", tpl.Style)
	return sb.String()
}

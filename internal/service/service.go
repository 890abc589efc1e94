// Package service orchestrates the template catalog, embedding store, ranker
// and explanation generator behind a single recommendation API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/sitegen/recommender/internal/catalog"
	"github.com/sitegen/recommender/internal/embedcache"
	"github.com/sitegen/recommender/internal/embedder"
	"github.com/sitegen/recommender/internal/explain"
	"github.com/sitegen/recommender/internal/ranker"
)

// ErrNotReady is returned when a recommendation request arrives before the
// startup warm-up has completed.
var ErrNotReady = errors.New("recommendation service not ready")

// State is the service lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateWarming
	StateReady
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateWarming:
		return "warming"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// BusinessFacts is the structured input describing one business.
type BusinessFacts struct {
	BusinessName        string   `json:"business_name"`
	Industry            string   `json:"industry"`
	Description         string   `json:"description"`
	TargetAudience      []string `json:"target_audience"`
	UniqueSellingPoints []string `json:"unique_selling_points"`
}

// Recommendation is one ranked template in a response.
type Recommendation struct {
	TemplateID  string   `json:"templateId"`
	Score       float64  `json:"score"`
	MatchReason string   `json:"matchReason,omitempty"`
	PreviewURL  string   `json:"previewUrl,omitempty"`
	Features    []string `json:"features"`
}

// RecommendationService serves template recommendations. It moves through
// Uninitialized -> Warming -> Ready; requests are only served once Ready.
type RecommendationService struct {
	catalog  *catalog.Catalog
	embedder embedder.Embedder
	store    *embedcache.Store
	topK     int
	logger   *slog.Logger

	state atomic.Int32
}

// New creates a recommendation service. topK <= 0 falls back to 5.
func New(cat *catalog.Catalog, emb embedder.Embedder, store *embedcache.Store, topK int, logger *slog.Logger) *RecommendationService {
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendationService{
		catalog:  cat,
		embedder: emb,
		store:    store,
		topK:     topK,
		logger:   logger,
	}
}

// State returns the current lifecycle state.
func (s *RecommendationService) State() State {
	return State(s.state.Load())
}

// Ready reports whether warm-up has completed.
func (s *RecommendationService) Ready() bool {
	return s.State() == StateReady
}

// Initialize loads the catalog, loads any persisted embeddings, embeds every
// template that is not yet cached and persists the warmed cache. An embedding
// backend failure here is fatal: no candidates can be ranked without it.
func (s *RecommendationService) Initialize(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateUninitialized), int32(StateWarming)) {
		return fmt.Errorf("initialize called in state %s", s.State())
	}

	start := time.Now()

	if err := s.catalog.Load(); err != nil {
		s.state.Store(int32(StateUninitialized))
		return fmt.Errorf("failed to load template catalog: %w", err)
	}

	if err := s.store.LoadCached(ctx); err != nil {
		// A lost cache only costs recomputation
		s.logger.Warn("failed to load embedding cache, recomputing", "error", err)
	}

	if _, err := s.store.BulkGetOrCompute(ctx, s.catalog.All()); err != nil {
		s.state.Store(int32(StateUninitialized))
		return fmt.Errorf("failed to warm template embeddings: %w", err)
	}

	if err := s.store.Persist(ctx); err != nil {
		s.logger.Warn("failed to persist embedding cache", "error", err)
	}

	s.state.Store(int32(StateReady))
	s.logger.Info("recommendation service ready",
		"templates", s.catalog.Len(),
		"embeddings", s.store.Len(),
		"model", s.embedder.ModelName(),
		"warmup_duration", time.Since(start),
	)
	return nil
}

// Recommend returns the top-k templates for the given business facts,
// ordered by score descending. sessionID is pass-through correlation only.
func (s *RecommendationService) Recommend(ctx context.Context, sessionID string, facts BusinessFacts) ([]Recommendation, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}

	start := time.Now()

	name := facts.BusinessName
	if name == "" {
		name = "Business"
	}
	description := facts.Description
	if description == "" {
		description = fmt.Sprintf("%s in the %s industry", name, facts.Industry)
	}

	queryText := ComposeQuery(name, description, facts.Industry, facts.TargetAudience, facts.UniqueSellingPoints)

	queryEmbedding, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	templates := s.catalog.All()
	metadata := make(map[string]catalog.Template, len(templates))
	for _, tpl := range templates {
		metadata[tpl.ID] = tpl
	}

	embeddings, err := s.store.BulkGetOrCompute(ctx, templates)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate embeddings: %w", err)
	}

	ranked, err := ranker.Rank(queryEmbedding, embeddings, metadata, facts.Industry, s.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to rank templates: %w", err)
	}

	recommendations := make([]Recommendation, len(ranked))
	for i, c := range ranked {
		recommendations[i] = Recommendation{
			TemplateID:  c.TemplateID,
			Score:       math.Round(c.Score*100) / 100,
			MatchReason: explain.MatchReason(c.Template, facts.Industry, c.Score, facts.TargetAudience),
			PreviewURL:  c.Template.PreviewURL,
			Features:    c.Template.Features,
		}
	}

	s.logger.Info("generated recommendations",
		"session_id", sessionID,
		"industry", facts.Industry,
		"count", len(recommendations),
		"duration", time.Since(start),
	)
	return recommendations, nil
}

// RebuildEmbeddings clears the cache, re-embeds the full catalog from its
// current metadata and persists the result. This is the operational path for
// invalidating embeddings after template text changes.
func (s *RecommendationService) RebuildEmbeddings(ctx context.Context) (int, error) {
	if !s.Ready() {
		return 0, ErrNotReady
	}

	s.store.Clear()

	embeddings, err := s.store.BulkGetOrCompute(ctx, s.catalog.All())
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild template embeddings: %w", err)
	}
	if err := s.store.Persist(ctx); err != nil {
		return 0, err
	}

	s.logger.Info("rebuilt template embeddings", "count", len(embeddings))
	return len(embeddings), nil
}

// Catalog exposes the underlying template catalog for read endpoints.
func (s *RecommendationService) Catalog() *catalog.Catalog {
	return s.catalog
}

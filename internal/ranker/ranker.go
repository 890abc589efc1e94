// Package ranker scores candidate templates against a query embedding using
// cosine similarity plus deterministic categorical boosts.
package ranker

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sitegen/recommender/internal/catalog"
)

// ErrMissingEmbedding is returned when a candidate template has no embedding
// at rank time. The caller is responsible for warming the embedding store; a
// missing entry is an invariant violation, never silently skipped.
var ErrMissingEmbedding = errors.New("missing candidate embedding")

// Boost constants for categorical signals added on top of cosine similarity.
const (
	industryExactBoost     = 0.2
	industrySubstringBoost = 0.1

	featureRichBoost     = 0.1  // 5 or more features
	featureModerateBoost = 0.05 // 3 or 4 features
)

// Candidate is one scored template in a ranking, with its component scores
// preserved for response formatting and debugging.
type Candidate struct {
	TemplateID    string
	Score         float64
	Similarity    float64
	IndustryBoost float64
	FeatureBoost  float64
	Template      catalog.Template
}

// Rank scores every candidate and returns the top k ordered by final score
// descending. Equal scores order by template id ascending so rankings are
// reproducible. When topK exceeds the candidate count, all candidates are
// returned.
func Rank(queryEmbedding []float32, embeddings map[string][]float32, metadata map[string]catalog.Template, industry string, topK int) ([]Candidate, error) {
	ids := make([]string, 0, len(metadata))
	for id := range metadata {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	candidates := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		tpl := metadata[id]

		embedding, ok := embeddings[id]
		if !ok {
			return nil, fmt.Errorf("%w: template %s", ErrMissingEmbedding, id)
		}
		if len(embedding) != len(queryEmbedding) {
			return nil, fmt.Errorf("embedding dimension mismatch for template %s: query %d, candidate %d", id, len(queryEmbedding), len(embedding))
		}

		similarity := CosineSimilarity(queryEmbedding, embedding)
		industryBoost := IndustryBoost(industry, tpl.Industries)
		featureBoost := FeatureBoost(tpl.Features)

		// Additive composition, hard-capped at 1.0, no floor.
		score := similarity + industryBoost + featureBoost
		if score > 1.0 {
			score = 1.0
		}

		candidates = append(candidates, Candidate{
			TemplateID:    id,
			Score:         score,
			Similarity:    similarity,
			IndustryBoost: industryBoost,
			FeatureBoost:  featureBoost,
			Template:      tpl,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].TemplateID < candidates[j].TemplateID
	})

	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// A zero vector on either side yields 0.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// IndustryBoost scores the categorical match between a business industry and
// a template's industry tags. An exact case-insensitive match wins 0.2 and is
// checked before the substring relation, which wins 0.1 in either direction.
func IndustryBoost(industry string, industries []string) float64 {
	if industry == "" || len(industries) == 0 {
		return 0
	}

	industryLower := strings.ToLower(industry)

	for _, tag := range industries {
		if strings.ToLower(tag) == industryLower {
			return industryExactBoost
		}
	}
	for _, tag := range industries {
		tagLower := strings.ToLower(tag)
		if strings.Contains(industryLower, tagLower) || strings.Contains(tagLower, industryLower) {
			return industrySubstringBoost
		}
	}
	return 0
}

// FeatureBoost is a step function of the feature count: 0.1 for 5 or more,
// 0.05 for 3 or 4, otherwise 0.
func FeatureBoost(features []string) float64 {
	switch {
	case len(features) >= 5:
		return featureRichBoost
	case len(features) >= 3:
		return featureModerateBoost
	default:
		return 0
	}
}

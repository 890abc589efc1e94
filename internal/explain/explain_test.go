package explain

import (
	"strings"
	"testing"

	"github.com/sitegen/recommender/internal/catalog"
)

func TestConfidence_Bands(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{0.95, "Exceptional"},
		{0.9, "Strong"}, // boundary: > 0.9 required for Exceptional
		{0.85, "Strong"},
		{0.8, "Good"},
		{0.75, "Good"},
		{0.7, "Moderate"},
		{0.3, "Moderate"},
	}

	for _, tt := range tests {
		if got := Confidence(tt.score); got != tt.expected {
			t.Errorf("Confidence(%v) = %q, want %q", tt.score, got, tt.expected)
		}
	}
}

func TestMatchReason_AllClauses(t *testing.T) {
	tpl := catalog.Template{
		ID:             "template_1",
		Name:           "Modern Business",
		Industries:     []string{"technology", "consulting"},
		Style:          "modern",
		Features:       []string{"responsive design", "contact form", "testimonials section"},
		TargetAudience: []string{"professionals", "corporate clients"},
	}

	reason := MatchReason(tpl, "technology", 0.95, []string{"professionals"})

	expected := "Exceptional match: Perfect match for technology businesses. " +
		"Features a modern design style. " +
		"Optimized for professionals audience. " +
		"Includes responsive design and contact form."
	if reason != expected {
		t.Errorf("unexpected reason:\ngot:  %q\nwant: %q", reason, expected)
	}
}

func TestMatchReason_SimilarIndustries(t *testing.T) {
	tpl := catalog.Template{
		Industries: []string{"ecommerce", "retail", "fashion"},
	}

	reason := MatchReason(tpl, "finance", 0.6, nil)

	if !strings.Contains(reason, "Designed for similar industries like ecommerce, retail") {
		t.Errorf("expected similar-industries clause with first two entries, got %q", reason)
	}
	if strings.Contains(reason, "fashion") {
		t.Errorf("expected only the first two industries, got %q", reason)
	}
}

func TestMatchReason_NoAudienceOverlap(t *testing.T) {
	tpl := catalog.Template{
		Industries:     []string{"technology"},
		TargetAudience: []string{"professionals"},
	}

	reason := MatchReason(tpl, "technology", 0.85, []string{"students"})
	if strings.Contains(reason, "Optimized for") {
		t.Errorf("expected no audience clause without overlap, got %q", reason)
	}
}

func TestMatchReason_SingleFeature(t *testing.T) {
	tpl := catalog.Template{
		Features: []string{"gallery views"},
	}

	reason := MatchReason(tpl, "", 0.5, nil)
	if !strings.Contains(reason, "Includes gallery views.") {
		t.Errorf("expected single-feature clause without join, got %q", reason)
	}
}

func TestMatchReason_Fallback(t *testing.T) {
	// No style, no audience overlap, zero features, no industries at all
	tpl := catalog.Template{}

	reason := MatchReason(tpl, "technology", 0.5, []string{"shoppers"})

	expected := "Moderate match for your business requirements."
	if reason != expected {
		t.Errorf("expected fallback %q, got %q", expected, reason)
	}
}

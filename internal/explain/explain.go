// Package explain builds human-readable justifications for ranked templates.
package explain

import (
	"fmt"
	"strings"

	"github.com/sitegen/recommender/internal/catalog"
)

// MatchReason generates the explanation for why a template was recommended.
// Deterministic given its inputs; clauses are assembled in a fixed order and
// joined with the confidence label derived from the score.
func MatchReason(tpl catalog.Template, industry string, score float64, targetAudience []string) string {
	var reasons []string

	// Industry match
	if industry != "" && containsFold(tpl.Industries, industry) {
		reasons = append(reasons, fmt.Sprintf("Perfect match for %s businesses", industry))
	} else if len(tpl.Industries) > 0 {
		reasons = append(reasons, fmt.Sprintf("Designed for similar industries like %s", strings.Join(firstN(tpl.Industries, 2), ", ")))
	}

	// Style and aesthetic
	if tpl.Style != "" {
		reasons = append(reasons, fmt.Sprintf("Features a %s design style", tpl.Style))
	}

	// Target audience overlap
	if audience, ok := firstAudienceMatch(targetAudience, tpl.TargetAudience); ok {
		reasons = append(reasons, fmt.Sprintf("Optimized for %s audience", audience))
	}

	// Feature highlight
	if features := firstN(tpl.Features, 2); len(features) > 0 {
		reasons = append(reasons, fmt.Sprintf("Includes %s", strings.Join(features, " and ")))
	}

	confidence := Confidence(score)
	if len(reasons) == 0 {
		return fmt.Sprintf("%s match for your business requirements.", confidence)
	}
	return fmt.Sprintf("%s match: %s.", confidence, strings.Join(reasons, ". "))
}

// Confidence maps a final score to its confidence label.
func Confidence(score float64) string {
	switch {
	case score > 0.9:
		return "Exceptional"
	case score > 0.8:
		return "Strong"
	case score > 0.7:
		return "Good"
	default:
		return "Moderate"
	}
}

// containsFold reports whether any entry equals s case-insensitively.
func containsFold(entries []string, s string) bool {
	for _, e := range entries {
		if strings.EqualFold(e, s) {
			return true
		}
	}
	return false
}

// firstAudienceMatch returns the first requested audience that appears,
// case-insensitively, in the template's target audience tags.
func firstAudienceMatch(requested, available []string) (string, bool) {
	for _, want := range requested {
		for _, have := range available {
			if strings.EqualFold(want, have) {
				return want, true
			}
		}
	}
	return "", false
}

func firstN(entries []string, n int) []string {
	if len(entries) <= n {
		return entries
	}
	return entries[:n]
}

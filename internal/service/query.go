package service

import (
	"fmt"
	"strings"
)

// ComposeQuery builds the single text string representing a business's
// recommendation query from structured business facts. Deterministic text
// assembly with no external calls; optional segments are appended only when
// their list is non-empty.
func ComposeQuery(name, description, industry string, targetAudience, uniqueSellingPoints []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s. %s. ", name, description)
	if len(targetAudience) > 0 {
		fmt.Fprintf(&sb, "Target audience: %s. ", strings.Join(targetAudience, ", "))
	}
	if len(uniqueSellingPoints) > 0 {
		fmt.Fprintf(&sb, "Unique selling points: %s. ", strings.Join(uniqueSellingPoints, ", "))
	}
	fmt.Fprintf(&sb, "Industry: %s.", industry)

	return sb.String()
}

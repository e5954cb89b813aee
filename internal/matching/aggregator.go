package matching

import (
	"github.com/spigell/school-matcher/internal/filtering"
	"github.com/spigell/school-matcher/internal/preferences"
)

// Aggregate pairs every survivor of out with its annotations, keeping the
// survivor order.
func Aggregate(out filtering.Outcome, prefs *preferences.Preferences, annotator *Annotator) *FilteringResult {
	matches := make([]*SchoolMatch, 0, len(out.Survivors))
	for _, school := range out.Survivors {
		matches = append(matches, annotator.Annotate(school, prefs))
	}

	summary := make(map[string]int, len(out.Summary))
	for k, v := range out.Summary {
		summary[k] = v
	}

	return &FilteringResult{
		MustHaveCount:        out.MustHaveCount,
		SchoolMatches:        matches,
		TotalPossibleSchools: out.Total,
		FilteringSummary:     summary,
	}
}

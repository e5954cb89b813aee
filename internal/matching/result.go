package matching

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

// FilteringResult is the outcome of one evaluation.
type FilteringResult struct {
	// MustHaveCount is the number of preference fields marked must-have.
	MustHaveCount int
	SchoolMatches []*SchoolMatch
	// TotalPossibleSchools is the size of the pool before filtering.
	TotalPossibleSchools int
	// FilteringSummary maps each stage name to the schools it removed.
	FilteringSummary map[string]int
	// Prediction, when set, breaks ties in TopMatches by division.
	Prediction *Prediction
}

// Prediction is the division forecast for the athlete, produced outside this
// package.
type Prediction struct {
	Division      string  `json:"division" mapstructure:"division"`
	D1Probability float64 `json:"d1_probability" mapstructure:"d1_probability"`
	P4Probability float64 `json:"p4_probability" mapstructure:"p4_probability"`
}

// DivisionPriority scores how well division fits the prediction: 3 for the
// predicted division, 2 for the more likely neighbour, 1 for the other one
// and 0 otherwise.
func (p *Prediction) DivisionPriority(division string) int {
	if p == nil {
		return 0
	}
	if division == p.Division {
		return 3
	}

	switch p.Division {
	case schools.DivisionNonP4D1:
		p4First := p.P4Probability >= 1-p.D1Probability
		switch division {
		case schools.DivisionPower4D1:
			if p4First {
				return 2
			}
			return 1
		case schools.DivisionNonD1:
			if p4First {
				return 1
			}
			return 2
		}
	case schools.DivisionNonD1, schools.DivisionPower4D1:
		if division == schools.DivisionNonP4D1 {
			return 2
		}
	}
	return 0
}

// TopMatches returns up to limit matches ordered by nice-to-have match count,
// then division priority when a prediction is present, then overall grade.
// Equal keys keep survivor order. A non-positive limit returns every match.
func (r *FilteringResult) TopMatches(limit int) []*SchoolMatch {
	sorted := append([]*SchoolMatch(nil), r.SchoolMatches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if len(a.Matches) != len(b.Matches) {
			return len(a.Matches) > len(b.Matches)
		}
		pa, pb := r.Prediction.DivisionPriority(a.DivisionGroup), r.Prediction.DivisionPriority(b.DivisionGroup)
		if pa != pb {
			return pa > pb
		}
		return overallRank(a) < overallRank(b)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// overallRank orders missing or invalid overall grades after F.
func overallRank(m *SchoolMatch) int {
	if m.School == nil {
		return len(preferences.Grades())
	}
	rank, ok := preferences.Grade(m.School.OverallGrade).Rank()
	if !ok {
		return len(preferences.Grades())
	}
	return rank
}

// Summaries returns the summary of every match in result order.
func (r *FilteringResult) Summaries() []MatchSummary {
	out := make([]MatchSummary, 0, len(r.SchoolMatches))
	for _, m := range r.SchoolMatches {
		out = append(out, m.Summary())
	}
	return out
}

// StrongFits returns the matches with no misses and at least one match.
func (r *FilteringResult) StrongFits() []*SchoolMatch {
	var out []*SchoolMatch
	for _, m := range r.SchoolMatches {
		if m.StrongFit() {
			out = append(out, m)
		}
	}
	return out
}

// ToMap converts the result into plain maps and slices for serialization.
func (r *FilteringResult) ToMap() map[string]any {
	matches := make([]map[string]any, 0, len(r.SchoolMatches))
	for _, m := range r.SchoolMatches {
		matches = append(matches, m.ToMap())
	}
	summary := make(map[string]any, len(r.FilteringSummary))
	for k, v := range r.FilteringSummary {
		summary[k] = v
	}

	out := map[string]any{
		"must_have_count":        r.MustHaveCount,
		"school_matches":         matches,
		"total_possible_schools": r.TotalPossibleSchools,
		"filtering_summary":      summary,
	}
	if r.Prediction != nil {
		out["prediction"] = structToMap(*r.Prediction)
	}
	return out
}

// DumpToTmpFile writes ToMap as indented JSON and returns the file path.
func (r *FilteringResult) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "school_matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.ToMap()); err != nil {
		return "", err
	}
	return file.Name(), nil
}

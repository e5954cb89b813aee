package ai

import (
	"context"

	"github.com/spigell/school-matcher/internal/matching"
)

// Reasoning is a grounded explanation of why one school fits the athlete.
type Reasoning struct {
	Summary      string   `json:"summary"`
	FitQualities []string `json:"fit_qualities"`
	Cautions     []string `json:"cautions"`
	Raw          string   `json:"-"`
}

// RelaxSuggestion proposes loosening one must-have preference when too few
// schools survive.
type RelaxSuggestion struct {
	Preference string `json:"preference"`
	Suggestion string `json:"suggestion"`
	Reason     string `json:"reason"`
}

// Request carries everything a reasoner may ground its output on.
type Request struct {
	UserState   string
	MustHaves   map[string]any
	NiceToHaves map[string]any
	Prediction  *matching.Prediction
	Schools     []matching.MatchSummary
}

// Reasoner explains evaluation results in natural language.
type Reasoner interface {
	// Explain returns reasoning keyed by school name. Schools the model did
	// not answer for are absent from the map.
	Explain(ctx context.Context, req Request) (map[string]Reasoning, error)
	SuggestRelaxations(ctx context.Context, mustHaves map[string]any, totalMatches int) ([]RelaxSuggestion, error)
}

// NewRequest collects the reasoning input for the given top matches.
func NewRequest(result *matching.FilteringResult, userState string, mustHaves, niceToHaves map[string]any, top []*matching.SchoolMatch) Request {
	summaries := make([]matching.MatchSummary, 0, len(top))
	for _, m := range top {
		summaries = append(summaries, m.Summary())
	}
	return Request{
		UserState:   userState,
		MustHaves:   mustHaves,
		NiceToHaves: niceToHaves,
		Prediction:  result.Prediction,
		Schools:     summaries,
	}
}

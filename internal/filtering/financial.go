package filtering

import (
	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

type financialFilter struct{}

// NewFinancial creates the filter that enforces max_budget against the tuition
// the user would pay.
func NewFinancial() Filter {
	return &financialFilter{}
}

func (f *financialFilter) Name() string { return "financial" }

func (f *financialFilter) Fields() []preferences.Field {
	return []preferences.Field{preferences.FieldMaxBudget}
}

func (f *financialFilter) ShouldApply(p *preferences.Preferences) bool {
	return p.IsSet(preferences.FieldMaxBudget)
}

func (f *financialFilter) Apply(list []*schools.School, p *preferences.Preferences) Result {
	if !f.ShouldApply(p) {
		return notApplied(f.Name(), list)
	}

	budget := *p.Criteria().MaxBudget
	userState := p.UserState()
	return narrow(f.Name(), list, func(school *schools.School) bool {
		return WithinBudget(school, userState, budget)
	})
}

// WithinBudget reports whether the resolved tuition is at most budget. Unknown
// tuition cannot be compared and fails.
func WithinBudget(school *schools.School, userState string, budget float64) bool {
	tuition, _ := ResolveTuition(school, userState)
	if tuition == nil {
		return false
	}
	return *tuition <= budget
}

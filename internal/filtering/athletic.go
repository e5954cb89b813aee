package filtering

import (
	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

type athleticFilter struct{}

// NewAthletic creates the filter for min_athletics_rating. playing_time_priority
// is listed among its fields but never consulted.
func NewAthletic() Filter {
	return &athleticFilter{}
}

func (f *athleticFilter) Name() string { return "athletic" }

func (f *athleticFilter) Fields() []preferences.Field {
	return []preferences.Field{preferences.FieldMinAthleticsRating, preferences.FieldPlayingTimePriority}
}

func (f *athleticFilter) ShouldApply(p *preferences.Preferences) bool {
	return p.IsSet(preferences.FieldMinAthleticsRating)
}

func (f *athleticFilter) Apply(list []*schools.School, p *preferences.Preferences) Result {
	if !f.ShouldApply(p) {
		return notApplied(f.Name(), list)
	}

	minimum := *p.Criteria().MinAthleticsRating
	return narrow(f.Name(), list, func(school *schools.School) bool {
		return AthleticsMet(school, minimum)
	})
}

// AthleticsMet compares the school's athletics grade against minimum. A missing
// grade fails.
func AthleticsMet(school *schools.School, minimum string) bool {
	return preferences.MeetsRequirement(school.AthleticGrade(), minimum)
}

package filtering

import (
	"strings"

	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

type demographicFilter struct{}

// NewDemographic creates the filter for school size and party scene.
func NewDemographic() Filter {
	return &demographicFilter{}
}

func (f *demographicFilter) Name() string { return "demographic" }

func (f *demographicFilter) Fields() []preferences.Field {
	return []preferences.Field{preferences.FieldPreferredSchoolSize, preferences.FieldPartyScenePreference}
}

func (f *demographicFilter) ShouldApply(p *preferences.Preferences) bool {
	return anySet(p, f.Fields()...)
}

func (f *demographicFilter) Apply(list []*schools.School, p *preferences.Preferences) Result {
	if !f.ShouldApply(p) {
		return notApplied(f.Name(), list)
	}

	c := p.Criteria()
	return narrow(f.Name(), list, func(school *schools.School) bool {
		if len(c.PreferredSchoolSize) > 0 && !SizeMatches(school, c.PreferredSchoolSize) {
			return false
		}
		if len(c.PartyScenePreference) > 0 && !PartySceneMatches(school, c.PartyScenePreference) {
			return false
		}
		return true
	})
}

// SizeMatches passes when enrollment falls in any requested bucket. Unknown
// enrollment never excludes.
func SizeMatches(school *schools.School, sizes []string) bool {
	if school.UndergradEnrollment == nil {
		return true
	}
	for _, label := range sizes {
		if b, ok := sizeBucket(label); ok && b.Contains(*school.UndergradEnrollment) {
			return true
		}
	}
	return false
}

// PartySceneMatches passes when the party scene grade falls in any requested
// label's grade set. A missing grade never excludes.
func PartySceneMatches(school *schools.School, labels []string) bool {
	grade := strings.TrimSpace(school.PartySceneGrade)
	if grade == "" {
		return true
	}
	for _, label := range labels {
		if partySceneMatches(label, grade) {
			return true
		}
	}
	return false
}

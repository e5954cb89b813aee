package filtering

import (
	"strings"

	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

type geographicFilter struct{}

// NewGeographic creates the filter for preferred states and regions.
func NewGeographic() Filter {
	return &geographicFilter{}
}

func (f *geographicFilter) Name() string { return "geographic" }

func (f *geographicFilter) Fields() []preferences.Field {
	return []preferences.Field{preferences.FieldPreferredStates, preferences.FieldPreferredRegions}
}

func (f *geographicFilter) ShouldApply(p *preferences.Preferences) bool {
	return anySet(p, f.Fields()...)
}

func (f *geographicFilter) Apply(list []*schools.School, p *preferences.Preferences) Result {
	if !f.ShouldApply(p) {
		return notApplied(f.Name(), list)
	}

	c := p.Criteria()
	return narrow(f.Name(), list, func(school *schools.School) bool {
		return LocationMatches(school, c.PreferredStates, c.PreferredRegions)
	})
}

// LocationMatches passes when the school is in any preferred state or region.
// Two empty lists constrain nothing.
func LocationMatches(school *schools.School, states, regions []string) bool {
	if len(states) == 0 && len(regions) == 0 {
		return true
	}
	return StateMatches(school, states) || RegionMatches(school, regions)
}

func StateMatches(school *schools.School, states []string) bool {
	state := strings.TrimSpace(school.State)
	if state == "" {
		return false
	}
	for _, s := range states {
		if strings.EqualFold(strings.TrimSpace(s), state) {
			return true
		}
	}
	return false
}

// RegionMatches returns true when the school's state falls in any of regions.
func RegionMatches(school *schools.School, regions []string) bool {
	for _, region := range regions {
		if StateInRegion(school.State, region) {
			return true
		}
	}
	return false
}

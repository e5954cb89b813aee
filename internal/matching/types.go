package matching

import (
	"github.com/mitchellh/mapstructure"

	"github.com/spigell/school-matcher/internal/schools"
)

// NiceToHaveType groups nice-to-have preferences for presentation.
type NiceToHaveType string

const (
	TypeGeographic            NiceToHaveType = "geographic"
	TypeAcademicFit           NiceToHaveType = "academic_fit"
	TypeSchoolCharacteristics NiceToHaveType = "school_characteristics"
	TypeAthleticPreferences   NiceToHaveType = "athletic_preferences"
	TypeDemographic           NiceToHaveType = "demographic"
)

// PreferenceCategory tells whether a preference excludes schools or only
// annotates them.
type PreferenceCategory string

const (
	CategoryMustHave   PreferenceCategory = "must_have"
	CategoryNiceToHave PreferenceCategory = "nice_to_have"
)

// NiceToHaveMatch records a nice-to-have preference the school satisfies.
type NiceToHaveMatch struct {
	Type           NiceToHaveType `json:"preference_type" mapstructure:"preference_type"`
	PreferenceName string         `json:"preference_name" mapstructure:"preference_name"`
	UserValue      any            `json:"user_value" mapstructure:"user_value"`
	SchoolValue    any            `json:"school_value" mapstructure:"school_value"`
	Description    string         `json:"description" mapstructure:"description"`
}

// NiceToHaveMiss records a nice-to-have preference the school does not satisfy.
type NiceToHaveMiss struct {
	Type           NiceToHaveType `json:"preference_type" mapstructure:"preference_type"`
	PreferenceName string         `json:"preference_name" mapstructure:"preference_name"`
	UserValue      any            `json:"user_value" mapstructure:"user_value"`
	SchoolValue    any            `json:"school_value" mapstructure:"school_value"`
	Reason         string         `json:"reason" mapstructure:"reason"`
}

// SchoolMatch is one survivor of the must-have pipeline together with its
// nice-to-have annotations.
type SchoolMatch struct {
	SchoolName    string
	School        *schools.School
	DivisionGroup string
	Matches       []NiceToHaveMatch
	Misses        []NiceToHaveMiss
}

// Pro is a match line of a summary.
type Pro struct {
	Preference  string `json:"preference" mapstructure:"preference"`
	Description string `json:"description" mapstructure:"description"`
}

// Con is a miss line of a summary.
type Con struct {
	Preference string `json:"preference" mapstructure:"preference"`
	Reason     string `json:"reason" mapstructure:"reason"`
}

// MatchSummary is the display form of a SchoolMatch.
type MatchSummary struct {
	SchoolName             string `json:"school_name"`
	DivisionGroup          string `json:"division_group"`
	TotalNiceToHaveMatches int    `json:"total_nice_to_have_matches"`
	Pros                   []Pro  `json:"pros"`
	Cons                   []Con  `json:"cons"`
	StrongFit              bool   `json:"strong_fit"`
}

func newSchoolMatch(school *schools.School) *SchoolMatch {
	name := school.Name
	if name == "" {
		name = "Unknown School"
	}
	division := school.DivisionGroup
	if division == "" {
		division = "Unknown"
	}
	return &SchoolMatch{
		SchoolName:    name,
		School:        school,
		DivisionGroup: division,
		Matches:       []NiceToHaveMatch{},
		Misses:        []NiceToHaveMiss{},
	}
}

func (m *SchoolMatch) AddMatch(match NiceToHaveMatch) {
	m.Matches = append(m.Matches, match)
}

func (m *SchoolMatch) AddMiss(miss NiceToHaveMiss) {
	m.Misses = append(m.Misses, miss)
}

// StrongFit reports a school with at least one nice-to-have match and no
// misses.
func (m *SchoolMatch) StrongFit() bool {
	return len(m.Matches) > 0 && len(m.Misses) == 0
}

// Summary lists pros and cons in annotation order.
func (m *SchoolMatch) Summary() MatchSummary {
	pros := make([]Pro, 0, len(m.Matches))
	for _, match := range m.Matches {
		pros = append(pros, Pro{Preference: match.PreferenceName, Description: match.Description})
	}
	cons := make([]Con, 0, len(m.Misses))
	for _, miss := range m.Misses {
		cons = append(cons, Con{Preference: miss.PreferenceName, Reason: miss.Reason})
	}
	return MatchSummary{
		SchoolName:             m.SchoolName,
		DivisionGroup:          m.DivisionGroup,
		TotalNiceToHaveMatches: len(m.Matches),
		Pros:                   pros,
		Cons:                   cons,
		StrongFit:              m.StrongFit(),
	}
}

// ToMap converts the match into plain maps and slices.
func (m *SchoolMatch) ToMap() map[string]any {
	matches := make([]map[string]any, 0, len(m.Matches))
	for _, match := range m.Matches {
		matches = append(matches, structToMap(match))
	}
	misses := make([]map[string]any, 0, len(m.Misses))
	for _, miss := range m.Misses {
		misses = append(misses, structToMap(miss))
	}

	var data map[string]any
	if m.School != nil {
		data = m.School.ToMap()
	}

	return map[string]any{
		"school_name":          m.SchoolName,
		"school_data":          data,
		"division_group":       m.DivisionGroup,
		"nice_to_have_matches": matches,
		"nice_to_have_misses":  misses,
		"summary":              summaryToMap(m.Summary()),
	}
}

func summaryToMap(s MatchSummary) map[string]any {
	pros := make([]map[string]any, 0, len(s.Pros))
	for _, p := range s.Pros {
		pros = append(pros, structToMap(p))
	}
	cons := make([]map[string]any, 0, len(s.Cons))
	for _, c := range s.Cons {
		cons = append(cons, structToMap(c))
	}
	return map[string]any{
		"school_name":                s.SchoolName,
		"division_group":             s.DivisionGroup,
		"total_nice_to_have_matches": s.TotalNiceToHaveMatches,
		"pros":                       pros,
		"cons":                       cons,
		"strong_fit":                 s.StrongFit,
	}
}

func structToMap(v any) map[string]any {
	var out map[string]any
	// Flat tagged structs always decode into a map.
	_ = mapstructure.Decode(v, &out)
	return out
}

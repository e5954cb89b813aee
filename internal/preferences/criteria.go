package preferences

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidGrade        = errors.New("invalid grade")
	ErrAdmitRateOutOfRange = errors.New("admit_rate_floor must be between 0 and 100")
	ErrSATOutOfRange       = errors.New("sat must be between 400 and 1600")
	ErrACTOutOfRange       = errors.New("act must be between 1 and 36")
	ErrInvalidPayload      = errors.New("invalid preferences payload")
)

const (
	minSAT = 400
	maxSAT = 1600
	minACT = 1
	maxACT = 36
)

// Criteria is the raw set of user preferences. A nil pointer or nil slice means
// the preference was not supplied.
type Criteria struct {
	UserState string `json:"user_state,omitempty" mapstructure:"user_state"`

	MinAcademicRating            *string  `json:"min_academic_rating,omitempty" mapstructure:"min_academic_rating"`
	AdmitRateFloor               *float64 `json:"admit_rate_floor,omitempty" mapstructure:"admit_rate_floor"`
	SAT                          *int     `json:"sat,omitempty" mapstructure:"sat"`
	ACT                          *int     `json:"act,omitempty" mapstructure:"act"`
	MinStudentSatisfactionRating *string  `json:"min_student_satisfaction_rating,omitempty" mapstructure:"min_student_satisfaction_rating"`

	MaxBudget *float64 `json:"max_budget,omitempty" mapstructure:"max_budget"`

	PreferredStates  []string `json:"preferred_states,omitempty" mapstructure:"preferred_states"`
	PreferredRegions []string `json:"preferred_regions,omitempty" mapstructure:"preferred_regions"`

	PreferredSchoolSize  []string `json:"preferred_school_size,omitempty" mapstructure:"preferred_school_size"`
	PartyScenePreference []string `json:"party_scene_preference,omitempty" mapstructure:"party_scene_preference"`

	MinAthleticsRating *string `json:"min_athletics_rating,omitempty" mapstructure:"min_athletics_rating"`
	// PlayingTimePriority is carried through requests and responses but no
	// filter or annotation consults it.
	PlayingTimePriority []string `json:"playing_time_priority,omitempty" mapstructure:"playing_time_priority"`
}

// Validate checks every supplied value and returns the first violation.
func (c *Criteria) Validate() error {
	gradeFields := []struct {
		field Field
		value *string
	}{
		{FieldMinAcademicRating, c.MinAcademicRating},
		{FieldMinStudentSatisfactionRating, c.MinStudentSatisfactionRating},
		{FieldMinAthleticsRating, c.MinAthleticsRating},
	}
	for _, gf := range gradeFields {
		if gf.value == nil {
			continue
		}
		if _, err := ParseGrade(*gf.value); err != nil {
			return fmt.Errorf("%s: %w", gf.field, err)
		}
	}

	if err := validateAdmitRateFloor(c.AdmitRateFloor); err != nil {
		return err
	}

	if c.SAT != nil && (*c.SAT < minSAT || *c.SAT > maxSAT) {
		return fmt.Errorf("%w: got %d", ErrSATOutOfRange, *c.SAT)
	}
	if c.ACT != nil && (*c.ACT < minACT || *c.ACT > maxACT) {
		return fmt.Errorf("%w: got %d", ErrACTOutOfRange, *c.ACT)
	}

	return nil
}

func validateAdmitRateFloor(v *float64) error {
	if v == nil {
		return nil
	}
	// NaN fails both comparisons.
	if !(*v >= 0 && *v <= 100) {
		return fmt.Errorf("%w: got %v", ErrAdmitRateOutOfRange, *v)
	}
	return nil
}

// IsSet reports whether the criteria carry a value for f. Empty lists count as
// supplied, mirroring a caller that explicitly sent [].
func (c *Criteria) IsSet(f Field) bool {
	switch f {
	case FieldUserState:
		return strings.TrimSpace(c.UserState) != ""
	case FieldMinAcademicRating:
		return c.MinAcademicRating != nil
	case FieldAdmitRateFloor:
		return c.AdmitRateFloor != nil
	case FieldSAT:
		return c.SAT != nil
	case FieldACT:
		return c.ACT != nil
	case FieldMinStudentSatisfactionRating:
		return c.MinStudentSatisfactionRating != nil
	case FieldMaxBudget:
		return c.MaxBudget != nil
	case FieldPreferredStates:
		return c.PreferredStates != nil
	case FieldPreferredRegions:
		return c.PreferredRegions != nil
	case FieldPreferredSchoolSize:
		return c.PreferredSchoolSize != nil
	case FieldPartyScenePreference:
		return c.PartyScenePreference != nil
	case FieldMinAthleticsRating:
		return c.MinAthleticsRating != nil
	case FieldPlayingTimePriority:
		return c.PlayingTimePriority != nil
	default:
		return false
	}
}

// Value returns the dereferenced value of f, or nil when unset.
func (c *Criteria) Value(f Field) any {
	if !c.IsSet(f) {
		return nil
	}
	switch f {
	case FieldUserState:
		return c.UserState
	case FieldMinAcademicRating:
		return *c.MinAcademicRating
	case FieldAdmitRateFloor:
		return *c.AdmitRateFloor
	case FieldSAT:
		return *c.SAT
	case FieldACT:
		return *c.ACT
	case FieldMinStudentSatisfactionRating:
		return *c.MinStudentSatisfactionRating
	case FieldMaxBudget:
		return *c.MaxBudget
	case FieldPreferredStates:
		return cloneStrings(c.PreferredStates)
	case FieldPreferredRegions:
		return cloneStrings(c.PreferredRegions)
	case FieldPreferredSchoolSize:
		return cloneStrings(c.PreferredSchoolSize)
	case FieldPartyScenePreference:
		return cloneStrings(c.PartyScenePreference)
	case FieldMinAthleticsRating:
		return *c.MinAthleticsRating
	case FieldPlayingTimePriority:
		return cloneStrings(c.PlayingTimePriority)
	default:
		return nil
	}
}

// clone returns a deep copy so callers never share pointers with a Preferences.
func (c Criteria) clone() Criteria {
	out := Criteria{UserState: c.UserState}
	out.MinAcademicRating = clonePtr(c.MinAcademicRating)
	out.AdmitRateFloor = clonePtr(c.AdmitRateFloor)
	out.SAT = clonePtr(c.SAT)
	out.ACT = clonePtr(c.ACT)
	out.MinStudentSatisfactionRating = clonePtr(c.MinStudentSatisfactionRating)
	out.MaxBudget = clonePtr(c.MaxBudget)
	out.PreferredStates = cloneStrings(c.PreferredStates)
	out.PreferredRegions = cloneStrings(c.PreferredRegions)
	out.PreferredSchoolSize = cloneStrings(c.PreferredSchoolSize)
	out.PartyScenePreference = cloneStrings(c.PartyScenePreference)
	out.MinAthleticsRating = clonePtr(c.MinAthleticsRating)
	out.PlayingTimePriority = cloneStrings(c.PlayingTimePriority)
	return out
}

// project keeps user_state plus the listed fields and clears everything else.
func (c Criteria) project(keep map[Field]struct{}) Criteria {
	src := c.clone()
	out := Criteria{UserState: src.UserState}
	for f := range keep {
		switch f {
		case FieldMinAcademicRating:
			out.MinAcademicRating = src.MinAcademicRating
		case FieldAdmitRateFloor:
			out.AdmitRateFloor = src.AdmitRateFloor
		case FieldSAT:
			out.SAT = src.SAT
		case FieldACT:
			out.ACT = src.ACT
		case FieldMinStudentSatisfactionRating:
			out.MinStudentSatisfactionRating = src.MinStudentSatisfactionRating
		case FieldMaxBudget:
			out.MaxBudget = src.MaxBudget
		case FieldPreferredStates:
			out.PreferredStates = src.PreferredStates
		case FieldPreferredRegions:
			out.PreferredRegions = src.PreferredRegions
		case FieldPreferredSchoolSize:
			out.PreferredSchoolSize = src.PreferredSchoolSize
		case FieldPartyScenePreference:
			out.PartyScenePreference = src.PartyScenePreference
		case FieldMinAthleticsRating:
			out.MinAthleticsRating = src.MinAthleticsRating
		case FieldPlayingTimePriority:
			out.PlayingTimePriority = src.PlayingTimePriority
		}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Ptr is a small helper for building Criteria literals.
func Ptr[T any](v T) *T {
	return &v
}

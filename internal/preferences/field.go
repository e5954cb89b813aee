package preferences

// Field identifies a single preference on the Criteria payload.
type Field int

const (
	FieldUserState Field = iota
	FieldMinAcademicRating
	FieldAdmitRateFloor
	FieldSAT
	FieldACT
	FieldMinStudentSatisfactionRating
	FieldMaxBudget
	FieldPreferredStates
	FieldPreferredRegions
	FieldPreferredSchoolSize
	FieldPartyScenePreference
	FieldMinAthleticsRating
	FieldPlayingTimePriority

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldUserState:                    "user_state",
	FieldMinAcademicRating:            "min_academic_rating",
	FieldAdmitRateFloor:               "admit_rate_floor",
	FieldSAT:                          "sat",
	FieldACT:                          "act",
	FieldMinStudentSatisfactionRating: "min_student_satisfaction_rating",
	FieldMaxBudget:                    "max_budget",
	FieldPreferredStates:              "preferred_states",
	FieldPreferredRegions:             "preferred_regions",
	FieldPreferredSchoolSize:          "preferred_school_size",
	FieldPartyScenePreference:         "party_scene_preference",
	FieldMinAthleticsRating:           "min_athletics_rating",
	FieldPlayingTimePriority:          "playing_time_priority",
}

var fieldsByName = func() map[string]Field {
	out := make(map[string]Field, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out[fieldNames[f]] = f
	}
	return out
}()

// String returns the wire name of the field.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// ParseField resolves a wire name such as "max_budget".
func ParseField(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// Fields returns every known field in declaration order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// FilterableFields returns every field that can act as a must-have or
// nice-to-have preference. user_state is tuition metadata and is excluded.
func FilterableFields() []Field {
	out := make([]Field, 0, fieldCount-1)
	for f := Field(0); f < fieldCount; f++ {
		if f == FieldUserState {
			continue
		}
		out = append(out, f)
	}
	return out
}

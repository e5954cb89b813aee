package matching

import "github.com/spigell/school-matcher/internal/preferences"

var niceToHaveTypes = map[preferences.Field]NiceToHaveType{
	preferences.FieldPreferredStates:  TypeGeographic,
	preferences.FieldPreferredRegions: TypeGeographic,

	preferences.FieldSAT:                          TypeAcademicFit,
	preferences.FieldACT:                          TypeAcademicFit,
	preferences.FieldMinAcademicRating:            TypeAcademicFit,
	preferences.FieldMinStudentSatisfactionRating: TypeAcademicFit,
	preferences.FieldAdmitRateFloor:               TypeAcademicFit,

	preferences.FieldPreferredSchoolSize: TypeSchoolCharacteristics,
	preferences.FieldMaxBudget:           TypeSchoolCharacteristics,

	preferences.FieldMinAthleticsRating:  TypeAthleticPreferences,
	preferences.FieldPlayingTimePriority: TypeAthleticPreferences,

	preferences.FieldPartyScenePreference: TypeDemographic,
}

// TypeOf returns the nice-to-have category of f. user_state has none.
func TypeOf(f preferences.Field) (NiceToHaveType, bool) {
	t, ok := niceToHaveTypes[f]
	return t, ok
}

// CategoryOf reports how prefs treats f.
func CategoryOf(prefs *preferences.Preferences, f preferences.Field) PreferenceCategory {
	if prefs.IsMustHave(f) {
		return CategoryMustHave
	}
	return CategoryNiceToHave
}

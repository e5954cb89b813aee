package filtering

import (
	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

type academicFilter struct{}

// NewAcademic creates the filter for academic rating, admission rate, test
// score competitiveness and student satisfaction.
func NewAcademic() Filter {
	return &academicFilter{}
}

func (f *academicFilter) Name() string { return "academic" }

func (f *academicFilter) Fields() []preferences.Field {
	return []preferences.Field{
		preferences.FieldMinAcademicRating,
		preferences.FieldAdmitRateFloor,
		preferences.FieldSAT,
		preferences.FieldACT,
		preferences.FieldMinStudentSatisfactionRating,
	}
}

func (f *academicFilter) ShouldApply(p *preferences.Preferences) bool {
	return anySet(p, f.Fields()...)
}

func (f *academicFilter) Apply(list []*schools.School, p *preferences.Preferences) Result {
	if !f.ShouldApply(p) {
		return notApplied(f.Name(), list)
	}

	c := p.Criteria()
	return narrow(f.Name(), list, func(school *schools.School) bool {
		if c.MinAcademicRating != nil && !AcademicRatingMet(school, *c.MinAcademicRating) {
			return false
		}
		if c.AdmitRateFloor != nil && !AdmitRateMet(school, *c.AdmitRateFloor) {
			return false
		}
		if !Competitive(school, c.SAT, c.ACT) {
			return false
		}
		if c.MinStudentSatisfactionRating != nil && !SatisfactionMet(school, *c.MinStudentSatisfactionRating) {
			return false
		}
		return true
	})
}

// AcademicRatingMet reports whether the school's academics grade meets minimum.
// A missing grade fails.
func AcademicRatingMet(school *schools.School, minimum string) bool {
	return preferences.MeetsRequirement(school.AcademicsGrade, minimum)
}

// SatisfactionMet compares the student life grade against minimum.
func SatisfactionMet(school *schools.School, minimum string) bool {
	return preferences.MeetsRequirement(school.StudentLifeGrade, minimum)
}

// AdmitRateMet reports whether the school admits at least floor percent of
// applicants. A missing admission rate fails.
func AdmitRateMet(school *schools.School, floor float64) bool {
	if school.AdmissionRate == nil {
		return false
	}
	return *school.AdmissionRate >= floor/100
}

// Competitive reports whether the supplied scores fall within the school's
// published averages. With no scores supplied the check passes.
func Competitive(school *schools.School, sat, act *int) bool {
	if sat != nil && !SATCompetitive(school, *sat) {
		return false
	}
	if act != nil && !ACTCompetitive(school, *act) {
		return false
	}
	return true
}

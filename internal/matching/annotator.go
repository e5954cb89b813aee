package matching

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/spigell/school-matcher/internal/filtering"
	"github.com/spigell/school-matcher/internal/logger"
	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

// Annotator records, for every nice-to-have preference, whether a school
// satisfies it.
type Annotator struct {
	logger *zap.Logger
}

func NewAnnotator(log *zap.Logger) *Annotator {
	return &Annotator{logger: logger.WithFields(log)}
}

// verdict is the outcome of comparing one preference with one school.
type verdict struct {
	matched bool
	user    any
	school  any
	text    string
}

// Annotate evaluates every nice-to-have preference of prefs against school.
// Preferences the school publishes no data for, and inert preferences, are
// left out of both lists.
func (a *Annotator) Annotate(school *schools.School, prefs *preferences.Preferences) *SchoolMatch {
	match := newSchoolMatch(school)
	log := a.logger.With(logger.CommonFields(match.DivisionGroup, prefs.UserState())...)

	c := prefs.Criteria()
	for _, field := range prefs.NiceToHaves() {
		kind, ok := TypeOf(field)
		if !ok {
			continue
		}

		v, ok := evaluate(field, school, &c)
		if !ok {
			log.Debug("nice-to-have not evaluated",
				zap.String("school", match.SchoolName),
				zap.String("preference", field.String()),
			)
			continue
		}

		if v.matched {
			match.AddMatch(NiceToHaveMatch{
				Type:           kind,
				PreferenceName: field.String(),
				UserValue:      v.user,
				SchoolValue:    v.school,
				Description:    v.text,
			})
			continue
		}
		match.AddMiss(NiceToHaveMiss{
			Type:           kind,
			PreferenceName: field.String(),
			UserValue:      v.user,
			SchoolValue:    v.school,
			Reason:         v.text,
		})
	}

	log.Debug("school annotated",
		zap.String("school", match.SchoolName),
		zap.Int("matches", len(match.Matches)),
		zap.Int("misses", len(match.Misses)),
	)
	return match
}

func evaluate(field preferences.Field, school *schools.School, c *preferences.Criteria) (verdict, bool) {
	switch field {
	case preferences.FieldPreferredStates:
		return evalStates(school, c.PreferredStates)
	case preferences.FieldPreferredRegions:
		return evalRegions(school, c.PreferredRegions)
	case preferences.FieldMinAcademicRating:
		return evalGrade("academic rating", school.AcademicsGrade, c.MinAcademicRating)
	case preferences.FieldMinStudentSatisfactionRating:
		return evalGrade("student satisfaction rating", school.StudentLifeGrade, c.MinStudentSatisfactionRating)
	case preferences.FieldMinAthleticsRating:
		return evalGrade("athletics rating", school.AthleticGrade(), c.MinAthleticsRating)
	case preferences.FieldAdmitRateFloor:
		return evalAdmitRate(school, c.AdmitRateFloor)
	case preferences.FieldSAT:
		return evalSAT(school, c.SAT)
	case preferences.FieldACT:
		return evalACT(school, c.ACT)
	case preferences.FieldMaxBudget:
		return evalBudget(school, c.UserState, c.MaxBudget)
	case preferences.FieldPreferredSchoolSize:
		return evalSize(school, c.PreferredSchoolSize)
	case preferences.FieldPartyScenePreference:
		return evalPartyScene(school, c.PartyScenePreference)
	default:
		// playing_time_priority has no school data to compare against.
		return verdict{}, false
	}
}

func evalStates(school *schools.School, states []string) (verdict, bool) {
	state := strings.TrimSpace(school.State)
	if state == "" || len(states) == 0 {
		return verdict{}, false
	}
	v := verdict{user: states, school: state}
	if filtering.StateMatches(school, states) {
		v.matched = true
		v.text = fmt.Sprintf("School is located in %s, matching your preferred states.", StateName(state))
		return v, true
	}
	v.text = fmt.Sprintf("School is located in %s, not in your preferred states (%s).",
		StateName(state), strings.Join(states, ", "))
	return v, true
}

func evalRegions(school *schools.School, regions []string) (verdict, bool) {
	located := filtering.RegionsOf(school.State)
	if len(located) == 0 || len(regions) == 0 {
		return verdict{}, false
	}
	v := verdict{user: regions, school: strings.Join(located, ", ")}

	for _, name := range located {
		for _, want := range regions {
			if strings.EqualFold(strings.TrimSpace(want), name) {
				v.matched = true
				v.text = fmt.Sprintf("School is located in the %s region, matching your preferred regions.", name)
				return v, true
			}
		}
	}
	v.text = fmt.Sprintf("School is located in the %s region, not in your preferred regions (%s).",
		strings.Join(located, "/"), strings.Join(regions, ", "))
	return v, true
}

func evalGrade(label, schoolGrade string, minimum *string) (verdict, bool) {
	schoolGrade = strings.TrimSpace(schoolGrade)
	if minimum == nil || !preferences.Grade(schoolGrade).Valid() {
		return verdict{}, false
	}
	v := verdict{user: *minimum, school: schoolGrade}
	if preferences.MeetsRequirement(schoolGrade, *minimum) {
		v.matched = true
		v.text = fmt.Sprintf("School %s (%s) meets your minimum requirement (%s).", label, schoolGrade, *minimum)
		return v, true
	}
	v.text = fmt.Sprintf("School %s (%s) is below your minimum requirement (%s).", label, schoolGrade, *minimum)
	return v, true
}

func evalAdmitRate(school *schools.School, floor *float64) (verdict, bool) {
	if floor == nil || school.AdmissionRate == nil {
		return verdict{}, false
	}
	pct := *school.AdmissionRate * 100
	v := verdict{user: *floor, school: fmt.Sprintf("%.1f%%", pct)}
	if filtering.AdmitRateMet(school, *floor) {
		v.matched = true
		v.text = fmt.Sprintf("Admission rate %.1f%% meets your minimum of %g%%.", pct, *floor)
		return v, true
	}
	v.text = fmt.Sprintf("Admission rate %.1f%% is below your minimum of %g%%.", pct, *floor)
	return v, true
}

const (
	satWindow = 100
	satClose  = 50
	actWindow = 2
	actClose  = 1
)

// schoolSAT returns the school's SAT average, converted from its ACT average
// when only that is published.
func schoolSAT(school *schools.School) (int, bool) {
	if school.AvgSAT != nil && *school.AvgSAT != 0 {
		return int(math.Round(*school.AvgSAT)), true
	}
	if school.AvgACT != nil && *school.AvgACT != 0 {
		return ACTToSAT(int(math.Round(*school.AvgACT)))
	}
	return 0, false
}

func schoolACT(school *schools.School) (int, bool) {
	if school.AvgACT != nil && *school.AvgACT != 0 {
		return int(math.Round(*school.AvgACT)), true
	}
	if school.AvgSAT != nil && *school.AvgSAT != 0 {
		return SATToACT(int(math.Round(*school.AvgSAT)))
	}
	return 0, false
}

func evalSAT(school *schools.School, sat *int) (verdict, bool) {
	if sat == nil {
		return verdict{}, false
	}
	avg, ok := schoolSAT(school)
	if !ok {
		return verdict{}, false
	}
	return scoreVerdict("SAT", *sat, avg, satWindow, satClose), true
}

func evalACT(school *schools.School, act *int) (verdict, bool) {
	if act == nil {
		return verdict{}, false
	}
	avg, ok := schoolACT(school)
	if !ok {
		return verdict{}, false
	}
	return scoreVerdict("ACT", *act, avg, actWindow, actClose), true
}

func scoreVerdict(test string, score, avg, window, near int) verdict {
	v := verdict{user: score, school: avg}
	diff := score - avg
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff <= near:
		v.matched = true
		v.text = fmt.Sprintf("Your %s (%d) is close to the school average (%d).", test, score, avg)
	case diff <= window:
		v.matched = true
		v.text = fmt.Sprintf("Your %s (%d) is within range of the school average (%d).", test, score, avg)
	case score > avg:
		v.text = fmt.Sprintf("Your %s (%d) is well above the school average (%d); you may be overqualified.", test, score, avg)
	default:
		v.text = fmt.Sprintf("Your %s (%d) is well below the school average (%d); you may be underqualified.", test, score, avg)
	}
	return v
}

func evalBudget(school *schools.School, userState string, budget *float64) (verdict, bool) {
	if budget == nil {
		return verdict{}, false
	}
	tuition, inState := filtering.ResolveTuition(school, userState)
	if tuition == nil {
		return verdict{}, false
	}

	kind := "out-of-state"
	if inState {
		kind = "in-state"
	}
	v := verdict{user: *budget, school: *tuition}
	if *tuition <= *budget {
		v.matched = true
		v.text = fmt.Sprintf("School %s tuition (%s) is within your budget (%s).", kind, dollars(*tuition), dollars(*budget))
		return v, true
	}
	v.text = fmt.Sprintf("School %s tuition (%s) exceeds your budget (%s).", kind, dollars(*tuition), dollars(*budget))
	return v, true
}

func evalSize(school *schools.School, sizes []string) (verdict, bool) {
	if school.UndergradEnrollment == nil || len(sizes) == 0 {
		return verdict{}, false
	}
	enrollment := *school.UndergradEnrollment
	bucket, ok := filtering.SizeBucketOf(enrollment)
	if !ok {
		return verdict{}, false
	}

	described := fmt.Sprintf("%s (%s students)", bucket, count(enrollment))
	v := verdict{user: sizes, school: described}
	if filtering.SizeMatches(school, sizes) {
		v.matched = true
		v.text = fmt.Sprintf("School size is %s, matching your preferred sizes.", described)
		return v, true
	}
	v.text = fmt.Sprintf("School size is %s, not in your preferred sizes (%s).", described, strings.Join(sizes, ", "))
	return v, true
}

func evalPartyScene(school *schools.School, labels []string) (verdict, bool) {
	grade := strings.TrimSpace(school.PartySceneGrade)
	scene := filtering.PartySceneLabelsOf(grade)
	if len(scene) == 0 || len(labels) == 0 {
		return verdict{}, false
	}

	v := verdict{user: labels, school: grade}
	var matched []string
	for _, want := range labels {
		for _, label := range scene {
			if strings.EqualFold(strings.TrimSpace(want), label) {
				matched = append(matched, label)
			}
		}
	}
	if len(matched) > 0 {
		v.matched = true
		v.text = fmt.Sprintf("Party scene (%s) matches your preferences (%s).", grade, strings.Join(matched, ", "))
		return v, true
	}
	v.text = fmt.Sprintf("Party scene (%s) does not match your preferences (%s).", grade, strings.Join(labels, ", "))
	return v, true
}

func dollars(v float64) string {
	return message.NewPrinter(language.English).Sprintf("$%d", int64(math.Round(v)))
}

func count(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

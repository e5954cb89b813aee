package preferences

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		criteria Criteria
		want     error
	}{
		{name: "empty", criteria: Criteria{UserState: "CA"}},
		{name: "admit floor too high", criteria: Criteria{AdmitRateFloor: Ptr(150.0)}, want: ErrAdmitRateOutOfRange},
		{name: "admit floor negative", criteria: Criteria{AdmitRateFloor: Ptr(-1.0)}, want: ErrAdmitRateOutOfRange},
		{name: "admit floor bounds", criteria: Criteria{AdmitRateFloor: Ptr(100.0)}},
		{name: "bad academic grade", criteria: Criteria{MinAcademicRating: Ptr("A++")}, want: ErrInvalidGrade},
		{name: "bad satisfaction grade", criteria: Criteria{MinStudentSatisfactionRating: Ptr("")}, want: ErrInvalidGrade},
		{name: "bad athletics grade", criteria: Criteria{MinAthleticsRating: Ptr("E")}, want: ErrInvalidGrade},
		{name: "sat too high", criteria: Criteria{SAT: Ptr(1700)}, want: ErrSATOutOfRange},
		{name: "act too high", criteria: Criteria{ACT: Ptr(37)}, want: ErrACTOutOfRange},
		{name: "valid scores", criteria: Criteria{SAT: Ptr(1600), ACT: Ptr(36)}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			prefs, err := New(tc.criteria)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if prefs == nil {
					t.Fatalf("expected preferences")
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if prefs != nil {
				t.Fatalf("expected no preferences on failure")
			}
		})
	}
}

func TestSetAdmitRateFloorValidatesEveryAssignment(t *testing.T) {
	t.Parallel()

	prefs, err := New(Criteria{UserState: "CA", AdmitRateFloor: Ptr(20.0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := prefs.SetAdmitRateFloor(Ptr(150.0)); !errors.Is(err, ErrAdmitRateOutOfRange) {
		t.Fatalf("expected ErrAdmitRateOutOfRange, got %v", err)
	}
	if got := prefs.Value(FieldAdmitRateFloor); got != 20.0 {
		t.Fatalf("expected rejected assignment to keep 20, got %v", got)
	}

	if err := prefs.SetAdmitRateFloor(Ptr(math.NaN())); !errors.Is(err, ErrAdmitRateOutOfRange) {
		t.Fatalf("expected NaN to be rejected, got %v", err)
	}
	if _, err := New(Criteria{UserState: "CA", AdmitRateFloor: Ptr(math.NaN())}); !errors.Is(err, ErrAdmitRateOutOfRange) {
		t.Fatalf("expected NaN to fail construction, got %v", err)
	}

	if err := prefs.SetAdmitRateFloor(Ptr(35.5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := prefs.Value(FieldAdmitRateFloor); got != 35.5 {
		t.Fatalf("expected 35.5, got %v", got)
	}
}

func TestUpdateRollsBackAndDropsUnsetMustHaves(t *testing.T) {
	t.Parallel()

	prefs, err := New(Criteria{UserState: "CA", MaxBudget: Ptr(30000.0), MinAcademicRating: Ptr("B")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prefs.MakeMustHave("max_budget")
	prefs.MakeMustHave("min_academic_rating")

	err = prefs.Update(func(c *Criteria) { c.MinAcademicRating = Ptr("bogus") })
	if !errors.Is(err, ErrInvalidGrade) {
		t.Fatalf("expected ErrInvalidGrade, got %v", err)
	}
	if prefs.Value(FieldMinAcademicRating) != "B" {
		t.Fatalf("expected rollback to keep B")
	}

	if err := prefs.Update(func(c *Criteria) { c.MaxBudget = nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prefs.IsMustHave(FieldMaxBudget) {
		t.Fatalf("expected must-have mark dropped for unset field")
	}
	if !prefs.IsMustHave(FieldMinAcademicRating) {
		t.Fatalf("expected unrelated must-have to survive")
	}
}

func TestMakeMustHave(t *testing.T) {
	t.Parallel()

	prefs, err := New(Criteria{UserState: "CA", MaxBudget: Ptr(25000.0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prefs.MakeMustHave("user_state") {
		t.Fatalf("user_state must never become a must-have")
	}
	if prefs.MakeMustHave("sat") {
		t.Fatalf("unset field must not become a must-have")
	}
	if prefs.MakeMustHave("gpa") {
		t.Fatalf("unknown field must not become a must-have")
	}
	if !prefs.MakeMustHave("max_budget") {
		t.Fatalf("expected max_budget to be marked")
	}

	for _, f := range prefs.MustHaves() {
		if f == FieldUserState {
			t.Fatalf("user_state leaked into must-haves")
		}
	}
	if prefs.MustHaveCount() != 1 {
		t.Fatalf("expected 1 must-have, got %d", prefs.MustHaveCount())
	}

	if !prefs.RemoveMustHave("max_budget") {
		t.Fatalf("expected removal to succeed")
	}
	if prefs.RemoveMustHave("max_budget") {
		t.Fatalf("second removal should report false")
	}
}

func TestSetMustHavesFromList(t *testing.T) {
	t.Parallel()

	prefs, err := New(Criteria{
		UserState:         "TX",
		MaxBudget:         Ptr(40000.0),
		MinAcademicRating: Ptr("B+"),
		PreferredStates:   []string{"TX"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prefs.MakeMustHave("preferred_states")

	failed := prefs.SetMustHavesFromList([]string{"max_budget", "user_state", "sat", "nope", "min_academic_rating"})
	if want := []string{"user_state", "sat", "nope"}; !reflect.DeepEqual(failed, want) {
		t.Fatalf("expected failed %v, got %v", want, failed)
	}

	if want := []Field{FieldMaxBudget, FieldMinAcademicRating}; !sameFields(prefs.MustHaves(), want) {
		t.Fatalf("expected must-haves %v, got %v", want, prefs.MustHaves())
	}
	if want := []Field{FieldPreferredStates}; !reflect.DeepEqual(prefs.NiceToHaves(), want) {
		t.Fatalf("expected nice-to-haves %v, got %v", want, prefs.NiceToHaves())
	}
}

func TestPartitionIsDisjointAndComplete(t *testing.T) {
	t.Parallel()

	prefs, err := New(Criteria{
		UserState:            "NY",
		MinAcademicRating:    Ptr("A-"),
		AdmitRateFloor:       Ptr(10.0),
		SAT:                  Ptr(1400),
		MaxBudget:            Ptr(50000.0),
		PreferredRegions:     []string{"Northeast"},
		PreferredSchoolSize:  []string{"Small"},
		PlayingTimePriority:  []string{"High"},
		PartyScenePreference: []string{"Quiet"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prefs.SetMustHavesFromList([]string{"sat", "preferred_regions", "playing_time_priority"})

	seen := map[Field]int{}
	for _, f := range prefs.MustHaves() {
		seen[f]++
	}
	for _, f := range prefs.NiceToHaves() {
		seen[f]++
	}

	for _, f := range FilterableFields() {
		count := seen[f]
		switch {
		case prefs.IsSet(f) && count != 1:
			t.Fatalf("field %v appears %d times in partition", f, count)
		case !prefs.IsSet(f) && count != 0:
			t.Fatalf("unset field %v appears in partition", f)
		}
	}
	if seen[FieldUserState] != 0 {
		t.Fatalf("user_state must not be partitioned")
	}

	mustValues := prefs.MustHaveValues()
	if mustValues["sat"] != 1400 {
		t.Fatalf("unexpected must-have values: %v", mustValues)
	}
	if _, ok := prefs.NiceToHaveValues()["max_budget"]; !ok {
		t.Fatalf("expected max_budget among nice-to-have values")
	}
}

func TestMustHaveView(t *testing.T) {
	t.Parallel()

	prefs, err := New(Criteria{
		UserState:         "CA",
		MaxBudget:         Ptr(20000.0),
		MinAcademicRating: Ptr("B"),
		PreferredStates:   []string{"CA"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prefs.MakeMustHave("max_budget")

	view := prefs.MustHaveView()
	if view.UserState() != "CA" {
		t.Fatalf("view must keep user_state")
	}
	if !view.IsSet(FieldMaxBudget) || view.IsSet(FieldMinAcademicRating) || view.IsSet(FieldPreferredStates) {
		t.Fatalf("view must only carry must-have criteria: %+v", view.Criteria())
	}
	if len(view.NiceToHaves()) != 0 {
		t.Fatalf("view must not have nice-to-haves")
	}

	view.RemoveMustHave("max_budget")
	if !prefs.IsMustHave(FieldMaxBudget) {
		t.Fatalf("mutating the view must not affect the source")
	}
}

func TestCriteriaIsCopied(t *testing.T) {
	t.Parallel()

	states := []string{"CA"}
	prefs, err := New(Criteria{UserState: "CA", PreferredStates: states})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	states[0] = "NY"

	got := prefs.Criteria()
	if got.PreferredStates[0] != "CA" {
		t.Fatalf("expected input slice to be copied")
	}
	got.PreferredStates[0] = "TX"
	if prefs.Criteria().PreferredStates[0] != "CA" {
		t.Fatalf("expected returned criteria to be a copy")
	}
}

func sameFields(got, want []Field) bool {
	if len(got) != len(want) {
		return false
	}
	set := map[Field]bool{}
	for _, f := range got {
		set[f] = true
	}
	for _, f := range want {
		if !set[f] {
			return false
		}
	}
	return true
}

func TestZeroValuePreferencesAcceptMustHaves(t *testing.T) {
	t.Parallel()

	var prefs Preferences
	if err := prefs.Update(func(c *Criteria) { c.MaxBudget = Ptr(25000.0) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !prefs.MakeMustHaveField(FieldMaxBudget) {
		t.Fatalf("expected max_budget to become a must-have")
	}
	if !prefs.IsMustHave(FieldMaxBudget) || prefs.MustHaveCount() != 1 {
		t.Fatalf("unexpected must-haves: %v", prefs.MustHaves())
	}
	if !prefs.RemoveMustHave("max_budget") || prefs.IsMustHave(FieldMaxBudget) {
		t.Fatalf("expected max_budget to be demoted")
	}
}

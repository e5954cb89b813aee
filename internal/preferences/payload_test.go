package preferences

import (
	"errors"
	"reflect"
	"testing"
)

func TestParsePayload(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"user_state": "CA",
		"max_budget": 30000,
		"min_academic_rating": "B+",
		"preferred_regions": ["West"],
		"sat": null,
		"must_have_preferences": ["max_budget", "sat", "user_state"]
	}`)

	prefs, failed, err := ParsePayload(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"sat", "user_state"}; !reflect.DeepEqual(failed, want) {
		t.Fatalf("expected failed %v, got %v", want, failed)
	}
	if !prefs.IsMustHave(FieldMaxBudget) {
		t.Fatalf("expected max_budget must-have")
	}
	if prefs.IsSet(FieldSAT) {
		t.Fatalf("null sat must stay unset")
	}
	if got := prefs.Value(FieldPreferredRegions); !reflect.DeepEqual(got, []string{"West"}) {
		t.Fatalf("unexpected regions: %v", got)
	}
}

func TestParsePayloadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "missing user_state", data: `{"max_budget": 1}`, want: ErrInvalidPayload},
		{name: "wrong type", data: `{"user_state": "CA", "sat": "high"}`, want: ErrInvalidPayload},
		{name: "unknown key", data: `{"user_state": "CA", "gpa": 3.9}`, want: ErrInvalidPayload},
		{name: "not json", data: `{`, want: ErrInvalidPayload},
		{name: "admit floor", data: `{"user_state": "CA", "admit_rate_floor": 150}`, want: ErrAdmitRateOutOfRange},
		{name: "grade", data: `{"user_state": "CA", "min_athletics_rating": "Q"}`, want: ErrInvalidGrade},
		{name: "padded grade", data: `{"user_state": "CA", "min_academic_rating": "A "}`, want: ErrInvalidGrade},
		{name: "padded must-have grade", data: `{"user_state": "CA", "min_athletics_rating": " B", "must_have_preferences": ["min_athletics_rating"]}`, want: ErrInvalidGrade},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := ParsePayload([]byte(tc.data))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

package preferences

import (
	"errors"
	"testing"
)

func TestGradeScaleOrder(t *testing.T) {
	t.Parallel()

	scale := Grades()
	if len(scale) != 13 {
		t.Fatalf("expected 13 grades, got %d", len(scale))
	}
	if scale[0] != "A+" || scale[12] != "F" {
		t.Fatalf("unexpected scale bounds: %q .. %q", scale[0], scale[12])
	}

	scale[0] = "Z"
	if Grades()[0] != "A+" {
		t.Fatalf("Grades must return a copy")
	}
}

func TestMeetsRequirementMatchesRankOrder(t *testing.T) {
	t.Parallel()

	for _, school := range Grades() {
		for _, minimum := range Grades() {
			sr, _ := school.Rank()
			mr, _ := minimum.Rank()
			want := sr <= mr
			if got := MeetsRequirement(string(school), string(minimum)); got != want {
				t.Fatalf("MeetsRequirement(%s, %s) = %v, want %v", school, minimum, got, want)
			}
		}
	}
}

func TestMeetsRequirementInvalidGrades(t *testing.T) {
	t.Parallel()

	cases := []struct {
		school  string
		minimum string
	}{
		{"", "B"},
		{"A", ""},
		{"E", "B"},
		{"A", "Z+"},
		{"a+", "B"},
	}

	for _, tc := range cases {
		if MeetsRequirement(tc.school, tc.minimum) {
			t.Fatalf("expected %q vs %q to fail", tc.school, tc.minimum)
		}
	}
}

func TestParseGrade(t *testing.T) {
	t.Parallel()

	g, err := ParseGrade("B+")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rank, _ := g.Rank(); rank != 3 {
		t.Fatalf("expected rank 3, got %d", rank)
	}

	for _, bad := range []string{"G", " B+ ", "A ", " B", "b+", ""} {
		if _, err := ParseGrade(bad); !errors.Is(err, ErrInvalidGrade) {
			t.Fatalf("ParseGrade(%q): expected ErrInvalidGrade, got %v", bad, err)
		}
	}
}

func TestParseField(t *testing.T) {
	t.Parallel()

	for _, f := range Fields() {
		parsed, ok := ParseField(f.String())
		if !ok || parsed != f {
			t.Fatalf("field %v did not round-trip", f)
		}
	}

	if _, ok := ParseField("gpa"); ok {
		t.Fatalf("expected gpa to be unknown")
	}

	for _, f := range FilterableFields() {
		if f == FieldUserState {
			t.Fatalf("user_state must not be filterable")
		}
	}
	if len(FilterableFields()) != len(Fields())-1 {
		t.Fatalf("expected every field except user_state to be filterable")
	}
}

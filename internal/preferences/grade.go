package preferences

import "fmt"

// Grade is a letter grade as published by school rating sources.
type Grade string

// Grades lists every valid grade from best (rank 0) to worst (rank 12).
var grades = [...]Grade{"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-", "F"}

var gradeRanks = func() map[Grade]int {
	ranks := make(map[Grade]int, len(grades))
	for idx, g := range grades {
		ranks[g] = idx
	}
	return ranks
}()

// Grades returns the ordered grade scale. The returned slice is a copy.
func Grades() []Grade {
	out := make([]Grade, len(grades))
	copy(out, grades[:])
	return out
}

// ParseGrade returns the grade for s or ErrInvalidGrade. Matching is exact:
// stored grades are compared verbatim, so padded or lower-case input is
// rejected.
func ParseGrade(s string) (Grade, error) {
	g := Grade(s)
	if _, ok := gradeRanks[g]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
	return g, nil
}

// Rank returns the position of the grade on the scale. Lower is better.
func (g Grade) Rank() (int, bool) {
	rank, ok := gradeRanks[g]
	return rank, ok
}

// Valid reports whether g is one of the 13 known grades.
func (g Grade) Valid() bool {
	_, ok := gradeRanks[g]
	return ok
}

// MeetsRequirement reports whether schoolGrade is at least as good as minGrade.
// An unknown grade on either side never meets the requirement.
func MeetsRequirement(schoolGrade, minGrade string) bool {
	school, ok := Grade(schoolGrade).Rank()
	if !ok {
		return false
	}
	minimum, ok := Grade(minGrade).Rank()
	if !ok {
		return false
	}
	return school <= minimum
}

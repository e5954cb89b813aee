package filtering

import (
	"fmt"
	"strings"

	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

// Filter represents a single narrowing step applied to a school pool.
type Filter interface {
	Name() string
	// Fields lists the preference fields the filter consumes.
	Fields() []preferences.Field
	ShouldApply(p *preferences.Preferences) bool
	Apply(list []*schools.School, p *preferences.Preferences) Result
}

// Result describes the outcome of one filter over one pool.
type Result struct {
	Schools            []*schools.School
	FilterName         string
	SchoolsFilteredOut int
	FilterApplied      bool
	// Reason explains why the filter was not applied.
	Reason string
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

func (r Result) Step() Step {
	left := len(r.Schools)
	return Step{Initial: left + r.SchoolsFilteredOut, Dropped: r.SchoolsFilteredOut, Left: left}
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// Defaults returns the five filters in pipeline order.
func Defaults() []Filter {
	return []Filter{
		NewFinancial(),
		NewAcademic(),
		NewGeographic(),
		NewAthletic(),
		NewDemographic(),
	}
}

// Describe reports, for each filter, whether it would run against p and with
// which preference values.
func Describe(steps []Filter, p *preferences.Preferences) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		status := Status{
			Name:    step.Name(),
			Enabled: step.ShouldApply(p),
			Details: map[string]string{},
		}
		for _, f := range step.Fields() {
			if !p.IsSet(f) {
				continue
			}
			kind := "nice_to_have"
			if p.IsMustHave(f) {
				kind = "must_have"
			}
			status.Details[f.String()] = fmt.Sprintf("%s (%s)", formatValue(p.Value(f)), kind)
		}
		if !status.Enabled {
			status.Reason = notAppliedReason(step.Name())
		}
		statuses = append(statuses, status)
	}
	return statuses
}

func formatValue(v any) string {
	switch val := v.(type) {
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func notAppliedReason(name string) string {
	return fmt.Sprintf("No %s preferences specified", name)
}

func anySet(p *preferences.Preferences, fields ...preferences.Field) bool {
	for _, f := range fields {
		if p.IsSet(f) {
			return true
		}
	}
	return false
}

// narrow keeps the schools for which keep returns true, preserving order.
func narrow(name string, list []*schools.School, keep func(*schools.School) bool) Result {
	out := make([]*schools.School, 0, len(list))
	for _, school := range list {
		if keep(school) {
			out = append(out, school)
		}
	}
	return Result{
		Schools:            out,
		FilterName:         name,
		SchoolsFilteredOut: len(list) - len(out),
		FilterApplied:      true,
	}
}

func notApplied(name string, list []*schools.School) Result {
	return Result{
		Schools:       append([]*schools.School(nil), list...),
		FilterName:    name,
		FilterApplied: false,
		Reason:        notAppliedReason(name),
	}
}

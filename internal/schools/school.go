package schools

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// School is one record from the school store. Optional numeric columns are
// pointers; a nil value means the source did not publish it. Grades are empty
// when unknown.
type School struct {
	Name          string `json:"school_name" mapstructure:"school_name"`
	State         string `json:"school_state" mapstructure:"school_state"`
	Region        string `json:"school_region,omitempty" mapstructure:"school_region"`
	DivisionGroup string `json:"division_group,omitempty" mapstructure:"division_group"`

	UndergradEnrollment *int     `json:"undergrad_enrollment" mapstructure:"undergrad_enrollment"`
	InStateTuition      *float64 `json:"in_state_tuition" mapstructure:"in_state_tuition"`
	OutOfStateTuition   *float64 `json:"out_of_state_tuition" mapstructure:"out_of_state_tuition"`
	// AdmissionRate is a fraction in [0, 1].
	AdmissionRate *float64 `json:"admission_rate" mapstructure:"admission_rate"`
	AvgSAT        *float64 `json:"avg_sat" mapstructure:"avg_sat"`
	AvgACT        *float64 `json:"avg_act" mapstructure:"avg_act"`

	OverallGrade        string `json:"overall_grade,omitempty" mapstructure:"overall_grade"`
	AcademicsGrade      string `json:"academics_grade,omitempty" mapstructure:"academics_grade"`
	TotalAthleticsGrade string `json:"total_athletics_grade,omitempty" mapstructure:"total_athletics_grade"`
	AthleticsGrade      string `json:"athletics_grade,omitempty" mapstructure:"athletics_grade"`
	CampusLifeGrade     string `json:"campus_life_grade,omitempty" mapstructure:"campus_life_grade"`
	ValueGrade          string `json:"value_grade,omitempty" mapstructure:"value_grade"`
	StudentLifeGrade    string `json:"student_life_grade,omitempty" mapstructure:"student_life_grade"`
	DiversityGrade      string `json:"diversity_grade,omitempty" mapstructure:"diversity_grade"`
	LocationGrade       string `json:"location_grade,omitempty" mapstructure:"location_grade"`
	SafetyGrade         string `json:"safety_grade,omitempty" mapstructure:"safety_grade"`
	ProfessorsGrade     string `json:"professors_grade,omitempty" mapstructure:"professors_grade"`
	DormsGrade          string `json:"dorms_grade,omitempty" mapstructure:"dorms_grade"`
	FoodGrade           string `json:"food_grade,omitempty" mapstructure:"food_grade"`
	PartySceneGrade     string `json:"party_scene_grade,omitempty" mapstructure:"party_scene_grade"`

	// Extra keeps columns this package does not model.
	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// AthleticGrade returns the total athletics grade, falling back to the plain
// athletics grade some sources publish instead.
func (s *School) AthleticGrade() string {
	if g := strings.TrimSpace(s.TotalAthleticsGrade); g != "" {
		return g
	}
	return strings.TrimSpace(s.AthleticsGrade)
}

// ToMap flattens the record back into column/value pairs, including Extra.
func (s *School) ToMap() map[string]any {
	out := make(map[string]any, len(s.Extra)+24)
	for k, v := range s.Extra {
		out[k] = v
	}

	var known map[string]any
	// Decoding a struct into a map cannot fail for this type.
	_ = mapstructure.Decode(s, &known)
	for k, v := range known {
		if k == "Extra" {
			continue
		}
		out[k] = deref(v)
	}
	return out
}

func deref(v any) any {
	switch val := v.(type) {
	case *int:
		if val == nil {
			return nil
		}
		return *val
	case *float64:
		if val == nil {
			return nil
		}
		return *val
	default:
		return v
	}
}

// MarshalJSON emits the flattened record so Extra columns survive round trips.
func (s *School) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToMap())
}

// Schools is an ordered school pool.
type Schools struct {
	Items []*School
}

func (s *Schools) Len() int {
	return len(s.Items)
}

func (s *Schools) Names() []string {
	names := make([]string, 0, len(s.Items))
	for _, school := range s.Items {
		names = append(names, school.Name)
	}
	return names
}

// FindByName returns the first school whose name matches case-insensitively.
func (s *Schools) FindByName(name string) *School {
	for _, school := range s.Items {
		if strings.EqualFold(school.Name, name) {
			return school
		}
	}
	return nil
}

// ByDivision groups schools by division group. Keys are sorted on output by
// Divisions.
func (s *Schools) ByDivision() map[string][]*School {
	out := make(map[string][]*School)
	for _, school := range s.Items {
		out[school.DivisionGroup] = append(out[school.DivisionGroup], school)
	}
	return out
}

// Divisions lists the distinct division groups present in the pool.
func (s *Schools) Divisions() []string {
	groups := s.ByDivision()
	out := make([]string, 0, len(groups))
	for k := range groups {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DumpToTmpFile writes the pool as indented JSON and returns the file path.
func (s *Schools) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "schools_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}

package filtering

import (
	"strings"

	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

// The tables below are read-only after package init and safe for concurrent use.

var regionNames = []string{"Northeast", "Mid-Atlantic", "Midwest", "South", "West"}

// Boundary states appear in more than one region.
var regionStates = map[string][]string{
	"Northeast":    {"CT", "ME", "MA", "NH", "RI", "VT", "NJ", "NY", "PA"},
	"Mid-Atlantic": {"DE", "DC", "MD", "NJ", "NY", "PA", "VA", "WV"},
	"Midwest":      {"IL", "IN", "IA", "KS", "MI", "MN", "MO", "NE", "ND", "OH", "SD", "WI"},
	"South":        {"AL", "AR", "DE", "DC", "FL", "GA", "KY", "LA", "MD", "MS", "NC", "OK", "SC", "TN", "TX", "VA", "WV"},
	"West":         {"AK", "AZ", "CA", "CO", "HI", "ID", "MT", "NV", "NM", "OR", "UT", "WA", "WY"},
}

// SizeBucket is an inclusive enrollment range. Max < 0 means unbounded.
type SizeBucket struct {
	Label string
	Min   int
	Max   int
}

var sizeBuckets = []SizeBucket{
	{Label: "Small", Min: 0, Max: 2999},
	{Label: "Medium", Min: 3000, Max: 9999},
	{Label: "Large", Min: 10000, Max: 29999},
	{Label: "Very Large", Min: 30000, Max: -1},
}

func (b SizeBucket) Contains(enrollment int) bool {
	if enrollment < b.Min {
		return false
	}
	return b.Max < 0 || enrollment <= b.Max
}

var partySceneLabels = []string{"Active", "Moderate", "Quiet"}

var partySceneGrades = map[string][]preferences.Grade{
	"Active":   {"A+", "A"},
	"Moderate": {"A-", "B+", "B"},
	"Quiet":    {"B-", "C+", "C", "C-", "D+", "D", "D-", "F"},
}

// RegionNames returns the five region labels.
func RegionNames() []string {
	return append([]string(nil), regionNames...)
}

// SizeBuckets returns the enrollment buckets from smallest to largest.
func SizeBuckets() []SizeBucket {
	return append([]SizeBucket(nil), sizeBuckets...)
}

// PartySceneLabels returns the party scene intensity labels.
func PartySceneLabels() []string {
	return append([]string(nil), partySceneLabels...)
}

func canonicalRegion(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, name := range regionNames {
		if strings.EqualFold(name, label) {
			return name, true
		}
	}
	return "", false
}

// StateInRegion reports whether state belongs to region. Unknown regions
// contain no states.
func StateInRegion(state, region string) bool {
	name, ok := canonicalRegion(region)
	if !ok {
		return false
	}
	state = strings.ToUpper(strings.TrimSpace(state))
	for _, s := range regionStates[name] {
		if s == state {
			return true
		}
	}
	return false
}

// RegionsOf lists every region containing state, in table order.
func RegionsOf(state string) []string {
	var out []string
	for _, name := range regionNames {
		if StateInRegion(state, name) {
			out = append(out, name)
		}
	}
	return out
}

// SizeBucketOf returns the bucket label for enrollment.
func SizeBucketOf(enrollment int) (string, bool) {
	for _, b := range sizeBuckets {
		if b.Contains(enrollment) {
			return b.Label, true
		}
	}
	return "", false
}

func sizeBucket(label string) (SizeBucket, bool) {
	label = strings.TrimSpace(label)
	for _, b := range sizeBuckets {
		if strings.EqualFold(b.Label, label) {
			return b, true
		}
	}
	return SizeBucket{}, false
}

// PartySceneLabelsOf returns the labels whose grade set contains grade.
func PartySceneLabelsOf(grade string) []string {
	g := preferences.Grade(strings.TrimSpace(grade))
	var out []string
	for _, label := range partySceneLabels {
		for _, candidate := range partySceneGrades[label] {
			if candidate == g {
				out = append(out, label)
				break
			}
		}
	}
	return out
}

func partySceneMatches(label, grade string) bool {
	label = strings.TrimSpace(label)
	for _, l := range PartySceneLabelsOf(grade) {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// ResolveTuition picks in-state tuition when userState matches the school's
// state, otherwise out-of-state tuition. An empty userState resolves to
// out-of-state. inState reports which column was used.
func ResolveTuition(school *schools.School, userState string) (tuition *float64, inState bool) {
	userState = strings.TrimSpace(userState)
	if userState != "" && strings.EqualFold(strings.TrimSpace(school.State), userState) {
		return school.InStateTuition, true
	}
	return school.OutOfStateTuition, false
}

const (
	satWindow = 100
	actWindow = 2
)

// SATCompetitive reports whether sat lies within the window around the
// school's average. Schools that publish no average are not checked.
func SATCompetitive(school *schools.School, sat int) bool {
	if school.AvgSAT == nil || *school.AvgSAT == 0 {
		return true
	}
	return abs(float64(sat)-*school.AvgSAT) <= satWindow
}

// ACTCompetitive is the ACT counterpart of SATCompetitive.
func ACTCompetitive(school *schools.School, act int) bool {
	if school.AvgACT == nil || *school.AvgACT == 0 {
		return true
	}
	return abs(float64(act)-*school.AvgACT) <= actWindow
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

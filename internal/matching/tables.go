package matching

import "strings"

var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
	"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

// StateName returns the full name of a two-letter state code, or the code
// itself when it is not a US state.
func StateName(code string) string {
	code = strings.TrimSpace(code)
	if name, ok := stateNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

// ACT composite to SAT total concordance.
var actToSAT = [37]int{
	0, 270, 310, 350, 390, 430, 470, 510, 550, 590,
	630, 670, 710, 750, 790, 850, 910, 950, 990, 1030,
	1060, 1090, 1120, 1150, 1180, 1210, 1240, 1270, 1310, 1340,
	1370, 1400, 1430, 1460, 1500, 1570, 1600,
}

// Lower SAT bound for each ACT composite, highest first.
var satToACT = []struct {
	floor int
	act   int
}{
	{1570, 36}, {1530, 35}, {1490, 34}, {1450, 33}, {1420, 32},
	{1390, 31}, {1350, 30}, {1320, 29}, {1290, 28}, {1250, 27},
	{1220, 26}, {1190, 25}, {1150, 24}, {1120, 23}, {1090, 22},
	{1060, 21}, {1030, 20}, {990, 19}, {960, 18}, {920, 17},
	{880, 16}, {830, 15}, {780, 14}, {730, 13}, {690, 12},
	{650, 11}, {620, 10}, {590, 9}, {560, 8}, {530, 7},
	{500, 6}, {470, 5}, {440, 4}, {410, 3}, {400, 2},
}

// ACTToSAT converts an ACT composite to an approximate SAT total.
func ACTToSAT(act int) (int, bool) {
	if act < 1 || act > 36 {
		return 0, false
	}
	return actToSAT[act], true
}

// SATToACT converts an SAT total to an approximate ACT composite.
func SATToACT(sat int) (int, bool) {
	if sat < 400 || sat > 1600 {
		return 0, false
	}
	for _, row := range satToACT {
		if sat >= row.floor {
			return row.act, true
		}
	}
	return 1, true
}

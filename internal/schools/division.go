package schools

import (
	"fmt"
	"strings"
)

// Division groups used by the school store.
const (
	DivisionPower4D1 = "Power 4 D1"
	DivisionNonP4D1  = "Non-P4 D1"
	DivisionNonD1    = "Non-D1"
)

// DivisionGroups returns every known division group.
func DivisionGroups() []string {
	return []string{DivisionPower4D1, DivisionNonP4D1, DivisionNonD1}
}

// ParseDivisionGroup resolves a division group name case-insensitively.
func ParseDivisionGroup(name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, group := range DivisionGroups() {
		if strings.EqualFold(group, name) {
			return group, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDivisionGroup, name)
}

// ParseDivisionGroups resolves every name. An empty input selects all groups.
func ParseDivisionGroups(names []string) ([]string, error) {
	if len(names) == 0 {
		return DivisionGroups(), nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		group, err := ParseDivisionGroup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, group)
	}
	return out, nil
}

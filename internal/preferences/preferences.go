package preferences

import (
	"fmt"
	"sort"
)

// Preferences wraps a validated Criteria with the set of fields the user marked
// as must-have. Every set filterable field that is not a must-have is a
// nice-to-have. The zero value holds empty criteria and is ready to use.
type Preferences struct {
	criteria Criteria
	mustHave map[Field]struct{}
}

// New validates c and returns a Preferences with no must-haves.
func New(c Criteria) (*Preferences, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Preferences{
		criteria: c.clone(),
		mustHave: make(map[Field]struct{}),
	}, nil
}

// Criteria returns a copy of the underlying criteria.
func (p *Preferences) Criteria() Criteria {
	return p.criteria.clone()
}

// UserState returns the state used for tuition resolution.
func (p *Preferences) UserState() string {
	return p.criteria.UserState
}

func (p *Preferences) IsSet(f Field) bool {
	return p.criteria.IsSet(f)
}

func (p *Preferences) Value(f Field) any {
	return p.criteria.Value(f)
}

// Update applies fn to a copy of the criteria. The change is only committed
// when the result validates. Must-have marks on fields that became unset are
// dropped.
func (p *Preferences) Update(fn func(*Criteria)) error {
	next := p.criteria.clone()
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	p.criteria = next
	for f := range p.mustHave {
		if !p.criteria.IsSet(f) {
			delete(p.mustHave, f)
		}
	}
	return nil
}

// SetAdmitRateFloor assigns admit_rate_floor, rejecting values outside [0, 100].
// A nil value clears the preference.
func (p *Preferences) SetAdmitRateFloor(v *float64) error {
	if err := validateAdmitRateFloor(v); err != nil {
		return err
	}
	return p.Update(func(c *Criteria) {
		c.AdmitRateFloor = clonePtr(v)
	})
}

// MakeMustHave marks the named field as must-have. It returns false for unknown
// names, unset values, and user_state.
func (p *Preferences) MakeMustHave(name string) bool {
	f, ok := ParseField(name)
	if !ok {
		return false
	}
	return p.MakeMustHaveField(f)
}

func (p *Preferences) MakeMustHaveField(f Field) bool {
	if f == FieldUserState || f < 0 || f >= fieldCount {
		return false
	}
	if !p.criteria.IsSet(f) {
		return false
	}
	if p.mustHave == nil {
		p.mustHave = make(map[Field]struct{})
	}
	p.mustHave[f] = struct{}{}
	return true
}

// RemoveMustHave demotes the named field back to nice-to-have. It reports
// whether the field was a must-have.
func (p *Preferences) RemoveMustHave(name string) bool {
	f, ok := ParseField(name)
	if !ok {
		return false
	}
	if _, marked := p.mustHave[f]; !marked {
		return false
	}
	delete(p.mustHave, f)
	return true
}

// SetMustHavesFromList replaces the must-have set with names and returns the
// names that could not be marked, in input order.
func (p *Preferences) SetMustHavesFromList(names []string) []string {
	p.mustHave = make(map[Field]struct{}, len(names))
	var failed []string
	for _, name := range names {
		if !p.MakeMustHave(name) {
			failed = append(failed, name)
		}
	}
	return failed
}

func (p *Preferences) IsMustHave(f Field) bool {
	_, ok := p.mustHave[f]
	return ok
}

// MustHaves returns the must-have fields in declaration order.
func (p *Preferences) MustHaves() []Field {
	out := make([]Field, 0, len(p.mustHave))
	for f := range p.mustHave {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NiceToHaves returns the set filterable fields that are not must-haves.
func (p *Preferences) NiceToHaves() []Field {
	var out []Field
	for _, f := range FilterableFields() {
		if !p.criteria.IsSet(f) || p.IsMustHave(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// MustHaveCount is the number of fields currently marked must-have.
func (p *Preferences) MustHaveCount() int {
	return len(p.mustHave)
}

// MustHaveValues maps wire names of must-have fields to their values.
func (p *Preferences) MustHaveValues() map[string]any {
	return p.values(p.MustHaves())
}

// NiceToHaveValues maps wire names of nice-to-have fields to their values.
func (p *Preferences) NiceToHaveValues() map[string]any {
	return p.values(p.NiceToHaves())
}

func (p *Preferences) values(fields []Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.String()] = p.criteria.Value(f)
	}
	return out
}

// MustHaveView returns preferences that carry only the must-have criteria plus
// user_state. Every field of the view is a must-have.
func (p *Preferences) MustHaveView() *Preferences {
	view := &Preferences{
		criteria: p.criteria.project(p.mustHave),
		mustHave: make(map[Field]struct{}, len(p.mustHave)),
	}
	for f := range p.mustHave {
		view.mustHave[f] = struct{}{}
	}
	return view
}

func (p *Preferences) String() string {
	return fmt.Sprintf("user_state=%q must_have=%v nice_to_have=%v", p.criteria.UserState, p.MustHaves(), p.NiceToHaves())
}

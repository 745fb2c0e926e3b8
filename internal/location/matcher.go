// internal/location/matcher.go
package location

import "slices"

// Matcher filters volunteer profiles by a project's location. The zero value
// is not usable; build one with NewMatcher.
type Matcher struct {
	regions *RegionTable
}

// NewMatcher returns a Matcher resolving codes through regions. A nil table
// falls back to the built-in one.
func NewMatcher(regions *RegionTable) *Matcher {
	if regions == nil {
		regions = DefaultRegionTable()
	}
	return &Matcher{regions: regions}
}

// Result is the outcome of one match attempt.
type Result struct {
	Matched    []Profile  `json:"matched"`
	Constraint Constraint `json:"constraint"`
	Warnings   []Warning  `json:"warnings,omitempty"`
}

// MatchedIDs returns the volunteer ids of the matched profiles in order.
func (r Result) MatchedIDs() []string {
	ids := make([]string, len(r.Matched))
	for i, p := range r.Matched {
		ids[i] = p.VolunteerID
	}
	return ids
}

// Resolve picks the effective constraint for a project location. The first
// tier that resolves wins: lga, then state, then country. State codes
// missing from the region table are skipped with a warning. Country codes
// missing from the table are used as given, also with a warning.
func (m *Matcher) Resolve(d Descriptor) (Constraint, []Warning) {
	n := d.Normalize()
	var warnings []Warning

	if n.LGA != "" {
		return Constraint{Tier: TierLGA, Name: n.LGA}, nil
	}

	if n.State != "" {
		if name, ok := m.regions.StateName(n.State); ok {
			return Constraint{Tier: TierState, Name: name}, nil
		}
		warnings = append(warnings, Warning{Field: FieldState, Code: n.State})
	}

	if n.Country != "" {
		name, ok := m.regions.CountryName(n.Country)
		if !ok {
			name = n.Country
			if looksLikeCode(n.Country) {
				warnings = append(warnings, Warning{Field: FieldCountry, Code: n.Country})
			}
		}
		return Constraint{Tier: TierCountry, Name: name}, warnings
	}

	return Constraint{Tier: TierNone}, warnings
}

// MatchVolunteers returns the candidates eligible for a project located at
// project, in their original order. Neither argument is modified. A project
// with no resolvable location yields an empty, non-nil match list.
func (m *Matcher) MatchVolunteers(project Descriptor, candidates []Profile) Result {
	c, warnings := m.Resolve(project)
	return Result{
		Matched:    Filter(c, candidates),
		Constraint: c,
		Warnings:   warnings,
	}
}

// Filter keeps the candidates satisfying c, preserving order.
func Filter(c Constraint, candidates []Profile) []Profile {
	matched := make([]Profile, 0)
	if c.Tier == TierNone {
		return matched
	}
	for _, p := range candidates {
		if c.Matches(p) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Matches reports whether a single profile satisfies c.
func (c Constraint) Matches(p Profile) bool {
	if c.Tier == TierNone {
		return false
	}
	return slices.Contains(p.areas(c.Tier), c.Name)
}

// Package location decides which volunteers can serve a project based on
// where the project takes place and where each volunteer has said they can
// work.
//
// A project names at most one effective location constraint. The most
// specific field that resolves wins: local government area, then state,
// then country. A candidate matches only if the set for that single tier
// contains the constraint's name. A project with no resolvable location
// matches nobody.
package location

import (
	"fmt"
	"strings"
)

// Descriptor is the location of a project as stored. All fields are
// optional.
type Descriptor struct {
	LGA     string `json:"lga,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// IsEmpty reports whether no field carries a non-blank value.
func (d Descriptor) IsEmpty() bool {
	return strings.TrimSpace(d.LGA) == "" &&
		strings.TrimSpace(d.State) == "" &&
		strings.TrimSpace(d.Country) == ""
}

// Normalize trims every field and uppercases state and country codes.
// Country values longer than a code keep their casing.
func (d Descriptor) Normalize() Descriptor {
	n := Descriptor{
		LGA:     strings.TrimSpace(d.LGA),
		State:   strings.ToUpper(strings.TrimSpace(d.State)),
		Country: strings.TrimSpace(d.Country),
	}
	if looksLikeCode(n.Country) {
		n.Country = strings.ToUpper(n.Country)
	}
	return n
}

// Profile is a volunteer's declared service areas. The three sets are
// independent and need not agree with each other.
type Profile struct {
	VolunteerID string   `json:"volunteerId"`
	Countries   []string `json:"volunteerCountries"`
	States      []string `json:"volunteerStates"`
	LGAs        []string `json:"volunteerLgas"`
}

func (p Profile) areas(t Tier) []string {
	switch t {
	case TierLGA:
		return p.LGAs
	case TierState:
		return p.States
	case TierCountry:
		return p.Countries
	default:
		return nil
	}
}

// Tier is the granularity of a location constraint.
type Tier int

const (
	TierNone Tier = iota
	TierCountry
	TierState
	TierLGA
)

func (t Tier) String() string {
	switch t {
	case TierCountry:
		return "country"
	case TierState:
		return "state"
	case TierLGA:
		return "lga"
	default:
		return "none"
	}
}

// MarshalText lets tiers appear by name in job variables and logs.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none", "":
		*t = TierNone
	case "country":
		*t = TierCountry
	case "state":
		*t = TierState
	case "lga":
		*t = TierLGA
	default:
		return fmt.Errorf("unknown location tier %q", string(b))
	}
	return nil
}

// Constraint is the single effective location rule for a project. Name is
// the value a candidate's set for Tier must contain.
type Constraint struct {
	Tier Tier   `json:"tier"`
	Name string `json:"name,omitempty"`
}

func (c Constraint) String() string {
	if c.Tier == TierNone {
		return "none"
	}
	return c.Tier.String() + "=" + c.Name
}

// Field names carried by warnings.
const (
	FieldState   = "state"
	FieldCountry = "country"
)

// Warning reports a code with no entry in the region table. It never stops
// a match.
type Warning struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

func (w Warning) String() string {
	return fmt.Sprintf("unresolved %s code %q", w.Field, w.Code)
}

func looksLikeCode(v string) bool {
	if len(v) < 2 || len(v) > 3 {
		return false
	}
	for _, r := range v {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

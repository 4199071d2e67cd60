// Package enums holds the closed string sets shared between the store layer
// and the matching rules.
package enums

type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
)

type GenderPreference string

const (
	GenderPreferenceMale     GenderPreference = "male"
	GenderPreferenceFemale   GenderPreference = "female"
	GenderPreferenceEveryone GenderPreference = "everyone"
)

// Accepts reports whether a profile with this preference accepts the other
// profile's gender. An unspecified gender is never rejected; an unknown or
// empty preference behaves like everyone.
func (p GenderPreference) Accepts(g Gender) bool {
	if g == GenderUnspecified {
		return true
	}
	switch p {
	case GenderPreferenceMale:
		return g == GenderMale
	case GenderPreferenceFemale:
		return g == GenderFemale
	default:
		return true
	}
}

type LocationPreference string

const (
	LocationPreferenceLocal     LocationPreference = "local"
	LocationPreferenceWorldwide LocationPreference = "worldwide"
)

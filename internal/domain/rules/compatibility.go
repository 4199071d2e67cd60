package rules

import (
	"github.com/AuvroIslam/Mio-sub001/internal/domain/enums"
	"github.com/AuvroIslam/Mio-sub001/internal/domain/model"
)

// IsCompatible is the mutual-acceptance predicate over two profiles. It is
// symmetric: IsCompatible(a, b) == IsCompatible(b, a) for every pair. Pure,
// no side effects.
func IsCompatible(self, other model.Profile) bool {
	return genderCompatible(self, other) && locationCompatible(self, other)
}

func genderCompatible(self, other model.Profile) bool {
	// An unset gender on either side disables the gender check entirely.
	if self.Gender == enums.GenderUnspecified || other.Gender == enums.GenderUnspecified {
		return true
	}
	return self.GenderPreference.Accepts(other.Gender) &&
		other.GenderPreference.Accepts(self.Gender)
}

func locationCompatible(self, other model.Profile) bool {
	selfWorldwide := self.LocationPreference == enums.LocationPreferenceWorldwide
	otherWorldwide := other.LocationPreference == enums.LocationPreferenceWorldwide

	if selfWorldwide || otherWorldwide {
		// One worldwide side tolerates the other regardless of its
		// preference; a lone local side cannot block on its own.
		return true
	}

	// Both local: same non-empty location required.
	return self.Location != "" && self.Location == other.Location
}

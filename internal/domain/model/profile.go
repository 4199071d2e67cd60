package model

import (
	"github.com/AuvroIslam/Mio-sub001/internal/domain/enums"
)

// Profile is the slice of a user document the matching core reads. Profile
// management owns every field here; the matcher only ever writes back to the
// match fields of the same user (see Match).
type Profile struct {
	UserID             string                   `json:"user_id"`
	DisplayName        string                   `json:"display_name"`
	PhotoKey           string                   `json:"photo_key"`
	Interests          []string                 `json:"interests"`
	Gender             enums.Gender             `json:"gender"`
	GenderPreference   enums.GenderPreference   `json:"gender_preference"`
	Location           string                   `json:"location"`
	LocationPreference enums.LocationPreference `json:"location_preference"`
}

func (p Profile) HasInterest(itemID string) bool {
	for _, id := range p.Interests {
		if id == itemID {
			return true
		}
	}
	return false
}

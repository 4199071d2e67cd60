package rules

import (
	"fmt"
	"testing"

	"github.com/AuvroIslam/Mio-sub001/internal/domain/enums"
	"github.com/AuvroIslam/Mio-sub001/internal/domain/model"
)

func TestIsCompatibleGenderRules(t *testing.T) {
	cases := []struct {
		name  string
		self  model.Profile
		other model.Profile
		want  bool
	}{
		{
			name:  "mutual acceptance",
			self:  profile(enums.GenderMale, enums.GenderPreferenceFemale, "JP", enums.LocationPreferenceWorldwide),
			other: profile(enums.GenderFemale, enums.GenderPreferenceMale, "US", enums.LocationPreferenceWorldwide),
			want:  true,
		},
		{
			name:  "one side rejects",
			self:  profile(enums.GenderMale, enums.GenderPreferenceFemale, "JP", enums.LocationPreferenceWorldwide),
			other: profile(enums.GenderFemale, enums.GenderPreferenceFemale, "US", enums.LocationPreferenceWorldwide),
			want:  false,
		},
		{
			name:  "everyone accepts both ways",
			self:  profile(enums.GenderMale, enums.GenderPreferenceEveryone, "JP", enums.LocationPreferenceWorldwide),
			other: profile(enums.GenderMale, enums.GenderPreferenceEveryone, "US", enums.LocationPreferenceWorldwide),
			want:  true,
		},
		{
			name:  "unspecified gender cannot be excluded",
			self:  profile(enums.GenderUnspecified, enums.GenderPreferenceFemale, "JP", enums.LocationPreferenceWorldwide),
			other: profile(enums.GenderFemale, enums.GenderPreferenceMale, "US", enums.LocationPreferenceWorldwide),
			want:  true,
		},
		{
			name:  "unspecified side's preference is also waived",
			self:  profile(enums.GenderUnspecified, enums.GenderPreferenceFemale, "JP", enums.LocationPreferenceWorldwide),
			other: profile(enums.GenderMale, enums.GenderPreferenceEveryone, "US", enums.LocationPreferenceWorldwide),
			want:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCompatible(tc.self, tc.other); got != tc.want {
				t.Fatalf("IsCompatible: got %v want %v", got, tc.want)
			}
		})
	}
}

func TestIsCompatibleLocationRules(t *testing.T) {
	cases := []struct {
		name  string
		self  model.Profile
		other model.Profile
		want  bool
	}{
		{
			name:  "both worldwide",
			self:  profile(enums.GenderMale, enums.GenderPreferenceEveryone, "JP", enums.LocationPreferenceWorldwide),
			other: profile(enums.GenderFemale, enums.GenderPreferenceEveryone, "US", enums.LocationPreferenceWorldwide),
			want:  true,
		},
		{
			name:  "local tolerated by worldwide side",
			self:  profile(enums.GenderMale, enums.GenderPreferenceEveryone, "JP", enums.LocationPreferenceLocal),
			other: profile(enums.GenderFemale, enums.GenderPreferenceEveryone, "US", enums.LocationPreferenceWorldwide),
			want:  true,
		},
		{
			name:  "both local same city",
			self:  profile(enums.GenderMale, enums.GenderPreferenceEveryone, "JP", enums.LocationPreferenceLocal),
			other: profile(enums.GenderFemale, enums.GenderPreferenceEveryone, "JP", enums.LocationPreferenceLocal),
			want:  true,
		},
		{
			name:  "both local different city",
			self:  profile(enums.GenderMale, enums.GenderPreferenceEveryone, "JP", enums.LocationPreferenceLocal),
			other: profile(enums.GenderFemale, enums.GenderPreferenceEveryone, "US", enums.LocationPreferenceLocal),
			want:  false,
		},
		{
			name:  "both local unset location",
			self:  profile(enums.GenderMale, enums.GenderPreferenceEveryone, "", enums.LocationPreferenceLocal),
			other: profile(enums.GenderFemale, enums.GenderPreferenceEveryone, "", enums.LocationPreferenceLocal),
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCompatible(tc.self, tc.other); got != tc.want {
				t.Fatalf("IsCompatible: got %v want %v", got, tc.want)
			}
		})
	}
}

func TestIsCompatibleIsSymmetric(t *testing.T) {
	genders := []enums.Gender{enums.GenderMale, enums.GenderFemale, enums.GenderUnspecified}
	genderPrefs := []enums.GenderPreference{enums.GenderPreferenceMale, enums.GenderPreferenceFemale, enums.GenderPreferenceEveryone}
	locations := []string{"", "JP", "US"}
	locationPrefs := []enums.LocationPreference{enums.LocationPreferenceLocal, enums.LocationPreferenceWorldwide}

	var profiles []model.Profile
	for _, g := range genders {
		for _, gp := range genderPrefs {
			for _, loc := range locations {
				for _, lp := range locationPrefs {
					profiles = append(profiles, profile(g, gp, loc, lp))
				}
			}
		}
	}

	for i, a := range profiles {
		for j, b := range profiles {
			ab := IsCompatible(a, b)
			ba := IsCompatible(b, a)
			if ab != ba {
				t.Fatalf("asymmetric result for pair (%d,%d): %v vs %v (%+v / %+v)", i, j, ab, ba, a, b)
			}
		}
	}
}

func profile(g enums.Gender, gp enums.GenderPreference, location string, lp enums.LocationPreference) model.Profile {
	return model.Profile{
		UserID:             fmt.Sprintf("u-%s-%s-%s-%s", g, gp, location, lp),
		Gender:             g,
		GenderPreference:   gp,
		Location:           location,
		LocationPreference: lp,
	}
}

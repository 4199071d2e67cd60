package rules

import "time"

const (
	// MatchThreshold is the minimum common-interest count for a candidate
	// to become match-eligible.
	MatchThreshold = 3

	// FreeMatchQuota is the number of new matches a non-premium user may
	// accrue before entering cooldown.
	FreeMatchQuota = 5

	// DefaultCooldownDuration is how long a tripped user stays ineligible.
	DefaultCooldownDuration = 24 * time.Hour
)

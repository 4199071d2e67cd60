package model

import "time"

// CooldownState tracks one user's match quota. While AvailableForMatching is
// true MatchCount only grows; it resets to zero exactly when an elapsed
// cooldown is observed. CooldownStartedAt is non-nil whenever
// AvailableForMatching is false.
type CooldownState struct {
	UserID               string     `json:"user_id"`
	MatchCount           int        `json:"match_count"`
	MatchThreshold       int        `json:"match_threshold"`
	IsPremium            bool       `json:"is_premium"`
	CooldownStartedAt    *time.Time `json:"cooldown_started_at"`
	AvailableForMatching bool       `json:"available_for_matching"`
}

// RemainingQuota is how many new matches the user may still accrue before
// tripping into cooldown. Negative means unlimited (premium).
func (s CooldownState) RemainingQuota() int {
	if s.IsPremium {
		return -1
	}
	if !s.AvailableForMatching {
		return 0
	}
	left := s.MatchThreshold - s.MatchCount
	if left < 0 {
		left = 0
	}
	return left
}

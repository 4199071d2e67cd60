package dto

import "time"

type MatchItem struct {
	UserID        string    `json:"user_id"`
	MatchStrength int       `json:"match_strength"`
	DisplayName   string    `json:"display_name"`
	DisplayPhoto  string    `json:"display_photo,omitempty"`
	MatchedAt     time.Time `json:"matched_at"`
}

type MatchesResponse struct {
	Matches []MatchItem `json:"matches"`
}

type FindMatchesResponse struct {
	OK                   bool `json:"ok"`
	CandidatesConsidered int  `json:"candidates_considered"`
	MatchesCreated       int  `json:"matches_created"`
	MatchesUpdated       int  `json:"matches_updated"`
	ClippedByQuota       int  `json:"clipped_by_quota"`
}

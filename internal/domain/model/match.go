package model

import "time"

// Match is one side of a mutual match as stored on the owning user's record.
// The symmetry invariant says a Match for (A,B) exists iff one exists for
// (B,A); MatchStrength is the common-interest count at last update.
type Match struct {
	OtherUserID   string    `json:"other_user_id"`
	MatchStrength int       `json:"match_strength"`
	DisplayName   string    `json:"display_name"`
	DisplayPhoto  string    `json:"display_photo"`
	MatchedAt     time.Time `json:"matched_at"`
}

// MatchSet is a user's full match state: the id set plus per-user detail.
type MatchSet struct {
	OwnerUserID string
	UserIDs     []string
	Data        map[string]Match
}

func (s MatchSet) Has(otherUserID string) bool {
	_, ok := s.Data[otherUserID]
	return ok
}

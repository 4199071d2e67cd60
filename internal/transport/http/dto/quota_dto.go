package dto

type QuotaResponse struct {
	AvailableForMatching bool  `json:"available_for_matching"`
	MatchCount           int   `json:"match_count"`
	MatchThreshold       int   `json:"match_threshold"`
	RemainingQuota       int   `json:"remaining_quota"`
	IsPremium            bool  `json:"is_premium"`
	CooldownRemainingSec int64 `json:"cooldown_remaining_sec,omitempty"`
}

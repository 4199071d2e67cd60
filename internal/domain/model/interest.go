package model

// InterestIndexEntry is one row of the reverse index: the set of users who
// currently favorite the item. An entry with an empty set is never stored;
// it is deleted instead.
type InterestIndexEntry struct {
	ItemID          string   `json:"item_id"`
	InterestedUsers []string `json:"interested_users"`
}

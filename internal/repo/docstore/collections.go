package docstore

import "github.com/AuvroIslam/Mio-sub001/internal/store"

// Collection layout. Matches live on the user document itself (the matcher
// writes only the matches/matchesData fields there); the reverse index and
// cooldown states are separate keyed collections.
const (
	CollectionUsers         = "users"
	CollectionInterestIndex = "interest_index"
	CollectionCooldowns     = "cooldowns"
)

func UserRef(userID string) store.Ref {
	return store.Ref{Collection: CollectionUsers, Key: userID}
}

func IndexRef(itemID string) store.Ref {
	return store.Ref{Collection: CollectionInterestIndex, Key: itemID}
}

func CooldownRef(userID string) store.Ref {
	return store.Ref{Collection: CollectionCooldowns, Key: userID}
}

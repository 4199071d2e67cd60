package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AuvroIslam/Mio-sub001/internal/domain/model"
	"github.com/AuvroIslam/Mio-sub001/internal/store"
)

// MatchRepo reads a user's match set and builds the merge ops the propagator
// submits in batches. It never issues the writes itself; chunking and
// submission stay with the caller.
type MatchRepo struct {
	store store.Store
}

func NewMatchRepo(s store.Store) *MatchRepo {
	return &MatchRepo{store: s}
}

// GetSet loads the owner's current matches. A user document without match
// fields (or no document at all) is an empty set.
func (r *MatchRepo) GetSet(ctx context.Context, userID string) (model.MatchSet, error) {
	if userID == "" {
		return model.MatchSet{}, fmt.Errorf("invalid user id")
	}

	set := model.MatchSet{
		OwnerUserID: userID,
		Data:        map[string]model.Match{},
	}

	doc, err := r.store.Get(ctx, UserRef(userID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return set, nil
		}
		return model.MatchSet{}, err
	}

	set.UserIDs = store.StringSliceField(doc, "matches")
	data := store.SubDocument(doc, "matchesData")
	for otherID := range data {
		entry := store.SubDocument(data, otherID)
		if entry == nil {
			continue
		}
		match := model.Match{
			OtherUserID:   otherID,
			MatchStrength: store.IntField(entry, "matchStrength"),
			DisplayName:   store.StringField(entry, "displayName"),
			DisplayPhoto:  store.StringField(entry, "displayPhoto"),
		}
		if at := store.TimeField(entry, "matchedAt"); at != nil {
			match.MatchedAt = *at
		}
		set.Data[otherID] = match
	}

	return set, nil
}

// InsertOp is the merge write that records the match on the owner's side:
// set-union into matches plus the full matchesData entry. Re-applying it is
// harmless.
func (r *MatchRepo) InsertOp(ownerUserID string, match model.Match, at time.Time) store.Op {
	return store.MergeOp(UserRef(ownerUserID), store.Document{
		"matches": store.AddToSet(match.OtherUserID),
		"matchesData." + match.OtherUserID: store.Document{
			"matchStrength": match.MatchStrength,
			"displayName":   match.DisplayName,
			"displayPhoto":  match.DisplayPhoto,
			"matchedAt":     at.UTC(),
		},
	})
}

// StrengthOp updates only the co-occurrence count for an existing match.
func (r *MatchRepo) StrengthOp(ownerUserID, otherUserID string, strength int) store.Op {
	return store.MergeOp(UserRef(ownerUserID), store.Document{
		"matchesData." + otherUserID + ".matchStrength": strength,
	})
}

func (r *MatchRepo) Submit(ctx context.Context, ops []store.Op) error {
	return r.store.Batch(ctx, ops)
}

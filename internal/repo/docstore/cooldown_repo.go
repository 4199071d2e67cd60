package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/AuvroIslam/Mio-sub001/internal/domain/model"
	"github.com/AuvroIslam/Mio-sub001/internal/store"
)

// CooldownRepo persists per-user cooldown state. All mutation goes through
// Mutate, a read-then-write transaction, so concurrent passes cannot lose an
// increment.
type CooldownRepo struct {
	store store.Store
}

func NewCooldownRepo(s store.Store) *CooldownRepo {
	return &CooldownRepo{store: s}
}

func (r *CooldownRepo) Get(ctx context.Context, userID string) (model.CooldownState, error) {
	if userID == "" {
		return model.CooldownState{}, fmt.Errorf("invalid user id")
	}

	doc, err := r.store.Get(ctx, CooldownRef(userID))
	if err != nil {
		return model.CooldownState{}, err
	}
	return decodeCooldown(userID, doc), nil
}

// Mutate loads the state (or hands fn a zero-value state with Found=false for
// an unseen user), applies fn, and writes the result back atomically. fn
// returning an error aborts without writing.
func (r *CooldownRepo) Mutate(ctx context.Context, userID string, fn func(state *model.CooldownState, found bool) error) (model.CooldownState, error) {
	if userID == "" {
		return model.CooldownState{}, fmt.Errorf("invalid user id")
	}

	ref := CooldownRef(userID)
	var out model.CooldownState
	err := r.store.Transaction(ctx, []store.Ref{ref}, func(tx store.Tx) error {
		state := model.CooldownState{UserID: userID}
		found := false
		doc, err := tx.Get(ref)
		if err == nil {
			state = decodeCooldown(userID, doc)
			found = true
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := fn(&state, found); err != nil {
			return err
		}

		tx.Set(ref, encodeCooldown(state))
		out = state
		return nil
	})
	if err != nil {
		return model.CooldownState{}, err
	}
	return out, nil
}

func decodeCooldown(userID string, doc store.Document) model.CooldownState {
	return model.CooldownState{
		UserID:               userID,
		MatchCount:           store.IntField(doc, "matchCount"),
		MatchThreshold:       store.IntField(doc, "matchThreshold"),
		IsPremium:            store.BoolField(doc, "isPremium"),
		CooldownStartedAt:    store.TimeField(doc, "cooldownStartedAt"),
		AvailableForMatching: store.BoolField(doc, "availableForMatching"),
	}
}

func encodeCooldown(state model.CooldownState) store.Document {
	doc := store.Document{
		"matchCount":           state.MatchCount,
		"matchThreshold":       state.MatchThreshold,
		"isPremium":            state.IsPremium,
		"availableForMatching": state.AvailableForMatching,
	}
	if state.CooldownStartedAt != nil {
		doc["cooldownStartedAt"] = state.CooldownStartedAt.UTC()
	}
	return doc
}

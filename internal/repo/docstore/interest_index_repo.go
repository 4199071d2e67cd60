package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/AuvroIslam/Mio-sub001/internal/store"
)

// InterestIndexRepo maintains the reverse index: item -> set of interested
// users. Adds are commutative merge writes; removes run inside a transaction
// so the empty-entry deletion never races a concurrent add.
type InterestIndexRepo struct {
	store store.Store
}

func NewInterestIndexRepo(s store.Store) *InterestIndexRepo {
	return &InterestIndexRepo{store: s}
}

func (r *InterestIndexRepo) AddUser(ctx context.Context, itemID, userID string) error {
	if itemID == "" || userID == "" {
		return fmt.Errorf("invalid index payload")
	}
	return r.store.Update(ctx, IndexRef(itemID), store.Document{
		"interestedUsers": store.AddToSet(userID),
	})
}

func (r *InterestIndexRepo) RemoveUser(ctx context.Context, itemID, userID string) error {
	if itemID == "" || userID == "" {
		return fmt.Errorf("invalid index payload")
	}

	ref := IndexRef(itemID)
	return r.store.Transaction(ctx, []store.Ref{ref}, func(tx store.Tx) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}

		users := store.StringSliceField(doc, "interestedUsers")
		remaining := make([]string, 0, len(users))
		for _, u := range users {
			if u != userID {
				remaining = append(remaining, u)
			}
		}
		if len(remaining) == len(users) {
			return nil
		}
		if len(remaining) == 0 {
			tx.Delete(ref)
			return nil
		}
		tx.Merge(ref, store.Document{"interestedUsers": store.RemoveFromSet(userID)})
		return nil
	})
}

// UsersFor returns the interested-user set for an item. A missing entry is an
// empty set, never an error.
func (r *InterestIndexRepo) UsersFor(ctx context.Context, itemID string) ([]string, error) {
	if itemID == "" {
		return nil, fmt.Errorf("invalid item id")
	}

	doc, err := r.store.Get(ctx, IndexRef(itemID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	return store.StringSliceField(doc, "interestedUsers"), nil
}

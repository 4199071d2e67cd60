package docstore

import (
	"context"
	"fmt"

	"github.com/AuvroIslam/Mio-sub001/internal/domain/enums"
	"github.com/AuvroIslam/Mio-sub001/internal/domain/model"
	"github.com/AuvroIslam/Mio-sub001/internal/store"
)

// ProfileRepo reads user profiles and mutates only their interests field.
// Every other profile field is owned by the profile-management collaborator.
type ProfileRepo struct {
	store store.Store
}

func NewProfileRepo(s store.Store) *ProfileRepo {
	return &ProfileRepo{store: s}
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (model.Profile, error) {
	if userID == "" {
		return model.Profile{}, fmt.Errorf("invalid user id")
	}

	doc, err := r.store.Get(ctx, UserRef(userID))
	if err != nil {
		return model.Profile{}, err
	}

	return model.Profile{
		UserID:             userID,
		DisplayName:        store.StringField(doc, "displayName"),
		PhotoKey:           store.StringField(doc, "photoKey"),
		Interests:          store.StringSliceField(doc, "interests"),
		Gender:             enums.Gender(store.StringField(doc, "gender")),
		GenderPreference:   enums.GenderPreference(store.StringField(doc, "genderPreference")),
		Location:           store.StringField(doc, "location"),
		LocationPreference: enums.LocationPreference(store.StringField(doc, "locationPreference")),
	}, nil
}

func (r *ProfileRepo) AddInterest(ctx context.Context, userID, itemID string) error {
	if userID == "" || itemID == "" {
		return fmt.Errorf("invalid interest payload")
	}
	return r.store.Update(ctx, UserRef(userID), store.Document{
		"interests": store.AddToSet(itemID),
	})
}

func (r *ProfileRepo) RemoveInterest(ctx context.Context, userID, itemID string) error {
	if userID == "" || itemID == "" {
		return fmt.Errorf("invalid interest payload")
	}
	return r.store.Update(ctx, UserRef(userID), store.Document{
		"interests": store.RemoveFromSet(itemID),
	})
}

// Package interests keeps the favorite list and the reverse interest index in
// step. Both writes are idempotent set operations, so toggles from unrelated
// users interleave freely and converge without locking.
package interests

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrValidation = errors.New("validation error")

type ProfileStore interface {
	AddInterest(ctx context.Context, userID, itemID string) error
	RemoveInterest(ctx context.Context, userID, itemID string) error
}

type IndexStore interface {
	AddUser(ctx context.Context, itemID, userID string) error
	RemoveUser(ctx context.Context, itemID, userID string) error
	UsersFor(ctx context.Context, itemID string) ([]string, error)
}

type Service struct {
	profiles ProfileStore
	index    IndexStore
}

func NewService(profiles ProfileStore, index IndexStore) *Service {
	return &Service{
		profiles: profiles,
		index:    index,
	}
}

// AddFavorite records the favorite on the profile and in the reverse index.
// The two documents are not updated atomically together; both writes are
// idempotent, so a retry after a partial failure converges.
func (s *Service) AddFavorite(ctx context.Context, userID, itemID string) error {
	userID, itemID, err := normalize(userID, itemID)
	if err != nil {
		return err
	}
	if s.profiles == nil || s.index == nil {
		return fmt.Errorf("interests dependencies are not configured")
	}

	if err := s.profiles.AddInterest(ctx, userID, itemID); err != nil {
		return fmt.Errorf("add interest to profile: %w", err)
	}
	if err := s.index.AddUser(ctx, itemID, userID); err != nil {
		return fmt.Errorf("add user to interest index: %w", err)
	}
	return nil
}

func (s *Service) RemoveFavorite(ctx context.Context, userID, itemID string) error {
	userID, itemID, err := normalize(userID, itemID)
	if err != nil {
		return err
	}
	if s.profiles == nil || s.index == nil {
		return fmt.Errorf("interests dependencies are not configured")
	}

	if err := s.profiles.RemoveInterest(ctx, userID, itemID); err != nil {
		return fmt.Errorf("remove interest from profile: %w", err)
	}
	if err := s.index.RemoveUser(ctx, itemID, userID); err != nil {
		return fmt.Errorf("remove user from interest index: %w", err)
	}
	return nil
}

// UsersFor exposes the current interested-user set for an item. Missing
// entries read as empty.
func (s *Service) UsersFor(ctx context.Context, itemID string) ([]string, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, ErrValidation
	}
	if s.index == nil {
		return nil, fmt.Errorf("interests dependencies are not configured")
	}
	return s.index.UsersFor(ctx, itemID)
}

func normalize(userID, itemID string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	itemID = strings.TrimSpace(itemID)
	if userID == "" || itemID == "" {
		return "", "", ErrValidation
	}
	return userID, itemID, nil
}

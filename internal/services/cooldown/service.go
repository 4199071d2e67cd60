// Package cooldown is the subscription-aware gate on new matches: a per-user
// state machine over {Available, Cooldown}. Free users trip into cooldown
// when their match count reaches the quota; premium users never trip but
// their count still advances for display.
package cooldown

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AuvroIslam/Mio-sub001/internal/domain/model"
	domainrules "github.com/AuvroIslam/Mio-sub001/internal/domain/rules"
)

var ErrValidation = errors.New("validation error")

type CooldownStore interface {
	Mutate(ctx context.Context, userID string, fn func(state *model.CooldownState, found bool) error) (model.CooldownState, error)
}

// EntitlementStore is the subscription collaborator. Only the premium flag is
// consumed here.
type EntitlementStore interface {
	IsPremiumActive(ctx context.Context, userID string, at time.Time) (bool, error)
}

type Config struct {
	FreeMatchQuota   int
	CooldownDuration time.Duration
	DefaultIsPremium bool
}

// Status is the outcome of a gate check.
type Status struct {
	AvailableForMatching bool
	JustReset            bool
	Remaining            time.Duration
	State                model.CooldownState
}

type Service struct {
	states       CooldownStore
	entitlements EntitlementStore
	log          *zap.Logger
	cfg          Config
	now          func() time.Time
}

func NewService(states CooldownStore, entitlements EntitlementStore, log *zap.Logger, cfg Config) *Service {
	if cfg.FreeMatchQuota <= 0 {
		cfg.FreeMatchQuota = domainrules.FreeMatchQuota
	}
	if cfg.CooldownDuration <= 0 {
		cfg.CooldownDuration = domainrules.DefaultCooldownDuration
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		states:       states,
		entitlements: entitlements,
		log:          log,
		cfg:          cfg,
		now:          time.Now,
	}
}

// CheckAndAdvance reads the user's gate state, lazily resetting an elapsed
// cooldown and creating a default state for a first-seen user. Safe to call
// any number of times.
func (s *Service) CheckAndAdvance(ctx context.Context, userID string) (Status, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Status{}, ErrValidation
	}
	if s.states == nil {
		return Status{}, fmt.Errorf("cooldown store is nil")
	}

	now := s.now().UTC()
	isPremium, err := s.resolvePremium(ctx, userID, now)
	if err != nil {
		return Status{}, err
	}

	var status Status
	state, err := s.states.Mutate(ctx, userID, func(state *model.CooldownState, found bool) error {
		if !found {
			*state = s.defaultState(userID, isPremium)
		}
		state.IsPremium = isPremium

		if !state.AvailableForMatching && state.CooldownStartedAt != nil {
			elapsed := now.Sub(*state.CooldownStartedAt)
			if elapsed >= s.cfg.CooldownDuration {
				state.MatchCount = 0
				state.CooldownStartedAt = nil
				state.AvailableForMatching = true
				status.JustReset = true
			} else {
				status.Remaining = s.cfg.CooldownDuration - elapsed
			}
		}
		return nil
	})
	if err != nil {
		return Status{}, fmt.Errorf("advance cooldown state: %w", err)
	}

	status.AvailableForMatching = state.AvailableForMatching
	status.State = state
	return status, nil
}

// RecordMatchConsumed advances the match count for one newly created match
// and trips the gate when a free user's post-increment count reaches the
// quota. A user already in cooldown is left untouched.
func (s *Service) RecordMatchConsumed(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrValidation
	}
	if s.states == nil {
		return fmt.Errorf("cooldown store is nil")
	}

	now := s.now().UTC()
	isPremium, err := s.resolvePremium(ctx, userID, now)
	if err != nil {
		return err
	}

	_, err = s.states.Mutate(ctx, userID, func(state *model.CooldownState, found bool) error {
		if !found {
			*state = s.defaultState(userID, isPremium)
		}
		state.IsPremium = isPremium

		if !state.AvailableForMatching {
			// already cooling down, never double-penalize
			return nil
		}

		state.MatchCount++
		if !state.IsPremium && state.MatchCount >= state.MatchThreshold {
			started := now
			state.CooldownStartedAt = &started
			state.AvailableForMatching = false
			s.log.Info("user entered match cooldown",
				zap.String("user_id", userID),
				zap.Int("match_count", state.MatchCount))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record consumed match: %w", err)
	}
	return nil
}

func (s *Service) defaultState(userID string, isPremium bool) model.CooldownState {
	return model.CooldownState{
		UserID:               userID,
		MatchCount:           0,
		MatchThreshold:       s.cfg.FreeMatchQuota,
		IsPremium:            isPremium,
		AvailableForMatching: true,
	}
}

func (s *Service) resolvePremium(ctx context.Context, userID string, at time.Time) (bool, error) {
	if s.entitlements == nil {
		return s.cfg.DefaultIsPremium, nil
	}

	isPremium, err := s.entitlements.IsPremiumActive(ctx, userID, at)
	if err != nil {
		return false, fmt.Errorf("resolve premium entitlement: %w", err)
	}
	if isPremium {
		return true, nil
	}
	return s.cfg.DefaultIsPremium, nil
}

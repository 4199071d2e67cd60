// Package matcher orchestrates a matching pass: candidate discovery through
// the reverse index, the mutual compatibility filter, the cooldown gate, and
// the idempotent bidirectional write-out of the resulting match set.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AuvroIslam/Mio-sub001/internal/domain/model"
	domainrules "github.com/AuvroIslam/Mio-sub001/internal/domain/rules"
	"github.com/AuvroIslam/Mio-sub001/internal/services/analytics"
	"github.com/AuvroIslam/Mio-sub001/internal/services/candidates"
	"github.com/AuvroIslam/Mio-sub001/internal/services/cooldown"
	"github.com/AuvroIslam/Mio-sub001/internal/store"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrProfileNotFound = errors.New("profile not found")
)

// CooldownActiveError reports a pass refused because the owner is cooling
// down.
type CooldownActiveError struct {
	Remaining time.Duration
}

func (e CooldownActiveError) Error() string {
	return "matching cooldown active"
}

func IsCooldownActive(err error) (*CooldownActiveError, bool) {
	var ca CooldownActiveError
	if errors.As(err, &ca) {
		return &ca, true
	}
	return nil, false
}

// TooManyPassesError reports the anti-abuse throttle firing.
type TooManyPassesError struct {
	RetryAfterSec int64
}

func (e TooManyPassesError) Error() string {
	return "too many matching passes"
}

func IsTooManyPasses(err error) (*TooManyPassesError, bool) {
	var tp TooManyPassesError
	if errors.As(err, &tp) {
		return &tp, true
	}
	return nil, false
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
}

type MatchStore interface {
	GetSet(ctx context.Context, userID string) (model.MatchSet, error)
	InsertOp(ownerUserID string, match model.Match, at time.Time) store.Op
	StrengthOp(ownerUserID, otherUserID string, strength int) store.Op
	Submit(ctx context.Context, ops []store.Op) error
}

type CandidateSource interface {
	Collect(ctx context.Context, userID string, interests []string, exclude map[string]struct{}) (map[string]int, error)
	Eligible(tally map[string]int) []candidates.Candidate
}

type Gate interface {
	CheckAndAdvance(ctx context.Context, userID string) (cooldown.Status, error)
	RecordMatchConsumed(ctx context.Context, userID string) error
}

type RateLimiter interface {
	AllowPass(ctx context.Context, userID string) (int64, bool, error)
}

type PhotoResolver interface {
	ResolveDisplayPhoto(ctx context.Context, photoKey string) (string, error)
}

// ChatService is the external chat collaborator, invoked once per new match.
// Fire-and-forget: its failure never rolls a match back.
type ChatService interface {
	CreateChat(ctx context.Context, userA, userB string) error
}

// Notifier delivers "you matched" messages. Same fire-and-forget rule.
type Notifier interface {
	NotifyMatch(ctx context.Context, userID, otherDisplayName string, strength int) error
}

type Config struct {
	// PropagationChunkSize caps the ops per submitted batch, far below the
	// store ceiling. Chunks never split a pair, so each chunk retries
	// safely on its own.
	PropagationChunkSize int
	// MaxCandidatesPerPass bounds one pass's propagation fan-out.
	MaxCandidatesPerPass int
}

type Dependencies struct {
	Profiles    ProfileStore
	Matches     MatchStore
	Candidates  CandidateSource
	Gate        Gate
	RateLimiter RateLimiter
	Photos      PhotoResolver
	Chat        ChatService
	Notifier    Notifier
	Analytics   *analytics.Service
	Logger      *zap.Logger
}

type Service struct {
	profiles    ProfileStore
	matches     MatchStore
	candidates  CandidateSource
	gate        Gate
	rateLimiter RateLimiter
	photos      PhotoResolver
	chat        ChatService
	notifier    Notifier
	analytics   *analytics.Service
	log         *zap.Logger
	cfg         Config
	now         func() time.Time
}

// PassResult summarizes one matching pass.
type PassResult struct {
	CandidatesConsidered int
	Created              int
	Updated              int
	Skipped              int
	Incompatible         int
	ClippedByQuota       int
}

// PropagateResult reports what one pair propagation wrote.
type PropagateResult struct {
	NewForA bool
	NewForB bool
	Updated bool
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.PropagationChunkSize <= 0 || cfg.PropagationChunkSize > store.MaxBatchOps/2 {
		cfg.PropagationChunkSize = 100
	}
	if cfg.MaxCandidatesPerPass <= 0 {
		cfg.MaxCandidatesPerPass = 200
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		profiles:    deps.Profiles,
		matches:     deps.Matches,
		candidates:  deps.Candidates,
		gate:        deps.Gate,
		rateLimiter: deps.RateLimiter,
		photos:      deps.Photos,
		chat:        deps.Chat,
		notifier:    deps.Notifier,
		analytics:   deps.Analytics,
		log:         log,
		cfg:         cfg,
		now:         time.Now,
	}
}

// RunPass executes one full matching pass for the user. A failure on one
// candidate is logged and skipped; the pass itself fails only on validation,
// throttle, cooldown, or when the owner's own data cannot be read.
func (s *Service) RunPass(ctx context.Context, userID string) (PassResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return PassResult{}, ErrValidation
	}
	if s.profiles == nil || s.matches == nil || s.candidates == nil || s.gate == nil {
		return PassResult{}, fmt.Errorf("matcher dependencies are not configured")
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowPass(ctx, userID)
		if err != nil {
			return PassResult{}, fmt.Errorf("apply pass rate limiter: %w", err)
		}
		if !allowed {
			return PassResult{}, TooManyPassesError{RetryAfterSec: retryAfter}
		}
	}

	status, err := s.gate.CheckAndAdvance(ctx, userID)
	if err != nil {
		return PassResult{}, fmt.Errorf("check cooldown gate: %w", err)
	}
	if !status.AvailableForMatching {
		return PassResult{}, CooldownActiveError{Remaining: status.Remaining}
	}

	s.analytics.Record(ctx, userID, analytics.EventPassStarted, nil)

	owner, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return PassResult{}, ErrProfileNotFound
		}
		return PassResult{}, fmt.Errorf("load owner profile: %w", err)
	}

	ownerSet, err := s.matches.GetSet(ctx, userID)
	if err != nil {
		return PassResult{}, fmt.Errorf("load owner match set: %w", err)
	}
	exclude := make(map[string]struct{}, len(ownerSet.Data))
	for otherID := range ownerSet.Data {
		exclude[otherID] = struct{}{}
	}

	tally, err := s.candidates.Collect(ctx, userID, owner.Interests, exclude)
	if err != nil {
		return PassResult{}, fmt.Errorf("collect candidates: %w", err)
	}

	eligible := s.candidates.Eligible(tally)
	result := PassResult{CandidatesConsidered: len(eligible)}
	if len(eligible) > s.cfg.MaxCandidatesPerPass {
		eligible = eligible[:s.cfg.MaxCandidatesPerPass]
	}

	plans := make([]pairPlan, 0, len(eligible))
	for _, candidate := range eligible {
		other, err := s.profiles.Get(ctx, candidate.UserID)
		if err != nil {
			result.Skipped++
			s.log.Warn("skipping candidate: profile load failed",
				zap.String("user_id", userID),
				zap.String("candidate_id", candidate.UserID),
				zap.Error(err))
			continue
		}

		if !domainrules.IsCompatible(owner, other) {
			result.Incompatible++
			continue
		}

		plan, err := s.planPair(ctx, owner, other, candidate.Strength)
		if err != nil {
			result.Skipped++
			s.log.Warn("skipping candidate: pair planning failed",
				zap.String("user_id", userID),
				zap.String("candidate_id", candidate.UserID),
				zap.Error(err))
			continue
		}
		plans = append(plans, plan)
	}

	// The owner's remaining quota clips how many new matches this pass may
	// create. The clip runs after the compatibility filter so an incompatible
	// candidate never occupies a quota slot; every surviving plan is a fresh
	// pair because existing matches were excluded from the tally.
	quota := status.State.RemainingQuota()
	if quota >= 0 && len(plans) > quota {
		result.ClippedByQuota = len(plans) - quota
		plans = plans[:quota]
	}

	created, updated, skipped := s.submitPlans(ctx, plans)
	result.Created += created
	result.Updated += updated
	result.Skipped += skipped

	s.analytics.Record(ctx, userID, analytics.EventPassFinished, map[string]any{
		"considered": result.CandidatesConsidered,
		"created":    result.Created,
		"updated":    result.Updated,
		"skipped":    result.Skipped,
		"clipped":    result.ClippedByQuota,
	})

	return result, nil
}

// Matches returns the user's current match set, strongest first.
func (s *Service) Matches(ctx context.Context, userID string) ([]model.Match, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrValidation
	}

	set, err := s.matches.GetSet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load match set: %w", err)
	}

	out := make([]model.Match, 0, len(set.Data))
	for _, match := range set.Data {
		out = append(out, match)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchStrength != out[j].MatchStrength {
			return out[i].MatchStrength > out[j].MatchStrength
		}
		return out[i].OtherUserID < out[j].OtherUserID
	})
	return out, nil
}

// Propagate writes the match for one pair to both sides. Idempotent: a side
// that already holds the record gets a strength-only update and no quota
// consumption, so re-running after a partial failure heals the asymmetry
// instead of double-charging anyone.
func (s *Service) Propagate(ctx context.Context, userAID, userBID string, strength int) (PropagateResult, error) {
	userAID = strings.TrimSpace(userAID)
	userBID = strings.TrimSpace(userBID)
	if userAID == "" || userBID == "" || userAID == userBID {
		return PropagateResult{}, ErrValidation
	}

	profileA, err := s.profiles.Get(ctx, userAID)
	if err != nil {
		return PropagateResult{}, fmt.Errorf("load profile %s: %w", userAID, err)
	}
	profileB, err := s.profiles.Get(ctx, userBID)
	if err != nil {
		return PropagateResult{}, fmt.Errorf("load profile %s: %w", userBID, err)
	}

	plan, err := s.planPair(ctx, profileA, profileB, strength)
	if err != nil {
		return PropagateResult{}, err
	}

	if len(plan.ops) == 0 {
		return PropagateResult{}, nil
	}
	if err := s.matches.Submit(ctx, plan.ops); err != nil {
		return PropagateResult{}, fmt.Errorf("submit pair writes: %w", err)
	}
	s.settlePair(ctx, plan)

	return PropagateResult{
		NewForA: plan.newForA,
		NewForB: plan.newForB,
		Updated: !plan.newForA && !plan.newForB,
	}, nil
}

// HealPair repairs a broken symmetry invariant for a pair by re-running
// propagation with the strength recorded on the surviving side. Reports
// whether anything needed healing.
func (s *Service) HealPair(ctx context.Context, userAID, userBID string) (bool, error) {
	setA, err := s.matches.GetSet(ctx, userAID)
	if err != nil {
		return false, fmt.Errorf("load match set %s: %w", userAID, err)
	}
	setB, err := s.matches.GetSet(ctx, userBID)
	if err != nil {
		return false, fmt.Errorf("load match set %s: %w", userBID, err)
	}

	aHasB := setA.Has(userBID)
	bHasA := setB.Has(userAID)
	if aHasB == bHasA {
		return false, nil
	}

	strength := 0
	if aHasB {
		strength = setA.Data[userBID].MatchStrength
	} else {
		strength = setB.Data[userAID].MatchStrength
	}

	if _, err := s.Propagate(ctx, userAID, userBID, strength); err != nil {
		return false, err
	}

	s.analytics.Record(ctx, userAID, analytics.EventPairHealed, map[string]any{
		"other_user_id": userBID,
	})
	return true, nil
}

type pairPlan struct {
	a        model.Profile
	b        model.Profile
	strength int
	ops      []store.Op
	newForA  bool
	newForB  bool
}

// planPair decides, per side, whether the pair write is a fresh insert or a
// strength refresh. Each side is judged independently so a half-propagated
// pair converges on retry.
func (s *Service) planPair(ctx context.Context, a, b model.Profile, strength int) (pairPlan, error) {
	setA, err := s.matches.GetSet(ctx, a.UserID)
	if err != nil {
		return pairPlan{}, fmt.Errorf("load match set %s: %w", a.UserID, err)
	}
	setB, err := s.matches.GetSet(ctx, b.UserID)
	if err != nil {
		return pairPlan{}, fmt.Errorf("load match set %s: %w", b.UserID, err)
	}

	plan := pairPlan{a: a, b: b, strength: strength}
	at := s.now().UTC()

	if setA.Has(b.UserID) {
		if setA.Data[b.UserID].MatchStrength != strength {
			plan.ops = append(plan.ops, s.matches.StrengthOp(a.UserID, b.UserID, strength))
		}
	} else {
		plan.newForA = true
		plan.ops = append(plan.ops, s.matches.InsertOp(a.UserID, model.Match{
			OtherUserID:   b.UserID,
			MatchStrength: strength,
			DisplayName:   b.DisplayName,
			DisplayPhoto:  s.resolvePhoto(ctx, b),
		}, at))
	}

	if setB.Has(a.UserID) {
		if setB.Data[a.UserID].MatchStrength != strength {
			plan.ops = append(plan.ops, s.matches.StrengthOp(b.UserID, a.UserID, strength))
		}
	} else {
		plan.newForB = true
		plan.ops = append(plan.ops, s.matches.InsertOp(b.UserID, model.Match{
			OtherUserID:   a.UserID,
			MatchStrength: strength,
			DisplayName:   a.DisplayName,
			DisplayPhoto:  s.resolvePhoto(ctx, a),
		}, at))
	}

	return plan, nil
}

// submitPlans flushes pair plans in chunks that never split a pair, then
// settles quota and hooks for the pairs whose chunk committed.
func (s *Service) submitPlans(ctx context.Context, plans []pairPlan) (created, updated, skipped int) {
	var chunk []pairPlan
	chunkOps := 0

	flush := func() {
		if len(chunk) == 0 {
			return
		}
		ops := make([]store.Op, 0, chunkOps)
		for _, plan := range chunk {
			ops = append(ops, plan.ops...)
		}
		if err := s.matches.Submit(ctx, ops); err != nil {
			skipped += len(chunk)
			s.log.Error("propagation chunk failed, pairs skipped this pass",
				zap.Int("pairs", len(chunk)),
				zap.Error(err))
		} else {
			for _, plan := range chunk {
				if plan.newForA || plan.newForB {
					created++
				} else {
					updated++
				}
				s.settlePair(ctx, plan)
			}
		}
		chunk = chunk[:0]
		chunkOps = 0
	}

	for _, plan := range plans {
		if len(plan.ops) == 0 {
			updated++
			continue
		}
		if chunkOps+len(plan.ops) > s.cfg.PropagationChunkSize {
			flush()
		}
		chunk = append(chunk, plan)
		chunkOps += len(plan.ops)
	}
	flush()

	return created, updated, skipped
}

// settlePair advances each side's quota for a fresh insert and fires the
// after-match hooks. Runs only after the pair's writes committed.
func (s *Service) settlePair(ctx context.Context, plan pairPlan) {
	if plan.newForA {
		if err := s.gate.RecordMatchConsumed(ctx, plan.a.UserID); err != nil {
			s.log.Warn("record consumed match failed",
				zap.String("user_id", plan.a.UserID),
				zap.Error(err))
		}
	}
	if plan.newForB {
		if err := s.gate.RecordMatchConsumed(ctx, plan.b.UserID); err != nil {
			s.log.Warn("record consumed match failed",
				zap.String("user_id", plan.b.UserID),
				zap.Error(err))
		}
	}

	if !plan.newForA && !plan.newForB {
		s.analytics.Record(ctx, plan.a.UserID, analytics.EventMatchUpdated, map[string]any{
			"other_user_id": plan.b.UserID,
			"strength":      plan.strength,
		})
		return
	}

	s.analytics.Record(ctx, plan.a.UserID, analytics.EventMatchCreated, map[string]any{
		"other_user_id": plan.b.UserID,
		"strength":      plan.strength,
	})

	if s.chat != nil {
		if err := s.chat.CreateChat(ctx, plan.a.UserID, plan.b.UserID); err != nil {
			s.log.Warn("create chat hook failed",
				zap.String("user_a", plan.a.UserID),
				zap.String("user_b", plan.b.UserID),
				zap.Error(err))
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyMatch(ctx, plan.a.UserID, plan.b.DisplayName, plan.strength); err != nil {
			s.log.Warn("notify match failed", zap.String("user_id", plan.a.UserID), zap.Error(err))
		}
		if err := s.notifier.NotifyMatch(ctx, plan.b.UserID, plan.a.DisplayName, plan.strength); err != nil {
			s.log.Warn("notify match failed", zap.String("user_id", plan.b.UserID), zap.Error(err))
		}
	}
}

func (s *Service) resolvePhoto(ctx context.Context, profile model.Profile) string {
	if s.photos == nil {
		return profile.PhotoKey
	}
	resolved, err := s.photos.ResolveDisplayPhoto(ctx, profile.PhotoKey)
	if err != nil {
		s.log.Warn("resolve display photo failed",
			zap.String("user_id", profile.UserID),
			zap.Error(err))
		return profile.PhotoKey
	}
	return resolved
}

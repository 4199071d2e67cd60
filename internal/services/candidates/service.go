// Package candidates discovers match candidates by scanning a user's
// interests through the reverse index and tallying co-occurrence counts.
package candidates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	domainrules "github.com/AuvroIslam/Mio-sub001/internal/domain/rules"
	"github.com/AuvroIslam/Mio-sub001/internal/store"
)

var ErrValidation = errors.New("validation error")

type IndexStore interface {
	UsersFor(ctx context.Context, itemID string) ([]string, error)
}

type Config struct {
	// ScanBatchSize bounds how many index entries one round of fetches
	// touches; it shapes fan-out only and never the aggregate tally.
	ScanBatchSize int
	// MatchThreshold is the minimum tally for Eligible.
	MatchThreshold int
}

type Service struct {
	index IndexStore
	log   *zap.Logger
	cfg   Config
}

// Candidate is one other user above threshold, with the co-occurrence count
// that doubles as match strength.
type Candidate struct {
	UserID   string
	Strength int
}

func NewService(index IndexStore, log *zap.Logger, cfg Config) *Service {
	if cfg.ScanBatchSize <= 0 {
		cfg.ScanBatchSize = 10
	}
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = domainrules.MatchThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		index: index,
		log:   log,
		cfg:   cfg,
	}
}

// Collect tallies, per other user, how many of the given interests they
// share. Users in exclude are dropped, as is the scanning user. A transient
// failure on one index entry skips that entry and continues; the tally is
// then a lower bound a later pass converges.
func (s *Service) Collect(ctx context.Context, userID string, interests []string, exclude map[string]struct{}) (map[string]int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrValidation
	}
	if s.index == nil {
		return nil, fmt.Errorf("candidates index store is nil")
	}

	tally := make(map[string]int)
	for start := 0; start < len(interests); start += s.cfg.ScanBatchSize {
		end := start + s.cfg.ScanBatchSize
		if end > len(interests) {
			end = len(interests)
		}
		for _, itemID := range interests[start:end] {
			users, err := s.index.UsersFor(ctx, itemID)
			if err != nil {
				if errors.Is(err, store.ErrUnavailable) {
					s.log.Warn("skipping index entry during candidate scan",
						zap.String("item_id", itemID),
						zap.Error(err))
					continue
				}
				return nil, fmt.Errorf("scan index entry %q: %w", itemID, err)
			}
			for _, other := range users {
				if other == userID {
					continue
				}
				tally[other]++
			}
		}
	}

	for excluded := range exclude {
		delete(tally, excluded)
	}
	return tally, nil
}

// Eligible filters the tally by the match threshold and orders candidates by
// descending strength (id as tiebreak) so passes behave deterministically.
func (s *Service) Eligible(tally map[string]int) []Candidate {
	out := make([]Candidate, 0, len(tally))
	for userID, strength := range tally {
		if strength >= s.cfg.MatchThreshold {
			out = append(out, Candidate{UserID: userID, Strength: strength})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Strength != out[j].Strength {
			return out[i].Strength > out[j].Strength
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

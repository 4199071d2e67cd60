// Package reconcile is the background sweep that repairs the match symmetry
// invariant: for every recently active user, each of their recorded matches
// must be mirrored on the other side. Asymmetric pairs are re-propagated.
package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AuvroIslam/Mio-sub001/internal/domain/model"
)

type ActivitySource interface {
	RecentlyActiveUsers(ctx context.Context, since time.Time, limit int) ([]string, error)
}

type MatchSource interface {
	GetSet(ctx context.Context, userID string) (model.MatchSet, error)
}

type Healer interface {
	HealPair(ctx context.Context, userAID, userBID string) (bool, error)
}

type Config struct {
	Interval  time.Duration
	Lookback  time.Duration
	UserLimit int
}

type Job struct {
	activity ActivitySource
	matches  MatchSource
	healer   Healer
	log      *zap.Logger
	cfg      Config
	now      func() time.Time
}

// Report summarizes one sweep.
type Report struct {
	UsersScanned int
	PairsChecked int
	PairsHealed  int
	Errors       int
}

func NewJob(activity ActivitySource, matches MatchSource, healer Healer, log *zap.Logger, cfg Config) *Job {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 24 * time.Hour
	}
	if cfg.UserLimit <= 0 {
		cfg.UserLimit = 1000
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Job{
		activity: activity,
		matches:  matches,
		healer:   healer,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run sweeps on the configured interval until the context ends. One failed
// sweep is logged and the loop keeps going.
func (j *Job) Run(ctx context.Context) {
	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	j.log.Info("match reconcile job started", zap.Duration("interval", j.cfg.Interval))
	for {
		select {
		case <-ctx.Done():
			j.log.Info("match reconcile job stopped")
			return
		case <-ticker.C:
			report, err := j.RunOnce(ctx)
			if err != nil {
				j.log.Error("reconcile sweep failed", zap.Error(err))
				continue
			}
			j.log.Info("reconcile sweep finished",
				zap.Int("users", report.UsersScanned),
				zap.Int("pairs", report.PairsChecked),
				zap.Int("healed", report.PairsHealed),
				zap.Int("errors", report.Errors))
		}
	}
}

// RunOnce checks every pair reachable from the recently active users. A pair
// whose missing side belongs to an inactive user is still found through the
// active side that holds the record.
func (j *Job) RunOnce(ctx context.Context) (Report, error) {
	since := j.now().UTC().Add(-j.cfg.Lookback)
	users, err := j.activity.RecentlyActiveUsers(ctx, since, j.cfg.UserLimit)
	if err != nil {
		return Report{}, err
	}

	report := Report{UsersScanned: len(users)}
	seen := map[[2]string]struct{}{}

	for _, userID := range users {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		set, err := j.matches.GetSet(ctx, userID)
		if err != nil {
			report.Errors++
			j.log.Warn("reconcile: load match set failed",
				zap.String("user_id", userID), zap.Error(err))
			continue
		}

		for otherID := range set.Data {
			key := pairKey(userID, otherID)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			report.PairsChecked++

			healed, err := j.healer.HealPair(ctx, userID, otherID)
			if err != nil {
				report.Errors++
				j.log.Warn("reconcile: heal pair failed",
					zap.String("user_a", userID),
					zap.String("user_b", otherID),
					zap.Error(err))
				continue
			}
			if healed {
				report.PairsHealed++
				j.log.Info("reconcile: repaired asymmetric pair",
					zap.String("user_a", userID),
					zap.String("user_b", otherID))
			}
		}
	}

	return report, nil
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

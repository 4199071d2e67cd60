// Package analytics records matching events (passes, matches, heals) for
// offline analysis. Recording is best-effort: a sink failure is logged and
// never fails the operation that produced the event.
package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	pgrepo "github.com/AuvroIslam/Mio-sub001/internal/repo/postgres"
)

const (
	EventPassStarted  = "pass_started"
	EventPassFinished = "pass_finished"
	EventMatchCreated = "match_created"
	EventMatchUpdated = "match_updated"
	EventPairHealed   = "pair_healed"
	EventFavoriteSet  = "favorite_toggled"
)

type Store interface {
	InsertBatch(ctx context.Context, events []pgrepo.EventWriteRecord) error
}

type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Record writes one event. A nil store (degraded deployment without the
// analytics database) makes it a no-op.
func (s *Service) Record(ctx context.Context, userID, name string, props map[string]any) {
	if s == nil || s.store == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	err := s.store.InsertBatch(ctx, []pgrepo.EventWriteRecord{{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       name,
		OccurredAt: s.now().UTC(),
		Props:      props,
	}})
	if err != nil {
		s.log.Warn("record analytics event failed",
			zap.String("event", name),
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
